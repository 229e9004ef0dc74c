package panmirror

// Version is the release of the library and CLI. It is overridden at build time
// with -ldflags "-X github.com/aretw0/panmirror.Version=...".
var Version = "0.1.0-dev"
