package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aretw0/panmirror/internal/cli"
)

func main() {
	ctx, stop := cli.NotifyContext(context.Background())
	defer stop()

	err := NewRootCmd().ExecuteContext(ctx)
	if ie, ok := cli.Interruption(ctx); ok {
		fmt.Fprintf(os.Stderr, "Interrupted: %v\n", ie)
		os.Exit(130)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
