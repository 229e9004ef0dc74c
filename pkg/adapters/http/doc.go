// Package http exposes the converter over HTTP with chi and provides a Client that
// uses a remote /pandoc/ast endpoint as a ports.ASTSource.
package http
