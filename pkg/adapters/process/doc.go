// Package process provides an ASTSource that shells out to the pandoc executable.
package process
