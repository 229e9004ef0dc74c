// Package file provides a filesystem DocumentStore.
package file
