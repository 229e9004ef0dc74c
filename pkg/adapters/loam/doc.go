// Package loam reads notebooks of markdown notes for batch conversion.
package loam
