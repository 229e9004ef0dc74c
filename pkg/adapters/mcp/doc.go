// Package mcp exposes the converter as Model Context Protocol tools and resources.
package mcp
