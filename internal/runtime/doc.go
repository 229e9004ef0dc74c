// Package runtime contains the conversion core: the handler table that maps
// pandoc tags to document model operations, the State builder with its explicit
// frame stack and ordered mark set, and the Engine that walks a document and
// dispatches every token.
package runtime
