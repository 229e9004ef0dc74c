// Package dsl provides a fluent API to assemble pandoc documents in code.
//
//	doc := dsl.New().
//		Heading(1, dsl.Str("Title")).
//		Text("Hello world").
//		Bullets(dsl.Item(dsl.Plain(dsl.Str("one")))).
//		Build()
//
// The result can be converted directly or encoded to pandoc JSON with JSON.
package dsl
