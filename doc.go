/*
Package panmirror converts the pandoc JSON AST into a schema-validated document tree
of the kind used by ProseMirror-style rich text editors.

A conversion walks pandoc tokens depth-first. A handler table maps every pandoc tag to
one of five strategies (text, mark, block, leaf node, list), and a conversion state
assembles nodes through a frame stack while tracking the active marks. Every node is
built through the schema, which fills missing required content and rejects anything
it cannot repair.

# Concept

Parsing markdown is pandoc's job. panmirror only consumes its output, obtained through
a ports.ASTSource: a local pandoc process, a remote HTTP endpoint or a fixed in-memory
response. Converted documents can be cached in a ports.DocumentStore and conversions
de-duplicated across replicas with a ports.DistributedLocker.

# Usage

	package main

	import (
		"context"
		"fmt"
		"log"

		"github.com/aretw0/panmirror"
		"github.com/aretw0/panmirror/pkg/adapters/process"
	)

	func main() {
		conv, err := panmirror.New(panmirror.WithASTSource(process.NewSource()))
		if err != nil {
			log.Fatal(err)
		}

		doc, err := conv.ConvertMarkdown(context.Background(), "# Hello *world*")
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(doc) // doc(heading("Hello ", em("world")))
	}

Documents already in pandoc JSON form can be converted with ConvertJSON, or decoded
with pandoc.Decode and passed to Convert.
*/
package panmirror
