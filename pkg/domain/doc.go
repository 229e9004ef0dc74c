/*
Package domain contains the shared vocabulary of the panmirror converter.

It defines the error taxonomy of a conversion, the policy applied when a node cannot
be built from its accumulated children, and the lifecycle events emitted while a
pandoc AST is walked. The package has no I/O and no dependencies beyond the
standard library, so every layer can import it.

# Error Taxonomy

  - UnknownTagError: a token tag the handler table does not know.
  - MalformedTokenError: a payload whose arity or shape does not match its tag.
  - StructuralMismatchError: children that violate the content rule of their node type.
*/
package domain
