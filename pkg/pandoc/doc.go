// Package pandoc decodes the pandoc JSON AST into typed tokens.
//
// Pandoc encodes every element as {"t": tag, "c": payload} where the payload is
// a positional tuple whose shape depends on the tag. Decode validates every
// payload once, up front, and returns tokens such as *Header or *Link whose
// fields are already typed. Each token remembers its JSON Pointer so that later
// failures can name the exact place in the input.
//
// Only the constructors listed in Tags are accepted. Anything else fails with a
// *domain.UnknownTagError; payloads of the wrong shape fail with a
// *domain.MalformedTokenError.
package pandoc
