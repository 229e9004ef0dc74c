// Package schema implements the target document model: a registry of node and
// mark types whose content rules are compiled into deterministic automata.
//
// A node type's content is declared with an expression such as "paragraph block*"
// or "list_item+". NodeType.CreateAndFill validates a candidate list of children
// against that expression and inserts the smallest set of generated nodes needed
// to satisfy it, failing with ErrContentMismatch when no fill exists:
//
//	s := schema.Basic()
//	item, _ := s.NodeType("list_item")
//	node, err := item.CreateAndFill(nil, nil, nil) // list_item(paragraph)
//
// Schemas are usually loaded from YAML with LoadSpec and compiled with New.
// Attribute values are validated by the small type system in types.go:
//
//	attrs:
//	  level: {type: int, default: 1}
//	  title: {type: "?string", default: null}
//
// Documents serialize to and from the ProseMirror JSON layout.
package schema
