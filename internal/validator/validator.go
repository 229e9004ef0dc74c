package validator

import (
	"github.com/aretw0/panmirror/pkg/schema"
)

// ValidateDocument checks every node of the tree and reports all failures at
// once. Each entry of the returned *schema.AggregateError is a
// *schema.ValidationError keyed by the node path ("" for the root,
// "content/1/content/0" below it).
func ValidateDocument(root *schema.Node) error {
	var errs []error

	check := func(node *schema.Node, path string) {
		if err := node.CheckSelf(); err != nil {
			errs = append(errs, &schema.ValidationError{
				Key:    pathOrRoot(path),
				Reason: err.Error(),
			})
		}
	}

	check(root, "")
	root.Descendants(func(node *schema.Node, path string) bool {
		check(node, path)
		return true
	})

	if len(errs) > 0 {
		return &schema.AggregateError{Errors: errs}
	}
	return nil
}

// ValidateJSON decodes a document without checking it and validates the result.
// Decoding failures, such as unknown node types, are returned as is.
func ValidateJSON(s *schema.Schema, data []byte) error {
	root, err := s.ParseNodeJSON(data)
	if err != nil {
		return err
	}
	if root.Type != s.Top() {
		return &schema.AggregateError{Errors: []error{&schema.ValidationError{
			Key:    "/",
			Reason: "root must be " + s.Top().Name + ", got " + root.Type.Name,
		}}}
	}
	return ValidateDocument(root)
}

func pathOrRoot(path string) string {
	if path == "" {
		return "/"
	}
	return "/" + path
}
