// Package object models a document's structural object tree: the graph of
// dictionaries, arrays, and streams describing pages, metadata, forms, and
// annotations. Sanitization operates directly on this tree rather than on
// the rendered view. Access is through a tagged-union node type with
// explicit present/absent results; there is no dynamic string lookup that
// can fail silently.
package object

import "fmt"

// ObjectRef uniquely identifies an indirect object.
type ObjectRef struct {
	Num int
	Gen int
}

func (r ObjectRef) String() string { return fmt.Sprintf("%d %d R", r.Num, r.Gen) }

// Object is the base interface for all tree nodes.
type Object interface {
	Kind() Kind
}

// Kind discriminates the node variants of the tagged union.
type Kind int

const (
	KindNull Kind = iota
	KindBoolean
	KindNumber
	KindString
	KindName
	KindArray
	KindDictionary
	KindStream
	KindReference
)

func (k Kind) String() string {
	switch k {
	case KindBoolean:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindName:
		return "name"
	case KindArray:
		return "array"
	case KindDictionary:
		return "dictionary"
	case KindStream:
		return "stream"
	case KindReference:
		return "reference"
	default:
		return "null"
	}
}
