package object

// Document is the root of a parsed structural tree. Root is the catalog
// dictionary, Info the document information dictionary (nil when absent),
// and Pages the page dictionaries in document order. Objects holds indirect
// objects for reference resolution.
type Document struct {
	Root      *Dict
	Info      *Dict
	Pages     []*Dict
	Objects   map[ObjectRef]Object
	Encrypted bool
}

// NewDocument returns an empty document with an initialized catalog.
func NewDocument() *Document {
	return &Document{
		Root:    NewDict(),
		Info:    NewDict(),
		Objects: make(map[ObjectRef]Object),
	}
}

// Resolve follows reference nodes until it reaches a direct object. Broken
// or cyclic references resolve to nil rather than failing.
func (d *Document) Resolve(obj Object) Object {
	for depth := 0; depth < 32; depth++ {
		ref, ok := obj.(Reference)
		if !ok {
			return obj
		}
		obj, ok = d.Objects[ref.Ref()]
		if !ok {
			return nil
		}
	}
	return nil
}

// ResolveDict resolves obj and returns it as a dictionary, or nil when the
// node is absent or has a different kind.
func (d *Document) ResolveDict(obj Object) *Dict {
	switch v := d.Resolve(obj).(type) {
	case *Dict:
		return v
	case *Stream:
		return v.Dict
	default:
		return nil
	}
}

// ResolveArray resolves obj and returns it as an array, or nil.
func (d *Document) ResolveArray(obj Object) *Array {
	if arr, ok := d.Resolve(obj).(*Array); ok {
		return arr
	}
	return nil
}

// DictValue resolves the value stored under key in dict. The second result
// distinguishes an absent key from a present-but-null value.
func (d *Document) DictValue(dict *Dict, key string) (Object, bool) {
	if dict == nil {
		return nil, false
	}
	obj, ok := dict.Get(key)
	if !ok {
		return nil, false
	}
	return d.Resolve(obj), true
}

// NameValue resolves obj to a name tag.
func (d *Document) NameValue(obj Object) (string, bool) {
	if n, ok := d.Resolve(obj).(Name); ok {
		return n.Value(), true
	}
	return "", false
}

// StringValue resolves obj to string content.
func (d *Document) StringValue(obj Object) (string, bool) {
	if s, ok := d.Resolve(obj).(String); ok {
		return s.Text(), true
	}
	return "", false
}
