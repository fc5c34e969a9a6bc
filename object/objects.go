package object

// Concrete node implementations.

// Name is a structural name tag, e.g. "Annots" or "Subtype".
type Name struct{ Val string }

func (n Name) Kind() Kind    { return KindName }
func (n Name) Value() string { return n.Val }

// Number holds an integer or real value.
type Number struct {
	I     int64
	F     float64
	IsInt bool
}

func (n Number) Kind() Kind { return KindNumber }
func (n Number) Int() int64 { return n.I }
func (n Number) Float() float64 {
	if n.IsInt {
		return float64(n.I)
	}
	return n.F
}

// Boolean is a true/false node.
type Boolean struct{ V bool }

func (b Boolean) Kind() Kind  { return KindBoolean }
func (b Boolean) Value() bool { return b.V }

// Null is the explicit null node.
type Null struct{}

func (Null) Kind() Kind { return KindNull }

// String is a byte-string node.
type String struct{ Bytes []byte }

func (s String) Kind() Kind     { return KindString }
func (s String) Value() []byte  { return s.Bytes }
func (s String) Text() string   { return string(s.Bytes) }

// Array is an ordered sequence of nodes.
type Array struct{ Items []Object }

func (a *Array) Kind() Kind { return KindArray }
func (a *Array) Len() int   { return len(a.Items) }

// Get returns the element at index i, reporting whether it exists.
func (a *Array) Get(i int) (Object, bool) {
	if i < 0 || i >= len(a.Items) {
		return nil, false
	}
	return a.Items[i], true
}

// Append adds an element to the end of the array.
func (a *Array) Append(o Object) { a.Items = append(a.Items, o) }

// Remove deletes the element at index i. Callers removing multiple indices
// must do so in reverse order so earlier removals do not shift later ones.
func (a *Array) Remove(i int) {
	if i < 0 || i >= len(a.Items) {
		return
	}
	a.Items = append(a.Items[:i], a.Items[i+1:]...)
}

// Dict is a keyed collection of nodes.
type Dict struct{ KV map[string]Object }

func (d *Dict) Kind() Kind { return KindDictionary }
func (d *Dict) Len() int   { return len(d.KV) }

// Get returns the value for key, reporting whether the key is present.
func (d *Dict) Get(key string) (Object, bool) {
	o, ok := d.KV[key]
	return o, ok
}

// Has reports whether the key is present.
func (d *Dict) Has(key string) bool {
	_, ok := d.KV[key]
	return ok
}

// Set stores a value under key.
func (d *Dict) Set(key string, value Object) {
	if d.KV == nil {
		d.KV = make(map[string]Object)
	}
	d.KV[key] = value
}

// Delete removes key, reporting whether it was present.
func (d *Dict) Delete(key string) bool {
	if _, ok := d.KV[key]; !ok {
		return false
	}
	delete(d.KV, key)
	return true
}

// Keys returns the dictionary's keys in unspecified order.
func (d *Dict) Keys() []string {
	keys := make([]string, 0, len(d.KV))
	for k := range d.KV {
		keys = append(keys, k)
	}
	return keys
}

// Clear removes every entry and returns the number removed.
func (d *Dict) Clear() int {
	n := len(d.KV)
	d.KV = make(map[string]Object)
	return n
}

// Stream pairs a dictionary with an opaque data payload.
type Stream struct {
	Dict *Dict
	Data []byte
}

func (s *Stream) Kind() Kind { return KindStream }

// Reference points at an indirect object.
type Reference struct{ R ObjectRef }

func (r Reference) Kind() Kind     { return KindReference }
func (r Reference) Ref() ObjectRef { return r.R }

// Constructors.

func NewDict() *Dict                           { return &Dict{KV: make(map[string]Object)} }
func NewArray(items ...Object) *Array          { return &Array{Items: items} }
func NewStream(dict *Dict, data []byte) *Stream {
	if dict == nil {
		dict = NewDict()
	}
	return &Stream{Dict: dict, Data: data}
}
func NameOf(v string) Name        { return Name{Val: v} }
func Int(i int64) Number          { return Number{I: i, IsInt: true} }
func Real(f float64) Number       { return Number{F: f} }
func Bool(v bool) Boolean         { return Boolean{V: v} }
func Str(s string) String         { return String{Bytes: []byte(s)} }
func Ref(num, gen int) Reference  { return Reference{R: ObjectRef{Num: num, Gen: gen}} }
