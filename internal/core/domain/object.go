package domain

import (
	"bytes"
	"encoding/json"
	"slices"
)

// Object holds the JSON members of a record that are carried through
// enrichment without interpretation.
type Object map[string]json.RawMessage

// Clone returns a shallow copy. Member values are immutable raw JSON, so a
// shallow copy is safe to modify.
func (o Object) Clone() Object {
	out := make(Object, len(o))
	for k, v := range o {
		out[k] = v
	}
	return out
}

// Merge returns a new object holding the union of o and other.
// Members of other win on conflicting names.
func (o Object) Merge(other Object) Object {
	out := o.Clone()
	for k, v := range other {
		out[k] = v
	}
	return out
}

// Without returns a copy of o with the named members removed.
func (o Object) Without(names ...string) Object {
	out := o.Clone()
	for _, name := range names {
		delete(out, name)
	}
	return out
}

// Set marshals v and stores it under name.
func (o Object) Set(name string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	o[name] = raw
	return nil
}

// String decodes a string member. Missing, null and non-string members yield "".
func (o Object) String(name string) string {
	var s string
	if raw, ok := o[name]; ok {
		_ = json.Unmarshal(raw, &s)
	}
	return s
}

// Float decodes a numeric member.
func (o Object) Float(name string) (float64, bool) {
	raw, ok := o[name]
	if !ok || isNull(raw) {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0, false
	}
	return f, true
}

// Int decodes an integer member.
func (o Object) Int(name string) (int, bool) {
	raw, ok := o[name]
	if !ok || isNull(raw) {
		return 0, false
	}
	var n int
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, false
	}
	return n, true
}

// ObjectOf marshals v and decodes it back into an Object.
func ObjectOf(v any) (Object, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out Object
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Members is a set of member names, kept in the order they were added.
type Members []string

// Has reports whether name is in the set.
func (m Members) Has(name string) bool {
	return slices.Contains(m, name)
}

// setUnlessAbsent stores v under name unless the source did not carry the member.
func (o Object) setUnlessAbsent(absent Members, name string, v any) error {
	if absent.Has(name) {
		return nil
	}
	return o.Set(name, v)
}

// takeOptionalInt removes name from o and decodes it as an optional integer.
// Absent and null members both yield nil.
func takeOptionalInt(o Object, name string) (*int, error) {
	raw, ok := o[name]
	if !ok {
		return nil, nil
	}
	delete(o, name)
	if isNull(raw) {
		return nil, nil
	}
	var n int
	if err := json.Unmarshal(raw, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
