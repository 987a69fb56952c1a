/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
 */

// Package option implements the option data model of spec.md §3/§4.C2:
// a name paired with an optional value in one of two variant shapes
// (single string or ordered string list), plus the schema entry
// (Desc) that constrains it. Grounded on
// _examples/original_source/TorController/Options/{Option,OptionDesc,
// ConfigScheme}.{h,cpp}.
package option

// Value is the variant shape an Option may carry: either a single
// string or an ordered list of strings, never both.
type Value struct {
	single *string
	list   []string
}

// Single builds a single-valued Value.
func Single(s string) Value {
	return Value{single: &s}
}

// List builds a list-valued Value. An empty, non-nil slice is a valid
// (empty) list, distinct from no value at all.
func List(items ...string) Value {
	cp := make([]string, len(items))
	copy(cp, items)
	return Value{list: cp}
}

// IsList reports whether this Value is list-shaped.
func (v Value) IsList() bool { return v.list != nil }

// IsSingle reports whether this Value is single-shaped.
func (v Value) IsSingle() bool { return v.single != nil }

// IsEmpty reports whether this Value carries neither shape (the "unset"
// zero value).
func (v Value) IsEmpty() bool { return v.single == nil && v.list == nil }

// AsSingle returns the single value and true, or ("", false) if this
// Value is not single-shaped.
func (v Value) AsSingle() (string, bool) {
	if v.single == nil {
		return "", false
	}
	return *v.single, true
}

// AsList returns the list value and true, or (nil, false) if this
// Value is not list-shaped.
func (v Value) AsList() ([]string, bool) {
	if v.list == nil {
		return nil, false
	}
	out := make([]string, len(v.list))
	copy(out, v.list)
	return out, true
}

// Elements returns every scalar carried by this Value, for shape-agnostic
// element-wise checks (domain validation, formatting joins).
func (v Value) Elements() []string {
	if v.single != nil {
		return []string{*v.single}
	}
	return v.list
}

// Option is a name paired with an optional Value. A nil Value means
// "unset; use default if any" per spec.md §3.
type Option struct {
	Name  string
	Value *Value
}
