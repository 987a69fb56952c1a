/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
 */

package option

// Constraint is a predicate over a whole Option value. ConfigScheme
// collects every failing Constraint before raising ConstraintCheckFailed,
// per spec.md §8's "carries the full set of failing constraints"
// testable property. Grounded on
// _examples/original_source/TorController/Options/ConfigScheme.cpp
// checkOption.
type Constraint interface {
	Name() string
	Valid(v Value) bool
}

// Format is the per-option render template (spec.md §4.C3): a template
// string recognizing %NAME%/%VALUE% value placeholders plus the closed
// substitution-tag vocabulary resolved by the process at render time,
// and a Multiline flag controlling per-element emission of list values.
type Format struct {
	Template  string
	Multiline bool
}

// Desc is the immutable schema entry for one option (spec.md §3
// OptionDesc).
type Desc struct {
	Name        string
	Default     *Value
	Required    bool
	List        bool // list-shape flag; every assigned Value must match
	System      bool // non-editable through the public API
	Domain      []string
	Constraints []Constraint
	Format      Format
}

// shapeMatches reports whether v's shape agrees with this Desc's
// List flag.
func (d Desc) shapeMatches(v Value) bool {
	if v.IsList() {
		return d.List
	}
	return !d.List
}

// CheckDomain validates every element of v against d.Domain when a
// domain is declared; an empty Domain slice means "no domain
// restriction".
func (d Desc) CheckDomain(v Value) bool {
	if len(d.Domain) == 0 {
		return true
	}
	for _, e := range v.Elements() {
		found := false
		for _, allowed := range d.Domain {
			if e == allowed {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// FailingConstraints returns the subset of d.Constraints that reject v.
func (d Desc) FailingConstraints(v Value) []Constraint {
	var failed []Constraint
	for _, c := range d.Constraints {
		if !c.Valid(v) {
			failed = append(failed, c)
		}
	}
	return failed
}
