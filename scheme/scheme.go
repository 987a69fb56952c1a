/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
 */

// Package scheme implements the config scheme and option storage of
// spec.md §4.C3: an ordered collection of option.Desc entries (a
// ConfigScheme), the mutable bindings validated against it (a Storage),
// and the template-driven Formatter that renders an option to text.
// Grounded on
// _examples/original_source/TorController/Options/ConfigScheme.cpp and
// OptionsStorage.cpp.
package scheme

import (
	"strings"
	"sync"

	"github.com/RolandTaverner/PraeTor-sub000/option"
)

// normalizeName folds an option name for case-insensitive lookup
// (spec.md §4.C2: "a name (non-empty string, case-insensitive
// match)"). The original Desc.Name casing is preserved as stored and
// returned by Desc/Filter; only the map key is folded.
func normalizeName(name string) string {
	return strings.ToLower(name)
}

// ConfigScheme is an ordered, name-unique (case-insensitively)
// collection of option.Desc entries.
type ConfigScheme struct {
	mu    sync.RWMutex
	order []string
	descs map[string]option.Desc
}

// New returns an empty ConfigScheme.
func New() *ConfigScheme {
	return &ConfigScheme{descs: make(map[string]option.Desc)}
}

// Register adds d to the scheme. Re-registering an existing name fails
// with option.AlreadyRegistered — registration is idempotent only at
// identity, never at value (spec.md §4.C3, §8). Name matching is
// case-insensitive, so "Timeout" and "timeout" are the same option.
func (s *ConfigScheme) Register(d option.Desc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := normalizeName(d.Name)
	if _, ok := s.descs[key]; ok {
		return option.Err(option.AlreadyRegistered, d.Name)
	}

	s.descs[key] = d
	s.order = append(s.order, d.Name)
	return nil
}

// Desc returns the schema entry for name, or option.NotRegistered.
// Lookup is case-insensitive.
func (s *ConfigScheme) Desc(name string) (option.Desc, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.descs[normalizeName(name)]
	if !ok {
		return option.Desc{}, option.Err(option.NotRegistered, name)
	}
	return d, nil
}

// Names returns every registered option name in registration order.
func (s *ConfigScheme) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Filter returns every Desc matching pred, in registration order — used
// e.g. to enumerate "all required options".
func (s *ConfigScheme) Filter(pred func(option.Desc) bool) []option.Desc {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []option.Desc
	for _, n := range s.order {
		if d := s.descs[normalizeName(n)]; pred(d) {
			out = append(out, d)
		}
	}
	return out
}

// CheckOption validates opt's value against its Desc: shape, domain,
// and constraints. Constraint failures carry the full failing set.
func (s *ConfigScheme) CheckOption(opt option.Option) error {
	d, err := s.Desc(opt.Name)
	if err != nil {
		return err
	}

	if opt.Value == nil || opt.Value.IsEmpty() {
		return nil
	}

	v := *opt.Value

	switch {
	case d.List && !v.IsList():
		return option.Err(option.AssigningSingleToListValue, opt.Name)
	case !d.List && v.IsList():
		return option.Err(option.AssigningListToSingleValue, opt.Name)
	}

	if !d.CheckDomain(v) {
		return option.Err(option.TypeCheckFailed, opt.Name)
	}

	if failed := d.FailingConstraints(v); len(failed) > 0 {
		names := make([]string, len(failed))
		for i, c := range failed {
			names[i] = c.Name()
		}
		return option.Err(option.ConstraintCheckFailed, opt.Name+": "+joinNames(names))
	}

	return nil
}

func joinNames(names []string) string {
	out := ""
	for i, n := range names {
		if i > 0 {
			out += ","
		}
		out += n
	}
	return out
}
