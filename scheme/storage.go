/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
 */

package scheme

import (
	"sync"

	"github.com/RolandTaverner/PraeTor-sub000/option"
)

// Storage is a mutable binding of option names to currently-set values,
// owned by and validated against a ConfigScheme (spec.md §3
// OptionsStorage).
type Storage struct {
	mu     sync.RWMutex
	scheme *ConfigScheme
	values map[string]option.Value
}

// NewStorage returns an empty Storage bound to scheme.
func NewStorage(scheme *ConfigScheme) *Storage {
	return &Storage{scheme: scheme, values: make(map[string]option.Value)}
}

// Scheme returns the ConfigScheme this Storage is bound to.
func (s *Storage) Scheme() *ConfigScheme { return s.scheme }

// Set validates v against the scheme and, if it passes, records it for
// name. Name matching is case-insensitive (spec.md §4.C2), so a prior
// Set("Timeout", ...) is overwritten by a later Set("timeout", ...).
// System options may still be read but the caller decides whether
// to reject mutation (process.Process enforces this at the API
// boundary, see spec.md §4.C4).
func (s *Storage) Set(name string, v option.Value) error {
	if err := s.scheme.CheckOption(option.Option{Name: name, Value: &v}); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[normalizeName(name)] = v
	return nil
}

// Remove reverts name to its default (if any) or unset.
func (s *Storage) Remove(name string) error {
	if _, err := s.scheme.Desc(name); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, normalizeName(name))
	return nil
}

// HasValue reports whether name has an explicitly-set value (as opposed
// to falling back to its default).
func (s *Storage) HasValue(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.values[normalizeName(name)]
	return ok
}

// Effective returns the effective value for name: the explicitly-set
// value if any, else the scheme default, else (zero, false).
func (s *Storage) Effective(name string) (option.Value, bool, error) {
	d, err := s.scheme.Desc(name)
	if err != nil {
		return option.Value{}, false, err
	}

	s.mu.RLock()
	v, ok := s.values[normalizeName(name)]
	s.mu.RUnlock()
	if ok {
		return v, true, nil
	}

	if d.Default != nil {
		return *d.Default, true, nil
	}

	return option.Value{}, false, nil
}

// RequiredMissing returns process.MissingRequiredOption-worthy names:
// every required option in scheme with no effective value. Used by the
// process supervisor before rendering the command line or config file
// (spec.md §4.C4).
func (s *Storage) RequiredMissing() []string {
	var out []string
	for _, d := range s.scheme.Filter(func(d option.Desc) bool { return d.Required }) {
		if _, ok, _ := s.Effective(d.Name); !ok {
			out = append(out, d.Name)
		}
	}
	return out
}

// Names returns every option name in the bound scheme, in scheme order
// — not just those explicitly set.
func (s *Storage) Names() []string {
	return s.scheme.Names()
}

// Clone returns a new Storage bound to the same scheme, with every
// currently-set value copied. Used when applying preset overlays
// (spec.md §4.C5) or reloading a process's configuration.
func (s *Storage) Clone() *Storage {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := NewStorage(s.scheme)
	for k, v := range s.values {
		out.values[k] = v
	}
	return out
}
