/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
 */

package config

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/RolandTaverner/PraeTor-sub000/logger"
	"github.com/RolandTaverner/PraeTor-sub000/option"
	"github.com/RolandTaverner/PraeTor-sub000/process"
	"github.com/RolandTaverner/PraeTor-sub000/scheduler"
	"github.com/RolandTaverner/PraeTor-sub000/scheme"
)

var rangeExpr = regexp.MustCompile(`^range\[(-?\d+)\.\.(-?\d+)\]$`)

// buildConstraint parses a declarative constraint expression into an
// option.Constraint. "range[min..max]" is the only vocabulary spec.md
// §8 scenario 2 requires; unrecognized expressions are rejected at
// load time rather than silently ignored, matching the closed
// template vocabulary discipline of scheme.Render (spec.md §9).
func buildConstraint(c RawConstraint) (option.Constraint, error) {
	if m := rangeExpr.FindStringSubmatch(c.Expr); m != nil {
		min, _ := strconv.Atoi(m[1])
		max, _ := strconv.Atoi(m[2])
		return option.RangeConstraint{Min: min, Max: max}, nil
	}
	if c.Expr == "nonempty" {
		return option.NonEmptyConstraint{}, nil
	}
	return nil, fmt.Errorf("unrecognized constraint expression %q", c.Expr)
}

func buildValue(rv *RawValue, list bool) *option.Value {
	if rv == nil {
		return nil
	}
	if list {
		v := option.List(rv.List...)
		return &v
	}
	if rv.Single != nil {
		v := option.Single(*rv.Single)
		return &v
	}
	return nil
}

// BuildScheme converts a RawScheme into a scheme.ConfigScheme.
func BuildScheme(raw RawScheme) (*scheme.ConfigScheme, error) {
	s := scheme.New()

	for _, ro := range raw.Options {
		list := ro.Type == "list"

		var constraints []option.Constraint
		for _, rc := range ro.Constraints {
			c, err := buildConstraint(rc)
			if err != nil {
				return nil, err
			}
			constraints = append(constraints, c)
		}

		d := option.Desc{
			Name:        ro.Name,
			Default:     buildValue(ro.Default, list),
			Required:    ro.Required,
			List:        list,
			System:      ro.System,
			Domain:      ro.Domain,
			Constraints: constraints,
			Format:      option.Format{Template: ro.Format, Multiline: ro.Multiline},
		}
		if err := s.Register(d); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// BuildProcess converts a RawProcess into a process.Process, bound to
// freshly-built schemes for every declared storage. sched is the
// worker-pool scheduler the process posts its launch and exit-wait
// onto (spec.md §4.C4/§4.C7) — the same instance the controller holds.
func BuildProcess(raw RawProcess, log logger.Logger, sched *scheduler.Scheduler) (*process.Process, error) {
	storages := make(scheme.Configuration, len(raw.Schemes))
	for _, rs := range raw.Schemes {
		s, err := BuildScheme(rs)
		if err != nil {
			return nil, fmt.Errorf("process %s scheme %s: %w", raw.Name, rs.Name, err)
		}
		storages[rs.Name] = scheme.NewStorage(s)
	}

	return process.New(process.Config{
		Name:       raw.Name,
		Executable: raw.Executable,
		RootDir:    raw.Root,
		DataDir:    raw.Data,
		ArgsPrefix: raw.Args,
		Storages:   storages,
		Log:        log,
		Sched:      sched,
	}), nil
}

// BuildPresetDefinition converts a RawPreset into the declarative
// shape controller.LoadPresetGroup expects: process -> storage ->
// option -> value.
func BuildPresetDefinition(raw RawPreset) map[string]map[string]map[string]option.Value {
	def := make(map[string]map[string]map[string]option.Value, len(raw.Processes))
	for _, rp := range raw.Processes {
		storages := make(map[string]map[string]option.Value, len(rp.Schemes))
		for _, rs := range rp.Schemes {
			opts := make(map[string]option.Value, len(rs.Options))
			for _, ro := range rs.Options {
				switch {
				case len(ro.Array) > 0:
					opts[ro.Name] = option.List(ro.Array...)
				case ro.Value != nil:
					opts[ro.Name] = option.Single(*ro.Value)
				default:
					// a bare name entry: present in the preset but
					// carrying no value of its own (SPEC_FULL.md §4).
					opts[ro.Name] = option.Value{}
				}
			}
			storages[rs.Name] = opts
		}
		def[rp.Name] = storages
	}
	return def
}

// DefinitionToRawPreset is the inverse of BuildPresetDefinition: it
// serializes a declarative preset definition back into the decoded
// shape, e.g. for persisting an in-memory preset edit back to the
// config source. Options with no value serialize as a bare name entry
// (Value == nil, Array == nil), not a null value, matching the
// original's Presets.cpp toConfiguration shape (SPEC_FULL.md §4).
func DefinitionToRawPreset(name string, def map[string]map[string]map[string]option.Value) RawPreset {
	raw := RawPreset{Name: name}
	for procName, storages := range def {
		rp := RawPresetProcess{Name: procName}
		for storageName, opts := range storages {
			rs := RawPresetScheme{Name: storageName}
			for optName, v := range opts {
				ro := RawPresetOption{Name: optName}
				if v.IsList() {
					ro.Array = append([]string(nil), v.Elements()...)
				} else if len(v.Elements()) > 0 {
					single := v.Elements()[0]
					ro.Value = &single
				}
				rs.Options = append(rs.Options, ro)
			}
			rp.Schemes = append(rp.Schemes, rs)
		}
		raw.Processes = append(raw.Processes, rp)
	}
	return raw
}
