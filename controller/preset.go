/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
 */

// Presets (spec.md §4.C5) live in the controller package rather than
// their own package: the original source places Presets.cpp inside
// the Controller/ directory alongside Controller.cpp
// (_examples/original_source/TorController/Controller/Presets.cpp),
// and presetsNotFound/processNotFound/processIsRunning are
// ControllerErrors codes that preset load/apply must raise directly —
// a separate preset package would need to import controller for those
// codes while controller needs preset's types, an import cycle this
// layering avoids.
package controller

import (
	"github.com/RolandTaverner/PraeTor-sub000/option"
	"github.com/RolandTaverner/PraeTor-sub000/process"
	"github.com/RolandTaverner/PraeTor-sub000/scheme"
)

// PresetGroup is a named collection of per-process configuration
// overlays (spec.md §3 "PresetGroup"): only the options a preset
// wants to set are present; absent options mean "leave unchanged".
type PresetGroup struct {
	Name      string
	Processes map[string]scheme.Configuration
}

// LoadPresetGroup validates a declarative preset definition against
// the running controller: every referenced process, storage, and
// option must exist. emptyPreserving additionally materializes an
// empty overlay for every (process, storage) pair the controller
// knows about, even if the definition says nothing about it, so later
// edits have somewhere to write (spec.md §4.C5).
func (c *Controller) LoadPresetGroup(name string, def map[string]map[string]map[string]option.Value, emptyPreserving bool) (PresetGroup, error) {
	g := PresetGroup{Name: name, Processes: make(map[string]scheme.Configuration)}

	for procName, storages := range def {
		p, err := c.process(procName)
		if err != nil {
			return PresetGroup{}, err
		}

		overlay := make(scheme.Configuration)
		current := p.Storages()

		for storageName, options := range storages {
			st, ok := current[storageName]
			if !ok {
				return PresetGroup{}, process.Err(process.NoSuchStorage, storageName)
			}
			out := scheme.NewStorage(st.Scheme())
			for optName, v := range options {
				if _, err := st.Scheme().Desc(optName); err != nil {
					return PresetGroup{}, process.Err(process.NoSuchOption, optName)
				}
				if err := out.Set(optName, v); err != nil {
					return PresetGroup{}, err
				}
			}
			overlay[storageName] = out
		}

		if emptyPreserving {
			for storageName, st := range current {
				if _, ok := overlay[storageName]; !ok {
					overlay[storageName] = scheme.NewStorage(st.Scheme())
				}
			}
		}

		g.Processes[procName] = overlay
	}

	return g, nil
}

// ApplyPresetGroup applies a loaded preset group: for each target
// process, refuses if not Stopped (processIsRunning); otherwise builds
// a fresh OptionsStorage per storage (bound to the existing scheme,
// copying current values, then overlaying the preset's options) and
// atomically replaces the process's storages (spec.md §4.C5).
func (c *Controller) ApplyPresetGroup(group string, done func(error)) {
	g, err := c.preset(group)
	if err != nil {
		c.deliver(func() { done(err) })
		return
	}

	for procName, overlay := range g.Processes {
		p, err := c.process(procName)
		if err != nil {
			c.deliver(func() { done(err) })
			return
		}
		if p.State() != process.Stopped {
			c.deliver(func() { done(Err(ProcessIsRunning, procName)) })
			return
		}

		replacement := make(scheme.Configuration)
		for storageName, current := range p.Storages() {
			next := current.Clone()
			if ov, ok := overlay[storageName]; ok {
				for _, optName := range ov.Names() {
					if !ov.HasValue(optName) {
						continue
					}
					v, _, _ := ov.Effective(optName)
					if err := next.Set(optName, v); err != nil {
						c.deliver(func() { done(err) })
						return
					}
				}
			}
			replacement[storageName] = next
		}

		if err := p.ReplaceConfiguration(replacement); err != nil {
			c.deliver(func() { done(err) })
			return
		}
	}

	c.deliver(func() { done(nil) })
}
