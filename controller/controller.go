/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
 */

// Package controller implements the process registry and preset store
// of spec.md §4.C6 (and, via preset.go, §4.C5): the sole public entry
// point for process-lifecycle and option-manipulation actions, every
// action completed by posting to a scheduler.Scheduler rather than
// invoking the caller synchronously under the controller's lock.
// Grounded on
// _examples/original_source/TorController/Controller/Controller.cpp.
package controller

import (
	"os"
	"sort"
	"sync"

	"github.com/RolandTaverner/PraeTor-sub000/errors"
	"github.com/RolandTaverner/PraeTor-sub000/option"
	"github.com/RolandTaverner/PraeTor-sub000/process"
	"github.com/RolandTaverner/PraeTor-sub000/scheduler"
)

// Controller is the registry of processes plus the preset store,
// dispatching every action through sched (spec.md §4.C6).
type Controller struct {
	mu sync.RWMutex

	processes map[string]*process.Process
	presets   map[string]PresetGroup

	sched *scheduler.Scheduler
}

// New returns an empty Controller backed by sched.
func New(sched *scheduler.Scheduler) *Controller {
	return &Controller{
		processes: make(map[string]*process.Process),
		presets:   make(map[string]PresetGroup),
		sched:     sched,
	}
}

// Register adds p to the process registry. Intended for startup
// wiring only, before the controller serves requests.
func (c *Controller) Register(p *process.Process) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.processes[p.Name()] = p
}

// RegisterPreset adds a loaded PresetGroup to the preset store.
// Intended for startup wiring only.
func (c *Controller) RegisterPreset(g PresetGroup) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.presets[g.Name] = g
}

func (c *Controller) process(name string) (*process.Process, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.processes[name]
	if !ok {
		return nil, Err(ProcessNotFound, name)
	}
	return p, nil
}

func (c *Controller) preset(group string) (PresetGroup, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	g, ok := c.presets[group]
	if !ok {
		return PresetGroup{}, Err(PresetsNotFound, group)
	}
	return g, nil
}

// deliver posts result to the scheduler's completion, honoring
// spec.md §4.C6 step 3: never invoke the caller synchronously under
// the controller's lock.
func (c *Controller) deliver(fn func()) {
	c.sched.Post(fn)
}

// ControllerInfo is the result of GetControllerInfo.
type ControllerInfo struct {
	PID int
}

// GetControllerInfo returns this host process's identity.
func (c *Controller) GetControllerInfo(done func(ControllerInfo, error)) {
	info := ControllerInfo{PID: os.Getpid()}
	c.deliver(func() { done(info, nil) })
}

// GetProcesses returns every registered process name, alphabetically
// (spec.md §8 scenario 5).
func (c *Controller) GetProcesses(done func([]string, error)) {
	c.mu.RLock()
	names := make([]string, 0, len(c.processes))
	for n := range c.processes {
		names = append(names, n)
	}
	c.mu.RUnlock()
	sort.Strings(names)
	c.deliver(func() { done(names, nil) })
}

// ProcessInfo is the result of GetProcessInfo.
type ProcessInfo struct {
	Name     string
	State    process.State
	Storages []string
}

// GetProcessInfo returns name, current state, and config-storage names
// for one process.
func (c *Controller) GetProcessInfo(name string, done func(ProcessInfo, error)) {
	p, err := c.process(name)
	if err != nil {
		c.deliver(func() { done(ProcessInfo{}, err) })
		return
	}
	info := ProcessInfo{Name: p.Name(), State: p.State(), Storages: p.StorageNames()}
	c.deliver(func() { done(info, nil) })
}

// GetProcessConfigs returns the storage names of one process.
func (c *Controller) GetProcessConfigs(name string, done func([]string, error)) {
	p, err := c.process(name)
	if err != nil {
		c.deliver(func() { done(nil, err) })
		return
	}
	names := p.StorageNames()
	c.deliver(func() { done(names, nil) })
}

// GetProcessConfig returns the option names declared by one storage.
func (c *Controller) GetProcessConfig(name, storage string, done func([]string, error)) {
	p, err := c.process(name)
	if err != nil {
		c.deliver(func() { done(nil, err) })
		return
	}
	names, err := p.StorageOptionNames(storage)
	c.deliver(func() { done(names, err) })
}

// OptionResult is the typed result shared by GetProcessOption,
// SetProcessOption, and RemoveProcessOption (spec.md §4.C6).
type OptionResult struct {
	Name     string
	Rendered string
	HasValue bool
	Required bool
	List     bool
	System   bool
}

// GetProcessOption returns the option descriptor flags, whether the
// option has an effective value (stored or default), and its rendered
// presentation for (name, storage, option). The effective value itself
// is not part of the result.
func (c *Controller) GetProcessOption(name, storage, option string, done func(OptionResult, error)) {
	p, err := c.process(name)
	if err != nil {
		c.deliver(func() { done(OptionResult{}, err) })
		return
	}
	d, v, rendered, err := p.GetOption(storage, option)
	if err != nil {
		c.deliver(func() { done(OptionResult{}, err) })
		return
	}
	res := OptionResult{
		Name:     option,
		Rendered: rendered,
		HasValue: !v.IsEmpty(),
		Required: d.Required,
		List:     d.List,
		System:   d.System,
	}
	c.deliver(func() { done(res, nil) })
}

// SetProcessOption sets (storage, option) to value and returns the
// triple after mutation.
func (c *Controller) SetProcessOption(name, storage, optName string, value option.Value, done func(OptionResult, error)) {
	p, err := c.process(name)
	if err != nil {
		c.deliver(func() { done(OptionResult{}, err) })
		return
	}
	if err := p.SetOptionValue(storage, optName, value); err != nil {
		c.deliver(func() { done(OptionResult{}, err) })
		return
	}
	c.GetProcessOption(name, storage, optName, done)
}

// RemoveProcessOption reverts (storage, option) to its default (or
// unset) and returns the triple after mutation.
func (c *Controller) RemoveProcessOption(name, storage, option string, done func(OptionResult, error)) {
	p, err := c.process(name)
	if err != nil {
		c.deliver(func() { done(OptionResult{}, err) })
		return
	}
	if err := p.RemoveOptionValue(storage, option); err != nil {
		c.deliver(func() { done(OptionResult{}, err) })
		return
	}
	c.GetProcessOption(name, storage, option, done)
}

// StartProcess starts one process; see process.Process.Start for the
// state-machine transitions (spec.md §4.C4).
func (c *Controller) StartProcess(name string, done func(process.State, error)) {
	p, err := c.process(name)
	if err != nil {
		c.deliver(func() { done(process.Stopped, err) })
		return
	}
	err = p.Start(func(process.ExitStatus) {})
	state := p.State()
	c.deliver(func() { done(state, err) })
}

// StopProcess stops one process.
func (c *Controller) StopProcess(name string, done func(process.State, error)) {
	p, err := c.process(name)
	if err != nil {
		c.deliver(func() { done(process.Stopped, err) })
		return
	}
	err = p.Stop()
	state := p.State()
	c.deliver(func() { done(state, err) })
}

// GetProcessLog returns the current log contents, one entry per line.
func (c *Controller) GetProcessLog(name string, done func([]string, error)) {
	p, err := c.process(name)
	if err != nil {
		c.deliver(func() { done(nil, err) })
		return
	}
	lines, err := p.Log()
	c.deliver(func() { done(lines, err) })
}

// GetPresetGroups enumerates every loaded preset group's name.
func (c *Controller) GetPresetGroups(done func([]string, error)) {
	c.mu.RLock()
	names := make([]string, 0, len(c.presets))
	for n := range c.presets {
		names = append(names, n)
	}
	c.mu.RUnlock()
	sort.Strings(names)
	c.deliver(func() { done(names, nil) })
}

// GetPresets returns the detail of one preset group.
func (c *Controller) GetPresets(group string, done func(PresetGroup, error)) {
	g, err := c.preset(group)
	c.deliver(func() { done(g, err) })
}
