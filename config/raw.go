/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
 */

// Package config loads the hierarchical key/value configuration of
// spec.md §6 via spf13/viper — the external collaborator the core
// treats as out of scope (spec.md §1), decoding it into the option,
// scheme, process, and controller/preset types the core does own.
// Grounded on _examples/nabbar-golib/config/model.go's layering of a
// raw decode step ahead of component construction.
package config

// RawValue is a single option value or list of values as decoded from
// the hierarchical source (spec.md §6 "options.scheme entries").
type RawValue struct {
	Single *string  `mapstructure:"value"`
	List   []string `mapstructure:"values"`
}

// RawConstraint is a declarative constraint reference, e.g.
// "range[1..65535]".
type RawConstraint struct {
	Expr string `mapstructure:"expr"`
}

// RawOption mirrors one option definition inside an options.scheme
// entry (spec.md §6).
type RawOption struct {
	Name        string          `mapstructure:"name"`
	Type        string          `mapstructure:"type"` // "single" | "list"
	Required    bool            `mapstructure:"required"`
	System      bool            `mapstructure:"system"`
	Default     *RawValue       `mapstructure:"default"`
	Domain      []string        `mapstructure:"domain"`
	Constraints []RawConstraint `mapstructure:"constraints"`
	Format      string          `mapstructure:"format"`
	Multiline   bool            `mapstructure:"multiline"`
}

// RawScheme mirrors one options.scheme entry.
type RawScheme struct {
	Name    string      `mapstructure:"name"`
	Options []RawOption `mapstructure:"option"`
}

// RawProcess mirrors one serviceconfig.controller.processes.process
// entry (spec.md §6).
type RawProcess struct {
	Name       string      `mapstructure:"name"`
	Executable string      `mapstructure:"executable"`
	Root       string      `mapstructure:"root"`
	Data       string      `mapstructure:"data"`
	Args       []string    `mapstructure:"args"`
	Schemes    []RawScheme `mapstructure:"scheme"`
}

// RawPresetOption is one option override inside a preset's process/scheme.
type RawPresetOption struct {
	Name  string   `mapstructure:"name"`
	Value *string  `mapstructure:"value"`
	Array []string `mapstructure:"values"`
}

// RawPresetScheme is one (process, scheme) overlay inside a preset.
type RawPresetScheme struct {
	Name    string            `mapstructure:"name"`
	Options []RawPresetOption `mapstructure:"option"`
}

// RawPresetProcess is one process's overlay inside a preset.
type RawPresetProcess struct {
	Name    string            `mapstructure:"name"`
	Schemes []RawPresetScheme `mapstructure:"scheme"`
}

// RawPreset mirrors one serviceconfig.controller.presets.preset entry.
type RawPreset struct {
	Name      string             `mapstructure:"name"`
	Processes []RawPresetProcess `mapstructure:"process"`
}

// RawHTTPServer mirrors run.httpserver.* (spec.md §6).
type RawHTTPServer struct {
	Host            string `mapstructure:"host"`
	Port            string `mapstructure:"port"`
	Timeout         int    `mapstructure:"timeout"`
	ConnectionLimit int    `mapstructure:"connectionlimit"`
	HTTPThreads     int    `mapstructure:"httpthreads"`
	WorkerThreads   int    `mapstructure:"workerthreads"`
}

// RawRoot mirrors the top-level "run" and "serviceconfig" keys this
// core consumes.
type RawRoot struct {
	Logger     string        `mapstructure:"logger"`
	HTTPServer RawHTTPServer `mapstructure:"httpserver"`
}
