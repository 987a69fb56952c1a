/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
 */

package config

import (
	"time"

	"github.com/spf13/viper"
)

// Source wraps the viper.Viper instance the core reads from. A thin
// wrapper rather than a bare *viper.Viper field so call sites name the
// dependency the way the rest of the core names its collaborators.
type Source struct {
	v *viper.Viper
}

// NewSource builds a Source reading the file at path (any format
// viper supports: yaml, json, toml) merged over process environment
// variables under the PRAETOR_ prefix.
func NewSource(path string) (*Source, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("PRAETOR")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}
	return &Source{v: v}, nil
}

// Root decodes the run.* keys this core consumes.
func (s *Source) Root() (RawRoot, error) {
	var root RawRoot
	root.Logger = s.v.GetString("run.logger")
	err := s.v.UnmarshalKey("run.httpserver", &root.HTTPServer)
	return root, err
}

// Processes decodes every
// serviceconfig.controller.processes.process entry.
func (s *Source) Processes() ([]RawProcess, error) {
	var procs []RawProcess
	err := s.v.UnmarshalKey("serviceconfig.controller.processes.process", &procs)
	return procs, err
}

// Presets decodes every serviceconfig.controller.presets.preset entry.
func (s *Source) Presets() ([]RawPreset, error) {
	var presets []RawPreset
	err := s.v.UnmarshalKey("serviceconfig.controller.presets.preset", &presets)
	return presets, err
}

// HTTPServerTimeout converts the decoded integer (seconds) into a
// time.Duration for webfront.Config.
func (h RawHTTPServer) HTTPServerTimeout() time.Duration {
	return time.Duration(h.Timeout) * time.Second
}
