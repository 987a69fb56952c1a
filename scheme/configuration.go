/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
 */

package scheme

// Names of the two distinguished storages every process may carry
// (spec.md §3): cmdline supplies launch arguments, config is rendered
// to a file.
const (
	StorageCmdline = "cmdline"
	StorageConfig  = "config"
)

// Configuration maps a storage name (cmdline, config, or a per-process
// extra) to the Storage bound to its scheme.
type Configuration map[string]*Storage

// Clone deep-copies every Storage in the configuration, keeping each
// bound to its original scheme. Used by process.Process.Storages, which
// preset loading and application read from (spec.md §4.C5).
func (c Configuration) Clone() Configuration {
	out := make(Configuration, len(c))
	for name, st := range c {
		out[name] = st.Clone()
	}
	return out
}

// Names returns every storage name in c, order not significant.
func (c Configuration) Names() []string {
	out := make([]string, 0, len(c))
	for name := range c {
		out = append(out, name)
	}
	return out
}
