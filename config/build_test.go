/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
 */

package config

import (
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/RolandTaverner/PraeTor-sub000/option"
)

// sortRawPreset gives BuildPresetDefinition/DefinitionToRawPreset's
// map-iteration order a stable shape before comparing, since Go maps
// don't preserve insertion order.
func sortRawPreset(r RawPreset) RawPreset {
	sort.Slice(r.Processes, func(i, j int) bool { return r.Processes[i].Name < r.Processes[j].Name })
	for i := range r.Processes {
		sort.Slice(r.Processes[i].Schemes, func(a, b int) bool {
			return r.Processes[i].Schemes[a].Name < r.Processes[i].Schemes[b].Name
		})
		for j := range r.Processes[i].Schemes {
			opts := r.Processes[i].Schemes[j].Options
			sort.Slice(opts, func(a, b int) bool { return opts[a].Name < opts[b].Name })
		}
	}
	return r
}

func TestPresetDefinition_RoundTrip(t *testing.T) {
	original := sortRawPreset(RawPreset{
		Name: "prod",
		Processes: []RawPresetProcess{
			{
				Name: "relay",
				Schemes: []RawPresetScheme{
					{
						Name: "torrc",
						Options: []RawPresetOption{
							{Name: "ORPort", Value: strPtr("9001")},
							{Name: "ExitPolicy", Array: []string{"accept *:80", "reject *:*"}},
							{Name: "Nickname"},
						},
					},
				},
			},
		},
	})

	def := BuildPresetDefinition(original)
	roundTripped := sortRawPreset(DefinitionToRawPreset(original.Name, def))

	if diff := cmp.Diff(original, roundTripped); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestPresetDefinition_NoValueOption_SerializesBare(t *testing.T) {
	def := map[string]map[string]map[string]option.Value{
		"relay": {"torrc": {"Nickname": {}}},
	}
	raw := DefinitionToRawPreset("prod", def)
	require.Len(t, raw.Processes, 1)
	require.Len(t, raw.Processes[0].Schemes[0].Options, 1)
	opt := raw.Processes[0].Schemes[0].Options[0]
	require.Nil(t, opt.Value)
	require.Nil(t, opt.Array)
}

func strPtr(s string) *string { return &s }
