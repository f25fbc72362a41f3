package cast_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"modelcast/cast"
)

const mappingYAML = `
version: "1"
properties:
  Name: name
  NestedName: nested.name
  Location: [location.latitude, location.longitude]
`

type yamlModel struct {
	Name       string
	NestedName string
	Location   map[string]any
}

func TestParseMappings(t *testing.T) {
	opts, err := cast.ParseMappings([]byte(mappingYAML))
	require.NoError(t, err)
	require.Len(t, opts, 3)

	desc, err := cast.NewDescriptor(&yamlModel{},
		append(opts, cast.Transform("Location", cast.ForwardAndReversible(
			func(v any) (any, error) { return v, nil },
			func(v any) (any, error) { return v, nil },
		)))...,
	)
	require.NoError(t, err)

	// YAML document order becomes descriptor order.
	assert.Equal(t, []string{"Name", "NestedName", "Location"}, desc.PropertyNames())

	require.Len(t, desc.KeyPaths("Location"), 2)
	assert.Equal(t, "location.latitude", desc.KeyPaths("Location")[0].String())
}

func TestParseMappingsDefaultsVersion(t *testing.T) {
	opts, err := cast.ParseMappings([]byte("properties:\n  Name: name\n"))
	require.NoError(t, err)
	assert.Len(t, opts, 1)
}

func TestParseMappingsRejects(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{name: "unsupported version", yaml: "version: \"2\"\nproperties:\n  Name: name\n"},
		{name: "empty paths", yaml: "properties:\n  Name: \"\"\n"},
		{name: "properties not a mapping", yaml: "properties: [Name]\n"},
		{name: "paths not strings", yaml: "properties:\n  Name: {deep: true}\n"},
		{name: "not yaml", yaml: ":::"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := cast.ParseMappings([]byte(tt.yaml))
			require.Error(t, err)
		})
	}
}

func TestLoadMappings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mappings.yaml")
	require.NoError(t, os.WriteFile(path, []byte(mappingYAML), 0o644))

	opts, err := cast.LoadMappings(path)
	require.NoError(t, err)
	assert.Len(t, opts, 3)

	_, err = cast.LoadMappings(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestPathSpecAccessors(t *testing.T) {
	assert.True(t, cast.PathSpec{}.IsEmpty())
	assert.Empty(t, cast.PathSpec{}.First())
	assert.Equal(t, "a", cast.PathSpec{"a", "b"}.First())
}
