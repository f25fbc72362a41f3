package cast_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"modelcast/cast"
	"modelcast/keypath"
)

type descModel struct {
	Name     string
	Age      int
	hidden   string // only here so the unexported-field check has a target
	Location string
}

func TestNewDescriptorValidation(t *testing.T) {
	tests := []struct {
		name    string
		proto   any
		opts    []cast.Option
		wantErr string
	}{
		{
			name:    "non-pointer prototype",
			proto:   descModel{},
			wantErr: "pointer to a struct",
		},
		{
			name:    "nil prototype",
			proto:   nil,
			wantErr: "pointer to a struct",
		},
		{
			name:    "unknown property",
			proto:   &descModel{},
			opts:    []cast.Option{cast.Map("Missing", "missing")},
			wantErr: "not a field",
		},
		{
			name:    "unexported property",
			proto:   &descModel{},
			opts:    []cast.Option{cast.Map("hidden", "hidden")},
			wantErr: "unexported",
		},
		{
			name:    "duplicate mapping",
			proto:   &descModel{},
			opts:    []cast.Option{cast.Map("Name", "a"), cast.Map("Name", "b")},
			wantErr: "mapped twice",
		},
		{
			name:    "bad key path",
			proto:   &descModel{},
			opts:    []cast.Option{cast.Map("Name", "a..b")},
			wantErr: "empty segment",
		},
		{
			name:    "no key paths",
			proto:   &descModel{},
			opts:    []cast.Option{cast.MapPaths("Name")},
			wantErr: "no key paths",
		},
		{
			name:    "transform before map",
			proto:   &descModel{},
			opts:    []cast.Option{cast.Transform("Name", cast.URLValue())},
			wantErr: "unmapped property",
		},
		{
			name:  "multi-keypath without transformer",
			proto: &descModel{},
			opts: []cast.Option{
				cast.MapPaths("Location", "lat", "lon"),
			},
			wantErr: "needs a transformer",
		},
		{
			name:  "merge handler for unmapped property",
			proto: &descModel{},
			opts: []cast.Option{
				cast.Map("Name", "name"),
				cast.Merge("Age", func(dst, src any) error { return nil }),
			},
			wantErr: "unmapped property",
		},
		{
			name:  "validate handler for unmapped property",
			proto: &descModel{},
			opts: []cast.Option{
				cast.Map("Name", "name"),
				cast.Validate("Age", func(m any) error { return nil }),
			},
			wantErr: "unmapped property",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := cast.NewDescriptor(tt.proto, tt.opts...)
			require.Error(t, err)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestDescriptorPreservesOrder(t *testing.T) {
	desc, err := cast.NewDescriptor(&descModel{},
		cast.Map("Age", "age"),
		cast.Map("Name", "name"),
	)
	require.NoError(t, err)

	assert.Equal(t, []string{"Age", "Name"}, desc.PropertyNames())
}

func TestDescriptorKeyPaths(t *testing.T) {
	desc, err := cast.NewDescriptor(&descModel{},
		cast.Map("Name", "nested.name"),
	)
	require.NoError(t, err)

	paths := desc.KeyPaths("Name")
	require.Len(t, paths, 1)
	assert.Equal(t, keypath.MustParse("nested.name"), paths[0])

	assert.Nil(t, desc.KeyPaths("Age"), "unmapped property has no paths")
}

func TestMustDescriptorPanics(t *testing.T) {
	assert.Panics(t, func() {
		cast.MustDescriptor(&descModel{}, cast.Map("Missing", "missing"))
	})
}

func TestAbstractWithoutResolverFails(t *testing.T) {
	desc, err := cast.NewDescriptor(&descModel{}, cast.Abstract())
	require.NoError(t, err)

	_, err = cast.ModelFromObject(map[string]any{}, desc)
	require.Error(t, err)
	assert.ErrorIs(t, err, cast.ErrNoClassFound)
}
