package cast_test

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"modelcast/cast"
)

type flatModel struct {
	Name       string
	NestedName string
	Count      int
	Tags       []string
}

func flatDescriptor(t *testing.T) *cast.Descriptor {
	t.Helper()

	desc, err := cast.NewDescriptor(&flatModel{},
		cast.Map("Name", "name"),
		cast.Map("NestedName", "nested.name"),
		cast.Map("Count", "count"),
		cast.Map("Tags", "tags"),
	)
	require.NoError(t, err)

	return desc
}

func TestModelFromObjectInvalidInput(t *testing.T) {
	desc := flatDescriptor(t)

	for _, input := range []any{nil, "string", float64(42), []any{}} {
		_, err := cast.ModelFromObject(input, desc)
		require.Error(t, err, "input %v", input)
		assert.ErrorIs(t, err, cast.ErrInvalidJSONDictionary)
	}
}

func TestModelFromObjectPopulates(t *testing.T) {
	m, err := cast.ModelFromObject(map[string]any{
		"name":   "john",
		"nested": map[string]any{"name": "doe"},
		"count":  float64(5),
		"tags":   []any{"a", "b"},
	}, flatDescriptor(t))
	require.NoError(t, err)

	flat := m.(*flatModel)
	assert.Equal(t, "john", flat.Name)
	assert.Equal(t, "doe", flat.NestedName)
	assert.Equal(t, 5, flat.Count)
	assert.Equal(t, []string{"a", "b"}, flat.Tags)
}

func TestAbsentLeavesZeroValue(t *testing.T) {
	m, err := cast.ModelFromObject(map[string]any{
		"name": "john",
	}, flatDescriptor(t))
	require.NoError(t, err)

	flat := m.(*flatModel)
	assert.Equal(t, "john", flat.Name)
	assert.Empty(t, flat.NestedName)
	assert.Zero(t, flat.Count)
	assert.Nil(t, flat.Tags)
}

func TestExtraneousKeysIgnored(t *testing.T) {
	m, err := cast.ModelFromObject(map[string]any{
		"name":    "john",
		"unknown": "ignored",
		"extra":   map[string]any{"deep": true},
	}, flatDescriptor(t))
	require.NoError(t, err)

	assert.Equal(t, "john", m.(*flatModel).Name)
}

// Absent and explicit null are distinct: null reaches the transformer,
// absent skips it entirely.
func TestAbsentVsNull(t *testing.T) {
	type holder struct {
		Value any
	}

	var calls []any

	desc, err := cast.NewDescriptor(&holder{},
		cast.MapWith("Value", "nested", cast.ForwardOnly(func(v any) (any, error) {
			calls = append(calls, v)
			return v, nil
		})),
	)
	require.NoError(t, err)

	_, err = cast.ModelFromObject(map[string]any{"nested": nil}, desc)
	require.NoError(t, err)
	assert.Equal(t, []any{nil}, calls, "explicit null reaches the transformer")

	calls = nil

	_, err = cast.ModelFromObject(map[string]any{}, desc)
	require.NoError(t, err)
	assert.Empty(t, calls, "absent key skips the transformer")
}

func TestRoundTrip(t *testing.T) {
	desc := flatDescriptor(t)

	json := map[string]any{
		"name":   "john",
		"nested": map[string]any{"name": "doe"},
		"count":  float64(5),
		"tags":   []any{"a", "b"},
	}

	m, err := cast.ModelFromObject(json, desc)
	require.NoError(t, err)

	out, err := cast.ObjectFromModel(m, desc)
	require.NoError(t, err)
	assert.Equal(t, json, out)
}

// Numeric fields serialize back in parser shape (float64), so a decoded
// document round-trips even though the struct holds typed integers.
func TestNumericFieldsSerializeAsFloat64(t *testing.T) {
	desc := flatDescriptor(t)

	m, err := cast.ModelFromObject(map[string]any{"count": float64(70)}, desc)
	require.NoError(t, err)
	assert.Equal(t, 70, m.(*flatModel).Count)

	out, err := cast.ObjectFromModel(m, desc)
	require.NoError(t, err)
	assert.Equal(t, float64(70), out["count"])
}

func TestObjectFromModelRejectsWrongType(t *testing.T) {
	type other struct{ Name string }

	_, err := cast.ObjectFromModel(&other{}, flatDescriptor(t))
	require.Error(t, err)

	_, err = cast.ObjectFromModel(nil, flatDescriptor(t))
	require.Error(t, err)
}

func TestSharedPathLastRegisteredWins(t *testing.T) {
	type pair struct {
		First  string
		Second string
	}

	desc, err := cast.NewDescriptor(&pair{},
		cast.Map("First", "shared"),
		cast.Map("Second", "shared"),
	)
	require.NoError(t, err)

	// Both read the same source key.
	m, err := cast.ModelFromObject(map[string]any{"shared": "v"}, desc)
	require.NoError(t, err)
	assert.Equal(t, &pair{First: "v", Second: "v"}, m)

	// On serialization the later registered property wins the path.
	out, err := cast.ObjectFromModel(&pair{First: "a", Second: "b"}, desc)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"shared": "b"}, out)
}

func TestTransformerFailureAbortsForward(t *testing.T) {
	type holder struct {
		Value string
	}

	boom := errors.New("boom")

	desc, err := cast.NewDescriptor(&holder{},
		cast.MapWith("Value", "value", cast.ForwardOnly(func(any) (any, error) {
			return nil, boom
		})),
	)
	require.NoError(t, err)

	m, err := cast.ModelFromObject(map[string]any{"value": "x"}, desc)
	require.Error(t, err)
	assert.Nil(t, m, "no model on failure")
	assert.ErrorIs(t, err, cast.ErrTransformer)
	assert.ErrorIs(t, err, boom, "underlying cause preserved")

	var terr *cast.TransformerError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, "Value", terr.Property)
	assert.Equal(t, cast.DirectionForward, terr.Direction)
}

func TestTransformerFailureAbortsReverse(t *testing.T) {
	type holder struct {
		Value string
	}

	boom := errors.New("boom")

	desc, err := cast.NewDescriptor(&holder{},
		cast.MapWith("Value", "value", cast.ReverseOnly(func(any) (any, error) {
			return nil, boom
		})),
	)
	require.NoError(t, err)

	out, err := cast.ObjectFromModel(&holder{Value: "x"}, desc)
	require.Error(t, err)
	assert.Nil(t, out, "no partial object on failure")

	var terr *cast.TransformerError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, "Value", terr.Property)
	assert.Equal(t, cast.DirectionReverse, terr.Direction)
}

func TestWrongValueTypeFailsConstruction(t *testing.T) {
	desc := flatDescriptor(t)

	_, err := cast.ModelFromObject(map[string]any{
		"count": "not a number",
	}, desc)
	require.Error(t, err)
	assert.ErrorIs(t, err, cast.ErrModelConstruction)
	assert.ErrorContains(t, err, "Count")
}

func TestMaxDepthGuard(t *testing.T) {
	adapter := cast.NewAdapter(cast.WithMaxDepth(3), cast.WithLogger(zaptest.NewLogger(t)))
	desc := flatDescriptor(t)

	shallow := map[string]any{"nested": map[string]any{"name": "ok"}}
	_, err := adapter.ModelFromObject(shallow, desc)
	require.NoError(t, err)

	deep := map[string]any{}
	current := deep

	for i := 0; i < 10; i++ {
		next := map[string]any{}
		current["down"] = next
		current = next
	}

	_, err = adapter.ModelFromObject(deep, desc)
	require.Error(t, err)
	assert.ErrorIs(t, err, cast.ErrMaxDepthExceeded)
}

type chainNode struct {
	Value string
	Child *chainNode
}

func chainDescriptor() *cast.Descriptor {
	var desc *cast.Descriptor

	desc = cast.MustDescriptor(&chainNode{},
		cast.Map("Value", "value"),
		cast.MapWith("Child", "child", cast.ObjectRef(func() *cast.Descriptor { return desc })),
	)

	return desc
}

// The adapter's depth limit governs nested Object conversions too, not
// just the entry point.
func TestMaxDepthAppliesToNestedConversions(t *testing.T) {
	desc := chainDescriptor()

	obj := map[string]any{"value": "leaf"}
	for i := 0; i < 600; i++ {
		obj = map[string]any{"value": "node", "child": obj}
	}

	adapter := cast.NewAdapter(cast.WithMaxDepth(2000), cast.WithLogger(zaptest.NewLogger(t)))

	m, err := adapter.ModelFromObject(obj, desc)
	require.NoError(t, err)

	depth := 0
	for node := m.(*chainNode); node != nil; node = node.Child {
		depth++
	}

	assert.Equal(t, 601, depth)

	// The same input still trips a limit below its nesting depth.
	_, err = cast.NewAdapter(cast.WithMaxDepth(100)).ModelFromObject(obj, desc)
	require.Error(t, err)
	assert.ErrorIs(t, err, cast.ErrMaxDepthExceeded)
}

func TestBulkFromArrayFailFast(t *testing.T) {
	desc := flatDescriptor(t)

	models, err := cast.ModelsFromArray([]any{
		map[string]any{"name": "ok"},
		"not an object",
	}, desc)

	require.Error(t, err)
	assert.Nil(t, models)
	assert.ErrorIs(t, err, cast.ErrInvalidJSONDictionary)
	assert.ErrorContains(t, err, "element 1")
}

func TestBulkFromArrayRejectsNonArray(t *testing.T) {
	_, err := cast.ModelsFromArray(map[string]any{}, flatDescriptor(t))
	require.Error(t, err)
	assert.ErrorIs(t, err, cast.ErrInvalidJSONDictionary)
}

func TestBulkToArrayFailFast(t *testing.T) {
	type holder struct {
		Value string
	}

	desc, err := cast.NewDescriptor(&holder{},
		cast.MapWith("Value", "value", cast.ReverseOnly(func(v any) (any, error) {
			if v == "bad" {
				return nil, errors.New("boom")
			}

			return v, nil
		})),
	)
	require.NoError(t, err)

	arr, err := cast.ArrayFromModels([]any{
		&holder{Value: "ok"},
		&holder{Value: "bad"},
	}, desc)

	require.Error(t, err)
	assert.Nil(t, arr)
	assert.ErrorContains(t, err, "element 1")
}

func TestNilableNullRoundTrip(t *testing.T) {
	type holder struct {
		Nested *flatModel
	}

	desc, err := cast.NewDescriptor(&holder{},
		cast.MapWith("Nested", "nested", cast.Object(flatDescriptor(t))),
	)
	require.NoError(t, err)

	m, err := cast.ModelFromObject(map[string]any{"nested": nil}, desc)
	require.NoError(t, err)
	assert.Nil(t, m.(*holder).Nested)

	out, err := cast.ObjectFromModel(m, desc)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"nested": nil}, out)
}
