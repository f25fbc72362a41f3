package cast

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

var (
	// ErrInvalidJSONDictionary - the input to ModelFromObject is not a JSON
	// object, or a value-mapping transform received an unmapped value with
	// no default declared.
	ErrInvalidJSONDictionary = errors.New("invalid JSON dictionary")

	// ErrNoClassFound - class-cluster resolution yielded no concrete
	// descriptor, including resolving an abstract descriptor directly.
	ErrNoClassFound = errors.New("no suitable model class found")

	// ErrModelConstruction - constructing or populating the model instance
	// failed unexpectedly (e.g. a value of the wrong type for the field).
	ErrModelConstruction = errors.New("model construction failed")

	// ErrMaxDepthExceeded - the input tree nests deeper than the adapter's
	// configured limit.
	ErrMaxDepthExceeded = errors.New("maximum nesting depth exceeded")

	// ErrTransformer matches any TransformerError via errors.Is.
	ErrTransformer = errors.New("transformer failed")
)

// Direction identifies which half of a transformer ran.
type Direction int

const (
	// DirectionForward - JSON value to property value.
	DirectionForward Direction = iota
	// DirectionReverse - property value to JSON value.
	DirectionReverse
)

// String returns a human-readable direction name.
func (d Direction) String() string {
	switch d {
	case DirectionForward:
		return "forward"
	case DirectionReverse:
		return "reverse"
	default:
		return "unknown"
	}
}

// TransformerError reports a transformer failure for a single property,
// carrying the property name and the underlying cause.
type TransformerError struct {
	Property  string
	Direction Direction
	Cause     error
}

func (e *TransformerError) Error() string {
	return fmt.Sprintf("%s transform of property %q failed: %v", e.Direction, e.Property, e.Cause)
}

// Unwrap exposes the underlying cause to errors.Is / errors.As.
func (e *TransformerError) Unwrap() error {
	return e.Cause
}

// Is lets errors.Is(err, ErrTransformer) match any transformer failure.
func (e *TransformerError) Is(target error) bool {
	return target == ErrTransformer
}

func newTransformerError(property string, direction Direction, cause error) error {
	return &TransformerError{Property: property, Direction: direction, Cause: cause}
}
