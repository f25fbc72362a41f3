package keypath

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyPath is returned when parsing an empty path string.
var ErrEmptyPath = errors.New("empty key path")

// Path is an ordered list of segments addressing a nested location
// in a JSON-like object tree.
type Path struct {
	segments []string
}

// Parse parses a dotted path string into a Path.
// Supports: "name", "nested.name", "location.latitude".
func Parse(path string) (Path, error) {
	if path == "" {
		return Path{}, ErrEmptyPath
	}

	var segments []string

	parts := strings.Split(path, ".")

	for _, part := range parts {
		if part == "" {
			return Path{}, fmt.Errorf("invalid key path %q: empty segment", path)
		}

		segments = append(segments, part)
	}

	return Path{segments: segments}, nil
}

// MustParse parses a dotted path string and panics on failure.
// Intended for descriptor construction with literal paths.
func MustParse(path string) Path {
	p, err := Parse(path)
	if err != nil {
		panic(err)
	}

	return p
}

// Segments returns the path's segments in order.
func (p Path) Segments() []string {
	return p.segments
}

// Len returns the number of segments.
func (p Path) Len() int {
	return len(p.segments)
}

// IsZero returns true for the zero Path (no segments).
func (p Path) IsZero() bool {
	return len(p.segments) == 0
}

// String returns the dotted form of the path.
func (p Path) String() string {
	return strings.Join(p.segments, ".")
}
