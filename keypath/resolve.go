package keypath

// Resolution classifies the outcome of reading a path from a tree.
type Resolution int

const (
	// Absent - the key is missing at some level, or an intermediate
	// value is not a traversable object.
	Absent Resolution = iota
	// Present - a value exists at the path. The value may be nil,
	// which is how JSON null is reported.
	Present
)

// String returns a human-readable resolution name.
func (r Resolution) String() string {
	switch r {
	case Absent:
		return "absent"
	case Present:
		return "present"
	default:
		return "unknown"
	}
}

// Get walks root along the path and returns the value found there.
// A missing key or a non-object intermediate value yields Absent.
// Present with a nil value means the tree holds an explicit JSON null.
func Get(root map[string]any, p Path) (any, Resolution) {
	if root == nil || p.IsZero() {
		return nil, Absent
	}

	current := root

	last := len(p.segments) - 1
	for i, segment := range p.segments {
		value, ok := current[segment]
		if !ok {
			return nil, Absent
		}

		if i == last {
			return value, Present
		}

		next, ok := value.(map[string]any)
		if !ok {
			// Parent is not traversable; treated the same as missing.
			return nil, Absent
		}

		current = next
	}

	return nil, Absent
}

// Set writes value into root at the path, creating intermediate objects
// for every non-final segment that is missing or not an object. Sibling
// keys of existing intermediate objects are preserved.
func Set(root map[string]any, p Path, value any) {
	if root == nil || p.IsZero() {
		return
	}

	current := root

	last := len(p.segments) - 1
	for _, segment := range p.segments[:last] {
		next, ok := current[segment].(map[string]any)
		if !ok {
			next = make(map[string]any)
			current[segment] = next
		}

		current = next
	}

	current[p.segments[last]] = value
}
