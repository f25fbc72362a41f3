package cast

import (
	"os"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

// Key-path mappings can be declared in a YAML document instead of code:
//
//	version: "1"
//	properties:
//	  Name: name
//	  NestedName: nested.name
//	  Location: [location.latitude, location.longitude]
//
// A scalar binds a single key path, a sequence binds a multi-keypath
// property. Document order is preserved and becomes the descriptor's
// property order. Transformers are code and cannot be declared here;
// combine the parsed options with Transform options.

// MappingFile is the parsed form of a YAML key-path mapping document.
type MappingFile struct {
	Version    string       `yaml:"version"`
	Properties PropertyList `yaml:"properties"`
}

// PropertyMapping binds one property name to its key paths.
type PropertyMapping struct {
	Name  string
	Paths PathSpec
}

// PropertyList preserves the document order of the properties mapping.
type PropertyList []PropertyMapping

// PathSpec accepts either a single path string or a sequence of paths.
type PathSpec []string

// UnmarshalYAML decodes the properties mapping node pairwise, keeping
// document order.
func (l *PropertyList) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return errors.Newf("expected mapping of properties, got %v", node.Kind)
	}

	out := make(PropertyList, 0, len(node.Content)/2)

	for i := 0; i+1 < len(node.Content); i += 2 {
		var pm PropertyMapping

		if err := node.Content[i].Decode(&pm.Name); err != nil {
			return err
		}

		if err := node.Content[i+1].Decode(&pm.Paths); err != nil {
			return errors.Wrapf(err, "property %q", pm.Name)
		}

		out = append(out, pm)
	}

	*l = out

	return nil
}

// UnmarshalYAML accepts a single path string or an array of path strings.
func (s *PathSpec) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var str string

		if err := node.Decode(&str); err != nil {
			return err
		}

		if str != "" {
			*s = PathSpec{str}
		} else {
			*s = PathSpec{}
		}

		return nil

	case yaml.SequenceNode:
		var arr []string

		if err := node.Decode(&arr); err != nil {
			return err
		}

		*s = arr

		return nil

	default:
		return errors.Newf("expected path string or array, got %v", node.Kind)
	}
}

// MarshalYAML outputs a single string when there is one path, otherwise an
// array.
func (s PathSpec) MarshalYAML() (any, error) {
	if len(s) == 1 {
		return s[0], nil
	}

	return []string(s), nil
}

// IsEmpty returns true if no paths are bound.
func (s PathSpec) IsEmpty() bool {
	return len(s) == 0
}

// First returns the first bound path, or the empty string.
func (s PathSpec) First() string {
	if len(s) == 0 {
		return ""
	}

	return s[0]
}

// ParseMappings parses a YAML mapping document into descriptor options, in
// document order.
func ParseMappings(data []byte) ([]Option, error) {
	var mf MappingFile

	if err := yaml.Unmarshal(data, &mf); err != nil {
		return nil, errors.Wrap(err, "parsing mapping YAML")
	}

	if mf.Version == "" {
		mf.Version = "1"
	}

	if mf.Version != "1" {
		return nil, errors.Newf("unsupported mapping file version %q", mf.Version)
	}

	opts := make([]Option, 0, len(mf.Properties))

	for _, pm := range mf.Properties {
		if pm.Paths.IsEmpty() {
			return nil, errors.Newf("property %q bound to no key paths", pm.Name)
		}

		opts = append(opts, MapPaths(pm.Name, pm.Paths...))
	}

	return opts, nil
}

// LoadMappings reads and parses a YAML mapping file.
func LoadMappings(path string) ([]Option, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading mapping file %s", path)
	}

	return ParseMappings(data)
}
