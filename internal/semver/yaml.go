package semver

import "gopkg.in/yaml.v3"

// UnmarshalYAML implements yaml.Unmarshaler for Level.
func (l *Level) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := ParseLevel(s)
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// MarshalYAML implements yaml.Marshaler for Level.
func (l Level) MarshalYAML() (interface{}, error) {
	if l == LevelNone {
		return nil, nil
	}
	return l.String(), nil
}
