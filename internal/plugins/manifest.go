package plugins

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Manifest describes one plugin instance.
type Manifest struct {
	Name     string    `yaml:"name"`
	Type     string    `yaml:"type"`
	Group    string    `yaml:"group,omitempty"`    // пусто = группа из конфигурации
	Enabled  *bool     `yaml:"enabled,omitempty"`  // по умолчанию true
	Ordering int       `yaml:"ordering,omitempty"` // меньше = раньше
	Events   []string  `yaml:"events,omitempty"`   // пусто = все события плагина
	Params   yaml.Node `yaml:"params,omitempty"`

	// FilePath is the manifest location, set by the loader.
	FilePath string `yaml:"-"`
}

// ParseManifest decodes and validates a YAML manifest.
func ParseManifest(data []byte) (Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("failed to parse manifest: %w", err)
	}

	if m.Name == "" {
		return Manifest{}, fmt.Errorf("manifest must have a 'name' field")
	}
	if m.Type == "" {
		return Manifest{}, fmt.Errorf("manifest %s must have a 'type' field", m.Name)
	}

	return m, nil
}

// IsEnabled reports whether the manifest is switched on.
func (m Manifest) IsEnabled() bool {
	return m.Enabled == nil || *m.Enabled
}

// InGroup reports whether the manifest belongs to group.
func (m Manifest) InGroup(group string) bool {
	return m.Group == "" || m.Group == group
}

// Subscribes reports whether the manifest allows handling event.
func (m Manifest) Subscribes(event string) bool {
	if len(m.Events) == 0 {
		return true
	}
	for _, e := range m.Events {
		if e == event {
			return true
		}
	}
	return false
}

// DecodeParams decodes the params block into v. A missing block leaves v untouched.
func (m Manifest) DecodeParams(v any) error {
	if m.Params.Kind == 0 {
		return nil
	}
	if err := m.Params.Decode(v); err != nil {
		return fmt.Errorf("plugin %s: invalid params: %w", m.Name, err)
	}
	return nil
}
