package plugins

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/itprism/itpcron/internal/event"
	"github.com/itprism/itpcron/internal/logger"
)

// Loader reads manifests from a directory and imports plugin groups.
type Loader struct {
	dir      string
	registry *Registry
	logger   *logger.Logger
}

// NewLoader creates a loader for manifests stored in dir.
func NewLoader(dir string, registry *Registry, log *logger.Logger) *Loader {
	if log == nil {
		log = logger.Nop()
	}
	return &Loader{
		dir:      dir,
		registry: registry,
		logger:   log,
	}
}

// Manifests returns the enabled manifests of group in import order.
// A missing directory yields no manifests.
func (l *Loader) Manifests(group string) ([]Manifest, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		if os.IsNotExist(err) {
			l.logger.Warn("plugin manifest directory not found",
				logger.Field{Key: "dir", Value: l.dir})
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read plugin directory: %w", err)
	}

	var manifests []Manifest
	for _, entry := range entries {
		if entry.IsDir() || !isManifestFile(entry.Name()) {
			continue
		}

		path := filepath.Join(l.dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read manifest %s: %w", path, err)
		}

		m, err := ParseManifest(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		m.FilePath = path

		if !m.InGroup(group) {
			continue
		}
		if !m.IsEnabled() {
			l.logger.Debug("plugin disabled", logger.Field{Key: "plugin", Value: m.Name})
			continue
		}
		manifests = append(manifests, m)
	}

	sort.SliceStable(manifests, func(i, j int) bool {
		if manifests[i].Ordering != manifests[j].Ordering {
			return manifests[i].Ordering < manifests[j].Ordering
		}
		return manifests[i].Name < manifests[j].Name
	})

	return manifests, nil
}

// Import builds every manifest of group and registers its handlers on d.
func (l *Loader) Import(group string, d *event.Dispatcher) ([]Plugin, error) {
	manifests, err := l.Manifests(group)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]string, len(manifests))
	plugins := make([]Plugin, 0, len(manifests))

	for _, m := range manifests {
		if prev, dup := seen[m.Name]; dup {
			return nil, fmt.Errorf("duplicate plugin name %s in %s and %s", m.Name, prev, m.FilePath)
		}
		seen[m.Name] = m.FilePath

		factory, ok := l.registry.Lookup(m.Type)
		if !ok {
			return nil, fmt.Errorf("%w: %s (plugin %s)", ErrUnknownPluginType, m.Type, m.Name)
		}

		plugin, err := factory(m, l.logger.With(logger.Field{Key: "plugin", Value: m.Name}))
		if err != nil {
			return nil, fmt.Errorf("failed to build plugin %s: %w", m.Name, err)
		}

		if err := register(d, m, plugin); err != nil {
			return nil, err
		}
		plugins = append(plugins, plugin)

		l.logger.Debug("plugin imported",
			logger.Field{Key: "plugin", Value: m.Name},
			logger.Field{Key: "type", Value: m.Type})
	}

	return plugins, nil
}

func register(d *event.Dispatcher, m Manifest, p Plugin) error {
	handlers := p.Handlers()

	names := make([]string, 0, len(handlers))
	for name := range handlers {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if !m.Subscribes(name) {
			continue
		}
		if err := d.Register(name, p.Name(), handlers[name]); err != nil {
			return fmt.Errorf("plugin %s: %w", p.Name(), err)
		}
	}
	return nil
}

func isManifestFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}
