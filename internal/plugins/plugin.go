// Package plugins loads cron plugins described by YAML manifests and
// subscribes their handlers on an event dispatcher.
//
// A manifest names a plugin type registered in a Registry. Manifests of the
// imported group that are enabled are built in (ordering, name) order, which
// is also the order their handlers run in.
package plugins

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/itprism/itpcron/internal/event"
	"github.com/itprism/itpcron/internal/logger"
)

// ErrUnknownPluginType is returned when a manifest references an unregistered type.
var ErrUnknownPluginType = errors.New("unknown plugin type")

// Plugin is a loaded plugin instance.
type Plugin interface {
	// Name returns the manifest name of the instance.
	Name() string

	// Handlers maps event names to the handler run for them.
	Handlers() map[string]event.Handler
}

// Factory builds a plugin instance from its manifest.
type Factory func(m Manifest, log *logger.Logger) (Plugin, error)

// Registry holds the factories available to manifests.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// DefaultRegistry returns a registry with the built-in exec and journal types.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	_ = r.Register(TypeExec, NewExecPlugin)
	_ = r.Register(TypeJournal, NewJournalPlugin)
	return r
}

// Register adds a factory under typ.
func (r *Registry) Register(typ string, f Factory) error {
	if typ == "" {
		return fmt.Errorf("cannot register plugin factory without type")
	}
	if f == nil {
		return fmt.Errorf("cannot register nil factory for %s", typ)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.factories[typ]; exists {
		return fmt.Errorf("plugin type %s already registered", typ)
	}
	r.factories[typ] = f
	return nil
}

// Lookup returns the factory for typ.
func (r *Registry) Lookup(typ string) (Factory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.factories[typ]
	return f, ok
}

// Types returns the registered type names, sorted.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.factories))
	for t := range r.factories {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}
