package event

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/itprism/itpcron/internal/logger"
)

// Observer is notified after every handler call.
type Observer interface {
	ObserveHandler(event, plugin string, duration time.Duration, err error)
}

type registration struct {
	plugin  string
	handler Handler
}

// Dispatcher keeps handlers per event name in registration order.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[string][]registration
	logger   *logger.Logger
	observer Observer
}

// NewDispatcher creates an empty dispatcher. log may be nil.
func NewDispatcher(log *logger.Logger) *Dispatcher {
	if log == nil {
		log = logger.Nop()
	}
	return &Dispatcher{
		handlers: make(map[string][]registration),
		logger:   log,
	}
}

// SetObserver installs o; nil disables observation.
func (d *Dispatcher) SetObserver(o Observer) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.observer = o
}

// Register appends handler to the list for name.
func (d *Dispatcher) Register(name, plugin string, handler Handler) error {
	if name == "" {
		return fmt.Errorf("cannot register handler without event name")
	}
	if handler == nil {
		return fmt.Errorf("cannot register nil handler for %s", name)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[name] = append(d.handlers[name], registration{plugin: plugin, handler: handler})

	d.logger.Debug("handler registered",
		logger.Field{Key: "event", Value: name},
		logger.Field{Key: "plugin", Value: plugin})
	return nil
}

// Handlers returns plugin names subscribed to name, in call order.
func (d *Dispatcher) Handlers(name string) []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	regs := d.handlers[name]
	plugins := make([]string, 0, len(regs))
	for _, r := range regs {
		plugins = append(plugins, r.plugin)
	}
	return plugins
}

// Events returns every event name with at least one handler, sorted.
func (d *Dispatcher) Events() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	names := make([]string, 0, len(d.handlers))
	for name := range d.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Trigger invokes every handler registered for name with args and blocks
// until they finish. It returns nil when nothing is subscribed.
func (d *Dispatcher) Trigger(ctx context.Context, name string, args ...any) error {
	d.mu.RLock()
	regs := append([]registration(nil), d.handlers[name]...)
	observer := d.observer
	d.mu.RUnlock()

	if len(regs) == 0 {
		d.logger.Debug("no handlers for event", logger.Field{Key: "event", Value: name})
		return nil
	}

	for _, r := range regs {
		if err := ctx.Err(); err != nil {
			return &HandlerError{Event: name, Plugin: r.plugin, Err: err}
		}

		start := time.Now()
		err := call(ctx, r.handler, args)
		elapsed := time.Since(start)

		if observer != nil {
			observer.ObserveHandler(name, r.plugin, elapsed, err)
		}

		if err != nil {
			d.logger.Debug("handler failed, remaining handlers skipped",
				logger.Field{Key: "event", Value: name},
				logger.Field{Key: "plugin", Value: r.plugin},
				logger.Field{Key: "error", Value: err})
			return &HandlerError{Event: name, Plugin: r.plugin, Err: err}
		}
	}

	return nil
}

// call runs h and turns a panic into an error.
func call(ctx context.Context, h Handler, args []any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return h(ctx, args...)
}
