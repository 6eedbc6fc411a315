// Package app wires itpcron's components with go.uber.org/dig: the event
// dispatcher, imported plugins, the error log, metrics and the runner.
// Callers use the typed getters and never import dig directly.
package app

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/dig"

	"github.com/itprism/itpcron/internal/config"
	"github.com/itprism/itpcron/internal/constants"
	"github.com/itprism/itpcron/internal/errlog"
	"github.com/itprism/itpcron/internal/event"
	"github.com/itprism/itpcron/internal/logger"
	"github.com/itprism/itpcron/internal/metrics"
	"github.com/itprism/itpcron/internal/plugins"
	"github.com/itprism/itpcron/internal/runner"
)

// App holds the resolved components of one bootstrapped process.
type App struct {
	config     *config.Config
	logger     *logger.Logger
	dispatcher *event.Dispatcher
	plugins    []plugins.Plugin
	registry   *plugins.Registry
	errLog     *errlog.Log
	metrics    *metrics.RunMetrics
	runner     *runner.Runner
}

// Options are the inputs of New. Output defaults to io.Discard, Registry
// to plugins.DefaultRegistry().
type Options struct {
	Config   *config.Config
	Logger   *logger.Logger
	Output   io.Writer
	Registry *plugins.Registry
}

// output wraps the run output so dig does not confuse it with other writers.
type output struct{ io.Writer }

// imported is the plugin group loaded onto the dispatcher.
type imported []plugins.Plugin

// New bootstraps the application. A plugin import failure is returned as
// an error and the process should treat it as fatal.
func New(opts Options) (*App, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("app: config is required")
	}
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	if opts.Output == nil {
		opts.Output = io.Discard
	}
	if opts.Registry == nil {
		opts.Registry = plugins.DefaultRegistry()
	}

	c := dig.New()

	providers := []any{
		func() *config.Config { return opts.Config },
		func() *logger.Logger { return opts.Logger },
		func() output { return output{opts.Output} },
		func() *plugins.Registry { return opts.Registry },
		newMetrics,
		newDispatcher,
		newPlugins,
		newErrorLog,
		newRunner,
	}
	for _, p := range providers {
		if err := c.Provide(p); err != nil {
			return nil, err
		}
	}

	var a *App
	err := c.Invoke(func(
		d *event.Dispatcher,
		loaded imported,
		el *errlog.Log,
		m *metrics.RunMetrics,
		r *runner.Runner,
	) {
		a = &App{
			config:     opts.Config,
			logger:     opts.Logger,
			dispatcher: d,
			plugins:    loaded,
			registry:   opts.Registry,
			errLog:     el,
			metrics:    m,
			runner:     r,
		}
	})
	if err != nil {
		return nil, fmt.Errorf("bootstrap failed: %w", dig.RootCause(err))
	}
	return a, nil
}

func (a *App) Config() *config.Config        { return a.config }
func (a *App) Dispatcher() *event.Dispatcher { return a.dispatcher }
func (a *App) Plugins() []plugins.Plugin     { return a.plugins }
func (a *App) ErrorLog() *errlog.Log         { return a.errLog }
func (a *App) Metrics() *metrics.RunMetrics  { return a.metrics }

// PluginTypes returns the plugin types manifests may use.
func (a *App) PluginTypes() []string {
	return a.registry.Types()
}

// Run executes one invocation and exports metrics when enabled.
func (a *App) Run(ctx context.Context, inv runner.Invocation) runner.Result {
	result := a.runner.Run(ctx, inv)
	a.exportMetrics()
	return result
}

// exportMetrics writes the textfile; failures are only logged.
func (a *App) exportMetrics() {
	if !a.config.Metrics.Enabled || a.config.Metrics.Textfile == "" {
		return
	}
	if err := a.metrics.WriteTextfile(a.config.Metrics.Textfile); err != nil {
		a.logger.Error("failed to write metrics textfile", err,
			logger.Field{Key: "path", Value: a.config.Metrics.Textfile})
	}
}

func newMetrics() *metrics.RunMetrics {
	return metrics.New(constants.MetricsNamespace)
}

func newDispatcher(log *logger.Logger, m *metrics.RunMetrics) *event.Dispatcher {
	d := event.NewDispatcher(log)
	d.SetObserver(m)
	return d
}

func newPlugins(cfg *config.Config, reg *plugins.Registry, d *event.Dispatcher, log *logger.Logger) (imported, error) {
	loader := plugins.NewLoader(cfg.Plugins.ManifestDir, reg, log)
	loaded, err := loader.Import(cfg.Plugins.Group, d)
	if err != nil {
		return nil, fmt.Errorf("failed to import plugin group %s: %w", cfg.Plugins.Group, err)
	}
	log.Info("plugin group imported",
		logger.Field{Key: "group", Value: cfg.Plugins.Group},
		logger.Field{Key: "plugins", Value: len(loaded)})
	return imported(loaded), nil
}

func newErrorLog(cfg *config.Config) *errlog.Log {
	return errlog.New(cfg.Site.LogPath)
}

// newRunner depends on imported so plugins are registered before any run.
func newRunner(cfg *config.Config, out output, d *event.Dispatcher, _ imported, el *errlog.Log, m *metrics.RunMetrics, log *logger.Logger) *runner.Runner {
	return runner.New(runner.Config{
		App:        cfg.App,
		Dispatcher: d,
		Output:     out.Writer,
		ErrorLog:   el,
		Metrics:    m,
		Logger:     log,
	})
}
