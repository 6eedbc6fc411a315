// Package config provides configuration loading and validation for itpcron.
// It reads a TOML file, applies defaults, expands environment variables and
// validates the result.
//
// Configuration structure:
//   - [app]: header title, qualified-context namespace, output language
//   - [site]: log_path where error_cron.txt is written
//   - [logging]: structured log level, format and output
//   - [plugins]: plugin group and manifest directory
//   - [metrics]: prometheus textfile export
//   - [[schedule]]: entries fired by `itpcron schedule`
//
// Environment variables:
// String values may reference ${VAR} or ${VAR:default},
// e.g. log_path = "${ITPCRON_LOG_PATH:/var/log/itpcron}".
package config

// Config represents the main application configuration.
type Config struct {
	App      AppConfig       `toml:"app"`
	Site     SiteConfig      `toml:"site"`
	Logging  LoggingConfig   `toml:"logging"`
	Plugins  PluginsConfig   `toml:"plugins"`
	Metrics  MetricsConfig   `toml:"metrics"`
	Schedule []ScheduleEntry `toml:"schedule"`
}

// AppConfig describes the runner itself.
type AppConfig struct {
	Title     string `toml:"title"`     // заголовок вывода
	Namespace string `toml:"namespace"` // префикс qualified context
	Language  string `toml:"language"`  // en, ru
}

// SiteConfig mirrors the host settings the runner needs.
type SiteConfig struct {
	LogPath string `toml:"log_path"`
}

// LoggingConfig представляет конфигурацию логирования
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
	Output string `toml:"output"`
}

// PluginsConfig selects which plugin manifests are imported.
type PluginsConfig struct {
	Group       string `toml:"group"`
	ManifestDir string `toml:"manifest_dir"`
}

// MetricsConfig controls prometheus metrics export.
type MetricsConfig struct {
	Enabled  bool   `toml:"enabled"`
	Textfile string `toml:"textfile"` // путь для node_exporter textfile collector
}

// ScheduleEntry is one recurring run of the `schedule` subcommand.
type ScheduleEntry struct {
	Name    string `toml:"name"`
	Spec    string `toml:"spec"`
	Mode    string `toml:"mode"`
	Context string `toml:"context"`
}
