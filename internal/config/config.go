package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/robfig/cron/v3"

	"github.com/itprism/itpcron/internal/constants"
)

// scheduleParser accepts an optional seconds field and descriptors like @hourly.
var scheduleParser = cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Load загружает конфигурацию из TOML файла
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes TOML data, applies defaults and expands variables.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)
	expandEnvVars(&cfg)

	return &cfg, nil
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// ScheduleParser returns the parser used for [[schedule]] specs.
func ScheduleParser() cron.ScheduleParser {
	return scheduleParser
}

// ParseSchedule parses a cron expression the same way the scheduler does.
func ParseSchedule(spec string) (cron.Schedule, error) {
	return scheduleParser.Parse(spec)
}

// ErrorLogPath returns the full path of error_cron.txt.
func (c *Config) ErrorLogPath() string {
	return filepath.Join(c.Site.LogPath, constants.ErrorLogFilename)
}

// Validate проверяет валидность конфигурации
func (c *Config) Validate() []error {
	var errors []error

	if c.App.Namespace == "" {
		errors = append(errors, fmt.Errorf("app.namespace is required"))
	} else if strings.ContainsAny(c.App.Namespace, " \t\n") {
		errors = append(errors, fmt.Errorf("app.namespace must not contain whitespace: %q", c.App.Namespace))
	}

	if c.Site.LogPath == "" {
		errors = append(errors, fmt.Errorf("site.log_path is required"))
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errors = append(errors, fmt.Errorf("invalid logging.level: %s (expected: debug, info, warn, error)", c.Logging.Level))
	}

	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		errors = append(errors, fmt.Errorf("invalid logging.format: %s (expected: json, text)", c.Logging.Format))
	}

	if c.Plugins.Group == "" {
		errors = append(errors, fmt.Errorf("plugins.group is required"))
	}

	validModes := map[string]bool{"create": true, "update": true, "execute": true}
	for i, entry := range c.Schedule {
		field := fmt.Sprintf("schedule[%d]", i)
		if entry.Name != "" {
			field = fmt.Sprintf("schedule[%s]", entry.Name)
		}
		if entry.Spec == "" {
			errors = append(errors, fmt.Errorf("%s.spec is required", field))
		} else if _, err := ParseSchedule(entry.Spec); err != nil {
			errors = append(errors, fmt.Errorf("%s.spec is invalid: %w", field, err))
		}
		if !validModes[strings.ToLower(entry.Mode)] {
			errors = append(errors, fmt.Errorf("%s.mode must be one of create, update, execute (got %q)", field, entry.Mode))
		}
	}

	return errors
}

// applyDefaults применяет значения по умолчанию
func applyDefaults(c *Config) {
	if c.App.Title == "" {
		c.App.Title = constants.DefaultTitle
	}
	if c.App.Namespace == "" {
		c.App.Namespace = constants.DefaultNamespace
	}
	if c.App.Language == "" {
		c.App.Language = constants.DefaultLanguage
	}

	if c.Site.LogPath == "" {
		c.Site.LogPath = constants.DefaultLogPath
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
	if c.Logging.Output == "" {
		c.Logging.Output = "stderr"
	}

	if c.Plugins.Group == "" {
		c.Plugins.Group = constants.DefaultPluginGroup
	}
	if c.Plugins.ManifestDir == "" {
		c.Plugins.ManifestDir = constants.DefaultManifestDir
	}
}

// expandEnvVars расширяет переменные окружения в конфигурации
func expandEnvVars(c *Config) {
	c.Site.LogPath = expandHome(expandEnv(c.Site.LogPath))
	c.Plugins.ManifestDir = expandHome(expandEnv(c.Plugins.ManifestDir))
	c.Metrics.Textfile = expandHome(expandEnv(c.Metrics.Textfile))
	c.Logging.Output = expandEnv(c.Logging.Output)

	for i := range c.Schedule {
		c.Schedule[i].Context = expandEnv(c.Schedule[i].Context)
	}
}

// expandEnv расширяет переменную окружения формата ${VAR:default}
func expandEnv(s string) string {
	if !strings.HasPrefix(s, "${") {
		return s
	}

	end := strings.Index(s, "}")
	if end == -1 {
		return s
	}

	content := s[2:end]
	rest := s[end+1:]
	if key, defaultVal, ok := strings.Cut(content, ":"); ok {
		if val := os.Getenv(key); val != "" {
			return val + rest
		}
		return defaultVal + rest
	}

	return os.Getenv(content) + rest
}

// expandHome расширяет ~ в пути
func expandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
