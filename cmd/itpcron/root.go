package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/itprism/itpcron/internal/app"
	"github.com/itprism/itpcron/internal/config"
	"github.com/itprism/itpcron/internal/constants"
	"github.com/itprism/itpcron/internal/logger"
	"github.com/itprism/itpcron/internal/runner"
	"github.com/itprism/itpcron/internal/version"
)

var (
	configPath  string
	logLevel    string
	flagCreate  bool
	flagUpdate  bool
	flagExecute bool
	flagContext string
)

// rootCmd dispatches one cron event when called without subcommands
var rootCmd = &cobra.Command{
	Use:   "itpcron",
	Short: "itpcron - event-dispatch cron runner",
	Long: `itpcron loads the configured plugin group and dispatches one of
onCronCreate, onCronUpdate or onCronExecute to it, then prints the
elapsed time. Dispatch errors are appended to <log_path>/error_cron.txt.

Example:
  itpcron --execute --context=sync`,
	Version:      Version,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE:         runRoot,
}

func runRoot(cmd *cobra.Command, args []string) error {
	a, log, err := bootstrap(cmd)
	if err != nil {
		return err
	}

	mode, ambiguous := runner.ModeFromFlags(flagCreate, flagUpdate, flagExecute)
	if ambiguous {
		log.Warn("several mode flags given, using the first of create, update, execute",
			logger.Field{Key: "mode", Value: mode.String()})
	}

	// ошибка диспетчеризации уже записана в лог и вывод, код выхода 0
	a.Run(cmd.Context(), runner.NewInvocation(mode, flagContext))
	return nil
}

// bootstrap loads .env and the config, then builds the application with
// the plugin group imported.
func bootstrap(cmd *cobra.Command) (*app.App, *logger.Logger, error) {
	if err := config.LoadEnvOptional(constants.DefaultEnvPath); err != nil {
		return nil, nil, fmt.Errorf("failed to load %s: %w", constants.DefaultEnvPath, err)
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, nil, err
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}

	logCfg := logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	}
	if strings.EqualFold(cfg.Logging.Output, "stderr") {
		logCfg.Writer = cmd.ErrOrStderr()
	}
	log, err := logger.New(logCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger.SetDefault(log)

	log.Debug("starting itpcron",
		logger.Field{Key: "version", Value: version.UserAgent()},
		logger.Field{Key: "config", Value: configPath},
		logger.Field{Key: "error_log", Value: cfg.ErrorLogPath()})

	a, err := app.New(app.Options{
		Config: cfg,
		Logger: log,
		Output: cmd.OutOrStdout(),
	})
	if err != nil {
		return nil, nil, err
	}
	return a, log, nil
}

// loadConfig loads and validates path; both failures are fatal.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, errors.New(strings.TrimSpace(fmt.Sprintf(constants.MsgConfigLoadError, err)))
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		var b strings.Builder
		b.WriteString(constants.MsgConfigValidationError)
		for i, e := range errs {
			fmt.Fprintf(&b, constants.MsgConfigValidatePrefix, fmt.Sprintf("%d. %v", i+1, e))
		}
		return nil, errors.New(strings.TrimSpace(b.String()))
	}
	return cfg, nil
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", constants.DefaultConfigPath, "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (overrides logging.level)")

	rootCmd.Flags().BoolVar(&flagCreate, "create", false, "Dispatch onCronCreate")
	rootCmd.Flags().BoolVar(&flagUpdate, "update", false, "Dispatch onCronUpdate")
	rootCmd.Flags().BoolVar(&flagExecute, "execute", false, "Dispatch onCronExecute")
	rootCmd.Flags().StringVar(&flagContext, "context", "", "Context suffix of the qualified context")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(pluginsCmd)
	rootCmd.AddCommand(scheduleCmd)
}
