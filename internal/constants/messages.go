package constants

// Package messages contains the message keys used for CLI output.
// Keys are English source strings; translations live in internal/messages.

// Run output
const (
	// MsgTotalTime reports elapsed wall-clock seconds of a run. The value is
	// preformatted so the catalog never applies locale digit grouping.
	MsgTotalTime = "Total Processing Time: %s seconds."

	// MsgModeContext prints the selected mode and the qualified context.
	MsgModeContext = "%s context: %s"

	// MsgNotCLI is printed when the binary is started by a web server.
	MsgNotCLI = "This is a command line only application."
)

// Config messages
const (
	// MsgConfigLoadError is the error message when configuration loading fails.
	MsgConfigLoadError = "❌ Failed to load configuration: %v\n"

	// MsgConfigValidationError is the message when configuration validation fails.
	MsgConfigValidationError = "❌ Configuration validation failed:\n"

	// MsgConfigValid is the message when configuration is successfully loaded and validated.
	MsgConfigValid = "✅ Configuration is valid"

	// MsgConfigValidatePrefix is the prefix for configuration validation errors.
	MsgConfigValidatePrefix = "  - %v\n"
)

// Plugin messages
const (
	// MsgPluginsHeader is the header for the plugins list display.
	MsgPluginsHeader = "Registered handlers:\n-----------------\n"

	// MsgPluginsEvent is the label for an event with its handlers.
	MsgPluginsEvent = "%s:\n"

	// MsgPluginsHandler is a single handler line.
	MsgPluginsHandler = "   %d. %s\n"

	// MsgPluginsTypes lists the plugin types manifests may use.
	MsgPluginsTypes = "Plugin types: %s\n"

	// MsgPluginsNone is the message when no plugin registered a handler.
	MsgPluginsNone = "No plugins loaded."
)

// Schedule messages
const (
	// MsgScheduleNone is printed when the config has no [[schedule]] entries.
	MsgScheduleNone = "No schedule entries configured."

	// MsgScheduleStarted is printed once the scheduler is running.
	MsgScheduleStarted = "Scheduler started with %d entr(y/ies). Press Ctrl+C to stop.\n"
)
