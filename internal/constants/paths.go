package constants

// DefaultEnvPath is the default path to the .env file
const DefaultEnvPath = "./.env"

// DefaultConfigPath is the default path to the itpcron.toml file
const DefaultConfigPath = "./itpcron.toml"

// DefaultLogPath is the directory used for error_cron.txt when site.log_path is empty
const DefaultLogPath = "./logs"

// DefaultManifestDir is the directory scanned for plugin manifests
const DefaultManifestDir = "./plugins"

// ErrorLogFilename is the name of the append-only error log inside site.log_path
const ErrorLogFilename = "error_cron.txt"
