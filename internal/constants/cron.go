package constants

// Cron constants for event names and qualified contexts.

// DefaultNamespace is the prefix of every qualified context.
const DefaultNamespace = "com_itptransifex"

// DefaultPluginGroup is the plugin group imported before dispatch.
const DefaultPluginGroup = "itptransifexcron"

// DefaultTitle is the header printed at the top of every run.
const DefaultTitle = "ITPTransifex CRON"

// QualifiedContextFormat builds "<namespace>.cron.<mode>.<context>".
const QualifiedContextFormat = "%s.cron.%s.%s"

// Event names dispatched to plugins.
const (
	EventCronCreate  = "onCronCreate"
	EventCronUpdate  = "onCronUpdate"
	EventCronExecute = "onCronExecute"
)

// Environment variables exported to exec plugin commands.
const (
	EnvContext = "ITPCRON_CONTEXT"
	EnvEvent   = "ITPCRON_EVENT"
	EnvRunID   = "ITPCRON_RUN_ID"
)

// MetricsNamespace prefixes every prometheus metric.
const MetricsNamespace = "itpcron"
