// Package version holds build information injected with -ldflags.
package version

import "fmt"

var (
	Version   = "0.1.0-dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
	GoVersion = "unknown"
)

func SetInfo(v, bt, gc, gv string) {
	if v != "" {
		Version = v
	}
	if bt != "" {
		BuildTime = bt
	}
	if gc != "" {
		GitCommit = gc
	}
	if gv != "" {
		GoVersion = gv
	}
}

// Format renders the multi-line output of `itpcron version`.
func Format() string {
	return fmt.Sprintf("itpcron - event-dispatch cron runner\nVersion: %s\nBuild Time: %s\nGit Commit: %s\nGo Version: %s\n",
		Version, BuildTime, GitCommit, GoVersion)
}

// UserAgent identifies the runner to exec plugins and in logs.
func UserAgent() string {
	return "itpcron/" + Version
}
