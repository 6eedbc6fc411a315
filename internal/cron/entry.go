package cron

import (
	"fmt"

	"github.com/itprism/itpcron/internal/config"
	"github.com/itprism/itpcron/internal/runner"
)

// Entry is a recurring invocation of the runner.
type Entry struct {
	Name    string
	Spec    string
	Mode    runner.Mode
	Context string
}

// EntriesFromConfig converts [[schedule]] blocks into entries. Unnamed
// entries are called "<mode>.<context>".
func EntriesFromConfig(blocks []config.ScheduleEntry) ([]Entry, error) {
	entries := make([]Entry, 0, len(blocks))
	for i, b := range blocks {
		mode, err := runner.ParseMode(b.Mode)
		if err != nil {
			return nil, fmt.Errorf("schedule[%d]: %w", i, err)
		}
		if mode == runner.ModeNone {
			return nil, fmt.Errorf("schedule[%d]: mode is required", i)
		}

		name := b.Name
		if name == "" {
			name = fmt.Sprintf("%s.%s", mode, b.Context)
		}
		entries = append(entries, Entry{
			Name:    name,
			Spec:    b.Spec,
			Mode:    mode,
			Context: b.Context,
		})
	}
	return entries, nil
}
