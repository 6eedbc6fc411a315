package plugins

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/itprism/itpcron/internal/constants"
	"github.com/itprism/itpcron/internal/event"
	"github.com/itprism/itpcron/internal/logger"
)

// TypeJournal appends a JSONL record for every subscribed event.
const TypeJournal = "journal"

// JournalParams are the params of a journal manifest.
type JournalParams struct {
	Path string `yaml:"path"`
}

// JournalRecord is one line of the journal file.
type JournalRecord struct {
	RunID     string    `json:"run_id,omitempty"`
	Event     string    `json:"event"`
	Context   string    `json:"context"`
	Plugin    string    `json:"plugin"`
	Timestamp time.Time `json:"timestamp"`
}

// JournalPlugin records dispatched events in a JSON Lines file.
type JournalPlugin struct {
	name   string
	path   string
	logger *logger.Logger
	mu     sync.Mutex
	now    func() time.Time
}

// NewJournalPlugin is the Factory of TypeJournal.
func NewJournalPlugin(m Manifest, log *logger.Logger) (Plugin, error) {
	var params JournalParams
	if err := m.DecodeParams(&params); err != nil {
		return nil, err
	}
	if params.Path == "" {
		return nil, fmt.Errorf("params.path is required")
	}

	return &JournalPlugin{
		name:   m.Name,
		path:   filepath.Clean(params.Path),
		logger: log,
		now:    time.Now,
	}, nil
}

func (p *JournalPlugin) Name() string { return p.name }

func (p *JournalPlugin) Handlers() map[string]event.Handler {
	return map[string]event.Handler{
		constants.EventCronCreate:  p.handler(constants.EventCronCreate),
		constants.EventCronUpdate:  p.handler(constants.EventCronUpdate),
		constants.EventCronExecute: p.handler(constants.EventCronExecute),
	}
}

func (p *JournalPlugin) handler(name string) event.Handler {
	return func(ctx context.Context, args ...any) error {
		qualified, err := event.StringArg(args, 0)
		if err != nil {
			return err
		}

		return p.append(JournalRecord{
			RunID:     event.RunID(ctx),
			Event:     name,
			Context:   qualified,
			Plugin:    p.name,
			Timestamp: p.now().UTC(),
		})
	}
}

func (p *JournalPlugin) append(rec JournalRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal journal record: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(p.path), 0755); err != nil {
		return fmt.Errorf("failed to create journal directory: %w", err)
	}

	f, err := os.OpenFile(p.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open journal: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write journal: %w", err)
	}

	p.logger.Debug("journal record written",
		logger.Field{Key: "event", Value: rec.Event},
		logger.Field{Key: "path", Value: p.path})
	return nil
}
