// Package cron runs runner invocations on cron expressions using
// robfig/cron/v3. It backs the long-running `itpcron schedule` command.
package cron

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/itprism/itpcron/internal/config"
	"github.com/itprism/itpcron/internal/logger"
)

// RunFunc executes one fired entry.
type RunFunc func(ctx context.Context, e Entry)

// Scheduler fires entries on their schedules. A firing that overlaps a
// still-running firing of the same entry is skipped.
type Scheduler struct {
	cron    *cron.Cron
	logger  *logger.Logger
	run     RunFunc
	ctx     context.Context
	cancel  context.CancelFunc
	started bool
	mu      sync.RWMutex

	entries map[string]Entry
	ids     map[string]cron.EntryID // Entry.Name -> cron.EntryID
}

// NewScheduler creates a scheduler calling run for every firing.
func NewScheduler(log *logger.Logger, run RunFunc) *Scheduler {
	if log == nil {
		log = logger.Nop()
	}
	adapter := newLogAdapter(log)

	return &Scheduler{
		cron: cron.New(
			cron.WithParser(config.ScheduleParser()),
			cron.WithLogger(adapter),
			cron.WithChain(cron.Recover(adapter), cron.SkipIfStillRunning(adapter)),
		),
		logger:  log,
		run:     run,
		ctx:     context.Background(),
		entries: make(map[string]Entry),
		ids:     make(map[string]cron.EntryID),
	}
}

// Add schedules e. Names must be unique.
func (s *Scheduler) Add(e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e.Name == "" {
		return fmt.Errorf("schedule entry must have a name")
	}
	if _, exists := s.entries[e.Name]; exists {
		return fmt.Errorf("schedule entry %s already exists", e.Name)
	}

	id, err := s.cron.AddFunc(e.Spec, func() { s.fire(e) })
	if err != nil {
		return fmt.Errorf("invalid cron expression for %s: %w", e.Name, err)
	}

	s.entries[e.Name] = e
	s.ids[e.Name] = id

	s.logger.Info("schedule entry added",
		logger.Field{Key: "name", Value: e.Name},
		logger.Field{Key: "spec", Value: e.Spec},
		logger.Field{Key: "mode", Value: e.Mode.String()})
	return nil
}

// Remove unschedules the entry called name.
func (s *Scheduler) Remove(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.ids[name]
	if !ok {
		return fmt.Errorf("schedule entry %s not found", name)
	}
	s.cron.Remove(id)
	delete(s.ids, name)
	delete(s.entries, name)
	return nil
}

// Entries returns the scheduled entries sorted by name.
func (s *Scheduler) Entries() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]Entry, 0, len(s.entries))
	for _, e := range s.entries {
		list = append(list, e)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list
}

// Next returns the next firing time of name; zero before Start.
func (s *Scheduler) Next(name string) time.Time {
	s.mu.RLock()
	id, ok := s.ids[name]
	s.mu.RUnlock()
	if !ok {
		return time.Time{}
	}
	return s.cron.Entry(id).Next
}

// Start starts firing entries until ctx is cancelled or Stop is called.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return fmt.Errorf("scheduler already started")
	}

	s.ctx, s.cancel = context.WithCancel(ctx)
	s.started = true
	s.cron.Start()
	s.logger.Info("scheduler started", logger.Field{Key: "entries", Value: len(s.entries)})

	runCtx := s.ctx
	go func() {
		<-runCtx.Done()
		<-s.cron.Stop().Done()
		s.logger.Info("scheduler stopped")
	}()

	return nil
}

// Stop cancels the scheduler and waits for running firings to return.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return fmt.Errorf("scheduler not started")
	}
	s.cancel()
	s.started = false
	s.mu.Unlock()

	<-s.cron.Stop().Done()
	return nil
}

func (s *Scheduler) fire(e Entry) {
	s.mu.RLock()
	ctx := s.ctx
	s.mu.RUnlock()

	s.logger.Debug("schedule entry fired", logger.Field{Key: "name", Value: e.Name})
	s.run(ctx, e)
}
