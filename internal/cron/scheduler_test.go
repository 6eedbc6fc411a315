package cron

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itprism/itpcron/internal/config"
	"github.com/itprism/itpcron/internal/logger"
	"github.com/itprism/itpcron/internal/runner"
)

func noopRun(context.Context, Entry) {}

func TestScheduler_Add(t *testing.T) {
	s := NewScheduler(logger.Nop(), noopRun)

	require.NoError(t, s.Add(Entry{Name: "hourly", Spec: "@hourly", Mode: runner.ModeExecute}))

	entries := s.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "hourly", entries[0].Name)
}

func TestScheduler_AddErrors(t *testing.T) {
	tests := []struct {
		name  string
		entry Entry
	}{
		{"empty name", Entry{Spec: "@hourly"}},
		{"invalid spec", Entry{Name: "bad", Spec: "not a cron"}},
		{"duplicate", Entry{Name: "dup", Spec: "@daily"}},
	}

	s := NewScheduler(logger.Nop(), noopRun)
	require.NoError(t, s.Add(Entry{Name: "dup", Spec: "@hourly"}))

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, s.Add(tt.entry))
		})
	}
}

func TestScheduler_Remove(t *testing.T) {
	s := NewScheduler(logger.Nop(), noopRun)
	require.NoError(t, s.Add(Entry{Name: "a", Spec: "@hourly"}))

	require.NoError(t, s.Remove("a"))
	assert.Empty(t, s.Entries())
	assert.Error(t, s.Remove("a"))
}

func TestScheduler_EntriesSorted(t *testing.T) {
	s := NewScheduler(logger.Nop(), noopRun)
	require.NoError(t, s.Add(Entry{Name: "b", Spec: "@hourly"}))
	require.NoError(t, s.Add(Entry{Name: "a", Spec: "@daily"}))

	entries := s.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "a", entries[0].Name)
	assert.Equal(t, "b", entries[1].Name)
}

func TestScheduler_StartStop(t *testing.T) {
	s := NewScheduler(logger.Nop(), noopRun)
	require.NoError(t, s.Add(Entry{Name: "hourly", Spec: "@hourly"}))

	assert.Error(t, s.Stop(), "stop before start")

	require.NoError(t, s.Start(context.Background()))
	assert.Error(t, s.Start(context.Background()), "double start")
	assert.False(t, s.Next("hourly").IsZero())
	assert.True(t, s.Next("missing").IsZero())

	require.NoError(t, s.Stop())
}

func TestScheduler_Fires(t *testing.T) {
	fired := make(chan Entry, 4)
	s := NewScheduler(logger.Nop(), func(_ context.Context, e Entry) {
		select {
		case fired <- e:
		default:
		}
	})
	require.NoError(t, s.Add(Entry{Name: "every-second", Spec: "* * * * * *", Mode: runner.ModeUpdate, Context: "foo"}))

	require.NoError(t, s.Start(context.Background()))
	defer func() { _ = s.Stop() }()

	select {
	case e := <-fired:
		assert.Equal(t, "every-second", e.Name)
		assert.Equal(t, runner.ModeUpdate, e.Mode)
		assert.Equal(t, "foo", e.Context)
	case <-time.After(3 * time.Second):
		t.Fatal("entry did not fire")
	}
}

func TestScheduler_RecoversPanics(t *testing.T) {
	var calls atomic.Int32
	s := NewScheduler(logger.Nop(), func(context.Context, Entry) {
		calls.Add(1)
		panic("boom")
	})
	require.NoError(t, s.Add(Entry{Name: "panics", Spec: "* * * * * *"}))

	require.NoError(t, s.Start(context.Background()))
	assert.Eventually(t, func() bool { return calls.Load() >= 1 }, 3*time.Second, 50*time.Millisecond)
	require.NoError(t, s.Stop())
}

func TestScheduler_ContextCancelled(t *testing.T) {
	got := make(chan context.Context, 1)
	s := NewScheduler(logger.Nop(), func(ctx context.Context, _ Entry) {
		select {
		case got <- ctx:
		default:
		}
	})
	require.NoError(t, s.Add(Entry{Name: "e", Spec: "* * * * * *"}))

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, s.Start(ctx))

	var runCtx context.Context
	select {
	case runCtx = <-got:
	case <-time.After(3 * time.Second):
		t.Fatal("entry did not fire")
	}

	cancel()
	assert.Eventually(t, func() bool { return runCtx.Err() != nil }, time.Second, 10*time.Millisecond)
}

func TestEntriesFromConfig(t *testing.T) {
	entries, err := EntriesFromConfig([]config.ScheduleEntry{
		{Name: "nightly", Spec: "0 3 * * *", Mode: "execute", Context: "sync"},
		{Spec: "@hourly", Mode: "update", Context: "feeds"},
	})
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "nightly", entries[0].Name)
	assert.Equal(t, runner.ModeExecute, entries[0].Mode)
	assert.Equal(t, "update.feeds", entries[1].Name)
	assert.Equal(t, runner.ModeUpdate, entries[1].Mode)
}

func TestEntriesFromConfig_Errors(t *testing.T) {
	_, err := EntriesFromConfig([]config.ScheduleEntry{{Spec: "@hourly", Mode: "sideways"}})
	assert.Error(t, err)

	_, err = EntriesFromConfig([]config.ScheduleEntry{{Spec: "@hourly"}})
	assert.Error(t, err)
}
