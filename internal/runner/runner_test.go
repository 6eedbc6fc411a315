package runner

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itprism/itpcron/internal/config"
	"github.com/itprism/itpcron/internal/errlog"
	"github.com/itprism/itpcron/internal/event"
)

type triggered struct {
	name  string
	args  []any
	runID string
}

// fakeDispatcher records Trigger calls and returns err.
type fakeDispatcher struct {
	calls []triggered
	err   error
	delay time.Duration
}

func (f *fakeDispatcher) Trigger(ctx context.Context, name string, args ...any) error {
	f.calls = append(f.calls, triggered{name: name, args: args, runID: event.RunID(ctx)})
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	return f.err
}

type fakeRecorder struct {
	modes []string
	errs  []error
}

func (f *fakeRecorder) RecordRun(mode string, _ time.Duration, err error) {
	f.modes = append(f.modes, mode)
	f.errs = append(f.errs, err)
}

var totalTimeLine = regexp.MustCompile(`Total Processing Time: (\d+\.\d{3}) seconds\.`)

func testApp() config.AppConfig {
	return config.Default().App
}

func newTestRunner(d Dispatcher, logDir string) (*Runner, *bytes.Buffer) {
	out := &bytes.Buffer{}
	return New(Config{
		App:        testApp(),
		Dispatcher: d,
		Output:     out,
		ErrorLog:   errlog.New(logDir),
	}), out
}

func TestRun_NoModeIsNoop(t *testing.T) {
	d := &fakeDispatcher{}
	r, out := newTestRunner(d, t.TempDir())

	res := r.Run(context.Background(), NewInvocation(ModeNone, "ignored"))

	assert.Empty(t, d.calls)
	assert.NoError(t, res.Err)
	assert.Empty(t, res.QualifiedContext)

	text := out.String()
	assert.True(t, bytes.HasPrefix(out.Bytes(), []byte("ITPTransifex CRON\n============================\n")))
	assert.NotContains(t, text, "context:")
	assert.Regexp(t, totalTimeLine, text)
	assert.True(t, bytes.HasSuffix(out.Bytes(), []byte("seconds.\n\n")))
}

func TestRun_CreateWithContext(t *testing.T) {
	d := &fakeDispatcher{}
	r, out := newTestRunner(d, t.TempDir())

	inv := NewInvocation(ModeCreate, "foo")
	res := r.Run(context.Background(), inv)

	require.Len(t, d.calls, 1)
	assert.Equal(t, "onCronCreate", d.calls[0].name)
	assert.Equal(t, []any{"com_itptransifex.cron.create.foo"}, d.calls[0].args)
	assert.Equal(t, inv.RunID, d.calls[0].runID)
	assert.Equal(t, "com_itptransifex.cron.create.foo", res.QualifiedContext)
	assert.Contains(t, out.String(), "create context: com_itptransifex.cron.create.foo\n============================\n")
}

func TestRun_UpdateWithoutContext(t *testing.T) {
	d := &fakeDispatcher{}
	r, _ := newTestRunner(d, t.TempDir())

	r.Run(context.Background(), NewInvocation(ModeUpdate, ""))

	require.Len(t, d.calls, 1)
	assert.Equal(t, "onCronUpdate", d.calls[0].name)
	assert.Equal(t, []any{"com_itptransifex.cron.update."}, d.calls[0].args)
}

func TestRun_DispatchErrorIsLoggedAndPrinted(t *testing.T) {
	logDir := t.TempDir()
	d := &fakeDispatcher{err: &event.HandlerError{
		Event:  "onCronExecute",
		Plugin: "sync",
		Err:    errors.New("transifex API returned 503"),
	}}
	rec := &fakeRecorder{}

	out := &bytes.Buffer{}
	r := New(Config{
		App:        testApp(),
		Dispatcher: d,
		Output:     out,
		ErrorLog:   errlog.New(logDir),
		Metrics:    rec,
	})

	res := r.Run(context.Background(), NewInvocation(ModeExecute, "languages"))

	require.Error(t, res.Err)
	text := out.String()
	assert.Contains(t, text, "transifex API returned 503")
	errIdx := bytes.Index(out.Bytes(), []byte("transifex API returned 503"))
	timeIdx := bytes.Index(out.Bytes(), []byte("Total Processing Time"))
	assert.Less(t, errIdx, timeIdx, "timing summary must follow the error")

	data, err := os.ReadFile(filepath.Join(logDir, "error_cron.txt"))
	require.NoError(t, err)
	assert.Equal(t, "transifex API returned 503\n", string(data))
	assert.NotContains(t, text, "plugin sync")

	assert.Equal(t, []string{"execute"}, rec.modes)
	assert.Equal(t, []error{res.Err}, rec.errs)
}

func TestRun_UnwritableLogDirectory(t *testing.T) {
	file := filepath.Join(t.TempDir(), "log_path_is_a_file")
	require.NoError(t, os.WriteFile(file, []byte("original"), 0644))

	d := &fakeDispatcher{err: errors.New("handler failed")}
	r, out := newTestRunner(d, file)

	res := r.Run(context.Background(), NewInvocation(ModeExecute, ""))

	require.Error(t, res.Err)
	assert.Contains(t, out.String(), "handler failed")

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Equal(t, "original", string(data))
	_, err = os.Stat(filepath.Join(file, "error_cron.txt"))
	assert.Error(t, err)
}

func TestRun_MissingLogDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "missing")
	d := &fakeDispatcher{err: errors.New("handler failed")}
	r, out := newTestRunner(d, dir)

	r.Run(context.Background(), NewInvocation(ModeUpdate, ""))

	assert.Contains(t, out.String(), "handler failed")
	_, err := os.Stat(dir)
	assert.True(t, os.IsNotExist(err))
}

func TestRun_CreateWinsOverUpdate(t *testing.T) {
	mode, ambiguous := ModeFromFlags(true, true, false)
	assert.True(t, ambiguous)

	d := &fakeDispatcher{}
	r, _ := newTestRunner(d, t.TempDir())
	r.Run(context.Background(), NewInvocation(mode, "x"))

	require.Len(t, d.calls, 1)
	assert.Equal(t, "onCronCreate", d.calls[0].name)
}

func TestRun_ElapsedCoversHandlerDelay(t *testing.T) {
	delay := 60 * time.Millisecond
	d := &fakeDispatcher{delay: delay}
	r, out := newTestRunner(d, t.TempDir())

	res := r.Run(context.Background(), NewInvocation(ModeExecute, ""))

	assert.GreaterOrEqual(t, res.Elapsed, delay)

	m := totalTimeLine.FindStringSubmatch(out.String())
	require.Len(t, m, 2)
	reported, err := strconv.ParseFloat(m[1], 64)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, reported, 0.06)
}

func TestRun_ElapsedIncludesTimeBeforeRun(t *testing.T) {
	inv := NewInvocation(ModeNone, "")
	inv.StartTime = time.Now().Add(-2 * time.Second)

	r, out := newTestRunner(&fakeDispatcher{}, t.TempDir())
	res := r.Run(context.Background(), inv)

	assert.GreaterOrEqual(t, res.Elapsed, 2*time.Second)
	assert.Contains(t, out.String(), "Total Processing Time: 2.0")
}

func TestRun_WithoutErrorLog(t *testing.T) {
	out := &bytes.Buffer{}
	r := New(Config{
		App:        testApp(),
		Dispatcher: &fakeDispatcher{err: errors.New("boom")},
		Output:     out,
	})

	res := r.Run(context.Background(), NewInvocation(ModeCreate, ""))
	assert.EqualError(t, res.Err, "boom")
	assert.Contains(t, out.String(), "boom\n")
}

func TestRun_RealDispatcherStopsAtFirstFailure(t *testing.T) {
	d := event.NewDispatcher(nil)
	var calls []string
	require.NoError(t, d.Register("onCronExecute", "a", func(ctx context.Context, args ...any) error {
		calls = append(calls, "a")
		return errors.New("a failed")
	}))
	require.NoError(t, d.Register("onCronExecute", "b", func(ctx context.Context, args ...any) error {
		calls = append(calls, "b")
		return nil
	}))

	r, out := newTestRunner(d, t.TempDir())
	res := r.Run(context.Background(), NewInvocation(ModeExecute, "all"))

	assert.Equal(t, []string{"a"}, calls)
	var herr *event.HandlerError
	require.ErrorAs(t, res.Err, &herr)
	assert.Equal(t, "a", herr.Plugin)
	assert.Contains(t, out.String(), "\na failed\n")
}

func TestRun_RussianOutput(t *testing.T) {
	app := testApp()
	app.Language = "ru"
	out := &bytes.Buffer{}
	r := New(Config{App: app, Dispatcher: &fakeDispatcher{}, Output: out})

	r.Run(context.Background(), NewInvocation(ModeExecute, "x"))

	assert.Contains(t, out.String(), "контекст выполнения: com_itptransifex.cron.execute.x")
	assert.Contains(t, out.String(), "Общее время обработки:")
}

func TestRun_LongRunIsNotGrouped(t *testing.T) {
	for _, lang := range []string{"en", "ru"} {
		t.Run(lang, func(t *testing.T) {
			app := testApp()
			app.Language = lang
			out := &bytes.Buffer{}
			r := New(Config{App: app, Dispatcher: &fakeDispatcher{}, Output: out})

			inv := NewInvocation(ModeExecute, "x")
			inv.StartTime = time.Now().Add(-1234567 * time.Millisecond)
			r.Run(context.Background(), inv)

			assert.Regexp(t, regexp.MustCompile(`: 123[45]\.\d{3} (seconds|сек)\.\n`), out.String())
			assert.NotContains(t, out.String(), "1,234")
			assert.NotContains(t, out.String(), "1 234")
			if lang == "en" {
				assert.Regexp(t, totalTimeLine, out.String())
			}
		})
	}
}

// writeRecorder keeps every Write call separately.
type writeRecorder struct {
	mu     sync.Mutex
	writes []string
}

func (w *writeRecorder) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.writes = append(w.writes, string(p))
	return len(p), nil
}

func TestRun_ConcurrentReportsDoNotInterleave(t *testing.T) {
	out := &writeRecorder{}
	r := New(Config{
		App:        testApp(),
		Dispatcher: event.NewDispatcher(nil),
		Output:     out,
	})

	const runs = 8
	var wg sync.WaitGroup
	for i := 0; i < runs; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r.Run(context.Background(), NewInvocation(ModeUpdate, "c"+strconv.Itoa(i)))
		}(i)
	}
	wg.Wait()

	require.Len(t, out.writes, runs)
	for _, w := range out.writes {
		assert.True(t, strings.HasPrefix(w, "ITPTransifex CRON\n"))
		assert.Regexp(t, totalTimeLine, w)
		assert.Equal(t, 1, strings.Count(w, "update context: "))
	}
}
