// Package runner implements the cron command: it selects a mode, builds the
// qualified context, dispatches the matching event to the loaded plugins and
// reports elapsed time.
//
// Dispatch errors never escape Run. They are appended to the error log (when
// its directory is writable), printed to the output sink and returned in the
// Result so callers can inspect them; the process still exits normally.
package runner

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/itprism/itpcron/internal/config"
	"github.com/itprism/itpcron/internal/constants"
	"github.com/itprism/itpcron/internal/event"
	"github.com/itprism/itpcron/internal/logger"
	"github.com/itprism/itpcron/internal/messages"
)

// Dispatcher triggers every handler of an event and reports the first failure.
type Dispatcher interface {
	Trigger(ctx context.Context, name string, args ...any) error
}

// ErrorLog receives the message of a failed dispatch.
type ErrorLog interface {
	Append(message string) error
}

// Recorder receives the outcome of every run.
type Recorder interface {
	RecordRun(mode string, duration time.Duration, err error)
}

// Invocation is one request to run, built once from CLI arguments.
type Invocation struct {
	RunID     string
	Mode      Mode
	Context   string
	StartTime time.Time
}

// NewInvocation stamps a run id and start time and sanitizes context.
func NewInvocation(mode Mode, context string) Invocation {
	return Invocation{
		RunID:     uuid.NewString(),
		Mode:      mode,
		Context:   SanitizeContext(context),
		StartTime: time.Now(),
	}
}

// Result describes a finished run.
type Result struct {
	RunID            string
	Mode             Mode
	QualifiedContext string
	Elapsed          time.Duration
	Err              error
}

// Config wires a Runner. Dispatcher and Output are required.
type Config struct {
	App        config.AppConfig
	Dispatcher Dispatcher
	Output     io.Writer
	ErrorLog   ErrorLog       // optional
	Metrics    Recorder       // optional
	Logger     *logger.Logger // optional
}

// Runner executes invocations.
type Runner struct {
	app        config.AppConfig
	dispatcher Dispatcher
	out        io.Writer
	outMu      sync.Mutex // один отчет за одну запись
	errLog     ErrorLog
	metrics    Recorder
	logger     *logger.Logger
}

// New creates a Runner from cfg.
func New(cfg Config) *Runner {
	log := cfg.Logger
	if log == nil {
		log = logger.Nop()
	}
	return &Runner{
		app:        cfg.App,
		dispatcher: cfg.Dispatcher,
		out:        cfg.Output,
		errLog:     cfg.ErrorLog,
		metrics:    cfg.Metrics,
		logger:     log,
	}
}

// Run executes inv and always prints the timing footer. The report is
// written to the output in a single Write.
func (r *Runner) Run(ctx context.Context, inv Invocation) Result {
	start := inv.StartTime
	if start.IsZero() {
		start = time.Now()
	}

	log := r.logger.With(
		logger.Field{Key: "run_id", Value: inv.RunID},
		logger.Field{Key: "mode", Value: inv.Mode.label()},
	)

	var report bytes.Buffer
	printer := messages.NewPrinter(r.app.Language, &report)

	printer.Raw(r.app.Title)
	printer.Raw(constants.Separator)

	result := Result{RunID: inv.RunID, Mode: inv.Mode}

	if name := inv.Mode.Event(); name != "" {
		result.QualifiedContext = QualifiedContext(r.app.Namespace, inv.Mode, inv.Context)

		printer.Line(constants.MsgModeContext, printer.Sprintf(inv.Mode.String()), result.QualifiedContext)
		printer.Raw(constants.Separator)

		log.Info("dispatching event",
			logger.Field{Key: "event", Value: name},
			logger.Field{Key: "context", Value: result.QualifiedContext})

		if err := r.dispatcher.Trigger(event.WithRunID(ctx, inv.RunID), name, result.QualifiedContext); err != nil {
			result.Err = err
			log.Error("event dispatch failed", err, logger.Field{Key: "event", Value: name})
			msg := errorMessage(err)
			r.logError(log, msg)
			printer.Raw(msg)
		}
	} else {
		log.Debug("no mode selected, nothing dispatched")
	}

	result.Elapsed = time.Since(start)

	printer.Line(constants.MsgTotalTime, strconv.FormatFloat(result.Elapsed.Seconds(), 'f', 3, 64))
	printer.Blank()
	r.write(log, report.Bytes())

	if r.metrics != nil {
		r.metrics.RecordRun(inv.Mode.label(), result.Elapsed, result.Err)
	}

	log.Info("run finished", logger.Field{Key: "elapsed", Value: result.Elapsed})
	return result
}

func (r *Runner) write(log *logger.Logger, report []byte) {
	if r.out == nil {
		return
	}
	r.outMu.Lock()
	defer r.outMu.Unlock()
	if _, err := r.out.Write(report); err != nil {
		log.Warn("report not written", logger.Field{Key: "reason", Value: err.Error()})
	}
}

// errorMessage is the text printed and logged for a failed dispatch: the
// handler's own message, without the event and plugin prefix.
func errorMessage(err error) string {
	var herr *event.HandlerError
	if errors.As(err, &herr) && herr.Err != nil {
		return herr.Err.Error()
	}
	return err.Error()
}

func (r *Runner) logError(log *logger.Logger, msg string) {
	if r.errLog == nil {
		return
	}
	if appendErr := r.errLog.Append(msg); appendErr != nil {
		log.Warn("error log not written", logger.Field{Key: "reason", Value: appendErr.Error()})
	}
}
