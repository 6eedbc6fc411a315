package plugins

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/wasilibs/go-re2"

	"github.com/itprism/itpcron/internal/constants"
	"github.com/itprism/itpcron/internal/event"
	"github.com/itprism/itpcron/internal/logger"
	"github.com/itprism/itpcron/internal/retry"
)

// TypeExec runs an external command for every subscribed event.
const TypeExec = "exec"

// maxOutputInError caps how much command output is copied into an error.
const maxOutputInError = 512

// ExecParams are the params of an exec manifest.
type ExecParams struct {
	Command        string            `yaml:"command"`
	Args           []string          `yaml:"args"`
	Workdir        string            `yaml:"workdir"`
	Timeout        string            `yaml:"timeout"`
	ContextPattern string            `yaml:"context_pattern"`
	Env            map[string]string `yaml:"env"`
	Retries        int               `yaml:"retries"`       // extra attempts after a failure
	RetryBackoff   string            `yaml:"retry_backoff"` // first backoff, doubled per attempt
}

// ExecPlugin runs a command with the qualified context as input.
// {context} and {event} in args are substituted; the same values are also
// exported as ITPCRON_CONTEXT and ITPCRON_EVENT.
type ExecPlugin struct {
	name    string
	params  ExecParams
	timeout time.Duration
	retry   retry.Config
	pattern *re2.Regexp
	logger  *logger.Logger
}

// NewExecPlugin is the Factory of TypeExec.
func NewExecPlugin(m Manifest, log *logger.Logger) (Plugin, error) {
	var params ExecParams
	if err := m.DecodeParams(&params); err != nil {
		return nil, err
	}
	if params.Command == "" {
		return nil, fmt.Errorf("params.command is required")
	}

	p := &ExecPlugin{
		name:   m.Name,
		params: params,
		logger: log,
	}

	if params.Timeout != "" {
		d, err := time.ParseDuration(params.Timeout)
		if err != nil {
			return nil, fmt.Errorf("params.timeout is invalid: %w", err)
		}
		if d <= 0 {
			return nil, fmt.Errorf("params.timeout must be positive")
		}
		p.timeout = d
	}

	if params.Retries < 0 {
		return nil, fmt.Errorf("params.retries must not be negative")
	}
	p.retry = retry.Config{MaxAttempts: params.Retries + 1, Logger: log}
	if params.RetryBackoff != "" {
		d, err := time.ParseDuration(params.RetryBackoff)
		if err != nil {
			return nil, fmt.Errorf("params.retry_backoff is invalid: %w", err)
		}
		p.retry.InitialBackoff = d
	}

	if params.ContextPattern != "" {
		re, err := re2.Compile(params.ContextPattern)
		if err != nil {
			return nil, fmt.Errorf("params.context_pattern is invalid: %w", err)
		}
		p.pattern = re
	}

	return p, nil
}

func (p *ExecPlugin) Name() string { return p.name }

func (p *ExecPlugin) Handlers() map[string]event.Handler {
	return map[string]event.Handler{
		constants.EventCronCreate:  p.handler(constants.EventCronCreate),
		constants.EventCronUpdate:  p.handler(constants.EventCronUpdate),
		constants.EventCronExecute: p.handler(constants.EventCronExecute),
	}
}

func (p *ExecPlugin) handler(name string) event.Handler {
	return func(ctx context.Context, args ...any) error {
		qualified, err := event.StringArg(args, 0)
		if err != nil {
			return err
		}

		if p.pattern != nil && !p.pattern.MatchString(qualified) {
			p.logger.Debug("context does not match pattern, skipping",
				logger.Field{Key: "context", Value: qualified})
			return nil
		}

		return retry.Do(ctx, p.retry, func(ctx context.Context) error {
			return p.run(ctx, name, qualified)
		})
	}
}

func (p *ExecPlugin) run(ctx context.Context, name, qualified string) error {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	replacer := strings.NewReplacer("{context}", qualified, "{event}", name)
	args := make([]string, len(p.params.Args))
	for i, a := range p.params.Args {
		args[i] = replacer.Replace(a)
	}

	cmd := exec.CommandContext(ctx, p.params.Command, args...)
	cmd.Dir = p.params.Workdir
	cmd.Env = append(os.Environ(),
		constants.EnvContext+"="+qualified,
		constants.EnvEvent+"="+name,
		constants.EnvRunID+"="+event.RunID(ctx),
	)
	for k, v := range p.params.Env {
		cmd.Env = append(cmd.Env, k+"="+replacer.Replace(v))
	}

	start := time.Now()
	output, err := cmd.CombinedOutput()
	fields := []logger.Field{
		{Key: "command", Value: p.params.Command},
		{Key: "event", Value: name},
		{Key: "duration", Value: time.Since(start)},
	}

	if err != nil {
		// отсутствующую команду повторять бессмысленно
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
			return retry.Permanent(fmt.Errorf("%s: %w", p.params.Command, err))
		}
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			err = fmt.Errorf("timed out after %s: %w", p.timeout, ctx.Err())
		}
		out := truncate(strings.TrimSpace(string(output)), maxOutputInError)
		if out != "" {
			return fmt.Errorf("%s: %w: %s", p.params.Command, err, out)
		}
		return fmt.Errorf("%s: %w", p.params.Command, err)
	}

	p.logger.Debug("command finished", append(fields, logger.Field{Key: "output", Value: string(output)})...)
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
