// Package errlog appends run errors to error_cron.txt.
//
// The file is opened, appended and closed for every entry. Nothing is held
// between entries, so concurrent processes rely on O_APPEND semantics.
package errlog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/itprism/itpcron/internal/constants"
)

// ErrNotWritable is returned when the log directory cannot be written to.
var ErrNotWritable = errors.New("log directory is not writable")

// Log is an append-only text log inside a directory.
type Log struct {
	dir  string
	name string
}

// New returns a Log writing constants.ErrorLogFilename inside dir.
func New(dir string) *Log {
	return &Log{dir: dir, name: constants.ErrorLogFilename}
}

// Path returns the full path of the log file.
func (l *Log) Path() string {
	return filepath.Join(l.dir, l.name)
}

// Append writes message followed by a newline. When the directory is not
// writable the entry is dropped and ErrNotWritable is returned.
func (l *Log) Append(message string) error {
	if !writableDir(l.dir) {
		return fmt.Errorf("%w: %s", ErrNotWritable, l.dir)
	}

	f, err := os.OpenFile(l.Path(), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open error log: %w", err)
	}

	if _, err := f.WriteString(message + "\n"); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to append error log: %w", err)
	}
	return f.Close()
}
