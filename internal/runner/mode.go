package runner

import (
	"fmt"
	"strings"

	"github.com/itprism/itpcron/internal/constants"
)

// Mode selects which event a run dispatches.
type Mode int

const (
	ModeNone Mode = iota
	ModeCreate
	ModeUpdate
	ModeExecute
)

// String returns the segment used in qualified contexts ("" for ModeNone).
func (m Mode) String() string {
	switch m {
	case ModeCreate:
		return "create"
	case ModeUpdate:
		return "update"
	case ModeExecute:
		return "execute"
	default:
		return ""
	}
}

// Event returns the event name fired for m, or "" for ModeNone.
func (m Mode) Event() string {
	switch m {
	case ModeCreate:
		return constants.EventCronCreate
	case ModeUpdate:
		return constants.EventCronUpdate
	case ModeExecute:
		return constants.EventCronExecute
	default:
		return ""
	}
}

// label is the metrics label of m.
func (m Mode) label() string {
	if m == ModeNone {
		return "none"
	}
	return m.String()
}

// ParseMode converts "create", "update" or "execute" to a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "create":
		return ModeCreate, nil
	case "update":
		return ModeUpdate, nil
	case "execute":
		return ModeExecute, nil
	case "", "none":
		return ModeNone, nil
	default:
		return ModeNone, fmt.Errorf("unknown mode %q (expected: create, update, execute)", s)
	}
}

// ModeFromFlags picks the mode from the three CLI switches. When more than
// one is set the first in the order create, update, execute wins and
// ambiguous is true.
func ModeFromFlags(create, update, execute bool) (mode Mode, ambiguous bool) {
	set := 0
	for _, b := range []bool{create, update, execute} {
		if b {
			set++
		}
	}

	switch {
	case create:
		mode = ModeCreate
	case update:
		mode = ModeUpdate
	case execute:
		mode = ModeExecute
	}
	return mode, set > 1
}
