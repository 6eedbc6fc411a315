package cron

import (
	"fmt"

	"github.com/itprism/itpcron/internal/logger"
)

// logAdapter реализует cron.Logger поверх internal/logger
type logAdapter struct {
	logger *logger.Logger
}

func newLogAdapter(log *logger.Logger) logAdapter {
	return logAdapter{logger: log}
}

// Info is used by robfig/cron for scheduling chatter, so it goes to debug.
func (a logAdapter) Info(msg string, keysAndValues ...interface{}) {
	a.logger.Debug("cron: "+msg, toFields(keysAndValues)...)
}

func (a logAdapter) Error(err error, msg string, keysAndValues ...interface{}) {
	a.logger.Error("cron: "+msg, err, toFields(keysAndValues)...)
}

func toFields(kv []interface{}) []logger.Field {
	fields := make([]logger.Field, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		fields = append(fields, logger.Field{Key: fmt.Sprint(kv[i]), Value: kv[i+1]})
	}
	return fields
}
