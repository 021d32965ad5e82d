// Package unitlog wires up zerolog for the whole process: one base logger
// configured from internal/config, and scoped child loggers for a
// particular workflow/execution so every line carries that context.
package unitlog

import (
	"os"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var setupOnce sync.Once

// Setup configures the global zerolog logger at the given level
// ("debug"/"info"/"warn"/"error"), defaulting to info on an unknown value.
// Safe to call more than once; only the first call takes effect.
func Setup(level string) {
	setupOnce.Do(func() {
		zerolog.SetGlobalLevel(parseLevel(level))
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	})
}

func parseLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// WorkflowLogger returns a child logger with workflow_id bound, for a
// single compile or codegen pass.
func WorkflowLogger(workflowID string) zerolog.Logger {
	return log.With().Str("workflow_id", workflowID).Logger()
}

// ExecutionLogger returns a child logger with workflow_id and execution_id
// bound, for one mission run.
func ExecutionLogger(workflowID, executionID string) zerolog.Logger {
	return log.With().
		Str("workflow_id", workflowID).
		Str("execution_id", executionID).
		Logger()
}
