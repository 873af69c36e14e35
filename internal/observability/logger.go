package observability

import (
	"log/slog"

	"github.com/couchcryptid/bristol-crime-etl/internal/config"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/google/uuid"
)

// NewLogger builds the job logger from LOG_LEVEL and LOG_FORMAT and installs
// it as the slog default. Every record carries the job name and a run_id
// unique to this invocation.
func NewLogger(cfg *config.Config, job string) *slog.Logger {
	logger := sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat).With(
		"job", job,
		"run_id", uuid.NewString(),
	)
	slog.SetDefault(logger)
	return logger
}
