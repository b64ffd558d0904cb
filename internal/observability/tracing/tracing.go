package tracing

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// traceField correlates every log line of one arbiter run, from warm boot
// through each control cycle.
const traceField = "trace_id"

func InjectTraceID(ctx context.Context) context.Context {
	id := uuid.New().String()
	logger := log.With().Str(traceField, id).Logger()
	return logger.WithContext(ctx)
}
