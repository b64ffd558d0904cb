package tracing

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInjectTraceID(t *testing.T) {
	ctx := InjectTraceID(context.Background())

	var buf bytes.Buffer
	logger := log.Ctx(ctx).Output(&buf)
	logger.Info().Msg("tick")

	require.Contains(t, buf.String(), `"trace_id":"`)

	// A second injection starts a fresh trace.
	var buf2 bytes.Buffer
	logger2 := log.Ctx(InjectTraceID(context.Background())).Output(&buf2)
	logger2.Info().Msg("tick")
	assert.NotEqual(t, buf.String(), buf2.String())
}
