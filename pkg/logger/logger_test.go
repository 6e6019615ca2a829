package logger_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/jhoicas/Inventario-minero/pkg/logger"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestFromContext_UsaLoggerDeLaPeticion(t *testing.T) {
	var buf bytes.Buffer
	base := logger.FromZerolog(zerolog.New(&buf))
	reqLog := base.WithFields("c1", "u1", "req-9")

	ctx := logger.WithContext(context.Background(), reqLog)
	logger.FromContext(ctx, nil).Info().Msg("hola")

	out := buf.String()
	assert.Contains(t, out, `"company_id":"c1"`)
	assert.Contains(t, out, `"request_id":"req-9"`)
}

func TestFromContext_Fallback(t *testing.T) {
	fb := logger.Nop()
	assert.Same(t, fb, logger.FromContext(context.Background(), fb))
	assert.NotNil(t, logger.FromContext(context.Background(), nil))
}
