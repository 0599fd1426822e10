package logging_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/aqasim81/migrationcop/internal/logging"
)

func TestNew_filtersByLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	log := logging.New(&buf, zapcore.InfoLevel)
	log.Debug("hidden")
	log.Info("schema snapshot unavailable", zap.String("path", "db/schema.rb"))

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "schema snapshot unavailable")
	assert.Contains(t, out, "db/schema.rb")
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	lvl, err := logging.ParseLevel("warn")
	require.NoError(t, err)
	assert.Equal(t, zapcore.WarnLevel, lvl)

	_, err = logging.ParseLevel("loud")
	require.ErrorIs(t, err, logging.ErrInvalidLevel)
}
