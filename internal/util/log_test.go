package util_test

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chapool/txengine/internal/config"
	"github.com/chapool/txengine/internal/util"
)

func TestLogFromContext(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, &log.Logger, util.LogFromContext(ctx))

	var buf bytes.Buffer
	l := zerolog.New(&buf).With().Str("component", "test").Logger()
	ctx = util.WithLogger(ctx, l)

	util.LogFromContext(ctx).Info().Msg("hello")
	assert.Contains(t, buf.String(), `"component":"test"`)
	assert.Contains(t, buf.String(), `"message":"hello"`)
}

func TestLogFromContextDisabled(t *testing.T) {
	ctx := util.DisableLogger(context.Background(), true)
	assert.True(t, util.ShouldDisableLogger(ctx))
	assert.Equal(t, zerolog.Disabled, util.LogFromContext(ctx).GetLevel())

	assert.False(t, util.ShouldDisableLogger(context.Background()))
}

func TestConfigureLogger(t *testing.T) {
	originalLogger := log.Logger
	originalLevel := zerolog.GlobalLevel()
	t.Cleanup(func() {
		log.Logger = originalLogger
		zerolog.SetGlobalLevel(originalLevel)
	})

	file := filepath.Join(t.TempDir(), "txengine.log")
	closer, err := util.ConfigureLogger(config.LoggerConfig{
		Level:          "debug",
		File:           file,
		FileMaxSizeMB:  1,
		FileMaxAgeDays: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())
	require.NoError(t, closer.Close())

	_, err = util.ConfigureLogger(config.LoggerConfig{Level: "loud"})
	assert.Error(t, err)
}
