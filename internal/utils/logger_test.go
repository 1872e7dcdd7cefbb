package utils_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/klarkent2022/smart-irrigation/internal/utils"
)

func TestNewLogger(t *testing.T) {
	t.Run("development logs debug", func(t *testing.T) {
		logger, err := utils.NewLogger(true)
		require.NoError(t, err)
		assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))
	})

	t.Run("production starts at info", func(t *testing.T) {
		logger, err := utils.NewLogger(false)
		require.NoError(t, err)
		assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))
		assert.True(t, logger.Core().Enabled(zapcore.InfoLevel))
	})
}
