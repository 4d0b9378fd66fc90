package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewLevels(t *testing.T) {
	cases := []struct {
		level string
		want  zap.AtomicLevel
	}{
		{"debug", zap.NewAtomicLevelAt(zap.DebugLevel)},
		{"warn", zap.NewAtomicLevelAt(zap.WarnLevel)},
		{"error", zap.NewAtomicLevelAt(zap.ErrorLevel)},
		{"bogus", zap.NewAtomicLevelAt(zap.InfoLevel)},
	}
	for _, c := range cases {
		t.Run(c.level, func(t *testing.T) {
			log, err := New("prod", c.level)
			require.NoError(t, err)
			assert.True(t, log.Core().Enabled(c.want.Level()))
			if c.want.Level() > zap.DebugLevel {
				assert.False(t, log.Core().Enabled(c.want.Level()-1))
			}
		})
	}
}
