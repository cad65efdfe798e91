package logger

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew_Modes(t *testing.T) {
	dev, err := New("dev")
	require.NoError(t, err)
	require.True(t, dev.SugaredLogger.Desugar().Core().Enabled(zapcore.DebugLevel))

	prod, err := New("PROD")
	require.NoError(t, err)
	require.False(t, prod.SugaredLogger.Desugar().Core().Enabled(zapcore.DebugLevel))

	child := prod.With("component", "test")
	require.NotNil(t, child)
	Nop().Info("discarded", "k", "v")
}
