package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew_Modes(t *testing.T) {
	for _, mode := range []string{"dev", "prod", "PRODUCTION", ""} {
		l, err := New(mode)
		require.NoError(t, err, mode)
		require.NotNil(t, l.SugaredLogger)
	}
}

func TestWith_AddsFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := &Logger{SugaredLogger: zap.New(core).Sugar()}

	l.With("user_id", "u1").Info("quest completed", "streak", 4)

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "quest completed", entries[0].Message)
	fields := entries[0].ContextMap()
	assert.Equal(t, "u1", fields["user_id"])
	assert.EqualValues(t, 4, fields["streak"])
}

func TestNop(t *testing.T) {
	l := Nop()
	l.Debug("ignored")
	l.Warn("ignored", "k", "v")
}
