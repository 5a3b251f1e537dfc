package crudkit_test

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/crudkit/pkg/crudkit"
)

func TestLogrusLogger(t *testing.T) {
	t.Parallel()

	base, hook := test.NewNullLogger()
	base.SetLevel(logrus.DebugLevel)

	logger := crudkit.NewLogrusLogger(base).With(map[string]interface{}{"component": "form"})

	logger.Debug("Loading record", map[string]interface{}{"state": "edit"})
	logger.Warn("operation deferred by before hook", nil)

	entries := hook.AllEntries()
	require.Len(t, entries, 2)

	assert.Equal(t, logrus.DebugLevel, entries[0].Level)
	assert.Equal(t, "Loading record", entries[0].Message)
	assert.Equal(t, "edit", entries[0].Data["state"])
	assert.Equal(t, "form", entries[0].Data["component"])

	assert.Equal(t, logrus.WarnLevel, entries[1].Level)
	assert.Equal(t, "form", entries[1].Data["component"])
}

func TestNopLogger(t *testing.T) {
	t.Parallel()

	logger := crudkit.NopLogger()

	assert.NotPanics(t, func() {
		logger.Debug("a", nil)
		logger.Info("b", nil)
		logger.Warn("c", nil)
		logger.Error("d", nil)
	})
}
