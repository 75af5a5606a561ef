package logger_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AdamDanklefsen/OptionsPricing-FD/logger"
)

func TestNew_JSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l, err := logger.New(&buf, logger.Config{Level: "warn", Format: "json"})
	require.NoError(t, err)
	assert.Equal(t, logrus.WarnLevel, l.GetLevel())

	l.Info("hidden")
	l.WithField("step", 3).Warn("shown")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "shown", entry["msg"])
	assert.Equal(t, float64(3), entry["step"])
}

func TestNew_Defaults(t *testing.T) {
	t.Parallel()

	l, err := logger.New(&bytes.Buffer{}, logger.Config{})
	require.NoError(t, err)
	assert.Equal(t, logrus.InfoLevel, l.GetLevel())
	assert.IsType(t, &logrus.TextFormatter{}, l.Formatter)
}

func TestNew_Rejects(t *testing.T) {
	t.Parallel()

	_, err := logger.New(&bytes.Buffer{}, logger.Config{Level: "loud"})
	assert.Error(t, err)

	_, err = logger.New(&bytes.Buffer{}, logger.Config{Format: "xml"})
	assert.Error(t, err)
}
