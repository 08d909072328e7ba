package logging_test

import (
	"bytes"
	"testing"

	"github.com/3bit-techs/vvpctl/pkg/utils/logging"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	logger, err := logging.NewLogger(&out, "info")
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.WithField("deployment", "default/orders").Info("patched")

	assert.NotContains(t, out.String(), "hidden")
	assert.Contains(t, out.String(), "level=info")
	assert.Contains(t, out.String(), `msg=patched`)
	assert.Contains(t, out.String(), "deployment=default/orders")
}

func TestNewLoggerInvalidLevel(t *testing.T) {
	t.Parallel()

	_, err := logging.NewLogger(&bytes.Buffer{}, "loud")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid log level "loud"`)
}

//nolint:paralleltest // mutates the standard logger
func TestConfigureStandard(t *testing.T) {
	original := logrus.StandardLogger().Out
	originalLevel := logrus.GetLevel()

	t.Cleanup(func() {
		logrus.SetOutput(original)
		logrus.SetLevel(originalLevel)
	})

	var out bytes.Buffer

	require.NoError(t, logging.ConfigureStandard(&out, "debug"))

	logrus.Debug("expanding placeholders")

	assert.Equal(t, logrus.DebugLevel, logrus.GetLevel())
	assert.Contains(t, out.String(), "expanding placeholders")

	require.Error(t, logging.ConfigureStandard(&out, "nope"))
	assert.Equal(t, logrus.DebugLevel, logrus.GetLevel(), "invalid level leaves the logger untouched")
}
