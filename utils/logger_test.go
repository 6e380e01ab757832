package utils

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, logrus.WarnLevel, ParseLevel("WARN"))
	assert.Equal(t, logrus.InfoLevel, ParseLevel("nonsense"))
	assert.Equal(t, logrus.InfoLevel, ParseLevel(""))
}

func TestInitLoggerJSON(t *testing.T) {
	var out, errOut bytes.Buffer
	InitLoggerWithWriters("info", "json", &out, &errOut)
	defer InitLoggerWithWriters("info", "text", &bytes.Buffer{}, &bytes.Buffer{})

	InfoLogger.WithField("table_number", 5).Info("reservation committed")
	ErrorLogger.Error("store down")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(out.Bytes(), &entry))
	assert.Equal(t, "reservation committed", entry["msg"])
	assert.Equal(t, float64(5), entry["table_number"])
	assert.Contains(t, errOut.String(), "store down")
}

func TestInitLoggerSuppressesDebug(t *testing.T) {
	var out bytes.Buffer
	InitLoggerWithWriters("info", "text", &out, &bytes.Buffer{})

	InfoLogger.Debug("hidden")
	InfoLogger.Info("shown")

	assert.NotContains(t, out.String(), "hidden")
	assert.Contains(t, out.String(), "shown")
}

func TestErrorLoggerKeepsWarnings(t *testing.T) {
	var errOut bytes.Buffer
	InitLoggerWithWriters("info", "text", &bytes.Buffer{}, &errOut)
	defer InitLoggerWithWriters("info", "text", &bytes.Buffer{}, &bytes.Buffer{})

	ErrorLogger.WithField("status", 409).Warn("Request rejected")
	ErrorLogger.Info("not for the error stream")

	assert.Contains(t, errOut.String(), "Request rejected")
	assert.Contains(t, errOut.String(), "status=409")
	assert.NotContains(t, errOut.String(), "not for the error stream")
}
