package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &m), line)
		out = append(out, m)
	}
	return out
}

func TestZerologProviderFields(t *testing.T) {
	var buf bytes.Buffer
	p := NewZerologProviderWithWriter(&buf, DebugLevel)

	logger := p.GetLoggerWithName("wls").With(ComponentKey, "linear")
	logger.Info("Fit completed",
		MethodKey, "qr",
		SamplesKey, 10,
		ScaleKey, 0.25,
		"error", errors.New("boom"),
	)

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	entry := lines[0]
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "Fit completed", entry["message"])
	assert.Equal(t, "wls", entry[LoggerNameKey])
	assert.Equal(t, "linear", entry[ComponentKey])
	assert.Equal(t, "qr", entry[MethodKey])
	assert.Equal(t, float64(10), entry[SamplesKey])
	assert.Equal(t, 0.25, entry[ScaleKey])
	assert.Equal(t, "boom", entry["error"])
	assert.Contains(t, entry, "time")
}

func TestZerologProviderLevels(t *testing.T) {
	var buf bytes.Buffer
	p := NewZerologProviderWithWriter(&buf, WarnLevel)
	logger := p.GetLogger()

	logger.Debug("hidden")
	logger.Info("hidden")
	logger.Warn("shown")
	logger.Error("shown")
	assert.Len(t, decodeLines(t, &buf), 2)

	buf.Reset()
	p.SetLevel(DebugLevel)
	p.GetLogger().Debug("now shown")
	assert.Len(t, decodeLines(t, &buf), 1)

	buf.Reset()
	p.SetLevel(Disabled)
	p.GetLogger().Error("hidden")
	assert.Zero(t, buf.Len())
}

func TestOddFieldsArePadded(t *testing.T) {
	var buf bytes.Buffer
	fields := []interface{}{IterationKey, 3, "dangling"}
	NewZerologProviderWithWriter(&buf, InfoLevel).GetLogger().Info("odd", fields...)

	entry := decodeLines(t, &buf)[0]
	assert.Equal(t, float64(3), entry[IterationKey])
	assert.Equal(t, "", entry["dangling"])
	assert.Len(t, fields, 3)
}

func TestToLogLevel(t *testing.T) {
	tests := map[string]Level{
		"debug":   DebugLevel,
		"INFO":    InfoLevel,
		"warning": WarnLevel,
		"error":   ErrorLevel,
		"off":     Disabled,
		"verbose": InfoLevel,
		"":        InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, ToLogLevel(in), in)
	}
}

func TestGlobalProvider(t *testing.T) {
	var buf bytes.Buffer
	SetProvider(NewZerologProviderWithWriter(&buf, InfoLevel))
	t.Cleanup(func() { SetProvider(NewZerologProvider(InfoLevel)) })

	GetLoggerWithName("robust").Info("IRLS completed", ConvergedKey, true)
	entry := decodeLines(t, &buf)[0]
	assert.Equal(t, "robust", entry[LoggerNameKey])
	assert.Equal(t, true, entry[ConvergedKey])

	buf.Reset()
	Nop().Error("discarded")
	assert.Zero(t, buf.Len())
}
