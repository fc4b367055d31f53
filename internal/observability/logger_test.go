// internal/observability/logger_test.go
package observability

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/xkilldash9x/uxsim/internal/config"
)

// syncBuffer is a goroutine safe WriteSyncer for capturing output.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) Sync() error { return nil }

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestNewLogger(t *testing.T) {
	t.Run("console output is colorized and named", func(t *testing.T) {
		out := &syncBuffer{}
		logger, err := NewLogger(config.LoggerConfig{
			Level:       "debug",
			Format:      "console",
			ServiceName: "TestService",
			Colors:      config.ColorConfig{Info: "green"},
		}, out)
		require.NoError(t, err)

		logger.Named("synth").Info("Injecting key event.", zap.String("type", "keydown"))
		logger.Debug("Uncolored debug line.")

		output := out.String()
		assert.Contains(t, output, colorGreen+"INFO"+colorReset)
		assert.Contains(t, output, "TestService.synth.")
		assert.Contains(t, output, "Injecting key event.")
		assert.Contains(t, output, `"type": "keydown"`)
		assert.Contains(t, output, "\tDEBUG\t", "levels without a color are plain")
	})

	t.Run("json output", func(t *testing.T) {
		out := &syncBuffer{}
		logger, err := NewLogger(config.LoggerConfig{
			Level:       "info",
			Format:      "json",
			ServiceName: "JSONTest",
		}, out)
		require.NoError(t, err)

		logger.Warn("This is a JSON message.", zap.String("key", "value"))

		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(out.String()), &entry), "Log output should be valid JSON")
		assert.Equal(t, "warn", entry["level"])
		assert.Equal(t, "JSONTest", entry["logger"])
		assert.Equal(t, "This is a JSON message.", entry["msg"])
		assert.Equal(t, "value", entry["key"])
	})

	t.Run("level filters output", func(t *testing.T) {
		out := &syncBuffer{}
		logger, err := NewLogger(config.LoggerConfig{Level: "warn", Format: "json"}, out)
		require.NoError(t, err)

		logger.Info("dropped")
		assert.Empty(t, out.String())
	})

	t.Run("invalid level", func(t *testing.T) {
		_, err := NewLogger(config.LoggerConfig{Level: "chatty"}, &syncBuffer{})
		assert.Error(t, err)
	})

	t.Run("log file receives json", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "uxsim.log")
		logger, err := NewLogger(config.LoggerConfig{
			Level:   "debug",
			Format:  "console",
			LogFile: path,
			MaxSize: 1,
		}, &syncBuffer{})
		require.NoError(t, err)

		logger.Error("This should go to the file.")
		require.NoError(t, logger.Sync())

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(content), `"msg":"This should go to the file."`)
	})
}

func TestInitialize(t *testing.T) {
	t.Run("only the first call takes effect", func(t *testing.T) {
		ResetForTest()
		t.Cleanup(ResetForTest)
		out := &syncBuffer{}

		Initialize(config.LoggerConfig{Level: "info", Format: "json", ServiceName: "First"}, zapcore.AddSync(out))
		logger1 := GetLogger()
		Initialize(config.LoggerConfig{Level: "debug", Format: "json", ServiceName: "Second"}, zapcore.AddSync(out))
		logger2 := GetLogger()

		assert.Same(t, logger1, logger2)
		logger2.Info("test")
		Sync()

		assert.True(t, strings.Contains(out.String(), "First"))
		assert.False(t, strings.Contains(out.String(), "Second"))
	})

	t.Run("invalid level falls back to info", func(t *testing.T) {
		ResetForTest()
		t.Cleanup(ResetForTest)
		out := &syncBuffer{}

		Initialize(config.LoggerConfig{Level: "chatty", Format: "json"}, out)
		GetLogger().Debug("hidden")
		GetLogger().Info("shown")

		assert.NotContains(t, out.String(), "hidden")
		assert.Contains(t, out.String(), "shown")
	})
}

func TestGetLogger(t *testing.T) {
	t.Run("fallback before initialization", func(t *testing.T) {
		ResetForTest()
		require.NotNil(t, GetLogger())
	})

	t.Run("global logger after initialization", func(t *testing.T) {
		ResetForTest()
		t.Cleanup(ResetForTest)
		Initialize(config.LoggerConfig{Level: "info", Format: "json", ServiceName: "GlobalTest"}, &syncBuffer{})

		assert.Same(t, globalLogger.Load(), GetLogger())
	})
}
