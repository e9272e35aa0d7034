package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   LevelDebug,
		"INFO":    LevelInfo,
		"warning": LevelWarn,
		" error ": LevelError,
		"":        LevelInfo,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("verbose")
	assert.Error(t, err)
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("JSON")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	f, err = ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatText, f)

	_, err = ParseFormat("xml")
	assert.Error(t, err)
}

// TestLazyLogger_FollowsDefault 测试 LazyLogger 跟随默认 logger 切换
func TestLazyLogger_FollowsDefault(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	l := Logger("test/component")

	var buf bytes.Buffer
	Configure(&buf, LevelDebug, FormatJSON)
	l.Debug("hello", "k", "v")

	out := buf.String()
	assert.True(t, strings.Contains(out, `"component":"test/component"`), out)
	assert.True(t, strings.Contains(out, `"k":"v"`), out)
	assert.True(t, l.Enabled(LevelDebug))

	buf.Reset()
	Configure(&buf, LevelWarn, FormatText)
	l.Info("dropped")
	assert.Empty(t, buf.String())
	assert.False(t, l.Enabled(LevelInfo))
}

func TestConfigureFromEnv(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	t.Setenv(EnvLogLevel, "error")
	t.Setenv(EnvLogFormat, "json")
	require.NoError(t, ConfigureFromEnv())
	assert.False(t, Logger("x").Enabled(LevelWarn))

	t.Setenv(EnvLogLevel, "loud")
	assert.Error(t, ConfigureFromEnv())
}

func TestTruncateID(t *testing.T) {
	assert.Equal(t, "abc", TruncateID("abc", 8))
	assert.Equal(t, "abcdefgh", TruncateID("abcdefghij", 8))
}
