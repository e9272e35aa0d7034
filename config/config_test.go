package config

import (
	"bytes"
	"flag"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-graphdir/pkg/types"
)

// TestNewConfig 测试创建默认配置
func TestNewConfig(t *testing.T) {
	cfg := NewConfig()
	require.NotNil(t, cfg)

	assert.NoError(t, cfg.Validate())
	assert.Equal(t, DefaultTopicName, cfg.Graph.TopicName)
	assert.Equal(t, 5*time.Second, cfg.Graph.PublishTimeout.Duration())
	assert.True(t, cfg.Graph.AnnounceOnPeerJoin)
	assert.True(t, cfg.Graph.RemoveOnPeerLeave)
	assert.True(t, cfg.Diagnostics.EnableMetrics)
	assert.Equal(t, "graphdir", cfg.Diagnostics.MetricsNamespace)
	assert.Equal(t, "info", cfg.Log.Level)
}

// TestGraphConfig 测试目录同步配置
func TestGraphConfig(t *testing.T) {
	t.Run("EmptyTopic", func(t *testing.T) {
		cfg := DefaultGraphConfig()
		cfg.TopicName = "  "
		assert.Error(t, cfg.Validate())
	})

	t.Run("NegativeTimeout", func(t *testing.T) {
		cfg := DefaultGraphConfig()
		cfg.PublishTimeout = Duration(-time.Second)
		assert.Error(t, cfg.Validate())
	})

	t.Run("ParticipantID", func(t *testing.T) {
		cfg := DefaultGraphConfig()
		cfg.ParticipantID = types.NewParticipantID().String()
		assert.NoError(t, cfg.Validate())

		cfg.ParticipantID = "not-base58-0OIl"
		assert.ErrorIs(t, cfg.Validate(), types.ErrInvalidGID)
	})
}

// TestDiagnosticsConfig 测试诊断配置
func TestDiagnosticsConfig(t *testing.T) {
	cfg := DefaultDiagnosticsConfig()
	cfg.MetricsNamespace = "bad-namespace"
	assert.Error(t, cfg.Validate())

	// 禁用指标时不检查命名空间
	cfg.EnableMetrics = false
	assert.NoError(t, cfg.Validate())
}

// TestLogConfig 测试日志配置
func TestLogConfig(t *testing.T) {
	cfg := DefaultLogConfig()
	assert.NoError(t, cfg.Validate())

	cfg.Level = "verbose"
	assert.Error(t, cfg.Validate())
	assert.Error(t, cfg.Apply(&bytes.Buffer{}))

	cfg = LogConfig{Level: "debug", Format: "json"}
	require.NoError(t, cfg.Apply(&bytes.Buffer{}))
	t.Cleanup(func() { _ = DefaultLogConfig().Apply(nil) })
}

// TestFromJSON 测试从 JSON 加载
func TestFromJSON(t *testing.T) {
	data := []byte(`{
		"graph": {"topic_name": "custom/topic", "publish_timeout": "250ms"},
		"diagnostics": {"enable_metrics": false},
		"log": {"level": "debug"}
	}`)

	cfg, err := FromJSON(data)
	require.NoError(t, err)
	assert.Equal(t, "custom/topic", cfg.Graph.TopicName)
	assert.Equal(t, 250*time.Millisecond, cfg.Graph.PublishTimeout.Duration())
	assert.False(t, cfg.Diagnostics.EnableMetrics)
	assert.Equal(t, "debug", cfg.Log.Level)

	// 未出现的字段保留默认值
	assert.True(t, cfg.Graph.AnnounceOnPeerJoin)
	assert.Equal(t, "text", cfg.Log.Format)

	_, err = FromJSON([]byte(`{"graph": {"publish_timeout": "soon"}}`))
	assert.Error(t, err)
}

// TestToJSON 测试序列化后可重新加载
func TestToJSON(t *testing.T) {
	cfg := NewConfig()
	cfg.Graph.PublishTimeout = Duration(time.Minute)

	data, err := ToJSON(cfg)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"publish_timeout": "1m0s"`)

	loaded, err := FromJSON(data)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)

	_, err = ToJSON(nil)
	assert.ErrorIs(t, err, ErrNilConfig)
}

// TestDuration_Numeric 测试纳秒整数格式
func TestDuration_Numeric(t *testing.T) {
	var d Duration
	require.NoError(t, d.UnmarshalJSON([]byte(`1000000`)))
	assert.Equal(t, time.Millisecond, d.Duration())
	assert.Equal(t, "1ms", d.String())

	assert.ErrorIs(t, d.UnmarshalJSON([]byte(`true`)), ErrDurationFormat)
	assert.ErrorIs(t, d.UnmarshalJSON([]byte(`-5`)), ErrNegativeDuration)
	assert.ErrorIs(t, d.UnmarshalJSON([]byte(`"-1s"`)), ErrNegativeDuration)
	assert.Error(t, d.UnmarshalJSON([]byte(`"soon"`)))
	assert.Equal(t, time.Millisecond, d.Duration())
}

// TestDuration_NullKeepsDefault null 不覆盖默认超时
func TestDuration_NullKeepsDefault(t *testing.T) {
	cfg, err := FromJSON([]byte(`{"graph": {"publish_timeout": null}}`))
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, cfg.Graph.PublishTimeout.Duration())
}

// TestDuration_FlagValue 作为命令行参数使用
func TestDuration_FlagValue(t *testing.T) {
	d := Duration(5 * time.Second)
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Var(&d, "publish-timeout", "")

	require.NoError(t, fs.Parse([]string{"-publish-timeout", "750ms"}))
	assert.Equal(t, 750*time.Millisecond, d.Duration())

	assert.Error(t, fs.Parse([]string{"-publish-timeout", "-2s"}))
	assert.Equal(t, 750*time.Millisecond, d.Duration())

	_, err := ParseDuration("1h")
	assert.NoError(t, err)
}

// TestValidateAndFix 测试自动修复
func TestValidateAndFix(t *testing.T) {
	cfg := &Config{}
	fixed, err := ValidateAndFix(cfg)
	require.NoError(t, err)
	assert.Equal(t, DefaultTopicName, fixed.Graph.TopicName)
	assert.Equal(t, "graphdir", fixed.Diagnostics.MetricsNamespace)
	assert.Equal(t, "info", fixed.Log.Level)

	fixed, err = ValidateAndFix(nil)
	require.NoError(t, err)
	assert.NotNil(t, fixed)

	assert.ErrorIs(t, ValidateAll(nil), ErrNilConfig)
	assert.Panics(t, func() { MustValidate(nil) })
}

// TestCloneConfig 测试克隆
func TestCloneConfig(t *testing.T) {
	cfg := NewConfig()
	cloned := CloneConfig(cfg)
	cloned.Graph.TopicName = "other"

	assert.Equal(t, DefaultTopicName, cfg.Graph.TopicName)
	assert.Nil(t, CloneConfig(nil))
}
