package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"auto_seo_article_generator/illustrate"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `deepseek_api_key: ds-key
flux_api_key: flux-key
output_dir: out
llm:
  model: deepseek-chat
  retry_delay: 2s
  max_retries: 2
image:
  concurrency: 1
watermark:
  text: 示例
  position: top-left
`

func TestLoadMissingWritesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "config.yaml")
	_, err := Load(path)
	require.ErrorIs(t, err, ErrConfigInvalid)
	assert.Contains(t, err.Error(), "deepseek_api_key, flux_api_key")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "deepseek_api_key: \"\"")
	assert.Contains(t, string(data), "output_dir: output")
	assert.Contains(t, string(data), "retry_delay: 3s")
}

func TestLoadWrittenDefaultRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, WriteDefault(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	filled := strings.Replace(string(data), `deepseek_api_key: ""`, "deepseek_api_key: a", 1)
	filled = strings.Replace(filled, `flux_api_key: ""`, "flux_api_key: b", 1)
	cfg, err := Parse([]byte(filled))
	require.NoError(t, err)
	want := Default()
	want.DeepSeekAPIKey, want.FluxAPIKey = "a", "b"
	assert.Equal(t, want, cfg)
}

func TestParseOverridesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(sampleYAML))
	require.NoError(t, err)
	assert.Equal(t, "out", cfg.OutputDir)
	assert.Equal(t, "logs", cfg.LogDir)
	assert.Equal(t, "deepseek-chat", cfg.LLM.Model)
	assert.Equal(t, 2*time.Second, cfg.LLM.RetryDelay)
	assert.Equal(t, "示例", cfg.Watermark.Text)

	llm := cfg.LLMSettings()
	assert.Equal(t, "ds-key", llm.APIKey)
	assert.Equal(t, "deepseek-chat", llm.Model)
	assert.Equal(t, 2, cfg.RetryPolicy().Attempts)
	assert.Equal(t, "flux-key", cfg.ImageSettings().APIKey)
}

func TestValidate(t *testing.T) {
	base := Default()
	base.DeepSeekAPIKey, base.FluxAPIKey = "a", "b"
	require.NoError(t, base.Validate())

	offline := Default()
	offline.LLM.Provider, offline.Image.Provider = "mock", "placeholder"
	require.NoError(t, offline.Validate())

	bad := base
	bad.Watermark.Position = "middle"
	assert.ErrorIs(t, bad.Validate(), ErrConfigInvalid)

	bad = base
	bad.OutputDir = ""
	assert.ErrorIs(t, bad.Validate(), ErrConfigInvalid)

	bad = base
	bad.FluxAPIKey = "  "
	assert.ErrorIs(t, bad.Validate(), ErrConfigInvalid)
}

func TestParseZeroTemperature(t *testing.T) {
	cfg, err := Parse([]byte(sampleYAML))
	require.NoError(t, err)
	require.NotNil(t, cfg.LLMSettings().Temperature)
	assert.Equal(t, 1.0, *cfg.LLMSettings().Temperature)

	data := strings.Replace(sampleYAML, "  model: deepseek-chat\n", "  model: deepseek-chat\n  temperature: 0\n", 1)
	cfg, err = Parse([]byte(data))
	require.NoError(t, err)
	require.NotNil(t, cfg.LLMSettings().Temperature)
	assert.Equal(t, 0.0, *cfg.LLMSettings().Temperature)

	cfg.LLM.Temperature = ptr(-0.5)
	assert.ErrorIs(t, cfg.Validate(), ErrConfigInvalid)
}

func TestParseBadYAML(t *testing.T) {
	_, err := Parse([]byte("llm: [unclosed"))
	assert.ErrorIs(t, err, ErrConfigInvalid)
}

func TestImageSource(t *testing.T) {
	cfg := Default()
	cfg.Image.Provider = "placeholder"
	src, err := cfg.ImageSource()
	require.NoError(t, err)
	assert.IsType(t, illustrate.Placeholder{}, src)

	cfg.Image.Provider = "siliconflow"
	cfg.FluxAPIKey = "k"
	src, err = cfg.ImageSource()
	require.NoError(t, err)
	assert.IsType(t, &illustrate.SiliconFlow{}, src)
}
