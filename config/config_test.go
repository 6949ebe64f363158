package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/pwa-iframe/edgeshim/config"
	"github.com/pwa-iframe/edgeshim/edge"
	"github.com/pwa-iframe/edgeshim/gate"
	"github.com/pwa-iframe/edgeshim/generator"
	"github.com/pwa-iframe/edgeshim/transform"
	"github.com/pwa-iframe/edgeshim/util/conf"
)

func TestDefaultConfig(t *testing.T) {
	cfg, err := conf.Parse[config.Config](conf.ParseOptions{
		Defaults:  config.DefaultConfig,
		EnvPrefix: "EDGESHIM_CONFIG_TEST_DEFAULTS_",
		Log:       zaptest.NewLogger(t),
	})
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "production", cfg.LogFormat)
	assert.Equal(t, transform.DefaultFrameOptions, cfg.Transform.FrameOptionsValue)
	assert.Equal(t, transform.DefaultRedirectMarkerHeader, cfg.Transform.RedirectMarkerHeader)
	assert.Equal(t, generator.DefaultObjectKey, cfg.Generator.ObjectKey)
	assert.Equal(t, generator.DefaultContentType, cfg.Generator.ContentType)
	assert.Empty(t, cfg.Functions)
	assert.False(t, cfg.Gate.Enabled)
}

func TestConfig_FileAndEnv(t *testing.T) {
	file := filepath.Join(t.TempDir(), config.FileName)
	require.NoError(t, os.WriteFile(file, []byte(`{
		"functions": ["viewer-request-gate"],
		"gate": {"enabled": true, "allowed_referers": ["pwa.example"]},
		"topology": {"proxy_origin_domain": "legacy.example"}
	}`), 0o644))

	t.Setenv("EDGESHIM_CONFIG_TEST_TRANSFORM__ANCESTOR_HOST", "pwa.example")
	t.Setenv("EDGESHIM_CONFIG_TEST_TOPOLOGY__GATE", "true")

	cfg, err := conf.Parse[config.Config](conf.ParseOptions{
		Defaults:  config.DefaultConfig,
		EnvPrefix: "EDGESHIM_CONFIG_TEST_",
		FileName:  file,
		Log:       zaptest.NewLogger(t),
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"viewer-request-gate"}, cfg.Functions)
	assert.True(t, cfg.Gate.Enabled)
	assert.Equal(t, []string{"pwa.example"}, cfg.Gate.AllowedReferers)
	assert.Equal(t, "legacy.example", cfg.Topology.ProxyOriginDomain)
	assert.True(t, cfg.Topology.Gate)
	assert.Equal(t, "pwa.example", cfg.Transform.AncestorHost)
	assert.Equal(t, transform.DefaultFrameOptions, cfg.Transform.FrameOptionsValue)
}

func TestConfig_EnvLists(t *testing.T) {
	t.Setenv("EDGESHIM_CONFIG_TEST_LISTS_GATE__ENABLED", "true")
	t.Setenv("EDGESHIM_CONFIG_TEST_LISTS_GATE__ALLOWED_REFERERS", "pwa.example,other.example")
	t.Setenv("EDGESHIM_CONFIG_TEST_LISTS_FUNCTIONS", "strip-frame-options,add-frame-options")

	cfg, err := conf.Parse[config.Config](conf.ParseOptions{
		Defaults:  config.DefaultConfig,
		EnvPrefix: "EDGESHIM_CONFIG_TEST_LISTS_",
		Log:       zaptest.NewLogger(t),
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"pwa.example", "other.example"}, cfg.Gate.AllowedReferers)
	assert.Equal(t, []string{"strip-frame-options", "add-frame-options"}, cfg.Functions)

	headers := edge.Headers{}
	headers.Set("Referer", "https://pwa.example/")

	g := gate.New(cfg.Gate)
	assert.Equal(t, gate.Approve, g.Evaluate(&edge.Request{URI: "/", Headers: headers}))
}
