package conf

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type nested struct {
	Host    string   `conf:"host"`
	Allowed []string `conf:"allowed"`
}

type testConfig struct {
	Level  string `conf:"log_level"`
	Nested nested `conf:"nested"`
}

func TestTransformEnv(t *testing.T) {
	assert.Equal(t, "log_level", transformEnv("EDGESHIM_LOG_LEVEL", "EDGESHIM_"))
	assert.Equal(t, "transform.ancestor_host", transformEnv("EDGESHIM_TRANSFORM__ANCESTOR_HOST", "EDGESHIM_"))
	assert.Equal(t, "gate.enabled", transformEnv("GATE__ENABLED", ""))
}

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse[testConfig](ParseOptions{
		Defaults: DefaultConfig{
			"log_level":   "info",
			"nested.host": "default.example",
		},
		EnvPrefix: "CONFTEST_DEFAULTS_",
		Log:       zaptest.NewLogger(t),
	})
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Level)
	assert.Equal(t, "default.example", cfg.Nested.Host)
}

func TestParse_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"log_level": "debug",
		"nested": {"host": "file.example", "allowed": ["a.example", "b.example"]}
	}`), 0o644))

	t.Setenv("CONFTEST_NESTED__HOST", "env.example")

	cfg, err := Parse[testConfig](ParseOptions{
		Defaults:  DefaultConfig{"log_level": "info"},
		EnvPrefix: "CONFTEST_",
		FileName:  path,
		Log:       zaptest.NewLogger(t),
	})
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Level)
	assert.Equal(t, "env.example", cfg.Nested.Host)
	assert.Equal(t, []string{"a.example", "b.example"}, cfg.Nested.Allowed)
}

func TestParse_EnvSlice(t *testing.T) {
	t.Setenv("CONFTEST_SLICE_NESTED__ALLOWED", "a.example,b.example")

	cfg, err := Parse[testConfig](ParseOptions{
		EnvPrefix: "CONFTEST_SLICE_",
		Log:       zaptest.NewLogger(t),
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"a.example", "b.example"}, cfg.Nested.Allowed)
}

func TestParse_Dotenv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "edgeshim.env")
	require.NoError(t, os.WriteFile(path, []byte("LOG_LEVEL=warn\nNESTED__HOST=dotenv.example\n"), 0o644))

	cfg, err := Parse[testConfig](ParseOptions{
		EnvPrefix: "CONFTEST_DOTENV_",
		FileName:  path,
		Log:       zaptest.NewLogger(t),
	})
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.Level)
	assert.Equal(t, "dotenv.example", cfg.Nested.Host)
}

func TestParse_MissingFile(t *testing.T) {
	_, err := Parse[testConfig](ParseOptions{
		EnvPrefix: "CONFTEST_MISSING_",
		FileName:  filepath.Join(t.TempDir(), "missing.json"),
		Log:       zaptest.NewLogger(t),
	})
	assert.Error(t, err)
}

func TestMergeDefaults(t *testing.T) {
	merged := MergeDefaults("transform",
		DefaultConfig{"ancestor_host": "pwa.example"},
		DefaultConfig{"frame_options_value": "SAMEORIGIN"},
	)

	assert.Equal(t, DefaultConfig{
		"transform.ancestor_host":       "pwa.example",
		"transform.frame_options_value": "SAMEORIGIN",
	}, merged)
}

func TestConfigContext(t *testing.T) {
	ctx := ContextWithConfig(context.Background(), testConfig{Level: "warn"})

	cfg, err := GetConfigFromContext[testConfig](ctx)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Level)

	_, err = GetConfigFromContext[nested](ctx)
	assert.ErrorIs(t, err, ErrInvalidConfigInContext)

	_, err = GetConfigFromContext[testConfig](context.Background())
	assert.ErrorIs(t, err, ErrNoConfigInContext)
}

func TestMerge(t *testing.T) {
	merged := Merge(
		DefaultConfig{"log_level": "info", "log_format": "production"},
		DefaultConfig{"log_level": "debug"},
	)

	assert.Equal(t, DefaultConfig{
		"log_level":  "debug",
		"log_format": "production",
	}, merged)
}
