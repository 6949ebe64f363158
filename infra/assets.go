package infra

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pwa-iframe/edgeshim/config"
	"github.com/pwa-iframe/edgeshim/gate"
	"github.com/pwa-iframe/edgeshim/generator"
	"github.com/pwa-iframe/edgeshim/transform"
)

const (
	// DefaultBinaryName is the name of the linux binary in the asset dir.
	DefaultBinaryName = "edgeshim"

	// BootstrapName is the entrypoint of the provided Lambda runtimes.
	BootstrapName = "bootstrap"
)

const bootstrapScript = `#!/bin/sh
set -eu
exec "$LAMBDA_TASK_ROOT/%s" --config "$LAMBDA_TASK_ROOT/%s" handle
`

// FunctionAsset describes the bundle of a single deployed function.
type FunctionAsset struct {
	// Name names the staged directory
	Name string

	// Functions are the functions the bundle runs, in order
	Functions []string

	// Config is written to the bundle config file
	Config map[string]any
}

// FunctionConfig returns the bundle config for the given functions.
// Lambda@Edge functions have no environment variables, so everything the
// functions need is carried in this file.
func FunctionConfig(functions []string, t transform.Config, g gate.Config, gen generator.Config) map[string]any {
	return map[string]any{
		"log_format": "production",
		"functions":  functions,
		"transform": map[string]any{
			"frame_options_value":    t.FrameOptionsValue,
			"ancestor_host":          t.AncestorHost,
			"redirect_marker_header": t.RedirectMarkerHeader,
		},
		"gate": map[string]any{
			"enabled":          g.Enabled,
			"allowed_referers": nonNil(g.AllowedReferers),
		},
		"generator": map[string]any{
			"object_key":   gen.ObjectKey,
			"content_type": gen.ContentType,
			"title":        gen.Title,
		},
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// StageFunction writes the bundle of a function below stageDir: the
// bootstrap script, a copy of the binary and the config file. It returns
// the bundle directory.
func StageFunction(stageDir, binaryPath string, asset FunctionAsset) (string, error) {
	if len(asset.Functions) == 0 {
		return "", fmt.Errorf("stage %s: no functions", asset.Name)
	}

	dir := filepath.Join(stageDir, asset.Name)
	if err := os.RemoveAll(dir); err != nil {
		return "", fmt.Errorf("stage %s: %w", asset.Name, err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("stage %s: %w", asset.Name, err)
	}

	binaryName := filepath.Base(binaryPath)

	if err := copyFile(binaryPath, filepath.Join(dir, binaryName), 0o755); err != nil {
		return "", fmt.Errorf("stage %s: copy binary: %w", asset.Name, err)
	}

	bootstrap := fmt.Sprintf(bootstrapScript, binaryName, config.FileName)
	if err := os.WriteFile(filepath.Join(dir, BootstrapName), []byte(bootstrap), 0o755); err != nil {
		return "", fmt.Errorf("stage %s: write bootstrap: %w", asset.Name, err)
	}

	cfg := asset.Config
	if cfg == nil {
		cfg = map[string]any{}
	}
	cfg["functions"] = asset.Functions

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return "", fmt.Errorf("stage %s: encode config: %w", asset.Name, err)
	}

	if err := os.WriteFile(filepath.Join(dir, config.FileName), data, 0o644); err != nil {
		return "", fmt.Errorf("stage %s: write config: %w", asset.Name, err)
	}

	return dir, nil
}

func copyFile(src, dst string, perm os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}

	return out.Close()
}
