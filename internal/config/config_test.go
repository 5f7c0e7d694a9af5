package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestLoadFromDir_DefaultsWithoutFile(t *testing.T) {
	cfg, info, err := LoadFromDir(t.TempDir())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if info.Path != "" || info.PortSpecified {
		t.Fatalf("unexpected info: %+v", info)
	}
	if cfg.Server.Port != 20261 || cfg.Import.FraudThreshold != 0.9 || cfg.Import.Classifier != ClassifierRandom || cfg.Log.Level != "info" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.MaxUploadBytes() != 20<<20 {
		t.Fatalf("unexpected upload limit: %d", cfg.MaxUploadBytes())
	}
}

func TestLoadFromDir_TomlThenEnv(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "config.toml"), `
[server]
port = 18080

[import]
fraud_threshold = 0.8
classifier = "keyword"
`)
	t.Setenv("BILLINGEST_SERVER__DEV_MODE", "true")
	t.Setenv("BILLINGEST_IMPORT__MAX_UPLOAD_MB", "5")

	cfg, info, err := LoadFromDir(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !info.PortSpecified || info.Path == "" {
		t.Fatalf("unexpected info: %+v", info)
	}
	if cfg.Server.Port != 18080 || !cfg.Server.DevMode {
		t.Fatalf("unexpected server config: %+v", cfg.Server)
	}
	if cfg.Import.FraudThreshold != 0.8 || cfg.Import.Classifier != ClassifierKeyword || cfg.Import.MaxUploadMB != 5 {
		t.Fatalf("unexpected import config: %+v", cfg.Import)
	}
	if cfg.Data.DataDir != "data" {
		t.Fatalf("untouched keys should keep defaults: %+v", cfg.Data)
	}
}

func TestLoadFromDir_YamlOverlay(t *testing.T) {
	dir := t.TempDir()
	overlay := filepath.Join(dir, "override.yaml")
	writeFile(t, overlay, "log:\n  level: debug\nimport:\n  random_seed: 42\n")
	t.Setenv(EnvConfigFile, overlay)

	cfg, _, err := LoadFromDir(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Log.Level != "debug" || cfg.Import.RandomSeed != 42 {
		t.Fatalf("overlay not applied: %+v", cfg)
	}
}

func TestLoadFromDir_RejectsInvalidValues(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "config.toml"), "[import]\nfraud_threshold = 1.5\n")
	if _, _, err := LoadFromDir(dir); err == nil {
		t.Fatalf("expected threshold error")
	}

	writeFile(t, filepath.Join(dir, "config.toml"), "[log]\nlevel = \"loud\"\n")
	if _, _, err := LoadFromDir(dir); err == nil {
		t.Fatalf("expected log level error")
	}
}

func TestSaveToDir_RoundTrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.Server.Port = 9000
	cfg.Import.Classifier = ClassifierKeyword
	cfg.Import.RandomSeed = 42
	path, err := SaveToDir(cfg, dir)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if path != filepath.Join(dir, "config.toml") {
		t.Fatalf("unexpected path: %s", path)
	}

	loaded, info, err := LoadFromDir(dir)
	if err != nil {
		t.Fatalf("load saved config: %v", err)
	}
	if !info.PortSpecified || loaded.Server.Port != 9000 ||
		loaded.Import.Classifier != ClassifierKeyword || loaded.Import.RandomSeed != 42 {
		t.Fatalf("saved config not read back: %+v %+v", loaded, info)
	}
}

func TestSaveToDir_RejectsInvalidConfig(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.Import.FraudThreshold = 2
	if _, err := SaveToDir(cfg, dir); err == nil {
		t.Fatalf("expected validation error")
	}
	if _, err := os.Stat(filepath.Join(dir, "config.toml")); !os.IsNotExist(err) {
		t.Fatalf("invalid config must not be written: %v", err)
	}
}
