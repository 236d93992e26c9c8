package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig(viper.New(), "")
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if cfg.Threshold != 0.5 {
		t.Errorf("Threshold = %v, want 0.5", cfg.Threshold)
	}
	if cfg.FPS != defaultFPS {
		t.Errorf("FPS = %v, want %v", cfg.FPS, defaultFPS)
	}
	if !cfg.Confirmations {
		t.Error("Confirmations = false, want true by default")
	}
	if cfg.LogRotation.MaxBackups != 3 {
		t.Errorf("LogRotation.MaxBackups = %v, want 3", cfg.LogRotation.MaxBackups)
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "threshold: 0.8\nfps: 60\nconfirmations: false\nvault: /tmp/notes.json\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := loadConfig(viper.New(), path)
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if cfg.Threshold != 0.8 {
		t.Errorf("Threshold = %v, want 0.8", cfg.Threshold)
	}
	if cfg.FPS != 60 {
		t.Errorf("FPS = %v, want 60", cfg.FPS)
	}
	if cfg.Confirmations {
		t.Error("Confirmations = true, want false")
	}
	if cfg.Vault != "/tmp/notes.json" {
		t.Errorf("Vault = %q", cfg.Vault)
	}
}

func TestLoadConfigExplicitMissing(t *testing.T) {
	if _, err := loadConfig(viper.New(), "/nonexistent/clustermap.yaml"); err == nil {
		t.Error("loadConfig() with a missing explicit path succeeded")
	}
}

func TestBindFlagsOverridesConfig(t *testing.T) {
	v := viper.New()
	cmd := &cobra.Command{Use: "clustermap"}
	cmd.Flags().Float64("threshold", 0.5, "")
	cmd.Flags().String("log-dir", "", "")
	bindFlags(v, cmd)

	if err := cmd.Flags().Set("threshold", "0.7"); err != nil {
		t.Fatalf("set flag: %v", err)
	}
	if err := cmd.Flags().Set("log-dir", "/tmp/cm-logs"); err != nil {
		t.Fatalf("set flag: %v", err)
	}

	cfg, err := loadConfig(v, "")
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if cfg.Threshold != 0.7 {
		t.Errorf("Threshold = %v, want flag value 0.7", cfg.Threshold)
	}
	if cfg.LogDir != "/tmp/cm-logs" {
		t.Errorf("LogDir = %q, want dash flag bound to log_dir", cfg.LogDir)
	}
}

func TestLoadConfigThresholdRange(t *testing.T) {
	for _, bad := range []float64{-0.1, 1.5} {
		v := viper.New()
		v.Set("threshold", bad)
		if _, err := loadConfig(v, ""); err == nil {
			t.Errorf("loadConfig() accepted threshold %v", bad)
		}
	}
}

func TestLoadConfigFPSFloor(t *testing.T) {
	v := viper.New()
	v.Set("fps", 0)
	cfg, err := loadConfig(v, "")
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if cfg.FPS != defaultFPS {
		t.Errorf("FPS = %v, want fallback %v", cfg.FPS, defaultFPS)
	}
}
