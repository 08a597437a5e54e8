package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func TestLoadConfiguration(t *testing.T) {
	path := writeConfig(t, `
valuation:
  simulations: 5000
  seed: 42
  volatilityOverride: 0.25
logging:
  level: debug
  format: console
output:
  format: json
`)

	conf, err := LoadConfiguration(path)
	if err != nil {
		t.Fatalf("LoadConfiguration() error: %v", err)
	}

	if conf.Valuation.Simulations != 5000 {
		t.Errorf("Simulations = %d, expected 5000", conf.Valuation.Simulations)
	}
	if conf.Valuation.Seed != 42 {
		t.Errorf("Seed = %d, expected 42", conf.Valuation.Seed)
	}
	if conf.Valuation.VolatilityOverride != 0.25 {
		t.Errorf("VolatilityOverride = %v, expected 0.25", conf.Valuation.VolatilityOverride)
	}
	if conf.Logging.Level != "debug" || conf.Logging.Format != "console" {
		t.Errorf("Logging = %+v, expected debug/console", conf.Logging)
	}
	if conf.Output.Format != "json" {
		t.Errorf("Output.Format = %q, expected json", conf.Output.Format)
	}
}

func TestLoadConfigurationEmptyFile(t *testing.T) {
	path := writeConfig(t, "")

	conf, err := LoadConfiguration(path)
	if err != nil {
		t.Fatalf("LoadConfiguration() error: %v", err)
	}
	if conf.Valuation.Simulations != 0 {
		t.Errorf("Simulations = %d, expected zero value", conf.Valuation.Simulations)
	}
}

func TestLoadConfigurationMissingFile(t *testing.T) {
	_, err := LoadConfiguration(filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil {
		t.Fatal("LoadConfiguration() expected an error for a missing file")
	}
}

func TestValidateConfiguration(t *testing.T) {
	tests := []struct {
		name         string
		conf         Configuration
		expectCount  int
		expectSubstr string
	}{
		{
			name:        "clean config",
			conf:        Configuration{Valuation: ValuationConfig{Simulations: 5000}},
			expectCount: 0,
		},
		{
			name:         "negative simulations",
			conf:         Configuration{Valuation: ValuationConfig{Simulations: -1}},
			expectCount:  1,
			expectSubstr: "simulations",
		},
		{
			name:         "excessive simulations",
			conf:         Configuration{Valuation: ValuationConfig{Simulations: 1_000_000}},
			expectCount:  1,
			expectSubstr: "clamped",
		},
		{
			name:         "implausible volatility",
			conf:         Configuration{Valuation: ValuationConfig{VolatilityOverride: 1.5}},
			expectCount:  1,
			expectSubstr: "volatility",
		},
		{
			name:         "unknown output format",
			conf:         Configuration{Output: OutputConfig{Format: "xml"}},
			expectCount:  1,
			expectSubstr: "output.format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			warnings := tt.conf.ValidateConfiguration()
			if len(warnings) != tt.expectCount {
				t.Fatalf("warnings = %v, expected %d", warnings, tt.expectCount)
			}
			if tt.expectSubstr != "" && !strings.Contains(strings.ToLower(warnings[0]), tt.expectSubstr) {
				t.Errorf("warning %q missing %q", warnings[0], tt.expectSubstr)
			}
		})
	}
}
