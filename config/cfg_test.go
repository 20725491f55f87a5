package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	validator "github.com/go-playground/validator/v10"
	"github.com/rupor-github/gencfg"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return path
}

func TestLoadConfiguration_NoFile(t *testing.T) {
	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() with empty path error = %v", err)
	}

	if cfg.Version != 1 {
		t.Errorf("Default config version = %d, want 1", cfg.Version)
	}
	if cfg.Rewrite.Syntax != SyntaxAuto {
		t.Errorf("Default syntax = %s, want auto", cfg.Rewrite.Syntax)
	}
	if cfg.Rewrite.Workers != 0 {
		t.Errorf("Default workers = %d, want 0", cfg.Rewrite.Workers)
	}
	if len(cfg.Rewrite.Extensions) != 2 {
		t.Errorf("Default extensions = %v, want .css and .scss", cfg.Rewrite.Extensions)
	}
	if cfg.Logging.ConsoleLogger.Level != "normal" {
		t.Errorf("Default console level = %s, want normal", cfg.Logging.ConsoleLogger.Level)
	}
}

func TestLoadConfiguration_WithFile(t *testing.T) {
	path := writeConfig(t, `version: 1
rewrite:
  syntax: scss
  workers: 4
  extensions: [".less"]
logging:
  console:
    level: debug
`)

	cfg, err := LoadConfiguration(path)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	if cfg.Rewrite.Syntax != SyntaxScss {
		t.Errorf("Syntax = %s, want scss", cfg.Rewrite.Syntax)
	}
	if cfg.Rewrite.Workers != 4 {
		t.Errorf("Workers = %d, want 4", cfg.Rewrite.Workers)
	}
	if len(cfg.Rewrite.Extensions) != 1 || cfg.Rewrite.Extensions[0] != ".less" {
		t.Errorf("Extensions = %v, want [.less]", cfg.Rewrite.Extensions)
	}
	if cfg.Logging.ConsoleLogger.Level != "debug" {
		t.Errorf("Console level = %s, want debug", cfg.Logging.ConsoleLogger.Level)
	}
	// values absent from file come from template
	if cfg.Reporting.Destination == "" {
		t.Error("Expected reporting destination from defaults")
	}
}

func TestLoadConfiguration_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"invalid yaml", "version: 1\nrewrite:\n  syntax: css\n  invalid indent\n"},
		{"unknown field", "version: 1\nunknown_field: value\n"},
		{"wrong version", "version: 2\n"},
		{"bad syntax", "version: 1\nrewrite:\n  syntax: less\n"},
		{"negative workers", "version: 1\nrewrite:\n  workers: -1\n"},
		{"bad extension", "version: 1\nrewrite:\n  extensions: [\"css\"]\n"},
		{"bad console level", "version: 1\nlogging:\n  console:\n    level: loud\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadConfiguration(writeConfig(t, tt.content)); err == nil {
				t.Error("Expected error")
			}
		})
	}
}

func TestLoadConfiguration_NonExistentFile(t *testing.T) {
	if _, err := LoadConfiguration("/nonexistent/config.yaml"); err == nil {
		t.Error("Expected error for nonexistent file")
	}
}

func TestLoadConfiguration_WithOptions(t *testing.T) {
	option := func(opts *gencfg.ProcessingOptions) {
		// Options are opaque, just test that we can pass them
	}

	cfg, err := LoadConfiguration("", option)
	if err != nil {
		t.Fatalf("LoadConfiguration() with options error = %v", err)
	}
	if cfg == nil {
		t.Fatal("LoadConfiguration() returned nil config")
	}
}

func TestPrepare(t *testing.T) {
	data, err := Prepare()
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}

	if _, err = unmarshalConfig(data, &Config{}, true); err != nil {
		t.Errorf("Prepared config is not valid: %v", err)
	}
}

func TestDump(t *testing.T) {
	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	cfg.Rewrite.Syntax = SyntaxCss

	data, err := Dump(cfg)
	if err != nil {
		t.Fatalf("Dump() error = %v", err)
	}
	if !strings.Contains(string(data), "syntax: css") {
		t.Errorf("Dump() should use enum names, got:\n%s", data)
	}

	cfg2, err := unmarshalConfig(data, &Config{}, true)
	if err != nil {
		t.Fatalf("Dumped config cannot be loaded: %v", err)
	}
	if cfg2.Rewrite.Syntax != SyntaxCss {
		t.Errorf("Syntax mismatch after dump/load: got %s", cfg2.Rewrite.Syntax)
	}
}

func TestUnmarshalConfig_WrapsValidationError(t *testing.T) {
	_, err := unmarshalConfig([]byte("version: 99\n"), &Config{}, true)
	if err == nil {
		t.Fatal("expected validation error, got nil")
	}
	if !strings.Contains(err.Error(), "validate") {
		t.Errorf("expected error to mention validation, got: %v", err)
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		t.Errorf("expected validator errors in chain, got: %v", err)
	}
}

func TestUnmarshalConfig_ExtensionCheck(t *testing.T) {
	data := []byte(`version: 1
rewrite:
  syntax: auto
  extensions: [".css", "scss", "."]
logging:
  console:
    level: none
  file:
    level: none
reporting:
  destination: report.zip
`)
	_, err := unmarshalConfig(data, &Config{}, true)

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("expected validator errors, got: %v", err)
	}
	if len(verrs) != 2 {
		t.Errorf("expected 2 bad extensions reported, got %d: %v", len(verrs), verrs)
	}
	for _, fe := range verrs {
		if fe.Tag() != "extension" {
			t.Errorf("unexpected failed check %q", fe.Tag())
		}
	}
}
