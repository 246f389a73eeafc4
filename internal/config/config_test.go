package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadWithRepo_GlobalDefaultWhenMissing(t *testing.T) {
	tmpDir := t.TempDir()

	cfg, err := LoadWithRepo(tmpDir, "")
	if err != nil {
		t.Fatalf("LoadWithRepo() error = %v", err)
	}
	if cfg.WindowLength != DefaultWindowLength {
		t.Fatalf("WindowLength = %d, want %d", cfg.WindowLength, DefaultWindowLength)
	}
	if cfg.SignalPath != DefaultSignalPath {
		t.Fatalf("SignalPath = %q, want %q", cfg.SignalPath, DefaultSignalPath)
	}
	if cfg.DictionaryPath != DefaultDictionaryPath {
		t.Fatalf("DictionaryPath = %q, want %q", cfg.DictionaryPath, DefaultDictionaryPath)
	}
	if cfg.Workers != 1 {
		t.Fatalf("Workers = %d, want 1", cfg.Workers)
	}
}

func TestLoadWithRepo_GlobalOverridesFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	body := `{"window_length": 40, "signal_path": "intercept.txt", "workers": 4, "log_level": "DEBUG"}`
	if err := os.WriteFile(configPath, []byte(body), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := LoadWithRepo(tmpDir, "")
	if err != nil {
		t.Fatalf("LoadWithRepo() error = %v", err)
	}
	if cfg.WindowLength != 40 {
		t.Errorf("WindowLength = %d, want 40", cfg.WindowLength)
	}
	if cfg.SignalPath != "intercept.txt" {
		t.Errorf("SignalPath = %q, want %q", cfg.SignalPath, "intercept.txt")
	}
	if cfg.Workers != 4 {
		t.Errorf("Workers = %d, want 4", cfg.Workers)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "debug")
	}
	if cfg.DictionaryPath != DefaultDictionaryPath {
		t.Errorf("DictionaryPath = %q, want default", cfg.DictionaryPath)
	}
}

func TestLoadWithRepo_GlobalInvalidJSON(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	if err := os.WriteFile(configPath, []byte(`{not json}`), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	if _, err := LoadWithRepo(tmpDir, ""); err == nil {
		t.Fatalf("LoadWithRepo() expected error, got nil")
	}
}

func TestLoadWithRepo_GlobalRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{name: "negative window", body: `{"window_length": -3}`, field: "WindowLength"},
		{name: "unknown log level", body: `{"log_level": "loud"}`, field: "LogLevel"},
		{name: "unknown log format", body: `{"log_format": "xml"}`, field: "LogFormat"},
		{name: "negative workers", body: `{"workers": -1}`, field: "Workers"},
		{name: "too many workers", body: `{"workers": 1000}`, field: "Workers"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			if err := os.WriteFile(filepath.Join(tmpDir, "config.json"), []byte(tt.body), 0600); err != nil {
				t.Fatalf("WriteFile() error = %v", err)
			}
			_, err := LoadWithRepo(tmpDir, "")
			if err == nil {
				t.Fatalf("LoadWithRepo() expected error, got nil")
			}
			if !strings.Contains(err.Error(), "config.json") {
				t.Errorf("error = %q, want the config file named", err.Error())
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Errorf("error = %q, want mention of %s", err.Error(), tt.field)
			}
		})
	}
}

func TestValidate_Nil(t *testing.T) {
	if err := Validate(nil); err == nil {
		t.Fatal("Validate(nil) expected error")
	}
}

func TestValidate_Defaults(t *testing.T) {
	if err := Validate(DefaultConfig()); err != nil {
		t.Fatalf("Validate(DefaultConfig()) error = %v", err)
	}
}

func TestLoadWithRepo_BothPresent(t *testing.T) {
	globalDir := t.TempDir()
	repoRoot := t.TempDir()

	globalConfig := `{"window_length": 500, "disabled_tools": ["run_delete"]}`
	if err := os.WriteFile(filepath.Join(globalDir, "config.json"), []byte(globalConfig), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	projectDir := filepath.Join(repoRoot, ".sigdecode")
	if err := os.MkdirAll(projectDir, 0755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	repoConfig := `{"window_length": 300, "disabled_tools": ["run_export"]}`
	if err := os.WriteFile(filepath.Join(projectDir, "config.json"), []byte(repoConfig), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := LoadWithRepo(globalDir, repoRoot)
	if err != nil {
		t.Fatalf("LoadWithRepo() error = %v", err)
	}

	if cfg.WindowLength != 300 {
		t.Errorf("WindowLength = %d, want 300 (project override)", cfg.WindowLength)
	}
	if len(cfg.DisabledTools) != 2 {
		t.Errorf("DisabledTools length = %d, want 2", len(cfg.DisabledTools))
	}
}

func TestLoadWithRepo_NeitherPresent(t *testing.T) {
	cfg, err := LoadWithRepo(t.TempDir(), t.TempDir())
	if err != nil {
		t.Fatalf("LoadWithRepo() error = %v", err)
	}
	if cfg.WindowLength != DefaultWindowLength {
		t.Errorf("WindowLength = %d, want %d", cfg.WindowLength, DefaultWindowLength)
	}
	if len(cfg.DisabledTools) != 0 {
		t.Errorf("DisabledTools = %v, want empty", cfg.DisabledTools)
	}
}

func TestLoadWithRepo_WalksUpward(t *testing.T) {
	tmpDir := t.TempDir()
	globalDir := t.TempDir()

	projectDir := filepath.Join(tmpDir, ".sigdecode")
	if err := os.MkdirAll(projectDir, 0755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	if err := os.WriteFile(filepath.Join(projectDir, "config.json"), []byte(`{"signal_path": "capture.txt"}`), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	subdir := filepath.Join(tmpDir, "subdir")
	if err := os.MkdirAll(subdir, 0755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}

	cfg, err := LoadWithRepo(globalDir, subdir)
	if err != nil {
		t.Fatalf("LoadWithRepo() error = %v", err)
	}
	if cfg.SignalPath != "capture.txt" {
		t.Errorf("SignalPath = %q, want %q", cfg.SignalPath, "capture.txt")
	}
}

func TestFindRepoConfig_NotFound(t *testing.T) {
	if found := FindRepoConfig(t.TempDir()); found != "" {
		t.Errorf("FindRepoConfig() = %q, want empty string", found)
	}
	if found := FindRepoConfig(""); found != "" {
		t.Errorf("FindRepoConfig(\"\") = %q, want empty string", found)
	}
}

func TestMerge_ScalarOverride(t *testing.T) {
	base := &Config{WindowLength: 721, DBMaxOpenConns: 5, SignalPath: "a.txt"}
	overlay := &Config{WindowLength: 100}

	result := Merge(base, overlay)

	if result.WindowLength != 100 {
		t.Errorf("WindowLength = %d, want 100 (overlay)", result.WindowLength)
	}
	if result.DBMaxOpenConns != 5 {
		t.Errorf("DBMaxOpenConns = %d, want 5 (base, overlay is zero)", result.DBMaxOpenConns)
	}
	if result.SignalPath != "a.txt" {
		t.Errorf("SignalPath = %q, want %q (base)", result.SignalPath, "a.txt")
	}
}

func TestMerge_BooleanOr(t *testing.T) {
	result := Merge(&Config{DisableHistory: true}, &Config{AllowUnsafePaths: true})

	if !result.DisableHistory {
		t.Error("DisableHistory should be true (base OR overlay)")
	}
	if !result.AllowUnsafePaths {
		t.Error("AllowUnsafePaths should be true (base OR overlay)")
	}
}

func TestMerge_ArrayMergeDedup(t *testing.T) {
	base := &Config{AllowedPaths: []string{"/srv/reports", " /tmp/out "}}
	overlay := &Config{AllowedPaths: []string{"/tmp/out", "/home/me/reports"}}

	result := Merge(base, overlay)

	want := []string{"/srv/reports", "/tmp/out", "/home/me/reports"}
	if len(result.AllowedPaths) != len(want) {
		t.Fatalf("AllowedPaths = %v, want %v", result.AllowedPaths, want)
	}
	for i := range want {
		if result.AllowedPaths[i] != want[i] {
			t.Errorf("AllowedPaths[%d] = %q, want %q", i, result.AllowedPaths[i], want[i])
		}
	}
}
