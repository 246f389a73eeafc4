package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Config holds application configuration.
type Config struct {
	// SignalPath is the ciphertext file decoded when no path is given on the command line.
	SignalPath string `json:"signal_path" validate:"required"`

	// WindowLength is the number of characters in each sliding window.
	WindowLength int `json:"window_length" validate:"gte=1"`

	// DictionaryPath points at a newline-separated English word list.
	DictionaryPath string `json:"dictionary_path" validate:"required"`

	// Workers controls the window sweep. 0 or 1 sweeps sequentially;
	// larger values evaluate contiguous chunks of windows in parallel.
	Workers int `json:"workers,omitempty" validate:"gte=0,lte=256"`

	// LogLevel is one of trace, debug, info, warn, error.
	LogLevel string `json:"log_level,omitempty" validate:"omitempty,oneof=trace debug info warn error"`

	// LogFormat is console (human readable) or json.
	LogFormat string `json:"log_format,omitempty" validate:"omitempty,oneof=console json"`

	// DisableHistory stops decode runs from being recorded in the run database.
	DisableHistory bool `json:"disable_history,omitempty"`

	// AllowedPaths is an allowlist of directories for report exports.
	// Paths outside ~/.sigdecode/exports require either being in this list or AllowUnsafePaths=true.
	// Paths should be absolute (relative paths are ignored).
	AllowedPaths []string `json:"allowed_paths,omitempty"`

	// AllowUnsafePaths disables directory restrictions for exports.
	// Symlink and extension checks still apply.
	AllowUnsafePaths bool `json:"allow_unsafe_paths,omitempty"`

	// DBMaxOpenConns limits the maximum number of open database connections.
	// 0 means use sql.DB default (unlimited).
	DBMaxOpenConns int `json:"db_max_open_conns,omitempty" validate:"gte=0"`

	// DBMaxIdleConns limits the maximum number of idle database connections.
	DBMaxIdleConns int `json:"db_max_idle_conns,omitempty" validate:"gte=0"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	DisabledTools []string `json:"disabled_tools,omitempty"`
}

// Defaults mirror the reference decoding run: signal.txt with 721-character windows.
const (
	DefaultSignalPath     = "signal.txt"
	DefaultWindowLength   = 721
	DefaultDictionaryPath = "/usr/share/dict/words"
	DefaultLogLevel       = "info"
	DefaultLogFormat      = "console"
)

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		SignalPath:     DefaultSignalPath,
		WindowLength:   DefaultWindowLength,
		DictionaryPath: DefaultDictionaryPath,
		Workers:        1,
		LogLevel:       DefaultLogLevel,
		LogFormat:      DefaultLogFormat,
	}
}

// LoadWithRepo loads configuration from both global (~/.sigdecode) and project (.sigdecode) directories.
// Project config is found by walking upward from startDir to find the nearest .sigdecode/config.json.
// Project config takes precedence for scalar values; arrays are merged (deduplicated).
// Either or both configs may be missing.
func LoadWithRepo(globalDir, startDir string) (*Config, error) {
	global, err := loadFileRaw(filepath.Join(globalDir, "config.json"))
	if err != nil {
		return nil, err
	}

	repoConfigPath := FindRepoConfig(startDir)
	repo, err := loadFileRaw(repoConfigPath)
	if err != nil {
		return nil, err
	}

	merged := Merge(Merge(DefaultConfig(), global), repo)
	if err := Validate(merged); err != nil {
		return nil, fmt.Errorf("%s: %w", configSources(globalDir, repoConfigPath), err)
	}
	return merged, nil
}

// FindRepoConfig walks upward from startDir to find the nearest .sigdecode/config.json.
// Returns the path if found, or empty string if not found.
func FindRepoConfig(startDir string) string {
	if startDir == "" {
		return ""
	}
	dir := startDir
	for {
		configPath := filepath.Join(dir, ".sigdecode", "config.json")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// loadFileRaw loads configuration from a specific file path.
// Returns zero-valued config if the file doesn't exist (not defaults).
func loadFileRaw(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars; arrays are merged and deduplicated.
func Merge(base, overlay *Config) *Config {
	result := &Config{}

	result.SignalPath = firstNonEmpty(overlay.SignalPath, base.SignalPath)
	result.DictionaryPath = firstNonEmpty(overlay.DictionaryPath, base.DictionaryPath)
	result.LogLevel = firstNonEmpty(strings.ToLower(overlay.LogLevel), base.LogLevel)
	result.LogFormat = firstNonEmpty(strings.ToLower(overlay.LogFormat), base.LogFormat)

	result.WindowLength = overlay.WindowLength
	if result.WindowLength == 0 {
		result.WindowLength = base.WindowLength
	}

	result.Workers = overlay.Workers
	if result.Workers == 0 {
		result.Workers = base.Workers
	}

	result.DBMaxOpenConns = overlay.DBMaxOpenConns
	if result.DBMaxOpenConns == 0 {
		result.DBMaxOpenConns = base.DBMaxOpenConns
	}

	result.DBMaxIdleConns = overlay.DBMaxIdleConns
	if result.DBMaxIdleConns == 0 {
		result.DBMaxIdleConns = base.DBMaxIdleConns
	}

	// Booleans: overlay wins if true, else base
	result.DisableHistory = base.DisableHistory || overlay.DisableHistory
	result.AllowUnsafePaths = base.AllowUnsafePaths || overlay.AllowUnsafePaths

	result.AllowedPaths = mergeStringSlice(base.AllowedPaths, overlay.AllowedPaths)
	result.DisabledTools = mergeStringSlice(base.DisabledTools, overlay.DisabledTools)

	return result
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints declared in the struct tags.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New("config is nil")
	}
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q (got %v)", fe.Field(), fe.Tag(), fe.Value()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

// configSources names the files that fed a merged config, for error messages.
func configSources(globalDir, repoConfigPath string) string {
	src := filepath.Join(globalDir, "config.json")
	if repoConfigPath != "" {
		src += " + " + repoConfigPath
	}
	return src
}

func firstNonEmpty(a, b string) string {
	if strings.TrimSpace(a) != "" {
		return strings.TrimSpace(a)
	}
	return b
}

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range a {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}
	for _, s := range b {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}
