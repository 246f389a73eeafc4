package ops

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/hpungsan/sigdecode/internal/config"
	"github.com/hpungsan/sigdecode/internal/errors"
)

// PathCheckMode says whether a checked path will be read or written.
type PathCheckMode int

const (
	PathCheckRead  PathCheckMode = iota // caller-supplied signal file
	PathCheckWrite                      // report destination
)

// ValidateExportPath checks a report destination before it is written:
// no traversal, an extension matching the format, then ValidatePath in
// write mode.
func ValidateExportPath(path string, format ExportFormat, cfg *config.Config) error {
	if path == "" {
		return errors.NewInvalidRequest("path is required")
	}
	if containsTraversal(path) {
		return errors.NewInvalidRequest("path must not contain directory traversal (..)")
	}
	if want := format.Ext(); filepath.Ext(filepath.Clean(path)) != want {
		return errors.NewInvalidRequest(fmt.Sprintf("path must have %s extension for %s export", want, format))
	}
	return ValidatePath(path, PathCheckWrite, cfg)
}

// ValidatePath checks a file path supplied by a caller.
// It checks:
// 1. Path traversal (.. sequences)
// 2. Directory restrictions (file must be DIRECTLY in ~/.sigdecode/exports or allowed_paths - no subdirectories)
// 3. Existence (read mode only; FILE_NOT_FOUND)
// 4. Symlink safety (parent dir must not be a symlink, file must not be a symlink)
//
// Files must sit directly in an allowed directory so that only the final
// component can race; the no-follow opens cover that one.
func ValidatePath(path string, mode PathCheckMode, cfg *config.Config) error {
	if path == "" {
		return errors.NewInvalidRequest("path is required")
	}
	if containsTraversal(path) {
		return errors.NewInvalidRequest("path must not contain directory traversal (..)")
	}

	absPath, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return errors.NewInvalidRequest(fmt.Sprintf("invalid path: %v", err))
	}

	// Unsafe mode skips directory checks only; symlinks are still refused.
	if cfg != nil && cfg.AllowUnsafePaths {
		if err := requireExists(path, absPath, mode); err != nil {
			return err
		}
		return rejectSymlink(absPath)
	}

	allowed, err := allowedExportDirs(cfg)
	if err != nil {
		return err
	}

	parentDir := filepath.Dir(absPath)
	if !slices.Contains(allowed, parentDir) {
		return errors.NewInvalidRequest(
			fmt.Sprintf("file must be directly in an allowed directory (no subdirectories); allowed: %v", allowed))
	}
	if isSymlink(parentDir) {
		return errors.NewInvalidRequest("parent directory must not be a symlink")
	}
	if err := requireExists(path, absPath, mode); err != nil {
		return err
	}
	return rejectSymlink(absPath)
}

func requireExists(path, absPath string, mode PathCheckMode) error {
	if mode != PathCheckRead {
		return nil
	}
	if _, err := os.Lstat(absPath); os.IsNotExist(err) {
		return errors.NewFileNotFound(path)
	}
	return nil
}

func isSymlink(path string) bool {
	info, err := os.Lstat(path)
	return err == nil && info.Mode()&os.ModeSymlink != 0
}

func rejectSymlink(absPath string) error {
	if isSymlink(absPath) {
		return errors.NewInvalidRequest("path must not be a symlink")
	}
	return nil
}

// allowedExportDirs returns ~/.sigdecode/exports plus every absolute
// allowed_paths entry, cleaned, with symlinked entries resolved.
func allowedExportDirs(cfg *config.Config) ([]string, error) {
	defaultDir, err := DefaultExportsDir()
	if err != nil {
		return nil, err
	}
	candidates := []string{defaultDir}
	if cfg != nil {
		for _, p := range cfg.AllowedPaths {
			if filepath.IsAbs(p) {
				candidates = append(candidates, p)
			}
		}
	}

	dirs := make([]string, 0, len(candidates))
	for _, d := range candidates {
		abs, err := filepath.Abs(filepath.Clean(d))
		if err != nil {
			return nil, errors.NewInvalidRequest(fmt.Sprintf("invalid allowed path: %v", err))
		}
		if isSymlink(abs) {
			if abs, err = filepath.EvalSymlinks(abs); err != nil {
				return nil, errors.NewInvalidRequest(fmt.Sprintf("cannot resolve symlink in allowed path: %v", err))
			}
		}
		dirs = append(dirs, abs)
	}
	return dirs, nil
}

// DefaultExportsDir returns the default exports directory (~/.sigdecode/exports).
func DefaultExportsDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", errors.NewInternal(fmt.Errorf("failed to get home directory: %w", err))
	}
	return filepath.Join(homeDir, ".sigdecode", "exports"), nil
}

// containsTraversal reports whether any component of path is "..".
// Forward slashes count as separators on every platform.
func containsTraversal(path string) bool {
	parts := strings.FieldsFunc(path, func(r rune) bool {
		return r == '/' || r == filepath.Separator
	})
	return slices.Contains(parts, "..")
}

// SanitizeForFilename makes s safe to embed in a report file name.
func SanitizeForFilename(s string) string {
	s = strings.ReplaceAll(s, "/", "-")
	s = strings.ReplaceAll(s, "\\", "-")
	s = strings.ReplaceAll(s, "..", "-")

	var result strings.Builder
	for _, r := range s {
		if r >= 32 && r != 127 {
			result.WriteRune(r)
		}
	}
	s = result.String()

	for strings.Contains(s, "--") {
		s = strings.ReplaceAll(s, "--", "-")
	}
	s = strings.Trim(s, "-")

	if s == "" {
		s = "unnamed"
	}
	return s
}
