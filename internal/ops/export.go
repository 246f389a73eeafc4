package ops

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/hpungsan/sigdecode/internal/config"
	"github.com/hpungsan/sigdecode/internal/db"
	"github.com/hpungsan/sigdecode/internal/dictionary"
	"github.com/hpungsan/sigdecode/internal/errors"
	"github.com/hpungsan/sigdecode/internal/report"
	"github.com/hpungsan/sigdecode/internal/run"
)

// ExportFormat selects how a run report is rendered.
type ExportFormat string

const (
	FormatMarkdown ExportFormat = "md"
	FormatHTML     ExportFormat = "html"
	FormatJSON     ExportFormat = "json"
)

// ParseExportFormat accepts md, markdown, html or json (case-insensitive).
// An empty string selects markdown.
func ParseExportFormat(s string) (ExportFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "md", "markdown":
		return FormatMarkdown, nil
	case "html":
		return FormatHTML, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", errors.NewInvalidRequest(fmt.Sprintf("unsupported export format %q (want md, html or json)", s))
	}
}

// Ext returns the file extension required for the format.
func (f ExportFormat) Ext() string {
	return "." + string(f)
}

// ExportInput contains parameters for the Export operation.
type ExportInput struct {
	ID     string
	Format ExportFormat // default: md
	Path   string       // optional, default: ~/.sigdecode/exports/<signal>-<id>.<ext>
}

// ExportOutput contains the result of the Export operation.
type ExportOutput struct {
	ID         string       `json:"id"`
	Path       string       `json:"path"`
	Format     ExportFormat `json:"format"`
	Bytes      int          `json:"bytes"`
	ExportedAt int64        `json:"exported_at"`
}

// Export renders a recorded run to a report file. When dict is non-nil the
// report includes nearest-word suggestions for unrecognised first words.
func Export(ctx context.Context, database *sql.DB, cfg *config.Config, dict *dictionary.Set, input ExportInput) (*ExportOutput, error) {
	id, err := normalizeID(input.ID)
	if err != nil {
		return nil, err
	}
	format := input.Format
	if format == "" {
		format = FormatMarkdown
	}
	if _, err := ParseExportFormat(string(format)); err != nil {
		return nil, err
	}

	r, err := db.GetByID(ctx, database, id)
	if err != nil {
		return nil, err
	}

	body, err := render(r, format, dict)
	if err != nil {
		return nil, err
	}

	exportPath := input.Path
	if exportPath == "" {
		exportPath, err = defaultExportPath(r, format)
		if err != nil {
			return nil, err
		}
	}

	// Default paths are validated too; they embed the signal file name.
	if err := ValidateExportPath(exportPath, format, cfg); err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("export cancelled: %w", err))
	}

	if err := writeAtomic(exportPath, body); err != nil {
		return nil, err
	}

	return &ExportOutput{
		ID:         id,
		Path:       exportPath,
		Format:     format,
		Bytes:      len(body),
		ExportedAt: time.Now().Unix(),
	}, nil
}

func render(r *run.Run, format ExportFormat, dict *dictionary.Set) ([]byte, error) {
	rep := report.Report{Run: r}
	if dict != nil && r.Matched {
		rep.Suggestions = dict.SuggestAll(r.FirstWords, dictionary.MaxSuggestDistance)
	}

	switch format {
	case FormatHTML:
		out, err := report.HTML(rep)
		if err != nil {
			return nil, errors.NewInternal(fmt.Errorf("render html: %w", err))
		}
		return out, nil
	case FormatJSON:
		out, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		return append(out, '\n'), nil
	default:
		return []byte(report.Markdown(rep)), nil
	}
}

// writeAtomic writes body to a temp file beside path, then renames it into
// place so an existing report survives a failed write.
func writeAtomic(path string, body []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return errors.NewInternal(fmt.Errorf("failed to create export directory: %w", err))
	}

	randBytes := make([]byte, 8)
	if _, err := rand.Read(randBytes); err != nil {
		return errors.NewInternal(fmt.Errorf("failed to generate temp file name: %w", err))
	}
	tempPath := path + "." + hex.EncodeToString(randBytes) + ".tmp"
	file, err := openFileNoFollow(tempPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return errors.NewInternal(fmt.Errorf("failed to create export file: %w", err))
	}

	success := false
	defer func() {
		if file != nil {
			file.Close()
		}
		if !success {
			os.Remove(tempPath)
		}
	}()

	if _, err := file.Write(body); err != nil {
		return errors.NewInternal(err)
	}
	if err := file.Sync(); err != nil {
		return errors.NewInternal(err)
	}

	// Close before rename (required on Windows)
	if err := file.Close(); err != nil {
		return errors.NewInternal(fmt.Errorf("failed to close export file: %w", err))
	}
	file = nil

	// os.Rename would follow a symlinked destination
	if info, err := os.Lstat(path); err == nil && info.Mode()&os.ModeSymlink != 0 {
		return errors.NewInternal(fmt.Errorf("export path is a symlink"))
	}

	// On Windows, os.Rename fails if the destination exists; the existing file is kept.
	if err := os.Rename(tempPath, path); err != nil {
		if runtime.GOOS == "windows" {
			if _, statErr := os.Stat(path); statErr == nil {
				return errors.NewInvalidRequest("export destination already exists; overwriting is not supported on Windows yet (choose a new path or delete the existing file)")
			}
		}
		return errors.NewInternal(fmt.Errorf("failed to finalize export: %w", err))
	}

	success = true
	return nil
}

// defaultExportPath returns ~/.sigdecode/exports/<signal>-<id>.<ext>.
func defaultExportPath(r *run.Run, format ExportFormat) (string, error) {
	dir, err := DefaultExportsDir()
	if err != nil {
		return "", err
	}
	base := filepath.Base(r.SignalPath)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	name := SanitizeForFilename(base)
	return filepath.Join(dir, fmt.Sprintf("%s-%s%s", name, r.ID, format.Ext())), nil
}
