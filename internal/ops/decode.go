package ops

import (
	"context"
	"crypto/rand"
	"database/sql"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/hpungsan/sigdecode/internal/config"
	"github.com/hpungsan/sigdecode/internal/db"
	"github.com/hpungsan/sigdecode/internal/dictionary"
	"github.com/hpungsan/sigdecode/internal/errors"
	"github.com/hpungsan/sigdecode/internal/run"
	"github.com/hpungsan/sigdecode/internal/search"
	"github.com/hpungsan/sigdecode/internal/signal"
)

// DecodeInput contains parameters for the Decode operation.
type DecodeInput struct {
	SignalPath   string // default: cfg.SignalPath
	WindowLength int    // default: cfg.WindowLength
	Workers      int    // default: cfg.Workers
	Record       *bool  // default: !cfg.DisableHistory
	Suggest      bool   // add nearest-word suggestions for unrecognised first words

	// CheckPath restricts SignalPath to the allowed directories and refuses
	// symlinks. Set it when the path comes from a remote caller.
	CheckPath bool
}

// DecodeOutput contains the result of the Decode operation.
type DecodeOutput struct {
	Run         *run.Run                `json:"run"`
	Recorded    bool                    `json:"recorded"`
	Suggestions []dictionary.Suggestion `json:"suggestions,omitempty"`
}

// Decode loads a signal file, searches every window for the best-scoring
// substitution and, unless disabled, records the run. A run without a match
// is a successful result with Run.Matched=false.
func Decode(ctx context.Context, database *sql.DB, cfg *config.Config, dict *dictionary.Set, log zerolog.Logger, input DecodeInput) (*DecodeOutput, error) {
	if dict == nil {
		return nil, errors.NewDictionaryUnavailable("", nil)
	}
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	path := strings.TrimSpace(input.SignalPath)
	checked := input.CheckPath && path != ""
	if path == "" {
		path = cfg.SignalPath
	}
	if checked {
		if err := ValidatePath(path, PathCheckRead, cfg); err != nil {
			return nil, err
		}
	}
	length := input.WindowLength
	if length == 0 {
		length = cfg.WindowLength
	}
	if length < 0 {
		return nil, errors.NewInvalidRequest("window_length must be positive")
	}
	workers := input.Workers
	if workers <= 0 {
		workers = cfg.Workers
	}
	record := !cfg.DisableHistory
	if input.Record != nil {
		record = *input.Record
	}

	var sig *signal.Signal
	driver := search.NewDriver(dict, search.Options{
		WindowLength: length,
		Workers:      workers,
		Logger:       log,
	})
	res, err := driver.Run(ctx, func() (*signal.Signal, error) {
		load := signal.Load
		if checked {
			load = loadNoFollow
		}
		s, err := load(path)
		sig = s
		return s, err
	})
	if err != nil {
		return nil, err
	}

	r := &run.Run{
		SignalPath:   path,
		SignalHash:   sig.Fingerprint(),
		SignalChars:  res.SignalChars,
		WindowLength: res.WindowLength,
		Windows:      res.Windows,
		Matched:      res.Matched,
		Pairs:        res.Pairs,
		FirstWords:   res.FirstWords,
		DurationMS:   res.Duration.Milliseconds(),
		CreatedAt:    time.Now().Unix(),
	}
	if res.Matched {
		r.Position = res.Best.Position
		r.Score = res.Best.Score
		r.Ranking = res.Best.Ranking.String()
		r.DecodedText = res.Best.Decoded
	}

	out := &DecodeOutput{Run: r}
	if input.Suggest && res.Matched {
		out.Suggestions = dict.SuggestAll(r.FirstWords, dictionary.MaxSuggestDistance)
	}

	if record && database != nil {
		r.ID = newRunID()
		if err := db.Insert(ctx, database, r); err != nil {
			return nil, err
		}
		out.Recorded = true
		log.Info().Str("run_id", r.ID).Msg("run recorded")
	}

	return out, nil
}

// loadNoFollow reads a signal whose path passed ValidatePath without
// following a symlink swapped in afterwards.
func loadNoFollow(path string) (*signal.Signal, error) {
	f, err := openFileNoFollowRead(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return signal.Read(path, f)
}

func newRunID() string {
	entropy := ulid.Monotonic(rand.Reader, 0)
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}
