package search

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/hpungsan/sigdecode/internal/cipher"
	"github.com/hpungsan/sigdecode/internal/errors"
	"github.com/hpungsan/sigdecode/internal/signal"
)

// ReportWords is how many decoded tokens are reported for the best window.
const ReportWords = 9

// cancelCheckEvery is how many windows are evaluated between context checks.
const cancelCheckEvery = 1024

// State is the driver's position in its lifecycle.
type State int

const (
	StateInit State = iota
	StateLoading
	StateSearching
	StateDone
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "INIT"
	case StateLoading:
		return "LOADING"
	case StateSearching:
		return "SEARCHING"
	case StateDone:
		return "DONE"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Candidate is one evaluated window.
type Candidate struct {
	Position int
	Window   string
	Ranking  cipher.Ranking
	Table    cipher.Table
	Decoded  string
	Score    float64
}

// Result is the outcome of a full sweep. Best is only meaningful when Matched is true.
type Result struct {
	SignalChars  int
	WindowLength int
	Windows      int
	Matched      bool
	Best         Candidate
	Pairs        []cipher.Pair
	FirstWords   []string
	Duration     time.Duration
}

// Loader supplies the signal once the driver enters LOADING.
type Loader func() (*signal.Signal, error)

// Options configures a Driver.
type Options struct {
	WindowLength int
	Workers      int // <=1 sweeps sequentially
	Logger       zerolog.Logger
}

// Driver runs the windowed frequency-substitution search over one signal.
// A Driver is single use: Run may be called once.
type Driver struct {
	lex   cipher.Lexicon
	opts  Options
	log   zerolog.Logger
	state State
}

// NewDriver creates a driver that scores windows against lex.
func NewDriver(lex cipher.Lexicon, opts Options) *Driver {
	return &Driver{
		lex:   lex,
		opts:  opts,
		log:   opts.Logger.With().Str("stage", "search").Logger(),
		state: StateInit,
	}
}

// State returns the driver's current state.
func (d *Driver) State() State {
	return d.state
}

func (d *Driver) transition(to State) {
	d.log.Debug().Stringer("from", d.state).Stringer("to", to).Msg("state change")
	d.state = to
}

// Run loads the signal, sweeps every window and returns the best match.
// Loading failures abort before any window is evaluated. A sweep that never
// beats a score of zero (including one with no windows) returns Matched=false.
func (d *Driver) Run(ctx context.Context, load Loader) (*Result, error) {
	if d.state != StateInit {
		return nil, errors.NewInternal(fmt.Errorf("search driver already used (state %s)", d.state))
	}
	if d.lex == nil {
		return nil, errors.NewInternal(fmt.Errorf("search driver has no lexicon"))
	}
	if d.opts.WindowLength <= 0 {
		return nil, errors.NewInvalidRequest("window_length must be positive")
	}
	started := time.Now()

	d.transition(StateLoading)
	sig, err := load()
	if err != nil {
		return nil, err
	}
	d.log.Info().Int("chars", sig.Len()).Str("path", sig.Path).Msg("signal loaded")

	d.transition(StateSearching)
	n := cipher.WindowCount(sig.Len(), d.opts.WindowLength)
	d.log.Info().Int("windows", n).Int("window_length", d.opts.WindowLength).Msg("generated sliding windows")

	var best Candidate
	var found bool
	if d.opts.Workers > 1 && n > 1 {
		best, found, err = d.sweepParallel(ctx, sig, n)
	} else {
		best, found, err = d.sweep(ctx, sig, 0, n, true)
	}
	if err != nil {
		return nil, err
	}

	result := &Result{
		SignalChars:  sig.Len(),
		WindowLength: d.opts.WindowLength,
		Windows:      n,
		Matched:      found,
		FirstWords:   []string{},
		Pairs:        []cipher.Pair{},
	}
	if found {
		finalize(result, best)
	}
	result.Duration = time.Since(started)

	d.transition(StateDone)
	if found {
		d.log.Info().
			Int("position", best.Position).
			Float64("score", best.Score).
			Dur("took", result.Duration).
			Msg("best match found")
	} else {
		d.log.Warn().Int("windows", n).Msg("no match found")
	}
	return result, nil
}

// finalize recomputes the ranking and table from the winning window text.
// Both are pure functions of the text, so they equal what was used during scoring.
func finalize(r *Result, best Candidate) {
	ranking := cipher.Rank(best.Window)
	table := cipher.BuildTable(ranking)

	best.Ranking = ranking
	best.Table = table
	r.Best = best
	r.Pairs = table.Pairs(ranking)
	r.FirstWords = cipher.FirstTokens(best.Decoded, ReportWords)
}

// Evaluate ranks, decodes and scores a single window.
func Evaluate(w cipher.Window, lex cipher.Lexicon) Candidate {
	ranking := cipher.Rank(w.Text)
	table := cipher.BuildTable(ranking)
	decoded := cipher.Decode(w.Text, table)
	return Candidate{
		Position: w.Position,
		Window:   w.Text,
		Ranking:  ranking,
		Table:    table,
		Decoded:  decoded,
		Score:    cipher.Score(decoded, lex),
	}
}

// sweep evaluates windows [from, to) in order. Only a strictly greater score
// replaces the incumbent, so the earliest window wins ties. logBest logs each
// new incumbent; chunk sweeps pass false since their incumbents are local.
func (d *Driver) sweep(ctx context.Context, sig *signal.Signal, from, to int, logBest bool) (Candidate, bool, error) {
	var best Candidate
	bestScore := 0.0
	found := false

	seen := 0
	for w := range cipher.WindowsBetween(sig.Runes(), d.opts.WindowLength, from, to) {
		if seen%cancelCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return Candidate{}, false, err
			}
		}
		seen++

		c := Evaluate(w, d.lex)
		if c.Score > bestScore {
			best = c
			bestScore = c.Score
			found = true
			if logBest {
				d.log.Debug().Int("position", c.Position).Float64("score", c.Score).Msg("new best window")
			}
		}
	}
	return best, found, nil
}
