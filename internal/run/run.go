package run

import "github.com/hpungsan/sigdecode/internal/cipher"

// Run is one recorded decode of a signal file.
type Run struct {
	// ID is a ULID that uniquely identifies this run
	ID string `json:"id"`

	// SignalPath is the path the signal was read from
	SignalPath string `json:"signal_path"`

	// SignalHash is the xxh3-64 fingerprint of the signal text (hex)
	SignalHash string `json:"signal_hash"`

	// SignalChars is the signal length in characters after trimming
	SignalChars int `json:"signal_chars"`

	WindowLength int `json:"window_length"`
	Windows      int `json:"windows"`

	// Matched is false when no window scored above zero
	Matched bool `json:"matched"`

	Position    int           `json:"position"`
	Score       float64       `json:"score"`
	Ranking     string        `json:"ranking"`
	Pairs       []cipher.Pair `json:"substitution"`
	DecodedText string        `json:"decoded_text"`
	FirstWords  []string      `json:"first_words"`

	// DurationMS is the wall time of the search in milliseconds
	DurationMS int64 `json:"duration_ms"`

	// CreatedAt is the Unix timestamp when the run was recorded
	CreatedAt int64 `json:"created_at"`
}

// Summary is the list view of a Run without the decoded text.
type Summary struct {
	ID           string  `json:"id"`
	SignalPath   string  `json:"signal_path"`
	SignalHash   string  `json:"signal_hash"`
	WindowLength int     `json:"window_length"`
	Windows      int     `json:"windows"`
	Matched      bool    `json:"matched"`
	Position     int     `json:"position"`
	Score        float64 `json:"score"`
	CreatedAt    int64   `json:"created_at"`
}

// Summarize returns the list view of r.
func (r *Run) Summarize() Summary {
	return Summary{
		ID:           r.ID,
		SignalPath:   r.SignalPath,
		SignalHash:   r.SignalHash,
		WindowLength: r.WindowLength,
		Windows:      r.Windows,
		Matched:      r.Matched,
		Position:     r.Position,
		Score:        r.Score,
		CreatedAt:    r.CreatedAt,
	}
}
