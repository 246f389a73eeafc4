package signal

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/zeebo/xxh3"

	"github.com/hpungsan/sigdecode/internal/errors"
)

// Signal is the ciphertext read from storage. It is never modified after loading.
type Signal struct {
	Path  string
	Text  string
	runes []rune
}

// New wraps text (already trimmed) as a Signal.
func New(path, text string) *Signal {
	return &Signal{Path: path, Text: text, runes: []rune(text)}
}

// Load reads the whole file at path and strips leading and trailing whitespace.
func Load(path string) (*Signal, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.NewInvalidRequest("signal path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewSignalUnreadable(path, err)
	}
	return New(path, strings.TrimSpace(string(data))), nil
}

// Read is Load for an already opened file.
func Read(path string, r io.Reader) (*Signal, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.NewSignalUnreadable(path, err)
	}
	return New(path, strings.TrimSpace(string(data))), nil
}

// Runes returns the signal as characters. Callers must not modify the slice.
func (s *Signal) Runes() []rune {
	return s.runes
}

// Len returns the signal length in characters.
func (s *Signal) Len() int {
	return len(s.runes)
}

// Fingerprint returns the xxh3-64 hash of the signal text as 16 hex digits.
func (s *Signal) Fingerprint() string {
	return fmt.Sprintf("%016x", xxh3.HashString(s.Text))
}
