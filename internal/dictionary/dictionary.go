package dictionary

import (
	"bufio"
	stderrors "errors"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/hpungsan/sigdecode/internal/errors"
)

// Set is a read-only membership set of uppercase English words.
// It is built once and safe for concurrent use.
type Set struct {
	words map[string]struct{}

	indexOnce sync.Once
	byLen     map[int][]string
}

// New builds a Set from words. Entries are trimmed and upper-cased; blanks are dropped.
func New(words []string) *Set {
	s := &Set{words: make(map[string]struct{}, len(words))}
	for _, w := range words {
		s.add(w)
	}
	return s
}

// Load reads a newline-separated word list from path.
// A missing, unreadable or empty list is reported as DICTIONARY_UNAVAILABLE.
func Load(path string) (*Set, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewDictionaryUnavailable(path, err)
	}
	defer f.Close()

	s, err := Read(f)
	if err != nil {
		return nil, errors.NewDictionaryUnavailable(path, err)
	}
	return s, nil
}

// Read builds a Set from a newline-separated word list.
func Read(r io.Reader) (*Set, error) {
	s := &Set{words: make(map[string]struct{})}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		s.add(scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(s.words) == 0 {
		return nil, stderrors.New("word list contains no words")
	}
	return s, nil
}

func (s *Set) add(w string) {
	w = strings.ToUpper(strings.TrimSpace(w))
	if w == "" {
		return
	}
	s.words[w] = struct{}{}
}

// Contains reports whether word is in the set, ignoring case.
func (s *Set) Contains(word string) bool {
	_, ok := s.words[strings.ToUpper(word)]
	return ok
}

// Len returns the number of distinct words.
func (s *Set) Len() int {
	return len(s.words)
}
