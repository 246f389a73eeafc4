package dictionary

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// MaxSuggestDistance bounds the edit distance accepted by Suggest.
const MaxSuggestDistance = 2

// Suggestion is the closest dictionary word to an unrecognised token.
type Suggestion struct {
	Token    string `json:"token"`
	Word     string `json:"word"`
	Distance int    `json:"distance"`
}

// Suggest finds the dictionary word nearest to word by Levenshtein distance,
// looking only at words within one character of its length. Ties go to the
// lexicographically smallest word. ok is false when nothing is within maxDist.
func (s *Set) Suggest(word string, maxDist int) (Suggestion, bool) {
	word = strings.ToUpper(word)
	if word == "" {
		return Suggestion{}, false
	}
	if s.Contains(word) {
		return Suggestion{Token: word, Word: word}, true
	}

	s.indexOnce.Do(s.buildLengthIndex)

	best := Suggestion{Token: word, Distance: maxDist + 1}
	for n := len(word) - 1; n <= len(word)+1; n++ {
		for _, candidate := range s.byLen[n] {
			d := levenshtein.ComputeDistance(word, candidate)
			if d < best.Distance || (d == best.Distance && best.Word != "" && candidate < best.Word) {
				best.Word = candidate
				best.Distance = d
			}
		}
	}
	if best.Word == "" || best.Distance > maxDist {
		return Suggestion{}, false
	}
	return best, true
}

// SuggestAll returns suggestions for the tokens the set does not contain.
func (s *Set) SuggestAll(tokens []string, maxDist int) []Suggestion {
	out := make([]Suggestion, 0)
	for _, tok := range tokens {
		if s.Contains(tok) {
			continue
		}
		if sug, ok := s.Suggest(tok, maxDist); ok {
			out = append(out, sug)
		}
	}
	return out
}

func (s *Set) buildLengthIndex() {
	s.byLen = make(map[int][]string)
	for w := range s.words {
		s.byLen[len(w)] = append(s.byLen[len(w)], w)
	}
	for n := range s.byLen {
		sort.Strings(s.byLen[n])
	}
}
