package cipher

import "strings"

// Lexicon answers whether a token is a known word.
// Tokens passed to Contains are always uppercase.
type Lexicon interface {
	Contains(word string) bool
}

// Tokens returns the maximal runs of uppercase ASCII letters in text.
func Tokens(text string) []string {
	var tokens []string
	start := -1
	for i := 0; i < len(text); i++ {
		if isUpper(text[i]) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			tokens = append(tokens, text[start:i])
			start = -1
		}
	}
	if start >= 0 {
		tokens = append(tokens, text[start:])
	}
	return tokens
}

// FirstTokens returns at most n tokens from the start of text.
func FirstTokens(text string, n int) []string {
	tokens := Tokens(text)
	if len(tokens) > n {
		tokens = tokens[:n]
	}
	if tokens == nil {
		return []string{}
	}
	return tokens
}

// Score upper-cases text, splits it into tokens and returns the percentage
// (0-100) that lex recognises. Text without tokens scores 0.
func Score(text string, lex Lexicon) float64 {
	tokens := Tokens(upperASCII(text))
	if len(tokens) == 0 {
		return 0
	}

	valid := 0
	for _, tok := range tokens {
		if lex.Contains(tok) {
			valid++
		}
	}
	return float64(valid) / float64(len(tokens)) * 100
}

func upperASCII(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' {
			return r - ('a' - 'A')
		}
		return r
	}, s)
}
