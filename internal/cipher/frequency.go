package cipher

import "sort"

// TopLetters is the number of cipher letters ranked per window.
const TopLetters = 10

// Ranking lists distinct uppercase letters, most frequent first.
type Ranking []byte

// String returns the ranked letters as a string, e.g. "XQZ".
func (r Ranking) String() string {
	return string(r)
}

// Rank counts the uppercase ASCII letters in text and returns up to TopLetters
// of them by descending count. Letters with equal counts keep the order in
// which they first appear. Lowercase letters and all other characters are ignored.
func Rank(text string) Ranking {
	var counts [26]int
	order := make([]byte, 0, 26)

	for i := 0; i < len(text); i++ {
		c := text[i]
		if !isUpper(c) {
			continue
		}
		if counts[c-'A'] == 0 {
			order = append(order, c)
		}
		counts[c-'A']++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]-'A'] > counts[order[j]-'A']
	})

	if len(order) > TopLetters {
		order = order[:TopLetters]
	}
	return Ranking(order)
}

func isUpper(c byte) bool {
	return c >= 'A' && c <= 'Z'
}
