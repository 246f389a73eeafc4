package cipher

// EnglishRanking is the canonical order of the ten most frequent English letters.
var EnglishRanking = [TopLetters]byte{'E', 'A', 'T', 'O', 'I', 'R', 'S', 'N', 'H', 'U'}

// Table maps each uppercase letter (index 0 = 'A') to its decoded letter.
// It is always total; it need not be a bijection.
type Table [26]byte

// Pair is one cipher→plain assignment taken from a ranking.
type Pair struct {
	Cipher string `json:"cipher"`
	Plain  string `json:"plain"`
}

// IdentityTable returns a table mapping every letter to itself.
func IdentityTable() Table {
	var t Table
	for i := range t {
		t[i] = byte('A' + i)
	}
	return t
}

// BuildTable assigns the i-th ranked cipher letter to the i-th letter of
// EnglishRanking. Letters without an assignment map to themselves.
func BuildTable(r Ranking) Table {
	t := IdentityTable()
	for i := 0; i < len(r) && i < len(EnglishRanking); i++ {
		t[r[i]-'A'] = EnglishRanking[i]
	}
	return t
}

// Lookup returns the mapping for r. Characters outside A-Z are returned unchanged.
func (t Table) Lookup(r rune) rune {
	if r < 'A' || r > 'Z' {
		return r
	}
	return rune(t[r-'A'])
}

// Pairs lists the assignments made for the ranked letters, in rank order.
// A ranked letter that lands on itself is not a substitution and is omitted.
func (t Table) Pairs(r Ranking) []Pair {
	pairs := make([]Pair, 0, len(r))
	for _, c := range r {
		if t[c-'A'] == c {
			continue
		}
		pairs = append(pairs, Pair{Cipher: string(c), Plain: string(t[c-'A'])})
	}
	return pairs
}
