package cipher

import "strings"

// Decode applies t to every character of text. Characters the table does not
// cover pass through unchanged, so the output has as many characters as the input.
func Decode(text string, t Table) string {
	return strings.Map(t.Lookup, text)
}
