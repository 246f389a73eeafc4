package cipher

import "testing"

func TestBuildTable_TenLetters(t *testing.T) {
	ranking := Ranking("QWXZKJVBPY")
	table := BuildTable(ranking)

	for i, c := range ranking {
		if got := table[c-'A']; got != EnglishRanking[i] {
			t.Errorf("table[%c] = %c, want %c", c, got, EnglishRanking[i])
		}
	}

	mapped := map[byte]bool{}
	for _, c := range ranking {
		mapped[c] = true
	}
	for c := byte('A'); c <= 'Z'; c++ {
		if mapped[c] {
			continue
		}
		if got := table[c-'A']; got != c {
			t.Errorf("table[%c] = %c, want identity", c, got)
		}
	}
}

func TestBuildTable_ShortRanking(t *testing.T) {
	table := BuildTable(Ranking("CAB"))

	want := map[byte]byte{'C': 'E', 'A': 'A', 'B': 'T'}
	for c, p := range want {
		if got := table[c-'A']; got != p {
			t.Errorf("table[%c] = %c, want %c", c, got, p)
		}
	}

	identity := 0
	for i, p := range table {
		if p == byte('A'+i) {
			identity++
		}
	}
	// A maps to A by assignment; the other 23 untouched letters are identity too.
	if identity != 24 {
		t.Errorf("identity entries = %d, want 24", identity)
	}
}

func TestBuildTable_Empty(t *testing.T) {
	if table := BuildTable(nil); table != IdentityTable() {
		t.Errorf("BuildTable(nil) = %v, want identity", table)
	}
}

func TestBuildTable_AllowsCollisions(t *testing.T) {
	// X takes E while E itself is unranked and keeps mapping to E.
	table := BuildTable(Ranking("X"))
	if table['X'-'A'] != 'E' || table['E'-'A'] != 'E' {
		t.Errorf("table[X]=%c table[E]=%c, want both E", table['X'-'A'], table['E'-'A'])
	}
}

func TestTable_Pairs(t *testing.T) {
	// R is ranked sixth and maps to R, so it is not listed.
	ranking := Ranking("KEBQWRX")
	pairs := BuildTable(ranking).Pairs(ranking)

	want := []Pair{{"K", "E"}, {"E", "A"}, {"B", "T"}, {"Q", "O"}, {"W", "I"}, {"X", "S"}}
	if len(pairs) != len(want) {
		t.Fatalf("len(pairs) = %d, want %d", len(pairs), len(want))
	}
	for i := range want {
		if pairs[i] != want[i] {
			t.Errorf("pairs[%d] = %+v, want %+v", i, pairs[i], want[i])
		}
	}
}

func TestTable_Lookup(t *testing.T) {
	table := BuildTable(Ranking("Q"))
	tests := []struct {
		in, want rune
	}{
		{'Q', 'E'},
		{'B', 'B'},
		{'q', 'q'},
		{' ', ' '},
		{'Ä', 'Ä'},
	}
	for _, tt := range tests {
		if got := table.Lookup(tt.in); got != tt.want {
			t.Errorf("Lookup(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
