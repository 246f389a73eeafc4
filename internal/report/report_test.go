package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/hpungsan/sigdecode/internal/cipher"
	"github.com/hpungsan/sigdecode/internal/dictionary"
	"github.com/hpungsan/sigdecode/internal/run"
)

func init() {
	color.NoColor = true
}

func matchedRun() *run.Run {
	return &run.Run{
		ID:           "01HZZTESTRUN0000000000000",
		SignalPath:   "signal.txt",
		SignalHash:   "0123456789abcdef",
		SignalChars:  65535,
		WindowLength: 721,
		Windows:      64815,
		Matched:      true,
		Position:     1234,
		Score:        42.857142,
		Ranking:      "XQ",
		Pairs:        []cipher.Pair{{Cipher: "X", Plain: "E"}, {Cipher: "Q", Plain: "A"}},
		DecodedText:  "THE SIGNAL <IS> HERE",
		FirstWords:   []string{"THE", "SIGNAL", "IS", "HERE"},
		CreatedAt:    1700000000,
	}
}

func TestText_Matched(t *testing.T) {
	var buf bytes.Buffer
	if err := Text(&buf, Report{Run: matchedRun()}); err != nil {
		t.Fatalf("Text() error = %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"Signal loaded: 65,535 characters\n",
		"Generated 64,815 sliding windows\n",
		"Best match found at position 1234\n",
		"Confidence score: 42.86% valid English words\n",
		"   X → E\n   Q → A\n",
		"DECODED MESSAGE:\n" + strings.Repeat("=", 80) + "\nTHE SIGNAL <IS> HERE\n" + strings.Repeat("=", 80) + "\n",
		"First 9 words for submission:\nTHE SIGNAL IS HERE\n",
		"Message found at position 1234 with 42.86% confidence\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Text() missing %q\n--- output ---\n%s", want, out)
		}
	}
	if strings.Contains(out, "Nearest dictionary words") {
		t.Error("suggestions section printed without suggestions")
	}
}

func TestText_FirstWordsHeadingIsFixed(t *testing.T) {
	for _, words := range [][]string{{"THE"}, nil} {
		r := matchedRun()
		r.FirstWords = words
		var buf bytes.Buffer
		if err := Text(&buf, Report{Run: r}); err != nil {
			t.Fatalf("Text() error = %v", err)
		}
		if !strings.Contains(buf.String(), "First 9 words for submission:\n") {
			t.Errorf("Text() with %d words missing fixed heading\n--- output ---\n%s", len(words), buf.String())
		}
	}
}

func TestText_Suggestions(t *testing.T) {
	var buf bytes.Buffer
	rep := Report{
		Run:         matchedRun(),
		Suggestions: []dictionary.Suggestion{{Token: "SIGNL", Word: "SIGNAL", Distance: 1}},
	}
	if err := Text(&buf, rep); err != nil {
		t.Fatalf("Text() error = %v", err)
	}
	if !strings.Contains(buf.String(), "   SIGNL → SIGNAL (distance 1)\n") {
		t.Errorf("Text() missing suggestion line:\n%s", buf.String())
	}
}

func TestText_NoMatch(t *testing.T) {
	r := &run.Run{SignalChars: 3, WindowLength: 721, Windows: 0}

	var buf bytes.Buffer
	if err := Text(&buf, Report{Run: r}); err != nil {
		t.Fatalf("Text() error = %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Generated 0 sliding windows") {
		t.Errorf("Text() missing window count:\n%s", out)
	}
	if !strings.Contains(out, "No match found") {
		t.Errorf("Text() missing no-match line:\n%s", out)
	}
	if strings.Contains(out, "DECODED MESSAGE") {
		t.Errorf("Text() printed a decoded message for a no-match run:\n%s", out)
	}
}

func TestFormatScore(t *testing.T) {
	tests := map[float64]string{
		0:         "0.00",
		100:       "100.00",
		33.333333: "33.33",
		66.666666: "66.67",
	}
	for in, want := range tests {
		if got := FormatScore(in); got != want {
			t.Errorf("FormatScore(%v) = %q, want %q", in, got, want)
		}
	}
}
