package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"github.com/hpungsan/sigdecode/internal/dictionary"
	"github.com/hpungsan/sigdecode/internal/run"
	"github.com/hpungsan/sigdecode/internal/search"
)

// RulerWidth is the width of the rulers framing the decoded message.
const RulerWidth = 80

var (
	headingColor = color.New(color.Bold)
	scoreColor   = color.New(color.FgGreen, color.Bold)
	missColor    = color.New(color.FgYellow, color.Bold)
)

// Report is everything printed for one run.
type Report struct {
	Run         *run.Run
	Suggestions []dictionary.Suggestion
}

// Text writes the terminal report for rep to w.
func Text(w io.Writer, rep Report) error {
	r := rep.Run
	var b strings.Builder

	fmt.Fprintf(&b, "Signal loaded: %s characters\n", humanize.Comma(int64(r.SignalChars)))
	fmt.Fprintf(&b, "Generated %s sliding windows\n", humanize.Comma(int64(r.Windows)))

	if !r.Matched {
		b.WriteString("\n")
		missColor.Fprintf(&b, "No match found")
		fmt.Fprintf(&b, ": none of the %s windows decoded to recognised English words\n",
			humanize.Comma(int64(r.Windows)))
		_, err := io.WriteString(w, b.String())
		return err
	}

	fmt.Fprintf(&b, "\nBest match found at position %d\n", r.Position)
	b.WriteString("Confidence score: ")
	scoreColor.Fprintf(&b, "%s%%", FormatScore(r.Score))
	b.WriteString(" valid English words\n")
	b.WriteString("Substitution mapping used:\n")
	for _, p := range r.Pairs {
		fmt.Fprintf(&b, "   %s → %s\n", p.Cipher, p.Plain)
	}

	b.WriteString("\n")
	headingColor.Fprintln(&b, "DECODED MESSAGE:")
	b.WriteString(strings.Repeat("=", RulerWidth) + "\n")
	b.WriteString(r.DecodedText + "\n")
	b.WriteString(strings.Repeat("=", RulerWidth) + "\n")

	b.WriteString("\n")
	headingColor.Fprintf(&b, "First %d words for submission:\n", search.ReportWords)
	b.WriteString(strings.Join(r.FirstWords, " ") + "\n")

	if len(rep.Suggestions) > 0 {
		b.WriteString("\nNearest dictionary words:\n")
		for _, s := range rep.Suggestions {
			fmt.Fprintf(&b, "   %s → %s (distance %d)\n", s.Token, s.Word, s.Distance)
		}
	}

	fmt.Fprintf(&b, "\nMessage found at position %d with %s%% confidence\n", r.Position, FormatScore(r.Score))

	_, err := io.WriteString(w, b.String())
	return err
}

// FormatScore renders a confidence score with two decimals.
func FormatScore(score float64) string {
	return fmt.Sprintf("%.2f", score)
}
