package report

import (
	"bytes"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/hpungsan/sigdecode/internal/search"
)

// Markdown renders rep as a standalone Markdown document.
func Markdown(rep Report) string {
	r := rep.Run
	var b strings.Builder

	b.WriteString("# Signal decode report\n\n")
	if r.ID != "" {
		fmt.Fprintf(&b, "- Run: `%s`\n", r.ID)
	}
	if r.CreatedAt > 0 {
		fmt.Fprintf(&b, "- Recorded: %s\n", time.Unix(r.CreatedAt, 0).UTC().Format("2006-01-02 15:04 UTC"))
	}
	fmt.Fprintf(&b, "- Signal: `%s` (%s characters, fingerprint `%s`)\n",
		r.SignalPath, humanize.Comma(int64(r.SignalChars)), r.SignalHash)
	fmt.Fprintf(&b, "- Window length: %s\n", humanize.Comma(int64(r.WindowLength)))
	fmt.Fprintf(&b, "- Windows generated: %s\n", humanize.Comma(int64(r.Windows)))

	if !r.Matched {
		b.WriteString("\n**No match found.** No window decoded to recognised English words.\n")
		return b.String()
	}

	fmt.Fprintf(&b, "- Best position: %d\n", r.Position)
	fmt.Fprintf(&b, "- Confidence: %s%% valid English words\n", FormatScore(r.Score))

	b.WriteString("\n## Substitution\n\n")
	b.WriteString("| Cipher | English |\n|---|---|\n")
	for _, p := range r.Pairs {
		fmt.Fprintf(&b, "| %s | %s |\n", p.Cipher, p.Plain)
	}

	b.WriteString("\n## Decoded message\n\n~~~~\n")
	b.WriteString(r.DecodedText)
	b.WriteString("\n~~~~\n")

	fmt.Fprintf(&b, "\n## First %d words\n\n", search.ReportWords)
	b.WriteString(strings.Join(r.FirstWords, " ") + "\n")

	if len(rep.Suggestions) > 0 {
		b.WriteString("\n## Nearest dictionary words\n\n")
		b.WriteString("| Token | Word | Distance |\n|---|---|---|\n")
		for _, s := range rep.Suggestions {
			fmt.Fprintf(&b, "| %s | %s | %d |\n", s.Token, s.Word, s.Distance)
		}
	}
	return b.String()
}

var markdown = goldmark.New(goldmark.WithExtensions(extension.Table))

// HTML renders the Markdown report through goldmark and wraps it in a page.
func HTML(rep Report) ([]byte, error) {
	var body bytes.Buffer
	if err := markdown.Convert([]byte(Markdown(rep)), &body); err != nil {
		return nil, err
	}

	title := "Signal decode report"
	if rep.Run.ID != "" {
		title += " " + rep.Run.ID
	}

	var page bytes.Buffer
	page.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&page, "<title>%s</title>\n", html.EscapeString(title))
	page.WriteString("</head>\n<body>\n")
	page.Write(body.Bytes())
	page.WriteString("</body>\n</html>\n")
	return page.Bytes(), nil
}
