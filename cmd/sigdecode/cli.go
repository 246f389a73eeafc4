package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/hpungsan/sigdecode/internal/config"
	"github.com/hpungsan/sigdecode/internal/dictionary"
	"github.com/hpungsan/sigdecode/internal/errors"
	"github.com/hpungsan/sigdecode/internal/logging"
	"github.com/hpungsan/sigdecode/internal/mcp"
	"github.com/hpungsan/sigdecode/internal/ops"
	"github.com/hpungsan/sigdecode/internal/report"
	"github.com/hpungsan/sigdecode/internal/run"
)

// env carries what the commands need. loadDict is swapped out in tests.
type env struct {
	db       *sql.DB
	cfg      *config.Config
	log      zerolog.Logger
	logLevel string    // --log-level override
	logOut   io.Writer // nil means stderr
	loadDict func(path string) (*dictionary.Set, error)
}

// logger builds a logger tagged with component, honouring --log-level.
func (e *env) logger(component string) zerolog.Logger {
	level := e.cfg.LogLevel
	if e.logLevel != "" {
		level = e.logLevel
	}
	return logging.New(logging.Options{Level: level, Format: e.cfg.LogFormat, Component: component, Writer: e.logOut})
}

func (e *env) dictionary(path string) (*dictionary.Set, error) {
	if path == "" {
		path = e.cfg.DictionaryPath
	}
	if e.loadDict == nil {
		return nil, errors.NewDictionaryUnavailable(path, nil)
	}
	started := time.Now()
	dict, err := e.loadDict(path)
	if err != nil {
		return nil, err
	}
	e.log.Debug().Str("path", path).Int("words", dict.Len()).Dur("took", time.Since(started)).Msg("dictionary loaded")
	return dict, nil
}

// newCLIApp creates the CLI application. Running it without a subcommand decodes.
func newCLIApp(e *env) *cli.App {
	app := &cli.App{
		Name:    "sigdecode",
		Usage:   "Decode a substitution-enciphered signal by sliding-window frequency analysis",
		Version: Version,
		Flags: append(decodeFlags(), &cli.StringFlag{
			Name:  "log-level",
			Usage: "Override log level: trace|debug|info|warn|error",
		}),
		Before: func(c *cli.Context) error {
			if lvl := c.String("log-level"); lvl != "" {
				e.logLevel = lvl
				e.log = e.log.Level(logging.ParseLevel(lvl))
			}
			return nil
		},
		Action: decodeAction(e),
		Commands: []*cli.Command{
			decodeCmd(e),
			listCmd(e),
			showCmd(e),
			deleteCmd(e),
			exportCmd(e),
			mcpCmd(e),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

func decodeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "signal", Aliases: []string{"s"}, Usage: "Signal file (default: config signal_path)"},
		&cli.IntFlag{Name: "window", Aliases: []string{"w"}, Usage: "Window length in characters (default: config window_length)"},
		&cli.StringFlag{Name: "dict", Aliases: []string{"d"}, Usage: "Word list (default: config dictionary_path)"},
		&cli.IntFlag{Name: "workers", Usage: "Parallel sweep workers (default: config workers)"},
		&cli.BoolFlag{Name: "no-record", Usage: "Do not record the run in history"},
		&cli.BoolFlag{Name: "suggest", Usage: "Show nearest dictionary words for unrecognised first words"},
		&cli.BoolFlag{Name: "json", Usage: "Print the run as JSON instead of the text report"},
	}
}

// decodeCmd creates the decode command.
func decodeCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:   "decode",
		Usage:  "Search every window of the signal for the best decoding (default command)",
		Flags:  decodeFlags(),
		Action: decodeAction(e),
	}
}

func decodeAction(e *env) cli.ActionFunc {
	return func(c *cli.Context) error {
		if c.NArg() > 0 {
			return outputError(errors.NewInvalidRequest(fmt.Sprintf("unknown command %q", c.Args().First())))
		}

		dict, err := e.dictionary(c.String("dict"))
		if err != nil {
			return outputError(err)
		}

		input := ops.DecodeInput{
			SignalPath:   c.String("signal"),
			WindowLength: c.Int("window"),
			Workers:      c.Int("workers"),
			Suggest:      c.Bool("suggest"),
		}
		if c.IsSet("window") && input.WindowLength <= 0 {
			return outputError(errors.NewInvalidRequest("--window must be positive"))
		}
		if c.Bool("no-record") {
			record := false
			input.Record = &record
		}

		output, err := ops.Decode(c.Context, e.db, e.cfg, dict, e.log, input)
		if err != nil {
			return outputError(err)
		}

		if c.Bool("json") {
			return outputJSON(c.App.Writer, output)
		}
		if err := report.Text(c.App.Writer, report.Report{Run: output.Run, Suggestions: output.Suggestions}); err != nil {
			return outputError(errors.NewInternal(err))
		}
		if output.Recorded {
			fmt.Fprintf(c.App.Writer, "Run recorded as %s\n", output.Run.ID)
		}
		return nil
	}
}

// listCmd creates the list command.
func listCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List recorded runs, newest first",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "signal-hash", Usage: "Only runs over the signal with this fingerprint"},
			&cli.BoolFlag{Name: "matched", Usage: "Only runs that found a match"},
			&cli.IntFlag{Name: "limit", Value: ops.DefaultListLimit, Usage: "Maximum runs to return"},
			&cli.IntFlag{Name: "offset", Usage: "Runs to skip"},
			&cli.BoolFlag{Name: "json", Usage: "Print JSON"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.List(c.Context, e.db, ops.ListInput{
				SignalHash:  c.String("signal-hash"),
				MatchedOnly: c.Bool("matched"),
				Limit:       c.Int("limit"),
				Offset:      c.Int("offset"),
			})
			if err != nil {
				return outputError(err)
			}
			if c.Bool("json") {
				return outputJSON(c.App.Writer, output)
			}
			writeRunTable(c.App.Writer, output)
			return nil
		},
	}
}

func writeRunTable(w io.Writer, out *ops.ListOutput) {
	if len(out.Items) == 0 {
		fmt.Fprintln(w, "No recorded runs")
		return
	}
	for _, s := range out.Items {
		fmt.Fprintln(w, summaryLine(s))
	}
	if out.Pagination.HasMore {
		fmt.Fprintf(w, "... %s more (use --offset %d)\n",
			humanize.Comma(int64(out.Pagination.Total-out.Pagination.Offset-len(out.Items))),
			out.Pagination.Offset+len(out.Items))
	}
}

func summaryLine(s run.Summary) string {
	result := "no match"
	if s.Matched {
		result = fmt.Sprintf("pos %d  %s%%", s.Position, report.FormatScore(s.Score))
	}
	return fmt.Sprintf("%s  %s  w=%d  %s  %s",
		s.ID,
		humanize.Time(time.Unix(s.CreatedAt, 0)),
		s.WindowLength,
		result,
		s.SignalPath)
}

// showCmd creates the show command.
func showCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Show a recorded run",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "json", Usage: "Print JSON"},
		},
		Action: func(c *cli.Context) error {
			r, err := ops.Fetch(c.Context, e.db, c.Args().First())
			if err != nil {
				return outputError(err)
			}
			if c.Bool("json") {
				return outputJSON(c.App.Writer, r)
			}
			if err := report.Text(c.App.Writer, report.Report{Run: r}); err != nil {
				return outputError(errors.NewInternal(err))
			}
			return nil
		},
	}
}

// deleteCmd creates the delete command.
func deleteCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Permanently delete a recorded run",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			output, err := ops.Delete(c.Context, e.db, c.Args().First())
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c.App.Writer, output)
		},
	}
}

// exportCmd creates the export command.
func exportCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:      "export",
		Usage:     "Write a recorded run as a Markdown, HTML or JSON report",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: "md", Usage: "md|html|json"},
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Usage: "Output file (default: ~/.sigdecode/exports/<signal>-<id>.<ext>)"},
			&cli.BoolFlag{Name: "suggest", Usage: "Include nearest dictionary words (loads the dictionary)"},
		},
		Action: func(c *cli.Context) error {
			format, err := ops.ParseExportFormat(c.String("format"))
			if err != nil {
				return outputError(err)
			}

			var dict *dictionary.Set
			if c.Bool("suggest") {
				if dict, err = e.dictionary(""); err != nil {
					return outputError(err)
				}
			}

			output, err := ops.Export(c.Context, e.db, e.cfg, dict, ops.ExportInput{
				ID:     c.Args().First(),
				Format: format,
				Path:   c.String("path"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c.App.Writer, output)
		},
	}
}

// mcpCmd creates the mcp command.
func mcpCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Serve the decoder as MCP tools over stdio",
		Action: func(c *cli.Context) error {
			dict, err := e.dictionary("")
			if err != nil {
				return outputError(err)
			}
			if err := mcp.Run(e.db, e.cfg, dict, e.logger("mcp"), Version); err != nil {
				return outputError(errors.NewInternal(err))
			}
			return nil
		},
	}
}

// Helper functions

// outputJSON writes v to w as indented JSON.
func outputJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	if sErr, ok := err.(*errors.SigError); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", sErr.Code, sErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}
