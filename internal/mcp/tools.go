package mcp

import "github.com/mark3labs/mcp-go/mcp"

var decodeToolDef = mcp.NewTool("signal_decode",
	mcp.WithDescription("Decode a monoalphabetic-substitution signal file. Slides a fixed-length window over the text, maps each window's ten most frequent letters onto EATOIRSNHU and keeps the window whose decoding has the highest share of dictionary words. Runs are recorded unless record=false."),
	mcp.WithString("signal_path", mcp.Description("Path to the ciphertext file (default: configured signal_path)")),
	mcp.WithNumber("window_length", mcp.Description("Characters per window (default: configured window_length, 721)")),
	mcp.WithNumber("workers", mcp.Description("Parallel sweep workers; 0 or 1 sweeps sequentially")),
	mcp.WithBoolean("record", mcp.Description("Record the run in history (default: true unless history is disabled)")),
	mcp.WithBoolean("suggest", mcp.Description("Suggest nearest dictionary words for unrecognised first words")),
)

var listToolDef = mcp.NewTool("run_list",
	mcp.WithDescription("List recorded decode runs, newest first."),
	mcp.WithString("signal_hash", mcp.Description("Only runs over the signal with this fingerprint")),
	mcp.WithBoolean("matched_only", mcp.Description("Only runs that found a match")),
	mcp.WithNumber("limit", mcp.Description("Maximum runs to return (default 20, max 100)")),
	mcp.WithNumber("offset", mcp.Description("Runs to skip")),
)

var fetchToolDef = mcp.NewTool("run_fetch",
	mcp.WithDescription("Fetch one recorded run including its substitution table and decoded text."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Run ID")),
)

var deleteToolDef = mcp.NewTool("run_delete",
	mcp.WithDescription("Permanently delete a recorded run."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Run ID")),
)

var exportToolDef = mcp.NewTool("run_export",
	mcp.WithDescription("Write a recorded run as a Markdown, HTML or JSON report. Files must go directly in ~/.sigdecode/exports or a configured allowed path."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Run ID")),
	mcp.WithString("format", mcp.Description("md, html or json (default md)")),
	mcp.WithString("path", mcp.Description("Destination file; extension must match the format (default: ~/.sigdecode/exports/<signal>-<id>.<ext>)")),
)
