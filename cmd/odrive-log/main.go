// Command odrive-log views and analyzes ODrive protocol capture files.
//
// Capture files are written by odrivectl with the -protocol-log flag. Files
// ending in .zst are zstd-compressed.
//
// Usage:
//
//	odrive-log <command> [flags] <file.olog>
//
// Commands:
//
//	view     View capture file in human-readable format
//	export   Export capture file to JSONL or CSV format
//	filter   Filter capture file and write to new file
//	stats    Show statistics about the capture file
//
// Examples:
//
//	# View all events
//	odrive-log view capture.olog
//
//	# View only exchanges with endpoint 7
//	odrive-log view -layer exchange -endpoint 7 capture.olog
//
//	# Export to JSONL
//	odrive-log export -format jsonl capture.olog.zst
//
//	# Show round-trip statistics
//	odrive-log stats capture.olog
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/odrive-host/odrive-go/cmd/odrive-log/commands"
)

const usage = `odrive-log - ODrive Protocol Log Analyzer

Usage:
  odrive-log <command> [flags] <file.olog>

Commands:
  view     View capture file in human-readable format
  export   Export capture file to JSONL or CSV format
  filter   Filter capture file and write to new file
  stats    Show statistics about the capture file

Use "odrive-log <command> -help" for more information about a command.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "view":
		runView(args)
	case "export":
		runExport(args)
	case "filter":
		runFilter(args)
	case "stats":
		runStats(args)
	case "-h", "-help", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
}

func newFlagSet(name, summary string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "odrive-log %s - %s\n\nUsage:\n  odrive-log %s [flags] <file.olog>\n\nFlags:\n", name, summary, name)
		fs.PrintDefaults()
	}
	return fs
}

func filterFlags(fs *flag.FlagSet) *commands.FilterOptions {
	opts := &commands.FilterOptions{}
	fs.StringVar(&opts.SessionID, "session", "", "Filter by session ID")
	fs.StringVar(&opts.Serial, "serial", "", "Filter by device serial number")
	fs.StringVar(&opts.Endpoint, "endpoint", "", "Filter requests by endpoint ID")
	fs.StringVar(&opts.TimeStart, "time-start", "", "Filter by start time (RFC3339)")
	fs.StringVar(&opts.TimeEnd, "time-end", "", "Filter by end time (RFC3339)")
	fs.StringVar(&opts.Layer, "layer", "", "Filter by layer (transport, exchange, session)")
	fs.StringVar(&opts.Direction, "direction", "", "Filter by direction (in, out)")
	fs.StringVar(&opts.Category, "category", "", "Filter by category (message, state, error)")
	return opts
}

func logPath(fs *flag.FlagSet, args []string) string {
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: log file path required")
		fs.Usage()
		os.Exit(1)
	}
	return fs.Arg(0)
}

func fail(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runView(args []string) {
	fs := newFlagSet("view", "View capture file in human-readable format")
	opts := filterFlags(fs)
	path := logPath(fs, args)

	fail(commands.RunView(path, *opts, os.Stdout))
}

func runExport(args []string) {
	fs := newFlagSet("export", "Export capture file to JSONL or CSV format")
	opts := filterFlags(fs)
	format := fs.String("format", "jsonl", "Output format (jsonl, csv)")
	output := fs.String("o", "", "Output file (default: stdout)")
	path := logPath(fs, args)

	fail(commands.RunExport(path, *format, *output, *opts))
}

func runFilter(args []string) {
	fs := newFlagSet("filter", "Filter capture file and write to new file")
	opts := filterFlags(fs)
	output := fs.String("o", "", "Output file (required)")
	path := logPath(fs, args)

	if *output == "" {
		fmt.Fprintln(os.Stderr, "Error: output file (-o) required")
		fs.Usage()
		os.Exit(1)
	}

	fail(commands.RunFilter(path, *output, *opts, os.Stdout))
}

func runStats(args []string) {
	fs := newFlagSet("stats", "Show statistics about the capture file")
	opts := filterFlags(fs)
	path := logPath(fs, args)

	fail(commands.RunStats(path, *opts, os.Stdout))
}
