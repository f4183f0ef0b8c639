// Command bsacore-trace views and analyzes bsacore-test command traces.
//
// Trace files are written by bsacore-test with the -trace flag. Each one
// holds the caget/caput invocations, verification outcomes and slot state
// changes of one or more runs.
//
// Usage:
//
//	bsacore-trace <command> [flags] <trace.cbor>
//
// Commands:
//
//	view     View trace file in human-readable format
//	export   Export trace file to JSONL or CSV format
//	filter   Filter trace file and write to new file
//	stats    Show statistics about the trace file
//
// Examples:
//
//	# View all events
//	bsacore-trace view run.cbor
//
//	# View only the writes of one test
//	bsacore-trace view -test TC-BSA-001 -op put run.cbor
//
//	# Export to CSV
//	bsacore-trace export -format csv -o run.csv run.cbor
//
//	# Keep only the history reads
//	bsacore-trace filter -pv PULSEIDHST -o hist.cbor run.cbor
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/hmbui/bsacore-test/cmd/bsacore-trace/commands"
	"github.com/hmbui/bsacore-test/pkg/version"
)

const usage = `bsacore-trace - BsaCore Test Trace Analyzer

Usage:
  bsacore-trace <command> [flags] <trace.cbor>

Commands:
  view     View trace file in human-readable format
  export   Export trace file to JSONL or CSV format
  filter   Filter trace file and write to new file
  stats    Show statistics about the trace file
  version  Print the version

Use "bsacore-trace <command> -help" for more information about a command.
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		fmt.Fprint(stderr, usage)
		return 1
	}

	cmd, rest := args[0], args[1:]
	var err error
	switch cmd {
	case "view":
		err = runView(rest, stdout, stderr)
	case "export":
		err = runExport(rest, stderr)
	case "filter":
		err = runFilter(rest, stdout, stderr)
	case "stats":
		err = runStats(rest, stdout, stderr)
	case "version", "-version":
		fmt.Fprintln(stdout, version.String("bsacore-trace"))
	case "-h", "-help", "--help", "help":
		fmt.Fprint(stdout, usage)
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n", cmd)
		fmt.Fprint(stderr, usage)
		return 1
	}

	if err == flag.ErrHelp {
		return 0
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// newFlagSet returns a flag set whose usage starts with synopsis.
func newFlagSet(name, synopsis string, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprint(stderr, synopsis)
		fmt.Fprintln(stderr, "\nFlags:")
		fs.PrintDefaults()
	}
	return fs
}

func addFilterFlags(fs *flag.FlagSet, opts *commands.FilterOptions) {
	fs.StringVar(&opts.RunID, "run", "", "Filter by run ID")
	fs.StringVar(&opts.TestID, "test", "", "Filter by test case ID")
	fs.StringVar(&opts.Kind, "kind", "", "Filter by kind (header, command, verify, state, error)")
	fs.StringVar(&opts.Operation, "op", "", "Filter commands by operation (get, put)")
	fs.StringVar(&opts.PV, "pv", "", "Filter commands whose PV name contains this text")
	fs.StringVar(&opts.TimeStart, "time-start", "", "Filter by start time (RFC3339)")
	fs.StringVar(&opts.TimeEnd, "time-end", "", "Filter by end time (RFC3339)")
}

// tracePath returns the single positional argument.
func tracePath(fs *flag.FlagSet) (string, error) {
	if fs.NArg() < 1 {
		fs.Usage()
		return "", fmt.Errorf("trace file path required")
	}
	return fs.Arg(0), nil
}

func runView(args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("view", `bsacore-trace view - View trace file in human-readable format

Usage:
  bsacore-trace view [flags] <trace.cbor>
`, stderr)
	var opts commands.FilterOptions
	addFilterFlags(fs, &opts)

	if err := fs.Parse(args); err != nil {
		return err
	}
	path, err := tracePath(fs)
	if err != nil {
		return err
	}
	return commands.RunView(path, opts, stdout)
}

func runExport(args []string, stderr io.Writer) error {
	fs := newFlagSet("export", `bsacore-trace export - Export trace file to JSONL or CSV format

Usage:
  bsacore-trace export [flags] <trace.cbor>
`, stderr)
	var opts commands.FilterOptions
	addFilterFlags(fs, &opts)
	format := fs.String("format", "jsonl", "Output format (jsonl, csv)")
	output := fs.String("o", "", "Output file (default: stdout)")

	if err := fs.Parse(args); err != nil {
		return err
	}
	path, err := tracePath(fs)
	if err != nil {
		return err
	}
	return commands.RunExport(path, *format, *output, opts)
}

func runFilter(args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("filter", `bsacore-trace filter - Filter trace file and write to new file

Usage:
  bsacore-trace filter [flags] -o <out.cbor> <trace.cbor>
`, stderr)
	var opts commands.FilterOptions
	addFilterFlags(fs, &opts)
	output := fs.String("o", "", "Output file (required)")

	if err := fs.Parse(args); err != nil {
		return err
	}
	path, err := tracePath(fs)
	if err != nil {
		return err
	}
	if *output == "" {
		fs.Usage()
		return fmt.Errorf("output file (-o) required")
	}
	return commands.RunFilter(path, *output, opts, stdout)
}

func runStats(args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("stats", `bsacore-trace stats - Show statistics about the trace file

Usage:
  bsacore-trace stats <trace.cbor>
`, stderr)

	if err := fs.Parse(args); err != nil {
		return err
	}
	path, err := tracePath(fs)
	if err != nil {
		return err
	}
	return commands.RunStats(path, stdout)
}
