// fastymd - epoch day-count converter
//
// Usage:
//
//	fastymd parse [--strict] [file]            Convert date lines to day-counts
//	fastymd ymd <year> <month> <day>           Convert one structured date
//	fastymd ymd <YYYY-MM-DD>                   Convert one ISO date
//	fastymd civil [--field=year|month|day] <days>...
//	                                           Convert day-counts back to dates
//	fastymd leap <year>...                     Report leap years
//	fastymd run [--verbose] <config>           Convert every file in the input directories
//	fastymd watch [--verbose] <config>         Convert files as they arrive, until interrupted
//	fastymd init <config> [input-dir]          Write a default configuration
//
// Day-counts are days since 1970-01-01. NA marks a missing value on input
// and output. If no file is given, parse reads from stdin.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"fastymd/internal/batch"
	"fastymd/internal/civil"
	"fastymd/internal/config"
	"fastymd/internal/convert"
	"fastymd/internal/dateparser"
	"fastymd/internal/output"
	"fastymd/internal/watcher"
)

// errFailed means the command already reported its failures and only the
// exit status is left to set.
var errFailed = errors.New("failed")

// app holds the streams a command reads and writes.
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	isTTY  bool
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg := output.DefaultConfig()
	a := &app{stdin: os.Stdin, stdout: os.Stdout, stderr: os.Stderr, isTTY: cfg.IsTTY}

	if err := a.run(context.Background(), os.Args[1], os.Args[2:]); err != nil {
		if !errors.Is(err, errFailed) {
			fmt.Fprintf(os.Stderr, "fastymd: %v\n", err)
		}
		os.Exit(1)
	}
}

func (a *app) run(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "parse":
		return a.cmdParse(ctx, args)
	case "ymd":
		return a.cmdYMD(ctx, args)
	case "civil":
		return a.cmdCivil(args)
	case "leap":
		return a.cmdLeap(args)
	case "run":
		return a.cmdRun(ctx, args)
	case "watch":
		return a.cmdWatch(ctx, args)
	case "init":
		return a.cmdInit(args)
	case "help", "-h", "--help":
		printUsage()
		return nil
	default:
		printUsage()
		return fmt.Errorf("unknown command: %s", cmd)
	}
}

func printUsage() {
	fmt.Fprint(os.Stderr, `fastymd - epoch day-count converter

Usage:
  fastymd parse [--strict] [file]            Convert date lines to day-counts
  fastymd ymd <year> <month> <day>           Convert one structured date
  fastymd ymd <YYYY-MM-DD>                   Convert one ISO date
  fastymd civil [--field=F] <days>...        Convert day-counts back to dates
  fastymd leap <year>...                     Report leap years
  fastymd run [--verbose] <config>           Convert every file in the input directories
  fastymd watch [--verbose] <config>         Convert files as they arrive, until interrupted
  fastymd init <config> [input-dir]          Write a default configuration

Options:
  --strict            Reject text after the day instead of ignoring it
  --field=F           Print only the year, month or day of each day-count
  --verbose           Report every converted file

Years must lie in [-9999, 9999]. Separators between fields may be any
non-digit text; "2024-02-29", "2024/2/29" and "2024 2 29" are the same date.
NA marks a missing value. If no file is given, parse reads from stdin.

Examples:
  printf '2024-02-29\n1970-01-01\nNA\n' | fastymd parse
  # Output: 19782, 0, NA (one per line)

  fastymd civil 19782 -719528
  # Output: 19782	2024-02-29
  #         -719528	0000-01-01
`)
}

func (a *app) output(verbose bool) *output.Output {
	return output.New(output.Config{
		Verbose:   verbose,
		Writer:    a.stdout,
		ErrWriter: a.stderr,
		IsTTY:     a.isTTY,
	})
}

// splitFlags separates --name and --name=value options from positional
// arguments. A bare --name is stored as "true".
func splitFlags(args []string, known ...string) (map[string]string, []string, error) {
	flags := make(map[string]string)
	var rest []string
	for _, arg := range args {
		if !strings.HasPrefix(arg, "--") {
			rest = append(rest, arg)
			continue
		}
		name, value, hasValue := strings.Cut(strings.TrimPrefix(arg, "--"), "=")
		ok := false
		for _, k := range known {
			ok = ok || k == name
		}
		if !ok {
			return nil, nil, fmt.Errorf("unknown option: %s", arg)
		}
		if !hasValue {
			value = "true"
		}
		flags[name] = value
	}
	return flags, rest, nil
}

// parseField reads an integer argument, with NA as missing.
func parseField(arg string) (civil.Field, error) {
	if arg == convert.MissingToken {
		return civil.None, nil
	}
	n, err := strconv.Atoi(arg)
	if err != nil {
		return civil.None, fmt.Errorf("not an integer: %q", arg)
	}
	return civil.Some(n), nil
}

func parseFields(args []string) ([]civil.Field, error) {
	fields := make([]civil.Field, len(args))
	for i, arg := range args {
		f, err := parseField(arg)
		if err != nil {
			return nil, err
		}
		fields[i] = f
	}
	return fields, nil
}

func warnOnce(out *output.Output, w *batch.Warning) {
	if w != nil {
		out.Warning("%s", w)
	}
}

func (a *app) cmdParse(ctx context.Context, args []string) error {
	flags, rest, err := splitFlags(args, "strict")
	if err != nil {
		return err
	}
	if len(rest) > 1 {
		return errors.New("parse takes at most one file")
	}

	input := a.stdin
	if len(rest) == 1 && rest[0] != "-" {
		f, err := os.Open(rest[0])
		if err != nil {
			return fmt.Errorf("open file: %w", err)
		}
		defer f.Close()
		input = f
	}

	result, err := convert.ConvertReader(ctx, input, a.stdout, flags["strict"] == "true", batch.Options{})
	if err != nil {
		return err
	}
	warnOnce(a.output(false), result.Warning)
	return nil
}

// ymdFields reads the structured or ISO form of the ymd arguments. An ISO
// date with an impossible month or day still yields its fields, so both
// forms reject it the same way.
func ymdFields(args []string) (years, months, days []civil.Field, err error) {
	switch len(args) {
	case 1:
		y, m, d, err := dateparser.SplitIsoDate(args[0])
		if err != nil {
			return nil, nil, nil, err
		}
		return []civil.Field{civil.Some(y)}, []civil.Field{civil.Some(m)}, []civil.Field{civil.Some(d)}, nil
	case 3:
		fields, err := parseFields(args)
		if err != nil {
			return nil, nil, nil, err
		}
		return fields[0:1], fields[1:2], fields[2:3], nil
	default:
		return nil, nil, nil, errors.New("ymd takes <year> <month> <day> or <YYYY-MM-DD>")
	}
}

func (a *app) cmdYMD(ctx context.Context, args []string) error {
	years, months, days, err := ymdFields(args)
	if err != nil {
		return err
	}
	result, err := batch.FromYMD(ctx, years, months, days, batch.Options{})
	if err != nil {
		return err
	}

	out := a.output(false)
	out.Result("%s", result.Results[0])
	warnOnce(out, result.Warning)
	return nil
}

func (a *app) cmdCivil(args []string) error {
	flags, rest, err := splitFlags(args, "field")
	if err != nil {
		return err
	}
	if len(rest) == 0 {
		return errors.New("civil takes at least one day-count")
	}
	days, err := parseFields(rest)
	if err != nil {
		return err
	}
	out := a.output(false)

	field, ok := flags["field"]
	if ok {
		var values []civil.Field
		switch field {
		case "year":
			values = batch.Years(days)
		case "month":
			values = batch.Months(days)
		case "day":
			values = batch.MonthDays(days)
		default:
			return fmt.Errorf("--field must be year, month or day: %q", field)
		}
		for i, z := range days {
			out.Result("%s\t%s", z, values[i])
		}
		return nil
	}

	cols := batch.Decompose(days)
	for i, z := range days {
		if !z.Valid {
			out.Result("%s\t%s", z, z)
			continue
		}
		d := civil.Date{Year: cols.Year[i].Value, Month: cols.Month[i].Value, Day: cols.Day[i].Value}
		out.Result("%d\t%s", z.Value, d)
	}
	return nil
}

func (a *app) cmdLeap(args []string) error {
	if len(args) == 0 {
		return errors.New("leap takes at least one year")
	}
	years, err := parseFields(args)
	if err != nil {
		return err
	}
	out := a.output(false)
	for i, leap := range batch.LeapYears(years) {
		if !leap.Valid {
			out.Result("%s\t%s", years[i], convert.MissingToken)
			continue
		}
		out.Result("%d\t%t", years[i].Value, leap.Bool)
	}
	return nil
}

func (a *app) loadConfig(path string) (*config.Configuration, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	result := config.ValidateConfig(cfg)
	for _, w := range result.Warnings {
		fmt.Fprintf(a.stderr, "Warning: %s: %s\n", w.Field, w.Message)
	}
	if !result.Valid {
		for _, e := range result.Errors {
			fmt.Fprintf(a.stderr, "Error: %s: %s\n", e.Field, e.Message)
		}
		return nil, errFailed
	}
	return cfg, nil
}

func (a *app) cmdRun(ctx context.Context, args []string) error {
	flags, rest, err := splitFlags(args, "verbose")
	if err != nil {
		return err
	}
	if len(rest) != 1 {
		return errors.New("run takes exactly one configuration file")
	}
	cfg, err := a.loadConfig(rest[0])
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := a.output(flags["verbose"] == "true")
	summary, err := convert.Run(ctx, cfg, out)
	if err != nil {
		return err
	}

	for _, scanErr := range summary.ScanErrors {
		out.Warning("%v", scanErr)
	}
	for _, result := range summary.Results {
		switch {
		case result.Error != nil:
			var rangeErr *dateparser.YearRangeError
			if errors.As(result.Error, &rangeErr) {
				out.Error("%s: line %d: year %d is outside [%d, %d]", result.SourcePath, rangeErr.Index+1, rangeErr.Year, civil.MinYear, civil.MaxYear)
			} else {
				out.Error("%v", result.Error)
			}
		case result.Warning != nil:
			out.Warning("%s: %s", result.SourcePath, result.Warning)
		}
	}

	out.Result("%s", summary.PrintSummary())
	if summary.HasErrors() {
		return errFailed
	}
	return nil
}

func (a *app) cmdWatch(ctx context.Context, args []string) error {
	flags, rest, err := splitFlags(args, "verbose")
	if err != nil {
		return err
	}
	if len(rest) != 1 {
		return errors.New("watch takes exactly one configuration file")
	}
	cfg, err := a.loadConfig(rest[0])
	if err != nil {
		return err
	}

	level := slog.LevelInfo
	if flags["verbose"] == "true" {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(a.stderr, &slog.HandlerOptions{Level: level}))

	opts := convert.OptionsFromConfig(cfg)
	handler := convert.Handler(opts)
	logged := func(ctx context.Context, path string) (watcher.Outcome, error) {
		outcome, err := handler(ctx, path)
		if err != nil {
			return outcome, err
		}
		switch outcome {
		case watcher.Converted:
			logger.Info("converted", "path", path, "output", opts.OutputPath(path))
		case watcher.ConvertedWithWarnings:
			logger.Warn("converted with invalid dates", "path", path, "output", opts.OutputPath(path))
		default:
			logger.Debug("skipped", "path", path)
		}
		return outcome, err
	}

	w := watcher.New(cfg.Watch, logged, logger)
	if err := w.Start(cfg.InputDirectories); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	summary := w.Stop()
	fmt.Fprintf(a.stdout, "Converted %d files (%d with warnings), %d failed, %d skipped in %s\n",
		summary.FilesConverted+summary.FilesWithWarnings, summary.FilesWithWarnings, summary.FilesFailed, summary.FilesSkipped, summary.Duration.Round(time.Millisecond))
	if summary.FilesFailed > 0 {
		return errFailed
	}
	return nil
}

func (a *app) cmdInit(args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return errors.New("init takes <config> [input-dir]")
	}
	cfg, err := config.LoadOrCreate(args[0])
	if err != nil {
		return err
	}
	if cfg.OutputDirectory == "" {
		cfg.OutputDirectory = "out"
	}
	if len(args) == 2 && !cfg.AddInputDirectory(args[1]) {
		fmt.Fprintf(a.stderr, "input directory already configured: %s\n", args[1])
	}
	if err := config.Save(cfg, args[0]); err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Wrote %s\n", args[0])
	return nil
}
