package convert

import (
	"context"
	"fmt"
	"time"

	"fastymd/internal/config"
	"fastymd/internal/output"
	"fastymd/internal/scanner"
)

// Summary represents the overall results of a conversion run.
type Summary struct {
	TotalFiles   int
	SuccessCount int
	ErrorCount   int
	WarnedFiles  int
	Lines        int
	Invalid      int
	Missing      int
	Duration     time.Duration
	Results      []FileResult
	ScanErrors   []error
}

// OptionsFromConfig derives conversion options from a loaded configuration.
func OptionsFromConfig(cfg *config.Configuration) Options {
	return Options{
		Strict:          cfg.Strict,
		Batch:           cfg.BatchOptions(),
		OutputDirectory: cfg.OutputDirectory,
		OutputSuffix:    cfg.OutputSuffix,
		Scan: scanner.ScanOptions{
			MaxDepth:      cfg.Depth(),
			SymlinkPolicy: cfg.SymlinkPolicy,
			Extensions:    cfg.Extensions,
			ExcludeSuffix: cfg.OutputSuffix,
		},
	}
}

// Run converts every matching file in the configured input directories.
// Scan failures and per-file failures are collected in the summary; only a
// cancelled context stops the run early.
func Run(ctx context.Context, cfg *config.Configuration, out *output.Output) (*Summary, error) {
	start := time.Now()
	opts := OptionsFromConfig(cfg)

	summary := &Summary{
		Results:    make([]FileResult, 0),
		ScanErrors: make([]error, 0),
	}

	var files []scanner.FileEntry
	for _, dir := range cfg.InputDirectories {
		entries, err := scanner.ScanWithOptions(dir, opts.Scan)
		if err != nil {
			summary.ScanErrors = append(summary.ScanErrors, fmt.Errorf("failed to scan %s: %w", dir, err))
			continue
		}
		files = append(files, entries...)
	}
	summary.TotalFiles = len(files)

	out.StartProgress(len(files))
	defer out.EndProgress()

	for i, file := range files {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		out.UpdateProgress(i+1, "")

		result := ConvertFile(ctx, file.FullPath, opts)
		summary.add(result)

		switch {
		case result.Error != nil:
			out.Verbose("failed %s: %v", file.FullPath, result.Error)
		case result.Warning != nil:
			out.Verbose("converted %s -> %s (%d lines, %d invalid)", file.FullPath, result.OutputPath, result.Lines, result.Invalid)
		default:
			out.Verbose("converted %s -> %s (%d lines)", file.FullPath, result.OutputPath, result.Lines)
		}
	}

	summary.Duration = time.Since(start)
	return summary, nil
}

func (s *Summary) add(r FileResult) {
	s.Results = append(s.Results, r)
	if r.Error != nil {
		s.ErrorCount++
		return
	}
	s.SuccessCount++
	s.Lines += r.Lines
	s.Invalid += r.Invalid
	s.Missing += r.Missing
	if r.Warning != nil {
		s.WarnedFiles++
	}
}

// HasErrors returns true if there were any errors during the run.
func (s *Summary) HasErrors() bool {
	return s.ErrorCount > 0 || len(s.ScanErrors) > 0
}

// PrintSummary returns a formatted summary string.
func (s *Summary) PrintSummary() string {
	return fmt.Sprintf("Converted %d of %d files (%d lines, %d invalid, %d missing), %d errors in %s",
		s.SuccessCount, s.TotalFiles, s.Lines, s.Invalid, s.Missing, s.ErrorCount, s.Duration.Round(time.Millisecond))
}
