// Package convert runs date-text files through the batch parser and writes
// one epoch day-count per line.
package convert

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"fastymd/internal/batch"
	"fastymd/internal/scanner"
	"fastymd/internal/watcher"
)

// MissingToken is the line content read as a missing value and written for
// every element without a day-count.
const MissingToken = "NA"

// maxLineSize bounds a single input line.
const maxLineSize = 1 << 20

// Options configures how files are converted.
type Options struct {
	Strict          bool
	Batch           batch.Options
	OutputDirectory string
	OutputSuffix    string
	Scan            scanner.ScanOptions
}

// FileResult represents the outcome of converting a single file.
type FileResult struct {
	SourcePath string
	OutputPath string
	Lines      int
	Invalid    int
	Missing    int
	Warning    *batch.Warning
	Error      error
}

// Success reports whether the file was converted and written.
func (r FileResult) Success() bool {
	return r.Error == nil
}

// ReadLines reads r as one element per line. A line holding only
// MissingToken is a missing element.
func ReadLines(r io.Reader) ([]batch.Text, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLineSize)

	var texts []batch.Text
	for sc.Scan() {
		line := sc.Text()
		if strings.TrimSpace(line) == MissingToken {
			texts = append(texts, batch.Text{})
			continue
		}
		texts = append(texts, batch.Str(line))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	return texts, nil
}

// WriteResults writes one line per result: the day-count or MissingToken.
func WriteResults(w io.Writer, out *batch.Output) error {
	bw := bufio.NewWriter(w)
	for _, r := range out.Results {
		if r.Valid() {
			fmt.Fprintf(bw, "%d\n", r.Days)
		} else {
			bw.WriteString(MissingToken + "\n")
		}
	}
	return bw.Flush()
}

// ConvertReader parses every line of r and writes the day-counts to w.
// Nothing is written when the batch fails.
func ConvertReader(ctx context.Context, r io.Reader, w io.Writer, strict bool, opts batch.Options) (*batch.Output, error) {
	texts, err := ReadLines(r)
	if err != nil {
		return nil, err
	}
	out, err := batch.ParseStrings(ctx, texts, strict, opts)
	if err != nil {
		return nil, err
	}
	if err := WriteResults(w, out); err != nil {
		return nil, fmt.Errorf("failed to write output: %w", err)
	}
	return out, nil
}

// OutputPath returns where the conversion of source is written.
func (o Options) OutputPath(source string) string {
	return filepath.Join(o.OutputDirectory, filepath.Base(source)+o.OutputSuffix)
}

// ConvertFile converts the file at path into Options.OutputPath(path).
// A batch failure leaves no output file behind.
func ConvertFile(ctx context.Context, path string, opts Options) FileResult {
	result := FileResult{SourcePath: path, OutputPath: opts.OutputPath(path)}

	f, err := os.Open(path)
	if err != nil {
		result.Error = fmt.Errorf("failed to open %s: %w", path, err)
		return result
	}
	defer f.Close()

	var buf bytes.Buffer
	out, err := ConvertReader(ctx, f, &buf, opts.Strict, opts.Batch)
	if err != nil {
		result.Error = fmt.Errorf("%s: %w", path, err)
		return result
	}

	result.Lines = len(out.Results)
	result.Invalid = out.Invalid()
	result.Warning = out.Warning
	for _, r := range out.Results {
		if !r.Valid() && !r.Warn() {
			result.Missing++
		}
	}

	if err := os.MkdirAll(opts.OutputDirectory, 0755); err != nil {
		result.Error = fmt.Errorf("failed to create output directory: %w", err)
		return result
	}
	if err := writeFileAtomic(result.OutputPath, buf.Bytes()); err != nil {
		result.Error = err
	}
	return result
}

// writeFileAtomic writes data to a temporary file next to path and renames
// it into place, so watchers of the output directory never see a partial file.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write output file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}

// Handler adapts ConvertFile to the watcher, skipping files the scan
// options reject.
func Handler(opts Options) watcher.FileHandler {
	return func(ctx context.Context, path string) (watcher.Outcome, error) {
		if !opts.Scan.Accepts(filepath.Base(path)) {
			return watcher.Skipped, nil
		}
		result := ConvertFile(ctx, path, opts)
		if result.Error != nil {
			if errors.Is(result.Error, os.ErrNotExist) {
				return watcher.Skipped, nil
			}
			return watcher.Skipped, result.Error
		}
		if result.Warning != nil {
			return watcher.ConvertedWithWarnings, nil
		}
		return watcher.Converted, nil
	}
}
