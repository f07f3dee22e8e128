// Package batch applies the calendar conversions to whole columns of values.
//
// Each element is converted independently and owns its output slot, so the
// work is split into chunks processed concurrently. Failures come in two
// tiers: a year outside [civil.MinYear, civil.MaxYear] aborts the call with
// a *dateparser.YearRangeError, while an invalid element only yields a
// civil.Invalid result and contributes to a single aggregate Warning.
package batch

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"fastymd/internal/civil"
	"fastymd/internal/dateparser"
)

// DefaultChunkSize is the number of elements a worker converts at a time.
const DefaultChunkSize = 4096

// ErrLengthMismatch is returned when parallel input columns differ in length.
var ErrLengthMismatch = errors.New("year, month and day must have the same length")

// Options configures batch execution.
type Options struct {
	Workers   int // Maximum concurrent workers (0 = GOMAXPROCS)
	ChunkSize int // Elements per work unit (0 = DefaultChunkSize)
}

func (o Options) workers() int {
	if o.Workers > 0 {
		return o.Workers
	}
	return runtime.GOMAXPROCS(0)
}

func (o Options) chunkSize() int {
	if o.ChunkSize > 0 {
		return o.ChunkSize
	}
	return DefaultChunkSize
}

// WarningKind identifies which class of soft failure a Warning describes.
type WarningKind string

const (
	InvalidCombination WarningKind = "INVALID_COMBINATION"
	InvalidString      WarningKind = "INVALID_STRING"
)

// Warning is the single aggregate warning for a batch in which at least one
// element failed validation or parsing.
type Warning struct {
	Kind  WarningKind
	Count int // Number of invalid elements
}

func (w *Warning) String() string {
	switch w.Kind {
	case InvalidCombination:
		return "NAs introduced due to invalid month and/or day combinations."
	case InvalidString:
		return "NAs introduced due to invalid date strings."
	default:
		return fmt.Sprintf("NAs introduced (%d invalid values).", w.Count)
	}
}

// Output holds the per-element results of a conversion.
type Output struct {
	Results []civil.Result
	Warning *Warning // nil when no element was invalid
}

// Fields returns the results as nullable day-counts.
func (o *Output) Fields() []civil.Field {
	fields := make([]civil.Field, len(o.Results))
	for i, r := range o.Results {
		fields[i] = r.Field()
	}
	return fields
}

// Invalid returns the number of elements that failed validation or parsing.
func (o *Output) Invalid() int {
	if o.Warning == nil {
		return 0
	}
	return o.Warning.Count
}

// Text is a nullable string element.
type Text struct {
	Value string
	Valid bool
}

// Str returns a present Text holding s.
func Str(s string) Text {
	return Text{Value: s, Valid: true}
}

// FromYMD converts parallel year, month and day columns to day-counts.
//
// A present year outside [civil.MinYear, civil.MaxYear] fails the whole call
// with a *dateparser.YearRangeError for the first such element. Missing
// fields produce civil.Missing results silently; invalid month/day
// combinations produce civil.Invalid results and an InvalidCombination
// warning.
func FromYMD(ctx context.Context, years, months, days []civil.Field, opts Options) (*Output, error) {
	if len(years) != len(months) || len(years) != len(days) {
		return nil, fmt.Errorf("%w: got %d, %d and %d", ErrLengthMismatch, len(years), len(months), len(days))
	}
	for i, y := range years {
		if y.Valid && !civil.InRange(y.Value) {
			return nil, &dateparser.YearRangeError{Index: i, Year: y.Value}
		}
	}

	results := make([]civil.Result, len(years))
	err := run(ctx, results, opts, func(i int) (civil.Result, error) {
		return civil.FromYMD(years[i], months[i], days[i]), nil
	})
	if err != nil {
		return nil, err
	}
	return newOutput(results, InvalidCombination), nil
}

// ParseStrings parses each text with dateparser.Parse.
//
// A year that trips the parser's range check fails the whole call with a
// *dateparser.YearRangeError carrying the lowest offending index. Missing
// texts produce civil.Missing results silently; unparseable texts produce
// civil.Invalid results and an InvalidString warning.
func ParseStrings(ctx context.Context, texts []Text, strict bool, opts Options) (*Output, error) {
	results := make([]civil.Result, len(texts))
	err := run(ctx, results, opts, func(i int) (civil.Result, error) {
		if !texts[i].Valid {
			return civil.Result{Status: civil.Missing}, nil
		}
		r, err := dateparser.Parse(texts[i].Value, strict)
		if err != nil {
			var rangeErr *dateparser.YearRangeError
			if errors.As(err, &rangeErr) {
				rangeErr.Index = i
			}
			return civil.Result{}, err
		}
		return r, nil
	})
	if err != nil {
		return nil, err
	}
	return newOutput(results, InvalidString), nil
}

func newOutput(results []civil.Result, kind WarningKind) *Output {
	out := &Output{Results: results}
	invalid := 0
	for _, r := range results {
		if r.Warn() {
			invalid++
		}
	}
	if invalid > 0 {
		out.Warning = &Warning{Kind: kind, Count: invalid}
	}
	return out
}

// run fills out by calling convert for every index, one chunk per task.
// A convert error aborts the run; when several chunks fail, the error of
// the lowest chunk wins so the reported element does not depend on
// scheduling.
func run(ctx context.Context, out []civil.Result, opts Options, convert func(i int) (civil.Result, error)) error {
	n := len(out)
	size := opts.chunkSize()
	chunks := (n + size - 1) / size
	failed := make([]error, chunks)

	// Lowest chunk that has failed so far. Chunks above it can stop early.
	var lowest atomic.Int64
	lowest.Store(int64(chunks))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.workers())
	for c := 0; c < chunks; c++ {
		c := c
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			lo, hi := c*size, min((c+1)*size, n)
			for i := lo; i < hi; i++ {
				if lowest.Load() < int64(c) {
					return nil
				}
				r, err := convert(i)
				if err != nil {
					failed[c] = err
					lowerTo(&lowest, int64(c))
					return nil
				}
				out[i] = r
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	for _, err := range failed {
		if err != nil {
			return err
		}
	}
	return nil
}

func lowerTo(v *atomic.Int64, x int64) {
	for {
		cur := v.Load()
		if x >= cur || v.CompareAndSwap(cur, x) {
			return
		}
	}
}
