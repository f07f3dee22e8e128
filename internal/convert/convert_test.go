package convert

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"fastymd/internal/batch"
	"fastymd/internal/civil"
	"fastymd/internal/dateparser"
	"fastymd/internal/scanner"
	"fastymd/internal/watcher"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testOptions(outDir string) Options {
	return Options{
		OutputDirectory: outDir,
		OutputSuffix:    ".days",
		Scan: scanner.ScanOptions{
			SymlinkPolicy: scanner.SymlinkPolicySkip,
			Extensions:    []string{".txt"},
			ExcludeSuffix: ".days",
		},
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestReadLines(t *testing.T) {
	texts, err := ReadLines(strings.NewReader("2024-01-05\nNA\n\n  NA  \n1970-01-01"))
	require.NoError(t, err)
	assert.Equal(t, []batch.Text{
		batch.Str("2024-01-05"),
		{},
		batch.Str(""),
		{},
		batch.Str("1970-01-01"),
	}, texts)
}

func TestConvertReader(t *testing.T) {
	in := "2024-02-29\n1970/1/1\nNA\n2023-02-29\n2024-01-05 trailing\n"
	var buf bytes.Buffer

	out, err := ConvertReader(context.Background(), strings.NewReader(in), &buf, false, batch.Options{})
	require.NoError(t, err)

	assert.Equal(t, "19782\n0\nNA\nNA\n19727\n", buf.String())
	require.NotNil(t, out.Warning)
	assert.Equal(t, batch.InvalidString, out.Warning.Kind)
	assert.Equal(t, 1, out.Warning.Count)
}

func TestConvertReader_Strict(t *testing.T) {
	var buf bytes.Buffer
	out, err := ConvertReader(context.Background(), strings.NewReader("2024-01-05 trailing\n2024-01-05\n"), &buf, true, batch.Options{})
	require.NoError(t, err)

	assert.Equal(t, "NA\n19727\n", buf.String())
	require.NotNil(t, out.Warning)
	assert.Equal(t, 1, out.Warning.Count)
}

func TestConvertReader_FatalYearWritesNothing(t *testing.T) {
	var buf bytes.Buffer
	_, err := ConvertReader(context.Background(), strings.NewReader("2024-01-05\n12345-01-01\n"), &buf, false, batch.Options{})

	var rangeErr *dateparser.YearRangeError
	require.True(t, errors.As(err, &rangeErr))
	assert.Equal(t, 1, rangeErr.Index)
	assert.Equal(t, 12345, rangeErr.Year)
	assert.Empty(t, buf.String())
}

func TestConvertFile(t *testing.T) {
	inDir := t.TempDir()
	outDir := filepath.Join(t.TempDir(), "nested", "out")
	src := filepath.Join(inDir, "dates.txt")
	writeFile(t, src, "2024-02-29\nNA\nnonsense\n")

	result := ConvertFile(context.Background(), src, testOptions(outDir))
	require.NoError(t, result.Error)
	assert.True(t, result.Success())
	assert.Equal(t, filepath.Join(outDir, "dates.txt.days"), result.OutputPath)
	assert.Equal(t, 3, result.Lines)
	assert.Equal(t, 1, result.Invalid)
	assert.Equal(t, 1, result.Missing)
	require.NotNil(t, result.Warning)

	data, err := os.ReadFile(result.OutputPath)
	require.NoError(t, err)
	assert.Equal(t, "19782\nNA\nNA\n", string(data))

	entries, err := os.ReadDir(outDir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary files left behind")
}

func TestConvertFile_FatalYearLeavesNoOutput(t *testing.T) {
	inDir := t.TempDir()
	outDir := t.TempDir()
	src := filepath.Join(inDir, "bad.txt")
	writeFile(t, src, "99999-01-01\n")

	result := ConvertFile(context.Background(), src, testOptions(outDir))
	require.Error(t, result.Error)
	assert.False(t, result.Success())

	var rangeErr *dateparser.YearRangeError
	assert.True(t, errors.As(result.Error, &rangeErr))
	assert.NoFileExists(t, result.OutputPath)
}

func TestConvertFile_MissingSource(t *testing.T) {
	result := ConvertFile(context.Background(), filepath.Join(t.TempDir(), "gone.txt"), testOptions(t.TempDir()))
	require.Error(t, result.Error)
	assert.True(t, errors.Is(result.Error, os.ErrNotExist))
}

func TestHandler(t *testing.T) {
	inDir := t.TempDir()
	outDir := t.TempDir()
	handler := Handler(testOptions(outDir))
	ctx := context.Background()

	clean := filepath.Join(inDir, "clean.txt")
	writeFile(t, clean, "2024-01-05\n")
	outcome, err := handler(ctx, clean)
	require.NoError(t, err)
	assert.Equal(t, watcher.Converted, outcome)

	warned := filepath.Join(inDir, "warned.txt")
	writeFile(t, warned, "2024-13-01\n")
	outcome, err = handler(ctx, warned)
	require.NoError(t, err)
	assert.Equal(t, watcher.ConvertedWithWarnings, outcome)

	other := filepath.Join(inDir, "image.png")
	writeFile(t, other, "2024-01-05\n")
	outcome, err = handler(ctx, other)
	require.NoError(t, err)
	assert.Equal(t, watcher.Skipped, outcome)

	ownOutput := filepath.Join(inDir, "clean.txt.days")
	writeFile(t, ownOutput, "19727\n")
	outcome, err = handler(ctx, ownOutput)
	require.NoError(t, err)
	assert.Equal(t, watcher.Skipped, outcome)

	fatal := filepath.Join(inDir, "fatal.txt")
	writeFile(t, fatal, "-10000-01-01\n")
	_, err = handler(ctx, fatal)
	assert.Error(t, err)
}

// Every valid date written to a file comes back as its day-count, one per
// line, whatever the worker count.
func TestConvertReader_DayCountsMatchCivil(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	genDate := gen.IntRange(-719528, 2932896).Map(func(z int) civil.Date {
		return civil.CivilFromDays(z)
	})

	properties.Property("converted lines equal DaysFromCivil", prop.ForAll(
		func(dates []civil.Date, workers int) bool {
			var in, want strings.Builder
			for _, d := range dates {
				fmt.Fprintf(&in, "%s\n", d)
				fmt.Fprintf(&want, "%d\n", civil.DaysFromCivil(d.Year, d.Month, d.Day))
			}

			var buf bytes.Buffer
			out, err := ConvertReader(context.Background(), strings.NewReader(in.String()), &buf, true,
				batch.Options{Workers: workers, ChunkSize: 3})
			if err != nil || out.Warning != nil {
				return false
			}
			return buf.String() == want.String()
		},
		gen.SliceOf(genDate),
		gen.IntRange(1, 8),
	))

	properties.TestingRun(t)
}
