package batch

import (
	"context"
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fastymd/internal/civil"
	"fastymd/internal/dateparser"
)

func fields(vals ...int) []civil.Field {
	out := make([]civil.Field, len(vals))
	for i, v := range vals {
		out[i] = civil.Some(v)
	}
	return out
}

func texts(vals ...string) []Text {
	out := make([]Text, len(vals))
	for i, v := range vals {
		out[i] = Str(v)
	}
	return out
}

func TestFromYMD(t *testing.T) {
	years := []civil.Field{civil.Some(1970), civil.Some(2024), civil.Some(2023), civil.None, civil.Some(2024)}
	months := []civil.Field{civil.Some(1), civil.Some(2), civil.Some(2), civil.Some(1), civil.Some(13)}
	days := []civil.Field{civil.Some(1), civil.Some(29), civil.Some(29), civil.Some(1), civil.Some(1)}

	out, err := FromYMD(context.Background(), years, months, days, Options{})
	require.NoError(t, err)

	assert.Equal(t, []civil.Result{
		civil.Days(0),
		civil.Days(19782),
		{Status: civil.Invalid},
		{Status: civil.Missing},
		{Status: civil.Invalid},
	}, out.Results)
	require.NotNil(t, out.Warning)
	assert.Equal(t, InvalidCombination, out.Warning.Kind)
	assert.Equal(t, 2, out.Warning.Count)
	assert.Equal(t, "NAs introduced due to invalid month and/or day combinations.", out.Warning.String())
}

func TestFromYMD_MissingIsSilent(t *testing.T) {
	out, err := FromYMD(context.Background(),
		[]civil.Field{civil.None, civil.Some(2000)},
		[]civil.Field{civil.Some(1), civil.None},
		[]civil.Field{civil.Some(1), civil.Some(1)},
		Options{})
	require.NoError(t, err)
	assert.Nil(t, out.Warning)
	assert.Equal(t, []civil.Field{civil.None, civil.None}, out.Fields())
	assert.Equal(t, 0, out.Invalid())
}

func TestFromYMD_YearOutOfRangeIsFatal(t *testing.T) {
	years := fields(2000, 2001, -10000, 10000)
	months := fields(1, 13, 1, 1)
	days := fields(1, 1, 1, 1)

	out, err := FromYMD(context.Background(), years, months, days, Options{})
	assert.Nil(t, out)

	var rangeErr *dateparser.YearRangeError
	require.ErrorAs(t, err, &rangeErr)
	assert.Equal(t, 2, rangeErr.Index)
	assert.Equal(t, -10000, rangeErr.Year)
	assert.EqualError(t, err, "years must be in the range [-9999, 9999]. y[2] is -10000.")
}

func TestFromYMD_MissingYearSkipsRangeCheck(t *testing.T) {
	_, err := FromYMD(context.Background(),
		[]civil.Field{{Value: 123456, Valid: false}},
		fields(1), fields(1), Options{})
	require.NoError(t, err)
}

func TestFromYMD_LengthMismatch(t *testing.T) {
	_, err := FromYMD(context.Background(), fields(2000, 2001), fields(1), fields(1, 2), Options{})
	assert.ErrorIs(t, err, ErrLengthMismatch)
}

func TestParseStrings(t *testing.T) {
	in := texts("2024-02-29", "2023-02-29", "  2024/1/5 extra text", "garbage")
	in = append(in, Text{})

	out, err := ParseStrings(context.Background(), in, false, Options{})
	require.NoError(t, err)

	assert.Equal(t, []civil.Result{
		civil.Days(19782),
		{Status: civil.Invalid},
		civil.Days(19727),
		{Status: civil.Invalid},
		{Status: civil.Missing},
	}, out.Results)
	require.NotNil(t, out.Warning)
	assert.Equal(t, InvalidString, out.Warning.Kind)
	assert.Equal(t, 2, out.Warning.Count)
	assert.Equal(t, "NAs introduced due to invalid date strings.", out.Warning.String())
}

func TestParseStrings_Strict(t *testing.T) {
	out, err := ParseStrings(context.Background(), texts("2024-02-29 junk", "2024-02-29  "), true, Options{})
	require.NoError(t, err)
	assert.Equal(t, []civil.Result{{Status: civil.Invalid}, civil.Days(19782)}, out.Results)
	assert.Equal(t, 1, out.Invalid())
}

func TestParseStrings_NoWarningWhenAllValid(t *testing.T) {
	out, err := ParseStrings(context.Background(), texts("1970-01-01", "-1-12-31"), true, Options{})
	require.NoError(t, err)
	assert.Nil(t, out.Warning)
}

func TestParseStrings_YearOutOfRangeNamesLowestIndex(t *testing.T) {
	in := make([]Text, 100)
	for i := range in {
		in[i] = Str("2000-01-01")
	}
	in[97] = Str("20000-01-01")
	in[41] = Str("bad")
	in[42] = Str("-12345-01-01")

	for _, workers := range []int{1, 2, 8} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			out, err := ParseStrings(context.Background(), in, false, Options{Workers: workers, ChunkSize: 7})
			assert.Nil(t, out)

			var rangeErr *dateparser.YearRangeError
			require.ErrorAs(t, err, &rangeErr)
			assert.Equal(t, 42, rangeErr.Index)
			assert.Equal(t, -12345, rangeErr.Year)
		})
	}
}

func TestParseStrings_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ParseStrings(ctx, texts("2000-01-01"), false, Options{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseStrings_Empty(t *testing.T) {
	out, err := ParseStrings(context.Background(), nil, false, Options{})
	require.NoError(t, err)
	assert.Empty(t, out.Results)
	assert.Nil(t, out.Warning)
}

func TestRun_ResultsIndependentOfWorkers(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50

	properties := gopter.NewProperties(parameters)

	properties.Property("chunking and worker count do not change results", prop.ForAll(
		func(raw []string, workers, chunk int) bool {
			in := texts(raw...)
			serial, err1 := ParseStrings(context.Background(), in, false, Options{Workers: 1, ChunkSize: len(in) + 1})
			parallel, err2 := ParseStrings(context.Background(), in, false, Options{Workers: workers, ChunkSize: chunk})
			if err1 != nil || err2 != nil {
				return fmt.Sprint(err1) == fmt.Sprint(err2)
			}
			return assert.ObjectsAreEqual(serial, parallel)
		},
		gen.SliceOf(gen.OneConstOf("2024-02-29", "2023-02-29", "x", "", "1-1-1", "99999", "-4/2/29 z")),
		gen.IntRange(1, 8),
		gen.IntRange(1, 5),
	))

	properties.TestingRun(t)
}
