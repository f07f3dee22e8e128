package batch

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"fastymd/internal/civil"
)

func TestLeapYears(t *testing.T) {
	got := LeapYears([]civil.Field{civil.Some(2000), civil.Some(1900), civil.None, civil.Some(-4)})
	assert.Equal(t, []NullBool{
		{Bool: true, Valid: true},
		{Bool: false, Valid: true},
		{},
		{Bool: true, Valid: true},
	}, got)
}

func TestDecompose(t *testing.T) {
	days := []civil.Field{civil.Some(0), civil.None, civil.Some(19782), civil.Some(-719528)}

	cols := Decompose(days)
	assert.Equal(t, []civil.Field{civil.Some(1970), civil.None, civil.Some(2024), civil.Some(0)}, cols.Year)
	assert.Equal(t, []civil.Field{civil.Some(1), civil.None, civil.Some(2), civil.Some(1)}, cols.Month)
	assert.Equal(t, []civil.Field{civil.Some(1), civil.None, civil.Some(29), civil.Some(1)}, cols.Day)

	assert.Equal(t, cols.Year, Years(days))
	assert.Equal(t, cols.Month, Months(days))
	assert.Equal(t, cols.Day, MonthDays(days))
}
