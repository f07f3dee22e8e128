package civil

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name             string
		year, month, day Field
		want             Status
	}{
		{"valid", Some(2024), Some(1), Some(5), OK},
		{"leap day in leap year", Some(2024), Some(2), Some(29), OK},
		{"leap day in common year", Some(2023), Some(2), Some(29), Invalid},
		{"february 30", Some(2024), Some(2), Some(30), Invalid},
		{"april 31", Some(2023), Some(4), Some(31), Invalid},
		{"month zero", Some(2023), Some(0), Some(1), Invalid},
		{"month thirteen", Some(2023), Some(13), Some(1), Invalid},
		{"day zero", Some(2023), Some(1), Some(0), Invalid},
		{"negative day", Some(2023), Some(1), Some(-1), Invalid},
		{"negative year", Some(-4), Some(2), Some(29), OK},
		{"missing year", None, Some(1), Some(1), Missing},
		{"missing month", Some(2023), None, Some(1), Missing},
		{"missing day", Some(2023), Some(1), None, Missing},
		{"missing beats invalid", Some(2023), Some(13), None, Missing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Validate(tt.year, tt.month, tt.day); got != tt.want {
				t.Errorf("Validate(%v, %v, %v) = %v, want %v", tt.year, tt.month, tt.day, got, tt.want)
			}
		})
	}
}

func TestFromYMD(t *testing.T) {
	if got := FromYMD(Some(1970), Some(1), Some(1)); got != Days(0) {
		t.Errorf("FromYMD(1970, 1, 1) = %+v, want 0", got)
	}
	got := FromYMD(Some(2023), Some(2), Some(29))
	if got.Valid() || !got.Warn() {
		t.Errorf("FromYMD(2023, 2, 29) = %+v, want invalid", got)
	}
	got = FromYMD(None, Some(2), Some(1))
	if got.Valid() || got.Warn() {
		t.Errorf("FromYMD(NA, 2, 1) = %+v, want silent missing", got)
	}
	if got.String() != "NA" {
		t.Errorf("missing result renders as %q, want NA", got.String())
	}
}

func TestValidate_Property(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 500

	properties := gopter.NewProperties(parameters)

	properties.Property("a triple is valid exactly when it round-trips", prop.ForAll(
		func(y, m, d int) bool {
			valid := Validate(Some(y), Some(m), Some(d)) == OK
			roundTrips := CivilFromDays(DaysFromCivil(y, m, d)) == Date{y, m, d}
			return valid == roundTrips
		},
		gen.IntRange(MinYear, MaxYear),
		gen.IntRange(1, 12),
		gen.IntRange(-1, 32),
	))

	properties.TestingRun(t)
}

func TestInRange(t *testing.T) {
	for _, y := range []int{MinYear, 0, MaxYear} {
		if !InRange(y) {
			t.Errorf("InRange(%d) = false, want true", y)
		}
	}
	for _, y := range []int{MinYear - 1, MaxYear + 1} {
		if InRange(y) {
			t.Errorf("InRange(%d) = true, want false", y)
		}
	}
}
