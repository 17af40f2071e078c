package calendar

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDaysInMonth_YearTotals(t *testing.T) {
	for year := 1583; year <= 4099; year++ {
		total := 0
		for m := time.January; m <= time.December; m++ {
			total += DaysInMonth(year, m)
		}

		want := 365
		if IsLeapYear(year) {
			want = 366
		}
		if total != want {
			t.Fatalf("year %d: days = %d, want %d", year, total, want)
		}
	}
}

func TestIsLeapYear(t *testing.T) {
	tests := []struct {
		year int
		want bool
	}{
		{2024, true},
		{2023, false},
		{1900, false},
		{2000, true},
		{2100, false},
		{2400, true},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, IsLeapYear(tt.year), "IsLeapYear(%d)", tt.year)
	}
}

func TestDaysInMonth_MatchesTimePackage(t *testing.T) {
	for _, year := range []int{1600, 1900, 2000, 2023, 2024, 2100} {
		for m := time.January; m <= time.December; m++ {
			// Day 0 of the next month is the last day of this one.
			want := time.Date(year, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
			assert.Equal(t, want, DaysInMonth(year, m), "%d-%02d", year, int(m))
		}
	}
}

func TestWeekdayOf(t *testing.T) {
	tests := []struct {
		name  string
		year  int
		month time.Month
		day   int
		want  int
	}{
		{"monday reference", 2024, time.January, 1, 0},
		{"thursday", 2024, time.February, 1, 3},
		{"saturday", 2024, time.April, 27, 5},
		{"sunday", 2023, time.January, 1, 6},
		{"leap day", 2024, time.February, 29, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, WeekdayOf(tt.year, tt.month, tt.day))
		})
	}
}

func TestNewDate(t *testing.T) {
	d, err := NewDate(2024, time.February, 29)
	require.NoError(t, err)
	assert.Equal(t, Date{Year: 2024, Month: time.February, Day: 29}, d)

	tests := []struct {
		name  string
		year  int
		month time.Month
		day   int
		want  error
	}{
		{"year zero", 0, time.January, 1, ErrInvalidYear},
		{"year too large", 10000, time.January, 1, ErrInvalidYear},
		{"month zero", 2024, 0, 1, ErrInvalidMonth},
		{"month thirteen", 2024, 13, 1, ErrInvalidMonth},
		{"no leap day", 2023, time.February, 29, ErrInvalidDate},
		{"day zero", 2024, time.March, 0, ErrInvalidDate},
		{"april 31", 2024, time.April, 31, ErrInvalidDate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewDate(tt.year, tt.month, tt.day)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-03-31")
	require.NoError(t, err)
	assert.Equal(t, Date{Year: 2024, Month: time.March, Day: 31}, d)
	assert.Equal(t, "2024-03-31", d.String())

	for _, bad := range []string{"", "2024-3-31", "31-03-2024", "2024-02-30", "0000-01-01", "tomorrow"} {
		_, err := ParseDate(bad)
		assert.Error(t, err, "ParseDate(%q)", bad)
	}
}

func TestDate_AddDays(t *testing.T) {
	tests := []struct {
		from string
		n    int
		want string
	}{
		{"2024-03-31", 39, "2024-05-09"},
		{"2024-02-28", 1, "2024-02-29"},
		{"2023-02-28", 1, "2023-03-01"},
		{"2024-12-31", 1, "2025-01-01"},
		{"2025-01-01", -1, "2024-12-31"},
	}

	for _, tt := range tests {
		from, err := ParseDate(tt.from)
		require.NoError(t, err)
		assert.Equal(t, tt.want, from.AddDays(tt.n).String(), "%s %+d", tt.from, tt.n)
	}
}

func TestDate_Ordering(t *testing.T) {
	a := Date{Year: 2024, Month: time.May, Day: 5}
	b := Date{Year: 2024, Month: time.May, Day: 9}
	c := Date{Year: 2025, Month: time.January, Day: 1}

	assert.True(t, a.Before(b))
	assert.True(t, c.After(b))
	assert.Equal(t, 0, a.Compare(a))
	assert.Equal(t, 4, b.DaysSince(a))
	assert.Equal(t, -4, a.DaysSince(b))
}

func TestDate_JSON(t *testing.T) {
	type wrapper struct {
		When Date `json:"when"`
	}

	data, err := json.Marshal(wrapper{When: Date{Year: 2024, Month: time.December, Day: 26}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"when":"2024-12-26"}`, string(data))

	var w wrapper
	require.NoError(t, json.Unmarshal([]byte(`{"when":"2024-04-27"}`), &w))
	assert.Equal(t, Date{Year: 2024, Month: time.April, Day: 27}, w.When)

	assert.Error(t, json.Unmarshal([]byte(`{"when":"2024-04-31"}`), &w))
}
