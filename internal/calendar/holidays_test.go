package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHolidays_2024(t *testing.T) {
	set, err := Holidays(2024)
	require.NoError(t, err)

	want := []string{
		"2024-01-01",
		"2024-03-31",
		"2024-04-27",
		"2024-05-05",
		"2024-05-09",
		"2024-05-19",
		"2024-05-20",
		"2024-12-25",
		"2024-12-26",
	}

	var got []string
	for _, h := range set.List() {
		got = append(got, h.Date.String())
	}
	assert.Equal(t, want, got)
	assert.Equal(t, len(want), set.Len())
	assert.Equal(t, 2024, set.Year())
}

func TestHolidays_Names(t *testing.T) {
	set, err := Holidays(2024)
	require.NoError(t, err)

	name, ok := set.Name(Date{2024, time.April, 27})
	assert.True(t, ok)
	assert.Equal(t, NameKingsDay, name)

	name, ok = set.Name(Date{2024, time.May, 20})
	assert.True(t, ok)
	assert.Equal(t, NameWhitMonday, name)

	_, ok = set.Name(Date{2024, time.May, 21})
	assert.False(t, ok)
}

func TestHolidays_NoSubstitution(t *testing.T) {
	// April 27th 2025 is a Sunday; no alternative day is added.
	set, err := Holidays(2025)
	require.NoError(t, err)

	kingsDay := Date{2025, time.April, 27}
	require.Equal(t, 6, kingsDay.Weekday())
	assert.True(t, set.Contains(kingsDay))
	assert.False(t, set.Contains(Date{2025, time.April, 26}))
}

func TestHolidays_ExcludesGoodFridayAndEasterMonday(t *testing.T) {
	set, err := Holidays(2024)
	require.NoError(t, err)

	easter := Easter(2024)
	assert.False(t, set.Contains(easter.AddDays(-2)))
	assert.False(t, set.Contains(easter.AddDays(1)))
}

func TestHolidays_Idempotent(t *testing.T) {
	first, err := Holidays(2030)
	require.NoError(t, err)

	// Build another year in between to catch state leaking across calls.
	_, err = Holidays(1999)
	require.NoError(t, err)

	second, err := Holidays(2030)
	require.NoError(t, err)
	assert.Equal(t, first.List(), second.List())
}

func TestHolidays_CountAcrossYears(t *testing.T) {
	for year := 1583; year <= 4099; year++ {
		set, err := Holidays(year)
		require.NoError(t, err)

		want := 9
		if Ascension(year) == (Date{year, time.May, 5}) {
			want = 8
		}
		if set.Len() != want {
			t.Fatalf("Holidays(%d) has %d dates, want %d", year, set.Len(), want)
		}
	}
}

func TestHolidays_SharedDate(t *testing.T) {
	set, err := Holidays(2016)
	require.NoError(t, err)

	name, ok := set.Name(Date{2016, time.May, 5})
	require.True(t, ok)
	assert.Equal(t, NameLiberation+" / "+NameAscension, name)
	assert.Equal(t, 8, set.Len())
}

func TestHolidays_InvalidYear(t *testing.T) {
	for _, year := range []int{0, -5, 10000} {
		_, err := Holidays(year)
		assert.ErrorIs(t, err, ErrInvalidYear, "year %d", year)
	}
}
