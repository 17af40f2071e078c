package calendar

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/rickar/cal/v2"
)

// Dutch names of the public holidays on the calendar.
const (
	NameNewYear      = "Nieuwjaarsdag"
	NameKingsDay     = "Koningsdag"
	NameLiberation   = "Bevrijdingsdag"
	NameChristmas    = "Eerste Kerstdag"
	NameBoxingDay    = "Tweede Kerstdag"
	NameEasterSunday = "Eerste Paasdag"
	NameAscension    = "Hemelvaartsdag"
	NameWhitSunday   = "Eerste Pinksterdag"
	NameWhitMonday   = "Tweede Pinksterdag"
)

// ErrHolidayYear is returned when a holiday set of one year is used to
// build a grid for another.
var ErrHolidayYear = errors.New("holiday set belongs to another year")

// Fixed-date holidays. Dates are exact: there is no substitute day when
// one of them lands in a weekend.
var fixedRules = []*cal.Holiday{
	{Name: NameNewYear, Type: cal.ObservancePublic, Month: time.January, Day: 1, Func: cal.CalcDayOfMonth},
	{Name: NameKingsDay, Type: cal.ObservancePublic, Month: time.April, Day: 27, Func: cal.CalcDayOfMonth},
	{Name: NameLiberation, Type: cal.ObservancePublic, Month: time.May, Day: 5, Func: cal.CalcDayOfMonth},
	{Name: NameChristmas, Type: cal.ObservancePublic, Month: time.December, Day: 25, Func: cal.CalcDayOfMonth},
	{Name: NameBoxingDay, Type: cal.ObservancePublic, Month: time.December, Day: 26, Func: cal.CalcDayOfMonth},
}

// Easter-relative holidays. Good Friday and Easter Monday are deliberately
// absent.
var movableRules = []*cal.Holiday{
	{Name: NameEasterSunday, Type: cal.ObservancePublic, Offset: 0, Func: easterOffset},
	{Name: NameAscension, Type: cal.ObservancePublic, Offset: AscensionOffset, Func: easterOffset},
	{Name: NameWhitSunday, Type: cal.ObservancePublic, Offset: WhitSundayOffset, Func: easterOffset},
	{Name: NameWhitMonday, Type: cal.ObservancePublic, Offset: WhitMondayOffset, Func: easterOffset},
}

// easterOffset is a cal.HolidayFn placing a holiday h.Offset days after
// Easter Sunday as computed by Easter.
func easterOffset(h *cal.Holiday, year int) time.Time {
	return Easter(year).AddDays(h.Offset).Time()
}

// calcRules evaluates rules for a year and returns the resulting holidays
// sorted by date.
func calcRules(rules []*cal.Holiday, year int) []Holiday {
	out := make([]Holiday, 0, len(rules))
	for _, rule := range rules {
		actual, _ := rule.Calc(year)
		if actual.IsZero() {
			continue
		}
		out = append(out, Holiday{Date: DateOf(actual), Name: rule.Name})
	}
	slices.SortStableFunc(out, func(a, b Holiday) int { return a.Date.Compare(b.Date) })
	return out
}

// Holiday is a named public holiday.
type Holiday struct {
	Date Date   `json:"date" yaml:"date"`
	Name string `json:"name" yaml:"name"`
}

// HolidaySet is the immutable set of public holidays of one year.
type HolidaySet struct {
	year int
	days map[Date]string
}

// Holidays builds the set of Dutch public holidays observed in year:
// five fixed dates plus Easter Sunday, Ascension Day, Whit Sunday and
// Whit Monday. Holidays sharing a date are stored once under a combined
// name.
func Holidays(year int) (*HolidaySet, error) {
	if err := ValidateYear(year); err != nil {
		return nil, err
	}

	set := &HolidaySet{
		year: year,
		days: make(map[Date]string, len(fixedRules)+len(movableRules)),
	}
	for _, h := range calcRules(fixedRules, year) {
		set.days[h.Date] = h.Name
	}
	for _, h := range MovableFeasts(year) {
		// Ascension Day can coincide with Liberation Day (2005, 2016).
		if existing, taken := set.days[h.Date]; taken {
			set.days[h.Date] = existing + " / " + h.Name
			continue
		}
		set.days[h.Date] = h.Name
	}
	return set, nil
}

// Year returns the year the set was built for.
func (s *HolidaySet) Year() int {
	return s.year
}

// Len returns the number of holiday dates.
func (s *HolidaySet) Len() int {
	return len(s.days)
}

// Contains reports whether d is a holiday.
func (s *HolidaySet) Contains(d Date) bool {
	_, ok := s.days[d]
	return ok
}

// Name returns the holiday name of d, if any.
func (s *HolidaySet) Name(d Date) (string, bool) {
	name, ok := s.days[d]
	return name, ok
}

// List returns the holidays sorted by date.
func (s *HolidaySet) List() []Holiday {
	out := make([]Holiday, 0, len(s.days))
	for d, name := range s.days {
		out = append(out, Holiday{Date: d, Name: name})
	}
	slices.SortFunc(out, func(a, b Holiday) int { return a.Date.Compare(b.Date) })
	return out
}

// String is used in log lines.
func (s *HolidaySet) String() string {
	return fmt.Sprintf("HolidaySet(%d, %d days)", s.year, len(s.days))
}
