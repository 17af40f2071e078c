package calendar

import "time"

// Day offsets of the movable feasts relative to Easter Sunday.
const (
	AscensionOffset  = 39
	WhitSundayOffset = 49
	WhitMondayOffset = 50
)

// Easter returns the date of Easter Sunday for a given year using the
// anonymous Gregorian computus (Meeus/Jones/Butcher).
//
// The result is only meaningful for Gregorian years (1583 onwards); earlier
// years get the proleptic Gregorian answer.
func Easter(year int) Date {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := ((h + l - 7*m + 114) % 31) + 1

	return Date{Year: year, Month: time.Month(month), Day: day}
}

// Ascension returns Ascension Day (Hemelvaartsdag), Easter + 39 days.
func Ascension(year int) Date {
	return Easter(year).AddDays(AscensionOffset)
}

// WhitSunday returns Pentecost (Eerste Pinksterdag), Easter + 49 days.
func WhitSunday(year int) Date {
	return Easter(year).AddDays(WhitSundayOffset)
}

// WhitMonday returns Tweede Pinksterdag, Easter + 50 days.
func WhitMonday(year int) Date {
	return Easter(year).AddDays(WhitMondayOffset)
}

// MovableFeasts returns the Easter-dependent public holidays of a year in
// calendar order. Dates come from civil addition, so a feast may in
// principle fall in another year than the one asked for.
func MovableFeasts(year int) []Holiday {
	return calcRules(movableRules, year)
}
