package calendar

import "time"

// WeekLabel heads the week-number column.
const WeekLabel = "Wk"

var monthNames = [...]string{
	"januari", "februari", "maart", "april", "mei", "juni",
	"juli", "augustus", "september", "oktober", "november", "december",
}

var weekdayLabels = [7]string{"Ma", "Di", "Wo", "Do", "Vr", "Za", "Zo"}

var weekdayNames = [7]string{
	"maandag", "dinsdag", "woensdag", "donderdag", "vrijdag", "zaterdag", "zondag",
}

// MonthName returns the Dutch month name in lower case ("januari").
func MonthName(m time.Month) string {
	if m < time.January || m > time.December {
		return ""
	}
	return monthNames[m-1]
}

// WeekdayLabels returns the two-letter column headers, Monday first.
func WeekdayLabels() [7]string {
	return weekdayLabels
}

// WeekdayName returns the Dutch weekday name for Monday=0..Sunday=6.
func WeekdayName(weekday int) string {
	if weekday < 0 || weekday > 6 {
		return ""
	}
	return weekdayNames[weekday]
}
