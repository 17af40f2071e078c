package calendar

// ISOWeek returns the ISO-8601 week number (1-53) of d.
//
// Weeks start on Monday and week 1 is the week holding the year's first
// Thursday. The week belongs to the year of its Thursday, so late December
// dates can land in week 1 and early January dates in week 52 or 53 of the
// previous year.
func ISOWeek(d Date) int {
	thursday := thursdayOf(d)
	firstThursday := thursdayOf(Date{Year: thursday.Year, Month: 1, Day: 4})
	return 1 + thursday.DaysSince(firstThursday)/7
}

// thursdayOf shifts d to the Thursday of its Monday-based week.
func thursdayOf(d Date) Date {
	return d.AddDays(3 - d.Weekday())
}
