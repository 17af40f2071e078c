package calendar

import (
	"fmt"
	"time"
)

// DayCell is one cell of a month grid. Padding cells before the first and
// after the last day of the month have Day == 0 and no other fields set.
type DayCell struct {
	Day         int    `json:"day,omitempty" yaml:"day,omitempty"`
	Date        Date   `json:"date,omitzero" yaml:"date,omitempty"`
	Week        int    `json:"week,omitempty" yaml:"week,omitempty"`
	Weekend     bool   `json:"weekend,omitempty" yaml:"weekend,omitempty"`
	Holiday     bool   `json:"holiday,omitempty" yaml:"holiday,omitempty"`
	HolidayName string `json:"holiday_name,omitempty" yaml:"holiday_name,omitempty"`
}

// IsEmpty reports whether the cell is padding.
func (c DayCell) IsEmpty() bool {
	return c.Day == 0
}

// WeekRow is one line of a month grid: an ISO week number and the cells
// for Monday through Sunday.
type WeekRow struct {
	Week int        `json:"week" yaml:"week"`
	Days [7]DayCell `json:"days" yaml:"days"`
}

// MonthGrid lays out one month as Monday-first week rows.
type MonthGrid struct {
	Year  int        `json:"year" yaml:"year"`
	Month time.Month `json:"month" yaml:"month"`
	Name  string     `json:"name" yaml:"name"`
	Weeks []WeekRow  `json:"weeks" yaml:"weeks"`
}

// BuildMonth lays out a month. Months are 1-indexed (time.January == 1).
//
// holidays may be nil, in which case the year's set is computed. A set
// built for a different year is rejected.
func BuildMonth(year int, month time.Month, holidays *HolidaySet) (MonthGrid, error) {
	if err := ValidateYear(year); err != nil {
		return MonthGrid{}, err
	}
	if err := ValidateMonth(month); err != nil {
		return MonthGrid{}, err
	}
	if holidays == nil {
		var err error
		if holidays, err = Holidays(year); err != nil {
			return MonthGrid{}, err
		}
	} else if holidays.Year() != year {
		return MonthGrid{}, fmt.Errorf("%w: set for %d, grid for %d", ErrHolidayYear, holidays.Year(), year)
	}

	grid := MonthGrid{
		Year:  year,
		Month: month,
		Name:  MonthName(month),
		Weeks: make([]WeekRow, 0, 6),
	}

	n := DaysInMonth(year, month)
	day := 1 - WeekdayOf(year, month, 1)
	for day <= n {
		row := WeekRow{
			Week: ISOWeek(Date{Year: year, Month: month, Day: max(day, 1)}),
		}
		for col := 0; col < 7; col, day = col+1, day+1 {
			if day < 1 || day > n {
				continue
			}
			d := Date{Year: year, Month: month, Day: day}
			name, holiday := holidays.Name(d)
			row.Days[col] = DayCell{
				Day:         day,
				Date:        d,
				Week:        row.Week,
				Weekend:     col >= 5,
				Holiday:     holiday,
				HolidayName: name,
			}
		}
		grid.Weeks = append(grid.Weeks, row)
	}

	return grid, nil
}

// Cell returns the cell holding day, if the day exists in the month.
func (g MonthGrid) Cell(day int) (DayCell, bool) {
	for _, row := range g.Weeks {
		for _, c := range row.Days {
			if c.Day == day && !c.IsEmpty() {
				return c, true
			}
		}
	}
	return DayCell{}, false
}

// Title returns the heading used by renderers, e.g. "februari 2024".
func (g MonthGrid) Title() string {
	return fmt.Sprintf("%s %d", g.Name, g.Year)
}
