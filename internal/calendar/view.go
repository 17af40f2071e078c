package calendar

import "time"

// YearView is the full calendar of one year: twelve month grids in
// January..December order and the year's holidays for a legend.
type YearView struct {
	Year     int           `json:"year" yaml:"year"`
	Months   [12]MonthGrid `json:"months" yaml:"months"`
	Holidays []Holiday     `json:"holidays" yaml:"holidays"`
}

// Build computes the calendar of a year. The holiday set is built once and
// shared by all twelve months. Build is pure: the same year always yields
// an identical view.
func Build(year int) (*YearView, error) {
	holidays, err := Holidays(year)
	if err != nil {
		return nil, err
	}

	view := &YearView{
		Year:     year,
		Holidays: holidays.List(),
	}
	for i := range view.Months {
		grid, err := BuildMonth(year, time.Month(i+1), holidays)
		if err != nil {
			return nil, err
		}
		view.Months[i] = grid
	}
	return view, nil
}

// Month returns the grid of month m (1-indexed).
func (v *YearView) Month(m time.Month) (MonthGrid, error) {
	if err := ValidateMonth(m); err != nil {
		return MonthGrid{}, err
	}
	return v.Months[m-1], nil
}
