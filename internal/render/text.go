package render

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/zapponejosh/jaarkalender/internal/calendar"
)

const (
	textColumns  = 3
	textCellW    = 4
	textMonthW   = 3 + 7*textCellW
	textGutter   = "   "
	holidayMark  = "*"
	noHolidayPad = " "
)

// Text renders a terminal calendar, three months side by side. Holidays
// are marked with an asterisk and listed below the grid. The theme is
// ignored.
type Text struct{}

func (Text) Format() Format      { return FormatText }
func (Text) ContentType() string { return "text/plain; charset=utf-8" }

func (Text) Render(w io.Writer, view *calendar.YearView, _ Options) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintln(bw, center(fmt.Sprint(view.Year), textColumns*textMonthW+(textColumns-1)*len(textGutter)))
	fmt.Fprintln(bw)

	for start := 0; start < len(view.Months); start += textColumns {
		blocks := make([][]string, 0, textColumns)
		height := 0
		for _, grid := range view.Months[start:min(start+textColumns, len(view.Months))] {
			lines := MonthLines(grid)
			blocks = append(blocks, lines)
			height = max(height, len(lines))
		}
		for i := 0; i < height; i++ {
			parts := make([]string, len(blocks))
			for j, lines := range blocks {
				line := ""
				if i < len(lines) {
					line = lines[i]
				}
				parts[j] = fmt.Sprintf("%-*s", textMonthW, line)
			}
			fmt.Fprintln(bw, strings.TrimRight(strings.Join(parts, textGutter), " "))
		}
		fmt.Fprintln(bw)
	}

	writeTextLegend(bw, view.Year, view.Holidays)
	return bw.Flush()
}

// MonthLines renders one month grid as fixed-width lines: title, header
// and one line per week row.
func MonthLines(grid calendar.MonthGrid) []string {
	lines := make([]string, 0, len(grid.Weeks)+2)
	lines = append(lines, center(grid.Title(), textMonthW))

	var b strings.Builder
	fmt.Fprintf(&b, "%-3s", calendar.WeekLabel)
	for _, label := range calendar.WeekdayLabels() {
		fmt.Fprintf(&b, "%*s ", textCellW-1, label)
	}
	lines = append(lines, strings.TrimRight(b.String(), " "))

	for _, row := range grid.Weeks {
		b.Reset()
		fmt.Fprintf(&b, "%2d ", row.Week)
		for _, c := range row.Days {
			if c.IsEmpty() {
				b.WriteString(strings.Repeat(" ", textCellW))
				continue
			}
			mark := noHolidayPad
			if c.Holiday {
				mark = holidayMark
			}
			fmt.Fprintf(&b, "%*d%s", textCellW-1, c.Day, mark)
		}
		lines = append(lines, strings.TrimRight(b.String(), " "))
	}
	return lines
}

func writeTextLegend(w io.Writer, year int, holidays []calendar.Holiday) {
	fmt.Fprintf(w, "%s Feestdagen %d\n", holidayMark, year)
	for _, h := range holidays {
		fmt.Fprintf(w, "  %s  %-9s  %s\n", h.Date, calendar.WeekdayName(h.Date.Weekday()), h.Name)
	}
}

func center(s string, width int) string {
	pad := (width - len(s)) / 2
	if pad <= 0 {
		return s
	}
	return strings.Repeat(" ", pad) + s
}
