package render

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/gocarina/gocsv"

	"github.com/zapponejosh/jaarkalender/internal/calendar"
)

// holidayRow is one CSV line of the holiday list.
type holidayRow struct {
	Date    string `csv:"datum"`
	Weekday string `csv:"dag"`
	Week    int    `csv:"week"`
	Name    string `csv:"feestdag"`
}

// CSV writes the holiday list with a header row.
type CSV struct{}

func (CSV) Format() Format      { return FormatCSV }
func (CSV) ContentType() string { return "text/csv; charset=utf-8" }

func (CSV) Render(w io.Writer, view *calendar.YearView, _ Options) error {
	rows := make([]*holidayRow, 0, len(view.Holidays))
	for _, h := range view.Holidays {
		rows = append(rows, &holidayRow{
			Date:    h.Date.String(),
			Weekday: calendar.WeekdayName(h.Date.Weekday()),
			Week:    calendar.ISOWeek(h.Date),
			Name:    h.Name,
		})
	}
	if err := gocsv.Marshal(rows, w); err != nil {
		return fmt.Errorf("encode csv: %w", err)
	}
	return nil
}

// ICS writes the holiday list as an iCalendar feed of all-day events.
type ICS struct{}

func (ICS) Format() Format      { return FormatICS }
func (ICS) ContentType() string { return "text/calendar; charset=utf-8" }

const icsDate = "20060102"

func (ICS) Render(w io.Writer, view *calendar.YearView, _ Options) error {
	bw := bufio.NewWriter(w)
	line := func(format string, args ...any) {
		fmt.Fprintf(bw, format+"\r\n", args...)
	}

	line("BEGIN:VCALENDAR")
	line("VERSION:2.0")
	line("PRODID:-//jaarkalender//Feestdagen//NL")
	line("CALSCALE:GREGORIAN")
	line("METHOD:PUBLISH")
	line("X-WR-CALNAME:Feestdagen %d", view.Year)

	// DTSTAMP is pinned to the start of the year so a feed is stable
	// between requests.
	stamp := calendar.Date{Year: view.Year, Month: 1, Day: 1}.Time().Format(icsDate + "T150405Z")

	for _, h := range view.Holidays {
		line("BEGIN:VEVENT")
		line("UID:%s-%s@jaarkalender", h.Date.Time().Format(icsDate), slug(h.Name))
		line("DTSTAMP:%s", stamp)
		line("DTSTART;VALUE=DATE:%s", h.Date.Time().Format(icsDate))
		line("DTEND;VALUE=DATE:%s", h.Date.AddDays(1).Time().Format(icsDate))
		line("SUMMARY:%s", escapeICS(h.Name))
		line("TRANSP:TRANSPARENT")
		line("END:VEVENT")
	}

	line("END:VCALENDAR")
	return bw.Flush()
}

// escapeICS escapes TEXT values per RFC 5545 section 3.3.11.
func escapeICS(s string) string {
	return strings.NewReplacer(`\`, `\\`, ";", `\;`, ",", `\,`, "\n", `\n`).Replace(s)
}

func slug(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
