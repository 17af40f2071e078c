package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"code.cloudfoundry.org/bytefmt"
	"gopkg.in/yaml.v3"

	"github.com/zapponejosh/jaarkalender/internal/calendar"
	"github.com/zapponejosh/jaarkalender/internal/export"
	"github.com/zapponejosh/jaarkalender/internal/render"
)

// ShowCmd prints a text calendar
type ShowCmd struct {
	Year  int `arg:"" optional:"" help:"Year (default: current year)"`
	Month int `short:"m" name:"month" help:"Only this month, 1-12"`
}

func (c *ShowCmd) Run(a *app) error {
	year := c.Year
	if year == 0 {
		year = time.Now().Year()
	}

	view, err := calendar.Build(year)
	if err != nil {
		return err
	}

	if c.Month == 0 {
		return render.Text{}.Render(a.out, view, render.Options{})
	}

	grid, err := view.Month(time.Month(c.Month))
	if err != nil {
		return err
	}
	for _, line := range render.MonthLines(grid) {
		fmt.Fprintln(a.out, line)
	}
	return nil
}

// ExportCmd writes calendar documents to disk
type ExportCmd struct {
	Years     []int  `arg:"" help:"Years to export"`
	Format    string `short:"f" name:"format" default:"pdf" enum:"pdf,html,txt,json,yaml,csv,ics" help:"Output format"`
	Theme     string `short:"t" name:"theme" default:"light" enum:"light,dark" help:"Color theme"`
	Landscape bool   `name:"landscape" help:"Landscape PDF pages (4x3 months)"`
	PageSize  string `name:"page-size" default:"A4" enum:"A4,A3,Letter" help:"PDF page size"`
	Out       string `short:"o" name:"out" default:"." help:"Output directory"`
}

func (c *ExportCmd) Run(a *app) error {
	svc := export.NewService(nil, export.Options{PageSize: c.PageSize}, a.logger)

	docs, err := svc.ExportYears(a.ctx, c.Years, c.Format, c.Theme, c.Landscape)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(c.Out, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	for _, doc := range docs {
		path := filepath.Join(c.Out, doc.Filename)
		if err := os.WriteFile(path, doc.Content, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		fmt.Fprintf(a.out, "%s (%s)\n", path, bytefmt.ByteSize(uint64(doc.Size)))
	}
	return nil
}

// HolidaysCmd lists the holidays of a year
type HolidaysCmd struct {
	Year   int    `arg:"" help:"Year"`
	Format string `short:"f" name:"format" default:"txt" enum:"txt,csv,ics,json,yaml" help:"Output format"`
}

func (c *HolidaysCmd) Run(a *app) error {
	set, err := calendar.Holidays(c.Year)
	if err != nil {
		return err
	}
	holidays := set.List()

	switch c.Format {
	case "json":
		enc := json.NewEncoder(a.out)
		enc.SetIndent("", "  ")
		return enc.Encode(holidays)
	case "yaml":
		enc := yaml.NewEncoder(a.out)
		enc.SetIndent(2)
		if err := enc.Encode(holidays); err != nil {
			return err
		}
		return enc.Close()
	case "csv", "ics":
		r, err := render.ForFormat(c.Format)
		if err != nil {
			return err
		}
		view, err := calendar.Build(c.Year)
		if err != nil {
			return err
		}
		return r.Render(a.out, view, render.Options{})
	}

	for _, h := range holidays {
		fmt.Fprintf(a.out, "%s  %-9s  wk %2d  %s\n",
			h.Date, calendar.WeekdayName(h.Date.Weekday()), calendar.ISOWeek(h.Date), h.Name)
	}
	return nil
}

// WeekCmd prints the ISO week of a date
type WeekCmd struct {
	Date string `arg:"" help:"Date as YYYY-MM-DD"`
}

func (c *WeekCmd) Run(a *app) error {
	date, err := calendar.ParseDate(c.Date)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "%s (%s): week %d\n", date, calendar.WeekdayName(date.Weekday()), calendar.ISOWeek(date))
	return nil
}

// EasterCmd prints Easter and the movable feasts
type EasterCmd struct {
	Year int `arg:"" help:"Year"`
}

func (c *EasterCmd) Run(a *app) error {
	if err := calendar.ValidateYear(c.Year); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Pasen %d: %s\n", c.Year, calendar.Easter(c.Year))
	for _, h := range calendar.MovableFeasts(c.Year) {
		offset := h.Date.DaysSince(calendar.Easter(c.Year))
		fmt.Fprintf(a.out, "  %s  %-18s  %+d\n", h.Date, h.Name, offset)
	}
	return nil
}
