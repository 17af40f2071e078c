// Package render turns a calendar.YearView into documents.
//
// Every output format sits behind the Renderer interface so the calendar
// code never depends on a document library. Presentation state such as the
// dark theme is passed in through Options instead of living in globals.
package render

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/zapponejosh/jaarkalender/internal/calendar"
)

// Format names an output format. It doubles as the file extension.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatHTML Format = "html"
	FormatText Format = "txt"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatCSV  Format = "csv"
	FormatICS  Format = "ics"
)

// Theme selects the color scheme.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

var (
	// ErrUnknownFormat is returned for format names without a renderer.
	ErrUnknownFormat = errors.New("unknown format")

	// ErrUnknownTheme is returned for theme names other than light and dark.
	ErrUnknownTheme = errors.New("unknown theme")
)

// Options carries presentation state into a renderer. The zero value is a
// light A4 portrait page.
type Options struct {
	Theme       Theme
	PageSize    string // A4, A3, Letter; PDF only
	Landscape   bool   // PDF only
	Interactive bool   // HTML only: year navigation and export links
}

// Renderer maps a year view to a document.
type Renderer interface {
	Format() Format
	ContentType() string
	Render(w io.Writer, view *calendar.YearView, opts Options) error
}

var renderers = map[Format]Renderer{
	FormatPDF:  PDF{},
	FormatHTML: HTML{},
	FormatText: Text{},
	FormatJSON: JSON{},
	FormatYAML: YAML{},
	FormatCSV:  CSV{},
	FormatICS:  ICS{},
}

// ForFormat returns the renderer registered for name (case-insensitive).
func ForFormat(name string) (Renderer, error) {
	r, ok := renderers[Format(strings.ToLower(name))]
	if !ok {
		return nil, fmt.Errorf("%w: %q (want one of %s)", ErrUnknownFormat, name, strings.Join(FormatNames(), ", "))
	}
	return r, nil
}

// FormatNames lists the registered formats in sorted order.
func FormatNames() []string {
	names := make([]string, 0, len(renderers))
	for f := range renderers {
		names = append(names, string(f))
	}
	slices.Sort(names)
	return names
}

// ParseTheme parses a theme name. The empty string means light.
func ParseTheme(name string) (Theme, error) {
	switch Theme(strings.ToLower(name)) {
	case "", ThemeLight:
		return ThemeLight, nil
	case ThemeDark:
		return ThemeDark, nil
	default:
		return "", fmt.Errorf("%w: %q (want light or dark)", ErrUnknownTheme, name)
	}
}

// Filename returns the download name of a year's export, e.g.
// "kalender_2024.pdf".
func Filename(year int, format Format) string {
	return fmt.Sprintf("kalender_%d.%s", year, format)
}

// themeOrDefault resolves the zero theme to light.
func (o Options) themeOrDefault() Theme {
	if o.Theme == "" {
		return ThemeLight
	}
	return o.Theme
}
