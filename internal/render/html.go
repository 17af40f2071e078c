package render

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/zapponejosh/jaarkalender/internal/calendar"
)

//go:embed templates/calendar.html.tmpl
var templateFS embed.FS

var pageTemplate = template.Must(
	template.New("calendar.html.tmpl").
		Funcs(template.FuncMap{"cellClass": cellClass}).
		ParseFS(templateFS, "templates/calendar.html.tmpl"),
)

// HTML renders a self-contained page with embedded styles.
type HTML struct{}

func (HTML) Format() Format      { return FormatHTML }
func (HTML) ContentType() string { return "text/html; charset=utf-8" }

type htmlPage struct {
	View        *calendar.YearView
	Labels      [7]string
	WeekLabel   string
	Theme       Theme
	Dark        bool
	Interactive bool
	Prev, Next  int
	Toggle      Theme
	Formats     []string
}

func (HTML) Render(w io.Writer, view *calendar.YearView, opts Options) error {
	theme := opts.themeOrDefault()
	page := htmlPage{
		View:        view,
		Labels:      calendar.WeekdayLabels(),
		WeekLabel:   calendar.WeekLabel,
		Theme:       theme,
		Dark:        theme == ThemeDark,
		Interactive: opts.Interactive,
		Toggle:      ThemeDark,
		Formats:     []string{string(FormatPDF), string(FormatText), string(FormatICS)},
	}
	if page.Dark {
		page.Toggle = ThemeLight
	}
	if view.Year > calendar.MinYear {
		page.Prev = view.Year - 1
	}
	if view.Year < calendar.MaxYear {
		page.Next = view.Year + 1
	}

	if err := pageTemplate.Execute(w, page); err != nil {
		return fmt.Errorf("execute html template: %w", err)
	}
	return nil
}

// cellClass returns the CSS classes of a day cell.
func cellClass(c calendar.DayCell) string {
	var classes []string
	if c.Weekend {
		classes = append(classes, "weekend")
	}
	if c.Holiday {
		classes = append(classes, "holiday")
	}
	return strings.Join(classes, " ")
}
