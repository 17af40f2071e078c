package render

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/zapponejosh/jaarkalender/internal/calendar"
)

// Page geometry in millimetres.
const (
	pdfMargin     = 10.0
	pdfTitleH     = 12.0
	pdfGap        = 6.0
	pdfMonthTitle = 7.0
	pdfMaxCellH   = 5.5
)

var pdfPageSizes = map[string]bool{"A4": true, "A3": true, "Letter": true}

// PDF renders the year on one page of month tables followed by a page
// listing the holidays.
type PDF struct{}

func (PDF) Format() Format      { return FormatPDF }
func (PDF) ContentType() string { return "application/pdf" }

func (PDF) Render(w io.Writer, view *calendar.YearView, opts Options) error {
	size := opts.PageSize
	if size == "" {
		size = "A4"
	}
	if !pdfPageSizes[size] {
		return fmt.Errorf("unsupported page size %q", size)
	}

	orientation, cols, rows := "P", 3, 4
	if opts.Landscape {
		orientation, cols, rows = "L", 4, 3
	}

	doc := fpdf.New(orientation, "mm", size, "")
	doc.SetTitle(fmt.Sprintf("Kalender %d", view.Year), true)
	doc.SetSubject("Jaarkalender met weeknummers en feestdagen", true)
	doc.SetCreator("jaarkalender", true)
	// Pinned dates and sorted catalogs keep the output byte-for-byte
	// reproducible.
	stamp := time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)
	doc.SetCreationDate(stamp)
	doc.SetModificationDate(stamp)
	doc.SetCatalogSort(true)
	doc.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	doc.SetAutoPageBreak(false, pdfMargin)

	p := &pdfWriter{doc: doc, pal: paletteFor(opts.themeOrDefault()), year: view.Year}
	doc.SetHeaderFunc(p.background)
	doc.SetFooterFunc(p.footer)

	p.yearPage(view, cols, rows)
	p.legendPage(view)

	if err := doc.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

type pdfWriter struct {
	doc  *fpdf.Fpdf
	pal  palette
	year int
}

func (p *pdfWriter) fill(c rgb)      { p.doc.SetFillColor(c.R, c.G, c.B) }
func (p *pdfWriter) textColor(c rgb) { p.doc.SetTextColor(c.R, c.G, c.B) }
func (p *pdfWriter) drawColor(c rgb) { p.doc.SetDrawColor(c.R, c.G, c.B) }

// background paints the page color; registered as the header func so it
// runs first on every page.
func (p *pdfWriter) background() {
	w, h := p.doc.GetPageSize()
	p.fill(p.pal.Background)
	p.doc.Rect(0, 0, w, h, "F")
}

func (p *pdfWriter) footer() {
	_, h := p.doc.GetPageSize()
	p.doc.SetXY(pdfMargin, h-pdfMargin+2)
	p.doc.SetFont("Helvetica", "", 7)
	p.textColor(p.pal.Muted)
	p.doc.CellFormat(0, 4, fmt.Sprintf("Kalender %d - pagina %d", p.year, p.doc.PageNo()), "", 0, "R", false, 0, "")
}

func (p *pdfWriter) yearPage(view *calendar.YearView, cols, rows int) {
	p.doc.AddPage()
	w, h := p.doc.GetPageSize()

	p.doc.SetXY(pdfMargin, pdfMargin)
	p.doc.SetFont("Helvetica", "B", 20)
	p.textColor(p.pal.Text)
	p.doc.CellFormat(w-2*pdfMargin, pdfTitleH-2, strconv.Itoa(view.Year), "", 0, "C", false, 0, "")

	blockW := (w - 2*pdfMargin - pdfGap*float64(cols-1)) / float64(cols)
	blockH := (h - 2*pdfMargin - pdfTitleH - pdfGap*float64(rows-1)) / float64(rows)
	cellH := min(pdfMaxCellH, (blockH-pdfMonthTitle)/7)

	for i, grid := range view.Months {
		col, row := i%cols, i/cols
		x := pdfMargin + float64(col)*(blockW+pdfGap)
		y := pdfMargin + pdfTitleH + float64(row)*(blockH+pdfGap)
		p.month(grid, x, y, blockW, cellH)
	}
}

func (p *pdfWriter) month(grid calendar.MonthGrid, x, y, w, cellH float64) {
	cellW := w / 8
	p.drawColor(p.pal.Border)
	p.doc.SetLineWidth(0.1)

	p.doc.SetXY(x, y)
	p.doc.SetFont("Helvetica", "B", 10)
	p.textColor(p.pal.Text)
	p.doc.CellFormat(w, pdfMonthTitle-1, grid.Title(), "", 0, "L", false, 0, "")
	y += pdfMonthTitle

	p.doc.SetXY(x, y)
	p.doc.SetFont("Helvetica", "B", 7)
	p.fill(p.pal.Header)
	p.textColor(p.pal.HeaderText)
	p.doc.CellFormat(cellW, cellH, calendar.WeekLabel, "1", 0, "C", true, 0, "")
	for _, label := range calendar.WeekdayLabels() {
		p.doc.CellFormat(cellW, cellH, label, "1", 0, "C", true, 0, "")
	}
	y += cellH

	for _, row := range grid.Weeks {
		p.doc.SetXY(x, y)
		p.doc.SetFont("Helvetica", "I", 7)
		p.textColor(p.pal.Muted)
		p.doc.CellFormat(cellW, cellH, strconv.Itoa(row.Week), "1", 0, "C", false, 0, "")

		for _, c := range row.Days {
			p.dayCell(c, cellW, cellH)
		}
		y += cellH
	}
}

func (p *pdfWriter) dayCell(c calendar.DayCell, w, h float64) {
	if c.IsEmpty() {
		p.doc.CellFormat(w, h, "", "1", 0, "C", false, 0, "")
		return
	}

	style, fill := "", false
	p.textColor(p.pal.Text)
	switch {
	case c.Holiday:
		style, fill = "B", true
		p.fill(p.pal.Holiday)
		p.textColor(p.pal.HolidayText)
	case c.Weekend:
		fill = true
		p.fill(p.pal.Weekend)
	}

	p.doc.SetFont("Helvetica", style, 7)
	p.doc.CellFormat(w, h, strconv.Itoa(c.Day), "1", 0, "C", fill, 0, "")
}

func (p *pdfWriter) legendPage(view *calendar.YearView) {
	p.doc.AddPage()
	w, _ := p.doc.GetPageSize()
	usable := w - 2*pdfMargin

	p.doc.SetXY(pdfMargin, pdfMargin)
	p.doc.SetFont("Helvetica", "B", 16)
	p.textColor(p.pal.Text)
	p.doc.CellFormat(usable, 10, fmt.Sprintf("Feestdagen %d", view.Year), "", 1, "L", false, 0, "")
	p.doc.Ln(2)

	widths := []float64{30, 30, usable - 80, 20}
	headers := []string{"Datum", "Dag", "Feestdag", calendar.WeekLabel}

	p.drawColor(p.pal.Border)
	p.doc.SetFont("Helvetica", "B", 9)
	p.fill(p.pal.Header)
	p.textColor(p.pal.HeaderText)
	for i, head := range headers {
		p.doc.CellFormat(widths[i], 7, head, "1", 0, "L", true, 0, "")
	}
	p.doc.Ln(-1)

	p.doc.SetFont("Helvetica", "", 9)
	p.textColor(p.pal.Text)
	for _, h := range view.Holidays {
		p.doc.SetX(pdfMargin)
		cells := []string{
			h.Date.String(),
			calendar.WeekdayName(h.Date.Weekday()),
			h.Name,
			strconv.Itoa(calendar.ISOWeek(h.Date)),
		}
		for i, text := range cells {
			p.doc.CellFormat(widths[i], 7, text, "1", 0, "L", false, 0, "")
		}
		p.doc.Ln(-1)
	}
}
