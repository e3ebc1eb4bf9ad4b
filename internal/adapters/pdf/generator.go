// Package pdf generates a human-readable campaign summary for a parsed BRQ
// file. The first page shows the file header and the parent sales-area
// split; each parent then gets a page with its constituent split, delivery
// lengths and strike weights. Failed booking lines, when given, are listed
// on trailing pages.
package pdf

import (
	"fmt"
	"io"
	"strconv"

	"github.com/go-pdf/fpdf"

	"github.com/csg33k/brq-ebookings/internal/domain"
)

// GenerateSummary writes the summary PDF to w. failures may be empty.
func GenerateSummary(w io.Writer, doc *domain.Document, h *domain.CampaignHeader, failures []domain.ReportRow) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(18, 18, 18)
	pdf.SetAutoPageBreak(true, 18)
	pdf.AliasNbPages("{nb}")

	pdf.AddPage()
	drawOverviewPage(pdf, doc, h)

	for i := range h.Areas {
		pdf.AddPage()
		drawParentPage(pdf, doc, &h.Areas[i])
	}

	if len(failures) > 0 {
		pdf.AddPage()
		drawFailures(pdf, doc, failures)
	}

	return pdf.Output(w)
}

func drawTitleBar(pdf *fpdf.Fpdf, title string) float64 {
	pageW, _ := pdf.GetPageSize()
	marginL, marginT, marginR, _ := pdf.GetMargins()
	contentW := pageW - marginL - marginR

	pdf.SetFillColor(30, 30, 30)
	pdf.Rect(marginL, marginT, contentW, 10, "F")
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetXY(marginL+2, marginT+1.5)
	pdf.CellFormat(contentW-4, 7, title, "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, 7, "Page "+fmt.Sprint(pdf.PageNo())+" of {nb}", "", 1, "R", false, 0, "")
	pdf.SetTextColor(0, 0, 0)

	return marginT + 13
}

func drawSectionHeading(pdf *fpdf.Fpdf, y float64, label string) float64 {
	marginL, contentW := bounds(pdf)
	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetXY(marginL, y)
	pdf.CellFormat(contentW, 5.5, label, "LRT", 1, "L", true, 0, "")
	return y + 5.5
}

func drawOverviewPage(pdf *fpdf.Fpdf, doc *domain.Document, h *domain.CampaignHeader) {
	marginL, contentW := bounds(pdf)
	y := drawTitleBar(pdf, "BRQ CAMPAIGN SUMMARY")

	// ── File header ──────────────────────────────────────────────────────────
	y = drawSectionHeading(pdf, y, "BOOKING REQUEST")
	colHalf := contentW / 2
	hd := &doc.Header

	pdf.SetFont("Helvetica", "", 9)
	pdf.SetXY(marginL, y)
	pdf.CellFormat(colHalf, 6, "Agency: "+hd.AgencyName+" ("+hd.AgencyId+")", "L", 0, "L", false, 0, "")
	pdf.CellFormat(colHalf, 6, "Network: "+hd.NetworkName+" ("+hd.NetworkId+")", "R", 1, "L", false, 0, "")
	y += 6
	pdf.SetXY(marginL, y)
	pdf.CellFormat(colHalf, 6, "Generated: "+hd.GenerationDate+" "+hd.GenerationTime, "L", 0, "L", false, 0, "")
	pdf.CellFormat(colHalf, 6, "Contact: "+hd.AgencyContactName+" <"+hd.AgencyContactEmail+">", "R", 1, "L", false, 0, "")
	y += 6
	pdf.SetXY(marginL, y)
	pdf.CellFormat(colHalf, 5.5, fmt.Sprintf("Spots: %d", len(doc.Details)), "LB", 0, "L", false, 0, "")
	pdf.CellFormat(colHalf, 5.5, "Proposed gross: $"+money(hd.ProposedTotalGrossValue), "RB", 1, "L", false, 0, "")
	y += 5.5 + 5

	// ── Parent split ─────────────────────────────────────────────────────────
	rows := make([][]string, 0, len(h.Areas))
	for _, a := range h.Areas {
		rows = append(rows, []string{
			strconv.Itoa(a.SalesAreaNumber),
			strconv.Itoa(len(a.SalesAreaDetails)),
			pct(a.PercentageSplit),
		})
	}
	drawTable(pdf, y,
		[]string{"Parent Sales Area", "Sales Areas", "Percentage Split"},
		[]float64{0.5, 0.25, 0.25},
		[]string{"L", "R", "R"},
		rows)

	drawFooter(pdf, doc)
}

func drawParentPage(pdf *fpdf.Fpdf, doc *domain.Document, a *domain.SalesAreaOnCampaign) {
	y := drawTitleBar(pdf, fmt.Sprintf("PARENT SALES AREA %d  -  %s%%", a.SalesAreaNumber, pct(a.PercentageSplit)))

	var rows [][]string
	for _, d := range a.SalesAreaDetails {
		spots := "-"
		if d.SpotsPercentage != nil {
			spots = pct(*d.SpotsPercentage)
		}
		rows = append(rows, []string{strconv.Itoa(d.SalesAreaNumber), pct(d.PercentageSplit), spots})
	}
	y = drawTable(pdf, y,
		[]string{"Sales Area", "Percentage Split", "Spots Percentage"},
		[]float64{0.5, 0.25, 0.25},
		[]string{"L", "R", "R"},
		rows) + 5

	rows = rows[:0]
	for _, l := range a.DeliveryLengths {
		rows = append(rows, []string{strconv.Itoa(l.SpotLength) + "s", pct(l.Percentage)})
	}
	y = drawTable(pdf, y,
		[]string{"Spot Length", "Percentage"},
		[]float64{0.5, 0.5},
		[]string{"L", "R"},
		rows) + 5

	rows = rows[:0]
	for _, s := range a.StrikeWeights {
		rows = append(rows, []string{
			s.Period.StartDate + " to " + s.Period.EndDate,
			strconv.Itoa(s.RatingsPercentage),
			strconv.Itoa(s.SpotCount),
			pct(s.SpotsPercentage),
		})
	}
	drawTable(pdf, y,
		[]string{"Week", "Ratings %", "Spots", "Spots %"},
		[]float64{0.46, 0.18, 0.18, 0.18},
		[]string{"L", "R", "R", "R"},
		rows)

	drawFooter(pdf, doc)
}

func drawFailures(pdf *fpdf.Fpdf, doc *domain.Document, failures []domain.ReportRow) {
	y := drawTitleBar(pdf, fmt.Sprintf("SPOTS NOT LOADED  (%d)", len(failures)))

	rows := make([][]string, 0, len(failures))
	for _, f := range failures {
		rows = append(rows, []string{
			f.StationName,
			f.WCDate,
			strconv.Itoa(f.Duration),
			strconv.Itoa(f.Status),
			f.Detail,
		})
	}
	drawTable(pdf, y,
		[]string{"Station", "W/C Date", "Duration", "Status", "Detail"},
		[]float64{0.22, 0.14, 0.1, 0.1, 0.44},
		[]string{"L", "L", "R", "R", "L"},
		rows)

	drawFooter(pdf, doc)
}

// drawTable draws a dark heading row and alternating body rows, widths being
// fractions of the content width. It returns the y below the table.
func drawTable(pdf *fpdf.Fpdf, y float64, heads []string, widths []float64, align []string, rows [][]string) float64 {
	marginL, contentW := bounds(pdf)

	pdf.SetFillColor(30, 30, 30)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 8.5)
	pdf.SetXY(marginL, y)
	for i, h := range heads {
		ln := 0
		if i == len(heads)-1 {
			ln = 1
		}
		pdf.CellFormat(contentW*widths[i], 7, h, "1", ln, "C", true, 0, "")
	}
	y = pdf.GetY()
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "", 8.5)

	rowH := 6.5
	for r, row := range rows {
		// Alternating row background
		if r%2 == 0 {
			pdf.SetFillColor(250, 250, 250)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}
		pdf.SetXY(marginL, y)
		for i, cell := range row {
			ln := 0
			if i == len(row)-1 {
				ln = 1
			}
			pdf.CellFormat(contentW*widths[i], rowH, truncate(pdf, cell, contentW*widths[i]-2), "1", ln, align[i], true, 0, "")
		}
		// a page break inside the row moves the cursor to the new page
		y = pdf.GetY()
	}
	return y
}

func drawFooter(pdf *fpdf.Fpdf, doc *domain.Document) {
	_, pageH := pdf.GetPageSize()
	_, _, _, marginB := pdf.GetMargins()
	marginL, contentW := bounds(pdf)

	pdf.SetXY(marginL, pageH-marginB-6)
	pdf.SetFont("Helvetica", "I", 7.5)
	pdf.SetTextColor(130, 130, 130)
	pdf.CellFormat(contentW/2, 5, "Generated by BRQ eBookings", "", 0, "L", false, 0, "")
	pdf.CellFormat(contentW/2, 5, doc.Header.AgencyName+" | "+doc.Header.NetworkId, "", 0, "R", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
}

// ── Helpers ──────────────────────────────────────────────────────────────────

func bounds(pdf *fpdf.Fpdf) (marginL, contentW float64) {
	pageW, _ := pdf.GetPageSize()
	l, _, r, _ := pdf.GetMargins()
	return l, pageW - l - r
}

func pct(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

func money(v float64) string { return fmt.Sprintf("%.2f", v) }

// truncate shortens s with "..." until it fits width at the current font.
func truncate(pdf *fpdf.Fpdf, s string, width float64) string {
	if pdf.GetStringWidth(s) <= width {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && pdf.GetStringWidth(string(r)+"...") > width {
		r = r[:len(r)-1]
	}
	return string(r) + "..."
}
