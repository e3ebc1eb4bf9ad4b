package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/csg33k/brq-ebookings/internal/domain"
)

const SheetName = "Spot Failures"

// PageReport is the outcome of one submitted payload page.
type PageReport struct {
	Overall domain.OverallStatus
	Rows    []domain.ReportRow
}

// Build evaluates resp against page and joins each failing line to its
// source detail in doc.
func Build(doc *domain.Document, page *domain.SpotPayload, resp Response) (*PageReport, error) {
	statuses, overall, err := resp.StatusDetails(page)
	if err != nil {
		return nil, err
	}
	rows, err := Rows(doc, page, statuses)
	if err != nil {
		return nil, err
	}
	return &PageReport{Overall: overall, Rows: rows}, nil
}

// Rows returns one row per status in payload order. A line is joined to the
// detail it was built from, so multi-part lines resolve to their TP record.
func Rows(doc *domain.Document, page *domain.SpotPayload, statuses map[int]domain.SpotStatus) ([]domain.ReportRow, error) {
	idx := make([]int, 0, len(statuses))
	for i := range statuses {
		idx = append(idx, i)
	}
	slices.Sort(idx)

	rows := make([]domain.ReportRow, 0, len(idx))
	for _, i := range idx {
		if i < 0 || i >= len(page.SpotPreBookingDetails) {
			return nil, fmt.Errorf("report: status for payload index %d outside %d lines", i, len(page.SpotPreBookingDetails))
		}
		src := page.SpotPreBookingDetails[i].SourceIndex
		if src < 0 || src >= len(doc.Details) {
			return nil, fmt.Errorf("report: payload index %d refers to detail %d outside %d details", i, src, len(doc.Details))
		}
		d := &doc.Details[src]
		s := statuses[i]
		rows = append(rows, domain.ReportRow{
			AgencyName:             doc.Header.AgencyName,
			ClientName:             d.ClientName,
			ClientProductName:      d.ClientProductName,
			StationName:            d.StationName,
			WCDate:                 d.WCDate,
			Days:                   d.RequestedDay,
			Time:                   d.RequestedTime,
			Program:                d.RequestedProgram,
			Duration:               d.RequestedSize,
			Rate:                   d.RequestedGrossRate,
			DemographicCodeOne:     d.DemographicCodeOne,
			DemographicOneTarp:     d.DemographicOneTarp,
			DemographicOneThousand: d.DemographicOneThousand,
			ProposedAgencySpotID:   d.UniqueAgencyProposedSpotId,
			BookingModifiers:       strings.Join(d.BookingModifiers, ""),
			Title:                  s.Title,
			Status:                 s.Status,
			Detail:                 s.Msg,
		})
	}
	return rows, nil
}

// FileName is the report name for page n (from 1) of a submission.
func FileName(requestID string, approvalID int, day time.Time, n int) string {
	return fmt.Sprintf("SpotFailure-%s-OP%d-%s-%d.csv", requestID, approvalID, day.Format("2006-01-02"), n)
}

// WriteCSV writes rows under a ReportColumns heading.
func WriteCSV(w io.Writer, rows []domain.ReportRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(domain.ReportColumns); err != nil {
		return err
	}
	for i := range rows {
		vals := rows[i].Values()
		rec := make([]string, len(vals))
		for j, v := range vals {
			rec[j] = cell(v)
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func cell(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}

// WriteXLSX writes rows as a single-sheet workbook.
func WriteXLSX(w io.Writer, rows []domain.ReportRow) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return err
	}
	if err := f.SetSheetRow(SheetName, "A1", &domain.ReportColumns); err != nil {
		return err
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E2E8F0"}, Pattern: 1},
	})
	if err != nil {
		return err
	}
	if err := f.SetRowStyle(SheetName, 1, 1, headerStyle); err != nil {
		return err
	}

	for i := range rows {
		axis, _ := excelize.CoordinatesToCellName(1, i+2)
		vals := rows[i].Values()
		if err := f.SetSheetRow(SheetName, axis, &vals); err != nil {
			return fmt.Errorf("report: row %d: %w", i+1, err)
		}
	}
	return f.Write(w)
}
