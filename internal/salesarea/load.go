package salesarea

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/csg33k/brq-ebookings/internal/domain"
)

// Column names of the mapping table. Extra columns are ignored.
const (
	ColStation   = "BCC"
	ColNumber    = "salesAreaNumber"
	ColParent    = "Overall_ParentSalesAreaNumber"
	ColCode      = "code"
	ColBreakCode = "breakCode"
	ColGeography = "Geography"
	ColName      = "salesAreaName"
)

var requiredColumns = []string{ColNumber, ColCode, ColBreakCode}

// LoadFile reads a mapping table from a .csv or .xlsx file.
func LoadFile(path string) ([]domain.SalesArea, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open sales area mapping: %w", err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return LoadXLSX(f, "")
	default:
		return LoadCSV(f)
	}
}

// LoadCSV reads a mapping table with a header row.
func LoadCSV(r io.Reader) ([]domain.SalesArea, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read sales area csv: %w", err)
	}
	return fromRows(records)
}

// LoadXLSX reads a mapping table from sheet, or the first sheet when sheet
// is empty.
func LoadXLSX(r io.Reader, sheet string) ([]domain.SalesArea, error) {
	wb, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open sales area workbook: %w", err)
	}
	defer wb.Close()

	if sheet == "" {
		sheet = wb.GetSheetName(0)
	}
	rows, err := wb.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return fromRows(rows)
}

func fromRows(rows [][]string) ([]domain.SalesArea, error) {
	if len(rows) == 0 {
		return nil, errors.New("sales area mapping is empty")
	}
	col := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		col[h] = i
	}
	for _, c := range requiredColumns {
		if _, ok := col[c]; !ok {
			return nil, fmt.Errorf("sales area mapping: missing column %q", c)
		}
	}
	cell := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	out := make([]domain.SalesArea, 0, len(rows)-1)
	for n, row := range rows[1:] {
		line := n + 2
		if isBlank(row) {
			continue
		}
		number, err := strconv.Atoi(cell(row, ColNumber))
		if err != nil {
			return nil, fmt.Errorf("sales area mapping row %d: %s %q: %w", line, ColNumber, cell(row, ColNumber), err)
		}
		var parent int
		if p := cell(row, ColParent); p != "" {
			if parent, err = strconv.Atoi(p); err != nil {
				return nil, fmt.Errorf("sales area mapping row %d: %s %q: %w", line, ColParent, p, err)
			}
		}
		out = append(out, domain.SalesArea{
			StationID:    cell(row, ColStation),
			Number:       number,
			ParentNumber: parent,
			Code:         cell(row, ColCode),
			BreakCode:    cell(row, ColBreakCode),
			Geography:    cell(row, ColGeography),
			Name:         cell(row, ColName),
		})
	}
	return out, nil
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// Static serves a fixed mapping table as a ports.SalesAreaSource.
type Static []domain.SalesArea

func (s Static) SalesAreas(context.Context) ([]domain.SalesArea, error) {
	return s, nil
}
