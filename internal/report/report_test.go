package report_test

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/csg33k/brq-ebookings/internal/adapters/brq/brqtest"
	"github.com/csg33k/brq-ebookings/internal/domain"
	"github.com/csg33k/brq-ebookings/internal/report"
	"github.com/csg33k/brq-ebookings/internal/salesarea/salesareatest"
	"github.com/csg33k/brq-ebookings/internal/spots"
)

// fixture: four details, the first three forming one multi-part spot, so the
// payload has two lines whose sources are details 0 and 3.
func fixture(t *testing.T) (*domain.Document, *domain.SpotPayload) {
	t.Helper()
	d3 := brqtest.Detail("MEL7", "20240115", 45)
	d3.StationName = "MELBOURNE"
	d3.BookingModifiers = []string{"AB", "CD"}
	doc := brqtest.Document(
		brqtest.Detail("SYD7", "20240108", 30, "TP"),
		brqtest.Detail("SYD7", "20240108", 15, "MD"),
		brqtest.Detail("SYD7", "20240108", 15, "TA"),
		d3,
	)
	p, err := spots.NewBuilder(salesareatest.Index()).Build(doc.Details, 278)
	require.NoError(t, err)
	require.Len(t, p.SpotPreBookingDetails, 2)
	return doc, p
}

// ----------------------------------------------------------------------------
// ParseResponse
// ----------------------------------------------------------------------------

const lineResponse = `[
	{"campaignNumber": 278, "lineNumber": 1, "messages": [
		{"type": "urn:ok", "title": "Saved", "status": 201, "detail": "ok"}
	]},
	{"campaignNumber": 278, "lineNumber": 2, "messages": [
		{"type": "urn:lmks:bll:23774", "title": "Validation/Save failed", "status": 422, "detail": "Schedule Date cannot be outside the Campaign date range"},
		{"type": "urn:lmks:bll:23778", "title": "Validation/Save failed", "status": 409, "detail": "Business Type Code does not exists or not valid for Campaign."}
	]}
]`

const fieldResponse = `{
	"SpotPreBookingDetails[1].SpotSalesAreaCode": ["The field SpotSalesAreaCode must be a string with a minimum length of 2 and a maximum length of 2."],
	"SpotPreBookingDetails[0].BreakSalesAreaCode": ["The BreakSalesAreaCode field is required."],
	"SpotPreBookingDetails[1].Length": "Length must be positive."
}`

func TestParseResponse_Shape(t *testing.T) {
	r, err := report.ParseResponse([]byte(lineResponse))
	require.NoError(t, err)
	assert.IsType(t, report.LineMessages{}, r)

	r, err = report.ParseResponse([]byte("  " + fieldResponse))
	require.NoError(t, err)
	fm, ok := r.(report.FieldValidationMap)
	require.True(t, ok)
	assert.Equal(t, report.FieldValidationMap{
		{Index: 1, Field: "SpotSalesAreaCode", Messages: []string{"The field SpotSalesAreaCode must be a string with a minimum length of 2 and a maximum length of 2."}},
		{Index: 0, Field: "BreakSalesAreaCode", Messages: []string{"The BreakSalesAreaCode field is required."}},
		{Index: 1, Field: "Length", Messages: []string{"Length must be positive."}},
	}, fm, "document order is kept")

	for _, bad := range []string{"", "  ", `"text"`, `42`} {
		_, err := report.ParseResponse([]byte(bad))
		assert.ErrorIs(t, err, report.ErrResponseShape, "%q", bad)
	}

	_, err = report.ParseResponse([]byte(`{"Campaign.Name": ["required"]}`))
	assert.ErrorContains(t, err, "does not match regular expression")
}

func TestLineMessages_StatusDetails(t *testing.T) {
	_, page := fixture(t)
	r, err := report.ParseResponse([]byte(lineResponse))
	require.NoError(t, err)

	statuses, overall, err := r.StatusDetails(page)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPartial, overall)
	assert.Equal(t, map[int]domain.SpotStatus{
		1: {
			Title:  "Validation/Save failed;Validation/Save failed",
			Status: 422,
			Msg:    "Schedule Date cannot be outside the Campaign date range;Business Type Code does not exists or not valid for Campaign.",
		},
	}, statuses)
}

func TestLineMessages_Overall(t *testing.T) {
	_, page := fixture(t)
	ok := report.Message{Status: 200}
	bad := report.Message{Status: 500, Title: "x", Detail: "y"}
	cases := []struct {
		name string
		resp report.LineMessages
		want domain.OverallStatus
	}{
		{"all ok", report.LineMessages{{LineNumber: 1, Messages: []report.Message{ok}}}, domain.StatusYes},
		{"all failed", report.LineMessages{{LineNumber: 1, Messages: []report.Message{bad}}}, domain.StatusNo},
		{"mixed", report.LineMessages{{LineNumber: 1, Messages: []report.Message{ok}}, {LineNumber: 2, Messages: []report.Message{bad}}}, domain.StatusPartial},
		{"empty", report.LineMessages{}, domain.StatusNo},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, got, err := tc.resp.StatusDetails(page)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestLineMessages_UnknownLine(t *testing.T) {
	_, page := fixture(t)
	resp := report.LineMessages{{LineNumber: 9, Messages: []report.Message{{Status: 422}}}}
	_, _, err := resp.StatusDetails(page)
	assert.ErrorContains(t, err, "response line 9")
}

func TestFieldValidationMap_StatusDetails(t *testing.T) {
	_, page := fixture(t)
	r, err := report.ParseResponse([]byte(fieldResponse))
	require.NoError(t, err)

	statuses, overall, err := r.StatusDetails(page)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusNo, overall)
	assert.Equal(t, domain.SpotStatus{
		Title:  "Validation Error",
		Status: 400,
		Msg:    "SpotSalesAreaCode: The field SpotSalesAreaCode must be a string with a minimum length of 2 and a maximum length of 2.\nLength: Length must be positive.",
	}, statuses[1])
	assert.Equal(t, "BreakSalesAreaCode: The BreakSalesAreaCode field is required.", statuses[0].Msg)
}

// ----------------------------------------------------------------------------
// Rows and writers
// ----------------------------------------------------------------------------

func TestBuild_JoinsSourceDetail(t *testing.T) {
	doc, page := fixture(t)
	r, err := report.ParseResponse([]byte(fieldResponse))
	require.NoError(t, err)

	pr, err := report.Build(doc, page, r)
	require.NoError(t, err)
	require.Len(t, pr.Rows, 2)

	assert.Equal(t, "STATION SYD7", pr.Rows[0].StationName, "multi-part line joins its TP record")
	assert.Equal(t, 30, pr.Rows[0].Duration)

	second := pr.Rows[1]
	assert.Equal(t, "MELBOURNE", second.StationName, "second line joins detail 4, not detail 2")
	assert.Equal(t, "ACME MEDIA", second.AgencyName)
	assert.Equal(t, "20240115", second.WCDate)
	assert.Equal(t, "ABCD", second.BookingModifiers)
	assert.Equal(t, 45, second.Duration)
	assert.Equal(t, 400, second.Status)
}

func TestRows_IndexOutOfRange(t *testing.T) {
	doc, page := fixture(t)
	_, err := report.Rows(doc, page, map[int]domain.SpotStatus{5: {}})
	assert.ErrorContains(t, err, "payload index 5")
}

func TestFileName(t *testing.T) {
	day := time.Date(2024, 1, 30, 10, 16, 59, 0, time.UTC)
	assert.Equal(t, "SpotFailure-00002197-OP12345-2024-01-30-2.csv", report.FileName("00002197", 12345, day, 2))
}

func TestWriteCSV(t *testing.T) {
	doc, page := fixture(t)
	rows, err := report.Rows(doc, page, map[int]domain.SpotStatus{1: {Title: "t", Status: 422, Msg: "a, b"}})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, report.WriteCSV(&buf, rows))

	recs, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, domain.ReportColumns, recs[0])
	assert.Equal(t, []string{
		"ACME MEDIA", "ACME FOODS", "CRUNCHY FLAKES", "MELBOURNE", "20240115",
		"NNYNNNN", "18302000", "EVENING NEWS", "45", "375", "P25-54", "23.1", "12.5",
		"AGSPOT20240115", "ABCD", "t", "422", "a, b",
	}, recs[1])
}

func TestWriteXLSX(t *testing.T) {
	doc, page := fixture(t)
	rows, err := report.Rows(doc, page, map[int]domain.SpotStatus{0: {Title: "t", Status: 400, Msg: "m"}})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, report.WriteXLSX(&buf, rows))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	got, err := f.GetRows(report.SheetName)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, domain.ReportColumns, got[0])
	assert.Equal(t, "STATION SYD7", got[1][3])
	assert.Equal(t, "30", got[1][8])
	assert.Equal(t, "m", got[1][17])
}
