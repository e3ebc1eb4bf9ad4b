package pdf_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/csg33k/brq-ebookings/internal/adapters/brq/brqtest"
	"github.com/csg33k/brq-ebookings/internal/adapters/pdf"
	"github.com/csg33k/brq-ebookings/internal/campaign"
	"github.com/csg33k/brq-ebookings/internal/domain"
	"github.com/csg33k/brq-ebookings/internal/salesarea/salesareatest"
)

func TestGenerateSummary(t *testing.T) {
	doc := brqtest.Document(
		brqtest.Detail("SYD7", "20240108", 30),
		brqtest.Detail("MEL7", "20240115", 15),
		brqtest.Detail("PER7", "20240108", 30),
	)
	h, err := campaign.New(salesareatest.Index(), "DP1", nil).Aggregate(doc.Details)
	require.NoError(t, err)

	cases := []struct {
		name     string
		failures []domain.ReportRow
	}{
		{"header only", nil},
		{"with failures", []domain.ReportRow{{
			StationName: "STATION SYD7",
			WCDate:      "20240108",
			Duration:    30,
			Status:      422,
			Detail:      "Schedule Date cannot be outside the Campaign date range; a very long explanation that will not fit in the detail column",
		}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, pdf.GenerateSummary(&buf, doc, h, tc.failures))
			assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
			assert.Greater(t, buf.Len(), 1000)
		})
	}
}

func TestGenerateSummary_ManyFailuresPaginate(t *testing.T) {
	doc := brqtest.Document(brqtest.Detail("SYD7", "20240108", 30))
	h, err := campaign.New(salesareatest.Index(), "DP1", nil).Aggregate(doc.Details)
	require.NoError(t, err)

	failures := make([]domain.ReportRow, 200)
	for i := range failures {
		failures[i] = domain.ReportRow{StationName: "STATION SYD7", Status: 400, Detail: "Validation Error"}
	}
	var buf bytes.Buffer
	require.NoError(t, pdf.GenerateSummary(&buf, doc, h, failures))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}
