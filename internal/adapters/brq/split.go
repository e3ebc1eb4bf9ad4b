package brq

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/csg33k/brq-ebookings/internal/adapters/brq/spec"
	"github.com/csg33k/brq-ebookings/internal/domain"
)

// LastSaturdayOfYear is the default year-end split threshold.
func LastSaturdayOfYear(year int) time.Time {
	d := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)
	for d.Weekday() != time.Saturday {
		d = d.AddDate(0, 0, -1)
	}
	return d
}

// ParseWCDate parses a YYYYMMDD week-commencing date.
func ParseWCDate(s string) (time.Time, error) {
	return time.Parse(spec.DateLayout, s)
}

// SplitAtThreshold partitions doc at a year-end boundary. A detail whose
// week (WCDate plus 6 days) ends after threshold goes to after; every other
// detail goes to before. split is false, and both results nil, unless both
// sides are non-empty.
//
// Each side gets its own header copy with ProposedDetailRecordCounter and
// ProposedTotalGrossValue recomputed from the details it holds.
func SplitAtThreshold(doc *domain.Document, threshold time.Time) (before, after *domain.Document, split bool, err error) {
	var first, second []domain.Detail
	for i, d := range doc.Details {
		wc, err := ParseWCDate(d.WCDate)
		if err != nil {
			return nil, nil, false, fmt.Errorf("detail %d: invalid WCDate %q: %w", i+1, d.WCDate, err)
		}
		if wc.AddDate(0, 0, 6).After(threshold) {
			second = append(second, d)
		} else {
			first = append(first, d)
		}
	}
	if len(first) == 0 || len(second) == 0 {
		return nil, nil, false, nil
	}
	return child(doc, first), child(doc, second), true, nil
}

func child(doc *domain.Document, details []domain.Detail) *domain.Document {
	h := doc.Header
	h.ProposedDetailRecordCounter = len(details)
	total := decimal.Zero
	for _, d := range details {
		total = total.Add(decimal.NewFromFloat(d.RequestedGrossRate))
	}
	h.ProposedTotalGrossValue = total.Round(2).InexactFloat64()
	return &domain.Document{
		Header:           h,
		NarrativeRecords: append([]string{}, doc.NarrativeRecords...),
		Details:          details,
	}
}

// SplitFileName names the n-th child file of a split: "a.brq" -> "a-1.brq".
func SplitFileName(name string, n int) string {
	base := strings.TrimSuffix(name, ".brq")
	base = strings.TrimSuffix(base, ".BRQ")
	return fmt.Sprintf("%s-%d.brq", base, n)
}
