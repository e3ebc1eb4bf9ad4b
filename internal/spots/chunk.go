package spots

import (
	"fmt"

	"github.com/csg33k/brq-ebookings/internal/domain"
)

// Page is one stored slice of a spot payload.
type Page struct {
	Key     string
	Payload domain.SpotPayload
}

// Paginate splits p into pages of at most limit lines. A payload within the
// limit is a single page keyed "<correlationID>/spots_payload.json";
// otherwise pages are keyed "<correlationID>/tranche/spots_payload_<n>.json"
// from n = 1. Every page carries the payload's timestamp. A limit below 1
// disables paging.
func Paginate(correlationID string, p *domain.SpotPayload, limit int) []Page {
	lines := p.SpotPreBookingDetails
	if limit < 1 || len(lines) <= limit {
		return []Page{{
			Key:     correlationID + "/spots_payload.json",
			Payload: *p,
		}}
	}
	pages := make([]Page, 0, (len(lines)+limit-1)/limit)
	for start := 0; start < len(lines); start += limit {
		end := min(start+limit, len(lines))
		pages = append(pages, Page{
			Key: fmt.Sprintf("%s/tranche/spots_payload_%d.json", correlationID, len(pages)+1),
			Payload: domain.SpotPayload{
				DateTimeStamp:         p.DateTimeStamp,
				SpotPreBookingDetails: lines[start:end],
			},
		})
	}
	return pages
}

// Tranched reports whether pages came from a split payload.
func Tranched(pages []Page) bool {
	return len(pages) > 1
}
