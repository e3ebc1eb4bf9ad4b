// Package brqtest builds BRQ documents and file text for tests.
package brqtest

import (
	"github.com/csg33k/brq-ebookings/internal/adapters/brq"
	"github.com/csg33k/brq-ebookings/internal/domain"
)

// Header returns a populated header for n details and no narratives.
func Header(n int) domain.Header {
	return domain.Header{
		GenerationDate:              "20240102",
		GenerationTime:              "0930",
		NetworkId:                   "NET001",
		NetworkName:                 "SEVEN NETWORK",
		AgencyId:                    "AG0001",
		AgencyName:                  "ACME MEDIA",
		BookingDetailRecordCounter:  n,
		BookingTotalGrossValue:      0,
		ProposedDetailRecordCounter: n,
		ProposedTotalGrossValue:     float64(n) * 375,
		NetworkDomainName:           "seven.example.com",
		NetworkContactName:          "NET CONTACT",
		NetworkContactEmail:         "net@seven.example.com",
		AgencyDomainName:            "acme.example.com",
		AgencyContactName:           "AGENCY CONTACT",
		AgencyContactEmail:          "buyer@acme.example.com",
	}
}

// Detail returns a well-formed booking line on station for week wc
// (YYYYMMDD), size seconds long, carrying the given modifier tokens.
func Detail(station, wc string, size int, modifiers ...string) domain.Detail {
	if modifiers == nil {
		modifiers = []string{}
	}
	return domain.Detail{
		ClientId:                   "CL0001",
		ClientName:                 "ACME FOODS",
		ClientProductId:            "PR0001",
		ClientProductName:          "CRUNCHY FLAKES",
		StationId:                  station,
		StationName:                "STATION " + station,
		UniqueAgencyProposedSpotId: "AGSPOT" + wc,
		WCDate:                     wc,
		ProposedDay:                "YYYYYNN",
		ProposedStartEndTime:       "18002200",
		RequestedDay:               "NNYNNNN",
		RequestedTime:              "18302000",
		ProposedSize:               size,
		ProposedGrossRate:          375,
		ProposedNetRate:            318.75,
		RequestedSize:              size,
		RequestedGrossRate:         375,
		RequestedNetRate:           318.75,
		ProposedProgram:            "EVENING NEWS",
		RequestedProgram:           "EVENING NEWS",
		KeyNumber:                  "KEY123",
		DemographicOneThousand:     12.5,
		RecordType:                 "01",
		DemographicCodeOne:         "P25-54",
		DemographicOneTarp:         23.1,
		BookingModifiers:           modifiers,
	}
}

// Document wraps details with a header whose counters match.
func Document(details ...domain.Detail) *domain.Document {
	return &domain.Document{
		Header:           Header(len(details)),
		NarrativeRecords: []string{},
		Details:          details,
	}
}

// File renders details as complete BRQ file text.
func File(details ...domain.Detail) string {
	return brq.Encode(Document(details...))
}
