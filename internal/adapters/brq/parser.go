// Package brq reads and writes BRQ booking-request files.
package brq

import (
	"errors"
	"fmt"
	"strings"

	"github.com/csg33k/brq-ebookings/internal/adapters/brq/spec"
	"github.com/csg33k/brq-ebookings/internal/adapters/fixedwidth"
	"github.com/csg33k/brq-ebookings/internal/domain"
)

// ErrFormat matches every structural failure returned by Parse.
var ErrFormat = errors.New("brq: format error")

// FormatError is a fatal structural problem with a BRQ file. Line is the
// 1-based line number in the file the check failed on.
type FormatError struct {
	Line int
	Msg  string
}

func (e *FormatError) Error() string { return e.Msg }

func (e *FormatError) Is(target error) bool { return target == ErrFormat }

// Lines splits file text into lines. CRLF is treated as LF and a trailing
// newline does not produce an empty last line.
func Lines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

// Parse validates the structure of a BRQ file and decodes it.
//
// Only the structural checks fail: header length, the EOF marker, and each
// detail line's length and terminator. Field values that cannot be converted
// are zero-filled and reported in Document.Diagnostics.
func Parse(text string) (*domain.Document, error) {
	lines := Lines(text)
	if len(lines) < 2 || charLen(lines[0]) != spec.HeaderLen {
		return nil, &FormatError{Line: 1, Msg: fmt.Sprintf("Header line must be %d character length.", spec.HeaderLen)}
	}
	last := len(lines) - 1
	if lines[last] != spec.EOFMarker {
		return nil, &FormatError{Line: last + 1, Msg: fmt.Sprintf("Last line must be '%s'.", spec.EOFMarker)}
	}

	doc := &domain.Document{}
	rec, failures := fixedwidth.Decode(lines[0], spec.Header)
	doc.Diagnostics = appendFailures(doc.Diagnostics, 1, failures)
	doc.Header = headerFromRecord(rec)

	// Narratives never swallow the EOF line, whatever the header claims.
	nNarr := doc.Header.NarrativeRecordCounter
	if nNarr < 0 {
		nNarr = 0
	}
	if 1+nNarr > last {
		nNarr = last - 1
	}
	doc.NarrativeRecords = append([]string{}, lines[1:1+nNarr]...)

	body := lines[1+nNarr : last]
	doc.Details = make([]domain.Detail, 0, len(body))
	for i, line := range body {
		n := i + 1
		lineNo := 2 + nNarr + i
		if err := checkDetail(n, lineNo, line); err != nil {
			return nil, err
		}
		rec, failures := fixedwidth.Decode(line, spec.Detail)
		doc.Diagnostics = appendFailures(doc.Diagnostics, lineNo, failures)
		doc.Details = append(doc.Details, detailFromRecord(rec))
	}
	return doc, nil
}

func checkDetail(n, lineNo int, line string) error {
	if charLen(line) < spec.DetailMinLen {
		return &FormatError{Line: lineNo, Msg: fmt.Sprintf("Detail line #%d has less then %d characters.", n, spec.DetailMinLen)}
	}
	if !strings.HasSuffix(line, spec.Terminator) {
		return &FormatError{Line: lineNo, Msg: fmt.Sprintf("Detail line #%d is not end with '%s'.", n, spec.Terminator)}
	}
	return nil
}

func charLen(s string) int { return len([]rune(s)) }

func appendFailures(dst []domain.ConversionFailure, line int, src []fixedwidth.ConversionFailure) []domain.ConversionFailure {
	for _, f := range src {
		dst = append(dst, domain.ConversionFailure{Line: line, Field: f.Field, Kind: f.Kind, Raw: f.Raw})
	}
	return dst
}

func headerFromRecord(r fixedwidth.Record) domain.Header {
	return domain.Header{
		GenerationDate:              r.Text("GenerationDate"),
		GenerationTime:              r.Text("GenerationTime"),
		NetworkId:                   r.Text("NetworkId"),
		NetworkName:                 r.Text("NetworkName"),
		AgencyId:                    r.Text("AgencyId"),
		AgencyName:                  r.Text("AgencyName"),
		BookingDetailRecordCounter:  r.Int("BookingDetailRecordCounter"),
		BookingTotalGrossValue:      r.Float("BookingTotalGrossValue"),
		ProposedDetailRecordCounter: r.Int("ProposedDetailRecordCounter"),
		ProposedTotalGrossValue:     r.Float("ProposedTotalGrossValue"),
		NarrativeRecordCounter:      r.Int("NarrativeRecordCounter"),
		NetworkDomainName:           r.Text("NetworkDomainName"),
		NetworkContactName:          r.Text("NetworkContactName"),
		NetworkContactEmail:         r.Text("NetworkContactEmail"),
		AgencyDomainName:            r.Text("AgencyDomainName"),
		AgencyContactName:           r.Text("AgencyContactName"),
		AgencyContactEmail:          r.Text("AgencyContactEmail"),
	}
}

func detailFromRecord(r fixedwidth.Record) domain.Detail {
	return domain.Detail{
		ClientId:                    r.Text("ClientId"),
		ClientName:                  r.Text("ClientName"),
		ClientProductId:             r.Text("ClientProductId"),
		ClientProductName:           r.Text("ClientProductName"),
		StationId:                   r.Text("StationId"),
		StationName:                 r.Text("StationName"),
		UniqueNetworkProposedSpotId: r.Text("UniqueNetworkProposedSpotId"),
		UniqueNetworkPreviousSpotId: r.Text("UniqueNetworkPreviousSpotId"),
		UniqueNetworkParentSpotId:   r.Text("UniqueNetworkParentSpotId"),
		UniqueAgencyProposedSpotId:  r.Text("UniqueAgencyProposedSpotId"),
		UniqueAgencyPreviousSpotId:  r.Text("UniqueAgencyPreviousSpotId"),
		UniqueAgencyParentSpotId:    r.Text("UniqueAgencyParentSpotId"),
		WCDate:                      r.Text("WCDate"),
		ProposedDay:                 r.Text("ProposedDay"),
		ProposedStartEndTime:        r.Text("ProposedStartEndTime"),
		RequestedDay:                r.Text("RequestedDay"),
		RequestedTime:               r.Text("RequestedTime"),
		ProposedSize:                r.Int("ProposedSize"),
		ProposedGrossRate:           r.Float("ProposedGrossRate"),
		ProposedNetRate:             r.Float("ProposedNetRate"),
		RequestedSize:               r.Int("RequestedSize"),
		RequestedGrossRate:          r.Float("RequestedGrossRate"),
		RequestedNetRate:            r.Float("RequestedNetRate"),
		ProposedProgram:             r.Text("ProposedProgram"),
		RequestedProgram:            r.Text("RequestedProgram"),
		KeyNumber:                   r.Text("KeyNumber"),
		MaterialInstruction:         r.Text("MaterialInstruction"),
		DemographicOneThousand:      r.Float("DemographicOneThousand"),
		DemographicTwoThousand:      r.Float("DemographicTwoThousand"),
		DemographicThreeThousand:    r.Float("DemographicThreeThousand"),
		DemographicFourThousand:     r.Float("DemographicFourThousand"),
		RecordType:                  r.Text("RecordType"),
		RatingsOverrideFlag1:        r.Text("RatingsOverrideFlag1"),
		RatingsOverrideFlag2:        r.Text("RatingsOverrideFlag2"),
		RatingsOverrideFlag3:        r.Text("RatingsOverrideFlag3"),
		RatingsOverrideFlag4:        r.Text("RatingsOverrideFlag4"),
		DemographicCodeOne:          r.Text("DemographicCodeOne"),
		DemographicOneTarp:          r.Float("DemographicOneTarp"),
		DemographicCodeTwo:          r.Text("DemographicCodeTwo"),
		DemographicTwoTarp:          r.Float("DemographicTwoTarp"),
		DemographicCodeThree:        r.Text("DemographicCodeThree"),
		DemographicThreeTarp:        r.Float("DemographicThreeTarp"),
		DemographicCodeFour:         r.Text("DemographicCodeFour"),
		DemographicFourTarp:         r.Float("DemographicFourTarp"),
		BookingModifiers:            r.Tokens("BookingModifiers"),
	}
}
