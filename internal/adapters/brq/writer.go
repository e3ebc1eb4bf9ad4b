package brq

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/csg33k/brq-ebookings/internal/adapters/brq/spec"
	"github.com/csg33k/brq-ebookings/internal/adapters/fixedwidth"
	"github.com/csg33k/brq-ebookings/internal/domain"
)

// EncodeHeader renders h as a 418-character header line.
func EncodeHeader(h domain.Header) string {
	return encode(spec.Header, spec.HeaderLen, map[string]any{
		"GenerationDate":              h.GenerationDate,
		"GenerationTime":              h.GenerationTime,
		"NetworkId":                   h.NetworkId,
		"NetworkName":                 h.NetworkName,
		"AgencyId":                    h.AgencyId,
		"AgencyName":                  h.AgencyName,
		"BookingDetailRecordCounter":  h.BookingDetailRecordCounter,
		"BookingTotalGrossValue":      h.BookingTotalGrossValue,
		"ProposedDetailRecordCounter": h.ProposedDetailRecordCounter,
		"ProposedTotalGrossValue":     h.ProposedTotalGrossValue,
		"NarrativeRecordCounter":      h.NarrativeRecordCounter,
		"NetworkDomainName":           h.NetworkDomainName,
		"NetworkContactName":          h.NetworkContactName,
		"NetworkContactEmail":         h.NetworkContactEmail,
		"AgencyDomainName":            h.AgencyDomainName,
		"AgencyContactName":           h.AgencyContactName,
		"AgencyContactEmail":          h.AgencyContactEmail,
	})
}

// EncodeDetail renders d as a detail line: 618 fixed characters, the
// modifier tokens, then the "//" terminator.
func EncodeDetail(d domain.Detail) string {
	return encode(spec.Detail, spec.DetailMinLen-len(spec.Terminator), map[string]any{
		"ClientId":                    d.ClientId,
		"ClientName":                  d.ClientName,
		"ClientProductId":             d.ClientProductId,
		"ClientProductName":           d.ClientProductName,
		"StationId":                   d.StationId,
		"StationName":                 d.StationName,
		"UniqueNetworkProposedSpotId": d.UniqueNetworkProposedSpotId,
		"UniqueNetworkPreviousSpotId": d.UniqueNetworkPreviousSpotId,
		"UniqueNetworkParentSpotId":   d.UniqueNetworkParentSpotId,
		"UniqueAgencyProposedSpotId":  d.UniqueAgencyProposedSpotId,
		"UniqueAgencyPreviousSpotId":  d.UniqueAgencyPreviousSpotId,
		"UniqueAgencyParentSpotId":    d.UniqueAgencyParentSpotId,
		"WCDate":                      d.WCDate,
		"ProposedDay":                 d.ProposedDay,
		"ProposedStartEndTime":        d.ProposedStartEndTime,
		"RequestedDay":                d.RequestedDay,
		"RequestedTime":               d.RequestedTime,
		"ProposedSize":                d.ProposedSize,
		"ProposedGrossRate":           d.ProposedGrossRate,
		"ProposedNetRate":             d.ProposedNetRate,
		"RequestedSize":               d.RequestedSize,
		"RequestedGrossRate":          d.RequestedGrossRate,
		"RequestedNetRate":            d.RequestedNetRate,
		"ProposedProgram":             d.ProposedProgram,
		"RequestedProgram":            d.RequestedProgram,
		"KeyNumber":                   d.KeyNumber,
		"MaterialInstruction":         d.MaterialInstruction,
		"DemographicOneThousand":      d.DemographicOneThousand,
		"DemographicTwoThousand":      d.DemographicTwoThousand,
		"DemographicThreeThousand":    d.DemographicThreeThousand,
		"DemographicFourThousand":     d.DemographicFourThousand,
		"RecordType":                  d.RecordType,
		"RatingsOverrideFlag1":        d.RatingsOverrideFlag1,
		"RatingsOverrideFlag2":        d.RatingsOverrideFlag2,
		"RatingsOverrideFlag3":        d.RatingsOverrideFlag3,
		"RatingsOverrideFlag4":        d.RatingsOverrideFlag4,
		"DemographicCodeOne":          d.DemographicCodeOne,
		"DemographicOneTarp":          d.DemographicOneTarp,
		"DemographicCodeTwo":          d.DemographicCodeTwo,
		"DemographicTwoTarp":          d.DemographicTwoTarp,
		"DemographicCodeThree":        d.DemographicCodeThree,
		"DemographicThreeTarp":        d.DemographicThreeTarp,
		"DemographicCodeFour":         d.DemographicCodeFour,
		"DemographicFourTarp":         d.DemographicFourTarp,
		"BookingModifiers":            d.BookingModifiers,
	})
}

// Encode renders a whole file: header, narratives, details and the EOF
// marker, newline separated with a trailing newline.
func Encode(doc *domain.Document) string {
	var b strings.Builder
	b.WriteString(EncodeHeader(doc.Header))
	b.WriteByte('\n')
	for _, n := range doc.NarrativeRecords {
		b.WriteString(n)
		b.WriteByte('\n')
	}
	for _, d := range doc.Details {
		b.WriteString(EncodeDetail(d))
		b.WriteByte('\n')
	}
	b.WriteString(spec.EOFMarker)
	b.WriteByte('\n')
	return b.String()
}

// encode writes every field of layout from values. A missing value or a
// value of the wrong type for the field's kind is a writer bug and panics.
func encode(layout []fixedwidth.Field, width int, values map[string]any) string {
	line := fixedwidth.NewLine(width)
	for _, f := range layout {
		v, ok := values[f.Name]
		if !ok {
			panic(fmt.Sprintf("brq: no value for field %q — writer bug", f.Name))
		}
		line.PutField(f, format(f, v))
	}
	return line.String()
}

func format(f fixedwidth.Field, v any) string {
	switch f.Kind {
	case fixedwidth.Text:
		return fixedwidth.PadText(v.(string), f.Len())
	case fixedwidth.Integer:
		return fixedwidth.FormatInt(v.(int), f.Len())
	case fixedwidth.Decimal:
		if x := v.(float64); x != 0 {
			return fixedwidth.PadText(strconv.FormatFloat(x, 'f', -1, 64), f.Len())
		}
		return strings.Repeat(" ", f.Len())
	case fixedwidth.Money:
		return fixedwidth.FormatMoney(v.(float64), f.Len())
	case fixedwidth.Tarp:
		return fixedwidth.FormatTarp(v.(float64), f.Len())
	case fixedwidth.Modifiers:
		return fixedwidth.FormatModifiers(v.([]string), spec.Terminator)
	default:
		panic(fmt.Sprintf("brq: field %q has unknown kind %v", f.Name, f.Kind))
	}
}
