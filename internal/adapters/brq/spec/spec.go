// Package spec defines the BRQ booking-request record layouts.
//
// A BRQ file is newline separated:
//
//	line 1          header, exactly 418 characters
//	next N lines    narrative records, N = header NarrativeRecordCounter
//	following lines detail records, at least 620 characters, ending in "//"
//	last line       "EOF//"
//
// Column ranges below are zero-based and half-open.
package spec

import "github.com/csg33k/brq-ebookings/internal/adapters/fixedwidth"

const (
	HeaderLen     = 418
	DetailMinLen  = 620
	EOFMarker     = "EOF//"
	Terminator    = "//"
	DateLayout    = "20060102"
	ModifierWidth = 2
)

// Booking modifier tokens used for multi-part spots.
const (
	ModifierMultipartParent = "TP"
	ModifierMultipartMiddle = "MD"
	ModifierMultipartTail   = "TA"
)

// Header is the layout of the first line.
var Header = []fixedwidth.Field{
	{Name: "GenerationDate", Start: 0, End: 8, Kind: fixedwidth.Text, Description: "YYYYMMDD"},
	{Name: "GenerationTime", Start: 8, End: 12, Kind: fixedwidth.Text, Description: "HHMM"},
	{Name: "NetworkId", Start: 12, End: 18, Kind: fixedwidth.Text},
	{Name: "NetworkName", Start: 18, End: 58, Kind: fixedwidth.Text},
	{Name: "AgencyId", Start: 58, End: 64, Kind: fixedwidth.Text},
	{Name: "AgencyName", Start: 64, End: 104, Kind: fixedwidth.Text},
	{Name: "BookingDetailRecordCounter", Start: 104, End: 110, Kind: fixedwidth.Integer},
	{Name: "BookingTotalGrossValue", Start: 110, End: 120, Kind: fixedwidth.Money},
	{Name: "ProposedDetailRecordCounter", Start: 120, End: 126, Kind: fixedwidth.Integer},
	{Name: "ProposedTotalGrossValue", Start: 126, End: 136, Kind: fixedwidth.Money},
	{Name: "NarrativeRecordCounter", Start: 136, End: 138, Kind: fixedwidth.Integer},
	{Name: "NetworkDomainName", Start: 138, End: 178, Kind: fixedwidth.Text},
	{Name: "NetworkContactName", Start: 178, End: 208, Kind: fixedwidth.Text},
	{Name: "NetworkContactEmail", Start: 208, End: 278, Kind: fixedwidth.Text},
	{Name: "AgencyDomainName", Start: 278, End: 318, Kind: fixedwidth.Text},
	{Name: "AgencyContactName", Start: 318, End: 348, Kind: fixedwidth.Text},
	{Name: "AgencyContactEmail", Start: 348, End: 418, Kind: fixedwidth.Text},
}

// Detail is the layout of one booking line. BookingModifiers runs to the end
// of the line and includes the "//" terminator, which its conversion drops.
var Detail = []fixedwidth.Field{
	{Name: "ClientId", Start: 0, End: 6, Kind: fixedwidth.Text},
	{Name: "ClientName", Start: 6, End: 46, Kind: fixedwidth.Text},
	{Name: "ClientProductId", Start: 46, End: 52, Kind: fixedwidth.Text},
	{Name: "ClientProductName", Start: 52, End: 92, Kind: fixedwidth.Text},
	{Name: "StationId", Start: 92, End: 98, Kind: fixedwidth.Text, Description: "BCC code; key into the sales area mapping"},
	{Name: "StationName", Start: 98, End: 138, Kind: fixedwidth.Text},
	{Name: "UniqueNetworkProposedSpotId", Start: 138, End: 158, Kind: fixedwidth.Text},
	{Name: "UniqueNetworkPreviousSpotId", Start: 158, End: 178, Kind: fixedwidth.Text},
	{Name: "UniqueNetworkParentSpotId", Start: 178, End: 198, Kind: fixedwidth.Text},
	{Name: "UniqueAgencyProposedSpotId", Start: 198, End: 218, Kind: fixedwidth.Text},
	{Name: "UniqueAgencyPreviousSpotId", Start: 218, End: 238, Kind: fixedwidth.Text},
	{Name: "UniqueAgencyParentSpotId", Start: 238, End: 258, Kind: fixedwidth.Text},
	{Name: "WCDate", Start: 258, End: 266, Kind: fixedwidth.Text, Description: "week commencing, YYYYMMDD"},
	{Name: "ProposedDay", Start: 266, End: 273, Kind: fixedwidth.Text, Description: "Y/N mask, Monday first"},
	{Name: "ProposedStartEndTime", Start: 273, End: 281, Kind: fixedwidth.Text, Description: "HHMMHHMM"},
	{Name: "RequestedDay", Start: 281, End: 288, Kind: fixedwidth.Text, Description: "Y/N mask, Monday first"},
	{Name: "RequestedTime", Start: 288, End: 296, Kind: fixedwidth.Text, Description: "HHMMHHMM"},
	{Name: "ProposedSize", Start: 296, End: 304, Kind: fixedwidth.Integer, Description: "seconds"},
	{Name: "ProposedGrossRate", Start: 304, End: 314, Kind: fixedwidth.Money},
	{Name: "ProposedNetRate", Start: 314, End: 324, Kind: fixedwidth.Money},
	{Name: "RequestedSize", Start: 324, End: 332, Kind: fixedwidth.Integer, Description: "seconds"},
	{Name: "RequestedGrossRate", Start: 332, End: 342, Kind: fixedwidth.Money},
	{Name: "RequestedNetRate", Start: 342, End: 352, Kind: fixedwidth.Money},
	{Name: "ProposedProgram", Start: 352, End: 392, Kind: fixedwidth.Text},
	{Name: "RequestedProgram", Start: 392, End: 432, Kind: fixedwidth.Text},
	{Name: "KeyNumber", Start: 432, End: 452, Kind: fixedwidth.Text},
	{Name: "MaterialInstruction", Start: 452, End: 512, Kind: fixedwidth.Text},
	{Name: "DemographicOneThousand", Start: 512, End: 519, Kind: fixedwidth.Decimal},
	{Name: "DemographicTwoThousand", Start: 519, End: 526, Kind: fixedwidth.Decimal},
	{Name: "DemographicThreeThousand", Start: 526, End: 533, Kind: fixedwidth.Decimal},
	{Name: "DemographicFourThousand", Start: 533, End: 540, Kind: fixedwidth.Decimal},
	{Name: "RecordType", Start: 540, End: 542, Kind: fixedwidth.Text},
	{Name: "RatingsOverrideFlag1", Start: 542, End: 543, Kind: fixedwidth.Text},
	{Name: "RatingsOverrideFlag2", Start: 543, End: 544, Kind: fixedwidth.Text},
	{Name: "RatingsOverrideFlag3", Start: 544, End: 545, Kind: fixedwidth.Text},
	{Name: "RatingsOverrideFlag4", Start: 545, End: 546, Kind: fixedwidth.Text},
	{Name: "DemographicCodeOne", Start: 546, End: 561, Kind: fixedwidth.Text},
	{Name: "DemographicOneTarp", Start: 561, End: 564, Kind: fixedwidth.Tarp},
	{Name: "DemographicCodeTwo", Start: 564, End: 579, Kind: fixedwidth.Text},
	{Name: "DemographicTwoTarp", Start: 579, End: 582, Kind: fixedwidth.Tarp},
	{Name: "DemographicCodeThree", Start: 582, End: 597, Kind: fixedwidth.Text},
	{Name: "DemographicThreeTarp", Start: 597, End: 600, Kind: fixedwidth.Tarp},
	{Name: "DemographicCodeFour", Start: 600, End: 615, Kind: fixedwidth.Text},
	{Name: "DemographicFourTarp", Start: 615, End: 618, Kind: fixedwidth.Tarp},
	{Name: "BookingModifiers", Start: 618, End: fixedwidth.ToEnd, Kind: fixedwidth.Modifiers},
}
