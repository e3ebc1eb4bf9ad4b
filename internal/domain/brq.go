package domain

import "time"

// Header is the decoded first line of a BRQ file. JSON keys are the BRQ
// field names; the persisted document uses them verbatim.
type Header struct {
	GenerationDate              string  `json:"GenerationDate"`
	GenerationTime              string  `json:"GenerationTime"`
	NetworkId                   string  `json:"NetworkId"`
	NetworkName                 string  `json:"NetworkName"`
	AgencyId                    string  `json:"AgencyId"`
	AgencyName                  string  `json:"AgencyName"`
	BookingDetailRecordCounter  int     `json:"BookingDetailRecordCounter"`
	BookingTotalGrossValue      float64 `json:"BookingTotalGrossValue"`
	ProposedDetailRecordCounter int     `json:"ProposedDetailRecordCounter"`
	ProposedTotalGrossValue     float64 `json:"ProposedTotalGrossValue"`
	NarrativeRecordCounter      int     `json:"NarrativeRecordCounter"`
	NetworkDomainName           string  `json:"NetworkDomainName"`
	NetworkContactName          string  `json:"NetworkContactName"`
	NetworkContactEmail         string  `json:"NetworkContactEmail"`
	AgencyDomainName            string  `json:"AgencyDomainName"`
	AgencyContactName           string  `json:"AgencyContactName"`
	AgencyContactEmail          string  `json:"AgencyContactEmail"`
}

// Detail is one decoded booking line.
type Detail struct {
	ClientId                    string   `json:"ClientId"`
	ClientName                  string   `json:"ClientName"`
	ClientProductId             string   `json:"ClientProductId"`
	ClientProductName           string   `json:"ClientProductName"`
	StationId                   string   `json:"StationId"`
	StationName                 string   `json:"StationName"`
	UniqueNetworkProposedSpotId string   `json:"UniqueNetworkProposedSpotId"`
	UniqueNetworkPreviousSpotId string   `json:"UniqueNetworkPreviousSpotId"`
	UniqueNetworkParentSpotId   string   `json:"UniqueNetworkParentSpotId"`
	UniqueAgencyProposedSpotId  string   `json:"UniqueAgencyProposedSpotId"`
	UniqueAgencyPreviousSpotId  string   `json:"UniqueAgencyPreviousSpotId"`
	UniqueAgencyParentSpotId    string   `json:"UniqueAgencyParentSpotId"`
	WCDate                      string   `json:"WCDate"`
	ProposedDay                 string   `json:"ProposedDay"`
	ProposedStartEndTime        string   `json:"ProposedStartEndTime"`
	RequestedDay                string   `json:"RequestedDay"`
	RequestedTime               string   `json:"RequestedTime"`
	ProposedSize                int      `json:"ProposedSize"`
	ProposedGrossRate           float64  `json:"ProposedGrossRate"`
	ProposedNetRate             float64  `json:"ProposedNetRate"`
	RequestedSize               int      `json:"RequestedSize"`
	RequestedGrossRate          float64  `json:"RequestedGrossRate"`
	RequestedNetRate            float64  `json:"RequestedNetRate"`
	ProposedProgram             string   `json:"ProposedProgram"`
	RequestedProgram            string   `json:"RequestedProgram"`
	KeyNumber                   string   `json:"KeyNumber"`
	MaterialInstruction         string   `json:"MaterialInstruction"`
	DemographicOneThousand      float64  `json:"DemographicOneThousand"`
	DemographicTwoThousand      float64  `json:"DemographicTwoThousand"`
	DemographicThreeThousand    float64  `json:"DemographicThreeThousand"`
	DemographicFourThousand     float64  `json:"DemographicFourThousand"`
	RecordType                  string   `json:"RecordType"`
	RatingsOverrideFlag1        string   `json:"RatingsOverrideFlag1"`
	RatingsOverrideFlag2        string   `json:"RatingsOverrideFlag2"`
	RatingsOverrideFlag3        string   `json:"RatingsOverrideFlag3"`
	RatingsOverrideFlag4        string   `json:"RatingsOverrideFlag4"`
	DemographicCodeOne          string   `json:"DemographicCodeOne"`
	DemographicOneTarp          float64  `json:"DemographicOneTarp"`
	DemographicCodeTwo          string   `json:"DemographicCodeTwo"`
	DemographicTwoTarp          float64  `json:"DemographicTwoTarp"`
	DemographicCodeThree        string   `json:"DemographicCodeThree"`
	DemographicThreeTarp        float64  `json:"DemographicThreeTarp"`
	DemographicCodeFour         string   `json:"DemographicCodeFour"`
	DemographicFourTarp         float64  `json:"DemographicFourTarp"`
	BookingModifiers            []string `json:"BookingModifiers"`
}

// HasModifier reports whether the booking modifiers contain token.
func (d *Detail) HasModifier(token string) bool {
	for _, m := range d.BookingModifiers {
		if m == token {
			return true
		}
	}
	return false
}

// ConversionFailure is a field whose non-empty raw text could not be
// converted and was zero-filled. Line is 1-based within the file.
type ConversionFailure struct {
	Line  int    `json:"line"`
	Field string `json:"field"`
	Kind  string `json:"kind"`
	Raw   string `json:"raw"`
}

// Document is a parsed BRQ file. It is built once per ingestion and not
// mutated afterwards.
type Document struct {
	Header           Header              `json:"header"`
	NarrativeRecords []string            `json:"narrativeRecords"`
	Details          []Detail            `json:"details"`
	Diagnostics      []ConversionFailure `json:"diagnostics,omitempty"`
}

// FileName is the decomposed BRQ upload name
// "<fromEmail>_<name>-Request-<requestID>.brq".
type FileName struct {
	FromEmail string `json:"fromEmail"`
	RequestID string `json:"brqRequestID"`
	Name      string `json:"brqFileName"`
}

// StoredDocument is a document plus the bookkeeping the repository adds.
type StoredDocument struct {
	ID            int64
	CorrelationID string
	File          FileName
	Document      Document
	Validation    ValidationResult
	CreatedAt     time.Time
}

// DocumentSummary is the list view of a stored document.
type DocumentSummary struct {
	ID            int64
	CorrelationID string
	RequestID     string
	FileName      string
	AgencyName    string
	DetailCount   int
	Result        RuleOutcome
	CreatedAt     time.Time
}

// Run records one pipeline stage executed for a document.
type Run struct {
	ID            int64
	DocumentID    int64
	CorrelationID string
	Stage         string
	Status        string
	Detail        string
	CreatedAt     time.Time
}

// WCDateLayout is the layout of Detail.WCDate.
const WCDateLayout = "20060102"

// WeekCommencing parses WCDate.
func (d *Detail) WeekCommencing() (time.Time, error) {
	return time.Parse(WCDateLayout, d.WCDate)
}
