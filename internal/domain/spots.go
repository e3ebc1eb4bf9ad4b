package domain

// Multipart is a continuation segment absorbed into a multi-part spot line.
type Multipart struct {
	Length int     `json:"length"`
	Rate   float64 `json:"extraFloatData2"`
}

// SpotPreBookingDetail is one booking line sent downstream. SourceIndex is
// the position of the originating detail record in the document.
type SpotPreBookingDetail struct {
	CampaignNumber     int         `json:"campaignNumber"`
	LineNumber         int         `json:"lineNumber"`
	VersionNumber      int         `json:"versionNumber"`
	SpotSalesAreaCode  string      `json:"spotSalesAreaCode"`
	BreakSalesAreaCode string      `json:"breakSalesAreaCode"`
	ScheduledDate      string      `json:"scheduledDate"`
	SlotStartTime      string      `json:"slotStartTime"`
	SlotEndTime        string      `json:"slotEndTime"`
	Length             int         `json:"length"`
	BusinessTypeCode   string      `json:"businessTypeCode"`
	BookingType        int         `json:"bookingType"`
	ExtraFloatData1    float64     `json:"extraFloatData1"`
	ExtraFloatData2    float64     `json:"extraFloatData2"`
	ExtraStringData1   string      `json:"extraStringData1"`
	ExtraStringData2   string      `json:"extraStringData2"`
	ExtraDateData1     string      `json:"extraDateData1"`
	Multiparts         []Multipart `json:"multiparts,omitempty"`
	SourceIndex        int         `json:"-"`
}

// SpotPayload is one persisted page of booking lines.
type SpotPayload struct {
	DateTimeStamp         string                 `json:"dateTimeStamp"`
	SpotPreBookingDetails []SpotPreBookingDetail `json:"spotPreBookingDetails"`
}
