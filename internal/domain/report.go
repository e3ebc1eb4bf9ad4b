package domain

// OverallStatus summarises a downstream response for one payload page.
type OverallStatus string

const (
	StatusYes     OverallStatus = "Yes"
	StatusNo      OverallStatus = "No"
	StatusPartial OverallStatus = "Partial"
)

// SpotStatus is the failure recorded against one payload line.
type SpotStatus struct {
	Title  string `json:"title"`
	Status int    `json:"status"`
	Msg    string `json:"msg"`
}

// ReportRow joins a failed booking line back to the BRQ detail it came from.
type ReportRow struct {
	AgencyName             string
	ClientName             string
	ClientProductName      string
	StationName            string
	WCDate                 string
	Days                   string
	Time                   string
	Program                string
	Duration               int
	Rate                   float64
	DemographicCodeOne     string
	DemographicOneTarp     float64
	DemographicOneThousand float64
	ProposedAgencySpotID   string
	BookingModifiers       string
	Title                  string
	Status                 int
	Detail                 string
}

// ReportColumns are the report headings in output order.
var ReportColumns = []string{
	"Agency Name",
	"Client Name",
	"Client Product Name",
	"Station Name",
	"W/C Date",
	"Days",
	"Time",
	"Program",
	"Duration",
	"Rate",
	"Demographic Code One",
	"Demographic One Tarp",
	"Demographic One Thousand",
	"Proposed Agency Spot ID",
	"Booking Modifiers",
	"title",
	"status",
	"detail",
}

// Values returns the row's cells in ReportColumns order.
func (r *ReportRow) Values() []any {
	return []any{
		r.AgencyName,
		r.ClientName,
		r.ClientProductName,
		r.StationName,
		r.WCDate,
		r.Days,
		r.Time,
		r.Program,
		r.Duration,
		r.Rate,
		r.DemographicCodeOne,
		r.DemographicOneTarp,
		r.DemographicOneThousand,
		r.ProposedAgencySpotID,
		r.BookingModifiers,
		r.Title,
		r.Status,
		r.Detail,
	}
}
