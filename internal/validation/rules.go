package validation

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/csg33k/brq-ebookings/internal/domain"
)

const (
	MsgStartDateAmended = "The Campaign Start Date has been amended as the file contains spots in previous weeks"
	MsgAllInPast        = "The BRQ sent through contains w/c dates that are all in the past."
	MsgOtherNetwork     = "The BRQ file received is meant for another Network."
	MsgDemoTolerance    = "The number of spots in the BRQ file missing the demographic is above the permitted tolerance."
)

// StationLookup resolves BCC station codes. *salesarea.Index satisfies it.
type StationLookup interface {
	LookupStation(stationID string) (domain.SalesArea, error)
}

// Settings parameterises the default rule set.
type Settings struct {
	AllowedNetworks []string
	// DemoTolerance is the percentage of details without any demographic
	// code at which the file is rejected.
	DemoTolerance float64
	Now           func() time.Time
}

// Default returns the standard rule set in evaluation order.
func Default(stations StationLookup, s Settings) []Rule {
	if s.Now == nil {
		s.Now = time.Now
	}
	return []Rule{
		RecordCounts(),
		NetworkID(s.AllowedNetworks...),
		StationMapping(stations),
		WCDates(s.Now),
		DemoTolerance(s.DemoTolerance),
		Conversions(),
	}
}

// RecordCounts compares the header counters against the records present.
// A mismatch is informational only.
func RecordCounts() Rule {
	return RuleFunc{"Validate BRQ record counts", func(doc *domain.Document) Outcome {
		var out Outcome
		if n, want := len(doc.NarrativeRecords), doc.Header.NarrativeRecordCounter; n != want {
			out.Messages = append(out.Messages,
				fmt.Sprintf("The BRQ file contains %d narrative records but the header declares %d.", n, want))
		}
		if n, want := len(doc.Details), doc.Header.ProposedDetailRecordCounter; n != want {
			out.Messages = append(out.Messages,
				fmt.Sprintf("The BRQ file contains %d spots but the header declares %d.", n, want))
		}
		return out
	}}
}

// NetworkID rejects files addressed to a network outside allowed. With no
// allowed ids the rule always passes.
func NetworkID(allowed ...string) Rule {
	return RuleFunc{"Validate BRQ Network Id", func(doc *domain.Document) Outcome {
		if len(allowed) == 0 || slices.Contains(allowed, doc.Header.NetworkId) {
			return Outcome{}
		}
		return Outcome{Error: MsgOtherNetwork}
	}}
}

// StationMapping requires every detail's station to resolve to a sales area.
// The failure lists each unmapped station once, in file order.
func StationMapping(stations StationLookup) Rule {
	return RuleFunc{"Validate sales area mapping", func(doc *domain.Document) Outcome {
		var b strings.Builder
		seen := map[string]bool{}
		for i := range doc.Details {
			d := &doc.Details[i]
			if seen[d.StationId] {
				continue
			}
			seen[d.StationId] = true
			if _, err := stations.LookupStation(d.StationId); err != nil {
				b.WriteString(d.StationId + "  " + d.StationName + "\n")
			}
		}
		if b.Len() == 0 {
			return Outcome{}
		}
		return Outcome{Error: "Station Id  Station Name\n\n " + b.String()}
	}}
}

// WCDates rejects a file whose weeks all start before the current week's
// Sunday, and notes when only some do.
func WCDates(now func() time.Time) Rule {
	return RuleFunc{"Validate BRQ wc dates", func(doc *domain.Document) Outcome {
		sunday := currentWeekSunday(now())
		past := 0
		for i := range doc.Details {
			wc, err := doc.Details[i].WeekCommencing()
			if err != nil {
				return Outcome{Error: fmt.Sprintf("Detail line #%d has an invalid WCDate '%s'.", i+1, doc.Details[i].WCDate)}
			}
			if wc.Before(sunday) {
				past++
			}
		}
		switch {
		case past == 0:
			return Outcome{}
		case past == len(doc.Details):
			return Outcome{Error: MsgAllInPast}
		default:
			return Outcome{Messages: []string{MsgStartDateAmended}}
		}
	}}
}

func currentWeekSunday(now time.Time) time.Time {
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return today.AddDate(0, 0, -int(today.Weekday()))
}

// DemoTolerance rejects a file when the share of details with no
// demographic code at all reaches tolerance percent. A tolerance of zero or
// less disables the check.
func DemoTolerance(tolerance float64) Rule {
	return RuleFunc{"Validate demo tolerance", func(doc *domain.Document) Outcome {
		if tolerance <= 0 || len(doc.Details) == 0 {
			return Outcome{}
		}
		missing := 0
		for i := range doc.Details {
			d := &doc.Details[i]
			if d.DemographicCodeOne == "" && d.DemographicCodeTwo == "" &&
				d.DemographicCodeThree == "" && d.DemographicCodeFour == "" {
				missing++
			}
		}
		if 100*float64(missing)/float64(len(doc.Details)) >= tolerance {
			return Outcome{Error: MsgDemoTolerance}
		}
		return Outcome{}
	}}
}

// Conversions surfaces every field that was zero-filled during parsing.
func Conversions() Rule {
	return RuleFunc{"Validate field conversions", func(doc *domain.Document) Outcome {
		var out Outcome
		for _, f := range doc.Diagnostics {
			out.Messages = append(out.Messages,
				fmt.Sprintf("Line %d: %s value '%s' is not a valid %s and was read as zero.", f.Line, f.Field, f.Raw, f.Kind))
		}
		return out
	}}
}
