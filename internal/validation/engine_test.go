package validation_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/csg33k/brq-ebookings/internal/adapters/brq/brqtest"
	"github.com/csg33k/brq-ebookings/internal/domain"
	"github.com/csg33k/brq-ebookings/internal/salesarea/salesareatest"
	"github.com/csg33k/brq-ebookings/internal/validation"
)

// Wednesday; the current week's Sunday is 2024-01-07.
var today = time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)

func clock() time.Time { return today }

func check(r validation.Rule, doc *domain.Document) validation.Outcome {
	return r.Check(doc)
}

// ----------------------------------------------------------------------------
// Engine
// ----------------------------------------------------------------------------

func TestEngine_AllPass(t *testing.T) {
	doc := brqtest.Document(
		brqtest.Detail("SYD7", "20240108", 30),
		brqtest.Detail("NEW", "20240115", 30),
	)
	e := validation.NewEngine(nil, validation.Default(salesareatest.Index(), validation.Settings{
		AllowedNetworks: []string{"NET001"},
		DemoTolerance:   10,
		Now:             clock,
	})...)

	res := e.Run(doc)
	assert.Equal(t, domain.RuleSuccess, res.Result)
	assert.True(t, res.ContinueValidation)
	assert.False(t, res.Failed())
	assert.Empty(t, res.Messages)
	require.Len(t, res.Details, 6)
	for _, d := range res.Details {
		assert.Equal(t, domain.RuleSuccess, d.Result, d.RuleName)
	}
}

func TestEngine_StopsAtFirstError(t *testing.T) {
	var ran []string
	rule := func(name, errMsg string, msgs ...string) validation.Rule {
		return validation.RuleFunc{RuleName: name, Fn: func(*domain.Document) validation.Outcome {
			ran = append(ran, name)
			return validation.Outcome{Error: errMsg, Messages: msgs}
		}}
	}
	e := validation.NewEngine(nil,
		rule("first", "", "note"),
		rule("second", "broken", "context"),
		rule("third", ""),
	)

	res := e.Run(brqtest.Document())
	assert.Equal(t, []string{"first", "second"}, ran)
	assert.True(t, res.Failed())
	assert.False(t, res.ContinueValidation)
	assert.Equal(t, []string{"note", "context"}, res.Messages)
	assert.Equal(t, []domain.RuleResult{
		{RuleName: "first", Result: domain.RuleSuccess},
		{RuleName: "second", Result: domain.RuleError, Msg: "broken"},
	}, res.Details)
}

// ----------------------------------------------------------------------------
// Rules
// ----------------------------------------------------------------------------

func TestRecordCounts(t *testing.T) {
	doc := brqtest.Document(brqtest.Detail("SYD7", "20240108", 30))
	assert.Empty(t, check(validation.RecordCounts(), doc).Messages)

	doc.Header.ProposedDetailRecordCounter = 3
	doc.Header.NarrativeRecordCounter = 1
	out := check(validation.RecordCounts(), doc)
	assert.Empty(t, out.Error, "count mismatch is informational")
	assert.Equal(t, []string{
		"The BRQ file contains 0 narrative records but the header declares 1.",
		"The BRQ file contains 1 spots but the header declares 3.",
	}, out.Messages)
}

func TestNetworkID(t *testing.T) {
	doc := brqtest.Document()
	assert.Empty(t, check(validation.NetworkID(), doc).Error, "no allow list")
	assert.Empty(t, check(validation.NetworkID("SEVNET", "NET001"), doc).Error)
	assert.Equal(t, validation.MsgOtherNetwork, check(validation.NetworkID("SEVNET"), doc).Error)
}

func TestStationMapping(t *testing.T) {
	doc := brqtest.Document(
		brqtest.Detail("SYD7", "20240108", 30),
		brqtest.Detail("ZZZ9", "20240108", 30),
		brqtest.Detail("ZZZ9", "20240115", 30),
		brqtest.Detail("QQQ1", "20240108", 30),
	)
	out := check(validation.StationMapping(salesareatest.Index()), doc)
	assert.Equal(t, "Station Id  Station Name\n\n ZZZ9  STATION ZZZ9\nQQQ1  STATION QQQ1\n", out.Error)

	ok := brqtest.Document(brqtest.Detail("PER7", "20240108", 30))
	assert.Empty(t, check(validation.StationMapping(salesareatest.Index()), ok).Error)
}

func TestWCDates(t *testing.T) {
	cases := []struct {
		name    string
		weeks   []string
		wantErr string
		wantMsg []string
	}{
		{"all current or future", []string{"20240107", "20240114"}, "", nil},
		{"some in the past", []string{"20231231", "20240108"}, "", []string{validation.MsgStartDateAmended}},
		{"all in the past", []string{"20231225", "20231231"}, validation.MsgAllInPast, nil},
		{"unparseable", []string{"20240108", "2024-01-15"}, "Detail line #2 has an invalid WCDate '2024-01-15'.", nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var details []domain.Detail
			for _, w := range tc.weeks {
				details = append(details, brqtest.Detail("SYD7", w, 30))
			}
			out := check(validation.WCDates(clock), brqtest.Document(details...))
			assert.Equal(t, tc.wantErr, out.Error)
			assert.Equal(t, tc.wantMsg, out.Messages)
		})
	}
}

func TestWCDates_SundayIsCurrentWeek(t *testing.T) {
	sunday := func() time.Time { return time.Date(2024, 1, 7, 23, 0, 0, 0, time.UTC) }
	doc := brqtest.Document(brqtest.Detail("SYD7", "20240107", 30))
	assert.Empty(t, check(validation.WCDates(sunday), doc).Error)
}

func TestDemoTolerance(t *testing.T) {
	noDemo := func() domain.Detail {
		d := brqtest.Detail("SYD7", "20240108", 30)
		d.DemographicCodeOne = ""
		return d
	}
	withDemo := func() domain.Detail { return brqtest.Detail("SYD7", "20240108", 30) }
	fourthOnly := withDemo()
	fourthOnly.DemographicCodeOne = ""
	fourthOnly.DemographicCodeFour = "W18+"

	cases := []struct {
		name      string
		details   []domain.Detail
		tolerance float64
		fail      bool
	}{
		{"none missing", []domain.Detail{withDemo(), withDemo()}, 10, false},
		{"below tolerance", []domain.Detail{noDemo(), withDemo(), withDemo(), withDemo()}, 30, false},
		{"at tolerance", []domain.Detail{noDemo(), withDemo(), withDemo(), withDemo()}, 25, true},
		{"any code counts", []domain.Detail{fourthOnly}, 10, false},
		{"disabled", []domain.Detail{noDemo()}, 0, false},
		{"no details", nil, 10, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out := check(validation.DemoTolerance(tc.tolerance), brqtest.Document(tc.details...))
			if tc.fail {
				assert.Equal(t, validation.MsgDemoTolerance, out.Error)
			} else {
				assert.Empty(t, out.Error)
			}
		})
	}
}

func TestConversions(t *testing.T) {
	doc := brqtest.Document()
	doc.Diagnostics = []domain.ConversionFailure{
		{Line: 3, Field: "RequestedGrossRate", Kind: "money", Raw: "00003X500"},
	}
	out := check(validation.Conversions(), doc)
	assert.Empty(t, out.Error)
	assert.Equal(t, []string{
		"Line 3: RequestedGrossRate value '00003X500' is not a valid money and was read as zero.",
	}, out.Messages)
}
