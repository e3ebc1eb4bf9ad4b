package spots_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/csg33k/brq-ebookings/internal/adapters/brq/brqtest"
	"github.com/csg33k/brq-ebookings/internal/domain"
	"github.com/csg33k/brq-ebookings/internal/salesarea"
	"github.com/csg33k/brq-ebookings/internal/salesarea/salesareatest"
	"github.com/csg33k/brq-ebookings/internal/spots"
)

var fixedNow = time.Date(2024, 1, 5, 14, 3, 9, 0, time.UTC)

func newBuilder() *spots.Builder {
	return spots.NewBuilder(salesareatest.Index(), spots.WithClock(func() time.Time { return fixedNow }))
}

// ----------------------------------------------------------------------------
// Build
// ----------------------------------------------------------------------------

func TestBuild_MapsDetailFields(t *testing.T) {
	p, err := newBuilder().Build([]domain.Detail{brqtest.Detail("SYD7", "20240108", 30)}, 4711)
	require.NoError(t, err)

	assert.Equal(t, "2024-01-05T14:03:09", p.DateTimeStamp)
	require.Len(t, p.SpotPreBookingDetails, 1)
	got := p.SpotPreBookingDetails[0]

	assert.Equal(t, domain.SpotPreBookingDetail{
		CampaignNumber:     4711,
		LineNumber:         1,
		VersionNumber:      1,
		SpotSalesAreaCode:  "SYD",
		BreakSalesAreaCode: "SYDB",
		ScheduledDate:      "2024-01-10",
		SlotStartTime:      "18:30:00",
		SlotEndTime:        "20:00:00",
		Length:             30,
		BusinessTypeCode:   "PDS",
		BookingType:        2,
		ExtraFloatData1:    23.1,
		ExtraFloatData2:    375,
		ExtraStringData1:   "EVENING NEWS",
		ExtraStringData2:   "NNYNNNN",
		ExtraDateData1:     "2024-01-08",
		SourceIndex:        0,
	}, got)
}

func TestBuild_Multiparts(t *testing.T) {
	details := []domain.Detail{
		brqtest.Detail("SYD7", "20240108", 30, "TP"),
		brqtest.Detail("SYD7", "20240108", 15, "MD"),
		brqtest.Detail("SYD7", "20240108", 15, "TA"),
		brqtest.Detail("MEL7", "20240108", 45),
	}
	details[1].RequestedGrossRate = 120
	details[2].RequestedGrossRate = 80

	p, err := newBuilder().Build(details, 1)
	require.NoError(t, err)
	require.Len(t, p.SpotPreBookingDetails, 2)

	first, second := p.SpotPreBookingDetails[0], p.SpotPreBookingDetails[1]
	assert.Equal(t, 1, first.LineNumber)
	assert.Equal(t, 30, first.Length)
	assert.Equal(t, []domain.Multipart{{Length: 15, Rate: 120}, {Length: 15, Rate: 80}}, first.Multiparts)

	assert.Equal(t, 2, second.LineNumber, "absorbed records do not consume line numbers")
	assert.Equal(t, 3, second.SourceIndex)
	assert.Equal(t, "MEL", second.SpotSalesAreaCode)
	assert.Nil(t, second.Multiparts)
}

func TestBuild_MultipartEdges(t *testing.T) {
	cases := []struct {
		name      string
		modifiers [][]string
		wantLines []int // multipart count per emitted line
	}{
		{"parent without followers", [][]string{{"TP"}, {}}, []int{0, 0}},
		{"parent at end", [][]string{{}, {"TP"}}, []int{0, 0}},
		{"absorption stops at plain record", [][]string{{"TP"}, {"MD"}, {}, {"TA"}}, []int{1, 0, 0}},
		{"continuation without parent stands alone", [][]string{{"MD"}, {"TA"}}, []int{0, 0}},
		{"back to back parents", [][]string{{"TP"}, {"TA"}, {"TP"}, {"MD"}, {"TA"}}, []int{1, 2}},
		{"parent that is also a tail", [][]string{{"TP"}, {"TA", "TP"}}, []int{1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var details []domain.Detail
			for _, m := range tc.modifiers {
				details = append(details, brqtest.Detail("SYD7", "20240108", 15, m...))
			}
			p, err := newBuilder().Build(details, 1)
			require.NoError(t, err)

			var got []int
			for i, l := range p.SpotPreBookingDetails {
				assert.Equal(t, i+1, l.LineNumber)
				got = append(got, len(l.Multiparts))
			}
			assert.Equal(t, tc.wantLines, got)
		})
	}
}

func TestBuild_Errors(t *testing.T) {
	t.Run("unmapped station", func(t *testing.T) {
		_, err := newBuilder().Build([]domain.Detail{
			brqtest.Detail("SYD7", "20240108", 30),
			brqtest.Detail("ZZZ9", "20240108", 30),
		}, 1)
		require.Error(t, err)
		assert.True(t, errors.Is(err, salesarea.ErrNotFound))
		assert.Contains(t, err.Error(), "StationID 'ZZZ9' not found in SalesArea Mapping.")
		assert.Contains(t, err.Error(), "detail 2")
	})

	t.Run("sales area number is not a station", func(t *testing.T) {
		_, err := newBuilder().Build([]domain.Detail{brqtest.Detail("101", "20240108", 30)}, 1)
		assert.ErrorIs(t, err, salesarea.ErrNotFound)
	})

	t.Run("bad week commencing date", func(t *testing.T) {
		_, err := newBuilder().Build([]domain.Detail{brqtest.Detail("SYD7", "2024-01-08", 30)}, 1)
		assert.ErrorIs(t, err, spots.ErrInvalidDate)
	})
}

func TestBuild_EmptyInput(t *testing.T) {
	p, err := newBuilder().Build(nil, 1)
	require.NoError(t, err)

	raw, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"dateTimeStamp":"2024-01-05T14:03:09","spotPreBookingDetails":[]}`, string(raw))
}

func TestBuild_JSONShape(t *testing.T) {
	p, err := newBuilder().Build([]domain.Detail{
		brqtest.Detail("SYD7", "20240108", 30, "TP"),
		brqtest.Detail("SYD7", "20240108", 15, "TA"),
	}, 9)
	require.NoError(t, err)

	raw, err := json.Marshal(p.SpotPreBookingDetails[0])
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))

	assert.NotContains(t, m, "SourceIndex")
	assert.Equal(t, float64(9), m["campaignNumber"])
	assert.Equal(t, "PDS", m["businessTypeCode"])
	parts := m["multiparts"].([]any)
	assert.Equal(t, map[string]any{"length": float64(15), "extraFloatData2": float64(375)}, parts[0])
}

func TestFirstRequestedDay(t *testing.T) {
	cases := map[string]int{
		"YNNNNNN": 0,
		"NNYNNNN": 2,
		"NNNNNNY": 6,
		"NNNNNNN": 0,
		"":        0,
		" NYNNNN": 1,
	}
	for mask, want := range cases {
		assert.Equal(t, want, spots.FirstRequestedDay(mask), "mask %q", mask)
	}
}

func TestSlotTimes(t *testing.T) {
	cases := []struct{ in, start, end string }{
		{"18302000", "18:30:00", "20:00:00"},
		{"0600", "06:00:00", "00:00:00"},
		{"", "00:00:00", "00:00:00"},
	}
	for _, tc := range cases {
		start, end := spots.SlotTimes(tc.in)
		assert.Equal(t, tc.start, start, tc.in)
		assert.Equal(t, tc.end, end, tc.in)
	}
}

// ----------------------------------------------------------------------------
// Paginate
// ----------------------------------------------------------------------------

func payloadOf(n int) *domain.SpotPayload {
	p := &domain.SpotPayload{DateTimeStamp: "2024-01-05T14:03:09"}
	for i := 0; i < n; i++ {
		p.SpotPreBookingDetails = append(p.SpotPreBookingDetails, domain.SpotPreBookingDetail{LineNumber: i + 1})
	}
	return p
}

func TestPaginate(t *testing.T) {
	cases := []struct {
		name  string
		total int
		limit int
		want  []string
		sizes []int
	}{
		{"within limit", 3, 5, []string{"cid/spots_payload.json"}, []int{3}},
		{"exactly limit", 5, 5, []string{"cid/spots_payload.json"}, []int{5}},
		{"over limit", 11, 5, []string{
			"cid/tranche/spots_payload_1.json",
			"cid/tranche/spots_payload_2.json",
			"cid/tranche/spots_payload_3.json",
		}, []int{5, 5, 1}},
		{"no limit", 11, 0, []string{"cid/spots_payload.json"}, []int{11}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			pages := spots.Paginate("cid", payloadOf(tc.total), tc.limit)

			var keys []string
			var sizes []int
			for _, pg := range pages {
				keys = append(keys, pg.Key)
				sizes = append(sizes, len(pg.Payload.SpotPreBookingDetails))
				assert.Equal(t, "2024-01-05T14:03:09", pg.Payload.DateTimeStamp)
			}
			assert.Equal(t, tc.want, keys)
			assert.Equal(t, tc.sizes, sizes)
			assert.Equal(t, len(tc.want) > 1, spots.Tranched(pages))
		})
	}
}

func TestPaginate_KeepsLineOrder(t *testing.T) {
	pages := spots.Paginate("cid", payloadOf(7), 3)
	var lines []int
	for _, pg := range pages {
		for _, l := range pg.Payload.SpotPreBookingDetails {
			lines = append(lines, l.LineNumber)
		}
	}
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7}, lines, fmt.Sprint(len(pages), " pages"))
}
