package campaign_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/csg33k/brq-ebookings/internal/adapters/brq/brqtest"
	"github.com/csg33k/brq-ebookings/internal/campaign"
	"github.com/csg33k/brq-ebookings/internal/domain"
)

const existingCampaign = `{
	"campaignName": "Crunchy Flakes Summer",
	"startDate": "2024-01-08",
	"numberOfSpots": 1,
	"daypartsAsPerDeal": true,
	"salesAreaOnCampaigns": [
		{"salesAreaNumber": 2000, "percentageSplit": 10},
		{"salesAreaNumber": 9999, "percentageSplit": 80},
		{"salesAreaNumber": 1000, "percentageSplit": 10}
	]
}`

func TestMerge(t *testing.T) {
	var existing domain.Campaign
	require.NoError(t, json.Unmarshal([]byte(existingCampaign), &existing))

	h := aggregate(t,
		brqtest.Detail("PER7", "20240108", 30),
		brqtest.Detail("SYD7", "20240108", 30),
		brqtest.Detail("NEW", "20240108", 30),
	)
	merged := campaign.Merge(existing, h, "CMP-42")

	var got []int
	for _, a := range merged.SalesAreaOnCampaigns {
		got = append(got, a.SalesAreaNumber)
	}
	assert.Equal(t, []int{2000, 1000, 300}, got, "replaced in place, 9999 dropped, new parent appended")
	assert.Equal(t, h.Areas[2], merged.SalesAreaOnCampaigns[0], "replacement is the computed entry")

	assert.Equal(t, "CMP-42", merged.CampaignCode)
	assert.Equal(t, 3, merged.NumberOfSpots)
	assert.False(t, merged.DaypartsAsPerDeal)
	assert.False(t, merged.SalesAreaOnCampaignAsPerPolicy)

	// input untouched
	assert.Len(t, existing.SalesAreaOnCampaigns, 3)
	assert.Equal(t, 1, existing.NumberOfSpots)

	raw, err := json.Marshal(campaign.UpdateRequest(merged, 1))
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, float64(1), out["approvalID"])
	assert.Equal(t, float64(0), out["approvalSourceID"])
	assert.Equal(t, false, out["safeMode"])

	c := out["campaigns"].([]any)[0].(map[string]any)
	assert.Equal(t, "Crunchy Flakes Summer", c["campaignName"], "unknown keys round-trip")
	assert.Equal(t, "2024-01-08", c["startDate"])
	assert.Equal(t, "CMP-42", c["campaignCode"])
	assert.Equal(t, float64(3), c["numberOfSpots"])
	assert.Len(t, c["salesAreaOnCampaigns"], 3)
}

func TestMerge_AdjacentDropsAreAllRemoved(t *testing.T) {
	existing := domain.Campaign{SalesAreaOnCampaigns: []domain.SalesAreaOnCampaign{
		{SalesAreaNumber: 7}, {SalesAreaNumber: 8}, {SalesAreaNumber: 1000}, {SalesAreaNumber: 9},
	}}
	h := aggregate(t, brqtest.Detail("SYD7", "20240108", 30))

	merged := campaign.Merge(existing, h, "X")
	require.Len(t, merged.SalesAreaOnCampaigns, 1)
	assert.Equal(t, 1000, merged.SalesAreaOnCampaigns[0].SalesAreaNumber)
}

func TestMerge_EmptyExisting(t *testing.T) {
	h := aggregate(t,
		brqtest.Detail("NEW", "20240108", 30),
		brqtest.Detail("SYD7", "20240108", 30),
	)
	merged := campaign.Merge(domain.Campaign{}, h, "X")
	require.Len(t, merged.SalesAreaOnCampaigns, 2)
	assert.Equal(t, 2000, merged.SalesAreaOnCampaigns[0].SalesAreaNumber)
	assert.Equal(t, 1000, merged.SalesAreaOnCampaigns[1].SalesAreaNumber)
}
