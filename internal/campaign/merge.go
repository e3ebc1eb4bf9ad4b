package campaign

import (
	"encoding/json"

	"github.com/csg33k/brq-ebookings/internal/domain"
)

// Merge folds a computed header into an existing downstream campaign and
// returns the result; existing is not modified.
//
// Existing parent entries are replaced by their computed counterpart in
// place, or dropped when the header has none. Computed parents the
// campaign did not have are appended in header order.
func Merge(existing domain.Campaign, h *domain.CampaignHeader, campaignCode string) domain.Campaign {
	computed := make(map[int]domain.SalesAreaOnCampaign, len(h.Areas))
	for _, a := range h.Areas {
		computed[a.SalesAreaNumber] = a
	}

	merged := make([]domain.SalesAreaOnCampaign, 0, len(h.Areas))
	placed := make(map[int]bool, len(h.Areas))
	for _, old := range existing.SalesAreaOnCampaigns {
		a, ok := computed[old.SalesAreaNumber]
		if !ok || placed[a.SalesAreaNumber] {
			continue
		}
		merged = append(merged, a)
		placed[a.SalesAreaNumber] = true
	}
	for _, a := range h.Areas {
		if !placed[a.SalesAreaNumber] {
			merged = append(merged, a)
			placed[a.SalesAreaNumber] = true
		}
	}

	out := existing
	out.Extra = make(map[string]json.RawMessage, len(existing.Extra))
	for k, v := range existing.Extra {
		out.Extra[k] = v
	}
	out.CampaignCode = campaignCode
	out.NumberOfSpots = h.NumberOfSpots
	out.SalesAreaOnCampaignAsPerPolicy = false
	out.DaypartsAsPerDeal = false
	out.SalesAreaOnCampaigns = merged
	return out
}

// UpdateRequest wraps one campaign for the downstream upload call.
func UpdateRequest(c domain.Campaign, approvalID int) domain.CampaignUpdateRequest {
	return domain.CampaignUpdateRequest{
		ApprovalID:       approvalID,
		ApprovalSourceID: 0,
		SafeMode:         false,
		Campaigns:        []domain.Campaign{c},
	}
}
