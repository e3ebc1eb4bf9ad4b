package domain

import (
	"encoding/json"
	"fmt"
)

// SalesArea is one row of the station to sales-area reference mapping.
// ParentNumber is 0 for a top-level sales area.
type SalesArea struct {
	StationID    string `json:"BCC"`
	Number       int    `json:"salesAreaNumber"`
	ParentNumber int    `json:"Overall_ParentSalesAreaNumber,omitempty"`
	Code         string `json:"code"`
	BreakCode    string `json:"breakCode"`
	Geography    string `json:"Geography"`
	Name         string `json:"name,omitempty"`
}

// Parent returns the sales area that bookings on s roll up to: its parent
// when it has one, itself otherwise.
func (s SalesArea) Parent() int {
	if s.ParentNumber != 0 {
		return s.ParentNumber
	}
	return s.Number
}

type DeliveryCurrencyPricing struct {
	Type  string `json:"deliveryCurrencyType"`
	Value int    `json:"deliveryCurrencyPriceValue"`
}

// SalesAreaDetail is one constituent sales area of a parent. SpotsPercentage
// is nil for roster entries that carry no bookings.
type SalesAreaDetail struct {
	SalesAreaNumber int      `json:"salesAreaNumber"`
	IsExcluded      bool     `json:"isExcluded"`
	PercentageSplit float64  `json:"percentageSplit"`
	SpotsPercentage *float64 `json:"spotsPercentage,omitempty"`
}

type DeliveryLength struct {
	SpotLength int     `json:"spotLength"`
	Percentage float64 `json:"percentage"`
}

type Timeslice struct {
	StartDay  string `json:"startDay"`
	EndDay    string `json:"endDay"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

type Daypart struct {
	Percentage    float64     `json:"percentage"`
	DaypartNameID string      `json:"daypartNameID"`
	Timeslices    []Timeslice `json:"timeslices"`
}

// Period is an inclusive date range in YYYY-MM-DD form.
type Period struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

// StrikeWeight is one weekly bucket of a parent's spots. SpotCount is the
// reconciled integer allocation the percentage was derived from.
type StrikeWeight struct {
	Period            Period  `json:"period"`
	RatingsPercentage int     `json:"ratingsPercentage"`
	SpotsPercentage   float64 `json:"spotsPercentage"`
	SpotCount         int     `json:"-"`
}

// SalesAreaOnCampaign is the computed header for one parent sales area.
type SalesAreaOnCampaign struct {
	SalesAreaNumber         int                     `json:"salesAreaNumber"`
	PercentageSplit         float64                 `json:"percentageSplit"`
	DeliveryCurrencyPricing DeliveryCurrencyPricing `json:"deliveryCurrencyPricing"`
	SalesAreaDetails        []SalesAreaDetail       `json:"salesAreaDetails"`
	DeliveryLengths         []DeliveryLength        `json:"deliveryLengths"`
	Dayparts                []Daypart               `json:"dayparts"`
	StrikeWeights           []StrikeWeight          `json:"strikeWeights"`
}

// CampaignHeader is the ordered list of parent headers. Order is the order
// in which parents were first encountered in the file; the last parent is
// the one that absorbed the rounding remainder.
type CampaignHeader struct {
	NumberOfSpots int                   `json:"numberOfSpots"`
	Areas         []SalesAreaOnCampaign `json:"salesAreaOnCampaigns"`
}

// Area returns the header for parent sales area n.
func (h *CampaignHeader) Area(n int) (SalesAreaOnCampaign, bool) {
	for _, a := range h.Areas {
		if a.SalesAreaNumber == n {
			return a, true
		}
	}
	return SalesAreaOnCampaign{}, false
}

// Campaign is a downstream campaign record. Only the keys this service
// computes are typed; every other key round-trips untouched through Extra.
type Campaign struct {
	CampaignCode                   string
	NumberOfSpots                  int
	SalesAreaOnCampaignAsPerPolicy bool
	DaypartsAsPerDeal              bool
	SalesAreaOnCampaigns           []SalesAreaOnCampaign
	Extra                          map[string]json.RawMessage
}

var campaignKeys = []string{
	"campaignCode",
	"numberOfSpots",
	"salesAreaOnCampaignAsPerPolicy",
	"daypartsAsPerDeal",
	"salesAreaOnCampaigns",
}

func (c Campaign) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(c.Extra)+len(campaignKeys))
	for k, v := range c.Extra {
		out[k] = v
	}
	out["campaignCode"] = c.CampaignCode
	out["numberOfSpots"] = c.NumberOfSpots
	out["salesAreaOnCampaignAsPerPolicy"] = c.SalesAreaOnCampaignAsPerPolicy
	out["daypartsAsPerDeal"] = c.DaypartsAsPerDeal
	areas := c.SalesAreaOnCampaigns
	if areas == nil {
		areas = []SalesAreaOnCampaign{}
	}
	out["salesAreaOnCampaigns"] = areas
	return json.Marshal(out)
}

func (c *Campaign) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	typed := map[string]any{
		"campaignCode":                   &c.CampaignCode,
		"numberOfSpots":                  &c.NumberOfSpots,
		"salesAreaOnCampaignAsPerPolicy": &c.SalesAreaOnCampaignAsPerPolicy,
		"daypartsAsPerDeal":              &c.DaypartsAsPerDeal,
		"salesAreaOnCampaigns":           &c.SalesAreaOnCampaigns,
	}
	for _, k := range campaignKeys {
		v, ok := raw[k]
		if !ok || string(v) == "null" {
			continue
		}
		if err := json.Unmarshal(v, typed[k]); err != nil {
			return fmt.Errorf("campaign %s: %w", k, err)
		}
		delete(raw, k)
	}
	c.Extra = raw
	return nil
}

// CampaignUpdateRequest wraps campaigns for the downstream upload call.
type CampaignUpdateRequest struct {
	ApprovalID       int        `json:"approvalID"`
	ApprovalSourceID int        `json:"approvalSourceID"`
	SafeMode         bool       `json:"safeMode"`
	Campaigns        []Campaign `json:"campaigns"`
}
