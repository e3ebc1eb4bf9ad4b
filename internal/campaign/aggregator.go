// Package campaign computes the campaign header sent downstream for a
// parsed BRQ file: how its spots split across parent sales areas, their
// constituent sales areas, spot lengths, weeks and dayparts.
package campaign

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/csg33k/brq-ebookings/internal/domain"
)

// ErrNoDetails is returned when there is nothing to aggregate.
var ErrNoDetails = errors.New("campaign: document has no detail records")

const deliveryCurrencyNumberOfSpots = "NumberOfSpots"

// Lookup resolves a station id to its sales area. *salesarea.Index
// satisfies it.
type Lookup interface {
	Lookup(id string) (domain.SalesArea, error)
	Children(parent int) []domain.SalesArea
}

type Aggregator struct {
	index     Lookup
	daypartID string
	log       *slog.Logger
}

// New returns an Aggregator. daypartID is the downstream daypart reference
// every parent is allocated to.
func New(index Lookup, daypartID string, log *slog.Logger) *Aggregator {
	if log == nil {
		log = slog.Default()
	}
	return &Aggregator{index: index, daypartID: daypartID, log: log}
}

// parentGroup is the details that roll up to one parent sales area.
type parentGroup struct {
	parent  int
	details []domain.Detail
	areas   []domain.SalesArea // resolved area of each detail
	weeks   []time.Time        // parsed WCDate of each detail
}

// Aggregate computes the header for details. A station missing from the
// index fails the whole aggregation with a *salesarea.NotFoundError.
func (a *Aggregator) Aggregate(details []domain.Detail) (*domain.CampaignHeader, error) {
	if len(details) == 0 {
		return nil, ErrNoDetails
	}
	groups, err := a.group(details)
	if err != nil {
		return nil, err
	}

	counts := make([]int, len(groups))
	for i, g := range groups {
		counts[i] = len(g.details)
	}
	parentPcts := splitPercent(counts, len(details), hundred)

	h := &domain.CampaignHeader{NumberOfSpots: len(details)}
	for i, g := range groups {
		area := domain.SalesAreaOnCampaign{
			SalesAreaNumber: g.parent,
			PercentageSplit: f64(parentPcts[i]),
			DeliveryCurrencyPricing: domain.DeliveryCurrencyPricing{
				Type:  deliveryCurrencyNumberOfSpots,
				Value: len(g.details),
			},
			SalesAreaDetails: a.salesAreaDetails(g, len(details), parentPcts[i]),
			DeliveryLengths:  deliveryLengths(g),
			Dayparts:         a.dayparts(),
			StrikeWeights:    strikeWeights(g.weeks),
		}
		a.log.Debug("parent sales area aggregated",
			"sales_area", g.parent,
			"spots", len(g.details),
			"percentage", area.PercentageSplit,
			"weeks", len(area.StrikeWeights),
		)
		h.Areas = append(h.Areas, area)
	}
	return h, nil
}

// group partitions details by parent sales area in first-seen order.
func (a *Aggregator) group(details []domain.Detail) ([]*parentGroup, error) {
	var groups []*parentGroup
	byParent := make(map[int]*parentGroup)
	for i := range details {
		d := details[i]
		sa, err := a.index.Lookup(d.StationId)
		if err != nil {
			return nil, fmt.Errorf("detail %d: %w", i+1, err)
		}
		wc, err := d.WeekCommencing()
		if err != nil {
			return nil, fmt.Errorf("detail %d: invalid WCDate %q: %w", i+1, d.WCDate, err)
		}
		p := sa.Parent()
		g, ok := byParent[p]
		if !ok {
			g = &parentGroup{parent: p}
			byParent[p] = g
			groups = append(groups, g)
		}
		g.details = append(g.details, d)
		g.areas = append(g.areas, sa)
		g.weeks = append(g.weeks, wc)
	}
	return groups, nil
}

// salesAreaDetails splits the parent's share across the sales areas its
// spots were booked on. Shares are of the whole campaign, so the entries of
// one parent sum to that parent's percentage. Areas configured under the
// parent with no bookings follow at 0%.
func (a *Aggregator) salesAreaDetails(g *parentGroup, campaignSpots int, parentPct decimal.Decimal) []domain.SalesAreaDetail {
	byArea := newOrdered[int]()
	for _, sa := range g.areas {
		byArea.add(sa.Number)
	}
	pcts := splitPercent(byArea.countList(), campaignSpots, parentPct)

	out := make([]domain.SalesAreaDetail, 0, len(pcts))
	for i, n := range byArea.keys {
		p := f64(pcts[i])
		out = append(out, domain.SalesAreaDetail{
			SalesAreaNumber: n,
			PercentageSplit: p,
			SpotsPercentage: &p,
		})
	}
	for _, c := range a.index.Children(g.parent) {
		if _, used := byArea.counts[c.Number]; used {
			continue
		}
		out = append(out, domain.SalesAreaDetail{SalesAreaNumber: c.Number})
	}
	return out
}

// deliveryLengths splits the parent's own spots by requested length.
func deliveryLengths(g *parentGroup) []domain.DeliveryLength {
	bySize := newOrdered[int]()
	for _, d := range g.details {
		bySize.add(d.RequestedSize)
	}
	pcts := splitPercent(bySize.countList(), len(g.details), hundred)
	out := make([]domain.DeliveryLength, len(pcts))
	for i, size := range bySize.keys {
		out[i] = domain.DeliveryLength{SpotLength: size, Percentage: f64(pcts[i])}
	}
	return out
}

// dayparts is a single all-week daypart at 100%.
func (a *Aggregator) dayparts() []domain.Daypart {
	return []domain.Daypart{{
		Percentage:    100,
		DaypartNameID: a.daypartID,
		Timeslices: []domain.Timeslice{{
			StartDay:  "Monday",
			EndDay:    "Sunday",
			StartTime: "00:00:00",
			EndTime:   "23:59:59",
		}},
	}}
}
