package campaign

import (
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/csg33k/brq-ebookings/internal/domain"
)

const periodLayout = "2006-01-02"

// nextSaturday returns d when d is a Saturday, otherwise the following one.
func nextSaturday(d time.Time) time.Time {
	return d.AddDate(0, 0, (int(time.Saturday)-int(d.Weekday())+7)%7)
}

type bucket struct {
	start, end time.Time
	spots      int
}

// strikeWeights spreads one parent's spots over Sunday-to-Saturday weeks
// between the earliest WC date and six days after the latest.
func strikeWeights(weeks []time.Time) []domain.StrikeWeight {
	n := len(weeks)
	if n == 0 {
		panic("campaign: strike weights for an empty group")
	}
	start, end := weeks[0], weeks[0]
	for _, w := range weeks[1:] {
		if w.Before(start) {
			start = w
		}
		if w.After(end) {
			end = w
		}
	}
	end = end.AddDate(0, 0, 6)

	var buckets []bucket
	for cur := start; !cur.After(end); cur = nextSaturday(cur).AddDate(0, 0, 1) {
		b := bucket{start: cur, end: nextSaturday(cur)}
		if b.end.After(end) {
			b.end = end
		}
		for _, w := range weeks {
			if !w.Before(b.start) && !w.After(b.end) {
				b.spots++
			}
		}
		buckets = append(buckets, b)
	}

	totalDays := days(start, end)
	out := make([]domain.StrikeWeight, len(buckets))
	var ratingsSum, spotsSum int
	for i, b := range buckets {
		r := days(b.start, b.end) * 100 / totalDays
		s := b.spots * 100 / n
		ratingsSum += r
		spotsSum += s
		out[i] = domain.StrikeWeight{
			Period: domain.Period{
				StartDate: b.start.Format(periodLayout),
				EndDate:   b.end.Format(periodLayout),
			},
			RatingsPercentage: r,
			SpotsPercentage:   float64(s),
		}
	}
	last := len(out) - 1
	if ratingsSum < 100 {
		out[last].RatingsPercentage += 100 - ratingsSum
	}
	if spotsSum < 100 {
		out[last].SpotsPercentage += float64(100 - spotsSum)
	}
	return reconcileSpotCounts(out, n)
}

func days(from, to time.Time) int {
	return int(to.Sub(from).Hours()/24) + 1
}

// reconcileSpotCounts turns each bucket's spots percentage into a whole
// number of spots summing exactly to total, then re-derives the
// percentages from those counts.
//
// Counts round half to even. When the rounded counts overshoot total the
// excess is taken from the last bucket, moving to earlier buckets only once
// a bucket reaches zero; a shortfall is added to the last bucket.
func reconcileSpotCounts(weights []domain.StrikeWeight, total int) []domain.StrikeWeight {
	if total <= 0 {
		panic("campaign: reconcile spot counts with no spots")
	}
	pcts := make([]float64, len(weights))
	var sum float64
	for i, w := range weights {
		pcts[i] = w.SpotsPercentage
		sum += w.SpotsPercentage
	}
	if sum > 100 {
		for i := range pcts {
			pcts[i] = pcts[i] / sum * 100
		}
	}

	counts := make([]int, len(weights))
	assigned := 0
	for i, p := range pcts {
		if p == 0 {
			continue
		}
		counts[i] = int(math.Max(math.RoundToEven(p/100*float64(total)), 0))
		assigned += counts[i]
	}

	excess := total - assigned
	for i := len(counts) - 1; excess < 0 && i >= 0; i-- {
		take := min(counts[i], -excess)
		counts[i] -= take
		excess += take
	}
	if excess > 0 {
		counts[len(counts)-1] += excess
	}

	// 4dp percentages; the last bucket holding spots closes the gap to 100
	closer := len(counts) - 1
	for closer > 0 && counts[closer] == 0 {
		closer--
	}
	out := make([]domain.StrikeWeight, len(weights))
	base := decimal.NewFromInt(int64(total))
	remaining := hundred
	for i, w := range weights {
		w.SpotCount = counts[i]
		if i != closer {
			p := decimal.NewFromInt(int64(counts[i])).Mul(hundred).DivRound(base, 4)
			w.SpotsPercentage = f64(p)
			remaining = remaining.Sub(p)
		}
		out[i] = w
	}
	out[closer].SpotsPercentage = f64(remaining)
	return out
}
