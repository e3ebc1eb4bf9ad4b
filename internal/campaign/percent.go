package campaign

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// truncatedShare is count/base as a percentage truncated to 4 decimals,
// computed in integers so no binary rounding can creep in.
func truncatedShare(count, base int) decimal.Decimal {
	if base <= 0 {
		panic(fmt.Sprintf("campaign: percentage base %d must be positive", base))
	}
	return decimal.NewFromInt(int64(count) * 1_000_000 / int64(base)).Shift(-4)
}

// splitPercent shares total across counts. Every entry but the last gets its
// truncated share of base; the last gets whatever is left of total, so the
// result always sums to total exactly.
func splitPercent(counts []int, base int, total decimal.Decimal) []decimal.Decimal {
	if len(counts) == 0 {
		panic("campaign: splitPercent called with no groups")
	}
	out := make([]decimal.Decimal, len(counts))
	remaining := total
	for i, c := range counts {
		if i == len(counts)-1 {
			out[i] = remaining
			break
		}
		out[i] = truncatedShare(c, base)
		remaining = remaining.Sub(out[i]).Round(4)
	}
	return out
}

// ordered counts keys in first-seen order. The order is part of the
// contract: the last key receives the rounding remainder.
type ordered[K comparable] struct {
	keys   []K
	counts map[K]int
}

func newOrdered[K comparable]() *ordered[K] {
	return &ordered[K]{counts: make(map[K]int)}
}

func (o *ordered[K]) add(k K) {
	if _, ok := o.counts[k]; !ok {
		o.keys = append(o.keys, k)
	}
	o.counts[k]++
}

func (o *ordered[K]) countList() []int {
	out := make([]int, len(o.keys))
	for i, k := range o.keys {
		out[i] = o.counts[k]
	}
	return out
}

func f64(d decimal.Decimal) float64 { return d.InexactFloat64() }
