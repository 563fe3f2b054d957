package insights

import (
	"fmt"
	"sort"

	"salesaudit/domain/dataset"

	"github.com/montanaflynn/stats"
)

// BrandLimit caps the brand return-rate ranking
const BrandLimit = 20

// DelayedStatus is the delivery status counted as late
const DelayedStatus = "Delayed"

// Group is one aggregated category
type Group struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
	Count int     `json:"count"`
}

// SumBy totals valueCol per label of groupCol, highest first. Rows missing
// either value are left out. ok is false when a column is absent or the
// value column is not numeric.
func SumBy(t *dataset.Table, groupCol, valueCol string) ([]Group, bool) {
	return aggregate(t, groupCol, valueCol, func(values stats.Float64Data) float64 {
		sum, _ := stats.Sum(values)
		return sum
	})
}

// RateBy returns the mean of a 0/1 column per label as a percentage,
// highest first.
func RateBy(t *dataset.Table, groupCol, flagCol string) ([]Group, bool) {
	return aggregate(t, groupCol, flagCol, func(values stats.Float64Data) float64 {
		mean, _ := stats.Mean(values)
		return mean * 100
	})
}

// ShareBy returns, per label of groupCol, the percentage of rows whose
// statusCol equals target, highest first.
func ShareBy(t *dataset.Table, groupCol, statusCol, target string) ([]Group, bool) {
	group, okG := t.Column(groupCol)
	status, okS := t.Column(statusCol)
	if !okG || !okS {
		return nil, false
	}
	hits := make(map[string]int)
	totals := make(map[string]int)
	for i := 0; i < t.RowCount(); i++ {
		g, okG := group.Label(i)
		s, okS := status.Label(i)
		if !okG || !okS {
			continue
		}
		totals[g]++
		if s == target {
			hits[g]++
		}
	}
	out := make([]Group, 0, len(totals))
	for label, n := range totals {
		out = append(out, Group{Label: label, Value: float64(hits[label]) / float64(n) * 100, Count: n})
	}
	sortGroups(out)
	return out, true
}

func aggregate(t *dataset.Table, groupCol, valueCol string, reduce func(stats.Float64Data) float64) ([]Group, bool) {
	group, okG := t.Column(groupCol)
	value, okV := t.Column(valueCol)
	if !okG || !okV || value.Type != dataset.TypeNumeric {
		return nil, false
	}
	buckets := make(map[string]stats.Float64Data)
	for i := 0; i < t.RowCount(); i++ {
		g, okG := group.Label(i)
		v, okV := value.Float(i)
		if !okG || !okV {
			continue
		}
		buckets[g] = append(buckets[g], v)
	}
	out := make([]Group, 0, len(buckets))
	for label, values := range buckets {
		out = append(out, Group{Label: label, Value: reduce(values), Count: len(values)})
	}
	sortGroups(out)
	return out, true
}

func sortGroups(groups []Group) {
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].Value != groups[j].Value {
			return groups[i].Value > groups[j].Value
		}
		return groups[i].Label < groups[j].Label
	})
}

// Summary holds the business KPIs behind the insight report and plots
type Summary struct {
	RevenueColumn        string  `json:"revenue_column"`
	RevenueByCategory    []Group `json:"revenue_by_category,omitempty"`
	ReturnRateByCategory []Group `json:"return_rate_by_category,omitempty"`
	ReturnRateByBrand    []Group `json:"return_rate_by_brand,omitempty"`
	ReturnRateByDevice   []Group `json:"return_rate_by_device,omitempty"`
	DelayRateByRegion    []Group `json:"delay_rate_by_region,omitempty"`
}

// Aggregate computes every KPI the table has columns for
func Aggregate(t *dataset.Table, revenueCol string) Summary {
	s := Summary{RevenueColumn: revenueCol}
	s.RevenueByCategory, _ = SumBy(t, dataset.ColCategory, revenueCol)
	s.ReturnRateByCategory, _ = RateBy(t, dataset.ColCategory, dataset.ColReturned)
	s.ReturnRateByBrand, _ = RateBy(t, dataset.ColBrand, dataset.ColReturned)
	if len(s.ReturnRateByBrand) > BrandLimit {
		s.ReturnRateByBrand = s.ReturnRateByBrand[:BrandLimit]
	}
	s.ReturnRateByDevice, _ = RateBy(t, dataset.ColDevice, dataset.ColReturned)
	s.DelayRateByRegion, _ = ShareBy(t, dataset.ColRegion, dataset.ColDeliveryStatus, DelayedStatus)
	return s
}

// Highlights returns one sentence per KPI naming its leading entry
func (s Summary) Highlights() []string {
	var out []string
	if g, ok := first(s.RevenueByCategory); ok {
		out = append(out, fmt.Sprintf("%s leads revenue with %.2f across %d orders", g.Label, g.Value, g.Count))
	}
	if g, ok := first(s.ReturnRateByCategory); ok {
		out = append(out, fmt.Sprintf("%s has the highest return rate by category at %.1f%%", g.Label, g.Value))
	}
	if g, ok := first(s.ReturnRateByDevice); ok {
		out = append(out, fmt.Sprintf("Orders placed on %s are returned most often (%.1f%%)", g.Label, g.Value))
	}
	if g, ok := first(s.DelayRateByRegion); ok {
		out = append(out, fmt.Sprintf("%s has the most delayed deliveries (%.1f%% of orders)", g.Label, g.Value))
	}
	if g, ok := first(s.ReturnRateByBrand); ok {
		out = append(out, fmt.Sprintf("Brand %s tops the return ranking at %.1f%%", g.Label, g.Value))
	}
	return out
}

func first(groups []Group) (Group, bool) {
	if len(groups) == 0 {
		return Group{}, false
	}
	return groups[0], true
}
