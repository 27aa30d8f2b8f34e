package insights

import (
	"fmt"
	"sort"
	"strings"

	"github.com/smartstyle-cloud/styledex/internal/domain/catalog"
)

// BrandAny is the brand filter sentinel matching every brand.
const BrandAny = "any"

// GroupKey selects the grouping attribute for aggregations.
type GroupKey string

// ValueKey selects the aggregated attribute.
type ValueKey string

const (
	// GroupByBrand groups items by brand.
	GroupByBrand GroupKey = "brand"
	// GroupByColor groups items by color.
	GroupByColor GroupKey = "color"

	// ValueRating aggregates item ratings.
	ValueRating ValueKey = "rating"
	// ValuePrice aggregates item prices.
	ValuePrice ValueKey = "price"
)

// PriceRange is an inclusive [Min, Max] price constraint.
type PriceRange struct {
	Min float64
	Max float64
}

// GroupMean is one row of a grouped-mean aggregation.
type GroupMean struct {
	Group string
	Mean  float64
	Count int
}

// Summary holds whole-store dashboard aggregates.
type Summary struct {
	Count      int
	MeanPrice  float64
	MeanRating float64
}

// Service answers catalog-wide filter and aggregation queries. Independent
// of embeddings; every query is a pure read producing a derived view.
type Service struct {
	catalog CatalogSnapshot
}

// New creates an insights service.
func New(catalog CatalogSnapshot) *Service {
	return &Service{catalog: catalog}
}

// Filter returns the items matching the conjunction of three predicates:
// brand equality (BrandAny or empty matches all), inclusive price range
// (nil means unbounded), and rating floor. An empty result is valid, not an
// error. Output is id-ordered, so identical arguments on an unmutated store
// return identical results.
func (s *Service) Filter(brand string, priceRange *PriceRange, minRating float64) ([]catalog.Item, error) {
	store, _, err := s.catalog.Snapshot()
	if err != nil {
		return nil, fmt.Errorf("insights: %w", err)
	}

	anyBrand := brand == "" || strings.EqualFold(brand, BrandAny)

	matched := make([]catalog.Item, 0)
	for _, item := range store.All() {
		if !anyBrand && item.Brand() != brand {
			continue
		}
		if priceRange != nil && (item.Price() < priceRange.Min || item.Price() > priceRange.Max) {
			continue
		}
		if item.Rating() < minRating {
			continue
		}
		matched = append(matched, item)
	}
	return matched, nil
}

// TopGroupsByMean groups items by groupKey, computes the arithmetic mean of
// valueKey per group, and returns the topN groups ordered by descending
// mean, ties broken by ascending group label. Groups exist only where items
// do, so no group ever divides by zero.
func (s *Service) TopGroupsByMean(groupKey GroupKey, valueKey ValueKey, topN int) ([]GroupMean, error) {
	if groupKey != GroupByBrand && groupKey != GroupByColor {
		return nil, fmt.Errorf("insights: unsupported group key %q", groupKey)
	}

	store, _, err := s.catalog.Snapshot()
	if err != nil {
		return nil, fmt.Errorf("insights: %w", err)
	}

	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, item := range store.All() {
		group, ok := groupLabel(item, groupKey)
		if !ok {
			continue
		}
		v, err := itemValue(item, valueKey)
		if err != nil {
			return nil, fmt.Errorf("insights: %w", err)
		}
		sums[group] += v
		counts[group]++
	}

	groups := make([]GroupMean, 0, len(sums))
	for g, sum := range sums {
		groups = append(groups, GroupMean{Group: g, Mean: sum / float64(counts[g]), Count: counts[g]})
	}

	sort.Slice(groups, func(i, j int) bool {
		if groups[i].Mean != groups[j].Mean {
			return groups[i].Mean > groups[j].Mean
		}
		return groups[i].Group < groups[j].Group
	})

	if topN >= 0 && len(groups) > topN {
		groups = groups[:topN]
	}
	return groups, nil
}

// SummaryStats aggregates the whole store for dashboard metrics. Reports
// zeros for an empty view instead of failing.
func (s *Service) SummaryStats() (Summary, error) {
	store, _, err := s.catalog.Snapshot()
	if err != nil {
		return Summary{}, fmt.Errorf("insights: %w", err)
	}

	items := store.All()
	if len(items) == 0 {
		return Summary{}, nil
	}

	var priceSum, ratingSum float64
	for _, item := range items {
		priceSum += item.Price()
		ratingSum += item.Rating()
	}
	n := float64(len(items))
	return Summary{
		Count:      len(items),
		MeanPrice:  priceSum / n,
		MeanRating: ratingSum / n,
	}, nil
}

func groupLabel(item catalog.Item, key GroupKey) (string, bool) {
	switch key {
	case GroupByBrand:
		return item.Brand(), item.Brand() != ""
	case GroupByColor:
		return item.Color(), item.Color() != ""
	default:
		return "", false
	}
}

func itemValue(item catalog.Item, key ValueKey) (float64, error) {
	switch key {
	case ValueRating:
		return item.Rating(), nil
	case ValuePrice:
		return item.Price(), nil
	default:
		return 0, fmt.Errorf("unsupported value key %q", key)
	}
}
