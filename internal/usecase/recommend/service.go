package recommend

import (
	"fmt"
	"math"
	"sort"

	"github.com/smartstyle-cloud/styledex/internal/domain/catalog"
)

// maxSaferAlternatives caps the same-brand dominating suggestion list.
const maxSaferAlternatives = 2

// Thresholds holds the risk/confidence classification cutoffs.
type Thresholds struct {
	SafeBetMinRating  float64
	HighRiskMinPrice  float64
	HighRiskMaxRating float64
}

// DefaultThresholds returns the production cutoffs. SafeBetMinRating >=
// HighRiskMaxRating keeps the two classes mutually exclusive.
func DefaultThresholds() Thresholds {
	return Thresholds{
		SafeBetMinRating:  4.5,
		HighRiskMinPrice:  3000,
		HighRiskMaxRating: 4.2,
	}
}

// Service derives recommendation lists from the similarity index under
// rating and price constraints.
type Service struct {
	catalog    CatalogSnapshot
	thresholds Thresholds
}

// New creates a recommendation service with default thresholds.
func New(catalog CatalogSnapshot) *Service {
	return &Service{catalog: catalog, thresholds: DefaultThresholds()}
}

// WithThresholds overrides the classification thresholds.
func (s *Service) WithThresholds(t Thresholds) *Service {
	s.thresholds = t
	return s
}

// Similar returns up to topN neighbors of the base item, in descending
// similarity order, skipping items whose rounded rating is below minRating.
// Rounding is half-to-even: 3.5 rounds to 4 and clears a floor of 4, while
// 4.5 rounds to 4 and misses a floor of 5.
func (s *Service) Similar(id string, topN int, minRating float64) ([]catalog.Item, error) {
	return s.walk(id, topN, minRating, nil)
}

// CheaperAlternatives is the Similar walk with an additional price filter:
// only items strictly cheaper than the base qualify. Ordering stays by
// similarity; cheapness is a filter, not a ranking key.
func (s *Service) CheaperAlternatives(id string, topN int, minRating float64) ([]catalog.Item, error) {
	return s.walk(id, topN, minRating, func(base, candidate catalog.Item) bool {
		return candidate.Price() < base.Price()
	})
}

// walk traverses the neighbor ranking of id, keeping items that clear the
// rating floor and the optional extra predicate, until topN are collected or
// the ranking is exhausted.
func (s *Service) walk(
	id string, topN int, minRating float64,
	accept func(base, candidate catalog.Item) bool,
) ([]catalog.Item, error) {
	store, index, err := s.catalog.Snapshot()
	if err != nil {
		return nil, fmt.Errorf("recommend: %w", err)
	}

	base, err := store.Get(id)
	if err != nil {
		return nil, fmt.Errorf("recommend: %w", err)
	}

	if topN <= 0 {
		return []catalog.Item{}, nil
	}

	neighbors, err := index.Neighbors(id)
	if err != nil {
		return nil, fmt.Errorf("recommend: %w", err)
	}

	picked := make([]catalog.Item, 0, topN)
	for _, n := range neighbors {
		item, err := store.Get(n.ID)
		if err != nil {
			return nil, fmt.Errorf("recommend: %w", err)
		}
		if math.RoundToEven(item.Rating()) < minRating {
			continue
		}
		if accept != nil && !accept(base, item) {
			continue
		}
		picked = append(picked, item)
		if len(picked) == topN {
			break
		}
	}
	return picked, nil
}

// IsSafeBet reports whether an item clears the safe-bet rating threshold.
func (s *Service) IsSafeBet(item catalog.Item) bool {
	return item.Rating() >= s.thresholds.SafeBetMinRating
}

// IsHighRisk reports whether an item is priced above the risk floor while
// rated below the risk ceiling. Never true together with IsSafeBet.
func (s *Service) IsHighRisk(item catalog.Item) bool {
	return item.Price() > s.thresholds.HighRiskMinPrice &&
		item.Rating() < s.thresholds.HighRiskMaxRating
}

// SaferAlternatives selects, from the whole store, same-brand items that are
// strictly cheaper and strictly higher rated than the given item, ordered by
// descending rating (ties by ascending id), capped at two. Content
// similarity is intentionally ignored: same brand, strictly better.
func (s *Service) SaferAlternatives(item catalog.Item) ([]catalog.Item, error) {
	store, _, err := s.catalog.Snapshot()
	if err != nil {
		return nil, fmt.Errorf("recommend: %w", err)
	}

	var candidates []catalog.Item
	for _, other := range store.All() {
		if other.ID() == item.ID() {
			continue
		}
		if other.Brand() != item.Brand() {
			continue
		}
		if other.Price() < item.Price() && other.Rating() > item.Rating() {
			candidates = append(candidates, other)
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Rating() != candidates[j].Rating() {
			return candidates[i].Rating() > candidates[j].Rating()
		}
		return candidates[i].ID() < candidates[j].ID()
	})

	if len(candidates) > maxSaferAlternatives {
		candidates = candidates[:maxSaferAlternatives]
	}
	return candidates, nil
}
