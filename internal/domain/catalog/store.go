package catalog

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/smartstyle-cloud/styledex/internal/domain"
)

// Row is one raw ingest row before normalization. All fields arrive as text;
// price and rating are coerced during Load.
type Row struct {
	ID          string
	Name        string
	Brand       string
	Description string
	Attributes  string
	Price       string
	Rating      string
	ImageURL    string
	Color       string
}

// Store is an immutable snapshot of validated items. All reads are pure;
// nothing mutates a Store after Load returns it.
type Store struct {
	items     []Item
	byID      map[string]int
	maxRating float64
}

// Load normalizes raw rows into a Store. Rows missing id, name, brand, price
// or rating are dropped, as are rows whose price or rating fails numeric
// coercion or falls outside its domain (price >= 0, rating in [0, 5]).
// Description, attributes, image and color default to empty strings.
// Fails with domain.ErrEmptyCatalog when no valid rows remain.
func Load(rows []Row) (*Store, error) {
	items := make([]Item, 0, len(rows))
	seen := make(map[string]bool, len(rows))

	for _, r := range rows {
		item, ok := normalize(r)
		if !ok || seen[item.id] {
			continue
		}
		seen[item.id] = true
		items = append(items, item)
	}

	if len(items) == 0 {
		return nil, fmt.Errorf("load catalog: %w", domain.ErrEmptyCatalog)
	}

	sort.Slice(items, func(i, j int) bool { return items[i].id < items[j].id })

	byID := make(map[string]int, len(items))
	maxRating := 0.0
	for i, it := range items {
		byID[it.id] = i
		if it.rating > maxRating {
			maxRating = it.rating
		}
	}

	return &Store{items: items, byID: byID, maxRating: maxRating}, nil
}

// normalize coerces and validates one row.
func normalize(r Row) (Item, bool) {
	id := strings.TrimSpace(r.ID)
	name := strings.TrimSpace(r.Name)
	brand := strings.TrimSpace(r.Brand)
	if id == "" || name == "" || brand == "" {
		return Item{}, false
	}

	price, ok := parseNumeric(r.Price)
	if !ok || price < 0 {
		return Item{}, false
	}
	rating, ok := parseNumeric(r.Rating)
	if !ok || rating < 0 || rating > 5 {
		return Item{}, false
	}

	return Reconstruct(
		id, name, brand,
		strings.TrimSpace(r.Description),
		strings.TrimSpace(r.Attributes),
		price, rating,
		strings.TrimSpace(r.ImageURL),
		strings.TrimSpace(r.Color),
	), true
}

func parseNumeric(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// Size returns the number of items in the store.
func (s *Store) Size() int { return len(s.items) }

// Get returns the item with the given id.
// Fails with domain.ErrItemNotFound on unknown ids.
func (s *Store) Get(id string) (Item, error) {
	i, ok := s.byID[id]
	if !ok {
		return Item{}, fmt.Errorf("get item %q: %w", id, domain.ErrItemNotFound)
	}
	return s.items[i], nil
}

// Has reports whether an item with the given id exists.
func (s *Store) Has(id string) bool {
	_, ok := s.byID[id]
	return ok
}

// All returns every item ordered by ascending id. The returned slice is a
// copy; callers may reorder it freely.
func (s *Store) All() []Item {
	out := make([]Item, len(s.items))
	copy(out, s.items)
	return out
}

// MaxRating returns the highest rating across the whole store, computed once
// at load time (never per filtered subset).
func (s *Store) MaxRating() float64 { return s.maxRating }

// ConfidenceScore derives the 0-100 confidence score for an item relative to
// the store-wide maximum rating.
func (s *Store) ConfidenceScore(item Item) int {
	if s.maxRating == 0 {
		return 0
	}
	return int(math.Round(item.rating / s.maxRating * 100))
}
