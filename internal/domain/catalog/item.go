package catalog

import "strings"

// Item is one validated catalog entry (immutable value object).
type Item struct {
	id          string
	name        string
	brand       string
	description string
	attributes  string
	price       float64
	rating      float64
	imageURL    string
	color       string
}

// Reconstruct creates an Item without validation (store hydration).
// Normalization and validation happen in Load.
func Reconstruct(
	id, name, brand, description, attributes string,
	price, rating float64,
	imageURL, color string,
) Item {
	return Item{
		id: id, name: name, brand: brand,
		description: description, attributes: attributes,
		price: price, rating: rating,
		imageURL: imageURL, color: color,
	}
}

// ID returns the stable item identifier.
func (i *Item) ID() string { return i.id }

// Name returns the item name.
func (i *Item) Name() string { return i.name }

// Brand returns the item brand.
func (i *Item) Brand() string { return i.brand }

// Description returns the free-text description (possibly empty).
func (i *Item) Description() string { return i.description }

// Attributes returns the free-text attribute blob (possibly empty).
func (i *Item) Attributes() string { return i.attributes }

// Price returns the non-negative item price.
func (i *Item) Price() float64 { return i.price }

// Rating returns the item rating in [0, 5].
func (i *Item) Rating() float64 { return i.rating }

// ImageURL returns the image reference (possibly empty).
func (i *Item) ImageURL() string { return i.imageURL }

// Color returns the item color (possibly empty).
func (i *Item) Color() string { return i.color }

// CombinedText concatenates name, description and attributes.
// Used only as embedding input.
func (i *Item) CombinedText() string {
	parts := make([]string, 0, 3)
	for _, s := range []string{i.name, i.description, i.attributes} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}
