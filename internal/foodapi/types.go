package foodapi

import "strings"

// Item mirrors one inventory record returned by /inventory.
type Item struct {
	ID          string `json:"_id"`
	Name        string `json:"name"`
	Brands      string `json:"brands,omitempty"`
	Quantity    string `json:"quantity"`
	Ingredients string `json:"ingredients,omitempty"`
	Categories  string `json:"categories,omitempty"`
	ImageURL    string `json:"imageUrl,omitempty"`
	URL         string `json:"url,omitempty"`
	Count       int    `json:"count"`
	ExpiryDate  string `json:"expiryDate,omitempty"`
}

// Product is a catalog record from /search and the payload posted to /add.
type Product struct {
	Name        string `json:"name" validate:"required"`
	Ingredients string `json:"ingredients,omitempty"`
	Brands      string `json:"brands" validate:"required"`
	Quantity    string `json:"quantity" validate:"required"`
	Categories  string `json:"categories,omitempty"`
	ImageURL    string `json:"imageUrl,omitempty"`
	URL         string `json:"url,omitempty"`
}

// Trimmed returns a copy with surrounding whitespace removed from every field.
func (p Product) Trimmed() Product {
	return Product{
		Name:        strings.TrimSpace(p.Name),
		Ingredients: strings.TrimSpace(p.Ingredients),
		Brands:      strings.TrimSpace(p.Brands),
		Quantity:    strings.TrimSpace(p.Quantity),
		Categories:  strings.TrimSpace(p.Categories),
		ImageURL:    strings.TrimSpace(p.ImageURL),
		URL:         strings.TrimSpace(p.URL),
	}
}

// expiryPatch is the body sent to /update/{id}.
type expiryPatch struct {
	ExpiryDate string `json:"expiryDate"`
}
