package model

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/unicode/norm"
)

// Tag is an optional highlight label on a menu item.
type Tag string

const (
	TagBestSeller Tag = "Best Seller"
	TagPopular    Tag = "Popular"
	TagNewItem    Tag = "New Item"
)

// Tags lists the accepted labels in display order.
var Tags = []Tag{TagBestSeller, TagPopular, TagNewItem}

// Valid reports whether t is empty (no tag) or one of Tags.
func (t Tag) Valid() bool {
	if t == "" {
		return true
	}
	for _, known := range Tags {
		if t == known {
			return true
		}
	}
	return false
}

// MenuItem is a catalog entry.
//
// DiscountedPrice is nil when the item has no discount. When set it must not
// exceed Price.
type MenuItem struct {
	ID              string           `json:"id"`
	Name            string           `json:"name"`
	Category        string           `json:"category"`
	Price           decimal.Decimal  `json:"price"`
	DiscountedPrice *decimal.Decimal `json:"discountedPrice,omitempty"`
	Available       bool             `json:"available"`
	Veg             bool             `json:"veg"`
	Description     string           `json:"description"`
	Tag             Tag              `json:"tag,omitempty"`
	Image           string           `json:"image,omitempty"`
}

// EffectivePrice is the unit price a buyer pays: the discounted price when
// one exists, the base price otherwise.
func (m MenuItem) EffectivePrice() decimal.Decimal {
	if m.DiscountedPrice != nil {
		return *m.DiscountedPrice
	}
	return m.Price
}

// UnitSaving is Price minus DiscountedPrice, or zero without a discount.
func (m MenuItem) UnitSaving() decimal.Decimal {
	if m.DiscountedPrice == nil {
		return decimal.Zero
	}
	return m.Price.Sub(*m.DiscountedPrice)
}

// Normalize trims free-text fields and puts them in Unicode NFC so that
// visually identical names compare and search equal.
func (m MenuItem) Normalize() MenuItem {
	m.Name = norm.NFC.String(strings.TrimSpace(m.Name))
	m.Category = norm.NFC.String(strings.TrimSpace(m.Category))
	m.Description = norm.NFC.String(strings.TrimSpace(m.Description))
	m.Image = strings.TrimSpace(m.Image)
	return m
}

// Validate checks the catalog editor's rules: name, category and price are
// mandatory; discount, tag and image are optional.
func (m MenuItem) Validate() error {
	if m.Name == "" {
		return &ValidationError{Field: "name", Message: "name is required"}
	}
	if m.Category == "" {
		return &ValidationError{Field: "category", Message: "category is required"}
	}
	if m.Price.IsNegative() {
		return &ValidationError{Field: "price", Message: "price must not be negative"}
	}
	if d := m.DiscountedPrice; d != nil {
		if d.IsNegative() {
			return &ValidationError{Field: "discountedPrice", Message: "discounted price must not be negative"}
		}
		if d.GreaterThan(m.Price) {
			return &ValidationError{
				Field:   "discountedPrice",
				Message: fmt.Sprintf("discounted price %s exceeds price %s", d, m.Price),
			}
		}
	}
	if !m.Tag.Valid() {
		return &ValidationError{Field: "tag", Message: fmt.Sprintf("unknown tag %q", m.Tag)}
	}
	return nil
}

// ValidationError reports a rejected record field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// ParsePrice parses a user-supplied amount such as "45" or "12.50".
func ParsePrice(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse price %q: %w", s, err)
	}
	return d, nil
}
