// Package catalog defines the normalized product model and the conversion
// from raw upstream catalog records into that model.
package catalog

import (
	"encoding/json"
)

// ProductSummary is one normalized search result item.
//
// Prices are in major currency units. SalePrice defaults to Price when the
// upstream reports it as zero or absent. The upstream does NOT guarantee
// SalePrice <= Price; that quirk is preserved, not corrected.
type ProductSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Brand       string `json:"brand"`
	Price       int    `json:"price"`
	SalePrice   int    `json:"sale_price"`
	DiscountPct int    `json:"discount_pct"`
	Rating      Rating `json:"rating"`
	URL         string `json:"url"`
	ImageURL    string `json:"image_url"`
}

// EffectivePrice is the price a buyer would pay: the sale price when the
// upstream reports one, otherwise the base price.
func (p ProductSummary) EffectivePrice() int {
	if p.SalePrice > 0 {
		return p.SalePrice
	}
	return p.Price
}

// ProductDetail is the full product record returned by detail lookups.
type ProductDetail struct {
	ProductSummary

	Category    string   `json:"category,omitempty"`
	Colors      []string `json:"colors,omitempty"`
	Sizes       []string `json:"sizes,omitempty"`
	ReviewCount int      `json:"review_count"`
	Images      []string `json:"images,omitempty"`
	Description string   `json:"description,omitempty"`
	Composition string   `json:"composition,omitempty"`
	Available   bool     `json:"available"`
}

// Rating is a best-effort numeric rating. The upstream mixes plain numbers,
// localized strings ("4,7") and junk ("n/a") in the same field; values that
// cannot be coerced keep their original string form instead of failing.
type Rating struct {
	Value float64
	Raw   string // original text, set only when numeric coercion failed
}

// IsNumeric reports whether the rating coerced to a number.
func (r Rating) IsNumeric() bool { return r.Raw == "" }

// MarshalJSON emits a number for coerced ratings and the original string
// otherwise, so cached entries round-trip without losing the raw form.
func (r Rating) MarshalJSON() ([]byte, error) {
	if r.Raw != "" {
		return json.Marshal(r.Raw)
	}
	return json.Marshal(r.Value)
}

// UnmarshalJSON accepts both forms and re-applies the coercion rules to
// string input.
func (r *Rating) UnmarshalJSON(data []byte) error {
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		*r = Rating{Value: f}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*r = coerceRating(s)
	return nil
}

// discountPercent derives the discount from base and sale price.
// Zero when the base price is unknown or the sale price is not a markdown.
func discountPercent(base, sale int) int {
	if base > 0 && sale < base {
		ratio := float64(sale) / float64(base)
		return int(100*(1-ratio) + 0.5)
	}
	return 0
}
