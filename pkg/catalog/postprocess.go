package catalog

import (
	"sort"
	"strings"

	"github.com/rs/zerolog"
)

// Sort modes for search results.
const (
	// SortPopular keeps the upstream popularity order (default).
	SortPopular = "popular"

	// SortPriceAsc orders by effective price, cheapest first.
	SortPriceAsc = "price_asc"

	// SortPriceDesc orders by effective price, most expensive first.
	SortPriceDesc = "price_desc"

	// SortRating orders by rating, best first. Non-numeric ratings sort last.
	SortRating = "rating"
)

// FilterByCategory keeps items whose name or brand contains the category,
// case-insensitively. The filter fails open: when it would remove every
// item it is discarded with a warning and the unfiltered set is kept.
func FilterByCategory(items []ProductSummary, category string, logger zerolog.Logger) []ProductSummary {
	if category == "" || len(items) == 0 {
		return items
	}

	needle := strings.ToLower(category)
	filtered := make([]ProductSummary, 0, len(items))
	for _, item := range items {
		if strings.Contains(strings.ToLower(item.Name), needle) ||
			strings.Contains(strings.ToLower(item.Brand), needle) {
			filtered = append(filtered, item)
		}
	}

	if len(filtered) == 0 {
		logger.Warn().
			Str("category", category).
			Int("items", len(items)).
			Msg("Category filter matched nothing, keeping unfiltered results")
		return items
	}
	return filtered
}

// SortProducts orders items in place according to the given mode. Unknown
// modes and SortPopular leave the upstream order untouched.
func SortProducts(items []ProductSummary, mode string) {
	switch mode {
	case SortPriceAsc:
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].EffectivePrice() < items[j].EffectivePrice()
		})
	case SortPriceDesc:
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].EffectivePrice() > items[j].EffectivePrice()
		})
	case SortRating:
		sort.SliceStable(items, func(i, j int) bool {
			return ratingKey(items[i].Rating) > ratingKey(items[j].Rating)
		})
	}
}

// ratingKey maps a rating to a sortable value; ratings that never coerced
// to a number rank below every numeric rating.
func ratingKey(r Rating) float64 {
	if !r.IsNumeric() {
		return -1
	}
	return r.Value
}
