package client

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/Sternrassler/wb-catalog-client/pkg/pricing"
)

// wireSort is the sort mode sent on the wire. Result ordering beyond
// popularity is applied locally after normalization.
const wireSort = "popular"

// buildSearchQuery renders the upstream search query string byte-for-byte.
//
// Assembled by hand instead of url.Values.Encode: the upstream parser
// requires the literal ';' separator inside priceU and this exact parameter
// order, with the optional discount parameter trailing. Only the query text
// is percent-encoded.
func buildSearchQuery(cfg Config, query string, bounds pricing.Bounds, discount int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb,
		"appType=1&curr=%s&dest=%s&locale=%s&page=1&priceU=%d;%d&query=%s&resultset=catalog&sort=%s&spp=0&suppressSpellcheck=false",
		cfg.Currency, cfg.Dest, cfg.Locale,
		bounds.WireMin, bounds.WireMax,
		url.QueryEscape(query), wireSort)
	if discount > 0 {
		fmt.Fprintf(&sb, "&discount=%d", discount)
	}
	return sb.String()
}

// buildDetailQuery renders the detail lookup query string for one product.
func buildDetailQuery(cfg Config, id string) string {
	return fmt.Sprintf("appType=1&curr=%s&dest=%s&locale=%s&nm=%s",
		cfg.Currency, cfg.Dest, cfg.Locale, url.QueryEscape(id))
}
