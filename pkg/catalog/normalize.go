package catalog

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Sternrassler/wb-catalog-client/pkg/logging"
)

// Default URL templates for the upstream catalog. The image template takes
// the product id and a 1-based picture index.
const (
	DefaultProductURLTemplate = "https://www.wildberries.ru/catalog/%s/detail.aspx"
	DefaultImageURLTemplate   = "https://images.wbstatic.net/big/new/%s-%d.jpg"
)

// searchEnvelope is the upstream response wrapper. A missing data.products
// is an empty result, not an error.
type searchEnvelope struct {
	Data struct {
		Products []rawItem `json:"products"`
	} `json:"data"`
}

// rawItem is the lenient decode target for one upstream product record.
// Field types are deliberately loose: the upstream mixes numbers and strings
// for the same field across responses, and several fields change shape.
type rawItem struct {
	ID          any    `json:"id"`
	Name        string `json:"name"`
	Brand       string `json:"brand"`
	PriceU      any    `json:"priceU"`
	SalePriceU  any    `json:"salePriceU"`
	Rating      any    `json:"rating"`
	Feedbacks   any    `json:"feedbacks"`
	Category    string `json:"subjectName"`
	Colors      any    `json:"colors"`
	Sizes       any    `json:"sizes"`
	Pics        any    `json:"pics"`
	ImageURL    string `json:"image"`
	URL         string `json:"url"`
	Description string `json:"description"`
	Composition string `json:"consist"`
	Available   any    `json:"available"`
}

// Normalizer converts raw upstream payloads into the catalog model.
// A bad field degrades to a default or passes through unchanged; a record is
// dropped only when it lacks an id or a name.
type Normalizer struct {
	ProductURLTemplate string
	ImageURLTemplate   string

	logger zerolog.Logger
}

// NewNormalizer creates a Normalizer with the default URL templates.
func NewNormalizer() *Normalizer {
	return &Normalizer{
		ProductURLTemplate: DefaultProductURLTemplate,
		ImageURLTemplate:   DefaultImageURLTemplate,
		logger:             logging.NewLogger("normalizer"),
	}
}

// Summaries parses a search response body into normalized summaries.
// Invalid JSON is a parse failure; an envelope without data.products is an
// empty result.
func (n *Normalizer) Summaries(body []byte) ([]ProductSummary, error) {
	var envelope searchEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	items := make([]ProductSummary, 0, len(envelope.Data.Products))
	for _, raw := range envelope.Data.Products {
		summary, ok := n.summary(raw)
		if !ok {
			n.logger.Warn().Msg("Dropping product record without id or name")
			continue
		}
		items = append(items, summary)
	}
	return items, nil
}

// Detail parses a detail response body. The upstream answers detail lookups
// with the same envelope; the first product is taken. Returns nil when the
// envelope carries no products.
func (n *Normalizer) Detail(body []byte) (*ProductDetail, error) {
	var envelope searchEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decode detail response: %w", err)
	}
	if len(envelope.Data.Products) == 0 {
		return nil, nil
	}

	raw := envelope.Data.Products[0]
	summary, ok := n.summary(raw)
	if !ok {
		n.logger.Warn().Msg("Dropping detail record without id or name")
		return nil, nil
	}

	detail := &ProductDetail{
		ProductSummary: summary,
		Category:       raw.Category,
		Colors:         normalizeColors(raw.Colors),
		Sizes:          NormalizeSizes(raw.Sizes),
		Description:    raw.Description,
		Composition:    raw.Composition,
		Available:      coerceBool(raw.Available),
		Images:         n.images(summary.ID, raw.Pics, summary.ImageURL),
	}
	if reviews, ok := coerceInt(raw.Feedbacks); ok {
		detail.ReviewCount = int(reviews)
	}
	return detail, nil
}

func (n *Normalizer) summary(raw rawItem) (ProductSummary, bool) {
	id := coerceID(raw.ID)
	if id == "" || raw.Name == "" {
		return ProductSummary{}, false
	}

	summary := ProductSummary{
		ID:    id,
		Name:  raw.Name,
		Brand: raw.Brand,
	}

	// Prices arrive in minor units; integer division drops the kopecks.
	if priceU, ok := coerceInt(raw.PriceU); ok {
		summary.Price = int(priceU / 100)
	}
	if saleU, ok := coerceInt(raw.SalePriceU); ok {
		summary.SalePrice = int(saleU / 100)
	}
	if summary.SalePrice == 0 {
		summary.SalePrice = summary.Price
	}
	summary.DiscountPct = discountPercent(summary.Price, summary.SalePrice)
	summary.Rating = coerceRating(raw.Rating)

	summary.URL = raw.URL
	if summary.URL == "" {
		summary.URL = fmt.Sprintf(n.ProductURLTemplate, id)
	}
	summary.ImageURL = raw.ImageURL
	if summary.ImageURL == "" {
		summary.ImageURL = fmt.Sprintf(n.ImageURLTemplate, id, 1)
	}
	return summary, true
}

// images builds the image list. The upstream usually reports a picture
// count; a list of URLs is accepted as-is.
func (n *Normalizer) images(id string, pics any, fallback string) []string {
	switch v := pics.(type) {
	case []any:
		urls := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok && s != "" {
				urls = append(urls, s)
			}
		}
		if len(urls) > 0 {
			return urls
		}
	default:
		if count, ok := coerceInt(pics); ok && count > 0 {
			if count > 30 {
				count = 30
			}
			urls := make([]string, 0, count)
			for i := 1; i <= int(count); i++ {
				urls = append(urls, fmt.Sprintf(n.ImageURLTemplate, id, i))
			}
			return urls
		}
	}
	if fallback != "" {
		return []string{fallback}
	}
	return nil
}

var sizeSeparators = regexp.MustCompile(`[,;|]`)

// NormalizeSizes flattens the upstream size field into opaque descriptors.
// Accepted shapes: a delimited string, a list of strings, a list of records
// carrying a name. Unknown shapes pass through stringified.
func NormalizeSizes(v any) []string {
	switch sizes := v.(type) {
	case nil:
		return nil
	case string:
		parts := sizeSeparators.Split(sizes, -1)
		out := make([]string, 0, len(parts))
		for _, part := range parts {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		return out
	case []any:
		out := make([]string, 0, len(sizes))
		for _, item := range sizes {
			switch size := item.(type) {
			case string:
				if trimmed := strings.TrimSpace(size); trimmed != "" {
					out = append(out, trimmed)
				}
			case map[string]any:
				out = append(out, sizeRecordName(size))
			default:
				out = append(out, fmt.Sprint(size))
			}
		}
		return out
	default:
		return []string{fmt.Sprint(v)}
	}
}

// sizeRecordName extracts a label from a structured size record, preferring
// the human-readable name over the manufacturer one.
func sizeRecordName(record map[string]any) string {
	for _, key := range []string{"name", "origName"} {
		if s, ok := record[key].(string); ok && s != "" {
			return s
		}
	}
	return fmt.Sprint(record)
}

// normalizeColors accepts a list of color records or plain strings and
// returns the distinct names in upstream order.
func normalizeColors(v any) []string {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	seen := make(map[string]bool, len(list))
	out := make([]string, 0, len(list))
	for _, item := range list {
		var name string
		switch color := item.(type) {
		case string:
			name = color
		case map[string]any:
			if s, ok := color["name"].(string); ok {
				name = s
			}
		}
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// coerceID renders the product id as a string. Numeric ids are common.
func coerceID(v any) string {
	switch id := v.(type) {
	case string:
		return strings.TrimSpace(id)
	case float64:
		return strconv.FormatInt(int64(id), 10)
	case json.Number:
		return id.String()
	default:
		return ""
	}
}

// coerceInt converts a loosely typed numeric field to int64.
func coerceInt(v any) (int64, bool) {
	switch n := v.(type) {
	case float64:
		return int64(n), true
	case int:
		return int64(n), true
	case int64:
		return n, true
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	case string:
		f, ok := numericString(n)
		if !ok {
			return 0, false
		}
		return int64(f), true
	default:
		return 0, false
	}
}

// coerceRating converts a loosely typed rating field. Values that resist
// coercion keep their original string form.
func coerceRating(v any) Rating {
	switch r := v.(type) {
	case nil:
		return Rating{}
	case float64:
		return Rating{Value: r}
	case json.Number:
		if f, err := r.Float64(); err == nil {
			return Rating{Value: f}
		}
		return Rating{Raw: r.String()}
	case string:
		if f, ok := numericString(r); ok {
			return Rating{Value: f}
		}
		return Rating{Raw: r}
	default:
		return Rating{Raw: fmt.Sprint(r)}
	}
}

func coerceBool(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case float64:
		return b > 0
	case string:
		return b == "true" || b == "1"
	default:
		return false
	}
}

var numericPattern = regexp.MustCompile(`[-+]?\d+(\.\d+)?`)

// numericString extracts a number from localized text: thousands separators
// are stripped, a decimal comma becomes a decimal point, and the first
// numeric substring wins ("4,7" -> 4.7, "1 234,50 ₽" -> 1234.5).
func numericString(s string) (float64, bool) {
	cleaned := strings.Map(func(r rune) rune {
		if r == ' ' || r == '\u00a0' || r == '\'' {
			return -1
		}
		return r
	}, s)

	if strings.Contains(cleaned, ",") && strings.Contains(cleaned, ".") {
		// Both present: the comma is a thousands separator.
		cleaned = strings.ReplaceAll(cleaned, ",", "")
	} else {
		cleaned = strings.ReplaceAll(cleaned, ",", ".")
	}

	match := numericPattern.FindString(cleaned)
	if match == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
