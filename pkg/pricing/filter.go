// Package pricing translates caller-supplied price bounds into the wire
// units the upstream catalog expects.
package pricing

// Default price window in major currency units, applied when a bound is
// absent (zero).
const (
	DefaultMin = 1
	DefaultMax = 1_000_000
)

// minorPerMajor converts major currency units to the upstream's minor units.
const minorPerMajor = 100

// Bounds is a wire-ready price window in minor currency units.
//
// The upstream applies the window asymmetrically: the minimum constrains an
// item's base (pre-discount) price, the maximum its sale (post-discount)
// price. Contradictory bounds (min > max) are forwarded untouched; the
// upstream applies the min bound first, which may legitimately yield an
// empty result.
type Bounds struct {
	WireMin int64
	WireMax int64

	// Clamped reports that the minimum was below the floor and was raised
	// to DefaultMin.
	Clamped bool

	// Contradictory reports that min > max after defaulting.
	Contradictory bool
}

// Translate maps optional min/max prices in major units to wire bounds.
// A zero bound means absent and takes the default; a minimum below 1 is
// clamped to 1. Pure and deterministic; callers own the warning logs.
func Translate(minPrice, maxPrice int) Bounds {
	var b Bounds

	if minPrice == 0 {
		minPrice = DefaultMin
	} else if minPrice < DefaultMin {
		minPrice = DefaultMin
		b.Clamped = true
	}
	if maxPrice == 0 {
		maxPrice = DefaultMax
	}

	b.WireMin = int64(minPrice) * minorPerMajor
	b.WireMax = int64(maxPrice) * minorPerMajor
	b.Contradictory = minPrice > maxPrice
	return b
}
