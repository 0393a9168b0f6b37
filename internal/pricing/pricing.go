package pricing

import (
	"strings"

	"github.com/dustin/go-humanize"

	"stickerstreet/internal/structs"
)

// ResolvePrice returns the price triple for size. An override for size wins
// field by field; without one the base triple is returned as is.
func ResolvePrice(p structs.Product, size string) structs.Prices {
	base := structs.Prices{
		Price: p.Price.Float(),
		Ton:   p.Ton.Float(),
		Xof:   p.Xof.Float(),
	}

	override, ok := p.PricesBySize[size]
	if !ok {
		return base
	}

	if override.Price != nil {
		base.Price = override.Price.Float()
	}
	if override.Ton != nil {
		base.Ton = override.Ton.Float()
	}
	if override.Xof != nil {
		base.Xof = override.Xof.Float()
	}
	return base
}

// WithVisuals normalises the gallery: empty entries are dropped, img is put
// first when missing, and a non-empty gallery is padded to three entries by
// repeating the first one.
func WithVisuals(p structs.Product) structs.Product {
	visuals := make([]string, 0, 3)
	for _, v := range p.Visuals {
		if v != "" {
			visuals = append(visuals, v)
		}
	}

	if p.Img != "" && !contains(visuals, p.Img) {
		visuals = append([]string{p.Img}, visuals...)
	}

	for len(visuals) > 0 && len(visuals) < 3 {
		visuals = append(visuals, visuals[0])
	}

	p.Visuals = visuals
	return p
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// Totals returns the cart total in XOF and the number of units.
func Totals(cart []structs.CartItem) (totalXof float64, count int) {
	for _, i := range cart {
		totalXof += i.Xof * float64(i.Qty)
		count += i.Qty
	}
	return totalXof, count
}

// FormatXOF renders an amount the way receipts show it: "1 500 F".
func FormatXOF(v float64) string {
	return strings.ReplaceAll(humanize.Comma(int64(v)), ",", " ") + " F"
}
