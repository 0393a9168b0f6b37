package structs

// Prices is the {usd, ton, xof} triple. USD travels as "price" on the wire.
type Prices struct {
	Price float64 `json:"price"`
	Ton   float64 `json:"ton"`
	Xof   float64 `json:"xof"`
}

// SizePrice is a per-size override; a nil field falls back to the base price.
type SizePrice struct {
	Price *Amount `json:"price,omitempty"`
	Ton   *Amount `json:"ton,omitempty"`
	Xof   *Amount `json:"xof,omitempty"`
}

type Product struct {
	ID           int64                `json:"id"`
	Name         string               `json:"name"`
	Cat          string               `json:"cat"`
	Emoji        string               `json:"emoji"`
	Grad         string               `json:"grad,omitempty"`
	Desc         string               `json:"desc"`
	Img          string               `json:"img,omitempty"`
	Visuals      []string             `json:"visuals,omitempty"`
	Sizes        []string             `json:"sizes"`
	Price        Amount               `json:"price"`
	Ton          Amount               `json:"ton"`
	Xof          Amount               `json:"xof"`
	PricesBySize map[string]SizePrice `json:"pricesBySize,omitempty"`
	Custom       bool                 `json:"custom"`
}

// Thumbnail is the canonical image of the product: first visual, else img.
func (p Product) Thumbnail() string {
	if len(p.Visuals) > 0 && p.Visuals[0] != "" {
		return p.Visuals[0]
	}
	return p.Img
}

func (p Product) HasSize(size string) bool {
	for _, s := range p.Sizes {
		if s == size {
			return true
		}
	}
	return false
}

// ProductPayload is the body of product create/patch requests.
type ProductPayload struct {
	Name         string               `json:"name"`
	Cat          string               `json:"cat"`
	Xof          float64              `json:"xof"`
	Price        float64              `json:"price"`
	Ton          float64              `json:"ton"`
	Sizes        []string             `json:"sizes"`
	Desc         string               `json:"desc"`
	Custom       bool                 `json:"custom"`
	Emoji        string               `json:"emoji"`
	Grad         string               `json:"grad"`
	Visuals      []string             `json:"visuals"`
	Img          string               `json:"img"`
	PricesBySize map[string]SizePrice `json:"pricesBySize"`
}
