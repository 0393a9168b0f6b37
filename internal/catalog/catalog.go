package catalog

import (
	"stickerstreet/internal/structs"
)

const (
	CategoryAll      = "all"
	CategoryStickers = "stickers"
	CategoryFlyers   = "flyers"
	CategoryCartes   = "cartes"
)

var Categories = []string{CategoryStickers, CategoryFlyers, CategoryCartes}

type StatusInfo struct {
	Label string
	Color string
	Icon  string
}

var Statuses = map[structs.OrderStatus]StatusInfo{
	structs.OrderStatusPending:    {Label: "En attente", Color: "#F59E0B", Icon: "⏳"},
	structs.OrderStatusConfirmed:  {Label: "Confirmée", Color: "#00B894", Icon: "✅"},
	structs.OrderStatusProduction: {Label: "En production", Color: "#E17055", Icon: "🔧"},
	structs.OrderStatusShipped:    {Label: "Expédiée", Color: "#0984E3", Icon: "📦"},
	structs.OrderStatusDelivered:  {Label: "Livrée", Color: "#00CEC9", Icon: "🎉"},
}

func StatusLabel(s structs.OrderStatus) (string, string) {
	if info, ok := Statuses[s]; ok {
		return info.Icon, info.Label
	}
	return "📦", string(s)
}

var momoOperators = []structs.MomoOperator{
	{ID: "moov", Name: "Moov Money", Num: "0171476415", Color: "#0066CC", Logo: "🔵"},
	{ID: "orange", Name: "Orange Money", Num: "0714441413", Color: "#FF6600", Logo: "🟠"},
	{ID: "mtn", Name: "MTN MoMo", Num: "0564173232", Color: "#FFCC00", Logo: "🟡"},
	{ID: "wave", Name: "Wave", Num: "0709393959", Color: "#F7931A", Logo: "💸"},
	{ID: "djamo", Name: "Djamo", Num: "0709393959", Color: "#00D26A", Logo: "💳", Link: "https://pay.djamo.com/pkbyg"},
}

// MomoOperators returns a copy of the built-in mobile-money operators.
func MomoOperators() []structs.MomoOperator {
	return append([]structs.MomoOperator(nil), momoOperators...)
}

type sizeRow struct {
	size            string
	price, ton, xof float64
}

func sizes(rows ...sizeRow) ([]string, map[string]structs.SizePrice) {
	names := make([]string, 0, len(rows))
	table := make(map[string]structs.SizePrice, len(rows))
	for _, r := range rows {
		names = append(names, r.size)
		table[r.size] = structs.SizePrice{
			Price: structs.AmountPtr(r.price),
			Ton:   structs.AmountPtr(r.ton),
			Xof:   structs.AmountPtr(r.xof),
		}
	}
	return names, table
}

func product(id int64, name, cat, emoji, img, grad, desc string, price, ton, xof float64, custom bool, rows ...sizeRow) structs.Product {
	p := structs.Product{
		ID:     id,
		Name:   name,
		Cat:    cat,
		Emoji:  emoji,
		Img:    img,
		Grad:   grad,
		Desc:   desc,
		Price:  structs.Amount(price),
		Ton:    structs.Amount(ton),
		Xof:    structs.Amount(xof),
		Custom: custom,
	}
	p.Sizes, p.PricesBySize = sizes(rows...)
	return p
}

// Products returns the built-in catalog used when the API has nothing to offer.
func Products() []structs.Product {
	dieCut := product(8, "Die-Cut Premium", CategoryStickers, "⭐", "/images/stickers2.png",
		"linear-gradient(135deg, #00CEC9, #00B894)", "Shape-cut sticker, waterproof premium vinyl", 5, 0.75, 3000, true)
	dieCut.Sizes = []string{"Custom"}
	dieCut.PricesBySize = nil

	return []structs.Product{
		product(1, "Skull Graffiti", CategoryStickers, "💀", "/images/skull-graffiti.png",
			"linear-gradient(135deg, #FF6B6B, #EE5A24)", "Graffiti skull sticker, UV-resistant high quality vinyl", 2.5, 0.4, 1500, true,
			sizeRow{"5×5cm", 2, 0.35, 1200}, sizeRow{"8×8cm", 2.5, 0.4, 1500}, sizeRow{"10×10cm", 3.5, 0.55, 2100}),
		product(2, "Pack Urban Mix", CategoryStickers, "🎨", "/images/stickers2.png",
			"linear-gradient(135deg, #A29BFE, #6C5CE7)", "Pack of 10 assorted urban stickers, exclusive designs", 8, 1.2, 5000, false,
			sizeRow{"5×5cm", 6, 0.9, 3800}, sizeRow{"8×8cm", 8, 1.2, 5000}),
		product(3, "Custom Tag", CategoryStickers, "✏️", "/images/stickers1.png",
			"linear-gradient(135deg, #FFEAA7, #FDCB6E)", "Your own tag turned into a premium vinyl sticker", 3.5, 0.5, 2000, true,
			sizeRow{"5×5cm", 2.5, 0.4, 1500}, sizeRow{"8×8cm", 3.5, 0.5, 2000}, sizeRow{"10×10cm", 5, 0.75, 3000}, sizeRow{"15×15cm", 8, 1.2, 4800}),
		product(4, "Event Flyer A5", CategoryFlyers, "📄", "/images/flyer-event-a5.png",
			"linear-gradient(135deg, #55EFC4, #00B894)", "100 single-sided A5 flyers, 350g velvet matte paper", 15, 2.3, 9000, true,
			sizeRow{"A5", 15, 2.3, 9000}, sizeRow{"A4", 22, 3.3, 13000}),
		product(5, "Promo Flyer A4", CategoryFlyers, "📰", "/images/flyers2.png",
			"linear-gradient(135deg, #74B9FF, #0984E3)", "100 double-sided A4 flyers, 400g premium gloss paper", 25, 3.8, 15000, true,
			sizeRow{"A4", 25, 3.8, 15000}, sizeRow{"A3", 38, 5.7, 23000}),
		product(6, "Holo Sticker", CategoryStickers, "✨", "/images/holo-sticker.png",
			"linear-gradient(135deg, #FD79A8, #E84393)", "Holographic sticker with iridescent rainbow effect", 4, 0.6, 2500, true,
			sizeRow{"5×5cm", 3, 0.45, 1800}, sizeRow{"8×8cm", 4, 0.6, 2500}),
		product(7, "Mega Pack Flyers", CategoryFlyers, "📦", "/images/mega-pack-flyers.png",
			"linear-gradient(135deg, #FAB1A0, #E17055)", "500 flyers, choice of format and pro finish", 45, 6.8, 27000, true,
			sizeRow{"A5", 38, 5.7, 23000}, sizeRow{"A4", 45, 6.8, 27000}, sizeRow{"A3", 55, 8.3, 33000}),
		dieCut,
		product(9, "Restaurant Menu", CategoryFlyers, "🍽️", "/images/menu-restaurant.png",
			"linear-gradient(135deg, #D4A574, #8B6914)", "Custom restaurant menu, premium matte or gloss paper", 20, 3, 12000, true,
			sizeRow{"A5", 15, 2.3, 9000}, sizeRow{"A4", 20, 3, 12000}, sizeRow{"A3", 28, 4.2, 16800}, sizeRow{"Triptyque", 35, 5.3, 21000}),
		product(10, "Classic Card", CategoryCartes, "🪪", "/images/cartes1.png",
			"linear-gradient(135deg, #636E72, #2D3436)", "100 double-sided business cards, 350g coated matte", 12, 1.8, 7000, true,
			sizeRow{"85×55mm", 12, 1.8, 7000}, sizeRow{"90×50mm", 14, 2.1, 8400}),
		product(11, "Premium Card", CategoryCartes, "💼", "/images/cartes2.png",
			"linear-gradient(135deg, #B8860B, #DAA520)", "100 business cards, soft touch finish with hot foil", 22, 3.3, 13000, true,
			sizeRow{"85×55mm", 22, 3.3, 13000}, sizeRow{"90×50mm", 25, 3.8, 15000}),
		product(12, "Round Card", CategoryCartes, "⚪", "/images/carte-ronde.png",
			"linear-gradient(135deg, #DFE6E9, #B2BEC3)", "100 round business cards, HD print", 18, 2.7, 11000, true,
			sizeRow{"55mm", 16, 2.4, 9500}, sizeRow{"65mm", 18, 2.7, 11000}),
		product(13, "Pro Pack 500", CategoryCartes, "📇", "/images/cartes2.png",
			"linear-gradient(135deg, #0C2461, #1E3799)", "500 business cards, choice of finish and premium paper", 35, 5.3, 21000, true,
			sizeRow{"85×55mm", 32, 4.8, 19000}, sizeRow{"90×50mm", 35, 5.3, 21000}, sizeRow{"Custom", 40, 6, 24000}),
	}
}

// Find looks a product up by id.
func Find(products []structs.Product, id int64) (structs.Product, bool) {
	for _, p := range products {
		if p.ID == id {
			return p, true
		}
	}
	return structs.Product{}, false
}

// Filter keeps the products of one category; "all" or "" keeps everything.
func Filter(products []structs.Product, category string) []structs.Product {
	if category == "" || category == CategoryAll {
		return products
	}
	out := make([]structs.Product, 0, len(products))
	for _, p := range products {
		if p.Cat == category {
			out = append(out, p)
		}
	}
	return out
}
