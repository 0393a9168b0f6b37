package structs

// CartItem is a frozen copy of a product at add-to-cart time. Identity for
// merging is the (ID, Sz) pair.
type CartItem struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	Emoji string  `json:"emoji"`
	Img   string  `json:"img,omitempty"`
	Cat   string  `json:"cat,omitempty"`
	Sz    string  `json:"sz"`
	Qty   int     `json:"qty"`
	Dsgn  *string `json:"dsgn"`
	Price float64 `json:"price"`
	Ton   float64 `json:"ton"`
	Xof   float64 `json:"xof"`
}

func (i CartItem) Same(productID int64, size string) bool {
	return i.ID == productID && i.Sz == size
}

// OrderLine strips the item down to the fields the order endpoint accepts.
func (i CartItem) OrderLine() OrderItem {
	return OrderItem{
		ID:    i.ID,
		Name:  i.Name,
		Emoji: i.Emoji,
		Qty:   i.Qty,
		Sz:    i.Sz,
		Price: i.Price,
		Ton:   i.Ton,
		Xof:   i.Xof,
	}
}
