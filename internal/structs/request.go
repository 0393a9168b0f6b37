package structs

// Requests and payloads of the Mini App shell.

type AddToCart struct {
	ProductID int64   `json:"product_id" binding:"required"`
	Size      string  `json:"size" binding:"required"`
	Qty       int     `json:"qty"`
	Design    *string `json:"design"`
}

type UpdateQuantity struct {
	Qty int `json:"qty"`
}

type Navigate struct {
	Fragment string `json:"fragment"`
	View     string `json:"view"`
	ID       int64  `json:"product_id"`
}

type SetFilter struct {
	Cat string `json:"cat"`
}

type UpdateContact struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

type AutoConnect struct {
	InitData string        `json:"init_data"`
	User     *TelegramUser `json:"user"`
}

type AdminPin struct {
	Pin string `json:"pin" binding:"required"`
}

// Checkout carries what the web view learned from the host bridges: the Stars
// invoice close status and the connected TON wallet.
type Checkout struct {
	Method        PaymentMethod `json:"method" binding:"required"`
	InvoiceStatus string        `json:"invoice_status"`
	WalletAddress string        `json:"wallet_address"`
	TxSent        bool          `json:"tx_sent"`
}

type ValidateImage struct {
	Src  string `json:"src" binding:"required"`
	Kind string `json:"kind"`
}

type TonQuote struct {
	Rate     TonRate `json:"rate"`
	NanoTon  string  `json:"nano_ton"`
	Merchant string  `json:"merchant"`
	Link     string  `json:"link"`
}

type Totals struct {
	TotalXof float64 `json:"total_xof"`
	Count    int     `json:"count"`
	Label    string  `json:"label"`
}

// State is the snapshot of a session the web view renders from.
type State struct {
	View      string     `json:"view"`
	ProductID int64      `json:"product_id,omitempty"`
	Dark      bool       `json:"dark"`
	Admin     bool       `json:"admin"`
	Filter    string     `json:"filter"`
	Cart      []CartItem `json:"cart"`
	Totals    Totals     `json:"totals"`
	Favorites []int64    `json:"favorites"`
	Profile   Profile    `json:"profile"`
	Toast     string     `json:"toast,omitempty"`
}
