package structs

type PaymentMethod string

const (
	PaymentStars PaymentMethod = "stars"
	PaymentTon   PaymentMethod = "ton"
	PaymentMomo  PaymentMethod = "momo"
)

type StarsInvoiceRequest struct {
	Items         []OrderItem `json:"items"`
	TotalXof      float64     `json:"total_xof"`
	ClientName    string      `json:"client_name,omitempty"`
	ClientPhone   string      `json:"client_phone,omitempty"`
	ClientAddress string      `json:"client_address,omitempty"`
}

type StarsInvoice struct {
	URL string `json:"url"`
}

type TonRate struct {
	TonUSD    float64 `json:"ton_usd"`
	XofPerUSD float64 `json:"xof_per_usd"`
	AmountTon float64 `json:"amount_ton"`
	AmountUSD float64 `json:"amount_usd"`
}

type MomoOperator struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Num   string `json:"num"`
	Color string `json:"color"`
	Logo  string `json:"logo"`
	Link  string `json:"link,omitempty"`
}

// TonMessage is one transfer inside a wallet transaction; Amount is in nanoTON.
type TonMessage struct {
	Address string `json:"address"`
	Amount  string `json:"amount"`
}

type TonTransaction struct {
	ValidUntil int64        `json:"validUntil"`
	Messages   []TonMessage `json:"messages"`
}
