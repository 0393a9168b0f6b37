package structs

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusConfirmed  OrderStatus = "confirmed"
	OrderStatusProduction OrderStatus = "production"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
)

// OrderStatuses lists the statuses in lifecycle order.
var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusProduction,
	OrderStatusShipped,
	OrderStatusDelivered,
}

func (s OrderStatus) Valid() bool {
	for _, st := range OrderStatuses {
		if st == s {
			return true
		}
	}
	return false
}

type OrderItem struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	Emoji string  `json:"emoji"`
	Qty   int     `json:"qty"`
	Sz    string  `json:"sz"`
	Price float64 `json:"price"`
	Ton   float64 `json:"ton"`
	Xof   float64 `json:"xof"`
	Img   string  `json:"img,omitempty"`
}

type Order struct {
	ID             string      `json:"id"`
	Items          []OrderItem `json:"items"`
	Total          float64     `json:"total"`
	TotalXof       float64     `json:"totalXof"`
	Status         OrderStatus `json:"status"`
	Date           string      `json:"date"`
	TelegramUserID *int64      `json:"telegram_user_id,omitempty"`
	ClientName     string      `json:"client_name,omitempty"`
	ClientPhone    string      `json:"client_phone,omitempty"`
	ClientAddress  string      `json:"client_address,omitempty"`
	InvoiceNumber  string      `json:"invoice_number,omitempty"`
}

type CreateOrder struct {
	Items          []OrderItem `json:"items"`
	ClientName     string      `json:"client_name,omitempty"`
	ClientPhone    string      `json:"client_phone,omitempty"`
	ClientAddress  string      `json:"client_address,omitempty"`
	TelegramUserID int64       `json:"telegram_user_id,omitempty"`
}

type UpdateOrderStatus struct {
	Status OrderStatus `json:"status"`
}
