package drinks

import (
	"time"

	"github.com/DaniloBenetati/gestaodeatendimento/internal/domain/sessions"
)

type OrderStatus string

const (
	OrderOpen      OrderStatus = "OPEN"
	OrderPaid      OrderStatus = "PAID"
	OrderCancelled OrderStatus = "CANCELLED"
)

type Product struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Category string  `json:"category,omitempty"`
	Active   bool    `json:"active"`
}

type OrderItem struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
}

// Order is a bar tab. CustomerID is optional: quick sales carry only a
// free-text customer name.
type Order struct {
	ID            string                  `json:"id"`
	CustomerID    *string                 `json:"customerId,omitempty"`
	CustomerName  string                  `json:"customerName"`
	Items         []OrderItem             `json:"items"`
	TotalValue    float64                 `json:"totalValue"`
	Status        OrderStatus             `json:"status"`
	PaymentMethod *sessions.PaymentMethod `json:"paymentMethod,omitempty"`
	Date          string                  `json:"date"` // YYYY-MM-DD
	CreatedAt     time.Time               `json:"createdAt"`
	ClosedAt      *time.Time              `json:"closedAt,omitempty"`
}

// Total sums the order items; kept separate from TotalValue so stored
// totals survive later price edits.
func Total(items []OrderItem) float64 {
	var t float64
	for _, i := range items {
		t += float64(i.Quantity) * i.UnitPrice
	}
	return t
}
