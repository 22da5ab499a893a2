package supplies

import "time"

// Supply is a consumable stocked for sessions (towels, oils, linens).
type Supply struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Unit     string  `json:"unit"`
	UnitCost float64 `json:"unitCost"`
	Stock    float64 `json:"stock"`
	Active   bool    `json:"active"`
}

// Usage records consumption of one supply during one session.
type Usage struct {
	ID        string    `json:"id"`
	SessionID string    `json:"sessionId"`
	SupplyID  string    `json:"supplyId"`
	Quantity  float64   `json:"quantity"`
	CreatedAt time.Time `json:"createdAt"`
}
