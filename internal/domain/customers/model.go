package customers

// Customer is referenced by sessions, never owned by them. IsLoyalty is the
// sole switch between the regular and loyalty pricing columns.
type Customer struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Phone           string `json:"phone,omitempty"`
	IsLoyalty       bool   `json:"isLoyalty"`
	LoyaltyNickname string `json:"loyaltyNickname,omitempty"` // required display name when IsLoyalty
	Observations    string `json:"observations,omitempty"`
}
