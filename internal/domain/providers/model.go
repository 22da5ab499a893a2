package providers

// Provider is a staff member assignable to sessions. Name doubles as the
// identity key inside session and commission records, so renames must go
// through the registry, which keeps historical links by name.
type Provider struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Specialty   string `json:"specialty"`
	Active      bool   `json:"active"`
	RealName    string `json:"realName,omitempty"`
	PixKey      string `json:"pixKey,omitempty"`
	Phone       string `json:"phone,omitempty"`
	BankDetails string `json:"bankDetails,omitempty"`
}
