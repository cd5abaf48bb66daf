package domain

// Address is a server-owned delivery address. Uniqueness of the default flag
// is enforced by the backend; the client reflects whatever it returns.
type Address struct {
	ID        int64  `json:"id"`
	Label     string `json:"label"`
	Recipient string `json:"recipient"`
	Phone     string `json:"phone"`
	Line1     string `json:"line1"`
	Line2     string `json:"line2"`
	City      string `json:"city"`
	Postcode  string `json:"postcode"`
	IsDefault bool   `json:"is_default"`
}
