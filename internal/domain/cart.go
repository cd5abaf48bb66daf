package domain

// OrderLine is one item row inside a cart, wishlist or order snapshot.
type OrderLine struct {
	ID        int64   `json:"id"`
	ProductID int64   `json:"product_id"`
	Name      string  `json:"name"`
	Image     string  `json:"image"`
	UnitPrice float64 `json:"unit_price"`
	Quantity  int     `json:"quantity"`
	LineTotal float64 `json:"line_total"`
}

// CartSnapshot is the server-computed cart aggregate. The client holds only
// the latest fetched copy; every mutation replaces it wholesale with the
// backend's fresh response. Count mirrors the backend's count field verbatim
// and is the only source for the basket badge.
type CartSnapshot struct {
	Items      []OrderLine `json:"items"`
	SubTotal   float64     `json:"sub_total"`
	Discount   float64     `json:"discount"`
	GrandTotal float64     `json:"grand_total"`
	Count      int         `json:"count"`
}

// WishlistSnapshot is the server-computed wishlist aggregate, replaced
// wholesale on every mutation like CartSnapshot.
type WishlistSnapshot struct {
	Items []OrderLine `json:"items"`
	Count int         `json:"count"`
}
