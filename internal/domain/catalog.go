package domain

// Category is a browsable product grouping.
type Category struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Image string `json:"image"`
}

// Product as returned by the catalog endpoints. Prices are backend-computed;
// the client never recalculates them.
type Product struct {
	ID           int64    `json:"id"`
	CategoryID   int64    `json:"category_id"`
	Name         string   `json:"name"`
	Slug         string   `json:"slug"`
	Description  string   `json:"description"`
	Price        float64  `json:"price"`
	SalePrice    float64  `json:"sale_price"`
	Unit         string   `json:"unit"`
	InStock      bool     `json:"in_stock"`
	Images       []string `json:"images"`
	InWishlist   bool     `json:"in_wishlist"`
	AverageScore float64  `json:"average_score"`
}

// PageRequest is the offset/limit window used by every paginated listing.
type PageRequest struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}
