package domain

// UserProfile is the backend-defined user record. The backend owns the field
// set; the client treats everything beyond the identity fields as an opaque
// payload and never validates it.
type UserProfile struct {
	ID        int64                  `json:"id"`
	Email     string                 `json:"email"`
	Phone     string                 `json:"phone"`
	FirstName string                 `json:"first_name"`
	LastName  string                 `json:"last_name"`
	Avatar    string                 `json:"avatar"`
	Extra     map[string]interface{} `json:"extra,omitempty"`
}

// Session is the in-memory authoritative record of who is logged in and the
// three badge counters shown in persistent UI chrome.
//
// Invariant: Authenticated == (Token != "" && User != nil). The session store
// is the only writer.
type Session struct {
	Token         string       `json:"token"`
	User          *UserProfile `json:"user"`
	Authenticated bool         `json:"authenticated"`
	BasketCount   int          `json:"basket_count"`
	WishlistCount int          `json:"wishlist_count"`
	UnreadCount   int          `json:"unread_count"`
}
