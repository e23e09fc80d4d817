package domain

// CartEntry is one persisted cart position. The JSON field names are part of
// the stored format and must not change without a storage migration.
type CartEntry struct {
	ProductID int `json:"productId"`
	Quantity  int `json:"quantity"`
}

// CartLine is a display-ready cart line item, joined against the catalog.
type CartLine struct {
	ID       int     `json:"id"`
	Title    string  `json:"title"`
	Image    string  `json:"image"`
	Quantity int     `json:"quantity"`
	Cost     float64 `json:"cost"`
}
