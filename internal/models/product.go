package models

// Product represents a catalog item
// Schema matches the catalog backend's products endpoint
type Product struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
	ImageURL    string  `json:"image_url"`
	Category    string  `json:"category,omitempty"`
}
