package domain

import "time"

// Review is a buyer's written review of a product. Reviews are immutable
// after creation and always reference an existing product.
type Review struct {
	ID        string    `json:"id"`
	ProductID string    `json:"product_id"`
	Author    string    `json:"author"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}
