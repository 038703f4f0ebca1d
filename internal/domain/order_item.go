package domain

// OrderItem is one line of an order. Price is the unit price snapshot taken
// at order time; it is never re-read from the product, so historical orders
// are not repriced when the catalog changes.
type OrderItem struct {
	ID        string  `json:"id"`
	OrderID   string  `json:"order_id"`
	ProductID string  `json:"product_id"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

// LineTotal returns the total price for this line item.
func (i *OrderItem) LineTotal() float64 {
	return i.Price * float64(i.Quantity)
}
