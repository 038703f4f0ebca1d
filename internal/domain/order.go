package domain

import "time"

// Order status constants. An order starts as Pending and is marked
// Completed by the caller; there is no cancellation or refund flow.
const (
	OrderStatusPending   = "Pending"
	OrderStatusCompleted = "Completed"
)

// Order represents a customer order with its line items. The header and the
// items are created together in one transaction and never partially exist.
type Order struct {
	ID           string      `json:"id"`
	CustomerID   *string     `json:"customer_id,omitempty"`
	CustomerName string      `json:"customer_name"`
	Total        float64     `json:"total"`
	Status       string      `json:"status"`
	Rating       *int        `json:"rating,omitempty"`
	Items        []OrderItem `json:"items"`
	CreatedAt    time.Time   `json:"created_at"`
}

// ValidStatuses returns all valid order statuses.
func ValidStatuses() []string {
	return []string{OrderStatusPending, OrderStatusCompleted}
}

// IsValidStatus checks if a status string is valid.
func IsValidStatus(status string) bool {
	for _, s := range ValidStatuses() {
		if s == status {
			return true
		}
	}
	return false
}

// IsRated reports whether a satisfaction rating has been recorded.
func (o *Order) IsRated() bool {
	return o.Rating != nil
}
