package domain

import "time"

// Cart belongs to exactly one owner: a registered user (UserID set) or an
// anonymous session (Code set). Never both and never neither.
type Cart struct {
	ID        string     `json:"id"`
	UserID    *string    `json:"user_id,omitempty"`
	Code      *string    `json:"code,omitempty"`
	Items     []CartItem `json:"items"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Total sums the subtotals of active items. Inactive items are kept for
// later reactivation but do not count toward the total.
func (c *Cart) Total() int64 {
	var total int64
	for i := range c.Items {
		if c.Items[i].IsActive {
			total += c.Items[i].SubTotal()
		}
	}
	return total
}

// ActiveItems returns only the items counted in the cart total.
func (c *Cart) ActiveItems() []CartItem {
	active := make([]CartItem, 0, len(c.Items))
	for i := range c.Items {
		if c.Items[i].IsActive {
			active = append(active, c.Items[i])
		}
	}
	return active
}
