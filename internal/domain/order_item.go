package domain

// OrderItem is a line item in an order. PriceAtOrder is a snapshot of the
// product's price taken when the item was created; it never changes even if
// the product is repriced later. Unlike the entity tables, line items use
// plain auto-incrementing ids.
type OrderItem struct {
	ID           int64  `json:"id"`
	OrderID      string `json:"order_id"`
	ProductID    string `json:"product_id"`
	ProductName  string `json:"product_name,omitempty"`
	Quantity     int    `json:"quantity"`
	PriceAtOrder int64  `json:"price_at_order"`
}

// LineTotal returns the snapshot price times quantity.
func (i *OrderItem) LineTotal() int64 {
	return i.PriceAtOrder * int64(i.Quantity)
}
