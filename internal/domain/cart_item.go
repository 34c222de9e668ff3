package domain

// CartItem references a product without snapshotting its price. UnitPrice is
// joined from the product at read time, so cart subtotals always reflect the
// current catalog price.
type CartItem struct {
	ID          int64  `json:"id"`
	CartID      string `json:"cart_id"`
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name,omitempty"`
	Quantity    int    `json:"quantity"`
	UnitPrice   int64  `json:"unit_price"`
	IsActive    bool   `json:"is_active"`
}

// SubTotal returns the current product price times quantity.
func (i *CartItem) SubTotal() int64 {
	return i.UnitPrice * int64(i.Quantity)
}
