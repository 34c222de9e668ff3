package domain

import "time"

// Product is a catalog item. Price is in minor currency units (cents) and is
// the live price: carts read it fresh, orders snapshot it at creation.
// Stock is a displayed counter, not a reservation.
type Product struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Slug        string     `json:"slug"`
	Description string     `json:"description,omitempty"`
	Price       int64      `json:"price"`
	Stock       int        `json:"stock"`
	Categories  []Category `json:"categories,omitempty"`
	Rating      *Rating    `json:"rating,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// InStock reports whether the displayed stock counter is positive.
func (p *Product) InStock() bool {
	return p.Stock > 0
}

// Rating is the derived review aggregate for a product. It is recomputed in
// full whenever a review changes and is never written directly.
type Rating struct {
	ProductID     string  `json:"product_id"`
	AverageRating float64 `json:"average_rating"`
	TotalRatings  int     `json:"total_ratings"`
}
