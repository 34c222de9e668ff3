package domain

import "time"

// Review is a user's rating of a product. Rating is constrained to 1..5 and
// a user may review a given product at most once.
type Review struct {
	ID        string    `json:"id"`
	ProductID string    `json:"product_id"`
	UserID    string    `json:"user_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

const (
	MinRating = 1
	MaxRating = 5
)

// IsValidRating reports whether r is within the allowed rating range.
func IsValidRating(r int) bool {
	return r >= MinRating && r <= MaxRating
}
