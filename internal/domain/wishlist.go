package domain

import "time"

// Wishlist is a user's single saved-products list. Product membership is
// toggled: adding a product already present removes it instead.
type Wishlist struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Products  []Product `json:"products"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
