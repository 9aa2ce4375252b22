package domain

import "time"

// Favorite is one marketplace product marked by a user, stored as its own
// document so toggling never rewrites unrelated state. The product fields
// are a snapshot taken at favorite time.
type Favorite struct {
	UserID    string    `json:"user_id" bson:"user_id"`
	ProductID string    `json:"product_id" bson:"product_id"`
	Name      string    `json:"name" bson:"name"`
	Price     float64   `json:"price" bson:"price"`
	Image     string    `json:"image,omitempty" bson:"image,omitempty"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}
