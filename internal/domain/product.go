package domain

import "time"

// Product represents a catalog item owned by a user.
type Product struct {
	ID          int64
	SKU         string
	Name        string
	Description string
	PriceCents  int64
	Stock       int
	ImageKey    string
	OwnerID     int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
