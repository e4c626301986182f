package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a catalog record. It is only ever mutated through the
// catalog administration service after the caller passed the admin gate.
type Product struct {
	ID          string
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int
	ImageURL    string
	CreatedAt   time.Time
}
