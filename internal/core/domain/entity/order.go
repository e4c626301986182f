package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StatusCompleted is the only order status the storefront models.
// Orders are immutable once placed; no further transitions exist.
const StatusCompleted = "completed"

type Order struct {
	ID        string
	CallerID  string
	Total     decimal.Decimal
	Status    string
	CreatedAt time.Time
	Lines     []OrderLine

	// Profile is the purchaser join used by the admin order listing.
	// Nil everywhere else.
	Profile *Profile
}

// OrderLine freezes one product's quantity and unit price as purchased.
// UnitPrice is captured from the catalog at checkout time and never
// re-read, so history stays accurate when catalog prices change.
type OrderLine struct {
	ID          string
	OrderID     string
	ProductID   string
	ProductName string
	Quantity    int
	UnitPrice   decimal.Decimal
}

// Extension returns quantity × unit price for this line.
func (l OrderLine) Extension() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}
