package entity

// CartLine is one (caller, product) row awaiting checkout. There is at
// most one line per (caller, product) pair: adding a product that is
// already in the cart increments Quantity instead of inserting a new row.
type CartLine struct {
	ID        string
	CallerID  string
	ProductID string
	Quantity  int

	// Product is the catalog snapshot joined at read time. Cart totals are
	// computed from its current price, which may differ from the frozen
	// unit price a later order line captures.
	Product Product
}
