package models

import "time"

// CartProduct is the product snapshot embedded in a cart line. Prices
// are frozen at add time; the catalog is never consulted again for an
// existing line.
type CartProduct struct {
	ID        string  `bson:"id" json:"id"`
	Name      string  `bson:"name" json:"name"`
	BasePrice float64 `bson:"basePrice" json:"basePrice"`
	ImageURL  string  `bson:"imageUrl,omitempty" json:"imageUrl,omitempty"`
}

// CartLine is one configured product selection pending order.
type CartLine struct {
	Product  CartProduct `bson:"product" json:"product"`
	Material string      `bson:"material" json:"material"`
	Size     string      `bson:"size" json:"size"`
	Color    string      `bson:"color" json:"color"`
	Quantity int         `bson:"quantity" json:"quantity"`
	Notes    string      `bson:"notes,omitempty" json:"notes,omitempty"`
	AddedAt  time.Time   `bson:"addedAt" json:"addedAt"`
}

// Subtotal is the line's frozen unit price times its quantity.
func (l CartLine) Subtotal() float64 {
	return l.Product.BasePrice * float64(l.Quantity)
}

// Cart is the persisted per-owner cart document. The whole document is
// replaced on every mutation; it is the single source of truth for all
// UI surfaces showing the cart.
type Cart struct {
	Owner     string     `bson:"owner" json:"owner"`
	Lines     []CartLine `bson:"lines" json:"lines"`
	UpdatedAt time.Time  `bson:"updatedAt" json:"updatedAt"`
}
