package entity

import (
	"github.com/shopspring/decimal"
)

// Product is a catalog record offered on invoices. It is owned by the admin API
// and read-only here.
type Product struct {
	ID        string          `json:"_id"`
	Name      string          `json:"product"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

// ProductLookup resolves a product identifier against the loaded catalog.
// Implementations must return a copy, never a reference into their own storage.
type ProductLookup interface {
	Product(id string) (Product, bool)
}
