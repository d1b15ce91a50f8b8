package repository

import (
	"context"

	"github.com/sangkips/admin-console/internal/domain/entity"
)

// ClientRepository defines read access to the client catalog
type ClientRepository interface {
	ListClients(ctx context.Context) ([]entity.Client, error)
}

// ProductRepository defines read access to the product catalog
type ProductRepository interface {
	ListProducts(ctx context.Context) ([]entity.Product, error)
}

// InvoiceRepository creates invoices and returns the rendered invoice slip
type InvoiceRepository interface {
	CreateInvoice(ctx context.Context, req *entity.InvoiceRequest) (*entity.Document, error)
}

// AdminRepository is the full admin API surface the console depends on
type AdminRepository interface {
	ClientRepository
	ProductRepository
	InvoiceRepository
}
