package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sangkips/admin-console/internal/domain/entity"
	"github.com/sangkips/admin-console/internal/domain/repository"
	"github.com/sangkips/admin-console/internal/observability/metrics"
	"github.com/sangkips/admin-console/pkg/pagination"
)

// Catalog names used in logs, metrics and status
const (
	CatalogClients  = "clients"
	CatalogProducts = "products"
)

// CatalogStatus describes the last load of one catalog
type CatalogStatus struct {
	Loaded    bool       `json:"loaded"`
	Count     int        `json:"count"`
	LastError string     `json:"last_error,omitempty"`
	LoadedAt  *time.Time `json:"loaded_at,omitempty"`
}

// ReferenceData holds the client and product lookup tables of one session.
// Tables are only ever replaced wholesale; readers always get copies.
type ReferenceData struct {
	mu sync.RWMutex

	clients     []entity.Client
	clientsByID map[string]entity.Client
	products    []entity.Product
	productByID map[string]entity.Product
	status      map[string]CatalogStatus
}

var _ entity.ProductLookup = (*ReferenceData)(nil)

// NewReferenceData creates empty lookup tables
func NewReferenceData() *ReferenceData {
	return &ReferenceData{
		clientsByID: map[string]entity.Client{},
		productByID: map[string]entity.Product{},
		status: map[string]CatalogStatus{
			CatalogClients:  {},
			CatalogProducts: {},
		},
	}
}

// ReplaceClients swaps in a new client table
func (d *ReferenceData) ReplaceClients(clients []entity.Client) {
	list := append([]entity.Client(nil), clients...)
	index := make(map[string]entity.Client, len(list))
	for _, c := range list {
		index[c.ID] = c
	}
	now := time.Now()

	d.mu.Lock()
	defer d.mu.Unlock()
	d.clients = list
	d.clientsByID = index
	d.status[CatalogClients] = CatalogStatus{Loaded: true, Count: len(list), LoadedAt: &now}
}

// ReplaceProducts swaps in a new product table
func (d *ReferenceData) ReplaceProducts(products []entity.Product) {
	list := append([]entity.Product(nil), products...)
	index := make(map[string]entity.Product, len(list))
	for _, p := range list {
		index[p.ID] = p
	}
	now := time.Now()

	d.mu.Lock()
	defer d.mu.Unlock()
	d.products = list
	d.productByID = index
	d.status[CatalogProducts] = CatalogStatus{Loaded: true, Count: len(list), LoadedAt: &now}
}

func (d *ReferenceData) recordFailure(catalog string, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	st := d.status[catalog]
	st.LastError = err.Error()
	d.status[catalog] = st
}

// Product returns a copy of the product with the given identifier
func (d *ReferenceData) Product(id string) (entity.Product, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	p, ok := d.productByID[id]
	return p, ok
}

// Client returns a copy of the client with the given identifier
func (d *ReferenceData) Client(id string) (entity.Client, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	c, ok := d.clientsByID[id]
	return c, ok
}

// Clients returns the client catalog in upstream order
func (d *ReferenceData) Clients() []entity.Client {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]entity.Client(nil), d.clients...)
}

// Products returns the product catalog in upstream order
func (d *ReferenceData) Products() []entity.Product {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]entity.Product(nil), d.products...)
}

// Status returns the load status of both catalogs
func (d *ReferenceData) Status() map[string]CatalogStatus {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make(map[string]CatalogStatus, len(d.status))
	for k, v := range d.status {
		out[k] = v
	}
	return out
}

// CatalogLoader fetches both catalogs into a session's ReferenceData
type CatalogLoader struct {
	clients  repository.ClientRepository
	products repository.ProductRepository
	logger   *zap.Logger
	metrics  *metrics.InvoiceMetrics
}

// NewCatalogLoader creates a new catalog loader
func NewCatalogLoader(
	clients repository.ClientRepository,
	products repository.ProductRepository,
	logger *zap.Logger,
	m *metrics.InvoiceMetrics,
) *CatalogLoader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogLoader{
		clients:  clients,
		products: products,
		logger:   logger,
		metrics:  m,
	}
}

// Load fetches clients and products concurrently. The fetches are independent:
// a failure of one neither cancels nor blocks the other. A failed catalog keeps
// its previous table. Load returns the first error once both have finished.
func (l *CatalogLoader) Load(ctx context.Context, data *ReferenceData) error {
	var g errgroup.Group

	g.Go(func() error {
		clients, err := l.clients.ListClients(ctx)
		if err != nil {
			l.fail(data, CatalogClients, err)
			return err
		}
		data.ReplaceClients(clients)
		l.logger.Debug("catalog loaded", zap.String("catalog", CatalogClients), zap.Int("count", len(clients)))
		return nil
	})

	g.Go(func() error {
		products, err := l.products.ListProducts(ctx)
		if err != nil {
			l.fail(data, CatalogProducts, err)
			return err
		}
		data.ReplaceProducts(products)
		l.logger.Debug("catalog loaded", zap.String("catalog", CatalogProducts), zap.Int("count", len(products)))
		return nil
	})

	return g.Wait()
}

func (l *CatalogLoader) fail(data *ReferenceData, catalog string, err error) {
	data.recordFailure(catalog, err)
	l.metrics.ObserveCatalogFailure(catalog)
	l.logger.Error("failed to load catalog", zap.String("catalog", catalog), zap.Error(err))
}

// CatalogFilter narrows a catalog listing
type CatalogFilter struct {
	Search string
	pagination.PaginationParams
}

// SearchClients filters clients by client, brand or company name, case-insensitively
func SearchClients(data *ReferenceData, filter CatalogFilter) *pagination.PaginatedResult[entity.Client] {
	needle := strings.ToLower(strings.TrimSpace(filter.Search))
	all := data.Clients()
	matched := all[:0]
	for _, c := range all {
		if needle == "" ||
			strings.Contains(strings.ToLower(c.ClientName), needle) ||
			strings.Contains(strings.ToLower(c.BrandName), needle) ||
			strings.Contains(strings.ToLower(c.CompanyName), needle) {
			matched = append(matched, c)
		}
	}
	params := filter.PaginationParams
	return pagination.Paginate(matched, &params)
}

// SearchProducts filters products by name, case-insensitively
func SearchProducts(data *ReferenceData, filter CatalogFilter) *pagination.PaginatedResult[entity.Product] {
	needle := strings.ToLower(strings.TrimSpace(filter.Search))
	all := data.Products()
	matched := all[:0]
	for _, p := range all {
		if needle == "" || strings.Contains(strings.ToLower(p.Name), needle) {
			matched = append(matched, p)
		}
	}
	params := filter.PaginationParams
	return pagination.Paginate(matched, &params)
}
