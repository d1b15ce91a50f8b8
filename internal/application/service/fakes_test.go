package service

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/sangkips/admin-console/internal/domain/entity"
	"github.com/sangkips/admin-console/pkg/slipsink"
)

var testPDF = []byte("%PDF-1.4\n%test\n%%EOF\n")

type fakeAdmin struct {
	mu sync.Mutex

	clients     []entity.Client
	products    []entity.Product
	clientsErr  error
	productsErr error

	invoiceDoc *entity.Document
	invoiceErr error
	requests   []entity.InvoiceRequest
	block      chan struct{}
	entered    chan struct{}
}

func (f *fakeAdmin) ListClients(ctx context.Context) ([]entity.Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.clients, f.clientsErr
}

func (f *fakeAdmin) ListProducts(ctx context.Context) ([]entity.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.products, f.productsErr
}

func (f *fakeAdmin) CreateInvoice(ctx context.Context, req *entity.InvoiceRequest) (*entity.Document, error) {
	f.mu.Lock()
	f.requests = append(f.requests, *req)
	block, entered := f.block, f.entered
	doc, err := f.invoiceDoc, f.invoiceErr
	f.mu.Unlock()

	if entered != nil {
		close(entered)
	}
	if block != nil {
		<-block
	}
	if err != nil {
		return nil, err
	}
	if doc == nil {
		doc = &entity.Document{Filename: entity.InvoiceSlipFilename, ContentType: entity.InvoiceSlipContentType, Body: testPDF}
	}
	return doc, nil
}

func (f *fakeAdmin) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func (f *fakeAdmin) lastRequest() entity.InvoiceRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

// recordingSink records every delivery and whether the staged file was still open
type recordingSink struct {
	mu     sync.Mutex
	names  []string
	bodies [][]byte
	staged []*slipsink.Staged
	err    error
}

func (s *recordingSink) Deliver(slip *slipsink.Staged) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	f, err := slip.Open()
	if err != nil {
		return err
	}
	defer f.Close()
	buf, err := io.ReadAll(f)
	if err != nil {
		return err
	}
	s.names = append(s.names, slip.Name())
	s.bodies = append(s.bodies, buf)
	s.staged = append(s.staged, slip)
	return nil
}

func (s *recordingSink) Close() error  { return nil }
func (s *recordingSink) IsReady() bool { return true }

var errUpstreamDown = errors.New("connection refused")

func sampleCatalog() ([]entity.Client, []entity.Product) {
	clients := []entity.Client{
		{ID: "c1", ClientID: "CL-001", ClientName: "Asha Rao", CompanyName: "Rao Foods Pvt Ltd", BrandName: "Rao Foods"},
		{ID: "c2", ClientID: "CL-002", ClientName: "Vikram Shah", CompanyName: "Shah Textiles", BrandName: "Shah Weaves"},
	}
	products := []entity.Product{
		{ID: "p1", Name: "Website Maintenance", UnitPrice: decimal.RequireFromString("15000.50")},
		{ID: "p2", Name: "SEO Package", UnitPrice: decimal.RequireFromString("0.10")},
	}
	return clients, products
}
