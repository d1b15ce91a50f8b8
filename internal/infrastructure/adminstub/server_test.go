package adminstub

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/sangkips/admin-console/internal/domain/entity"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newStub(t *testing.T) *Server {
	t.Helper()
	f, err := DefaultFixture()
	if err != nil {
		t.Fatalf("fixture: %v", err)
	}
	s := NewServer(f, nil)
	s.now = func() time.Time { return time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC) }
	return s
}

func postInvoice(t *testing.T, s *Server, req entity.InvoiceRequest) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/admin/createInvoice", bytes.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	s.Router().ServeHTTP(w, r)
	return w
}

func validRequest() entity.InvoiceRequest {
	return entity.InvoiceRequest{
		ClientID: "CL-1001",
		GST:      18,
		Services: []entity.InvoiceServiceRequest{{
			Product:            "Website Maintenance",
			ServiceDescription: "April retainer",
			Duration:           "1 month",
			Quantity:           2,
			UnitPrice:          json.Number("15000.00"),
			StartDate:          "2024-03-31T18:30:00.000Z",
			EndDate:            "2024-04-29T18:30:00.000Z",
		}},
	}
}

func TestCatalogEndpoints(t *testing.T) {
	s := newStub(t)

	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/admin/getAllProducts", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var products []entity.Product
	if err := json.Unmarshal(w.Body.Bytes(), &products); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(products) != 3 || !products[1].UnitPrice.Equal(decimal.RequireFromString("8999.5")) {
		t.Fatalf("unexpected products %+v", products)
	}

	w = httptest.NewRecorder()
	s.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/admin/getAllClients", nil))
	var clients []entity.Client
	if err := json.Unmarshal(w.Body.Bytes(), &clients); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(clients) != 3 || clients[0].ClientID != "CL-1001" {
		t.Fatalf("unexpected clients %+v", clients)
	}
}

func TestCreateInvoiceRendersPDF(t *testing.T) {
	w := postInvoice(t, newStub(t), validRequest())

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", w.Code, w.Body.String())
	}
	if !mimetype.Detect(w.Body.Bytes()).Is("application/pdf") {
		t.Fatalf("response is not a PDF")
	}
}

func TestPriceComputesTotals(t *testing.T) {
	s := newStub(t)
	req := validRequest()
	slip, err := s.price(&req)
	if err != nil {
		t.Fatalf("price: %v", err)
	}
	if slip.SubTotal.StringFixed(2) != "30000.00" || slip.GSTAmount.StringFixed(2) != "5400.00" || slip.Total.StringFixed(2) != "35400.00" {
		t.Fatalf("unexpected totals %s %s %s", slip.SubTotal, slip.GSTAmount, slip.Total)
	}
	if slip.Number != "INV-202404-0001" {
		t.Fatalf("unexpected number %s", slip.Number)
	}
}

func TestCreateInvoiceRejectsBadInput(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*entity.InvoiceRequest)
	}{
		{"unknown client", func(r *entity.InvoiceRequest) { r.ClientID = "CL-404" }},
		{"no services", func(r *entity.InvoiceRequest) { r.Services = nil }},
		{"bare date", func(r *entity.InvoiceRequest) { r.Services[0].StartDate = "2024-04-01" }},
		{"zero quantity", func(r *entity.InvoiceRequest) { r.Services[0].Quantity = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(&req)
			w := postInvoice(t, newStub(t), req)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", w.Code)
			}
			var body struct {
				Message string `json:"message"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil || body.Message == "" {
				t.Fatalf("expected a message body, got %s", w.Body.String())
			}
		})
	}
}

func TestLoadFixtureRejectsBadPrice(t *testing.T) {
	if _, err := parseFixture([]byte("products:\n  - id: x\n    name: Bad\n    unit_price: twelve\n")); err == nil {
		t.Fatalf("expected invalid price error")
	}
}
