package adminapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sangkips/admin-console/internal/domain/entity"
	"github.com/sangkips/admin-console/pkg/apperror"
)

var pdfBody = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\n%%EOF\n")

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, 5*time.Second)
}

func TestListProductsDecodesNumericAndStringPrices(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != productsPath {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `[{"_id":"p1","product":"Hosting","unitPrice":1999.99},{"_id":"p2","product":"SEO","unitPrice":"0.10"}]`)
	})

	products, err := c.ListProducts(context.Background())
	if err != nil {
		t.Fatalf("list products: %v", err)
	}
	if len(products) != 2 {
		t.Fatalf("expected 2 products, got %d", len(products))
	}
	if !products[0].UnitPrice.Equal(decimal.RequireFromString("1999.99")) {
		t.Fatalf("unexpected price %s", products[0].UnitPrice)
	}
	if !products[1].UnitPrice.Equal(decimal.RequireFromString("0.1")) {
		t.Fatalf("unexpected price %s", products[1].UnitPrice)
	}
}

func TestListClientsReportsStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	if _, err := c.ListClients(context.Background()); err == nil {
		t.Fatalf("expected error for 500 response")
	}
}

func TestCreateInvoiceReturnsDocument(t *testing.T) {
	var got entity.InvoiceRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != createInvoicePath {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("unexpected content type %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Write(pdfBody)
	})

	doc, err := c.CreateInvoice(context.Background(), &entity.InvoiceRequest{ClientID: "C-1", GST: 18})
	if err != nil {
		t.Fatalf("create invoice: %v", err)
	}
	if doc.Filename != entity.InvoiceSlipFilename || doc.Size() != int64(len(pdfBody)) {
		t.Fatalf("unexpected document %s (%d bytes)", doc.Filename, doc.Size())
	}
	if got.ClientID != "C-1" || got.GST != 18 {
		t.Fatalf("unexpected request body %+v", got)
	}
}

func TestCreateInvoiceFailures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{"server message", http.StatusBadRequest, `{"message":"X"}`, "X"},
		{"unparseable body", http.StatusInternalServerError, `<html>oops</html>`, MsgSlipDownloadFailed},
		{"empty message", http.StatusBadRequest, `{"message":"  "}`, MsgSlipDownloadFailed},
		{"json on success", http.StatusOK, `{"message":"client not found"}`, "client not found"},
		{"empty body on success", http.StatusOK, ``, MsgSlipDownloadFailed},
		{"text on success", http.StatusOK, `hello`, MsgSlipDownloadFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			})

			_, err := c.CreateInvoice(context.Background(), &entity.InvoiceRequest{})
			appErr := apperror.GetAppError(err)
			if appErr.Code != http.StatusBadGateway {
				t.Fatalf("code = %d, want 502", appErr.Code)
			}
			if appErr.Message != tt.wantMsg {
				t.Fatalf("message = %q, want %q", appErr.Message, tt.wantMsg)
			}
		})
	}
}

func TestCreateInvoiceTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := NewClient(url, time.Second)
	_, err := c.CreateInvoice(context.Background(), &entity.InvoiceRequest{})
	if err == nil {
		t.Fatalf("expected transport error")
	}
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) || appErr.Message != MsgSlipDownloadFailed {
		t.Fatalf("expected generic upstream error, got %v", err)
	}
	if errors.Unwrap(err) == nil {
		t.Fatalf("expected transport cause to be kept")
	}
}
