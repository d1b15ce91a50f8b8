package adminapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"github.com/sangkips/admin-console/internal/domain/entity"
	"github.com/sangkips/admin-console/internal/domain/repository"
	"github.com/sangkips/admin-console/internal/observability/tracing"
	"github.com/sangkips/admin-console/pkg/apperror"
)

const (
	clientsPath       = "/api/admin/getAllClients"
	productsPath      = "/api/admin/getAllProducts"
	createInvoicePath = "/api/admin/createInvoice"

	// maxBodyBytes bounds every response read from the admin API
	maxBodyBytes = 32 << 20
)

// Messages shown to the user when an invoice slip request ends
const (
	MsgSlipDownloaded     = "Invoice Slip is downloaded successfully."
	MsgSlipDownloadFailed = "Failed to download Invoice slip."
)

// Client talks to the upstream admin REST API
type Client struct {
	baseURL string
	http    *http.Client
}

var _ repository.AdminRepository = (*Client)(nil)

// NewClient creates a new admin API client
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    tracing.WrapHTTPClient(&http.Client{Timeout: timeout}),
	}
}

// ListClients fetches the client catalog
func (c *Client) ListClients(ctx context.Context) ([]entity.Client, error) {
	var clients []entity.Client
	if err := c.getJSON(ctx, clientsPath, &clients); err != nil {
		return nil, err
	}
	return clients, nil
}

// ListProducts fetches the product catalog
func (c *Client) ListProducts(ctx context.Context) ([]entity.Product, error) {
	var products []entity.Product
	if err := c.getJSON(ctx, productsPath, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// CreateInvoice posts the invoice and returns the rendered slip.
// Every failure is returned as an *apperror.AppError whose message is safe to show.
func (c *Client) CreateInvoice(ctx context.Context, req *entity.InvoiceRequest) (*entity.Document, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, apperror.NewUpstreamError(MsgSlipDownloadFailed).WithCause(err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+createInvoicePath, bytes.NewReader(payload))
	if err != nil {
		return nil, apperror.NewUpstreamError(MsgSlipDownloadFailed).WithCause(err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", entity.InvoiceSlipContentType)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, apperror.NewUpstreamError(MsgSlipDownloadFailed).WithCause(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, apperror.NewUpstreamError(MsgSlipDownloadFailed).WithCause(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, apperror.NewUpstreamError(upstreamMessage(body)).
			WithCause(fmt.Errorf("admin api: create invoice returned status %d", resp.StatusCode))
	}

	// A 2xx carrying a JSON error object instead of the document is still a failure.
	detected := mimetype.Detect(body)
	if !detected.Is(entity.InvoiceSlipContentType) {
		return nil, apperror.NewUpstreamError(upstreamMessage(body)).
			WithCause(fmt.Errorf("admin api: expected %s, got %s (%d bytes)", entity.InvoiceSlipContentType, detected.String(), len(body)))
	}

	return &entity.Document{
		Filename:    entity.InvoiceSlipFilename,
		ContentType: entity.InvoiceSlipContentType,
		Body:        body,
	}, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("admin api: build request %s: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("admin api: GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("admin api: GET %s returned status %d: %s", path, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(out); err != nil {
		return fmt.Errorf("admin api: decode %s: %w", path, err)
	}
	return nil
}

type errorBody struct {
	Message string `json:"message"`
}

// upstreamMessage extracts the human readable message from an error body,
// falling back to the generic download failure text.
func upstreamMessage(body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil {
		if msg := strings.TrimSpace(eb.Message); msg != "" {
			return msg
		}
	}
	return MsgSlipDownloadFailed
}
