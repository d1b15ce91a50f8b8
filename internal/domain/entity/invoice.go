package entity

import (
	"encoding/json"
	"time"
)

const (
	// InvoiceSlipFilename is the name every downloaded invoice slip is saved under
	InvoiceSlipFilename = "invoice_slip.pdf"
	// InvoiceSlipContentType is the media type of the invoice slip
	InvoiceSlipContentType = "application/pdf"
	// WireTimestampLayout renders instants in UTC with millisecond precision
	WireTimestampLayout = "2006-01-02T15:04:05.000Z07:00"
)

// InvoiceRequest is the body POSTed to the admin API to create an invoice
type InvoiceRequest struct {
	ClientID string                  `json:"client_id"`
	GST      int                     `json:"gst"`
	Services []InvoiceServiceRequest `json:"services"`
}

// InvoiceServiceRequest is one service line on the wire
type InvoiceServiceRequest struct {
	Product            string      `json:"product"`
	ServiceDescription string      `json:"serviceDescription"`
	Duration           string      `json:"duration"`
	Quantity           int         `json:"quantity"`
	UnitPrice          json.Number `json:"unitPrice"`
	StartDate          string      `json:"startDate"`
	EndDate            string      `json:"endDate"`
}

// FormatWireTimestamp renders t as an absolute UTC instant
func FormatWireTimestamp(t time.Time) string {
	return t.UTC().Format(WireTimestampLayout)
}

// Document is a binary file returned by the admin API.
// It is NOT persisted; it only lives until it has been delivered.
type Document struct {
	Filename    string
	ContentType string
	Body        []byte
}

// Size returns the document length in bytes
func (d *Document) Size() int64 {
	return int64(len(d.Body))
}
