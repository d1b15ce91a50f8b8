package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/sangkips/admin-console/internal/domain/entity"
	"github.com/sangkips/admin-console/internal/domain/enum"
	"github.com/sangkips/admin-console/internal/domain/repository"
	"github.com/sangkips/admin-console/internal/infrastructure/adminapi"
	"github.com/sangkips/admin-console/internal/observability/metrics"
	"github.com/sangkips/admin-console/pkg/apperror"
	"github.com/sangkips/admin-console/pkg/slipsink"
)

const (
	// DefaultTaxRate is the tax rate text a new invoice starts with
	DefaultTaxRate = "0"
	maxTaxRate     = 100
)

// Notification is the user-visible outcome of the last submission
type Notification struct {
	Kind    enum.NotificationKind `json:"kind"`
	Message string                `json:"message"`
	Errors  []apperror.FieldError `json:"errors,omitempty"`
	At      time.Time             `json:"at"`
}

// ComposerSnapshot is a consistent read of an invoice being composed
type ComposerSnapshot struct {
	Client       *entity.Client           `json:"client"`
	TaxRate      string                   `json:"gst"`
	Services     []entity.ServiceLineItem `json:"services"`
	State        enum.SubmissionState     `json:"state"`
	Notification *Notification            `json:"notification"`
}

// ComposerOptions carries the collaborators an InvoiceComposer delivers through
type ComposerOptions struct {
	Fs            afero.Fs
	TempDir       string
	CopySink      slipsink.Sink
	SubmitTimeout time.Duration
	Logger        *zap.Logger
	Metrics       *metrics.InvoiceMetrics
}

// InvoiceComposer owns the line items, client selection and tax rate of one
// invoice and submits them to the admin API.
type InvoiceComposer struct {
	data     *ReferenceData
	invoices repository.InvoiceRepository
	opts     ComposerOptions

	mu           sync.Mutex
	items        entity.LineItems
	client       *entity.Client
	taxRate      string
	state        enum.SubmissionState
	notification *Notification

	copies sync.WaitGroup
}

// NewInvoiceComposer creates an empty composer reading catalogs from data
func NewInvoiceComposer(data *ReferenceData, invoices repository.InvoiceRepository, opts ComposerOptions) *InvoiceComposer {
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}
	if opts.CopySink == nil {
		opts.CopySink = slipsink.NewNullSink()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &InvoiceComposer{
		data:     data,
		invoices: invoices,
		opts:     opts,
		items:    entity.NewLineItems(),
		taxRate:  DefaultTaxRate,
		state:    enum.SubmissionStateIdle,
	}
}

// AppendService adds a default service line and returns the new sequence
func (c *InvoiceComposer) AppendService() []entity.ServiceLineItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = c.items.Append()
	return c.items.Items()
}

// RemoveService removes the line at index; an unknown index changes nothing
func (c *InvoiceComposer) RemoveService(index int) []entity.ServiceLineItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = c.items.RemoveAt(index)
	return c.items.Items()
}

// UpdateService applies update to the line at index
func (c *InvoiceComposer) UpdateService(index int, update entity.LineItemUpdate) []entity.ServiceLineItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = c.items.UpdateAt(index, update, c.data)
	return c.items.Items()
}

// Services returns the current service lines
func (c *InvoiceComposer) Services() []entity.ServiceLineItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.items.Items()
}

// SelectClient selects the client with the given identifier. An identifier that
// does not resolve clears the selection.
func (c *InvoiceComposer) SelectClient(id string) (*entity.Client, bool) {
	client, ok := c.data.Client(id)

	c.mu.Lock()
	defer c.mu.Unlock()
	if !ok {
		c.client = nil
		return nil, false
	}
	c.client = &client
	out := client
	return &out, true
}

// SetTaxRate stores the tax rate exactly as typed; it is parsed on submit
func (c *InvoiceComposer) SetTaxRate(raw string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.taxRate = raw
}

// State returns the submission state
func (c *InvoiceComposer) State() enum.SubmissionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Snapshot returns a consistent copy of the composer
func (c *InvoiceComposer) Snapshot() ComposerSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := ComposerSnapshot{
		TaxRate:  c.taxRate,
		Services: c.items.Items(),
		State:    c.state,
	}
	if c.client != nil {
		client := *c.client
		snap.Client = &client
	}
	if c.notification != nil {
		n := *c.notification
		snap.Notification = &n
	}
	return snap
}

// Submit validates the invoice, creates it upstream and delivers the returned
// slip to sink as invoice_slip.pdf. The configured copy sink gets the slip
// after Submit has returned.
// Line items and selections are never changed by Submit.
func (c *InvoiceComposer) Submit(ctx context.Context, sink slipsink.Sink) (*Notification, error) {
	start := time.Now()

	c.mu.Lock()
	if !c.state.CanSubmit() {
		c.mu.Unlock()
		c.opts.Metrics.ObserveSubmission(metrics.OutcomeRejected, 0)
		return nil, apperror.ErrSubmissionInProgress
	}
	c.state = enum.SubmissionStateValidating
	var client *entity.Client
	if c.client != nil {
		cl := *c.client
		client = &cl
	}
	taxRate := c.taxRate
	items := c.items.Items()
	c.mu.Unlock()

	req, err := BuildInvoiceRequest(client, taxRate, items)
	if err != nil {
		return nil, c.fail(err, metrics.OutcomeValidation, start)
	}

	c.setState(enum.SubmissionStateSubmitting)

	// The upstream call is not cancelled when the user goes away.
	callCtx := context.WithoutCancel(ctx)
	if c.opts.SubmitTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(callCtx, c.opts.SubmitTimeout)
		defer cancel()
	}

	doc, err := c.invoices.CreateInvoice(callCtx, req)
	if err != nil {
		c.opts.Logger.Warn("invoice creation failed", zap.String("client_id", req.ClientID), zap.Error(err))
		return nil, c.fail(err, metrics.OutcomeUpstream, start)
	}

	staged, err := c.deliver(doc, sink)
	if err != nil {
		c.opts.Logger.Error("invoice slip delivery failed", zap.String("client_id", req.ClientID), zap.Error(err))
		return nil, c.fail(apperror.NewUpstreamError(adminapi.MsgSlipDownloadFailed).WithCause(err), metrics.OutcomeDelivery, start)
	}

	n := &Notification{
		Kind:    enum.NotificationKindSuccess,
		Message: adminapi.MsgSlipDownloaded,
		At:      time.Now(),
	}
	c.finish(enum.SubmissionStateSucceeded, n)
	c.opts.Metrics.ObserveSubmission(metrics.OutcomeSucceeded, time.Since(start))
	c.opts.Logger.Info("invoice slip delivered",
		zap.String("client_id", req.ClientID),
		zap.Int("services", len(req.Services)),
		zap.Int64("bytes", doc.Size()),
	)

	c.keepCopy(staged)

	out := *n
	return &out, nil
}

// deliver stages the slip and hands it to sink. On success the caller owns the
// staged file; on failure it has already been released.
func (c *InvoiceComposer) deliver(doc *entity.Document, sink slipsink.Sink) (*slipsink.Staged, error) {
	staged, err := slipsink.Stage(c.opts.Fs, c.opts.TempDir, entity.InvoiceSlipFilename, doc.ContentType, doc.Body)
	if err != nil {
		return nil, err
	}
	if err := sink.Deliver(staged); err != nil {
		c.release(staged)
		return nil, err
	}
	return staged, nil
}

// keepCopy hands the delivered slip to the copy sink in the background and
// releases it afterwards. The submission outcome does not depend on it.
func (c *InvoiceComposer) keepCopy(staged *slipsink.Staged) {
	c.copies.Add(1)
	go func() {
		defer c.copies.Done()
		defer c.release(staged)
		if err := c.opts.CopySink.Deliver(staged); err != nil {
			c.opts.Logger.Warn("failed to keep a copy of the invoice slip", zap.Error(err))
		}
	}()
}

// WaitCopies blocks until background slip copies have finished
func (c *InvoiceComposer) WaitCopies() {
	c.copies.Wait()
}

func (c *InvoiceComposer) release(staged *slipsink.Staged) {
	if err := staged.Release(); err != nil {
		c.opts.Logger.Warn("failed to release staged slip", zap.String("path", staged.Path()), zap.Error(err))
	}
}

func (c *InvoiceComposer) fail(err error, outcome string, start time.Time) error {
	appErr := apperror.GetAppError(err)
	c.finish(enum.SubmissionStateFailed, &Notification{
		Kind:    enum.NotificationKindError,
		Message: appErr.Message,
		Errors:  appErr.Errors,
		At:      time.Now(),
	})
	c.opts.Metrics.ObserveSubmission(outcome, time.Since(start))
	return appErr
}

func (c *InvoiceComposer) setState(s enum.SubmissionState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = s
}

func (c *InvoiceComposer) finish(s enum.SubmissionState, n *Notification) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = s
	c.notification = n
}

// ParseTaxRate parses the tax rate text as a whole percentage between 0 and 100
func ParseTaxRate(raw string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, errors.New("must be a whole number")
	}
	if v < 0 || v > maxTaxRate {
		return 0, fmt.Errorf("must be between 0 and %d", maxTaxRate)
	}
	return v, nil
}

// BuildInvoiceRequest validates the invoice and assembles the wire request.
// Every problem is reported as a field error; nothing is sent when any exist.
func BuildInvoiceRequest(client *entity.Client, taxRate string, items []entity.ServiceLineItem) (*entity.InvoiceRequest, error) {
	var fieldErrors []apperror.FieldError
	addErr := func(field, msg string) {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: field, Message: msg})
	}

	if client == nil {
		addErr("client_id", "Please select a client")
	}

	gst, err := ParseTaxRate(taxRate)
	if err != nil {
		addErr("gst", "GST "+err.Error())
	}

	services := make([]entity.InvoiceServiceRequest, 0, len(items))
	for i, item := range items {
		prefix := fmt.Sprintf("services[%d].", i)
		if item.Product == nil {
			addErr(prefix+"product", "Please select a product")
		}
		if item.StartDate == nil {
			addErr(prefix+"startDate", "Start date is required")
		}
		if item.EndDate == nil {
			addErr(prefix+"endDate", "End date is required")
		}
		if item.Quantity < 1 {
			addErr(prefix+"quantity", "Quantity must be at least 1")
		}
		if item.StartDate != nil && item.EndDate != nil && item.EndDate.Before(*item.StartDate) {
			addErr(prefix+"endDate", "End date must not be before start date")
		}
		if !item.Submittable() || item.Quantity < 1 {
			continue
		}

		services = append(services, entity.InvoiceServiceRequest{
			Product:            item.Product.Name,
			ServiceDescription: item.ServiceDescription,
			Duration:           item.Duration,
			Quantity:           item.Quantity,
			UnitPrice:          json.Number(item.Product.UnitPrice.String()),
			StartDate:          entity.FormatWireTimestamp(*item.StartDate),
			EndDate:            entity.FormatWireTimestamp(*item.EndDate),
		})
	}

	if len(fieldErrors) > 0 {
		return nil, apperror.NewValidationError(fieldErrors)
	}

	return &entity.InvoiceRequest{
		ClientID: client.ClientID,
		GST:      gst,
		Services: services,
	}, nil
}
