package request

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sangkips/admin-console/internal/domain/entity"
)

// Service fields that can be updated on a line item
const (
	FieldDescription = "serviceDescription"
	FieldDuration    = "duration"
	FieldQuantity    = "quantity"
	FieldStartDate   = "startDate"
	FieldEndDate     = "endDate"
	FieldProduct     = "product"
)

const dateOnlyLayout = "2006-01-02"

// SelectClientRequest selects the invoice client by its record identifier.
// An empty or unknown identifier clears the selection.
type SelectClientRequest struct {
	ID string `json:"_id"`
}

// SetTaxRateRequest stores the GST field exactly as typed
type SetTaxRateRequest struct {
	GST *string `json:"gst" binding:"required"`
}

// UpdateServiceRequest changes one field of a service line
type UpdateServiceRequest struct {
	Field string          `json:"field" binding:"required,oneof=serviceDescription duration quantity startDate endDate product"`
	Value json.RawMessage `json:"value"`
}

// ToUpdate converts the request into a line item update.
// Dates are accepted as RFC 3339 instants or as calendar dates in loc.
func (r *UpdateServiceRequest) ToUpdate(loc *time.Location) (entity.LineItemUpdate, error) {
	switch r.Field {
	case FieldDescription:
		v, err := r.stringValue()
		if err != nil {
			return nil, err
		}
		return entity.SetDescription{Value: v}, nil
	case FieldDuration:
		v, err := r.stringValue()
		if err != nil {
			return nil, err
		}
		return entity.SetDuration{Value: v}, nil
	case FieldQuantity:
		var v int
		if err := json.Unmarshal(r.Value, &v); err != nil {
			return nil, fmt.Errorf("quantity must be a whole number")
		}
		return entity.SetQuantity{Value: v}, nil
	case FieldStartDate, FieldEndDate:
		t, err := r.dateValue(loc)
		if err != nil {
			return nil, err
		}
		if r.Field == FieldStartDate {
			return entity.SetStartDate{Value: t}, nil
		}
		return entity.SetEndDate{Value: t}, nil
	case FieldProduct:
		v, err := r.stringValue()
		if err != nil {
			return nil, err
		}
		return entity.SetProduct{ProductID: v}, nil
	default:
		return nil, fmt.Errorf("unknown field %q", r.Field)
	}
}

func (r *UpdateServiceRequest) isNull() bool {
	v := strings.TrimSpace(string(r.Value))
	return v == "" || v == "null"
}

func (r *UpdateServiceRequest) stringValue() (string, error) {
	if r.isNull() {
		return "", nil
	}
	var v string
	if err := json.Unmarshal(r.Value, &v); err != nil {
		return "", fmt.Errorf("%s must be a string", r.Field)
	}
	return v, nil
}

func (r *UpdateServiceRequest) dateValue(loc *time.Location) (*time.Time, error) {
	s, err := r.stringValue()
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	t, err := ParseDateInput(s, loc)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ParseDateInput parses an RFC 3339 instant, or a calendar date taken as
// midnight in loc.
func ParseDateInput(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(dateOnlyLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, use YYYY-MM-DD or an RFC 3339 timestamp", s)
	}
	return t, nil
}
