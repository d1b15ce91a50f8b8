package entity

import (
	"time"
)

// DefaultServiceQuantity is the quantity a freshly appended service starts with
const DefaultServiceQuantity = 1

// ServiceLineItem is one service entry on an invoice being composed.
//
// Product holds a snapshot of the catalog record taken when it was selected,
// so later catalog reloads never change an item that is already on the invoice.
// Items may be incomplete while the user is still editing them.
type ServiceLineItem struct {
	Product            *Product   `json:"product"`
	ServiceDescription string     `json:"serviceDescription"`
	Duration           string     `json:"duration"`
	Quantity           int        `json:"quantity"`
	StartDate          *time.Time `json:"startDate"`
	EndDate            *time.Time `json:"endDate"`
}

// NewServiceLineItem returns an item in its unset/default state
func NewServiceLineItem() ServiceLineItem {
	return ServiceLineItem{Quantity: DefaultServiceQuantity}
}

// Submittable reports whether the item has a resolved product and both dates
func (s ServiceLineItem) Submittable() bool {
	return s.Product != nil && s.StartDate != nil && s.EndDate != nil
}

// LineItems is an ordered sequence of service line items addressed by position.
// Every operation returns a new sequence and leaves the receiver untouched, so a
// snapshot handed out earlier stays valid.
type LineItems struct {
	items []ServiceLineItem
}

// NewLineItems builds a sequence from items, copying the slice
func NewLineItems(items ...ServiceLineItem) LineItems {
	return LineItems{items: append([]ServiceLineItem(nil), items...)}
}

// Len returns the number of items
func (l LineItems) Len() int {
	return len(l.items)
}

// Items returns a copy of the ordered items
func (l LineItems) Items() []ServiceLineItem {
	out := make([]ServiceLineItem, len(l.items))
	copy(out, l.items)
	return out
}

// At returns the item at index
func (l LineItems) At(index int) (ServiceLineItem, bool) {
	if index < 0 || index >= len(l.items) {
		return ServiceLineItem{}, false
	}
	return l.items[index], true
}

// Append adds a default item to the end
func (l LineItems) Append() LineItems {
	next := make([]ServiceLineItem, len(l.items), len(l.items)+1)
	copy(next, l.items)
	return LineItems{items: append(next, NewServiceLineItem())}
}

// RemoveAt deletes the item at index and shifts later items left.
// An out-of-range index is a no-op.
func (l LineItems) RemoveAt(index int) LineItems {
	if index < 0 || index >= len(l.items) {
		return l
	}
	next := make([]ServiceLineItem, 0, len(l.items)-1)
	next = append(next, l.items[:index]...)
	next = append(next, l.items[index+1:]...)
	return LineItems{items: next}
}

// UpdateAt applies update to the item at index. An out-of-range index is a no-op.
func (l LineItems) UpdateAt(index int, update LineItemUpdate, products ProductLookup) LineItems {
	if update == nil || index < 0 || index >= len(l.items) {
		return l
	}
	next := l.Items()
	next[index] = update.apply(next[index], products)
	return LineItems{items: next}
}

// LineItemUpdate is a single field change on a line item.
// The set of updates is closed: SetDescription, SetDuration, SetQuantity,
// SetStartDate, SetEndDate and SetProduct.
type LineItemUpdate interface {
	apply(item ServiceLineItem, products ProductLookup) ServiceLineItem
}

// SetDescription replaces the free-text service description
type SetDescription struct {
	Value string
}

func (u SetDescription) apply(item ServiceLineItem, _ ProductLookup) ServiceLineItem {
	item.ServiceDescription = u.Value
	return item
}

// SetDuration replaces the free-text duration
type SetDuration struct {
	Value string
}

func (u SetDuration) apply(item ServiceLineItem, _ ProductLookup) ServiceLineItem {
	item.Duration = u.Value
	return item
}

// SetQuantity replaces the quantity. Range is checked when the invoice is submitted.
type SetQuantity struct {
	Value int
}

func (u SetQuantity) apply(item ServiceLineItem, _ ProductLookup) ServiceLineItem {
	item.Quantity = u.Value
	return item
}

// SetStartDate sets the billing period start; nil clears it
type SetStartDate struct {
	Value *time.Time
}

func (u SetStartDate) apply(item ServiceLineItem, _ ProductLookup) ServiceLineItem {
	item.StartDate = copyTime(u.Value)
	return item
}

// SetEndDate sets the billing period end; nil clears it
type SetEndDate struct {
	Value *time.Time
}

func (u SetEndDate) apply(item ServiceLineItem, _ ProductLookup) ServiceLineItem {
	item.EndDate = copyTime(u.Value)
	return item
}

// SetProduct selects a product by identifier. The identifier is resolved against
// the catalog and the resolved record is stored; an unknown identifier clears the
// product instead of leaving a stale one behind.
type SetProduct struct {
	ProductID string
}

func (u SetProduct) apply(item ServiceLineItem, products ProductLookup) ServiceLineItem {
	item.Product = nil
	if products == nil {
		return item
	}
	if product, ok := products.Product(u.ProductID); ok {
		item.Product = &product
	}
	return item
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
