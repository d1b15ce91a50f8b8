package entity

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

type mapLookup map[string]Product

func (m mapLookup) Product(id string) (Product, bool) {
	p, ok := m[id]
	return p, ok
}

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestAppendKeepsOrderAndDefaults(t *testing.T) {
	var items LineItems
	for i := 0; i < 4; i++ {
		items = items.Append()
	}
	if items.Len() != 4 {
		t.Fatalf("expected 4 items, got %d", items.Len())
	}
	for i, item := range items.Items() {
		if item.Product != nil || item.StartDate != nil || item.EndDate != nil {
			t.Fatalf("item %d is not in default state: %+v", i, item)
		}
		if item.Quantity != DefaultServiceQuantity {
			t.Fatalf("item %d quantity = %d, want %d", i, item.Quantity, DefaultServiceQuantity)
		}
	}
}

func TestAppendDoesNotTouchPreviousSnapshot(t *testing.T) {
	base := NewLineItems().Append()
	snapshot := base.Items()

	next := base.Append()
	if base.Len() != 1 || len(snapshot) != 1 {
		t.Fatalf("previous sequence changed: len=%d snapshot=%d", base.Len(), len(snapshot))
	}
	if next.Len() != 2 {
		t.Fatalf("expected 2 items, got %d", next.Len())
	}
}

func TestRemoveAtShiftsLaterItems(t *testing.T) {
	items := NewLineItems(
		ServiceLineItem{ServiceDescription: "a", Quantity: 1},
		ServiceLineItem{ServiceDescription: "b", Quantity: 2},
		ServiceLineItem{ServiceDescription: "c", Quantity: 3},
	)

	got := items.RemoveAt(1)
	if got.Len() != 2 {
		t.Fatalf("expected 2 items, got %d", got.Len())
	}
	first, _ := got.At(0)
	second, _ := got.At(1)
	if first.ServiceDescription != "a" || second.ServiceDescription != "c" || second.Quantity != 3 {
		t.Fatalf("unexpected layout after removal: %+v", got.Items())
	}
	if items.Len() != 3 {
		t.Fatalf("original sequence mutated: len=%d", items.Len())
	}
	orig, _ := items.At(1)
	if orig.ServiceDescription != "b" {
		t.Fatalf("original sequence mutated at 1: %+v", orig)
	}
}

func TestRemoveAtOutOfRangeIsNoop(t *testing.T) {
	items := NewLineItems().Append().Append()
	for _, idx := range []int{-1, 2, 99} {
		got := items.RemoveAt(idx)
		if got.Len() != 2 {
			t.Fatalf("RemoveAt(%d) changed length to %d", idx, got.Len())
		}
	}
}

func TestUpdateAtOnlyChangesTarget(t *testing.T) {
	items := NewLineItems().Append().Append().Append()
	got := items.UpdateAt(1, SetDescription{Value: "design work"}, nil)

	for i, item := range got.Items() {
		want := ""
		if i == 1 {
			want = "design work"
		}
		if item.ServiceDescription != want {
			t.Fatalf("item %d description = %q, want %q", i, item.ServiceDescription, want)
		}
	}
	prev, _ := items.At(1)
	if prev.ServiceDescription != "" {
		t.Fatalf("previous snapshot was mutated: %+v", prev)
	}
}

func TestUpdateAtOutOfRangeIsNoop(t *testing.T) {
	items := NewLineItems().Append()
	got := items.UpdateAt(3, SetDuration{Value: "3 months"}, nil)
	item, _ := got.At(0)
	if item.Duration != "" {
		t.Fatalf("out of range update leaked into item 0: %+v", item)
	}
}

func TestSetProductResolvesAndClears(t *testing.T) {
	catalog := mapLookup{
		"p1": {ID: "p1", Name: "SEO", UnitPrice: decimal.RequireFromString("1500.50")},
	}
	items := NewLineItems().Append()

	items = items.UpdateAt(0, SetProduct{ProductID: "p1"}, catalog)
	item, _ := items.At(0)
	if item.Product == nil || item.Product.ID != "p1" {
		t.Fatalf("expected product p1, got %+v", item.Product)
	}
	if !item.Product.UnitPrice.Equal(decimal.RequireFromString("1500.50")) {
		t.Fatalf("unexpected unit price %s", item.Product.UnitPrice)
	}

	items = items.UpdateAt(0, SetProduct{ProductID: "missing"}, catalog)
	item, _ = items.At(0)
	if item.Product != nil {
		t.Fatalf("expected product to be cleared, got %+v", item.Product)
	}
}

func TestSelectedProductIsSnapshot(t *testing.T) {
	catalog := mapLookup{
		"p1": {ID: "p1", Name: "SEO", UnitPrice: decimal.NewFromInt(100)},
	}
	items := NewLineItems().Append().UpdateAt(0, SetProduct{ProductID: "p1"}, catalog)

	catalog["p1"] = Product{ID: "p1", Name: "SEO (new)", UnitPrice: decimal.NewFromInt(250)}

	item, _ := items.At(0)
	if item.Product.Name != "SEO" || !item.Product.UnitPrice.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("catalog change leaked into line item: %+v", item.Product)
	}
}

func TestSetDatesCopiesValue(t *testing.T) {
	start := date(2024, time.January, 1)
	items := NewLineItems().Append().
		UpdateAt(0, SetStartDate{Value: start}, nil).
		UpdateAt(0, SetEndDate{Value: date(2024, time.March, 31)}, nil)

	*start = start.AddDate(1, 0, 0)

	item, _ := items.At(0)
	if item.StartDate.Year() != 2024 {
		t.Fatalf("caller mutation leaked into item: %v", item.StartDate)
	}
	if item.Submittable() {
		t.Fatalf("item without product must not be submittable")
	}
}

func TestSubmittable(t *testing.T) {
	p := Product{ID: "p1"}
	cases := []struct {
		name string
		item ServiceLineItem
		want bool
	}{
		{"empty", NewServiceLineItem(), false},
		{"product only", ServiceLineItem{Product: &p}, false},
		{"missing end", ServiceLineItem{Product: &p, StartDate: date(2024, 1, 1)}, false},
		{"complete", ServiceLineItem{Product: &p, StartDate: date(2024, 1, 1), EndDate: date(2024, 2, 1)}, true},
	}
	for _, tc := range cases {
		if got := tc.item.Submittable(); got != tc.want {
			t.Fatalf("%s: Submittable() = %v, want %v", tc.name, got, tc.want)
		}
	}
}
