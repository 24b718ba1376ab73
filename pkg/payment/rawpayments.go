package payment

import (
	"skyfare/meridian/pkg/money"
)

// RawPayments is the ordered, append-preserving collection of payment
// records for one itinerary. It is pre-sized to the expected number of
// tax-point combinations and shared by reference with every applicator
// invoked for that itinerary.
type RawPayments struct {
	details []*Detail
}

// NewRawPayments creates an empty collection pre-sized for the expected
// number of records.
func NewRawPayments(capacity int) *RawPayments {
	if capacity < 0 {
		capacity = 0
	}
	return &RawPayments{details: make([]*Detail, 0, capacity)}
}

// Append adds a record, preserving insertion order.
func (r *RawPayments) Append(d *Detail) {
	r.details = append(r.details, d)
}

// All returns the records in insertion order. The returned slice is the
// collection's backing store; callers must not reorder it.
func (r *RawPayments) All() []*Detail {
	return r.details
}

// Len returns the number of records.
func (r *RawPayments) Len() int {
	return len(r.details)
}

// ForTax returns the records belonging to the given tax name, in
// insertion order.
func (r *RawPayments) ForTax(taxName string) []*Detail {
	var out []*Detail
	for _, d := range r.details {
		if d.TaxName == taxName {
			out = append(out, d)
		}
	}
	return out
}

// ItinsPayments is the engine's output: the per-itinerary record
// collections plus the overall payment currency and its display decimals.
type ItinsPayments struct {
	// ItinRawPayments holds one collection per evaluated itinerary, in
	// the order the itineraries were submitted.
	ItinRawPayments []*RawPayments

	// PaymentCurrency is the currency all record amounts are expressed in.
	PaymentCurrency money.CurrencyCode

	// CurrencyDecimals is the display precision for PaymentCurrency.
	CurrencyDecimals uint8
}
