package rules

import (
	"sort"

	"github.com/shopspring/decimal"
)

// TaxData is one jurisdiction tax with its ordered rule sequence.
type TaxData struct {
	// TaxName is the identifying name of the tax.
	TaxName string

	// TaxCode and TaxType identify the tax in reference data.
	TaxCode string
	TaxType string

	// Nation is the assessing jurisdiction; "ZZ" applies everywhere.
	Nation string

	// SeqNo orders records sharing the same tax identity.
	SeqNo int

	// Amount is the flat tax amount assessed per qualifying tax point,
	// in the payment currency.
	Amount decimal.Decimal

	// Rules is the rule sequence for this tax, applied in order.
	Rules []Rule
}

// OrderedTaxes is the deterministic total order of a jurisdiction's
// taxes, established once per request and independent of itinerary.
// Every itinerary evaluates the same sequence, which guarantees
// reproducible failure attribution when two rules could independently
// fail the same record.
type OrderedTaxes struct {
	taxes []*TaxData
}

// NewOrderedTaxes sorts the taxes into their total order: by nation,
// tax code, tax type, then sequence number. The sort is stable so equal
// keys keep their reference-data order.
func NewOrderedTaxes(taxes []*TaxData) *OrderedTaxes {
	sorted := make([]*TaxData, len(taxes))
	copy(sorted, taxes)

	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Nation != b.Nation {
			return a.Nation < b.Nation
		}
		if a.TaxCode != b.TaxCode {
			return a.TaxCode < b.TaxCode
		}
		if a.TaxType != b.TaxType {
			return a.TaxType < b.TaxType
		}
		return a.SeqNo < b.SeqNo
	})

	return &OrderedTaxes{taxes: sorted}
}

// Taxes returns the taxes in evaluation order. The slice is shared;
// callers must not mutate it.
func (o *OrderedTaxes) Taxes() []*TaxData {
	return o.taxes
}

// Len returns the number of taxes.
func (o *OrderedTaxes) Len() int {
	return len(o.taxes)
}
