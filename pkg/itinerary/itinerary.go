package itinerary

import (
	"github.com/shopspring/decimal"

	"skyfare/meridian/pkg/money"
	"skyfare/meridian/pkg/payment"
)

// TaxPointTag marks a geo as a departure or arrival tax point.
type TaxPointTag string

const (
	TagDeparture TaxPointTag = "departure"
	TagArrival   TaxPointTag = "arrival"
)

// Geo is one tax point along the itinerary: a geographic location at
// which a tax or fee may be assessed.
type Geo struct {
	// Loc is the airport or city code.
	Loc string

	// Nation is the two-letter nation code of the location.
	Nation string

	// Tag marks the point as a departure or an arrival.
	Tag TaxPointTag
}

// GeoPath is the ordered list of tax points for an itinerary. Even
// indices are departures and odd indices arrivals, so a flight occupies
// two consecutive entries.
type GeoPath struct {
	Geos []Geo
}

// Len returns the number of tax points.
func (p *GeoPath) Len() int {
	return len(p.Geos)
}

// FareUsage is one priced fare component.
type FareUsage struct {
	// Amount is the fare component amount in the payment currency.
	Amount decimal.Decimal
}

// FarePath is the priced fare breakdown for an itinerary. It is produced
// by the pricing pipeline and read-only here.
type FarePath struct {
	// FareUsages are the priced fare components.
	FareUsages []FareUsage

	// ValidatingCarrier is the carrier code the ticket is validated on.
	ValidatingCarrier string
}

// TotalAmount sums all fare-usage amounts. This is the base fare the
// ticket value rules validate against.
func (f *FarePath) TotalAmount() decimal.Decimal {
	total := decimal.Zero
	for _, fu := range f.FareUsages {
		total = total.Add(fu.Amount)
	}
	return total
}

// YqYr is one carrier-imposed fuel or insurance surcharge usage.
type YqYr struct {
	// Code is "YQ" or "YR".
	Code string

	// Type is the surcharge type letter ("F" or "I").
	Type string

	// Amount is the surcharge amount in the payment currency.
	Amount decimal.Decimal

	// TaxIncluded reports whether the surcharge already includes tax.
	TaxIncluded bool
}

// YqYrPath is the list of YqYr usages with their geo-path mapping.
// Usage i covers the tax points listed in Mappings[i].
type YqYrPath struct {
	YqYrs []YqYr

	// Mappings maps each usage onto the ordinal geo-path indices it
	// covers, in ascending order.
	Mappings []GeoPathMapping
}

// GeoPathMapping lists the geo-path indices one YqYr usage spans.
type GeoPathMapping struct {
	GeoIDs []int
}

// Range expands the mapping into the equivalent tax-point range. The
// second return is false for an empty mapping.
func (m GeoPathMapping) Range() (begin, end int, ok bool) {
	if len(m.GeoIDs) == 0 {
		return 0, 0, false
	}
	begin, end = m.GeoIDs[0], m.GeoIDs[0]
	for _, id := range m.GeoIDs[1:] {
		if id < begin {
			begin = id
		}
		if id > end {
			end = id
		}
	}
	return begin, end, true
}

// TotalAmount sums all YqYr usage amounts.
func (p *YqYrPath) TotalAmount() decimal.Decimal {
	total := decimal.Zero
	for _, y := range p.YqYrs {
		total = total.Add(y.Amount)
	}
	return total
}

// Detail records itinerary-wide evaluation state. A configuration
// failure (unknown qualifier, missing reference data) is scoped to the
// whole itinerary: the failing rule is recorded here and every
// subsequent applicator checks it before running.
type Detail struct {
	failedRule payment.FailingRule
	exempt     bool
}

// IsFailedRule reports whether a rule failed the whole itinerary.
func (d *Detail) IsFailedRule() bool {
	return d.failedRule != nil
}

// FailedRule returns the itinerary-failing rule, nil when none.
func (d *Detail) FailedRule() payment.FailingRule {
	return d.failedRule
}

// SetFailedRule records an itinerary-wide rule failure. The first
// failure wins; later calls are ignored so failure attribution stays
// with the earliest rule in the deterministic order.
func (d *Detail) SetFailedRule(rule payment.FailingRule) {
	if d.failedRule == nil {
		d.failedRule = rule
	}
}

// IsExempt reports whether the itinerary is exempt from evaluation.
func (d *Detail) IsExempt() bool {
	return d.exempt
}

// SetExempt marks the itinerary exempt.
func (d *Detail) SetExempt() {
	d.exempt = true
}

// Itinerary is one priced itinerary submitted for rule evaluation.
type Itinerary struct {
	// ID identifies the itinerary within the request.
	ID int

	// GeoPath is the ordered tax-point path.
	GeoPath *GeoPath

	// FarePath is the priced fare breakdown.
	FarePath *FarePath

	// YqYrPath holds carrier-imposed surcharges, may be nil.
	YqYrPath *YqYrPath

	// PointOfSale is the agency pseudo-city code the itinerary was
	// priced under.
	PointOfSale string

	// PaymentCurrency is the currency record amounts are expressed in.
	PaymentCurrency money.CurrencyCode

	// OptionalServices are the ancillary items priced with the
	// itinerary; they are attached to each created payment record.
	OptionalServices []payment.OptionalService

	// ChangeFeeAmount is the reissue fee, zero for fresh tickets.
	ChangeFeeAmount decimal.Decimal
}
