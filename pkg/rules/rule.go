package rules

import (
	"github.com/shopspring/decimal"

	"skyfare/meridian/pkg/itinerary"
	"skyfare/meridian/pkg/money"
	"skyfare/meridian/pkg/payment"
	"skyfare/meridian/pkg/refdata"
)

// Rule is one jurisdiction-defined monetary rule. Implementations are
// immutable and shared read-only across all evaluation goroutines.
//
// The rule set is closed: the concrete implementations in this package
// are the only ones the engine knows how to order and apply.
type Rule interface {
	// Name identifies the rule in failure messages and diagnostics.
	Name() string

	// CreateApplicator binds the rule to one itinerary's evaluation
	// context. The returned applicator is short-lived: it is used for
	// one pass over that itinerary's records and then discarded.
	CreateApplicator(ctx *ItinContext) (Applicator, error)
}

// Applicator evaluates one rule against payment records.
type Applicator interface {
	// Apply returns true when the rule does not disqualify the record,
	// including "rule not applicable here". It returns false after
	// setting the record's failure message and failing rule. Apply is
	// idempotent: applied twice to an unchanged record it yields the
	// same boolean and the same message.
	Apply(pd *payment.Detail) bool
}

// AppliesToFailed is implemented by rules that still run against records
// already failed by an earlier rule; everything else is skipped for such
// records.
type AppliesToFailed interface {
	AppliesToFailed() bool
}

// ItinContext is the itinerary-scoped context an applicator is bound to:
// the itinerary structures, the shared read-only reference services, and
// the payment collection for sibling queries.
type ItinContext struct {
	// Itin is the itinerary under evaluation.
	Itin *itinerary.Itinerary

	// Detail records itinerary-wide failures; every applicator checks
	// it before running and configuration failures are scoped to it.
	Detail *itinerary.Detail

	// RawPayments is the itinerary's full record collection, shared by
	// reference for cross-tax matching.
	RawPayments *payment.RawPayments

	// Currency converts amounts between currencies.
	Currency money.Service

	// Customers looks up agency customer records.
	Customers refdata.CustomerService

	// ServiceBaggage looks up service-baggage rulesets.
	ServiceBaggage refdata.ServiceBaggageService

	// PaymentCurrency is the currency record amounts are expressed in.
	PaymentCurrency money.CurrencyCode

	// YqYrTotal is the accumulated carrier-imposed surcharge amount.
	YqYrTotal decimal.Decimal
}
