package payment

import (
	"github.com/shopspring/decimal"
)

// Status is the evaluation state of a payment record.
type Status int

const (
	// StatusEvaluable means the record is still subject to rule evaluation.
	StatusEvaluable Status = iota

	// StatusFailed means a rule actively disqualified the record.
	StatusFailed

	// StatusExempt is terminal: the record is not subject to further
	// evaluation and no rule may flip it back to evaluable.
	StatusExempt
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusEvaluable:
		return "evaluable"
	case StatusFailed:
		return "failed"
	case StatusExempt:
		return "exempt"
	default:
		return "unknown"
	}
}

// FailingRule is the minimal view of the rule recorded on a failed record.
// The rules package implements it; keeping the interface here avoids a
// dependency cycle between records and rules.
type FailingRule interface {
	Name() string
}

// OptionalServiceType categorizes an optional service entry.
type OptionalServiceType string

const (
	// OptionalServiceFareRelated marks services priced off the fare,
	// validated against the precomputed base-fare amounts.
	OptionalServiceFareRelated OptionalServiceType = "FARE_RELATED"

	// OptionalServiceFlightRelated marks per-flight ancillaries.
	OptionalServiceFlightRelated OptionalServiceType = "FLIGHT_RELATED"

	// OptionalServiceBaggageCharge marks checked-baggage charges.
	OptionalServiceBaggageCharge OptionalServiceType = "BAGGAGE_CHARGE"

	// OptionalServiceTicketRelated marks ticket-level ancillaries.
	OptionalServiceTicketRelated OptionalServiceType = "TICKET_RELATED"
)

// OptionalService is one optional-service item attached to a payment
// record. Its applicability is independent of the base record: failing
// the base fare's rule must not implicitly fail every optional service,
// and vice versa.
type OptionalService struct {
	// Type categorizes the service.
	Type OptionalServiceType

	// SubCode is the ancillary service sub type code.
	SubCode string

	// Amount is the service amount in the payment currency.
	Amount decimal.Decimal

	// TaxAmount is the computed tax on the service.
	TaxAmount decimal.Decimal

	failed      bool
	failMessage string
}

// Fail marks the item as failed with a human-readable message.
func (o *OptionalService) Fail(message string) {
	o.failed = true
	o.failMessage = message
}

// Failed reports whether the item has been failed.
func (o *OptionalService) Failed() bool {
	return o.failed
}

// FailMessage returns the failure message, empty when the item passed.
func (o *OptionalService) FailMessage() string {
	return o.failMessage
}

// Detail is one payment record per (tax-point-begin, tax-point-end,
// tax-name) triple for one itinerary. It is created during request setup,
// mutated only by applicators, and read-only once orchestration finishes.
type Detail struct {
	// TaxPointBegin and TaxPointEnd are ordinal indices into the
	// itinerary's geo path delimiting the taxable segment.
	TaxPointBegin int
	TaxPointEnd   int

	// TaxName is the identifying name of the tax.
	TaxName string

	// TaxCode is the tax code (e.g. "AA", "US").
	TaxCode string

	// TaxType is the tax type sub-code.
	TaxType string

	// TaxAmount is the computed tax amount in the payment currency.
	TaxAmount decimal.Decimal

	// ChangeFeeAmount is the reissue/change fee included when validating
	// the fare-with-fees qualifier.
	ChangeFeeAmount decimal.Decimal

	// OptionalServices carry independent applicability state.
	OptionalServices []*OptionalService

	status      Status
	failMessage string
	failedRule  FailingRule
}

// Status returns the current evaluation state.
func (d *Detail) Status() Status {
	return d.status
}

// Failed reports whether a rule disqualified the record.
func (d *Detail) Failed() bool {
	return d.status == StatusFailed
}

// Exempt reports whether the record is terminally exempt.
func (d *Detail) Exempt() bool {
	return d.status == StatusExempt
}

// Fail records a rule failure with its human-readable message. The first
// failure wins so attribution stays with the earliest rule in the
// deterministic order; exempt is terminal and ignores the call.
func (d *Detail) Fail(rule FailingRule, message string) {
	if d.status != StatusEvaluable {
		return
	}
	d.status = StatusFailed
	d.failMessage = message
	d.failedRule = rule
}

// SetExempt moves the record to the terminal exempt state.
func (d *Detail) SetExempt() {
	d.status = StatusExempt
}

// FailMessage returns the failure message, empty when the record passed.
func (d *Detail) FailMessage() string {
	return d.failMessage
}

// FailedRule returns the rule that disqualified the record, nil when the
// record has not failed.
func (d *Detail) FailedRule() FailingRule {
	return d.failedRule
}

// AllOptionalServicesFailed reports whether every optional-service item
// on the record has been failed. It is false when the record carries no
// optional services.
func (d *Detail) AllOptionalServicesFailed() bool {
	if len(d.OptionalServices) == 0 {
		return false
	}
	for _, oc := range d.OptionalServices {
		if !oc.Failed() {
			return false
		}
	}
	return true
}
