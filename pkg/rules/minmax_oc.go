package rules

import (
	"fmt"

	"github.com/shopspring/decimal"

	"skyfare/meridian/pkg/money"
	"skyfare/meridian/pkg/payment"
)

// TicketMinMaxValueOCRule is the optional-service variant of the
// ticket-value rule. Each optional service carries independent
// applicability: items fail individually and the record as a whole fails
// only when every item has failed.
type TicketMinMaxValueOCRule struct {
	// Qualifier selects the amount fare-related services validate.
	Qualifier TktValQualifier

	// Currency is the currency min and max are expressed in.
	Currency money.CurrencyCode

	// Min and Max bound the converted amount, inclusive. The legacy
	// min/max absence convention of TicketMinMaxValueRule applies.
	Min decimal.Decimal
	Max decimal.Decimal

	// CurrencyDecimals is the precision of the configured bounds.
	CurrencyDecimals uint8
}

// NewTicketMinMaxValueOCRule creates the optional-service variant.
func NewTicketMinMaxValueOCRule(qualifier TktValQualifier, currency money.CurrencyCode, min, max decimal.Decimal, decimals uint8) *TicketMinMaxValueOCRule {
	return &TicketMinMaxValueOCRule{
		Qualifier:        qualifier,
		Currency:         currency,
		Min:              min,
		Max:              max,
		CurrencyDecimals: decimals,
	}
}

// Name identifies the rule in failure messages.
func (r *TicketMinMaxValueOCRule) Name() string {
	return "TICKET MIN MAX VALUE OC"
}

// CreateApplicator binds the rule to an itinerary context.
func (r *TicketMinMaxValueOCRule) CreateApplicator(ctx *ItinContext) (Applicator, error) {
	if ctx == nil || ctx.Currency == nil {
		return nil, &ConfigurationError{Rule: r.Name(), Reason: "currency service not available"}
	}
	return &ticketMinMaxValueOCApplicator{
		rule: r,
		ctx:  ctx,
		limits: ticketValueLimits{
			currency:        ctx.Currency,
			paymentCurrency: ctx.PaymentCurrency,
			ruleCurrency:    r.Currency,
			min:             r.Min,
			max:             r.Max,
		},
		baseFare: ctx.Itin.FarePath.TotalAmount(),
	}, nil
}

type ticketMinMaxValueOCApplicator struct {
	rule     *TicketMinMaxValueOCRule
	ctx      *ItinContext
	limits   ticketValueLimits
	baseFare decimal.Decimal
}

// Apply validates every not-yet-failed optional service on the record.
// Records with no optional services, or with all of them already failed,
// are not subject to the rule. Invalid items are failed individually;
// the record fails only when no item survives.
func (a *ticketMinMaxValueOCApplicator) Apply(pd *payment.Detail) bool {
	if len(pd.OptionalServices) == 0 {
		return true
	}
	if pd.AllOptionalServicesFailed() {
		return true
	}

	// Computed once: every fare-related service shares the same
	// validity per qualifier.
	isValidBaseFare, baseFareMsg := a.limits.isWithinLimits(a.baseFare)
	fareWithFees := a.baseFare.Add(a.ctx.YqYrTotal).Add(pd.ChangeFeeAmount)
	isValidFareWithFees, fareWithFeesMsg := a.limits.isWithinLimits(fareWithFees)

	for _, oc := range pd.OptionalServices {
		if oc.Failed() {
			continue
		}

		var valid bool
		var msg string
		if oc.Type == payment.OptionalServiceFareRelated {
			switch a.rule.Qualifier {
			case QualifierBaseFare:
				valid, msg = isValidBaseFare, baseFareMsg
			case QualifierFareWithFees:
				valid, msg = isValidFareWithFees, fareWithFeesMsg
			default:
				// Unknown qualifier aborts the whole record, mirroring
				// the base-fare variant.
				a.ctx.Detail.SetFailedRule(a.rule)
				pd.Fail(a.rule, fmt.Sprintf("UNKNOWN TKT VAL QUALIFIER %q", string(a.rule.Qualifier)))
				return false
			}
		} else {
			valid, msg = a.limits.isWithinLimits(oc.Amount)
		}

		if !valid {
			if msg == "" {
				msg = "SERVICE VALUE OUTSIDE LIMITS"
			}
			oc.Fail(msg)
		}
	}

	if pd.AllOptionalServicesFailed() {
		pd.Fail(a.rule, "ALL OPTIONAL SERVICES OUTSIDE LIMITS")
		return false
	}
	return true
}
