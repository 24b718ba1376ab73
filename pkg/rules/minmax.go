package rules

import (
	"fmt"

	"github.com/shopspring/decimal"

	"skyfare/meridian/pkg/money"
	"skyfare/meridian/pkg/payment"
)

// TktValQualifier selects which amount a ticket-value rule validates.
type TktValQualifier string

const (
	// QualifierBlank means no ticket-value validation applies.
	QualifierBlank TktValQualifier = ""

	// QualifierBaseFare validates the base fare alone.
	QualifierBaseFare TktValQualifier = "A"

	// QualifierFareWithFees validates the base fare plus YqYr
	// surcharges and the change fee.
	QualifierFareWithFees TktValQualifier = "B"
)

// TicketMinMaxValueRule validates that the ticket value falls inside a
// jurisdiction-configured range, expressed in the rule's own currency.
//
// Limit semantics are a documented legacy convention, preserved exactly:
// when min and max are both zero the rule always passes; when min is
// non-zero and max is zero only the lower bound is enforced.
type TicketMinMaxValueRule struct {
	// Qualifier selects the amount to validate.
	Qualifier TktValQualifier

	// Currency is the currency min and max are expressed in.
	Currency money.CurrencyCode

	// Min and Max bound the converted amount, inclusive.
	Min decimal.Decimal
	Max decimal.Decimal

	// CurrencyDecimals is the precision of the configured bounds.
	CurrencyDecimals uint8
}

// NewTicketMinMaxValueRule creates the base-fare variant of the rule.
func NewTicketMinMaxValueRule(qualifier TktValQualifier, currency money.CurrencyCode, min, max decimal.Decimal, decimals uint8) *TicketMinMaxValueRule {
	return &TicketMinMaxValueRule{
		Qualifier:        qualifier,
		Currency:         currency,
		Min:              min,
		Max:              max,
		CurrencyDecimals: decimals,
	}
}

// Name identifies the rule in failure messages.
func (r *TicketMinMaxValueRule) Name() string {
	return "TICKET MIN MAX VALUE"
}

// CreateApplicator binds the rule to an itinerary context. The base fare
// is computed once here, not per record.
func (r *TicketMinMaxValueRule) CreateApplicator(ctx *ItinContext) (Applicator, error) {
	if ctx == nil || ctx.Currency == nil {
		return nil, &ConfigurationError{Rule: r.Name(), Reason: "currency service not available"}
	}
	return &ticketMinMaxValueApplicator{
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

// ticketValueLimits is the shared range check of both ticket-value
// variants.
type ticketValueLimits struct {
	currency        money.Service
	paymentCurrency money.CurrencyCode
	ruleCurrency    money.CurrencyCode
	min             decimal.Decimal
	max             decimal.Decimal
}

// isWithinLimits converts the amount into the rule currency and checks
// the configured bounds. The returned message is non-empty only for a
// conversion failure; range failures use the caller's message.
func (l *ticketValueLimits) isWithinLimits(amount decimal.Decimal) (bool, string) {
	// Both bounds absent: the record always passes, regardless of
	// amount or available rates.
	if l.min.IsZero() && l.max.IsZero() {
		return true, ""
	}

	converted, err := l.currency.ConvertTo(l.ruleCurrency, money.New(amount, l.paymentCurrency))
	if err != nil {
		return false, fmt.Sprintf("CONVERSION %s-%s FAILED", l.paymentCurrency, l.ruleCurrency)
	}

	if converted.LessThan(l.min) {
		return false, ""
	}
	// min != 0 and max == 0 means no upper bound is configured.
	if !l.max.IsZero() && converted.GreaterThan(l.max) {
		return false, ""
	}
	return true, ""
}

type ticketMinMaxValueApplicator struct {
	rule     *TicketMinMaxValueRule
	ctx      *ItinContext
	limits   ticketValueLimits
	baseFare decimal.Decimal
}

// Apply validates the qualifier-selected amount against the configured
// range. An itinerary already failed by an unrelated rule is skipped; an
// unknown qualifier is a configuration failure that fails the whole
// itinerary detail.
func (a *ticketMinMaxValueApplicator) Apply(pd *payment.Detail) bool {
	if a.ctx.Detail.IsFailedRule() {
		return true
	}

	var amount decimal.Decimal
	switch a.rule.Qualifier {
	case QualifierBaseFare:
		amount = a.baseFare
	case QualifierFareWithFees:
		amount = a.baseFare.Add(a.ctx.YqYrTotal).Add(pd.ChangeFeeAmount)
	default:
		a.ctx.Detail.SetFailedRule(a.rule)
		pd.Fail(a.rule, fmt.Sprintf("UNKNOWN TKT VAL QUALIFIER %q", string(a.rule.Qualifier)))
		return false
	}

	ok, msg := a.limits.isWithinLimits(amount)
	if !ok {
		if msg == "" {
			msg = "TICKET VALUE OUTSIDE LIMITS"
		}
		pd.Fail(a.rule, msg)
		return false
	}
	return true
}
