package rules

import (
	"fmt"

	"skyfare/meridian/pkg/payment"
	"skyfare/meridian/pkg/refdata"
)

// ServiceBaggageRule validates a tax against a jurisdiction-configured
// list of inclusion/exclusion entries looked up by (vendor, item
// number). Positive entries require at least one matching sibling
// payment or YqYr usage; negative entries require that none exists.
type ServiceBaggageRule struct {
	// Vendor and ItemNo identify the ruleset in reference data.
	Vendor string
	ItemNo int
}

// NewServiceBaggageRule creates the rule for a ruleset key.
func NewServiceBaggageRule(vendor string, itemNo int) *ServiceBaggageRule {
	return &ServiceBaggageRule{Vendor: vendor, ItemNo: itemNo}
}

// Name identifies the rule in failure messages.
func (r *ServiceBaggageRule) Name() string {
	return "SERVICE BAGGAGE"
}

// AppliesToFailed reports that the rule still runs against records
// failed by earlier rules: its matching query is about siblings, not
// about the current record's own state.
func (r *ServiceBaggageRule) AppliesToFailed() bool {
	return true
}

// CreateApplicator binds the rule to an itinerary context, resolving the
// ruleset once. A missing ruleset is carried into the applicator and
// surfaces as a configuration failure on Apply.
func (r *ServiceBaggageRule) CreateApplicator(ctx *ItinContext) (Applicator, error) {
	if ctx == nil || ctx.ServiceBaggage == nil {
		return nil, &ConfigurationError{Rule: r.Name(), Reason: "service-baggage service not available"}
	}
	ruleset, _ := ctx.ServiceBaggage.ServiceBaggage(r.Vendor, r.ItemNo)
	return &serviceBaggageApplicator{
		rule:    r,
		ctx:     ctx,
		ruleset: ruleset,
	}, nil
}

type serviceBaggageApplicator struct {
	rule    *ServiceBaggageRule
	ctx     *ItinContext
	ruleset *refdata.ServiceBaggageRuleset
}

// Apply checks every entry in order: a positive entry without a match,
// or a negative entry with one, fails the record immediately. A missing
// ruleset or an empty entry list is a configuration failure scoped to
// the whole itinerary.
func (a *serviceBaggageApplicator) Apply(pd *payment.Detail) bool {
	if a.ruleset == nil || len(a.ruleset.Entries) == 0 {
		a.ctx.Detail.SetFailedRule(a.rule)
		pd.Fail(a.rule, fmt.Sprintf("SERVICE BAGGAGE ITEM %d/%s MISSING", a.rule.ItemNo, a.rule.Vendor))
		return false
	}

	for _, entry := range a.ruleset.Entries {
		found := a.anyMatch(entry, pd)
		switch entry.ApplTag {
		case refdata.ApplTagPositive:
			if !found {
				pd.Fail(a.rule, fmt.Sprintf("NO MATCHING PAYMENT FOR TAX %s", entry.TaxCode))
				return false
			}
		case refdata.ApplTagNegative:
			if found {
				pd.Fail(a.rule, fmt.Sprintf("EXCLUDED PAYMENT PRESENT FOR TAX %s", entry.TaxCode))
				return false
			}
		default:
			a.ctx.Detail.SetFailedRule(a.rule)
			pd.Fail(a.rule, fmt.Sprintf("UNKNOWN APPL TAG %q", string(entry.ApplTag)))
			return false
		}
	}
	return true
}

// anyMatch reports whether any candidate payment or YqYr usage matches
// the entry against the current record's taxable segment.
func (a *serviceBaggageApplicator) anyMatch(entry refdata.ServiceBaggageEntry, current *payment.Detail) bool {
	for _, candidate := range a.ctx.RawPayments.All() {
		if a.matchPayment(entry, candidate, current) {
			return true
		}
	}
	return a.matchYqYr(entry, current)
}

// matchPayment applies the service-baggage matching predicate to one
// sibling payment. The current record never matches itself: identity and
// same-tax records on an identical tax-point range are excluded.
func (a *serviceBaggageApplicator) matchPayment(entry refdata.ServiceBaggageEntry, candidate, current *payment.Detail) bool {
	if candidate == current {
		return false
	}
	if candidate.Failed() || candidate.Exempt() {
		return false
	}
	if candidate.TaxCode != entry.TaxCode {
		return false
	}
	if entry.TaxTypeSubcode != "" && candidate.TaxType != entry.TaxTypeSubcode {
		return false
	}
	if candidate.TaxName == current.TaxName && sameRange(candidate, current) {
		return false
	}
	return covers(candidate.TaxPointBegin, candidate.TaxPointEnd, current)
}

// matchYqYr matches the entry against carrier-imposed surcharges, each
// expanded from its geo-path mapping into the equivalent tax-point
// range.
func (a *serviceBaggageApplicator) matchYqYr(entry refdata.ServiceBaggageEntry, current *payment.Detail) bool {
	path := a.ctx.Itin.YqYrPath
	if path == nil {
		return false
	}
	for i, usage := range path.YqYrs {
		if usage.Code != entry.TaxCode {
			continue
		}
		if entry.TaxTypeSubcode != "" && usage.Type != entry.TaxTypeSubcode {
			continue
		}
		if i >= len(path.Mappings) {
			continue
		}
		begin, end, ok := path.Mappings[i].Range()
		if !ok {
			continue
		}
		if covers(begin, end, current) {
			return true
		}
	}
	return false
}

// covers reports whether the [begin, end] tax-point range covers the
// current record's taxable segment, inclusive on both ends. Ranges are
// geo tax-point ordinals, normalized so arrival-first taxes compare the
// same way as departure-first ones.
func covers(begin, end int, current *payment.Detail) bool {
	if begin > end {
		begin, end = end, begin
	}
	cb, ce := current.TaxPointBegin, current.TaxPointEnd
	if cb > ce {
		cb, ce = ce, cb
	}
	return begin <= cb && end >= ce
}

// sameRange reports whether two records delimit the same taxable
// segment.
func sameRange(a, b *payment.Detail) bool {
	ab, ae := a.TaxPointBegin, a.TaxPointEnd
	if ab > ae {
		ab, ae = ae, ab
	}
	bb, be := b.TaxPointBegin, b.TaxPointEnd
	if bb > be {
		bb, be = be, bb
	}
	return ab == bb && ae == be
}
