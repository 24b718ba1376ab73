package rules

import (
	"fmt"

	"skyfare/meridian/pkg/payment"
	"skyfare/meridian/pkg/refdata"
)

// CustomerRestrictionRule exempts or restricts a tax based on the agency
// customer record of the itinerary's point of sale. Only carriers G3,
// T4 and JJ carry customer exemption flags; any other carrier passes
// unconditionally.
type CustomerRestrictionRule struct {
	// Carrier is the carrier code the restriction applies to.
	Carrier string
}

// NewCustomerRestrictionRule creates the rule for a carrier code.
func NewCustomerRestrictionRule(carrier string) *CustomerRestrictionRule {
	return &CustomerRestrictionRule{Carrier: carrier}
}

// Name identifies the rule in failure messages.
func (r *CustomerRestrictionRule) Name() string {
	return "CUSTOMER RESTRICTION"
}

// CreateApplicator binds the rule to an itinerary context.
func (r *CustomerRestrictionRule) CreateApplicator(ctx *ItinContext) (Applicator, error) {
	if ctx == nil || ctx.Customers == nil {
		return nil, &ConfigurationError{Rule: r.Name(), Reason: "customer service not available"}
	}
	return &customerRestrictionApplicator{
		rule:      r,
		customers: ctx.Customers,
		pcc:       ctx.Itin.PointOfSale,
	}, nil
}

type customerRestrictionApplicator struct {
	rule      *CustomerRestrictionRule
	customers refdata.CustomerService
	pcc       string
}

// Apply passes when no customer record exists for the PCC (absence of
// configuration means no restriction) or when the carrier's exemption
// flag is set. It fails exactly when the record exists and the flag for
// that carrier is not set.
func (a *customerRestrictionApplicator) Apply(pd *payment.Detail) bool {
	customer, ok := a.customers.Customer(a.pcc)
	if !ok {
		return true
	}

	var exempt bool
	switch a.rule.Carrier {
	case "G3":
		exempt = customer.ExemptDuG3
	case "T4":
		exempt = customer.ExemptDuT4
	case "JJ":
		exempt = customer.ExemptDuJJ
	default:
		// Default allow: carriers without a configured flag are never
		// restricted.
		return true
	}

	if !exempt {
		pd.Fail(a.rule, fmt.Sprintf("TAX RESTRICTED FOR AGENCY %s", a.pcc))
		return false
	}
	return true
}
