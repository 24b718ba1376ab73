package refdata

import (
	"github.com/shopspring/decimal"

	"skyfare/meridian/pkg/money"
)

// Customer is an agency customer record keyed by pseudo-city code.
// The three ExemptDu flags grant tax exemption for the corresponding
// carrier; carriers without a flag are never restricted.
type Customer struct {
	// PCC is the agency pseudo-city code.
	PCC string `yaml:"pcc"`

	// ExemptDuG3 grants the DU exemption for carrier G3.
	ExemptDuG3 bool `yaml:"exempt_du_g3"`

	// ExemptDuT4 grants the DU exemption for carrier T4.
	ExemptDuT4 bool `yaml:"exempt_du_t4"`

	// ExemptDuJJ grants the DU exemption for carrier JJ.
	ExemptDuJJ bool `yaml:"exempt_du_jj"`
}

// ApplTag says whether a service-baggage entry must match (positive) or
// must not match (negative) a payment.
type ApplTag string

const (
	ApplTagPositive ApplTag = "positive"
	ApplTagNegative ApplTag = "negative"
)

// ServiceBaggageEntry is one line of a service-baggage ruleset.
type ServiceBaggageEntry struct {
	// ApplTag selects positive or negative matching.
	ApplTag ApplTag `yaml:"appl_tag"`

	// TaxCode is the tax code the entry matches ("AA", "YQ", ...).
	TaxCode string `yaml:"tax_code"`

	// TaxTypeSubcode narrows the match to one tax type; empty matches
	// any type.
	TaxTypeSubcode string `yaml:"tax_type_subcode"`

	// OptionalServiceTag narrows the match to one optional-service kind.
	OptionalServiceTag string `yaml:"optional_service_tag"`

	// Group and SubGroup are the ancillary attribute group codes.
	Group    string `yaml:"group"`
	SubGroup string `yaml:"sub_group"`

	// FeeOwnerCarrier restricts the entry to fees owned by one carrier.
	FeeOwnerCarrier string `yaml:"fee_owner_carrier"`
}

// ServiceBaggageRuleset is an ordered list of entries looked up by
// (vendor, item number).
type ServiceBaggageRuleset struct {
	Vendor  string                `yaml:"vendor"`
	ItemNo  int                   `yaml:"item_no"`
	Entries []ServiceBaggageEntry `yaml:"entries"`
}

// Rate is one bank selling rate row.
type Rate struct {
	From     money.CurrencyCode
	To       money.CurrencyCode
	Rate     decimal.Decimal
	Decimals uint8
}

// CustomerService looks up customer records by pseudo-city code.
// Absence of a record means the agency carries no restriction.
type CustomerService interface {
	Customer(pcc string) (*Customer, bool)
}

// ServiceBaggageService looks up service-baggage rulesets by vendor and
// item number.
type ServiceBaggageService interface {
	ServiceBaggage(vendor string, itemNo int) (*ServiceBaggageRuleset, bool)
}

// Store is a full reference-data backend.
type Store interface {
	CustomerService
	ServiceBaggageService

	// Rates returns all bank selling rates.
	Rates() []Rate
}

// BuildRateTable loads a store's rates into a money.RateTable with the
// given base currency.
func BuildRateTable(store Store, base money.CurrencyCode) *money.RateTable {
	table := money.NewRateTable(base)
	for _, r := range store.Rates() {
		table.AddRate(r.From, r.To, r.Rate)
		if r.Decimals > 0 {
			table.SetDecimals(r.To, r.Decimals)
		}
	}
	return table
}
