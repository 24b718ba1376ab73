package server

import (
	"fmt"

	"github.com/shopspring/decimal"

	"skyfare/meridian/pkg/itinerary"
	"skyfare/meridian/pkg/money"
	"skyfare/meridian/pkg/payment"
	"skyfare/meridian/pkg/rules"
)

// Rule type discriminators on the wire.
const (
	ruleTypeCustomerRestriction = "customer_restriction"
	ruleTypeTicketMinMaxValue   = "ticket_min_max_value"
	ruleTypeTicketMinMaxValueOC = "ticket_min_max_value_oc"
	ruleTypeServiceBaggage      = "service_baggage"
)

// EvaluateRequest is the body of POST /evaluate.
type EvaluateRequest struct {
	PaymentCurrency string         `json:"payment_currency"`
	Itineraries     []ItineraryDTO `json:"itineraries"`
	Taxes           []TaxDTO       `json:"taxes"`
}

// ItineraryDTO is one priced itinerary on the wire.
type ItineraryDTO struct {
	ID               int                  `json:"id"`
	GeoPath          []GeoDTO             `json:"geo_path"`
	FareUsages       []FareUsageDTO       `json:"fare_usages"`
	YqYrs            []YqYrDTO            `json:"yqyrs,omitempty"`
	PointOfSale      string               `json:"point_of_sale"`
	ChangeFeeAmount  string               `json:"change_fee_amount,omitempty"`
	OptionalServices []OptionalServiceDTO `json:"optional_services,omitempty"`
}

// GeoDTO is one tax point.
type GeoDTO struct {
	Loc    string `json:"loc"`
	Nation string `json:"nation"`
	Tag    string `json:"tag"`
}

// FareUsageDTO is one priced fare component.
type FareUsageDTO struct {
	Amount string `json:"amount"`
}

// YqYrDTO is one carrier-imposed surcharge with its geo coverage.
type YqYrDTO struct {
	Code        string `json:"code"`
	Type        string `json:"type"`
	Amount      string `json:"amount"`
	TaxIncluded bool   `json:"tax_included,omitempty"`
	GeoIDs      []int  `json:"geo_ids"`
}

// OptionalServiceDTO is one ancillary item.
type OptionalServiceDTO struct {
	Type    string `json:"type"`
	SubCode string `json:"sub_code"`
	Amount  string `json:"amount"`
}

// TaxDTO is one tax with its ordered rule list.
type TaxDTO struct {
	TaxName string    `json:"tax_name"`
	TaxCode string    `json:"tax_code"`
	TaxType string    `json:"tax_type"`
	Nation  string    `json:"nation"`
	SeqNo   int       `json:"seq_no"`
	Amount  string    `json:"amount"`
	Rules   []RuleDTO `json:"rules"`
}

// RuleDTO is one rule, discriminated by Type. Only the fields for the
// given type are read.
type RuleDTO struct {
	Type string `json:"type"`

	// customer_restriction
	Carrier string `json:"carrier,omitempty"`

	// ticket_min_max_value / ticket_min_max_value_oc
	Qualifier        string `json:"qualifier,omitempty"`
	Currency         string `json:"currency,omitempty"`
	Min              string `json:"min,omitempty"`
	Max              string `json:"max,omitempty"`
	CurrencyDecimals uint8  `json:"currency_decimals,omitempty"`

	// service_baggage
	Vendor string `json:"vendor,omitempty"`
	ItemNo int    `json:"item_no,omitempty"`
}

// EvaluateResponse is the body returned by POST /evaluate.
type EvaluateResponse struct {
	RequestID        string               `json:"request_id"`
	PaymentCurrency  string               `json:"payment_currency"`
	CurrencyDecimals uint8                `json:"currency_decimals"`
	Itineraries      []ItineraryResultDTO `json:"itineraries"`
}

// ItineraryResultDTO is one itinerary's evaluated records.
type ItineraryResultDTO struct {
	ID       int          `json:"id"`
	Payments []PaymentDTO `json:"payments"`
}

// PaymentDTO is one evaluated payment record. Failed records are
// carried with their message rather than dropped.
type PaymentDTO struct {
	TaxName          string                     `json:"tax_name"`
	TaxCode          string                     `json:"tax_code"`
	TaxPointBegin    int                        `json:"tax_point_begin"`
	TaxPointEnd      int                        `json:"tax_point_end"`
	Amount           string                     `json:"amount"`
	Status           string                     `json:"status"`
	FailMessage      string                     `json:"fail_message,omitempty"`
	FailedRule       string                     `json:"failed_rule,omitempty"`
	OptionalServices []OptionalServiceResultDTO `json:"optional_services,omitempty"`
}

// OptionalServiceResultDTO is one ancillary item's outcome.
type OptionalServiceResultDTO struct {
	SubCode     string `json:"sub_code"`
	Failed      bool   `json:"failed"`
	FailMessage string `json:"fail_message,omitempty"`
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

func parseAmount(field, s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: invalid amount %q", field, s)
	}
	return d, nil
}

// toItinerary converts a wire itinerary into the engine's model.
func (dto *ItineraryDTO) toItinerary() (*itinerary.Itinerary, error) {
	if len(dto.GeoPath) == 0 {
		return nil, fmt.Errorf("itinerary %d: geo_path must not be empty", dto.ID)
	}

	geos := make([]itinerary.Geo, len(dto.GeoPath))
	for i, g := range dto.GeoPath {
		tag := itinerary.TaxPointTag(g.Tag)
		switch tag {
		case itinerary.TagDeparture, itinerary.TagArrival:
		default:
			return nil, fmt.Errorf("itinerary %d: geo %d: unknown tag %q", dto.ID, i, g.Tag)
		}
		geos[i] = itinerary.Geo{Loc: g.Loc, Nation: g.Nation, Tag: tag}
	}

	usages := make([]itinerary.FareUsage, len(dto.FareUsages))
	for i, fu := range dto.FareUsages {
		amount, err := parseAmount(fmt.Sprintf("itinerary %d: fare_usages[%d].amount", dto.ID, i), fu.Amount)
		if err != nil {
			return nil, err
		}
		usages[i] = itinerary.FareUsage{Amount: amount}
	}

	var yqyrPath *itinerary.YqYrPath
	if len(dto.YqYrs) > 0 {
		yqyrPath = &itinerary.YqYrPath{
			YqYrs:    make([]itinerary.YqYr, len(dto.YqYrs)),
			Mappings: make([]itinerary.GeoPathMapping, len(dto.YqYrs)),
		}
		for i, y := range dto.YqYrs {
			amount, err := parseAmount(fmt.Sprintf("itinerary %d: yqyrs[%d].amount", dto.ID, i), y.Amount)
			if err != nil {
				return nil, err
			}
			yqyrPath.YqYrs[i] = itinerary.YqYr{Code: y.Code, Type: y.Type, Amount: amount, TaxIncluded: y.TaxIncluded}
			yqyrPath.Mappings[i] = itinerary.GeoPathMapping{GeoIDs: y.GeoIDs}
		}
	}

	changeFee, err := parseAmount(fmt.Sprintf("itinerary %d: change_fee_amount", dto.ID), dto.ChangeFeeAmount)
	if err != nil {
		return nil, err
	}

	services := make([]payment.OptionalService, len(dto.OptionalServices))
	for i, oc := range dto.OptionalServices {
		amount, err := parseAmount(fmt.Sprintf("itinerary %d: optional_services[%d].amount", dto.ID, i), oc.Amount)
		if err != nil {
			return nil, err
		}
		services[i] = payment.OptionalService{
			Type:    payment.OptionalServiceType(oc.Type),
			SubCode: oc.SubCode,
			Amount:  amount,
		}
	}

	return &itinerary.Itinerary{
		ID:               dto.ID,
		GeoPath:          &itinerary.GeoPath{Geos: geos},
		FarePath:         &itinerary.FarePath{FareUsages: usages},
		YqYrPath:         yqyrPath,
		PointOfSale:      dto.PointOfSale,
		ChangeFeeAmount:  changeFee,
		OptionalServices: services,
	}, nil
}

// toRule converts a wire rule into its concrete implementation.
func (dto *RuleDTO) toRule() (rules.Rule, error) {
	switch dto.Type {
	case ruleTypeCustomerRestriction:
		if dto.Carrier == "" {
			return nil, fmt.Errorf("%s: carrier is required", dto.Type)
		}
		return rules.NewCustomerRestrictionRule(dto.Carrier), nil

	case ruleTypeTicketMinMaxValue, ruleTypeTicketMinMaxValueOC:
		min, err := parseAmount(dto.Type+".min", dto.Min)
		if err != nil {
			return nil, err
		}
		max, err := parseAmount(dto.Type+".max", dto.Max)
		if err != nil {
			return nil, err
		}
		qualifier := rules.TktValQualifier(dto.Qualifier)
		currency := money.CurrencyCode(dto.Currency)
		if dto.Type == ruleTypeTicketMinMaxValueOC {
			return rules.NewTicketMinMaxValueOCRule(qualifier, currency, min, max, dto.CurrencyDecimals), nil
		}
		return rules.NewTicketMinMaxValueRule(qualifier, currency, min, max, dto.CurrencyDecimals), nil

	case ruleTypeServiceBaggage:
		if dto.Vendor == "" {
			return nil, fmt.Errorf("%s: vendor is required", dto.Type)
		}
		return rules.NewServiceBaggageRule(dto.Vendor, dto.ItemNo), nil

	default:
		return nil, fmt.Errorf("unknown rule type %q", dto.Type)
	}
}

// toOrderedTaxes converts the wire tax list into the engine's ordered form.
func toOrderedTaxes(dtos []TaxDTO) (*rules.OrderedTaxes, error) {
	taxes := make([]*rules.TaxData, 0, len(dtos))
	for _, t := range dtos {
		amount, err := parseAmount(fmt.Sprintf("tax %s: amount", t.TaxName), t.Amount)
		if err != nil {
			return nil, err
		}
		ruleList := make([]rules.Rule, 0, len(t.Rules))
		for _, r := range t.Rules {
			rule, err := r.toRule()
			if err != nil {
				return nil, fmt.Errorf("tax %s: %w", t.TaxName, err)
			}
			ruleList = append(ruleList, rule)
		}
		taxes = append(taxes, &rules.TaxData{
			TaxName: t.TaxName,
			TaxCode: t.TaxCode,
			TaxType: t.TaxType,
			Nation:  t.Nation,
			SeqNo:   t.SeqNo,
			Amount:  amount,
			Rules:   ruleList,
		})
	}
	return rules.NewOrderedTaxes(taxes), nil
}

// toResponse flattens the engine output into the wire shape.
func toResponse(requestID string, itins []*itinerary.Itinerary, out *payment.ItinsPayments) *EvaluateResponse {
	resp := &EvaluateResponse{
		RequestID:        requestID,
		PaymentCurrency:  string(out.PaymentCurrency),
		CurrencyDecimals: out.CurrencyDecimals,
		Itineraries:      make([]ItineraryResultDTO, len(out.ItinRawPayments)),
	}

	for i, raw := range out.ItinRawPayments {
		result := ItineraryResultDTO{Payments: []PaymentDTO{}}
		if i < len(itins) {
			result.ID = itins[i].ID
		}
		for _, pd := range raw.All() {
			dto := PaymentDTO{
				TaxName:       pd.TaxName,
				TaxCode:       pd.TaxCode,
				TaxPointBegin: pd.TaxPointBegin,
				TaxPointEnd:   pd.TaxPointEnd,
				Amount:        pd.TaxAmount.String(),
				Status:        pd.Status().String(),
				FailMessage:   pd.FailMessage(),
			}
			if pd.FailedRule() != nil {
				dto.FailedRule = pd.FailedRule().Name()
			}
			for _, oc := range pd.OptionalServices {
				dto.OptionalServices = append(dto.OptionalServices, OptionalServiceResultDTO{
					SubCode:     oc.SubCode,
					Failed:      oc.Failed(),
					FailMessage: oc.FailMessage(),
				})
			}
			result.Payments = append(result.Payments, dto)
		}
		resp.Itineraries[i] = result
	}
	return resp
}
