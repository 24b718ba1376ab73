package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"skyfare/meridian/pkg/itinerary"
	"skyfare/meridian/pkg/money"
	"skyfare/meridian/pkg/payment"
	"skyfare/meridian/pkg/refdata"
	"skyfare/meridian/pkg/rules"
	"skyfare/meridian/pkg/telemetry/logging"
)

// NationAny marks a tax assessed in every jurisdiction.
const NationAny = "ZZ"

// Engine evaluates ordered tax rules against batches of itineraries.
// Reference services are read-only for the lifetime of a request and
// shared by reference across all workers.
type Engine struct {
	cfg            *Config
	currency       money.Service
	customers      refdata.CustomerService
	serviceBaggage refdata.ServiceBaggageService
	logger         *logging.Logger
	metrics        *Metrics
}

// New creates an Engine with the given configuration and reference
// services.
func New(cfg *Config, currency money.Service, customers refdata.CustomerService, serviceBaggage refdata.ServiceBaggageService) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{
		cfg:            cfg,
		currency:       currency,
		customers:      customers,
		serviceBaggage: serviceBaggage,
	}, nil
}

// WithLogger sets the engine logger.
func (e *Engine) WithLogger(l *logging.Logger) *Engine {
	e.logger = l
	return e
}

// WithMetrics sets the engine metrics.
func (e *Engine) WithMetrics(m *Metrics) *Engine {
	e.metrics = m
	return e
}

// Evaluate runs the ordered taxes against every itinerary in the batch
// and returns the per-itinerary record collections. Results are
// positionally aligned with itins.
//
// Batches larger than the configured threshold are fanned out across
// the worker pool. An interrupted parallel run is discarded in full and
// the batch re-runs sequentially; an error is returned only when the
// sequential path itself fails.
func (e *Engine) Evaluate(ctx context.Context, itins []*itinerary.Itinerary, ordered *rules.OrderedTaxes) (*payment.ItinsPayments, error) {
	if ordered == nil {
		return nil, ErrNoOrderedTaxes
	}
	if len(itins) == 0 {
		return &payment.ItinsPayments{}, nil
	}

	start := time.Now()
	mode := "sequential"
	results := make([]*payment.RawPayments, len(itins))

	if e.cfg.Workers > 1 && len(itins) >= e.cfg.SequentialThreshold {
		mode = "parallel"
		err := e.evaluateParallel(ctx, itins, ordered, results)
		var interrupted *InterruptedError
		switch {
		case err == nil:
		case errors.As(err, &interrupted):
			// Safe slow path: throw away everything from the parallel
			// run and redo the whole batch on this goroutine.
			mode = "sequential-fallback"
			e.metrics.RecordSequentialFallback()
			if e.logger != nil {
				e.logger.WarnContext(ctx, "parallel evaluation interrupted, re-running batch sequentially",
					"itinerary", interrupted.ItinID,
					"cause", fmt.Sprint(interrupted.Cause),
				)
			}
			results = make([]*payment.RawPayments, len(itins))
			if err := e.evaluateSequential(ctx, itins, ordered, results); err != nil {
				e.metrics.RecordEvaluation(mode, "error", len(itins), time.Since(start))
				return nil, err
			}
		default:
			e.metrics.RecordEvaluation(mode, "error", len(itins), time.Since(start))
			return nil, err
		}
	} else {
		if err := e.evaluateSequential(ctx, itins, ordered, results); err != nil {
			e.metrics.RecordEvaluation(mode, "error", len(itins), time.Since(start))
			return nil, err
		}
	}

	e.metrics.RecordEvaluation(mode, "ok", len(itins), time.Since(start))
	if e.logger != nil {
		e.logger.DebugContext(ctx, "batch evaluated",
			"mode", mode,
			"itineraries", len(itins),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}

	currency := itins[0].PaymentCurrency
	return &payment.ItinsPayments{
		ItinRawPayments:  results,
		PaymentCurrency:  currency,
		CurrencyDecimals: e.currency.CurrencyDecimals(currency),
	}, nil
}

// evaluateParallel fans the batch out across the worker pool. The first
// worker error cancels the group; an InterruptedError signals the
// caller to fall back to the sequential path.
func (e *Engine) evaluateParallel(ctx context.Context, itins []*itinerary.Itinerary, ordered *rules.OrderedTaxes, results []*payment.RawPayments) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.Workers)

	for i, itin := range itins {
		i, itin := i, itin
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			raw, err := e.runItinerary(itin, ordered)
			if err != nil {
				return err
			}
			results[i] = raw
			return nil
		})
	}
	return g.Wait()
}

// evaluateSequential evaluates the batch in submission order on the
// calling goroutine. Any failure here is a request-level error.
func (e *Engine) evaluateSequential(ctx context.Context, itins []*itinerary.Itinerary, ordered *rules.OrderedTaxes, results []*payment.RawPayments) error {
	for i, itin := range itins {
		if err := ctx.Err(); err != nil {
			return err
		}
		raw, err := e.runItinerary(itin, ordered)
		if err != nil {
			return err
		}
		results[i] = raw
	}
	return nil
}

// runItinerary evaluates one itinerary, converting a panic into an
// InterruptedError so a wedged worker cannot take the process down.
func (e *Engine) runItinerary(itin *itinerary.Itinerary, ordered *rules.OrderedTaxes) (raw *payment.RawPayments, err error) {
	defer func() {
		if r := recover(); r != nil {
			raw = nil
			err = &InterruptedError{ItinID: itin.ID, Cause: r}
		}
	}()
	return e.evaluateOne(itin, ordered), nil
}

// taxRecords pairs one ordered tax with the records created for it.
type taxRecords struct {
	tax     *rules.TaxData
	records []*payment.Detail
}

// evaluateOne creates the itinerary's payment records and applies every
// tax's rule sequence in the deterministic order. State is strictly
// itinerary-local: the returned collection and the itinerary detail are
// fresh per call.
func (e *Engine) evaluateOne(itin *itinerary.Itinerary, ordered *rules.OrderedTaxes) *payment.RawPayments {
	taxes := ordered.Taxes()
	raw := payment.NewRawPayments(len(taxes) * segmentCount(itin))
	detail := &itinerary.Detail{}

	perTax := make([]taxRecords, 0, len(taxes))
	for _, tax := range taxes {
		records := buildRecords(itin, tax)
		for _, pd := range records {
			raw.Append(pd)
		}
		perTax = append(perTax, taxRecords{tax: tax, records: records})
	}

	ictx := &rules.ItinContext{
		Itin:            itin,
		Detail:          detail,
		RawPayments:     raw,
		Currency:        e.currency,
		Customers:       e.customers,
		ServiceBaggage:  e.serviceBaggage,
		PaymentCurrency: itin.PaymentCurrency,
		YqYrTotal:       yqYrTotal(itin),
	}

	for _, tr := range perTax {
		for _, rule := range tr.tax.Rules {
			// A configuration failure suppresses every later rule for
			// this itinerary.
			if detail.IsFailedRule() {
				return raw
			}

			app, err := rule.CreateApplicator(ictx)
			if err != nil {
				detail.SetFailedRule(rule)
				for _, pd := range tr.records {
					pd.Fail(rule, fmt.Sprintf("RULE %s SETUP FAILED", rule.Name()))
				}
				e.metrics.RecordRuleFailure(rule.Name())
				return raw
			}

			runsOnFailed := false
			if af, ok := rule.(rules.AppliesToFailed); ok {
				runsOnFailed = af.AppliesToFailed()
			}

			for _, pd := range tr.records {
				if pd.Exempt() {
					continue
				}
				if pd.Failed() && !runsOnFailed {
					continue
				}
				if !app.Apply(pd) {
					e.metrics.RecordRuleFailure(rule.Name())
					if e.cfg.EnableTrace && e.logger != nil {
						e.logger.Debug("record failed",
							"itinerary", itin.ID,
							"tax", tr.tax.TaxName,
							"rule", rule.Name(),
							"message", pd.FailMessage(),
						)
					}
				}
			}
		}
	}
	return raw
}

// buildRecords creates one record per qualifying tax-point pair: every
// departure point whose nation the tax assesses, paired with the
// following arrival.
func buildRecords(itin *itinerary.Itinerary, tax *rules.TaxData) []*payment.Detail {
	path := itin.GeoPath
	if path == nil {
		return nil
	}
	var records []*payment.Detail
	for i, geo := range path.Geos {
		if geo.Tag != itinerary.TagDeparture || i+1 >= len(path.Geos) {
			continue
		}
		if tax.Nation != NationAny && tax.Nation != geo.Nation {
			continue
		}
		records = append(records, newRecord(itin, tax, i, i+1))
	}
	return records
}

// newRecord creates one payment record for a taxable segment. Optional
// services are cloned per record so their pass/fail state stays
// independent across records.
func newRecord(itin *itinerary.Itinerary, tax *rules.TaxData, begin, end int) *payment.Detail {
	var services []*payment.OptionalService
	if len(itin.OptionalServices) > 0 {
		services = make([]*payment.OptionalService, len(itin.OptionalServices))
		for i := range itin.OptionalServices {
			oc := itin.OptionalServices[i]
			services[i] = &oc
		}
	}
	return &payment.Detail{
		TaxPointBegin:    begin,
		TaxPointEnd:      end,
		TaxName:          tax.TaxName,
		TaxCode:          tax.TaxCode,
		TaxType:          tax.TaxType,
		TaxAmount:        tax.Amount,
		ChangeFeeAmount:  itin.ChangeFeeAmount,
		OptionalServices: services,
	}
}

// segmentCount returns the number of flights on the geo path, used to
// pre-size the record collection.
func segmentCount(itin *itinerary.Itinerary) int {
	if itin.GeoPath == nil {
		return 0
	}
	return itin.GeoPath.Len() / 2
}

// yqYrTotal accumulates the carrier-imposed surcharges counted toward
// the fare-with-fees ticket value. Surcharges already taxed inside the
// fare are excluded.
func yqYrTotal(itin *itinerary.Itinerary) decimal.Decimal {
	total := decimal.Zero
	if itin.YqYrPath == nil {
		return total
	}
	for _, y := range itin.YqYrPath.YqYrs {
		if y.TaxIncluded {
			continue
		}
		total = total.Add(y.Amount)
	}
	return total
}
