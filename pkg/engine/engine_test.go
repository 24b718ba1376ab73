package engine

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"

	"skyfare/meridian/pkg/itinerary"
	"skyfare/meridian/pkg/money"
	"skyfare/meridian/pkg/payment"
	"skyfare/meridian/pkg/refdata"
	"skyfare/meridian/pkg/rules"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func testItin(id int, fare string) *itinerary.Itinerary {
	return &itinerary.Itinerary{
		ID: id,
		GeoPath: &itinerary.GeoPath{Geos: []itinerary.Geo{
			{Loc: "KRK", Nation: "PL", Tag: itinerary.TagDeparture},
			{Loc: "FRA", Nation: "DE", Tag: itinerary.TagArrival},
			{Loc: "FRA", Nation: "DE", Tag: itinerary.TagDeparture},
			{Loc: "JFK", Nation: "US", Tag: itinerary.TagArrival},
		}},
		FarePath:        &itinerary.FarePath{FareUsages: []itinerary.FareUsage{{Amount: dec(fare)}}},
		PointOfSale:     "KRK1",
		PaymentCurrency: "USD",
	}
}

func newTestEngine(t *testing.T, workers int) *Engine {
	t.Helper()

	store := refdata.NewMemoryStore()
	store.PutCustomer(&refdata.Customer{PCC: "KRK1", ExemptDuJJ: true})
	table := money.NewRateTable("USD")

	cfg := DefaultConfig().WithWorkers(workers)
	eng, err := New(cfg, table, store, store)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return eng
}

func testTaxes() *rules.OrderedTaxes {
	return rules.NewOrderedTaxes([]*rules.TaxData{
		{
			TaxName: "PL DU", TaxCode: "DU", TaxType: "001", Nation: "PL", SeqNo: 100,
			Amount: dec("12.50"),
			Rules: []rules.Rule{
				rules.NewCustomerRestrictionRule("JJ"),
				rules.NewTicketMinMaxValueRule(rules.QualifierBaseFare, "USD", dec("50"), dec("1000"), 2),
			},
		},
		{
			TaxName: "XX WW", TaxCode: "WW", TaxType: "001", Nation: NationAny, SeqNo: 100,
			Amount: dec("3"),
			Rules: []rules.Rule{
				rules.NewTicketMinMaxValueRule(rules.QualifierBaseFare, "USD", dec("100"), decimal.Zero, 2),
			},
		},
	})
}

func TestEvaluate_BuildsRecordsPerQualifyingTaxPoint(t *testing.T) {
	eng := newTestEngine(t, 1)
	out, err := eng.Evaluate(context.Background(), []*itinerary.Itinerary{testItin(1, "200")}, testTaxes())
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if len(out.ItinRawPayments) != 1 {
		t.Fatalf("ItinRawPayments = %d collections", len(out.ItinRawPayments))
	}

	raw := out.ItinRawPayments[0]
	// PL DU assesses only the PL departure; XX WW assesses both.
	if got := len(raw.ForTax("PL DU")); got != 1 {
		t.Errorf("PL DU records = %d, want 1", got)
	}
	if got := len(raw.ForTax("XX WW")); got != 2 {
		t.Errorf("XX WW records = %d, want 2", got)
	}
	for _, pd := range raw.ForTax("PL DU") {
		if pd.TaxPointBegin != 0 || pd.TaxPointEnd != 1 {
			t.Errorf("PL DU record range = [%d,%d]", pd.TaxPointBegin, pd.TaxPointEnd)
		}
		if !pd.TaxAmount.Equal(dec("12.50")) {
			t.Errorf("TaxAmount = %s", pd.TaxAmount)
		}
		if pd.Failed() {
			t.Errorf("record failed: %q", pd.FailMessage())
		}
	}

	if out.PaymentCurrency != "USD" || out.CurrencyDecimals != 2 {
		t.Errorf("currency = %s/%d", out.PaymentCurrency, out.CurrencyDecimals)
	}
}

func TestEvaluate_RecordFailuresSurviveInOutput(t *testing.T) {
	eng := newTestEngine(t, 1)
	// 2000 breaks the [50, 1000] bound; the record stays in the output
	// with its message rather than being dropped.
	out, err := eng.Evaluate(context.Background(), []*itinerary.Itinerary{testItin(1, "2000")}, testTaxes())
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	records := out.ItinRawPayments[0].ForTax("PL DU")
	if len(records) != 1 {
		t.Fatalf("PL DU records = %d", len(records))
	}
	if !records[0].Failed() {
		t.Fatal("record not failed")
	}
	if records[0].FailMessage() == "" {
		t.Error("failed record carries no message")
	}
	if records[0].FailedRule() == nil {
		t.Error("failed record carries no rule reference")
	}
}

func comparePayments(t *testing.T, a, b *payment.ItinsPayments) {
	t.Helper()
	if len(a.ItinRawPayments) != len(b.ItinRawPayments) {
		t.Fatalf("collection counts differ: %d vs %d", len(a.ItinRawPayments), len(b.ItinRawPayments))
	}
	for i := range a.ItinRawPayments {
		ra, rb := a.ItinRawPayments[i].All(), b.ItinRawPayments[i].All()
		if len(ra) != len(rb) {
			t.Fatalf("itinerary %d: record counts differ: %d vs %d", i, len(ra), len(rb))
		}
		for j := range ra {
			if ra[j].TaxName != rb[j].TaxName ||
				ra[j].TaxPointBegin != rb[j].TaxPointBegin ||
				ra[j].TaxPointEnd != rb[j].TaxPointEnd ||
				ra[j].Failed() != rb[j].Failed() ||
				ra[j].FailMessage() != rb[j].FailMessage() {
				t.Errorf("itinerary %d record %d differs: %+v vs %+v", i, j, ra[j], rb[j])
			}
		}
	}
}

// Concurrent evaluation of 100 independent itineraries is
// indistinguishable, per itinerary, from sequential evaluation.
func TestEvaluate_ConcurrentMatchesSequential(t *testing.T) {
	itins := make([]*itinerary.Itinerary, 100)
	for i := range itins {
		// Fares straddle both bounds so passes and failures are mixed.
		itins[i] = testItin(i, fmt.Sprintf("%d", 20+i*15))
	}

	sequential, err := newTestEngine(t, 1).Evaluate(context.Background(), itins, testTaxes())
	if err != nil {
		t.Fatalf("sequential Evaluate: %v", err)
	}
	parallel, err := newTestEngine(t, 8).Evaluate(context.Background(), itins, testTaxes())
	if err != nil {
		t.Fatalf("parallel Evaluate: %v", err)
	}

	comparePayments(t, parallel, sequential)
}

func TestEvaluate_EmptyBatch(t *testing.T) {
	eng := newTestEngine(t, 4)
	out, err := eng.Evaluate(context.Background(), nil, testTaxes())
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if len(out.ItinRawPayments) != 0 {
		t.Errorf("ItinRawPayments = %d", len(out.ItinRawPayments))
	}
}

func TestEvaluate_NilOrderedTaxes(t *testing.T) {
	eng := newTestEngine(t, 1)
	if _, err := eng.Evaluate(context.Background(), []*itinerary.Itinerary{testItin(1, "200")}, nil); !errors.Is(err, ErrNoOrderedTaxes) {
		t.Errorf("Evaluate error = %v, want ErrNoOrderedTaxes", err)
	}
}

func TestEvaluate_CanceledContext(t *testing.T) {
	eng := newTestEngine(t, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := eng.Evaluate(ctx, []*itinerary.Itinerary{testItin(1, "200")}, testTaxes()); !errors.Is(err, context.Canceled) {
		t.Errorf("Evaluate error = %v, want context.Canceled", err)
	}
}

// interruptingRule panics on its first Apply and behaves normally after
// that, modelling a one-off interruption of a parallel worker.
type interruptingRule struct {
	fired atomic.Bool
}

func (r *interruptingRule) Name() string { return "INTERRUPTING" }

func (r *interruptingRule) CreateApplicator(_ *rules.ItinContext) (rules.Applicator, error) {
	return &interruptingApplicator{rule: r}, nil
}

type interruptingApplicator struct {
	rule *interruptingRule
}

func (a *interruptingApplicator) Apply(_ *payment.Detail) bool {
	if a.rule.fired.CompareAndSwap(false, true) {
		panic("interrupted")
	}
	return true
}

func interruptedTaxes(rule rules.Rule) *rules.OrderedTaxes {
	return rules.NewOrderedTaxes([]*rules.TaxData{
		{
			TaxName: "PL DU", TaxCode: "DU", TaxType: "001", Nation: "PL", SeqNo: 100,
			Amount: dec("12.50"),
			Rules:  []rules.Rule{rule},
		},
	})
}

// A mid-batch interruption discards the parallel run and the whole
// batch re-runs sequentially; the caller sees complete results.
func TestEvaluate_SequentialFallbackOnInterruption(t *testing.T) {
	itins := make([]*itinerary.Itinerary, 20)
	for i := range itins {
		itins[i] = testItin(i, "200")
	}

	eng := newTestEngine(t, 8)
	out, err := eng.Evaluate(context.Background(), itins, interruptedTaxes(&interruptingRule{}))
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if len(out.ItinRawPayments) != len(itins) {
		t.Fatalf("ItinRawPayments = %d, want %d", len(out.ItinRawPayments), len(itins))
	}
	for i, raw := range out.ItinRawPayments {
		if raw == nil {
			t.Fatalf("itinerary %d has no result after fallback", i)
		}
		if raw.Len() != 1 {
			t.Errorf("itinerary %d records = %d, want 1", i, raw.Len())
		}
	}
}

// alwaysPanicRule interrupts every evaluation attempt.
type alwaysPanicRule struct{}

func (alwaysPanicRule) Name() string { return "ALWAYS PANIC" }

func (alwaysPanicRule) CreateApplicator(_ *rules.ItinContext) (rules.Applicator, error) {
	return alwaysPanicApplicator{}, nil
}

type alwaysPanicApplicator struct{}

func (alwaysPanicApplicator) Apply(_ *payment.Detail) bool { panic("wedged") }

// When the sequential retry is interrupted too, the failure propagates
// as a request-level error instead of partial results.
func TestEvaluate_SequentialFailurePropagates(t *testing.T) {
	itins := []*itinerary.Itinerary{testItin(1, "200"), testItin(2, "200")}

	eng := newTestEngine(t, 4)
	_, err := eng.Evaluate(context.Background(), itins, interruptedTaxes(alwaysPanicRule{}))
	var interrupted *InterruptedError
	if !errors.As(err, &interrupted) {
		t.Fatalf("Evaluate error = %v, want InterruptedError", err)
	}
}

// failingSetupRule cannot build an applicator; the configuration
// failure is scoped to the whole itinerary and later rules never run.
type failingSetupRule struct{}

func (failingSetupRule) Name() string { return "FAILING SETUP" }

func (failingSetupRule) CreateApplicator(_ *rules.ItinContext) (rules.Applicator, error) {
	return nil, &rules.ConfigurationError{Rule: "FAILING SETUP", Reason: "reference data missing"}
}

func TestEvaluate_ConfigurationFailureSuppressesLaterRules(t *testing.T) {
	ordered := rules.NewOrderedTaxes([]*rules.TaxData{
		{
			TaxName: "PL DU", TaxCode: "DU", TaxType: "001", Nation: "PL", SeqNo: 100,
			Amount: dec("12.50"),
			Rules: []rules.Rule{
				failingSetupRule{},
				// Would fail the record on its own; must never run.
				rules.NewTicketMinMaxValueRule(rules.QualifierBaseFare, "USD", dec("5000"), dec("9000"), 2),
			},
		},
	})

	eng := newTestEngine(t, 1)
	out, err := eng.Evaluate(context.Background(), []*itinerary.Itinerary{testItin(1, "200")}, ordered)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}

	records := out.ItinRawPayments[0].ForTax("PL DU")
	if len(records) != 1 {
		t.Fatalf("records = %d", len(records))
	}
	if !records[0].Failed() {
		t.Fatal("record not failed by setup failure")
	}
	if got := records[0].FailedRule().Name(); got != "FAILING SETUP" {
		t.Errorf("FailedRule() = %q, attribution moved to a later rule", got)
	}
}

func TestEvaluate_OptionalServicesClonedPerRecord(t *testing.T) {
	itin := testItin(1, "200")
	itin.OptionalServices = []payment.OptionalService{
		{Type: payment.OptionalServiceBaggageCharge, SubCode: "0DF", Amount: dec("30")},
	}

	ordered := rules.NewOrderedTaxes([]*rules.TaxData{
		{
			TaxName: "XX WW", TaxCode: "WW", TaxType: "001", Nation: NationAny, SeqNo: 100,
			Amount: dec("3"),
			Rules: []rules.Rule{
				// 30 is below the minimum; every record's item fails.
				rules.NewTicketMinMaxValueOCRule(rules.QualifierBaseFare, "USD", dec("50"), dec("1000"), 2),
			},
		},
	})

	eng := newTestEngine(t, 1)
	out, err := eng.Evaluate(context.Background(), []*itinerary.Itinerary{itin}, ordered)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}

	records := out.ItinRawPayments[0].All()
	if len(records) != 2 {
		t.Fatalf("records = %d, want 2", len(records))
	}
	for i, pd := range records {
		if len(pd.OptionalServices) != 1 || !pd.OptionalServices[0].Failed() {
			t.Errorf("record %d: optional service state %+v", i, pd.OptionalServices)
		}
	}
	// Cloning means the source itinerary's items stay untouched.
	if itin.OptionalServices[0].Failed() {
		t.Error("itinerary-level optional service mutated")
	}
}
