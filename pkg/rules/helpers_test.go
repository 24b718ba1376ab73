package rules

import (
	"testing"

	"github.com/shopspring/decimal"

	"skyfare/meridian/pkg/itinerary"
	"skyfare/meridian/pkg/money"
	"skyfare/meridian/pkg/payment"
	"skyfare/meridian/pkg/refdata"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// testContextOption customizes the fixture context.
type testContextOption func(*ItinContext, *refdata.MemoryStore, *money.RateTable)

func withCustomer(c *refdata.Customer) testContextOption {
	return func(_ *ItinContext, store *refdata.MemoryStore, _ *money.RateTable) {
		store.PutCustomer(c)
	}
}

func withServiceBaggage(rs *refdata.ServiceBaggageRuleset) testContextOption {
	return func(_ *ItinContext, store *refdata.MemoryStore, _ *money.RateTable) {
		store.PutServiceBaggage(rs)
	}
}

func withRate(from, to money.CurrencyCode, rate string) testContextOption {
	return func(_ *ItinContext, _ *refdata.MemoryStore, table *money.RateTable) {
		table.AddRate(from, to, dec(rate))
	}
}

func withBaseFare(amount string) testContextOption {
	return func(ctx *ItinContext, _ *refdata.MemoryStore, _ *money.RateTable) {
		ctx.Itin.FarePath = &itinerary.FarePath{
			FareUsages: []itinerary.FareUsage{{Amount: dec(amount)}},
		}
	}
}

func withYqYrTotal(amount string) testContextOption {
	return func(ctx *ItinContext, _ *refdata.MemoryStore, _ *money.RateTable) {
		ctx.YqYrTotal = dec(amount)
	}
}

// newTestContext builds an itinerary context with a USD payment
// currency, an in-memory reference store and an empty rate table. Rules
// under test read, never mutate, these fixtures.
func newTestContext(t *testing.T, opts ...testContextOption) *ItinContext {
	t.Helper()

	store := refdata.NewMemoryStore()
	table := money.NewRateTable("USD")

	itin := &itinerary.Itinerary{
		ID: 1,
		GeoPath: &itinerary.GeoPath{Geos: []itinerary.Geo{
			{Loc: "KRK", Nation: "PL", Tag: itinerary.TagDeparture},
			{Loc: "FRA", Nation: "DE", Tag: itinerary.TagArrival},
			{Loc: "FRA", Nation: "DE", Tag: itinerary.TagDeparture},
			{Loc: "JFK", Nation: "US", Tag: itinerary.TagArrival},
		}},
		FarePath:        &itinerary.FarePath{FareUsages: []itinerary.FareUsage{{Amount: dec("200")}}},
		PointOfSale:     "KRK1",
		PaymentCurrency: "USD",
	}

	ctx := &ItinContext{
		Itin:            itin,
		Detail:          &itinerary.Detail{},
		RawPayments:     payment.NewRawPayments(4),
		Currency:        table,
		Customers:       store,
		ServiceBaggage:  store,
		PaymentCurrency: "USD",
		YqYrTotal:       decimal.Zero,
	}

	for _, opt := range opts {
		opt(ctx, store, table)
	}
	return ctx
}

func mustApplicator(t *testing.T, r Rule, ctx *ItinContext) Applicator {
	t.Helper()
	app, err := r.CreateApplicator(ctx)
	if err != nil {
		t.Fatalf("CreateApplicator(%s): %v", r.Name(), err)
	}
	return app
}

// assertIdempotent applies the applicator twice and requires identical
// boolean results and messages both times.
func assertIdempotent(t *testing.T, app Applicator, pd *payment.Detail, want bool) {
	t.Helper()

	got := app.Apply(pd)
	if got != want {
		t.Fatalf("Apply() = %v, want %v (message %q)", got, want, pd.FailMessage())
	}
	msg := pd.FailMessage()

	if again := app.Apply(pd); again != got {
		t.Errorf("second Apply() = %v, want %v", again, got)
	}
	if pd.FailMessage() != msg {
		t.Errorf("second Apply() message = %q, want %q", pd.FailMessage(), msg)
	}
}
