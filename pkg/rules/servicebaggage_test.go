package rules

import (
	"strings"
	"testing"

	"skyfare/meridian/pkg/itinerary"
	"skyfare/meridian/pkg/payment"
	"skyfare/meridian/pkg/refdata"
)

func positiveEntry(taxCode string) refdata.ServiceBaggageEntry {
	return refdata.ServiceBaggageEntry{ApplTag: refdata.ApplTagPositive, TaxCode: taxCode}
}

func negativeEntry(taxCode string) refdata.ServiceBaggageEntry {
	return refdata.ServiceBaggageEntry{ApplTag: refdata.ApplTagNegative, TaxCode: taxCode}
}

func sbRuleset(vendor string, itemNo int, entries ...refdata.ServiceBaggageEntry) *refdata.ServiceBaggageRuleset {
	return &refdata.ServiceBaggageRuleset{Vendor: vendor, ItemNo: itemNo, Entries: entries}
}

// Scenario: a positive entry for tax AA. With a sibling AA payment on a
// covering range the record passes; without one it fails.
func TestServiceBaggage_PositiveEntry(t *testing.T) {
	rule := NewServiceBaggageRule("ATP", 100)

	current := &payment.Detail{TaxPointBegin: 0, TaxPointEnd: 1, TaxName: "PL DU", TaxCode: "DU"}

	t.Run("match present", func(t *testing.T) {
		ctx := newTestContext(t, withServiceBaggage(sbRuleset("ATP", 100, positiveEntry("AA"))))
		sibling := &payment.Detail{TaxPointBegin: 0, TaxPointEnd: 3, TaxName: "US AA", TaxCode: "AA"}
		ctx.RawPayments.Append(sibling)
		ctx.RawPayments.Append(current)

		app := mustApplicator(t, rule, ctx)
		assertIdempotent(t, app, current, true)
		if sibling.Failed() {
			t.Error("sibling record mutated by matching query")
		}
	})

	t.Run("no match", func(t *testing.T) {
		ctx := newTestContext(t, withServiceBaggage(sbRuleset("ATP", 100, positiveEntry("AA"))))
		ctx.RawPayments.Append(current)

		pd := &payment.Detail{TaxPointBegin: 0, TaxPointEnd: 1, TaxName: "PL DU", TaxCode: "DU"}
		app := mustApplicator(t, rule, ctx)
		assertIdempotent(t, app, pd, false)
		if !strings.Contains(pd.FailMessage(), "AA") {
			t.Errorf("FailMessage() = %q", pd.FailMessage())
		}
	})
}

// A negative entry inverts the predicate: the record fails exactly when
// a matching payment exists.
func TestServiceBaggage_NegativeEntry(t *testing.T) {
	rule := NewServiceBaggageRule("ATP", 200)

	t.Run("excluded payment present", func(t *testing.T) {
		ctx := newTestContext(t, withServiceBaggage(sbRuleset("ATP", 200, negativeEntry("YC"))))
		ctx.RawPayments.Append(&payment.Detail{TaxPointBegin: 0, TaxPointEnd: 3, TaxName: "US YC", TaxCode: "YC"})

		pd := &payment.Detail{TaxPointBegin: 0, TaxPointEnd: 1, TaxName: "PL DU", TaxCode: "DU"}
		ctx.RawPayments.Append(pd)

		app := mustApplicator(t, rule, ctx)
		if app.Apply(pd) {
			t.Fatal("Apply() = true with excluded payment present")
		}
		if !strings.Contains(pd.FailMessage(), "YC") {
			t.Errorf("FailMessage() = %q", pd.FailMessage())
		}
	})

	t.Run("no excluded payment", func(t *testing.T) {
		ctx := newTestContext(t, withServiceBaggage(sbRuleset("ATP", 200, negativeEntry("YC"))))
		pd := &payment.Detail{TaxPointBegin: 0, TaxPointEnd: 1, TaxName: "PL DU", TaxCode: "DU"}
		ctx.RawPayments.Append(pd)

		app := mustApplicator(t, rule, ctx)
		if !app.Apply(pd) {
			t.Errorf("Apply() = false, message %q", pd.FailMessage())
		}
	})
}

// A missing ruleset is a configuration failure scoped to the whole
// itinerary, not just this record.
func TestServiceBaggage_MissingRulesetFailsItinerary(t *testing.T) {
	rule := NewServiceBaggageRule("ATP", 999)
	ctx := newTestContext(t)
	app := mustApplicator(t, rule, ctx)

	pd := &payment.Detail{TaxCode: "DU"}
	if app.Apply(pd) {
		t.Fatal("Apply() = true with no ruleset configured")
	}
	if pd.FailMessage() != "SERVICE BAGGAGE ITEM 999/ATP MISSING" {
		t.Errorf("FailMessage() = %q", pd.FailMessage())
	}
	if !ctx.Detail.IsFailedRule() {
		t.Error("itinerary detail not failed")
	}
}

// The current record never satisfies its own positive entry: neither by
// identity nor through a same-tax sibling delimiting the same segment.
func TestServiceBaggage_SelfExclusion(t *testing.T) {
	rule := NewServiceBaggageRule("ATP", 300)
	ctx := newTestContext(t, withServiceBaggage(sbRuleset("ATP", 300, positiveEntry("DU"))))

	pd := &payment.Detail{TaxPointBegin: 0, TaxPointEnd: 1, TaxName: "PL DU", TaxCode: "DU"}
	twin := &payment.Detail{TaxPointBegin: 1, TaxPointEnd: 0, TaxName: "PL DU", TaxCode: "DU"}
	ctx.RawPayments.Append(pd)
	ctx.RawPayments.Append(twin)

	app := mustApplicator(t, rule, ctx)
	if app.Apply(pd) {
		t.Error("record matched itself or its same-segment twin")
	}
}

// A same-tax sibling on a different segment is a legitimate match.
func TestServiceBaggage_SameTaxDifferentSegmentMatches(t *testing.T) {
	rule := NewServiceBaggageRule("ATP", 300)
	ctx := newTestContext(t, withServiceBaggage(sbRuleset("ATP", 300, positiveEntry("DU"))))

	pd := &payment.Detail{TaxPointBegin: 2, TaxPointEnd: 3, TaxName: "PL DU", TaxCode: "DU"}
	sibling := &payment.Detail{TaxPointBegin: 0, TaxPointEnd: 3, TaxName: "PL DU", TaxCode: "DU"}
	ctx.RawPayments.Append(sibling)
	ctx.RawPayments.Append(pd)

	app := mustApplicator(t, rule, ctx)
	if !app.Apply(pd) {
		t.Errorf("Apply() = false, message %q", pd.FailMessage())
	}
}

// Failed and exempt siblings are invisible to the matching query.
func TestServiceBaggage_IgnoresFailedAndExemptSiblings(t *testing.T) {
	rule := NewServiceBaggageRule("ATP", 100)
	ctx := newTestContext(t, withServiceBaggage(sbRuleset("ATP", 100, positiveEntry("AA"))))

	failed := &payment.Detail{TaxPointBegin: 0, TaxPointEnd: 3, TaxName: "US AA", TaxCode: "AA"}
	failed.Fail(NewCustomerRestrictionRule("JJ"), "RESTRICTED")
	exempt := &payment.Detail{TaxPointBegin: 0, TaxPointEnd: 3, TaxName: "US AA2", TaxCode: "AA"}
	exempt.SetExempt()
	ctx.RawPayments.Append(failed)
	ctx.RawPayments.Append(exempt)

	pd := &payment.Detail{TaxPointBegin: 0, TaxPointEnd: 1, TaxName: "PL DU", TaxCode: "DU"}
	ctx.RawPayments.Append(pd)

	app := mustApplicator(t, rule, ctx)
	if app.Apply(pd) {
		t.Error("Apply() = true on failed/exempt siblings only")
	}
}

// The covering check is inclusive and normalizes arrival-first ranges on
// both sides.
func TestServiceBaggage_RangeCoverage(t *testing.T) {
	rule := NewServiceBaggageRule("ATP", 100)

	tests := []struct {
		name             string
		sibBegin, sibEnd int
		curBegin, curEnd int
		want             bool
	}{
		{"exact", 0, 1, 0, 1, true},
		{"wider", 0, 3, 1, 2, true},
		{"sibling reversed", 3, 0, 1, 2, true},
		{"current reversed", 0, 3, 2, 1, true},
		{"partial overlap", 0, 1, 1, 2, false},
		{"disjoint", 0, 1, 2, 3, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := newTestContext(t, withServiceBaggage(sbRuleset("ATP", 100, positiveEntry("AA"))))
			ctx.RawPayments.Append(&payment.Detail{
				TaxPointBegin: tt.sibBegin, TaxPointEnd: tt.sibEnd,
				TaxName: "US AA", TaxCode: "AA",
			})
			pd := &payment.Detail{TaxPointBegin: tt.curBegin, TaxPointEnd: tt.curEnd, TaxName: "PL DU", TaxCode: "DU"}
			ctx.RawPayments.Append(pd)

			app := mustApplicator(t, rule, ctx)
			if got := app.Apply(pd); got != tt.want {
				t.Errorf("Apply() = %v, want %v", got, tt.want)
			}
		})
	}
}

// Carrier-imposed surcharges participate in matching through their
// geo-path mapping.
func TestServiceBaggage_YqYrMatch(t *testing.T) {
	rule := NewServiceBaggageRule("ATP", 400)
	ctx := newTestContext(t, withServiceBaggage(sbRuleset("ATP", 400, positiveEntry("YQ"))))

	ctx.Itin.YqYrPath = &itinerary.YqYrPath{
		YqYrs: []itinerary.YqYr{
			{Code: "YQ", Type: "F", Amount: dec("30")},
		},
		Mappings: []itinerary.GeoPathMapping{
			{GeoIDs: []int{0, 1, 2, 3}},
		},
	}

	pd := &payment.Detail{TaxPointBegin: 0, TaxPointEnd: 1, TaxName: "PL DU", TaxCode: "DU"}
	ctx.RawPayments.Append(pd)

	app := mustApplicator(t, rule, ctx)
	if !app.Apply(pd) {
		t.Errorf("Apply() = false, message %q", pd.FailMessage())
	}
}

func TestServiceBaggage_YqYrSubcodeFilter(t *testing.T) {
	rule := NewServiceBaggageRule("ATP", 401)
	entry := refdata.ServiceBaggageEntry{ApplTag: refdata.ApplTagPositive, TaxCode: "YQ", TaxTypeSubcode: "I"}
	ctx := newTestContext(t, withServiceBaggage(sbRuleset("ATP", 401, entry)))

	ctx.Itin.YqYrPath = &itinerary.YqYrPath{
		YqYrs:    []itinerary.YqYr{{Code: "YQ", Type: "F", Amount: dec("30")}},
		Mappings: []itinerary.GeoPathMapping{{GeoIDs: []int{0, 1, 2, 3}}},
	}

	pd := &payment.Detail{TaxPointBegin: 0, TaxPointEnd: 1, TaxName: "PL DU", TaxCode: "DU"}
	ctx.RawPayments.Append(pd)

	app := mustApplicator(t, rule, ctx)
	if app.Apply(pd) {
		t.Error("Apply() = true although the surcharge type does not match the entry subcode")
	}
}

// The rule keeps running against records other rules already failed.
func TestServiceBaggage_AppliesToFailed(t *testing.T) {
	rule := NewServiceBaggageRule("ATP", 100)
	var marker interface{ AppliesToFailed() bool } = rule
	if !marker.AppliesToFailed() {
		t.Error("AppliesToFailed() = false")
	}
}

// Entries evaluate in order; the first violated entry names the failure.
func TestServiceBaggage_EntryOrder(t *testing.T) {
	rule := NewServiceBaggageRule("ATP", 500)
	ctx := newTestContext(t, withServiceBaggage(sbRuleset("ATP", 500,
		positiveEntry("AA"),
		positiveEntry("BB"),
	)))

	pd := &payment.Detail{TaxPointBegin: 0, TaxPointEnd: 1, TaxName: "PL DU", TaxCode: "DU"}
	ctx.RawPayments.Append(pd)

	app := mustApplicator(t, rule, ctx)
	if app.Apply(pd) {
		t.Fatal("Apply() = true with no matches at all")
	}
	if !strings.Contains(pd.FailMessage(), "AA") {
		t.Errorf("FailMessage() = %q, want first entry's tax code", pd.FailMessage())
	}
}
