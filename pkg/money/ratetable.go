package money

import (
	"sync"

	"github.com/shopspring/decimal"
)

// ratePair identifies a directed conversion between two currencies.
type ratePair struct {
	from CurrencyCode
	to   CurrencyCode
}

// RateTable is a Service implementation backed by a bank selling rate map.
// Rates are loaded once during request setup; after that the table is
// read-only and may be shared across all evaluation goroutines.
//
// Conversion uses a direct rate when one exists, the inverse of the
// opposite direction otherwise, and finally a two-hop path through the
// base currency when both legs are known.
type RateTable struct {
	mu       sync.RWMutex
	base     CurrencyCode
	rates    map[ratePair]decimal.Decimal
	decimals map[CurrencyCode]uint8
}

// NewRateTable creates an empty rate table with the given base currency.
func NewRateTable(base CurrencyCode) *RateTable {
	return &RateTable{
		base:     base,
		rates:    make(map[ratePair]decimal.Decimal),
		decimals: make(map[CurrencyCode]uint8),
	}
}

// AddRate registers the bank selling rate from one currency to another.
// Zero and negative rates are ignored.
func (t *RateTable) AddRate(from, to CurrencyCode, rate decimal.Decimal) {
	if !rate.IsPositive() {
		return
	}
	t.mu.Lock()
	t.rates[ratePair{from, to}] = rate
	t.mu.Unlock()
}

// SetDecimals registers the display decimals for a currency.
func (t *RateTable) SetDecimals(currency CurrencyCode, decimals uint8) {
	t.mu.Lock()
	t.decimals[currency] = decimals
	t.mu.Unlock()
}

// ConvertTo converts m into the target currency.
func (t *RateTable) ConvertTo(target CurrencyCode, m Money) (decimal.Decimal, error) {
	if m.Currency == target {
		return m.Amount, nil
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	if rate, ok := t.lookup(m.Currency, target); ok {
		return m.Amount.Mul(rate), nil
	}

	// Two-hop conversion through the base currency.
	toBase, ok := t.lookup(m.Currency, t.base)
	if !ok {
		return decimal.Zero, &ConversionError{From: m.Currency, To: target}
	}
	fromBase, ok := t.lookup(t.base, target)
	if !ok {
		return decimal.Zero, &ConversionError{From: m.Currency, To: target}
	}
	return m.Amount.Mul(toBase).Mul(fromBase), nil
}

// lookup returns the direct rate or the inverse of the reverse rate.
// Callers must hold at least a read lock.
func (t *RateTable) lookup(from, to CurrencyCode) (decimal.Decimal, bool) {
	if from == to {
		return decimal.NewFromInt(1), true
	}
	if rate, ok := t.rates[ratePair{from, to}]; ok {
		return rate, true
	}
	if rate, ok := t.rates[ratePair{to, from}]; ok && rate.IsPositive() {
		return decimal.NewFromInt(1).Div(rate), true
	}
	return decimal.Zero, false
}

// CurrencyDecimals returns the display decimals for a currency,
// defaulting to 2 when the currency is not configured.
func (t *RateTable) CurrencyDecimals(currency CurrencyCode) uint8 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if d, ok := t.decimals[currency]; ok {
		return d
	}
	return 2
}

// BSR returns the bank selling rate between two currencies, or zero when
// no rate is known.
func (t *RateTable) BSR(from, to CurrencyCode) decimal.Decimal {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if rate, ok := t.lookup(from, to); ok {
		return rate
	}
	return decimal.Zero
}
