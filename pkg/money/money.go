package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// CurrencyCode is a three-letter ISO 4217 currency code (e.g. "USD").
type CurrencyCode string

// Validate checks that the code is three uppercase ASCII letters.
func (c CurrencyCode) Validate() error {
	if len(c) != 3 {
		return fmt.Errorf("currency code %q: must be 3 letters", string(c))
	}
	for _, r := range c {
		if r < 'A' || r > 'Z' {
			return fmt.Errorf("currency code %q: must be uppercase letters", string(c))
		}
	}
	return nil
}

// Money is an immutable amount in a specific currency.
type Money struct {
	// Amount is the exact decimal amount.
	Amount decimal.Decimal

	// Currency is the currency the amount is denominated in.
	Currency CurrencyCode
}

// New creates a Money value from an amount and a currency.
func New(amount decimal.Decimal, currency CurrencyCode) Money {
	return Money{Amount: amount, Currency: currency}
}

// FromString creates a Money value from a decimal string.
func FromString(amount string, currency CurrencyCode) (Money, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount %q: %w", amount, err)
	}
	return Money{Amount: d, Currency: currency}, nil
}

// IsZero reports whether the amount is zero.
func (m Money) IsZero() bool {
	return m.Amount.IsZero()
}

// String formats the money as "<amount> <currency>".
func (m Money) String() string {
	return m.Amount.String() + " " + string(m.Currency)
}

// Service converts amounts between currencies using available conversion
// rates. Implementations are read-only for the lifetime of a request and
// safe for concurrent use.
type Service interface {
	// ConvertTo converts m into the target currency. It fails with a
	// *ConversionError when no rate path exists between the currencies.
	// Converting an amount to its own currency is always the identity.
	ConvertTo(target CurrencyCode, m Money) (decimal.Decimal, error)

	// CurrencyDecimals returns the number of decimal places used to
	// display amounts in the given currency.
	CurrencyDecimals(currency CurrencyCode) uint8

	// BSR returns the bank selling rate between two currencies, or zero
	// when no rate is known. It exists for diagnostics only.
	BSR(from, to CurrencyCode) decimal.Decimal
}
