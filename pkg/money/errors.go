package money

import (
	"errors"
	"fmt"
)

// ErrUnknownCurrency indicates a currency with no configured decimals or rate.
var ErrUnknownCurrency = errors.New("unknown currency")

// ConversionError indicates that no conversion rate path exists between
// two currencies.
type ConversionError struct {
	From CurrencyCode
	To   CurrencyCode
}

// Error returns the error message.
func (e *ConversionError) Error() string {
	return fmt.Sprintf("no conversion rate from %s to %s", e.From, e.To)
}
