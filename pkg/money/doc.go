// Package money provides exact-decimal monetary amounts and currency
// conversion for tax rule evaluation.
//
// Amounts are backed by shopspring/decimal rather than floating point
// because they feed into regulatory totals. Conversion goes through a
// bank selling rate (BSR) table; a missing rate path is an explicit,
// recoverable error that rule applicators translate into record-level
// failure messages.
package money
