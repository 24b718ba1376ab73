// Package refdata provides the reference-data services consumed by rule
// evaluation: customer records keyed by agency PCC, service-baggage
// rulesets keyed by vendor and item number, and bank selling rates.
//
// Stores are loaded during request setup and read-only afterwards, so
// they may be shared by reference across all evaluation goroutines.
// Backends: in-memory, SQLite, and YAML files with optional hot reload.
package refdata
