package refdata

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite" // SQLite driver

	"skyfare/meridian/pkg/money"
)

// SQLiteStore is a Store backed by a SQLite database. It suits
// single-instance deployments where reference data must survive
// restarts; lookups run against prepared statements and are safe for
// concurrent use.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string

	customerStmt *sql.Stmt
	sbStmt       *sql.Stmt
	ratesStmt    *sql.Stmt
}

// SQLiteStoreConfig configures the SQLite store.
type SQLiteStoreConfig struct {
	// DBPath is the path to the SQLite database file.
	DBPath string

	// BusyTimeout is how long to wait for locks before failing.
	// Default: 5 seconds.
	BusyTimeout time.Duration
}

// NewSQLiteStore opens (and if necessary initializes) a SQLite-backed
// reference-data store.
func NewSQLiteStore(cfg SQLiteStoreConfig) (*SQLiteStore, error) {
	if cfg.DBPath == "" {
		return nil, fmt.Errorf("db path cannot be empty")
	}
	if cfg.BusyTimeout == 0 {
		cfg.BusyTimeout = 5 * time.Second
	}

	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=%d&_synchronous=NORMAL",
		cfg.DBPath, int(cfg.BusyTimeout.Milliseconds()))

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	store := &SQLiteStore{db: db, dbPath: cfg.DBPath}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	if err := store.prepareStatements(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to prepare statements: %w", err)
	}

	return store, nil
}

// Ping verifies database connectivity. It backs the readiness probe.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// initSchema creates the reference-data tables if they don't exist.
func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS customers (
		pcc TEXT PRIMARY KEY,
		exempt_du_g3 INTEGER NOT NULL DEFAULT 0,
		exempt_du_t4 INTEGER NOT NULL DEFAULT 0,
		exempt_du_jj INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS service_baggage_entries (
		vendor TEXT NOT NULL,
		item_no INTEGER NOT NULL,
		seq INTEGER NOT NULL,
		appl_tag TEXT NOT NULL,
		tax_code TEXT NOT NULL,
		tax_type_subcode TEXT NOT NULL DEFAULT '',
		optional_service_tag TEXT NOT NULL DEFAULT '',
		attr_group TEXT NOT NULL DEFAULT '',
		attr_sub_group TEXT NOT NULL DEFAULT '',
		fee_owner_carrier TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (vendor, item_no, seq)
	);

	CREATE TABLE IF NOT EXISTS rates (
		from_currency TEXT NOT NULL,
		to_currency TEXT NOT NULL,
		rate TEXT NOT NULL,
		decimals INTEGER NOT NULL DEFAULT 2,
		PRIMARY KEY (from_currency, to_currency)
	);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return err
	}
	return nil
}

// prepareStatements pre-compiles the lookup statements.
func (s *SQLiteStore) prepareStatements() error {
	var err error

	s.customerStmt, err = s.db.Prepare(
		`SELECT pcc, exempt_du_g3, exempt_du_t4, exempt_du_jj
		 FROM customers WHERE pcc = ?`)
	if err != nil {
		return err
	}

	s.sbStmt, err = s.db.Prepare(
		`SELECT appl_tag, tax_code, tax_type_subcode, optional_service_tag,
		        attr_group, attr_sub_group, fee_owner_carrier
		 FROM service_baggage_entries
		 WHERE vendor = ? AND item_no = ?
		 ORDER BY seq`)
	if err != nil {
		return err
	}

	s.ratesStmt, err = s.db.Prepare(
		`SELECT from_currency, to_currency, rate, decimals FROM rates`)
	if err != nil {
		return err
	}

	return nil
}

// Customer looks up a customer record by PCC.
func (s *SQLiteStore) Customer(pcc string) (*Customer, bool) {
	var c Customer
	var g3, t4, jj int
	err := s.customerStmt.QueryRow(pcc).Scan(&c.PCC, &g3, &t4, &jj)
	if err != nil {
		return nil, false
	}
	c.ExemptDuG3 = g3 != 0
	c.ExemptDuT4 = t4 != 0
	c.ExemptDuJJ = jj != 0
	return &c, true
}

// ServiceBaggage looks up a ruleset by vendor and item number.
func (s *SQLiteStore) ServiceBaggage(vendor string, itemNo int) (*ServiceBaggageRuleset, bool) {
	rows, err := s.sbStmt.Query(vendor, itemNo)
	if err != nil {
		return nil, false
	}
	defer rows.Close()

	rs := &ServiceBaggageRuleset{Vendor: vendor, ItemNo: itemNo}
	for rows.Next() {
		var e ServiceBaggageEntry
		var applTag string
		if err := rows.Scan(&applTag, &e.TaxCode, &e.TaxTypeSubcode,
			&e.OptionalServiceTag, &e.Group, &e.SubGroup, &e.FeeOwnerCarrier); err != nil {
			return nil, false
		}
		e.ApplTag = ApplTag(applTag)
		rs.Entries = append(rs.Entries, e)
	}
	if rows.Err() != nil || len(rs.Entries) == 0 {
		return nil, false
	}
	return rs, true
}

// Rates returns all bank selling rates.
func (s *SQLiteStore) Rates() []Rate {
	rows, err := s.ratesStmt.Query()
	if err != nil {
		return nil
	}
	defer rows.Close()

	var out []Rate
	for rows.Next() {
		var r Rate
		var from, to, rate string
		var decimals int
		if err := rows.Scan(&from, &to, &rate, &decimals); err != nil {
			return nil
		}
		d, err := decimal.NewFromString(rate)
		if err != nil {
			continue
		}
		r.From = money.CurrencyCode(from)
		r.To = money.CurrencyCode(to)
		r.Rate = d
		r.Decimals = uint8(decimals)
		out = append(out, r)
	}
	return out
}

// SaveCustomer inserts or replaces a customer record.
func (s *SQLiteStore) SaveCustomer(c *Customer) error {
	if c == nil || c.PCC == "" {
		return fmt.Errorf("customer record requires a PCC")
	}
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO customers (pcc, exempt_du_g3, exempt_du_t4, exempt_du_jj)
		 VALUES (?, ?, ?, ?)`,
		c.PCC, boolToInt(c.ExemptDuG3), boolToInt(c.ExemptDuT4), boolToInt(c.ExemptDuJJ))
	if err != nil {
		return fmt.Errorf("failed to save customer %q: %w", c.PCC, err)
	}
	return nil
}

// SaveServiceBaggage replaces a full ruleset in one transaction.
func (s *SQLiteStore) SaveServiceBaggage(rs *ServiceBaggageRuleset) error {
	if rs == nil || rs.Vendor == "" || rs.ItemNo == 0 {
		return fmt.Errorf("service-baggage ruleset requires vendor and item number")
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`DELETE FROM service_baggage_entries WHERE vendor = ? AND item_no = ?`,
		rs.Vendor, rs.ItemNo); err != nil {
		return fmt.Errorf("failed to clear ruleset: %w", err)
	}

	for i, e := range rs.Entries {
		if _, err := tx.Exec(
			`INSERT INTO service_baggage_entries
			 (vendor, item_no, seq, appl_tag, tax_code, tax_type_subcode,
			  optional_service_tag, attr_group, attr_sub_group, fee_owner_carrier)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			rs.Vendor, rs.ItemNo, i, string(e.ApplTag), e.TaxCode, e.TaxTypeSubcode,
			e.OptionalServiceTag, e.Group, e.SubGroup, e.FeeOwnerCarrier); err != nil {
			return fmt.Errorf("failed to insert entry %d: %w", i, err)
		}
	}

	return tx.Commit()
}

// SaveRate inserts or replaces a bank selling rate.
func (s *SQLiteStore) SaveRate(r Rate) error {
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO rates (from_currency, to_currency, rate, decimals)
		 VALUES (?, ?, ?, ?)`,
		string(r.From), string(r.To), r.Rate.String(), int(r.Decimals))
	if err != nil {
		return fmt.Errorf("failed to save rate %s-%s: %w", r.From, r.To, err)
	}
	return nil
}

// Close closes the prepared statements and the database.
func (s *SQLiteStore) Close() error {
	for _, stmt := range []*sql.Stmt{s.customerStmt, s.sbStmt, s.ratesStmt} {
		if stmt != nil {
			stmt.Close()
		}
	}
	return s.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
