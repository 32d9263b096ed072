package testutil

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite" // Test Package
)

// SetupTestDB creates an in-memory SQLite database for testing.
// The database is automatically cleaned up when the test completes.
//
// Example usage:
//
//	func TestSomething(t *testing.T) {
//	    db := testutil.SetupTestDB(t)
//	    // db is ready to use with schema created
//	}
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	// In-memory database (destroyed when connection closes)
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	// Every pool connection to :memory: opens its own database, so the pool
	// must be pinned to one connection or concurrent tests see empty schemas.
	db.SetMaxOpenConns(1)

	// Test connection
	if err := db.Ping(); err != nil {
		t.Fatalf("Failed to ping test database: %v", err)
	}

	// Configure SQLite for testing
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = MEMORY", // Faster for tests
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			t.Fatalf("Failed to set pragma: %v", err)
		}
	}

	// Create schema
	if err := createTestSchema(db); err != nil {
		t.Fatalf("Failed to create test schema: %v", err)
	}

	// Cleanup when test ends
	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// createTestSchema creates all database tables for testing.
// Schema is synchronized with the production migrations.
func createTestSchema(db *sql.DB) error {
	schema := `
		-- Position table: one row per instrument held by the fund.
		CREATE TABLE position (
			ticker VARCHAR(20) NOT NULL PRIMARY KEY,
			asset_name VARCHAR(100),
			asset_type VARCHAR(20) NOT NULL,
			quantity FLOAT NOT NULL DEFAULT 0,
			avg_cost FLOAT NOT NULL DEFAULT 0,
			market_price FLOAT NOT NULL DEFAULT 0,
			net_value FLOAT NOT NULL DEFAULT 0,
			unrealized_return FLOAT NOT NULL DEFAULT 0,
			price_date DATE NOT NULL
		);

		-- Asset trade journal (append-only).
		CREATE TABLE asset_trade (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			trade_date DATE NOT NULL,
			ticker VARCHAR(20) NOT NULL,
			side VARCHAR(4) NOT NULL,
			quantity FLOAT NOT NULL,
			price FLOAT NOT NULL,
			cash_flow FLOAT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);

		-- Daily valuation record, one row per valuation date.
		CREATE TABLE valuation (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			nav_date DATE NOT NULL UNIQUE,
			gross_value FLOAT NOT NULL,
			total_cost FLOAT NOT NULL DEFAULT 0,
			net_value FLOAT,
			total_units FLOAT,
			nav_per_unit FLOAT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);

		-- Cost entries, unique per (date, type) so accrual is idempotent.
		CREATE TABLE cost_entry (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			cost_date DATE NOT NULL,
			cost_type VARCHAR(20) NOT NULL,
			amount FLOAT NOT NULL,
			rate FLOAT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			CONSTRAINT unique_cost_entry UNIQUE (cost_date, cost_type)
		);

		-- Investor capital accounts.
		CREATE TABLE investor (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			name VARCHAR(100) NOT NULL,
			email VARCHAR(255),
			units FLOAT NOT NULL DEFAULT 0,
			capital FLOAT NOT NULL DEFAULT 0,
			status VARCHAR(10) NOT NULL DEFAULT 'active',
			open_date DATE NOT NULL
		);

		-- Fund-share trade journal (append-only audit record).
		CREATE TABLE fundshare_trade (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			trade_date DATE NOT NULL,
			investor_id VARCHAR(36) NOT NULL,
			side VARCHAR(4) NOT NULL,
			units FLOAT NOT NULL,
			price FLOAT NOT NULL,
			fee FLOAT NOT NULL,
			cash_flow FLOAT NOT NULL,
			unit_balance FLOAT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY(investor_id) REFERENCES investor(id)
		);

		-- Subscribe/redeem requests awaiting admin approval.
		CREATE TABLE fundshare_request (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			investor_id VARCHAR(36) NOT NULL,
			side VARCHAR(4) NOT NULL,
			amount FLOAT,
			units FLOAT,
			price FLOAT NOT NULL,
			fee FLOAT NOT NULL,
			status VARCHAR(10) NOT NULL DEFAULT 'PENDING',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			processed_at DATETIME,
			FOREIGN KEY(investor_id) REFERENCES investor(id)
		);

		-- Closing price history, upserted per (ticker, date).
		CREATE TABLE price_history (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			ticker VARCHAR(20) NOT NULL,
			close_price FLOAT NOT NULL,
			price_date DATE NOT NULL,
			source VARCHAR(50) NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			CONSTRAINT unique_price_history UNIQUE (ticker, price_date)
		);

		-- Category rollup, fully replaced on every aggregation run.
		CREATE TABLE snapshot (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			category VARCHAR(20) NOT NULL,
			invested_value FLOAT NOT NULL,
			market_value FLOAT NOT NULL,
			profit FLOAT NOT NULL,
			return_rate FLOAT NOT NULL,
			weight FLOAT NOT NULL,
			snapshot_time DATETIME NOT NULL
		);
	`

	_, err := db.Exec(schema)
	return err
}
