// Package storage provides SQLite-based persistence for crawled catalog
// items and recorded price snapshots.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/steamscan/market-crawler/pkg/market"
)

// Store wraps the crawler's SQLite database. One crawl host writes at a
// time; the connection pool is pinned to a single connection accordingly.
type Store struct {
	db     *sql.DB
	dbPath string
}

// Options configures Store behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates the items database at dbPath.
func Open(dbPath string, opts Options) (*Store, error) {
	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if dir := filepath.Dir(dbPath); dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	}

	// modernc.org/sqlite connection string: mode=rw prevents creating new
	// files, mode=rwc allows creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	s := &Store{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := s.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.dbPath
}

// createTables creates the database schema if it doesn't exist.
func (s *Store) createTables() error {
	schema := `
	-- Items are catalog entries discovered by the crawl, deduplicated by
	-- their market hash name.
	CREATE TABLE IF NOT EXISTS items (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		hash_name TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		type TEXT,
		classid TEXT,
		instanceid TEXT,
		icon_url TEXT,
		tradable INTEGER DEFAULT 0,
		first_seen DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_items_hash_name ON items(hash_name);

	-- Prices are point-in-time snapshots for an item.
	CREATE TABLE IF NOT EXISTS prices (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		item_id INTEGER NOT NULL REFERENCES items(id),
		lowest_price TEXT,
		median_price TEXT,
		volume TEXT,
		recorded_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_prices_item ON prices(item_id);
	CREATE INDEX IF NOT EXISTS idx_prices_recorded ON prices(recorded_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// ExistingHashNames returns the set of hash names already stored, used to
// filter a crawl down to new discoveries before inserting.
func (s *Store) ExistingHashNames(ctx context.Context) (map[string]struct{}, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT hash_name FROM items")
	if err != nil {
		return nil, fmt.Errorf("query hash names: %w", err)
	}
	defer rows.Close()

	existing := make(map[string]struct{})
	for rows.Next() {
		var hashName string
		if err := rows.Scan(&hashName); err != nil {
			return nil, fmt.Errorf("scan hash name: %w", err)
		}
		existing[hashName] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate hash names: %w", err)
	}

	return existing, nil
}

// InsertListings stores crawled listings, skipping hash names already
// present, and reports how many rows were actually inserted.
func (s *Store) InsertListings(ctx context.Context, listings []market.Listing) (int, error) {
	if len(listings) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO items (hash_name, name, type, classid, instanceid, icon_url, tradable)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, l := range listings {
		res, err := stmt.ExecContext(ctx,
			l.HashName,
			l.Name,
			l.AssetDescription.Type,
			l.AssetDescription.ClassID,
			l.AssetDescription.InstanceID,
			l.AssetDescription.IconURL,
			l.AssetDescription.Tradable,
		)
		if err != nil {
			return 0, fmt.Errorf("insert item %q: %w", l.HashName, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("rows affected for %q: %w", l.HashName, err)
		}
		inserted += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit insert: %w", err)
	}

	return inserted, nil
}

// InsertPrice records a price snapshot for the item with the given hash
// name. The item must already exist.
func (s *Store) InsertPrice(ctx context.Context, hashName string, po *market.PriceOverview) error {
	var itemID int64
	err := s.db.QueryRowContext(ctx, "SELECT id FROM items WHERE hash_name = ?", hashName).Scan(&itemID)
	if err == sql.ErrNoRows {
		return fmt.Errorf("no item with hash name %q", hashName)
	}
	if err != nil {
		return fmt.Errorf("look up item %q: %w", hashName, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO prices (item_id, lowest_price, median_price, volume)
		VALUES (?, ?, ?, ?)`,
		itemID, po.LowestPrice, po.MedianPrice, po.Volume)
	if err != nil {
		return fmt.Errorf("insert price for %q: %w", hashName, err)
	}

	return nil
}

// CountItems returns the number of stored items.
func (s *Store) CountItems(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM items").Scan(&n); err != nil {
		return 0, fmt.Errorf("count items: %w", err)
	}
	return n, nil
}
