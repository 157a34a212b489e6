// Package persistence provides the SQLite run ledger: one row per simulated
// month, every notification and retired product, run metadata and full
// state snapshots for resuming.
package persistence

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/solostack/internal/engine"
	"github.com/talgya/solostack/internal/game"
)

// DB wraps a SQLite connection for the run ledger.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// One writer; SQLite serializes anyway.
	conn.SetMaxOpenConns(1)

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS months (
		month INTEGER PRIMARY KEY,
		money REAL NOT NULL,
		income REAL NOT NULL,
		fanbase INTEGER NOT NULL,
		market_share REAL NOT NULL,
		trend_id TEXT NOT NULL,
		live_products INTEGER NOT NULL,
		rivals INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS notifications (
		id TEXT PRIMARY KEY,
		month INTEGER NOT NULL,
		type TEXT NOT NULL,
		message TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS archive (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		software_type_id TEXT NOT NULL,
		rating REAL NOT NULL,
		lifetime_revenue REAL NOT NULL,
		months_live INTEGER NOT NULL,
		archived_at INTEGER NOT NULL,
		reason TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS snapshots (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		month INTEGER NOT NULL,
		state_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS run_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_notifications_month ON notifications(month);
	CREATE INDEX IF NOT EXISTS idx_archive_type ON archive(software_type_id);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// MonthRow is one recorded month.
type MonthRow struct {
	Month        int     `db:"month" json:"month"`
	Money        float64 `db:"money" json:"money"`
	Income       float64 `db:"income" json:"income"`
	Fanbase      int     `db:"fanbase" json:"fanbase"`
	MarketShare  float64 `db:"market_share" json:"market_share"`
	TrendID      string  `db:"trend_id" json:"trend_id"`
	LiveProducts int     `db:"live_products" json:"live_products"`
	Rivals       int     `db:"rivals" json:"rivals"`
}

// RecordMonth writes a month report with its notifications and retirements.
// Re-recording a month replaces it.
func (db *DB) RecordMonth(rep game.MonthReport) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.NamedExec(`INSERT OR REPLACE INTO months
		(month, money, income, fanbase, market_share, trend_id, live_products, rivals)
		VALUES (:month, :money, :income, :fanbase, :market_share, :trend_id, :live_products, :rivals)`,
		MonthRow{
			Month:        rep.Month,
			Money:        rep.Money,
			Income:       rep.Income,
			Fanbase:      rep.Fanbase,
			MarketShare:  rep.MarketShare,
			TrendID:      rep.TrendID,
			LiveProducts: rep.LiveProducts,
			Rivals:       rep.Rivals,
		})
	if err != nil {
		return fmt.Errorf("insert month %d: %w", rep.Month, err)
	}

	if err := insertNotifications(tx, rep.Notifications); err != nil {
		return err
	}
	for _, a := range rep.Archived {
		if err := insertArchived(tx, a); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// SaveNotifications appends notifications, ignoring ids already stored.
func (db *DB) SaveNotifications(ns []engine.Notification) error {
	if len(ns) == 0 {
		return nil
	}
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := insertNotifications(tx, ns); err != nil {
		return err
	}
	return tx.Commit()
}

func insertNotifications(tx *sqlx.Tx, ns []engine.Notification) error {
	for _, n := range ns {
		_, err := tx.Exec(
			"INSERT OR IGNORE INTO notifications (id, month, type, message) VALUES (?, ?, ?, ?)",
			n.ID, n.Month, n.Type, n.Message,
		)
		if err != nil {
			return fmt.Errorf("insert notification %s: %w", n.ID, err)
		}
	}
	return nil
}

// SaveArchived records a retired product.
func (db *DB) SaveArchived(a engine.ArchivedProduct) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := insertArchived(tx, a); err != nil {
		return err
	}
	return tx.Commit()
}

func insertArchived(tx *sqlx.Tx, a engine.ArchivedProduct) error {
	_, err := tx.Exec(`INSERT OR REPLACE INTO archive
		(id, name, software_type_id, rating, lifetime_revenue, months_live, archived_at, reason)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Name, a.SoftwareTypeID, a.Rating, a.LifetimeRevenue, a.MonthsLive, a.ArchivedAt, a.Reason,
	)
	if err != nil {
		return fmt.Errorf("insert archived %s: %w", a.ID, err)
	}
	return nil
}

// ArchiveRow is a retired product as stored.
type ArchiveRow struct {
	ID              string  `db:"id" json:"id"`
	Name            string  `db:"name" json:"name"`
	SoftwareTypeID  string  `db:"software_type_id" json:"software_type_id"`
	Rating          float64 `db:"rating" json:"rating"`
	LifetimeRevenue float64 `db:"lifetime_revenue" json:"lifetime_revenue"`
	MonthsLive      int     `db:"months_live" json:"months_live"`
	ArchivedAt      int     `db:"archived_at" json:"archived_at"`
	Reason          string  `db:"reason" json:"reason"`
}

// Archived returns the retired products, most recent first.
func (db *DB) Archived(limit int) ([]ArchiveRow, error) {
	var rows []ArchiveRow
	err := db.conn.Select(&rows,
		"SELECT * FROM archive ORDER BY archived_at DESC, id LIMIT ?",
		limit,
	)
	return rows, err
}

// Months returns the most recent N months, oldest first.
func (db *DB) Months(limit int) ([]MonthRow, error) {
	var rows []MonthRow
	err := db.conn.Select(&rows,
		"SELECT * FROM (SELECT * FROM months ORDER BY month DESC LIMIT ?) ORDER BY month",
		limit,
	)
	return rows, err
}

// RecentNotifications returns the most recent N notifications.
func (db *DB) RecentNotifications(limit int) ([]engine.Notification, error) {
	var ns []engine.Notification
	err := db.conn.Select(&ns,
		"SELECT id, type, message, month FROM notifications ORDER BY month DESC, rowid DESC LIMIT ?",
		limit,
	)
	return ns, err
}

// SaveMeta stores a key-value pair in run metadata.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO run_meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM run_meta WHERE key = ?", key)
	return value, err
}

// SaveSnapshot stores the full run state.
func (db *DB) SaveSnapshot(snap game.Snapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if _, err := db.conn.Exec(
		"INSERT INTO snapshots (month, state_json) VALUES (?, ?)",
		snap.State.Month, string(raw),
	); err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}
	if err := db.SaveMeta("last_month", fmt.Sprintf("%d", snap.State.Month)); err != nil {
		return fmt.Errorf("save meta: %w", err)
	}
	slog.Info("snapshot saved", "month", snap.State.Month, "products", len(snap.State.Products))
	return nil
}

// LatestSnapshot loads the newest snapshot. ok is false when none exists.
func (db *DB) LatestSnapshot() (snap game.Snapshot, ok bool, err error) {
	var raw string
	err = db.conn.Get(&raw, "SELECT state_json FROM snapshots ORDER BY id DESC LIMIT 1")
	if errors.Is(err, sql.ErrNoRows) {
		return snap, false, nil
	}
	if err != nil {
		return snap, false, err
	}
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return snap, false, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap, true, nil
}
