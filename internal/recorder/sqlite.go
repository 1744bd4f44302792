package recorder

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"PadelTracker/internal/calculator"
	"PadelTracker/internal/model"
)

// SQLiteRecorder persists historical data to a SQLite database.
type SQLiteRecorder struct {
	db     *sql.DB
	mu     sync.Mutex
	logger *zap.Logger
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string, logger *zap.Logger) (*SQLiteRecorder, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, logger: logger}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	logger.Info("sqlite recorder opened", zap.String("path", dbPath))
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS price_snapshots (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp     INTEGER NOT NULL,
			version       INTEGER NOT NULL,
			product_name  TEXT,
			vendor_id     TEXT NOT NULL,
			vendor_name   TEXT,
			current_price INTEGER,
			low_price     INTEGER,
			high_price    INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_ts ON price_snapshots(timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_vendor ON price_snapshots(vendor_id, timestamp)`,

		`CREATE TABLE IF NOT EXISTS analyses (
			id             TEXT PRIMARY KEY,
			timestamp      INTEGER NOT NULL,
			version        INTEGER NOT NULL,
			model          TEXT,
			outcome        TEXT,
			recommendation TEXT,
			summary        TEXT,
			best_deal      TEXT,
			error          TEXT,
			duration_ms    INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_analyses_ts ON analyses(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordSnapshot stores one row per vendor with its current price and range.
func (r *SQLiteRecorder) RecordSnapshot(evt *SnapshotEvent) error {
	if evt == nil || evt.Snapshot == nil {
		return errors.New("record snapshot: no snapshot")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().Unix()
	snap := evt.Snapshot
	for _, c := range snap.Competitors {
		high, low, err := calculator.PriceRange(c.History, 0)
		if err != nil {
			high, low = c.CurrentPrice, c.CurrentPrice
		}
		if _, err := tx.Exec(`INSERT INTO price_snapshots
			(timestamp, version, product_name, vendor_id, vendor_name, current_price, low_price, high_price)
			VALUES (?,?,?,?,?,?,?,?)`,
			now, evt.Version, snap.ProductName, c.ID, c.Name, c.CurrentPrice, low, high,
		); err != nil {
			return fmt.Errorf("insert vendor %s: %w", c.ID, err)
		}
	}
	return tx.Commit()
}

func (r *SQLiteRecorder) RecordAnalysis(evt *AnalysisEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ts := evt.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	_, err := r.db.Exec(`INSERT INTO analyses
		(id, timestamp, version, model, outcome, recommendation, summary, best_deal, error, duration_ms)
		VALUES (?,?,?,?,?,?,?,?,?,?)`,
		evt.ID, ts.Unix(), evt.Version, evt.Model, evt.Outcome,
		string(evt.Result.Recommendation), evt.Result.Summary, evt.Result.BestDeal,
		evt.Error, evt.Duration.Milliseconds(),
	)
	return err
}

// RecentAnalyses returns up to limit analyses, newest first.
func (r *SQLiteRecorder) RecentAnalyses(limit int) ([]AnalysisEvent, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := r.db.Query(`SELECT id, timestamp, version, model, outcome, recommendation, summary, best_deal, error, duration_ms
		FROM analyses ORDER BY timestamp DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query analyses: %w", err)
	}
	defer rows.Close()

	var events []AnalysisEvent
	for rows.Next() {
		var (
			evt       AnalysisEvent
			ts, durMS int64
			rec       string
		)
		if err := rows.Scan(&evt.ID, &ts, &evt.Version, &evt.Model, &evt.Outcome,
			&rec, &evt.Result.Summary, &evt.Result.BestDeal, &evt.Error, &durMS); err != nil {
			return nil, fmt.Errorf("scan analysis: %w", err)
		}
		evt.Timestamp = time.Unix(ts, 0)
		evt.Duration = time.Duration(durMS) * time.Millisecond
		evt.Result.Recommendation = model.Recommendation(rec)
		events = append(events, evt)
	}
	return events, rows.Err()
}

// VendorPrices returns the recorded current prices of one vendor, oldest first.
func (r *SQLiteRecorder) VendorPrices(vendorID string) ([]int, error) {
	rows, err := r.db.Query(`SELECT current_price FROM price_snapshots
		WHERE vendor_id = ? ORDER BY timestamp ASC, id ASC`, vendorID)
	if err != nil {
		return nil, fmt.Errorf("query vendor prices: %w", err)
	}
	defer rows.Close()

	var prices []int
	for rows.Next() {
		var p int
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("scan vendor price: %w", err)
		}
		prices = append(prices, p)
	}
	return prices, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	r.logger.Info("closing sqlite recorder")
	return r.db.Close()
}
