package recorder

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists historical data to a SQLite database.
type SQLiteRecorder struct {
	db  *sql.DB
	mu  sync.Mutex
	log zerolog.Logger
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string, log zerolog.Logger) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so dashboards can read while the bot writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, log: log.With().Str("component", "recorder").Logger()}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	r.log.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS evaluations (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp   INTEGER NOT NULL,
			symbol      TEXT NOT NULL,
			mode        TEXT,
			outcome     TEXT,
			identity    TEXT,
			close       REAL,
			rsi         REAL,
			bb_upper    REAL,
			bb_mid      REAL,
			bb_lower    REAL,
			long_close  REAL,
			error       TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_evaluations_ts ON evaluations(symbol, timestamp)`,

		`CREATE TABLE IF NOT EXISTS notifications (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp    INTEGER NOT NULL,
			symbol       TEXT NOT NULL,
			kind         TEXT,
			identity     TEXT,
			positive_pct REAL,
			negative_pct REAL,
			neutral_pct  REAL,
			delivered    INTEGER,
			error        TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_notifications_ts ON notifications(symbol, timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func unixOrNow(t time.Time) int64 {
	if t.IsZero() {
		return time.Now().Unix()
	}
	return t.Unix()
}

// nullable maps NaN indicator values to SQL NULL.
func nullable(v float64) any {
	if v != v {
		return nil
	}
	return v
}

func (r *SQLiteRecorder) RecordEvaluation(rec *EvaluationRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO evaluations
		(timestamp, symbol, mode, outcome, identity, close, rsi, bb_upper, bb_mid, bb_lower, long_close, error)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`,
		unixOrNow(rec.Time), rec.Symbol, rec.Mode, rec.Outcome, rec.Identity,
		nullable(rec.Close), nullable(rec.RSI), nullable(rec.BBUpper), nullable(rec.BBMid), nullable(rec.BBLower),
		nullable(rec.LongClose), rec.Error,
	)
	return err
}

func (r *SQLiteRecorder) RecordNotification(rec *NotificationRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO notifications
		(timestamp, symbol, kind, identity, positive_pct, negative_pct, neutral_pct, delivered, error)
		VALUES (?,?,?,?,?,?,?,?,?)`,
		unixOrNow(rec.Time), rec.Symbol, rec.Kind, rec.Identity,
		rec.PositivePct, rec.NegativePct, rec.NeutralPct, rec.Delivered, rec.Error,
	)
	return err
}

// CountEvaluations returns the number of evaluation rows recorded for symbol.
func (r *SQLiteRecorder) CountEvaluations(symbol string) (int, error) {
	var n int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM evaluations WHERE symbol = ?`, symbol).Scan(&n)
	return n, err
}

func (r *SQLiteRecorder) Close() error {
	r.log.Info().Msg("closing sqlite recorder")
	return r.db.Close()
}
