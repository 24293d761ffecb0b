package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Alias1177/fxsignal/models"
	"github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ErrNotFound is returned when no signal has the requested ID
var ErrNotFound = errors.New("database: signal not found")

// DB represents a database connection
type DB struct {
	*sql.DB
	logger zerolog.Logger
}

// ConnectionParams holds PostgreSQL connection parameters
type ConnectionParams struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// ConnString renders the lib/pq key/value connection string
func (p ConnectionParams) ConnString() string {
	sslMode := p.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.DBName, sslMode,
	)
}

// New creates a new database connection
func New(ctx context.Context, params ConnectionParams) (*DB, error) {
	db, err := sql.Open("postgres", params.ConnString())
	if err != nil {
		return nil, err
	}

	// Check connection
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}

	// Create tables if they don't exist
	if err := createTables(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &DB{DB: db, logger: log.With().Str("component", "signal_store").Logger()}, nil
}

// createTables creates the necessary tables if they don't exist
func createTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS trading_signals (
			id TEXT PRIMARY KEY,
			symbol TEXT NOT NULL,
			direction TEXT NOT NULL,
			entry_price DOUBLE PRECISION NOT NULL,
			tp_price DOUBLE PRECISION NOT NULL,
			sl_price DOUBLE PRECISION NOT NULL,
			confidence INTEGER NOT NULL,
			timeframe TEXT NOT NULL,
			risk_percent DOUBLE PRECISION NOT NULL,
			strength DOUBLE PRECISION NOT NULL,
			analysis TEXT[] NOT NULL DEFAULT '{}',
			created_at TIMESTAMPTZ NOT NULL,
			market_type TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'active',
			result TEXT,
			pnl DOUBLE PRECISION,
			sentiment_score DOUBLE PRECISION NOT NULL DEFAULT 0,
			news_impact DOUBLE PRECISION NOT NULL DEFAULT 0,
			closed_at TIMESTAMPTZ
		)
	`)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		CREATE INDEX IF NOT EXISTS trading_signals_created_at_idx
		ON trading_signals (created_at)
	`)
	return err
}

const signalColumns = `
	id, symbol, direction, entry_price, tp_price, sl_price, confidence,
	timeframe, risk_percent, strength, analysis, created_at, market_type,
	status, result, pnl, sentiment_score, news_impact, closed_at`

// Save inserts a signal
func (db *DB) Save(ctx context.Context, s *models.TradingSignal) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO trading_signals (`+signalColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
	`,
		s.ID, s.Symbol, string(s.Direction), s.EntryPrice, s.TPPrice, s.SLPrice, s.Confidence,
		s.Timeframe, s.RiskPercent, s.Strength, pq.Array(s.Analysis), s.Timestamp, string(s.MarketType),
		s.Status, nullString(s.Result), nullFloat(s.PnL), s.SentimentScore, s.NewsImpact, nullTime(s.ClosedAt),
	)
	if err != nil {
		return fmt.Errorf("insert signal %s: %w", s.ID, err)
	}
	return nil
}

// Recent returns the newest signals first
func (db *DB) Recent(ctx context.Context, limit int) ([]models.TradingSignal, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT `+signalColumns+`
		FROM trading_signals
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent signals: %w", err)
	}
	return scanSignals(rows)
}

// InRange returns signals created in [start, end), oldest first
func (db *DB) InRange(ctx context.Context, start, end time.Time) ([]models.TradingSignal, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT `+signalColumns+`
		FROM trading_signals
		WHERE created_at >= $1 AND created_at < $2
		ORDER BY created_at ASC
	`, start, end)
	if err != nil {
		return nil, fmt.Errorf("query signals in range: %w", err)
	}
	return scanSignals(rows)
}

// UpdateResult records the outcome and closes the signal
func (db *DB) UpdateResult(ctx context.Context, id, result string, pnl float64) error {
	res, err := db.ExecContext(ctx, `
		UPDATE trading_signals
		SET result = $2, pnl = $3, closed_at = $4, status = 'closed'
		WHERE id = $1
	`, id, result, pnl, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update signal %s: %w", id, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}

	db.logger.Info().Str("signal_id", id).Str("result", result).Float64("pnl", pnl).Msg("Signal closed")
	return nil
}

// ExpireBefore marks active signals created before cutoff as expired
func (db *DB) ExpireBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := db.ExecContext(ctx, `
		UPDATE trading_signals
		SET status = 'expired', closed_at = $2
		WHERE status = 'active' AND created_at < $1
	`, cutoff, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("expire signals: %w", err)
	}
	return res.RowsAffected()
}

func scanSignals(rows *sql.Rows) ([]models.TradingSignal, error) {
	defer rows.Close()

	var signals []models.TradingSignal
	for rows.Next() {
		var (
			s          models.TradingSignal
			direction  string
			marketType string
			analysis   pq.StringArray
			result     sql.NullString
			pnl        sql.NullFloat64
			closedAt   sql.NullTime
		)
		if err := rows.Scan(
			&s.ID, &s.Symbol, &direction, &s.EntryPrice, &s.TPPrice, &s.SLPrice, &s.Confidence,
			&s.Timeframe, &s.RiskPercent, &s.Strength, &analysis, &s.Timestamp, &marketType,
			&s.Status, &result, &pnl, &s.SentimentScore, &s.NewsImpact, &closedAt,
		); err != nil {
			return nil, fmt.Errorf("scan signal: %w", err)
		}

		s.Direction = models.Direction(direction)
		s.MarketType = models.MarketType(marketType)
		s.Analysis = []string(analysis)
		if result.Valid {
			s.Result = &result.String
		}
		if pnl.Valid {
			s.PnL = &pnl.Float64
		}
		if closedAt.Valid {
			s.ClosedAt = &closedAt.Time
		}
		signals = append(signals, s)
	}
	return signals, rows.Err()
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
