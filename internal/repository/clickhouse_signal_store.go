package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"stocklens/internal/domain/models"
	domrepo "stocklens/internal/domain/repository"
	pkgch "stocklens/pkg/clickhouse"
	applogger "stocklens/pkg/logger"
)

const signalsTable = "stocklens.signals_cache"

// SignalsSchema are the idempotent statements that back the signal store.
// ReplacingMergeTree versioned by last_updated_at makes the newest record
// win for a (symbol, timeframe) key.
var SignalsSchema = []string{
	"CREATE DATABASE IF NOT EXISTS stocklens",
	`CREATE TABLE IF NOT EXISTS ` + signalsTable + ` (
		symbol          String,
		timeframe       String,
		verdict         String,
		direction       String,
		hybrid_score    Float64,
		price           Float64,
		payload         String,
		last_updated_at DateTime64(3, 'UTC'),
		next_update_at  DateTime64(3, 'UTC')
	) ENGINE = ReplacingMergeTree(last_updated_at)
	ORDER BY (symbol, timeframe)`,
}

// CHSignalStore implements SignalStore backed by ClickHouse.
type CHSignalStore struct {
	db *sql.DB
	l  *applogger.Logger
	ch *pkgch.Client
}

func NewCHSignalStore(ch *pkgch.Client) *CHSignalStore {
	return &CHSignalStore{db: ch.DB(), ch: ch}
}

// SetLogger injects a structured logger.
func (s *CHSignalStore) SetLogger(l *applogger.Logger) { s.l = l }

func (s *CHSignalStore) Init(ctx context.Context) error {
	return s.ch.InitSchema(ctx, SignalsSchema)
}

// Upsert writes the whole record. A stored record with a newer
// last_updated_at wins; the caller's write is rejected with ErrWriteConflict.
func (s *CHSignalStore) Upsert(ctx context.Context, rec *models.SignalRecord) error {
	start := time.Now()

	var stored time.Time
	q := "SELECT max(last_updated_at) FROM " + signalsTable + " WHERE symbol = ? AND timeframe = ?"
	if err := s.db.QueryRowContext(ctx, q, rec.Symbol, rec.Timeframe).Scan(&stored); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("check existing: %w", err)
	}
	if stored.After(rec.LastUpdatedAt) {
		return fmt.Errorf("%w: stored %s is newer than %s", models.ErrWriteConflict,
			stored.Format(time.RFC3339), rec.LastUpdatedAt.Format(time.RFC3339))
	}

	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	ins := "INSERT INTO " + signalsTable +
		" (symbol, timeframe, verdict, direction, hybrid_score, price, payload, last_updated_at, next_update_at)" +
		" VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)"
	if _, err := s.db.ExecContext(ctx, ins,
		rec.Symbol,
		rec.Timeframe,
		string(rec.Hybrid.Verdict),
		string(rec.Plan.Direction),
		rec.Hybrid.HybridScore,
		rec.Indicators.Price,
		string(payload),
		rec.LastUpdatedAt,
		rec.NextUpdateAt,
	); err != nil {
		if s.l != nil {
			s.l.Error("clickhouse upsert error",
				applogger.String("symbol", rec.Symbol),
				applogger.String("timeframe", rec.Timeframe),
				applogger.Error(err),
			)
		}
		return fmt.Errorf("upsert signal: %w", err)
	}

	if s.l != nil {
		s.l.Debug("clickhouse upsert ok",
			applogger.String("symbol", rec.Symbol),
			applogger.String("timeframe", rec.Timeframe),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return nil
}

func (s *CHSignalStore) Get(ctx context.Context, symbol string, tf domrepo.Timeframe) (*models.SignalRecord, error) {
	q := "SELECT payload FROM " + signalsTable +
		" WHERE symbol = ? AND timeframe = ? ORDER BY last_updated_at DESC LIMIT 1"

	var payload string
	if err := s.db.QueryRowContext(ctx, q, symbol, string(tf)).Scan(&payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrSignalNotFound
		}
		return nil, fmt.Errorf("get signal: %w", err)
	}

	var rec models.SignalRecord
	if err := json.Unmarshal([]byte(payload), &rec); err != nil {
		return nil, fmt.Errorf("unmarshal record: %w", err)
	}
	return &rec, nil
}

func (s *CHSignalStore) List(ctx context.Context, tf domrepo.Timeframe) ([]*models.SignalRecord, error) {
	q := "SELECT payload FROM " + signalsTable + " FINAL WHERE timeframe = ? ORDER BY symbol ASC"

	rows, err := s.db.QueryContext(ctx, q, string(tf))
	if err != nil {
		return nil, fmt.Errorf("list signals: %w", err)
	}
	defer rows.Close()

	out := make([]*models.SignalRecord, 0, 16)
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan signal: %w", err)
		}
		var rec models.SignalRecord
		if err := json.Unmarshal([]byte(payload), &rec); err != nil {
			return nil, fmt.Errorf("unmarshal record: %w", err)
		}
		out = append(out, &rec)
	}
	return out, rows.Err()
}

func (s *CHSignalStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *CHSignalStore) Close() error {
	return nil // Managed by pkg
}
