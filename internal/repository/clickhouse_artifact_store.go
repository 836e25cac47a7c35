package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"QuantSift/internal/domain/models"
	pkgch "QuantSift/pkg/clickhouse"
	applogger "QuantSift/pkg/logger"
)

// Schema statements for the scan artifact tables. Runs are stored whole as
// JSON so they round-trip exactly; the flat record table exists for the
// per-ticker API lookups.
var artifactSchema = []string{
	"CREATE DATABASE IF NOT EXISTS quantsift",
	`CREATE TABLE IF NOT EXISTS quantsift.scan_runs (
        run_id String,
        started_at DateTime64(3),
        finished_at DateTime64(3),
        universe_size UInt32,
        admitted_size UInt32,
        error_count UInt32,
        dry_run UInt8,
        payload String
    ) ENGINE = MergeTree ORDER BY started_at`,
	`CREATE TABLE IF NOT EXISTS quantsift.reconciled_records (
        run_id String,
        ticker String,
        confidence Float64,
        narrative String,
        created_at DateTime64(3),
        payload String
    ) ENGINE = MergeTree ORDER BY (ticker, created_at)`,
}

// CHArtifactStore persists scan artifacts in ClickHouse.
type CHArtifactStore struct {
	ch *pkgch.Client
	db *sql.DB
	l  *applogger.Logger
}

func NewCHArtifactStore(ch *pkgch.Client, l *applogger.Logger) *CHArtifactStore {
	return &CHArtifactStore{ch: ch, db: ch.DB(), l: l}
}

func (s *CHArtifactStore) Init(ctx context.Context) error {
	if err := s.ch.InitSchema(ctx, artifactSchema); err != nil {
		return fmt.Errorf("artifact schema: %w", err)
	}
	return nil
}

func (s *CHArtifactStore) SaveRun(ctx context.Context, a *models.ScanArtifact) error {
	start := time.Now()
	payload, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("marshal artifact: %w", err)
	}

	const runQ = `INSERT INTO quantsift.scan_runs
        (run_id, started_at, finished_at, universe_size, admitted_size, error_count, dry_run, payload)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	dry := uint8(0)
	if a.DryRun {
		dry = 1
	}
	if _, err := s.db.ExecContext(ctx, runQ,
		a.RunID, a.StartedAt, a.FinishedAt,
		uint32(len(a.Universe)), uint32(len(a.Admitted)), uint32(len(a.Errors)),
		dry, string(payload),
	); err != nil {
		s.l.Error("clickhouse save_run insert error",
			applogger.String("run_id", a.RunID), applogger.Error(err))
		return fmt.Errorf("save run: %w", err)
	}

	const recQ = `INSERT INTO quantsift.reconciled_records
        (run_id, ticker, confidence, narrative, created_at, payload)
        VALUES (?, ?, ?, ?, ?, ?)`
	for _, rec := range a.Records {
		recPayload, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("marshal record %s: %w", rec.Ticker, err)
		}
		if _, err := s.db.ExecContext(ctx, recQ,
			a.RunID, rec.Ticker, rec.Confidence, rec.Narrative,
			a.FinishedAt, string(recPayload),
		); err != nil {
			s.l.Error("clickhouse save_run record insert error",
				applogger.String("run_id", a.RunID),
				applogger.String("ticker", rec.Ticker),
				applogger.Error(err),
			)
			return fmt.Errorf("save record %s: %w", rec.Ticker, err)
		}
	}

	s.l.Info("clickhouse save_run ok",
		applogger.String("run_id", a.RunID),
		applogger.Int("records", len(a.Records)),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	return nil
}

func (s *CHArtifactStore) LatestRun(ctx context.Context) (*models.ScanArtifact, error) {
	const q = `SELECT payload FROM quantsift.scan_runs ORDER BY started_at DESC LIMIT 1`
	return s.scanRun(s.db.QueryRowContext(ctx, q))
}

func (s *CHArtifactStore) RunByID(ctx context.Context, runID string) (*models.ScanArtifact, error) {
	const q = `SELECT payload FROM quantsift.scan_runs WHERE run_id = ? LIMIT 1`
	return s.scanRun(s.db.QueryRowContext(ctx, q, runID))
}

func (s *CHArtifactStore) scanRun(row *sql.Row) (*models.ScanArtifact, error) {
	var payload string
	if err := row.Scan(&payload); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan run row: %w", err)
	}
	var a models.ScanArtifact
	if err := json.Unmarshal([]byte(payload), &a); err != nil {
		return nil, fmt.Errorf("unmarshal artifact: %w", err)
	}
	return &a, nil
}

func (s *CHArtifactStore) RecordsByTicker(ctx context.Context, ticker string, since time.Time, limit int) ([]*models.ReconciledRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	q := `SELECT payload FROM quantsift.reconciled_records
        WHERE ticker = ?`
	args := []any{ticker}
	if !since.IsZero() {
		q += ` AND created_at >= ?`
		args = append(args, since)
	}
	q += ` ORDER BY created_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		s.l.Error("clickhouse records_by_ticker query error",
			applogger.String("ticker", ticker), applogger.Error(err))
		return nil, fmt.Errorf("records by ticker: %w", err)
	}
	defer rows.Close()

	out := make([]*models.ReconciledRecord, 0, limit)
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan record row: %w", err)
		}
		var rec models.ReconciledRecord
		if err := json.Unmarshal([]byte(payload), &rec); err != nil {
			return nil, fmt.Errorf("unmarshal record: %w", err)
		}
		out = append(out, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

func (s *CHArtifactStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *CHArtifactStore) Close() error {
	return nil // pool is owned by pkg/clickhouse
}
