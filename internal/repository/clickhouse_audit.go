package repository

import (
	"context"
	"database/sql"
	"time"

	drepo "LovePulse/internal/domain/repository"
)

const auditSchema = `
CREATE TABLE IF NOT EXISTS analysis_audit (
	ts DateTime,
	symbol String,
	transcript String,
	diarized_transcript String,
	state String,
	position String,
	move_percent Float64,
	confidence Int32,
	degraded UInt8
) ENGINE = MergeTree()
ORDER BY (symbol, ts)`

// ClickHouseAuditStore archives one row per analysis for offline review.
type ClickHouseAuditStore struct {
	db    *sql.DB
	table string
}

// NewClickHouseAuditStore creates the audit store. Call Init once to ensure
// the table exists.
func NewClickHouseAuditStore(db *sql.DB) *ClickHouseAuditStore {
	return &ClickHouseAuditStore{db: db, table: "analysis_audit"}
}

var _ drepo.AuditStore = (*ClickHouseAuditStore)(nil)

// Init creates the audit table if missing.
func (s *ClickHouseAuditStore) Init(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, auditSchema)
	return err
}

// Record archives one analysis.
func (s *ClickHouseAuditStore) Record(ctx context.Context, rec *drepo.AuditRecord) error {
	degraded := uint8(0)
	if rec.Degraded {
		degraded = 1
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO "+s.table+" (ts, symbol, transcript, diarized_transcript, state, position, move_percent, confidence, degraded) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		time.Now().UTC(),
		rec.Symbol,
		rec.Transcript,
		rec.DiarizedTranscript,
		string(rec.State),
		string(rec.Position),
		rec.MovePercent,
		rec.Confidence,
		degraded,
	)
	return err
}

// NopAuditStore drops every record. Used when ClickHouse is not configured.
type NopAuditStore struct{}

func (NopAuditStore) Record(context.Context, *drepo.AuditRecord) error { return nil }
