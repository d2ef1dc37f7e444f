package out

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"quotawin/internal/modules/usage/domain"
	"quotawin/internal/platform/clock"
)

// SQLHourStore keeps hour records in sqlite ("sqlite") or Postgres ("pgx").
// Timestamps are stored as RFC3339 UTC text so both drivers order them the
// same way.
type SQLHourStore struct {
	db *sqlx.DB
}

type hourRow struct {
	HourStart string  `db:"hour_start"`
	MachineID string  `db:"machine_id"`
	UsagePct  float64 `db:"usage_pct"`
	Samples   int     `db:"samples"`
	UpdatedAt string  `db:"updated_at"`
}

type machineRow struct {
	MachineID string `db:"machine_id"`
	Hours     int    `db:"hours"`
	LastHour  string `db:"last_hour"`
}

func NewSQLHourStore(ctx context.Context, driver, dsn string) (*SQLHourStore, error) {
	if driver == "sqlite" {
		if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if driver == "sqlite" {
		db.SetMaxOpenConns(1)
	}
	store := &SQLHourStore{db: db}
	if err := store.ensureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLHourStore) Close() error {
	return s.db.Close()
}

func (s *SQLHourStore) ensureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS usage_hours (
  hour_start TEXT NOT NULL,
  machine_id TEXT NOT NULL,
  usage_pct REAL NOT NULL,
  samples INTEGER NOT NULL,
  updated_at TEXT NOT NULL,
  PRIMARY KEY (hour_start, machine_id)
)`,
		`CREATE INDEX IF NOT EXISTS usage_hours_machine ON usage_hours (machine_id)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create usage schema: %w", err)
		}
	}
	return nil
}

func (s *SQLHourStore) UpsertSample(ctx context.Context, sample domain.Sample, updatedAt time.Time) error {
	stmt := s.db.Rebind(`
INSERT INTO usage_hours (hour_start, machine_id, usage_pct, samples, updated_at)
VALUES (?, ?, ?, 1, ?)
ON CONFLICT (hour_start, machine_id) DO UPDATE SET
  usage_pct = CASE WHEN excluded.usage_pct > usage_hours.usage_pct THEN excluded.usage_pct ELSE usage_hours.usage_pct END,
  samples = usage_hours.samples + 1,
  updated_at = excluded.updated_at`)
	_, err := s.db.ExecContext(ctx, stmt,
		clock.ToISO(sample.HourStart()),
		sample.MachineID,
		sample.UsagePct,
		clock.ToISO(updatedAt),
	)
	if err != nil {
		return fmt.Errorf("upsert usage hour: %w", err)
	}
	return nil
}

func (s *SQLHourStore) ListHours(ctx context.Context, from, to time.Time) ([]domain.HourRecord, error) {
	rows := []hourRow{}
	query := s.db.Rebind(`
SELECT hour_start, machine_id, usage_pct, samples, updated_at
FROM usage_hours
WHERE hour_start >= ? AND hour_start < ?
ORDER BY hour_start, machine_id`)
	if err := s.db.SelectContext(ctx, &rows, query, clock.ToISO(from), clock.ToISO(to)); err != nil {
		return nil, fmt.Errorf("list usage hours: %w", err)
	}
	return toRecords(rows)
}

func (s *SQLHourStore) ListMachineHours(ctx context.Context, machineID string) ([]domain.HourRecord, error) {
	rows := []hourRow{}
	query := s.db.Rebind(`
SELECT hour_start, machine_id, usage_pct, samples, updated_at
FROM usage_hours
WHERE machine_id = ?
ORDER BY hour_start`)
	if err := s.db.SelectContext(ctx, &rows, query, machineID); err != nil {
		return nil, fmt.Errorf("list machine hours: %w", err)
	}
	return toRecords(rows)
}

// ReplaceMachineHours deletes and reinserts one machine's rows in a single
// transaction.
func (s *SQLHourStore) ReplaceMachineHours(ctx context.Context, machineID string, records []domain.HourRecord) (err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, tx.Rebind(`DELETE FROM usage_hours WHERE machine_id = ?`), machineID); err != nil {
		return fmt.Errorf("delete machine hours: %w", err)
	}
	insert := tx.Rebind(`
INSERT INTO usage_hours (hour_start, machine_id, usage_pct, samples, updated_at)
VALUES (?, ?, ?, ?, ?)`)
	for _, r := range records {
		if r.MachineID != machineID {
			err = fmt.Errorf("record for %s in replacement of %s", r.MachineID, machineID)
			return err
		}
		if _, err = tx.ExecContext(ctx, insert, clock.ToISO(r.HourStart), r.MachineID, r.UsagePct, r.Samples, clock.ToISO(r.UpdatedAt)); err != nil {
			return fmt.Errorf("insert machine hour: %w", err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit replace: %w", err)
	}
	return nil
}

func (s *SQLHourStore) Machines(ctx context.Context) ([]domain.MachineSummary, error) {
	rows := []machineRow{}
	const query = `
SELECT machine_id, COUNT(*) AS hours, MAX(hour_start) AS last_hour
FROM usage_hours
GROUP BY machine_id
ORDER BY machine_id`
	if err := s.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list machines: %w", err)
	}
	out := make([]domain.MachineSummary, 0, len(rows))
	for _, row := range rows {
		last, err := clock.FromISO(row.LastHour)
		if err != nil {
			return nil, err
		}
		out = append(out, domain.MachineSummary{MachineID: row.MachineID, Hours: row.Hours, LastHour: last})
	}
	return out, nil
}

func toRecords(rows []hourRow) ([]domain.HourRecord, error) {
	out := make([]domain.HourRecord, 0, len(rows))
	for _, row := range rows {
		hourStart, err := clock.FromISO(row.HourStart)
		if err != nil {
			return nil, err
		}
		updatedAt, err := clock.FromISO(row.UpdatedAt)
		if err != nil {
			return nil, err
		}
		out = append(out, domain.HourRecord{
			HourStart: hourStart,
			MachineID: row.MachineID,
			UsagePct:  row.UsagePct,
			Samples:   row.Samples,
			UpdatedAt: updatedAt,
		})
	}
	return out, nil
}
