package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/maltedev/fridge-capacity-crawler/internal/models"
)

const capacityTable = "fridge_capacity"

var capacityColumns = []string{
	"run_id", "position", "name", "total_l", "freezer_l", "fridge_l", "scraped_at",
}

const createCapacityTable = `
	CREATE TABLE IF NOT EXISTS fridge_capacity (
		run_id     UUID        NOT NULL,
		position   INTEGER     NOT NULL,
		name       TEXT        NOT NULL,
		total_l    INTEGER     NOT NULL,
		freezer_l  INTEGER     NOT NULL,
		fridge_l   INTEGER     NOT NULL,
		scraped_at TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (run_id, position)
	)`

// Querier is the subset of DB used by CapacityRepository.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	CopyFrom(ctx context.Context, table pgx.Identifier, columns []string, src pgx.CopyFromSource) (int64, error)
}

// CapacityRepository stores each run's rows keyed by run ID and position.
type CapacityRepository struct {
	db  Querier
	now func() time.Time
}

func NewCapacityRepository(db Querier) *CapacityRepository {
	return &CapacityRepository{db: db, now: time.Now}
}

func (r *CapacityRepository) Name() string { return "postgres:" + capacityTable }

func (r *CapacityRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, createCapacityTable); err != nil {
		return fmt.Errorf("failed to create %s: %w", capacityTable, err)
	}
	return nil
}

// Save copies every row of the run in a single COPY.
func (r *CapacityRepository) Save(ctx context.Context, result models.Snapshot) error {
	if len(result.Rows) == 0 {
		return nil
	}

	if err := r.EnsureSchema(ctx); err != nil {
		return err
	}

	scrapedAt := result.FinishedAt
	if scrapedAt.IsZero() {
		scrapedAt = r.now()
	}

	src := pgx.CopyFromSlice(len(result.Rows), func(i int) ([]any, error) {
		row := result.Rows[i]
		return []any{result.RunID, i, row.Name, row.TotalL, row.FreezerL, row.FridgeL, scrapedAt}, nil
	})

	n, err := r.db.CopyFrom(ctx, pgx.Identifier{capacityTable}, capacityColumns, src)
	if err != nil {
		return fmt.Errorf("failed to copy rows: %w", err)
	}
	if int(n) != len(result.Rows) {
		return fmt.Errorf("copied %d of %d rows", n, len(result.Rows))
	}

	return nil
}
