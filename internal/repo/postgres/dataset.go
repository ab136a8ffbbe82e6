package postgres

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/rmacedo/custeio/internal/domain/history"
	"github.com/rmacedo/custeio/internal/domain/pricing"
	"github.com/rmacedo/custeio/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// The dataset is a single shared document: one row, fixed id. Every upload
// replaces it wholesale (last write wins; concurrent admin uploads are not
// coordinated beyond per-upload atomicity).
const datasetID = 1

type DatasetRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewDatasetRepo(pool *pgxpool.Pool, prom *observability.Prom) *DatasetRepo {
	return &DatasetRepo{
		pool: pool,
		prom: prom,
	}
}

func (repo *DatasetRepo) observe(op string, fn func() error) error {
	if repo.prom != nil {
		return repo.prom.ObserveDB(op, fn)
	}
	return fn()
}

// Get returns the current snapshot in one query, so records and lastUpdate
// can never be observed out of step. An absent dataset is an empty
// snapshot, not an error.
func (repo *DatasetRepo) Get(ctx context.Context) (ds pricing.Dataset, err error) {
	var raw []byte

	e := repo.observe("dataset.get", func() error {
		return repo.pool.QueryRow(ctx, `
			SELECT records, last_update, updated_by
			FROM dataset
			WHERE id = $1
		`, datasetID).Scan(&raw, &ds.LastUpdate, &ds.UpdatedBy)
	})

	if e != nil {
		if errors.Is(e, pgx.ErrNoRows) {
			return pricing.Dataset{Records: []pricing.Record{}}, nil
		}

		err = e
		return
	}

	if err = json.Unmarshal(raw, &ds.Records); err != nil {
		return
	}

	if ds.Records == nil {
		ds.Records = []pricing.Record{}
	}

	return
}

// Replace swaps the entire dataset document and appends the matching
// history entry in one transaction: either the full pair is written or
// nothing is.
func (repo *DatasetRepo) Replace(ctx context.Context, ds pricing.Dataset, entry history.Entry) (err error) {
	raw, err := json.Marshal(ds.Records)
	if err != nil {
		return
	}

	tx, err := repo.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return
	}

	defer func() {
		_ = tx.Rollback(ctx)
	}()

	err = repo.observe("dataset.replace.upsert", func() error {
		_, e := tx.Exec(ctx, `
			INSERT INTO dataset (id, records, last_update, updated_by, updated_at)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (id) DO UPDATE
			SET records = EXCLUDED.records,
			    last_update = EXCLUDED.last_update,
			    updated_by = EXCLUDED.updated_by,
			    updated_at = EXCLUDED.updated_at
		`, datasetID, raw, ds.LastUpdate, ds.UpdatedBy, entry.Timestamp)
		return e
	})

	if err != nil {
		return
	}

	err = repo.observe("dataset.replace.history", func() error {
		_, e := tx.Exec(ctx, `
			INSERT INTO history (id, ts, date, user_name, record_count)
			VALUES ($1, $2, $3, $4, $5)
		`, entry.ID, entry.Timestamp, entry.Date, entry.User, entry.RecordCount)
		return e
	})

	if err != nil {
		return
	}

	err = tx.Commit(ctx)

	return
}
