package postgres

import (
	"context"

	"github.com/rmacedo/custeio/internal/domain/history"
	"github.com/rmacedo/custeio/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type HistoryRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewHistoryRepo(pool *pgxpool.Pool, prom *observability.Prom) *HistoryRepo {
	return &HistoryRepo{
		pool: pool,
		prom: prom,
	}
}

func (repo *HistoryRepo) observe(op string, fn func() error) error {
	if repo.prom != nil {
		return repo.prom.ObserveDB(op, fn)
	}
	return fn()
}

// ListRecent returns the newest entries first. The admin panel shows the
// last ten.
func (repo *HistoryRepo) ListRecent(ctx context.Context, limit int) (entries []history.Entry, err error) {
	var rows pgx.Rows

	err = repo.observe("history.list_recent", func() error {
		rows, err = repo.pool.Query(ctx, `
			SELECT id, ts, date, user_name, record_count
			FROM history
			ORDER BY ts DESC
			LIMIT $1
		`, limit)
		return err
	})

	if err != nil {
		return
	}

	defer rows.Close()

	entries = make([]history.Entry, 0, limit)

	for rows.Next() {
		var h history.Entry

		e := rows.Scan(&h.ID, &h.Timestamp, &h.Date, &h.User, &h.RecordCount)

		if e != nil {
			err = e
			return
		}
		entries = append(entries, h)
	}

	e := rows.Err()

	if e != nil {
		if repo.prom != nil {
			repo.prom.DbErrorsTotal.WithLabelValues("history.list_recent", "rows_err").Inc()
		}
		err = e
		return
	}

	return
}
