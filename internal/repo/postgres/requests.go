package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/rmacedo/custeio/internal/domain/request"
	"github.com/rmacedo/custeio/internal/domain/user"
	"github.com/rmacedo/custeio/internal/observability"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RequestsRepo struct {
	pool  *pgxpool.Pool
	prom  *observability.Prom
	users *UsersRepo
}

func NewRequestsRepo(pool *pgxpool.Pool, prom *observability.Prom, users *UsersRepo) *RequestsRepo {
	return &RequestsRepo{
		pool:  pool,
		prom:  prom,
		users: users,
	}
}

func (repo *RequestsRepo) observe(op string, fn func() error) error {
	if repo.prom != nil {
		return repo.prom.ObserveDB(op, fn)
	}
	return fn()
}

func (repo *RequestsRepo) Create(ctx context.Context, req request.Request) (err error) {
	err = repo.observe("requests.create", func() error {
		_, e := repo.pool.Exec(ctx, `
			INSERT INTO requests (id, nome, cpf, endereco, cidade, estado, cep, telefone, email, password, status, created_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		`, req.ID, req.Nome, req.CPF, req.Endereco, req.Cidade, req.Estado, req.CEP, req.Telefone, req.Email, req.Password, req.Status, req.CreatedAt)
		return e
	})

	return
}

// List is a full re-fetch on demand, oldest first. Pending requests are a
// small set by design; there is no pagination or live subscription here.
func (repo *RequestsRepo) List(ctx context.Context) (reqs []request.Request, err error) {
	var rows pgx.Rows

	err = repo.observe("requests.list", func() error {
		rows, err = repo.pool.Query(ctx, `
			SELECT id, nome, cpf, endereco, cidade, estado, cep, telefone, email, password, status, created_at
			FROM requests
			ORDER BY created_at ASC, id ASC
		`)
		return err
	})

	if err != nil {
		return
	}

	defer rows.Close()

	reqs = make([]request.Request, 0)

	for rows.Next() {
		var r request.Request

		e := rows.Scan(&r.ID, &r.Nome, &r.CPF, &r.Endereco, &r.Cidade, &r.Estado, &r.CEP, &r.Telefone, &r.Email, &r.Password, &r.Status, &r.CreatedAt)

		if e != nil {
			err = e
			return
		}
		reqs = append(reqs, r)
	}

	e := rows.Err()

	if e != nil {
		if repo.prom != nil {
			repo.prom.DbErrorsTotal.WithLabelValues("requests.list", "rows_err").Inc()
		}
		err = e
		return
	}

	return
}

func (repo *RequestsRepo) GetByID(ctx context.Context, id string) (found request.Request, err error) {
	var r request.Request

	e := repo.observe("requests.get_by_id", func() error {
		return repo.pool.QueryRow(ctx, `
			SELECT id, nome, cpf, endereco, cidade, estado, cep, telefone, email, password, status, created_at
			FROM requests
			WHERE id = $1
		`, id).Scan(&r.ID, &r.Nome, &r.CPF, &r.Endereco, &r.Cidade, &r.Estado, &r.CEP, &r.Telefone, &r.Email, &r.Password, &r.Status, &r.CreatedAt)
	})

	if e != nil {
		if errors.Is(e, pgx.ErrNoRows) {
			err = request.ErrNotFound
			return
		}

		err = e
		return
	}

	found = r
	return
}

// Delete removes a single request (the reject path, and the tail of approve).

func (repo *RequestsRepo) Delete(ctx context.Context, id string) (err error) {
	var affected int64

	err = repo.observe("requests.delete", func() error {
		tag, e := repo.pool.Exec(ctx, `DELETE FROM requests WHERE id = $1`, id)
		affected = tag.RowsAffected()
		return e
	})

	if err != nil {
		return
	}

	if affected == 0 {
		err = request.ErrNotFound
		return
	}

	return
}

// Approve promotes a request into a user profile and deletes the request,
// in one transaction. The role is fixed to "user" and every personal field
// is copied verbatim. If the email is already registered nothing is
// written and the request stays pending for retry.
func (repo *RequestsRepo) Approve(ctx context.Context, req request.Request, passwordHash string) (u user.User, err error) {
	tx, err := repo.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return
	}

	defer func() {
		_ = tx.Rollback(ctx)
	}()

	now := time.Now().UTC()

	u = user.User{
		ID:           uuid.NewString(),
		Email:        req.Email,
		PasswordHash: passwordHash,
		Nome:         req.Nome,
		CPF:          req.CPF,
		Endereco:     req.Endereco,
		Cidade:       req.Cidade,
		Estado:       req.Estado,
		CEP:          req.CEP,
		Telefone:     req.Telefone,
		Role:         user.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = repo.users.CreateTx(ctx, tx, u)

	if err != nil {
		u = user.User{}
		return
	}

	err = repo.observe("requests.approve.delete", func() error {
		tag, e := tx.Exec(ctx, `DELETE FROM requests WHERE id = $1`, req.ID)
		if e != nil {
			return e
		}
		if tag.RowsAffected() == 0 {
			return request.ErrNotFound
		}
		return nil
	})

	if err != nil {
		u = user.User{}
		return
	}

	err = tx.Commit(ctx)

	if err != nil {
		u = user.User{}
		return
	}

	return
}
