package postgres

import (
	"context"
	"errors"

	"github.com/rmacedo/custeio/internal/domain/user"
	"github.com/rmacedo/custeio/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrEmailAlreadyUsed = errors.New("email already in use")
)

type UsersRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewUsersRepo(pool *pgxpool.Pool, prom *observability.Prom) *UsersRepo {
	return &UsersRepo{pool: pool, prom: prom}
}

func (r *UsersRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

const userColumns = `id, email, password_hash, nome, cpf, endereco, cidade, estado, cep, telefone, role, created_at, updated_at`

func scanUser(row pgx.Row) (user.User, error) {
	var u user.User

	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.Nome,
		&u.CPF,
		&u.Endereco,
		&u.Cidade,
		&u.Estado,
		&u.CEP,
		&u.Telefone,
		&u.Role,
		&u.CreatedAt,
		&u.UpdatedAt,
	)

	return u, err
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	var u user.User
	var err error

	err = r.observe("users.get_by_email", func() error {
		u, err = scanUser(r.pool.QueryRow(
			ctx,
			`SELECT `+userColumns+` FROM users WHERE email = $1`,
			email,
		))
		return err
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, ErrUserNotFound
		}

		return user.User{}, err
	}
	return u, nil
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	var u user.User
	var err error

	err = r.observe("users.get_by_id", func() error {
		u, err = scanUser(r.pool.QueryRow(
			ctx,
			`SELECT `+userColumns+` FROM users WHERE id = $1`,
			id,
		))
		return err
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, ErrUserNotFound
		}

		return user.User{}, err
	}
	return u, nil
}

// CreateTx inserts the profile inside the caller's transaction. The unique
// index on email is the provisioning gate: a duplicate maps to
// ErrEmailAlreadyUsed so approval can abort cleanly.
func (r *UsersRepo) CreateTx(ctx context.Context, tx pgx.Tx, u user.User) error {
	err := r.observe("users.create_tx", func() error {
		_, e := tx.Exec(ctx,
			`INSERT INTO users (`+userColumns+`)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
			u.ID, u.Email, u.PasswordHash, u.Nome, u.CPF, u.Endereco, u.Cidade, u.Estado, u.CEP, u.Telefone, u.Role, u.CreatedAt, u.UpdatedAt,
		)
		return e
	})

	if err != nil && IsUniqueViolation(err) {
		return ErrEmailAlreadyUsed
	}

	return err
}
