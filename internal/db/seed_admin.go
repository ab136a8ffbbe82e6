package db

import (
	"context"
	"errors"
	"time"

	"github.com/rmacedo/custeio/internal/config"
	"github.com/rmacedo/custeio/internal/domain/user"
	"github.com/rmacedo/custeio/internal/security"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureAdminUser seeds the first admin from env. Approval always assigns
// role "user", so without this seed nobody could upload a dataset.
func EnsureAdminUser(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil
	}

	// check if the user exists

	var dummy string

	err := pool.QueryRow(ctx, `SELECT id FROM users WHERE email = $1`, cfg.AdminEmail).Scan(&dummy)

	if err == nil {
		return nil
	}

	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	hash, err := security.HashPassword(cfg.AdminPassword)

	if err != nil {
		return err
	}

	now := time.Now().UTC()

	u := user.User{
		ID:           uuid.NewString(),
		Email:        cfg.AdminEmail,
		PasswordHash: hash,
		Nome:         cfg.AdminNome,
		Role:         user.RoleAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	_, err = pool.Exec(ctx,
		`INSERT INTO users (id, email, password_hash, nome, cpf, endereco, cidade, estado, cep, telefone, role, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		`,
		u.ID, u.Email, u.PasswordHash, u.Nome, u.CPF, u.Endereco, u.Cidade, u.Estado, u.CEP, u.Telefone, u.Role, u.CreatedAt, u.UpdatedAt,
	)

	return err
}
