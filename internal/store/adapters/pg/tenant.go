package pg

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/turnero/internal/domain/repository"
)

type tenantRepo struct{ pool *pgxpool.Pool }

func (r *tenantRepo) GetByEmail(ctx context.Context, email string) (*repository.Tenant, error) {
	const query = `
		SELECT id, name, email, password_hash, created_at
		FROM tenant WHERE email = $1
	`
	var t repository.Tenant
	err := r.pool.QueryRow(ctx, query, email).Scan(
		&t.ID, &t.Name, &t.Email, &t.PasswordHash, &t.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	return &t, err
}

func (r *tenantRepo) GetByID(ctx context.Context, tenantID string) (*repository.Tenant, error) {
	const query = `
		SELECT id, name, email, password_hash, created_at
		FROM tenant WHERE id = $1
	`
	var t repository.Tenant
	err := r.pool.QueryRow(ctx, query, tenantID).Scan(
		&t.ID, &t.Name, &t.Email, &t.PasswordHash, &t.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	return &t, err
}

func (r *tenantRepo) Create(ctx context.Context, input repository.CreateTenantInput) (*repository.Tenant, error) {
	const query = `
		INSERT INTO tenant (id, name, email, password_hash, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING created_at
	`
	t := &repository.Tenant{
		ID:           uuid.NewString(),
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: input.PasswordHash,
	}
	err := r.pool.QueryRow(ctx, query, t.ID, t.Name, t.Email, t.PasswordHash).Scan(&t.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, repository.ErrConflict
		}
		return nil, fmt.Errorf("pg: create tenant: %w", err)
	}
	return t, nil
}
