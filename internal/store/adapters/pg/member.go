package pg

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/turnero/internal/domain/repository"
)

type memberRepo struct{ pool *pgxpool.Pool }

func (r *memberRepo) ListActive(ctx context.Context, tenantID, group string) ([]repository.Member, error) {
	// El PK garantiza que no haya IDs duplicados en el resultado.
	query := `
		SELECT id, tenant_id, name, email, group_name, active, created_at
		FROM member
		WHERE tenant_id = $1 AND active
		ORDER BY created_at, id
	`
	args := []any{tenantID}
	if group != "" {
		query = `
			SELECT id, tenant_id, name, email, group_name, active, created_at
			FROM member
			WHERE tenant_id = $1 AND group_name = $2 AND active
			ORDER BY created_at, id
		`
		args = append(args, group)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []repository.Member
	for rows.Next() {
		var m repository.Member
		if err := rows.Scan(&m.ID, &m.TenantID, &m.Name, &m.Email, &m.Group, &m.Active, &m.CreatedAt); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (r *memberRepo) Create(ctx context.Context, input repository.CreateMemberInput) (*repository.Member, error) {
	const query = `
		INSERT INTO member (id, tenant_id, name, email, group_name, active, created_at)
		VALUES ($1, $2, $3, $4, $5, TRUE, NOW())
		RETURNING created_at
	`
	m := &repository.Member{
		ID:       uuid.NewString(),
		TenantID: input.TenantID,
		Name:     input.Name,
		Email:    input.Email,
		Group:    input.Group,
		Active:   true,
	}
	err := r.pool.QueryRow(ctx, query, m.ID, m.TenantID, m.Name, m.Email, m.Group).Scan(&m.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, repository.ErrConflict
		}
		return nil, fmt.Errorf("pg: create member: %w", err)
	}
	return m, nil
}

func (r *memberRepo) Deactivate(ctx context.Context, tenantID, memberID string) error {
	const query = `UPDATE member SET active = FALSE WHERE tenant_id = $1 AND id = $2 AND active`
	tag, err := r.pool.Exec(ctx, query, tenantID, memberID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}
