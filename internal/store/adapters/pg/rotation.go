package pg

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/turnero/internal/domain/repository"
)

type rotationRepo struct{ pool *pgxpool.Pool }

func (r *rotationRepo) LoadCycles(ctx context.Context, tenantID, scope string) (repository.CycleState, error) {
	const query = `SELECT cycles FROM cycle_state WHERE tenant_id = $1 AND scope = $2`

	var raw []byte
	err := r.pool.QueryRow(ctx, query, tenantID, scope).Scan(&raw)
	if err == pgx.ErrNoRows {
		// Creación lazy: el estado existe recién en el primer commit.
		return repository.CycleState{}, nil
	}
	if err != nil {
		return nil, err
	}

	var cycles repository.CycleState
	if err := json.Unmarshal(raw, &cycles); err != nil {
		return nil, fmt.Errorf("pg: decode cycle state: %w", err)
	}
	return cycles, nil
}

func (r *rotationRepo) NextRound(ctx context.Context, tenantID, scope string) (int, error) {
	// MAX+1 y no COUNT: el número sigue siendo correcto si se borran
	// entradas viejas del registro.
	const query = `
		SELECT COALESCE(MAX(round), 0) + 1
		FROM round_log WHERE tenant_id = $1 AND scope = $2
	`
	var next int
	err := r.pool.QueryRow(ctx, query, tenantID, scope).Scan(&next)
	return next, err
}

func (r *rotationRepo) CommitRun(ctx context.Context, tenantID, scope string, cycles repository.CycleState, entry repository.RoundEntry) error {
	rawCycles, err := json.Marshal(cycles)
	if err != nil {
		return fmt.Errorf("pg: encode cycle state: %w", err)
	}
	rawAssignments, err := json.Marshal(entry.Assignments)
	if err != nil {
		return fmt.Errorf("pg: encode assignments: %w", err)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", repository.ErrUnavailable, err)
	}
	defer tx.Rollback(ctx)

	// Reemplazo completo del mapa de ciclos del scope: nunca commits
	// parciales por rol.
	_, err = tx.Exec(ctx, `
		INSERT INTO cycle_state (tenant_id, scope, cycles, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (tenant_id, scope) DO UPDATE SET cycles = $3, updated_at = NOW()
	`, tenantID, scope, rawCycles)
	if err != nil {
		return fmt.Errorf("pg: commit cycle state: %w", err)
	}

	id := entry.ID
	if id == "" {
		id = uuid.NewString()
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO round_log (id, tenant_id, scope, round, assignments, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, id, tenantID, scope, entry.Round, rawAssignments, entry.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			// Otro writer usó esta ronda: el rollback del tx descarta
			// también el upsert de ciclos y el caller reintenta completo
			// con un round recalculado.
			return repository.ErrConflict
		}
		return fmt.Errorf("pg: append round: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: %v", repository.ErrUnavailable, err)
	}
	return nil
}

func (r *rotationRepo) History(ctx context.Context, tenantID string, limit, offset int) ([]repository.RoundEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	const query = `
		SELECT id, tenant_id, scope, round, assignments, created_at
		FROM round_log
		WHERE tenant_id = $1
		ORDER BY created_at DESC, round DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.pool.Query(ctx, query, tenantID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []repository.RoundEntry
	for rows.Next() {
		var e repository.RoundEntry
		var raw []byte
		if err := rows.Scan(&e.ID, &e.TenantID, &e.Scope, &e.Round, &raw, &e.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(raw, &e.Assignments); err != nil {
			return nil, fmt.Errorf("pg: decode assignments: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *rotationRepo) DeleteRound(ctx context.Context, tenantID, scope string, round int) error {
	const query = `DELETE FROM round_log WHERE tenant_id = $1 AND scope = $2 AND round = $3`
	tag, err := r.pool.Exec(ctx, query, tenantID, scope, round)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}
