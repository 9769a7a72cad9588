// Package pg implementa los repositorios de dominio sobre PostgreSQL
// usando pgx/v5 con pool de conexiones.
package pg

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/turnero/internal/domain/repository"
)

// Config contiene la configuración de conexión.
type Config struct {
	DSN             string
	MaxConns        int32
	ConnMaxLifetime time.Duration
}

// Store agrupa los repositorios PG compartiendo un pool.
type Store struct {
	pool *pgxpool.Pool

	Tenants  repository.TenantRepository
	Members  repository.MemberRepository
	Rotation repository.RotationRepository
}

// Open crea el pool y verifica conectividad con un ping.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	pcfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("pg: parse dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		pcfg.MaxConns = cfg.MaxConns
	}
	if cfg.ConnMaxLifetime > 0 {
		pcfg.MaxConnLifetime = cfg.ConnMaxLifetime
	}

	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, fmt.Errorf("pg: connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pg: ping: %w", err)
	}

	return &Store{
		pool:     pool,
		Tenants:  &tenantRepo{pool: pool},
		Members:  &memberRepo{pool: pool},
		Rotation: &rotationRepo{pool: pool},
	}, nil
}

// Close cierra el pool.
func (s *Store) Close() {
	s.pool.Close()
}

// Ping verifica conectividad, para readiness checks.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Pool expone el pool subyacente (stats de métricas).
func (s *Store) Pool() *pgxpool.Pool {
	return s.pool
}

// isUniqueViolation detecta violaciones de constraint UNIQUE (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
