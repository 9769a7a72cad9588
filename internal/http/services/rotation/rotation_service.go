// Package rotation orquesta la generación de rondas: lock por scope,
// snapshot, engine, commit con reintentos y notificaciones.
package rotation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dropDatabas3/turnero/internal/audit"
	"github.com/dropDatabas3/turnero/internal/domain/repository"
	"github.com/dropDatabas3/turnero/internal/email"
	dto "github.com/dropDatabas3/turnero/internal/http/dto/rotation"
	"github.com/dropDatabas3/turnero/internal/metrics"
	"github.com/dropDatabas3/turnero/internal/observability/logger"
	"github.com/dropDatabas3/turnero/internal/rotation"
	"github.com/dropDatabas3/turnero/internal/rotation/scopelock"
	"github.com/dropDatabas3/turnero/internal/validation"
)

// Errores del rotation service
var (
	ErrNoRoleRequests   = fmt.Errorf("no role requests")
	ErrInvalidRole      = fmt.Errorf("invalid role request")
	ErrEmptyPool        = fmt.Errorf("empty pool for scope")
	ErrLedgerConflict   = fmt.Errorf("round ledger conflict")
	ErrLockTimeout      = fmt.Errorf("scope lock timeout")
	ErrStoreUnavailable = fmt.Errorf("store unavailable")
)

// Service define la generación de rondas y la consulta del historial.
type Service interface {
	// Generate corre una ronda para el scope pedido y la persiste.
	Generate(ctx context.Context, tenantID string, in dto.GenerateRequest) (*dto.GenerateResponse, error)

	// History devuelve rondas del tenant, más reciente primero.
	History(ctx context.Context, tenantID string, limit, offset int) (*dto.HistoryResponse, error)
}

// Deps contiene las dependencias del rotation service.
type Deps struct {
	Rotation repository.RotationRepository
	Members  repository.MemberRepository
	Tenants  repository.TenantRepository
	Locks    *scopelock.Keyed
	Notifier *email.Notifier // nil = sin avisos

	// LockTimeout acota la espera por el lock del scope.
	LockTimeout time.Duration

	// LedgerRetries acota los reintentos de commit ante conflicto de ronda.
	LedgerRetries int

	// Intn inyecta la fuente de azar del engine (nil = rand.IntN).
	Intn func(n int) int
}

type service struct {
	deps Deps
}

// NewService crea el rotation service.
func NewService(deps Deps) Service {
	if deps.LockTimeout <= 0 {
		deps.LockTimeout = 5 * time.Second
	}
	if deps.LedgerRetries <= 0 {
		deps.LedgerRetries = 3
	}
	return &service{deps: deps}
}

func (s *service) Generate(ctx context.Context, tenantID string, in dto.GenerateRequest) (*dto.GenerateResponse, error) {
	scope := rotation.NormalizeScope(in.Scope)

	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("rotation"),
		logger.Op("Generate"),
		logger.TenantID(tenantID),
		logger.Scope(scope),
	)

	requests, err := toEngineRequests(in.Roles)
	if err != nil {
		return nil, err
	}

	// Serialización por scope: runs del mismo (tenant, scope) corren de a
	// uno; scopes distintos no se bloquean entre sí.
	lockCtx, cancel := context.WithTimeout(ctx, s.deps.LockTimeout)
	defer cancel()

	lockStart := time.Now()
	release, err := s.deps.Locks.Acquire(lockCtx, tenantID+"|"+scope)
	if err != nil {
		metrics.RecordRun("lock_timeout")
		log.Warn("scope lock timeout", logger.Duration(time.Since(lockStart)))
		return nil, ErrLockTimeout
	}
	defer release()
	metrics.RecordLockWait(time.Since(lockStart))

	// Pool del scope; para ScopeAll entra todo el tenant.
	group := scope
	if rotation.IsAllScope(scope) {
		group = ""
	}
	pool, err := s.deps.Members.ListActive(ctx, tenantID, group)
	if err != nil {
		metrics.RecordRun("error")
		log.Error("pool load failed", logger.Err(err))
		return nil, ErrStoreUnavailable
	}
	if len(pool) == 0 {
		metrics.RecordRun("empty_pool")
		return nil, ErrEmptyPool
	}

	snapshot, err := s.deps.Rotation.LoadCycles(ctx, tenantID, scope)
	if err != nil {
		metrics.RecordRun("error")
		log.Error("cycle snapshot load failed", logger.Err(err))
		return nil, ErrStoreUnavailable
	}

	result, err := rotation.Generate(pool, snapshot, requests, s.deps.Intn)
	if err != nil {
		// ErrEmptyPool del engine no debería llegar acá (pool ya chequeado)
		metrics.RecordRun("error")
		return nil, fmt.Errorf("engine: %w", err)
	}

	entry, err := s.commit(ctx, tenantID, scope, result)
	if err != nil {
		return nil, err
	}

	metrics.RecordRun("committed")
	for _, sk := range result.Skipped {
		metrics.RecordSkippedSlot(rotation.RoleKey(sk.Role))
	}

	log.Info("round committed",
		logger.Round(entry.Round),
		logger.Count(len(entry.Assignments)),
		logger.Int("skipped", len(result.Skipped)),
	)

	audit.Log(ctx, "rotation.generated", map[string]any{
		"tenant_id":   tenantID,
		"scope":       scope,
		"round":       entry.Round,
		"assignments": len(entry.Assignments),
		"skipped":     len(result.Skipped),
	})

	if s.deps.Notifier != nil {
		tenant, terr := s.deps.Tenants.GetByID(ctx, tenantID)
		if terr != nil {
			tenant = nil // resumen al tenant se pierde, avisos por miembro salen igual
		}
		s.deps.Notifier.RoundCommitted(ctx, tenant, *entry)
	}

	return toResponse(entry, result.Skipped), nil
}

// commit persiste ciclo y ronda de forma atómica. Ante un conflicto de
// numeración (otra ronda ganó el número) recalcula el número y reintenta
// el commit; la selección NO se rehace.
func (s *service) commit(ctx context.Context, tenantID, scope string, result *rotation.Result) (*repository.RoundEntry, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("rotation"),
		logger.Op("commit"),
		logger.TenantID(tenantID),
		logger.Scope(scope),
	)

	var lastErr error
	for attempt := 0; attempt <= s.deps.LedgerRetries; attempt++ {
		round, err := s.deps.Rotation.NextRound(ctx, tenantID, scope)
		if err != nil {
			log.Error("next round failed", logger.Err(err))
			metrics.RecordRun("error")
			return nil, ErrStoreUnavailable
		}

		entry := repository.RoundEntry{
			ID:          uuid.NewString(),
			TenantID:    tenantID,
			Scope:       scope,
			Round:       round,
			Assignments: result.Assignments,
			CreatedAt:   time.Now().UTC(),
		}

		err = s.deps.Rotation.CommitRun(ctx, tenantID, scope, result.Cycles, entry)
		if err == nil {
			return &entry, nil
		}
		if repository.IsConflict(err) {
			metrics.RecordLedgerConflict()
			log.Warn("round number conflict, retrying",
				logger.Round(round),
				logger.Int("attempt", attempt+1),
			)
			lastErr = err
			continue
		}

		log.Error("commit failed", logger.Err(err))
		metrics.RecordRun("error")
		return nil, ErrStoreUnavailable
	}

	metrics.RecordRun("conflict")
	log.Error("round commit exhausted retries", logger.Err(lastErr))
	return nil, ErrLedgerConflict
}

func (s *service) History(ctx context.Context, tenantID string, limit, offset int) (*dto.HistoryResponse, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	entries, err := s.deps.Rotation.History(ctx, tenantID, limit, offset)
	if err != nil {
		logger.From(ctx).Error("history load failed",
			logger.Layer("service"),
			logger.Component("rotation"),
			logger.TenantID(tenantID),
			logger.Err(err),
		)
		return nil, ErrStoreUnavailable
	}

	out := &dto.HistoryResponse{
		Entries: make([]dto.HistoryEntry, 0, len(entries)),
		Limit:   limit,
		Offset:  offset,
	}
	for _, e := range entries {
		out.Entries = append(out.Entries, dto.HistoryEntry{
			ID:          e.ID,
			Scope:       e.Scope,
			Round:       e.Round,
			Assignments: toDTOAssignments(e.Assignments),
			CreatedAt:   e.CreatedAt,
		})
	}
	return out, nil
}

// ─── Helpers ───

func toEngineRequests(roles []dto.RoleRequest) ([]rotation.RoleRequest, error) {
	if len(roles) == 0 {
		return nil, ErrNoRoleRequests
	}
	out := make([]rotation.RoleRequest, 0, len(roles))
	for _, r := range roles {
		name := strings.TrimSpace(r.Name)
		if !validation.ValidRoleName(name) || r.Count < 1 {
			return nil, ErrInvalidRole
		}
		out = append(out, rotation.RoleRequest{Name: name, Count: r.Count})
	}
	return out, nil
}

func toResponse(entry *repository.RoundEntry, skipped []rotation.SkippedSlot) *dto.GenerateResponse {
	resp := &dto.GenerateResponse{
		Round:       entry.Round,
		Scope:       entry.Scope,
		Assignments: toDTOAssignments(entry.Assignments),
	}
	for _, sk := range skipped {
		resp.Skipped = append(resp.Skipped, dto.SkippedSlot{Role: sk.Role, Reason: sk.Reason})
	}
	return resp
}

func toDTOAssignments(in []repository.Assignment) []dto.Assignment {
	out := make([]dto.Assignment, 0, len(in))
	for _, a := range in {
		out = append(out, dto.Assignment{
			MemberID:    a.MemberID,
			MemberName:  a.MemberName,
			MemberEmail: a.MemberEmail,
			Role:        a.Role,
		})
	}
	return out
}
