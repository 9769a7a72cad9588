// Package memory implementa los repositorios de dominio en memoria.
// Se usa en tests y en modo dev sin base de datos; el estado se pierde
// al reiniciar el proceso.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dropDatabas3/turnero/internal/domain/repository"
)

// Store agrupa los repositorios en memoria compartiendo un mutex.
type Store struct {
	mu sync.RWMutex

	tenants map[string]repository.Tenant
	members map[string]repository.Member
	cycles  map[string]repository.CycleState   // clave tenant|scope
	rounds  map[string][]repository.RoundEntry // clave tenant
}

// New crea un Store vacío.
func New() *Store {
	return &Store{
		tenants: make(map[string]repository.Tenant),
		members: make(map[string]repository.Member),
		cycles:  make(map[string]repository.CycleState),
		rounds:  make(map[string][]repository.RoundEntry),
	}
}

// Tenants retorna el repositorio de tenants.
func (s *Store) Tenants() repository.TenantRepository { return (*tenantRepo)(s) }

// Members retorna el repositorio de miembros.
func (s *Store) Members() repository.MemberRepository { return (*memberRepo)(s) }

// Rotation retorna el repositorio de rotación.
func (s *Store) Rotation() repository.RotationRepository { return (*rotationRepo)(s) }

func cycleKey(tenantID, scope string) string { return tenantID + "|" + scope }

// ─── TenantRepository ───

type tenantRepo Store

func (r *tenantRepo) GetByEmail(_ context.Context, email string) (*repository.Tenant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, t := range r.tenants {
		if t.Email == email {
			cp := t
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *tenantRepo) GetByID(_ context.Context, tenantID string) (*repository.Tenant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tenants[tenantID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := t
	return &cp, nil
}

func (r *tenantRepo) Create(_ context.Context, input repository.CreateTenantInput) (*repository.Tenant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tenants {
		if t.Email == input.Email {
			return nil, repository.ErrConflict
		}
	}
	t := repository.Tenant{
		ID:           uuid.NewString(),
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: input.PasswordHash,
		CreatedAt:    time.Now().UTC(),
	}
	r.tenants[t.ID] = t
	cp := t
	return &cp, nil
}

// ─── MemberRepository ───

type memberRepo Store

func (r *memberRepo) ListActive(_ context.Context, tenantID, group string) ([]repository.Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []repository.Member
	for _, m := range r.members {
		if m.TenantID != tenantID || !m.Active {
			continue
		}
		if group != "" && m.Group != group {
			continue
		}
		out = append(out, m)
	}
	// Orden estable, igual que el adapter PG.
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *memberRepo) Create(_ context.Context, input repository.CreateMemberInput) (*repository.Member, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.members {
		if m.TenantID == input.TenantID && m.Active && m.Email == input.Email && m.Group == input.Group {
			return nil, repository.ErrConflict
		}
	}
	m := repository.Member{
		ID:        uuid.NewString(),
		TenantID:  input.TenantID,
		Name:      input.Name,
		Email:     input.Email,
		Group:     input.Group,
		Active:    true,
		CreatedAt: time.Now().UTC(),
	}
	r.members[m.ID] = m
	cp := m
	return &cp, nil
}

func (r *memberRepo) Deactivate(_ context.Context, tenantID, memberID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.members[memberID]
	if !ok || m.TenantID != tenantID || !m.Active {
		return repository.ErrNotFound
	}
	m.Active = false
	r.members[memberID] = m
	return nil
}

// ─── RotationRepository ───

type rotationRepo Store

func (r *rotationRepo) LoadCycles(_ context.Context, tenantID, scope string) (repository.CycleState, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cs, ok := r.cycles[cycleKey(tenantID, scope)]
	if !ok {
		return repository.CycleState{}, nil
	}
	return cs.Clone(), nil
}

func (r *rotationRepo) NextRound(_ context.Context, tenantID, scope string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.nextRoundLocked(tenantID, scope), nil
}

func (r *rotationRepo) nextRoundLocked(tenantID, scope string) int {
	max := 0
	for _, e := range r.rounds[tenantID] {
		if e.Scope == scope && e.Round > max {
			max = e.Round
		}
	}
	return max + 1
}

func (r *rotationRepo) CommitRun(_ context.Context, tenantID, scope string, cycles repository.CycleState, entry repository.RoundEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.rounds[tenantID] {
		if e.Scope == scope && e.Round == entry.Round {
			return repository.ErrConflict
		}
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	entry.TenantID = tenantID
	entry.Scope = scope
	r.cycles[cycleKey(tenantID, scope)] = cycles.Clone()
	r.rounds[tenantID] = append(r.rounds[tenantID], entry)
	return nil
}

func (r *rotationRepo) History(_ context.Context, tenantID string, limit, offset int) ([]repository.RoundEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if limit <= 0 {
		limit = 50
	}
	entries := make([]repository.RoundEntry, len(r.rounds[tenantID]))
	copy(entries, r.rounds[tenantID])
	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].CreatedAt.Equal(entries[j].CreatedAt) {
			return entries[i].CreatedAt.After(entries[j].CreatedAt)
		}
		return entries[i].Round > entries[j].Round
	})
	if offset >= len(entries) {
		return nil, nil
	}
	entries = entries[offset:]
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func (r *rotationRepo) DeleteRound(_ context.Context, tenantID, scope string, round int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	entries := r.rounds[tenantID]
	for i, e := range entries {
		if e.Scope == scope && e.Round == round {
			r.rounds[tenantID] = append(entries[:i:i], entries[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}
