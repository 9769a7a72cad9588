package rotation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/turnero/internal/domain/repository"
	dto "github.com/dropDatabas3/turnero/internal/http/dto/rotation"
	"github.com/dropDatabas3/turnero/internal/rotation/scopelock"
	"github.com/dropDatabas3/turnero/internal/store/adapters/memory"
)

func first(int) int { return 0 }

type fixture struct {
	store *memory.Store
	svc   Service
	locks *scopelock.Keyed
}

func newFixture(t *testing.T, rot repository.RotationRepository) *fixture {
	t.Helper()
	st := memory.New()
	if rot == nil {
		rot = st.Rotation()
	}
	locks := scopelock.New()
	svc := NewService(Deps{
		Rotation:      rot,
		Members:       st.Members(),
		Tenants:       st.Tenants(),
		Locks:         locks,
		LockTimeout:   200 * time.Millisecond,
		LedgerRetries: 3,
		Intn:          first,
	})
	return &fixture{store: st, svc: svc, locks: locks}
}

func (f *fixture) seedMembers(t *testing.T, tenantID, group string, names ...string) {
	t.Helper()
	for _, n := range names {
		_, err := f.store.Members().Create(context.Background(), repository.CreateMemberInput{
			TenantID: tenantID,
			Name:     n,
			Email:    n + "@example.com",
			Group:    group,
		})
		require.NoError(t, err)
	}
}

func TestGenerate_HappyPathAndMonotonicRounds(t *testing.T) {
	f := newFixture(t, nil)
	f.seedMembers(t, "t1", "g1", "Ana", "Bruno", "Clara")

	req := dto.GenerateRequest{
		Scope: "ALL",
		Roles: []dto.RoleRequest{{Name: "Host", Count: 1}, {Name: "News", Count: 2}},
	}

	res, err := f.svc.Generate(context.Background(), "t1", req)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Round)
	assert.Equal(t, "ALL", res.Scope)
	require.Len(t, res.Assignments, 3)
	assert.Empty(t, res.Skipped)

	// Sin double-booking dentro del run
	seen := map[string]bool{}
	for _, a := range res.Assignments {
		assert.False(t, seen[a.MemberID])
		seen[a.MemberID] = true
	}

	// Round estrictamente creciente de a 1
	res2, err := f.svc.Generate(context.Background(), "t1", req)
	require.NoError(t, err)
	assert.Equal(t, 2, res2.Round)

	// Ciclos persistidos
	cs, err := f.store.Rotation().LoadCycles(context.Background(), "t1", "ALL")
	require.NoError(t, err)
	assert.Len(t, cs["host"], 2)
}

func TestGenerate_ScopeFiltersPool(t *testing.T) {
	f := newFixture(t, nil)
	f.seedMembers(t, "t1", "g1", "Ana")
	f.seedMembers(t, "t1", "g2", "Bruno")

	res, err := f.svc.Generate(context.Background(), "t1", dto.GenerateRequest{
		Scope: "g1",
		Roles: []dto.RoleRequest{{Name: "Host", Count: 2}},
	})
	require.NoError(t, err)
	require.Len(t, res.Assignments, 1)
	assert.Equal(t, "Ana", res.Assignments[0].MemberName)
	require.Len(t, res.Skipped, 1)
}

func TestGenerate_EmptyPool(t *testing.T) {
	f := newFixture(t, nil)
	f.seedMembers(t, "t1", "g1", "Ana")

	_, err := f.svc.Generate(context.Background(), "t1", dto.GenerateRequest{
		Scope: "g-vacio",
		Roles: []dto.RoleRequest{{Name: "Host", Count: 1}},
	})
	require.ErrorIs(t, err, ErrEmptyPool)

	// nada persistido
	entries, _ := f.store.Rotation().History(context.Background(), "t1", 10, 0)
	assert.Empty(t, entries)
}

func TestGenerate_ValidatesRoles(t *testing.T) {
	f := newFixture(t, nil)
	f.seedMembers(t, "t1", "g1", "Ana")

	_, err := f.svc.Generate(context.Background(), "t1", dto.GenerateRequest{Scope: "ALL"})
	require.ErrorIs(t, err, ErrNoRoleRequests)

	_, err = f.svc.Generate(context.Background(), "t1", dto.GenerateRequest{
		Scope: "ALL",
		Roles: []dto.RoleRequest{{Name: "Host", Count: 0}},
	})
	require.ErrorIs(t, err, ErrInvalidRole)

	_, err = f.svc.Generate(context.Background(), "t1", dto.GenerateRequest{
		Scope: "ALL",
		Roles: []dto.RoleRequest{{Name: "   ", Count: 1}},
	})
	require.ErrorIs(t, err, ErrInvalidRole)
}

func TestGenerate_LockTimeout(t *testing.T) {
	f := newFixture(t, nil)
	f.seedMembers(t, "t1", "g1", "Ana")

	// Otro run tiene el lock del scope.
	release, err := f.locks.Acquire(context.Background(), "t1|ALL")
	require.NoError(t, err)
	defer release()

	_, err = f.svc.Generate(context.Background(), "t1", dto.GenerateRequest{
		Scope: "ALL",
		Roles: []dto.RoleRequest{{Name: "Host", Count: 1}},
	})
	require.ErrorIs(t, err, ErrLockTimeout)
}

// conflictOnce fuerza ErrConflict en los primeros N commits para simular
// otra ronda ganando el número.
type conflictOnce struct {
	repository.RotationRepository
	remaining int
	rounds    []int
}

func (c *conflictOnce) CommitRun(ctx context.Context, tenantID, scope string, cycles repository.CycleState, entry repository.RoundEntry) error {
	c.rounds = append(c.rounds, entry.Round)
	if c.remaining > 0 {
		c.remaining--
		// Simular al ganador: ocupa el número que este commit quería.
		winner := repository.RoundEntry{Round: entry.Round, CreatedAt: entry.CreatedAt}
		if err := c.RotationRepository.CommitRun(ctx, tenantID, scope, cycles, winner); err != nil {
			return err
		}
		return repository.ErrConflict
	}
	return c.RotationRepository.CommitRun(ctx, tenantID, scope, cycles, entry)
}

func TestGenerate_RetriesLedgerConflict(t *testing.T) {
	st := memory.New()
	inner := &conflictOnce{RotationRepository: st.Rotation(), remaining: 1}
	f := newFixture(t, inner)
	// fixture crea su propio store para members; sembramos en ese
	f.seedMembers(t, "t1", "g1", "Ana", "Bruno")

	res, err := f.svc.Generate(context.Background(), "t1", dto.GenerateRequest{
		Scope: "ALL",
		Roles: []dto.RoleRequest{{Name: "Host", Count: 1}},
	})
	require.NoError(t, err)

	// Primer intento quiso round 1, el reintento recalculó a 2.
	require.Equal(t, []int{1, 2}, inner.rounds)
	assert.Equal(t, 2, res.Round)
	require.Len(t, res.Assignments, 1, "la selección no se rehace en el reintento")
}

func TestGenerate_ConflictExhaustsRetries(t *testing.T) {
	st := memory.New()
	inner := &conflictOnce{RotationRepository: st.Rotation(), remaining: 99}
	f := newFixture(t, inner)
	f.seedMembers(t, "t1", "g1", "Ana")

	_, err := f.svc.Generate(context.Background(), "t1", dto.GenerateRequest{
		Scope: "ALL",
		Roles: []dto.RoleRequest{{Name: "Host", Count: 1}},
	})
	require.ErrorIs(t, err, ErrLedgerConflict)
}

func TestHistory_PaginatesAndMaps(t *testing.T) {
	f := newFixture(t, nil)
	f.seedMembers(t, "t1", "g1", "Ana")

	for i := 0; i < 3; i++ {
		_, err := f.svc.Generate(context.Background(), "t1", dto.GenerateRequest{
			Scope: "ALL",
			Roles: []dto.RoleRequest{{Name: "Host", Count: 1}},
		})
		require.NoError(t, err)
	}

	res, err := f.svc.History(context.Background(), "t1", 2, 0)
	require.NoError(t, err)
	require.Len(t, res.Entries, 2)
	assert.Equal(t, 3, res.Entries[0].Round)
	assert.Equal(t, 2, res.Entries[1].Round)
	assert.Equal(t, 2, res.Limit)

	// límites fuera de rango caen al default
	res, err = f.svc.History(context.Background(), "t1", -1, -5)
	require.NoError(t, err)
	assert.Equal(t, 50, res.Limit)
	assert.Equal(t, 0, res.Offset)
	assert.Len(t, res.Entries, 3)
}
