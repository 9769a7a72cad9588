package pg

import (
	"context"
	"os"
	"path"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/turnero/internal/domain/repository"
	migrations "github.com/dropDatabas3/turnero/migrations/postgres"
)

// Integración real contra Postgres: corre solo con TURNERO_TEST_DSN seteado,
// aplica las migraciones embebidas y ejercita las mismas queries que usa el
// servicio. Mantiene al esquema y a los adapters honestos entre sí.
func openTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := os.Getenv("TURNERO_TEST_DSN")
	if dsn == "" {
		t.Skip("TURNERO_TEST_DSN no seteado; se omite la integración con Postgres")
	}

	ctx := context.Background()
	st, err := Open(ctx, Config{DSN: dsn})
	require.NoError(t, err)
	t.Cleanup(st.Close)

	entries, err := migrations.FS.ReadDir(migrations.Dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	for _, name := range names {
		sql, err := migrations.FS.ReadFile(path.Join(migrations.Dir, name))
		require.NoError(t, err)
		_, err = st.pool.Exec(ctx, string(sql))
		require.NoError(t, err, "migración %s", name)
	}
	return st
}

func seedPGTenant(t *testing.T, st *Store) *repository.Tenant {
	t.Helper()
	tn, err := st.Tenants.Create(context.Background(), repository.CreateTenantInput{
		Name:         "Inst",
		Email:        uuid.NewString() + "@test.local",
		PasswordHash: "$argon2id$fake",
	})
	require.NoError(t, err)
	return tn
}

func TestPG_MemberCreateAndListActive(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	tn := seedPGTenant(t, st)

	ana, err := st.Members.Create(ctx, repository.CreateMemberInput{
		TenantID: tn.ID, Name: "Ana", Email: "ana@x.com", Group: "g1",
	})
	require.NoError(t, err)
	_, err = st.Members.Create(ctx, repository.CreateMemberInput{
		TenantID: tn.ID, Name: "Bruno", Email: "bruno@x.com", Group: "g2",
	})
	require.NoError(t, err)

	all, err := st.Members.ListActive(ctx, tn.ID, "")
	require.NoError(t, err)
	require.Len(t, all, 2)

	g1, err := st.Members.ListActive(ctx, tn.ID, "g1")
	require.NoError(t, err)
	require.Len(t, g1, 1)
	assert.Equal(t, ana.ID, g1[0].ID)
	assert.Equal(t, "g1", g1[0].Group)

	// email activo duplicado en el mismo grupo choca con el índice parcial
	_, err = st.Members.Create(ctx, repository.CreateMemberInput{
		TenantID: tn.ID, Name: "Ana bis", Email: "ana@x.com", Group: "g1",
	})
	require.True(t, repository.IsConflict(err))

	// la baja libera el email para una re-alta
	require.NoError(t, st.Members.Deactivate(ctx, tn.ID, ana.ID))
	g1, err = st.Members.ListActive(ctx, tn.ID, "g1")
	require.NoError(t, err)
	require.Empty(t, g1)
	_, err = st.Members.Create(ctx, repository.CreateMemberInput{
		TenantID: tn.ID, Name: "Ana bis", Email: "ana@x.com", Group: "g1",
	})
	require.NoError(t, err)
}

func TestPG_CommitRunAndHistory(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	tn := seedPGTenant(t, st)
	scope := "ALL"

	cycles, err := st.Rotation.LoadCycles(ctx, tn.ID, scope)
	require.NoError(t, err)
	require.Empty(t, cycles)

	round, err := st.Rotation.NextRound(ctx, tn.ID, scope)
	require.NoError(t, err)
	require.Equal(t, 1, round)

	entry := repository.RoundEntry{
		ID:       uuid.NewString(),
		TenantID: tn.ID,
		Scope:    scope,
		Round:    round,
		Assignments: []repository.Assignment{
			{MemberID: "m1", MemberName: "Ana", MemberEmail: "ana@x.com", Role: "host"},
		},
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, st.Rotation.CommitRun(ctx, tn.ID, scope, repository.CycleState{"host": {"m1"}}, entry))

	// misma ronda otra vez: el UNIQUE responde con conflicto
	dup := entry
	dup.ID = uuid.NewString()
	err = st.Rotation.CommitRun(ctx, tn.ID, scope, repository.CycleState{"host": {"m1"}}, dup)
	require.True(t, repository.IsConflict(err))

	next, err := st.Rotation.NextRound(ctx, tn.ID, scope)
	require.NoError(t, err)
	require.Equal(t, 2, next)

	hist, err := st.Rotation.History(ctx, tn.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, hist, 1)
	assert.Equal(t, 1, hist[0].Round)
	assert.Equal(t, "host", hist[0].Assignments[0].Role)
}
