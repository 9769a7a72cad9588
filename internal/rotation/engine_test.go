package rotation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/turnero/internal/domain/repository"
)

// first siempre elige el primer elegible: vuelve los sorteos deterministas.
func first(int) int { return 0 }

func pool(names ...string) []repository.Member {
	out := make([]repository.Member, 0, len(names))
	for _, n := range names {
		out = append(out, repository.Member{
			ID:    "id-" + n,
			Name:  n,
			Email: n + "@example.com",
		})
	}
	return out
}

func TestGenerate_NoRoleRequests(t *testing.T) {
	_, err := Generate(pool("A"), nil, nil, first)
	require.ErrorIs(t, err, ErrNoRoleRequests)
}

func TestGenerate_EmptyPool(t *testing.T) {
	_, err := Generate(nil, nil, []RoleRequest{{Name: "Host", Count: 1}}, first)
	require.ErrorIs(t, err, ErrEmptyPool)
}

func TestGenerate_NoDoubleBookingPerRun(t *testing.T) {
	res, err := Generate(
		pool("A", "B", "C", "D"),
		nil,
		[]RoleRequest{{Name: "Host", Count: 2}, {Name: "News", Count: 2}},
		first,
	)
	require.NoError(t, err)
	require.Len(t, res.Assignments, 4)

	seen := map[string]bool{}
	for _, a := range res.Assignments {
		assert.False(t, seen[a.MemberID], "member %s asignado dos veces", a.MemberID)
		seen[a.MemberID] = true
	}
}

func TestGenerate_ScenarioHostNews(t *testing.T) {
	// pool = {A,B,C}; request = Host×1, News×2
	res, err := Generate(
		pool("A", "B", "C"),
		nil,
		[]RoleRequest{{Name: "Host", Count: 1}, {Name: "News", Count: 2}},
		first,
	)
	require.NoError(t, err)
	require.Len(t, res.Assignments, 3)
	require.Empty(t, res.Skipped)

	ids := map[string]bool{}
	for _, a := range res.Assignments {
		ids[a.MemberID] = true
	}
	assert.Len(t, ids, 3, "las 3 asignaciones son entidades distintas")

	assert.Len(t, res.Cycles["host"], 1)
	assert.Len(t, res.Cycles["news"], 2)
}

func TestGenerate_ScenarioReaderTimesThree(t *testing.T) {
	// pool = {A,B}; Reader×3 en un solo run: 2 asignaciones, 1 skip y el
	// historial persistido de "reader" queda vacío (reset sin re-agregado).
	res, err := Generate(
		pool("A", "B"),
		nil,
		[]RoleRequest{{Name: "Reader", Count: 3}},
		first,
	)
	require.NoError(t, err)
	require.Len(t, res.Assignments, 2)
	require.Len(t, res.Skipped, 1)
	assert.Equal(t, "Reader", res.Skipped[0].Role)
	assert.Equal(t, SkipReasonPoolExhausted, res.Skipped[0].Reason)

	assert.Empty(t, res.Cycles["reader"], "historial reseteado y sin re-agregados")
}

func TestGenerate_RoleKeyCollision(t *testing.T) {
	// "News" y " news " colisionan a la misma key y comparten historial.
	res, err := Generate(
		pool("A", "B", "C"),
		nil,
		[]RoleRequest{{Name: "News", Count: 1}, {Name: " news ", Count: 1}},
		first,
	)
	require.NoError(t, err)
	require.Len(t, res.Assignments, 2)

	assert.Len(t, res.Cycles["news"], 2)
	_, exists := res.Cycles[" news "]
	assert.False(t, exists)

	// display name: primer casing visto en el run
	assert.Equal(t, "News", res.Assignments[0].Role)
	assert.Equal(t, "News", res.Assignments[1].Role)
}

func TestGenerate_CycleCompletenessBeforeRepeat(t *testing.T) {
	// Pool de N=3: los primeros 3 slots del rol (a través de varios runs)
	// cubren 3 entidades distintas; el 4to dispara el reset.
	members := pool("A", "B", "C")
	cycles := repository.CycleState{}

	seen := map[string]bool{}
	for i := 0; i < 3; i++ {
		res, err := Generate(members, cycles, []RoleRequest{{Name: "Host", Count: 1}}, first)
		require.NoError(t, err)
		require.Len(t, res.Assignments, 1)
		seen[res.Assignments[0].MemberID] = true
		cycles = res.Cycles
	}
	assert.Len(t, seen, 3, "ciclo completo antes de repetir")
	require.Len(t, cycles["host"], 3)

	// Cuarto slot: exhaustion → reset → una sola entrada nueva.
	res, err := Generate(members, cycles, []RoleRequest{{Name: "Host", Count: 1}}, first)
	require.NoError(t, err)
	require.Len(t, res.Assignments, 1)
	assert.Len(t, res.Cycles["host"], 1)
}

func TestGenerate_SkipCount(t *testing.T) {
	// count > pool: exactamente count − poolSize skips.
	res, err := Generate(
		pool("A", "B", "C"),
		nil,
		[]RoleRequest{{Name: "Host", Count: 7}},
		first,
	)
	require.NoError(t, err)
	assert.Len(t, res.Assignments, 3)
	assert.Len(t, res.Skipped, 4)
}

func TestGenerate_SnapshotNotMutated(t *testing.T) {
	snapshot := repository.CycleState{"host": {"id-A"}}
	res, err := Generate(pool("A", "B"), snapshot, []RoleRequest{{Name: "Host", Count: 1}}, first)
	require.NoError(t, err)

	assert.Equal(t, []string{"id-A"}, snapshot["host"], "el snapshot de entrada no se muta")
	assert.Len(t, res.Cycles["host"], 2)
}

func TestGenerate_HistoryExcludesMembers(t *testing.T) {
	// A ya está en el historial de host: el slot cae en B.
	res, err := Generate(
		pool("A", "B"),
		repository.CycleState{"host": {"id-A"}},
		[]RoleRequest{{Name: "Host", Count: 1}},
		first,
	)
	require.NoError(t, err)
	require.Len(t, res.Assignments, 1)
	assert.Equal(t, "id-B", res.Assignments[0].MemberID)
}

func TestGenerate_UsesInjectedRand(t *testing.T) {
	last := func(n int) int { return n - 1 }
	res, err := Generate(pool("A", "B", "C"), nil, []RoleRequest{{Name: "Host", Count: 1}}, last)
	require.NoError(t, err)
	require.Len(t, res.Assignments, 1)
	assert.Equal(t, "id-C", res.Assignments[0].MemberID)
}

func TestGenerate_OrderPolicy(t *testing.T) {
	// El primer rol de la lista llena primero; el último sufre los skips.
	res, err := Generate(
		pool("A", "B"),
		nil,
		[]RoleRequest{{Name: "Host", Count: 2}, {Name: "News", Count: 1}},
		first,
	)
	require.NoError(t, err)
	require.Len(t, res.Assignments, 2)
	assert.Equal(t, "Host", res.Assignments[0].Role)
	assert.Equal(t, "Host", res.Assignments[1].Role)
	require.Len(t, res.Skipped, 1)
	assert.Equal(t, "News", res.Skipped[0].Role)
}
