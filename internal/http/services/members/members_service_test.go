package members

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dto "github.com/dropDatabas3/turnero/internal/http/dto/members"
	"github.com/dropDatabas3/turnero/internal/store/adapters/memory"
)

func newService(t *testing.T) Service {
	t.Helper()
	return NewService(memory.New().Members())
}

func TestCreateAndList(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	m, err := svc.Create(ctx, "t1", dto.CreateRequest{Name: " Ana ", Email: "ANA@Example.com", Group: "piso-3"})
	require.NoError(t, err)
	assert.Equal(t, "Ana", m.Name, "nombre trimmeado")
	assert.Equal(t, "ana@example.com", m.Email, "email normalizado")
	assert.NotEmpty(t, m.ID)

	res, err := svc.List(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Total)

	// otro tenant no ve nada
	res, err = svc.List(ctx, "t2")
	require.NoError(t, err)
	assert.Equal(t, 0, res.Total)
}

func TestCreate_Validation(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, "t1", dto.CreateRequest{Email: "a@x.com", Group: "g"})
	require.ErrorIs(t, err, ErrMissingFields)

	_, err = svc.Create(ctx, "t1", dto.CreateRequest{Name: "A", Email: "no-email", Group: "g"})
	require.ErrorIs(t, err, ErrInvalidEmail)

	// "ALL" reservado como scope
	_, err = svc.Create(ctx, "t1", dto.CreateRequest{Name: "A", Email: "a@x.com", Group: "all"})
	require.ErrorIs(t, err, ErrInvalidGroup)
}

func TestCreate_Duplicate(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, "t1", dto.CreateRequest{Name: "A", Email: "a@x.com", Group: "g"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, "t1", dto.CreateRequest{Name: "A2", Email: "a@x.com", Group: "g"})
	require.ErrorIs(t, err, ErrDuplicateMember)
}

func TestRemove(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	m, err := svc.Create(ctx, "t1", dto.CreateRequest{Name: "A", Email: "a@x.com", Group: "g"})
	require.NoError(t, err)

	require.NoError(t, svc.Remove(ctx, "t1", m.ID))

	res, _ := svc.List(ctx, "t1")
	assert.Equal(t, 0, res.Total)

	require.ErrorIs(t, svc.Remove(ctx, "t1", m.ID), ErrMemberNotFound)
	require.ErrorIs(t, svc.Remove(ctx, "t1", ""), ErrMissingFields)
}
