package repository

import (
	"context"
	"time"
)

// CycleState es el estado de rotación de un scope: para cada clave de rol,
// los IDs de miembros que ya cumplieron ese rol en el ciclo vigente.
// Un set de IDs nunca contiene duplicados; cuando un ciclo se agota, el set
// se vacía completo (nunca parcialmente).
type CycleState map[string][]string

// Clone devuelve una copia profunda del estado.
// El engine trabaja siempre sobre una copia para no tocar el snapshot leído.
func (cs CycleState) Clone() CycleState {
	out := make(CycleState, len(cs))
	for k, ids := range cs {
		cp := make([]string, len(ids))
		copy(cp, ids)
		out[k] = cp
	}
	return out
}

// Assignment es una asignación (miembro, rol) dentro de una ronda.
// Role es el nombre "display" del rol (primer casing visto en el run).
type Assignment struct {
	MemberID    string `json:"member_id"`
	MemberName  string `json:"member_name"`
	MemberEmail string `json:"member_email"`
	Role        string `json:"role"`
}

// RoundEntry es un registro inmutable de una ronda ejecutada para un scope.
type RoundEntry struct {
	ID          string
	TenantID    string
	Scope       string
	Round       int
	Assignments []Assignment
	CreatedAt   time.Time
}

// RotationRepository persiste el estado de ciclos y el registro de rondas.
//
// CommitRun es la única operación de escritura y es atómica: o bien el
// estado de ciclos y la entrada de ronda quedan ambos persistidos, o ninguno.
type RotationRepository interface {
	// LoadCycles retorna el CycleState del scope (mapa vacío si no existe).
	// Es una vista de solo lectura válida durante un run del engine.
	LoadCycles(ctx context.Context, tenantID, scope string) (CycleState, error)

	// NextRound retorna 1 + el máximo round registrado para el scope,
	// o 1 si no hay rondas. Max-plus-one y no conteo de filas: el número
	// sigue siendo correcto aunque se borren entradas viejas.
	NextRound(ctx context.Context, tenantID, scope string) (int, error)

	// CommitRun reemplaza el CycleState completo del scope y agrega la
	// entrada de ronda en una sola transacción.
	// Retorna ErrConflict si (tenant, scope, round) ya existe: el caller
	// debe recalcular NextRound y reintentar solo esta escritura.
	CommitRun(ctx context.Context, tenantID, scope string, cycles CycleState, entry RoundEntry) error

	// History lista entradas del tenant, más recientes primero.
	// Paginación por limit/offset para que el recorrido sea reiniciable.
	History(ctx context.Context, tenantID string, limit, offset int) ([]RoundEntry, error)

	// DeleteRound elimina una entrada del registro (uso administrativo).
	// La numeración de rondas futuras no se ve afectada (ver NextRound).
	DeleteRound(ctx context.Context, tenantID, scope string, round int) error
}
