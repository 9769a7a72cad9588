package repository

import (
	"context"
	"time"
)

// Member representa un miembro registrado de un tenant, asociado a un grupo.
// La eliminación es lógica (Active=false) para no romper el historial de rondas.
type Member struct {
	ID        string
	TenantID  string
	Name      string
	Email     string
	Group     string
	Active    bool
	CreatedAt time.Time
}

// CreateMemberInput contiene los datos para registrar un miembro.
type CreateMemberInput struct {
	TenantID string
	Name     string
	Email    string
	Group    string
}

// MemberRepository define operaciones sobre miembros.
type MemberRepository interface {
	// ListActive lista los miembros activos de un tenant.
	// Si group es vacío, lista los de todos los grupos del tenant.
	// El resultado no contiene IDs duplicados.
	ListActive(ctx context.Context, tenantID, group string) ([]Member, error)

	// Create registra un nuevo miembro.
	// Retorna ErrConflict si ya existe un miembro activo con el mismo
	// email en el mismo grupo.
	Create(ctx context.Context, input CreateMemberInput) (*Member, error)

	// Deactivate marca un miembro como inactivo (soft delete).
	// Retorna ErrNotFound si no existe o no pertenece al tenant.
	Deactivate(ctx context.Context, tenantID, memberID string) error
}
