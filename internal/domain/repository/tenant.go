package repository

import (
	"context"
	"time"
)

// Tenant representa una cuenta (institución) dueña de sus miembros,
// estados de ciclo y registro de rondas.
type Tenant struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// CreateTenantInput contiene los datos para crear un tenant.
type CreateTenantInput struct {
	Name         string
	Email        string
	PasswordHash string
}

// TenantRepository define operaciones sobre tenants.
type TenantRepository interface {
	// GetByEmail busca un tenant por email.
	// Retorna ErrNotFound si no existe.
	GetByEmail(ctx context.Context, email string) (*Tenant, error)

	// GetByID busca un tenant por ID.
	// Retorna ErrNotFound si no existe.
	GetByID(ctx context.Context, tenantID string) (*Tenant, error)

	// Create crea un nuevo tenant.
	// Retorna ErrConflict si el email ya está registrado.
	Create(ctx context.Context, input CreateTenantInput) (*Tenant, error)
}
