// Package rotation contiene los DTOs de generación de rondas e historial.
package rotation

import "time"

// RoleRequest pide count asignaciones del rol name en una ronda.
type RoleRequest struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// GenerateRequest es el body de POST /api/rotation/generate.
// Scope vacío o "ALL" (cualquier casing) significa todos los grupos.
type GenerateRequest struct {
	Scope string        `json:"scope"`
	Roles []RoleRequest `json:"roles"`
}

// Assignment es una asignación miembro→rol dentro de la ronda.
type Assignment struct {
	MemberID    string `json:"member_id"`
	MemberName  string `json:"member_name"`
	MemberEmail string `json:"member_email"`
	Role        string `json:"role"`
}

// SkippedSlot es un slot que no pudo asignarse en esta ronda.
type SkippedSlot struct {
	Role   string `json:"role"`
	Reason string `json:"reason"`
}

// GenerateResponse es la respuesta de una ronda generada.
type GenerateResponse struct {
	Round       int           `json:"round"`
	Scope       string        `json:"scope"`
	Assignments []Assignment  `json:"assignments"`
	Skipped     []SkippedSlot `json:"skipped,omitempty"`
}

// HistoryEntry es una ronda ya registrada.
type HistoryEntry struct {
	ID          string       `json:"id"`
	Scope       string       `json:"scope"`
	Round       int          `json:"round"`
	Assignments []Assignment `json:"assignments"`
	CreatedAt   time.Time    `json:"created_at"`
}

// HistoryResponse envuelve el historial paginado, más reciente primero.
type HistoryResponse struct {
	Entries []HistoryEntry `json:"entries"`
	Limit   int            `json:"limit"`
	Offset  int            `json:"offset"`
}
