// Package members contiene los DTOs del registro de miembros.
package members

import "time"

// CreateRequest es el body de POST /api/members.
type CreateRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Group string `json:"group"`
}

// Member es la representación pública de un miembro.
type Member struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Group     string    `json:"group"`
	CreatedAt time.Time `json:"created_at"`
}

// ListResponse envuelve el listado de miembros activos.
type ListResponse struct {
	Members []Member `json:"members"`
	Total   int      `json:"total"`
}
