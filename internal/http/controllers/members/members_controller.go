// Package members expone los endpoints del registro de miembros.
package members

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	dto "github.com/dropDatabas3/turnero/internal/http/dto/members"
	httperrors "github.com/dropDatabas3/turnero/internal/http/errors"
	"github.com/dropDatabas3/turnero/internal/http/middlewares"
	svc "github.com/dropDatabas3/turnero/internal/http/services/members"
	"github.com/dropDatabas3/turnero/internal/observability/logger"
)

const (
	maxBodySize     = 64 * 1024 // 64KB
	contentTypeJSON = "application/json; charset=utf-8"
)

// Controller maneja los endpoints de miembros. Todas las rutas asumen
// RequireAuth aplicado: el tenant sale del contexto.
type Controller struct {
	service svc.Service
}

// NewController crea el controller de miembros.
func NewController(service svc.Service) *Controller {
	return &Controller{service: service}
}

// List maneja GET /api/members
func (c *Controller) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenantID := middlewares.GetTenantID(ctx)

	result, err := c.service.List(ctx, tenantID)
	if err != nil {
		logger.From(ctx).Debug("member list failed", logger.Op("Members.List"), logger.Err(err))
		writeMembersError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// Create maneja POST /api/members
func (c *Controller) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenantID := middlewares.GetTenantID(ctx)

	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	defer r.Body.Close()

	var req dto.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.WriteError(w, httperrors.ErrInvalidJSON)
		return
	}

	member, err := c.service.Create(ctx, tenantID, req)
	if err != nil {
		logger.From(ctx).Debug("member create failed", logger.Op("Members.Create"), logger.Err(err))
		writeMembersError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, member)
}

// Remove maneja DELETE /api/members/{id}
func (c *Controller) Remove(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenantID := middlewares.GetTenantID(ctx)
	memberID := chi.URLParam(r, "id")

	if err := c.service.Remove(ctx, tenantID, memberID); err != nil {
		logger.From(ctx).Debug("member remove failed",
			logger.Op("Members.Remove"),
			logger.MemberID(memberID),
			logger.Err(err),
		)
		writeMembersError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ─── Helpers ───

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeMembersError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, svc.ErrMissingFields):
		httperrors.WriteError(w, httperrors.ErrMissingFields)

	case errors.Is(err, svc.ErrInvalidEmail):
		httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail("email inválido"))

	case errors.Is(err, svc.ErrInvalidGroup):
		httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail("nombre de grupo inválido"))

	case errors.Is(err, svc.ErrDuplicateMember):
		httperrors.WriteError(w, httperrors.ErrAlreadyExists.WithDetail("miembro ya existe en el grupo"))

	case errors.Is(err, svc.ErrMemberNotFound):
		httperrors.WriteError(w, httperrors.ErrMemberNotFound)

	case errors.Is(err, svc.ErrStoreUnavailable):
		httperrors.WriteError(w, httperrors.ErrPersistenceUnavailable)

	default:
		httperrors.WriteError(w, httperrors.ErrInternalServerError)
	}
}
