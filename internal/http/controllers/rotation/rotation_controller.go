// Package rotation expone los endpoints de generación de rondas e historial.
package rotation

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	dto "github.com/dropDatabas3/turnero/internal/http/dto/rotation"
	httperrors "github.com/dropDatabas3/turnero/internal/http/errors"
	"github.com/dropDatabas3/turnero/internal/http/middlewares"
	svc "github.com/dropDatabas3/turnero/internal/http/services/rotation"
	"github.com/dropDatabas3/turnero/internal/observability/logger"
)

const (
	maxBodySize     = 256 * 1024 // 256KB: listas de roles grandes
	contentTypeJSON = "application/json; charset=utf-8"
)

// Controller maneja generación e historial. Rutas detrás de RequireAuth.
type Controller struct {
	service svc.Service
}

// NewController crea el controller de rotación.
func NewController(service svc.Service) *Controller {
	return &Controller{service: service}
}

// Generate maneja POST /api/rotation/generate
func (c *Controller) Generate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenantID := middlewares.GetTenantID(ctx)
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("Rotation.Generate"))

	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	defer r.Body.Close()

	var req dto.GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.WriteError(w, httperrors.ErrInvalidJSON)
		return
	}

	result, err := c.service.Generate(ctx, tenantID, req)
	if err != nil {
		log.Debug("generate failed", logger.Err(err))
		writeRotationError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

// History maneja GET /api/history?limit=&offset=
func (c *Controller) History(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenantID := middlewares.GetTenantID(ctx)

	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)

	result, err := c.service.History(ctx, tenantID, limit, offset)
	if err != nil {
		logger.From(ctx).Debug("history failed", logger.Op("Rotation.History"), logger.Err(err))
		writeRotationError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// ─── Helpers ───

func queryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeRotationError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, svc.ErrNoRoleRequests):
		httperrors.WriteError(w, httperrors.ErrNoRoleRequests)

	case errors.Is(err, svc.ErrInvalidRole):
		httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail("role requests inválidos: name requerido y count >= 1"))

	case errors.Is(err, svc.ErrEmptyPool):
		httperrors.WriteError(w, httperrors.ErrEmptyPool)

	case errors.Is(err, svc.ErrLedgerConflict):
		httperrors.WriteError(w, httperrors.ErrLedgerConflict)

	case errors.Is(err, svc.ErrLockTimeout):
		httperrors.WriteError(w, httperrors.ErrLockTimeout)

	case errors.Is(err, svc.ErrStoreUnavailable):
		httperrors.WriteError(w, httperrors.ErrPersistenceUnavailable)

	default:
		httperrors.WriteError(w, httperrors.ErrInternalServerError)
	}
}
