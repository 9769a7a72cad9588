// Package auth expone los endpoints de autenticación de cuentas.
package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	dto "github.com/dropDatabas3/turnero/internal/http/dto/auth"
	httperrors "github.com/dropDatabas3/turnero/internal/http/errors"
	svc "github.com/dropDatabas3/turnero/internal/http/services/auth"
	"github.com/dropDatabas3/turnero/internal/observability/logger"
)

const (
	maxBodySize     = 64 * 1024 // 64KB
	contentTypeJSON = "application/json; charset=utf-8"
)

// Controller maneja los endpoints de auth.
type Controller struct {
	service svc.Service
}

// NewController crea el controller de auth.
func NewController(service svc.Service) *Controller {
	return &Controller{service: service}
}

// SendOTP maneja POST /api/auth/send-otp
func (c *Controller) SendOTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("Auth.SendOTP"))

	var req dto.SendOTPRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := c.service.SendOTP(ctx, req); err != nil {
		log.Debug("send otp failed", logger.Err(err))
		writeAuthError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.SendOTPResponse{Message: "código enviado"})
}

// Register maneja POST /api/auth/register
func (c *Controller) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("Auth.Register"))

	var req dto.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := c.service.Register(ctx, req)
	if err != nil {
		log.Debug("register failed", logger.Err(err))
		writeAuthError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

// Login maneja POST /api/auth/login
func (c *Controller) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("Auth.Login"))

	var req dto.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := c.service.Login(ctx, req)
	if err != nil {
		log.Debug("login failed", logger.Err(err))
		writeAuthError(w, err)
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, result)
}

// ─── Helpers ───

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	defer r.Body.Close()

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		httperrors.WriteError(w, httperrors.ErrInvalidJSON)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeAuthError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, svc.ErrMissingFields):
		httperrors.WriteError(w, httperrors.ErrMissingFields)

	case errors.Is(err, svc.ErrInvalidEmail):
		httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail("email inválido"))

	case errors.Is(err, svc.ErrEmailTaken):
		httperrors.WriteError(w, httperrors.ErrAlreadyExists.WithDetail("email ya registrado"))

	case errors.Is(err, svc.ErrInvalidOTP):
		httperrors.WriteError(w, httperrors.ErrInvalidOTP)

	case errors.Is(err, svc.ErrInvalidCredentials):
		httperrors.WriteError(w, httperrors.ErrInvalidCredentials)

	case errors.Is(err, svc.ErrStoreUnavailable):
		httperrors.WriteError(w, httperrors.ErrPersistenceUnavailable)

	default:
		httperrors.WriteError(w, httperrors.ErrInternalServerError)
	}
}
