// Package auth implementa el registro y login de cuentas (tenants).
package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dropDatabas3/turnero/internal/audit"
	"github.com/dropDatabas3/turnero/internal/cache"
	"github.com/dropDatabas3/turnero/internal/domain/repository"
	"github.com/dropDatabas3/turnero/internal/email"
	dto "github.com/dropDatabas3/turnero/internal/http/dto/auth"
	jwtx "github.com/dropDatabas3/turnero/internal/jwt"
	"github.com/dropDatabas3/turnero/internal/observability/logger"
	"github.com/dropDatabas3/turnero/internal/security/password"
	tokens "github.com/dropDatabas3/turnero/internal/security/token"
	"github.com/dropDatabas3/turnero/internal/util"
	"github.com/dropDatabas3/turnero/internal/validation"
)

// Errores del auth service
var (
	ErrMissingFields      = fmt.Errorf("missing required fields")
	ErrInvalidEmail       = fmt.Errorf("invalid email")
	ErrEmailTaken         = fmt.Errorf("email already registered")
	ErrInvalidOTP         = fmt.Errorf("invalid or expired otp")
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")
	ErrStoreUnavailable   = fmt.Errorf("store unavailable")
)

const otpDigits = 6

// Service define las operaciones de autenticación de cuentas.
type Service interface {
	// SendOTP genera un código de verificación y lo envía por correo.
	// Rechaza emails ya registrados.
	SendOTP(ctx context.Context, in dto.SendOTPRequest) error

	// Register verifica el OTP, crea la cuenta y emite un token.
	Register(ctx context.Context, in dto.RegisterRequest) (*dto.TokenResponse, error)

	// Login verifica credenciales y emite un token.
	Login(ctx context.Context, in dto.LoginRequest) (*dto.TokenResponse, error)
}

// Deps contiene las dependencias del auth service.
type Deps struct {
	Tenants repository.TenantRepository
	Cache   cache.Client
	Sender  email.Sender
	Issuer  *jwtx.Issuer
	OTPTTL  time.Duration
}

type service struct {
	deps Deps
}

// NewService crea el auth service.
func NewService(deps Deps) Service {
	if deps.OTPTTL <= 0 {
		deps.OTPTTL = 5 * time.Minute
	}
	return &service{deps: deps}
}

func otpKey(email string) string { return "otp:" + email }

func (s *service) SendOTP(ctx context.Context, in dto.SendOTPRequest) error {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("auth"),
		logger.Op("SendOTP"),
	)

	addr := strings.TrimSpace(strings.ToLower(in.Email))
	if addr == "" {
		return ErrMissingFields
	}
	if !validation.ValidEmail(addr) {
		return ErrInvalidEmail
	}

	// Email ya registrado: no mandamos código
	if _, err := s.deps.Tenants.GetByEmail(ctx, addr); err == nil {
		return ErrEmailTaken
	} else if !repository.IsNotFound(err) {
		log.Error("tenant lookup failed", logger.Err(err))
		return ErrStoreUnavailable
	}

	code, err := tokens.GenerateOTP(otpDigits)
	if err != nil {
		return fmt.Errorf("generate otp: %w", err)
	}

	// Guardamos solo el hash; el código plano viaja únicamente por correo
	if err := s.deps.Cache.Set(ctx, otpKey(addr), tokens.SHA256Base64URL(code), s.deps.OTPTTL); err != nil {
		log.Error("otp cache set failed", logger.Err(err))
		return ErrStoreUnavailable
	}

	subject, html, text := email.OTPMessage(code, int(s.deps.OTPTTL.Minutes()))
	if err := s.deps.Sender.Send(addr, subject, html, text); err != nil {
		// si el correo no salió, el código no sirve
		_ = s.deps.Cache.Delete(ctx, otpKey(addr))
		log.Error("otp email failed", logger.Err(err))
		return fmt.Errorf("send otp email: %w", err)
	}

	log.Info("otp sent", logger.Email(util.MaskEmail(addr)))
	return nil
}

func (s *service) Register(ctx context.Context, in dto.RegisterRequest) (*dto.TokenResponse, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("auth"),
		logger.Op("Register"),
	)

	addr := strings.TrimSpace(strings.ToLower(in.Email))
	name := strings.TrimSpace(in.Name)
	if addr == "" || name == "" || in.Password == "" || in.OTP == "" {
		return nil, ErrMissingFields
	}

	hashed, err := s.deps.Cache.Get(ctx, otpKey(addr))
	if err != nil {
		if cache.IsNotFound(err) {
			return nil, ErrInvalidOTP
		}
		log.Error("otp cache get failed", logger.Err(err))
		return nil, ErrStoreUnavailable
	}
	if !tokens.VerifySHA256(strings.TrimSpace(in.OTP), hashed) {
		return nil, ErrInvalidOTP
	}

	phc, err := password.Hash(password.Default, in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	tenant, err := s.deps.Tenants.Create(ctx, repository.CreateTenantInput{
		Name:         name,
		Email:        addr,
		PasswordHash: phc,
	})
	if err != nil {
		if repository.IsConflict(err) {
			return nil, ErrEmailTaken
		}
		log.Error("tenant create failed", logger.Err(err))
		return nil, ErrStoreUnavailable
	}

	// OTP consumido
	_ = s.deps.Cache.Delete(ctx, otpKey(addr))

	audit.Log(ctx, "tenant.registered", map[string]any{
		"tenant_id": tenant.ID,
		"email":     tenant.Email,
	})

	return s.issue(tenant)
}

func (s *service) Login(ctx context.Context, in dto.LoginRequest) (*dto.TokenResponse, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("auth"),
		logger.Op("Login"),
	)

	addr := strings.TrimSpace(strings.ToLower(in.Email))
	if addr == "" || in.Password == "" {
		return nil, ErrMissingFields
	}

	tenant, err := s.deps.Tenants.GetByEmail(ctx, addr)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		log.Error("tenant lookup failed", logger.Err(err))
		return nil, ErrStoreUnavailable
	}

	if !password.Verify(in.Password, tenant.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	log.Info("login ok", logger.TenantID(tenant.ID))
	return s.issue(tenant)
}

func (s *service) issue(tenant *repository.Tenant) (*dto.TokenResponse, error) {
	tok, err := s.deps.Issuer.Sign(tenant.ID)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &dto.TokenResponse{
		AccessToken: tok,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.deps.Issuer.TTL().Seconds()),
		TenantName:  tenant.Name,
	}, nil
}
