// Package members implementa el registro de miembros de un tenant.
package members

import (
	"context"
	"fmt"
	"strings"

	"github.com/dropDatabas3/turnero/internal/audit"
	"github.com/dropDatabas3/turnero/internal/domain/repository"
	dto "github.com/dropDatabas3/turnero/internal/http/dto/members"
	"github.com/dropDatabas3/turnero/internal/observability/logger"
	"github.com/dropDatabas3/turnero/internal/validation"
)

// Errores del members service
var (
	ErrMissingFields    = fmt.Errorf("missing required fields")
	ErrInvalidEmail     = fmt.Errorf("invalid email")
	ErrInvalidGroup     = fmt.Errorf("invalid group name")
	ErrDuplicateMember  = fmt.Errorf("member already exists in group")
	ErrMemberNotFound   = fmt.Errorf("member not found")
	ErrStoreUnavailable = fmt.Errorf("store unavailable")
)

// Service define las operaciones sobre miembros.
type Service interface {
	// List devuelve los miembros activos del tenant.
	List(ctx context.Context, tenantID string) (*dto.ListResponse, error)

	// Create registra un miembro nuevo.
	Create(ctx context.Context, tenantID string, in dto.CreateRequest) (*dto.Member, error)

	// Remove desactiva un miembro (soft delete).
	Remove(ctx context.Context, tenantID, memberID string) error
}

type service struct {
	repo repository.MemberRepository
}

// NewService crea el members service.
func NewService(repo repository.MemberRepository) Service {
	return &service{repo: repo}
}

func (s *service) List(ctx context.Context, tenantID string) (*dto.ListResponse, error) {
	members, err := s.repo.ListActive(ctx, tenantID, "")
	if err != nil {
		logger.From(ctx).Error("member list failed",
			logger.Layer("service"),
			logger.Component("members"),
			logger.Err(err),
		)
		return nil, ErrStoreUnavailable
	}

	out := &dto.ListResponse{Members: make([]dto.Member, 0, len(members)), Total: len(members)}
	for _, m := range members {
		out.Members = append(out.Members, toDTO(m))
	}
	return out, nil
}

func (s *service) Create(ctx context.Context, tenantID string, in dto.CreateRequest) (*dto.Member, error) {
	name := strings.TrimSpace(in.Name)
	addr := strings.TrimSpace(strings.ToLower(in.Email))
	group := strings.TrimSpace(in.Group)

	if name == "" || addr == "" || group == "" {
		return nil, ErrMissingFields
	}
	if !validation.ValidEmail(addr) {
		return nil, ErrInvalidEmail
	}
	// "ALL" está reservado como scope de todos los grupos
	if !validation.ValidGroupName(group) {
		return nil, ErrInvalidGroup
	}

	m, err := s.repo.Create(ctx, repository.CreateMemberInput{
		TenantID: tenantID,
		Name:     name,
		Email:    addr,
		Group:    group,
	})
	if err != nil {
		if repository.IsConflict(err) {
			return nil, ErrDuplicateMember
		}
		logger.From(ctx).Error("member create failed",
			logger.Layer("service"),
			logger.Component("members"),
			logger.Err(err),
		)
		return nil, ErrStoreUnavailable
	}

	audit.Log(ctx, "member.created", map[string]any{
		"tenant_id": tenantID,
		"member_id": m.ID,
		"group":     m.Group,
	})

	d := toDTO(*m)
	return &d, nil
}

func (s *service) Remove(ctx context.Context, tenantID, memberID string) error {
	if strings.TrimSpace(memberID) == "" {
		return ErrMissingFields
	}

	if err := s.repo.Deactivate(ctx, tenantID, memberID); err != nil {
		if repository.IsNotFound(err) {
			return ErrMemberNotFound
		}
		logger.From(ctx).Error("member deactivate failed",
			logger.Layer("service"),
			logger.Component("members"),
			logger.MemberID(memberID),
			logger.Err(err),
		)
		return ErrStoreUnavailable
	}

	audit.Log(ctx, "member.removed", map[string]any{
		"tenant_id": tenantID,
		"member_id": memberID,
	})
	return nil
}

func toDTO(m repository.Member) dto.Member {
	return dto.Member{
		ID:        m.ID,
		Name:      m.Name,
		Email:     m.Email,
		Group:     m.Group,
		CreatedAt: m.CreatedAt,
	}
}
