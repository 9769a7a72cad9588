package email

import (
	"context"

	"github.com/dropDatabas3/turnero/internal/domain/repository"
	"github.com/dropDatabas3/turnero/internal/observability/logger"
	"github.com/dropDatabas3/turnero/internal/util"
)

// Notifier despacha los avisos de una ronda ya persistida. El envío es
// best-effort: un SMTP caído nunca voltea la generación, solo se loguea.
type Notifier struct {
	sender      Sender
	tenantEmail bool // enviar resumen al tenant
}

// NewNotifier crea un Notifier sobre el Sender dado.
func NewNotifier(s Sender) *Notifier {
	return &Notifier{sender: s, tenantEmail: true}
}

// RoundCommitted envía los avisos de la ronda en segundo plano y retorna
// de inmediato. El contexto del request ya puede estar cancelado cuando
// salen los correos, por eso se corta del ciclo de vida del handler.
func (n *Notifier) RoundCommitted(ctx context.Context, tenant *repository.Tenant, entry repository.RoundEntry) {
	log := logger.From(ctx).With(
		logger.Component("Notifier"),
		logger.TenantID(entry.TenantID),
		logger.Scope(entry.Scope),
		logger.Round(entry.Round),
	)

	go func() {
		sent := 0
		for _, a := range entry.Assignments {
			if a.MemberEmail == "" {
				continue
			}
			subject, html, text := AssignmentMessage(a, entry.Scope, entry.Round)
			if err := n.sender.Send(a.MemberEmail, subject, html, text); err != nil {
				log.Warn("assignment email failed",
					logger.Email(util.MaskEmail(a.MemberEmail)),
					logger.Role(a.Role),
					logger.Err(err),
				)
				continue
			}
			sent++
		}

		if n.tenantEmail && tenant != nil && tenant.Email != "" {
			subject, html, text := SummaryMessage(entry)
			if err := n.sender.Send(tenant.Email, subject, html, text); err != nil {
				log.Warn("summary email failed", logger.Err(err))
			}
		}

		log.Info("round notifications dispatched", logger.Count(sent))
	}()
}
