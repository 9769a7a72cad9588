package email

import (
	"fmt"
	"strings"

	"github.com/dropDatabas3/turnero/internal/domain/repository"
)

// OTPMessage arma el correo del código de verificación.
func OTPMessage(code string, ttlMinutes int) (subject, html, text string) {
	subject = "Tu código de acceso"
	html = fmt.Sprintf(`<div style="font-family:sans-serif;max-width:480px;margin:0 auto">
  <h2>Código de acceso</h2>
  <p>Usá este código para ingresar:</p>
  <p style="font-size:32px;letter-spacing:6px;font-weight:bold">%s</p>
  <p style="color:#666">Vence en %d minutos. Si no lo pediste, ignorá este correo.</p>
</div>`, code, ttlMinutes)
	text = fmt.Sprintf("Tu código de acceso es: %s\nVence en %d minutos.", code, ttlMinutes)
	return subject, html, text
}

// assignmentSubject arma el asunto del aviso individual. El rol "host"
// lleva la marca [HOST DUTY] para que resalte en la bandeja.
func assignmentSubject(a repository.Assignment, round int) string {
	if strings.EqualFold(a.Role, "host") {
		return fmt.Sprintf("[HOST DUTY] Te toca ser host (ronda %d)", round)
	}
	return fmt.Sprintf("Te toca: %s (ronda %d)", a.Role, round)
}

// AssignmentMessage arma el aviso individual a un miembro asignado.
func AssignmentMessage(a repository.Assignment, scope string, round int) (subject, html, text string) {
	subject = assignmentSubject(a, round)
	html = fmt.Sprintf(`<div style="font-family:sans-serif;max-width:480px;margin:0 auto">
  <h2>Hola %s</h2>
  <p>En la ronda <b>%d</b> (%s) te toca el rol:</p>
  <p style="font-size:24px;font-weight:bold">%s</p>
</div>`, a.MemberName, round, scopeLabel(scope), a.Role)
	text = fmt.Sprintf("Hola %s: en la ronda %d (%s) te toca el rol %s.",
		a.MemberName, round, scopeLabel(scope), a.Role)
	return subject, html, text
}

// SummaryMessage arma el resumen de la ronda para el tenant.
func SummaryMessage(entry repository.RoundEntry) (subject, html, text string) {
	subject = fmt.Sprintf("Ronda %d generada (%s)", entry.Round, scopeLabel(entry.Scope))

	var rows, lines strings.Builder
	for _, a := range entry.Assignments {
		rows.WriteString(fmt.Sprintf("<tr><td style=\"padding:4px 12px\">%s</td><td style=\"padding:4px 12px\">%s</td></tr>", a.Role, a.MemberName))
		lines.WriteString(fmt.Sprintf("  %s: %s\n", a.Role, a.MemberName))
	}

	html = fmt.Sprintf(`<div style="font-family:sans-serif;max-width:480px;margin:0 auto">
  <h2>Ronda %d: %s</h2>
  <table style="border-collapse:collapse">
    <tr><th style="text-align:left;padding:4px 12px">Rol</th><th style="text-align:left;padding:4px 12px">Miembro</th></tr>
    %s
  </table>
</div>`, entry.Round, scopeLabel(entry.Scope), rows.String())
	text = fmt.Sprintf("Ronda %d (%s):\n%s", entry.Round, scopeLabel(entry.Scope), lines.String())
	return subject, html, text
}

func scopeLabel(scope string) string {
	if scope == "ALL" {
		return "todos los grupos"
	}
	return "grupo " + scope
}
