// Package validation valida entradas de usuario: nombres de grupo,
// roles y emails. Reglas simples por regex, sin dependencias.
package validation

import (
	"regexp"
	"strings"
)

// Group name rules:
// - Start and end with alphanumeric.
// - Middle chars may include [A-Za-z0-9 _.-].
// - Length 1..64.
// - "ALL" (any casing) is reserved as the every-group sentinel.
//
// Examples valid: turno-manana, Piso 3, equipo_a
// Examples invalid: "", " lead", "trail ", "ALL", "all", 65+ chars.
var groupNameRe = regexp.MustCompile(`^[A-Za-z0-9](?:[A-Za-z0-9 _\.-]{0,62}[A-Za-z0-9])?$`)

// Role name rules: igual charset que grupos, sin palabra reservada.
var roleNameRe = groupNameRe

// Regex permisiva; la verificación real la hace el OTP por correo.
var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// ValidGroupName retorna true si el nombre de grupo es aceptable.
// El centinela "ALL" está reservado y siempre es inválido como grupo.
func ValidGroupName(name string) bool {
	if strings.EqualFold(strings.TrimSpace(name), "ALL") {
		return false
	}
	return groupNameRe.MatchString(name)
}

// ValidRoleName retorna true si el nombre de rol (ya trimmeado) es aceptable.
func ValidRoleName(name string) bool {
	return roleNameRe.MatchString(name)
}

// ValidEmail retorna true si el email tiene forma razonable.
func ValidEmail(email string) bool {
	return len(email) <= 254 && emailRe.MatchString(email)
}
