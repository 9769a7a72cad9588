package rotation

import "strings"

// ScopeAll es el selector reservado para el pool completo del tenant
// (todos los grupos). Es un namespace de estado propio: su historial de
// ciclos es independiente del de cualquier grupo individual.
const ScopeAll = "ALL"

// RoleKey devuelve la clave canónica de un rol: trim + case-fold.
// Dos roles cuyos nombres colisionan bajo esta normalización comparten
// un mismo historial de rotación.
func RoleKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// RoleDisplay devuelve el nombre visible de un rol: el casing original
// con espacios recortados.
func RoleDisplay(name string) string {
	return strings.TrimSpace(name)
}

// NormalizeScope canoniza el selector de scope recibido por la API.
// Vacío o "ALL" (en cualquier casing) se convierte al sentinel ScopeAll;
// cualquier otro valor es un nombre de grupo, con espacios recortados.
func NormalizeScope(scope string) string {
	s := strings.TrimSpace(scope)
	if s == "" || strings.EqualFold(s, ScopeAll) {
		return ScopeAll
	}
	return s
}

// IsAllScope indica si el scope canónico es el sentinel de tenant completo.
func IsAllScope(scope string) bool {
	return scope == ScopeAll
}
