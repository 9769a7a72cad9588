package rotation

import (
	"errors"
	"math/rand"

	"github.com/dropDatabas3/turnero/internal/domain/repository"
)

// Errores del engine. Ambos son fatales para el run: nada se persiste.
var (
	ErrEmptyPool      = errors.New("no active members in scope")
	ErrNoRoleRequests = errors.New("no role requests")
)

// SkipReasonPoolExhausted es la razón registrada cuando un slot no pudo
// llenarse porque todos los miembros del pool ya fueron usados en este run.
const SkipReasonPoolExhausted = "pool exhausted this run"

// RoleRequest es una demanda de rol dentro de un run: Count slots para Name.
// Count debe ser >= 1; la validación ocurre en la capa HTTP.
type RoleRequest struct {
	Name  string
	Count int
}

// SkippedSlot describe un slot que no pudo llenarse. No es un error:
// el run sigue siendo exitoso y el caller lo reporta como warning.
type SkippedSlot struct {
	Role   string `json:"role"`
	Reason string `json:"reason"`
}

// Result es la salida de un run del engine.
type Result struct {
	// Assignments en el orden de procesamiento de slots.
	Assignments []repository.Assignment

	// Cycles es el CycleState mutado, listo para persistir completo.
	Cycles repository.CycleState

	// Skipped contiene los slots que no pudieron llenarse.
	Skipped []SkippedSlot
}

// Generate ejecuta un run de asignación sobre un snapshot en memoria.
// Es computación pura y sincrónica: no bloquea ni toca estado compartido.
//
// Los role requests se procesan en el orden dado y cada request se expande
// en Count slots secuenciales. El orden es una decisión de política: define
// qué roles sufren skip primero cuando el pool es chico y cómo se ven los
// desempates en los logs.
//
// Para cada slot:
//   - eligible = pool − usados en este run − historial del rol
//   - si eligible queda vacío, el ciclo del rol se agotó: el historial se
//     vacía completo y se recalcula eligible sin él
//   - si sigue vacío (todo el pool ya fue usado en este run) el slot se
//     registra como skipped y no se muta nada más
//   - si no, se sortea un miembro uniformemente al azar entre los elegibles
//
// intn permite inyectar la fuente de azar en tests; con nil usa rand.IntN.
// Ningún miembro recibe dos roles en el mismo run.
func Generate(pool []repository.Member, snapshot repository.CycleState, requests []RoleRequest, intn func(n int) int) (*Result, error) {
	if len(requests) == 0 {
		return nil, ErrNoRoleRequests
	}
	if len(pool) == 0 {
		return nil, ErrEmptyPool
	}
	if intn == nil {
		intn = rand.Intn
	}

	cycles := snapshot.Clone()
	if cycles == nil {
		cycles = repository.CycleState{}
	}

	sessionUsed := make(map[string]struct{}, len(pool))

	// Primer casing visto de cada rol dentro del run.
	displayByKey := make(map[string]string, len(requests))

	res := &Result{Cycles: cycles}

	for _, req := range requests {
		key := RoleKey(req.Name)
		if _, ok := displayByKey[key]; !ok {
			displayByKey[key] = RoleDisplay(req.Name)
		}
		display := displayByKey[key]

		for i := 0; i < req.Count; i++ {
			history := toSet(cycles[key])

			eligible := filterPool(pool, sessionUsed, history)

			if len(eligible) == 0 {
				// Ciclo agotado: reset completo del historial del rol.
				cycles[key] = []string{}
				eligible = filterPool(pool, sessionUsed, nil)
			}

			if len(eligible) == 0 {
				res.Skipped = append(res.Skipped, SkippedSlot{Role: display, Reason: SkipReasonPoolExhausted})
				continue
			}

			picked := eligible[intn(len(eligible))]

			res.Assignments = append(res.Assignments, repository.Assignment{
				MemberID:    picked.ID,
				MemberName:  picked.Name,
				MemberEmail: picked.Email,
				Role:        display,
			})
			sessionUsed[picked.ID] = struct{}{}
			cycles[key] = append(cycles[key], picked.ID)
		}
	}

	return res, nil
}

func toSet(ids []string) map[string]struct{} {
	if len(ids) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// filterPool devuelve los miembros del pool que no están en sessionUsed
// ni en history, preservando el orden del pool.
func filterPool(pool []repository.Member, sessionUsed map[string]struct{}, history map[string]struct{}) []repository.Member {
	out := make([]repository.Member, 0, len(pool))
	for _, m := range pool {
		if _, used := sessionUsed[m.ID]; used {
			continue
		}
		if history != nil {
			if _, done := history[m.ID]; done {
				continue
			}
		}
		out = append(out, m)
	}
	return out
}
