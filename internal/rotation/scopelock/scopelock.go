// Package scopelock serializa runs de rotación por ScopeKey.
//
// Dos runs para el mismo scope deben ejecutarse estrictamente en serie
// (lectura de snapshot hasta commit inclusive): el algoritmo es
// read-modify-write sobre estado compartido y dos runs concurrentes
// sortearían sobre sets de elegibles superpuestos. Runs de scopes
// distintos proceden en paralelo sin lock compartido.
package scopelock

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// Keyed es un conjunto de locks exclusivos indexados por clave.
// La espera respeta el deadline del contexto: un Acquire que no consigue
// el lock a tiempo retorna el error del contexto y el caller lo traduce
// a LockTimeout.
type Keyed struct {
	mu    sync.Mutex
	locks map[string]*entry
}

type entry struct {
	sem  *semaphore.Weighted
	refs int
}

// New crea un Keyed vacío.
func New() *Keyed {
	return &Keyed{locks: make(map[string]*entry)}
}

// Acquire toma el lock exclusivo de la clave, esperando hasta que el
// contexto expire. Retorna la función de release; siempre debe llamarse
// (típicamente con defer) cuando Acquire no retorna error.
func (k *Keyed) Acquire(ctx context.Context, key string) (func(), error) {
	k.mu.Lock()
	e, ok := k.locks[key]
	if !ok {
		e = &entry{sem: semaphore.NewWeighted(1)}
		k.locks[key] = e
	}
	e.refs++
	k.mu.Unlock()

	if err := e.sem.Acquire(ctx, 1); err != nil {
		k.release(key, e, false)
		return nil, err
	}

	var once sync.Once
	return func() {
		once.Do(func() { k.release(key, e, true) })
	}, nil
}

// release decrementa la referencia y limpia la entrada cuando nadie más
// la espera, para que el mapa no crezca sin límite con scopes efímeros.
func (k *Keyed) release(key string, e *entry, held bool) {
	if held {
		e.sem.Release(1)
	}
	k.mu.Lock()
	e.refs--
	if e.refs == 0 {
		delete(k.locks, key)
	}
	k.mu.Unlock()
}
