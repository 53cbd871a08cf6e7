package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/flota-crm-api/internal/application/ports"
	"github.com/jhoicas/flota-crm-api/internal/domain/repository"
)

// TxRunner implementa ports.TxRunner sin rollback: Run ejecuta fn sobre los repositorios del
// almacén y RunExclusive además serializa por clave.
type TxRunner struct {
	store *Store

	mu    sync.Mutex
	locks map[string]*keyLock
}

type keyLock struct {
	mu   sync.Mutex
	refs int
}

var _ ports.TxRunner = (*TxRunner)(nil)

// NewTxRunner construye el runner sobre store.
func NewTxRunner(store *Store) *TxRunner {
	return &TxRunner{store: store, locks: make(map[string]*keyLock)}
}

// Run ejecuta fn con los repositorios del almacén.
func (t *TxRunner) Run(ctx context.Context, fn func(repos repository.Repositories) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(t.store.Repositories())
}

// RunExclusive ejecuta fn con exclusión mutua entre llamadas con la misma clave.
func (t *TxRunner) RunExclusive(ctx context.Context, key string, fn func(repos repository.Repositories) error) error {
	l := t.acquire(key)
	defer t.release(key, l)
	return t.Run(ctx, fn)
}

func (t *TxRunner) acquire(key string) *keyLock {
	t.mu.Lock()
	l, ok := t.locks[key]
	if !ok {
		l = &keyLock{}
		t.locks[key] = l
	}
	l.refs++
	t.mu.Unlock()
	l.mu.Lock()
	return l
}

func (t *TxRunner) release(key string, l *keyLock) {
	l.mu.Unlock()
	t.mu.Lock()
	l.refs--
	if l.refs == 0 {
		delete(t.locks, key)
	}
	t.mu.Unlock()
}
