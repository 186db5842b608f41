// Package memory implementa los puertos de persistencia en memoria para desarrollo y pruebas.
// Las transacciones se serializan con un mutex y trabajan sobre una copia del estado que solo
// reemplaza al estado vigente en el commit.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/jhoicas/farmstock-api/internal/application/inventory"
	"github.com/jhoicas/farmstock-api/internal/domain/entity"
)

var _ inventory.TxRunner = (*Store)(nil)

// Operaciones de escritura observables por el FailHook.
const (
	OpItemCreate     = "item.create"
	OpItemUpdate     = "item.update"
	OpBalanceSave    = "balance.save"
	OpMovementCreate = "movement.create"
	OpRequestCreate  = "request.create"
	OpRequestUpdate  = "request.update"
	OpLineUpdate     = "line.update"
)

// FailHook permite inyectar fallas de escritura en pruebas. Un error devuelto aborta la operación.
type FailHook func(op string, v any) error

type state struct {
	items     map[string]*entity.Item
	locations map[string]*entity.Location
	balances  map[entity.BalanceKey]*entity.Balance
	movements []*entity.Movement
	requests  map[string]*entity.Request
}

func newState() *state {
	return &state{
		items:     map[string]*entity.Item{},
		locations: map[string]*entity.Location{},
		balances:  map[entity.BalanceKey]*entity.Balance{},
		requests:  map[string]*entity.Request{},
	}
}

// clone copia profunda; los asientos son inmutables y se comparten.
func (s *state) clone() *state {
	c := newState()
	for k, v := range s.items {
		c.items[k] = copyItem(v)
	}
	for k, v := range s.locations {
		l := *v
		c.locations[k] = &l
	}
	for k, v := range s.balances {
		b := *v
		c.balances[k] = &b
	}
	c.movements = append(make([]*entity.Movement, 0, len(s.movements)), s.movements...)
	for k, v := range s.requests {
		c.requests[k] = copyRequest(v)
	}
	return c
}

// Store base de datos en memoria.
type Store struct {
	txMu sync.Mutex   // una transacción de escritura a la vez
	mu   sync.RWMutex // protege cur
	cur  *state

	hookMu   sync.RWMutex
	failHook FailHook
}

// NewStore crea el store con las ubicaciones por defecto sembradas.
func NewStore() *Store {
	st := newState()
	now := time.Now().UTC()
	for _, l := range entity.DefaultLocations() {
		loc := l
		loc.CreatedAt = now
		st.locations[loc.ID] = &loc
	}
	return &Store{cur: st}
}

// SetFailHook instala (o quita, con nil) el inyector de fallas.
func (s *Store) SetFailHook(h FailHook) {
	s.hookMu.Lock()
	defer s.hookMu.Unlock()
	s.failHook = h
}

func (s *Store) fail(op string, v any) error {
	s.hookMu.RLock()
	h := s.failHook
	s.hookMu.RUnlock()
	if h == nil {
		return nil
	}
	return h(op, v)
}

// tx vista de estado sobre la que operan los repositorios.
type tx struct {
	store *Store
	st    *state
}

type runFunc func(write bool, fn func(t *tx) error) error

// Run ejecuta fn sobre una copia del estado; si fn devuelve nil la copia pasa a ser el estado vigente.
// Todas las transacciones de escritura se serializan con un único candado: driver solo para pruebas
// y desarrollo local.
func (s *Store) Run(ctx context.Context, fn func(ctx context.Context, repos inventory.Repos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	work := s.cur.clone()
	s.mu.RUnlock()

	t := &tx{store: s, st: work}
	run := func(_ bool, f func(t *tx) error) error { return f(t) }
	if err := fn(ctx, reposFor(run)); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	s.cur = work
	s.mu.Unlock()
	return nil
}

// Repos repositorios en modo autocommit (cada llamada es su propia transacción).
func (s *Store) Repos() inventory.Repos {
	return reposFor(s.autocommit)
}

func (s *Store) autocommit(write bool, fn func(t *tx) error) error {
	if !write {
		s.mu.RLock()
		defer s.mu.RUnlock()
		return fn(&tx{store: s, st: s.cur})
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()
	s.mu.RLock()
	work := s.cur.clone()
	s.mu.RUnlock()
	if err := fn(&tx{store: s, st: work}); err != nil {
		return err
	}
	s.mu.Lock()
	s.cur = work
	s.mu.Unlock()
	return nil
}

func reposFor(run runFunc) inventory.Repos {
	return inventory.Repos{
		Items:     &ItemRepo{run: run},
		Locations: &LocationRepo{run: run},
		Balances:  &BalanceRepo{run: run},
		Movements: &MovementRepo{run: run},
		Requests:  &RequestRepo{run: run},
	}
}

func copyItem(i *entity.Item) *entity.Item {
	c := *i
	c.Modules = append([]string(nil), i.Modules...)
	return &c
}

func copyRequest(r *entity.Request) *entity.Request {
	c := *r
	c.Lines = make([]*entity.RequestLine, 0, len(r.Lines))
	for _, l := range r.Lines {
		lc := *l
		c.Lines = append(c.Lines, &lc)
	}
	return &c
}

func page[T any](list []T, limit, offset int) []T {
	if offset >= len(list) {
		return []T{}
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}
