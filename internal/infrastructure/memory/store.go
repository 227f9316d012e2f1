// Package memory implementa el motor de ubicaciones en memoria para desarrollo local y tests.
// Reproduce el contrato de la implementación PostgreSQL: bloqueo por ítem con espera acotada,
// cambios visibles solo después del Commit y log de movimientos de solo inserción.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jhoicas/inventario-tracking/internal/application/tracking"
	"github.com/jhoicas/inventario-tracking/internal/domain"
	"github.com/jhoicas/inventario-tracking/internal/domain/entity"
	"github.com/jhoicas/inventario-tracking/internal/domain/repository"
)

var _ tracking.TxRunner = (*Store)(nil)

type itemRows map[string]entity.CurrentLocation

// Store estado confirmado más los bloqueos por ítem.
type Store struct {
	mu         sync.RWMutex
	rows       map[entity.ItemRef]itemRows
	byLocation map[string]map[entity.ItemRef]struct{}
	movements  []entity.Movement // ordenados por Seq ascendente
	seq        int64
	appendHook func(*entity.Movement) error

	locksMu     sync.Mutex
	locks       map[entity.ItemRef]*itemLock
	lockTimeout time.Duration

	locations *LocationRepo
}

// NewStore construye el store. lockTimeout acota la espera por el bloqueo de un ítem.
func NewStore(lockTimeout time.Duration) *Store {
	if lockTimeout <= 0 {
		lockTimeout = 2 * time.Second
	}
	return &Store{
		rows:        make(map[entity.ItemRef]itemRows),
		byLocation:  make(map[string]map[entity.ItemRef]struct{}),
		locks:       make(map[entity.ItemRef]*itemLock),
		lockTimeout: lockTimeout,
		locations:   NewLocationRepo(),
	}
}

// Run ejecuta fn en una transacción: si fn falla nada de lo escrito queda visible.
func (s *Store) Run(ctx context.Context, fn func(
	locRepo repository.CurrentLocationRepository,
	movRepo repository.MovementRepository,
) error) error {
	tx := s.begin()
	defer tx.release()
	if err := fn(&CurrentLocationRepo{s: s, tx: tx}, &MovementRepo{s: s, tx: tx}); err != nil {
		return err
	}
	tx.commit()
	return nil
}

// CurrentLocations repositorio sobre el estado confirmado (lecturas y escrituras autocommit).
func (s *Store) CurrentLocations() *CurrentLocationRepo { return &CurrentLocationRepo{s: s} }

// Movements repositorio del log sobre el estado confirmado.
func (s *Store) Movements() *MovementRepo { return &MovementRepo{s: s} }

// Locations directorio de ubicaciones en memoria.
func (s *Store) Locations() *LocationRepo { return s.locations }

// SetAppendHook instala una función que se invoca antes de cada Append; si devuelve error el Append falla.
// Permite inyectar fallas en tests.
func (s *Store) SetAppendHook(hook func(*entity.Movement) error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appendHook = hook
}

// itemLock bloqueo de un ítem. refs cuenta al dueño y a quienes esperan; en cero se elimina del mapa.
type itemLock struct {
	ch   chan struct{}
	refs int
}

func (s *Store) acquireRef(item entity.ItemRef) *itemLock {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	l, ok := s.locks[item]
	if !ok {
		l = &itemLock{ch: make(chan struct{}, 1)}
		s.locks[item] = l
	}
	l.refs++
	return l
}

func (s *Store) releaseRef(item entity.ItemRef, l *itemLock) {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	l.refs--
	if l.refs == 0 {
		delete(s.locks, item)
	}
}

// committedRows copia las filas confirmadas del ítem. Requiere s.mu tomado.
func (s *Store) committedRows(item entity.ItemRef) itemRows {
	out := make(itemRows, len(s.rows[item]))
	for k, v := range s.rows[item] {
		out[k] = v
	}
	return out
}

func (s *Store) begin() *memTx {
	return &memTx{s: s, staged: make(map[entity.ItemRef]itemRows)}
}

// memTx cambios pendientes de una transacción.
type memTx struct {
	s         *Store
	held      []entity.ItemRef
	heldLocks []*itemLock
	staged    map[entity.ItemRef]itemRows
	pending   []entity.Movement
	done      bool
}

func (tx *memTx) lock(ctx context.Context, item entity.ItemRef) error {
	for _, h := range tx.held {
		if h == item {
			return nil
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	l := tx.s.acquireRef(item)
	timer := time.NewTimer(tx.s.lockTimeout)
	defer timer.Stop()
	select {
	case l.ch <- struct{}{}:
		tx.held = append(tx.held, item)
		tx.heldLocks = append(tx.heldLocks, l)
		return nil
	case <-timer.C:
		tx.s.releaseRef(item, l)
		return fmt.Errorf("%w: %s bloqueado más de %s", domain.ErrConcurrentModification, item, tx.s.lockTimeout)
	case <-ctx.Done():
		tx.s.releaseRef(item, l)
		return ctx.Err()
	}
}

// rowsOf devuelve las filas del ítem vistas por la tx (pendientes o confirmadas).
func (tx *memTx) rowsOf(item entity.ItemRef) itemRows {
	if rows, ok := tx.staged[item]; ok {
		return rows
	}
	tx.s.mu.RLock()
	defer tx.s.mu.RUnlock()
	return tx.s.committedRows(item)
}

// stage prepara las filas del ítem para escritura; toma el bloqueo del ítem si aún no lo tiene.
func (tx *memTx) stage(ctx context.Context, item entity.ItemRef) (itemRows, error) {
	if err := tx.lock(ctx, item); err != nil {
		return nil, err
	}
	if rows, ok := tx.staged[item]; ok {
		return rows, nil
	}
	rows := tx.rowsOf(item)
	tx.staged[item] = rows
	return rows, nil
}

func (tx *memTx) commit() {
	s := tx.s
	s.mu.Lock()
	defer s.mu.Unlock()
	for item, rows := range tx.staged {
		for code := range s.rows[item] {
			if set := s.byLocation[code]; set != nil {
				delete(set, item)
				if len(set) == 0 {
					delete(s.byLocation, code)
				}
			}
		}
		if len(rows) == 0 {
			delete(s.rows, item)
			continue
		}
		s.rows[item] = rows
		for code := range rows {
			set := s.byLocation[code]
			if set == nil {
				set = make(map[entity.ItemRef]struct{})
				s.byLocation[code] = set
			}
			set[item] = struct{}{}
		}
	}
	for _, m := range tx.pending {
		s.insertMovement(m)
	}
	tx.done = true
}

func (tx *memTx) release() {
	for i, item := range tx.held {
		l := tx.heldLocks[i]
		<-l.ch
		tx.s.releaseRef(item, l)
	}
	tx.held, tx.heldLocks = nil, nil
}

// autocommit ejecuta fn en una transacción propia si el repositorio no está atado a una.
func autocommit(s *Store, tx *memTx, fn func(tx *memTx) error) error {
	if tx != nil {
		return fn(tx)
	}
	own := s.begin()
	defer own.release()
	if err := fn(own); err != nil {
		return err
	}
	own.commit()
	return nil
}

// insertMovement conserva el orden por Seq. Requiere s.mu tomado.
func (s *Store) insertMovement(m entity.Movement) {
	i := sort.Search(len(s.movements), func(i int) bool { return s.movements[i].Seq > m.Seq })
	s.movements = append(s.movements, entity.Movement{})
	copy(s.movements[i+1:], s.movements[i:])
	s.movements[i] = m
}

// lockCount número de bloqueos de ítem vivos en el mapa.
func (s *Store) lockCount() int {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	return len(s.locks)
}
