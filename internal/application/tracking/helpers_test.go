package tracking_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-tracking/internal/application/tracking"
	"github.com/jhoicas/inventario-tracking/internal/domain/entity"
	"github.com/jhoicas/inventario-tracking/internal/infrastructure/memory"
)

var (
	gauge = entity.ItemRef{Kind: entity.ItemKindUnique, ID: "G-001"}
	part  = entity.ItemRef{Kind: entity.ItemKindPooled, ID: "P-12345"}
)

// fixture agrupa el almacén en memoria y los servicios sobre él.
type fixture struct {
	store    *memory.Store
	coord    *tracking.Coordinator
	queries  *tracking.QueryService
	observer *recordingObserver
}

// newFixture crea el almacén con A1, B2, C3 activas y Z9 inactiva.
func newFixture(t *testing.T, lockTimeout time.Duration) *fixture {
	t.Helper()
	store := memory.NewStore(lockTimeout)
	ctx := context.Background()
	for _, loc := range []*entity.Location{
		{Code: "A1", Active: true},
		{Code: "B2", Active: true},
		{Code: "C3", Active: true},
		{Code: "Z9", Active: false},
	} {
		require.NoError(t, store.Locations().Create(ctx, loc))
	}
	obs := &recordingObserver{committed: map[entity.MovementType]int{}, failed: map[string]int{}}
	return &fixture{
		store:    store,
		coord:    tracking.NewCoordinator(store, tracking.NewRepositoryDirectory(store.Locations()), nil, obs),
		queries:  tracking.NewQueryService(store.CurrentLocations(), store.Movements(), 50, 200),
		observer: obs,
	}
}

func (f *fixture) move(t *testing.T, item entity.ItemRef, dest string, qty int64) *tracking.MoveResult {
	t.Helper()
	res, err := f.coord.Move(context.Background(), tracking.MoveInput{Item: item, Destination: dest, Quantity: qty, Actor: "1"})
	require.NoError(t, err)
	return res
}

func (f *fixture) history(t *testing.T, item entity.ItemRef) []*entity.Movement {
	t.Helper()
	var list []*entity.Movement
	for m, err := range f.queries.History(context.Background(), item, 2) {
		require.NoError(t, err)
		list = append(list, m)
	}
	return list
}

func (f *fixture) location(t *testing.T, item entity.ItemRef) *entity.ItemLocation {
	t.Helper()
	loc, err := f.queries.GetCurrentLocation(context.Background(), item)
	require.NoError(t, err)
	return loc
}

type recordingObserver struct {
	mu        sync.Mutex
	committed map[entity.MovementType]int
	noops     int
	failed    map[string]int
}

func (o *recordingObserver) MoveCommitted(_ entity.ItemKind, t entity.MovementType) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.committed[t]++
}

func (o *recordingObserver) MoveNoOp(entity.ItemKind) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.noops++
}

func (o *recordingObserver) MoveFailed(_ entity.ItemKind, reason string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.failed[reason]++
}

func (o *recordingObserver) LockWait(entity.ItemKind, time.Duration) {}
