package memory_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-tracking/internal/domain"
	"github.com/jhoicas/inventario-tracking/internal/domain/entity"
	"github.com/jhoicas/inventario-tracking/internal/domain/repository"
	"github.com/jhoicas/inventario-tracking/internal/infrastructure/memory"
)

var gauge = entity.ItemRef{Kind: entity.ItemKindUnique, ID: "G-001"}

func row(item entity.ItemRef, loc string, qty int64) *entity.CurrentLocation {
	return &entity.CurrentLocation{Item: item, LocationCode: loc, Quantity: qty, LastMovedAt: time.Now(), LastMovedBy: "1"}
}

func TestStore_RollbackNoDejaRastro(t *testing.T) {
	s := memory.NewStore(time.Second)
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.Run(ctx, func(locRepo repository.CurrentLocationRepository, movRepo repository.MovementRepository) error {
		require.NoError(t, locRepo.Insert(ctx, row(gauge, "B2", 1)))
		require.NoError(t, movRepo.Append(ctx, &entity.Movement{ID: "m1", Type: entity.MovementTypeCreated, Item: gauge, Quantity: 1, ToLocation: "B2"}))
		// Dentro de la tx se leen las escrituras propias.
		rows, err := locRepo.ListByItem(ctx, gauge)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		return boom
	})
	require.ErrorIs(t, err, boom)

	rows, err := s.CurrentLocations().ListByItem(ctx, gauge)
	require.NoError(t, err)
	assert.Empty(t, rows)
	movs, err := s.Movements().ListRecent(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, movs)
}

func TestStore_BloqueoConTiempoMaximo(t *testing.T) {
	s := memory.NewStore(50 * time.Millisecond)
	ctx := context.Background()

	locked := make(chan struct{})
	releaseFirst := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- s.Run(ctx, func(locRepo repository.CurrentLocationRepository, _ repository.MovementRepository) error {
			if _, err := locRepo.LockItem(ctx, gauge); err != nil {
				return err
			}
			close(locked)
			<-releaseFirst
			return nil
		})
	}()
	<-locked

	err := s.Run(ctx, func(locRepo repository.CurrentLocationRepository, _ repository.MovementRepository) error {
		_, err := locRepo.LockItem(ctx, gauge)
		return err
	})
	assert.ErrorIs(t, err, domain.ErrConcurrentModification)

	// Otro ítem no queda bloqueado.
	other := entity.ItemRef{Kind: entity.ItemKindUnique, ID: "G-002"}
	err = s.Run(ctx, func(locRepo repository.CurrentLocationRepository, _ repository.MovementRepository) error {
		_, err := locRepo.LockItem(ctx, other)
		return err
	})
	assert.NoError(t, err)

	close(releaseFirst)
	require.NoError(t, <-done)

	// Liberado el primero, el bloqueo vuelve a estar disponible.
	err = s.Run(ctx, func(locRepo repository.CurrentLocationRepository, _ repository.MovementRepository) error {
		_, err := locRepo.LockItem(ctx, gauge)
		return err
	})
	assert.NoError(t, err)
}

func TestStore_BloqueosNoSeAcumulan(t *testing.T) {
	s := memory.NewStore(30 * time.Millisecond)
	ctx := context.Background()

	for i := 0; i < 50; i++ {
		item := entity.ItemRef{Kind: entity.ItemKindPooled, ID: fmt.Sprintf("P-%03d", i)}
		require.NoError(t, s.CurrentLocations().Insert(ctx, row(item, "A1", 1)))
	}
	assert.Zero(t, s.LockCount())

	// Con un dueño y un turno vencido el bloqueo sigue registrado solo mientras hay dueño.
	locked := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- s.Run(ctx, func(locRepo repository.CurrentLocationRepository, _ repository.MovementRepository) error {
			if _, err := locRepo.LockItem(ctx, gauge); err != nil {
				return err
			}
			close(locked)
			<-release
			return nil
		})
	}()
	<-locked
	err := s.Run(ctx, func(locRepo repository.CurrentLocationRepository, _ repository.MovementRepository) error {
		_, err := locRepo.LockItem(ctx, gauge)
		return err
	})
	require.ErrorIs(t, err, domain.ErrConcurrentModification)
	assert.Equal(t, 1, s.LockCount())

	close(release)
	require.NoError(t, <-done)
	assert.Zero(t, s.LockCount())
}

func TestStore_IndicePorUbicacion(t *testing.T) {
	s := memory.NewStore(time.Second)
	ctx := context.Background()
	part := entity.ItemRef{Kind: entity.ItemKindPooled, ID: "P-1"}
	repo := s.CurrentLocations()

	require.NoError(t, repo.Insert(ctx, row(gauge, "A1", 1)))
	require.NoError(t, repo.Insert(ctx, row(part, "A1", 5)))
	require.NoError(t, repo.Insert(ctx, row(part, "B2", 7)))

	at, err := repo.ListByLocation(ctx, "A1")
	require.NoError(t, err)
	require.Len(t, at, 2)
	assert.Equal(t, part, at[0].Item)
	assert.Equal(t, gauge, at[1].Item)

	require.NoError(t, repo.Relocate(ctx, gauge, "B2", time.Now(), "2"))
	at, err = repo.ListByLocation(ctx, "A1")
	require.NoError(t, err)
	require.Len(t, at, 1)

	at, err = repo.ListByLocation(ctx, "B2")
	require.NoError(t, err)
	assert.Len(t, at, 2)
}

func TestStore_UniqueRechazaSegundaFila(t *testing.T) {
	s := memory.NewStore(time.Second)
	ctx := context.Background()
	repo := s.CurrentLocations()

	require.NoError(t, repo.Insert(ctx, row(gauge, "A1", 1)))
	assert.ErrorIs(t, repo.Insert(ctx, row(gauge, "B2", 1)), domain.ErrStorageFailure)
	assert.ErrorIs(t, repo.Upsert(ctx, row(gauge, "A1", 0)), domain.ErrInvalidQuantity)
	assert.ErrorIs(t, repo.Delete(ctx, gauge, "B2"), domain.ErrNotFound)
}

func TestStore_SeqSeConsumeEnRollback(t *testing.T) {
	s := memory.NewStore(time.Second)
	ctx := context.Background()
	mov := func(id string) *entity.Movement {
		return &entity.Movement{ID: id, Type: entity.MovementTypeCreated, Item: gauge, Quantity: 1, ToLocation: "A1", OccurredAt: time.Now()}
	}

	_ = s.Run(ctx, func(_ repository.CurrentLocationRepository, movRepo repository.MovementRepository) error {
		require.NoError(t, movRepo.Append(ctx, mov("m1")))
		return errors.New("rollback")
	})
	require.NoError(t, s.Movements().Append(ctx, mov("m2")))

	list, err := s.Movements().ListSince(ctx, 0, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "m2", list[0].ID)
	assert.Equal(t, int64(2), list[0].Seq)
}

func TestLocationRepo_CRUD(t *testing.T) {
	repo := memory.NewLocationRepo()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &entity.Location{Code: "B2", Active: true}))
	require.NoError(t, repo.Create(ctx, &entity.Location{Code: "A1", Active: false}))
	assert.ErrorIs(t, repo.Create(ctx, &entity.Location{Code: "A1"}), domain.ErrDuplicate)

	all, err := repo.List(ctx, false, 10, 0)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "A1", all[0].Code)

	active, err := repo.List(ctx, true, 10, 0)
	require.NoError(t, err)
	require.Len(t, active, 1)

	missing, err := repo.GetByCode(ctx, "Z9")
	require.NoError(t, err)
	assert.Nil(t, missing)
	assert.ErrorIs(t, repo.Update(ctx, &entity.Location{Code: "Z9"}), domain.ErrNotFound)
}
