package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/cryptotribes/server/internal/game"
	"github.com/cryptotribes/server/internal/models"
	"github.com/cryptotribes/server/internal/worldmap"
	"github.com/cryptotribes/server/pkg/errors"
)

func newVillageFixture(worldSize int) (*memStore, *VillageService) {
	store := newMemStore()
	worldMap := worldmap.New(worldSize, store.ListCoordinates)
	svc := NewVillageService(store, worldMap, game.DefaultTuning(), models.Resources{
		Wood: 500, Clay: 500, Iron: 400, Food: 300,
	})
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return store, svc
}

func TestCreateVillage_FoundsWithStartingState(t *testing.T) {
	store, svc := newVillageFixture(10)

	playerID := uint(1)
	village, err := svc.CreateVillage(context.Background(), &playerID, "Riverbend")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if village.ID == 0 {
		t.Error("expected an assigned id")
	}
	if village.X < 0 || village.X >= 10 || village.Y < 0 || village.Y >= 10 {
		t.Errorf("coordinate (%d, %d) outside the world", village.X, village.Y)
	}
	if village.Resources.Wood != 500 || village.Resources.Food != 300 {
		t.Errorf("unexpected starting balance: %+v", village.Resources)
	}

	// Resource buildings and the hall start at level 1, the rest at 0.
	for _, bt := range models.AllBuildingTypes {
		building := store.building(village.ID, bt)
		want := foundingLevels[bt]
		if building.Level != want {
			t.Errorf("%s: expected level %d, got %d", bt, want, building.Level)
		}
	}
	for _, tt := range models.AllTroopTypes {
		if got := store.troopAmount(village.ID, tt); got != 0 {
			t.Errorf("%s: expected empty stock, got %d", tt, got)
		}
	}
}

func TestCreateVillage_RequiresName(t *testing.T) {
	_, svc := newVillageFixture(10)

	playerID := uint(1)
	_, err := svc.CreateVillage(context.Background(), &playerID, "")
	if !errors.HasCode(err, errors.ErrCodeInvalidInput) {
		t.Errorf("expected INVALID_INPUT, got %v", err)
	}
}

func TestCreateVillage_OneFoundingVillagePerPlayer(t *testing.T) {
	_, svc := newVillageFixture(10)

	playerID := uint(1)
	if _, err := svc.CreateVillage(context.Background(), &playerID, "First"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err := svc.CreateVillage(context.Background(), &playerID, "Second")
	if !errors.HasCode(err, errors.ErrCodeAlreadyExists) {
		t.Errorf("expected ALREADY_EXISTS, got %v", err)
	}
}

func TestCreateVillage_UniqueCoordinates(t *testing.T) {
	store, svc := newVillageFixture(10)

	seen := make(map[[2]int]bool)
	for i := 0; i < 20; i++ {
		village, err := svc.CreateVillage(context.Background(), nil, fmt.Sprintf("Camp %d", i))
		if err != nil {
			t.Fatalf("creation %d failed: %v", i, err)
		}
		coord := [2]int{village.X, village.Y}
		if seen[coord] {
			t.Fatalf("coordinate %v allocated twice", coord)
		}
		seen[coord] = true
	}
	if count, _ := store.CountBarbarianVillages(context.Background()); count != 20 {
		t.Errorf("expected 20 barbarian villages, got %d", count)
	}
}

func TestCreateVillage_ReleasesCoordinateOnFailure(t *testing.T) {
	store, svc := newVillageFixture(10)

	store.createVillageErr = fmt.Errorf("connection reset")
	if _, err := svc.CreateVillage(context.Background(), nil, "Doomed"); err == nil {
		t.Fatal("expected creation to fail")
	}

	// The reserved coordinate is returned to the pool, so a full retry
	// round over a small world still succeeds.
	store.createVillageErr = nil
	for i := 0; i < 100; i++ {
		if _, err := svc.CreateVillage(context.Background(), nil, fmt.Sprintf("Camp %d", i)); err != nil {
			t.Fatalf("creation %d failed: %v", i, err)
		}
	}
}

func TestSeedBarbarians_TopsUpToMinimum(t *testing.T) {
	store, svc := newVillageFixture(10)

	created, err := svc.SeedBarbarians(context.Background(), 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created != 5 {
		t.Errorf("expected 5 created, got %d", created)
	}

	// Already at the minimum: a second run is a no-op.
	created, err = svc.SeedBarbarians(context.Background(), 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created != 0 {
		t.Errorf("expected no new villages, got %d", created)
	}
	if count, _ := store.CountBarbarianVillages(context.Background()); count != 5 {
		t.Errorf("expected 5 barbarian villages, got %d", count)
	}
}

func TestSeedBarbarians_IgnoresPlayerVillages(t *testing.T) {
	store, svc := newVillageFixture(10)

	playerID := uint(1)
	if _, err := svc.CreateVillage(context.Background(), &playerID, "Riverbend"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	created, err := svc.SeedBarbarians(context.Background(), 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created != 3 {
		t.Errorf("expected 3 created despite the player village, got %d", created)
	}
	if count, _ := store.CountBarbarianVillages(context.Background()); count != 3 {
		t.Errorf("expected 3 barbarian villages, got %d", count)
	}
}
