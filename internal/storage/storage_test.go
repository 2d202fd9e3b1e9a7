package storage

import (
	"context"
	"testing"
	"time"

	"github.com/lomedigitalschool/kotiz-web/internal/models"

	"github.com/shopspring/decimal"
)

func setupTestSlots(t *testing.T) (*Service, func()) {
	cfg := models.DatabaseConfig{
		Path:         ":memory:",
		MaxOpenConns: 1,
		MaxIdleConns: 1,
		PingTimeout:  5 * time.Second,
	}

	service, err := NewService(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Failed to open test slot store: %v", err)
	}

	cleanup := func() {
		service.Close()
	}
	return service, cleanup
}

func TestLoadMissingSlotLeavesFallback(t *testing.T) {
	service, cleanup := setupTestSlots(t)
	defer cleanup()

	cagnottes := []models.Cagnotte{{Id: "fallback"}}
	if service.Load(context.Background(), SlotCagnottes, &cagnottes) {
		t.Fatal("Expected Load to report false for a missing slot")
	}
	if len(cagnottes) != 1 || cagnottes[0].Id != "fallback" {
		t.Errorf("Expected fallback value untouched, got %+v", cagnottes)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	service, cleanup := setupTestSlots(t)
	defer cleanup()

	ctx := context.Background()
	in := []models.Cagnotte{
		{Id: "1", Title: "Trip", GoalAmount: decimal.NewFromInt(1000), Currency: "XOF", Contributors: []string{"Zoe"}},
	}
	if err := service.Save(ctx, SlotCagnottes, in); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	var out []models.Cagnotte
	if !service.Load(ctx, SlotCagnottes, &out) {
		t.Fatal("Expected Load to succeed after Save")
	}
	if len(out) != 1 {
		t.Fatalf("Expected 1 cagnotte, got %d", len(out))
	}
	if out[0].Title != "Trip" || !out[0].GoalAmount.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("Round trip mangled the document: %+v", out[0])
	}
	if len(out[0].Contributors) != 1 || out[0].Contributors[0] != "Zoe" {
		t.Errorf("Round trip lost contributors: %+v", out[0].Contributors)
	}
}

func TestLoadCorruptDocumentFallsBack(t *testing.T) {
	service, cleanup := setupTestSlots(t)
	defer cleanup()

	ctx := context.Background()
	// A string document cannot deserialize into a collection.
	if err := service.Save(ctx, SlotContributions, "not-a-collection"); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	contributions := []models.Contribution{}
	if service.Load(ctx, SlotContributions, &contributions) {
		t.Fatal("Expected Load to report false for a corrupt document")
	}
	if len(contributions) != 0 {
		t.Errorf("Expected fallback untouched, got %+v", contributions)
	}
}

func TestDeleteAndClear(t *testing.T) {
	service, cleanup := setupTestSlots(t)
	defer cleanup()

	ctx := context.Background()
	if err := service.Save(ctx, SlotCagnotte, models.Cagnotte{Id: "1"}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := service.Save(ctx, SlotContributions, []models.Contribution{{Id: "c1"}}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if err := service.Delete(ctx, SlotCagnotte); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	var current models.Cagnotte
	if service.Load(ctx, SlotCagnotte, &current) {
		t.Error("Expected cagnotte slot to be gone after Delete")
	}

	if err := service.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	var contributions []models.Contribution
	if service.Load(ctx, SlotContributions, &contributions) {
		t.Error("Expected contributions slot to be gone after Clear")
	}
}

func TestTokenSlot(t *testing.T) {
	service, cleanup := setupTestSlots(t)
	defer cleanup()

	ctx := context.Background()
	if got := service.Token(ctx); got != "" {
		t.Errorf("Expected empty token before login, got %q", got)
	}

	if err := service.Save(ctx, SlotToken, "jwt-abc"); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if got := service.Token(ctx); got != "jwt-abc" {
		t.Errorf("Expected token %q, got %q", "jwt-abc", got)
	}
}

func TestMemoryBackendParity(t *testing.T) {
	memory := NewMemory()
	ctx := context.Background()

	in := []models.Cagnotte{{Id: "1", Title: "Trip"}}
	if err := memory.Save(ctx, SlotCagnottes, in); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	var out []models.Cagnotte
	if !memory.Load(ctx, SlotCagnottes, &out) {
		t.Fatal("Expected Load to succeed after Save")
	}
	if len(out) != 1 || out[0].Title != "Trip" {
		t.Errorf("Round trip mangled the document: %+v", out)
	}

	if err := memory.SetToken(ctx, "jwt-abc"); err != nil {
		t.Fatalf("SetToken failed: %v", err)
	}
	if got := memory.Token(ctx); got != "jwt-abc" {
		t.Errorf("Expected token %q, got %q", "jwt-abc", got)
	}

	if err := memory.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	var empty []models.Cagnotte
	if memory.Load(ctx, SlotCagnottes, &empty) {
		t.Error("Expected all slots gone after Clear")
	}
}
