package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/astatracker/fantacalcio-api/internal/domain/catalog"
	"github.com/astatracker/fantacalcio-api/internal/domain/roster"
	"github.com/astatracker/fantacalcio-api/internal/infrastructure/repository/memory"
)

type seededPlayer struct {
	id     string
	name   string
	club   string
	role   string
	status roster.Status
	paid   int
	buyer  string
}

func seedRoster(t *testing.T, catalogRepo *memory.CatalogRepository, rosterRepo *memory.RosterRepository, leagueID string, players []seededPlayer) {
	t.Helper()
	ctx := context.Background()

	rows := make([]roster.LeaguePlayer, 0, len(players))
	for _, p := range players {
		masterID := "master-" + p.id
		err := catalogRepo.Create(ctx, catalog.MasterPlayer{
			ID:          masterID,
			Name:        p.name,
			Club:        p.club,
			ClassicRole: p.role,
		})
		if err != nil {
			t.Fatalf("seed master %s failed: %v", p.name, err)
		}
		status := p.status
		if status == "" {
			status = roster.StatusAvailable
		}
		rows = append(rows, roster.LeaguePlayer{
			ID:             p.id,
			LeagueID:       leagueID,
			MasterPlayerID: masterID,
			Status:         status,
			PaidPrice:      p.paid,
			Buyer:          p.buyer,
		})
	}
	if _, _, err := rosterRepo.UpsertImported(ctx, leagueID, rows); err != nil {
		t.Fatalf("seed roster failed: %v", err)
	}
}

func newRosterFixture(t *testing.T) (*RosterService, *memory.CatalogRepository, *memory.RosterRepository) {
	t.Helper()
	catalogRepo := memory.NewCatalogRepository()
	rosterRepo := memory.NewRosterRepository(catalogRepo)
	return NewRosterService(rosterRepo), catalogRepo, rosterRepo
}

func TestRosterService_List_Filters(t *testing.T) {
	service, catalogRepo, rosterRepo := newRosterFixture(t)
	seedRoster(t, catalogRepo, rosterRepo, "league-1", []seededPlayer{
		{id: "p-1", name: "Rossi Mario", club: "Milan", role: "A", status: roster.StatusOwned, paid: 40, buyer: "Team Mario"},
		{id: "p-2", name: "Bianchi Luca", club: "Inter", role: "C"},
		{id: "p-3", name: "Verdi Paolo", club: "Milan", role: "D", status: roster.StatusRemoved},
	})

	owned, err := service.List(t.Context(), "league-1", roster.Filter{Status: "owned"})
	if err != nil {
		t.Fatalf("list owned failed: %v", err)
	}
	if len(owned) != 1 || owned[0].ID != "p-1" {
		t.Fatalf("expected only p-1 owned, got %d entries", len(owned))
	}

	milan, err := service.List(t.Context(), "league-1", roster.Filter{Search: "milan"})
	if err != nil {
		t.Fatalf("list by club failed: %v", err)
	}
	if len(milan) != 2 {
		t.Fatalf("expected 2 Milan players, got %d", len(milan))
	}

	defenders, err := service.List(t.Context(), "league-1", roster.Filter{Role: "D"})
	if err != nil {
		t.Fatalf("list by role failed: %v", err)
	}
	if len(defenders) != 1 || defenders[0].ID != "p-3" {
		t.Fatalf("expected only p-3 as defender, got %d entries", len(defenders))
	}
}

func TestRosterService_List_FilterValidation(t *testing.T) {
	service, _, _ := newRosterFixture(t)

	if _, err := service.List(t.Context(), "league-1", roster.Filter{Status: "sold"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unknown status, got %v", err)
	}
	if _, err := service.List(t.Context(), "league-1", roster.Filter{Role: "Z"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unknown role, got %v", err)
	}
	if _, err := service.List(t.Context(), " ", roster.Filter{}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for missing league id, got %v", err)
	}
}

func TestRosterService_UpdateStatus(t *testing.T) {
	service, catalogRepo, rosterRepo := newRosterFixture(t)
	seedRoster(t, catalogRepo, rosterRepo, "league-1", []seededPlayer{
		{id: "p-1", name: "Rossi Mario", club: "Milan", role: "A"},
	})

	boughtAt := time.Date(2026, 8, 20, 21, 0, 0, 0, time.UTC)
	service.now = func() time.Time { return boughtAt }

	interesting := true
	paid := 40
	buyer := "Team Mario"
	entry, err := service.UpdateStatus(t.Context(), UpdatePlayerStatusInput{
		LeagueID:    "league-1",
		PlayerID:    "p-1",
		Status:      "owned",
		Interesting: &interesting,
		PaidPrice:   &paid,
		Buyer:       &buyer,
	})
	if err != nil {
		t.Fatalf("update status failed: %v", err)
	}
	if entry.Status != roster.StatusOwned || entry.PaidPrice != 40 || entry.Buyer != "Team Mario" {
		t.Fatalf("unexpected sale record: status=%s paid=%d buyer=%q", entry.Status, entry.PaidPrice, entry.Buyer)
	}
	if !entry.UpdatedAt.Equal(boughtAt) {
		t.Fatalf("expected updated_at %v, got %v", boughtAt, entry.UpdatedAt)
	}

	// Undoing the purchase clears the sale record.
	entry, err = service.UpdateStatus(t.Context(), UpdatePlayerStatusInput{
		LeagueID: "league-1",
		PlayerID: "p-1",
		Status:   "available",
	})
	if err != nil {
		t.Fatalf("revert status failed: %v", err)
	}
	if entry.PaidPrice != 0 || entry.Buyer != "" {
		t.Fatalf("expected cleared sale record, got paid=%d buyer=%q", entry.PaidPrice, entry.Buyer)
	}
	if !entry.Interesting {
		t.Fatalf("expected interesting flag to survive status change")
	}
}

func TestRosterService_UpdateStatus_Validation(t *testing.T) {
	service, catalogRepo, rosterRepo := newRosterFixture(t)
	seedRoster(t, catalogRepo, rosterRepo, "league-1", []seededPlayer{
		{id: "p-1", name: "Rossi Mario", club: "Milan", role: "A"},
	})

	if _, err := service.UpdateStatus(t.Context(), UpdatePlayerStatusInput{LeagueID: "league-1", PlayerID: "p-9"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown player, got %v", err)
	}
	if _, err := service.UpdateStatus(t.Context(), UpdatePlayerStatusInput{LeagueID: "league-2", PlayerID: "p-1"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound across league boundary, got %v", err)
	}
	if _, err := service.UpdateStatus(t.Context(), UpdatePlayerStatusInput{LeagueID: "league-1", PlayerID: "p-1", Status: "sold"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unknown status, got %v", err)
	}
	negative := -1
	if _, err := service.UpdateStatus(t.Context(), UpdatePlayerStatusInput{LeagueID: "league-1", PlayerID: "p-1", PaidPrice: &negative}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for negative price, got %v", err)
	}
}

func TestRosterService_Stats(t *testing.T) {
	service, catalogRepo, rosterRepo := newRosterFixture(t)
	seedRoster(t, catalogRepo, rosterRepo, "league-1", []seededPlayer{
		{id: "p-1", name: "Rossi Mario", club: "Milan", role: "A", status: roster.StatusOwned, paid: 40, buyer: "Team Mario"},
		{id: "p-2", name: "Bianchi Luca", club: "Inter", role: "C", status: roster.StatusOwned, paid: 15, buyer: "Team Mario"},
		{id: "p-3", name: "Verdi Paolo", club: "Milan", role: "D"},
		{id: "p-4", name: "Neri Marco", club: "Roma", role: "D", status: roster.StatusTakenByOther, paid: 8, buyer: "Zio Piero"},
	})

	stats, err := service.Stats(t.Context(), "league-1", 500)
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if stats.Total != 4 || stats.Owned != 2 || stats.Available != 1 || stats.TakenByOther != 1 {
		t.Fatalf("unexpected counters: %+v", stats.Stats)
	}
	if stats.BudgetUsed != 55 {
		t.Fatalf("expected budget used 55 from owned players only, got %d", stats.BudgetUsed)
	}
	if stats.Budget != 500 || stats.BudgetRemaining != 445 {
		t.Fatalf("expected budget 500 remaining 445, got %d/%d", stats.Budget, stats.BudgetRemaining)
	}
	if stats.OwnedByRole["A"] != 1 || stats.OwnedByRole["C"] != 1 {
		t.Fatalf("unexpected owned by role: %+v", stats.OwnedByRole)
	}
}
