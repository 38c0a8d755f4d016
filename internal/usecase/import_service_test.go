package usecase

import (
	"errors"
	"testing"

	"github.com/astatracker/fantacalcio-api/internal/domain/roster"
	"github.com/astatracker/fantacalcio-api/internal/infrastructure/repository/memory"
	"github.com/astatracker/fantacalcio-api/internal/platform/logging"
)

func newImportFixture() (*ImportService, *memory.CatalogRepository, *memory.RosterRepository) {
	catalogRepo := memory.NewCatalogRepository()
	rosterRepo := memory.NewRosterRepository(catalogRepo)
	service := NewImportService(catalogRepo, rosterRepo, &seqIDGenerator{prefix: "id"}, logging.NewNop(), 2, 2)
	return service, catalogRepo, rosterRepo
}

func TestImportService_Import(t *testing.T) {
	service, _, rosterRepo := newImportFixture()

	result, err := service.Import(t.Context(), ImportInput{
		LeagueID: "league-1",
		Rows: []ImportRow{
			{Name: "ROSSI mario", Club: "Milan", Role: "A", ListPrice: 30, FVM: 28},
			{Name: "bianchi luca", Club: "Inter", Role: "C", MantraRole: "M;C", ListPrice: 12, FVM: 10},
			{Name: "verdi", Club: "Roma", Role: "D", ListPrice: 5},
			{Name: "", Club: "Lazio", Role: "A"},
			{Name: "no role", Club: "Napoli", Role: "X"},
		},
	})
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}

	if result.Imported != 3 {
		t.Fatalf("expected 3 imported, got %d", result.Imported)
	}
	if result.Skipped != 2 {
		t.Fatalf("expected 2 skipped (missing name, missing role), got %d", result.Skipped)
	}
	if result.Updated != 0 || result.Failed != 0 {
		t.Fatalf("expected no updates or failures, got updated=%d failed=%d", result.Updated, result.Failed)
	}

	entries, err := rosterRepo.List(t.Context(), "league-1", roster.Filter{Search: "rossi"})
	if err != nil {
		t.Fatalf("list roster failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 rossi entry, got %d", len(entries))
	}
	entry := entries[0]
	if entry.Master.Name != "Rossi Mario" {
		t.Fatalf("expected normalized name Rossi Mario, got %s", entry.Master.Name)
	}
	if entry.Status != roster.StatusAvailable {
		t.Fatalf("expected imported player available, got %s", entry.Status)
	}
	if entry.ExpectedPrice != 30 {
		t.Fatalf("expected expected price seeded from list price 30, got %d", entry.ExpectedPrice)
	}
}

func TestImportService_Import_SharedCatalogAcrossLeagues(t *testing.T) {
	service, _, rosterRepo := newImportFixture()

	rows := []ImportRow{{Name: "Rossi Mario", Club: "Milan", Role: "A", ListPrice: 30}}
	if _, err := service.Import(t.Context(), ImportInput{LeagueID: "league-1", Rows: rows}); err != nil {
		t.Fatalf("first league import failed: %v", err)
	}
	if _, err := service.Import(t.Context(), ImportInput{LeagueID: "league-2", Rows: rows}); err != nil {
		t.Fatalf("second league import failed: %v", err)
	}

	first, err := rosterRepo.List(t.Context(), "league-1", roster.Filter{})
	if err != nil {
		t.Fatalf("list league-1 failed: %v", err)
	}
	second, err := rosterRepo.List(t.Context(), "league-2", roster.Filter{})
	if err != nil {
		t.Fatalf("list league-2 failed: %v", err)
	}
	if len(first) != 1 || len(second) != 1 {
		t.Fatalf("expected one entry per league, got %d and %d", len(first), len(second))
	}
	if first[0].MasterPlayerID != second[0].MasterPlayerID {
		t.Fatalf("expected both leagues to share the catalog row, got %s vs %s", first[0].MasterPlayerID, second[0].MasterPlayerID)
	}
	if first[0].ID == second[0].ID {
		t.Fatalf("expected distinct league player rows per league")
	}
}

func TestImportService_Reimport_PreservesOwnership(t *testing.T) {
	service, catalogRepo, rosterRepo := newImportFixture()

	rows := []ImportRow{
		{Name: "Rossi Mario", Club: "Milan", Role: "A", ListPrice: 30, FVM: 28},
		{Name: "Bianchi Luca", Club: "Inter", Role: "C", ListPrice: 12, FVM: 10},
	}
	if _, err := service.Import(t.Context(), ImportInput{LeagueID: "league-1", Rows: rows}); err != nil {
		t.Fatalf("initial import failed: %v", err)
	}

	entries, err := rosterRepo.List(t.Context(), "league-1", roster.Filter{Search: "rossi"})
	if err != nil || len(entries) != 1 {
		t.Fatalf("expected rossi entry, got %d err=%v", len(entries), err)
	}
	bought := entries[0].LeaguePlayer
	bought.Status = roster.StatusOwned
	bought.Buyer = "Team Mario"
	bought.PaidPrice = 42
	if err := rosterRepo.Update(t.Context(), bought); err != nil {
		t.Fatalf("mark player owned failed: %v", err)
	}

	// Mid-auction list refresh: prices move, ownership must not.
	rows[0].ListPrice = 35
	rows[0].FVM = 33
	result, err := service.Import(t.Context(), ImportInput{LeagueID: "league-1", Rows: rows})
	if err != nil {
		t.Fatalf("reimport failed: %v", err)
	}
	if result.Imported != 0 || result.Updated != 2 {
		t.Fatalf("expected 0 imported and 2 updated on reimport, got %d and %d", result.Imported, result.Updated)
	}

	after, _, err := rosterRepo.GetByID(t.Context(), "league-1", bought.ID)
	if err != nil {
		t.Fatalf("get player after reimport failed: %v", err)
	}
	if after.Status != roster.StatusOwned || after.Buyer != "Team Mario" || after.PaidPrice != 42 {
		t.Fatalf("reimport reverted ownership: status=%s buyer=%q paid=%d", after.Status, after.Buyer, after.PaidPrice)
	}

	master, ok, err := catalogRepo.GetByID(t.Context(), bought.MasterPlayerID)
	if err != nil || !ok {
		t.Fatalf("expected catalog row, ok=%v err=%v", ok, err)
	}
	if master.ListPrice != 35 || master.FVM != 33 {
		t.Fatalf("expected refreshed catalog prices 35/33, got %d/%d", master.ListPrice, master.FVM)
	}
}

func TestImportService_Import_InvalidInput(t *testing.T) {
	service, _, _ := newImportFixture()

	if _, err := service.Import(t.Context(), ImportInput{LeagueID: "", Rows: []ImportRow{{Name: "X", Role: "A"}}}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for missing league id, got %v", err)
	}
	if _, err := service.Import(t.Context(), ImportInput{LeagueID: "league-1"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty rows, got %v", err)
	}
}

func TestSplitImportBatches(t *testing.T) {
	rows := make([]ImportRow, 5)
	batches := splitImportBatches(rows, 2)
	if len(batches) != 3 {
		t.Fatalf("expected 3 batches, got %d", len(batches))
	}
	if len(batches[0]) != 2 || len(batches[2]) != 1 {
		t.Fatalf("expected batch sizes 2,2,1, got %d,%d,%d", len(batches[0]), len(batches[1]), len(batches[2]))
	}
}

func TestNormalizeImportWorkerCount(t *testing.T) {
	if got := normalizeImportWorkerCount(0, 4, 10); got != 4 {
		t.Fatalf("expected configured fallback 4, got %d", got)
	}
	if got := normalizeImportWorkerCount(8, 4, 3); got != 3 {
		t.Fatalf("expected cap at batch count 3, got %d", got)
	}
	if got := normalizeImportWorkerCount(0, 0, 0); got != 1 {
		t.Fatalf("expected floor of 1 worker, got %d", got)
	}
}
