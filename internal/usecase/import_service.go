package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/astatracker/fantacalcio-api/internal/domain/catalog"
	"github.com/astatracker/fantacalcio-api/internal/domain/roster"
	idgen "github.com/astatracker/fantacalcio-api/internal/platform/id"
	"github.com/astatracker/fantacalcio-api/internal/platform/logging"
)

const (
	defaultImportBatchSize  = 100
	defaultImportMaxWorkers = 4
)

// ImportRow is one spreadsheet line from a player list export.
type ImportRow struct {
	Name       string `json:"name"`
	Club       string `json:"club"`
	Role       string `json:"role"`
	MantraRole string `json:"mantra_role"`
	ListPrice  int    `json:"list_price"`
	FVM        int    `json:"fvm"`
}

type ImportInput struct {
	LeagueID   string
	Rows       []ImportRow
	MaxWorkers int
}

type ImportResult struct {
	Imported int `json:"imported"`
	Updated  int `json:"updated"`
	Skipped  int `json:"skipped"`
	Failed   int `json:"failed"`
}

type ImportService struct {
	catalogRepo catalog.Repository
	rosterRepo  roster.Repository
	idGen       idgen.Generator
	logger      *logging.Logger
	batchSize   int
	maxWorkers  int
	now         func() time.Time
}

func NewImportService(
	catalogRepo catalog.Repository,
	rosterRepo roster.Repository,
	idGen idgen.Generator,
	logger *logging.Logger,
	batchSize int,
	maxWorkers int,
) *ImportService {
	if batchSize <= 0 {
		batchSize = defaultImportBatchSize
	}
	if maxWorkers <= 0 {
		maxWorkers = defaultImportMaxWorkers
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &ImportService{
		catalogRepo: catalogRepo,
		rosterRepo:  rosterRepo,
		idGen:       idGen,
		logger:      logger,
		batchSize:   batchSize,
		maxWorkers:  maxWorkers,
		now:         time.Now,
	}
}

// Import loads a player list into a league. Each batch is independent: a
// failed batch counts its rows as failed and does not roll back earlier
// batches. Re-importing the same list is idempotent for ownership data
// because the roster upsert never touches Status, Buyer, or PaidPrice.
func (s *ImportService) Import(ctx context.Context, input ImportInput) (ImportResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ImportService.Import")
	defer span.End()

	input.LeagueID = strings.TrimSpace(input.LeagueID)
	if input.LeagueID == "" {
		return ImportResult{}, fmt.Errorf("%w: league id is required", ErrInvalidInput)
	}
	if len(input.Rows) == 0 {
		return ImportResult{}, fmt.Errorf("%w: no rows to import", ErrInvalidInput)
	}

	batches := splitImportBatches(input.Rows, s.batchSize)
	workerCount := normalizeImportWorkerCount(input.MaxWorkers, s.maxWorkers, len(batches))

	var imported atomic.Int64
	var updated atomic.Int64
	var skipped atomic.Int64
	var failed atomic.Int64

	pool, err := ants.NewPool(workerCount)
	if err != nil {
		return ImportResult{}, fmt.Errorf("create import worker pool: %w", err)
	}
	defer pool.Release()

	var workers sync.WaitGroup
	for _, batch := range batches {
		batch := batch
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			counts := s.runImportBatch(ctx, input.LeagueID, batch)
			imported.Add(int64(counts.Imported))
			updated.Add(int64(counts.Updated))
			skipped.Add(int64(counts.Skipped))
			failed.Add(int64(counts.Failed))
		}); err != nil {
			workers.Done()
			return ImportResult{}, fmt.Errorf("submit import batch to worker pool: %w", err)
		}
	}
	workers.Wait()

	result := ImportResult{
		Imported: int(imported.Load()),
		Updated:  int(updated.Load()),
		Skipped:  int(skipped.Load()),
		Failed:   int(failed.Load()),
	}
	s.logger.InfoContext(ctx, "import batch finished",
		"league_id", input.LeagueID,
		"rows", len(input.Rows),
		"imported", result.Imported,
		"updated", result.Updated,
		"skipped", result.Skipped,
		"failed", result.Failed,
	)
	return result, nil
}

func (s *ImportService) runImportBatch(ctx context.Context, leagueID string, rows []ImportRow) ImportResult {
	var counts ImportResult

	players := make([]roster.LeaguePlayer, 0, len(rows))
	for _, row := range rows {
		player, ok, err := s.resolveMasterPlayer(ctx, row)
		if err != nil {
			counts.Failed++
			s.logger.WarnContext(ctx, "import row failed",
				"league_id", leagueID,
				"player_name", row.Name,
				"error", err,
			)
			continue
		}
		if !ok {
			counts.Skipped++
			s.logger.DebugContext(ctx, "import row skipped",
				"league_id", leagueID,
				"player_name", row.Name,
			)
			continue
		}

		playerID, err := s.idGen.NewID()
		if err != nil {
			counts.Failed++
			continue
		}
		now := s.now().UTC()
		players = append(players, roster.LeaguePlayer{
			ID:             playerID,
			LeagueID:       leagueID,
			MasterPlayerID: player.ID,
			Status:         roster.StatusAvailable,
			ExpectedPrice:  player.ListPrice,
			CreatedAt:      now,
			UpdatedAt:      now,
		})
	}

	if len(players) == 0 {
		return counts
	}

	inserted, refreshed, err := s.rosterRepo.UpsertImported(ctx, leagueID, players)
	if err != nil {
		counts.Failed += len(players)
		s.logger.ErrorContext(ctx, "import batch upsert failed",
			"league_id", leagueID,
			"batch_size", len(players),
			"error", err,
		)
		return counts
	}
	counts.Imported += inserted
	counts.Updated += refreshed
	return counts
}

// resolveMasterPlayer validates one row and finds or creates its catalog
// entry. ok=false means the row should be skipped, not failed.
func (s *ImportService) resolveMasterPlayer(ctx context.Context, row ImportRow) (catalog.MasterPlayer, bool, error) {
	name := catalog.NormalizeName(row.Name)
	club := strings.TrimSpace(row.Club)
	classicRole := strings.ToUpper(strings.TrimSpace(row.Role))
	mantra := catalog.ParseMantraRoles(row.MantraRole)

	if name == "" {
		return catalog.MasterPlayer{}, false, nil
	}
	if !catalog.IsClassicRole(classicRole) {
		classicRole = ""
	}
	if classicRole == "" && len(mantra) == 0 {
		return catalog.MasterPlayer{}, false, nil
	}

	existing, exists, err := s.catalogRepo.FindByNameAndClub(ctx, name, club)
	if err != nil {
		return catalog.MasterPlayer{}, false, fmt.Errorf("find master player: %w", err)
	}
	if exists {
		changed := existing.ListPrice != row.ListPrice ||
			existing.FVM != row.FVM ||
			existing.ClassicRole != classicRole ||
			!equalStrings(existing.MantraRoles, mantra)
		if changed {
			existing.ListPrice = row.ListPrice
			existing.FVM = row.FVM
			existing.ClassicRole = classicRole
			existing.MantraRoles = mantra
			existing.UpdatedAt = s.now().UTC()
			if err := s.catalogRepo.Update(ctx, existing); err != nil {
				return catalog.MasterPlayer{}, false, fmt.Errorf("refresh master player: %w", err)
			}
		}
		return existing, true, nil
	}

	playerID, err := s.idGen.NewID()
	if err != nil {
		return catalog.MasterPlayer{}, false, fmt.Errorf("generate master player id: %w", err)
	}
	now := s.now().UTC()
	created := catalog.MasterPlayer{
		ID:          playerID,
		Name:        name,
		Club:        club,
		ClassicRole: classicRole,
		MantraRoles: mantra,
		ListPrice:   row.ListPrice,
		FVM:         row.FVM,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.catalogRepo.Create(ctx, created); err != nil {
		if isDuplicateConstraintError(err) {
			// another batch created the same player, use its row.
			winner, found, ferr := s.catalogRepo.FindByNameAndClub(ctx, name, club)
			if ferr == nil && found {
				return winner, true, nil
			}
		}
		return catalog.MasterPlayer{}, false, fmt.Errorf("create master player: %w", err)
	}
	return created, true, nil
}

func splitImportBatches(rows []ImportRow, size int) [][]ImportRow {
	if size <= 0 {
		size = defaultImportBatchSize
	}
	out := make([][]ImportRow, 0, (len(rows)+size-1)/size)
	for start := 0; start < len(rows); start += size {
		end := start + size
		if end > len(rows) {
			end = len(rows)
		}
		out = append(out, rows[start:end])
	}
	return out
}

func normalizeImportWorkerCount(requested, configured, batchCount int) int {
	value := requested
	if value <= 0 {
		value = configured
	}
	if value <= 0 {
		value = 1
	}
	if batchCount > 0 && value > batchCount {
		value = batchCount
	}
	return value
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
