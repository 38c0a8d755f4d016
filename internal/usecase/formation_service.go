package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/astatracker/fantacalcio-api/internal/domain/formation"
	"github.com/astatracker/fantacalcio-api/internal/domain/roster"
	idgen "github.com/astatracker/fantacalcio-api/internal/platform/id"
)

const imageSweepMaxParallel = 8

var allowedImageContentTypes = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpg",
	"image/webp": "webp",
}

type SaveFormationInput struct {
	LeagueID    string
	UserID      string
	FormationID string
	Name        string
	Schema      string
	PlayerIDs   []string
	Notes       string
}

type UploadFormationImageInput struct {
	LeagueID    string
	FormationID string
	ContentType string
	Body        []byte
}

type FormationService struct {
	formationRepo formation.Repository
	rosterRepo    roster.Repository
	images        formation.ImageStore
	idGen         idgen.Generator
	now           func() time.Time
}

func NewFormationService(
	formationRepo formation.Repository,
	rosterRepo roster.Repository,
	images formation.ImageStore,
	idGen idgen.Generator,
) *FormationService {
	return &FormationService{
		formationRepo: formationRepo,
		rosterRepo:    rosterRepo,
		images:        images,
		idGen:         idGen,
		now:           time.Now,
	}
}

func (s *FormationService) List(ctx context.Context, leagueID, userID string) ([]formation.Formation, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FormationService.List")
	defer span.End()

	leagueID = strings.TrimSpace(leagueID)
	userID = strings.TrimSpace(userID)
	if leagueID == "" || userID == "" {
		return nil, fmt.Errorf("%w: league id and user id are required", ErrInvalidInput)
	}
	items, err := s.formationRepo.List(ctx, leagueID, userID)
	if err != nil {
		return nil, fmt.Errorf("list formations: %w", err)
	}
	return items, nil
}

func (s *FormationService) Create(ctx context.Context, input SaveFormationInput) (formation.Formation, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FormationService.Create")
	defer span.End()

	item, err := s.buildFormation(ctx, input, "")
	if err != nil {
		return formation.Formation{}, err
	}
	if err := s.formationRepo.Create(ctx, item); err != nil {
		return formation.Formation{}, fmt.Errorf("create formation: %w", err)
	}
	return item, nil
}

func (s *FormationService) Update(ctx context.Context, input SaveFormationInput) (formation.Formation, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FormationService.Update")
	defer span.End()

	existing, err := s.requireOwnFormation(ctx, input.LeagueID, input.UserID, input.FormationID)
	if err != nil {
		return formation.Formation{}, err
	}

	item, err := s.buildFormation(ctx, input, existing.ID)
	if err != nil {
		return formation.Formation{}, err
	}
	item.CreatedAt = existing.CreatedAt
	if err := s.formationRepo.Update(ctx, item); err != nil {
		return formation.Formation{}, fmt.Errorf("update formation: %w", err)
	}
	return item, nil
}

func (s *FormationService) Delete(ctx context.Context, leagueID, userID, formationID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.FormationService.Delete")
	defer span.End()

	if _, err := s.requireOwnFormation(ctx, leagueID, userID, formationID); err != nil {
		return err
	}
	if err := s.formationRepo.Delete(ctx, leagueID, formationID); err != nil {
		return fmt.Errorf("delete formation: %w", err)
	}

	if s.images == nil {
		return nil
	}
	keys, err := s.images.List(ctx, formationImagePrefix(leagueID, formationID))
	if err != nil {
		return fmt.Errorf("list formation images: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := s.images.Delete(ctx, keys...); err != nil {
		return fmt.Errorf("delete formation images: %w", err)
	}
	return nil
}

func (s *FormationService) UploadImage(ctx context.Context, userID string, input UploadFormationImageInput) (string, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FormationService.UploadImage")
	defer span.End()

	if s.images == nil {
		return "", fmt.Errorf("%w: image storage is not configured", ErrDependencyUnavailable)
	}
	if len(input.Body) == 0 {
		return "", fmt.Errorf("%w: image body is empty", ErrInvalidInput)
	}
	ext, ok := allowedImageContentTypes[strings.ToLower(strings.TrimSpace(input.ContentType))]
	if !ok {
		return "", fmt.Errorf("%w: unsupported image content type %q", ErrInvalidInput, input.ContentType)
	}

	if _, err := s.requireOwnFormation(ctx, input.LeagueID, userID, input.FormationID); err != nil {
		return "", err
	}

	imageID, err := s.idGen.NewID()
	if err != nil {
		return "", fmt.Errorf("generate image id: %w", err)
	}
	key := fmt.Sprintf("%s%s.%s", formationImagePrefix(input.LeagueID, input.FormationID), imageID, ext)
	if err := s.images.Put(ctx, key, input.ContentType, input.Body); err != nil {
		return "", fmt.Errorf("store formation image: %w", err)
	}
	return key, nil
}

func (s *FormationService) ListImages(ctx context.Context, leagueID, userID, formationID string) ([]string, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FormationService.ListImages")
	defer span.End()

	if s.images == nil {
		return nil, fmt.Errorf("%w: image storage is not configured", ErrDependencyUnavailable)
	}
	if _, err := s.requireOwnFormation(ctx, leagueID, userID, formationID); err != nil {
		return nil, err
	}

	keys, err := s.images.List(ctx, formationImagePrefix(leagueID, formationID))
	if err != nil {
		return nil, fmt.Errorf("list formation images: %w", err)
	}
	return keys, nil
}

func (s *FormationService) DeleteImage(ctx context.Context, leagueID, userID, formationID, imageKey string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.FormationService.DeleteImage")
	defer span.End()

	if s.images == nil {
		return fmt.Errorf("%w: image storage is not configured", ErrDependencyUnavailable)
	}
	imageKey = strings.TrimSpace(imageKey)
	if imageKey == "" {
		return fmt.Errorf("%w: image key is required", ErrInvalidInput)
	}
	if _, err := s.requireOwnFormation(ctx, leagueID, userID, formationID); err != nil {
		return err
	}
	// Accepts either the full storage key or a bare file name. Keys outside
	// the formation's own prefix are unreachable from here.
	prefix := formationImagePrefix(leagueID, formationID)
	if !strings.HasPrefix(imageKey, prefix) {
		if strings.Contains(imageKey, "/") {
			return fmt.Errorf("%w: image not found", ErrNotFound)
		}
		imageKey = prefix + imageKey
	}

	if err := s.images.Delete(ctx, imageKey); err != nil {
		return fmt.Errorf("delete formation image: %w", err)
	}
	return nil
}

// SweepLeagueImages removes every stored image under the league prefix,
// deleting in parallel because a league can hold many formation exports.
func (s *FormationService) SweepLeagueImages(ctx context.Context, leagueID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.FormationService.SweepLeagueImages")
	defer span.End()

	if s.images == nil {
		return nil
	}
	leagueID = strings.TrimSpace(leagueID)
	if leagueID == "" {
		return fmt.Errorf("%w: league id is required", ErrInvalidInput)
	}

	keys, err := s.images.List(ctx, leagueImagePrefix(leagueID))
	if err != nil {
		return fmt.Errorf("list league images: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}

	workers := pool.New().WithErrors().WithContext(ctx).WithMaxGoroutines(imageSweepMaxParallel)
	for _, key := range keys {
		key := key
		workers.Go(func(ctx context.Context) error {
			if err := s.images.Delete(ctx, key); err != nil {
				return fmt.Errorf("delete image key=%s: %w", key, err)
			}
			return nil
		})
	}
	if err := workers.Wait(); err != nil {
		return fmt.Errorf("sweep league images league=%s: %w", leagueID, err)
	}
	return nil
}

func (s *FormationService) buildFormation(ctx context.Context, input SaveFormationInput, existingID string) (formation.Formation, error) {
	input.LeagueID = strings.TrimSpace(input.LeagueID)
	input.UserID = strings.TrimSpace(input.UserID)
	input.Name = strings.TrimSpace(input.Name)
	input.Schema = strings.TrimSpace(input.Schema)
	if input.LeagueID == "" || input.UserID == "" {
		return formation.Formation{}, fmt.Errorf("%w: league id and user id are required", ErrInvalidInput)
	}
	if !formation.IsKnownSchema(input.Schema) {
		return formation.Formation{}, fmt.Errorf("%w: unknown formation schema %q", ErrInvalidInput, input.Schema)
	}

	for _, playerID := range input.PlayerIDs {
		if _, exists, err := s.rosterRepo.GetByID(ctx, input.LeagueID, playerID); err != nil {
			return formation.Formation{}, fmt.Errorf("check formation player: %w", err)
		} else if !exists {
			return formation.Formation{}, fmt.Errorf("%w: player %s is not in this league", ErrInvalidInput, playerID)
		}
	}

	formationID := existingID
	if formationID == "" {
		generated, err := s.idGen.NewID()
		if err != nil {
			return formation.Formation{}, fmt.Errorf("generate formation id: %w", err)
		}
		formationID = generated
	}

	now := s.now().UTC()
	item := formation.Formation{
		ID:        formationID,
		LeagueID:  input.LeagueID,
		UserID:    input.UserID,
		Name:      input.Name,
		Schema:    input.Schema,
		PlayerIDs: input.PlayerIDs,
		Notes:     strings.TrimSpace(input.Notes),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := item.Validate(); err != nil {
		return formation.Formation{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return item, nil
}

func (s *FormationService) requireOwnFormation(ctx context.Context, leagueID, userID, formationID string) (formation.Formation, error) {
	leagueID = strings.TrimSpace(leagueID)
	userID = strings.TrimSpace(userID)
	formationID = strings.TrimSpace(formationID)
	if leagueID == "" || userID == "" || formationID == "" {
		return formation.Formation{}, fmt.Errorf("%w: league id, user id, and formation id are required", ErrInvalidInput)
	}

	item, exists, err := s.formationRepo.GetByID(ctx, leagueID, formationID)
	if err != nil {
		return formation.Formation{}, fmt.Errorf("get formation: %w", err)
	}
	if !exists {
		return formation.Formation{}, fmt.Errorf("%w: formation not found", ErrNotFound)
	}
	if item.UserID != userID {
		return formation.Formation{}, fmt.Errorf("%w: formation belongs to another member", ErrPermissionDenied)
	}
	return item, nil
}

func leagueImagePrefix(leagueID string) string {
	return fmt.Sprintf("leagues/%s/", leagueID)
}

func formationImagePrefix(leagueID, formationID string) string {
	return fmt.Sprintf("leagues/%s/formations/%s/", leagueID, formationID)
}
