package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/astatracker/fantacalcio-api/internal/domain/formation"
	"github.com/astatracker/fantacalcio-api/internal/domain/league"
	"github.com/astatracker/fantacalcio-api/internal/domain/participant"
	"github.com/astatracker/fantacalcio-api/internal/domain/roster"
	"github.com/astatracker/fantacalcio-api/internal/domain/user"
	"github.com/astatracker/fantacalcio-api/internal/infrastructure/repository/memory"
)

func newLeagueFixture() (*LeagueService, *memory.LeagueRepository, *memory.UserRepository) {
	userRepo := memory.NewUserRepository()
	leagueRepo := memory.NewLeagueRepository(userRepo, nil, nil, nil)
	service := NewLeagueService(leagueRepo, userRepo, nil, &seqIDGenerator{prefix: "league"})
	return service, leagueRepo, userRepo
}

func seedUser(t *testing.T, repo *memory.UserRepository, id, username, displayName string) {
	t.Helper()
	err := repo.Create(context.Background(), user.User{
		ID:           id,
		Username:     username,
		Email:        username + "@example.com",
		DisplayName:  displayName,
		PasswordHash: "x",
		Active:       true,
	})
	if err != nil {
		t.Fatalf("seed user %s failed: %v", id, err)
	}
}

func TestLeagueService_Create_Defaults(t *testing.T) {
	service, leagueRepo, _ := newLeagueFixture()

	createdAt := time.Date(2026, 8, 10, 18, 0, 0, 0, time.UTC)
	service.now = func() time.Time { return createdAt }

	item, err := service.Create(t.Context(), CreateLeagueInput{
		OwnerUserID: "user-1",
		Name:        "Lega Storica",
		GameMode:    "classic",
	})
	if err != nil {
		t.Fatalf("create league failed: %v", err)
	}

	if item.Budget != 500 || item.MaxPlayers != 25 || item.MaxMembers != 10 {
		t.Fatalf("expected defaults 500/25/10, got %d/%d/%d", item.Budget, item.MaxPlayers, item.MaxMembers)
	}
	if item.Status != league.StatusActive {
		t.Fatalf("expected active status, got %s", item.Status)
	}
	if len(item.JoinCode) != 8 {
		t.Fatalf("expected 8 character join code, got %q", item.JoinCode)
	}
	for _, r := range item.JoinCode {
		if !strings.ContainsRune(joinCodeAlphabet, r) {
			t.Fatalf("join code %q contains %q outside the alphabet", item.JoinCode, r)
		}
	}

	membership, ok, err := leagueRepo.GetMembership(t.Context(), item.ID, "user-1")
	if err != nil || !ok {
		t.Fatalf("expected owner membership, ok=%v err=%v", ok, err)
	}
	if membership.Role != league.RoleMaster {
		t.Fatalf("expected master role for creator, got %s", membership.Role)
	}
	if membership.TeamName != "Lega Storica" {
		t.Fatalf("expected team name to default to league name, got %s", membership.TeamName)
	}
}

func TestLeagueService_Create_Validation(t *testing.T) {
	service, _, _ := newLeagueFixture()

	if _, err := service.Create(t.Context(), CreateLeagueInput{OwnerUserID: "user-1", Name: "  "}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty name, got %v", err)
	}
	if _, err := service.Create(t.Context(), CreateLeagueInput{OwnerUserID: "user-1", Name: "L", GameMode: "dynasty"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unknown game mode, got %v", err)
	}
}

func TestLeagueService_Join(t *testing.T) {
	service, leagueRepo, _ := newLeagueFixture()

	item, err := service.Create(t.Context(), CreateLeagueInput{OwnerUserID: "user-1", Name: "Lega", GameMode: "classic"})
	if err != nil {
		t.Fatalf("create league failed: %v", err)
	}

	// Join codes are case-insensitive on input.
	joined, err := service.Join(t.Context(), JoinLeagueInput{
		UserID:   "user-2",
		JoinCode: strings.ToLower(item.JoinCode),
	})
	if err != nil {
		t.Fatalf("join failed: %v", err)
	}
	if joined.ID != item.ID {
		t.Fatalf("expected to join league %s, got %s", item.ID, joined.ID)
	}

	membership, ok, err := leagueRepo.GetMembership(t.Context(), item.ID, "user-2")
	if err != nil || !ok {
		t.Fatalf("expected membership after join, ok=%v err=%v", ok, err)
	}
	if membership.TeamName != "Team user-2" {
		t.Fatalf("expected default team name Team user-2, got %s", membership.TeamName)
	}

	if _, err := service.Join(t.Context(), JoinLeagueInput{UserID: "user-2", JoinCode: item.JoinCode}); !errors.Is(err, ErrAlreadyMember) {
		t.Fatalf("expected ErrAlreadyMember, got %v", err)
	}
	if _, err := service.Join(t.Context(), JoinLeagueInput{UserID: "user-3", JoinCode: "NOPENOPE"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown code, got %v", err)
	}
}

func TestLeagueService_Join_Full(t *testing.T) {
	service, _, _ := newLeagueFixture()

	item, err := service.Create(t.Context(), CreateLeagueInput{
		OwnerUserID: "user-1",
		Name:        "Lega Piccola",
		GameMode:    "classic",
		MaxMembers:  2,
	})
	if err != nil {
		t.Fatalf("create league failed: %v", err)
	}

	if _, err := service.Join(t.Context(), JoinLeagueInput{UserID: "user-2", JoinCode: item.JoinCode}); err != nil {
		t.Fatalf("second member join failed: %v", err)
	}
	if _, err := service.Join(t.Context(), JoinLeagueInput{UserID: "user-3", JoinCode: item.JoinCode}); !errors.Is(err, ErrLeagueFull) {
		t.Fatalf("expected ErrLeagueFull, got %v", err)
	}
}

func TestLeagueService_Invite(t *testing.T) {
	service, _, userRepo := newLeagueFixture()
	seedUser(t, userRepo, "user-2", "luigi", "Luigi Verdi")

	item, err := service.Create(t.Context(), CreateLeagueInput{OwnerUserID: "user-1", Name: "Lega", GameMode: "classic"})
	if err != nil {
		t.Fatalf("create league failed: %v", err)
	}

	membership, err := service.Invite(t.Context(), "user-1", item.ID, "LUIGI")
	if err != nil {
		t.Fatalf("invite failed: %v", err)
	}
	if membership.UserID != "user-2" {
		t.Fatalf("expected invited user user-2, got %s", membership.UserID)
	}
	if membership.TeamName != "Team Luigi Verdi" {
		t.Fatalf("expected team name from display name, got %s", membership.TeamName)
	}

	if _, err := service.Invite(t.Context(), "user-2", item.ID, "luigi"); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied for non-owner invite, got %v", err)
	}
	if _, err := service.Invite(t.Context(), "user-1", item.ID, "ghost"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown username, got %v", err)
	}
}

func TestLeagueService_Leave_TransfersOwnership(t *testing.T) {
	service, leagueRepo, _ := newLeagueFixture()

	base := time.Date(2026, 8, 10, 18, 0, 0, 0, time.UTC)
	service.now = func() time.Time { return base }

	item, err := service.Create(t.Context(), CreateLeagueInput{OwnerUserID: "user-1", Name: "Lega", GameMode: "classic"})
	if err != nil {
		t.Fatalf("create league failed: %v", err)
	}

	service.now = func() time.Time { return base.Add(time.Minute) }
	if _, err := service.Join(t.Context(), JoinLeagueInput{UserID: "user-2", JoinCode: item.JoinCode}); err != nil {
		t.Fatalf("join user-2 failed: %v", err)
	}
	service.now = func() time.Time { return base.Add(2 * time.Minute) }
	if _, err := service.Join(t.Context(), JoinLeagueInput{UserID: "user-3", JoinCode: item.JoinCode}); err != nil {
		t.Fatalf("join user-3 failed: %v", err)
	}

	result, err := service.Leave(t.Context(), "user-1", item.ID)
	if err != nil {
		t.Fatalf("leave failed: %v", err)
	}
	if !result.Removed {
		t.Fatalf("expected removal to be reported")
	}
	if result.NewOwner == nil || result.NewOwner.UserID != "user-2" {
		t.Fatalf("expected earliest joined member user-2 promoted, got %+v", result.NewOwner)
	}
	if result.NewOwner.Role != league.RoleMaster {
		t.Fatalf("expected promoted member to hold master role, got %s", result.NewOwner.Role)
	}

	stored, ok, err := leagueRepo.GetByID(t.Context(), item.ID)
	if err != nil || !ok {
		t.Fatalf("expected league to survive owner departure, ok=%v err=%v", ok, err)
	}
	if stored.OwnerUserID != "user-2" {
		t.Fatalf("expected league owner user-2, got %s", stored.OwnerUserID)
	}

	// A member without master role leaves without any transfer.
	nonOwner, err := service.Leave(t.Context(), "user-3", item.ID)
	if err != nil {
		t.Fatalf("member leave failed: %v", err)
	}
	if nonOwner.NewOwner != nil {
		t.Fatalf("expected no ownership transfer for member departure, got %+v", nonOwner.NewOwner)
	}

	if _, err := service.Leave(t.Context(), "user-3", item.ID); !errors.Is(err, ErrNotMember) {
		t.Fatalf("expected ErrNotMember after leaving, got %v", err)
	}
}

func TestLeagueService_UpdateSettings_Permissions(t *testing.T) {
	service, _, _ := newLeagueFixture()

	item, err := service.Create(t.Context(), CreateLeagueInput{OwnerUserID: "user-1", Name: "Lega", GameMode: "classic"})
	if err != nil {
		t.Fatalf("create league failed: %v", err)
	}
	if _, err := service.Join(t.Context(), JoinLeagueInput{UserID: "user-2", JoinCode: item.JoinCode}); err != nil {
		t.Fatalf("join failed: %v", err)
	}

	updated, err := service.UpdateSettings(t.Context(), UpdateLeagueInput{
		UserID:   "user-1",
		LeagueID: item.ID,
		Budget:   1000,
		Status:   "archived",
	})
	if err != nil {
		t.Fatalf("update settings failed: %v", err)
	}
	if updated.Budget != 1000 || updated.Status != league.StatusArchived {
		t.Fatalf("expected budget 1000 and archived status, got %d %s", updated.Budget, updated.Status)
	}
	if updated.Name != "Lega" {
		t.Fatalf("expected untouched name, got %s", updated.Name)
	}

	if _, err := service.UpdateSettings(t.Context(), UpdateLeagueInput{UserID: "user-2", LeagueID: item.ID, Budget: 1}); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied for member, got %v", err)
	}
	if _, err := service.UpdateSettings(t.Context(), UpdateLeagueInput{UserID: "user-9", LeagueID: item.ID, Budget: 1}); !errors.Is(err, ErrNotMember) {
		t.Fatalf("expected ErrNotMember for outsider, got %v", err)
	}
	if _, err := service.UpdateSettings(t.Context(), UpdateLeagueInput{UserID: "user-1", LeagueID: item.ID, Status: "frozen"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unknown status, got %v", err)
	}
}

func TestLeagueService_Delete_SweepsImages(t *testing.T) {
	userRepo := memory.NewUserRepository()
	leagueRepo := memory.NewLeagueRepository(userRepo, nil, nil, nil)
	images := memory.NewImageStore()
	ids := &seqIDGenerator{prefix: "id"}
	formationSvc := NewFormationService(memory.NewFormationRepository(), memory.NewRosterRepository(nil), images, ids)
	service := NewLeagueService(leagueRepo, userRepo, formationSvc, ids)

	item, err := service.Create(t.Context(), CreateLeagueInput{OwnerUserID: "user-1", Name: "Lega", GameMode: "classic"})
	if err != nil {
		t.Fatalf("create league failed: %v", err)
	}

	keys := []string{
		"leagues/" + item.ID + "/formations/f-1/a.png",
		"leagues/" + item.ID + "/formations/f-2/b.png",
		"leagues/other/formations/f-3/c.png",
	}
	for _, key := range keys {
		if err := images.Put(t.Context(), key, "image/png", []byte{0x89}); err != nil {
			t.Fatalf("seed image %s failed: %v", key, err)
		}
	}

	if err := service.Delete(t.Context(), "user-1", item.ID); err != nil {
		t.Fatalf("delete league failed: %v", err)
	}
	if images.Len() != 1 {
		t.Fatalf("expected only the foreign league image to survive, got %d objects", images.Len())
	}
	if _, ok, _ := leagueRepo.GetByID(t.Context(), item.ID); ok {
		t.Fatalf("expected league row gone after delete")
	}
}

func TestLeagueService_Delete_CascadesLeagueData(t *testing.T) {
	userRepo := memory.NewUserRepository()
	catalogRepo := memory.NewCatalogRepository()
	rosterRepo := memory.NewRosterRepository(catalogRepo)
	participantRepo := memory.NewParticipantRepository()
	formationRepo := memory.NewFormationRepository()
	leagueRepo := memory.NewLeagueRepository(userRepo, rosterRepo, participantRepo, formationRepo)
	service := NewLeagueService(leagueRepo, userRepo, nil, &seqIDGenerator{prefix: "league"})

	item, err := service.Create(t.Context(), CreateLeagueInput{OwnerUserID: "user-1", Name: "Lega", GameMode: "classic"})
	if err != nil {
		t.Fatalf("create league failed: %v", err)
	}

	seedRoster(t, catalogRepo, rosterRepo, item.ID, []seededPlayer{
		{id: "p-1", name: "Rossi Mario", club: "Milan", role: "A"},
	})
	err = participantRepo.Create(t.Context(), participant.Participant{
		ID: "v-1", LeagueID: item.ID, Name: "Zio Piero", Budget: 500,
	})
	if err != nil {
		t.Fatalf("seed participant failed: %v", err)
	}
	err = formationRepo.Create(t.Context(), formation.Formation{
		ID: "f-1", LeagueID: item.ID, UserID: "user-1", Name: "Gara 1", Schema: "3-4-3",
	})
	if err != nil {
		t.Fatalf("seed formation failed: %v", err)
	}

	if err := service.Delete(t.Context(), "user-1", item.ID); err != nil {
		t.Fatalf("delete league failed: %v", err)
	}

	// Every league-scoped row goes with the league, as the database
	// foreign keys would enforce.
	if entries, err := rosterRepo.List(t.Context(), item.ID, roster.Filter{}); err != nil || len(entries) != 0 {
		t.Fatalf("expected empty roster after delete, got %d entries err=%v", len(entries), err)
	}
	if _, ok, _ := participantRepo.GetByID(t.Context(), item.ID, "v-1"); ok {
		t.Fatalf("expected participant gone after delete")
	}
	if _, ok, _ := formationRepo.GetByID(t.Context(), item.ID, "f-1"); ok {
		t.Fatalf("expected formation gone after delete")
	}
}

func TestLeagueService_MembersAndMembership(t *testing.T) {
	service, _, userRepo := newLeagueFixture()
	seedUser(t, userRepo, "user-1", "mario", "Mario")
	seedUser(t, userRepo, "user-2", "luigi", "Luigi")

	item, err := service.Create(t.Context(), CreateLeagueInput{OwnerUserID: "user-1", Name: "Lega", GameMode: "classic"})
	if err != nil {
		t.Fatalf("create league failed: %v", err)
	}
	if _, err := service.Join(t.Context(), JoinLeagueInput{UserID: "user-2", JoinCode: item.JoinCode}); err != nil {
		t.Fatalf("join failed: %v", err)
	}

	members, err := service.Members(t.Context(), "user-2", item.ID)
	if err != nil {
		t.Fatalf("list members failed: %v", err)
	}
	if len(members) != 2 {
		t.Fatalf("expected 2 members, got %d", len(members))
	}
	if members[0].Username != "mario" || members[1].Username != "luigi" {
		t.Fatalf("expected join order mario then luigi, got %s then %s", members[0].Username, members[1].Username)
	}

	if _, _, err := service.Membership(t.Context(), "user-9", item.ID); !errors.Is(err, ErrNotMember) {
		t.Fatalf("expected ErrNotMember, got %v", err)
	}
	if _, _, err := service.Membership(t.Context(), "user-1", "league-999"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown league, got %v", err)
	}
}
