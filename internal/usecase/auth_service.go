package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/astatracker/fantacalcio-api/internal/domain/user"
	idgen "github.com/astatracker/fantacalcio-api/internal/platform/id"
)

type RegisterInput struct {
	Username    string
	Email       string
	Password    string
	DisplayName string
}

type LoginInput struct {
	Username string
	Password string
}

type AuthResult struct {
	User      user.User
	Token     string
	ExpiresAt time.Time
}

// TokenIssuer mints a signed session token for a principal.
type TokenIssuer interface {
	Issue(principal user.Principal, now time.Time) (token string, expiresAt time.Time, err error)
}

// TokenVerifier parses and validates a session token.
type TokenVerifier interface {
	Verify(token string) (user.Principal, error)
}

type AuthService struct {
	userRepo   user.Repository
	issuer     TokenIssuer
	verifier   TokenVerifier
	idGen      idgen.Generator
	bcryptCost int
	now        func() time.Time
}

func NewAuthService(
	userRepo user.Repository,
	issuer TokenIssuer,
	verifier TokenVerifier,
	idGen idgen.Generator,
	bcryptCost int,
) *AuthService {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AuthService{
		userRepo:   userRepo,
		issuer:     issuer,
		verifier:   verifier,
		idGen:      idGen,
		bcryptCost: bcryptCost,
		now:        time.Now,
	}
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (AuthResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AuthService.Register")
	defer span.End()

	input.Username = strings.ToLower(strings.TrimSpace(input.Username))
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	input.DisplayName = strings.TrimSpace(input.DisplayName)
	if err := validateUsername(input.Username); err != nil {
		return AuthResult{}, err
	}
	if input.Email == "" || !strings.Contains(input.Email, "@") {
		return AuthResult{}, fmt.Errorf("%w: a valid email is required", ErrInvalidInput)
	}
	if len(input.Password) < 8 {
		return AuthResult{}, fmt.Errorf("%w: password must be at least 8 characters", ErrInvalidInput)
	}
	if input.DisplayName == "" {
		input.DisplayName = input.Username
	}

	if _, exists, err := s.userRepo.GetByUsername(ctx, input.Username); err != nil {
		return AuthResult{}, fmt.Errorf("check username availability: %w", err)
	} else if exists {
		return AuthResult{}, fmt.Errorf("%w: username is already taken", ErrDuplicate)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.bcryptCost)
	if err != nil {
		return AuthResult{}, fmt.Errorf("hash password: %w", err)
	}

	userID, err := s.idGen.NewID()
	if err != nil {
		return AuthResult{}, fmt.Errorf("generate user id: %w", err)
	}

	now := s.now().UTC()
	account := user.User{
		ID:           userID,
		Username:     input.Username,
		Email:        input.Email,
		DisplayName:  input.DisplayName,
		PasswordHash: string(hash),
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.userRepo.Create(ctx, account); err != nil {
		if isDuplicateConstraintError(err) {
			return AuthResult{}, fmt.Errorf("%w: username or email is already taken", ErrDuplicate)
		}
		return AuthResult{}, fmt.Errorf("create user: %w", err)
	}

	return s.issueFor(account)
}

func (s *AuthService) Login(ctx context.Context, input LoginInput) (AuthResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AuthService.Login")
	defer span.End()

	input.Username = strings.ToLower(strings.TrimSpace(input.Username))
	if input.Username == "" || input.Password == "" {
		return AuthResult{}, fmt.Errorf("%w: username and password are required", ErrInvalidInput)
	}

	account, exists, err := s.userRepo.GetByUsername(ctx, input.Username)
	if err != nil {
		return AuthResult{}, fmt.Errorf("get user by username: %w", err)
	}
	if !exists {
		return AuthResult{}, fmt.Errorf("%w: unknown username or wrong password", ErrInvalidToken)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(input.Password)); err != nil {
		return AuthResult{}, fmt.Errorf("%w: unknown username or wrong password", ErrInvalidToken)
	}
	if !account.Active {
		return AuthResult{}, fmt.Errorf("%w: user=%s", ErrInactiveUser, account.ID)
	}

	return s.issueFor(account)
}

// Verify resolves a bearer token into the current account. The account is
// re-fetched on every call so a deactivated user loses access immediately,
// not at token expiry.
func (s *AuthService) Verify(ctx context.Context, token string) (user.User, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AuthService.Verify")
	defer span.End()

	token = strings.TrimSpace(token)
	if token == "" {
		return user.User{}, ErrMissingToken
	}

	principal, err := s.verifier.Verify(token)
	if err != nil {
		return user.User{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	account, exists, err := s.userRepo.GetByID(ctx, principal.UserID)
	if err != nil {
		return user.User{}, fmt.Errorf("get user by id: %w", err)
	}
	if !exists {
		return user.User{}, fmt.Errorf("%w: user no longer exists", ErrInvalidToken)
	}
	if !account.Active {
		return user.User{}, fmt.Errorf("%w: user=%s", ErrInactiveUser, account.ID)
	}
	return account, nil
}

func (s *AuthService) UpdateProfile(ctx context.Context, userID, displayName string) (user.User, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AuthService.UpdateProfile")
	defer span.End()

	userID = strings.TrimSpace(userID)
	displayName = strings.TrimSpace(displayName)
	if userID == "" {
		return user.User{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if displayName == "" {
		return user.User{}, fmt.Errorf("%w: display name is required", ErrInvalidInput)
	}

	account, exists, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return user.User{}, fmt.Errorf("get user by id: %w", err)
	}
	if !exists {
		return user.User{}, fmt.Errorf("%w: user not found", ErrNotFound)
	}

	account.DisplayName = displayName
	account.UpdatedAt = s.now().UTC()
	if err := s.userRepo.Update(ctx, account); err != nil {
		return user.User{}, fmt.Errorf("update user: %w", err)
	}
	return account, nil
}

func (s *AuthService) issueFor(account user.User) (AuthResult, error) {
	token, expiresAt, err := s.issuer.Issue(user.Principal{
		UserID:   account.ID,
		Username: account.Username,
	}, s.now().UTC())
	if err != nil {
		return AuthResult{}, fmt.Errorf("issue session token: %w", err)
	}
	return AuthResult{
		User:      account,
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}

func validateUsername(username string) error {
	if len(username) < 3 || len(username) > 32 {
		return fmt.Errorf("%w: username must be 3-32 characters", ErrInvalidInput)
	}
	for _, r := range username {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= '0' && r <= '9':
		case r == '_' || r == '.':
		default:
			return fmt.Errorf("%w: username may only contain letters, digits, underscore, and dot", ErrInvalidInput)
		}
	}
	return nil
}

func isDuplicateConstraintError(err error) bool {
	if err == nil {
		return false
	}
	text := strings.ToLower(err.Error())
	return strings.Contains(text, "duplicate key value violates unique constraint")
}
