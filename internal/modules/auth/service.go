package auth

import (
	"context"
	"errors"

	"savelog/internal/domain"
	"savelog/internal/repository"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type tokenService interface {
	Issue(username string) (string, error)
	Resolve(t string) (string, bool)
}

// Service contains the identity logic: registration, login and token
// resolution.
type Service struct {
	users  UserRepositoryInterface
	tokens tokenService
}

func NewService(users UserRepositoryInterface, tokens tokenService) *Service {
	return &Service{
		users:  users,
		tokens: tokens,
	}
}

// Register creates a user. Usernames are unique and case-sensitive; a taken
// name fails with ErrUsernameTaken and leaves the existing user untouched.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*domain.User, error) {
	exists, err := s.users.ExistsByUsername(ctx, req.Username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrUsernameTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:     req.Username,
		PasswordHash: string(hash),
	}
	if err := s.users.Create(ctx, user); err != nil {
		// Lost the race against a concurrent register of the same name.
		if errors.Is(err, repository.ErrDuplicateUsername) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}

	user.PasswordHash = ""
	return user, nil
}

// Login checks the credentials and issues a fresh bearer token. Unknown
// username and wrong password are reported identically.
func (s *Service) Login(ctx context.Context, req LoginRequest) (string, error) {
	user, err := s.users.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return "", ErrInvalidCredentials
	}

	return s.tokens.Issue(user.Username)
}

// CurrentUser resolves a bearer token to the user it was issued for. The
// token table maps tokens to usernames only, so the user row is looked up on
// every call; a token whose user has vanished resolves to ErrInvalidToken.
func (s *Service) CurrentUser(ctx context.Context, t string) (*domain.User, error) {
	username, ok := s.tokens.Resolve(t)
	if !ok {
		return nil, ErrInvalidToken
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}

	user.PasswordHash = ""
	return user, nil
}
