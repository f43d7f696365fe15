// Package services contains server-side business logic. This file implements
// UserService, which handles registration, login and identity lookups.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/mediavault/internal/common"
	"github.com/dmitrijs2005/mediavault/internal/logging"
	"github.com/dmitrijs2005/mediavault/internal/server/auth"
	"github.com/dmitrijs2005/mediavault/internal/server/models"
	"github.com/dmitrijs2005/mediavault/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

const (
	maxUsernameLen = 64
	minPasswordLen = 6
	// bcrypt ignores everything past 72 bytes.
	maxPasswordLen = 72
)

// Tokens issues and verifies identity tokens.
type Tokens interface {
	Issue(userID string) (string, error)
	Verify(token string) (string, error)
}

// UserService provides account operations:
// - Register: create a user and sign them in
// - Login: verify credentials and mint a token
// - WhoAmI: resolve a token's user id back to the account
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	tokens      Tokens
	log         logging.Logger
}

// NewUserService constructs a UserService.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, tokens Tokens, log logging.Logger) *UserService {
	return &UserService{
		db:          db,
		repomanager: m,
		tokens:      tokens,
		log:         log.With("module", "users"),
	}
}

func validateCredentials(username, password string) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" || utf8.RuneCountInString(username) > maxUsernameLen {
		return "", fmt.Errorf("%w: username must be 1-%d characters", common.ErrValidation, maxUsernameLen)
	}
	if len(password) < minPasswordLen || len(password) > maxPasswordLen {
		return "", fmt.Errorf("%w: password must be %d-%d bytes", common.ErrValidation, minPasswordLen, maxPasswordLen)
	}
	return username, nil
}

// Register creates the account and returns it together with a fresh token.
// A taken username yields common.ErrDuplicateUsername.
func (s *UserService) Register(ctx context.Context, username, password string) (*models.User, string, error) {
	username, err := validateCredentials(username, password)
	if err != nil {
		return nil, "", err
	}

	repo := s.repomanager.Users(s.db)

	_, err = repo.GetByUsername(ctx, username)
	switch {
	case err == nil:
		return nil, "", common.ErrDuplicateUsername
	case !errors.Is(err, common.ErrorNotFound):
		s.log.Error(ctx, "user lookup failed", "error", err)
		return nil, "", common.ErrorInternal
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		s.log.Error(ctx, "password hashing failed", "error", err)
		return nil, "", common.ErrorInternal
	}

	u, err := repo.Create(ctx, &models.User{UserName: username, PasswordHash: hash})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, "", common.ErrDuplicateUsername
		}
		s.log.Error(ctx, "user create failed", "error", err)
		return nil, "", common.ErrorInternal
	}

	token, err := s.issue(ctx, u.ID)
	if err != nil {
		return nil, "", err
	}
	s.log.Info(ctx, "user registered", "user_id", u.ID)
	return u, token, nil
}

// Login verifies the password. Unknown usernames and wrong passwords both
// yield common.ErrInvalidCredentials and cost one bcrypt comparison.
func (s *UserService) Login(ctx context.Context, username, password string) (*models.User, string, error) {
	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil && !errors.Is(err, common.ErrorNotFound) {
		s.log.Error(ctx, "user lookup failed", "error", err)
		return nil, "", common.ErrorInternal
	}

	hash := ""
	if user != nil {
		hash = user.PasswordHash
	}
	ok, err := auth.CheckPassword(hash, password)
	if err != nil {
		s.log.Error(ctx, "password check failed", "error", err)
		return nil, "", common.ErrorInternal
	}
	if !ok {
		return nil, "", common.ErrInvalidCredentials
	}

	token, err := s.issue(ctx, user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// WhoAmI returns the account for userID, or common.ErrorNotFound when it no
// longer exists.
func (s *UserService) WhoAmI(ctx context.Context, userID string) (*models.User, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return nil, common.ErrorNotFound
	}
	u, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		s.log.Error(ctx, "user lookup failed", "error", err)
		return nil, common.ErrorInternal
	}
	return u, nil
}

func (s *UserService) issue(ctx context.Context, userID string) (string, error) {
	token, err := s.tokens.Issue(userID)
	if err != nil {
		s.log.Error(ctx, "token issue failed", "error", err)
		return "", common.ErrorInternal
	}
	return token, nil
}
