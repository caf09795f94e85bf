// Package services contains application services for the Jara client.
// This file defines the local credential store: registration and login
// against user records kept in persisted key/value state.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/jara/internal/client/kv"
	"github.com/dmitrijs2005/jara/internal/client/models"
	"github.com/dmitrijs2005/jara/internal/common"
	"github.com/dmitrijs2005/jara/internal/cryptox"
	"github.com/dmitrijs2005/jara/internal/logging"
)

// AuthService defines the local credential operations.
//
// Contract:
//   - Register: create a user for a new normalized email and mint a token.
//   - Login: check the password of an existing user and mint a new token.
//     Earlier tokens stay valid; there is no revocation.
//   - CurrentUser: the user whose email is stored as the signed-in email.
type AuthService interface {
	Register(ctx context.Context, email string, password []byte) (*models.AuthResult, error)
	Login(ctx context.Context, email string, password []byte) (*models.AuthResult, error)
	CurrentUser(ctx context.Context) (*models.PublicUser, error)
}

// Locker serializes the read-modify-write of the user list across
// processes. *flock.Flock satisfies it.
type Locker interface {
	Lock() error
	Unlock() error
}

type noopLocker struct{}

func (noopLocker) Lock() error   { return nil }
func (noopLocker) Unlock() error { return nil }

// authService keeps users as one JSON list under common.KeyUsers.
type authService struct {
	store  kv.Store
	hasher cryptox.PasswordHasher
	locker Locker
	now    func() time.Time
	logger logging.Logger
}

// NewAuthService constructs an AuthService. A nil locker disables
// cross-process locking.
func NewAuthService(store kv.Store, hasher cryptox.PasswordHasher, locker Locker, logger logging.Logger) AuthService {
	if locker == nil {
		locker = noopLocker{}
	}
	return &authService{
		store:  store,
		hasher: hasher,
		locker: locker,
		now:    time.Now,
		logger: logger.With("module", "auth"),
	}
}

// NormalizeEmail trims and lower-cases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// isoMillis matches the timestamps already present in stored profiles.
const isoMillis = "2006-01-02T15:04:05.000Z07:00"

func (a *authService) Register(ctx context.Context, email string, password []byte) (*models.AuthResult, error) {
	e := NormalizeEmail(email)

	if err := a.locker.Lock(); err != nil {
		return nil, fmt.Errorf("lock user list: %w", err)
	}
	defer func() {
		if err := a.locker.Unlock(); err != nil {
			a.logger.Warn(ctx, "unlock user list failed", "error", err)
		}
	}()

	users, err := a.getUsers(ctx)
	if err != nil {
		return nil, err
	}
	if findUser(users, e) != nil {
		return nil, common.ErrDuplicateAccount
	}

	hash, err := a.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	id, err := common.MakeRandHexString(16)
	if err != nil {
		return nil, fmt.Errorf("user id: %w", err)
	}

	user := models.LocalUser{
		ID:           id,
		Email:        e,
		PasswordHash: hash,
		CreatedAt:    a.now().UTC().Format(isoMillis),
	}
	users = append(users, user)
	if err := a.saveUsers(ctx, users); err != nil {
		return nil, err
	}

	a.logger.Info(ctx, "user registered", "user_id", user.ID)
	return issue(user)
}

func (a *authService) Login(ctx context.Context, email string, password []byte) (*models.AuthResult, error) {
	e := NormalizeEmail(email)

	users, err := a.getUsers(ctx)
	if err != nil {
		return nil, err
	}
	user := findUser(users, e)
	if user == nil {
		return nil, common.ErrInvalidCredentials
	}
	if !a.hasher.Verify(password, user.PasswordHash) {
		return nil, common.ErrInvalidCredentials
	}
	return issue(*user)
}

func (a *authService) CurrentUser(ctx context.Context) (*models.PublicUser, error) {
	email, ok, err := a.store.Get(ctx, common.KeyAuthEmail)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrStorageUnavailable, err)
	}
	if !ok || email == "" {
		return nil, nil
	}

	users, err := a.getUsers(ctx)
	if err != nil {
		return nil, err
	}
	u := findUser(users, email)
	if u == nil {
		return nil, nil
	}
	return &models.PublicUser{ID: u.ID, Email: u.Email}, nil
}

// getUsers reads the user list. A corrupt list reads as empty, like a
// fresh profile.
func (a *authService) getUsers(ctx context.Context) ([]models.LocalUser, error) {
	raw, ok, err := a.store.Get(ctx, common.KeyUsers)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrStorageUnavailable, err)
	}
	if !ok || raw == "" {
		return nil, nil
	}

	var users []models.LocalUser
	if err := json.Unmarshal([]byte(raw), &users); err != nil {
		a.logger.Warn(ctx, "user list is unreadable, treating as empty", "error", err)
		return nil, nil
	}
	return users, nil
}

func (a *authService) saveUsers(ctx context.Context, users []models.LocalUser) error {
	b, err := json.Marshal(users)
	if err != nil {
		return fmt.Errorf("encode user list: %w", err)
	}
	if err := a.store.Set(ctx, common.KeyUsers, string(b)); err != nil {
		return fmt.Errorf("%w: %v", common.ErrStorageUnavailable, err)
	}
	return nil
}

func findUser(users []models.LocalUser, email string) *models.LocalUser {
	for i := range users {
		if users[i].Email == email {
			return &users[i]
		}
	}
	return nil
}

func issue(u models.LocalUser) (*models.AuthResult, error) {
	token, err := cryptox.NewLocalToken(u.ID)
	if err != nil {
		return nil, err
	}
	return &models.AuthResult{Token: token, User: models.PublicUser{ID: u.ID, Email: u.Email}}, nil
}
