// Package store holds the in-memory account and case lists and keeps them
// synchronized with the persistence adapter. Every successful mutation
// replaces the relevant list wholesale and schedules a full-blob persist;
// when the adapter fails the store logs a warning and continues in
// memory-only mode for the remainder of the session.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hopespot/rescue-server/internal/auth"
	"github.com/hopespot/rescue-server/internal/models"
	"github.com/hopespot/rescue-server/internal/storage"
)

// slugPattern is the admin-provisioned rescuer id convention, e.g. "mike-r1".
var slugPattern = regexp.MustCompile(`(?i)^[a-z]+-r\d+$`)

// AccountStore is the roster of rescuer accounts.
type AccountStore struct {
	mu       sync.RWMutex
	accounts []models.RescuerAccount
	kv       storage.Store
	key      string
	logger   *zap.SugaredLogger
	degraded bool
	now      func() time.Time
}

// NewAccountStore creates an account store persisting under the given key.
func NewAccountStore(kv storage.Store, key string, logger *zap.SugaredLogger) *AccountStore {
	return &AccountStore{kv: kv, key: key, logger: logger, now: time.Now}
}

// Load replaces the in-memory roster with the persisted blob. A missing key
// leaves the roster empty.
func (s *AccountStore) Load(ctx context.Context) error {
	b, err := s.kv.Get(ctx, s.key)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	var accounts []models.RescuerAccount
	if err := json.Unmarshal(b, &accounts); err != nil {
		return err
	}
	s.mu.Lock()
	s.accounts = accounts
	s.mu.Unlock()
	return nil
}

// SeedDefault holds one default account to provision on an empty roster.
type SeedDefault struct {
	ID       string
	Email    string
	Password string
	Name     string
	Phone    string
}

// Seed provisions the default accounts when the roster is empty. Existing
// rosters are left untouched.
func (s *AccountStore) Seed(ctx context.Context, defaults []SeedDefault) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.accounts) > 0 {
		return nil
	}
	seeded := make([]models.RescuerAccount, 0, len(defaults))
	for _, d := range defaults {
		hash, err := auth.HashPassword(d.Password)
		if err != nil {
			return err
		}
		seeded = append(seeded, models.RescuerAccount{
			ID:           strings.ToLower(d.ID),
			Email:        strings.ToLower(d.Email),
			PasswordHash: hash,
			Name:         d.Name,
			Phone:        d.Phone,
			RegisteredAt: s.now(),
		})
	}
	s.accounts = seeded
	s.persistLocked(ctx)
	s.logger.Infow("Seeded default rescuer accounts", "count", len(seeded))
	return nil
}

// Provision creates an account with an admin-chosen slug id. The id must
// match the name-r# pattern and both id and email must be unique
// case-insensitively.
func (s *AccountStore) Provision(ctx context.Context, req models.AccountProvision) (models.RescuerAccount, error) {
	if !slugPattern.MatchString(req.ID) {
		return models.RescuerAccount{}, ErrInvalidIDFormat
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := strings.ToLower(req.ID)
	email := strings.ToLower(req.Email)
	for _, a := range s.accounts {
		if strings.EqualFold(a.ID, id) {
			return models.RescuerAccount{}, ErrDuplicateID
		}
		if strings.EqualFold(a.Email, email) {
			return models.RescuerAccount{}, ErrDuplicateEmail
		}
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return models.RescuerAccount{}, err
	}

	account := models.RescuerAccount{
		ID:              id,
		Email:           email,
		PasswordHash:    hash,
		Name:            req.Name,
		Phone:           req.Phone,
		AltPhone:        req.AltPhone,
		Address:         req.Address,
		RegisteredAt:    s.now(),
		ProfileComplete: req.Address != "",
	}
	s.appendLocked(ctx, account)
	return account, nil
}

// Register creates a self-registered account with a generated opaque id.
// Only the email must be unique.
func (s *AccountStore) Register(ctx context.Context, req models.AccountRegistration) (models.RescuerAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := strings.ToLower(req.Email)
	for _, a := range s.accounts {
		if strings.EqualFold(a.Email, email) {
			return models.RescuerAccount{}, ErrDuplicateEmail
		}
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return models.RescuerAccount{}, err
	}

	account := models.RescuerAccount{
		ID:              uuid.New().String(),
		Email:           email,
		PasswordHash:    hash,
		Name:            req.Name,
		Phone:           req.Phone,
		Address:         req.Address,
		RegisteredAt:    s.now(),
		ProfileComplete: req.Address != "",
	}
	s.appendLocked(ctx, account)
	return account, nil
}

// FindByCredentials looks up an account by email (case-insensitive) and
// verifies the password. A single error covers both failure modes so the
// response never reveals which factor was wrong.
func (s *AccountStore) FindByCredentials(email, password string) (models.RescuerAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.accounts {
		if strings.EqualFold(a.Email, email) {
			if auth.CheckPassword(a.PasswordHash, password) {
				return a, nil
			}
			break
		}
	}
	return models.RescuerAccount{}, ErrInvalidCredentials
}

// FindByID returns the account with the given id.
func (s *AccountStore) FindByID(id string) (models.RescuerAccount, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.accounts {
		if strings.EqualFold(a.ID, id) {
			return a, true
		}
	}
	return models.RescuerAccount{}, false
}

// ListAll returns a copy of the roster in insertion order.
func (s *AccountStore) ListAll() []models.RescuerAccount {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.RescuerAccount(nil), s.accounts...)
}

// Degraded reports whether a persist failure switched the store to
// memory-only mode.
func (s *AccountStore) Degraded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.degraded
}

func (s *AccountStore) appendLocked(ctx context.Context, account models.RescuerAccount) {
	next := make([]models.RescuerAccount, 0, len(s.accounts)+1)
	next = append(next, s.accounts...)
	next = append(next, account)
	s.accounts = next
	s.persistLocked(ctx)
}

func (s *AccountStore) persistLocked(ctx context.Context) {
	if s.degraded {
		return
	}
	b, err := json.Marshal(s.accounts)
	if err != nil {
		s.logger.Errorw("Failed to marshal accounts", "error", err)
		return
	}
	if err := s.kv.Set(ctx, s.key, b); err != nil {
		s.degraded = true
		s.logger.Warnw("Account persistence failed, continuing in memory only", "error", err)
	}
}
