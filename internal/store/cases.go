package store

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hopespot/rescue-server/internal/engine"
	"github.com/hopespot/rescue-server/internal/models"
	"github.com/hopespot/rescue-server/internal/storage"
)

// CaseStore is the ordered list of rescue cases, newest first.
type CaseStore struct {
	mu       sync.RWMutex
	cases    []models.RescueCase
	lastID   int64
	kv       storage.Store
	key      string
	logger   *zap.SugaredLogger
	degraded bool
	now      func() time.Time
}

// NewCaseStore creates a case store persisting under the given key.
func NewCaseStore(kv storage.Store, key string, logger *zap.SugaredLogger) *CaseStore {
	return &CaseStore{kv: kv, key: key, logger: logger, now: time.Now}
}

// Load replaces the in-memory list with the persisted blob.
func (s *CaseStore) Load(ctx context.Context) error {
	b, err := s.kv.Get(ctx, s.key)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	var cases []models.RescueCase
	if err := json.Unmarshal(b, &cases); err != nil {
		return err
	}
	s.mu.Lock()
	s.cases = cases
	for _, c := range cases {
		if n, err := strconv.ParseInt(c.ID, 10, 64); err == nil && n > s.lastID {
			s.lastID = n
		}
	}
	s.mu.Unlock()
	return nil
}

// Submit creates a new case in the pending state and prepends it so the most
// recent case is always first. The id is a millisecond timestamp bumped past
// the previous id, so ids stay unique and monotonic within the store; the
// tracking id is a short uuid-derived reference for sharing with the helper.
func (s *CaseStore) Submit(ctx context.Context, req models.CaseSubmission) models.RescueCase {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.now().UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id

	c := models.RescueCase{
		ID:             strconv.FormatInt(id, 10),
		TrackingID:     uuid.New().String()[:8],
		HelperName:     req.HelperName,
		HelperPhone:    req.HelperPhone,
		HelperAltPhone: req.HelperAltPhone,
		HelperEmail:    req.HelperEmail,
		Location:       req.Location,
		PhotoRef:       req.PhotoRef,
		Notes:          req.Notes,
		Status:         models.StatusPending,
		CreatedAt:      s.now(),
		Revision:       1,
	}

	next := make([]models.RescueCase, 0, len(s.cases)+1)
	next = append(next, c)
	next = append(next, s.cases...)
	s.cases = next
	s.persistLocked(ctx)

	s.logger.Infow("Case submitted", "id", c.ID, "tracking_id", c.TrackingID)
	return c
}

// ApplyTransition validates the requested status change through the engine
// and replaces the matching case. ExpectedRevision, when non-nil, must match
// the case's current revision.
func (s *CaseStore) ApplyTransition(ctx context.Context, id string, requested models.Status, actor engine.Actor, aux engine.Aux, expectedRevision *int) (models.RescueCase, error) {
	return s.mutate(ctx, id, expectedRevision, func(c models.RescueCase) (models.RescueCase, error) {
		return engine.Apply(c, requested, actor, aux)
	})
}

// Reject returns a case to the offer pool via the engine's return-to-pool
// edge, recording the declining rescuer.
func (s *CaseStore) Reject(ctx context.Context, id string, actor engine.Actor, expectedRevision *int) (models.RescueCase, error) {
	return s.mutate(ctx, id, expectedRevision, func(c models.RescueCase) (models.RescueCase, error) {
		return engine.Reject(c, actor)
	})
}

func (s *CaseStore) mutate(ctx context.Context, id string, expectedRevision *int, fn func(models.RescueCase) (models.RescueCase, error)) (models.RescueCase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, c := range s.cases {
		if c.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return models.RescueCase{}, ErrCaseNotFound
	}

	current := s.cases[idx]
	if expectedRevision != nil && *expectedRevision != current.Revision {
		return models.RescueCase{}, ErrRevisionConflict
	}

	updated, err := fn(current)
	if err != nil {
		return models.RescueCase{}, err
	}
	updated.Revision = current.Revision + 1

	next := append([]models.RescueCase(nil), s.cases...)
	next[idx] = updated
	s.cases = next
	s.persistLocked(ctx)

	s.logger.Infow("Case updated", "id", id, "status", updated.Status, "revision", updated.Revision)
	return updated, nil
}

// FindByID returns the case with the given id.
func (s *CaseStore) FindByID(id string) (models.RescueCase, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.cases {
		if c.ID == id {
			return c, true
		}
	}
	return models.RescueCase{}, false
}

// ListAll returns a copy of the case list in stored order.
func (s *CaseStore) ListAll() []models.RescueCase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.RescueCase(nil), s.cases...)
}

// ClearAll empties the case list. Irreversible.
func (s *CaseStore) ClearAll(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cases = nil
	s.persistLocked(ctx)
	s.logger.Infow("Case list cleared")
}

// ReplaceAll swaps in an imported case list verbatim. The caller is
// responsible for having parsed a JSON array; entries are not validated
// further and malformed records surface downstream.
func (s *CaseStore) ReplaceAll(ctx context.Context, cases []models.RescueCase) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cases = append([]models.RescueCase(nil), cases...)
	s.lastID = 0
	for _, c := range s.cases {
		if n, err := strconv.ParseInt(c.ID, 10, 64); err == nil && n > s.lastID {
			s.lastID = n
		}
	}
	s.persistLocked(ctx)
	s.logger.Infow("Case list replaced", "count", len(cases))
}

// Degraded reports whether a persist failure switched the store to
// memory-only mode.
func (s *CaseStore) Degraded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.degraded
}

func (s *CaseStore) persistLocked(ctx context.Context) {
	if s.degraded {
		return
	}
	b, err := json.Marshal(s.cases)
	if err != nil {
		s.logger.Errorw("Failed to marshal cases", "error", err)
		return
	}
	if err := s.kv.Set(ctx, s.key, b); err != nil {
		s.degraded = true
		s.logger.Warnw("Case persistence failed, continuing in memory only", "error", err)
	}
}
