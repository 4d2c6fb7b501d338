package drafts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/nutridesk/server/internal/config"
	"github.com/nutridesk/server/internal/storage"
)

// ErrExpired is returned when a draft exists but has outlived its TTL.
// The caller should treat it the same as a missing draft.
var ErrExpired = errors.New("draft expired")

// Service persists and recalls editing drafts with a rolling TTL.
type Service struct {
	store storage.DraftsStorage
	ttl   time.Duration
	now   func() time.Time
}

func NewService(store storage.DraftsStorage, cfg *config.Config) *Service {
	return &Service{
		store: store,
		ttl:   time.Duration(cfg.DraftTTLHours) * time.Hour,
		now:   time.Now,
	}
}

// SaveRequest is the body of PUT /v1/drafts.
type SaveRequest struct {
	ClientID     string  `json:"client_id"`
	DurationDays int     `json:"duration_days"`
	Payload      Payload `json:"payload"`
}

func (r *SaveRequest) Validate() error {
	if r.DurationDays < 1 {
		return fmt.Errorf("duration_days must be positive")
	}
	return nil
}

// DraftResponse is the wire form of a recalled draft.
type DraftResponse struct {
	Key        string  `json:"key"`
	SavedAt    string  `json:"saved_at"`
	Restorable bool    `json:"restorable"`
	Payload    Payload `json:"payload"`
}

// Save writes the draft document under its derived key, refreshing the
// TTL window.
func (s *Service) Save(ctx context.Context, owner string, req *SaveRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", fmt.Errorf("validation failed: %w", err)
	}

	payload, err := json.Marshal(req.Payload)
	if err != nil {
		return "", fmt.Errorf("encode draft: %w", err)
	}

	key := Key(req.ClientID, req.DurationDays)
	err = s.store.PutDraft(ctx, storage.DraftRecord{
		Owner:   owner,
		Key:     key,
		Payload: payload,
		SavedAt: s.now().UTC(),
	})
	if err != nil {
		return "", err
	}
	return key, nil
}

// Get recalls a draft. Expired drafts are deleted on read and reported
// as ErrExpired. The returned payload has its meal times normalized.
func (s *Service) Get(ctx context.Context, owner, clientID string, durationDays int) (*DraftResponse, error) {
	key := Key(clientID, durationDays)
	rec, err := s.store.GetDraft(ctx, owner, key)
	if err != nil {
		return nil, err
	}

	if IsExpired(rec.SavedAt, s.ttl, s.now()) {
		if err := s.store.DeleteDraft(ctx, owner, key); err != nil && !errors.Is(err, storage.ErrNotFound) {
			log.Printf("drafts: delete expired draft %s: %v", key, err)
		}
		return nil, ErrExpired
	}

	var payload Payload
	if err := json.Unmarshal(rec.Payload, &payload); err != nil {
		return nil, fmt.Errorf("decode draft: %w", err)
	}
	Normalize(&payload)

	return &DraftResponse{
		Key:        key,
		SavedAt:    rec.SavedAt.UTC().Format(time.RFC3339),
		Restorable: Restorable(&payload),
		Payload:    payload,
	}, nil
}

// Discard removes a draft, typically after the plan is saved for real.
func (s *Service) Discard(ctx context.Context, owner, clientID string, durationDays int) error {
	return s.store.DeleteDraft(ctx, owner, Key(clientID, durationDays))
}

// Sweep deletes all drafts past the TTL. Run periodically.
func (s *Service) Sweep(ctx context.Context) (int, error) {
	return s.store.DeleteExpiredDrafts(ctx, s.now().Add(-s.ttl))
}

// RunSweeper sweeps expired drafts on the given interval until the
// context is cancelled.
func (s *Service) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n, err := s.Sweep(ctx); err != nil {
				log.Printf("drafts: sweep failed: %v", err)
			} else if n > 0 {
				log.Printf("drafts: swept %d expired drafts", n)
			}
		}
	}
}
