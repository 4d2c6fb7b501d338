package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nutridesk/server/internal/storage"
)

type draftsStorage struct {
	pool *pgxpool.Pool
}

func (s *draftsStorage) PutDraft(ctx context.Context, d storage.DraftRecord) error {
	if d.SavedAt.IsZero() {
		d.SavedAt = time.Now().UTC()
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO plan_drafts (owner, key, payload, saved_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (owner, key) DO UPDATE
		SET payload = EXCLUDED.payload, saved_at = EXCLUDED.saved_at`,
		d.Owner, d.Key, d.Payload, d.SavedAt,
	)
	if err != nil {
		return fmt.Errorf("put draft: %w", err)
	}
	return nil
}

func (s *draftsStorage) GetDraft(ctx context.Context, owner, key string) (storage.DraftRecord, error) {
	var d storage.DraftRecord
	err := s.pool.QueryRow(ctx, `
		SELECT owner, key, payload, saved_at FROM plan_drafts WHERE owner = $1 AND key = $2`,
		owner, key,
	).Scan(&d.Owner, &d.Key, &d.Payload, &d.SavedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return storage.DraftRecord{}, storage.ErrNotFound
	}
	if err != nil {
		return storage.DraftRecord{}, fmt.Errorf("get draft: %w", err)
	}
	return d, nil
}

func (s *draftsStorage) DeleteDraft(ctx context.Context, owner, key string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM plan_drafts WHERE owner = $1 AND key = $2`, owner, key)
	if err != nil {
		return fmt.Errorf("delete draft: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *draftsStorage) DeleteExpiredDrafts(ctx context.Context, before time.Time) (int, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM plan_drafts WHERE saved_at < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("delete expired drafts: %w", err)
	}
	return int(tag.RowsAffected()), nil
}
