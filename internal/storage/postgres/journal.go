package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nutridesk/server/internal/storage"
)

type journalStorage struct {
	pool *pgxpool.Pool
}

func (s *journalStorage) CreateEntry(ctx context.Context, e storage.JournalEntry) (storage.JournalEntry, error) {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO journal_entries (id, owner, client_id, date, kind, payload)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, owner, client_id, date, kind, payload, created_at`,
		e.ID, e.Owner, e.ClientID, e.Date, e.Kind, e.Payload,
	).Scan(&e.ID, &e.Owner, &e.ClientID, &e.Date, &e.Kind, &e.Payload, &e.CreatedAt)
	if err != nil {
		return storage.JournalEntry{}, fmt.Errorf("create journal entry: %w", err)
	}
	return e, nil
}

func (s *journalStorage) ListEntries(ctx context.Context, owner, clientID, date, kind string) ([]storage.JournalEntry, error) {
	query := `
		SELECT id, owner, client_id, date, kind, payload, created_at
		FROM journal_entries
		WHERE owner = $1 AND client_id = $2`
	args := []any{owner, clientID}
	if date != "" {
		args = append(args, date)
		query += fmt.Sprintf(" AND date = $%d", len(args))
	}
	if kind != "" {
		args = append(args, kind)
		query += fmt.Sprintf(" AND kind = $%d", len(args))
	}
	query += " ORDER BY date, created_at"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list journal entries: %w", err)
	}
	defer rows.Close()

	var results []storage.JournalEntry
	for rows.Next() {
		var e storage.JournalEntry
		if err := rows.Scan(&e.ID, &e.Owner, &e.ClientID, &e.Date, &e.Kind, &e.Payload, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan journal entry: %w", err)
		}
		results = append(results, e)
	}
	return results, rows.Err()
}

func (s *journalStorage) DeleteEntry(ctx context.Context, owner, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM journal_entries WHERE owner = $1 AND id = $2`, owner, id)
	if err != nil {
		return fmt.Errorf("delete journal entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *journalStorage) GetTargets(ctx context.Context, owner, clientID, date string) (storage.JournalTarget, error) {
	var t storage.JournalTarget
	err := s.pool.QueryRow(ctx, `
		SELECT owner, client_id, date, water_target_ml, steps_target, sleep_target_min, updated_at
		FROM journal_targets WHERE owner = $1 AND client_id = $2 AND date = $3`,
		owner, clientID, date,
	).Scan(&t.Owner, &t.ClientID, &t.Date, &t.WaterTargetMl, &t.StepsTarget, &t.SleepTargetMin, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return storage.JournalTarget{}, storage.ErrNotFound
	}
	if err != nil {
		return storage.JournalTarget{}, fmt.Errorf("get journal targets: %w", err)
	}
	return t, nil
}

func (s *journalStorage) PutTargets(ctx context.Context, t storage.JournalTarget) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO journal_targets (owner, client_id, date, water_target_ml, steps_target, sleep_target_min)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (owner, client_id, date) DO UPDATE
		SET water_target_ml = EXCLUDED.water_target_ml,
			steps_target = EXCLUDED.steps_target,
			sleep_target_min = EXCLUDED.sleep_target_min,
			updated_at = now()`,
		t.Owner, t.ClientID, t.Date, t.WaterTargetMl, t.StepsTarget, t.SleepTargetMin,
	)
	if err != nil {
		return fmt.Errorf("put journal targets: %w", err)
	}
	return nil
}
