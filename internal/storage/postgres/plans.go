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

type plansStorage struct {
	pool *pgxpool.Pool
}

const planColumns = `id, owner, client_id, title, duration_days, start_date, days, meal_types, created_at, updated_at`

func scanPlan(row pgx.Row) (storage.PlanRecord, error) {
	var p storage.PlanRecord
	err := row.Scan(
		&p.ID, &p.Owner, &p.ClientID, &p.Title, &p.DurationDays, &p.StartDate,
		&p.Days, &p.MealTypes, &p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

// UpsertPlan replaces a client's plan document. One plan per
// owner+client, enforced by a unique constraint.
func (s *plansStorage) UpsertPlan(ctx context.Context, p storage.PlanRecord) (storage.PlanRecord, error) {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	row := s.pool.QueryRow(ctx, `
		INSERT INTO diet_plans (id, owner, client_id, title, duration_days, start_date, days, meal_types)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (owner, client_id) DO UPDATE
		SET title = EXCLUDED.title,
			duration_days = EXCLUDED.duration_days,
			start_date = EXCLUDED.start_date,
			days = EXCLUDED.days,
			meal_types = EXCLUDED.meal_types,
			updated_at = now()
		RETURNING `+planColumns,
		p.ID, p.Owner, p.ClientID, p.Title, p.DurationDays, p.StartDate, p.Days, p.MealTypes,
	)
	saved, err := scanPlan(row)
	if err != nil {
		return storage.PlanRecord{}, fmt.Errorf("upsert plan: %w", err)
	}
	return saved, nil
}

func (s *plansStorage) GetPlan(ctx context.Context, owner, clientID string) (storage.PlanRecord, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+planColumns+` FROM diet_plans WHERE owner = $1 AND client_id = $2`,
		owner, clientID,
	)
	p, err := scanPlan(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return storage.PlanRecord{}, storage.ErrNotFound
	}
	if err != nil {
		return storage.PlanRecord{}, fmt.Errorf("get plan: %w", err)
	}
	return p, nil
}

func (s *plansStorage) DeletePlan(ctx context.Context, owner, clientID string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM diet_plans WHERE owner = $1 AND client_id = $2`, owner, clientID)
	if err != nil {
		return fmt.Errorf("delete plan: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}
