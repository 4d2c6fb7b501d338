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

type clientsStorage struct {
	pool *pgxpool.Pool
}

const clientColumns = `id, owner, name, email, phone, birth_date, sex, height_cm,
	allergies, dietary_preferences, medical_conditions, notes, created_at, updated_at`

func scanClient(row pgx.Row) (storage.Client, error) {
	var c storage.Client
	err := row.Scan(
		&c.ID, &c.Owner, &c.Name, &c.Email, &c.Phone, &c.BirthDate, &c.Sex, &c.HeightCm,
		&c.Allergies, &c.DietaryPreferences, &c.MedicalConditions, &c.Notes,
		&c.CreatedAt, &c.UpdatedAt,
	)
	return c, err
}

func (s *clientsStorage) CreateClient(ctx context.Context, c storage.Client) (storage.Client, error) {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	row := s.pool.QueryRow(ctx, `
		INSERT INTO clients (id, owner, name, email, phone, birth_date, sex, height_cm,
			allergies, dietary_preferences, medical_conditions, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING `+clientColumns,
		c.ID, c.Owner, c.Name, c.Email, c.Phone, c.BirthDate, c.Sex, c.HeightCm,
		c.Allergies, c.DietaryPreferences, c.MedicalConditions, c.Notes,
	)
	created, err := scanClient(row)
	if err != nil {
		return storage.Client{}, fmt.Errorf("create client: %w", err)
	}
	return created, nil
}

func (s *clientsStorage) GetClient(ctx context.Context, owner, id string) (storage.Client, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+clientColumns+` FROM clients WHERE owner = $1 AND id = $2`,
		owner, id,
	)
	c, err := scanClient(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return storage.Client{}, storage.ErrNotFound
	}
	if err != nil {
		return storage.Client{}, fmt.Errorf("get client: %w", err)
	}
	return c, nil
}

func (s *clientsStorage) ListClients(ctx context.Context, owner string) ([]storage.Client, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+clientColumns+` FROM clients WHERE owner = $1 ORDER BY name`,
		owner,
	)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	defer rows.Close()

	var results []storage.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("scan client: %w", err)
		}
		results = append(results, c)
	}
	return results, rows.Err()
}

func (s *clientsStorage) UpdateClient(ctx context.Context, c storage.Client) (storage.Client, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE clients
		SET name = $3, email = $4, phone = $5, birth_date = $6, sex = $7, height_cm = $8,
			allergies = $9, dietary_preferences = $10, medical_conditions = $11, notes = $12,
			updated_at = now()
		WHERE owner = $1 AND id = $2
		RETURNING `+clientColumns,
		c.Owner, c.ID, c.Name, c.Email, c.Phone, c.BirthDate, c.Sex, c.HeightCm,
		c.Allergies, c.DietaryPreferences, c.MedicalConditions, c.Notes,
	)
	updated, err := scanClient(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return storage.Client{}, storage.ErrNotFound
	}
	if err != nil {
		return storage.Client{}, fmt.Errorf("update client: %w", err)
	}
	return updated, nil
}

func (s *clientsStorage) DeleteClient(ctx context.Context, owner, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM clients WHERE owner = $1 AND id = $2`, owner, id)
	if err != nil {
		return fmt.Errorf("delete client: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}
