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

type exportsStorage struct {
	pool *pgxpool.Pool
}

const exportColumns = `id, owner, client_id, audience, format, file_name, key, size_bytes, created_at`

func scanExport(row pgx.Row) (storage.ExportMeta, error) {
	var m storage.ExportMeta
	err := row.Scan(
		&m.ID, &m.Owner, &m.ClientID, &m.Audience, &m.Format,
		&m.FileName, &m.Key, &m.SizeBytes, &m.CreatedAt,
	)
	return m, err
}

func (s *exportsStorage) CreateExport(ctx context.Context, m storage.ExportMeta) (storage.ExportMeta, error) {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	row := s.pool.QueryRow(ctx, `
		INSERT INTO plan_exports (id, owner, client_id, audience, format, file_name, key, size_bytes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+exportColumns,
		m.ID, m.Owner, m.ClientID, m.Audience, m.Format, m.FileName, m.Key, m.SizeBytes,
	)
	created, err := scanExport(row)
	if err != nil {
		return storage.ExportMeta{}, fmt.Errorf("create export: %w", err)
	}
	return created, nil
}

func (s *exportsStorage) GetExport(ctx context.Context, owner, id string) (storage.ExportMeta, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+exportColumns+` FROM plan_exports WHERE owner = $1 AND id = $2`,
		owner, id,
	)
	m, err := scanExport(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return storage.ExportMeta{}, storage.ErrNotFound
	}
	if err != nil {
		return storage.ExportMeta{}, fmt.Errorf("get export: %w", err)
	}
	return m, nil
}

func (s *exportsStorage) ListExports(ctx context.Context, owner, clientID string) ([]storage.ExportMeta, error) {
	query := `SELECT ` + exportColumns + ` FROM plan_exports WHERE owner = $1`
	args := []any{owner}
	if clientID != "" {
		args = append(args, clientID)
		query += " AND client_id = $2"
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list exports: %w", err)
	}
	defer rows.Close()

	var results []storage.ExportMeta
	for rows.Next() {
		m, err := scanExport(rows)
		if err != nil {
			return nil, fmt.Errorf("scan export: %w", err)
		}
		results = append(results, m)
	}
	return results, rows.Err()
}

func (s *exportsStorage) DeleteExport(ctx context.Context, owner, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM plan_exports WHERE owner = $1 AND id = $2`, owner, id)
	if err != nil {
		return fmt.Errorf("delete export: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *exportsStorage) CountExports(ctx context.Context, owner, clientID string) (int, error) {
	query := `SELECT count(*) FROM plan_exports WHERE owner = $1`
	args := []any{owner}
	if clientID != "" {
		args = append(args, clientID)
		query += " AND client_id = $2"
	}
	var count int
	if err := s.pool.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count exports: %w", err)
	}
	return count, nil
}
