package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStorage is the Postgres implementation of storage.Storage.
type PostgresStorage struct {
	pool *pgxpool.Pool
	*clientsStorage
	*plansStorage
	*draftsStorage
	*recipesStorage
	*journalStorage
	*exportsStorage
}

// New opens a connection pool and verifies connectivity.
func New(ctx context.Context, databaseURL string) (*PostgresStorage, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStorage{
		pool:           pool,
		clientsStorage: &clientsStorage{pool: pool},
		plansStorage:   &plansStorage{pool: pool},
		draftsStorage:  &draftsStorage{pool: pool},
		recipesStorage: &recipesStorage{pool: pool},
		journalStorage: &journalStorage{pool: pool},
		exportsStorage: &exportsStorage{pool: pool},
	}, nil
}

func (p *PostgresStorage) Close(ctx context.Context) error {
	p.pool.Close()
	return nil
}
