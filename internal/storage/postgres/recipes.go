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

type recipesStorage struct {
	pool *pgxpool.Pool
}

const recipeColumns = `id, owner, name, category, unit, cal, carbs, fats, protein, fiber,
	allergens, dietary_tags, contraindications, ingredients, created_at, updated_at`

func scanRecipe(row pgx.Row) (storage.Recipe, error) {
	var r storage.Recipe
	err := row.Scan(
		&r.ID, &r.Owner, &r.Name, &r.Category, &r.Unit,
		&r.Cal, &r.Carbs, &r.Fats, &r.Protein, &r.Fiber,
		&r.Allergens, &r.DietaryTags, &r.Contraindications, &r.Ingredients,
		&r.CreatedAt, &r.UpdatedAt,
	)
	return r, err
}

func (s *recipesStorage) CreateRecipe(ctx context.Context, r storage.Recipe) (storage.Recipe, error) {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	row := s.pool.QueryRow(ctx, `
		INSERT INTO recipes (id, owner, name, category, unit, cal, carbs, fats, protein, fiber,
			allergens, dietary_tags, contraindications, ingredients)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING `+recipeColumns,
		r.ID, r.Owner, r.Name, r.Category, r.Unit, r.Cal, r.Carbs, r.Fats, r.Protein, r.Fiber,
		r.Allergens, r.DietaryTags, r.Contraindications, r.Ingredients,
	)
	created, err := scanRecipe(row)
	if err != nil {
		return storage.Recipe{}, fmt.Errorf("create recipe: %w", err)
	}
	return created, nil
}

func (s *recipesStorage) GetRecipe(ctx context.Context, owner, id string) (storage.Recipe, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+recipeColumns+` FROM recipes WHERE owner = $1 AND id = $2`,
		owner, id,
	)
	r, err := scanRecipe(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return storage.Recipe{}, storage.ErrNotFound
	}
	if err != nil {
		return storage.Recipe{}, fmt.Errorf("get recipe: %w", err)
	}
	return r, nil
}

func (s *recipesStorage) ListRecipes(ctx context.Context, owner string) ([]storage.Recipe, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+recipeColumns+` FROM recipes WHERE owner = $1 ORDER BY lower(name)`,
		owner,
	)
	if err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}
	defer rows.Close()

	var results []storage.Recipe
	for rows.Next() {
		r, err := scanRecipe(rows)
		if err != nil {
			return nil, fmt.Errorf("scan recipe: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

func (s *recipesStorage) UpdateRecipe(ctx context.Context, r storage.Recipe) (storage.Recipe, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE recipes
		SET name = $3, category = $4, unit = $5, cal = $6, carbs = $7, fats = $8,
			protein = $9, fiber = $10, allergens = $11, dietary_tags = $12,
			contraindications = $13, ingredients = $14, updated_at = now()
		WHERE owner = $1 AND id = $2
		RETURNING `+recipeColumns,
		r.Owner, r.ID, r.Name, r.Category, r.Unit, r.Cal, r.Carbs, r.Fats, r.Protein, r.Fiber,
		r.Allergens, r.DietaryTags, r.Contraindications, r.Ingredients,
	)
	updated, err := scanRecipe(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return storage.Recipe{}, storage.ErrNotFound
	}
	if err != nil {
		return storage.Recipe{}, fmt.Errorf("update recipe: %w", err)
	}
	return updated, nil
}

func (s *recipesStorage) DeleteRecipe(ctx context.Context, owner, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM recipes WHERE owner = $1 AND id = $2`, owner, id)
	if err != nil {
		return fmt.Errorf("delete recipe: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}
