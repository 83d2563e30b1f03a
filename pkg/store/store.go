// Package store persists recipes and their ingredients in SQLite.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vanderheijden86/xlist/pkg/model"

	_ "modernc.org/sqlite"
)

// Store handles recipe persistence
type Store struct {
	db *sql.DB
}

// Open opens or creates the recipe database at the given path
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// A single connection keeps writers serialised.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return s, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS recipes (
		id TEXT PRIMARY KEY,
		position INTEGER NOT NULL,
		name TEXT NOT NULL,
		description TEXT DEFAULT '',
		expanded INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS ingredients (
		recipe_id TEXT NOT NULL REFERENCES recipes(id) ON DELETE CASCADE,
		id TEXT NOT NULL,
		position INTEGER NOT NULL,
		name TEXT NOT NULL,
		vegetarian INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (recipe_id, id)
	);

	CREATE INDEX IF NOT EXISTS idx_ingredients_recipe ON ingredients(recipe_id, position);
	`

	_, err := s.db.Exec(schema)
	return err
}

// LoadRecipes returns every recipe in position order, each with its
// ingredients in position order.
func (s *Store) LoadRecipes(ctx context.Context) ([]*model.Recipe, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, description, expanded
		FROM recipes
		ORDER BY position
	`)
	if err != nil {
		return nil, fmt.Errorf("query recipes: %w", err)
	}
	defer rows.Close()

	var recipes []*model.Recipe
	byID := make(map[string]*model.Recipe)
	for rows.Next() {
		var id, name, desc string
		var expanded bool
		if err := rows.Scan(&id, &name, &desc, &expanded); err != nil {
			return nil, fmt.Errorf("scan recipe: %w", err)
		}
		r := model.NewRecipe(id, name, expanded)
		r.Description = desc
		recipes = append(recipes, r)
		byID[id] = r
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	irows, err := s.db.QueryContext(ctx, `
		SELECT recipe_id, id, name, vegetarian
		FROM ingredients
		ORDER BY recipe_id, position
	`)
	if err != nil {
		return nil, fmt.Errorf("query ingredients: %w", err)
	}
	defer irows.Close()

	for irows.Next() {
		var recipeID string
		ing := &model.Ingredient{}
		if err := irows.Scan(&recipeID, &ing.ID, &ing.Name, &ing.Vegetarian); err != nil {
			return nil, fmt.Errorf("scan ingredient: %w", err)
		}
		r, ok := byID[recipeID]
		if !ok {
			continue
		}
		r.Ingredients().Append(ing)
	}
	return recipes, irows.Err()
}

// SaveRecipes replaces the stored recipes with recipes in a single
// transaction.
func (s *Store) SaveRecipes(ctx context.Context, recipes []*model.Recipe) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM ingredients`); err != nil {
		return fmt.Errorf("clear ingredients: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM recipes`); err != nil {
		return fmt.Errorf("clear recipes: %w", err)
	}

	recipeStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO recipes (id, position, name, description, expanded)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer recipeStmt.Close()

	ingStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO ingredients (recipe_id, id, position, name, vegetarian)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer ingStmt.Close()

	for i, r := range recipes {
		if _, err := recipeStmt.ExecContext(ctx, r.ID, i, r.Name, r.Description, r.Expanded); err != nil {
			return fmt.Errorf("insert recipe %s: %w", r.ID, err)
		}
		for j, ing := range r.IngredientList() {
			if _, err := ingStmt.ExecContext(ctx, r.ID, ing.ID, j, ing.Name, ing.Vegetarian); err != nil {
				return fmt.Errorf("insert ingredient %s/%s: %w", r.ID, ing.ID, err)
			}
		}
	}
	return tx.Commit()
}

// Count returns the number of stored recipes.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM recipes`).Scan(&n)
	return n, err
}
