// Package loader reads and writes recipe collections in JSON, YAML or SQLite
// form, chosen by file extension.
package loader

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/vanderheijden86/xlist/pkg/model"
	"github.com/vanderheijden86/xlist/pkg/store"
)

// Format is a recipe file encoding.
type Format string

const (
	FormatJSON   Format = "json"
	FormatYAML   Format = "yaml"
	FormatSQLite Format = "sqlite"
)

// ErrUnsupportedFormat is returned for file extensions with no codec.
var ErrUnsupportedFormat = errors.New("unsupported recipe file format")

// Document is the on-disk layout of JSON and YAML recipe files.
type Document struct {
	Recipes []RecipeRecord `json:"recipes" yaml:"recipes"`
}

// RecipeRecord is the serialised form of a model.Recipe.
type RecipeRecord struct {
	ID          string             `json:"id" yaml:"id"`
	Name        string             `json:"name" yaml:"name"`
	Description string             `json:"description,omitempty" yaml:"description,omitempty"`
	Expanded    bool               `json:"expanded,omitempty" yaml:"expanded,omitempty"`
	Ingredients []IngredientRecord `json:"ingredients,omitempty" yaml:"ingredients,omitempty"`
}

// IngredientRecord is the serialised form of a model.Ingredient.
type IngredientRecord struct {
	ID         string `json:"id" yaml:"id"`
	Name       string `json:"name" yaml:"name"`
	Vegetarian bool   `json:"vegetarian,omitempty" yaml:"vegetarian,omitempty"`
}

// ValidationError reports an invalid recipe in a loaded file.
type ValidationError struct {
	Path  string
	Index int
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: recipe[%d]: %v", e.Path, e.Index, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// DetectFormat maps a file extension to its Format.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".db", ".sqlite", ".sqlite3":
		return FormatSQLite, nil
	}
	return "", fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
}

// LoadFile reads the recipes stored at path and validates them.
func LoadFile(ctx context.Context, path string) ([]*model.Recipe, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}

	var recipes []*model.Recipe
	switch format {
	case FormatSQLite:
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("open recipe database: %w", err)
		}
		s, err := store.Open(path)
		if err != nil {
			return nil, err
		}
		defer s.Close()
		recipes, err = s.LoadRecipes(ctx)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
	default:
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read recipe file: %w", err)
		}
		doc, err := Decode(format, data)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		recipes = doc.Models()
	}

	seen := make(map[string]bool, len(recipes))
	for i, r := range recipes {
		if err := r.Validate(); err != nil {
			return nil, &ValidationError{Path: path, Index: i, Err: err}
		}
		if seen[r.ID] {
			return nil, &ValidationError{Path: path, Index: i, Err: fmt.Errorf("duplicate recipe ID %q", r.ID)}
		}
		seen[r.ID] = true
	}
	return recipes, nil
}

// SaveFile writes recipes to path in the format implied by its extension.
func SaveFile(ctx context.Context, path string, recipes []*model.Recipe) error {
	format, err := DetectFormat(path)
	if err != nil {
		return err
	}
	if format == FormatSQLite {
		s, err := store.Open(path)
		if err != nil {
			return err
		}
		defer s.Close()
		return s.SaveRecipes(ctx, recipes)
	}

	data, err := Encode(format, NewDocument(recipes))
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// Decode parses a JSON or YAML document.
func Decode(format Format, data []byte) (*Document, error) {
	var doc Document
	var err error
	switch format {
	case FormatJSON:
		err = json.Unmarshal(data, &doc)
	case FormatYAML:
		err = yaml.Unmarshal(data, &doc)
	default:
		return nil, ErrUnsupportedFormat
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// Encode serialises a document as JSON or YAML.
func Encode(format Format, doc *Document) ([]byte, error) {
	switch format {
	case FormatJSON:
		return json.MarshalIndent(doc, "", "  ")
	case FormatYAML:
		return yaml.Marshal(doc)
	}
	return nil, ErrUnsupportedFormat
}

// NewDocument converts recipes to their serialised form.
func NewDocument(recipes []*model.Recipe) *Document {
	doc := &Document{Recipes: make([]RecipeRecord, 0, len(recipes))}
	for _, r := range recipes {
		rec := RecipeRecord{
			ID:          r.ID,
			Name:        r.Name,
			Description: r.Description,
			Expanded:    r.Expanded,
		}
		for _, ing := range r.IngredientList() {
			rec.Ingredients = append(rec.Ingredients, IngredientRecord{
				ID:         ing.ID,
				Name:       ing.Name,
				Vegetarian: ing.Vegetarian,
			})
		}
		doc.Recipes = append(doc.Recipes, rec)
	}
	return doc
}

// Models builds live model recipes from the document.
func (d *Document) Models() []*model.Recipe {
	out := make([]*model.Recipe, 0, len(d.Recipes))
	for _, rec := range d.Recipes {
		ings := make([]*model.Ingredient, len(rec.Ingredients))
		for i, ir := range rec.Ingredients {
			ings[i] = &model.Ingredient{ID: ir.ID, Name: ir.Name, Vegetarian: ir.Vegetarian}
		}
		r := model.NewRecipe(rec.ID, rec.Name, rec.Expanded, ings...)
		r.Description = rec.Description
		out = append(out, r)
	}
	return out
}
