package model

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/vanderheijden86/xlist/pkg/observable"
)

// Parent is a top-level item owning an ordered, observable child list.
type Parent interface {
	// Key is the stable identity used to carry expansion state across rebuilds.
	Key() string
	// Children returns the live child collection.
	Children() observable.List[Child]
	// InitiallyExpanded seeds the expansion flag when the parent first
	// enters the flat list.
	InitiallyExpanded() bool
}

// Child is a leaf item belonging to exactly one parent.
type Child interface {
	Key() string
}

// Fielder exposes named string fields for filtering and sorting.
type Fielder interface {
	Field(name string) (string, bool)
}

// Ingredient is a child row of a Recipe.
type Ingredient struct {
	ID         string `json:"id" yaml:"id"`
	Name       string `json:"name" yaml:"name"`
	Vegetarian bool   `json:"vegetarian" yaml:"vegetarian"`
}

// Key implements Child.
func (i *Ingredient) Key() string { return i.ID }

// Field implements Fielder.
func (i *Ingredient) Field(name string) (string, bool) {
	switch name {
	case "id":
		return i.ID, true
	case "name":
		return i.Name, true
	case "vegetarian":
		return strconv.FormatBool(i.Vegetarian), true
	}
	return "", false
}

// Recipe is a parent row whose children are ingredients.
type Recipe struct {
	ID          string
	Name        string
	Description string
	Expanded    bool // initial expansion

	ingredients *observable.Slice[Child]
}

// NewRecipe creates a recipe owning a live ingredient list.
func NewRecipe(id, name string, expanded bool, ingredients ...*Ingredient) *Recipe {
	children := make([]Child, len(ingredients))
	for i, ing := range ingredients {
		children[i] = ing
	}
	return &Recipe{
		ID:          id,
		Name:        name,
		Expanded:    expanded,
		ingredients: observable.NewSlice(children...),
	}
}

// Key implements Parent.
func (r *Recipe) Key() string { return r.ID }

// Children implements Parent.
func (r *Recipe) Children() observable.List[Child] { return r.ingredients }

// InitiallyExpanded implements Parent.
func (r *Recipe) InitiallyExpanded() bool { return r.Expanded }

// Ingredients returns the mutable ingredient list. Mutations are reported to
// every subscriber of Children.
func (r *Recipe) Ingredients() *observable.Slice[Child] { return r.ingredients }

// IngredientList returns a snapshot of the ingredients in order.
func (r *Recipe) IngredientList() []*Ingredient {
	items := r.ingredients.Items()
	out := make([]*Ingredient, 0, len(items))
	for _, c := range items {
		if ing, ok := c.(*Ingredient); ok {
			out = append(out, ing)
		}
	}
	return out
}

// IsVegetarian reports whether every ingredient is vegetarian.
func (r *Recipe) IsVegetarian() bool {
	for _, ing := range r.IngredientList() {
		if !ing.Vegetarian {
			return false
		}
	}
	return true
}

// Field implements Fielder.
func (r *Recipe) Field(name string) (string, bool) {
	switch name {
	case "id":
		return r.ID, true
	case "name":
		return r.Name, true
	case "description":
		return r.Description, true
	case "vegetarian":
		return strconv.FormatBool(r.IsVegetarian()), true
	}
	return "", false
}

// Validate checks the recipe and its ingredients for required fields and
// duplicate ingredient IDs.
func (r *Recipe) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return fmt.Errorf("recipe ID cannot be empty")
	}
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("recipe %s: name cannot be empty", r.ID)
	}
	seen := make(map[string]bool)
	for i, ing := range r.IngredientList() {
		if strings.TrimSpace(ing.ID) == "" {
			return fmt.Errorf("recipe %s: ingredient[%d]: ID cannot be empty", r.ID, i)
		}
		if seen[ing.ID] {
			return fmt.Errorf("recipe %s: duplicate ingredient ID %q", r.ID, ing.ID)
		}
		seen[ing.ID] = true
	}
	return nil
}

// Parents converts recipes to the Parent interface, preserving order.
func Parents(recipes []*Recipe) []Parent {
	out := make([]Parent, len(recipes))
	for i, r := range recipes {
		out[i] = r
	}
	return out
}
