package ui

import (
	"fmt"

	"github.com/mattn/go-runewidth"

	"github.com/vanderheijden86/xlist/pkg/model"
)

// Binder turns rows into display text. The list view asks it for every
// visible row; the flattening engine never calls it.
type Binder interface {
	BindParent(p model.Parent, parentIndex int, expanded bool) string
	BindChild(c model.Child, parentIndex, childIndex int) string
}

// RecipeBinder renders recipes and ingredients, falling back to keys for
// other model types.
type RecipeBinder struct{}

// BindParent renders a recipe header line.
func (RecipeBinder) BindParent(p model.Parent, _ int, expanded bool) string {
	indicator := "▸"
	if expanded {
		indicator = "▾"
	}
	r, ok := p.(*model.Recipe)
	if !ok {
		return indicator + " " + p.Key()
	}
	line := fmt.Sprintf("%s %s (%d)", indicator, r.Name, r.Children().Len())
	if r.IsVegetarian() {
		line += " [veg]"
	}
	return line
}

// BindChild renders an ingredient line.
func (RecipeBinder) BindChild(c model.Child, _, _ int) string {
	ing, ok := c.(*model.Ingredient)
	if !ok {
		return "    • " + c.Key()
	}
	if ing.Vegetarian {
		return "    • " + ing.Name
	}
	return "    • " + ing.Name + " *"
}

// truncate shortens s to width display cells, marking the cut with an
// ellipsis.
func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "…")
}
