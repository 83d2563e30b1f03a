package ui

import (
	"log"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/vanderheijden86/xlist/pkg/model"
	"github.com/vanderheijden86/xlist/pkg/search"
)

// detailPane renders the description of the selected parent as markdown.
// The rendered lines are cached until the source text or the wrap width
// changes.
type detailPane struct {
	style    string // glamour standard style; empty means auto
	renderer *glamour.TermRenderer
	wrap     int

	src   string
	lines []string
}

func detailWrap(width int) int {
	if width <= 0 {
		return 80
	}
	return max(width-2, 20)
}

// resize drops the renderer when the wrap width changes.
func (d *detailPane) resize(width int) {
	wrap := detailWrap(width)
	if wrap == d.wrap && d.renderer != nil {
		return
	}
	d.wrap = wrap
	d.renderer = nil
	d.lines = nil
}

func (d *detailPane) render(p model.Parent) []string {
	if p == nil {
		return nil
	}
	src := detailMarkdown(p)
	if d.lines != nil && src == d.src {
		return d.lines
	}
	if d.wrap == 0 {
		d.wrap = detailWrap(0)
	}
	if d.renderer == nil {
		r, err := newMarkdownRenderer(d.style, d.wrap)
		if err != nil {
			log.Printf("warning: markdown renderer: %v", err)
		}
		d.renderer = r
	}

	out := src
	if d.renderer != nil {
		rendered, err := d.renderer.Render(src)
		if err != nil {
			log.Printf("warning: render description of %s: %v", p.Key(), err)
		} else {
			out = rendered
		}
	}
	d.src = src
	d.lines = strings.Split(strings.Trim(out, "\n"), "\n")
	return d.lines
}

func detailMarkdown(p model.Parent) string {
	title := search.FieldValue(p, "name")
	if title == "" {
		title = p.Key()
	}
	desc := strings.TrimSpace(search.FieldValue(p, "description"))
	if desc == "" {
		desc = "_No description._"
	}
	return "## " + title + "\n\n" + desc + "\n"
}

func newMarkdownRenderer(style string, wrap int) (*glamour.TermRenderer, error) {
	styleOpt := glamour.WithAutoStyle()
	if style != "" {
		styleOpt = glamour.WithStandardStyle(style)
	}
	return glamour.NewTermRenderer(styleOpt, glamour.WithWordWrap(wrap))
}
