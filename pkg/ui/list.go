package ui

import (
	"fmt"
	"log"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vanderheijden86/xlist/pkg/flatlist"
	"github.com/vanderheijden86/xlist/pkg/model"
	"github.com/vanderheijden86/xlist/pkg/observable"
	"github.com/vanderheijden86/xlist/pkg/search"
)

// ListModel is a Bubble Tea model rendering the flat list of an Adapter.
// It only reads the flat list; every structural change arrives through
// Notify, which keeps the cursor on the same row.
type ListModel struct {
	adapter *flatlist.Adapter
	origin  *observable.Slice[model.Parent]
	filter  *search.Filter
	binder  Binder
	theme   Theme
	copy    func(string) error

	input     textinput.Model
	filtering bool

	detail     detailPane
	showDetail bool

	cursor int
	offset int
	width  int
	height int

	// Identity of the selected row, used to reselect after a full refresh.
	selKey    string
	selParent bool
	selOwner  string

	status   string
	quitting bool
}

// ListOption configures a ListModel.
type ListOption func(*ListModel)

// WithFilter enables the / filter prompt.
func WithFilter(f *search.Filter) ListOption {
	return func(m *ListModel) { m.filter = f }
}

// WithBinder replaces the default RecipeBinder.
func WithBinder(b Binder) ListOption {
	return func(m *ListModel) { m.binder = b }
}

// WithTheme replaces the default theme.
func WithTheme(t Theme) ListOption {
	return func(m *ListModel) { m.theme = t }
}

// WithMarkdownStyle selects the glamour standard style of the description
// pane, e.g. "dark" or "notty". The default detects the terminal background.
func WithMarkdownStyle(style string) ListOption {
	return func(m *ListModel) { m.detail.style = style }
}

// WithClipboard replaces the system clipboard writer.
func WithClipboard(fn func(string) error) ListOption {
	return func(m *ListModel) { m.copy = fn }
}

// NewListModel creates the list view for a. origin is the unfiltered parent
// list; ReloadMsg replaces its content. The model registers itself as an
// observer and as the expand/collapse listener of a.
func NewListModel(a *flatlist.Adapter, origin *observable.Slice[model.Parent], opts ...ListOption) *ListModel {
	input := textinput.New()
	input.Prompt = "/ "
	input.Placeholder = "filter"

	m := &ListModel{
		adapter: a,
		origin:  origin,
		binder:  RecipeBinder{},
		copy:    clipboard.WriteAll,
		input:   input,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.theme.Renderer == nil {
		m.theme = DefaultTheme(nil)
	}
	a.AddObserver(m)
	a.SetExpandCollapseListener(m)
	m.syncSelection()
	return m
}

// Cursor returns the selected flat position.
func (m *ListModel) Cursor() int { return m.cursor }

// SelectedKey returns the key of the selected row, or "" for an empty list.
func (m *ListModel) SelectedKey() string { return m.selKey }

// Status returns the current status line message.
func (m *ListModel) Status() string { return m.status }

// Filtering reports whether the filter prompt has focus.
func (m *ListModel) Filtering() bool { return m.filtering }

// ShowingDetail reports whether the description pane is open.
func (m *ListModel) ShowingDetail() bool { return m.showDetail }

// Notify implements flatlist.Observer.
func (m *ListModel) Notify(n flatlist.Notification) {
	switch n.Kind {
	case flatlist.RangeInserted:
		if m.adapter.ItemCount() == n.Count {
			m.cursor = 0
		} else if n.Start <= m.cursor {
			m.cursor += n.Count
		}
	case flatlist.RangeRemoved:
		switch {
		case m.cursor >= n.Start+n.Count:
			m.cursor -= n.Count
		case m.cursor >= n.Start:
			// The selected row is gone; select the row above the hole.
			m.cursor = max(n.Start-1, 0)
		}
	case flatlist.FullChanged:
		m.reselect()
	}
	m.clamp()
	m.syncSelection()
	m.ensureVisible()
}

// OnParentExpanded implements flatlist.ExpandCollapseListener.
func (m *ListModel) OnParentExpanded(parentIndex int) {
	if p, ok := m.adapter.Parent(parentIndex); ok {
		m.status = "expanded " + p.Key()
	}
}

// OnParentCollapsed implements flatlist.ExpandCollapseListener.
func (m *ListModel) OnParentCollapsed(parentIndex int) {
	if p, ok := m.adapter.Parent(parentIndex); ok {
		m.status = "collapsed " + p.Key()
	}
}

// Init implements tea.Model.
func (m *ListModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *ListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = max(msg.Width-4, 0)
		m.detail.resize(msg.Width)
		m.ensureVisible()
		return m, nil

	case ReloadMsg:
		m.origin.Replace(model.Parents(msg.Recipes))
		m.status = fmt.Sprintf("reloaded %d recipes", len(msg.Recipes))
		return m, nil

	case ReloadErrorMsg:
		m.status = "reload failed: " + msg.Err.Error()
		if msg.Recoverable {
			m.status += " (will retry on next change)"
		}
		return m, nil

	case tea.KeyMsg:
		if m.filtering {
			return m.updateFilter(msg)
		}
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m *ListModel) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	case "j", "down":
		m.move(1)
	case "k", "up":
		m.move(-1)
	case "g", "home":
		m.move(-m.cursor)
	case "G", "end":
		m.move(m.adapter.ItemCount())
	case "ctrl+d", "pgdown":
		m.move(max(m.listHeight()/2, 1))
	case "ctrl+u", "pgup":
		m.move(-max(m.listHeight()/2, 1))
	case "enter", " ", "space":
		m.toggle()
	case "l", "right":
		m.expandOrStepIn()
	case "h", "left":
		m.collapseOrJumpToParent()
	case "E":
		m.adapter.ExpandAll()
		m.status = "expanded all"
	case "C":
		m.adapter.CollapseAll()
		m.status = "collapsed all"
	case "/":
		if m.filter == nil {
			return m, nil
		}
		m.filtering = true
		m.input.SetValue(m.filter.Query())
		m.input.CursorEnd()
		return m, m.input.Focus()
	case "esc":
		if m.filter != nil && m.filter.Query() != "" {
			m.clearFilter()
		}
	case "d":
		m.showDetail = !m.showDetail
		m.ensureVisible()
	case "y":
		m.copyRow()
	}
	return m, nil
}

func (m *ListModel) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.clearFilter()
		return m, nil
	case "enter":
		m.filtering = false
		m.input.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	before := m.input.Value()
	m.input, cmd = m.input.Update(msg)
	if v := m.input.Value(); v != before {
		m.filter.Apply(v)
	}
	return m, cmd
}

func (m *ListModel) clearFilter() {
	m.filtering = false
	m.input.Blur()
	m.input.SetValue("")
	m.filter.Apply("")
}

func (m *ListModel) move(delta int) {
	m.cursor += delta
	m.clamp()
	m.syncSelection()
	m.ensureVisible()
}

func (m *ListModel) toggle() {
	w, ok := m.adapter.ItemAt(m.cursor)
	if !ok {
		return
	}
	if !w.IsParent() {
		// Toggling a child folds its parent.
		m.cursor = m.adapter.FlatPositionOfParent(m.adapter.ParentIndexFor(m.cursor))
		m.adapter.RequestCollapse(m.cursor)
		return
	}
	if w.IsExpanded() {
		m.adapter.RequestCollapse(m.cursor)
	} else {
		m.adapter.RequestExpand(m.cursor)
	}
}

func (m *ListModel) expandOrStepIn() {
	w, ok := m.adapter.ItemAt(m.cursor)
	if !ok || !w.IsParent() {
		return
	}
	if !w.IsExpanded() {
		m.adapter.RequestExpand(m.cursor)
		return
	}
	if next, ok := m.adapter.ItemAt(m.cursor + 1); ok && !next.IsParent() {
		m.move(1)
	}
}

func (m *ListModel) collapseOrJumpToParent() {
	w, ok := m.adapter.ItemAt(m.cursor)
	if !ok {
		return
	}
	if w.IsParent() {
		if w.IsExpanded() {
			m.adapter.RequestCollapse(m.cursor)
		}
		return
	}
	m.move(m.adapter.FlatPositionOfParent(m.adapter.ParentIndexFor(m.cursor)) - m.cursor)
}

func (m *ListModel) copyRow() {
	text := strings.TrimSpace(m.rowText(m.cursor))
	if text == "" {
		return
	}
	if err := m.copy(text); err != nil {
		log.Printf("warning: copy to clipboard: %v", err)
		m.status = "copy failed"
		return
	}
	m.status = "copied " + m.selKey
}

func (m *ListModel) clamp() {
	n := m.adapter.ItemCount()
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *ListModel) syncSelection() {
	w, ok := m.adapter.ItemAt(m.cursor)
	if !ok {
		m.selKey, m.selParent, m.selOwner = "", false, ""
		return
	}
	m.selKey = w.Key()
	m.selParent = w.IsParent()
	m.selOwner = ""
	if p := m.selectedParent(); p != nil {
		m.selOwner = p.Key()
	}
}

// selectedParent returns the parent owning the selected row, or nil for an
// empty list. Both lookups read the flat list, so this is safe between the
// steps of a change set.
func (m *ListModel) selectedParent() model.Parent {
	if m.cursor < 0 || m.cursor >= m.adapter.ItemCount() {
		return nil
	}
	p, ok := m.adapter.Parent(m.adapter.ParentIndexFor(m.cursor))
	if !ok {
		return nil
	}
	return p
}

// detailLines returns the description pane, capped to a third of the
// window when its size is known.
func (m *ListModel) detailLines() []string {
	if !m.showDetail {
		return nil
	}
	lines := m.detail.render(m.selectedParent())
	if m.height > 0 {
		if limit := max(m.height/3, 2); len(lines) > limit {
			lines = lines[:limit]
		}
	}
	return lines
}

// reselect finds the previously selected row after a full refresh: the same
// row if it survived, else its parent, else the clamped old position.
func (m *ListModel) reselect() {
	if m.selKey == "" {
		return
	}
	owner := -1
	inOwner := false
	for i := 0; i < m.adapter.ItemCount(); i++ {
		w, _ := m.adapter.ItemAt(i)
		if w.IsParent() {
			inOwner = w.Key() == m.selOwner
			if !inOwner {
				continue
			}
			owner = i
			if m.selParent {
				m.cursor = i
				return
			}
			continue
		}
		if inOwner && !m.selParent && w.Key() == m.selKey {
			m.cursor = i
			return
		}
	}
	if owner >= 0 {
		m.cursor = owner
	}
}

func (m *ListModel) listHeight() int {
	if m.height <= 0 {
		return m.adapter.ItemCount()
	}
	h := m.height - 1 - len(m.detailLines()) // footer and description
	if m.filtering || (m.filter != nil && m.filter.Query() != "") {
		h--
	}
	return max(h, 1)
}

func (m *ListModel) ensureVisible() {
	h := m.listHeight()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+h {
		m.offset = m.cursor - h + 1
	}
	maxOffset := max(m.adapter.ItemCount()-h, 0)
	m.offset = min(max(m.offset, 0), maxOffset)
}

func (m *ListModel) rowText(flat int) string {
	w, ok := m.adapter.ItemAt(flat)
	if !ok {
		return ""
	}
	pi := m.adapter.ParentIndexFor(flat)
	if w.IsParent() {
		return m.binder.BindParent(w.Parent(), pi, w.IsExpanded())
	}
	return m.binder.BindChild(w.Child(), pi, m.adapter.ChildIndexFor(flat))
}

// View implements tea.Model.
func (m *ListModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	n := m.adapter.ItemCount()
	if n == 0 {
		msg := "No recipes"
		if m.filter != nil && m.filter.Query() != "" {
			msg = fmt.Sprintf("No matches for %q", m.filter.Query())
		}
		b.WriteString(m.theme.Footer.Render(msg))
		b.WriteString("\n")
	}

	end := min(m.offset+m.listHeight(), n)
	for i := m.offset; i < end; i++ {
		text := m.rowText(i)
		if m.width > 0 {
			text = truncate(text, m.width)
		}
		w, _ := m.adapter.ItemAt(i)
		style := m.theme.Child
		if w.IsParent() {
			style = m.theme.Parent
		}
		if i == m.cursor {
			style = m.theme.Selected
		}
		b.WriteString(style.Render(text))
		b.WriteString("\n")
	}

	for _, line := range m.detailLines() {
		b.WriteString(line)
		b.WriteString("\n")
	}

	if m.filtering {
		b.WriteString(m.input.View())
		b.WriteString("\n")
	} else if m.filter != nil && m.filter.Query() != "" {
		b.WriteString(m.theme.Footer.Render("filter: " + m.filter.Query()))
		b.WriteString("\n")
	}

	parts := []string{fmt.Sprintf("%d/%d", min(m.cursor+1, n), n)}
	if m.status != "" {
		parts = append(parts, m.status)
	}
	parts = append(parts, "enter toggle • E/C all • / filter • d details • y copy • q quit")
	b.WriteString(m.theme.Footer.Render(strings.Join(parts, "  ")))
	return b.String()
}
