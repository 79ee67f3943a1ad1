package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/kraitsura/qa_viewer/pkg/ancestry"
	"github.com/kraitsura/qa_viewer/pkg/model"
)

// ParentChipModel renders a one-line summary of the subject's direct parent.
//
// When the backend embedded a ParentContentInfo snapshot the chip renders
// straight from it. Older data carries only an opaque parent id; for those
// the chip falls back to a trial resolution, at most once per distinct
// parent id, caching the outcome (including "unresolvable") for the life of
// the chip.
type ParentChipModel struct {
	resolver *ancestry.Resolver

	subject   model.Node
	parentID  string
	info      *model.ParentContentInfo
	hasDeeper bool
	pending   bool

	// attempted holds the outcome of every fallback probe so a parent id is
	// never probed twice, even when the user bounces between subjects.
	attempted map[string]*ancestry.ParentDescriptor

	width int
}

// NewParentChipModel creates an empty chip.
func NewParentChipModel(resolver *ancestry.Resolver) ParentChipModel {
	return ParentChipModel{
		resolver:  resolver,
		attempted: make(map[string]*ancestry.ParentDescriptor),
	}
}

// SetWidth sets the render width.
func (m *ParentChipModel) SetWidth(width int) {
	m.width = width
}

// SetSubject binds the chip to a new subject and returns the fallback
// resolution command when one is needed.
func (m *ParentChipModel) SetSubject(n model.Node) tea.Cmd {
	m.subject = n
	m.pending = false
	if n == nil {
		m.parentID = ""
		m.info = nil
		m.hasDeeper = false
		return nil
	}

	m.parentID, m.info = model.ParentOf(n)
	m.hasDeeper = deepestAncestor(model.AncestorsOf(n)) > 0

	if m.info != nil || m.parentID == "" {
		return nil
	}
	if _, done := m.attempted[m.parentID]; done {
		return nil
	}
	m.pending = true
	return resolveParentCmd(m.resolver, m.parentID)
}

// HasDeeper reports whether the subject has ancestors beyond the direct
// parent, i.e. whether opening the full lineage panel shows anything.
func (m *ParentChipModel) HasDeeper() bool {
	return m.hasDeeper
}

// Parent returns the best known typed parent for navigation: the embedded
// snapshot when present, otherwise a cached probe result. Nil when the
// parent is unknown or unresolvable.
func (m *ParentChipModel) Parent() *model.ParentRef {
	if m.info != nil {
		return &model.ParentRef{ID: m.info.ID, Kind: m.info.Kind}
	}
	if desc := m.attempted[m.parentID]; desc != nil {
		return &model.ParentRef{ID: desc.ID, Kind: desc.Kind}
	}
	return nil
}

// Update consumes probe results.
func (m ParentChipModel) Update(msg tea.Msg) (ParentChipModel, tea.Cmd) {
	if res, ok := msg.(parentResolvedMsg); ok {
		if res.err != nil {
			// Transport failure: leave the id unattempted so a later
			// subject visit may try again; render nothing meanwhile.
			if res.parentID == m.parentID {
				m.pending = false
			}
			return m, nil
		}
		m.attempted[res.parentID] = res.desc
		if res.parentID == m.parentID {
			m.pending = false
		}
	}
	return m, nil
}

// View renders the chip, or an empty string when the subject has no
// renderable parent.
func (m ParentChipModel) View() string {
	if m.subject == nil || m.parentID == "" {
		return ""
	}

	var kind model.Kind
	var title, author string

	switch {
	case m.info != nil:
		kind = m.info.Kind
		title = m.info.DisplayTitle()
		author = m.info.User.DisplayName
	case m.pending:
		return MutedTextStyle.Render("↳ re: …")
	default:
		desc := m.attempted[m.parentID]
		if desc == nil {
			// Unresolvable parent: degrade to nothing rather than showing
			// a broken link.
			return ""
		}
		kind = desc.Kind
		title = model.TitleOf(desc.Node)
		author = nodeAuthor(desc.Node)
	}

	line := MutedTextStyle.Render("↳ re: ") + RenderKindBadge(kind) + " "
	avail := m.width - 14
	if author != "" {
		avail -= len(author) + 2
	}
	line += TruncateText(title, avail)
	if author != "" {
		line += MutedTextStyle.Render(" @" + author)
	}
	if m.hasDeeper {
		line += MutedTextStyle.Render("  [L] full lineage")
	}
	return line
}
