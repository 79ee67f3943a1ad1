package ui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kraitsura/qa_viewer/pkg/model"
)

// QuestionDelegate renders one browse-list row: kind badge, title, a lineage
// marker when the question sits on top of a deeper chain, and the author.
type QuestionDelegate struct{}

func (d QuestionDelegate) Height() int {
	return 1
}

func (d QuestionDelegate) Spacing() int {
	return 0
}

func (d QuestionDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd {
	return nil
}

func (d QuestionDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	i, ok := listItem.(QuestionItem)
	if !ok {
		return
	}

	badge := RenderKindBadge(i.Question.NodeKind())

	// A chain marker tells the reader this question is "about" something
	// with history behind it.
	marker := "  "
	if chainDepth := deepestAncestor(i.Question.Ancestors); chainDepth > 0 {
		marker = MutedTextStyle.Render("⛓ ")
	} else if i.Question.ParentID != "" {
		marker = MutedTextStyle.Render("↳ ")
	}

	author := ""
	authorWidth := 0
	if i.Question.User.DisplayName != "" {
		author = MutedTextStyle.Render("@" + i.Question.User.DisplayName)
		authorWidth = lipgloss.Width(author) + 1
	}

	availableWidth := m.Width() - lipgloss.Width(badge) - 2 - authorWidth - 6
	if availableWidth < 10 {
		availableWidth = 10
	}

	titleStyle := lipgloss.NewStyle().Foreground(ColorText)
	if index == m.Index() {
		titleStyle = SelectedRowStyle
	}
	title := titleStyle.Render(TruncateText(i.Question.Title, availableWidth))

	fmt.Fprint(w, lipgloss.JoinHorizontal(lipgloss.Left, " ", badge, " ", marker, title, " ", author))
}

// deepestAncestor returns the largest depth in the raw ancestor list, 0 when
// there is nothing beyond a direct parent.
func deepestAncestor(refs []model.AncestorRef) int {
	deepest := 0
	for _, ref := range refs {
		if ref.Depth > deepest {
			deepest = ref.Depth
		}
	}
	return deepest
}
