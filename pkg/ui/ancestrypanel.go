package ui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kraitsura/qa_viewer/pkg/ancestry"
	"github.com/kraitsura/qa_viewer/pkg/model"
)

// AncestryPanelModel is the lineage side panel: it binds one ChainStore to
// the current subject and renders the resolved ancestor chain, nearest
// first, loading deeper entries as the user scrolls toward the bottom.
//
// The panel survives being hidden and reshown for the same subject without
// re-fetching; switching subjects resets the store and starts over.
type AncestryPanelModel struct {
	store    *ancestry.ChainStore
	viewport viewport.Model
	spinner  spinner.Model

	subject      model.Node
	cursor       int
	visible      bool
	pageSize     int
	nearEndLines int

	width  int
	height int
}

// NewAncestryPanelModel creates a hidden panel over the given store.
func NewAncestryPanelModel(store *ancestry.ChainStore, pageSize, nearEndLines int) AncestryPanelModel {
	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = lipgloss.NewStyle().Foreground(ColorInfo)

	if pageSize <= 0 {
		pageSize = ancestry.DefaultPageSize
	}
	if nearEndLines <= 0 {
		nearEndLines = 6
	}

	return AncestryPanelModel{
		store:        store,
		viewport:     viewport.New(0, 0),
		spinner:      sp,
		pageSize:     pageSize,
		nearEndLines: nearEndLines,
	}
}

// SetSize resizes the panel.
func (m *AncestryPanelModel) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width - 2
	m.viewport.Height = height - 4
	if m.viewport.Height < 1 {
		m.viewport.Height = 1
	}
	m.refreshContent()
}

// SetSubject binds the panel to a new subject. Returns the command that
// kicks off the first batch when the store was actually re-initialized.
func (m *AncestryPanelModel) SetSubject(n model.Node) tea.Cmd {
	m.subject = n
	if n == nil {
		return nil
	}
	if !m.store.Initialize(n.NodeID(), model.AncestorsOf(n)) {
		m.refreshContent()
		return nil
	}
	m.cursor = 0
	m.viewport.GotoTop()
	m.refreshContent()
	if first := m.store.InitialBatchSize(); first > 0 {
		return tea.Batch(loadChainBatchCmd(m.store, first), m.spinner.Tick)
	}
	return nil
}

// Visible reports whether the panel is shown.
func (m *AncestryPanelModel) Visible() bool {
	return m.visible
}

// Toggle shows or hides the panel. Hiding keeps all resolved state so
// reopening the same subject re-displays instantly.
func (m *AncestryPanelModel) Toggle() {
	m.visible = !m.visible
	if m.visible {
		m.refreshContent()
	}
}

// Hide hides the panel.
func (m *AncestryPanelModel) Hide() {
	m.visible = false
}

// Update handles panel input and chain progress messages.
func (m AncestryPanelModel) Update(msg tea.Msg) (AncestryPanelModel, tea.Cmd) {
	switch msg := msg.(type) {
	case chainBatchMsg:
		// Reports for a previous subject arrive after a switch; the store
		// already dropped their data, the stale id just tells us not to
		// bother re-rendering.
		if m.subject == nil || msg.subjectID != m.subject.NodeID() {
			return m, nil
		}
		m.refreshContent()
		var cmds []tea.Cmd
		if m.anyPending() {
			cmds = append(cmds, m.spinner.Tick)
		}
		// A short first page may not fill the viewport; top up without
		// waiting for a scroll event that can never come.
		if cmd := m.maybeLoadMore(); cmd != nil {
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)

	case spinner.TickMsg:
		if !m.visible || !m.anyPending() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.refreshContent()
		return m, cmd

	case tea.KeyMsg:
		if !m.visible {
			return m, nil
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m AncestryPanelModel) handleKey(msg tea.KeyMsg) (AncestryPanelModel, tea.Cmd) {
	items := m.store.Items()

	switch msg.String() {
	case "j", "down":
		if m.cursor < len(items)-1 {
			m.cursor++
		}
		m.refreshContent()
		m.scrollCursorIntoView()
		return m, m.maybeLoadMore()

	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
		m.refreshContent()
		m.scrollCursorIntoView()
		return m, nil

	case "ctrl+d", "pgdown":
		m.viewport.HalfViewDown()
		return m, m.maybeLoadMore()

	case "ctrl+u", "pgup":
		m.viewport.HalfViewUp()
		return m, nil

	case "G", "end":
		m.viewport.GotoBottom()
		return m, m.maybeLoadMore()

	case "enter":
		if m.cursor < len(items) {
			return m, navigateTo(items[m.cursor])
		}
	}
	return m, nil
}

// navigateTo maps a chain entry to a navigation request: a question ancestor
// opens that question, an answer ancestor opens its owning question anchored
// at the answer.
func navigateTo(item ancestry.ResolvedAncestor) tea.Cmd {
	if item.Body == nil {
		return nil
	}
	switch n := item.Body.(type) {
	case *model.Question:
		return func() tea.Msg { return NavigateMsg{QuestionID: n.ID} }
	case *model.Answer:
		return func() tea.Msg { return NavigateMsg{QuestionID: n.QuestionID, Answer: n} }
	}
	return nil
}

// maybeLoadMore is the level trigger: request the next batch only when the
// scroll position is near the bottom, more entries remain, and no batch is
// in flight. Safe to call on every scroll event.
func (m *AncestryPanelModel) maybeLoadMore() tea.Cmd {
	if !m.store.ShouldLoadMore() {
		return nil
	}
	linesBelow := m.viewport.TotalLineCount() - m.viewport.YOffset - m.viewport.Height
	if linesBelow > m.nearEndLines {
		return nil
	}
	return tea.Batch(loadChainBatchCmd(m.store, m.pageSize), m.spinner.Tick)
}

func (m *AncestryPanelModel) anyPending() bool {
	for _, item := range m.store.Items() {
		if item.Pending() {
			return true
		}
	}
	return false
}

func (m *AncestryPanelModel) scrollCursorIntoView() {
	// Each chain entry renders as two lines plus a separator.
	line := m.cursor * 3
	if line < m.viewport.YOffset {
		m.viewport.SetYOffset(line)
	} else if line+3 > m.viewport.YOffset+m.viewport.Height {
		m.viewport.SetYOffset(line + 3 - m.viewport.Height)
	}
}

func (m *AncestryPanelModel) refreshContent() {
	items := m.store.Items()
	if len(items) == 0 {
		if m.store.ChainLength() == 0 {
			m.viewport.SetContent(MutedTextStyle.Render("No deeper history — only the direct parent."))
		} else {
			m.viewport.SetContent(m.spinner.View() + " loading lineage…")
		}
		return
	}

	var b strings.Builder
	for i, item := range items {
		b.WriteString(m.renderItem(item, i == m.cursor))
		b.WriteString("\n")
		b.WriteString(RenderDivider(m.viewport.Width))
		b.WriteString("\n")
	}
	if m.store.HasMore() || m.store.Loading() {
		b.WriteString(MutedTextStyle.Render("  ↓ more…"))
	}
	m.viewport.SetContent(b.String())
}

// renderItem renders one chain entry as a two-line card.
func (m *AncestryPanelModel) renderItem(item ancestry.ResolvedAncestor, selected bool) string {
	width := m.viewport.Width
	header := RenderKindBadge(item.Ref.Kind) + " " + RenderDepthBadge(item.Ref.Depth)

	if item.Pending() {
		return header + "\n  " + m.spinner.View() + MutedTextStyle.Render(" loading…")
	}
	if item.Failed {
		return header + "\n  " + UnavailableStyle.Render("content unavailable")
	}

	titleStyle := lipgloss.NewStyle().Foreground(ColorText)
	if selected {
		titleStyle = SelectedRowStyle
	}

	title := TruncateText(nodeSummaryTitle(item.Body), width-4)
	line2 := "  " + titleStyle.Render(title)
	if author := nodeAuthor(item.Body); author != "" {
		line2 += MutedTextStyle.Render(" @" + author)
	}
	return header + "\n" + line2
}

func nodeSummaryTitle(n model.Node) string {
	switch v := n.(type) {
	case *model.Question:
		return v.Title
	case *model.Answer:
		snippet := strings.TrimSpace(v.Body)
		if len(snippet) > 0 {
			return snippet
		}
		return "re: " + v.QuestionTitle
	}
	return ""
}

func nodeAuthor(n model.Node) string {
	switch v := n.(type) {
	case *model.Question:
		return v.User.DisplayName
	case *model.Answer:
		return v.User.DisplayName
	}
	return ""
}

// View renders the panel.
func (m AncestryPanelModel) View() string {
	if !m.visible {
		return ""
	}

	title := PanelTitleStyle.Render("Lineage")
	counter := ""
	if total := m.store.ChainLength(); total > 0 {
		counter = MutedTextStyle.Render(
			"  " + strconv.Itoa(m.store.ResolvedCount()) + "/" + strconv.Itoa(total))
	}
	if m.store.Loading() {
		counter += " " + m.spinner.View()
	}

	body := lipgloss.JoinVertical(lipgloss.Left,
		title+counter,
		RenderDivider(m.viewport.Width),
		m.viewport.View(),
	)
	return FocusedPanelStyle.Width(m.width - 2).Render(body)
}
