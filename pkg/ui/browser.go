package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"
	"github.com/sahilm/fuzzy"

	"github.com/kraitsura/qa_viewer/pkg/ancestry"
	"github.com/kraitsura/qa_viewer/pkg/config"
	"github.com/kraitsura/qa_viewer/pkg/model"
	"github.com/kraitsura/qa_viewer/pkg/source"
)

type focusArea int

const (
	focusList focusArea = iota
	focusDetail
	focusPanel
)

// BrowserModel is the top-level program model: a browse list of recent
// questions, a detail surface for the opened subject with its parent chip
// and follow-ups, and the lineage side panel.
type BrowserModel struct {
	src       source.Source
	resolver  *ancestry.Resolver
	log       zerolog.Logger
	serverURL string

	list      list.Model
	questions []model.Question

	subject   model.Node
	anchor    *model.Answer
	followups []model.Question
	detail    viewport.Model
	markdown  *glamour.TermRenderer

	chip  ParentChipModel
	panel AncestryPanelModel

	search    textinput.Model
	searching bool
	matches   []fuzzy.Match

	focus  focusArea
	status string
	width  int
	height int
}

// NewBrowserModel wires the browser over a source and an initial browse list.
func NewBrowserModel(src source.Source, cfg config.Config, questions []model.Question, log zerolog.Logger) BrowserModel {
	items := make([]list.Item, len(questions))
	for i, q := range questions {
		items[i] = QuestionItem{Question: q}
	}

	l := list.New(items, QuestionDelegate{}, 0, 0)
	l.Title = "Questions"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.Styles.Title = PanelTitleStyle

	ti := textinput.New()
	ti.Placeholder = "Search questions…"
	ti.CharLimit = 64
	ti.Prompt = "/ "

	resolver := ancestry.NewResolver(src, log)
	store := ancestry.NewChainStore(src, log)
	store.SetBatchTimeout(time.Duration(cfg.BatchTimeoutSeconds) * time.Second)

	return BrowserModel{
		src:       src,
		resolver:  resolver,
		log:       log,
		serverURL: strings.TrimRight(cfg.ServerURL, "/"),
		list:      l,
		questions: questions,
		detail:    viewport.New(0, 0),
		chip:      NewParentChipModel(resolver),
		panel:     NewAncestryPanelModel(store, cfg.PageSize, cfg.NearEndLines),
		search:    ti,
	}
}

func (m BrowserModel) Init() tea.Cmd {
	return nil
}

func (m BrowserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		return m, nil

	case ContentReloadedMsg:
		if msg.Err != nil {
			m.status = "reload failed"
			m.log.Error().Err(msg.Err).Msg("content reload failed")
			return m, nil
		}
		m.questions = msg.Questions
		items := make([]list.Item, len(msg.Questions))
		for i, q := range msg.Questions {
			items[i] = QuestionItem{Question: q}
		}
		m.list.SetItems(items)
		m.status = "content reloaded"
		return m, nil

	case subjectLoadedMsg:
		if msg.err != nil {
			m.status = "could not open: " + msg.err.Error()
			m.log.Error().Err(msg.err).Msg("subject load failed")
			return m, nil
		}
		if msg.subject == nil {
			m.status = "content no longer exists"
			return m, nil
		}
		m.subject = msg.subject
		m.anchor = msg.anchor
		m.followups = msg.followups
		m.focus = focusDetail
		m.status = ""
		m.renderDetail()
		var cmds []tea.Cmd
		if cmd := m.chip.SetSubject(m.subject); cmd != nil {
			cmds = append(cmds, cmd)
		}
		if m.panel.Visible() {
			if cmd := m.panel.SetSubject(m.subject); cmd != nil {
				cmds = append(cmds, cmd)
			}
		}
		return m, tea.Batch(cmds...)

	case chainBatchMsg, spinner.TickMsg:
		var cmd tea.Cmd
		m.panel, cmd = m.panel.Update(msg)
		return m, cmd

	case parentResolvedMsg:
		var cmd tea.Cmd
		m.chip, cmd = m.chip.Update(msg)
		m.renderDetail()
		return m, cmd

	case NavigateMsg:
		return m, loadSubjectCmd(m.src, model.KindQuestion, msg.QuestionID, msg.Answer)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m BrowserModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	if m.searching {
		return m.handleSearchKey(msg)
	}

	switch m.focus {
	case focusList:
		return m.handleListKey(msg)
	case focusDetail:
		return m.handleDetailKey(msg)
	case focusPanel:
		return m.handlePanelKey(msg)
	}
	return m, nil
}

func (m BrowserModel) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "/":
		m.searching = true
		m.search.SetValue("")
		m.search.Focus()
		m.matches = nil
		return m, textinput.Blink
	case "r":
		return m, refreshListCmd(m.src)
	case "enter":
		if item, ok := m.list.SelectedItem().(QuestionItem); ok {
			return m, loadSubjectCmd(m.src, model.KindQuestion, item.Question.ID, nil)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m BrowserModel) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q":
		m.subject = nil
		m.anchor = nil
		m.panel.Hide()
		m.focus = focusList
		return m, nil

	case "L":
		m.panel.Toggle()
		if m.panel.Visible() {
			m.focus = focusPanel
			m.layout()
			return m, m.panel.SetSubject(m.subject)
		}
		m.layout()
		return m, nil

	case "p":
		if ref := m.chip.Parent(); ref != nil {
			return m, loadSubjectCmd(m.src, ref.Kind, ref.ID, nil)
		}
		return m, nil

	case "y":
		m.status = m.yankLink()
		return m, nil

	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		idx := int(msg.String()[0] - '1')
		if idx < len(m.followups) {
			return m, loadSubjectCmd(m.src, model.KindQuestion, m.followups[idx].ID, nil)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.detail, cmd = m.detail.Update(msg)
	return m, cmd
}

func (m BrowserModel) handlePanelKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "L":
		m.panel.Hide()
		m.focus = focusDetail
		m.layout()
		return m, nil
	}
	var cmd tea.Cmd
	m.panel, cmd = m.panel.Update(msg)
	return m, cmd
}

func (m BrowserModel) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.searching = false
		m.matches = nil
		return m, nil
	case "enter":
		m.searching = false
		if len(m.matches) > 0 {
			m.list.Select(m.matches[0].Index)
		}
		m.matches = nil
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if q := m.search.Value(); q != "" {
		m.matches = fuzzy.FindFrom(q, questionCorpus(m.questions))
	} else {
		m.matches = nil
	}
	return m, cmd
}

// questionCorpus adapts the browse list for fuzzy matching.
type questionCorpus []model.Question

func (c questionCorpus) String(i int) string {
	return c[i].Title
}

func (c questionCorpus) Len() int {
	return len(c)
}

func refreshListCmd(src source.Source) tea.Cmd {
	return func() tea.Msg {
		qs, err := src.RecentQuestions(context.Background(), 0)
		return ContentReloadedMsg{Questions: qs, Err: err}
	}
}

// yankLink copies a shareable reference to the subject and returns the
// status line to show.
func (m *BrowserModel) yankLink() string {
	if m.subject == nil {
		return ""
	}
	var link string
	switch n := m.subject.(type) {
	case *model.Question:
		link = m.serverURL + "/questions/" + n.ID
	case *model.Answer:
		link = m.serverURL + "/questions/" + n.QuestionID + "#answer-" + n.ID
	}
	if m.serverURL == "" {
		link = "qa:" + string(m.subject.NodeKind()) + "/" + m.subject.NodeID()
	}
	if err := clipboard.WriteAll(link); err != nil {
		m.log.Debug().Err(err).Msg("clipboard unavailable")
		return "clipboard unavailable"
	}
	return "copied " + link
}

func (m *BrowserModel) layout() {
	listHeight := m.height - 4
	if listHeight < 1 {
		listHeight = 1
	}
	m.list.SetSize(m.width-2, listHeight)

	detailWidth := m.width
	if m.panel.Visible() {
		panelWidth := m.width * 2 / 5
		if panelWidth < 30 {
			panelWidth = 30
		}
		m.panel.SetSize(panelWidth, m.height-2)
		detailWidth = m.width - panelWidth
	}
	m.detail.Width = detailWidth - 4
	m.detail.Height = m.height - 8
	if m.detail.Height < 1 {
		m.detail.Height = 1
	}

	if r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(m.detail.Width),
	); err == nil {
		m.markdown = r
	}
	m.renderDetail()
}

// renderDetail rebuilds the detail viewport for the current subject.
func (m *BrowserModel) renderDetail() {
	if m.subject == nil {
		return
	}

	var b strings.Builder

	if chip := m.chip.View(); chip != "" {
		b.WriteString(chip)
		b.WriteString("\n\n")
	}

	b.WriteString(m.renderBody(nodeBody(m.subject)))
	b.WriteString("\n")

	if m.anchor != nil {
		b.WriteString(RenderDivider(m.detail.Width))
		b.WriteString("\n")
		b.WriteString(PanelTitleStyle.Render("Answer"))
		b.WriteString("  " + MutedTextStyle.Render("@"+m.anchor.User.DisplayName))
		b.WriteString("\n")
		b.WriteString(m.renderBody(m.anchor.Body))
		b.WriteString("\n")
	}

	if len(m.followups) > 0 {
		b.WriteString(RenderDivider(m.detail.Width))
		b.WriteString("\n")
		b.WriteString(PanelTitleStyle.Render("Follow-up questions"))
		b.WriteString("\n")
		for i, q := range m.followups {
			if i >= 9 {
				break
			}
			row := fmt.Sprintf(" %d. %s", i+1, TruncateText(q.Title, m.detail.Width-6))
			b.WriteString(row + "\n")
		}
	}

	m.detail.SetContent(b.String())
}

func (m *BrowserModel) renderBody(body string) string {
	if m.markdown == nil || body == "" {
		return body
	}
	out, err := m.markdown.Render(body)
	if err != nil {
		return body
	}
	return strings.TrimRight(out, "\n")
}

func nodeBody(n model.Node) string {
	switch v := n.(type) {
	case *model.Question:
		return v.Body
	case *model.Answer:
		return v.Body
	}
	return ""
}

func (m BrowserModel) View() string {
	if m.width == 0 {
		return ""
	}

	var main string
	if m.subject == nil {
		main = m.viewList()
	} else {
		main = m.viewDetail()
	}

	footer := m.viewFooter()
	return lipgloss.JoinVertical(lipgloss.Left, main, footer)
}

func (m BrowserModel) viewList() string {
	if m.searching {
		overlay := m.search.View()
		if len(m.matches) > 0 {
			overlay += MutedTextStyle.Render(fmt.Sprintf("  %d matches", len(m.matches)))
		}
		return lipgloss.JoinVertical(lipgloss.Left, overlay, m.list.View())
	}
	return m.list.View()
}

func (m BrowserModel) viewDetail() string {
	header := RenderKindBadge(m.subject.NodeKind()) + " " +
		PanelTitleStyle.Render(TruncateText(model.TitleOf(m.subject), m.detail.Width-6))

	detail := lipgloss.JoinVertical(lipgloss.Left,
		header,
		RenderDivider(m.detail.Width),
		m.detail.View(),
	)

	if m.panel.Visible() {
		return lipgloss.JoinHorizontal(lipgloss.Top, detail, m.panel.View())
	}
	return detail
}

func (m BrowserModel) viewFooter() string {
	help := "enter open · / search · q quit"
	if m.subject != nil {
		help = "L lineage · p parent · y yank · esc back"
		if m.focus == focusPanel {
			help = "j/k move · enter open · L close"
		}
	}
	line := MutedTextStyle.Render(help)
	if m.status != "" {
		line += StatusLineStyle.Render("  │ " + m.status)
	}
	return line
}
