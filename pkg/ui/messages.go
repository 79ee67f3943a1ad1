package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kraitsura/qa_viewer/pkg/ancestry"
	"github.com/kraitsura/qa_viewer/pkg/model"
	"github.com/kraitsura/qa_viewer/pkg/source"
)

// NavigateMsg asks the browser to open a node. For an answer target the
// browser opens the owning question anchored at that answer.
type NavigateMsg struct {
	QuestionID string
	Answer     *model.Answer
}

// subjectLoadedMsg carries a freshly opened subject plus its follow-up
// questions.
type subjectLoadedMsg struct {
	subject   model.Node
	anchor    *model.Answer
	followups []model.Question
	err       error
}

// chainBatchMsg reports that one ancestor batch settled. subjectID is the
// subject the batch was requested for; the panel drops reports for subjects
// it no longer shows.
type chainBatchMsg struct {
	subjectID string
	consumed  int
	err       error
}

// parentResolvedMsg reports a one-off parent typing probe. desc is nil when
// the id matched neither lookup.
type parentResolvedMsg struct {
	parentID string
	desc     *ancestry.ParentDescriptor
	err      error
}

// ContentReloadedMsg carries a refreshed browse list after a snapshot change
// on disk. Sent from the file watcher via Program.Send.
type ContentReloadedMsg struct {
	Questions []model.Question
	Err       error
}

// loadSubjectCmd fetches a node and its follow-up questions for the detail
// surface.
func loadSubjectCmd(src source.Source, kind model.Kind, id string, anchor *model.Answer) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		node, err := source.NodeByRef(ctx, src, id, kind)
		if err != nil {
			return subjectLoadedMsg{err: err}
		}
		if node == nil {
			return subjectLoadedMsg{}
		}
		followups, err := src.QuestionsByParent(ctx, id)
		if err != nil {
			// The subject itself loaded; follow-ups are decoration.
			followups = nil
		}
		return subjectLoadedMsg{subject: node, anchor: anchor, followups: followups}
	}
}

// loadChainBatchCmd asks the store for the next batch. The store serializes
// batches internally, so firing this redundantly is harmless.
func loadChainBatchCmd(store *ancestry.ChainStore, pageSize int) tea.Cmd {
	subjectID := store.SubjectID()
	return func() tea.Msg {
		consumed, err := store.LoadNextBatch(context.Background(), pageSize)
		return chainBatchMsg{subjectID: subjectID, consumed: consumed, err: err}
	}
}

// resolveParentCmd types an opaque parent id by trial.
func resolveParentCmd(resolver *ancestry.Resolver, parentID string) tea.Cmd {
	return func() tea.Msg {
		desc, err := resolver.Resolve(context.Background(), parentID)
		return parentResolvedMsg{parentID: parentID, desc: desc, err: err}
	}
}
