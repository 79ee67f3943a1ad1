// Package source provides the content lookup backends the viewer reads from:
// a remote REST service, a JSONL snapshot directory, or a SQLite snapshot.
//
// All lookups share one convention: a missing node is (nil, nil), not an
// error. Errors mean the backend itself failed (network, server, storage)
// and callers must not treat them as "wrong id, try something else".
package source

import (
	"context"

	"github.com/kraitsura/qa_viewer/pkg/model"
)

// DefaultRecentLimit caps the browse list when the caller passes no limit.
const DefaultRecentLimit = 200

// Source is the lookup boundary the ancestry core and the UI depend on.
type Source interface {
	// QuestionByID returns the question with the given id, or (nil, nil)
	// when no question has that id.
	QuestionByID(ctx context.Context, id string) (*model.Question, error)

	// AnswerByID returns the answer with the given id, or (nil, nil) when
	// no answer has that id.
	AnswerByID(ctx context.Context, id string) (*model.Answer, error)

	// QuestionsByParent returns the questions asked about the given node,
	// possibly empty.
	QuestionsByParent(ctx context.Context, parentID string) ([]model.Question, error)

	// RecentQuestions returns up to limit questions, newest first, for the
	// browse surface.
	RecentQuestions(ctx context.Context, limit int) ([]model.Question, error)
}

// NodeByRef resolves a typed reference against the right lookup and returns
// the node, or (nil, nil) when it no longer exists.
func NodeByRef(ctx context.Context, src Source, id string, kind model.Kind) (model.Node, error) {
	switch kind {
	case model.KindQuestion:
		q, err := src.QuestionByID(ctx, id)
		if err != nil || q == nil {
			return nil, err
		}
		return q, nil
	case model.KindAnswer:
		a, err := src.AnswerByID(ctx, id)
		if err != nil || a == nil {
			return nil, err
		}
		return a, nil
	}
	return nil, nil
}
