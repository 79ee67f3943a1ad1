// Package ancestry reconstructs the chain of predecessors for a question or
// answer: typing an opaque parent id by trial, and incrementally loading the
// deeper ancestor chain in depth order.
package ancestry

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/kraitsura/qa_viewer/pkg/model"
	"github.com/kraitsura/qa_viewer/pkg/source"
)

// ParentDescriptor is the result of typing an opaque parent id: the id, the
// kind the probes settled on, and the fully resolved node.
type ParentDescriptor struct {
	ID   string
	Kind model.Kind
	Node model.Node
}

// Resolver types an opaque parent id by probing the question lookup first
// and the answer lookup second. It holds no state and is safe for concurrent
// use across unrelated ids; callers that expect repeated lookups for the
// same id are responsible for caching.
type Resolver struct {
	src source.Source
	log zerolog.Logger
}

// NewResolver creates a Resolver over the given source.
func NewResolver(src source.Source, log zerolog.Logger) *Resolver {
	return &Resolver{src: src, log: log}
}

// Resolve determines whether parentID names a question or an answer.
//
// A not-found from one lookup is the expected outcome for the wrong type and
// triggers the other probe; it is never surfaced as an error. A transport or
// server failure from either probe aborts immediately and propagates, so an
// outage cannot masquerade as "no parent". When neither lookup knows the id
// the result is (nil, nil) and callers degrade by omitting the parent.
func (r *Resolver) Resolve(ctx context.Context, parentID string) (*ParentDescriptor, error) {
	if parentID == "" {
		return nil, nil
	}

	q, err := r.src.QuestionByID(ctx, parentID)
	if err != nil {
		return nil, fmt.Errorf("probe question %s: %w", parentID, err)
	}
	if q != nil {
		return &ParentDescriptor{ID: parentID, Kind: model.KindQuestion, Node: q}, nil
	}

	a, err := r.src.AnswerByID(ctx, parentID)
	if err != nil {
		return nil, fmt.Errorf("probe answer %s: %w", parentID, err)
	}
	if a != nil {
		return &ParentDescriptor{ID: parentID, Kind: model.KindAnswer, Node: a}, nil
	}

	r.log.Debug().Str("parent_id", parentID).Msg("parent id matched neither lookup")
	return nil, nil
}
