package ancestry

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/kraitsura/qa_viewer/pkg/model"
)

func TestResolveQuestionWinsFirstProbe(t *testing.T) {
	src := newFakeSource()
	src.addQuestion("p1")

	r := NewResolver(src, zerolog.Nop())
	desc, err := r.Resolve(context.Background(), "p1")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if desc == nil || desc.Kind != model.KindQuestion {
		t.Fatalf("Expected question descriptor, got %+v", desc)
	}
	if src.aCalls["p1"] != 0 {
		t.Error("Answer lookup should not run once the question probe hits")
	}
}

func TestResolveFallsBackToAnswer(t *testing.T) {
	src := newFakeSource()
	src.addAnswer("p2")

	r := NewResolver(src, zerolog.Nop())
	desc, err := r.Resolve(context.Background(), "p2")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if desc == nil || desc.Kind != model.KindAnswer {
		t.Fatalf("Expected answer descriptor, got %+v", desc)
	}
	if src.qCalls["p2"] != 1 {
		t.Errorf("Expected exactly one question probe, got %d", src.qCalls["p2"])
	}
}

func TestResolveUnknownIDIsNotAnError(t *testing.T) {
	r := NewResolver(newFakeSource(), zerolog.Nop())
	desc, err := r.Resolve(context.Background(), "ghost")
	if err != nil {
		t.Fatalf("Double not-found must not be an error, got %v", err)
	}
	if desc != nil {
		t.Fatalf("Expected nil descriptor, got %+v", desc)
	}
}

func TestResolveEmptyID(t *testing.T) {
	src := newFakeSource()
	r := NewResolver(src, zerolog.Nop())
	desc, err := r.Resolve(context.Background(), "")
	if desc != nil || err != nil {
		t.Fatalf("Expected (nil, nil) for empty id, got (%+v, %v)", desc, err)
	}
	if len(src.qCalls)+len(src.aCalls) != 0 {
		t.Error("Empty id must not hit the source")
	}
}

func TestResolvePropagatesProbeFailure(t *testing.T) {
	upstream := errors.New("upstream 503")

	src := newFakeSource()
	src.failures["p3"] = upstream

	r := NewResolver(src, zerolog.Nop())
	_, err := r.Resolve(context.Background(), "p3")
	if !errors.Is(err, upstream) {
		t.Fatalf("Expected wrapped upstream error, got %v", err)
	}
	if src.aCalls["p3"] != 0 {
		t.Error("A failed question probe must abort before the answer probe")
	}
}
