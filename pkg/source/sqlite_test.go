package source

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/kraitsura/qa_viewer/pkg/model"
)

func openTestDB(t *testing.T) *DBSource {
	t.Helper()
	s, err := OpenDBSourceForWrite(filepath.Join(t.TempDir(), DBFile))
	if err != nil {
		t.Fatalf("OpenDBSourceForWrite: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestDBSourceQuestionRoundTrip(t *testing.T) {
	s := openTestDB(t)
	ctx := context.Background()

	q := &model.Question{
		ID:        "q1",
		Title:     "Why is the sky blue?",
		Body:      "Asking for a friend.",
		User:      model.UserInfo{ID: "u1", DisplayName: "maya"},
		CreatedAt: time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC),
		ParentID:  "p1",
		ParentInfo: &model.ParentContentInfo{
			ID:    "p1",
			Kind:  model.KindQuestion,
			Title: "Atmospheric optics",
		},
		Ancestors: []model.AncestorRef{
			{ID: "p1", Kind: model.KindQuestion, Depth: 0},
			{ID: "g1", Kind: model.KindAnswer, Depth: 1},
		},
	}
	if err := s.PutQuestion(q); err != nil {
		t.Fatalf("PutQuestion: %v", err)
	}

	got, err := s.QuestionByID(ctx, "q1")
	if err != nil {
		t.Fatalf("QuestionByID: %v", err)
	}
	if got == nil {
		t.Fatal("Expected q1")
	}
	if got.Title != q.Title || got.User.DisplayName != "maya" {
		t.Errorf("Round trip mangled fields: %+v", got)
	}
	if got.ParentInfo == nil || got.ParentInfo.Kind != model.KindQuestion {
		t.Errorf("Parent snapshot lost: %+v", got.ParentInfo)
	}
	if len(got.Ancestors) != 2 || got.Ancestors[1].Depth != 1 {
		t.Errorf("Ancestor list lost: %+v", got.Ancestors)
	}
}

func TestDBSourceAnswerRoundTrip(t *testing.T) {
	s := openTestDB(t)
	ctx := context.Background()

	a := &model.Answer{
		ID:            "a1",
		QuestionID:    "q1",
		QuestionTitle: "Why is the sky blue?",
		Body:          "Rayleigh scattering.",
		CreatedAt:     time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC),
	}
	if err := s.PutAnswer(a); err != nil {
		t.Fatalf("PutAnswer: %v", err)
	}

	got, err := s.AnswerByID(ctx, "a1")
	if err != nil {
		t.Fatalf("AnswerByID: %v", err)
	}
	if got == nil || got.QuestionID != "q1" || got.Body != "Rayleigh scattering." {
		t.Errorf("Round trip mangled answer: %+v", got)
	}
	if got.ParentInfo != nil {
		t.Errorf("Expected nil parent snapshot, got %+v", got.ParentInfo)
	}
	if got.Ancestors != nil {
		t.Errorf("Expected nil ancestors, got %+v", got.Ancestors)
	}
}

func TestDBSourceNotFound(t *testing.T) {
	s := openTestDB(t)
	ctx := context.Background()

	q, err := s.QuestionByID(ctx, "ghost")
	if err != nil {
		t.Fatalf("Not-found must not error: %v", err)
	}
	if q != nil {
		t.Errorf("Expected nil, got %+v", q)
	}

	a, err := s.AnswerByID(ctx, "ghost")
	if err != nil || a != nil {
		t.Errorf("Expected (nil, nil), got (%+v, %v)", a, err)
	}
}

func TestDBSourceQuestionsByParentAndRecent(t *testing.T) {
	s := openTestDB(t)
	ctx := context.Background()

	base := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	for i, row := range []struct {
		id, parent string
	}{
		{"q1", ""},
		{"q2", "q1"},
		{"q3", "q1"},
		{"q4", ""},
	} {
		q := &model.Question{
			ID:        row.id,
			Title:     "Question " + row.id,
			ParentID:  row.parent,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}
		if err := s.PutQuestion(q); err != nil {
			t.Fatalf("PutQuestion %s: %v", row.id, err)
		}
	}

	children, err := s.QuestionsByParent(ctx, "q1")
	if err != nil {
		t.Fatalf("QuestionsByParent: %v", err)
	}
	if len(children) != 2 {
		t.Fatalf("Expected 2 children of q1, got %d", len(children))
	}

	recent, err := s.RecentQuestions(ctx, 2)
	if err != nil {
		t.Fatalf("RecentQuestions: %v", err)
	}
	if len(recent) != 2 || recent[0].ID != "q4" {
		t.Errorf("Expected q4 newest first, got %+v", recent)
	}
}
