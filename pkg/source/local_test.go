package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writeSnapshot(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestFileSourceLookups(t *testing.T) {
	dir := t.TempDir()
	writeSnapshot(t, dir, QuestionsFile, `{"id":"q1","title":"How do routers work?","created_at":"2026-01-02T10:00:00Z"}
{"id":"q2","title":"Follow-up on routing","parent_id":"q1","created_at":"2026-01-03T10:00:00Z"}
{"id":"q3","title":"Unrelated","created_at":"2026-01-01T10:00:00Z"}
`)
	writeSnapshot(t, dir, AnswersFile, `{"id":"a1","question_id":"q1","body":"They forward packets.","created_at":"2026-01-02T12:00:00Z"}
`)

	s, err := OpenFileSource(dir)
	if err != nil {
		t.Fatalf("OpenFileSource: %v", err)
	}
	ctx := context.Background()

	q, err := s.QuestionByID(ctx, "q1")
	if err != nil || q == nil {
		t.Fatalf("Expected q1, got (%v, %v)", q, err)
	}
	if q.Title != "How do routers work?" {
		t.Errorf("Unexpected title %q", q.Title)
	}

	a, err := s.AnswerByID(ctx, "a1")
	if err != nil || a == nil {
		t.Fatalf("Expected a1, got (%v, %v)", a, err)
	}
	if a.QuestionID != "q1" {
		t.Errorf("Unexpected question id %q", a.QuestionID)
	}

	missing, err := s.QuestionByID(ctx, "nope")
	if err != nil {
		t.Fatalf("Not-found must not error: %v", err)
	}
	if missing != nil {
		t.Errorf("Expected nil for unknown id, got %+v", missing)
	}
	if wrongKind, _ := s.AnswerByID(ctx, "q1"); wrongKind != nil {
		t.Error("A question id must not resolve through the answer lookup")
	}
}

func TestFileSourceQuestionsByParent(t *testing.T) {
	dir := t.TempDir()
	writeSnapshot(t, dir, QuestionsFile, `{"id":"root","title":"Root","created_at":"2026-01-01T00:00:00Z"}
{"id":"c1","title":"Child one","parent_id":"root","created_at":"2026-01-02T00:00:00Z"}
{"id":"c2","title":"Child two","parent_id":"root","created_at":"2026-01-03T00:00:00Z"}
`)

	s, err := OpenFileSource(dir)
	if err != nil {
		t.Fatalf("OpenFileSource: %v", err)
	}

	children, err := s.QuestionsByParent(context.Background(), "root")
	if err != nil {
		t.Fatalf("QuestionsByParent: %v", err)
	}
	if len(children) != 2 {
		t.Fatalf("Expected 2 children, got %d", len(children))
	}
}

func TestFileSourceRecentOrderingAndLimit(t *testing.T) {
	dir := t.TempDir()
	writeSnapshot(t, dir, QuestionsFile, `{"id":"old","title":"Old","created_at":"2026-01-01T00:00:00Z"}
{"id":"new","title":"New","created_at":"2026-03-01T00:00:00Z"}
{"id":"mid","title":"Mid","created_at":"2026-02-01T00:00:00Z"}
`)

	s, err := OpenFileSource(dir)
	if err != nil {
		t.Fatalf("OpenFileSource: %v", err)
	}

	recent, err := s.RecentQuestions(context.Background(), 2)
	if err != nil {
		t.Fatalf("RecentQuestions: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("Expected 2 questions, got %d", len(recent))
	}
	if recent[0].ID != "new" || recent[1].ID != "mid" {
		t.Errorf("Expected newest first, got %s then %s", recent[0].ID, recent[1].ID)
	}
}

func TestFileSourceSkipsMalformedLines(t *testing.T) {
	dir := t.TempDir()
	writeSnapshot(t, dir, QuestionsFile, `{"id":"good","title":"Good","created_at":"2026-01-01T00:00:00Z"}
not json at all
{"id":"","title":"no id"}
{"id":"also-good","title":"Also good","created_at":"2026-01-02T00:00:00Z"}
`)

	s, err := OpenFileSource(dir)
	if err != nil {
		t.Fatalf("OpenFileSource: %v", err)
	}

	recent, _ := s.RecentQuestions(context.Background(), 0)
	if len(recent) != 2 {
		t.Errorf("Expected 2 valid questions, got %d", len(recent))
	}
}

func TestFileSourceReloadPicksUpChanges(t *testing.T) {
	dir := t.TempDir()
	writeSnapshot(t, dir, QuestionsFile, `{"id":"q1","title":"First","created_at":"2026-01-01T00:00:00Z"}
`)

	s, err := OpenFileSource(dir)
	if err != nil {
		t.Fatalf("OpenFileSource: %v", err)
	}

	writeSnapshot(t, dir, QuestionsFile, `{"id":"q1","title":"First","created_at":"2026-01-01T00:00:00Z"}
{"id":"q2","title":"Second","created_at":"2026-01-02T00:00:00Z"}
`)
	if err := s.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}

	q, _ := s.QuestionByID(context.Background(), "q2")
	if q == nil {
		t.Fatal("Expected q2 after reload")
	}
}

func TestFileSourceMissingQuestionsFile(t *testing.T) {
	if _, err := OpenFileSource(t.TempDir()); err == nil {
		t.Fatal("Expected an error for a directory without a snapshot")
	}
}

func TestFileSourceReturnsCopies(t *testing.T) {
	dir := t.TempDir()
	writeSnapshot(t, dir, QuestionsFile, `{"id":"q1","title":"Original","created_at":"2026-01-01T00:00:00Z"}
`)

	s, err := OpenFileSource(dir)
	if err != nil {
		t.Fatalf("OpenFileSource: %v", err)
	}
	ctx := context.Background()

	q, _ := s.QuestionByID(ctx, "q1")
	q.Title = "mutated"

	again, _ := s.QuestionByID(ctx, "q1")
	if again.Title != "Original" {
		t.Error("Callers must not be able to mutate the cached snapshot")
	}
}

func TestDetectSnapshot(t *testing.T) {
	empty := t.TempDir()
	if kind := DetectSnapshot(empty); kind != SnapshotNone {
		t.Errorf("Empty dir: expected none, got %v", kind)
	}

	jsonlDir := t.TempDir()
	writeSnapshot(t, jsonlDir, QuestionsFile, "")
	if kind := DetectSnapshot(jsonlDir); kind != SnapshotJSONL {
		t.Errorf("Expected jsonl, got %v", kind)
	}

	bothDir := t.TempDir()
	writeSnapshot(t, bothDir, QuestionsFile, "")
	writeSnapshot(t, bothDir, DBFile, "")
	if kind := DetectSnapshot(bothDir); kind != SnapshotDB {
		t.Errorf("SQLite should win when both formats exist, got %v", kind)
	}

	if kind := DetectSnapshot(""); kind != SnapshotNone {
		t.Errorf("Empty path: expected none, got %v", kind)
	}
}
