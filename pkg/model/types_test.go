package model

import "testing"

func TestKindIsValid(t *testing.T) {
	if !KindQuestion.IsValid() || !KindAnswer.IsValid() {
		t.Error("Both content kinds should be valid")
	}
	if Kind("comment").IsValid() {
		t.Error("Unknown kinds must be rejected")
	}
	if Kind("").IsValid() {
		t.Error("Empty kind must be rejected")
	}
}

func TestKindDispatch(t *testing.T) {
	q := &Question{ID: "q1", Title: "t"}
	a := &Answer{ID: "a1", QuestionID: "q1"}

	if !IsQuestion(q) || IsAnswer(q) {
		t.Error("Question misclassified")
	}
	if !IsAnswer(a) || IsQuestion(a) {
		t.Error("Answer misclassified")
	}
	if IsQuestion(nil) || IsAnswer(nil) {
		t.Error("Nil node is neither kind")
	}
}

func TestValidation(t *testing.T) {
	if err := (&Question{Title: "t"}).Validate(); err == nil {
		t.Error("Question without id should fail validation")
	}
	if err := (&Question{ID: "q1"}).Validate(); err == nil {
		t.Error("Question without title should fail validation")
	}
	if err := (&Question{ID: "q1", Title: "t"}).Validate(); err != nil {
		t.Errorf("Valid question rejected: %v", err)
	}
	if err := (&Answer{ID: "a1"}).Validate(); err == nil {
		t.Error("Answer without question id should fail validation")
	}
	if err := (&Answer{ID: "a1", QuestionID: "q1"}).Validate(); err != nil {
		t.Errorf("Valid answer rejected: %v", err)
	}
}

func TestParentContentInfoDisplayTitle(t *testing.T) {
	q := &ParentContentInfo{Kind: KindQuestion, Title: "Own title"}
	if q.DisplayTitle() != "Own title" {
		t.Errorf("Expected own title, got %q", q.DisplayTitle())
	}

	a := &ParentContentInfo{Kind: KindAnswer, QuestionTitle: "Owning question"}
	if a.DisplayTitle() != "Owning question" {
		t.Errorf("Answer snapshot should fall back to the question title, got %q", a.DisplayTitle())
	}
}

func TestParentAndAncestorAccessors(t *testing.T) {
	info := &ParentContentInfo{ID: "p1", Kind: KindAnswer}
	refs := []AncestorRef{{ID: "p1", Kind: KindAnswer, Depth: 0}}

	q := &Question{ID: "q1", Title: "t", ParentID: "p1", ParentInfo: info, Ancestors: refs}
	id, pi := ParentOf(q)
	if id != "p1" || pi != info {
		t.Errorf("ParentOf(question) = (%q, %+v)", id, pi)
	}
	if len(AncestorsOf(q)) != 1 {
		t.Error("AncestorsOf(question) lost entries")
	}

	a := &Answer{ID: "a1", QuestionID: "q1", ParentID: "p2"}
	id, pi = ParentOf(a)
	if id != "p2" || pi != nil {
		t.Errorf("ParentOf(answer) = (%q, %+v)", id, pi)
	}
	if AncestorsOf(nil) != nil {
		t.Error("AncestorsOf(nil) should be nil")
	}
}

func TestTitleOf(t *testing.T) {
	if got := TitleOf(&Question{ID: "q1", Title: "A question"}); got != "A question" {
		t.Errorf("TitleOf(question) = %q", got)
	}
	if got := TitleOf(&Answer{ID: "a1", QuestionID: "q1", QuestionTitle: "The question"}); got != "The question" {
		t.Errorf("TitleOf(answer) = %q", got)
	}
	if got := TitleOf(&Answer{ID: "a1", QuestionID: "q1"}); got != "answer a1" {
		t.Errorf("TitleOf(untitled answer) = %q", got)
	}
}
