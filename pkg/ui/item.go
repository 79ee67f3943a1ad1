package ui

import (
	"github.com/kraitsura/qa_viewer/pkg/model"
)

// QuestionItem wraps model.Question to implement list.Item
type QuestionItem struct {
	Question model.Question
}

func (i QuestionItem) Title() string {
	return i.Question.Title
}

func (i QuestionItem) Description() string {
	return i.Question.ID + " " + i.Question.User.DisplayName
}

func (i QuestionItem) FilterValue() string {
	return i.Question.Title + " " + i.Question.ID + " " + i.Question.User.DisplayName
}
