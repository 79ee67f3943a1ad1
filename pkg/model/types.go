package model

import (
	"fmt"
	"time"
)

// Kind discriminates the two content node types. It is the single source of
// truth for polymorphic dispatch; callers must never infer a node's type from
// the presence of a question_id field.
type Kind string

const (
	KindQuestion Kind = "question"
	KindAnswer   Kind = "answer"
)

// IsValid returns true if the kind is a recognized value
func (k Kind) IsValid() bool {
	switch k {
	case KindQuestion, KindAnswer:
		return true
	}
	return false
}

// Node is the shared shape of a question or an answer.
type Node interface {
	NodeID() string
	NodeKind() Kind
}

// IsQuestion returns true if the node is a Question
func IsQuestion(n Node) bool {
	return n != nil && n.NodeKind() == KindQuestion
}

// IsAnswer returns true if the node is an Answer
func IsAnswer(n Node) bool {
	return n != nil && n.NodeKind() == KindAnswer
}

// UserInfo carries display-only author data. It is passed through untouched
// by ancestry logic.
type UserInfo struct {
	ID          string `json:"id,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
	AvatarURL   string `json:"avatar_url,omitempty"`
}

// Question is a question node. It may itself be "about" another question or
// answer, in which case ParentID (and usually ParentInfo) is set.
type Question struct {
	ID         string             `json:"id"`
	Title      string             `json:"title"`
	Body       string             `json:"body,omitempty"`
	User       UserInfo           `json:"user,omitempty"`
	CreatedAt  time.Time          `json:"created_at"`
	ParentID   string             `json:"parent_id,omitempty"`
	ParentInfo *ParentContentInfo `json:"parent_content_info,omitempty"`
	Ancestors  []AncestorRef      `json:"ancestors,omitempty"`
}

func (q *Question) NodeID() string {
	return q.ID
}

func (q *Question) NodeKind() Kind {
	return KindQuestion
}

// Validate checks if the question data is logically valid
func (q *Question) Validate() error {
	if q.ID == "" {
		return fmt.Errorf("question ID cannot be empty")
	}
	if q.Title == "" {
		return fmt.Errorf("question title cannot be empty")
	}
	return nil
}

// Answer is an answer node. QuestionID is the question it answers, which is
// distinct from its optional parent link.
type Answer struct {
	ID            string             `json:"id"`
	QuestionID    string             `json:"question_id"`
	QuestionTitle string             `json:"question_title,omitempty"`
	Body          string             `json:"body,omitempty"`
	User          UserInfo           `json:"user,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
	ParentID      string             `json:"parent_id,omitempty"`
	ParentInfo    *ParentContentInfo `json:"parent_content_info,omitempty"`
	Ancestors     []AncestorRef      `json:"ancestors,omitempty"`
}

func (a *Answer) NodeID() string {
	return a.ID
}

func (a *Answer) NodeKind() Kind {
	return KindAnswer
}

// Validate checks if the answer data is logically valid
func (a *Answer) Validate() error {
	if a.ID == "" {
		return fmt.Errorf("answer ID cannot be empty")
	}
	if a.QuestionID == "" {
		return fmt.Errorf("answer question ID cannot be empty")
	}
	return nil
}

// ParentRef is the minimal typed parent link: an id plus its kind.
type ParentRef struct {
	ID   string `json:"id"`
	Kind Kind   `json:"kind"`
}

// ParentContentInfo is a denormalized snapshot of the direct parent supplied
// by the backend so the client can render it without an extra fetch.
type ParentContentInfo struct {
	ID            string   `json:"id"`
	Kind          Kind     `json:"kind"`
	Title         string   `json:"title,omitempty"`
	QuestionID    string   `json:"question_id,omitempty"`
	QuestionTitle string   `json:"question_title,omitempty"`
	User          UserInfo `json:"user,omitempty"`
}

// DisplayTitle returns the text a one-line parent summary should show.
// Questions carry their own title; answers fall back to the title of the
// question they answer.
func (p *ParentContentInfo) DisplayTitle() string {
	if p.Title != "" {
		return p.Title
	}
	return p.QuestionTitle
}

// AncestorRef locates one ancestor of a node. Depth is the distance from the
// direct parent: 0 is the direct parent itself, values > 0 are chain members
// counted toward the root. Depth gaps are tolerated; the server may prune
// unreachable nodes.
type AncestorRef struct {
	ID    string `json:"id"`
	Kind  Kind   `json:"kind"`
	Depth int    `json:"depth"`
}

// ParentOf returns the node's parent link fields: the opaque parent id and
// the richer snapshot when the backend embedded one.
func ParentOf(n Node) (string, *ParentContentInfo) {
	switch v := n.(type) {
	case *Question:
		return v.ParentID, v.ParentInfo
	case *Answer:
		return v.ParentID, v.ParentInfo
	}
	return "", nil
}

// AncestorsOf returns the node's raw ancestor list as supplied by the backend.
func AncestorsOf(n Node) []AncestorRef {
	switch v := n.(type) {
	case *Question:
		return v.Ancestors
	case *Answer:
		return v.Ancestors
	}
	return nil
}

// TitleOf returns the best display title for a node.
func TitleOf(n Node) string {
	switch v := n.(type) {
	case *Question:
		return v.Title
	case *Answer:
		if v.QuestionTitle != "" {
			return v.QuestionTitle
		}
		return "answer " + v.ID
	}
	return ""
}
