package source

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/kraitsura/qa_viewer/pkg/model"
)

// DBSource serves lookups from a SQLite snapshot (qa.db). The schema mirrors
// the JSONL snapshot: one row per node, with the parent snapshot and the
// ancestor list stored as JSON columns.
type DBSource struct {
	db *sql.DB
}

// OpenDBSource opens the snapshot database at dbPath read-only.
func OpenDBSource(dbPath string) (*DBSource, error) {
	db, err := sql.Open("sqlite3", dbPath+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("open snapshot database: %w", err)
	}
	// Fail fast on a bogus path instead of at first query.
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("open snapshot database: %w", err)
	}
	return &DBSource{db: db}, nil
}

// OpenDBSourceForWrite opens (or creates) a writable snapshot database and
// ensures the schema exists. Used by snapshot tooling and tests.
func OpenDBSourceForWrite(dbPath string) (*DBSource, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open snapshot database: %w", err)
	}
	s := &DBSource{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return s, nil
}

// Close closes the database connection
func (s *DBSource) Close() error {
	return s.db.Close()
}

func (s *DBSource) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS questions (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		body TEXT DEFAULT '',
		user_json TEXT DEFAULT '{}',
		created_at DATETIME NOT NULL,
		parent_id TEXT DEFAULT '',
		parent_info_json TEXT,
		ancestors_json TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_questions_parent ON questions(parent_id);

	CREATE TABLE IF NOT EXISTS answers (
		id TEXT PRIMARY KEY,
		question_id TEXT NOT NULL,
		question_title TEXT DEFAULT '',
		body TEXT DEFAULT '',
		user_json TEXT DEFAULT '{}',
		created_at DATETIME NOT NULL,
		parent_id TEXT DEFAULT '',
		parent_info_json TEXT,
		ancestors_json TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_answers_question ON answers(question_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// PutQuestion inserts or replaces a question row. Snapshot tooling only.
func (s *DBSource) PutQuestion(q *model.Question) error {
	userJSON, _ := json.Marshal(q.User)
	parentJSON := parentInfoJSON(q.ParentInfo)
	ancestorsJSON := ancestorsListJSON(q.Ancestors)
	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO questions (id, title, body, user_json, created_at, parent_id, parent_info_json, ancestors_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, q.ID, q.Title, q.Body, string(userJSON), q.CreatedAt, q.ParentID, parentJSON, ancestorsJSON)
	return err
}

// PutAnswer inserts or replaces an answer row. Snapshot tooling only.
func (s *DBSource) PutAnswer(a *model.Answer) error {
	userJSON, _ := json.Marshal(a.User)
	parentJSON := parentInfoJSON(a.ParentInfo)
	ancestorsJSON := ancestorsListJSON(a.Ancestors)
	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO answers (id, question_id, question_title, body, user_json, created_at, parent_id, parent_info_json, ancestors_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, a.ID, a.QuestionID, a.QuestionTitle, a.Body, string(userJSON), a.CreatedAt, a.ParentID, parentJSON, ancestorsJSON)
	return err
}

func (s *DBSource) QuestionByID(ctx context.Context, id string) (*model.Question, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, title, body, user_json, created_at, parent_id, parent_info_json, ancestors_json
		FROM questions WHERE id = ?
	`, id)
	q, err := scanQuestion(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return q, err
}

func (s *DBSource) AnswerByID(ctx context.Context, id string) (*model.Answer, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, question_id, question_title, body, user_json, created_at, parent_id, parent_info_json, ancestors_json
		FROM answers WHERE id = ?
	`, id)
	a, err := scanAnswer(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return a, err
}

func (s *DBSource) QuestionsByParent(ctx context.Context, parentID string) ([]model.Question, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, body, user_json, created_at, parent_id, parent_info_json, ancestors_json
		FROM questions WHERE parent_id = ?
		ORDER BY created_at DESC
	`, parentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectQuestions(rows)
}

func (s *DBSource) RecentQuestions(ctx context.Context, limit int) ([]model.Question, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, body, user_json, created_at, parent_id, parent_info_json, ancestors_json
		FROM questions
		ORDER BY created_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectQuestions(rows)
}

func collectQuestions(rows *sql.Rows) ([]model.Question, error) {
	var out []model.Question
	for rows.Next() {
		q, err := scanQuestion(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *q)
	}
	return out, rows.Err()
}

func scanQuestion(scan func(...any) error) (*model.Question, error) {
	var q model.Question
	var userJSON string
	var parentJSON, ancestorsJSON sql.NullString
	if err := scan(&q.ID, &q.Title, &q.Body, &userJSON, &q.CreatedAt, &q.ParentID, &parentJSON, &ancestorsJSON); err != nil {
		return nil, err
	}
	decodeNodeJSON(userJSON, parentJSON, ancestorsJSON, &q.User, &q.ParentInfo, &q.Ancestors)
	return &q, nil
}

func scanAnswer(scan func(...any) error) (*model.Answer, error) {
	var a model.Answer
	var userJSON string
	var parentJSON, ancestorsJSON sql.NullString
	if err := scan(&a.ID, &a.QuestionID, &a.QuestionTitle, &a.Body, &userJSON, &a.CreatedAt, &a.ParentID, &parentJSON, &ancestorsJSON); err != nil {
		return nil, err
	}
	decodeNodeJSON(userJSON, parentJSON, ancestorsJSON, &a.User, &a.ParentInfo, &a.Ancestors)
	return &a, nil
}

// decodeNodeJSON fills the JSON-backed columns shared by both node types.
// Malformed columns are left zero-valued; a snapshot row with a bad user
// blob should not make the whole node unreadable.
func decodeNodeJSON(userJSON string, parentJSON, ancestorsJSON sql.NullString, user *model.UserInfo, parentInfo **model.ParentContentInfo, ancestors *[]model.AncestorRef) {
	if userJSON != "" {
		_ = json.Unmarshal([]byte(userJSON), user)
	}
	if parentJSON.Valid && parentJSON.String != "" {
		var pi model.ParentContentInfo
		if json.Unmarshal([]byte(parentJSON.String), &pi) == nil {
			*parentInfo = &pi
		}
	}
	if ancestorsJSON.Valid && ancestorsJSON.String != "" {
		_ = json.Unmarshal([]byte(ancestorsJSON.String), ancestors)
	}
}

func parentInfoJSON(pi *model.ParentContentInfo) any {
	if pi == nil {
		return nil
	}
	b, err := json.Marshal(pi)
	if err != nil {
		return nil
	}
	return string(b)
}

func ancestorsListJSON(refs []model.AncestorRef) any {
	if len(refs) == 0 {
		return nil
	}
	b, err := json.Marshal(refs)
	if err != nil {
		return nil
	}
	return string(b)
}
