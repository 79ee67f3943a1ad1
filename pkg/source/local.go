package source

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/kraitsura/qa_viewer/pkg/model"
)

// Snapshot file names inside a content directory.
const (
	QuestionsFile = "questions.jsonl"
	AnswersFile   = "answers.jsonl"
)

// maxLineCapacity bounds a single JSONL line (bodies can be large).
const maxLineCapacity = 1024 * 1024 * 10

// FileSource serves lookups from a JSONL snapshot directory. The whole
// snapshot is held in memory; Reload re-reads it in place so a file watcher
// can refresh a running viewer.
type FileSource struct {
	dir string

	mu        sync.RWMutex
	questions map[string]*model.Question
	answers   map[string]*model.Answer
	recent    []model.Question
}

// OpenFileSource loads the snapshot under dir. Dir defaults to the current
// working directory.
func OpenFileSource(dir string) (*FileSource, error) {
	if dir == "" {
		var err error
		dir, err = os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current working directory: %w", err)
		}
	}
	s := &FileSource{dir: dir}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Dir returns the snapshot directory this source reads from.
func (s *FileSource) Dir() string {
	return s.dir
}

// Reload re-reads both snapshot files. A missing answers file is tolerated;
// a missing questions file is not, since a snapshot without questions is
// indistinguishable from pointing at the wrong directory.
func (s *FileSource) Reload() error {
	qPath := filepath.Join(s.dir, QuestionsFile)
	if _, err := os.Stat(qPath); os.IsNotExist(err) {
		return fmt.Errorf("no question snapshot found at %s", qPath)
	}

	var questions []model.Question
	if err := readJSONL(qPath, func(line []byte) {
		var q model.Question
		if err := json.Unmarshal(line, &q); err != nil {
			// Skip malformed lines but keep loading the rest.
			return
		}
		if q.Validate() == nil {
			questions = append(questions, q)
		}
	}); err != nil {
		return err
	}

	var answers []model.Answer
	aPath := filepath.Join(s.dir, AnswersFile)
	if _, err := os.Stat(aPath); err == nil {
		if err := readJSONL(aPath, func(line []byte) {
			var a model.Answer
			if err := json.Unmarshal(line, &a); err != nil {
				return
			}
			if a.Validate() == nil {
				answers = append(answers, a)
			}
		}); err != nil {
			return err
		}
	}

	qm := make(map[string]*model.Question, len(questions))
	for i := range questions {
		qm[questions[i].ID] = &questions[i]
	}
	am := make(map[string]*model.Answer, len(answers))
	for i := range answers {
		am[answers[i].ID] = &answers[i]
	}

	recent := make([]model.Question, len(questions))
	copy(recent, questions)
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].CreatedAt.After(recent[j].CreatedAt)
	})

	s.mu.Lock()
	s.questions = qm
	s.answers = am
	s.recent = recent
	s.mu.Unlock()
	return nil
}

func (s *FileSource) QuestionByID(ctx context.Context, id string) (*model.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q, ok := s.questions[id]
	if !ok {
		return nil, nil
	}
	cp := *q
	return &cp, nil
}

func (s *FileSource) AnswerByID(ctx context.Context, id string) (*model.Answer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.answers[id]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (s *FileSource) QuestionsByParent(ctx context.Context, parentID string) ([]model.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Question
	for _, q := range s.recent {
		if q.ParentID == parentID {
			out = append(out, q)
		}
	}
	return out, nil
}

func (s *FileSource) RecentQuestions(ctx context.Context, limit int) ([]model.Question, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit > len(s.recent) {
		limit = len(s.recent)
	}
	out := make([]model.Question, limit)
	copy(out, s.recent[:limit])
	return out, nil
}

// readJSONL streams non-empty lines of a JSONL file through fn.
func readJSONL(path string, fn func(line []byte)) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open snapshot file: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	buf := make([]byte, maxLineCapacity)
	scanner.Buffer(buf, maxLineCapacity)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		fn(line)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading %s: %w", filepath.Base(path), err)
	}
	return nil
}
