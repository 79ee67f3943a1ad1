package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/kraitsura/qa_viewer/pkg/model"
)

// DefaultRequestTimeout bounds a single lookup against the remote service.
const DefaultRequestTimeout = 10 * time.Second

// RemoteSource serves lookups from the question/answer service REST API.
// A 404 from the service is the not-found outcome (nil, nil); any other
// non-2xx status is a transport failure and surfaces as an error.
type RemoteSource struct {
	baseURL string
	client  *http.Client
	log     zerolog.Logger
}

// NewRemoteSource creates a source against the service at baseURL.
func NewRemoteSource(baseURL string, log zerolog.Logger) *RemoteSource {
	return &RemoteSource{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: DefaultRequestTimeout,
		},
		log: log,
	}
}

func (s *RemoteSource) QuestionByID(ctx context.Context, id string) (*model.Question, error) {
	var q model.Question
	found, err := s.getJSON(ctx, "/api/questions/"+url.PathEscape(id), &q)
	if err != nil || !found {
		return nil, err
	}
	return &q, nil
}

func (s *RemoteSource) AnswerByID(ctx context.Context, id string) (*model.Answer, error) {
	var a model.Answer
	found, err := s.getJSON(ctx, "/api/answers/"+url.PathEscape(id), &a)
	if err != nil || !found {
		return nil, err
	}
	return &a, nil
}

func (s *RemoteSource) QuestionsByParent(ctx context.Context, parentID string) ([]model.Question, error) {
	var qs []model.Question
	path := "/api/questions?parent_id=" + url.QueryEscape(parentID)
	found, err := s.getJSON(ctx, path, &qs)
	if err != nil {
		return nil, err
	}
	if !found {
		// The listing endpoint has no not-found case; treat it as empty.
		return []model.Question{}, nil
	}
	return qs, nil
}

func (s *RemoteSource) RecentQuestions(ctx context.Context, limit int) ([]model.Question, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	var qs []model.Question
	path := "/api/questions?sort=recent&limit=" + strconv.Itoa(limit)
	found, err := s.getJSON(ctx, path, &qs)
	if err != nil {
		return nil, err
	}
	if !found {
		return []model.Question{}, nil
	}
	return qs, nil
}

// getJSON performs a GET and decodes the body into out. It returns
// (false, nil) on 404 and (false, err) on any other failure.
func (s *RemoteSource) getJSON(ctx context.Context, path string, out any) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+path, nil)
	if err != nil {
		return false, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		s.log.Error().Err(err).Str("path", path).Msg("request failed")
		return false, fmt.Errorf("request %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		s.log.Debug().Str("path", path).Msg("not found")
		return false, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		s.log.Error().Str("path", path).Str("status", resp.Status).Msg("service error")
		return false, fmt.Errorf("request %s: service returned %s", path, resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return false, fmt.Errorf("decode %s: %w", path, err)
	}
	return true, nil
}
