package jsonplaceholder

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"post_browser/internal/domain"
)

const (
	SourceID   = "jsonplaceholder"
	SourceName = "JSONPlaceholder Posts"
)

// Config holds posts API configuration.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Source implements service.RecordSource over a json-server style API.
type Source struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// New creates a new posts source.
func New(cfg Config, logger *slog.Logger) *Source {
	return &Source{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL: cfg.BaseURL,
		logger:  logger.With("source", SourceID),
	}
}

// ID returns the source identifier.
func (s *Source) ID() string {
	return SourceID
}

// Name returns human-readable name.
func (s *Source) Name() string {
	return SourceName
}

// FetchPage fetches one page of posts. Failures are returned as
// *domain.TransportError.
func (s *Source) FetchPage(ctx context.Context, limit, page int) (*domain.PageResult, error) {
	u, err := s.pageURL(limit, page)
	if err != nil {
		return nil, &domain.TransportError{Op: "build url", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, &domain.TransportError{Op: "create request", Err: err}
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "PostBrowser/1.0")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, &domain.TransportError{Op: "execute request", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &domain.TransportError{
			Op:  "read response",
			Err: fmt.Errorf("unexpected status: %d", resp.StatusCode),
		}
	}

	var posts []APIPost
	if err := json.NewDecoder(resp.Body).Decode(&posts); err != nil {
		return nil, &domain.TransportError{Op: "decode response", Err: err}
	}

	total := s.parseTotalCount(resp.Header.Get(TotalCountHeader))

	s.logger.Debug("fetched page",
		"page", page,
		"limit", limit,
		"posts", len(posts),
		"total", total,
	)

	return &domain.PageResult{
		Posts:      s.transform(posts),
		TotalCount: total,
	}, nil
}

func (s *Source) pageURL(limit, page int) (string, error) {
	u, err := url.Parse(s.baseURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("_limit", strconv.Itoa(limit))
	q.Set("_page", strconv.Itoa(page))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// parseTotalCount treats a missing or malformed header as an empty collection.
func (s *Source) parseTotalCount(raw string) int {
	if raw == "" {
		s.logger.Warn("missing total count header")
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 0 {
		s.logger.Warn("malformed total count header", "value", raw)
		return 0
	}
	return n
}

func (s *Source) transform(posts []APIPost) []domain.Post {
	out := make([]domain.Post, 0, len(posts))
	for _, p := range posts {
		out = append(out, domain.Post{
			ID:    p.ID,
			Title: p.Title,
			Body:  p.Body,
		})
	}
	return out
}
