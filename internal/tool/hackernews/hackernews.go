// Package hackernews exposes the Hacker News connector as tools backed
// by the public Algolia HN search API. No authentication is required.
package hackernews

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"parley/internal/responses"
	"parley/internal/tool"
)

// DefaultBaseURL is the public Algolia HN API root.
const DefaultBaseURL = "https://hn.algolia.com/api/v1"

const (
	defaultLimit = 10
	maxLimit     = 50
)

type service struct {
	httpClient *http.Client
	baseURL    string
}

func newService(httpClient *http.Client, baseURL string) *service {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &service{httpClient: httpClient, baseURL: baseURL}
}

// SearchRequest are the arguments for the search tool.
type SearchRequest struct {
	Query string `mapstructure:"query"`
	Limit int    `mapstructure:"limit"`
}

// Validate implements tool.Validator.
func (r SearchRequest) Validate() error {
	if strings.TrimSpace(r.Query) == "" {
		return fmt.Errorf("query must not be empty")
	}
	if r.Limit < 0 || r.Limit > maxLimit {
		return fmt.Errorf("limit must be between 0 and %d", maxLimit)
	}
	return nil
}

// TopRequest are the arguments for the front-page tool.
type TopRequest struct {
	Limit int `mapstructure:"limit"`
}

// Validate implements tool.Validator.
func (r TopRequest) Validate() error {
	if r.Limit < 0 || r.Limit > maxLimit {
		return fmt.Errorf("limit must be between 0 and %d", maxLimit)
	}
	return nil
}

// Story is one search hit in a tool result.
type Story struct {
	Title    string `json:"title"`
	URL      string `json:"url,omitempty"`
	Author   string `json:"author"`
	Points   int    `json:"points"`
	Comments int    `json:"num_comments"`
	ItemID   string `json:"item_id"`
}

// Result is the JSON payload returned to the model.
type Result struct {
	Stories []Story `json:"stories"`
}

// NewSearchTool creates the hackernews_search tool.
func NewSearchTool(httpClient *http.Client, baseURL string) tool.Tool {
	s := newService(httpClient, baseURL)
	return tool.NewBase(
		"hackernews_search",
		"Searches Hacker News stories by relevance. Returns title, URL, author, points and comment count.",
		responses.ObjectSchema(map[string]any{
			"query": map[string]any{
				"type":        "string",
				"description": "Search terms",
			},
			"limit": map[string]any{
				"type":        "integer",
				"description": "Maximum number of stories to return (default 10, max 50)",
			},
		}, "query"),
		s.search,
	)
}

// NewTopStoriesTool creates the hackernews_top tool.
func NewTopStoriesTool(httpClient *http.Client, baseURL string) tool.Tool {
	s := newService(httpClient, baseURL)
	return tool.NewBase(
		"hackernews_top",
		"Returns the current Hacker News front page stories.",
		responses.ObjectSchema(map[string]any{
			"limit": map[string]any{
				"type":        "integer",
				"description": "Maximum number of stories to return (default 10, max 50)",
			},
		}),
		s.top,
	)
}

func (s *service) search(ctx context.Context, req SearchRequest) (Result, error) {
	params := url.Values{}
	params.Set("query", req.Query)
	params.Set("tags", "story")
	params.Set("hitsPerPage", strconv.Itoa(effectiveLimit(req.Limit)))
	return s.fetch(ctx, "/search?"+params.Encode())
}

func (s *service) top(ctx context.Context, req TopRequest) (Result, error) {
	params := url.Values{}
	params.Set("tags", "front_page")
	params.Set("hitsPerPage", strconv.Itoa(effectiveLimit(req.Limit)))
	return s.fetch(ctx, "/search?"+params.Encode())
}

// algoliaResponse is the subset of the API response the tools consume.
type algoliaResponse struct {
	Hits []struct {
		Title       string `json:"title"`
		URL         string `json:"url"`
		Author      string `json:"author"`
		Points      int    `json:"points"`
		NumComments int    `json:"num_comments"`
		ObjectID    string `json:"objectID"`
	} `json:"hits"`
}

func (s *service) fetch(ctx context.Context, path string) (Result, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+path, nil)
	if err != nil {
		return Result{}, err
	}

	httpResp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return Result{}, fmt.Errorf("hacker news request failed: %w", err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return Result{}, err
	}
	if httpResp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("hacker news API returned HTTP %d", httpResp.StatusCode)
	}

	var parsed algoliaResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return Result{}, fmt.Errorf("failed to parse hacker news response: %w", err)
	}

	result := Result{Stories: make([]Story, 0, len(parsed.Hits))}
	for _, hit := range parsed.Hits {
		result.Stories = append(result.Stories, Story{
			Title:    hit.Title,
			URL:      hit.URL,
			Author:   hit.Author,
			Points:   hit.Points,
			Comments: hit.NumComments,
			ItemID:   hit.ObjectID,
		})
	}
	return result, nil
}

func effectiveLimit(limit int) int {
	if limit <= 0 {
		return defaultLimit
	}
	return limit
}
