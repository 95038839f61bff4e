// Package github exposes the GitHub connector as tools. Repositories
// are cloned shallowly into memory with go-git, so the tools work
// against any git URL the token can reach, not only github.com.
package github

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/go-git/go-git/v5/storage/memory"

	"parley/internal/responses"
	"parley/internal/tool"
)

const (
	defaultListLimit = 200
	maxFileBytes     = 256 * 1024
)

type service struct {
	token string
}

// ListRequest are the arguments for the file-listing tool.
type ListRequest struct {
	Repo   string `mapstructure:"repo"`
	Ref    string `mapstructure:"ref"`
	Prefix string `mapstructure:"prefix"`
	Limit  int    `mapstructure:"limit"`
}

// Validate implements tool.Validator.
func (r ListRequest) Validate() error {
	if strings.TrimSpace(r.Repo) == "" {
		return fmt.Errorf("repo must not be empty")
	}
	if r.Limit < 0 {
		return fmt.Errorf("limit must not be negative")
	}
	return nil
}

// ReadRequest are the arguments for the file-reading tool.
type ReadRequest struct {
	Repo string `mapstructure:"repo"`
	Path string `mapstructure:"path"`
	Ref  string `mapstructure:"ref"`
}

// Validate implements tool.Validator.
func (r ReadRequest) Validate() error {
	if strings.TrimSpace(r.Repo) == "" {
		return fmt.Errorf("repo must not be empty")
	}
	if strings.TrimSpace(r.Path) == "" {
		return fmt.Errorf("path must not be empty")
	}
	return nil
}

// ListResult is the JSON payload of the listing tool.
type ListResult struct {
	Files     []string `json:"files"`
	Truncated bool     `json:"truncated,omitempty"`
}

// ReadResult is the JSON payload of the reading tool.
type ReadResult struct {
	Path      string `json:"path"`
	Content   string `json:"content"`
	Truncated bool   `json:"truncated,omitempty"`
}

// NewListFilesTool creates the github_list_files tool. token may be
// empty for public repositories.
func NewListFilesTool(token string) tool.Tool {
	s := &service{token: token}
	return tool.NewBase(
		"github_list_files",
		"Lists file paths in a git repository at the given ref (default branch if omitted).",
		responses.ObjectSchema(map[string]any{
			"repo": map[string]any{
				"type":        "string",
				"description": "Repository clone URL, e.g. https://github.com/owner/name",
			},
			"ref": map[string]any{
				"type":        "string",
				"description": "Branch name to inspect (optional)",
			},
			"prefix": map[string]any{
				"type":        "string",
				"description": "Only return paths under this prefix (optional)",
			},
			"limit": map[string]any{
				"type":        "integer",
				"description": "Maximum number of paths to return (default 200)",
			},
		}, "repo"),
		s.listFiles,
	)
}

// NewReadFileTool creates the github_read_file tool.
func NewReadFileTool(token string) tool.Tool {
	s := &service{token: token}
	return tool.NewBase(
		"github_read_file",
		"Reads one file from a git repository at the given ref (default branch if omitted).",
		responses.ObjectSchema(map[string]any{
			"repo": map[string]any{
				"type":        "string",
				"description": "Repository clone URL, e.g. https://github.com/owner/name",
			},
			"path": map[string]any{
				"type":        "string",
				"description": "File path inside the repository",
			},
			"ref": map[string]any{
				"type":        "string",
				"description": "Branch name to inspect (optional)",
			},
		}, "repo", "path"),
		s.readFile,
	)
}

func (s *service) listFiles(ctx context.Context, req ListRequest) (ListResult, error) {
	tree, err := s.headTree(ctx, req.Repo, req.Ref)
	if err != nil {
		return ListResult{}, err
	}

	limit := req.Limit
	if limit == 0 {
		limit = defaultListLimit
	}

	result := ListResult{Files: []string{}}
	err = tree.Files().ForEach(func(f *object.File) error {
		if req.Prefix != "" && !strings.HasPrefix(f.Name, req.Prefix) {
			return nil
		}
		if len(result.Files) >= limit {
			result.Truncated = true
			return nil
		}
		result.Files = append(result.Files, f.Name)
		return nil
	})
	if err != nil {
		return ListResult{}, err
	}
	return result, nil
}

func (s *service) readFile(ctx context.Context, req ReadRequest) (ReadResult, error) {
	tree, err := s.headTree(ctx, req.Repo, req.Ref)
	if err != nil {
		return ReadResult{}, err
	}

	file, err := tree.File(req.Path)
	if err != nil {
		return ReadResult{}, fmt.Errorf("file %q not found: %w", req.Path, err)
	}

	content, err := file.Contents()
	if err != nil {
		return ReadResult{}, err
	}

	result := ReadResult{Path: req.Path, Content: content}
	if len(content) > maxFileBytes {
		result.Content = truncateOnRuneBoundary(content, maxFileBytes)
		result.Truncated = true
	}
	return result, nil
}

// truncateOnRuneBoundary cuts s to at most max bytes without splitting
// a multi-byte rune. Caller guarantees len(s) > max.
func truncateOnRuneBoundary(s string, max int) string {
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// headTree clones the repository into memory and resolves the tree of
// the requested branch's head commit.
func (s *service) headTree(ctx context.Context, repoURL, ref string) (*object.Tree, error) {
	opts := &git.CloneOptions{
		URL:          repoURL,
		SingleBranch: true,
		Depth:        1,
	}
	if ref != "" {
		opts.ReferenceName = plumbing.NewBranchReferenceName(ref)
	}
	if s.token != "" && strings.HasPrefix(repoURL, "http") {
		opts.Auth = &githttp.BasicAuth{Username: "x-access-token", Password: s.token}
	}

	repo, err := git.CloneContext(ctx, memory.NewStorage(), nil, opts)
	if err != nil {
		// Not every transport implements shallow fetches; retry full.
		opts.Depth = 0
		repo, err = git.CloneContext(ctx, memory.NewStorage(), nil, opts)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to clone %q: %w", repoURL, err)
	}

	head, err := repo.Head()
	if err != nil {
		return nil, err
	}
	commit, err := repo.CommitObject(head.Hash())
	if err != nil {
		return nil, err
	}
	return commit.Tree()
}
