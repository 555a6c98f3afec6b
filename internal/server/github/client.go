// Package github talks to the GitHub REST API on behalf of the server:
// identity for login, repository metadata and the caller's permission on a
// repository. Responses are kept in short-lived LRU caches and concurrent
// misses for the same key are coalesced.
package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/repoboard/internal/common"
	"github.com/dmitrijs2005/repoboard/internal/logging"
	gh "github.com/google/go-github/v61/github"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultCacheSize = 1024
	DefaultCacheTTL  = time.Minute
	listPageSize     = 100
	listMaxPages     = 5
)

// Identity is the GitHub account behind a token.
type Identity struct {
	ID        int64
	Login     string
	AvatarURL string
}

// Repo is the subset of repository metadata the boards need.
type Repo struct {
	FullName    string `json:"fullName"`
	Description string `json:"description,omitempty"`
	HTMLURL     string `json:"htmlUrl"`
	Stars       int    `json:"stars"`
	Private     bool   `json:"private"`
	CanWrite    bool   `json:"canWrite"`
}

type Options struct {
	// BaseURL overrides the API endpoint, e.g. for GitHub Enterprise.
	BaseURL    string
	HTTPClient *http.Client
	// Token authenticates calls made without a user token (star counts).
	Token     string
	CacheSize int
	CacheTTL  time.Duration
	Logger    logging.Logger
}

type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	token      string
	logger     logging.Logger

	repos *expirable.LRU[string, *Repo]
	perms *expirable.LRU[string, bool]
	group singleflight.Group
}

func NewClient(opts Options) (*Client, error) {
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 10 * time.Second}
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = DefaultCacheSize
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = DefaultCacheTTL
	}
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}

	c := &Client{
		httpClient: opts.HTTPClient,
		token:      opts.Token,
		logger:     opts.Logger.With("module", "github"),
		repos:      expirable.NewLRU[string, *Repo](opts.CacheSize, nil, opts.CacheTTL),
		perms:      expirable.NewLRU[string, bool](opts.CacheSize, nil, opts.CacheTTL),
	}

	if opts.BaseURL != "" {
		base := opts.BaseURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		u, err := url.Parse(base)
		if err != nil {
			return nil, fmt.Errorf("github base url: %w", err)
		}
		c.baseURL = u
	}
	return c, nil
}

func (c *Client) api(token string) *gh.Client {
	cl := gh.NewClient(c.httpClient)
	if token != "" {
		cl = cl.WithAuthToken(token)
	}
	if c.baseURL != nil {
		cl.BaseURL = c.baseURL
	}
	return cl
}

// SplitRepo splits "owner/name".
func SplitRepo(fullName string) (owner, name string, err error) {
	owner, name, ok := strings.Cut(fullName, "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return "", "", common.NewValidationError("repo", "must be a repository in owner/name form")
	}
	return owner, name, nil
}

func repoKey(fullName string) string {
	return strings.ToLower(fullName)
}

// Authenticate resolves the account that owns token.
func (c *Client) Authenticate(ctx context.Context, token string) (*Identity, error) {
	if token == "" {
		return nil, common.ErrorUnauthorized
	}
	u, _, err := c.api(token).Users.Get(ctx, "")
	if err != nil {
		return nil, mapError(err)
	}
	return &Identity{ID: u.GetID(), Login: u.GetLogin(), AvatarURL: u.GetAvatarURL()}, nil
}

// Repository returns public metadata of fullName.
func (c *Client) Repository(ctx context.Context, fullName string) (*Repo, error) {
	owner, name, err := SplitRepo(fullName)
	if err != nil {
		return nil, err
	}
	key := repoKey(fullName)
	if r, ok := c.repos.Get(key); ok {
		return r, nil
	}

	v, err, _ := c.group.Do("repo:"+key, func() (any, error) {
		r, _, err := c.api(c.token).Repositories.Get(ctx, owner, name)
		if err != nil {
			return nil, mapError(err)
		}
		repo := toRepo(r)
		c.repos.Add(key, repo)
		return repo, nil
	})
	if err != nil {
		c.logger.Debug(ctx, "repository lookup failed", "repo", fullName, "error", err)
		return nil, err
	}
	return v.(*Repo), nil
}

// StarCount returns the stargazer count of fullName.
func (c *Client) StarCount(ctx context.Context, fullName string) (int, error) {
	r, err := c.Repository(ctx, fullName)
	if err != nil {
		return 0, err
	}
	return r.Stars, nil
}

// CanWrite reports whether the holder of token may push to fullName.
// cacheKey identifies the holder; results are cached per (holder, repo).
func (c *Client) CanWrite(ctx context.Context, cacheKey, token, fullName string) (bool, error) {
	owner, name, err := SplitRepo(fullName)
	if err != nil {
		return false, err
	}
	key := cacheKey + "|" + repoKey(fullName)
	if ok, hit := c.perms.Get(key); hit {
		return ok, nil
	}

	v, err, _ := c.group.Do("perm:"+key, func() (any, error) {
		r, _, err := c.api(token).Repositories.Get(ctx, owner, name)
		if err != nil {
			err = mapError(err)
			if errors.Is(err, common.ErrorNotFound) {
				// Private repositories the caller cannot see look missing.
				c.perms.Add(key, false)
				return false, nil
			}
			return false, err
		}
		ok := hasWrite(r.GetPermissions())
		c.perms.Add(key, ok)
		return ok, nil
	})
	if err != nil {
		return false, err
	}
	return v.(bool), nil
}

// ListRepos lists repositories the holder of token can access, most
// recently updated first.
func (c *Client) ListRepos(ctx context.Context, token string) ([]*Repo, error) {
	api := c.api(token)
	opts := &gh.RepositoryListByAuthenticatedUserOptions{
		Sort:        "updated",
		ListOptions: gh.ListOptions{PerPage: listPageSize},
	}

	var result []*Repo
	for page := 0; page < listMaxPages; page++ {
		repos, resp, err := api.Repositories.ListByAuthenticatedUser(ctx, opts)
		if err != nil {
			return nil, mapError(err)
		}
		for _, r := range repos {
			result = append(result, toRepo(r))
		}
		if resp == nil || resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return result, nil
}

func toRepo(r *gh.Repository) *Repo {
	return &Repo{
		FullName:    r.GetFullName(),
		Description: r.GetDescription(),
		HTMLURL:     r.GetHTMLURL(),
		Stars:       r.GetStargazersCount(),
		Private:     r.GetPrivate(),
		CanWrite:    hasWrite(r.GetPermissions()),
	}
}

func hasWrite(p map[string]bool) bool {
	return p["admin"] || p["maintain"] || p["push"]
}

func mapError(err error) error {
	var rle *gh.RateLimitError
	if errors.As(err, &rle) {
		return fmt.Errorf("github rate limit: %w", err)
	}
	var er *gh.ErrorResponse
	if errors.As(err, &er) && er.Response != nil {
		switch er.Response.StatusCode {
		case http.StatusNotFound:
			return common.ErrorNotFound
		case http.StatusUnauthorized:
			return common.ErrorUnauthorized
		case http.StatusForbidden:
			return common.ErrorForbidden
		}
	}
	return fmt.Errorf("github: %w", err)
}
