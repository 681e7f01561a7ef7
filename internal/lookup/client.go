package lookup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"voice-dialogue-go/internal/logger"
	"voice-dialogue-go/internal/metrics"
	"voice-dialogue-go/internal/session"
)

type Kind string

const (
	KindMovie  Kind = "movie"
	KindSeries Kind = "series"
)

func (k Kind) path() string {
	if k == KindSeries {
		return "/tv-series"
	}
	return "/movie"
}

// Criteria selects titles. The first non-empty field, in Genre, Year,
// Rating order, is sent.
type Criteria struct {
	Genre  string
	Year   string
	Rating string
}

func (c Criteria) param() (string, string, bool) {
	switch {
	case c.Genre != "":
		return "genres.name", c.Genre, true
	case c.Year != "":
		return "year", c.Year, true
	case c.Rating != "":
		return "rating.kinopoisk", c.Rating, true
	}
	return "", "", false
}

// Searcher finds titles. It never fails: problems come back as no titles.
type Searcher interface {
	Search(ctx context.Context, c Criteria, kind Kind) []string
}

// Auditor receives a line for every absorbed failure.
type Auditor interface {
	Log(tag, detail string) session.Entry
}

type SearchResponse struct {
	Docs []struct {
		Name string `json:"name"`
	} `json:"docs"`
	Total int `json:"total"`
}

type Options struct {
	BaseURL        string
	APIKey         string
	Timeout        time.Duration
	MaxElapsedTime time.Duration
	Logger         *logger.Logger
	Auditor        Auditor
}

type Client struct {
	baseURL    string
	apiKey     string
	maxElapsed time.Duration
	httpClient *http.Client
	log        *logger.Logger
	audit      Auditor
}

func NewClient(opts Options) *Client {
	if opts.Timeout == 0 {
		opts.Timeout = 12 * time.Second
	}
	if opts.MaxElapsedTime == 0 {
		opts.MaxElapsedTime = 12 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = logger.New()
	}
	return &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		apiKey:     opts.APIKey,
		maxElapsed: opts.MaxElapsedTime,
		httpClient: &http.Client{Timeout: opts.Timeout},
		log:        opts.Logger.With("module", "lookup"),
		audit:      opts.Auditor,
	}
}

// SetAuditor attaches the audit log of the current call.
func (c *Client) SetAuditor(a Auditor) {
	c.audit = a
}

func (c *Client) Search(ctx context.Context, cr Criteria, kind Kind) []string {
	titles, err := c.search(ctx, cr, kind)
	if err != nil {
		c.log.WithError(err).WithField("kind", kind).Warn("content lookup failed")
		if c.audit != nil {
			c.audit.Log("content lookup failed", err.Error())
		}
		metrics.ObserveLookup(string(kind), "error")
		return []string{}
	}
	if len(titles) == 0 {
		metrics.ObserveLookup(string(kind), "empty")
	} else {
		metrics.ObserveLookup(string(kind), "ok")
	}
	return titles
}

func (c *Client) search(ctx context.Context, cr Criteria, kind Kind) ([]string, error) {
	key, value, ok := cr.param()
	if !ok {
		return nil, errors.New("no search criteria")
	}
	u, err := url.Parse(c.baseURL + kind.path())
	if err != nil {
		return nil, fmt.Errorf("lookup url: %w", err)
	}
	q := u.Query()
	q.Set(key, value)
	u.RawQuery = q.Encode()

	c.log.WithField("url", u.String()).Debug("content lookup")
	var resp SearchResponse
	if err := c.doJSON(ctx, u.String(), &resp); err != nil {
		return nil, err
	}
	titles := make([]string, 0, len(resp.Docs))
	for _, d := range resp.Docs {
		if d.Name != "" {
			titles = append(titles, d.Name)
		}
	}
	return titles, nil
}

// doJSON GETs endpoint into target, retrying transport errors and 5xx answers
// with exponential backoff. 4xx answers are permanent.
func (c *Client) doJSON(ctx context.Context, endpoint string, target interface{}) error {
	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = c.maxElapsed
	var lastErr error
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Accept", "application/json")
		if c.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.apiKey)
			req.Header.Set("X-API-KEY", c.apiKey)
		}
		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			return err
		}
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		if resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("server error: %d %s", resp.StatusCode, string(body))
			return lastErr
		}
		if resp.StatusCode >= 300 {
			lastErr = fmt.Errorf("lookup error: %d %s", resp.StatusCode, string(body))
			return backoff.Permanent(lastErr)
		}
		if err := json.Unmarshal(body, target); err != nil {
			lastErr = fmt.Errorf("json decode error: %v body=%s", err, string(body))
			return backoff.Permanent(lastErr)
		}
		return nil
	}
	if err := backoff.Retry(op, backoff.WithContext(bo, ctx)); err != nil {
		if lastErr != nil {
			return lastErr
		}
		return err
	}
	return nil
}
