// Package classnavi is a client for the ClassNavi student-information API.
// The API is undocumented: pagination parameters are probed by brute force,
// calls are strictly sequential with a fixed delay to respect an unknown
// rate limit, and per-student failures are the caller's to skip.
package classnavi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/hmatsuda/renraku/internal/logger"
	"github.com/hmatsuda/renraku/internal/models"
)

// ErrNotFound is returned when ClassNavi has no profile for a login ID.
var ErrNotFound = errors.New("student not found")

// pageSizeParams are the candidate names for the page-size query parameter,
// tried in order until the API stops rejecting the request.
var pageSizeParams = []string{"per_page", "limit", "count"}

const probePageSize = 100

// Student is the slice of a ClassNavi profile the work queue cares about.
type Student struct {
	LoginID string `json:"login_id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
}

type studentPage struct {
	Students []Student `json:"students"`
}

// UnmarshalJSON accepts both shapes seen in the wild: a bare array and a
// {"students": [...]} wrapper.
func (p *studentPage) UnmarshalJSON(data []byte) error {
	var bare []Student
	if err := json.Unmarshal(data, &bare); err == nil {
		p.Students = bare
		return nil
	}
	type wrapper struct {
		Students []Student `json:"students"`
	}
	var w wrapper
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	p.Students = w.Students
	return nil
}

// Config carries client construction options. Token may be empty for
// installations where ClassNavi sits behind network auth.
type Config struct {
	BaseURL    string
	Token      string
	Wait       time.Duration
	HTTPClient *http.Client
}

type Client struct {
	baseURL string
	token   string
	wait    time.Duration
	hc      *http.Client
	sleep   func(time.Duration) // overridable in tests
}

func New(cfg Config) *Client {
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		baseURL: cfg.BaseURL,
		token:   cfg.Token,
		wait:    cfg.Wait,
		hc:      hc,
		sleep:   time.Sleep,
	}
}

// Student fetches one profile by login ID.
func (c *Client) Student(ctx context.Context, loginID string) (Student, error) {
	var s Student
	endpoint := fmt.Sprintf("%s/api/students/%s", c.baseURL, url.PathEscape(models.NormalizeKeyPart(loginID)))
	status, err := c.getJSON(ctx, endpoint, &s)
	if err != nil {
		return Student{}, err
	}
	if status == http.StatusNotFound {
		return Student{}, ErrNotFound
	}
	if status != http.StatusOK {
		return Student{}, fmt.Errorf("ClassNavi returned status %d", status)
	}
	return s, nil
}

// ListStudents walks the paginated roster endpoint. The page-size parameter
// name is not documented anywhere, so candidates are tried until one is
// accepted; paging stops at the first empty page or when the API starts
// repeating itself (some deployments ignore the page parameter entirely).
func (c *Client) ListStudents(ctx context.Context) ([]Student, error) {
	var lastErr error
	for _, sizeParam := range pageSizeParams {
		students, err := c.listWith(ctx, sizeParam)
		if err == nil {
			return students, nil
		}
		lastErr = err
		logger.Debug("ClassNavi pagination probe failed", "param", sizeParam, "error", err)
	}
	return nil, fmt.Errorf("all pagination parameters rejected: %w", lastErr)
}

func (c *Client) listWith(ctx context.Context, sizeParam string) ([]Student, error) {
	var all []Student
	var firstOfPrev string

	for page := 1; ; page++ {
		if page > 1 {
			c.sleep(c.wait)
		}

		endpoint := fmt.Sprintf("%s/api/students?page=%d&%s=%d", c.baseURL, page, sizeParam, probePageSize)
		var batch studentPage
		status, err := c.getJSON(ctx, endpoint, &batch)
		if err != nil {
			return nil, err
		}
		switch status {
		case http.StatusOK:
		case http.StatusBadRequest, http.StatusUnprocessableEntity:
			return nil, fmt.Errorf("parameter %q rejected with status %d", sizeParam, status)
		default:
			return nil, fmt.Errorf("ClassNavi returned status %d", status)
		}

		if len(batch.Students) == 0 {
			return all, nil
		}
		if batch.Students[0].LoginID == firstOfPrev {
			// Page parameter ignored; one page is all there is.
			return all, nil
		}
		firstOfPrev = batch.Students[0].LoginID
		all = append(all, batch.Students...)

		if len(batch.Students) < probePageSize {
			return all, nil
		}
	}
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out any) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return resp.StatusCode, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, fmt.Errorf("failed to decode response: %w", err)
	}
	return resp.StatusCode, nil
}

// Wait exposes the configured inter-call delay so enrichment loops can
// throttle between per-student fetches.
func (c *Client) Wait() time.Duration {
	return c.wait
}

// Throttle sleeps for the configured delay.
func (c *Client) Throttle() {
	c.sleep(c.wait)
}
