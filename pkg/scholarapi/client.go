// Package scholarapi provides a client for the ScholarPath read API.
package scholarapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/scholarpath/internal/model"
	"github.com/sells-group/scholarpath/internal/query"
	"github.com/sells-group/scholarpath/internal/resilience"
)

// Client defines the ScholarPath API operations.
type Client interface {
	// ListMetrics fetches one page of metrics.
	ListMetrics(ctx context.Context, p MetricParams) (*model.MetricPage, error)
	// ListAllMetrics follows next_cursor until the listing is exhausted,
	// calling fn for every metric in order.
	ListAllMetrics(ctx context.Context, p MetricParams, fn func(model.Metric) error) error
	// GetProfile fetches the admissions profile of one campus and cohort.
	GetProfile(ctx context.Context, p ProfileParams) (*model.Profile, error)
	// GetProvenance fetches citation bundles grouped by dataset.
	GetProvenance(ctx context.Context, campus string, year *int) ([]model.ProvenanceBundle, error)
	// SearchSourceSchools finds feeder schools by name substring and type.
	SearchSourceSchools(ctx context.Context, search, schoolType string) ([]model.SourceSchool, error)
	// ListCampuses lists campuses, optionally within one system.
	ListCampuses(ctx context.Context, system string) ([]model.Campus, error)
	// ListMajors lists majors by campus and name substring.
	ListMajors(ctx context.Context, campus, search string) ([]model.Major, error)
	// ListDatasets lists datasets by year and cohort.
	ListDatasets(ctx context.Context, year *int, cohort string) ([]model.Dataset, error)
}

// MetricParams are the filters and paging inputs of ListMetrics.
type MetricParams struct {
	Campus       string
	Major        string
	Discipline   string
	Cohort       string
	StatName     string
	SourceSchool string
	SchoolType   string
	Year         *int
	YearMin      *int
	YearMax      *int
	Years        []int
	Cursor       string
	Limit        int
}

func (p MetricParams) values() map[string]any {
	v := map[string]any{
		"campus":        p.Campus,
		"major":         p.Major,
		"discipline":    p.Discipline,
		"cohort":        p.Cohort,
		"stat_name":     p.StatName,
		"source_school": p.SourceSchool,
		"school_type":   p.SchoolType,
		"year":          p.Year,
		"year_min":      p.YearMin,
		"year_max":      p.YearMax,
		"years":         p.Years,
		"cursor":        p.Cursor,
	}
	if p.Limit > 0 {
		v["limit"] = p.Limit
	}
	return v
}

// ProfileParams selects a profile. Major applies to transfer profiles,
// Discipline to freshman ones.
type ProfileParams struct {
	Cohort     model.Cohort
	Campus     string
	Major      string
	Discipline string
	Years      []int
}

// APIError is a non-200 response from the API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("scholarapi: status %d: %s", e.StatusCode, e.Message)
}

// Option configures the client.
type Option func(*httpClient)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *httpClient) {
		c.http.Timeout = d
	}
}

// WithRetry overrides the retry policy for transient failures.
func WithRetry(cfg resilience.RetryConfig) Option {
	return func(c *httpClient) {
		c.retry = cfg
	}
}

type httpClient struct {
	baseURL string
	http    *http.Client
	retry   resilience.RetryConfig
}

// NewClient creates a client for the API rooted at baseURL.
func NewClient(baseURL string, opts ...Option) Client {
	c := &httpClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout: 10 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		retry: resilience.DefaultRetryConfig(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.retry.ShouldRetry == nil {
		c.retry.ShouldRetry = retryable
	}
	if c.retry.OnRetry == nil {
		c.retry.OnRetry = resilience.RetryLogger("scholarapi", "get")
	}
	return c
}

// retryable retries transient statuses and network failures. Other API
// errors are final even when their message looks transient.
func retryable(err error) bool {
	var te *resilience.TransientError
	if errors.As(err, &te) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return false
	}
	return resilience.IsTransient(err)
}

// getJSON issues a GET for path+params and decodes a 200 body into out.
// 408, 429 and 5xx gateway statuses and network errors are retried.
func (c *httpClient) getJSON(ctx context.Context, path string, params map[string]any, out any) error {
	reqURL := c.baseURL + path + query.BuildQuery(params)

	body, err := resilience.DoVal(ctx, c.retry, func(ctx context.Context) ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, eris.Wrap(err, "scholarapi: create request")
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, eris.Wrapf(err, "scholarapi: GET %s", path)
		}
		defer resp.Body.Close() //nolint:errcheck

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, eris.Wrap(err, "scholarapi: read response body")
		}
		if resp.StatusCode != http.StatusOK {
			apiErr := &APIError{StatusCode: resp.StatusCode, Message: errorMessage(data)}
			if resilience.IsTransientHTTPStatus(resp.StatusCode) {
				return nil, resilience.NewTransientError(apiErr, resp.StatusCode)
			}
			return nil, apiErr
		}
		return data, nil
	})
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		return eris.Wrapf(err, "scholarapi: decode %s", path)
	}
	return nil
}

// errorMessage extracts {"error": msg}, falling back to the raw body.
func errorMessage(body []byte) string {
	var e struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &e); err == nil && e.Error != "" {
		return e.Error
	}
	return strings.TrimSpace(string(body))
}

func (c *httpClient) ListMetrics(ctx context.Context, p MetricParams) (*model.MetricPage, error) {
	var page model.MetricPage
	if err := c.getJSON(ctx, "/v1/metrics", p.values(), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *httpClient) ListAllMetrics(ctx context.Context, p MetricParams, fn func(model.Metric) error) error {
	for {
		page, err := c.ListMetrics(ctx, p)
		if err != nil {
			return err
		}
		for _, m := range page.Items {
			if err := fn(m); err != nil {
				return err
			}
		}
		next := page.PageInfo.NextCursor
		if next == nil || *next == "" || *next == p.Cursor {
			return nil
		}
		p.Cursor = *next
	}
}

func (c *httpClient) GetProfile(ctx context.Context, p ProfileParams) (*model.Profile, error) {
	params := map[string]any{
		"campus":     p.Campus,
		"major":      p.Major,
		"discipline": p.Discipline,
		"years":      p.Years,
	}
	var profile model.Profile
	if err := c.getJSON(ctx, "/v1/profile/"+string(p.Cohort), params, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (c *httpClient) GetProvenance(ctx context.Context, campus string, year *int) ([]model.ProvenanceBundle, error) {
	var bundles []model.ProvenanceBundle
	err := c.getJSON(ctx, "/v1/provenance", map[string]any{"campus": campus, "year": year}, &bundles)
	return bundles, err
}

func (c *httpClient) SearchSourceSchools(ctx context.Context, search, schoolType string) ([]model.SourceSchool, error) {
	var schools []model.SourceSchool
	err := c.getJSON(ctx, "/v1/source-schools", map[string]any{"search": search, "type": schoolType}, &schools)
	return schools, err
}

func (c *httpClient) ListCampuses(ctx context.Context, system string) ([]model.Campus, error) {
	var campuses []model.Campus
	err := c.getJSON(ctx, "/v1/campuses", map[string]any{"system": system}, &campuses)
	return campuses, err
}

func (c *httpClient) ListMajors(ctx context.Context, campus, search string) ([]model.Major, error) {
	var majors []model.Major
	err := c.getJSON(ctx, "/v1/majors", map[string]any{"campus": campus, "search": search}, &majors)
	return majors, err
}

func (c *httpClient) ListDatasets(ctx context.Context, year *int, cohort string) ([]model.Dataset, error) {
	var datasets []model.Dataset
	err := c.getJSON(ctx, "/v1/datasets", map[string]any{"year": year, "cohort": cohort}, &datasets)
	return datasets, err
}
