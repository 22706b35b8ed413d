package beeminder

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/teemow/beefewer/internal/instrumentation"
)

// DefaultBaseURL is the Beeminder API root.
const DefaultBaseURL = "https://www.beeminder.com/api/v1"

// defaultHTTPClient is a configured HTTP client with proper timeouts.
var defaultHTTPClient = &http.Client{
	Timeout: 30 * time.Second,
	Transport: &http.Transport{
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	},
}

// Client reads goal data from the Beeminder API.
type Client struct {
	baseURL    string
	authToken  string
	httpClient *http.Client
	metrics    *instrumentation.Metrics
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API root, mainly for tests.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithMetrics records every request on m.
func WithMetrics(m *instrumentation.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// NewClient creates a Client authenticated with a personal auth token.
func NewClient(authToken string, opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		authToken:  authToken,
		httpClient: defaultHTTPClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Datapoints returns the datapoints of username/goal in the order the API
// returns them, which is most recent first. A goal without data yields an
// empty slice and no error.
func (c *Client) Datapoints(ctx context.Context, username, goal string) (points []Datapoint, err error) {
	path := "/users/" + url.PathEscape(username) + "/goals/" + url.PathEscape(goal) + "/datapoints.json"

	ctx, span := instrumentation.StartAPISpan(ctx, instrumentation.ServiceBeeminder, instrumentation.OperationFetch,
		attribute.String(instrumentation.SpanAttrGoal, username+"/"+goal))
	start := time.Now()
	defer func() {
		c.metrics.RecordAPIOperation(ctx, instrumentation.ServiceBeeminder, instrumentation.OperationFetch,
			instrumentation.StatusOf(err), time.Since(start))
		instrumentation.EndSpan(span, err)
	}()

	q := url.Values{}
	q.Set("auth_token", c.authToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("beeminder: building request for %s: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("beeminder: fetching %s: %w", path, redactToken(err, c.authToken))
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, &APIError{StatusCode: res.StatusCode, Status: res.Status, Path: path}
	}

	if err := json.NewDecoder(res.Body).Decode(&points); err != nil {
		return nil, fmt.Errorf("beeminder: couldn't parse JSON data for %s: %w", path, err)
	}
	return points, nil
}

// redactToken strips the auth token from URL errors so it never reaches logs.
func redactToken(err error, token string) error {
	if ue, ok := err.(*url.Error); ok && token != "" {
		u, perr := url.Parse(ue.URL)
		if perr == nil {
			q := u.Query()
			if q.Has("auth_token") {
				q.Set("auth_token", "REDACTED")
				u.RawQuery = q.Encode()
			}
			return &url.Error{Op: ue.Op, URL: u.String(), Err: ue.Err}
		}
	}
	return err
}
