package twitter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dghubble/oauth1"
	"golang.org/x/time/rate"

	apierrors "tweetcsv/pkg/errors"
	"tweetcsv/pkg/logger"
	"tweetcsv/pkg/ratelimit"
)

const (
	// BaseURL is the root of the v1.1 REST API
	BaseURL = "https://api.twitter.com/1.1"

	// SearchEndpoint is the standard search endpoint
	SearchEndpoint = "/search/tweets.json"

	// VerifyCredentialsEndpoint returns the authenticating user
	VerifyCredentialsEndpoint = "/account/verify_credentials.json"
)

// Config holds the client's credentials and transport settings
type Config struct {
	ConsumerKey       string
	ConsumerSecret    string
	AccessToken       string
	AccessTokenSecret string

	// BaseURL overrides the API root; tests point it at an httptest server.
	BaseURL string
	Timeout time.Duration

	// WaitOnRateLimit makes the client sleep until the rate limit window
	// resets instead of returning a rate_limit error.
	WaitOnRateLimit bool

	// RequestsPerWindow and Window pace requests. Zero disables pacing.
	RequestsPerWindow int
	Window            time.Duration
}

// Client is an OAuth1-signed Twitter API client
type Client struct {
	httpClient *http.Client
	baseURL    string
	pacer      *rate.Limiter
	wait       bool
	logger     logger.Logger

	// window is the rate limit state reported by the last response.
	window ratelimit.Window

	now   func() time.Time
	sleep func(context.Context, time.Duration) error
}

// NewClient creates a client signing every request with the four secrets
func NewClient(cfg Config, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}
	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = BaseURL
	}

	httpClient := oauth1.NewConfig(cfg.ConsumerKey, cfg.ConsumerSecret).
		Client(context.Background(), oauth1.NewToken(cfg.AccessToken, cfg.AccessTokenSecret))
	httpClient.Timeout = cfg.Timeout

	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		pacer:      ratelimit.NewPacer(cfg.RequestsPerWindow, cfg.Window),
		wait:       cfg.WaitOnRateLimit,
		logger:     log,
		now:        time.Now,
		sleep:      ratelimit.Sleep,
	}
}

// Get performs a signed GET and returns the body of a 200 response. Rate
// limited responses are retried after the window resets when waiting is
// enabled; everything else non-200 is returned as *errors.Error.
func (c *Client) Get(ctx context.Context, endpoint string, query url.Values) ([]byte, error) {
	for {
		if err := c.awaitWindow(ctx, endpoint); err != nil {
			return nil, err
		}
		if err := c.pacer.Wait(ctx); err != nil {
			return nil, err
		}

		body, err := c.do(ctx, endpoint, query)
		if err == nil {
			return body, nil
		}
		if !c.wait || !apierrors.IsRateLimited(err) {
			return nil, err
		}

		wait := ratelimit.UntilReset(c.window, c.now())
		logger.LogRateLimit(c.logger, endpoint, wait, c.window.Reset)
		if err := c.sleep(ctx, wait); err != nil {
			return nil, err
		}
		c.window = ratelimit.Window{}
	}
}

// awaitWindow sleeps before a request when the previous response reported
// the window as used up.
func (c *Client) awaitWindow(ctx context.Context, endpoint string) error {
	if !c.wait || !c.window.Exhausted() {
		return nil
	}
	now := c.now()
	if !now.Before(c.window.Reset) {
		c.window = ratelimit.Window{}
		return nil
	}
	wait := ratelimit.UntilReset(c.window, now)
	logger.LogRateLimit(c.logger, endpoint, wait, c.window.Reset)
	if err := c.sleep(ctx, wait); err != nil {
		return err
	}
	c.window = ratelimit.Window{}
	return nil
}

func (c *Client) do(ctx context.Context, endpoint string, query url.Values) ([]byte, error) {
	u := c.baseURL + endpoint
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, &apierrors.Error{
			Type:    apierrors.ErrorTypeUnknown,
			Message: fmt.Sprintf("failed to create request: %v", err),
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		c.logger.ErrorWithFields("HTTP request failed", map[string]interface{}{
			"endpoint": endpoint,
			"error":    err.Error(),
		})
		return nil, &apierrors.Error{
			Type:    apierrors.ErrorTypeNetwork,
			Message: fmt.Sprintf("network error: %v", err),
		}
	}
	defer resp.Body.Close()
	logger.LogRequest(c.logger, req.Method, c.baseURL+endpoint, resp.StatusCode, time.Since(start))

	if w, err := ratelimit.ParseWindow(resp.Header); err == nil {
		c.window = w
	} else {
		c.logger.WithError(err).Debug("ignoring malformed rate limit headers")
		c.window = ratelimit.Window{}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &apierrors.Error{
			Type:    apierrors.ErrorTypeNetwork,
			Message: fmt.Sprintf("failed to read response body: %v", err),
			Code:    resp.StatusCode,
		}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, responseError(resp.StatusCode, body)
	}
	return body, nil
}

// responseError builds a typed error from a non-200 response.
func responseError(status int, body []byte) error {
	var errResp errorResponse
	_ = json.Unmarshal(body, &errResp)

	api := make([]apierrors.APIError, 0, len(errResp.Errors))
	for _, e := range errResp.Errors {
		api = append(api, apierrors.APIError{Code: e.Code, Message: e.Message})
	}

	typ := apierrors.Classify(status, api)
	return &apierrors.Error{
		Type:    typ,
		Message: statusMessage(typ, status),
		Code:    status,
		API:     api,
	}
}

func statusMessage(typ apierrors.ErrorType, status int) string {
	switch typ {
	case apierrors.ErrorTypeAuth:
		return "authentication failed"
	case apierrors.ErrorTypeRateLimit:
		return "rate limit exceeded"
	case apierrors.ErrorTypeNotFound:
		return "resource not found"
	case apierrors.ErrorTypeServerError:
		return "server error"
	default:
		return fmt.Sprintf("unexpected status code: %d", status)
	}
}

// VerifyCredentials checks the secrets and returns the authenticated
// user's screen name.
func (c *Client) VerifyCredentials(ctx context.Context) (string, error) {
	body, err := c.Get(ctx, VerifyCredentialsEndpoint, url.Values{
		"skip_status":      {"true"},
		"include_entities": {"false"},
	})
	if err != nil {
		return "", err
	}
	var user struct {
		ScreenName string `json:"screen_name"`
	}
	if err := json.Unmarshal(body, &user); err != nil {
		return "", &apierrors.Error{
			Type:    apierrors.ErrorTypeParsing,
			Message: fmt.Sprintf("failed to parse JSON: %v", err),
			Code:    http.StatusOK,
		}
	}
	return user.ScreenName, nil
}
