package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/mapsengine/gme-cli/internal/config"
	apperrors "github.com/mapsengine/gme-cli/internal/errors"
	"github.com/mapsengine/gme-cli/internal/logger"
	"github.com/mapsengine/gme-cli/internal/utils"
)

const maxResponseSize = 32 * 1024 * 1024

// Client is an authenticated Maps Engine REST client with retry and throttling
type Client struct {
	baseURL   string
	createURL string
	uploadURL string
	apiKey    string
	dumpDir   string

	tokens     oauth2.TokenSource
	httpClient *http.Client
	retrier    *utils.Retrier
	limiter    *rate.Limiter
	log        zerolog.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default instrumented HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
		c.retrier.Client = hc
	}
}

// WithRetrier replaces the backoff policy
func WithRetrier(r *utils.Retrier) Option {
	return func(c *Client) {
		c.retrier = r
	}
}

// NewClient creates a client for the API described by cfg. tokens supplies
// the access token for every attempt, refreshing it when needed.
func NewClient(cfg *config.UserConfig, tokens oauth2.TokenSource, opts ...Option) *Client {
	hc := utils.NewHTTPClientWithConfig(utils.HTTPClientConfig{
		Timeout:        cfg.RequestTimeout,
		ConnectTimeout: utils.DefaultHTTPConfig().ConnectTimeout,
		Debug:          zerolog.GlobalLevel() <= zerolog.DebugLevel,
	})

	c := &Client{
		baseURL:    cfg.GetAPIEndpoint(),
		createURL:  cfg.GetCreateEndpoint(),
		uploadURL:  strings.TrimSuffix(cfg.UploadBaseURL, "/"),
		apiKey:     cfg.APIKey,
		dumpDir:    cfg.DebugDumpDir,
		tokens:     tokens,
		httpClient: hc,
		retrier:    utils.NewRetrier(hc),
		log:        logger.With("api").With().Str("client_session", uuid.NewString()).Logger(),
	}

	if cfg.RequestsPerSecond > 0 {
		burst := int(cfg.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}

	for _, opt := range opts {
		opt(c)
	}
	return c
}

// bodyFunc produces a fresh request body for every attempt
type bodyFunc func() (io.Reader, string, error)

// do sends one logical request through the retry loop
func (c *Client) do(ctx context.Context, op, method, rawURL string, body bodyFunc, successCodes ...int) (*http.Response, error) {
	build := func(ctx context.Context) (*http.Request, error) {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		token, err := c.tokens.Token()
		if err != nil {
			return nil, err
		}

		var reader io.Reader
		var contentType string
		if body != nil {
			reader, contentType, err = body()
			if err != nil {
				return nil, err
			}
		}

		req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
		if err != nil {
			if closer, ok := reader.(io.Closer); ok {
				closer.Close()
			}
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Authorization", "OAuth "+token.AccessToken)
		req.Header.Set("Accept", "application/json")
		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}
		return req, nil
	}

	c.log.Debug().Str("op", op).Str("method", method).Msg("request")
	return c.retrier.Do(ctx, op, build, successCodes...)
}

// readJSON reads a successful response body and writes the debug dump
func (c *Client) readJSON(op string, resp *http.Response) ([]byte, error) {
	defer utils.DrainAndClose(resp.Body)

	data, err := utils.ReadResponseBody(resp, maxResponseSize)
	if err != nil {
		return nil, apperrors.NewWithStatus(apperrors.ErrAPIRequest, op, resp.StatusCode, err)
	}

	if c.dumpDir != "" {
		// The key parameter is not part of the dump name
		u := *resp.Request.URL
		q := u.Query()
		q.Del("key")
		u.RawQuery = q.Encode()
		utils.DumpResponse(c.dumpDir, u.RequestURI(), data)
	}
	return data, nil
}

// endpoint joins root, path and query, always adding the API key
func (c *Client) endpoint(root, path string, query url.Values) string {
	q := url.Values{}
	for k, v := range query {
		if len(v) > 0 && v[0] != "" {
			q[k] = v
		}
	}
	if c.apiKey != "" {
		q.Set("key", c.apiKey)
	}

	u := root + "/" + strings.TrimPrefix(path, "/")
	if encoded := q.Encode(); encoded != "" {
		u += "?" + encoded
	}
	return u
}

// Get issues an authenticated GET against the versioned API root and returns the JSON body
func (c *Client) Get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	op := "GET " + path
	resp, err := c.do(ctx, op, http.MethodGet, c.endpoint(c.baseURL, path, query), nil)
	if err != nil {
		return nil, err
	}
	return c.readJSON(op, resp)
}

// Post issues an authenticated form-urlencoded POST and returns the JSON body
func (c *Client) Post(ctx context.Context, path string, query url.Values, form url.Values) ([]byte, error) {
	op := "POST " + path
	encoded := form.Encode()
	body := func() (io.Reader, string, error) {
		return strings.NewReader(encoded), "application/x-www-form-urlencoded", nil
	}

	resp, err := c.do(ctx, op, http.MethodPost, c.endpoint(c.baseURL, path, query), body)
	if err != nil {
		return nil, err
	}
	return c.readJSON(op, resp)
}

// postJSON sends payload as a JSON body to the asset creation root
func (c *Client) postJSON(ctx context.Context, path string, query url.Values, payload interface{}) ([]byte, error) {
	op := "POST " + path
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, apperrors.New(apperrors.ErrAPIRequest, op, err)
	}
	body := func() (io.Reader, string, error) {
		return bytes.NewReader(data), "application/json", nil
	}

	resp, err := c.do(ctx, op, http.MethodPost, c.endpoint(c.createURL, path, query), body)
	if err != nil {
		return nil, err
	}
	return c.readJSON(op, resp)
}

// decode unmarshals a response into v, reporting failures as request errors
func decode(op string, data []byte, v interface{}) error {
	if err := json.Unmarshal(data, v); err != nil {
		return apperrors.New(apperrors.ErrAPIRequest, op, fmt.Errorf("failed to parse response: %w", err))
	}
	return nil
}
