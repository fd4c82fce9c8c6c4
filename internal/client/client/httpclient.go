package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/dreamteller/internal/client/models"
	"github.com/dmitrijs2005/dreamteller/internal/common"
	"github.com/dmitrijs2005/dreamteller/internal/logging"
)

const DefaultTimeout = 30 * time.Second

type HTTPClientConfig struct {
	// BaseURL is the API origin, e.g. "https://dreams.example.com".
	BaseURL string
	// Timeout bounds a single request. Zero means DefaultTimeout.
	Timeout time.Duration
	// HTTPClient overrides the underlying client; Timeout is then ignored.
	HTTPClient *http.Client
	Logger     logging.Logger
}

// HTTPClient implements Client over net/http with JSON bodies.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	logger     logging.Logger
}

var _ Client = (*HTTPClient)(nil)

type validator interface {
	Validate() error
}

func NewHTTPClient(cfg HTTPClientConfig) *HTTPClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: timeout}
	}
	var logger logging.Logger = logging.NewNopLogger()
	if cfg.Logger != nil {
		logger = cfg.Logger
	}
	return &HTTPClient{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: hc,
		logger:     logger,
	}
}

func (c *HTTPClient) resolve(path string) (string, error) {
	base, err := url.Parse(c.baseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return "", ErrInvalidURL
	}
	full := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if _, err := url.Parse(full); err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}
	return full, nil
}

func (c *HTTPClient) Do(ctx context.Context, ep Endpoint, token string, out any) error {
	target, err := c.resolve(ep.Path)
	if err != nil {
		return err
	}

	var body io.Reader
	if ep.Body != nil {
		b, err := json.Marshal(ep.Body)
		if err != nil {
			return fmt.Errorf("%w: encode body: %w", ErrUnknown, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, ep.Method, target, body)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(common.AuthorizationHeaderName, token)
	if ep.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug(ctx, "api call failed", "endpoint", ep.String(), "error", err)
		return fmt.Errorf("%w: %w", ErrUnknown, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read body: %w", ErrUnknown, err)
	}
	c.logger.Debug(ctx, "api call",
		"endpoint", ep.String(),
		"status", resp.StatusCode,
		"duration", time.Since(start),
		"bytes", len(data),
	)

	return classify(resp.StatusCode, data, out)
}

// classify turns a buffered response into a result. Only the status code
// decides success; bodies of failed responses are never decoded.
func classify(status int, data []byte, out any) error {
	switch {
	case status >= 200 && status <= 299:
		if len(bytes.TrimSpace(data)) == 0 {
			if _, ok := out.(*models.Empty); ok || out == nil {
				return nil
			}
			return ErrNoData
		}
		if out == nil {
			return nil
		}
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("%w: %w", ErrDecodingFailed, err)
		}
		if v, ok := out.(validator); ok {
			if err := v.Validate(); err != nil {
				return fmt.Errorf("%w: %w", ErrDecodingFailed, err)
			}
		}
		return nil
	case status == http.StatusUnauthorized:
		return ErrUnauthorized
	default:
		return newServerError(status, data)
	}
}
