package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/lomedigitalschool/kotiz-web/internal/models"

	"go.uber.org/zap"
	"golang.org/x/net/http2"
)

// ErrNoToken means no bearer token is available: the operation aborts before
// any request is attempted.
var ErrNoToken = errors.New("no auth token available")

// TokenSource supplies the bearer token persisted by the auth layer. An empty
// token means logged out.
type TokenSource interface {
	Token(ctx context.Context) string
}

// Client speaks the cagnotte backend's /v1/pulls API.
type Client struct {
	baseURL          string
	httpClient       http.Client
	tokens           TokenSource
	defaultCreatorId string
}

func NewClient(cfg models.ApiConfig, storeCfg models.StoreConfig, tokens TokenSource) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("api base url cannot be empty")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid api base url %q: %w", cfg.BaseURL, err)
	}

	httpClient, err := createCustomHttpClient(cfg.Timeout)
	if err != nil {
		return nil, fmt.Errorf("unable to create custom http client: %w", err)
	}

	return &Client{
		baseURL:          strings.TrimRight(cfg.BaseURL, "/"),
		httpClient:       httpClient,
		tokens:           tokens,
		defaultCreatorId: storeCfg.DefaultCreatorId,
	}, nil
}

func createCustomHttpClient(timeout time.Duration) (http.Client, error) {
	tr := &http.Transport{
		ResponseHeaderTimeout: 30 * time.Second,
		Proxy:                 http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			KeepAlive: 30 * time.Second,
			Timeout:   15 * time.Second,
		}).DialContext,
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		MaxIdleConnsPerHost:   5,
		ExpectContinueTimeout: 5 * time.Second,
	}

	if err := http2.ConfigureTransport(tr); err != nil {
		return http.Client{}, err
	}

	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return http.Client{
		Transport: tr,
		Timeout:   timeout,
	}, nil
}

// FetchCagnottes fetches the full cagnotte collection and normalizes each
// record to the canonical shape.
func (c *Client) FetchCagnottes(ctx context.Context) ([]models.Cagnotte, error) {
	var cagnottes []models.Cagnotte
	if err := c.getJSON(ctx, "/v1/pulls", &cagnottes); err != nil {
		return nil, err
	}

	for i := range cagnottes {
		cagnottes[i].Normalize(c.defaultCreatorId)
	}

	zap.L().Debug("Fetched cagnottes from remote API",
		zap.Int("count", len(cagnottes)))
	return cagnottes, nil
}

// FetchCagnotte fetches a single cagnotte by id. The state store serves
// detail views from its cache; this exists for callers that need a fresh
// document.
func (c *Client) FetchCagnotte(ctx context.Context, id string) (*models.Cagnotte, error) {
	if id == "" {
		return nil, fmt.Errorf("cagnotte id cannot be empty")
	}

	var cagnotte models.Cagnotte
	if err := c.getJSON(ctx, "/v1/pulls/"+url.PathEscape(id), &cagnotte); err != nil {
		return nil, err
	}

	cagnotte.Normalize(c.defaultCreatorId)
	return &cagnotte, nil
}

func (c *Client) getJSON(ctx context.Context, path string, dest any) error {
	token := c.tokens.Token(ctx)
	if token == "" {
		return ErrNoToken
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("unable to build request for %s: %w", path, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			zap.L().Warn("Failed to close response body", zap.Error(err))
		}
	}()

	// 401 handling (token teardown, redirect) belongs to the auth
	// interceptor; here every non-2xx is the same failure.
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		zap.L().Warn("Remote API returned error status",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", body))
		return fmt.Errorf("remote API %s returned status %d", path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("unable to decode %s response: %w", path, err)
	}
	return nil
}
