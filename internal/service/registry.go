package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"addrcore/internal/config"
	"addrcore/internal/metrics"
	"addrcore/internal/model"
)

// Registry answers keyword queries with ranked address candidates
type Registry interface {
	Query(ctx context.Context, keyword string) (*model.RegistryResponse, error)
}

// ErrRegistryNotConfigured is returned when no registry API key is set.
var ErrRegistryNotConfigured = errors.New("address registry is not configured (missing JUSO_API_KEY)")

// RegistryError is an error reported by the registry API itself
type RegistryError struct {
	Code    string
	Message string
}

func (e *RegistryError) Error() string {
	return fmt.Sprintf("registry error %s: %s", e.Code, e.Message)
}

// jusoResponse mirrors the addrLinkApi JSON envelope
type jusoResponse struct {
	Results struct {
		Common struct {
			TotalCount   string `json:"totalCount"`
			ErrorCode    string `json:"errorCode"`
			ErrorMessage string `json:"errorMessage"`
		} `json:"common"`
		Juso []model.RegistryCandidate `json:"juso"`
	} `json:"results"`
}

// JusoClient queries the road-name address registry over HTTP
type JusoClient struct {
	config     *config.RegistryConfig
	httpClient *http.Client
	limiter    *rate.Limiter
	metrics    *metrics.Metrics
	log        *slog.Logger
}

// NewJusoClient creates a registry client throttled to one call per RateInterval
func NewJusoClient(cfg *config.RegistryConfig, m *metrics.Metrics, logger *slog.Logger) *JusoClient {
	limit := rate.Inf
	if cfg.RateInterval > 0 {
		limit = rate.Every(cfg.RateInterval)
	}
	return &JusoClient{
		config:     cfg,
		httpClient: &http.Client{Timeout: time.Duration(cfg.Timeout) * time.Second},
		limiter:    rate.NewLimiter(limit, 1),
		metrics:    m,
		log:        logger.With("component", "juso"),
	}
}

// IsEnabled returns whether the client has credentials
func (c *JusoClient) IsEnabled() bool {
	return c.config.Enabled
}

// Query performs one keyword search. No network retry happens here.
func (c *JusoClient) Query(ctx context.Context, keyword string) (*model.RegistryResponse, error) {
	if !c.config.Enabled {
		return nil, ErrRegistryNotConfigured
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("juso: rate limiter: %w", err)
	}

	start := time.Now()
	resp, err := c.query(ctx, keyword)
	outcome := "hit"
	switch {
	case err != nil:
		outcome = "error"
	case len(resp.Candidates) == 0:
		outcome = "empty"
	}
	c.metrics.ObserveRegistryLatency(outcome, time.Since(start))

	if err != nil {
		c.log.WarnContext(ctx, "juso query failed", slog.String("keyword", keyword), slog.String("error", err.Error()))
		return nil, err
	}

	c.log.DebugContext(ctx, "juso query",
		slog.String("keyword", keyword),
		slog.Int("total", resp.TotalCount),
		slog.Int("returned", len(resp.Candidates)),
	)
	return resp, nil
}

func (c *JusoClient) query(ctx context.Context, keyword string) (*model.RegistryResponse, error) {
	params := url.Values{}
	params.Set("confmKey", c.config.APIKey)
	params.Set("keyword", keyword)
	params.Set("currentPage", "1")
	params.Set("countPerPage", strconv.Itoa(c.config.CountPerPage))
	params.Set("resultType", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.APIURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("juso: create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("juso: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("juso: read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("juso: unexpected status %d", resp.StatusCode)
	}

	var decoded jusoResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("juso: decode json: %w", err)
	}

	common := decoded.Results.Common
	if common.ErrorCode != "" && common.ErrorCode != "0" {
		return nil, &RegistryError{Code: common.ErrorCode, Message: common.ErrorMessage}
	}

	total, _ := strconv.Atoi(common.TotalCount)
	candidates := decoded.Results.Juso
	if candidates == nil {
		candidates = []model.RegistryCandidate{}
	}

	return &model.RegistryResponse{TotalCount: total, Candidates: candidates}, nil
}
