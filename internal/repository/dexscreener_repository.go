package repository

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang-dex-token-analyzer/internal/config"
	"golang-dex-token-analyzer/internal/dto"
	"golang-dex-token-analyzer/internal/metrics"
	"golang-dex-token-analyzer/pkg/logger"

	jsoniter "github.com/json-iterator/go"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// MaxTokenAddressesPerRequest is the DexScreener limit for /tokens/{addresses}.
const MaxTokenAddressesPerRequest = 30

var (
	// ErrUpstream wraps every transport, status or decoding failure of the market-data API.
	ErrUpstream = errors.New("dexscreener request failed")
	// ErrTooManyAddresses is returned when a /tokens lookup exceeds MaxTokenAddressesPerRequest.
	ErrTooManyAddresses = fmt.Errorf("at most %d token addresses per request", MaxTokenAddressesPerRequest)
)

// DexScreenerRepository fetches trading pairs from the DexScreener API.
type DexScreenerRepository interface {
	// SearchPairs calls /search?q=query. It always reaches upstream.
	SearchPairs(ctx context.Context, query string) (*dto.PairsResponse, error)
	// SearchPairsCached is SearchPairs behind the search cache. Batch paths must not use it.
	SearchPairsCached(ctx context.Context, query string) (*dto.PairsResponse, error)
	// GetTokenPairs calls /tokens/{a,b,c}.
	GetTokenPairs(ctx context.Context, addresses []string) (*dto.PairsResponse, error)
}

type dexScreenerRepository struct {
	baseURL    string
	userAgent  string
	log        *logger.Logger
	httpClient *http.Client
	cache      *cache.Cache
}

// NewDexScreenerRepository builds the client. A zero SearchCacheTTL disables the search cache.
func NewDexScreenerRepository(cfg *config.Config, log *logger.Logger) DexScreenerRepository {
	timeout := cfg.DexScreener.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	var c *cache.Cache
	if ttl := cfg.DexScreener.SearchCacheTTL; ttl > 0 {
		c = cache.New(ttl, 2*ttl)
	}

	return &dexScreenerRepository{
		baseURL:   strings.TrimRight(cfg.DexScreener.BaseURL, "/"),
		userAgent: cfg.DexScreener.UserAgent,
		log:       log.Named("dexscreener"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		cache: c,
	}
}

func (r *dexScreenerRepository) SearchPairs(ctx context.Context, query string) (*dto.PairsResponse, error) {
	return r.search(ctx, strings.TrimSpace(query))
}

func (r *dexScreenerRepository) SearchPairsCached(ctx context.Context, query string) (*dto.PairsResponse, error) {
	query = strings.TrimSpace(query)
	if r.cache == nil {
		return r.search(ctx, query)
	}

	cacheKey := "search:" + strings.ToLower(query)
	if cached, ok := r.cache.Get(cacheKey); ok {
		metrics.RecordUpstreamRequest("search", "cache", 0)
		r.log.DebugContext(ctx, "DexScreener search served from cache", logger.StringField("query", query))
		return cached.(*dto.PairsResponse), nil
	}

	resp, err := r.search(ctx, query)
	if err != nil {
		return nil, err
	}
	r.cache.SetDefault(cacheKey, resp)
	return resp, nil
}

func (r *dexScreenerRepository) search(ctx context.Context, query string) (*dto.PairsResponse, error) {
	return r.fetch(ctx, "search", r.baseURL+"/search?q="+url.QueryEscape(query))
}

func (r *dexScreenerRepository) GetTokenPairs(ctx context.Context, addresses []string) (*dto.PairsResponse, error) {
	cleaned := make([]string, 0, len(addresses))
	for _, a := range addresses {
		if a = strings.TrimSpace(a); a != "" {
			cleaned = append(cleaned, a)
		}
	}
	if len(cleaned) == 0 {
		return nil, fmt.Errorf("token addresses cannot be empty")
	}
	if len(cleaned) > MaxTokenAddressesPerRequest {
		return nil, fmt.Errorf("%w: got %d", ErrTooManyAddresses, len(cleaned))
	}

	endpoint := r.baseURL + "/tokens/" + strings.Join(cleaned, ",")
	return r.fetch(ctx, "tokens", endpoint)
}

func (r *dexScreenerRepository) fetch(ctx context.Context, name, endpoint string) (*dto.PairsResponse, error) {
	started := time.Now()
	body, err := r.sendRequest(ctx, endpoint)
	elapsed := time.Since(started).Seconds()
	if err != nil {
		metrics.RecordUpstreamRequest(name, "error", elapsed)
		return nil, err
	}

	var resp dto.PairsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		metrics.RecordUpstreamRequest(name, "error", elapsed)
		r.log.ErrorContext(ctx, "Failed to decode DexScreener response",
			zap.String("url", endpoint),
			zap.Error(err))
		return nil, fmt.Errorf("%w: decode %s: %v", ErrUpstream, name, err)
	}

	metrics.RecordUpstreamRequest(name, "ok", elapsed)
	r.log.DebugContext(ctx, "DexScreener response decoded",
		zap.String("url", endpoint),
		zap.Int("pair_count", len(resp.Pairs)))
	return &resp, nil
}

func (r *dexScreenerRepository) sendRequest(ctx context.Context, endpoint string) ([]byte, error) {
	fields := []zap.Field{
		zap.String("url", endpoint),
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		fields = append(fields, zap.Error(err))
		r.log.ErrorContext(ctx, "Failed to create new http request", fields...)
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	req.Header.Set("Accept", "application/json")
	if r.userAgent != "" {
		req.Header.Set("User-Agent", r.userAgent)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		fields = append(fields, zap.Error(err))
		r.log.ErrorContext(ctx, "Failed to send request to DexScreener API", fields...)
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		fields = append(fields, zap.Error(err))
		r.log.ErrorContext(ctx, "Failed to read response body from DexScreener API", fields...)
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		fields = append(fields, zap.Int("status_code", resp.StatusCode), zap.ByteString("body", truncate(body, 512)))
		r.log.ErrorContext(ctx, "Received non-OK response from DexScreener API", fields...)
		return nil, fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}

	return body, nil
}

func truncate(b []byte, n int) []byte {
	if len(b) <= n {
		return b
	}
	return b[:n]
}
