package repository

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"golang-dex-token-analyzer/internal/analysis"
	"golang-dex-token-analyzer/internal/config"
	"golang-dex-token-analyzer/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const searchBody = `{
  "schemaVersion": "1.0.0",
  "pairs": [
    {
      "chainId": "bsc",
      "dexId": "pancakeswap",
      "pairAddress": "0xPAIR1",
      "baseToken": {"address": "0xTOKEN1", "name": "Cake", "symbol": "CAKE"},
      "priceNative": "0.0041",
      "priceUsd": "2.51",
      "txns": {"h24": {"buys": 1200, "sells": 900}},
      "volume": {"h24": 1523000.25},
      "priceChange": {"h1": 0.5, "h6": -1.2, "h24": 3.4},
      "liquidity": {"usd": 820000.5},
      "fdv": 900000000,
      "marketCap": "750000000",
      "pairCreatedAt": 1700000000000,
      "info": {
        "imageUrl": "https://img/cake.png",
        "websites": [{"url": "https://cake.example"}],
        "socials": [{"platform": "twitter", "handle": "cake"}]
      }
    },
    {
      "pairAddress": "0xPAIR2",
      "baseToken": {},
      "priceUsd": null,
      "liquidity": null
    }
  ]
}`

func newTestClient(t *testing.T, srv *httptest.Server, cacheTTL time.Duration) DexScreenerRepository {
	t.Helper()
	cfg := &config.Config{
		DexScreener: config.DexScreener{
			BaseURL:        srv.URL + "/",
			Timeout:        2 * time.Second,
			SearchCacheTTL: cacheTTL,
			UserAgent:      "test-agent",
		},
	}
	return NewDexScreenerRepository(cfg, logger.NewNop())
}

func TestDexScreenerRepository_SearchPairs(t *testing.T) {
	var gotPath, gotQuery, gotAgent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query().Get("q")
		gotAgent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(searchBody))
	}))
	defer srv.Close()

	repo := newTestClient(t, srv, 0)
	resp, err := repo.SearchPairs(context.Background(), "BSC token")
	require.NoError(t, err)

	assert.Equal(t, "/search", gotPath)
	assert.Equal(t, "BSC token", gotQuery)
	assert.Equal(t, "test-agent", gotAgent)

	require.Len(t, resp.Pairs, 2)
	first := resp.Pairs[0]
	assert.Equal(t, "0xPAIR1", first.PairAddress)
	assert.Equal(t, "0xTOKEN1", first.BaseToken.Address)
	assert.Equal(t, 2.51, analysis.CoerceFloat(first.PriceUSD, 0))
	assert.Equal(t, 1523000.25, analysis.CoerceFloat(first.Volume.H24, 0))
	assert.Equal(t, 750000000.0, analysis.CoerceFloat(first.MarketCap, 0))
	assert.Equal(t, int64(1200), analysis.CoerceInt64(first.Txns.H24.Buys, 0))
	require.NotNil(t, first.Info)
	assert.Equal(t, "https://cake.example", first.Info.Websites[0].URL)
	assert.Contains(t, string(first.Raw), `"pairAddress": "0xPAIR1"`)

	second := resp.Pairs[1]
	assert.Empty(t, second.BaseToken.Address)
	assert.Nil(t, second.Liquidity)
	assert.True(t, analysis.IsMissing(second.PriceUSD))
}

func TestDexScreenerRepository_GetTokenPairs(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`{"pairs": []}`))
	}))
	defer srv.Close()

	repo := newTestClient(t, srv, 0)
	resp, err := repo.GetTokenPairs(context.Background(), []string{" 0xA ", "", "0xB"})
	require.NoError(t, err)
	assert.Equal(t, "/tokens/0xA,0xB", gotPath)
	assert.NotNil(t, resp.Pairs)
	assert.Empty(t, resp.Pairs)

	_, err = repo.GetTokenPairs(context.Background(), nil)
	assert.Error(t, err)

	many := make([]string, MaxTokenAddressesPerRequest+1)
	for i := range many {
		many[i] = "0x1"
	}
	_, err = repo.GetTokenPairs(context.Background(), many)
	assert.ErrorIs(t, err, ErrTooManyAddresses)
}

func TestDexScreenerRepository_MissingPairs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"schemaVersion": "1.0.0", "pairs": null}`))
	}))
	defer srv.Close()

	resp, err := newTestClient(t, srv, 0).SearchPairs(context.Background(), "nothing")
	require.NoError(t, err)
	assert.Nil(t, resp.Pairs)
}

func TestDexScreenerRepository_UpstreamErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "non-2xx status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusTooManyRequests)
			},
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"pairs": [`))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			resp, err := newTestClient(t, srv, 0).SearchPairs(context.Background(), "x")
			assert.Nil(t, resp)
			assert.ErrorIs(t, err, ErrUpstream)
		})
	}
}

func TestDexScreenerRepository_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := newTestClient(t, srv, 0).SearchPairs(ctx, "slow")
	assert.ErrorIs(t, err, ErrUpstream)
}

func TestDexScreenerRepository_SearchCache(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		_, _ = w.Write([]byte(searchBody))
	}))
	defer srv.Close()

	repo := newTestClient(t, srv, time.Minute)
	for i := 0; i < 3; i++ {
		resp, err := repo.SearchPairsCached(context.Background(), "CAKE")
		require.NoError(t, err)
		require.Len(t, resp.Pairs, 2)
	}
	_, err := repo.SearchPairsCached(context.Background(), "cake")
	require.NoError(t, err)

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestDexScreenerRepository_SearchPairsBypassesCache(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		_, _ = fmt.Fprintf(w, `{"pairs":[{"pairAddress":"0xP","baseToken":{"address":"0xT"},"priceUsd":"%d"}]}`, n)
	}))
	defer srv.Close()

	repo := newTestClient(t, srv, time.Minute)

	_, err := repo.SearchPairsCached(context.Background(), "BSC")
	require.NoError(t, err)

	first, err := repo.SearchPairs(context.Background(), "BSC")
	require.NoError(t, err)
	second, err := repo.SearchPairs(context.Background(), "BSC")
	require.NoError(t, err)

	assert.Equal(t, `"2"`, string(first.Pairs[0].PriceUSD))
	assert.Equal(t, `"3"`, string(second.Pairs[0].PriceUSD))
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))

	cached, err := repo.SearchPairsCached(context.Background(), "BSC")
	require.NoError(t, err)
	assert.Equal(t, `"1"`, string(cached.Pairs[0].PriceUSD))
}
