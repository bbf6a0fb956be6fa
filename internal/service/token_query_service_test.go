package service

import (
	"context"
	"fmt"
	"testing"

	"golang-dex-token-analyzer/internal/analysis"
	"golang-dex-token-analyzer/internal/dto"
	"golang-dex-token-analyzer/internal/entity"
	"golang-dex-token-analyzer/internal/repository"
	"golang-dex-token-analyzer/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func seededRepo(t *testing.T, pairs ...dto.Pair) *memTokenRepo {
	t.Helper()
	repo := newMemTokenRepo()
	scorer := analysis.NewScorer(analysis.DefaultThresholds())
	for _, p := range pairs {
		token, err := BuildToken(p, scorer)
		require.NoError(t, err)
		require.NoError(t, repo.Upsert(context.Background(), token))
	}
	return repo
}

func avoidPair(i int) dto.Pair {
	p := makePair(i, fmt.Sprintf("0xavoid%02d", i))
	p.Volume = dto.PairVolume{}
	p.Liquidity = nil
	p.MarketCap = nil
	p.PriceChange = dto.PriceChange{H24: dto.Scalar(`-50`)}
	return p
}

func TestParseOrdering(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    []repository.OrderBy
		wantErr bool
	}{
		{name: "default", raw: "", want: []repository.OrderBy{{Column: "analysis_score", Desc: true}}},
		{name: "ascending", raw: "volume_24h", want: []repository.OrderBy{{Column: "volume_24h"}}},
		{
			name: "multiple",
			raw:  "-market_cap, price_change_24h",
			want: []repository.OrderBy{{Column: "market_cap", Desc: true}, {Column: "price_change_24h"}},
		},
		{name: "unknown column", raw: "-name", wantErr: true},
		{name: "injection", raw: "analysis_score;drop table tokens", wantErr: true},
		{name: "only commas", raw: ",,", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseOrdering(tt.raw)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidArgument)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeLimit(t *testing.T) {
	limit, err := normalizeLimit(0)
	require.NoError(t, err)
	assert.Equal(t, DefaultListLimit, limit)

	limit, err = normalizeLimit(500)
	require.NoError(t, err)
	assert.Equal(t, MaxListLimit, limit)

	_, err = normalizeLimit(-1)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestListTokens(t *testing.T) {
	repo := seededRepo(t, makePair(1, "0xbase01"), makePair(2, "0xbase02"), avoidPair(3))
	svc := NewTokenQueryService(repo, new(mockUpdater), logger.NewNop())
	ctx := context.Background()

	resp, err := svc.ListTokens(ctx, dto.TokenListParams{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), resp.Total)
	assert.Equal(t, DefaultListLimit, resp.Limit)
	assert.Len(t, resp.Items, 3)

	resp, err = svc.ListTokens(ctx, dto.TokenListParams{Recommendation: "avoid"})
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, entity.RecommendationAvoid, resp.Items[0].Recommendation)

	resp, err = svc.ListTokens(ctx, dto.TokenListParams{Search: "token 2"})
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "T2", resp.Items[0].Symbol)

	resp, err = svc.ListTokens(ctx, dto.TokenListParams{Symbol: "nope"})
	require.NoError(t, err)
	assert.NotNil(t, resp.Items)
	assert.Empty(t, resp.Items)

	_, err = svc.ListTokens(ctx, dto.TokenListParams{Recommendation: "SELL"})
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = svc.ListTokens(ctx, dto.TokenListParams{Ordering: "symbol"})
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = svc.ListTokens(ctx, dto.TokenListParams{Offset: -1})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestRecommendationsAndDashboard(t *testing.T) {
	repo := seededRepo(t, makePair(1, "0xbase01"), makePair(2, "0xbase02"), avoidPair(3))
	svc := NewTokenQueryService(repo, new(mockUpdater), logger.NewNop())
	ctx := context.Background()

	buys, err := svc.Recommendations(ctx, 1)
	require.NoError(t, err)
	require.Len(t, buys, 1)
	assert.Equal(t, entity.RecommendationBuy, buys[0].Recommendation)

	dash, err := svc.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), dash.TotalTokens)
	assert.Equal(t, int64(2), dash.BuyCount)
	assert.Zero(t, dash.HoldCount)
	assert.Equal(t, int64(1), dash.AvoidCount)
	assert.Len(t, dash.TopBuys, 2)
}

func TestCheckToken(t *testing.T) {
	ctx := context.Background()

	t.Run("found in store by address", func(t *testing.T) {
		updater := new(mockUpdater)
		svc := NewTokenQueryService(seededRepo(t, makePair(1, "0xBase01")), updater, logger.NewNop())

		resp, err := svc.CheckToken(ctx, "0xbase01", SearchTypeAddress)
		require.NoError(t, err)
		assert.Equal(t, SourceStore, resp.Source)
		require.Len(t, resp.Tokens, 1)
		assert.Equal(t, "0xBase01", resp.Tokens[0].TokenAddress)
		updater.AssertNotCalled(t, "FetchAndAnalyze", mock.Anything, mock.Anything)
	})

	t.Run("found in store by symbol", func(t *testing.T) {
		svc := NewTokenQueryService(seededRepo(t, makePair(1, "0xbase01")), new(mockUpdater), logger.NewNop())

		resp, err := svc.CheckToken(ctx, "t1", "")
		require.NoError(t, err)
		assert.Equal(t, SourceStore, resp.Source)
	})

	t.Run("falls back to live search", func(t *testing.T) {
		updater := new(mockUpdater)
		updater.On("FetchAndAnalyze", mock.Anything, "PEPE").
			Return(&entity.Token{ID: 9, Symbol: "PEPE"}, nil).Once()
		svc := NewTokenQueryService(newMemTokenRepo(), updater, logger.NewNop())

		resp, err := svc.CheckToken(ctx, " PEPE ", SearchTypeName)
		require.NoError(t, err)
		assert.Equal(t, SourceAPI, resp.Source)
		require.Len(t, resp.Tokens, 1)
		assert.Equal(t, uint(9), resp.Tokens[0].ID)
		updater.AssertExpectations(t)
	})

	t.Run("live search finds nothing", func(t *testing.T) {
		updater := new(mockUpdater)
		updater.On("FetchAndAnalyze", mock.Anything, "ghost").Return(nil, ErrTokenNotFound).Once()
		svc := NewTokenQueryService(newMemTokenRepo(), updater, logger.NewNop())

		_, err := svc.CheckToken(ctx, "ghost", SearchTypeName)
		assert.ErrorIs(t, err, ErrTokenNotFound)
	})

	t.Run("invalid input", func(t *testing.T) {
		svc := NewTokenQueryService(newMemTokenRepo(), new(mockUpdater), logger.NewNop())

		_, err := svc.CheckToken(ctx, "", SearchTypeName)
		assert.ErrorIs(t, err, ErrEmptyQuery)
		_, err = svc.CheckToken(ctx, "x", "symbol")
		assert.ErrorIs(t, err, ErrInvalidArgument)
	})
}
