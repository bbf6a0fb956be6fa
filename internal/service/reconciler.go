package service

import (
	"context"
	"errors"
	"strings"

	"golang-dex-token-analyzer/internal/analysis"
	"golang-dex-token-analyzer/internal/dto"
	"golang-dex-token-analyzer/internal/entity"
	"golang-dex-token-analyzer/internal/metrics"
	"golang-dex-token-analyzer/internal/repository"
	"golang-dex-token-analyzer/pkg/logger"
	"golang-dex-token-analyzer/pkg/utils"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

var (
	ErrMissingBaseTokenAddress = errors.New("pair has no base token address")
	ErrMissingPairAddress      = errors.New("pair has no pair address")
)

const (
	defaultTokenName   = "Unknown"
	defaultTokenSymbol = "UNK"
)

var (
	stopLossRatio       = decimal.RequireFromString("0.9")
	buyPositionSize     = decimal.RequireFromString("5.0")
	defaultPositionSize = decimal.RequireFromString("2.0")
)

// Reconciler turns one upstream pair into a stored token.
type Reconciler interface {
	// Reconcile scores the pair and upserts it by pair address. Pairs without a base token
	// address or a pair address are rejected before anything is written.
	Reconcile(ctx context.Context, pair dto.Pair) (*entity.Token, error)
}

type reconciler struct {
	tokenRepo repository.TokenRepository
	scorer    *analysis.Scorer
	log       *logger.Logger
}

func NewReconciler(tokenRepo repository.TokenRepository, scorer *analysis.Scorer, log *logger.Logger) Reconciler {
	return &reconciler{
		tokenRepo: tokenRepo,
		scorer:    scorer,
		log:       log,
	}
}

func (r *reconciler) Reconcile(ctx context.Context, pair dto.Pair) (*entity.Token, error) {
	token, err := BuildToken(pair, r.scorer)
	if err != nil {
		return nil, err
	}

	if err := r.tokenRepo.Upsert(ctx, token); err != nil {
		r.log.ErrorContext(ctx, "Failed to upsert token",
			logger.StringField("pair_address", token.PairAddress),
			logger.ErrorField(err))
		return nil, err
	}

	metrics.RecordRecommendation(string(token.Recommendation))
	r.log.DebugContext(ctx, "Token reconciled",
		logger.StringField("pair_address", token.PairAddress),
		logger.StringField("symbol", token.Symbol),
		logger.StringField("recommendation", string(token.Recommendation)))
	return token, nil
}

// BuildToken maps a pair onto a token and fills in the derived analysis fields.
// It performs no I/O.
func BuildToken(pair dto.Pair, scorer *analysis.Scorer) (*entity.Token, error) {
	baseAddress := strings.TrimSpace(pair.BaseToken.Address)
	if baseAddress == "" {
		return nil, ErrMissingBaseTokenAddress
	}
	pairAddress := strings.TrimSpace(pair.PairAddress)
	if pairAddress == "" {
		return nil, ErrMissingPairAddress
	}

	token := &entity.Token{
		PairAddress:    pairAddress,
		TokenAddress:   baseAddress,
		ChainID:        pair.ChainID,
		DexID:          pair.DexID,
		Name:           orDefault(pair.BaseToken.Name, defaultTokenName),
		Symbol:         orDefault(pair.BaseToken.Symbol, defaultTokenSymbol),
		PriceUSD:       analysis.CoerceDecimal(pair.PriceUSD, decimal.Zero),
		PriceNative:    analysis.CoerceOptionalDecimal(pair.PriceNative),
		MarketCap:      analysis.CoerceInt64(pair.MarketCap, 0),
		Volume24h:      analysis.CoerceInt64(pair.Volume.H24, 0),
		Liquidity:      analysis.CoerceInt64(pair.LiquidityUSD(), 0),
		PriceChange24h: analysis.CoerceDecimal(pair.PriceChange.H24, decimal.Zero),
		PriceChange1h:  analysis.CoerceOptionalDecimal(pair.PriceChange.H1),
		PriceChange7d:  analysis.CoerceOptionalDecimal(pair.PriceChange.H7d),
		Buys24h:        analysis.CoerceOptionalInt64(pair.Txns.H24.Buys),
		Sells24h:       analysis.CoerceOptionalInt64(pair.Txns.H24.Sells),
		PairCreatedAt:  utils.FromUnixMilli(analysis.CoerceInt64(pair.PairCreatedAt, 0)),
	}
	if analysis.CoerceFloat(pair.FDV, 0) != 0 {
		token.FDV = analysis.CoerceOptionalInt64(pair.FDV)
	}
	if len(pair.Raw) > 0 {
		token.RawPayload = datatypes.JSON(pair.Raw)
	}
	applyInfo(token, pair.Info)

	result := scorer.Score(analysis.Metrics{
		Volume24h:      analysis.CoerceFloat(pair.Volume.H24, 0),
		PriceChange1h:  analysis.CoerceFloat(pair.PriceChange.H1, 0),
		PriceChange6h:  analysis.CoerceFloat(pair.PriceChange.H6, 0),
		PriceChange24h: analysis.CoerceFloat(pair.PriceChange.H24, 0),
		Liquidity:      analysis.CoerceFloat(pair.LiquidityUSD(), 0),
		MarketCap:      analysis.CoerceFloat(pair.MarketCap, 0),
	})

	token.Recommendation = result.Recommendation
	token.AnalysisScore = decimal.NewFromInt(int64(result.Score))
	token.VolatilityIndex = decimal.NewFromFloat(result.Volatility).Round(2)
	token.StopLossLevel = utils.ToPointer(token.PriceUSD.Mul(stopLossRatio).Round(10))
	if result.Recommendation == entity.RecommendationBuy {
		token.SuggestedPositionSize = utils.ToPointer(buyPositionSize)
	} else {
		token.SuggestedPositionSize = utils.ToPointer(defaultPositionSize)
	}

	return token, nil
}

func applyInfo(token *entity.Token, info *dto.PairInfo) {
	if info == nil {
		return
	}
	token.ImageURL = info.ImageURL

	for _, w := range info.Websites {
		if w.URL != "" {
			token.Websites = append(token.Websites, w.URL)
		}
	}
	if len(info.Websites) > 0 {
		token.WebsiteURL = info.Websites[0].URL
	}

	token.TwitterHandle = firstHandle(info.Socials, "twitter")
	token.TelegramHandle = firstHandle(info.Socials, "telegram")
	token.DiscordHandle = firstHandle(info.Socials, "discord")
}

// firstHandle returns the handle of the first social whose platform equals platform exactly.
func firstHandle(socials []dto.Social, platform string) string {
	for _, s := range socials {
		if s.Platform == platform {
			return s.Handle
		}
	}
	return ""
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
