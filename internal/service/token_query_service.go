package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang-dex-token-analyzer/internal/dto"
	"golang-dex-token-analyzer/internal/entity"
	"golang-dex-token-analyzer/internal/repository"
	"golang-dex-token-analyzer/pkg/logger"
)

// ErrInvalidArgument wraps every rejected query parameter.
var ErrInvalidArgument = errors.New("invalid argument")

const (
	DefaultListLimit = 50
	MaxListLimit     = 200
	dashboardTopBuys = 10

	SearchTypeName    = "name"
	SearchTypeAddress = "address"

	SourceStore = "store"
	SourceAPI   = "api"
)

// orderableColumns are the columns GET /tokens may sort on.
var orderableColumns = map[string]bool{
	"analysis_score":   true,
	"volume_24h":       true,
	"market_cap":       true,
	"price_change_24h": true,
}

// TokenQueryService serves read access to stored tokens.
type TokenQueryService interface {
	ListTokens(ctx context.Context, params dto.TokenListParams) (*dto.TokenListResponse, error)
	GetToken(ctx context.Context, id uint) (*entity.Token, error)
	Recommendations(ctx context.Context, limit int) ([]entity.Token, error)
	Dashboard(ctx context.Context) (*dto.DashboardResponse, error)
	// CheckToken looks in the store first and falls back to a live search.
	CheckToken(ctx context.Context, search, searchType string) (*dto.TokenCheckResponse, error)
}

type tokenQueryService struct {
	tokenRepo repository.TokenRepository
	updater   TokenUpdaterService
	log       *logger.Logger
}

func NewTokenQueryService(tokenRepo repository.TokenRepository, updater TokenUpdaterService, log *logger.Logger) TokenQueryService {
	return &tokenQueryService{
		tokenRepo: tokenRepo,
		updater:   updater,
		log:       log,
	}
}

func (s *tokenQueryService) ListTokens(ctx context.Context, params dto.TokenListParams) (*dto.TokenListResponse, error) {
	filter := repository.TokenFilter{
		Symbol: strings.TrimSpace(params.Symbol),
		Search: strings.TrimSpace(params.Search),
		Offset: params.Offset,
	}

	if params.Recommendation != "" {
		rec := entity.Recommendation(strings.ToUpper(params.Recommendation))
		if !rec.Valid() {
			return nil, fmt.Errorf("%w: recommendation %q", ErrInvalidArgument, params.Recommendation)
		}
		filter.Recommendation = rec
	}

	order, err := ParseOrdering(params.Ordering)
	if err != nil {
		return nil, err
	}
	filter.OrderBy = order

	limit, err := normalizeLimit(params.Limit)
	if err != nil {
		return nil, err
	}
	filter.Limit = limit
	if filter.Offset < 0 {
		return nil, fmt.Errorf("%w: offset must not be negative", ErrInvalidArgument)
	}

	tokens, total, err := s.tokenRepo.List(ctx, filter)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to list tokens", logger.ErrorField(err))
		return nil, err
	}
	return &dto.TokenListResponse{
		Total:  total,
		Limit:  filter.Limit,
		Offset: filter.Offset,
		Items:  nonNil(tokens),
	}, nil
}

// ParseOrdering turns "-analysis_score,volume_24h" into ORDER BY terms.
// An empty string yields "-analysis_score".
func ParseOrdering(raw string) ([]repository.OrderBy, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return []repository.OrderBy{{Column: "analysis_score", Desc: true}}, nil
	}

	var order []repository.OrderBy
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		desc := strings.HasPrefix(part, "-")
		column := strings.TrimPrefix(part, "-")
		if !orderableColumns[column] {
			return nil, fmt.Errorf("%w: ordering %q", ErrInvalidArgument, part)
		}
		order = append(order, repository.OrderBy{Column: column, Desc: desc})
	}
	if len(order) == 0 {
		return nil, fmt.Errorf("%w: ordering %q", ErrInvalidArgument, raw)
	}
	return order, nil
}

func normalizeLimit(limit int) (int, error) {
	switch {
	case limit == 0:
		return DefaultListLimit, nil
	case limit < 0:
		return 0, fmt.Errorf("%w: limit must be positive", ErrInvalidArgument)
	case limit > MaxListLimit:
		return MaxListLimit, nil
	}
	return limit, nil
}

func (s *tokenQueryService) GetToken(ctx context.Context, id uint) (*entity.Token, error) {
	return s.tokenRepo.FindByID(ctx, id)
}

func (s *tokenQueryService) Recommendations(ctx context.Context, limit int) ([]entity.Token, error) {
	limit, err := normalizeLimit(limit)
	if err != nil {
		return nil, err
	}
	tokens, _, err := s.tokenRepo.List(ctx, repository.TokenFilter{
		Recommendation: entity.RecommendationBuy,
		OrderBy:        []repository.OrderBy{{Column: "analysis_score", Desc: true}},
		Limit:          limit,
	})
	if err != nil {
		return nil, err
	}
	return nonNil(tokens), nil
}

func (s *tokenQueryService) Dashboard(ctx context.Context) (*dto.DashboardResponse, error) {
	counts, err := s.tokenRepo.CountByRecommendation(ctx)
	if err != nil {
		return nil, err
	}
	top, _, err := s.tokenRepo.List(ctx, repository.TokenFilter{
		Recommendation: entity.RecommendationBuy,
		Limit:          dashboardTopBuys,
	})
	if err != nil {
		return nil, err
	}

	resp := &dto.DashboardResponse{
		BuyCount:   counts[entity.RecommendationBuy],
		HoldCount:  counts[entity.RecommendationHold],
		AvoidCount: counts[entity.RecommendationAvoid],
		TopBuys:    nonNil(top),
	}
	for _, c := range counts {
		resp.TotalTokens += c
	}
	return resp, nil
}

func (s *tokenQueryService) CheckToken(ctx context.Context, search, searchType string) (*dto.TokenCheckResponse, error) {
	search = strings.TrimSpace(search)
	if search == "" {
		return nil, ErrEmptyQuery
	}
	if searchType == "" {
		searchType = SearchTypeName
	}

	var (
		found []entity.Token
		err   error
	)
	switch searchType {
	case SearchTypeAddress:
		found, err = s.tokenRepo.FindByAddress(ctx, search)
	case SearchTypeName:
		found, err = s.tokenRepo.FindByName(ctx, search)
	default:
		return nil, fmt.Errorf("%w: type %q", ErrInvalidArgument, searchType)
	}
	if err != nil {
		return nil, err
	}
	if len(found) > 0 {
		return &dto.TokenCheckResponse{Source: SourceStore, Tokens: found[:1]}, nil
	}

	token, err := s.updater.FetchAndAnalyze(ctx, search)
	if err != nil {
		return nil, err
	}
	return &dto.TokenCheckResponse{Source: SourceAPI, Tokens: []entity.Token{*token}}, nil
}

func nonNil(tokens []entity.Token) []entity.Token {
	if tokens == nil {
		return []entity.Token{}
	}
	return tokens
}
