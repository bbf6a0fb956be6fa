package service

import (
	"context"
	"fmt"

	"golang-dex-token-analyzer/internal/repository"
	"golang-dex-token-analyzer/pkg/logger"

	"github.com/shopspring/decimal"
)

// MaxSanePriceUSD is the upper bound kept by CleanDecimals.
var MaxSanePriceUSD = decimal.NewFromInt(1_000_000_000)

// MaintenanceService holds the manual repair operations. The update pipeline never calls it.
type MaintenanceService interface {
	// Cleanup deletes every stored token.
	Cleanup(ctx context.Context) (int64, error)
	// CleanDecimals deletes tokens priced below zero or above MaxSanePriceUSD.
	CleanDecimals(ctx context.Context) (int64, error)
	// FixDecimals rewrites non-finite numerics; the map holds rows touched per column.
	FixDecimals(ctx context.Context) (map[string]int64, error)
}

type maintenanceService struct {
	tokenRepo repository.TokenRepository
	log       *logger.Logger
}

func NewMaintenanceService(tokenRepo repository.TokenRepository, log *logger.Logger) MaintenanceService {
	return &maintenanceService{tokenRepo: tokenRepo, log: log}
}

func (s *maintenanceService) Cleanup(ctx context.Context) (int64, error) {
	n, err := s.tokenRepo.DeleteAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("delete tokens: %w", err)
	}
	s.log.InfoContext(ctx, "Deleted all tokens", logger.Field("count", n))
	return n, nil
}

func (s *maintenanceService) CleanDecimals(ctx context.Context) (int64, error) {
	n, err := s.tokenRepo.DeletePriceOutliers(ctx, MaxSanePriceUSD)
	if err != nil {
		return 0, fmt.Errorf("delete price outliers: %w", err)
	}
	s.log.InfoContext(ctx, "Deleted tokens with out-of-range prices", logger.Field("count", n))
	return n, nil
}

func (s *maintenanceService) FixDecimals(ctx context.Context) (map[string]int64, error) {
	fixed, err := s.tokenRepo.NormalizeNonFinite(ctx)
	if err != nil {
		return nil, fmt.Errorf("normalize numerics: %w", err)
	}
	for column, n := range fixed {
		s.log.InfoContext(ctx, "Normalized column", logger.StringField("column", column), logger.Field("rows", n))
	}
	return fixed, nil
}
