package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang-dex-token-analyzer/internal/config"
	"golang-dex-token-analyzer/internal/dto"
	"golang-dex-token-analyzer/internal/entity"
	"golang-dex-token-analyzer/internal/metrics"
	"golang-dex-token-analyzer/internal/repository"
	"golang-dex-token-analyzer/pkg/logger"
	"golang-dex-token-analyzer/pkg/telegram"
	"golang-dex-token-analyzer/pkg/utils"
)

var (
	// ErrNoPairs means the upstream response carried no pairs collection at all.
	ErrNoPairs = errors.New("response has no pairs")
	// ErrTokenNotFound means a search matched nothing usable.
	ErrTokenNotFound = errors.New("no matching token found")
	ErrEmptyQuery    = errors.New("query must not be empty")
)

const defaultMaxPairs = 50

// TokenUpdaterService fetches pairs and runs them through the Reconciler.
type TokenUpdaterService interface {
	// UpdateAll fetches the default chain once and reconciles at most batch.max_pairs pairs.
	// One failing pair never aborts the run; the report lists every outcome.
	UpdateAll(ctx context.Context) (*dto.BatchReport, error)
	// UpdateByTokenAddresses does the same for the pairs of the given token addresses.
	UpdateByTokenAddresses(ctx context.Context, addresses []string) (*dto.BatchReport, error)
	// FetchAndAnalyze searches by free text and reconciles only the first result.
	// Repeated searches may be answered from the search cache.
	FetchAndAnalyze(ctx context.Context, query string) (*entity.Token, error)
	// RefreshToken re-fetches a stored token by its symbol, then by its name, always from upstream.
	RefreshToken(ctx context.Context, id uint) (*entity.Token, error)
}

type tokenUpdaterService struct {
	cfg        *config.Config
	dexRepo    repository.DexScreenerRepository
	tokenRepo  repository.TokenRepository
	reconciler Reconciler
	notifier   telegram.Notifier
	log        *logger.Logger
}

// NewTokenUpdaterService wires the orchestrator. notifier may be nil.
func NewTokenUpdaterService(
	cfg *config.Config,
	dexRepo repository.DexScreenerRepository,
	tokenRepo repository.TokenRepository,
	reconciler Reconciler,
	notifier telegram.Notifier,
	log *logger.Logger,
) TokenUpdaterService {
	return &tokenUpdaterService{
		cfg:        cfg,
		dexRepo:    dexRepo,
		tokenRepo:  tokenRepo,
		reconciler: reconciler,
		notifier:   notifier,
		log:        log,
	}
}

func (s *tokenUpdaterService) UpdateAll(ctx context.Context) (*dto.BatchReport, error) {
	chain := s.cfg.DexScreener.DefaultChain
	source := "search:" + chain
	started := time.Now()

	resp, err := s.dexRepo.SearchPairs(ctx, chain)
	if err != nil {
		metrics.RecordBatch(source, "error", 0, 0, 0, time.Since(started).Seconds())
		s.log.ErrorContext(ctx, "Failed to fetch pairs", logger.StringField("chain", chain), logger.ErrorField(err))
		return nil, fmt.Errorf("fetch pairs for %s: %w", chain, err)
	}
	if resp.Pairs == nil {
		metrics.RecordBatch(source, "error", 0, 0, 0, time.Since(started).Seconds())
		s.log.WarnContext(ctx, "Upstream response has no pairs", logger.StringField("chain", chain))
		return nil, fmt.Errorf("fetch pairs for %s: %w", chain, ErrNoPairs)
	}

	return s.runBatch(ctx, source, started, resp.Pairs)
}

func (s *tokenUpdaterService) UpdateByTokenAddresses(ctx context.Context, addresses []string) (*dto.BatchReport, error) {
	source := "tokens"
	started := time.Now()

	chunks := chunkStrings(addresses, repository.MaxTokenAddressesPerRequest)
	if len(chunks) == 0 {
		return nil, ErrEmptyQuery
	}

	var pairs []dto.Pair
	hasPairs := false
	for _, chunk := range chunks {
		resp, err := s.dexRepo.GetTokenPairs(ctx, chunk)
		if err != nil {
			metrics.RecordBatch(source, "error", 0, 0, 0, time.Since(started).Seconds())
			return nil, fmt.Errorf("fetch token pairs: %w", err)
		}
		if resp.Pairs != nil {
			hasPairs = true
			pairs = append(pairs, resp.Pairs...)
		}
	}
	if !hasPairs {
		metrics.RecordBatch(source, "error", 0, 0, 0, time.Since(started).Seconds())
		return nil, ErrNoPairs
	}

	return s.runBatch(ctx, source, started, pairs)
}

func (s *tokenUpdaterService) runBatch(ctx context.Context, source string, started time.Time, pairs []dto.Pair) (*dto.BatchReport, error) {
	report := &dto.BatchReport{
		Source:    source,
		Fetched:   len(pairs),
		Results:   make([]dto.ItemResult, 0, len(pairs)),
		StartedAt: started.UTC(),
	}

	limit := s.cfg.Batch.MaxPairs
	if limit <= 0 {
		limit = defaultMaxPairs
	}
	if len(pairs) > limit {
		pairs = pairs[:limit]
	}

	var batchErr error
	for i, pair := range pairs {
		if err := ctx.Err(); err != nil {
			batchErr = err
			break
		}
		report.Add(s.processPair(ctx, i, pair))
	}
	report.FinishedAt = time.Now().UTC()

	status := "ok"
	if batchErr != nil {
		status = "canceled"
	}
	metrics.RecordBatch(source, status, report.Updated, report.Skipped, report.Failed, time.Since(started).Seconds())
	s.log.InfoContext(ctx, "Batch update finished",
		logger.StringField("source", source),
		logger.IntField("fetched", report.Fetched),
		logger.IntField("updated", report.Updated),
		logger.IntField("skipped", report.Skipped),
		logger.IntField("failed", report.Failed))

	if batchErr != nil {
		return report, fmt.Errorf("batch interrupted after %d pairs: %w", report.Processed, batchErr)
	}

	s.notify(ctx, report)
	return report, nil
}

// processPair reconciles one pair and converts every outcome, panics included, into an ItemResult.
func (s *tokenUpdaterService) processPair(ctx context.Context, index int, pair dto.Pair) dto.ItemResult {
	result := dto.ItemResult{
		Index:        index,
		PairAddress:  pair.PairAddress,
		TokenAddress: pair.BaseToken.Address,
		Symbol:       pair.BaseToken.Symbol,
	}

	var token *entity.Token
	err := utils.Recover(func() error {
		var err error
		token, err = s.reconciler.Reconcile(ctx, pair)
		return err
	})

	switch {
	case err == nil:
		result.Status = dto.ItemUpdated
		result.Symbol = token.Symbol
		result.Recommendation = token.Recommendation
	case errors.Is(err, ErrMissingBaseTokenAddress), errors.Is(err, ErrMissingPairAddress):
		result.Status = dto.ItemSkipped
		result.Reason = err.Error()
		s.log.DebugContext(ctx, "Skipping pair", logger.IntField("index", index), logger.ErrorField(err))
	default:
		result.Status = dto.ItemFailed
		result.Reason = err.Error()
		s.log.WarnContext(ctx, "Failed to process pair",
			logger.IntField("index", index),
			logger.StringField("pair_address", pair.PairAddress),
			logger.ErrorField(err))
	}
	return result
}

func (s *tokenUpdaterService) FetchAndAnalyze(ctx context.Context, query string) (*entity.Token, error) {
	return s.analyzeFirst(ctx, query, s.dexRepo.SearchPairsCached)
}

type searchFunc func(ctx context.Context, query string) (*dto.PairsResponse, error)

func (s *tokenUpdaterService) analyzeFirst(ctx context.Context, query string, search searchFunc) (*entity.Token, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	resp, err := search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}
	if len(resp.Pairs) == 0 {
		return nil, ErrTokenNotFound
	}

	token, err := s.reconciler.Reconcile(ctx, resp.Pairs[0])
	if err != nil {
		s.log.WarnContext(ctx, "Failed to analyze first search result",
			logger.StringField("query", query),
			logger.ErrorField(err))
		return nil, err
	}
	return token, nil
}

func (s *tokenUpdaterService) RefreshToken(ctx context.Context, id uint) (*entity.Token, error) {
	stored, err := s.tokenRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for _, query := range []string{stored.Symbol, stored.Name} {
		if strings.TrimSpace(query) == "" {
			continue
		}
		token, err := s.analyzeFirst(ctx, query, s.dexRepo.SearchPairs)
		if err == nil {
			return token, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}
	if lastErr == nil {
		lastErr = ErrTokenNotFound
	}
	return nil, fmt.Errorf("refresh token %d: %w", id, lastErr)
}

func (s *tokenUpdaterService) notify(ctx context.Context, report *dto.BatchReport) {
	if s.notifier == nil {
		return
	}
	if err := telegram.SendAll(s.notifier, telegram.FormatBatchSummaryForTelegram(report)); err != nil {
		s.log.ErrorContext(ctx, "Failed to send batch summary", logger.ErrorField(err))
	}
}

func chunkStrings(items []string, size int) [][]string {
	var chunks [][]string
	var current []string
	for _, item := range items {
		if item = strings.TrimSpace(item); item == "" {
			continue
		}
		current = append(current, item)
		if len(current) == size {
			chunks = append(chunks, current)
			current = nil
		}
	}
	if len(current) > 0 {
		chunks = append(chunks, current)
	}
	return chunks
}
