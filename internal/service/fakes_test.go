package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"golang-dex-token-analyzer/internal/dto"
	"golang-dex-token-analyzer/internal/entity"
	"golang-dex-token-analyzer/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type mockDexRepo struct {
	mock.Mock
}

func (m *mockDexRepo) SearchPairs(ctx context.Context, query string) (*dto.PairsResponse, error) {
	args := m.Called(ctx, query)
	resp, _ := args.Get(0).(*dto.PairsResponse)
	return resp, args.Error(1)
}

func (m *mockDexRepo) SearchPairsCached(ctx context.Context, query string) (*dto.PairsResponse, error) {
	args := m.Called(ctx, query)
	resp, _ := args.Get(0).(*dto.PairsResponse)
	return resp, args.Error(1)
}

func (m *mockDexRepo) GetTokenPairs(ctx context.Context, addresses []string) (*dto.PairsResponse, error) {
	args := m.Called(ctx, addresses)
	resp, _ := args.Get(0).(*dto.PairsResponse)
	return resp, args.Error(1)
}

type mockUpdater struct {
	mock.Mock
}

func (m *mockUpdater) UpdateAll(ctx context.Context) (*dto.BatchReport, error) {
	args := m.Called(ctx)
	report, _ := args.Get(0).(*dto.BatchReport)
	return report, args.Error(1)
}

func (m *mockUpdater) UpdateByTokenAddresses(ctx context.Context, addresses []string) (*dto.BatchReport, error) {
	args := m.Called(ctx, addresses)
	report, _ := args.Get(0).(*dto.BatchReport)
	return report, args.Error(1)
}

func (m *mockUpdater) FetchAndAnalyze(ctx context.Context, query string) (*entity.Token, error) {
	args := m.Called(ctx, query)
	token, _ := args.Get(0).(*entity.Token)
	return token, args.Error(1)
}

func (m *mockUpdater) RefreshToken(ctx context.Context, id uint) (*entity.Token, error) {
	args := m.Called(ctx, id)
	token, _ := args.Get(0).(*entity.Token)
	return token, args.Error(1)
}

// memTokenRepo keeps tokens in memory keyed by pair address, mirroring the upsert semantics of the SQL store.
type memTokenRepo struct {
	mu        sync.Mutex
	nextID    uint
	byPair    map[string]*entity.Token
	upserts   int
	failPairs map[string]error
	panicPair string
}

func newMemTokenRepo() *memTokenRepo {
	return &memTokenRepo{byPair: map[string]*entity.Token{}, failPairs: map[string]error{}}
}

func (r *memTokenRepo) Upsert(_ context.Context, token *entity.Token) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if token.PairAddress == r.panicPair && r.panicPair != "" {
		panic("boom")
	}
	if err := r.failPairs[token.PairAddress]; err != nil {
		return err
	}
	r.upserts++

	stored := *token
	if existing, ok := r.byPair[token.PairAddress]; ok {
		stored.ID = existing.ID
		stored.CreatedAt = existing.CreatedAt
	} else {
		r.nextID++
		stored.ID = r.nextID
	}
	r.byPair[token.PairAddress] = &stored
	token.ID = stored.ID
	return nil
}

func (r *memTokenRepo) all() []entity.Token {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]entity.Token, 0, len(r.byPair))
	for _, t := range r.byPair {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *memTokenRepo) FindByID(_ context.Context, id uint) (*entity.Token, error) {
	for _, t := range r.all() {
		if t.ID == id {
			return &t, nil
		}
	}
	return nil, repository.ErrTokenNotFound
}

func (r *memTokenRepo) FindByPairAddress(_ context.Context, pairAddress string) (*entity.Token, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.byPair[pairAddress]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, repository.ErrTokenNotFound
}

func (r *memTokenRepo) List(_ context.Context, filter repository.TokenFilter) ([]entity.Token, int64, error) {
	var out []entity.Token
	for _, t := range r.all() {
		if filter.Recommendation != "" && t.Recommendation != filter.Recommendation {
			continue
		}
		if filter.Symbol != "" && t.Symbol != filter.Symbol {
			continue
		}
		if filter.Search != "" {
			term := strings.ToLower(filter.Search)
			if !strings.Contains(strings.ToLower(t.Name), term) && !strings.Contains(strings.ToLower(t.Symbol), term) {
				continue
			}
		}
		out = append(out, t)
	}
	total := int64(len(out))
	sort.SliceStable(out, func(i, j int) bool { return out[i].AnalysisScore.GreaterThan(out[j].AnalysisScore) })
	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			out = nil
		} else {
			out = out[filter.Offset:]
		}
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, total, nil
}

func (r *memTokenRepo) FindByAddress(_ context.Context, address string) ([]entity.Token, error) {
	var out []entity.Token
	for _, t := range r.all() {
		if strings.EqualFold(t.TokenAddress, address) || strings.EqualFold(t.PairAddress, address) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *memTokenRepo) FindByName(_ context.Context, term string) ([]entity.Token, error) {
	var out []entity.Token
	for _, t := range r.all() {
		if strings.Contains(strings.ToLower(t.Name), strings.ToLower(term)) || strings.EqualFold(t.Symbol, term) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *memTokenRepo) CountByRecommendation(_ context.Context) (map[entity.Recommendation]int64, error) {
	counts := map[entity.Recommendation]int64{}
	for _, t := range r.all() {
		counts[t.Recommendation]++
	}
	return counts, nil
}

func (r *memTokenRepo) DeleteAll(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := int64(len(r.byPair))
	r.byPair = map[string]*entity.Token{}
	return n, nil
}

func (r *memTokenRepo) DeletePriceOutliers(_ context.Context, max decimal.Decimal) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for k, t := range r.byPair {
		if t.PriceUSD.GreaterThan(max) || t.PriceUSD.IsNegative() {
			delete(r.byPair, k)
			n++
		}
	}
	return n, nil
}

func (r *memTokenRepo) NormalizeNonFinite(_ context.Context) (map[string]int64, error) {
	return map[string]int64{"price_usd": 0}, nil
}

type recordingNotifier struct {
	messages []string
	err      error
}

func (n *recordingNotifier) SendMessage(text string) error {
	n.messages = append(n.messages, text)
	return n.err
}

// makePair builds a pair whose metrics land in the given score bands.
func makePair(i int, baseAddress string) dto.Pair {
	return dto.Pair{
		ChainID:     "bsc",
		DexID:       "pancakeswap",
		PairAddress: fmt.Sprintf("0xpair%02d", i),
		BaseToken:   dto.TokenRef{Address: baseAddress, Name: fmt.Sprintf("Token %d", i), Symbol: fmt.Sprintf("T%d", i)},
		PriceUSD:    dto.Scalar(`"1.5"`),
		Volume:      dto.PairVolume{H24: dto.Scalar(`2000000`)},
		PriceChange: dto.PriceChange{H1: dto.Scalar(`1`), H6: dto.Scalar(`2`), H24: dto.Scalar(`5`)},
		Liquidity:   &dto.Liquidity{USD: dto.Scalar(`600000`)},
		MarketCap:   dto.Scalar(`10000000`),
	}
}
