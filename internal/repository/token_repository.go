package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang-dex-token-analyzer/internal/entity"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrTokenNotFound is returned when no stored token matches.
var ErrTokenNotFound = errors.New("token not found")

// OrderBy is one ORDER BY term. Column must be a real tokens column.
type OrderBy struct {
	Column string
	Desc   bool
}

// DefaultOrder is the listing order used when none is given.
var DefaultOrder = []OrderBy{
	{Column: "analysis_score", Desc: true},
	{Column: "volume_24h", Desc: true},
}

// TokenFilter narrows List. Empty fields are ignored.
type TokenFilter struct {
	Recommendation entity.Recommendation
	Symbol         string
	Search         string
	OrderBy        []OrderBy
	Limit          int
	Offset         int
}

// TokenRepository is the store of analysed tokens.
type TokenRepository interface {
	// Upsert inserts the token or overwrites every mutable column of the row with the same pair address.
	Upsert(ctx context.Context, token *entity.Token) error
	FindByID(ctx context.Context, id uint) (*entity.Token, error)
	FindByPairAddress(ctx context.Context, pairAddress string) (*entity.Token, error)
	List(ctx context.Context, filter TokenFilter) ([]entity.Token, int64, error)
	// FindByAddress matches token or pair address, case-insensitively.
	FindByAddress(ctx context.Context, address string) ([]entity.Token, error)
	// FindByName matches name containing the term or symbol equal to it, case-insensitively.
	FindByName(ctx context.Context, term string) ([]entity.Token, error)
	CountByRecommendation(ctx context.Context) (map[entity.Recommendation]int64, error)
	DeleteAll(ctx context.Context) (int64, error)
	// DeletePriceOutliers removes rows whose price_usd is negative or above max.
	DeletePriceOutliers(ctx context.Context, max decimal.Decimal) (int64, error)
	// NormalizeNonFinite rewrites NaN and infinite numerics: required columns to 0, optional ones to NULL.
	NormalizeNonFinite(ctx context.Context) (map[string]int64, error)
}

type tokenRepository struct {
	db *gorm.DB
}

func NewTokenRepository(db *gorm.DB) TokenRepository {
	return &tokenRepository{db: db}
}

func (r *tokenRepository) Upsert(ctx context.Context, token *entity.Token) error {
	err := r.db.WithContext(ctx).
		Clauses(
			clause.OnConflict{
				Columns:   []clause.Column{{Name: "pair_address"}},
				DoUpdates: clause.AssignmentColumns(entity.MutableColumns),
			},
			clause.Returning{},
		).
		Create(token).Error
	if err != nil {
		return fmt.Errorf("upsert token %s: %w", token.PairAddress, err)
	}
	return nil
}

func (r *tokenRepository) FindByID(ctx context.Context, id uint) (*entity.Token, error) {
	var token entity.Token
	if err := r.db.WithContext(ctx).First(&token, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTokenNotFound
		}
		return nil, err
	}
	return &token, nil
}

func (r *tokenRepository) FindByPairAddress(ctx context.Context, pairAddress string) (*entity.Token, error) {
	var token entity.Token
	if err := r.db.WithContext(ctx).Where("pair_address = ?", pairAddress).First(&token).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTokenNotFound
		}
		return nil, err
	}
	return &token, nil
}

func (r *tokenRepository) List(ctx context.Context, filter TokenFilter) ([]entity.Token, int64, error) {
	query := r.db.WithContext(ctx).Model(&entity.Token{})
	if filter.Recommendation != "" {
		query = query.Where("recommendation = ?", filter.Recommendation)
	}
	if filter.Symbol != "" {
		query = query.Where("symbol = ?", filter.Symbol)
	}
	if filter.Search != "" {
		like := "%" + escapeLike(filter.Search) + "%"
		query = query.Where("name ILIKE ? OR symbol ILIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order := filter.OrderBy
	if len(order) == 0 {
		order = DefaultOrder
	}
	for _, o := range order {
		query = query.Order(clause.OrderByColumn{Column: clause.Column{Name: o.Column}, Desc: o.Desc})
	}
	query = query.Order("id")
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var tokens []entity.Token
	if err := query.Find(&tokens).Error; err != nil {
		return nil, 0, err
	}
	return tokens, total, nil
}

func (r *tokenRepository) FindByAddress(ctx context.Context, address string) ([]entity.Token, error) {
	var tokens []entity.Token
	err := r.db.WithContext(ctx).
		Where("LOWER(token_address) = LOWER(?) OR LOWER(pair_address) = LOWER(?)", address, address).
		Order("analysis_score DESC").
		Find(&tokens).Error
	return tokens, err
}

func (r *tokenRepository) FindByName(ctx context.Context, term string) ([]entity.Token, error) {
	var tokens []entity.Token
	err := r.db.WithContext(ctx).
		Where("name ILIKE ? OR LOWER(symbol) = LOWER(?)", "%"+escapeLike(term)+"%", term).
		Order("analysis_score DESC").
		Order("volume_24h DESC").
		Find(&tokens).Error
	return tokens, err
}

func (r *tokenRepository) CountByRecommendation(ctx context.Context) (map[entity.Recommendation]int64, error) {
	var rows []struct {
		Recommendation entity.Recommendation
		Count          int64
	}
	err := r.db.WithContext(ctx).
		Model(&entity.Token{}).
		Select("recommendation, COUNT(*) AS count").
		Group("recommendation").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := map[entity.Recommendation]int64{
		entity.RecommendationBuy:   0,
		entity.RecommendationHold:  0,
		entity.RecommendationAvoid: 0,
	}
	for _, row := range rows {
		counts[row.Recommendation] = row.Count
	}
	return counts, nil
}

func (r *tokenRepository) DeleteAll(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&entity.Token{})
	return res.RowsAffected, res.Error
}

func (r *tokenRepository) DeletePriceOutliers(ctx context.Context, max decimal.Decimal) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("price_usd > ? OR price_usd < 0", max).
		Delete(&entity.Token{})
	return res.RowsAffected, res.Error
}

var (
	requiredNumericColumns = []string{"price_usd", "price_change_24h", "analysis_score", "volatility_index"}
	optionalNumericColumns = []string{"price_native", "price_change_1h", "price_change_7d", "stop_loss_level", "suggested_position_size"}
)

func (r *tokenRepository) NormalizeNonFinite(ctx context.Context) (map[string]int64, error) {
	fixed := make(map[string]int64, len(requiredNumericColumns)+len(optionalNumericColumns))
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, column := range requiredNumericColumns {
			res := tx.Exec(fmt.Sprintf(
				"UPDATE tokens SET %[1]s = 0 WHERE %[1]s IS NULL OR %[1]s::text IN ('NaN', 'Infinity', '-Infinity')", column))
			if res.Error != nil {
				return fmt.Errorf("normalize %s: %w", column, res.Error)
			}
			fixed[column] = res.RowsAffected
		}
		for _, column := range optionalNumericColumns {
			res := tx.Exec(fmt.Sprintf(
				"UPDATE tokens SET %[1]s = NULL WHERE %[1]s::text IN ('NaN', 'Infinity', '-Infinity')", column))
			if res.Error != nil {
				return fmt.Errorf("normalize %s: %w", column, res.Error)
			}
			fixed[column] = res.RowsAffected
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return fixed, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
