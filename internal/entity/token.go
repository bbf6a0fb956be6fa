package entity

import (
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Recommendation is the trading label derived from the analysis score.
type Recommendation string

const (
	RecommendationBuy   Recommendation = "BUY"
	RecommendationHold  Recommendation = "HOLD"
	RecommendationAvoid Recommendation = "AVOID"
)

// Valid reports whether r is one of the three known labels.
func (r Recommendation) Valid() bool {
	switch r {
	case RecommendationBuy, RecommendationHold, RecommendationAvoid:
		return true
	}
	return false
}

// Token is the latest analysed snapshot of one trading pair, keyed by PairAddress.
type Token struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	PairAddress  string `gorm:"uniqueIndex;size:100;not null" json:"pair_address"`
	TokenAddress string `gorm:"index;size:100;not null" json:"token_address"`
	ChainID      string `gorm:"size:50" json:"chain_id"`
	DexID        string `gorm:"size:50" json:"dex_id"`

	Name   string `gorm:"size:255;not null;default:Unknown" json:"name"`
	Symbol string `gorm:"index;size:50;not null;default:UNK" json:"symbol"`

	PriceUSD       decimal.Decimal  `gorm:"type:numeric(20,10);not null;default:0" json:"price_usd"`
	PriceNative    *decimal.Decimal `gorm:"type:numeric(20,10)" json:"price_native"`
	MarketCap      int64            `gorm:"not null;default:0" json:"market_cap"`
	FDV            *int64           `gorm:"column:fdv" json:"fdv"`
	Volume24h      int64            `gorm:"column:volume_24h;not null;default:0" json:"volume_24h"`
	Liquidity      int64            `gorm:"not null;default:0" json:"liquidity"`
	PriceChange24h decimal.Decimal  `gorm:"column:price_change_24h;type:numeric(10,4);not null;default:0" json:"price_change_24h"`
	PriceChange1h  *decimal.Decimal `gorm:"column:price_change_1h;type:numeric(10,4)" json:"price_change_1h"`
	PriceChange7d  *decimal.Decimal `gorm:"column:price_change_7d;type:numeric(10,4)" json:"price_change_7d"`
	Buys24h        *int64           `gorm:"column:buys_24h" json:"buys_24h"`
	Sells24h       *int64           `gorm:"column:sells_24h" json:"sells_24h"`

	ImageURL       string         `gorm:"size:500" json:"image_url"`
	WebsiteURL     string         `gorm:"size:500" json:"website_url"`
	Websites       pq.StringArray `gorm:"type:text[]" json:"websites"`
	TwitterHandle  string         `gorm:"size:255" json:"twitter_handle"`
	TelegramHandle string         `gorm:"size:255" json:"telegram_handle"`
	DiscordHandle  string         `gorm:"size:255" json:"discord_handle"`
	PairCreatedAt  *time.Time     `json:"pair_created_at"`

	Recommendation        Recommendation   `gorm:"index;size:10;not null;default:HOLD" json:"recommendation"`
	AnalysisScore         decimal.Decimal  `gorm:"index;type:numeric(5,2);not null;default:0" json:"analysis_score"`
	VolatilityIndex       decimal.Decimal  `gorm:"type:numeric(10,2);not null;default:0" json:"volatility_index"`
	StopLossLevel         *decimal.Decimal `gorm:"type:numeric(20,10)" json:"stop_loss_level"`
	SuggestedPositionSize *decimal.Decimal `gorm:"type:numeric(5,2)" json:"suggested_position_size"`

	RawPayload datatypes.JSON `gorm:"type:jsonb" json:"-"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Token) TableName() string {
	return "tokens"
}

// MutableColumns lists every column an upsert overwrites. created_at is excluded.
var MutableColumns = []string{
	"token_address", "chain_id", "dex_id", "name", "symbol",
	"price_usd", "price_native", "market_cap", "fdv", "volume_24h", "liquidity",
	"price_change_24h", "price_change_1h", "price_change_7d", "buys_24h", "sells_24h",
	"image_url", "website_url", "websites", "twitter_handle", "telegram_handle", "discord_handle",
	"pair_created_at", "recommendation", "analysis_score", "volatility_index",
	"stop_loss_level", "suggested_position_size", "raw_payload", "updated_at",
}
