package dto

import (
	"time"

	"golang-dex-token-analyzer/internal/entity"
)

// ErrorResponse represents a generic error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ItemStatus is the outcome of reconciling one pair in a batch.
type ItemStatus string

const (
	ItemUpdated ItemStatus = "updated"
	ItemSkipped ItemStatus = "skipped"
	ItemFailed  ItemStatus = "failed"
)

// ItemResult records what happened to one pair.
type ItemResult struct {
	Index          int                   `json:"index"`
	PairAddress    string                `json:"pair_address,omitempty"`
	TokenAddress   string                `json:"token_address,omitempty"`
	Symbol         string                `json:"symbol,omitempty"`
	Status         ItemStatus            `json:"status"`
	Reason         string                `json:"reason,omitempty"`
	Recommendation entity.Recommendation `json:"recommendation,omitempty"`
}

// BatchReport summarises one batch run.
type BatchReport struct {
	Source     string       `json:"source"`
	Fetched    int          `json:"fetched"`
	Processed  int          `json:"processed"`
	Updated    int          `json:"updated"`
	Skipped    int          `json:"skipped"`
	Failed     int          `json:"failed"`
	Results    []ItemResult `json:"results"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
}

// Add appends r and bumps the matching counter.
func (b *BatchReport) Add(r ItemResult) {
	b.Processed++
	switch r.Status {
	case ItemUpdated:
		b.Updated++
	case ItemSkipped:
		b.Skipped++
	case ItemFailed:
		b.Failed++
	}
	b.Results = append(b.Results, r)
}

// BuyPicks returns the results labelled BUY.
func (b *BatchReport) BuyPicks() []ItemResult {
	var picks []ItemResult
	for _, r := range b.Results {
		if r.Status == ItemUpdated && r.Recommendation == entity.RecommendationBuy {
			picks = append(picks, r)
		}
	}
	return picks
}

// TaskKind selects what an UpdateTask does.
type TaskKind string

const (
	TaskUpdateAll TaskKind = "update_all"
	TaskSearch    TaskKind = "search"
	TaskTokens    TaskKind = "tokens"
)

// UpdateTask is the payload published on the token update stream.
type UpdateTask struct {
	Kind      TaskKind `json:"kind"`
	Query     string   `json:"query,omitempty"`
	Addresses []string `json:"addresses,omitempty"`
}

// TokenListParams are the filters accepted by GET /tokens.
type TokenListParams struct {
	Recommendation string `query:"recommendation"`
	Symbol         string `query:"symbol"`
	Search         string `query:"search"`
	Ordering       string `query:"ordering"`
	Limit          int    `query:"limit"`
	Offset         int    `query:"offset"`
}

// TokenListResponse is a page of tokens.
type TokenListResponse struct {
	Total  int64          `json:"total"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
	Items  []entity.Token `json:"items"`
}

// DashboardResponse holds the per-label counts and the best BUY picks.
type DashboardResponse struct {
	TotalTokens int64          `json:"total_tokens"`
	BuyCount    int64          `json:"buy_count"`
	HoldCount   int64          `json:"hold_count"`
	AvoidCount  int64          `json:"avoid_count"`
	TopBuys     []entity.Token `json:"top_buys"`
}

// UpdateResponse is returned by the update endpoints.
type UpdateResponse struct {
	Success      bool         `json:"success"`
	UpdatedCount int          `json:"updated_count"`
	Queued       bool         `json:"queued,omitempty"`
	MessageID    string       `json:"message_id,omitempty"`
	Report       *BatchReport `json:"report,omitempty"`
}

// TokenCheckResponse tells where the matches came from: "store" or "api".
type TokenCheckResponse struct {
	Source string         `json:"source"`
	Tokens []entity.Token `json:"tokens"`
}
