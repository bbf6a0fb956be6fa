package dto

import (
	"encoding/json"

	jsoniter "github.com/json-iterator/go"
)

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// Scalar keeps a JSON scalar undecoded. DexScreener sends numbers both as
// JSON numbers and as strings, so conversion is left to the analysis package.
type Scalar json.RawMessage

// UnmarshalJSON stores a copy of the raw bytes.
func (s *Scalar) UnmarshalJSON(data []byte) error {
	*s = append((*s)[:0], data...)
	return nil
}

// MarshalJSON writes the raw bytes back, or null when empty.
func (s Scalar) MarshalJSON() ([]byte, error) {
	if len(s) == 0 {
		return []byte("null"), nil
	}
	return s, nil
}

// RawJSON returns the undecoded value.
func (s Scalar) RawJSON() json.RawMessage {
	return json.RawMessage(s)
}

// PairsResponse is the body of /search and /tokens.
type PairsResponse struct {
	SchemaVersion string `json:"schemaVersion"`
	Pairs         []Pair `json:"pairs"`
}

// Pair is one trading pair as returned by DexScreener.
type Pair struct {
	ChainID       string      `json:"chainId"`
	DexID         string      `json:"dexId"`
	URL           string      `json:"url"`
	PairAddress   string      `json:"pairAddress"`
	BaseToken     TokenRef    `json:"baseToken"`
	QuoteToken    TokenRef    `json:"quoteToken"`
	PriceNative   Scalar      `json:"priceNative"`
	PriceUSD      Scalar      `json:"priceUsd"`
	Txns          PairTxns    `json:"txns"`
	Volume        PairVolume  `json:"volume"`
	PriceChange   PriceChange `json:"priceChange"`
	Liquidity     *Liquidity  `json:"liquidity"`
	FDV           Scalar      `json:"fdv"`
	MarketCap     Scalar      `json:"marketCap"`
	PairCreatedAt Scalar      `json:"pairCreatedAt"`
	Info          *PairInfo   `json:"info"`

	// Raw is the pair object exactly as received.
	Raw json.RawMessage `json:"-"`
}

// UnmarshalJSON decodes the pair and keeps the original bytes in Raw.
func (p *Pair) UnmarshalJSON(data []byte) error {
	type alias Pair
	var a alias
	if err := jsonAPI.Unmarshal(data, &a); err != nil {
		return err
	}
	*p = Pair(a)
	p.Raw = append(json.RawMessage(nil), data...)
	return nil
}

type TokenRef struct {
	Address string `json:"address"`
	Name    string `json:"name"`
	Symbol  string `json:"symbol"`
}

type PairTxns struct {
	M5  TxnSummary `json:"m5"`
	H1  TxnSummary `json:"h1"`
	H6  TxnSummary `json:"h6"`
	H24 TxnSummary `json:"h24"`
}

type TxnSummary struct {
	Buys  Scalar `json:"buys"`
	Sells Scalar `json:"sells"`
}

type PairVolume struct {
	M5  Scalar `json:"m5"`
	H1  Scalar `json:"h1"`
	H6  Scalar `json:"h6"`
	H24 Scalar `json:"h24"`
}

type PriceChange struct {
	M5  Scalar `json:"m5"`
	H1  Scalar `json:"h1"`
	H6  Scalar `json:"h6"`
	H24 Scalar `json:"h24"`
	H7d Scalar `json:"h7d"`
}

type Liquidity struct {
	USD   Scalar `json:"usd"`
	Base  Scalar `json:"base"`
	Quote Scalar `json:"quote"`
}

type PairInfo struct {
	ImageURL string    `json:"imageUrl"`
	Websites []Website `json:"websites"`
	Socials  []Social  `json:"socials"`
}

type Website struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

type Social struct {
	Platform string `json:"platform"`
	Handle   string `json:"handle"`
}

// LiquidityUSD returns the USD liquidity or nil when the block is absent.
func (p Pair) LiquidityUSD() Scalar {
	if p.Liquidity == nil {
		return nil
	}
	return p.Liquidity.USD
}
