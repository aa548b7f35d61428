package rest

import (
	"github.com/shopspring/decimal"
)

// Wire types for the unified spot gateway API. Numeric fields arrive as JSON
// strings; decimal handles both encodings.

type marketMessage struct {
	Symbol string `json:"symbol"`
	Base   string `json:"base"`
	Quote  string `json:"quote"`
	Active bool   `json:"active"`
}

type tickerMessage struct {
	Symbol string          `json:"symbol"`
	Last   decimal.Decimal `json:"last"`
	Bid    decimal.Decimal `json:"bid"`
	Ask    decimal.Decimal `json:"ask"`
}

type orderRequest struct {
	Symbol string          `json:"symbol"`
	Side   string          `json:"side"`
	Type   string          `json:"type"`
	Amount decimal.Decimal `json:"amount"`
	Price  decimal.Decimal `json:"price"`
}

type orderMessage struct {
	ID          string          `json:"id"`
	Symbol      string          `json:"symbol"`
	Side        string          `json:"side"`
	Price       decimal.Decimal `json:"price"`
	Amount      decimal.Decimal `json:"amount"`
	ExecutedQty decimal.Decimal `json:"executedQty"`
	Status      string          `json:"status"`
}

type depositAddressMessage struct {
	Asset   string `json:"asset"`
	Address string `json:"address"`
	Tag     string `json:"tag"`
}

type withdrawRequest struct {
	Asset   string          `json:"asset"`
	Amount  decimal.Decimal `json:"amount"`
	Address string          `json:"address"`
	Tag     string          `json:"tag,omitempty"`
}

type withdrawMessage struct {
	ID   string `json:"id"`
	TxID string `json:"txid"`
}

type balanceMessage struct {
	Asset string          `json:"asset"`
	Free  decimal.Decimal `json:"free"`
	Total decimal.Decimal `json:"total"`
}

type errorMessage struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
