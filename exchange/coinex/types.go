// Copyright (c) 2025 BVK Chaitanya

package coinex

import (
	"strconv"
	"strings"

	"github.com/bvk/cryptowatch/exchange"
	"github.com/shopspring/decimal"
)

type genericResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

type depositRecord struct {
	DepositID    int64           `json:"deposit_id"`
	CreatedAt    int64           `json:"created_at"`
	TxID         string          `json:"tx_id"`
	Currency     string          `json:"ccy"`
	Chain        string          `json:"chain"`
	Amount       decimal.Decimal `json:"amount"`
	ActualAmount decimal.Decimal `json:"actual_amount"`
	ToAddress    string          `json:"to_address"`
	Status       string          `json:"status"`
}

func (v *depositRecord) transaction() *exchange.Transaction {
	return &exchange.Transaction{
		ID:        strconv.FormatInt(v.DepositID, 10),
		TxID:      v.TxID,
		Type:      "deposit",
		Currency:  strings.ToUpper(v.Currency),
		Amount:    v.Amount,
		Fee:       v.Amount.Sub(v.ActualAmount),
		Network:   v.Chain,
		Address:   v.ToAddress,
		Status:    v.Status,
		Timestamp: exchange.FromMillis(v.CreatedAt),
		Info:      rawJSON(v),
	}
}

type withdrawRecord struct {
	WithdrawID int64           `json:"withdraw_id"`
	CreatedAt  int64           `json:"created_at"`
	TxID       string          `json:"tx_id"`
	Currency   string          `json:"ccy"`
	Chain      string          `json:"chain"`
	Amount     decimal.Decimal `json:"amount"`
	TxFee      decimal.Decimal `json:"tx_fee"`
	ToAddress  string          `json:"to_address"`
	Status     string          `json:"status"`
}

func (v *withdrawRecord) transaction() *exchange.Transaction {
	return &exchange.Transaction{
		ID:        strconv.FormatInt(v.WithdrawID, 10),
		TxID:      v.TxID,
		Type:      "withdrawal",
		Currency:  strings.ToUpper(v.Currency),
		Amount:    v.Amount,
		Fee:       v.TxFee,
		Network:   v.Chain,
		Address:   v.ToAddress,
		Status:    v.Status,
		Timestamp: exchange.FromMillis(v.CreatedAt),
		Info:      rawJSON(v),
	}
}

type positionRecord struct {
	PositionID    int64           `json:"position_id"`
	Market        string          `json:"market"`
	Side          string          `json:"side"`
	OpenInterest  decimal.Decimal `json:"open_interest"`
	AvgEntryPrice decimal.Decimal `json:"avg_entry_price"`
	MarkPrice     decimal.Decimal `json:"mark_price"`
	UnrealizedPnl decimal.Decimal `json:"unrealized_pnl"`
	Leverage      decimal.Decimal `json:"leverage"`
	UpdatedAt     int64           `json:"updated_at"`
}

func (v *positionRecord) position() *exchange.Position {
	return &exchange.Position{
		Symbol:        v.Market,
		Side:          strings.ToLower(v.Side),
		Contracts:     v.OpenInterest,
		EntryPrice:    v.AvgEntryPrice,
		MarkPrice:     v.MarkPrice,
		UnrealizedPnl: v.UnrealizedPnl,
		Leverage:      v.Leverage,
		Timestamp:     exchange.FromMillis(v.UpdatedAt),
		Info:          rawJSON(v),
	}
}

type orderRecord struct {
	OrderID        int64           `json:"order_id"`
	ClientID       string          `json:"client_id"`
	Market         string          `json:"market"`
	Side           string          `json:"side"`
	Type           string          `json:"type"`
	Amount         decimal.Decimal `json:"amount"`
	Price          decimal.Decimal `json:"price"`
	UnfilledAmount decimal.Decimal `json:"unfilled_amount"`
	FilledAmount   decimal.Decimal `json:"filled_amount"`
	CreatedAt      int64           `json:"created_at"`
}

func (v *orderRecord) order() *exchange.Order {
	return &exchange.Order{
		ID:            strconv.FormatInt(v.OrderID, 10),
		ClientOrderID: v.ClientID,
		Symbol:        v.Market,
		Side:          strings.ToLower(v.Side),
		Type:          strings.ToLower(v.Type),
		Status:        "open",
		Price:         v.Price,
		Amount:        v.Amount,
		Filled:        v.FilledAmount,
		Remaining:     v.UnfilledAmount,
		Timestamp:     exchange.FromMillis(v.CreatedAt),
		Info:          rawJSON(v),
	}
}
