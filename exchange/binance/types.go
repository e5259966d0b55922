// Copyright (c) 2025 BVK Chaitanya

package binance

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/bvk/cryptowatch/exchange"
	"github.com/shopspring/decimal"
)

// Deposit status codes from the wallet api.
var depositStatus = map[int]string{
	0: "pending",
	1: "ok",
	6: "credited",
	7: "failed",
	8: "pending",
}

// Withdrawal status codes from the wallet api.
var withdrawStatus = map[int]string{
	0: "email-sent",
	1: "canceled",
	2: "awaiting-approval",
	3: "rejected",
	4: "processing",
	5: "failed",
	6: "ok",
}

type depositRecord struct {
	ID         string          `json:"id"`
	Amount     decimal.Decimal `json:"amount"`
	Coin       string          `json:"coin"`
	Network    string          `json:"network"`
	Status     int             `json:"status"`
	Address    string          `json:"address"`
	TxID       string          `json:"txId"`
	InsertTime int64           `json:"insertTime"`
}

func (v *depositRecord) transaction() *exchange.Transaction {
	info, _ := json.Marshal(v)
	return &exchange.Transaction{
		ID:        v.ID,
		TxID:      v.TxID,
		Type:      "deposit",
		Currency:  v.Coin,
		Amount:    v.Amount,
		Network:   v.Network,
		Address:   v.Address,
		Status:    depositStatus[v.Status],
		Timestamp: exchange.FromMillis(v.InsertTime),
		Info:      info,
	}
}

// applyTimeLayout is the layout of withdrawal apply times, which are in UTC.
const applyTimeLayout = "2006-01-02 15:04:05"

type withdrawRecord struct {
	ID             string          `json:"id"`
	Amount         decimal.Decimal `json:"amount"`
	TransactionFee decimal.Decimal `json:"transactionFee"`
	Coin           string          `json:"coin"`
	Status         int             `json:"status"`
	Address        string          `json:"address"`
	TxID           string          `json:"txId"`
	ApplyTime      string          `json:"applyTime"`
	Network        string          `json:"network"`
}

func (v *withdrawRecord) transaction() *exchange.Transaction {
	info, _ := json.Marshal(v)
	at, _ := time.ParseInLocation(applyTimeLayout, v.ApplyTime, time.UTC)
	return &exchange.Transaction{
		ID:        v.ID,
		TxID:      v.TxID,
		Type:      "withdrawal",
		Currency:  v.Coin,
		Amount:    v.Amount,
		Fee:       v.TransactionFee,
		Network:   v.Network,
		Address:   v.Address,
		Status:    withdrawStatus[v.Status],
		Timestamp: at,
		Info:      info,
	}
}

type positionRecord struct {
	Symbol           string          `json:"symbol"`
	PositionAmt      decimal.Decimal `json:"positionAmt"`
	EntryPrice       decimal.Decimal `json:"entryPrice"`
	MarkPrice        decimal.Decimal `json:"markPrice"`
	UnRealizedProfit decimal.Decimal `json:"unRealizedProfit"`
	Leverage         decimal.Decimal `json:"leverage"`
	PositionSide     string          `json:"positionSide"`
	UpdateTime       int64           `json:"updateTime"`
}

func (v *positionRecord) position() *exchange.Position {
	info, _ := json.Marshal(v)
	side := strings.ToLower(v.PositionSide)
	if side == "both" || side == "" {
		side = "long"
		if v.PositionAmt.IsNegative() {
			side = "short"
		}
	}
	return &exchange.Position{
		Symbol:        v.Symbol,
		Side:          side,
		Contracts:     v.PositionAmt.Abs(),
		EntryPrice:    v.EntryPrice,
		MarkPrice:     v.MarkPrice,
		UnrealizedPnl: v.UnRealizedProfit,
		Leverage:      v.Leverage,
		Timestamp:     exchange.FromMillis(v.UpdateTime),
		Info:          info,
	}
}

type orderRecord struct {
	Symbol        string          `json:"symbol"`
	OrderID       int64           `json:"orderId"`
	ClientOrderID string          `json:"clientOrderId"`
	Price         decimal.Decimal `json:"price"`
	OrigQty       decimal.Decimal `json:"origQty"`
	ExecutedQty   decimal.Decimal `json:"executedQty"`
	Status        string          `json:"status"`
	Type          string          `json:"type"`
	Side          string          `json:"side"`
	Time          int64           `json:"time"`
}

func (v *orderRecord) order() *exchange.Order {
	info, _ := json.Marshal(v)
	return &exchange.Order{
		ID:            decimal.NewFromInt(v.OrderID).String(),
		ClientOrderID: v.ClientOrderID,
		Symbol:        v.Symbol,
		Side:          strings.ToLower(v.Side),
		Type:          strings.ToLower(v.Type),
		Status:        strings.ToLower(v.Status),
		Price:         v.Price,
		Amount:        v.OrigQty,
		Filled:        v.ExecutedQty,
		Remaining:     v.OrigQty.Sub(v.ExecutedQty),
		Timestamp:     exchange.FromMillis(v.Time),
		Info:          info,
	}
}

type serverTime struct {
	ServerTime int64 `json:"serverTime"`
}
