// Copyright (c) 2023 BVK Chaitanya

package coinbase

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/bvk/cryptowatch/exchange"
	"github.com/shopspring/decimal"
)

type limitLimitGTC struct {
	BaseSize   decimal.Decimal `json:"base_size"`
	LimitPrice decimal.Decimal `json:"limit_price"`
}

type orderConfiguration struct {
	LimitGTC *limitLimitGTC `json:"limit_limit_gtc"`
	LimitGTD *limitLimitGTC `json:"limit_limit_gtd"`
}

type orderRecord struct {
	OrderID       string             `json:"order_id"`
	ClientOrderID string             `json:"client_order_id"`
	ProductID     string             `json:"product_id"`
	Side          string             `json:"side"`
	Status        string             `json:"status"`
	OrderType     string             `json:"order_type"`
	CreatedTime   time.Time          `json:"created_time"`
	FilledSize    decimal.Decimal    `json:"filled_size"`
	Config        orderConfiguration `json:"order_configuration"`
}

type listOrdersResponse struct {
	Orders  []*orderRecord `json:"orders"`
	HasNext bool           `json:"has_next"`
	Cursor  string         `json:"cursor"`
}

func (v *orderRecord) order() *exchange.Order {
	base, quote, _ := strings.Cut(v.ProductID, "-")
	order := &exchange.Order{
		ID:            v.OrderID,
		ClientOrderID: v.ClientOrderID,
		Symbol:        exchange.JoinSymbol(base, quote),
		Side:          strings.ToLower(v.Side),
		Type:          strings.ToLower(v.OrderType),
		Status:        strings.ToLower(v.Status),
		Filled:        v.FilledSize,
		Timestamp:     v.CreatedTime,
	}
	limit := v.Config.LimitGTC
	if limit == nil {
		limit = v.Config.LimitGTD
	}
	if limit != nil {
		order.Price = limit.LimitPrice
		order.Amount = limit.BaseSize
		order.Remaining = limit.BaseSize.Sub(v.FilledSize)
	}
	order.Info, _ = json.Marshal(v)
	return order
}
