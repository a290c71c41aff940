package poloniex

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/lukehollenback/bourse/exchange"
	"github.com/lukehollenback/bourse/structs/partial"
)

func (o *Client) PublicTradeHistory(ctx context.Context, pair exchange.Pair, window exchange.Window) ([]*exchange.Trade, error) {
	return o.history(ctx, o.publicHistory, pair, window, func(start int64, end int64) ([]exchange.TradeUpdate, error) {
		var raw []rawTrade

		if err := o.public(ctx, "returnTradeHistory", historyParams(pair, start, end), &raw); err != nil {
			return nil, err
		}

		return decodeTrades(raw, pair, false)
	})
}

func (o *Client) TradeHistory(ctx context.Context, pair exchange.Pair, window exchange.Window) ([]*exchange.Trade, error) {
	return o.history(ctx, o.privateHistory, pair, window, func(start int64, end int64) ([]exchange.TradeUpdate, error) {
		var raw []rawTrade

		if err := o.trading(ctx, "returnTradeHistory", historyParams(pair, start, end), &raw); err != nil {
			return nil, err
		}

		return decodeTrades(raw, pair, true)
	})
}

//
// history serves a windowed trade query from h, fetching only when the window is not already
// covered by a single span fetched earlier.
//
func (o *Client) history(
	ctx context.Context,
	h *exchange.History[exchange.Pair, *exchange.Trade],
	pair exchange.Pair,
	window exchange.Window,
	fetch func(start int64, end int64) ([]exchange.TradeUpdate, error),
) ([]*exchange.Trade, error) {
	if err := pair.Validate(); err != nil {
		return nil, err
	}

	start, end, err := window.Resolve(o.now())
	if err != nil {
		return nil, err
	}

	if !h.Covers(pair, start, end) {
		entries, err := fetch(start, end)
		if err != nil {
			return nil, err
		}

		//
		// A full page means the venue dropped the oldest trades of the window.
		//
		if len(entries) >= TradeHistoryCap {
			return nil, fmt.Errorf(
				"%w: %d trades returned for %s between %d and %d, narrow the window",
				exchange.ErrHistoryTruncated, len(entries), pair, start, end,
			)
		}

		h.Record(pair, start, end, o.pool.ApplyTrades(entries))
	}

	return exchange.FilterWindow(h.Items(pair), start, end), nil
}

func historyParams(pair exchange.Pair, start int64, end int64) url.Values {
	params := url.Values{}
	params.Set("currencyPair", encodePair(pair))
	params.Set("start", strconv.FormatInt(start, 10))
	params.Set("end", strconv.FormatInt(end, 10))

	return params
}

//
// decodeTrades converts a history response. Private trades also describe the order they filled.
//
func decodeTrades(raw []rawTrade, pair exchange.Pair, private bool) ([]exchange.TradeUpdate, error) {
	entries := make([]exchange.TradeUpdate, 0, len(raw))

	for _, r := range raw {
		if r.GlobalTradeID == "" {
			return nil, fmt.Errorf("trade without a global trade id on %s", pair)
		}

		fields, err := r.fields(pair)
		if err != nil {
			return nil, err
		}

		e := exchange.TradeUpdate{ID: r.GlobalTradeID.String(), Fields: fields}

		if private && r.OrderNumber != "" {
			e.OrderID = r.OrderNumber.String()
			e.Order = exchange.OrderFields{
				Side: fields.Side,
				Pair: fields.Pair,
			}

			if r.Category != "" {
				subtype, err := decodeCategory(r.Category)
				if err != nil {
					return nil, err
				}

				e.Order.Subtype = partial.Of(subtype)
			}
		}

		entries = append(entries, e)
	}

	return entries, nil
}
