package poloniex

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"net/url"

	"github.com/lukehollenback/bourse/exchange"
	"github.com/lukehollenback/bourse/structs/partial"
	"github.com/shopspring/decimal"
)

func (o *Client) Balance(ctx context.Context, currency string, query exchange.BalanceQuery) (decimal.Decimal, error) {
	if err := exchange.ValidateCurrency(currency); err != nil {
		return decimal.Decimal{}, err
	}

	balances, err := o.Balances(ctx, query)
	if err != nil {
		return decimal.Decimal{}, err
	}

	return balances[currency], nil
}

func (o *Client) Balances(ctx context.Context, query exchange.BalanceQuery) (map[string]decimal.Decimal, error) {
	balances, err := o.balances.Load(query, func() (map[string]decimal.Decimal, error) {
		return o.fetchBalances(ctx, query)
	})
	if err != nil {
		return nil, err
	}

	return maps.Clone(balances), nil
}

//
// fetchBalances picks the command that can answer query. The venue only reports funds on order for
// the exchange account, so totals and on-order amounts for the margin and lending accounts cannot
// be answered.
//
func (o *Client) fetchBalances(ctx context.Context, query exchange.BalanceQuery) (map[string]decimal.Decimal, error) {
	balances := make(map[string]decimal.Decimal)

	switch query.Availability {
	case exchange.AllFunds, exchange.OnOrder:
		params := url.Values{}

		switch query.Account {
		case exchange.AllAccounts:
			params.Set("account", "all")

		case exchange.ExchangeAccount:

		default:
			return nil, fmt.Errorf("%w: %s balance of the %s account", exchange.ErrNotSupported, query.Availability, query.Account)
		}

		var raw map[string]rawBalance

		if err := o.trading(ctx, "returnCompleteBalances", params, &raw); err != nil {
			return nil, err
		}

		for c, b := range raw {
			if query.Availability == exchange.OnOrder {
				balances[c] = b.OnOrders
			} else {
				balances[c] = b.Available.Add(b.OnOrders)
			}
		}

	case exchange.Available:
		params := url.Values{}

		if query.Account != exchange.AllAccounts {
			params.Set("account", query.Account.String())
		}

		var raw map[string]map[string]decimal.Decimal

		if err := o.trading(ctx, "returnAvailableAccountBalances", params, &raw); err != nil {
			return nil, err
		}

		for account, perCurrency := range raw {
			if query.Account != exchange.AllAccounts && account != query.Account.String() {
				continue
			}

			for c, amount := range perCurrency {
				balances[c] = balances[c].Add(amount)
			}
		}

	default:
		return nil, fmt.Errorf("%w: availability %d", exchange.ErrInvalidArgument, query.Availability)
	}

	for c, amount := range balances {
		if amount.IsZero() {
			delete(balances, c)
		}
	}

	return balances, nil
}

//
// OpenOrders returns pair's resting orders. With the live cache enabled the answer comes from a
// snapshot of every pair, and a pair missing from it is unknown to the venue.
//
func (o *Client) OpenOrders(ctx context.Context, pair exchange.Pair) ([]*exchange.Order, error) {
	if err := pair.Validate(); err != nil {
		return nil, err
	}

	if !o.live.Enabled() {
		var raw []rawOrder

		params := url.Values{}
		params.Set("currencyPair", encodePair(pair))

		if err := o.trading(ctx, "returnOpenOrders", params, &raw); err != nil {
			return nil, err
		}

		entries, err := decodeOrders(raw, pair)
		if err != nil {
			return nil, err
		}

		return o.pool.ApplyOrders(entries), nil
	}

	all, err := o.AllOpenOrders(ctx)
	if err != nil {
		return nil, err
	}

	orders, ok := all[pair]
	if !ok {
		return nil, fmt.Errorf("%w: %s", exchange.ErrUnknownPair, pair)
	}

	return orders, nil
}

func (o *Client) AllOpenOrders(ctx context.Context) (map[exchange.Pair][]*exchange.Order, error) {
	all, err := o.openOrders.Load(struct{}{}, func() (map[exchange.Pair][]*exchange.Order, error) {
		var raw map[string][]rawOrder

		params := url.Values{}
		params.Set("currencyPair", allPairs)

		if err := o.trading(ctx, "returnOpenOrders", params, &raw); err != nil {
			return nil, err
		}

		decoded := make(map[exchange.Pair][]exchange.OrderUpdate, len(raw))

		for code, orders := range raw {
			p, err := decodePair(code)
			if err != nil {
				continue
			}

			if decoded[p], err = decodeOrders(orders, p); err != nil {
				return nil, err
			}
		}

		all := make(map[exchange.Pair][]*exchange.Order, len(decoded))

		for p, entries := range decoded {
			all[p] = o.pool.ApplyOrders(entries)
		}

		return all, nil
	})
	if err != nil {
		return nil, err
	}

	c := make(map[exchange.Pair][]*exchange.Order, len(all))

	for p, orders := range all {
		c[p] = append([]*exchange.Order(nil), orders...)
	}

	return c, nil
}

//
// OrderOpen reports whether order is among the resting orders of its pair. When the order's pair is
// not known every pair is searched.
//
func (o *Client) OrderOpen(ctx context.Context, order *exchange.Order) (bool, error) {
	var candidates []*exchange.Order

	if pair, ok := order.LookupPair(); ok {
		orders, err := o.OpenOrders(ctx, pair)
		if err != nil {
			return false, err
		}

		candidates = orders
	} else {
		all, err := o.AllOpenOrders(ctx)
		if err != nil {
			return false, err
		}

		for _, orders := range all {
			candidates = append(candidates, orders...)
		}
	}

	for _, c := range candidates {
		if c.Equal(order) {
			return true, nil
		}
	}

	return false, nil
}

//
// OrderTrades returns the trades that filled order. An order the venue does not recognise has no
// trades.
//
func (o *Client) OrderTrades(ctx context.Context, order *exchange.Order) ([]*exchange.Trade, error) {
	trades, err := o.orderTrades.Load(order.ID(), func() ([]*exchange.Trade, error) {
		var raw []rawTrade

		params := url.Values{}
		params.Set("orderNumber", order.ID())

		err := o.trading(ctx, "returnOrderTrades", params, &raw)
		if errors.Is(err, exchange.ErrOrderNotFound) {
			return []*exchange.Trade{}, nil
		}

		if err != nil {
			return nil, err
		}

		entries := make([]exchange.TradeUpdate, 0, len(raw))

		for _, r := range raw {
			pair, err := decodePair(r.CurrencyPair)
			if err != nil {
				return nil, err
			}

			fields, err := r.fields(pair)
			if err != nil {
				return nil, err
			}

			fields.Order = partial.Of(order)
			entries = append(entries, exchange.TradeUpdate{ID: r.GlobalTradeID.String(), Fields: fields})
		}

		return o.pool.ApplyTrades(entries), nil
	})
	if err != nil {
		return nil, err
	}

	return append([]*exchange.Trade(nil), trades...), nil
}

func decodeOrders(raw []rawOrder, pair exchange.Pair) ([]exchange.OrderUpdate, error) {
	entries := make([]exchange.OrderUpdate, 0, len(raw))

	for _, r := range raw {
		fields, err := r.fields(pair)
		if err != nil {
			return nil, err
		}

		entries = append(entries, exchange.OrderUpdate{ID: r.OrderNumber.String(), Fields: fields})
	}

	return entries, nil
}
