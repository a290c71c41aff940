package coinbasepro

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"net/http"
	"net/url"

	"github.com/lukehollenback/bourse/exchange"
	"github.com/shopspring/decimal"
)

func (o *Client) Balance(ctx context.Context, currency string, query exchange.BalanceQuery) (decimal.Decimal, error) {
	if err := exchange.ValidateCurrency(currency); err != nil {
		return decimal.Zero, err
	}

	balances, err := o.Balances(ctx, query)
	if err != nil {
		return decimal.Zero, err
	}

	return balances[currency], nil
}

//
// Balances reads the account list once per live cache window and answers every availability from
// it. Only the exchange account exists on this venue.
//
func (o *Client) Balances(ctx context.Context, query exchange.BalanceQuery) (map[string]decimal.Decimal, error) {
	if query.Account != exchange.AllAccounts && query.Account != exchange.ExchangeAccount {
		return nil, fmt.Errorf("%w: %s balances", exchange.ErrNotSupported, query.Account)
	}

	accounts, err := o.accounts.Load(struct{}{}, func() ([]rawAccount, error) {
		var raw []rawAccount

		if _, err := o.call(ctx, request{method: http.MethodGet, path: "/accounts", private: true}, &raw); err != nil {
			return nil, err
		}

		return raw, nil
	})
	if err != nil {
		return nil, err
	}

	balances := make(map[string]decimal.Decimal, len(accounts))

	for _, a := range accounts {
		amount, err := a.amount(query.Availability)
		if err != nil {
			return nil, err
		}

		balances[a.Currency] = balances[a.Currency].Add(amount)
	}

	maps.DeleteFunc(balances, func(_ string, amount decimal.Decimal) bool { return amount.IsZero() })

	return balances, nil
}

//
// OpenOrders returns pair's resting orders. With the live cache enabled the answer comes from the
// snapshot of every open order; a pair with nothing resting yields an empty list.
//
func (o *Client) OpenOrders(ctx context.Context, pair exchange.Pair) ([]*exchange.Order, error) {
	if err := o.checkKnownPair(pair); err != nil {
		return nil, err
	}

	if !o.live.Enabled() {
		all, err := o.fetchOpenOrders(ctx, url.Values{"product_id": {productID(pair)}})
		if err != nil {
			return nil, err
		}

		return all[pair], nil
	}

	all, err := o.AllOpenOrders(ctx)
	if err != nil {
		return nil, err
	}

	return all[pair], nil
}

func (o *Client) AllOpenOrders(ctx context.Context) (map[exchange.Pair][]*exchange.Order, error) {
	all, err := o.openOrders.Load(struct{}{}, func() (map[exchange.Pair][]*exchange.Order, error) {
		return o.fetchOpenOrders(ctx, nil)
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

func (o *Client) fetchOpenOrders(ctx context.Context, query url.Values) (map[exchange.Pair][]*exchange.Order, error) {
	req := request{
		method:   http.MethodGet,
		path:     "/orders",
		query:    url.Values{"status": {"open"}},
		private:  true,
		notFound: exchange.ErrUnknownPair,
	}

	for k, vs := range query {
		req.query[k] = vs
	}

	decoded := make(map[exchange.Pair][]exchange.OrderUpdate)

	var decodeErr error

	err := paginate(ctx, o, req, 0, func(page []rawOrder) bool {
		for _, r := range page {
			pair, u, err := r.update()
			if err != nil {
				decodeErr = err
				return false
			}

			decoded[pair] = append(decoded[pair], u)
		}

		return true
	})
	if err != nil {
		return nil, err
	}

	if decodeErr != nil {
		return nil, decodeErr
	}

	all := make(map[exchange.Pair][]*exchange.Order, len(decoded))

	for p, updates := range decoded {
		all[p] = o.pool.ApplyOrders(updates)
	}

	return all, nil
}

//
// OrderOpen reports whether order is among the resting orders of its pair, searching every pair
// when the order's pair is not known.
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
// OrderTrades returns the fills of order, each linked back to it through the fill's order id. An
// order the venue does not recognise has none.
//
func (o *Client) OrderTrades(ctx context.Context, order *exchange.Order) ([]*exchange.Trade, error) {
	trades, err := o.orderTrades.Load(order.ID(), func() ([]*exchange.Trade, error) {
		req := request{
			method:   http.MethodGet,
			path:     "/fills",
			query:    url.Values{"order_id": {order.ID()}},
			private:  true,
			notFound: exchange.ErrOrderNotFound,
		}

		updates, err := fetchFills(ctx, o, req, 0, 0, 0)
		if errors.Is(err, exchange.ErrOrderNotFound) {
			return []*exchange.Trade{}, nil
		}

		if err != nil {
			return nil, err
		}

		return o.pool.ApplyTrades(updates), nil
	})
	if err != nil {
		return nil, err
	}

	return append([]*exchange.Trade(nil), trades...), nil
}
