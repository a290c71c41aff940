package coinbasepro

import (
	"context"
	"net/http"
	"net/url"

	"github.com/lukehollenback/bourse/exchange"
)

func (o *Client) PublicTradeHistory(ctx context.Context, pair exchange.Pair, window exchange.Window) ([]*exchange.Trade, error) {
	return o.history(ctx, o.publicHistory, pair, window, func(start int64, end int64) ([]exchange.TradeUpdate, error) {
		req := request{
			method:   http.MethodGet,
			path:     "/products/" + productID(pair) + "/trades",
			notFound: exchange.ErrUnknownPair,
		}

		var updates []exchange.TradeUpdate
		var decodeErr error

		err := paginate(ctx, o, req, HistoryPageLimit, func(page []rawTrade) bool {
			for _, r := range page {
				ts := r.Time.Unix()
				if ts > end {
					continue
				}

				if ts < start {
					return false
				}

				u, err := r.update(pair)
				if err != nil {
					decodeErr = err
					return false
				}

				updates = append(updates, u)
			}

			return true
		})
		if err != nil {
			return nil, err
		}

		return updates, decodeErr
	})
}

func (o *Client) TradeHistory(ctx context.Context, pair exchange.Pair, window exchange.Window) ([]*exchange.Trade, error) {
	return o.history(ctx, o.privateHistory, pair, window, func(start int64, end int64) ([]exchange.TradeUpdate, error) {
		req := request{
			method:   http.MethodGet,
			path:     "/fills",
			query:    url.Values{"product_id": {productID(pair)}},
			private:  true,
			notFound: exchange.ErrUnknownPair,
		}

		return fetchFills(ctx, o, req, HistoryPageLimit, start, end)
	})
}

//
// fetchFills decodes the account's fills between start and end, newest first as the venue lists
// them. A zero end reads every fill.
//
func fetchFills(ctx context.Context, o *Client, req request, pages int, start int64, end int64) ([]exchange.TradeUpdate, error) {
	var updates []exchange.TradeUpdate
	var decodeErr error

	err := paginate(ctx, o, req, pages, func(page []rawFill) bool {
		for _, r := range page {
			ts := r.CreatedAt.Unix()
			if end != 0 && ts > end {
				continue
			}

			if ts < start {
				return false
			}

			u, err := r.update()
			if err != nil {
				decodeErr = err
				return false
			}

			updates = append(updates, u)
		}

		return true
	})
	if err != nil {
		return nil, err
	}

	return updates, decodeErr
}

//
// history serves a windowed trade query from h, walking the venue's pages only when the window is
// not already covered by a single span fetched earlier. Nothing is recorded unless the whole window
// was read and decoded.
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
		updates, err := fetch(start, end)
		if err != nil {
			return nil, err
		}

		h.Record(pair, start, end, o.pool.ApplyTrades(updates))
	}

	return exchange.FilterWindow(h.Items(pair), start, end), nil
}
