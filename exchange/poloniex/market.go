package poloniex

import (
	"context"
	"fmt"
	"maps"
	"net/url"
	"sort"
	"strconv"

	"github.com/lukehollenback/bourse/constants"
	"github.com/lukehollenback/bourse/exchange"
)

//
// Currencies returns every currency code the venue lists. The list is fetched once per Client.
//
func (o *Client) Currencies(ctx context.Context) ([]string, error) {
	if o.currencies == nil {
		var raw map[string]struct{}

		if err := o.public(ctx, "returnCurrencies", url.Values{}, &raw); err != nil {
			return nil, err
		}

		currencies := make([]string, 0, len(raw))
		for c := range raw {
			currencies = append(currencies, c)
		}

		sort.Strings(currencies)

		o.currencies = currencies
	}

	return append([]string(nil), o.currencies...), nil
}

//
// Pairs returns every tradable pair. Every amount on the venue has the same precision.
//
func (o *Client) Pairs(ctx context.Context) (map[exchange.Pair]exchange.PairInfo, error) {
	tickers, err := o.Tickers(ctx)
	if err != nil {
		return nil, err
	}

	pairs := make(map[exchange.Pair]exchange.PairInfo, len(tickers))

	for p := range tickers {
		pairs[p] = exchange.PairInfo{BaseULP: ULP, QuoteULP: ULP}
	}

	return pairs, nil
}

func (o *Client) Tickers(ctx context.Context) (map[exchange.Pair]exchange.Ticker, error) {
	tickers, err := o.tickers.Load(struct{}{}, func() (map[exchange.Pair]exchange.Ticker, error) {
		var raw map[string]rawTicker

		if err := o.public(ctx, "returnTicker", url.Values{}, &raw); err != nil {
			return nil, err
		}

		tickers := make(map[exchange.Pair]exchange.Ticker, len(raw))

		for code, t := range raw {
			//
			// Listings whose symbols are not plain letters cannot be named as a Pair.
			//
			p, err := decodePair(code)
			if err != nil {
				continue
			}

			tickers[p] = t.ticker()
		}

		return tickers, nil
	})
	if err != nil {
		return nil, err
	}

	return maps.Clone(tickers), nil
}

func (o *Client) Ticker(ctx context.Context, pair exchange.Pair) (exchange.Ticker, error) {
	if err := pair.Validate(); err != nil {
		return exchange.Ticker{}, err
	}

	tickers, err := o.Tickers(ctx)
	if err != nil {
		return exchange.Ticker{}, err
	}

	t, ok := tickers[pair]
	if !ok {
		return exchange.Ticker{}, fmt.Errorf("%w: %s", exchange.ErrUnknownPair, pair)
	}

	return t, nil
}

//
// OrderBook returns at most depth levels per side of pair's book. With the live cache enabled every
// pair's book is fetched at once and reused until a deeper book is asked for.
//
func (o *Client) OrderBook(ctx context.Context, pair exchange.Pair, depth int) (exchange.OrderBook, error) {
	if err := pair.Validate(); err != nil {
		return exchange.OrderBook{}, err
	}

	if depth <= 0 {
		depth = constants.DefaultBookDepth
	}

	if !o.live.Enabled() {
		var raw rawBook

		params := url.Values{}
		params.Set("currencyPair", encodePair(pair))
		params.Set("depth", strconv.Itoa(depth))

		if err := o.public(ctx, "returnOrderBook", params, &raw); err != nil {
			return exchange.OrderBook{}, err
		}

		return raw.book(), nil
	}

	books, err := o.OrderBooks(ctx, depth)
	if err != nil {
		return exchange.OrderBook{}, err
	}

	book, ok := books[pair]
	if !ok {
		return exchange.OrderBook{}, fmt.Errorf("%w: %s", exchange.ErrUnknownPair, pair)
	}

	return book, nil
}

//
// OrderBooks returns at most depth levels per side of every pair's book.
//
func (o *Client) OrderBooks(ctx context.Context, depth int) (map[exchange.Pair]exchange.OrderBook, error) {
	if depth <= 0 {
		depth = constants.DefaultBookDepth
	}

	snapshot, ok := o.books.Peek(struct{}{})

	if !ok || snapshot.depth < depth {
		var raw map[string]rawBook

		params := url.Values{}
		params.Set("currencyPair", allPairs)
		params.Set("depth", strconv.Itoa(depth))

		if err := o.public(ctx, "returnOrderBook", params, &raw); err != nil {
			return nil, err
		}

		snapshot = bookSnapshot{
			depth: depth,
			books: make(map[exchange.Pair]exchange.OrderBook, len(raw)),
		}

		for code, b := range raw {
			p, err := decodePair(code)
			if err != nil {
				continue
			}

			snapshot.books[p] = b.book()
		}

		o.books.Store(struct{}{}, snapshot)
	}

	books := make(map[exchange.Pair]exchange.OrderBook, len(snapshot.books))

	for p, b := range snapshot.books {
		books[p] = b.Truncate(depth)
	}

	return books, nil
}
