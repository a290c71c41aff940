package coinbasepro

import (
	"cmp"
	"context"
	"maps"
	"net/http"
	"net/url"
	"slices"
	"strconv"

	"github.com/lukehollenback/bourse/constants"
	"github.com/lukehollenback/bourse/exchange"
)

//
// Currencies returns every currency id the venue lists. The list is fetched once per client.
//
func (o *Client) Currencies(ctx context.Context) ([]string, error) {
	if o.currencies == nil {
		var raw []rawCurrency

		if _, err := o.call(ctx, request{method: http.MethodGet, path: "/currencies"}, &raw); err != nil {
			return nil, err
		}

		currencies := make([]string, 0, len(raw))

		for _, c := range raw {
			if exchange.ValidateCurrency(c.ID) == nil {
				currencies = append(currencies, c.ID)
			}
		}

		slices.Sort(currencies)
		o.currencies = currencies
	}

	return slices.Clone(o.currencies), nil
}

//
// Pairs returns every product with its price and size increments. Products whose ids fall outside
// the "BASE-QUOTE" letter form are skipped.
//
func (o *Client) Pairs(ctx context.Context) (map[exchange.Pair]exchange.PairInfo, error) {
	products, err := o.products.Load(struct{}{}, func() (map[exchange.Pair]exchange.PairInfo, error) {
		var raw []rawProduct

		if _, err := o.call(ctx, request{method: http.MethodGet, path: "/products"}, &raw); err != nil {
			return nil, err
		}

		products := make(map[exchange.Pair]exchange.PairInfo, len(raw))

		for _, p := range raw {
			pair := exchange.NewPair(p.BaseCurrency, p.QuoteCurrency)
			if pair.Validate() != nil {
				continue
			}

			products[pair] = exchange.PairInfo{BaseULP: p.BaseIncrement, QuoteULP: p.QuoteIncrement}
		}

		return products, nil
	})
	if err != nil {
		return nil, err
	}

	return maps.Clone(products), nil
}

//
// Ticker combines the product's ticker with its 24 hour stats, two requests per pair.
//
func (o *Client) Ticker(ctx context.Context, pair exchange.Pair) (exchange.Ticker, error) {
	if err := o.checkKnownPair(pair); err != nil {
		return exchange.Ticker{}, err
	}

	return o.tickers.Load(pair, func() (exchange.Ticker, error) {
		var ticker rawTicker
		var stats rawStats

		path := "/products/" + productID(pair)

		_, err := o.call(ctx, request{method: http.MethodGet, path: path + "/ticker", notFound: exchange.ErrUnknownPair}, &ticker)
		if err != nil {
			return exchange.Ticker{}, err
		}

		_, err = o.call(ctx, request{method: http.MethodGet, path: path + "/stats", notFound: exchange.ErrUnknownPair}, &stats)
		if err != nil {
			return exchange.Ticker{}, err
		}

		return ticker.ticker(stats), nil
	})
}

//
// Tickers has no bulk endpoint to draw on; it reads every product's ticker in turn.
//
func (o *Client) Tickers(ctx context.Context) (map[exchange.Pair]exchange.Ticker, error) {
	products, err := o.Pairs(ctx)
	if err != nil {
		return nil, err
	}

	tickers := make(map[exchange.Pair]exchange.Ticker, len(products))

	for _, pair := range sortedPairs(products) {
		t, err := o.Ticker(ctx, pair)
		if err != nil {
			return nil, err
		}

		tickers[pair] = t
	}

	return tickers, nil
}

//
// OrderBook returns at most depth levels per side, constants.DefaultBookDepth when depth is not
// positive. The venue's aggregated book is fetched whole and kept in the live cache, so a later
// request for a different depth reuses it.
//
func (o *Client) OrderBook(ctx context.Context, pair exchange.Pair, depth int) (exchange.OrderBook, error) {
	if depth <= 0 {
		depth = constants.DefaultBookDepth
	}

	if err := o.checkKnownPair(pair); err != nil {
		return exchange.OrderBook{}, err
	}

	book, err := o.books.Load(pair, func() (exchange.OrderBook, error) {
		var raw rawBook

		req := request{
			method:   http.MethodGet,
			path:     "/products/" + productID(pair) + "/book",
			query:    url.Values{"level": {strconv.Itoa(BookLevel)}},
			notFound: exchange.ErrUnknownPair,
		}

		if _, err := o.call(ctx, req, &raw); err != nil {
			return exchange.OrderBook{}, err
		}

		return raw.book()
	})
	if err != nil {
		return exchange.OrderBook{}, err
	}

	return book.Truncate(depth), nil
}

func (o *Client) OrderBooks(ctx context.Context, depth int) (map[exchange.Pair]exchange.OrderBook, error) {
	if depth <= 0 {
		depth = constants.DefaultBookDepth
	}

	products, err := o.Pairs(ctx)
	if err != nil {
		return nil, err
	}

	books := make(map[exchange.Pair]exchange.OrderBook, len(products))

	for _, pair := range sortedPairs(products) {
		book, err := o.OrderBook(ctx, pair, depth)
		if err != nil {
			return nil, err
		}

		books[pair] = book
	}

	return books, nil
}

func sortedPairs[V any](m map[exchange.Pair]V) []exchange.Pair {
	pairs := slices.Collect(maps.Keys(m))

	slices.SortFunc(pairs, func(a exchange.Pair, b exchange.Pair) int {
		return cmp.Compare(a.String(), b.String())
	})

	return pairs
}
