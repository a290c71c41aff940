package coinbasepro

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/lukehollenback/bourse/exchange"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPairs(t *testing.T) {
	venue := newFakeVenue(t).on("GET /products", productsPayload)
	client := newTestClient(venue)

	pairs, err := client.Pairs(context.Background())
	require.NoError(t, err)

	assert.Len(t, pairs, 2, "products outside the letter form are skipped")

	info := pairs[exchange.MustParsePair("BTC/USD")]
	assert.True(t, info.BaseULP.Equal(decimal.New(1, -8)))
	assert.True(t, info.QuoteULP.Equal(decimal.New(1, -2)))

	assert.Equal(t, "key", venue.last().header.Get("CB-ACCESS-KEY"))
}

func TestCurrenciesAreFetchedOnce(t *testing.T) {
	venue := newFakeVenue(t).on("GET /currencies", `[{"id": "USD"}, {"id": "BTC"}, {"id": "1INCH"}, {"id": "ETH"}]`)
	client := newTestClient(venue)
	ctx := context.Background()

	currencies, err := client.Currencies(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"BTC", "ETH", "USD"}, currencies)

	currencies[0] = "XXX"

	again, err := client.Currencies(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"BTC", "ETH", "USD"}, again)
	assert.Equal(t, 1, venue.count("GET /currencies"))
}

func TestTickerCombinesStats(t *testing.T) {
	venue := newFakeVenue(t).
		on("GET /products/BTC-USD/ticker", `{"trade_id": 4729088, "price": "10000", "size": "0.01", "bid": "9999", "ask": "10001", "volume": "500", "time": "2020-09-13T12:26:39.5Z"}`).
		on("GET /products/BTC-USD/stats", `{"open": "9500", "high": "10100", "low": "9400", "volume": "500", "last": "10000"}`)
	client := newTestClient(venue)
	client.EnableLiveCache()
	ctx := context.Background()

	ticker, err := client.Ticker(ctx, exchange.MustParsePair("BTC/USD"))
	require.NoError(t, err)

	assert.True(t, ticker.Last.Equal(decimal.NewFromInt(10000)))
	assert.True(t, ticker.HighestBid.Equal(decimal.NewFromInt(9999)))
	assert.True(t, ticker.LowestAsk.Equal(decimal.NewFromInt(10001)))
	assert.True(t, ticker.BaseVolume.Equal(decimal.NewFromInt(500)))
	assert.True(t, ticker.QuoteVolume.IsZero())
	assert.True(t, ticker.PercentChange.Equal(decimal.NewFromInt(500).Div(decimal.NewFromInt(9500))))

	_, err = client.Ticker(ctx, exchange.MustParsePair("BTC/USD"))
	require.NoError(t, err)

	assert.Equal(t, 1, venue.count("GET /products/BTC-USD/ticker"))
	assert.Equal(t, 1, venue.count("GET /products/BTC-USD/stats"))
}

func TestUnknownProduct(t *testing.T) {
	venue := newFakeVenue(t).on("GET /products", productsPayload)
	client := newTestClient(venue)
	ctx := context.Background()

	_, err := client.Ticker(ctx, exchange.MustParsePair("DOGE/USD"))
	assert.ErrorIs(t, err, exchange.ErrUnknownPair)

	//
	// Once the product list is cached the pair is refused locally.
	//
	client.EnableLiveCache()

	_, err = client.Pairs(ctx)
	require.NoError(t, err)

	before := len(venue.all())

	_, err = client.OrderBook(ctx, exchange.MustParsePair("DOGE/USD"), 5)
	assert.ErrorIs(t, err, exchange.ErrUnknownPair)
	assert.Len(t, venue.all(), before)
}

func TestOrderBookIsFetchedWholeAndTruncated(t *testing.T) {
	venue := newFakeVenue(t).on("GET /products/ETH-BTC/book", `{
		"sequence": 3,
		"bids": [["0.0499", "1.5", 2], ["0.0498", "3", 1], ["0.0497", "10", 4]],
		"asks": [["0.0501", "2", 1], ["0.0502", "4", 3]]
	}`)
	client := newTestClient(venue)
	client.EnableLiveCache()
	ctx := context.Background()

	book, err := client.OrderBook(ctx, exchange.MustParsePair("ETH/BTC"), 1)
	require.NoError(t, err)

	require.Len(t, book.Bids, 1)
	require.Len(t, book.Asks, 1)
	assert.True(t, book.Bids[0].Rate.Equal(decimal.RequireFromString("0.0499")))
	assert.True(t, book.Bids[0].Amount.Equal(decimal.RequireFromString("1.5")))

	book, err = client.OrderBook(ctx, exchange.MustParsePair("ETH/BTC"), 10)
	require.NoError(t, err)

	assert.Len(t, book.Bids, 3)
	assert.Len(t, book.Asks, 2)
	assert.Equal(t, 1, venue.count("GET /products/ETH-BTC/book"))
	assert.Equal(t, "2", venue.last().query.Get("level"))
}

func TestValueOfThroughClient(t *testing.T) {
	venue := newFakeVenue(t).
		on("GET /products", productsPayload).
		on("GET /products/ETH-BTC/ticker", `{"price": "0.05", "bid": "0.0499", "ask": "0.0501", "volume": "2410"}`).
		on("GET /products/ETH-BTC/stats", `{"open": "0.05", "last": "0.05"}`).
		on("GET /products/BTC-USD/ticker", `{"price": "10000", "bid": "9999", "ask": "10001", "volume": "500"}`).
		on("GET /products/BTC-USD/stats", `{"open": "10000", "last": "10000"}`)
	client := newTestClient(venue)

	value, err := exchange.ValueOf(context.Background(), client, decimal.NewFromInt(2), "ETH", "USD")
	require.NoError(t, err)

	assert.True(t, value.Equal(decimal.NewFromInt(1000)), "got %s", value)
	assert.False(t, client.LiveCacheEnabled())
	assert.Equal(t, 1, venue.count("GET /products"))
}

func TestErrorTranslation(t *testing.T) {
	venue := newFakeVenue(t).
		reply("GET /products", fakeReply{status: http.StatusBadGateway, body: "<html>bad gateway</html>"}).
		reply("GET /currencies", fakeReply{status: http.StatusBadRequest, body: `{"message": "request timestamp expired"}`})
	client := newTestClient(venue)
	ctx := context.Background()

	_, err := client.Pairs(ctx)

	var httpErr *exchange.HTTPError
	require.True(t, errors.As(err, &httpErr), "got %v", err)
	assert.Equal(t, http.StatusBadGateway, httpErr.StatusCode())

	_, err = client.Currencies(ctx)

	var apiErr *exchange.APIError
	require.True(t, errors.As(err, &apiErr), "got %v", err)
	assert.Equal(t, Venue, apiErr.Venue)
	assert.Equal(t, "GET /currencies", apiErr.Command)
	assert.Equal(t, "request timestamp expired", apiErr.Message)

	_, err = client.Currencies(ctx)
	assert.Error(t, err, "a failed fetch caches nothing")
}
