package coinbasepro

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/lukehollenback/bourse/exchange"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tradeJSON(id int64, at time.Duration, makerSide string) string {
	return fmt.Sprintf(`{"time": %q, "trade_id": %d, "price": "10000", "size": "0.5", "side": %q}`, stamp(at), id, makerSide)
}

func TestPublicTradeHistoryWalksPages(t *testing.T) {
	venue := newFakeVenue(t).
		reply("GET /products/BTC-USD/trades", fakeReply{
			status: 200,
			body:   "[" + tradeJSON(4, 5*time.Second, "sell") + "," + tradeJSON(3, -10*time.Second, "buy") + "]",
			after:  "3",
		}).
		reply("GET /products/BTC-USD/trades", fakeReply{
			status: 200,
			body:   "[" + tradeJSON(2, -30*time.Minute, "sell") + "," + tradeJSON(1, -2*time.Hour, "sell") + "]",
			after:  "1",
		})
	client := newTestClient(venue)
	ctx := context.Background()
	pair := exchange.MustParsePair("BTC/USD")
	window := exchange.Window{Start: testNow.Add(-time.Hour), End: testNow}

	trades, err := client.PublicTradeHistory(ctx, pair, window)
	require.NoError(t, err)

	require.Len(t, trades, 2)
	assert.Equal(t, "BTC-USD:2", trades[0].ID())
	assert.Equal(t, "BTC-USD:3", trades[1].ID())

	side, err := trades[1].Side()
	require.NoError(t, err)
	assert.Equal(t, exchange.Sell, side, "a buy maker means the taker sold")

	total, err := trades[1].Total()
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.NewFromInt(5000)))

	requests := venue.all()
	require.Len(t, requests, 2)
	assert.Empty(t, requests[0].query.Get("after"))
	assert.Equal(t, "3", requests[1].query.Get("after"))
	assert.Equal(t, "100", requests[1].query.Get("limit"))

	//
	// A window inside the one already fetched is answered from the cache.
	//
	inner, err := client.PublicTradeHistory(ctx, pair, exchange.Window{Start: testNow.Add(-20 * time.Minute), End: testNow})
	require.NoError(t, err)

	require.Len(t, inner, 1)
	assert.Same(t, trades[1], inner[0])
	assert.Len(t, venue.all(), 2)
}

func TestPublicTradeHistoryPageLimit(t *testing.T) {
	venue := newFakeVenue(t).reply("GET /products/BTC-USD/trades", fakeReply{
		status: 200,
		body:   "[" + tradeJSON(9, -time.Minute, "buy") + "]",
		after:  "9",
	})
	client := newTestClient(venue)
	ctx := context.Background()
	pair := exchange.MustParsePair("BTC/USD")

	_, err := client.PublicTradeHistory(ctx, pair, exchange.Window{})
	assert.ErrorIs(t, err, exchange.ErrHistoryTruncated)
	assert.Equal(t, HistoryPageLimit, venue.count("GET /products/BTC-USD/trades"))

	_, interned := client.pool.LookupTrade("BTC-USD:9")
	assert.False(t, interned)
	assert.Empty(t, client.publicHistory.Covered(pair))
}

func TestTradeHistoryLinksOrders(t *testing.T) {
	fill := fmt.Sprintf(`[{
		"trade_id": 77, "product_id": "ETH-BTC", "order_id": "d50ec984-77a8-460a-b958-66f114b0de9b",
		"created_at": %q, "price": "0.05", "size": "2", "fee": "0.0003", "side": "sell",
		"liquidity": "T", "settled": true
	}]`, stamp(-5*time.Minute))

	venue := newFakeVenue(t).
		on("GET /fills", fill).
		on("GET /products/ETH-BTC/trades", fmt.Sprintf(`[{"time": %q, "trade_id": 77, "price": "0.05", "size": "2", "side": "buy"}]`, stamp(-5*time.Minute)))
	client := newTestClient(venue)
	ctx := context.Background()
	pair := exchange.MustParsePair("ETH/BTC")

	private, err := client.TradeHistory(ctx, pair, exchange.Window{})
	require.NoError(t, err)
	require.Len(t, private, 1)

	assert.Equal(t, "ETH-BTC", venue.last().query.Get("product_id"))

	fee, err := private[0].Fee()
	require.NoError(t, err)
	assert.True(t, fee.Equal(decimal.RequireFromString("0.0003")))

	order, err := private[0].Order()
	require.NoError(t, err)
	assert.Equal(t, "d50ec984-77a8-460a-b958-66f114b0de9b", order.ID())

	side, err := order.Side()
	require.NoError(t, err)
	assert.Equal(t, exchange.Sell, side)

	subtype, err := order.Subtype()
	require.NoError(t, err)
	assert.Equal(t, exchange.Spot, subtype)

	//
	// The same match seen through the public listing is the same handle.
	//
	public, err := client.PublicTradeHistory(ctx, pair, exchange.Window{})
	require.NoError(t, err)
	require.Len(t, public, 1)
	assert.Same(t, private[0], public[0])

	_, stillKnown := public[0].LookupFee()
	assert.True(t, stillKnown)
}
