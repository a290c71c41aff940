package poloniex

import (
	"context"
	"testing"

	"github.com/lukehollenback/bourse/exchange"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func limitOrder(side exchange.Side, subtype exchange.Subtype) exchange.OrderRequest {
	return exchange.OrderRequest{
		Side:    side,
		Subtype: subtype,
		Pair:    exchange.MustParsePair("ETH/BTC"),
		Rate:    decimal.RequireFromString("0.05"),
		Amount:  decimal.RequireFromString("2"),
	}
}

func TestPlaceSpotOrder(t *testing.T) {
	transport := newFakeTransport().on("trading/buy", `{"orderNumber": 31226040, "resultingTrades": []}`)
	client, _ := newTestClient(transport)

	order, err := client.PlaceOrder(context.Background(), limitOrder(exchange.Buy, exchange.Spot))
	require.NoError(t, err)

	assert.Equal(t, "31226040", order.ID())

	sent := transport.last()
	assert.Equal(t, "buy", sent.command)
	assert.Equal(t, "BTC_ETH", sent.params.Get("currencyPair"))
	assert.Equal(t, "0.05", sent.params.Get("rate"))
	assert.Equal(t, "2", sent.params.Get("amount"))
	assert.Empty(t, sent.params.Get("lendingRate"))

	total, err := order.Total()
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.RequireFromString("0.1")))
}

func TestPlaceMarginOrderUsesLendingRate(t *testing.T) {
	transport := newFakeTransport().on("trading/marginSell", `{"success": 1, "orderNumber": "8"}`)
	client, _ := newTestClient(transport)

	_, err := client.PlaceOrder(context.Background(), limitOrder(exchange.Sell, exchange.Margin))
	require.NoError(t, err)

	assert.Equal(t, "marginSell", transport.last().command)
	assert.Equal(t, "0.02", transport.last().params.Get("lendingRate"))

	req := limitOrder(exchange.Buy, exchange.Margin)
	req.LendingRate = decimal.RequireFromString("0.015")

	transport.on("trading/marginBuy", `{"orderNumber": "9"}`)

	_, err = client.PlaceOrder(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "0.015", transport.last().params.Get("lendingRate"))
}

func TestPlaceOrderValidatesLocally(t *testing.T) {
	transport := newFakeTransport().on("public/returnTicker", tickerPayload)
	client, _ := newTestClient(transport)
	ctx := context.Background()

	bad := limitOrder(exchange.Buy, exchange.Spot)
	bad.Amount = decimal.Zero

	_, err := client.PlaceOrder(ctx, bad)
	assert.ErrorIs(t, err, exchange.ErrInvalidArgument)

	_, err = client.PlaceOrder(ctx, limitOrder(exchange.Buy, exchange.Lending))
	assert.ErrorIs(t, err, exchange.ErrInvalidArgument)

	//
	// With the pair list cached, an unknown pair is refused without a trading request.
	//
	client.EnableLiveCache()
	_, err = client.Tickers(ctx)
	require.NoError(t, err)

	unknown := limitOrder(exchange.Buy, exchange.Spot)
	unknown.Pair = exchange.MustParsePair("DOGE/BTC")

	_, err = client.PlaceOrder(ctx, unknown)
	assert.ErrorIs(t, err, exchange.ErrUnknownPair)

	for _, c := range transport.calls {
		assert.False(t, c.trading, "unexpected trading call %s", c.command)
	}
}

func TestPlacedOrderJoinsCachedOpenOrders(t *testing.T) {
	transport := newFakeTransport().
		on("trading/returnOpenOrders", openOrdersPayload).
		on("trading/sell", `{"orderNumber": "555"}`).
		on("trading/cancelOrder", `{"success": 1}`)
	client, _ := newTestClient(transport)
	client.EnableLiveCache()
	ctx := context.Background()

	_, err := client.AllOpenOrders(ctx)
	require.NoError(t, err)

	order, err := client.PlaceOrder(ctx, limitOrder(exchange.Sell, exchange.Spot))
	require.NoError(t, err)

	open, err := order.IsOpen(ctx)
	require.NoError(t, err)
	assert.True(t, open)
	assert.Equal(t, 1, transport.count("returnOpenOrders"))

	//
	// Cancelling drops the cached listing so the next read goes back to the venue.
	//
	require.NoError(t, order.Cancel(ctx))

	_, err = client.AllOpenOrders(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, transport.count("returnOpenOrders"))
}

func TestCancelUnknownOrder(t *testing.T) {
	transport := newFakeTransport().on("trading/cancelOrder", `{"error": "Order not found, or you are not the person who placed it."}`)
	client, _ := newTestClient(transport)

	err := client.CancelOrder(context.Background(), client.pool.Order("1"))
	assert.ErrorIs(t, err, exchange.ErrOrderNotFound)
}

func TestModifyOrder(t *testing.T) {
	transport := newFakeTransport().
		on("trading/sell", `{"orderNumber": "100"}`).
		on("trading/moveOrder", `{"success": 1, "orderNumber": "101", "resultingTrades": {}}`)
	client, _ := newTestClient(transport)
	ctx := context.Background()

	order, err := client.PlaceOrder(ctx, limitOrder(exchange.Sell, exchange.Spot))
	require.NoError(t, err)

	amount := decimal.RequireFromString("1.5")

	moved, err := order.Modify(ctx, exchange.Modification{Amount: &amount})
	require.NoError(t, err)

	sent := transport.last()
	assert.Equal(t, "moveOrder", sent.command)
	assert.Equal(t, "100", sent.params.Get("orderNumber"))
	assert.Equal(t, "0.05", sent.params.Get("rate"), "the known rate is resent when only the amount moves")
	assert.Equal(t, "1.5", sent.params.Get("amount"))

	assert.Equal(t, "101", moved.ID())

	side, err := moved.Side()
	require.NoError(t, err)
	assert.Equal(t, exchange.Sell, side)

	total, err := moved.Total()
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.RequireFromString("0.075")))
}

func TestModifyOrderKeepingOrderNumber(t *testing.T) {
	transport := newFakeTransport().
		on("trading/sell", `{"orderNumber": "100"}`).
		on("trading/moveOrder", `{"success": 1, "orderNumber": "100", "resultingTrades": {}}`)
	client, _ := newTestClient(transport)
	ctx := context.Background()

	order, err := client.PlaceOrder(ctx, limitOrder(exchange.Sell, exchange.Spot))
	require.NoError(t, err)

	rate := decimal.RequireFromString("0.06")

	moved, err := order.Modify(ctx, exchange.Modification{Rate: &rate})
	require.NoError(t, err)
	assert.Same(t, order, moved)

	got, err := moved.Rate()
	require.NoError(t, err)
	assert.True(t, got.Equal(rate))

	total, err := moved.Total()
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.RequireFromString("0.12")), "got %s", total)
}

func TestModifyOrderEdgeCases(t *testing.T) {
	transport := newFakeTransport()
	client, _ := newTestClient(transport)
	ctx := context.Background()

	order := client.pool.Order("7")

	same, err := order.Modify(ctx, exchange.Modification{})
	require.NoError(t, err)
	assert.Same(t, order, same)

	amount := decimal.NewFromInt(1)

	_, err = order.Modify(ctx, exchange.Modification{Amount: &amount})
	assert.ErrorIs(t, err, exchange.ErrInsufficientInformation)

	assert.Empty(t, transport.calls)
}
