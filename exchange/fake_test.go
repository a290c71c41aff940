package exchange

import (
	"context"
	"errors"

	"github.com/lukehollenback/bourse/structs/partial"
	"github.com/shopspring/decimal"
)

//
// fakeAPI is an in-memory venue. It counts every read that would have gone to the network and
// honours the live cache for tickers and pairs like a real facade does.
//
type fakeAPI struct {
	live    *LiveCache
	tickers *LiveSlot[struct{}, map[Pair]Ticker]
	pool    *EntityPool

	pairs    map[Pair]Ticker
	balances map[string]decimal.Decimal
	history  []*Trade
	fills    map[string][]*Trade
	open     map[string]bool

	calls int
}

func newFakeAPI() *fakeAPI {
	f := &fakeAPI{
		live:     NewLiveCache(),
		pairs:    make(map[Pair]Ticker),
		balances: make(map[string]decimal.Decimal),
		fills:    make(map[string][]*Trade),
		open:     make(map[string]bool),
	}

	f.tickers = NewLiveSlot[struct{}, map[Pair]Ticker](f.live)
	f.pool = NewEntityPool(f)

	return f
}

func (o *fakeAPI) withTicker(pair string, last string) *fakeAPI {
	o.pairs[MustParsePair(pair)] = Ticker{Last: decimal.RequireFromString(last)}

	return o
}

func (o *fakeAPI) addTrade(id string, rate string, amount string, ts int64) *Trade {
	r, a := decimal.RequireFromString(rate), decimal.RequireFromString(amount)

	t := o.pool.UpdateTrade(id, TradeFields{
		Rate:      partial.Of(r),
		Amount:    partial.Of(a),
		Total:     partial.Of(r.Mul(a)),
		Timestamp: partial.Of(ts),
	})

	o.history = append(o.history, t)

	return t
}

func (o *fakeAPI) Name() string { return "fake" }
func (o *fakeAPI) EnableLiveCache() { o.live.Enable() }
func (o *fakeAPI) DisableLiveCache() { o.live.Disable() }
func (o *fakeAPI) ClearLiveCache() { o.live.Clear() }
func (o *fakeAPI) LiveCacheEnabled() bool { return o.live.Enabled() }

func (o *fakeAPI) Currencies(ctx context.Context) ([]string, error) {
	return nil, ErrNotSupported
}

func (o *fakeAPI) Pairs(ctx context.Context) (map[Pair]PairInfo, error) {
	tickers, err := o.Tickers(ctx)
	if err != nil {
		return nil, err
	}

	pairs := make(map[Pair]PairInfo, len(tickers))
	for p := range tickers {
		pairs[p] = PairInfo{}
	}

	return pairs, nil
}

func (o *fakeAPI) Tickers(ctx context.Context) (map[Pair]Ticker, error) {
	return o.tickers.Load(struct{}{}, func() (map[Pair]Ticker, error) {
		o.calls++

		snapshot := make(map[Pair]Ticker, len(o.pairs))
		for p, t := range o.pairs {
			snapshot[p] = t
		}

		return snapshot, nil
	})
}

func (o *fakeAPI) Ticker(ctx context.Context, pair Pair) (Ticker, error) {
	tickers, err := o.Tickers(ctx)
	if err != nil {
		return Ticker{}, err
	}

	t, ok := tickers[pair]
	if !ok {
		return Ticker{}, ErrUnknownPair
	}

	return t, nil
}

func (o *fakeAPI) OrderBook(ctx context.Context, pair Pair, depth int) (OrderBook, error) {
	return OrderBook{}, ErrNotSupported
}

func (o *fakeAPI) OrderBooks(ctx context.Context, depth int) (map[Pair]OrderBook, error) {
	return nil, ErrNotSupported
}

func (o *fakeAPI) PublicTradeHistory(ctx context.Context, pair Pair, window Window) ([]*Trade, error) {
	o.calls++

	return FilterWindow(o.history, window.Start.Unix(), window.End.Unix()), nil
}

func (o *fakeAPI) TradeHistory(ctx context.Context, pair Pair, window Window) ([]*Trade, error) {
	return nil, ErrNotSupported
}

func (o *fakeAPI) Balance(ctx context.Context, currency string, query BalanceQuery) (decimal.Decimal, error) {
	balances, err := o.Balances(ctx, query)
	if err != nil {
		return decimal.Decimal{}, err
	}

	return balances[currency], nil
}

func (o *fakeAPI) Balances(ctx context.Context, query BalanceQuery) (map[string]decimal.Decimal, error) {
	o.calls++

	return o.balances, nil
}

func (o *fakeAPI) OpenOrders(ctx context.Context, pair Pair) ([]*Order, error) {
	return nil, ErrNotSupported
}

func (o *fakeAPI) AllOpenOrders(ctx context.Context) (map[Pair][]*Order, error) {
	return nil, ErrNotSupported
}

func (o *fakeAPI) OrderTrades(ctx context.Context, order *Order) ([]*Trade, error) {
	o.calls++

	return o.fills[order.ID()], nil
}

func (o *fakeAPI) OrderOpen(ctx context.Context, order *Order) (bool, error) {
	o.calls++

	return o.open[order.ID()], nil
}

func (o *fakeAPI) PlaceOrder(ctx context.Context, req OrderRequest) (*Order, error) {
	return nil, ErrNotSupported
}

func (o *fakeAPI) CancelOrder(ctx context.Context, order *Order) error {
	return errors.New("not implemented")
}

func (o *fakeAPI) ModifyOrder(ctx context.Context, order *Order, mod Modification) (*Order, error) {
	return nil, ErrNotSupported
}
