package exchange

import (
	"context"

	"github.com/shopspring/decimal"
)

//
// API generically provides an interface to a venue facade. A facade owns its entity pool, caches,
// throttle and nonce, and normalizes the venue's responses into the types of this package.
//
// Facades are not safe for concurrent use. Every operation blocks until the venue has answered (or
// the request has failed), and a failed operation leaves every cache exactly as it was.
//
type API interface {
	Name() string

	//
	// EnableLiveCache starts reusing volatile snapshots (tickers, books, balances, open orders) across
	// calls. Enabling an enabled cache keeps its contents.
	//
	EnableLiveCache()

	//
	// DisableLiveCache discards every live snapshot and stops caching them.
	//
	DisableLiveCache()

	//
	// ClearLiveCache discards every live snapshot but leaves the cache enabled.
	//
	ClearLiveCache()

	LiveCacheEnabled() bool

	Currencies(ctx context.Context) ([]string, error)
	Pairs(ctx context.Context) (map[Pair]PairInfo, error)
	Ticker(ctx context.Context, pair Pair) (Ticker, error)
	Tickers(ctx context.Context) (map[Pair]Ticker, error)
	OrderBook(ctx context.Context, pair Pair, depth int) (OrderBook, error)
	OrderBooks(ctx context.Context, depth int) (map[Pair]OrderBook, error)

	//
	// PublicTradeHistory returns every market trade for pair within window, oldest first.
	//
	PublicTradeHistory(ctx context.Context, pair Pair, window Window) ([]*Trade, error)

	//
	// TradeHistory returns the account's own trades for pair within window, oldest first.
	//
	TradeHistory(ctx context.Context, pair Pair, window Window) ([]*Trade, error)

	//
	// Balance returns the balance of a single currency. A currency the venue reports nothing for has a
	// zero balance.
	//
	Balance(ctx context.Context, currency string, query BalanceQuery) (decimal.Decimal, error)

	//
	// Balances returns every nonzero balance matching query.
	//
	Balances(ctx context.Context, query BalanceQuery) (map[string]decimal.Decimal, error)

	OpenOrders(ctx context.Context, pair Pair) ([]*Order, error)
	AllOpenOrders(ctx context.Context) (map[Pair][]*Order, error)

	//
	// OrderTrades returns the trades that filled order. An order the venue does not know yields no
	// trades rather than an error.
	//
	OrderTrades(ctx context.Context, order *Order) ([]*Trade, error)

	//
	// OrderOpen reports whether order is currently resting on the book.
	//
	OrderOpen(ctx context.Context, order *Order) (bool, error)

	PlaceOrder(ctx context.Context, req OrderRequest) (*Order, error)
	CancelOrder(ctx context.Context, order *Order) error

	//
	// ModifyOrder changes a resting order's rate and/or amount. Venues that replace the order return
	// the replacement; otherwise the original handle is returned.
	//
	ModifyOrder(ctx context.Context, order *Order, mod Modification) (*Order, error)
}
