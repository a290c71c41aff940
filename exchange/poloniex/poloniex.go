package poloniex

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/lukehollenback/bourse/constants"
	"github.com/lukehollenback/bourse/exchange"
	"github.com/shopspring/decimal"
)

//
// Client implements the exchange.API interface for Poloniex. It interns every trade and order it
// sees, keeps trade history it has fetched for the life of the process, and optionally reuses
// volatile snapshots through its live cache.
//
// A Client is not safe for concurrent use.
//
type Client struct {
	transport Transport
	logger    *log.Logger
	logCalls  bool
	confirmer exchange.Confirmer
	clock     exchange.Clock
	throttle  *exchange.Throttle
	nonce     *exchange.Nonce

	apiKey     string
	apiSecret  string
	httpClient *http.Client
	interval   time.Duration
	nonceSeed  *int64

	pool *exchange.EntityPool
	live *exchange.LiveCache

	currencies     []string
	publicHistory  *exchange.History[exchange.Pair, *exchange.Trade]
	privateHistory *exchange.History[exchange.Pair, *exchange.Trade]

	tickers     *exchange.LiveSlot[struct{}, map[exchange.Pair]exchange.Ticker]
	books       *exchange.LiveSlot[struct{}, bookSnapshot]
	balances    *exchange.LiveSlot[exchange.BalanceQuery, map[string]decimal.Decimal]
	openOrders  *exchange.LiveSlot[struct{}, map[exchange.Pair][]*exchange.Order]
	orderTrades *exchange.LiveSlot[string, []*exchange.Trade]
}

type bookSnapshot struct {
	depth int
	books map[exchange.Pair]exchange.OrderBook
}

//
// Option configures a Client.
//
type Option func(*Client)

//
// WithCredentials sets the API key and secret used to sign trading requests.
//
func WithCredentials(key string, secret string) Option {
	return func(o *Client) {
		o.apiKey = key
		o.apiSecret = secret
	}
}

//
// WithHTTPClient sets the HTTP client used by the default transport.
//
func WithHTTPClient(httpClient *http.Client) Option {
	return func(o *Client) {
		o.httpClient = httpClient
	}
}

//
// WithTransport replaces the HTTP transport entirely.
//
func WithTransport(transport Transport) Option {
	return func(o *Client) {
		o.transport = transport
	}
}

func WithLogger(logger *log.Logger) Option {
	return func(o *Client) {
		o.logger = logger
	}
}

//
// WithCallLogging logs every command sent and every payload received.
//
func WithCallLogging(enabled bool) Option {
	return func(o *Client) {
		o.logCalls = enabled
	}
}

//
// WithConfirmer makes every trading request wait for approval from confirmer.
//
func WithConfirmer(confirmer exchange.Confirmer) Option {
	return func(o *Client) {
		o.confirmer = confirmer
	}
}

//
// WithThrottleInterval overrides the minimum spacing between request starts.
//
func WithThrottleInterval(interval time.Duration) Option {
	return func(o *Client) {
		o.interval = interval
	}
}

//
// WithClock replaces the wall clock, for both throttling and default history windows.
//
func WithClock(clock exchange.Clock) Option {
	return func(o *Client) {
		o.clock = clock
	}
}

//
// WithNonce seeds the trading nonce. By default it starts at the current unix time.
//
func WithNonce(seed int64) Option {
	return func(o *Client) {
		o.nonceSeed = &seed
	}
}

func New(opts ...Option) *Client {
	o := &Client{
		interval: RequestInterval,
	}

	for _, opt := range opts {
		opt(o)
	}

	if o.clock == nil {
		o.clock = exchange.SystemClock()
	}

	if o.logger == nil {
		o.logger = log.New(log.Writer(), fmt.Sprintf(constants.LogPrefixFmt, Name), log.Ldate|log.Ltime|log.Lmsgprefix)
	}

	if o.transport == nil {
		o.transport = NewHTTPTransport(o.apiKey, o.apiSecret, o.httpClient)
	}

	seed := o.clock.Now().Unix()
	if o.nonceSeed != nil {
		seed = *o.nonceSeed
	}

	o.nonce = exchange.NewNonce(seed)
	o.throttle = exchange.NewThrottle(o.interval, o.clock)

	o.pool = exchange.NewEntityPool(o)
	o.live = exchange.NewLiveCache()

	o.publicHistory = exchange.NewHistory[exchange.Pair, *exchange.Trade]()
	o.privateHistory = exchange.NewHistory[exchange.Pair, *exchange.Trade]()

	o.tickers = exchange.NewLiveSlot[struct{}, map[exchange.Pair]exchange.Ticker](o.live)
	o.books = exchange.NewLiveSlot[struct{}, bookSnapshot](o.live)
	o.balances = exchange.NewLiveSlot[exchange.BalanceQuery, map[string]decimal.Decimal](o.live)
	o.openOrders = exchange.NewLiveSlot[struct{}, map[exchange.Pair][]*exchange.Order](o.live)
	o.orderTrades = exchange.NewLiveSlot[string, []*exchange.Trade](o.live)

	return o
}

func (o *Client) Name() string {
	return Venue
}

func (o *Client) EnableLiveCache() {
	o.live.Enable()
}

func (o *Client) DisableLiveCache() {
	o.live.Disable()
}

func (o *Client) ClearLiveCache() {
	o.live.Clear()
}

func (o *Client) LiveCacheEnabled() bool {
	return o.live.Enabled()
}

//
// Throttle exposes the request throttle, mainly so callers can inspect recent request starts.
//
func (o *Client) Throttle() *exchange.Throttle {
	return o.throttle
}

//
// Nonce returns the nonce the next trading request will carry.
//
func (o *Client) Nonce() int64 {
	return o.nonce.Peek()
}

//
// public sends an unauthenticated command and decodes its payload into v.
//
func (o *Client) public(ctx context.Context, command string, params url.Values, v any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	o.throttle.Wait()

	if o.logCalls {
		o.logger.Printf("Calling public %s(%s).", command, params.Encode())
	}

	body, err := o.transport.Public(ctx, command, params)
	if err != nil {
		return fmt.Errorf("%s %s: %w", Venue, command, err)
	}

	if o.logCalls {
		o.logger.Printf("Received %s", body)
	}

	return decode(command, body, v)
}

//
// trading sends an authenticated command and decodes its payload into v. The call is confirmed
// first, if a confirmer is set, so a decline costs neither a nonce nor any I/O. Once confirmed the
// nonce advances whether or not the request succeeds.
//
func (o *Client) trading(ctx context.Context, command string, params url.Values, v any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := exchange.Confirm(ctx, o.confirmer, exchange.Call{Venue: Venue, Command: command, Params: params})
	if err != nil {
		return err
	}

	signed := cloneValues(params)
	signed.Set("nonce", strconv.FormatInt(o.nonce.Next(), 10))

	o.throttle.Wait()

	if o.logCalls {
		o.logger.Printf("Calling trading %s(%s).", command, signed.Encode())
	}

	body, err := o.transport.Trading(ctx, command, signed)
	if err != nil {
		return fmt.Errorf("%s %s: %w", Venue, command, err)
	}

	if o.logCalls {
		o.logger.Printf("Received %s", body)
	}

	return decode(command, body, v)
}

//
// now is the current time per the client's clock.
//
func (o *Client) now() time.Time {
	return o.clock.Now()
}

//
// checkKnownPair fails fast when the live cache already holds the venue's pair list and pair is not
// in it. Without such a snapshot the venue is left to reject the pair itself.
//
func (o *Client) checkKnownPair(pair exchange.Pair) error {
	if err := pair.Validate(); err != nil {
		return err
	}

	if tickers, ok := o.tickers.Peek(struct{}{}); ok {
		if _, known := tickers[pair]; !known {
			return fmt.Errorf("%w: %s", exchange.ErrUnknownPair, pair)
		}
	}

	return nil
}
