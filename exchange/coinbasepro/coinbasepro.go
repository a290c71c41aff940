package coinbasepro

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/lukehollenback/bourse/constants"
	"github.com/lukehollenback/bourse/exchange"
	"github.com/shopspring/decimal"

	cb "github.com/preichenberger/go-coinbasepro/v2"
)

//
// Client implements the exchange.API interface for Coinbase Pro on top of the go-coinbasepro SDK,
// which signs each request. Like every facade it interns trades and orders, keeps fetched trade
// history for the life of the process and reuses volatile snapshots while its live cache is
// enabled.
//
// Coinbase Pro has no margin or lending accounts and cannot amend a resting order, so those
// operations report exchange.ErrNotSupported.
//
// A Client is not safe for concurrent use.
//
type Client struct {
	sdk       *cb.Client
	logger    *log.Logger
	logCalls  bool
	confirmer exchange.Confirmer
	clock     exchange.Clock
	throttle  *exchange.Throttle
	newID     func() string

	baseURL    string
	apiKey     string
	apiSecret  string
	passphrase string
	httpClient *http.Client
	interval   time.Duration

	pool *exchange.EntityPool
	live *exchange.LiveCache

	currencies     []string
	publicHistory  *exchange.History[exchange.Pair, *exchange.Trade]
	privateHistory *exchange.History[exchange.Pair, *exchange.Trade]

	products    *exchange.LiveSlot[struct{}, map[exchange.Pair]exchange.PairInfo]
	tickers     *exchange.LiveSlot[exchange.Pair, exchange.Ticker]
	books       *exchange.LiveSlot[exchange.Pair, exchange.OrderBook]
	accounts    *exchange.LiveSlot[struct{}, []rawAccount]
	openOrders  *exchange.LiveSlot[struct{}, map[exchange.Pair][]*exchange.Order]
	orderTrades *exchange.LiveSlot[string, []*exchange.Trade]
}

type Option func(*Client)

//
// WithCredentials sets the API key, base64 secret and passphrase used to sign requests.
//
func WithCredentials(key string, secret string, passphrase string) Option {
	return func(o *Client) {
		o.apiKey = key
		o.apiSecret = secret
		o.passphrase = passphrase
	}
}

//
// WithBaseURL points the client at another REST host, e.g. the sandbox or a test server.
//
func WithBaseURL(baseURL string) Option {
	return func(o *Client) {
		o.baseURL = baseURL
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(o *Client) {
		o.httpClient = httpClient
	}
}

func WithLogger(logger *log.Logger) Option {
	return func(o *Client) {
		o.logger = logger
	}
}

//
// WithCallLogging logs every request sent and the status it came back with.
//
func WithCallLogging(enabled bool) Option {
	return func(o *Client) {
		o.logCalls = enabled
	}
}

//
// WithConfirmer makes every authenticated request wait for approval from confirmer.
//
func WithConfirmer(confirmer exchange.Confirmer) Option {
	return func(o *Client) {
		o.confirmer = confirmer
	}
}

func WithThrottleInterval(interval time.Duration) Option {
	return func(o *Client) {
		o.interval = interval
	}
}

func WithClock(clock exchange.Clock) Option {
	return func(o *Client) {
		o.clock = clock
	}
}

//
// WithClientOrderIDs replaces the generator of the client order ids attached to placed orders. By
// default each order gets a random UUID.
//
func WithClientOrderIDs(newID func() string) Option {
	return func(o *Client) {
		o.newID = newID
	}
}

func New(opts ...Option) *Client {
	o := &Client{
		baseURL:  BaseURL,
		interval: RequestInterval,
		newID:    uuid.NewString,
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

	o.sdk = cb.NewClient()
	o.sdk.UpdateConfig(&cb.ClientConfig{
		BaseURL:    o.baseURL,
		Key:        o.apiKey,
		Passphrase: o.passphrase,
		Secret:     o.apiSecret,
	})

	if o.httpClient != nil {
		o.sdk.HTTPClient = o.httpClient
	}

	o.throttle = exchange.NewThrottle(o.interval, o.clock)

	o.pool = exchange.NewEntityPool(o)
	o.live = exchange.NewLiveCache()

	o.publicHistory = exchange.NewHistory[exchange.Pair, *exchange.Trade]()
	o.privateHistory = exchange.NewHistory[exchange.Pair, *exchange.Trade]()

	o.products = exchange.NewLiveSlot[struct{}, map[exchange.Pair]exchange.PairInfo](o.live)
	o.tickers = exchange.NewLiveSlot[exchange.Pair, exchange.Ticker](o.live)
	o.books = exchange.NewLiveSlot[exchange.Pair, exchange.OrderBook](o.live)
	o.accounts = exchange.NewLiveSlot[struct{}, []rawAccount](o.live)
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

func (o *Client) Throttle() *exchange.Throttle {
	return o.throttle
}

//
// request describes one REST call. notFound, when set, is the error a 404 answer translates to.
//
type request struct {
	method   string
	path     string
	query    url.Values
	body     map[string]string
	private  bool
	notFound error
}

func (o request) target() string {
	if len(o.query) == 0 {
		return o.path
	}

	return o.path + "?" + o.query.Encode()
}

func (o request) command() string {
	return o.method + " " + o.path
}

//
// params flattens the query and body into the form shown to a confirmer.
//
func (o request) params() url.Values {
	params := url.Values{}

	for k, vs := range o.query {
		params[k] = append([]string(nil), vs...)
	}

	for k, v := range o.body {
		params.Set(k, v)
	}

	return params
}

//
// call sends req and decodes the answer into v, returning the response headers for pagination.
// Authenticated calls are confirmed first, so a decline costs no I/O.
//
func (o *Client) call(ctx context.Context, req request, v any) (http.Header, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if req.private {
		err := exchange.Confirm(ctx, o.confirmer, exchange.Call{Venue: Venue, Command: req.command(), Params: req.params()})
		if err != nil {
			return nil, err
		}
	}

	o.throttle.Wait()

	if o.logCalls {
		o.logger.Printf("Calling %s %s.", req.method, req.target())
	}

	//
	// A nil map must reach the SDK as a nil interface or it sends a "null" body.
	//
	var body any
	if req.body != nil {
		body = req.body
	}

	res, err := o.sdk.Request(req.method, req.target(), body, v)

	if o.logCalls && res != nil {
		o.logger.Printf("Received %s for %s %s.", res.Status, req.method, req.target())
	}

	if err != nil {
		return nil, translate(req, res, err)
	}

	return res.Header, nil
}

//
// translate turns an SDK failure into this module's errors. The venue's own JSON errors become
// APIErrors (or the request's notFound error on a 404); other non-200 answers become HTTPErrors.
//
func translate(req request, res *http.Response, err error) error {
	var apiErr cb.Error

	if errors.As(err, &apiErr) {
		if res != nil && res.StatusCode == http.StatusNotFound && req.notFound != nil {
			return fmt.Errorf("%w: %s %s", req.notFound, req.command(), apiErr.Message)
		}

		return exchange.NewAPIError(Venue, req.command(), apiErr.Message)
	}

	if res != nil && res.StatusCode != http.StatusOK {
		return exchange.NewHTTPError(res.StatusCode, []byte(err.Error()))
	}

	return fmt.Errorf("%s %s: %w", Venue, req.command(), err)
}

//
// paginate walks a listing that the venue serves newest first, handing each page to visit until
// visit returns false or there is no older page. When pages is positive, needing more than that many
// pages fails with exchange.ErrHistoryTruncated.
//
func paginate[T any](ctx context.Context, o *Client, req request, pages int, visit func([]T) bool) error {
	after := ""

	for page := 0; ; page++ {
		if pages > 0 && page == pages {
			return fmt.Errorf("%w: %s needs more than %d pages, narrow the window", exchange.ErrHistoryTruncated, req.command(), pages)
		}

		r := req
		r.query = url.Values{}

		for k, vs := range req.query {
			r.query[k] = vs
		}

		r.query.Set("limit", strconv.Itoa(PageSize))

		if after != "" {
			r.query.Set("after", after)
		}

		var items []T

		header, err := o.call(ctx, r, &items)
		if err != nil {
			return err
		}

		if !visit(items) || len(items) == 0 {
			return nil
		}

		if after = header.Get(afterHeader); after == "" {
			return nil
		}
	}
}

//
// checkKnownPair fails fast when the live cache already holds the product list and pair is not in
// it.
//
func (o *Client) checkKnownPair(pair exchange.Pair) error {
	if err := pair.Validate(); err != nil {
		return err
	}

	if products, ok := o.products.Peek(struct{}{}); ok {
		if _, known := products[pair]; !known {
			return fmt.Errorf("%w: %s", exchange.ErrUnknownPair, pair)
		}
	}

	return nil
}

func (o *Client) now() time.Time {
	return o.clock.Now()
}

func percentChange(open decimal.Decimal, last decimal.Decimal) decimal.Decimal {
	if open.IsZero() {
		return decimal.Zero
	}

	return last.Sub(open).Div(open)
}
