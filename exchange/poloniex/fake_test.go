package poloniex

import (
	"context"
	"errors"
	"net/url"
	"time"
)

type sentCall struct {
	trading bool
	command string
	params  url.Values
}

//
// fakeTransport answers commands from canned payloads. Payloads are keyed by "public/<command>" or
// "trading/<command>"; a key with several payloads serves them in order and then repeats the last.
//
type fakeTransport struct {
	payloads map[string][]string
	failures map[string]error
	calls    []sentCall
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		payloads: make(map[string][]string),
		failures: make(map[string]error),
	}
}

func (o *fakeTransport) on(key string, payloads ...string) *fakeTransport {
	o.payloads[key] = payloads

	return o
}

func (o *fakeTransport) fail(key string, err error) *fakeTransport {
	o.failures[key] = err

	return o
}

func (o *fakeTransport) Public(ctx context.Context, command string, params url.Values) ([]byte, error) {
	return o.answer(false, command, params)
}

func (o *fakeTransport) Trading(ctx context.Context, command string, params url.Values) ([]byte, error) {
	return o.answer(true, command, params)
}

func (o *fakeTransport) answer(trading bool, command string, params url.Values) ([]byte, error) {
	o.calls = append(o.calls, sentCall{trading: trading, command: command, params: params})

	key := "public/" + command
	if trading {
		key = "trading/" + command
	}

	if err, ok := o.failures[key]; ok {
		return nil, err
	}

	queue, ok := o.payloads[key]
	if !ok || len(queue) == 0 {
		return nil, errors.New("no canned payload for " + key)
	}

	body := queue[0]
	if len(queue) > 1 {
		o.payloads[key] = queue[1:]
	}

	return []byte(body), nil
}

func (o *fakeTransport) count(command string) int {
	n := 0

	for _, c := range o.calls {
		if c.command == command {
			n++
		}
	}

	return n
}

func (o *fakeTransport) last() sentCall {
	return o.calls[len(o.calls)-1]
}

type fakeClock struct {
	now time.Time
}

func (o *fakeClock) Now() time.Time { return o.now }
func (o *fakeClock) Sleep(d time.Duration) { o.now = o.now.Add(d) }

//
// testNow is 2020-09-13 12:26:40 UTC.
//
var testNow = time.Unix(1_600_000_000, 0).UTC()

func newTestClient(transport *fakeTransport, opts ...Option) (*Client, *fakeClock) {
	clock := &fakeClock{now: testNow}

	opts = append([]Option{WithTransport(transport), WithClock(clock), WithNonce(1000)}, opts...)

	return New(opts...), clock
}

const tickerPayload = `{
	"BTC_ETH": {"id": 148, "last": "0.05", "lowestAsk": "0.0501", "highestBid": "0.0499", "percentChange": "0.01", "baseVolume": "120.5", "quoteVolume": "2410", "isFrozen": "0"},
	"USDT_BTC": {"id": 121, "last": "10000", "lowestAsk": "10001", "highestBid": "9999", "percentChange": "-0.02", "baseVolume": "5000000", "quoteVolume": "500", "isFrozen": "0"}
}`
