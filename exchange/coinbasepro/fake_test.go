package coinbasepro

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"
)

type fakeReply struct {
	status int
	body   string
	after  string
}

type recorded struct {
	method string
	path   string
	query  url.Values
	body   map[string]string
	header http.Header
}

//
// fakeVenue is a REST stand-in. Replies are queued per "METHOD /path"; a route serves its replies in
// order and then keeps repeating the last one. Unrouted requests get the venue's 404.
//
type fakeVenue struct {
	mu       sync.Mutex
	server   *httptest.Server
	replies  map[string][]fakeReply
	requests []recorded
}

func newFakeVenue(t *testing.T) *fakeVenue {
	v := &fakeVenue{replies: make(map[string][]fakeReply)}
	v.server = httptest.NewServer(http.HandlerFunc(v.serve))

	t.Cleanup(v.server.Close)

	return v
}

func (o *fakeVenue) on(route string, bodies ...string) *fakeVenue {
	for _, b := range bodies {
		o.reply(route, fakeReply{status: http.StatusOK, body: b})
	}

	return o
}

func (o *fakeVenue) reply(route string, r fakeReply) *fakeVenue {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.replies[route] = append(o.replies[route], r)

	return o
}

func (o *fakeVenue) serve(w http.ResponseWriter, r *http.Request) {
	raw, _ := io.ReadAll(r.Body)

	rec := recorded{method: r.Method, path: r.URL.Path, query: r.URL.Query(), header: r.Header.Clone()}
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &rec.body)
	}

	o.mu.Lock()

	o.requests = append(o.requests, rec)

	route := r.Method + " " + r.URL.Path
	queue := o.replies[route]

	var reply fakeReply

	if len(queue) == 0 {
		reply = fakeReply{status: http.StatusNotFound, body: `{"message": "NotFound"}`}
	} else {
		reply = queue[0]
		if len(queue) > 1 {
			o.replies[route] = queue[1:]
		}
	}

	o.mu.Unlock()

	if reply.after != "" {
		w.Header().Set("CB-AFTER", reply.after)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(reply.status)
	_, _ = io.WriteString(w, reply.body)
}

func (o *fakeVenue) count(route string) int {
	o.mu.Lock()
	defer o.mu.Unlock()

	n := 0

	for _, r := range o.requests {
		if r.method+" "+r.path == route {
			n++
		}
	}

	return n
}

func (o *fakeVenue) all() []recorded {
	o.mu.Lock()
	defer o.mu.Unlock()

	return append([]recorded(nil), o.requests...)
}

func (o *fakeVenue) last() recorded {
	all := o.all()

	return all[len(all)-1]
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

func stamp(d time.Duration) string {
	return testNow.Add(d).Format(time.RFC3339Nano)
}

func newTestClient(venue *fakeVenue, opts ...Option) *Client {
	opts = append([]Option{
		WithBaseURL(venue.server.URL),
		WithHTTPClient(venue.server.Client()),
		WithCredentials("key", "c2VjcmV0", "passphrase"),
		WithClock(&fakeClock{now: testNow}),
	}, opts...)

	return New(opts...)
}

const productsPayload = `[
	{"id": "BTC-USD", "base_currency": "BTC", "quote_currency": "USD", "base_increment": "0.00000001", "quote_increment": "0.01"},
	{"id": "ETH-BTC", "base_currency": "ETH", "quote_currency": "BTC", "base_increment": "0.00000001", "quote_increment": "0.00001"},
	{"id": "1INCH-USD", "base_currency": "1INCH", "quote_currency": "USD", "base_increment": "0.01", "quote_increment": "0.001"}
]`
