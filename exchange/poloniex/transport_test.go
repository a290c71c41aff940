package poloniex

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/lukehollenback/bourse/exchange"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSign(t *testing.T) {
	mac := hmac.New(sha512.New, []byte("secret"))
	mac.Write([]byte("command=returnBalances&nonce=1"))

	assert.Equal(t, hex.EncodeToString(mac.Sum(nil)), Sign("secret", "command=returnBalances&nonce=1"))
	assert.Len(t, Sign("secret", ""), 128)
}

func TestHTTPTransportPublic(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/public", r.URL.Path)
		assert.Equal(t, "returnOrderBook", r.URL.Query().Get("command"))
		assert.Equal(t, "BTC_ETH", r.URL.Query().Get("currencyPair"))
		assert.Empty(t, r.Header.Get(SignHeader))

		_, _ = io.WriteString(w, `{"asks": [], "bids": []}`)
	}))
	defer server.Close()

	transport := NewHTTPTransport("key", "secret", server.Client()).WithBaseURL(server.URL + "/")

	params := url.Values{"currencyPair": {"BTC_ETH"}}

	body, err := transport.Public(context.Background(), "returnOrderBook", params)
	require.NoError(t, err)
	assert.JSONEq(t, `{"asks": [], "bids": []}`, string(body))
	assert.Empty(t, params.Get("command"), "caller parameters are left untouched")
}

func TestHTTPTransportTradingIsSigned(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)

		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/tradingApi", r.URL.Path)
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		assert.Equal(t, "key", r.Header.Get(KeyHeader))
		assert.Equal(t, Sign("secret", string(raw)), r.Header.Get(SignHeader))

		form, err := url.ParseQuery(string(raw))
		require.NoError(t, err)
		assert.Equal(t, "returnBalances", form.Get("command"))
		assert.Equal(t, "7", form.Get("nonce"))

		_, _ = io.WriteString(w, `{"BTC": "1.0"}`)
	}))
	defer server.Close()

	transport := NewHTTPTransport("key", "secret", server.Client()).WithBaseURL(server.URL)

	body, err := transport.Trading(context.Background(), "returnBalances", url.Values{"nonce": {"7"}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"BTC": "1.0"}`, string(body))
}

func TestHTTPTransportErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("command") {
		case "returnTicker":
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = io.WriteString(w, ` {"error": "Invalid currency pair."}`)

		default:
			w.WriteHeader(http.StatusBadGateway)
			_, _ = io.WriteString(w, "<html>bad gateway</html>")
		}
	}))
	defer server.Close()

	transport := NewHTTPTransport("", "", server.Client()).WithBaseURL(server.URL)

	//
	// The venue's own JSON errors pass through for the client to translate.
	//
	body, err := transport.Public(context.Background(), "returnTicker", nil)
	require.NoError(t, err)
	assert.Contains(t, string(body), "Invalid currency pair.")

	_, err = transport.Public(context.Background(), "returnCurrencies", nil)

	var httpErr *exchange.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusBadGateway, httpErr.StatusCode())
}

func TestClientOverHTTP(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = io.WriteString(w, `{"error": "Invalid currency pair."}`)
	}))
	defer server.Close()

	transport := NewHTTPTransport("", "", server.Client()).WithBaseURL(server.URL)
	client := New(WithTransport(transport), WithClock(&fakeClock{now: testNow}))

	_, err := client.OrderBook(context.Background(), exchange.MustParsePair("ZZZ/BTC"), 5)
	assert.ErrorIs(t, err, exchange.ErrUnknownPair)
}
