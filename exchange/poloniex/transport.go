package poloniex

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/lukehollenback/bourse/exchange"
)

//
// Transport moves a command and its parameters to the venue and returns the raw JSON answer. It
// knows nothing about the venue's error conventions; the Client interprets the payload.
//
type Transport interface {
	//
	// Public issues an unauthenticated command.
	//
	Public(ctx context.Context, command string, params url.Values) ([]byte, error)

	//
	// Trading issues an authenticated command. params already carries the nonce.
	//
	Trading(ctx context.Context, command string, params url.Values) ([]byte, error)
}

//
// HTTPTransport implements Transport against the venue's HTTP endpoints, signing trading requests
// with HMAC-SHA512 of the form body.
//
type HTTPTransport struct {
	apiKey     string
	apiSecret  string
	publicURL  string
	tradingURL string
	httpClient *http.Client
}

func NewHTTPTransport(apiKey string, apiSecret string, httpClient *http.Client) *HTTPTransport {
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	return &HTTPTransport{
		apiKey:     apiKey,
		apiSecret:  apiSecret,
		publicURL:  PublicURL,
		tradingURL: TradingURL,
		httpClient: httpClient,
	}
}

//
// WithBaseURL points the transport at another host, e.g. a test server.
//
func (o *HTTPTransport) WithBaseURL(baseURL string) *HTTPTransport {
	baseURL = strings.TrimSuffix(baseURL, "/")

	o.publicURL = baseURL + "/public"
	o.tradingURL = baseURL + "/tradingApi"

	return o
}

func (o *HTTPTransport) Public(ctx context.Context, command string, params url.Values) ([]byte, error) {
	query := cloneValues(params)
	query.Set("command", command)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.publicURL+"?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}

	return o.do(req)
}

func (o *HTTPTransport) Trading(ctx context.Context, command string, params url.Values) ([]byte, error) {
	form := cloneValues(params)
	form.Set("command", command)

	body := form.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.tradingURL, strings.NewReader(body))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set(KeyHeader, o.apiKey)
	req.Header.Set(SignHeader, Sign(o.apiSecret, body))

	return o.do(req)
}

//
// do sends req and returns the body. A non-2xx answer whose body is a JSON object is handed back as
// is, since the venue reports its own errors that way; anything else becomes an exchange.HTTPError.
//
func (o *HTTPTransport) do(req *http.Request) ([]byte, error) {
	resp, err := o.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if trimmed := bytes.TrimSpace(body); len(trimmed) > 0 && trimmed[0] == '{' {
			return body, nil
		}

		return nil, exchange.NewHTTPError(resp.StatusCode, body)
	}

	return body, nil
}

//
// Sign returns the hex-encoded HMAC-SHA512 of body keyed by secret.
//
func Sign(secret string, body string) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write([]byte(body))

	return hex.EncodeToString(mac.Sum(nil))
}

func cloneValues(v url.Values) url.Values {
	c := make(url.Values, len(v)+1)

	for k, vs := range v {
		c[k] = append([]string(nil), vs...)
	}

	return c
}
