package poloniex

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/lukehollenback/bourse/constants"
	"github.com/lukehollenback/bourse/exchange"
	"github.com/lukehollenback/bourse/structs/partial"
	"github.com/shopspring/decimal"
)

//
// The venue writes pairs quote first ("BTC_ETH" is ETH priced in BTC).
//
func encodePair(p exchange.Pair) string {
	return p.Quote + "_" + p.Base
}

func decodePair(s string) (exchange.Pair, error) {
	quote, base, ok := strings.Cut(s, "_")
	if !ok {
		return exchange.Pair{}, fmt.Errorf("malformed venue pair %q", s)
	}

	p := exchange.NewPair(base, quote)

	if err := p.Validate(); err != nil {
		return exchange.Pair{}, err
	}

	return p, nil
}

func parseTimestamp(s string) (int64, error) {
	t, err := time.ParseInLocation(timestampLayout, s, time.UTC)
	if err != nil {
		return 0, err
	}

	return t.Unix(), nil
}

func decodeSide(s string) (exchange.Side, error) {
	switch s {
	case "buy":
		return exchange.Buy, nil
	case "sell":
		return exchange.Sell, nil
	}

	return 0, fmt.Errorf("unknown trade type %q", s)
}

func decodeCategory(s string) (exchange.Subtype, error) {
	switch s {
	case "exchange":
		return exchange.Spot, nil
	case "margin", "marginTrade", "settlement":
		return exchange.Margin, nil
	case "lending":
		return exchange.Lending, nil
	}

	return 0, fmt.Errorf("unknown trade category %q", s)
}

func formatDecimal(d decimal.Decimal) string {
	return d.String()
}

type rawTicker struct {
	Last          decimal.Decimal `json:"last"`
	LowestAsk     decimal.Decimal `json:"lowestAsk"`
	HighestBid    decimal.Decimal `json:"highestBid"`
	PercentChange decimal.Decimal `json:"percentChange"`
	BaseVolume    decimal.Decimal `json:"baseVolume"`
	QuoteVolume   decimal.Decimal `json:"quoteVolume"`
}

//
// ticker converts the venue's view of a market. The venue's "base" is the first currency of its
// pair code, which is our quote, so the two volumes swap places.
//
func (o rawTicker) ticker() exchange.Ticker {
	return exchange.Ticker{
		HighestBid:    o.HighestBid,
		LowestAsk:     o.LowestAsk,
		Last:          o.Last,
		BaseVolume:    o.QuoteVolume,
		QuoteVolume:   o.BaseVolume,
		PercentChange: o.PercentChange,
	}
}

type rawBook struct {
	Asks [][2]decimal.Decimal `json:"asks"`
	Bids [][2]decimal.Decimal `json:"bids"`
}

func (o rawBook) book() exchange.OrderBook {
	book := exchange.OrderBook{
		Bids: make([]exchange.Bid, len(o.Bids)),
		Asks: make([]exchange.Ask, len(o.Asks)),
	}

	for i, b := range o.Bids {
		book.Bids[i] = exchange.Bid{Rate: b[0], Amount: b[1]}
	}

	for i, a := range o.Asks {
		book.Asks[i] = exchange.Ask{Rate: a[0], Amount: a[1]}
	}

	return book
}

//
// rawTrade covers public history, private history and order trades. Fields a given command does not
// send are left empty.
//
type rawTrade struct {
	GlobalTradeID json.Number         `json:"globalTradeID"`
	Date          string              `json:"date"`
	Type          string              `json:"type"`
	Rate          decimal.Decimal     `json:"rate"`
	Amount        decimal.Decimal     `json:"amount"`
	Total         decimal.Decimal     `json:"total"`
	Fee           decimal.NullDecimal `json:"fee"`
	OrderNumber   json.Number         `json:"orderNumber"`
	Category      string              `json:"category"`
	CurrencyPair  string              `json:"currencyPair"`
}

//
// fields converts a venue trade on pair into a record. The venue quotes fees as a fraction of the
// trade; the fee is charged on the amount and rounded up to the venue's precision, and total is
// reported net of the same fraction.
//
func (o rawTrade) fields(pair exchange.Pair) (exchange.TradeFields, error) {
	side, err := decodeSide(o.Type)
	if err != nil {
		return exchange.TradeFields{}, err
	}

	ts, err := parseTimestamp(o.Date)
	if err != nil {
		return exchange.TradeFields{}, err
	}

	f := exchange.TradeFields{
		Side:      partial.Of(side),
		Pair:      partial.Of(pair),
		Rate:      partial.Of(o.Rate),
		Amount:    partial.Of(o.Amount),
		Total:     partial.Of(o.Total),
		Timestamp: partial.Of(ts),
	}

	if o.Fee.Valid {
		f.Fee = partial.Of(constants.CeilToULP(o.Amount.Mul(o.Fee.Decimal), ULP))
		f.Total = partial.Of(o.Total.Sub(constants.CeilToULP(o.Total.Mul(o.Fee.Decimal), ULP)))
	}

	return f, nil
}

type rawOrder struct {
	OrderNumber json.Number     `json:"orderNumber"`
	Type        string          `json:"type"`
	Rate        decimal.Decimal `json:"rate"`
	Amount      decimal.Decimal `json:"amount"`
	Total       decimal.Decimal `json:"total"`
	Margin      int             `json:"margin"`
}

func (o rawOrder) fields(pair exchange.Pair) (exchange.OrderFields, error) {
	side, err := decodeSide(o.Type)
	if err != nil {
		return exchange.OrderFields{}, err
	}

	subtype := exchange.Spot
	if o.Margin != 0 {
		subtype = exchange.Margin
	}

	return exchange.OrderFields{
		Side:    partial.Of(side),
		Subtype: partial.Of(subtype),
		Pair:    partial.Of(pair),
		Rate:    partial.Of(o.Rate),
		Amount:  partial.Of(o.Amount),
		Total:   partial.Of(o.Total),
	}, nil
}

type rawPlaced struct {
	OrderNumber json.Number `json:"orderNumber"`
}

type rawBalance struct {
	Available decimal.Decimal `json:"available"`
	OnOrders  decimal.Decimal `json:"onOrders"`
}
