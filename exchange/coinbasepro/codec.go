package coinbasepro

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lukehollenback/bourse/exchange"
	"github.com/lukehollenback/bourse/structs/partial"
	"github.com/shopspring/decimal"
)

//
// productID renders a pair as a product id, e.g. "ETH/BTC" → "ETH-BTC".
//
func productID(pair exchange.Pair) string {
	return pair.Base + "-" + pair.Quote
}

func decodeProduct(id string) (exchange.Pair, error) {
	base, quote, ok := strings.Cut(id, "-")
	if !ok {
		return exchange.Pair{}, fmt.Errorf("malformed product id %q", id)
	}

	pair := exchange.NewPair(base, quote)
	if err := pair.Validate(); err != nil {
		return exchange.Pair{}, err
	}

	return pair, nil
}

func decodeSide(s string) (exchange.Side, error) {
	switch s {
	case "buy":
		return exchange.Buy, nil
	case "sell":
		return exchange.Sell, nil
	}

	return 0, fmt.Errorf("unrecognised side %q", s)
}

func opposite(side exchange.Side) exchange.Side {
	if side == exchange.Buy {
		return exchange.Sell
	}

	return exchange.Buy
}

//
// tradeID scopes the venue's per-product trade id to its product.
//
func tradeID(pair exchange.Pair, id int64) string {
	return productID(pair) + ":" + strconv.FormatInt(id, 10)
}

type rawCurrency struct {
	ID string `json:"id"`
}

type rawProduct struct {
	ID             string          `json:"id"`
	BaseCurrency   string          `json:"base_currency"`
	QuoteCurrency  string          `json:"quote_currency"`
	BaseIncrement  decimal.Decimal `json:"base_increment"`
	QuoteIncrement decimal.Decimal `json:"quote_increment"`
}

type rawTicker struct {
	Price  decimal.Decimal `json:"price"`
	Bid    decimal.Decimal `json:"bid"`
	Ask    decimal.Decimal `json:"ask"`
	Volume decimal.Decimal `json:"volume"`
}

type rawStats struct {
	Open decimal.Decimal `json:"open"`
	Last decimal.Decimal `json:"last"`
}

//
// ticker combines the ticker and 24 hour stats endpoints. Coinbase Pro does not report a quote
// volume.
//
func (o rawTicker) ticker(stats rawStats) exchange.Ticker {
	return exchange.Ticker{
		HighestBid:    o.Bid,
		LowestAsk:     o.Ask,
		Last:          o.Price,
		BaseVolume:    o.Volume,
		PercentChange: percentChange(stats.Open, stats.Last),
	}
}

//
// rawBook rows are [price, size, order count].
//
type rawBook struct {
	Bids [][]decimal.Decimal `json:"bids"`
	Asks [][]decimal.Decimal `json:"asks"`
}

func (o rawBook) book() (exchange.OrderBook, error) {
	book := exchange.OrderBook{
		Bids: make([]exchange.Bid, 0, len(o.Bids)),
		Asks: make([]exchange.Ask, 0, len(o.Asks)),
	}

	for _, row := range o.Bids {
		if len(row) < 2 {
			return exchange.OrderBook{}, fmt.Errorf("short bid row %v", row)
		}

		book.Bids = append(book.Bids, exchange.Bid{Rate: row[0], Amount: row[1]})
	}

	for _, row := range o.Asks {
		if len(row) < 2 {
			return exchange.OrderBook{}, fmt.Errorf("short ask row %v", row)
		}

		book.Asks = append(book.Asks, exchange.Ask{Rate: row[0], Amount: row[1]})
	}

	return book, nil
}

//
// rawTrade is a public match. Its side is the resting maker order's side.
//
type rawTrade struct {
	Time    time.Time       `json:"time"`
	TradeID int64           `json:"trade_id"`
	Price   decimal.Decimal `json:"price"`
	Size    decimal.Decimal `json:"size"`
	Side    string          `json:"side"`
}

func (o rawTrade) update(pair exchange.Pair) (exchange.TradeUpdate, error) {
	maker, err := decodeSide(o.Side)
	if err != nil {
		return exchange.TradeUpdate{}, err
	}

	return exchange.TradeUpdate{
		ID: tradeID(pair, o.TradeID),
		Fields: exchange.TradeFields{
			Side:      partial.Of(opposite(maker)),
			Pair:      partial.Of(pair),
			Rate:      partial.Of(o.Price),
			Amount:    partial.Of(o.Size),
			Total:     partial.Of(o.Price.Mul(o.Size)),
			Timestamp: partial.Of(o.Time.Unix()),
		},
	}, nil
}

//
// rawFill is one of the account's own fills. Its side is the account's side and the fee is
// charged in the quote currency on top of the total.
//
type rawFill struct {
	TradeID   int64           `json:"trade_id"`
	ProductID string          `json:"product_id"`
	OrderID   string          `json:"order_id"`
	CreatedAt time.Time       `json:"created_at"`
	Price     decimal.Decimal `json:"price"`
	Size      decimal.Decimal `json:"size"`
	Fee       decimal.Decimal `json:"fee"`
	Side      string          `json:"side"`
}

func (o rawFill) update() (exchange.TradeUpdate, error) {
	pair, err := decodeProduct(o.ProductID)
	if err != nil {
		return exchange.TradeUpdate{}, err
	}

	side, err := decodeSide(o.Side)
	if err != nil {
		return exchange.TradeUpdate{}, err
	}

	u := exchange.TradeUpdate{
		ID: tradeID(pair, o.TradeID),
		Fields: exchange.TradeFields{
			Side:      partial.Of(side),
			Pair:      partial.Of(pair),
			Rate:      partial.Of(o.Price),
			Amount:    partial.Of(o.Size),
			Total:     partial.Of(o.Price.Mul(o.Size)),
			Fee:       partial.Of(o.Fee),
			Timestamp: partial.Of(o.CreatedAt.Unix()),
		},
	}

	if o.OrderID != "" {
		u.OrderID = o.OrderID
		u.Order = exchange.OrderFields{
			Side:    partial.Of(side),
			Subtype: partial.Of(exchange.Spot),
			Pair:    partial.Of(pair),
		}
	}

	return u, nil
}

type rawOrder struct {
	ID        string              `json:"id"`
	ProductID string              `json:"product_id"`
	Side      string              `json:"side"`
	Price     decimal.NullDecimal `json:"price"`
	Size      decimal.NullDecimal `json:"size"`
}

//
// update describes a listed order. Market orders carry no price, so their rate and total stay
// unknown.
//
func (o rawOrder) update() (exchange.Pair, exchange.OrderUpdate, error) {
	pair, err := decodeProduct(o.ProductID)
	if err != nil {
		return exchange.Pair{}, exchange.OrderUpdate{}, err
	}

	side, err := decodeSide(o.Side)
	if err != nil {
		return exchange.Pair{}, exchange.OrderUpdate{}, err
	}

	fields := exchange.OrderFields{
		Side:    partial.Of(side),
		Subtype: partial.Of(exchange.Spot),
		Pair:    partial.Of(pair),
	}

	if o.Price.Valid {
		fields.Rate = partial.Of(o.Price.Decimal)
	}

	if o.Size.Valid {
		fields.Amount = partial.Of(o.Size.Decimal)
	}

	if o.Price.Valid && o.Size.Valid {
		fields.Total = partial.Of(o.Price.Decimal.Mul(o.Size.Decimal))
	}

	return pair, exchange.OrderUpdate{ID: o.ID, Fields: fields}, nil
}

type rawAccount struct {
	Currency  string          `json:"currency"`
	Balance   decimal.Decimal `json:"balance"`
	Available decimal.Decimal `json:"available"`
	Hold      decimal.Decimal `json:"hold"`
}

func (o rawAccount) amount(availability exchange.Availability) (decimal.Decimal, error) {
	switch availability {
	case exchange.AllFunds:
		return o.Balance, nil
	case exchange.Available:
		return o.Available, nil
	case exchange.OnOrder:
		return o.Hold, nil
	}

	return decimal.Zero, fmt.Errorf("%w: availability %d", exchange.ErrInvalidArgument, availability)
}

func formatDecimal(d decimal.Decimal) string {
	return d.String()
}
