package coinbasepro

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/lukehollenback/bourse/constants"
	"github.com/lukehollenback/bourse/exchange"
	"github.com/shopspring/decimal"

	ws "github.com/gorilla/websocket"
	cb "github.com/preichenberger/go-coinbasepro/v2"
)

//
// TickerEvent is one ticker update pushed by the websocket feed.
//
type TickerEvent struct {
	Pair     exchange.Pair
	Ticker   exchange.Ticker
	Sequence int64
	Time     time.Time
}

//
// Feed streams ticker updates from the Coinbase Pro websocket API. It shares no state with any
// Client.
//
type Feed struct {
	url    string
	dialer *ws.Dialer
	logger *log.Logger
	state  state
}

//
// NewFeed creates a feed against url, or FeedURL when url is empty.
//
func NewFeed(url string) *Feed {
	if url == "" {
		url = FeedURL
	}

	return &Feed{
		url:    url,
		dialer: ws.DefaultDialer,
		logger: log.New(log.Writer(), fmt.Sprintf(constants.LogPrefixFmt, Name), log.Ldate|log.Ltime|log.Lmsgprefix),
		state:  disconnected,
	}
}

func (o *Feed) WithLogger(logger *log.Logger) *Feed {
	o.logger = logger

	return o
}

type rawFeedMessage struct {
	Type      string              `json:"type"`
	ProductID string              `json:"product_id"`
	Sequence  int64               `json:"sequence"`
	Time      time.Time           `json:"time"`
	Price     decimal.NullDecimal `json:"price"`
	Open24h   decimal.NullDecimal `json:"open_24h"`
	Volume24h decimal.NullDecimal `json:"volume_24h"`
	BestBid   decimal.NullDecimal `json:"best_bid"`
	BestAsk   decimal.NullDecimal `json:"best_ask"`
	Message   string              `json:"message"`
	Reason    string              `json:"reason"`
}

func (o rawFeedMessage) event() (TickerEvent, error) {
	pair, err := decodeProduct(o.ProductID)
	if err != nil {
		return TickerEvent{}, err
	}

	return TickerEvent{
		Pair: pair,
		Ticker: exchange.Ticker{
			HighestBid:    o.BestBid.Decimal,
			LowestAsk:     o.BestAsk.Decimal,
			Last:          o.Price.Decimal,
			BaseVolume:    o.Volume24h.Decimal,
			PercentChange: percentChange(o.Open24h.Decimal, o.Price.Decimal),
		},
		Sequence: o.Sequence,
		Time:     o.Time,
	}, nil
}

//
// Watch subscribes to the ticker and heartbeat channels of pairs and calls handler for every ticker
// update, on the caller's goroutine, until ctx is cancelled or the connection fails. It returns
// ctx.Err() after a cancellation.
//
func (o *Feed) Watch(ctx context.Context, pairs []exchange.Pair, handler func(TickerEvent)) error {
	if len(pairs) == 0 {
		return fmt.Errorf("%w: no pairs to watch", exchange.ErrInvalidArgument)
	}

	products := make([]string, len(pairs))

	for i, p := range pairs {
		if err := p.Validate(); err != nil {
			return err
		}

		products[i] = productID(p)
	}

	//
	// Connect to the websocket feed.
	//
	o.state = connecting

	conn, _, err := o.dialer.DialContext(ctx, o.url, nil)
	if err != nil {
		o.state = disconnected

		return fmt.Errorf("could not connect to the %s websocket feed: %w", Venue, err)
	}

	o.state = connected

	//
	// Closing the connection is what unblocks a pending read once ctx is cancelled.
	//
	done := make(chan struct{})
	defer close(done)

	go func() {
		select {
		case <-ctx.Done():
		case <-done:
		}

		_ = conn.Close()
	}()

	defer func() { o.state = disconnected }()

	//
	// Subscribe to heartbeat and ticker messages for every product.
	//
	subscribe := cb.Message{
		Type: "subscribe",
		Channels: []cb.MessageChannel{
			{Name: "heartbeat", ProductIds: products},
			{Name: "ticker", ProductIds: products},
		},
	}

	if err := conn.WriteJSON(subscribe); err != nil {
		return o.readFailure(ctx, err)
	}

	for {
		var msg rawFeedMessage

		if err := conn.ReadJSON(&msg); err != nil {
			return o.readFailure(ctx, err)
		}

		switch msg.Type {
		case "subscriptions":
			if o.state == connected {
				o.state = subscribed

				o.logger.Printf("Subscribed to ticker updates. (Products: %v)", products)
			}

		case "error":
			return exchange.NewAPIError(Venue, "subscribe", fmt.Sprintf("%s %s", msg.Message, msg.Reason))

		case "ticker":
			if o.state != subscribed {
				continue
			}

			event, err := msg.event()
			if err != nil {
				o.logger.Printf("Skipping ticker message. (Product: %s) (Error: %s)", msg.ProductID, err)

				continue
			}

			handler(event)
		}
	}
}

func (o *Feed) readFailure(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	if errors.Is(err, ws.ErrCloseSent) || ws.IsCloseError(err, ws.CloseNormalClosure) {
		return nil
	}

	return fmt.Errorf("%s websocket feed: %w", Venue, err)
}
