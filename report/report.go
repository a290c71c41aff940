package report

import (
	"encoding/csv"
	"io"
	"time"

	"github.com/lukehollenback/bourse/exchange"
	"github.com/shopspring/decimal"
)

const (
	TimestampKey = "Timestamp"
	TradeKey     = "Trade"
	OrderKey     = "Order"
	PairKey      = "Pair"
	SideKey      = "Side"
	RateKey      = "Rate"
	AmountKey    = "Amount"
	TotalKey     = "Total"
	FeeKey       = "Fee"
)

//
// Header is the first row of every trade report.
//
var Header = []string{TimestampKey, TradeKey, OrderKey, PairKey, SideKey, RateKey, AmountKey, TotalKey, FeeKey}

//
// Writer writes trades as CSV rows, one per trade, leaving a cell empty wherever the trade's field
// is not known yet.
//
type Writer struct {
	writer        *csv.Writer
	headerWritten bool
}

func NewWriter(out io.Writer) *Writer {
	return &Writer{writer: csv.NewWriter(out)}
}

//
// WriteTrades writes the header row on first use and then one row per trade.
//
func (o *Writer) WriteTrades(trades []*exchange.Trade) error {
	if !o.headerWritten {
		if err := o.writer.Write(Header); err != nil {
			return err
		}

		o.headerWritten = true
	}

	for _, t := range trades {
		if err := o.writer.Write(row(t)); err != nil {
			return err
		}
	}

	return nil
}

//
// Flush writes any buffered rows to the underlying writer.
//
func (o *Writer) Flush() error {
	o.writer.Flush()

	return o.writer.Error()
}

func row(t *exchange.Trade) []string {
	r := make([]string, len(Header))

	r[1] = t.ID()

	if ts, ok := t.LookupTimestamp(); ok {
		r[0] = ts.Format(time.RFC3339)
	}

	if order, ok := t.LookupOrder(); ok {
		r[2] = order.ID()
	}

	if pair, ok := t.LookupPair(); ok {
		r[3] = pair.String()
	}

	if side, ok := t.LookupSide(); ok {
		r[4] = side.String()
	}

	r[5] = cell(t.LookupRate())
	r[6] = cell(t.LookupAmount())
	r[7] = cell(t.LookupTotal())
	r[8] = cell(t.LookupFee())

	return r
}

func cell(d decimal.Decimal, ok bool) string {
	if !ok {
		return ""
	}

	return d.String()
}

//
// WriteTrades is a convenience for writing a single batch of trades and flushing.
//
func WriteTrades(out io.Writer, trades []*exchange.Trade) error {
	w := NewWriter(out)

	if err := w.WriteTrades(trades); err != nil {
		return err
	}

	return w.Flush()
}
