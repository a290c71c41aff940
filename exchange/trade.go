package exchange

import (
	"sort"
	"time"

	"github.com/lukehollenback/bourse/structs/partial"
	"github.com/shopspring/decimal"
)

//
// TradeFields is the partially known record behind a Trade. Venues fill in whatever a response
// carries; unknown fields are left as the zero partial.Value.
//
type TradeFields struct {
	Side      partial.Value[Side]
	Pair      partial.Value[Pair]
	Rate      partial.Value[decimal.Decimal]
	Amount    partial.Value[decimal.Decimal]
	Total     partial.Value[decimal.Decimal]
	Fee       partial.Value[decimal.Decimal]
	Timestamp partial.Value[int64]
	Order     partial.Value[*Order]
}

func (o *TradeFields) merge(u TradeFields) {
	o.Side.Merge(u.Side)
	o.Pair.Merge(u.Pair)
	o.Rate.Merge(u.Rate)
	o.Amount.Merge(u.Amount)
	o.Total.Merge(u.Total)
	o.Fee.Merge(u.Fee)
	o.Timestamp.Merge(u.Timestamp)
	o.Order.Merge(u.Order)
}

//
// Trade is an interned handle on a single executed trade. Two handles for the same venue trade are
// the same pointer. Fields are filled in as the owning facade learns them; the Lookup accessors
// report whether a field is known and the plain accessors fail with ErrInsufficientInformation when
// it is not.
//
type Trade struct {
	id     string
	fields TradeFields
}

func (o *Trade) ID() string {
	return o.id
}

//
// Equal reports whether both handles refer to the same venue trade.
//
func (o *Trade) Equal(other *Trade) bool {
	return o != nil && other != nil && o.id == other.id
}

func (o *Trade) LookupSide() (Side, bool) { return o.fields.Side.Get() }
func (o *Trade) LookupPair() (Pair, bool) { return o.fields.Pair.Get() }
func (o *Trade) LookupRate() (decimal.Decimal, bool) { return o.fields.Rate.Get() }
func (o *Trade) LookupAmount() (decimal.Decimal, bool) { return o.fields.Amount.Get() }
func (o *Trade) LookupTotal() (decimal.Decimal, bool) { return o.fields.Total.Get() }
func (o *Trade) LookupFee() (decimal.Decimal, bool) { return o.fields.Fee.Get() }
func (o *Trade) LookupOrder() (*Order, bool) { return o.fields.Order.Get() }

func (o *Trade) LookupTimestamp() (time.Time, bool) {
	ts, ok := o.fields.Timestamp.Get()
	if !ok {
		return time.Time{}, false
	}

	return time.Unix(ts, 0).UTC(), true
}

func (o *Trade) Side() (Side, error) {
	return requireField(o.fields.Side, "trade side")
}

func (o *Trade) Pair() (Pair, error) {
	return requireField(o.fields.Pair, "trade pair")
}

//
// Rate is the price paid per unit of the pair's base currency.
//
func (o *Trade) Rate() (decimal.Decimal, error) {
	return requireField(o.fields.Rate, "trade rate")
}

//
// Amount is the quantity of the pair's base currency traded.
//
func (o *Trade) Amount() (decimal.Decimal, error) {
	return requireField(o.fields.Amount, "trade amount")
}

//
// Total is the quantity of the pair's quote currency exchanged.
//
func (o *Trade) Total() (decimal.Decimal, error) {
	return requireField(o.fields.Total, "trade total")
}

//
// Fee is the fee charged, in the currency the venue charges it in.
//
func (o *Trade) Fee() (decimal.Decimal, error) {
	return requireField(o.fields.Fee, "trade fee")
}

func (o *Trade) Timestamp() (time.Time, error) {
	ts, ok := o.LookupTimestamp()
	if !ok {
		return time.Time{}, insufficient("trade timestamp")
	}

	return ts, nil
}

//
// Order is the order this trade filled. It is only known for the account's own trades.
//
func (o *Trade) Order() (*Order, error) {
	return requireField(o.fields.Order, "trade order")
}

func (o *Trade) unix() (int64, bool) {
	return o.fields.Timestamp.Get()
}

//
// Info describes the trade for display.
//
func (o *Trade) Info() *Info {
	info := NewInfo("Trade " + o.id)

	info.AddLazy("Trade Type", lazy(o.Side))
	info.AddLazy("Pair", lazy(o.Pair))
	info.AddLazy("Rate", lazy(o.Rate))
	info.AddLazy("Amount", lazy(o.Amount))
	info.AddLazy("Total", lazy(o.Total))
	info.AddLazy("Fee", lazy(o.Fee))
	info.AddLazy("Timestamp", func() (any, error) {
		ts, err := o.Timestamp()
		if err != nil {
			return nil, err
		}

		return ts.Format(time.RFC3339), nil
	})

	if order, ok := o.LookupOrder(); ok {
		info.Add("Order", order.summary())
	}

	return info
}

//
// requireField turns an unknown field into ErrInsufficientInformation.
//
func requireField[T any](v partial.Value[T], what string) (T, error) {
	value, ok := v.Get()
	if !ok {
		return value, insufficient(what)
	}

	return value, nil
}

func lazy[T any](fn func() (T, error)) func() (any, error) {
	return func() (any, error) {
		return fn()
	}
}

//
// SortByTime orders trades oldest first. Trades sharing a timestamp are ordered by identifier and
// trades without a known timestamp sort last.
//
func SortByTime(trades []*Trade) {
	sort.SliceStable(trades, func(i, j int) bool {
		a, aok := trades[i].unix()
		b, bok := trades[j].unix()

		switch {
		case aok != bok:
			return aok
		case a != b:
			return a < b
		}

		return trades[i].id < trades[j].id
	})
}

//
// TimeSpan returns the earliest and latest known timestamps among trades, as unix seconds.
//
func TimeSpan(trades []*Trade) (int64, int64, bool) {
	var lo, hi int64

	found := false

	for _, t := range trades {
		ts, ok := t.unix()
		if !ok {
			continue
		}

		if !found || ts < lo {
			lo = ts
		}

		if !found || ts > hi {
			hi = ts
		}

		found = true
	}

	return lo, hi, found
}
