package exchange

import (
	"context"

	"github.com/lukehollenback/bourse/structs/partial"
	"github.com/shopspring/decimal"
)

//
// OrderFields is the partially known record behind an Order.
//
type OrderFields struct {
	Side    partial.Value[Side]
	Subtype partial.Value[Subtype]
	Pair    partial.Value[Pair]
	Rate    partial.Value[decimal.Decimal]
	Amount  partial.Value[decimal.Decimal]
	Total   partial.Value[decimal.Decimal]
}

func (o *OrderFields) merge(u OrderFields) {
	o.Side.Merge(u.Side)
	o.Subtype.Merge(u.Subtype)
	o.Pair.Merge(u.Pair)
	o.Rate.Merge(u.Rate)
	o.Amount.Merge(u.Amount)
	o.Total.Merge(u.Total)
}

//
// Order is an interned handle on an order placed by the account. Amount and Total describe what the
// order was last seen asking for; whether it is still resting is resolved through the venue that
// owns the handle.
//
type Order struct {
	id     string
	api    API
	fields OrderFields
}

func (o *Order) ID() string {
	return o.id
}

//
// Equal reports whether both handles refer to the same venue order.
//
func (o *Order) Equal(other *Order) bool {
	return o != nil && other != nil && o.id == other.id
}

func (o *Order) LookupSide() (Side, bool) { return o.fields.Side.Get() }
func (o *Order) LookupSubtype() (Subtype, bool) { return o.fields.Subtype.Get() }
func (o *Order) LookupPair() (Pair, bool) { return o.fields.Pair.Get() }
func (o *Order) LookupRate() (decimal.Decimal, bool) { return o.fields.Rate.Get() }
func (o *Order) LookupAmount() (decimal.Decimal, bool) { return o.fields.Amount.Get() }
func (o *Order) LookupTotal() (decimal.Decimal, bool) { return o.fields.Total.Get() }

func (o *Order) Side() (Side, error) {
	return requireField(o.fields.Side, "order side")
}

func (o *Order) Subtype() (Subtype, error) {
	return requireField(o.fields.Subtype, "order subtype")
}

func (o *Order) Pair() (Pair, error) {
	return requireField(o.fields.Pair, "order pair")
}

func (o *Order) Rate() (decimal.Decimal, error) {
	return requireField(o.fields.Rate, "order rate")
}

//
// Amount is the quantity of the pair's base currency the order was placed for.
//
func (o *Order) Amount() (decimal.Decimal, error) {
	return requireField(o.fields.Amount, "order amount")
}

func (o *Order) Total() (decimal.Decimal, error) {
	return requireField(o.fields.Total, "order total")
}

//
// IsOpen reports whether the order is still resting on the venue's book.
//
func (o *Order) IsOpen(ctx context.Context) (bool, error) {
	return o.api.OrderOpen(ctx, o)
}

//
// Trades returns the trades that have filled the order so far.
//
func (o *Order) Trades(ctx context.Context) ([]*Trade, error) {
	return o.api.OrderTrades(ctx, o)
}

//
// AmountOutstanding is the order's amount less the amounts of every trade that filled it.
//
func (o *Order) AmountOutstanding(ctx context.Context) (decimal.Decimal, error) {
	amount, err := o.Amount()
	if err != nil {
		return decimal.Decimal{}, err
	}

	trades, err := o.Trades(ctx)
	if err != nil {
		return decimal.Decimal{}, err
	}

	for _, t := range trades {
		filled, err := t.Amount()
		if err != nil {
			return decimal.Decimal{}, err
		}

		amount = amount.Sub(filled)
	}

	return amount, nil
}

func (o *Order) Cancel(ctx context.Context) error {
	return o.api.CancelOrder(ctx, o)
}

//
// Modify changes the order's rate and/or amount. The returned handle is the order as the venue now
// knows it, which may be a replacement.
//
func (o *Order) Modify(ctx context.Context, mod Modification) (*Order, error) {
	return o.api.ModifyOrder(ctx, o, mod)
}

//
// Info describes the order for display. Open state and outstanding amount are resolved lazily
// through the venue when the description is rendered.
//
func (o *Order) Info(ctx context.Context) *Info {
	info := o.summary()

	info.AddLazy("Is Open", lazy(func() (bool, error) { return o.IsOpen(ctx) }))
	info.AddLazy("Amount Outstanding", lazy(func() (decimal.Decimal, error) { return o.AmountOutstanding(ctx) }))

	return info
}

func (o *Order) summary() *Info {
	info := NewInfo("Order " + o.id)

	info.AddLazy("Order Type", lazy(o.Side))
	info.AddLazy("Order Subtype", lazy(o.Subtype))
	info.AddLazy("Pair", lazy(o.Pair))
	info.AddLazy("Rate", lazy(o.Rate))
	info.AddLazy("Amount", lazy(o.Amount))
	info.AddLazy("Total", lazy(o.Total))

	return info
}
