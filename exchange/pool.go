package exchange

import (
	"github.com/lukehollenback/bourse/structs/partial"
)

//
// EntityPool interns trade and order handles by venue identifier so that every lookup of the same
// entity yields the same pointer, and merges newly learned fields into them. Only the facade that
// owns a pool mutates the handles it hands out.
//
type EntityPool struct {
	api    API
	trades map[string]*Trade
	orders map[string]*Order
}

//
// NewEntityPool creates an empty pool whose orders resolve their venue-backed operations through
// api.
//
func NewEntityPool(api API) *EntityPool {
	return &EntityPool{
		api:    api,
		trades: make(map[string]*Trade),
		orders: make(map[string]*Order),
	}
}

//
// Trade returns the handle for id, creating an empty one on first sight.
//
func (o *EntityPool) Trade(id string) *Trade {
	return intern(o.trades, id, func() *Trade { return &Trade{id: id} })
}

//
// Order returns the handle for id, creating an empty one on first sight.
//
func (o *EntityPool) Order(id string) *Order {
	return intern(o.orders, id, func() *Order { return &Order{id: id, api: o.api} })
}

//
// UpdateTrade interns id and merges every known field of update into it.
//
func (o *EntityPool) UpdateTrade(id string, update TradeFields) *Trade {
	t := o.Trade(id)
	t.fields.merge(update)

	return t
}

//
// UpdateOrder interns id and merges every known field of update into it.
//
func (o *EntityPool) UpdateOrder(id string, update OrderFields) *Order {
	order := o.Order(id)
	order.fields.merge(update)

	return order
}

//
// TradeUpdate is a decoded trade waiting to be merged into a pool, along with what is known of the
// order it filled. Facades decode a whole response into updates before applying any of them, so a
// malformed response leaves the pool untouched.
//
type TradeUpdate struct {
	ID      string
	Fields  TradeFields
	OrderID string
	Order   OrderFields
}

//
// OrderUpdate is a decoded order waiting to be merged into a pool.
//
type OrderUpdate struct {
	ID     string
	Fields OrderFields
}

//
// ApplyTrades merges updates in order and returns their handles. An update naming an order links
// the trade to that order's handle.
//
func (o *EntityPool) ApplyTrades(updates []TradeUpdate) []*Trade {
	trades := make([]*Trade, len(updates))

	for i, u := range updates {
		if u.OrderID != "" {
			u.Fields.Order = partial.Of(o.UpdateOrder(u.OrderID, u.Order))
		}

		trades[i] = o.UpdateTrade(u.ID, u.Fields)
	}

	return trades
}

func (o *EntityPool) ApplyOrders(updates []OrderUpdate) []*Order {
	orders := make([]*Order, len(updates))

	for i, u := range updates {
		orders[i] = o.UpdateOrder(u.ID, u.Fields)
	}

	return orders
}

//
// LookupTrade returns the handle for id only if it has been interned.
//
func (o *EntityPool) LookupTrade(id string) (*Trade, bool) {
	t, ok := o.trades[id]

	return t, ok
}

//
// LookupOrder returns the handle for id only if it has been interned.
//
func (o *EntityPool) LookupOrder(id string) (*Order, bool) {
	order, ok := o.orders[id]

	return order, ok
}

//
// Fields returns a copy of the order's record, for venues that need to carry it onto a replacement.
//
func (o *EntityPool) Fields(order *Order) OrderFields {
	return order.fields
}

func intern[H any](handles map[string]*H, id string, create func() *H) *H {
	if h, ok := handles[id]; ok {
		return h
	}

	h := create()
	handles[id] = h

	return h
}
