package coinbasepro

import (
	"context"
	"fmt"
	"net/http"

	"github.com/lukehollenback/bourse/exchange"
	"github.com/lukehollenback/bourse/structs/partial"
)

//
// PlaceOrder places a good-til-cancelled limit order tagged with a fresh client order id. Only spot
// orders exist on this venue.
//
func (o *Client) PlaceOrder(ctx context.Context, req exchange.OrderRequest) (*exchange.Order, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if req.Subtype != exchange.Spot {
		return nil, fmt.Errorf("%w: %s orders", exchange.ErrNotSupported, req.Subtype)
	}

	if err := o.checkKnownPair(req.Pair); err != nil {
		return nil, err
	}

	body := map[string]string{
		"type":       "limit",
		"side":       req.Side.String(),
		"product_id": productID(req.Pair),
		"price":      formatDecimal(req.Rate),
		"size":       formatDecimal(req.Amount),
		"client_oid": o.newID(),
	}

	var placed rawOrder

	_, err := o.call(ctx, request{method: http.MethodPost, path: "/orders", body: body, private: true}, &placed)
	if err != nil {
		return nil, err
	}

	if placed.ID == "" {
		return nil, exchange.NewAPIError(Venue, "POST /orders", "response carried no order id")
	}

	order := o.pool.UpdateOrder(placed.ID, exchange.OrderFields{
		Side:    partial.Of(req.Side),
		Subtype: partial.Of(exchange.Spot),
		Pair:    partial.Of(req.Pair),
		Rate:    partial.Of(req.Rate),
		Amount:  partial.Of(req.Amount),
		Total:   partial.Of(req.Rate.Mul(req.Amount)),
	})

	if all, ok := o.openOrders.Peek(struct{}{}); ok {
		all[req.Pair] = append(all[req.Pair], order)
	}

	return order, nil
}

func (o *Client) CancelOrder(ctx context.Context, order *exchange.Order) error {
	req := request{
		method:   http.MethodDelete,
		path:     "/orders/" + order.ID(),
		private:  true,
		notFound: exchange.ErrOrderNotFound,
	}

	if _, err := o.call(ctx, req, nil); err != nil {
		return err
	}

	o.openOrders.Forget(struct{}{})

	return nil
}

//
// ModifyOrder is only supported as a no-op; the venue has no way to amend a resting order.
//
func (o *Client) ModifyOrder(ctx context.Context, order *exchange.Order, mod exchange.Modification) (*exchange.Order, error) {
	if mod.Empty() {
		return order, nil
	}

	return nil, fmt.Errorf("%w: modifying orders", exchange.ErrNotSupported)
}
