package poloniex

import (
	"context"
	"fmt"
	"net/url"

	"github.com/lukehollenback/bourse/exchange"
	"github.com/lukehollenback/bourse/structs/partial"
)

//
// PlaceOrder places a limit order. Spot orders use buy/sell and margin orders use
// marginBuy/marginSell with a lending rate (DefaultLendingRate unless the request sets one).
//
func (o *Client) PlaceOrder(ctx context.Context, req exchange.OrderRequest) (*exchange.Order, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if err := o.checkKnownPair(req.Pair); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("currencyPair", encodePair(req.Pair))
	params.Set("rate", formatDecimal(req.Rate))
	params.Set("amount", formatDecimal(req.Amount))

	var command string

	switch req.Subtype {
	case exchange.Spot:
		command = req.Side.String()

	case exchange.Margin:
		lendingRate := req.LendingRate
		if lendingRate.IsZero() {
			lendingRate = DefaultLendingRate
		}

		params.Set("lendingRate", formatDecimal(lendingRate))

		if req.Side == exchange.Buy {
			command = "marginBuy"
		} else {
			command = "marginSell"
		}

	default:
		return nil, fmt.Errorf("%w: cannot place %s orders", exchange.ErrInvalidArgument, req.Subtype)
	}

	var placed rawPlaced

	if err := o.trading(ctx, command, params, &placed); err != nil {
		return nil, err
	}

	if placed.OrderNumber == "" {
		return nil, exchange.NewAPIError(Venue, command, "response carried no order number")
	}

	order := o.pool.UpdateOrder(placed.OrderNumber.String(), exchange.OrderFields{
		Side:    partial.Of(req.Side),
		Subtype: partial.Of(req.Subtype),
		Pair:    partial.Of(req.Pair),
		Rate:    partial.Of(req.Rate),
		Amount:  partial.Of(req.Amount),
		Total:   partial.Of(req.Rate.Mul(req.Amount)),
	})

	//
	// Keep a cached open order listing in step with what we just placed.
	//
	if all, ok := o.openOrders.Peek(struct{}{}); ok {
		all[req.Pair] = append(all[req.Pair], order)
	}

	return order, nil
}

func (o *Client) CancelOrder(ctx context.Context, order *exchange.Order) error {
	params := url.Values{}
	params.Set("orderNumber", order.ID())

	if err := o.trading(ctx, "cancelOrder", params, nil); err != nil {
		return err
	}

	o.openOrders.Forget(struct{}{})

	return nil
}

//
// ModifyOrder moves a resting order to a new rate and/or amount. The venue cancels the order and
// places a replacement under a new order number; the replacement is returned carrying whatever was
// known about the original. An answer without a new number updates the original in place. Moving
// only the amount requires the order's rate to be known.
//
func (o *Client) ModifyOrder(ctx context.Context, order *exchange.Order, mod exchange.Modification) (*exchange.Order, error) {
	if mod.Empty() {
		return order, nil
	}

	rate, err := order.Rate()
	if mod.Rate != nil {
		rate, err = *mod.Rate, nil
	}

	if err != nil {
		return nil, err
	}

	if rate.Sign() < 0 {
		return nil, fmt.Errorf("%w: negative rate %s", exchange.ErrInvalidArgument, rate)
	}

	params := url.Values{}
	params.Set("orderNumber", order.ID())
	params.Set("rate", formatDecimal(rate))

	if mod.Amount != nil {
		if mod.Amount.Sign() <= 0 {
			return nil, fmt.Errorf("%w: non-positive amount %s", exchange.ErrInvalidArgument, *mod.Amount)
		}

		params.Set("amount", formatDecimal(*mod.Amount))
	}

	var moved rawPlaced

	if err := o.trading(ctx, "moveOrder", params, &moved); err != nil {
		return nil, err
	}

	o.openOrders.Forget(struct{}{})

	fields := o.pool.Fields(order)
	fields.Rate = partial.Of(rate)

	if mod.Amount != nil {
		fields.Amount = partial.Of(*mod.Amount)
	}

	if amount, ok := fields.Amount.Get(); ok {
		fields.Total = partial.Of(rate.Mul(amount))
	}

	id := moved.OrderNumber.String()
	if id == "" {
		id = order.ID()
	}

	return o.pool.UpdateOrder(id, fields), nil
}
