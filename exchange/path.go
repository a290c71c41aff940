package exchange

import (
	"context"
	"errors"
	"fmt"

	"github.com/lukehollenback/bourse/structs/graph"
)

//
// Step is one trade along an exchange path: sell Pair's base for its quote, or buy Pair's base with
// its quote.
//
type Step struct {
	Side Side
	Pair Pair
}

func (o Step) String() string {
	return fmt.Sprintf("%s %s", o.Side, o.Pair)
}

//
// ExchangePath returns the shortest sequence of trades that converts from into to across the
// venue's tradable pairs. Among equally short routes the result is always the same one. Both
// currencies must be distinct and known to the venue.
//
func ExchangePath(ctx context.Context, api API, from string, to string) ([]Step, error) {
	for _, c := range []string{from, to} {
		if err := ValidateCurrency(c); err != nil {
			return nil, err
		}
	}

	if from == to {
		return nil, invalidArgument("cannot route %s to itself", from)
	}

	pairs, err := api.Pairs(ctx)
	if err != nil {
		return nil, err
	}

	//
	// Build the currency graph from the current pair metadata.
	//
	g := graph.New()

	for pair := range pairs {
		g.AddEdge(pair.Base, pair.Quote)
	}

	nodes, err := g.ShortestPath(from, to)

	switch {
	case errors.Is(err, graph.ErrUnknownNode):
		unknown := from
		if g.HasNode(from) {
			unknown = to
		}

		return nil, fmt.Errorf("%w: %s", ErrUnknownCurrency, unknown)

	case errors.Is(err, graph.ErrNoPath):
		return nil, fmt.Errorf("%w: %s to %s", ErrNoPath, from, to)

	case err != nil:
		return nil, err
	}

	//
	// Translate each hop into the trade that performs it.
	//
	steps := make([]Step, 0, len(nodes)-1)

	for i := 0; i+1 < len(nodes); i++ {
		sell := NewPair(nodes[i], nodes[i+1])

		if _, ok := pairs[sell]; ok {
			steps = append(steps, Step{Side: Sell, Pair: sell})
		} else {
			steps = append(steps, Step{Side: Buy, Pair: sell.Inverse()})
		}
	}

	return steps, nil
}
