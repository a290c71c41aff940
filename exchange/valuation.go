package exchange

import (
	"context"
	"fmt"

	"github.com/lukehollenback/bourse/constants"
	"github.com/shopspring/decimal"
)

//
// ValueOf estimates what amount of from is worth in to by walking the exchange path at each pair's
// last trade rate. Converting a currency to itself returns amount untouched without asking the
// venue anything. The live cache is enabled for the duration so every ticker is fetched at most
// once.
//
func ValueOf(ctx context.Context, api API, amount decimal.Decimal, from string, to string) (decimal.Decimal, error) {
	if from == to {
		return amount, nil
	}

	value := amount

	err := WithLiveCache(api, func() error {
		steps, err := ExchangePath(ctx, api, from, to)
		if err != nil {
			return err
		}

		for _, step := range steps {
			ticker, err := api.Ticker(ctx, step.Pair)
			if err != nil {
				return err
			}

			switch step.Side {
			case Sell:
				value = value.Mul(ticker.Last)

			case Buy:
				if ticker.Last.IsZero() {
					return fmt.Errorf("%w: no last rate for %s", ErrInsufficientInformation, step.Pair)
				}

				value = value.Div(ticker.Last)
			}
		}

		return nil
	})
	if err != nil {
		return decimal.Decimal{}, err
	}

	return value, nil
}

//
// Valuation values every balance matching query in quote, under a single live cache window.
//
func Valuation(ctx context.Context, api API, quote string, query BalanceQuery) (map[string]decimal.Decimal, error) {
	var valuations map[string]decimal.Decimal

	err := WithLiveCache(api, func() error {
		balances, err := api.Balances(ctx, query)
		if err != nil {
			return err
		}

		valuations = make(map[string]decimal.Decimal, len(balances))

		for currency, balance := range balances {
			v, err := ValueOf(ctx, api, balance, currency, quote)
			if err != nil {
				return err
			}

			valuations[currency] = v
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return valuations, nil
}

//
// ValuationOf values a single currency's balance in quote.
//
func ValuationOf(ctx context.Context, api API, quote string, currency string, query BalanceQuery) (decimal.Decimal, error) {
	var valuation decimal.Decimal

	err := WithLiveCache(api, func() error {
		balance, err := api.Balance(ctx, currency, query)
		if err != nil {
			return err
		}

		valuation, err = ValueOf(ctx, api, balance, currency, quote)

		return err
	})

	return valuation, err
}

//
// TotalValuation sums Valuation across every currency.
//
func TotalValuation(ctx context.Context, api API, quote string, query BalanceQuery) (decimal.Decimal, error) {
	valuations, err := Valuation(ctx, api, quote, query)
	if err != nil {
		return decimal.Decimal{}, err
	}

	total := constants.Zero()

	for _, v := range valuations {
		total = total.Add(v)
	}

	return total, nil
}

//
// VolumeWithin sums the base and quote volume of public trades on pair inside window whose rate lies
// within [minRate, maxRate]. The rate bounds are checked before anything is fetched.
//
func VolumeWithin(ctx context.Context, api API, pair Pair, window Window, minRate decimal.Decimal, maxRate decimal.Decimal) (decimal.Decimal, decimal.Decimal, error) {
	if minRate.Sign() < 0 {
		return decimal.Decimal{}, decimal.Decimal{}, invalidArgument("minimum rate %s is negative", minRate)
	}

	if maxRate.LessThan(minRate) {
		return decimal.Decimal{}, decimal.Decimal{}, invalidArgument("maximum rate %s is below minimum rate %s", maxRate, minRate)
	}

	trades, err := api.PublicTradeHistory(ctx, pair, window)
	if err != nil {
		return decimal.Decimal{}, decimal.Decimal{}, err
	}

	base, quote := constants.Zero(), constants.Zero()

	for _, t := range trades {
		rate, err := t.Rate()
		if err != nil {
			return decimal.Decimal{}, decimal.Decimal{}, err
		}

		if rate.LessThan(minRate) || rate.GreaterThan(maxRate) {
			continue
		}

		amount, err := t.Amount()
		if err != nil {
			return decimal.Decimal{}, decimal.Decimal{}, err
		}

		total, err := t.Total()
		if err != nil {
			return decimal.Decimal{}, decimal.Decimal{}, err
		}

		base = base.Add(amount)
		quote = quote.Add(total)
	}

	return base, quote, nil
}

//
// FilterWindow keeps the trades whose timestamps fall within [start, end], sorted oldest first.
// Trades without a known timestamp are dropped.
//
func FilterWindow(trades []*Trade, start int64, end int64) []*Trade {
	filtered := make([]*Trade, 0, len(trades))

	for _, t := range trades {
		if ts, ok := t.unix(); ok && ts >= start && ts <= end {
			filtered = append(filtered, t)
		}
	}

	SortByTime(filtered)

	return filtered
}
