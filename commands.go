package main

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"
	"time"

	"github.com/logrusorgru/aurora"
	"github.com/lukehollenback/bourse/config"
	"github.com/lukehollenback/bourse/exchange"
	"github.com/lukehollenback/bourse/exchange/coinbasepro"
	"github.com/lukehollenback/bourse/report"
	"github.com/shopspring/decimal"
)

var errUsage = errors.New("usage")

type environment struct {
	cfg       *config.Config
	api       exchange.API
	confirmer exchange.Confirmer
	out       io.Writer
	au        aurora.Aurora
	now       func() time.Time
}

type command struct {
	name    string
	usage   string
	minArgs int
	maxArgs int
	run     func(ctx context.Context, env *environment, args []string) error
}

var commands []command

func init() {
	commands = []command{
		{"pairs", "List every tradable pair.", 0, 0, runPairs},
		{"ticker", "PAIR - Show a pair's ticker.", 1, 1, runTicker},
		{"book", "PAIR [DEPTH] - Show a pair's order book.", 1, 2, runBook},
		{"path", "FROM TO - Show the cheapest chain of trades between two currencies.", 2, 2, runPath},
		{"value", "AMOUNT FROM TO - Value an amount of one currency in another.", 3, 3, runValue},
		{"valuation", "QUOTE - Value every balance in a quote currency.", 1, 1, runValuation},
		{"volume", "PAIR MIN MAX [HOURS] - Sum traded volume within a rate band.", 3, 4, runVolume},
		{"history", "PAIR [HOURS] - Write a pair's public trade history as CSV.", 1, 2, runHistory},
		{"candles", "PAIR INTERVAL [HOURS] - Summarize a pair's public trade history as candles.", 2, 3, runCandles},
		{"orders", "Show every open order.", 0, 0, runOrders},
		{"watch", "PAIR... - Stream ticker updates (coinbasepro only).", 1, -1, runWatch},
	}
}

func dispatch(ctx context.Context, env *environment, name string, args []string) error {
	if env.now == nil {
		env.now = time.Now
	}

	for _, c := range commands {
		if c.name != name {
			continue
		}

		if len(args) < c.minArgs || (c.maxArgs >= 0 && len(args) > c.maxArgs) {
			return fmt.Errorf("%w: %s %s", errUsage, c.name, c.usage)
		}

		return c.run(ctx, env, args)
	}

	return fmt.Errorf("%w: unknown command %q", errUsage, name)
}

func runPairs(ctx context.Context, env *environment, _ []string) error {
	pairs, err := env.api.Pairs(ctx)
	if err != nil {
		return err
	}

	for _, p := range sortPairs(slices.Collect(maps.Keys(pairs))) {
		fmt.Fprintln(env.out, p)
	}

	return nil
}

func runTicker(ctx context.Context, env *environment, args []string) error {
	pair, err := exchange.ParsePair(args[0])
	if err != nil {
		return err
	}

	t, err := env.api.Ticker(ctx, pair)
	if err != nil {
		return err
	}

	info := exchange.NewInfo("Ticker " + pair.String()).
		Add("Last", t.Last).
		Add("Highest Bid", t.HighestBid).
		Add("Lowest Ask", t.LowestAsk).
		Add("Base Volume", t.BaseVolume).
		Add("Quote Volume", t.QuoteVolume).
		Add("Percent Change", t.PercentChange.Shift(2).StringFixed(2)+"%")

	fmt.Fprint(env.out, info.Format(env.au))

	return nil
}

func runBook(ctx context.Context, env *environment, args []string) error {
	pair, err := exchange.ParsePair(args[0])
	if err != nil {
		return err
	}

	depth := 0

	if len(args) > 1 {
		if depth, err = strconv.Atoi(args[1]); err != nil || depth <= 0 {
			return fmt.Errorf("%w: depth %q", exchange.ErrInvalidArgument, args[1])
		}
	}

	book, err := env.api.OrderBook(ctx, pair, depth)
	if err != nil {
		return err
	}

	//
	// Asks print highest first so that the spread sits in the middle.
	//
	for i := len(book.Asks) - 1; i >= 0; i-- {
		fmt.Fprintf(env.out, "%s %s %s\n", env.au.Red("ask"), book.Asks[i].Rate, book.Asks[i].Amount)
	}

	for _, bid := range book.Bids {
		fmt.Fprintf(env.out, "%s %s %s\n", env.au.Green("bid"), bid.Rate, bid.Amount)
	}

	return nil
}

func runPath(ctx context.Context, env *environment, args []string) error {
	steps, err := exchange.ExchangePath(ctx, env.api, args[0], args[1])
	if err != nil {
		return err
	}

	for _, s := range steps {
		fmt.Fprintln(env.out, s)
	}

	return nil
}

func runValue(ctx context.Context, env *environment, args []string) error {
	amount, err := decimal.NewFromString(args[0])
	if err != nil {
		return fmt.Errorf("%w: amount %q", exchange.ErrInvalidArgument, args[0])
	}

	value, err := exchange.ValueOf(ctx, env.api, amount, args[1], args[2])
	if err != nil {
		return err
	}

	fmt.Fprintf(env.out, "%s %s = %s %s\n", amount, args[1], env.au.Bold(value), args[2])

	return nil
}

func runValuation(ctx context.Context, env *environment, args []string) error {
	quote := args[0]

	values, err := exchange.Valuation(ctx, env.api, quote, exchange.BalanceQuery{})
	if err != nil {
		return err
	}

	total := decimal.Zero

	for _, currency := range slices.Sorted(maps.Keys(values)) {
		fmt.Fprintf(env.out, "%-8s %s %s\n", currency, values[currency], quote)
		total = total.Add(values[currency])
	}

	fmt.Fprintf(env.out, "%-8s %s %s\n", env.au.Bold("TOTAL"), env.au.Bold(total), quote)

	return nil
}

func runVolume(ctx context.Context, env *environment, args []string) error {
	pair, err := exchange.ParsePair(args[0])
	if err != nil {
		return err
	}

	minRate, err := decimal.NewFromString(args[1])
	if err != nil {
		return fmt.Errorf("%w: minimum rate %q", exchange.ErrInvalidArgument, args[1])
	}

	maxRate, err := decimal.NewFromString(args[2])
	if err != nil {
		return fmt.Errorf("%w: maximum rate %q", exchange.ErrInvalidArgument, args[2])
	}

	window, err := env.window(args[3:])
	if err != nil {
		return err
	}

	base, quote, err := exchange.VolumeWithin(ctx, env.api, pair, window, minRate, maxRate)
	if err != nil {
		return err
	}

	fmt.Fprintf(env.out, "%s %s\n%s %s\n", base, pair.Base, quote, pair.Quote)

	return nil
}

func runHistory(ctx context.Context, env *environment, args []string) error {
	pair, err := exchange.ParsePair(args[0])
	if err != nil {
		return err
	}

	window, err := env.window(args[1:])
	if err != nil {
		return err
	}

	trades, err := env.api.PublicTradeHistory(ctx, pair, window)
	if err != nil {
		return err
	}

	return report.WriteTrades(env.out, trades)
}

func runCandles(ctx context.Context, env *environment, args []string) error {
	pair, err := exchange.ParsePair(args[0])
	if err != nil {
		return err
	}

	interval, err := exchange.ParseInterval(args[1])
	if err != nil {
		return err
	}

	window, err := env.window(args[2:])
	if err != nil {
		return err
	}

	trades, err := env.api.PublicTradeHistory(ctx, pair, window)
	if err != nil {
		return err
	}

	candles, err := exchange.Candles(trades, interval)
	if err != nil {
		return err
	}

	for _, c := range candles {
		fmt.Fprintf(
			env.out, "%s %s open=%s high=%s low=%s close=%s volume=%s trades=%d\n",
			c.Start.UTC().Format(time.RFC3339), c.Interval, c.Open, c.High, c.Low, c.Close, c.Volume, c.Count,
		)
	}

	return nil
}

func runOrders(ctx context.Context, env *environment, _ []string) error {
	return exchange.WithLiveCache(env.api, func() error {
		all, err := env.api.AllOpenOrders(ctx)
		if err != nil {
			return err
		}

		for _, pair := range sortPairs(slices.Collect(maps.Keys(all))) {
			for _, order := range all[pair] {
				fmt.Fprint(env.out, order.Info(ctx).Format(env.au))
			}
		}

		return nil
	})
}

func runWatch(ctx context.Context, env *environment, args []string) error {
	if env.cfg.Venue != config.CoinbasePro {
		return fmt.Errorf("%w: watching tickers needs -venue %s", exchange.ErrNotSupported, config.CoinbasePro)
	}

	pairs := make([]exchange.Pair, len(args))

	for i, a := range args {
		p, err := exchange.ParsePair(a)
		if err != nil {
			return err
		}

		pairs[i] = p
	}

	err := coinbasepro.NewFeed(env.cfg.CoinbasePro.FeedURL).Watch(ctx, pairs, func(e coinbasepro.TickerEvent) {
		fmt.Fprintf(
			env.out, "%s %s last %s bid %s ask %s\n",
			e.Time.Format(time.TimeOnly), env.au.Cyan(e.Pair), e.Ticker.Last, e.Ticker.HighestBid, e.Ticker.LowestAsk,
		)
	})

	if errors.Is(err, context.Canceled) {
		return nil
	}

	return err
}

//
// window turns an optional HOURS argument into a history window ending now.
//
func (o *environment) window(args []string) (exchange.Window, error) {
	if len(args) == 0 {
		return exchange.Window{}, nil
	}

	hours, err := strconv.ParseFloat(args[0], 64)
	if err != nil || hours <= 0 {
		return exchange.Window{}, fmt.Errorf("%w: hours %q", exchange.ErrInvalidArgument, args[0])
	}

	return exchange.Window{Start: o.now().Add(-time.Duration(hours * float64(time.Hour)))}, nil
}

func sortPairs(pairs []exchange.Pair) []exchange.Pair {
	slices.SortFunc(pairs, func(a exchange.Pair, b exchange.Pair) int {
		return cmp.Compare(a.String(), b.String())
	})

	return pairs
}
