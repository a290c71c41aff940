package exchange

import (
	"time"

	"github.com/shopspring/decimal"
)

//
// Interval is a candlestick granularity.
//
type Interval int

const (
	OneMinute Interval = iota
	FiveMinute
	FifteenMinute
	OneHour
	FourHour
	OneDay
)

var intervals = [...]struct {
	name     string
	duration time.Duration
}{
	{"1m", time.Minute},
	{"5m", 5 * time.Minute},
	{"15m", 15 * time.Minute},
	{"1h", time.Hour},
	{"4h", 4 * time.Hour},
	{"1d", 24 * time.Hour},
}

func (o Interval) String() string {
	return intervals[o].name
}

func (o Interval) Duration() time.Duration {
	return intervals[o].duration
}

//
// ParseInterval parses the short form produced by Interval.String, e.g. "15m".
//
func ParseInterval(s string) (Interval, error) {
	for i, v := range intervals {
		if v.name == s {
			return Interval(i), nil
		}
	}

	return 0, invalidArgument("interval %q", s)
}

//
// Candle summarizes the trades executed within [Start, Start+Interval). Volume is in the base
// currency.
//
type Candle struct {
	Start    time.Time
	Interval Interval
	Open     decimal.Decimal
	High     decimal.Decimal
	Low      decimal.Decimal
	Close    decimal.Decimal
	Volume   decimal.Decimal
	Count    int
}

func newCandle(start time.Time, interval Interval, rate decimal.Decimal, amount decimal.Decimal) *Candle {
	return &Candle{
		Start:    start,
		Interval: interval,
		Open:     rate,
		High:     rate,
		Low:      rate,
		Close:    rate,
		Volume:   amount,
		Count:    1,
	}
}

func (o *Candle) End() time.Time {
	return o.Start.Add(o.Interval.Duration())
}

func (o *Candle) append(rate decimal.Decimal, amount decimal.Decimal) {
	o.Close = rate

	if rate.GreaterThan(o.High) {
		o.High = rate
	}

	if rate.LessThan(o.Low) {
		o.Low = rate
	}

	o.Volume = o.Volume.Add(amount)
	o.Count++
}

//
// Candles buckets trades into candles of the given interval, oldest first. Trades must already be
// ordered oldest first, as every history operation returns them. Buckets with no trades are
// omitted. A trade missing its timestamp, rate or amount fails with ErrInsufficientInformation.
//
func Candles(trades []*Trade, interval Interval) ([]*Candle, error) {
	if interval < OneMinute || interval > OneDay {
		return nil, invalidArgument("interval %d", interval)
	}

	var (
		candles []*Candle
		current *Candle
	)

	for _, trade := range trades {
		ts, err := trade.Timestamp()
		if err != nil {
			return nil, err
		}

		rate, err := trade.Rate()
		if err != nil {
			return nil, err
		}

		amount, err := trade.Amount()
		if err != nil {
			return nil, err
		}

		start := ts.Truncate(interval.Duration())

		if current != nil && start.Before(current.Start) {
			return nil, invalidArgument("trade %s is out of order", trade.ID())
		}

		if current == nil || !start.Equal(current.Start) {
			current = newCandle(start, interval, rate, amount)
			candles = append(candles, current)

			continue
		}

		current.append(rate, amount)
	}

	return candles, nil
}
