package exchange

import (
	"fmt"
	"time"

	"github.com/lukehollenback/bourse/constants"
	"github.com/shopspring/decimal"
)

//
// Side is the direction of a trade or order relative to the pair's base currency.
//
type Side int

const (
	Buy Side = iota
	Sell
)

func (o Side) String() string {
	switch o {
	case Buy:
		return "buy"
	case Sell:
		return "sell"
	}

	return fmt.Sprintf("Side(%d)", int(o))
}

//
// Subtype distinguishes which of the account's books a trade or order belongs to.
//
type Subtype int

const (
	Spot Subtype = iota
	Margin
	Lending
)

func (o Subtype) String() string {
	switch o {
	case Spot:
		return "spot"
	case Margin:
		return "margin"
	case Lending:
		return "lending"
	}

	return fmt.Sprintf("Subtype(%d)", int(o))
}

//
// Availability selects which part of a balance to report.
//
type Availability int

const (
	AllFunds Availability = iota
	Available
	OnOrder
)

func (o Availability) String() string {
	return [...]string{"all", "available", "on order"}[o]
}

//
// Account selects which of the venue's sub-accounts a balance query covers.
//
type Account int

const (
	AllAccounts Account = iota
	ExchangeAccount
	MarginAccount
	LendingAccount
)

func (o Account) String() string {
	return [...]string{"all", "exchange", "margin", "lending"}[o]
}

//
// BalanceQuery is the key of a balance lookup. The zero value asks for every fund in every account.
//
type BalanceQuery struct {
	Availability Availability
	Account      Account
}

//
// PairInfo carries a pair's precision metadata.
//
type PairInfo struct {
	BaseULP  decimal.Decimal
	QuoteULP decimal.Decimal
}

//
// Ticker is a point-in-time market summary for a pair. Volumes cover the trailing 24 hours. Fields a
// venue does not report are zero.
//
type Ticker struct {
	HighestBid    decimal.Decimal
	LowestAsk     decimal.Decimal
	Last          decimal.Decimal
	BaseVolume    decimal.Decimal
	QuoteVolume   decimal.Decimal
	PercentChange decimal.Decimal
}

//
// Bid is a resting buy offer. Amount is in the base currency.
//
type Bid struct {
	Rate   decimal.Decimal
	Amount decimal.Decimal
}

//
// Ask is a resting sell offer. Amount is in the base currency.
//
type Ask struct {
	Rate   decimal.Decimal
	Amount decimal.Decimal
}

//
// OrderBook holds bids in descending rate order and asks in ascending rate order.
//
type OrderBook struct {
	Bids []Bid
	Asks []Ask
}

//
// Depth returns the larger of the number of bids and asks held.
//
func (o OrderBook) Depth() int {
	return max(len(o.Bids), len(o.Asks))
}

//
// Truncate returns a copy of the book holding at most depth entries per side.
//
func (o OrderBook) Truncate(depth int) OrderBook {
	return OrderBook{
		Bids: append([]Bid(nil), o.Bids[:min(depth, len(o.Bids))]...),
		Asks: append([]Ask(nil), o.Asks[:min(depth, len(o.Asks))]...),
	}
}

//
// Window is a closed time range for history queries. A zero Start means "24 hours ago" and a zero
// End means "a few seconds from now".
//
type Window struct {
	Start time.Time
	End   time.Time
}

//
// Resolve fills in defaults relative to now and returns the window as unix seconds.
//
func (o Window) Resolve(now time.Time) (int64, int64, error) {
	start, end := o.Start, o.End

	if start.IsZero() {
		start = now.Add(-constants.DefaultHistoryLookback)
	}

	if end.IsZero() {
		end = now.Add(constants.DefaultHistoryLead)
	}

	if start.After(end) {
		return 0, 0, invalidArgument("window starts at %s after it ends at %s", start, end)
	}

	return start.Unix(), end.Unix(), nil
}

//
// OrderRequest describes an order to place. LendingRate only applies to margin orders; a zero value
// lets the venue choose its default.
//
type OrderRequest struct {
	Side        Side
	Subtype     Subtype
	Pair        Pair
	Rate        decimal.Decimal
	Amount      decimal.Decimal
	LendingRate decimal.Decimal
}

//
// Validate checks the request's shape before it is sent anywhere.
//
func (o OrderRequest) Validate() error {
	if err := o.Pair.Validate(); err != nil {
		return err
	}

	if o.Rate.Sign() < 0 {
		return invalidArgument("negative rate %s", o.Rate)
	}

	if o.Amount.Sign() <= 0 {
		return invalidArgument("non-positive amount %s", o.Amount)
	}

	if o.LendingRate.Sign() < 0 {
		return invalidArgument("negative lending rate %s", o.LendingRate)
	}

	return nil
}

//
// Modification changes a resting order. A nil field is left as it is; a modification with neither
// field set is a no-op.
//
type Modification struct {
	Rate   *decimal.Decimal
	Amount *decimal.Decimal
}

func (o Modification) Empty() bool {
	return o.Rate == nil && o.Amount == nil
}
