package poloniex

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	Name  = "≪poloniex≫"
	Venue = "poloniex"

	BaseURL    = "https://poloniex.com"
	PublicURL  = BaseURL + "/public"
	TradingURL = BaseURL + "/tradingApi"

	KeyHeader  = "Key"
	SignHeader = "Sign"

	//
	// RequestInterval is the minimum spacing between request starts the venue tolerates.
	//
	RequestInterval = 250 * time.Millisecond

	//
	// TradeHistoryCap is the most trades the venue returns from one history request. A response of
	// exactly this size is assumed to be truncated.
	//
	TradeHistoryCap = 50000

	timestampLayout = "2006-01-02 15:04:05"
	allPairs        = "all"
)

var (
	//
	// ULP is the venue's unit of least precision for every amount, rate and fee.
	//
	ULP = decimal.New(1, -8)

	DefaultLendingRate = decimal.RequireFromString("0.02")
)

//
// Venue error messages that map onto specific error kinds.
//
const (
	msgInvalidPair      = "Invalid currency pair."
	msgInvalidPairParam = "Invalid currencyPair parameter."
	msgOrderNotFound    = "Order not found, or you are not the person who placed it."
)
