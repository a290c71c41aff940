package constants

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	LogPrefixFmt = "%-17s "

	//
	// DefaultHistoryLookback is how far back a trade history query reaches when the caller does not
	// supply a start time.
	//
	DefaultHistoryLookback = 24 * time.Hour

	//
	// DefaultHistoryLead is how far past "now" a trade history query reaches when the caller does not
	// supply an end time. It absorbs small clock skew between us and the venue.
	//
	DefaultHistoryLead = 3 * time.Second

	//
	// DefaultBookDepth is the order book depth requested when a caller asks for a non-positive depth.
	//
	DefaultBookDepth = 20

	//
	// Unknown is rendered in place of a value that has not been learned yet.
	//
	Unknown = "<?>"
)

var (
	zero = decimal.Zero
	one  = decimal.NewFromInt(1)
)

func Zero() decimal.Decimal {
	return zero
}

func One() decimal.Decimal {
	return one
}

//
// CeilToULP rounds the provided amount up to the next multiple of the provided unit of least
// precision. Amounts that are already a multiple are returned unchanged.
//
func CeilToULP(amount decimal.Decimal, ulp decimal.Decimal) decimal.Decimal {
	if ulp.Sign() <= 0 {
		return amount
	}

	return amount.Div(ulp).Ceil().Mul(ulp)
}
