package exchange

import (
	"regexp"
	"strings"
)

var (
	currencyPattern = regexp.MustCompile(`^[A-Z]+$`)
	pairPattern     = regexp.MustCompile(`^[A-Z]+/[A-Z]+$`)
)

//
// Pair is a tradable market. Its canonical text form is "BASE/QUOTE", e.g. "ETH/BTC" prices ETH in
// BTC.
//
type Pair struct {
	Base  string
	Quote string
}

func NewPair(base string, quote string) Pair {
	return Pair{Base: base, Quote: quote}
}

//
// ParsePair parses the canonical "BASE/QUOTE" form.
//
func ParsePair(s string) (Pair, error) {
	if !pairPattern.MatchString(s) {
		return Pair{}, invalidArgument("malformed pair %q", s)
	}

	base, quote, _ := strings.Cut(s, "/")

	return Pair{Base: base, Quote: quote}, nil
}

//
// MustParsePair is like ParsePair but panics on malformed input. It is meant for literals.
//
func MustParsePair(s string) Pair {
	p, err := ParsePair(s)
	if err != nil {
		panic(err)
	}

	return p
}

func (o Pair) String() string {
	return o.Base + "/" + o.Quote
}

//
// Inverse returns the pair with base and quote swapped.
//
func (o Pair) Inverse() Pair {
	return Pair{Base: o.Quote, Quote: o.Base}
}

//
// Validate reports ErrInvalidArgument unless both sides are well-formed currency codes.
//
func (o Pair) Validate() error {
	if !currencyPattern.MatchString(o.Base) || !currencyPattern.MatchString(o.Quote) {
		return invalidArgument("malformed pair %q", o.String())
	}

	return nil
}

//
// ValidateCurrency reports ErrInvalidArgument unless currency is a well-formed currency code.
//
func ValidateCurrency(currency string) error {
	if !currencyPattern.MatchString(currency) {
		return invalidArgument("malformed currency %q", currency)
	}

	return nil
}
