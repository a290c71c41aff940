package coinbasepro

import (
	"time"
)

const (
	Name  = "≪coinbasepro≫"
	Venue = "coinbasepro"

	BaseURL = "https://api.pro.coinbase.com"
	FeedURL = "wss://ws-feed.pro.coinbase.com"

	//
	// RequestInterval keeps us under the public endpoints' limit of three requests per second.
	//
	RequestInterval = 334 * time.Millisecond

	//
	// PageSize is the number of entries asked for per page of a paginated listing.
	//
	PageSize = 100

	//
	// HistoryPageLimit caps how many pages a single trade history fetch will walk before it gives up
	// and reports the window as truncated.
	//
	HistoryPageLimit = 100

	//
	// BookLevel is the aggregated order book level requested. Level 2 carries the best fifty price
	// levels on each side.
	//
	BookLevel = 2

	afterHeader = "Cb-After"
)
