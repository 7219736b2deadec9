// Package shop holds configured shops, refreshes their stock once per day
// and answers open requests.
package shop

import (
	"errors"
	"time"

	"github.com/gravitas-games/shoptiles/internal/pricing"
	"github.com/gravitas-games/shoptiles/internal/stock"
)

var (
	// ErrNotFound is returned for a shop name that was never registered.
	ErrNotFound = errors.New("shop: not found")
	// ErrDuplicate is returned when a shop name is registered twice.
	ErrDuplicate = errors.New("shop: already registered")
)

// Currency a shop trades in.
type Currency string

const (
	Money         Currency = "Money"
	FestivalScore Currency = "festivalScore"
	ClubCoins     Currency = "clubCoins"
)

// Code is the numeric currency id the game's shop menu expects.
func (c Currency) Code() int {
	switch c {
	case FestivalScore:
		return 1
	case ClubCoins:
		return 2
	default:
		return 0
	}
}

// Definition is the configured form of a shop.
type Definition struct {
	Name          string
	Pack          string
	StoreCurrency Currency
	// Price is inherited by stocks that do not set their own.
	Price                      *int
	DefaultSellPriceMultiplier float64
	PriceMultipliers           []pricing.Multiplier
	When                       []string
	ClosedMessage              string
	Quote                      string
	CategoriesToSellHere       []string
	Stocks                     []stock.Stock
}

// State of a shop's lifecycle.
type State int

const (
	Unloaded State = iota
	Loaded
	Stocked
)

func (s State) String() string {
	switch s {
	case Loaded:
		return "Loaded"
	case Stocked:
		return "Stocked"
	default:
		return "Unloaded"
	}
}

// Shop is a point-in-time view of a registered shop. Values handed out by
// the registry are never modified afterwards.
type Shop struct {
	Definition  Definition
	State       State
	Listing     stock.Listing
	Day         int
	RefreshedAt time.Time
	OpenedToday bool
}

// Outcome distinguishes a closed shop from an open one.
type Outcome int

const (
	Open Outcome = iota
	Closed
)

func (o Outcome) String() string {
	if o == Closed {
		return "closed"
	}
	return "open"
}

// Opening is the result of a request to open a shop. A closed shop carries
// only its message; an open shop may still have an empty listing.
type Opening struct {
	Shop          string
	Outcome       Outcome
	ClosedMessage string
	Listing       stock.Listing
	Currency      Currency
	Quote         string
	Categories    []string
	// FirstToday is set on the first successful open since the last refresh.
	FirstToday bool
}
