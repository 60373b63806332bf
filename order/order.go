// Package order owns the authoritative order state machine: creation,
// partial-fill accounting, expiry and cancellation.
package order

import (
	"time"

	"github.com/shopspring/decimal"

	"swap-resolver-go/route"
)

// Kind distinguishes fixed-price orders from time-decaying ones.
type Kind string

const (
	KindLimit        Kind = "LIMIT"
	KindDutchAuction Kind = "DUTCH_AUCTION"
)

// Status represents the order lifecycle.
type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusFilled    Status = "FILLED"
	StatusCancelled Status = "CANCELLED"
	StatusExpired   Status = "EXPIRED"
)

// IsTerminal reports whether status permits no further transitions.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusFilled, StatusCancelled, StatusExpired:
		return true
	default:
		return false
	}
}

// Asset is a token identifier tagged with the chain it lives on.
type Asset struct {
	Token   string
	ChainID int64
}

// Pair renders the asset pair for logs and metric labels.
func Pair(src, dst Asset) string {
	return src.Token + "/" + dst.Token
}

// Order is a swap intent. Identity, amounts and price bounds are fixed at
// creation; only Filled and Status mutate, and only through the Manager.
type Order struct {
	ID    string
	Maker string

	Source Asset
	Dest   Asset

	SourceAmount decimal.Decimal
	StartPrice   decimal.Decimal // fixed target for limit orders
	EndPrice     decimal.Decimal // decay floor; equals StartPrice for limit orders
	Filled       decimal.Decimal

	Kind      Kind
	CreatedAt time.Time
	ExpiresAt time.Time
	Status    Status

	// Route is set for cross-chain orders at admission time.
	Route *route.Route

	// ReferenceRate is the aggregated src/dst rate observed at creation,
	// zero when creation policy did not require one.
	ReferenceRate decimal.Decimal
}

// Remaining returns the unfilled part of SourceAmount.
func (o *Order) Remaining() decimal.Decimal {
	return o.SourceAmount.Sub(o.Filled)
}

// CrossChain reports whether source and destination live on different chains.
func (o *Order) CrossChain() bool {
	return o.Source.ChainID != o.Dest.ChainID
}
