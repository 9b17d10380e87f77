package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// -----------------------------------------------------------------------------
// Auction
// -----------------------------------------------------------------------------

// AuctionStatus is the lifecycle state of an auction.
// Transitions are one-directional: scheduled -> active -> closed.
type AuctionStatus string

const (
	AuctionScheduled AuctionStatus = "scheduled"
	AuctionActive    AuctionStatus = "active"
	AuctionClosed    AuctionStatus = "closed"
)

// Auction is the record the engine competes over. The (CurrentPrice,
// LeaderID, EndTime) triple is the only hot shared mutable state; writes to
// it are serialized per auction by the store layer.
type Auction struct {
	ID       uuid.UUID
	SellerID uuid.UUID

	// Price bounds. CurrentPrice >= StartingPrice always, and is
	// non-decreasing across accepted bids (an exclusion may lower it).
	StartingPrice decimal.Decimal
	Increment     decimal.Decimal // minimum step between competing bids
	BuyNowPrice   decimal.NullDecimal

	// Time bounds. EndTime only ever moves forward (auto-extend).
	StartTime time.Time
	EndTime   time.Time

	Status       AuctionStatus
	CurrentPrice decimal.Decimal
	LeaderID     uuid.NullUUID // bidder currently winning, invalid if none

	AutoExtend bool

	// One-shot notification flags, read-and-set atomically by the
	// lifecycle scheduler. Mutually exclusive for a given auction.
	NoBidNotified    bool
	FinalizeNotified bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// AcceptsBids reports whether the auction is open for bidding.
func (a *Auction) AcceptsBids() bool {
	return a.Status == AuctionActive
}

// HasLeader reports whether any bidder currently holds the lead.
func (a *Auction) HasLeader() bool {
	return a.LeaderID.Valid
}

// MinimumAcceptableBid returns the lowest ceiling a new submission must
// carry: current price plus one increment while someone leads, otherwise
// the starting price.
func (a *Auction) MinimumAcceptableBid() decimal.Decimal {
	if a.HasLeader() {
		return a.CurrentPrice.Add(a.Increment)
	}
	return a.StartingPrice
}

// -----------------------------------------------------------------------------
// Bid
// -----------------------------------------------------------------------------

// BidStatus is the lifecycle state of a bid.
type BidStatus string

const (
	BidLive     BidStatus = "live"
	BidExcluded BidStatus = "excluded"
)

// Bid is one row of the append-only bid ledger. Ceiling and bidder are
// immutable once created; Amount and Status are rewritten by the resolver
// after every competition event. Rows are never deleted.
//
// A bidder may hold several live bids on one auction; only the most recent
// is economically meaningful. Older ones are superseded and carried at the
// auction's starting price so history is preserved for audit.
type Bid struct {
	ID        uuid.UUID
	AuctionID uuid.UUID
	BidderID  uuid.UUID

	// Ceiling is the proxy maximum the bidder authorized. Never revealed.
	Ceiling decimal.Decimal

	// Amount is the displayed contribution of this bid, always <= Ceiling.
	Amount decimal.Decimal

	Status      BidStatus
	SubmittedAt time.Time
}

// Standing is a resolver-assigned displayed amount for one bid, applied in
// bulk after each competition event.
type Standing struct {
	BidID  uuid.UUID
	Amount decimal.Decimal
}

// -----------------------------------------------------------------------------
// Exclusion
// -----------------------------------------------------------------------------

// Exclusion is a seller-imposed ban of one bidder from one auction. While it
// exists, every bid by that bidder on that auction is held in excluded
// status and kept out of the resolver's input.
type Exclusion struct {
	AuctionID uuid.UUID
	BidderID  uuid.UUID
	CreatedAt time.Time
}

// -----------------------------------------------------------------------------
// Order
// -----------------------------------------------------------------------------

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	// OrderAwaitingPayment is the state orders are created in; payment
	// proof and shipping address are supplied later by the buyer.
	OrderAwaitingPayment OrderStatus = "awaiting_payment"
)

// Order is produced exactly once per auction by finalization.
type Order struct {
	ID         uuid.UUID
	AuctionID  uuid.UUID // unique, at most one order per auction
	BuyerID    uuid.UUID
	SellerID   uuid.UUID
	FinalPrice decimal.Decimal
	Status     OrderStatus
	CreatedAt  time.Time
}

// -----------------------------------------------------------------------------
// Snapshots
// -----------------------------------------------------------------------------

// CompetitionState is a point-in-time snapshot of one auction's competition,
// fetched in a single read so callers never observe read-skew between the
// auction record, its ledger, and its exclusion set.
type CompetitionState struct {
	Auction    Auction
	Bids       []Bid
	Exclusions []Exclusion
}
