package notify

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Kind identifies an outbound notification type.
type Kind string

const (
	KindBidConfirmed Kind = "bid_confirmed" // to the submitter
	KindNewBid       Kind = "new_bid"       // to the seller
	KindOutbid       Kind = "outbid"        // to the previous leader
	KindExcluded     Kind = "excluded"      // to the banned bidder
	KindAuctionWon   Kind = "auction_won"   // to the winner
	KindAuctionSold  Kind = "auction_sold"  // to the seller
	KindNoBids       Kind = "no_bids"       // to the seller
)

// Event is one queued outbound notification.
type Event struct {
	Kind      Kind
	Recipient uuid.UUID
	AuctionID uuid.UUID

	// Amount carries the price or bid amount where the kind has one.
	Amount decimal.Decimal

	// Counterparty is the other party shown to the recipient
	// (the bidder on new_bid, the winner on auction_sold).
	Counterparty uuid.NullUUID

	OccurredAt time.Time
}

// Notifier is the contract the engine and scheduler emit through. Every
// call is fire-and-forget: it must return immediately and must never
// surface a delivery failure to the caller.
type Notifier interface {
	BidConfirmed(bidderID, auctionID uuid.UUID, amount decimal.Decimal)
	NewBid(sellerID, auctionID uuid.UUID, amount decimal.Decimal, bidderID uuid.UUID)
	Outbid(previousLeaderID, auctionID uuid.UUID, amount decimal.Decimal)
	Excluded(bidderID, auctionID uuid.UUID)
	AuctionWon(winnerID, auctionID uuid.UUID, price decimal.Decimal)
	AuctionSold(sellerID, auctionID uuid.UUID, price decimal.Decimal, winnerID uuid.UUID)
	NoBids(sellerID, auctionID uuid.UUID)
}
