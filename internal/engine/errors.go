package engine

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/NguyenAn0808/online-auction-sub001/internal/model"
	"github.com/NguyenAn0808/online-auction-sub001/internal/store"
)

var (
	// ErrAuctionNotFound is returned when the referenced auction does not
	// exist.
	ErrAuctionNotFound = errors.New("auction not found")

	// ErrExclusionNotFound is returned by reinclusion when no ban exists
	// for the (auction, bidder) pair.
	ErrExclusionNotFound = errors.New("exclusion not found")

	// ErrNotSeller is returned when someone other than the auction's
	// seller attempts to manage exclusions.
	ErrNotSeller = errors.New("only the auction seller may manage exclusions")

	// ErrBidderExcluded is returned when a banned bidder submits a bid.
	// Kept distinct from ErrNotSeller so callers can tell the bidder why.
	ErrBidderExcluded = errors.New("bidder is excluded from this auction")
)

// InvalidStateError reports an action attempted against an auction in the
// wrong lifecycle state, such as bidding on a closed auction.
type InvalidStateError struct {
	AuctionID uuid.UUID
	Status    model.AuctionStatus
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("auction %s does not accept bids in status %q", e.AuctionID, e.Status)
}

// BelowMinimumError reports a ceiling under the minimum acceptable bid.
// Minimum is included so callers can show the exact amount to re-prompt
// with.
type BelowMinimumError struct {
	Minimum decimal.Decimal
	Offered decimal.Decimal
}

func (e *BelowMinimumError) Error() string {
	return fmt.Sprintf("bid %s is below the minimum acceptable bid %s", e.Offered, e.Minimum)
}

// IsRetryable reports whether the operation failed on transient contention
// or store unavailability and can be safely retried.
func IsRetryable(err error) bool {
	return errors.Is(err, store.ErrConflict) || errors.Is(err, store.ErrUnavailable)
}

// mapAuctionLookup translates the store's generic not-found into the
// engine's taxonomy; everything else passes through unchanged.
func mapAuctionLookup(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return ErrAuctionNotFound
	}
	return err
}
