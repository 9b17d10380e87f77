package engine

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/NguyenAn0808/online-auction-sub001/internal/model"
	"github.com/NguyenAn0808/online-auction-sub001/internal/resolver"
	"github.com/NguyenAn0808/online-auction-sub001/internal/store"
)

// CompetitionOutcome is the auction's resolved standing after an exclusion
// event.
type CompetitionOutcome struct {
	Price    decimal.Decimal
	LeaderID uuid.NullUUID
}

// ExcludeBidder bans the bidder from the auction on the seller's behalf:
// the ban is recorded, all of the bidder's bids move to excluded status,
// and the competition is re-resolved over the remaining eligible set.
//
// If the excluded bidder held the lead, the price is recomputed as if they
// never existed and may drop below the pre-exclusion price. That is
// expected: price monotonicity holds across accepted bids, not across
// corrective exclusions.
func (s *Service) ExcludeBidder(ctx context.Context, auctionID, sellerID, bidderID uuid.UUID) (*CompetitionOutcome, error) {
	outcome, err := s.recompete(ctx, auctionID, sellerID, func(tx store.AuctionTx) error {
		if err := tx.AddExclusion(ctx, bidderID); err != nil {
			return err
		}
		return tx.SetBidderStatus(ctx, bidderID, model.BidExcluded)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("bidder excluded",
		"auction_id", auctionID,
		"bidder_id", bidderID,
		"price", outcome.Price,
	)
	s.notifier.Excluded(bidderID, auctionID)

	return outcome, nil
}

// ReincludeBidder lifts a ban: the exclusion row is removed, the bidder's
// bids return to live status, and the competition is re-resolved with them
// back in the eligible set. Returns ErrExclusionNotFound if no ban exists.
func (s *Service) ReincludeBidder(ctx context.Context, auctionID, sellerID, bidderID uuid.UUID) (*CompetitionOutcome, error) {
	outcome, err := s.recompete(ctx, auctionID, sellerID, func(tx store.AuctionTx) error {
		removed, err := tx.RemoveExclusion(ctx, bidderID)
		if err != nil {
			return err
		}
		if !removed {
			return ErrExclusionNotFound
		}
		return tx.SetBidderStatus(ctx, bidderID, model.BidLive)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("bidder reincluded",
		"auction_id", auctionID,
		"bidder_id", bidderID,
		"price", outcome.Price,
	)

	return outcome, nil
}

// recompete applies mutate under the auction lock, authorizing the seller
// first, then re-runs the resolver and persists the fresh outcome.
func (s *Service) recompete(ctx context.Context, auctionID, sellerID uuid.UUID, mutate func(tx store.AuctionTx) error) (*CompetitionOutcome, error) {
	var outcome CompetitionOutcome

	err := s.store.InAuctionTx(ctx, auctionID, func(tx store.AuctionTx) error {
		if tx.Auction().SellerID != sellerID {
			return ErrNotSeller
		}

		if err := mutate(tx); err != nil {
			return err
		}

		eligible, err := tx.EligibleBids(ctx)
		if err != nil {
			return err
		}

		resolved := resolver.Resolve(eligible, tx.Auction().StartingPrice, tx.Auction().Increment)
		if err := tx.SetStandings(ctx, resolved.Standings); err != nil {
			return err
		}
		if err := tx.SetCompetition(ctx, resolved.Price, resolved.LeaderID); err != nil {
			return err
		}

		outcome = CompetitionOutcome{Price: resolved.Price, LeaderID: resolved.LeaderID}
		return nil
	})
	if err != nil {
		return nil, mapAuctionLookup(err)
	}
	return &outcome, nil
}
