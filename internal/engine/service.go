package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/NguyenAn0808/online-auction-sub001/internal/model"
	"github.com/NguyenAn0808/online-auction-sub001/internal/notify"
	"github.com/NguyenAn0808/online-auction-sub001/internal/resolver"
	"github.com/NguyenAn0808/online-auction-sub001/internal/store"
)

// Store is the persistence surface the engine needs.
type Store interface {
	// CompetitionState fetches a consistent snapshot of one auction.
	CompetitionState(ctx context.Context, auctionID uuid.UUID) (*model.CompetitionState, error)

	// InAuctionTx runs fn while holding the write lock on the auction
	// record; fn's effects commit or roll back as one unit.
	InAuctionTx(ctx context.Context, auctionID uuid.UUID, fn func(tx store.AuctionTx) error) error
}

// Config holds engine tuning read from external configuration.
type Config struct {
	// AutoExtendThreshold: a bid landing within this window of the end
	// time triggers an extension (default: 5m).
	AutoExtendThreshold time.Duration

	// AutoExtendExtension: how far the end time is pushed (default: 10m).
	AutoExtendExtension time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		AutoExtendThreshold: 5 * time.Minute,
		AutoExtendExtension: 10 * time.Minute,
	}
}

// Service implements bid submission, seller exclusion, and competition
// state reads.
type Service struct {
	cfg      Config
	store    Store
	notifier notify.Notifier
	logger   *slog.Logger

	now func() time.Time
}

// New creates a Service.
func New(cfg Config, st Store, notifier notify.Notifier, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.AutoExtendThreshold == 0 {
		cfg.AutoExtendThreshold = DefaultConfig().AutoExtendThreshold
	}
	if cfg.AutoExtendExtension == 0 {
		cfg.AutoExtendExtension = DefaultConfig().AutoExtendExtension
	}
	return &Service{
		cfg:      cfg,
		store:    st,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// BidReceipt is the result of an accepted proxy bid.
type BidReceipt struct {
	// Bid is the persisted ledger row with its resolved displayed amount.
	Bid model.Bid

	// Price is the auction's new displayed price.
	Price decimal.Decimal

	// LeaderID is the bidder now holding the lead.
	LeaderID uuid.NullUUID

	// EndTime is the auction's end time after the submission, moved
	// forward if the bid triggered an auto-extension.
	EndTime  time.Time
	Extended bool
}

// SubmitProxyBid validates and records a proxy bid with ceiling as the
// bidder's authorized maximum, then re-resolves the auction's competition.
// The ledger append, resolution, persistence, and auto-extension commit as
// one unit; a concurrent submission for the same auction observes either
// none or all of it.
//
// Resubmissions by the same bidder always append a new ledger row. Client
// retries after a timeout therefore produce two rows; dedup is
// deliberately not attempted, two identical ceilings behave as two genuine
// bids.
func (s *Service) SubmitProxyBid(ctx context.Context, auctionID, bidderID uuid.UUID, ceiling decimal.Decimal) (*BidReceipt, error) {
	var (
		receipt    BidReceipt
		sellerID   uuid.UUID
		prevLeader uuid.NullUUID
	)

	err := s.store.InAuctionTx(ctx, auctionID, func(tx store.AuctionTx) error {
		auction := tx.Auction()
		if !auction.AcceptsBids() {
			return &InvalidStateError{AuctionID: auction.ID, Status: auction.Status}
		}

		excluded, err := tx.IsExcluded(ctx, bidderID)
		if err != nil {
			return err
		}
		if excluded {
			return ErrBidderExcluded
		}

		minimum := auction.MinimumAcceptableBid()
		if ceiling.LessThan(minimum) {
			return &BelowMinimumError{Minimum: minimum, Offered: ceiling}
		}

		// Captured from the lock-time snapshot, before the outcome is
		// persisted, so the outbid notification targets the right bidder.
		sellerID = auction.SellerID
		prevLeader = auction.LeaderID

		now := s.now().UTC()
		bid := model.Bid{
			ID:          uuid.New(),
			AuctionID:   auction.ID,
			BidderID:    bidderID,
			Ceiling:     ceiling,
			Amount:      minimum, // placeholder until the resolver assigns standings
			Status:      model.BidLive,
			SubmittedAt: now,
		}
		if err := tx.InsertBid(ctx, &bid); err != nil {
			return err
		}

		eligible, err := tx.EligibleBids(ctx)
		if err != nil {
			return err
		}

		outcome := resolver.Resolve(eligible, auction.StartingPrice, auction.Increment)
		if err := tx.SetStandings(ctx, outcome.Standings); err != nil {
			return err
		}
		if err := tx.SetCompetition(ctx, outcome.Price, outcome.LeaderID); err != nil {
			return err
		}

		endTime := auction.EndTime
		extended := false
		if auction.AutoExtend && auction.EndTime.Sub(now) <= s.cfg.AutoExtendThreshold {
			endTime = auction.EndTime.Add(s.cfg.AutoExtendExtension)
			if err := tx.SetEndTime(ctx, endTime); err != nil {
				return err
			}
			extended = true
		}

		if amount, ok := outcome.Amount(bid.ID); ok {
			bid.Amount = amount
		}

		receipt = BidReceipt{
			Bid:      bid,
			Price:    outcome.Price,
			LeaderID: outcome.LeaderID,
			EndTime:  endTime,
			Extended: extended,
		}
		return nil
	})
	if err != nil {
		return nil, mapAuctionLookup(err)
	}

	s.logger.Info("proxy bid accepted",
		"auction_id", auctionID,
		"bidder_id", bidderID,
		"price", receipt.Price,
		"extended", receipt.Extended,
	)

	// Best-effort, post-commit. Ceilings are never put in notifications.
	s.notifier.BidConfirmed(bidderID, auctionID, receipt.Bid.Amount)
	s.notifier.NewBid(sellerID, auctionID, receipt.Price, bidderID)
	if prevLeader.Valid && receipt.LeaderID.Valid &&
		prevLeader.UUID != receipt.LeaderID.UUID {
		s.notifier.Outbid(prevLeader.UUID, auctionID, receipt.Price)
	}

	return &receipt, nil
}

// CompetitionState returns a consistent snapshot of the auction, its full
// bid ledger, and its exclusion set.
func (s *Service) CompetitionState(ctx context.Context, auctionID uuid.UUID) (*model.CompetitionState, error) {
	state, err := s.store.CompetitionState(ctx, auctionID)
	if err != nil {
		return nil, mapAuctionLookup(err)
	}
	return state, nil
}
