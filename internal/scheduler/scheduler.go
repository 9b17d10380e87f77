package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/NguyenAn0808/online-auction-sub001/internal/model"
	"github.com/NguyenAn0808/online-auction-sub001/internal/notify"
)

// Store is the persistence surface the scheduler needs.
type Store interface {
	ActivateDueAuctions(ctx context.Context, now time.Time) (int64, error)
	CloseDueAuctions(ctx context.Context, now time.Time) (int64, error)

	// FinalizationCandidates lists closed auctions with live bids not yet
	// finalization-notified; NoBidCandidates the closed ones without bids
	// not yet no-bid-notified. The two sets are disjoint by construction.
	FinalizationCandidates(ctx context.Context) ([]model.Auction, error)
	NoBidCandidates(ctx context.Context) ([]model.Auction, error)

	WinningBid(ctx context.Context, auctionID uuid.UUID) (*model.Bid, error)

	// CreateOrder is idempotent per auction id.
	CreateOrder(ctx context.Context, order *model.Order) (bool, error)

	// ClaimFinalization and ClaimNoBidNotice atomically read-and-set the
	// corresponding flag, returning true for exactly one caller.
	ClaimFinalization(ctx context.Context, auctionID uuid.UUID) (bool, error)
	ClaimNoBidNotice(ctx context.Context, auctionID uuid.UUID) (bool, error)
}

// Config holds scheduler configuration.
type Config struct {
	Interval    time.Duration // Tick cadence (default: 15s)
	Concurrency int           // Max auctions processed at once per pass (default: 8)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Interval:    15 * time.Second,
		Concurrency: 8,
	}
}

// Stats holds lifetime counters, readable while the scheduler runs.
type Stats struct {
	Ticks        int64
	Activated    int64
	Closed       int64
	Finalized    int64
	NoBidNotices int64
	Errors       int64
}

// Scheduler runs the auction lifecycle control loop.
type Scheduler struct {
	cfg      Config
	store    Store
	notifier notify.Notifier
	logger   *slog.Logger

	ticks        atomic.Int64
	activated    atomic.Int64
	closed       atomic.Int64
	finalized    atomic.Int64
	noBidNotices atomic.Int64
	errors       atomic.Int64

	now func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a Scheduler.
func New(cfg Config, store Store, notifier notify.Notifier, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Interval == 0 {
		cfg.Interval = DefaultConfig().Interval
	}
	if cfg.Concurrency == 0 {
		cfg.Concurrency = DefaultConfig().Concurrency
	}
	return &Scheduler{
		cfg:      cfg,
		store:    store,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// Start begins the control loop.
func (s *Scheduler) Start(ctx context.Context) error {
	s.ctx, s.cancel = context.WithCancel(ctx)

	s.wg.Add(1)
	go s.run()

	s.logger.Info("lifecycle scheduler started",
		"interval", s.cfg.Interval,
		"concurrency", s.cfg.Concurrency,
	)
	return nil
}

// Stop gracefully shuts down: the in-flight tick finishes, no new ticks
// are scheduled.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("lifecycle scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stats returns current counters.
func (s *Scheduler) Stats() Stats {
	return Stats{
		Ticks:        s.ticks.Load(),
		Activated:    s.activated.Load(),
		Closed:       s.closed.Load(),
		Finalized:    s.finalized.Load(),
		NoBidNotices: s.noBidNotices.Load(),
		Errors:       s.errors.Load(),
	}
}

// run is the main control loop.
func (s *Scheduler) run() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	// Tick immediately on start.
	s.tick()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.tick()
		}
	}
}

// tick runs the four lifecycle passes. Close runs before finalize so an
// auction closed this tick is finalizable in the same tick.
func (s *Scheduler) tick() {
	start := s.now()
	now := start.UTC()
	s.ticks.Add(1)

	if n, err := s.store.ActivateDueAuctions(s.ctx, now); err != nil {
		s.errors.Add(1)
		s.logger.Error("activate pass failed", "err", err)
	} else if n > 0 {
		s.activated.Add(n)
		s.logger.Info("auctions activated", "count", n)
	}

	if n, err := s.store.CloseDueAuctions(s.ctx, now); err != nil {
		s.errors.Add(1)
		s.logger.Error("close pass failed", "err", err)
	} else if n > 0 {
		s.closed.Add(n)
		s.logger.Info("auctions closed", "count", n)
	}

	s.finalizePass(now)
	s.noBidPass()

	s.logger.Debug("lifecycle tick complete",
		"duration", time.Since(start),
		"ticks", s.ticks.Load(),
	)
}

// finalizePass creates orders and sends winner/seller notifications for
// closed auctions with bids. Per-auction failures are logged and skipped.
func (s *Scheduler) finalizePass(now time.Time) {
	candidates, err := s.store.FinalizationCandidates(s.ctx)
	if err != nil {
		s.errors.Add(1)
		s.logger.Error("finalize pass failed to list candidates", "err", err)
		return
	}

	g, ctx := errgroup.WithContext(s.ctx)
	g.SetLimit(s.cfg.Concurrency)
	for _, auction := range candidates {
		auction := auction
		g.Go(func() error {
			if err := s.finalizeAuction(ctx, auction, now); err != nil {
				s.errors.Add(1)
				s.logger.Warn("failed to finalize auction",
					"auction_id", auction.ID,
					"err", err,
				)
			}
			return nil
		})
	}
	g.Wait()
}

// finalizeAuction determines the winner, creates the order, and notifies
// both parties. Safe to retry: the order insert is idempotent and the
// notified flag is claimed by exactly one caller.
func (s *Scheduler) finalizeAuction(ctx context.Context, auction model.Auction, now time.Time) error {
	winner, err := s.store.WinningBid(ctx, auction.ID)
	if err != nil {
		return err
	}

	order := &model.Order{
		ID:         uuid.New(),
		AuctionID:  auction.ID,
		BuyerID:    winner.BidderID,
		SellerID:   auction.SellerID,
		FinalPrice: auction.CurrentPrice,
		Status:     model.OrderAwaitingPayment,
		CreatedAt:  now,
	}
	created, err := s.store.CreateOrder(ctx, order)
	if err != nil {
		return err
	}

	claimed, err := s.store.ClaimFinalization(ctx, auction.ID)
	if err != nil {
		return err
	}
	if !claimed {
		// Another instance got here first; it owns the notifications.
		return nil
	}

	s.finalized.Add(1)
	s.logger.Info("auction finalized",
		"auction_id", auction.ID,
		"winner_id", winner.BidderID,
		"final_price", auction.CurrentPrice,
		"order_created", created,
	)

	s.notifier.AuctionWon(winner.BidderID, auction.ID, auction.CurrentPrice)
	s.notifier.AuctionSold(auction.SellerID, auction.ID, auction.CurrentPrice, winner.BidderID)
	return nil
}

// noBidPass tells sellers their closed auction drew no bids, once.
func (s *Scheduler) noBidPass() {
	candidates, err := s.store.NoBidCandidates(s.ctx)
	if err != nil {
		s.errors.Add(1)
		s.logger.Error("no-bid pass failed to list candidates", "err", err)
		return
	}

	for _, auction := range candidates {
		claimed, err := s.store.ClaimNoBidNotice(s.ctx, auction.ID)
		if err != nil {
			s.errors.Add(1)
			s.logger.Warn("failed to claim no-bid notice",
				"auction_id", auction.ID,
				"err", err,
			)
			continue
		}
		if !claimed {
			continue
		}

		s.noBidNotices.Add(1)
		s.notifier.NoBids(auction.SellerID, auction.ID)
	}
}
