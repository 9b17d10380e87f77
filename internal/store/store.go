package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/NguyenAn0808/online-auction-sub001/internal/model"
)

const auctionColumns = `id, seller_id, starting_price, step, buy_now_price,
	start_time, end_time, status, current_price, leader_id,
	auto_extend, no_bid_notified, finalize_notified, created_at, updated_at`

const bidColumns = `id, auction_id, bidder_id, ceiling, amount, status, submitted_at`

// Store provides Postgres-backed persistence for auctions, bids,
// exclusions, and orders.
type Store struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

// New creates a Store. timeout bounds every operation, including the full
// span of an InAuctionTx scope.
func New(db *pgxpool.Pool, timeout time.Duration) *Store {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Store{db: db, timeout: timeout}
}

func (s *Store) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

// Ping verifies the database connection is healthy.
func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()
	return mapError("ping", s.db.Ping(ctx))
}

// -----------------------------------------------------------------------------
// Reads
// -----------------------------------------------------------------------------

// CompetitionState fetches one auction with its full ledger and exclusion
// set in a single read snapshot.
func (s *Store) CompetitionState(ctx context.Context, auctionID uuid.UUID) (*model.CompetitionState, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	// Repeatable read so the three queries see one snapshot.
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, mapError("begin snapshot", err)
	}
	defer tx.Rollback(ctx)

	auction, err := scanAuctionRow(tx.QueryRow(ctx,
		`SELECT `+auctionColumns+` FROM auctions WHERE id = $1`, auctionID))
	if err != nil {
		return nil, mapError("query auction", err)
	}

	bids, err := queryBids(ctx, tx,
		`SELECT `+bidColumns+` FROM bids WHERE auction_id = $1 ORDER BY submitted_at`, auctionID)
	if err != nil {
		return nil, mapError("query bids", err)
	}

	rows, err := tx.Query(ctx,
		`SELECT auction_id, bidder_id, created_at FROM exclusions WHERE auction_id = $1`, auctionID)
	if err != nil {
		return nil, mapError("query exclusions", err)
	}
	exclusions, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Exclusion, error) {
		var e model.Exclusion
		err := row.Scan(&e.AuctionID, &e.BidderID, &e.CreatedAt)
		return e, err
	})
	if err != nil {
		return nil, mapError("collect exclusions", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, mapError("commit snapshot", err)
	}

	return &model.CompetitionState{
		Auction:    *auction,
		Bids:       bids,
		Exclusions: exclusions,
	}, nil
}

// -----------------------------------------------------------------------------
// Scheduler operations
// -----------------------------------------------------------------------------

// ActivateDueAuctions flips every scheduled auction whose start time has
// passed to active. Returns the number of rows changed.
func (s *Store) ActivateDueAuctions(ctx context.Context, now time.Time) (int64, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	tag, err := s.db.Exec(ctx, `
		UPDATE auctions SET status = $1, updated_at = $2
		WHERE status = $3 AND start_time <= $2`,
		model.AuctionActive, now, model.AuctionScheduled)
	if err != nil {
		return 0, mapError("activate due auctions", err)
	}
	return tag.RowsAffected(), nil
}

// CloseDueAuctions flips every active auction whose end time has passed to
// closed. Returns the number of rows changed.
func (s *Store) CloseDueAuctions(ctx context.Context, now time.Time) (int64, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	tag, err := s.db.Exec(ctx, `
		UPDATE auctions SET status = $1, updated_at = $2
		WHERE status = $3 AND end_time <= $2`,
		model.AuctionClosed, now, model.AuctionActive)
	if err != nil {
		return 0, mapError("close due auctions", err)
	}
	return tag.RowsAffected(), nil
}

// FinalizationCandidates returns closed auctions with at least one live bid
// that have not yet been finalization-notified.
func (s *Store) FinalizationCandidates(ctx context.Context) ([]model.Auction, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	rows, err := s.db.Query(ctx, `
		SELECT `+auctionColumns+` FROM auctions a
		WHERE a.status = $1 AND NOT a.finalize_notified
		  AND EXISTS (SELECT 1 FROM bids b WHERE b.auction_id = a.id AND b.status = $2)`,
		model.AuctionClosed, model.BidLive)
	if err != nil {
		return nil, mapError("query finalization candidates", err)
	}
	return collectAuctions(rows)
}

// NoBidCandidates returns closed auctions with zero live bids that have not
// yet been no-bid-notified.
func (s *Store) NoBidCandidates(ctx context.Context) ([]model.Auction, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	rows, err := s.db.Query(ctx, `
		SELECT `+auctionColumns+` FROM auctions a
		WHERE a.status = $1 AND NOT a.no_bid_notified
		  AND NOT EXISTS (SELECT 1 FROM bids b WHERE b.auction_id = a.id AND b.status = $2)`,
		model.AuctionClosed, model.BidLive)
	if err != nil {
		return nil, mapError("query no-bid candidates", err)
	}
	return collectAuctions(rows)
}

// WinningBid returns the live bid with the highest displayed amount for the
// auction, earliest submission winning a tie. Amount ties only happen when
// ceilings tie, and the earlier submission holds the lead in that case.
func (s *Store) WinningBid(ctx context.Context, auctionID uuid.UUID) (*model.Bid, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	bid, err := scanBidRow(s.db.QueryRow(ctx, `
		SELECT `+bidColumns+` FROM bids
		WHERE auction_id = $1 AND status = $2
		ORDER BY amount DESC, submitted_at ASC
		LIMIT 1`,
		auctionID, model.BidLive))
	if err != nil {
		return nil, mapError("query winning bid", err)
	}
	return bid, nil
}

// CreateOrder inserts the auction's order. Idempotent per auction: a second
// insert for the same auction id is a no-op and returns false.
func (s *Store) CreateOrder(ctx context.Context, order *model.Order) (bool, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	tag, err := s.db.Exec(ctx, `
		INSERT INTO orders (id, auction_id, buyer_id, seller_id, final_price, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (auction_id) DO NOTHING`,
		order.ID, order.AuctionID, order.BuyerID, order.SellerID,
		order.FinalPrice, order.Status, order.CreatedAt)
	if err != nil {
		return false, mapError("create order", err)
	}
	return tag.RowsAffected() == 1, nil
}

// ClaimFinalization atomically sets the finalization-notified flag.
// Returns true only for the caller that flipped it, so concurrent scheduler
// instances cannot both send winner notifications.
func (s *Store) ClaimFinalization(ctx context.Context, auctionID uuid.UUID) (bool, error) {
	return s.claimFlag(ctx, auctionID, "finalize_notified")
}

// ClaimNoBidNotice atomically sets the no-bid-notified flag.
func (s *Store) ClaimNoBidNotice(ctx context.Context, auctionID uuid.UUID) (bool, error) {
	return s.claimFlag(ctx, auctionID, "no_bid_notified")
}

func (s *Store) claimFlag(ctx context.Context, auctionID uuid.UUID, column string) (bool, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	// column is one of two compile-time constants, never user input.
	tag, err := s.db.Exec(ctx, `
		UPDATE auctions SET `+column+` = TRUE, updated_at = now()
		WHERE id = $1 AND NOT `+column,
		auctionID)
	if err != nil {
		return false, mapError("claim "+column, err)
	}
	return tag.RowsAffected() == 1, nil
}

// -----------------------------------------------------------------------------
// Row scanning
// -----------------------------------------------------------------------------

func scanAuctionRow(row pgx.Row) (*model.Auction, error) {
	var a model.Auction
	err := row.Scan(
		&a.ID, &a.SellerID, &a.StartingPrice, &a.Increment, &a.BuyNowPrice,
		&a.StartTime, &a.EndTime, &a.Status, &a.CurrentPrice, &a.LeaderID,
		&a.AutoExtend, &a.NoBidNotified, &a.FinalizeNotified, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func collectAuctions(rows pgx.Rows) ([]model.Auction, error) {
	auctions, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Auction, error) {
		a, err := scanAuctionRow(row)
		if err != nil {
			return model.Auction{}, err
		}
		return *a, nil
	})
	if err != nil {
		return nil, mapError("collect auctions", err)
	}
	return auctions, nil
}

func scanBidRow(row pgx.Row) (*model.Bid, error) {
	var b model.Bid
	err := row.Scan(&b.ID, &b.AuctionID, &b.BidderID, &b.Ceiling, &b.Amount, &b.Status, &b.SubmittedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func queryBids(ctx context.Context, q interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}, sql string, args ...any) ([]model.Bid, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Bid, error) {
		b, err := scanBidRow(row)
		if err != nil {
			return model.Bid{}, err
		}
		return *b, nil
	})
}
