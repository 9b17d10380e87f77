package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/NguyenAn0808/online-auction-sub001/internal/model"
)

// AuctionTx is the unit-of-isolation scope for one auction's competition
// state. All methods run inside the transaction that holds the row lock on
// the auction record, so concurrent submissions for the same auction are
// strictly serialized.
type AuctionTx interface {
	// Auction returns the locked auction record as read at the start of
	// the scope. Mutations through this scope do not refresh it.
	Auction() *model.Auction

	// IsExcluded reports whether the bidder is banned from this auction.
	IsExcluded(ctx context.Context, bidderID uuid.UUID) (bool, error)

	// InsertBid appends one row to the ledger. Always an insert;
	// resubmissions by the same bidder are additive history, never an
	// update-in-place.
	InsertBid(ctx context.Context, bid *model.Bid) error

	// EligibleBids returns the auction's live bids ordered by submission
	// time. Bids of excluded bidders are held in excluded status, so the
	// status filter is the eligibility gate.
	EligibleBids(ctx context.Context) ([]model.Bid, error)

	// SetStandings rewrites displayed amounts in bulk from a resolver
	// outcome.
	SetStandings(ctx context.Context, standings []model.Standing) error

	// SetCompetition persists the resolved price and leader.
	SetCompetition(ctx context.Context, price decimal.Decimal, leader uuid.NullUUID) error

	// SetEndTime moves the auction's end time. Callers only ever move it
	// forward (auto-extension).
	SetEndTime(ctx context.Context, end time.Time) error

	// AddExclusion records the ban. Idempotent.
	AddExclusion(ctx context.Context, bidderID uuid.UUID) error

	// RemoveExclusion deletes the ban. Returns false if none existed.
	RemoveExclusion(ctx context.Context, bidderID uuid.UUID) (bool, error)

	// SetBidderStatus rewrites the status of all of one bidder's bids on
	// this auction, used when a ban is imposed or lifted.
	SetBidderStatus(ctx context.Context, bidderID uuid.UUID, status model.BidStatus) error
}

// InAuctionTx locks the auction row, runs fn inside the transaction, and
// commits. Any error from fn rolls everything back. Returns ErrNotFound if
// the auction does not exist.
func (s *Store) InAuctionTx(ctx context.Context, auctionID uuid.UUID, fn func(tx AuctionTx) error) error {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return mapError("begin", err)
	}
	defer tx.Rollback(ctx)

	auction, err := scanAuctionRow(tx.QueryRow(ctx,
		`SELECT `+auctionColumns+` FROM auctions WHERE id = $1 FOR UPDATE`, auctionID))
	if err != nil {
		return mapError("lock auction", err)
	}

	if err := fn(&auctionTx{tx: tx, auction: auction}); err != nil {
		return err
	}

	return mapError("commit", tx.Commit(ctx))
}

// auctionTx is the pgx-backed AuctionTx.
type auctionTx struct {
	tx      pgx.Tx
	auction *model.Auction
}

func (t *auctionTx) Auction() *model.Auction {
	return t.auction
}

func (t *auctionTx) IsExcluded(ctx context.Context, bidderID uuid.UUID) (bool, error) {
	var excluded bool
	err := t.tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM exclusions WHERE auction_id = $1 AND bidder_id = $2)`,
		t.auction.ID, bidderID).Scan(&excluded)
	if err != nil {
		return false, mapError("query exclusion", err)
	}
	return excluded, nil
}

func (t *auctionTx) InsertBid(ctx context.Context, bid *model.Bid) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO bids (id, auction_id, bidder_id, ceiling, amount, status, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		bid.ID, bid.AuctionID, bid.BidderID, bid.Ceiling, bid.Amount, bid.Status, bid.SubmittedAt)
	return mapError("insert bid", err)
}

func (t *auctionTx) EligibleBids(ctx context.Context) ([]model.Bid, error) {
	bids, err := queryBids(ctx, t.tx,
		`SELECT `+bidColumns+` FROM bids WHERE auction_id = $1 AND status = $2 ORDER BY submitted_at`,
		t.auction.ID, model.BidLive)
	if err != nil {
		return nil, mapError("query eligible bids", err)
	}
	return bids, nil
}

func (t *auctionTx) SetStandings(ctx context.Context, standings []model.Standing) error {
	if len(standings) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, st := range standings {
		batch.Queue(`UPDATE bids SET amount = $1 WHERE id = $2`, st.Amount, st.BidID)
	}

	results := t.tx.SendBatch(ctx, batch)
	for range standings {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return mapError("update bid standings", err)
		}
	}
	return mapError("close standings batch", results.Close())
}

func (t *auctionTx) SetCompetition(ctx context.Context, price decimal.Decimal, leader uuid.NullUUID) error {
	_, err := t.tx.Exec(ctx, `
		UPDATE auctions SET current_price = $1, leader_id = $2, updated_at = now()
		WHERE id = $3`,
		price, leader, t.auction.ID)
	return mapError("update competition", err)
}

func (t *auctionTx) SetEndTime(ctx context.Context, end time.Time) error {
	_, err := t.tx.Exec(ctx, `
		UPDATE auctions SET end_time = $1, updated_at = now() WHERE id = $2`,
		end, t.auction.ID)
	return mapError("update end time", err)
}

func (t *auctionTx) AddExclusion(ctx context.Context, bidderID uuid.UUID) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO exclusions (auction_id, bidder_id, created_at)
		VALUES ($1, $2, now())
		ON CONFLICT (auction_id, bidder_id) DO NOTHING`,
		t.auction.ID, bidderID)
	return mapError("insert exclusion", err)
}

func (t *auctionTx) RemoveExclusion(ctx context.Context, bidderID uuid.UUID) (bool, error) {
	tag, err := t.tx.Exec(ctx,
		`DELETE FROM exclusions WHERE auction_id = $1 AND bidder_id = $2`,
		t.auction.ID, bidderID)
	if err != nil {
		return false, mapError("delete exclusion", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (t *auctionTx) SetBidderStatus(ctx context.Context, bidderID uuid.UUID, status model.BidStatus) error {
	_, err := t.tx.Exec(ctx, `
		UPDATE bids SET status = $1 WHERE auction_id = $2 AND bidder_id = $3`,
		status, t.auction.ID, bidderID)
	return mapError("update bidder bid status", err)
}
