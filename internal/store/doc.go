// Package store implements PostgreSQL persistence for the auction engine.
//
// Schema lives in schema.sql. Tables:
//   - auctions: the contended records; price, leader, end time, flags
//   - bids: append-only ledger, rows are never deleted
//   - exclusions: (auction, bidder) bans, primary-keyed on the pair
//   - orders: at most one per auction, enforced by a unique constraint
//
// Per-auction write serialization uses SELECT ... FOR UPDATE on the
// auction row: InAuctionTx locks the record, runs the caller's work, and
// commits, so exactly one resolver outcome wins per auction at a time.
//
// Every operation is bounded by the configured store timeout; timeouts and
// connection failures surface as ErrUnavailable, lock/serialization
// contention as ErrConflict, both safely retryable.
package store
