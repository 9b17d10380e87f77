// Package model defines shared data types used across the auction engine.
//
// All types mirror the database schema in internal/store/schema.sql.
//
// Conventions:
//   - Money: decimal.Decimal (numeric in Postgres), never floats
//   - Timestamps: time.Time in UTC
//   - IDs: uuid.UUID for auctions, bids, bidders, sellers, orders
//
// A bid's proxy ceiling is the maximum the bidder authorized and is never
// shown to other bidders; the displayed amount is what the bid currently
// contributes to the auction and is always <= the ceiling.
package model
