// Package database provides connection pool management for PostgreSQL.
//
// The engine keeps all durable state in one database:
//   - auctions: the contended auction records (price, leader, end time)
//   - bids: the append-only bid ledger
//   - exclusions: seller-imposed bidder bans
//   - orders: one per finalized auction
//
// Every pool connection registers the shopspring decimal codec so numeric
// columns scan straight into decimal.Decimal.
package database
