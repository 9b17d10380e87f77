// Package engine implements the auction engine's write services.
//
// SubmitProxyBid validates a bid, appends it to the ledger, re-resolves
// the competition, persists the outcome, and evaluates auto-extension, all
// inside a single per-auction transactional scope. ExcludeBidder and
// ReincludeBidder apply seller bans with full recalculation over the
// remaining eligible bids.
//
// Notifications go through a notify.Notifier after commit and can never
// fail or delay the triggering operation.
package engine
