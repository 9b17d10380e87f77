// Package scheduler drives auction lifecycle transitions.
//
// A periodic tick runs four idempotent passes:
//  1. Activate scheduled auctions whose start time has passed.
//  2. Close active auctions whose end time has passed.
//  3. Finalize closed auctions with bids: create the order (at most one
//     per auction) and notify winner and seller exactly once.
//  4. Notify sellers of closed auctions that drew no bids.
//
// One auction's failure never blocks the rest of a pass; errors are
// logged and the batch continues. The persisted notified flags, claimed
// with an atomic read-and-set, make finalization safe against crash-retry
// and against concurrent scheduler instances.
package scheduler
