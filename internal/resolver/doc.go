// Package resolver implements the proxy-bid competition algorithm.
//
// Given the eligible bids of one auction (live, non-excluded) plus the
// auction's starting price and increment, Resolve computes the leader and
// the displayed price: a second-price-like rule where the leader pays one
// increment over the runner-up's ceiling, clamped to stay within
// [startingPrice, leader's ceiling].
//
// Resolve is a pure function over an in-memory snapshot. It performs no
// I/O; callers fetch the eligible set once per operation and persist the
// outcome inside their own transactional scope.
package resolver
