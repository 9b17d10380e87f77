package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/NguyenAn0808/online-auction-sub001/internal/model"
	"github.com/NguyenAn0808/online-auction-sub001/internal/store"
)

// fakeClock hands out strictly increasing timestamps.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Second)
	return c.t
}

// fakeStore is an in-memory Store. Mutations inside InAuctionTx apply
// directly; the services under test never mutate before their validation
// failures, so rollback simulation is not needed.
type fakeStore struct {
	mu         sync.Mutex
	auctions   map[uuid.UUID]model.Auction
	bids       []model.Bid
	exclusions map[uuid.UUID]map[uuid.UUID]time.Time // auction -> bidder -> created
}

func newFakeStore(auctions ...model.Auction) *fakeStore {
	s := &fakeStore{
		auctions:   make(map[uuid.UUID]model.Auction),
		exclusions: make(map[uuid.UUID]map[uuid.UUID]time.Time),
	}
	for _, a := range auctions {
		s.auctions[a.ID] = a
	}
	return s
}

func (s *fakeStore) CompetitionState(_ context.Context, auctionID uuid.UUID) (*model.CompetitionState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.auctions[auctionID]
	if !ok {
		return nil, fmt.Errorf("query auction: %w", store.ErrNotFound)
	}

	state := &model.CompetitionState{Auction: a}
	for _, b := range s.bids {
		if b.AuctionID == auctionID {
			state.Bids = append(state.Bids, b)
		}
	}
	for bidder, created := range s.exclusions[auctionID] {
		state.Exclusions = append(state.Exclusions, model.Exclusion{
			AuctionID: auctionID, BidderID: bidder, CreatedAt: created,
		})
	}
	return state, nil
}

func (s *fakeStore) InAuctionTx(_ context.Context, auctionID uuid.UUID, fn func(tx store.AuctionTx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.auctions[auctionID]
	if !ok {
		return fmt.Errorf("lock auction: %w", store.ErrNotFound)
	}

	// Snapshot copy, like the row read under FOR UPDATE.
	return fn(&fakeTx{store: s, auction: &a})
}

func (s *fakeStore) auction(id uuid.UUID) model.Auction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.auctions[id]
}

func (s *fakeStore) bidsFor(auctionID uuid.UUID) []model.Bid {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Bid
	for _, b := range s.bids {
		if b.AuctionID == auctionID {
			out = append(out, b)
		}
	}
	return out
}

type fakeTx struct {
	store   *fakeStore
	auction *model.Auction
}

func (t *fakeTx) Auction() *model.Auction { return t.auction }

func (t *fakeTx) IsExcluded(_ context.Context, bidderID uuid.UUID) (bool, error) {
	_, ok := t.store.exclusions[t.auction.ID][bidderID]
	return ok, nil
}

func (t *fakeTx) InsertBid(_ context.Context, bid *model.Bid) error {
	t.store.bids = append(t.store.bids, *bid)
	return nil
}

func (t *fakeTx) EligibleBids(_ context.Context) ([]model.Bid, error) {
	var out []model.Bid
	for _, b := range t.store.bids {
		if b.AuctionID == t.auction.ID && b.Status == model.BidLive {
			out = append(out, b)
		}
	}
	return out, nil
}

func (t *fakeTx) SetStandings(_ context.Context, standings []model.Standing) error {
	for _, st := range standings {
		for i := range t.store.bids {
			if t.store.bids[i].ID == st.BidID {
				t.store.bids[i].Amount = st.Amount
			}
		}
	}
	return nil
}

func (t *fakeTx) SetCompetition(_ context.Context, price decimal.Decimal, leader uuid.NullUUID) error {
	a := t.store.auctions[t.auction.ID]
	a.CurrentPrice = price
	a.LeaderID = leader
	t.store.auctions[t.auction.ID] = a
	return nil
}

func (t *fakeTx) SetEndTime(_ context.Context, end time.Time) error {
	a := t.store.auctions[t.auction.ID]
	a.EndTime = end
	t.store.auctions[t.auction.ID] = a
	return nil
}

func (t *fakeTx) AddExclusion(_ context.Context, bidderID uuid.UUID) error {
	m := t.store.exclusions[t.auction.ID]
	if m == nil {
		m = make(map[uuid.UUID]time.Time)
		t.store.exclusions[t.auction.ID] = m
	}
	if _, ok := m[bidderID]; !ok {
		m[bidderID] = time.Now().UTC()
	}
	return nil
}

func (t *fakeTx) RemoveExclusion(_ context.Context, bidderID uuid.UUID) (bool, error) {
	m := t.store.exclusions[t.auction.ID]
	if _, ok := m[bidderID]; !ok {
		return false, nil
	}
	delete(m, bidderID)
	return true, nil
}

func (t *fakeTx) SetBidderStatus(_ context.Context, bidderID uuid.UUID, status model.BidStatus) error {
	for i := range t.store.bids {
		if t.store.bids[i].AuctionID == t.auction.ID && t.store.bids[i].BidderID == bidderID {
			t.store.bids[i].Status = status
		}
	}
	return nil
}

// notification is one recorded notifier call.
type notification struct {
	kind      string
	recipient uuid.UUID
	auctionID uuid.UUID
	amount    decimal.Decimal
}

// fakeNotifier records every call.
type fakeNotifier struct {
	mu    sync.Mutex
	calls []notification
}

func (n *fakeNotifier) record(kind string, recipient, auctionID uuid.UUID, amount decimal.Decimal) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, notification{kind, recipient, auctionID, amount})
}

func (n *fakeNotifier) BidConfirmed(bidderID, auctionID uuid.UUID, amount decimal.Decimal) {
	n.record("bid_confirmed", bidderID, auctionID, amount)
}

func (n *fakeNotifier) NewBid(sellerID, auctionID uuid.UUID, amount decimal.Decimal, _ uuid.UUID) {
	n.record("new_bid", sellerID, auctionID, amount)
}

func (n *fakeNotifier) Outbid(previousLeaderID, auctionID uuid.UUID, amount decimal.Decimal) {
	n.record("outbid", previousLeaderID, auctionID, amount)
}

func (n *fakeNotifier) Excluded(bidderID, auctionID uuid.UUID) {
	n.record("excluded", bidderID, auctionID, decimal.Decimal{})
}

func (n *fakeNotifier) AuctionWon(winnerID, auctionID uuid.UUID, price decimal.Decimal) {
	n.record("auction_won", winnerID, auctionID, price)
}

func (n *fakeNotifier) AuctionSold(sellerID, auctionID uuid.UUID, price decimal.Decimal, _ uuid.UUID) {
	n.record("auction_sold", sellerID, auctionID, price)
}

func (n *fakeNotifier) NoBids(sellerID, auctionID uuid.UUID) {
	n.record("no_bids", sellerID, auctionID, decimal.Decimal{})
}

func (n *fakeNotifier) byKind(kind string) []notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []notification
	for _, c := range n.calls {
		if c.kind == kind {
			out = append(out, c)
		}
	}
	return out
}
