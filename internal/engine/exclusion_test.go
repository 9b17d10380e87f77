package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/NguyenAn0808/online-auction-sub001/internal/model"
)

// seedWorkedExample drives the auction to the A@200, B@150, C@160 state
// where A leads at 170.
func seedWorkedExample(t *testing.T, svc *Service, auctionID uuid.UUID) (bidderA, bidderB, bidderC uuid.UUID) {
	t.Helper()
	ctx := context.Background()
	bidderA, bidderB, bidderC = uuid.New(), uuid.New(), uuid.New()

	for _, step := range []struct {
		bidder  uuid.UUID
		ceiling int64
	}{
		{bidderA, 200}, {bidderB, 150}, {bidderC, 160},
	} {
		if _, err := svc.SubmitProxyBid(ctx, auctionID, step.bidder, dec(step.ceiling)); err != nil {
			t.Fatalf("seed bid failed: %v", err)
		}
	}
	return bidderA, bidderB, bidderC
}

func TestExcludeBidder_OnlySeller(t *testing.T) {
	a := activeAuction()
	svc, _, _ := newTestService(a)

	_, err := svc.ExcludeBidder(context.Background(), a.ID, uuid.New(), uuid.New())
	if !errors.Is(err, ErrNotSeller) {
		t.Fatalf("err = %v, want ErrNotSeller", err)
	}
}

func TestExcludeBidder_AuctionNotFound(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.ExcludeBidder(context.Background(), uuid.New(), uuid.New(), uuid.New())
	if !errors.Is(err, ErrAuctionNotFound) {
		t.Fatalf("err = %v, want ErrAuctionNotFound", err)
	}
}

// Excluding the leader recomputes the price as if they never existed:
// {B@150, C@160} resolves to C at 160, below the pre-exclusion 170.
func TestExcludeBidder_LeaderRecalculation(t *testing.T) {
	a := activeAuction()
	svc, st, n := newTestService(a)
	bidderA, _, bidderC := seedWorkedExample(t, svc, a.ID)

	outcome, err := svc.ExcludeBidder(context.Background(), a.ID, a.SellerID, bidderA)
	if err != nil {
		t.Fatalf("ExcludeBidder failed: %v", err)
	}

	if outcome.LeaderID.UUID != bidderC {
		t.Errorf("leader = %s, want %s", outcome.LeaderID.UUID, bidderC)
	}
	if !outcome.Price.Equal(dec(160)) {
		t.Errorf("Price = %s, want 160 (allowed to drop after exclusion)", outcome.Price)
	}

	stored := st.auction(a.ID)
	if !stored.CurrentPrice.Equal(dec(160)) || stored.LeaderID.UUID != bidderC {
		t.Errorf("stored auction = price %s leader %v, want 160 / %s",
			stored.CurrentPrice, stored.LeaderID, bidderC)
	}

	for _, b := range st.bidsFor(a.ID) {
		if b.BidderID == bidderA && b.Status != model.BidExcluded {
			t.Errorf("excluded bidder's bid still in status %q", b.Status)
		}
	}

	excludedMail := n.byKind("excluded")
	if len(excludedMail) != 1 || excludedMail[0].recipient != bidderA {
		t.Errorf("excluded notifications = %+v, want one to %s", excludedMail, bidderA)
	}
}

func TestExcludeBidder_ThenBidIsForbidden(t *testing.T) {
	a := activeAuction()
	svc, _, _ := newTestService(a)
	bidderA, _, _ := seedWorkedExample(t, svc, a.ID)

	if _, err := svc.ExcludeBidder(context.Background(), a.ID, a.SellerID, bidderA); err != nil {
		t.Fatalf("ExcludeBidder failed: %v", err)
	}

	_, err := svc.SubmitProxyBid(context.Background(), a.ID, bidderA, dec(1000))
	if !errors.Is(err, ErrBidderExcluded) {
		t.Fatalf("err = %v, want ErrBidderExcluded", err)
	}
}

func TestReincludeBidder_RestoresCompetition(t *testing.T) {
	a := activeAuction()
	svc, st, _ := newTestService(a)
	bidderA, _, _ := seedWorkedExample(t, svc, a.ID)
	ctx := context.Background()

	if _, err := svc.ExcludeBidder(ctx, a.ID, a.SellerID, bidderA); err != nil {
		t.Fatalf("ExcludeBidder failed: %v", err)
	}

	outcome, err := svc.ReincludeBidder(ctx, a.ID, a.SellerID, bidderA)
	if err != nil {
		t.Fatalf("ReincludeBidder failed: %v", err)
	}

	// Back to the pre-exclusion standing: A leads at 170.
	if outcome.LeaderID.UUID != bidderA {
		t.Errorf("leader = %s, want %s", outcome.LeaderID.UUID, bidderA)
	}
	if !outcome.Price.Equal(dec(170)) {
		t.Errorf("Price = %s, want 170", outcome.Price)
	}

	for _, b := range st.bidsFor(a.ID) {
		if b.Status != model.BidLive {
			t.Errorf("bid %s still in status %q after reinclusion", b.ID, b.Status)
		}
	}

	state, err := svc.CompetitionState(ctx, a.ID)
	if err != nil {
		t.Fatalf("CompetitionState failed: %v", err)
	}
	if len(state.Exclusions) != 0 {
		t.Errorf("exclusions = %d, want 0", len(state.Exclusions))
	}
}

func TestReincludeBidder_NoExclusion(t *testing.T) {
	a := activeAuction()
	svc, _, _ := newTestService(a)

	_, err := svc.ReincludeBidder(context.Background(), a.ID, a.SellerID, uuid.New())
	if !errors.Is(err, ErrExclusionNotFound) {
		t.Fatalf("err = %v, want ErrExclusionNotFound", err)
	}
}

func TestReincludeBidder_OnlySeller(t *testing.T) {
	a := activeAuction()
	svc, _, _ := newTestService(a)
	bidderA, _, _ := seedWorkedExample(t, svc, a.ID)

	if _, err := svc.ExcludeBidder(context.Background(), a.ID, a.SellerID, bidderA); err != nil {
		t.Fatalf("ExcludeBidder failed: %v", err)
	}

	_, err := svc.ReincludeBidder(context.Background(), a.ID, uuid.New(), bidderA)
	if !errors.Is(err, ErrNotSeller) {
		t.Fatalf("err = %v, want ErrNotSeller", err)
	}
}
