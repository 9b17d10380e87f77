package resolver

import (
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/NguyenAn0808/online-auction-sub001/internal/model"
)

// Outcome is the result of resolving one auction's competition.
type Outcome struct {
	// LeaderBidID is the winning ledger row, invalid if no eligible bids.
	LeaderBidID uuid.NullUUID

	// LeaderID is the bidder holding the lead, invalid if no eligible bids.
	LeaderID uuid.NullUUID

	// Price is the new displayed price of the auction. Equals the starting
	// price when fewer than two distinct bidders compete.
	Price decimal.Decimal

	// Standings assigns every input bid its new displayed amount:
	// the leader's bid at Price, losing bidders' bids at their own ceiling,
	// the leader's superseded bids at the starting price.
	Standings []model.Standing
}

// Amount returns the displayed amount assigned to the given bid,
// or false if the bid was not part of the resolved set.
func (o *Outcome) Amount(bidID uuid.UUID) (decimal.Decimal, bool) {
	for _, s := range o.Standings {
		if s.BidID == bidID {
			return s.Amount, true
		}
	}
	return decimal.Decimal{}, false
}

// Resolve runs the proxy-bid competition over the eligible bids of one
// auction. Eligible means live and not excluded; the caller is responsible
// for filtering. The input slice is not mutated.
//
// Ranking is deterministic: ceiling descending, submission time ascending,
// so the earlier submission wins a tie on ceiling.
func Resolve(eligible []model.Bid, startingPrice, increment decimal.Decimal) Outcome {
	if len(eligible) == 0 {
		return Outcome{Price: startingPrice}
	}

	ranked := make([]model.Bid, len(eligible))
	copy(ranked, eligible)
	sort.SliceStable(ranked, func(i, j int) bool {
		if !ranked[i].Ceiling.Equal(ranked[j].Ceiling) {
			return ranked[i].Ceiling.GreaterThan(ranked[j].Ceiling)
		}
		return ranked[i].SubmittedAt.Before(ranked[j].SubmittedAt)
	})

	top := ranked[0]
	price := resolvePrice(ranked, startingPrice, increment)

	standings := make([]model.Standing, 0, len(ranked))
	for _, b := range ranked {
		switch {
		case b.ID == top.ID:
			standings = append(standings, model.Standing{BidID: b.ID, Amount: price})
		case b.BidderID == top.BidderID:
			// Superseded bid of the leader. Carried at the floor so
			// highest-bid queries never see a stale duplicate.
			standings = append(standings, model.Standing{BidID: b.ID, Amount: startingPrice})
		default:
			// Losing bidder, shown at what they lost at.
			standings = append(standings, model.Standing{BidID: b.ID, Amount: b.Ceiling})
		}
	}

	return Outcome{
		LeaderBidID: uuid.NullUUID{UUID: top.ID, Valid: true},
		LeaderID:    uuid.NullUUID{UUID: top.BidderID, Valid: true},
		Price:       price,
		Standings:   standings,
	}
}

// resolvePrice computes the leader's displayed price given the ranked bids.
func resolvePrice(ranked []model.Bid, startingPrice, increment decimal.Decimal) decimal.Decimal {
	top := ranked[0]

	// Highest-ceiling bid belonging to a different bidder.
	var runnerUp *model.Bid
	for i := 1; i < len(ranked); i++ {
		if ranked[i].BidderID != top.BidderID {
			runnerUp = &ranked[i]
			break
		}
	}

	// A lone bidder never pays above the floor, no matter the ceiling.
	if runnerUp == nil {
		return startingPrice
	}

	// Exact tie on ceiling: both were willing to pay it, so the price is
	// pushed to the cap and the earlier submission keeps the lead.
	if top.Ceiling.Equal(runnerUp.Ceiling) {
		return top.Ceiling
	}

	price := runnerUp.Ceiling.Add(increment)
	if price.LessThan(startingPrice) {
		price = startingPrice
	}
	if price.GreaterThan(top.Ceiling) {
		price = top.Ceiling
	}
	return price
}
