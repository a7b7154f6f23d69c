package keeper

import (
	"sort"

	errorsmod "cosmossdk.io/errors"
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/veritas-chain/veritas/x/oracle/types"
)

// ConsensusResult is the outcome of aggregating a query's votes
type ConsensusResult struct {
	WinningIndex uint32
	// Confidence is the winning share of the tally, as a 0-100 percentage
	Confidence math.LegacyDec
	// Correct marks the voters whose vote matched the winning outcome
	Correct map[string]bool
}

// Aggregate runs the query's decision strategy over the recorded votes.
// Exact ties always break toward the lowest declared outcome index, which
// keeps resolution deterministic regardless of vote order.
func (k Keeper) Aggregate(ctx sdk.Context, query types.Query, votes []types.Vote) (ConsensusResult, error) {
	if len(votes) == 0 {
		return ConsensusResult{}, errorsmod.Wrapf(types.ErrNotEnoughVotes, "query %d has no votes", query.ID)
	}

	switch query.Strategy {
	case types.StrategyMajority:
		return k.aggregateWeighted(query, votes, func(types.Vote) math.LegacyDec {
			return math.LegacyOneDec()
		})
	case types.StrategyWeightedByStake:
		return k.aggregateWeighted(query, votes, func(v types.Vote) math.LegacyDec {
			return math.LegacyNewDecFromInt(v.LockedAmount)
		})
	case types.StrategyWeightedByReputation:
		return k.aggregateWeighted(query, votes, func(v types.Vote) math.LegacyDec {
			voter, found := k.GetVoter(ctx, v.Voter)
			if !found {
				return math.LegacyZeroDec()
			}
			return types.VotingWeight(voter.Reputation)
		})
	case types.StrategyMedian:
		return k.aggregateMedian(query, votes)
	default:
		return ConsensusResult{}, errorsmod.Wrapf(types.ErrStrategyMismatch, "unknown strategy %q", query.Strategy)
	}
}

// aggregateWeighted tallies vote weight per outcome and picks the heaviest
func (k Keeper) aggregateWeighted(query types.Query, votes []types.Vote, weight func(types.Vote) math.LegacyDec) (ConsensusResult, error) {
	tallies := make([]math.LegacyDec, len(query.Outcomes))
	for i := range tallies {
		tallies[i] = math.LegacyZeroDec()
	}

	total := math.LegacyZeroDec()
	for _, v := range votes {
		w := weight(v)
		tallies[v.OutcomeIndex] = tallies[v.OutcomeIndex].Add(w)
		total = total.Add(w)
	}
	if !total.IsPositive() {
		return ConsensusResult{}, errorsmod.Wrapf(types.ErrNotEnoughVotes, "query %d has zero total vote weight", query.ID)
	}

	winner := 0
	for i := 1; i < len(tallies); i++ {
		if tallies[i].GT(tallies[winner]) {
			winner = i
		}
	}

	correct := make(map[string]bool, len(votes))
	for _, v := range votes {
		if int(v.OutcomeIndex) == winner {
			correct[v.Voter] = true
		}
	}

	return ConsensusResult{
		WinningIndex: uint32(winner),
		Confidence:   tallies[winner].Quo(total).MulInt64(100),
		Correct:      correct,
	}, nil
}

// aggregateMedian resolves to the median of the numeric outcome values the
// voters chose. Even vote counts take the lower of the two middle values.
// Correct voters are those whose chosen value equals the median.
func (k Keeper) aggregateMedian(query types.Query, votes []types.Vote) (ConsensusResult, error) {
	values := make([]math.LegacyDec, len(query.Outcomes))
	for i, o := range query.Outcomes {
		v, err := math.LegacyNewDecFromStr(o)
		if err != nil {
			return ConsensusResult{}, errorsmod.Wrapf(types.ErrStrategyMismatch, "outcome %q is not numeric", o)
		}
		values[i] = v
	}

	chosen := make([]math.LegacyDec, len(votes))
	for i, v := range votes {
		chosen[i] = values[v.OutcomeIndex]
	}
	sort.Slice(chosen, func(i, j int) bool { return chosen[i].LT(chosen[j]) })

	var median math.LegacyDec
	if len(chosen)%2 == 1 {
		median = chosen[len(chosen)/2]
	} else {
		median = chosen[len(chosen)/2-1]
	}

	// map the median value back to the lowest outcome index carrying it
	winner := -1
	for i, v := range values {
		if v.Equal(median) {
			winner = i
			break
		}
	}
	if winner < 0 {
		return ConsensusResult{}, errorsmod.Wrapf(types.ErrStateCorruption, "median %s not among outcomes of query %d", median, query.ID)
	}

	correct := make(map[string]bool, len(votes))
	correctCount := int64(0)
	for _, v := range votes {
		if values[v.OutcomeIndex].Equal(median) {
			correct[v.Voter] = true
			correctCount++
		}
	}

	confidence := math.LegacyNewDec(correctCount).MulInt64(100).QuoInt64(int64(len(votes)))
	return ConsensusResult{
		WinningIndex: uint32(winner),
		Confidence:   confidence,
		Correct:      correct,
	}, nil
}
