package keeper_test

import (
	"testing"

	"cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	keepertest "github.com/veritas-chain/veritas/testutil/keeper"
	"github.com/veritas-chain/veritas/x/oracle/types"
)

func majorityQuery(strategy types.DecisionStrategy, outcomes ...string) types.Query {
	return types.Query{
		ID:       1,
		Outcomes: outcomes,
		Strategy: strategy,
	}
}

func plainVote(voter string, outcome uint32, locked int64) types.Vote {
	return types.Vote{
		QueryID:      1,
		Voter:        voter,
		OutcomeIndex: outcome,
		LockedAmount: math.NewInt(locked),
	}
}

func TestAggregateMajority(t *testing.T) {
	f := keepertest.OracleKeeper(t)
	query := majorityQuery(types.StrategyMajority, "yes", "no")

	votes := []types.Vote{
		plainVote("a", 0, 1),
		plainVote("b", 0, 1),
		plainVote("c", 1, 1),
	}

	result, err := f.Keeper.Aggregate(f.Ctx, query, votes)
	require.NoError(t, err)
	require.Equal(t, uint32(0), result.WinningIndex)
	require.True(t, result.Correct["a"])
	require.True(t, result.Correct["b"])
	require.False(t, result.Correct["c"])

	expected := math.LegacyNewDec(2).Quo(math.LegacyNewDec(3)).MulInt64(100)
	require.True(t, result.Confidence.Equal(expected))
}

func TestAggregateMajorityTieBreaksToLowestIndex(t *testing.T) {
	f := keepertest.OracleKeeper(t)
	query := majorityQuery(types.StrategyMajority, "yes", "no")

	votes := []types.Vote{
		plainVote("a", 1, 1),
		plainVote("b", 0, 1),
	}

	result, err := f.Keeper.Aggregate(f.Ctx, query, votes)
	require.NoError(t, err)
	require.Equal(t, uint32(0), result.WinningIndex)
}

func TestAggregateWeightedByStake(t *testing.T) {
	f := keepertest.OracleKeeper(t)
	query := majorityQuery(types.StrategyWeightedByStake, "yes", "no")

	// one heavy vote outweighs two light ones
	votes := []types.Vote{
		plainVote("whale", 1, 1000),
		plainVote("small-a", 0, 100),
		plainVote("small-b", 0, 100),
	}

	result, err := f.Keeper.Aggregate(f.Ctx, query, votes)
	require.NoError(t, err)
	require.Equal(t, uint32(1), result.WinningIndex)
	require.True(t, result.Correct["whale"])
	require.False(t, result.Correct["small-a"])

	expected := math.LegacyNewDec(1000).Quo(math.LegacyNewDec(1200)).MulInt64(100)
	require.True(t, result.Confidence.Equal(expected))
}

func TestAggregateWeightedByReputation(t *testing.T) {
	f := keepertest.OracleKeeper(t)

	expert := keepertest.Addr(1)
	novice1 := keepertest.Addr(2)
	novice2 := keepertest.Addr(3)
	for _, addr := range []string{expert, novice1, novice2} {
		f.RegisterVoter(t, addr, math.NewInt(1_000_000_000))
	}

	// weight(100) = 2.0 beats two voters at weight(10) = 0.65 each
	setReputation := func(addr string, rep uint64) {
		voter, found := f.Keeper.GetVoter(f.Ctx, addr)
		require.True(t, found)
		voter.Reputation = rep
		require.NoError(t, f.Keeper.SetVoter(f.Ctx, voter))
	}
	setReputation(expert, 100)
	setReputation(novice1, 10)
	setReputation(novice2, 10)

	query := majorityQuery(types.StrategyWeightedByReputation, "yes", "no")
	votes := []types.Vote{
		plainVote(expert, 0, 1),
		plainVote(novice1, 1, 1),
		plainVote(novice2, 1, 1),
	}

	result, err := f.Keeper.Aggregate(f.Ctx, query, votes)
	require.NoError(t, err)
	require.Equal(t, uint32(0), result.WinningIndex)
	require.True(t, result.Correct[expert])
	require.False(t, result.Correct[novice1])
}

func TestAggregateMedian(t *testing.T) {
	f := keepertest.OracleKeeper(t)
	query := majorityQuery(types.StrategyMedian, "10", "20", "30")

	t.Run("odd vote count", func(t *testing.T) {
		votes := []types.Vote{
			plainVote("a", 0, 1), // 10
			plainVote("b", 1, 1), // 20
			plainVote("c", 2, 1), // 30
		}
		result, err := f.Keeper.Aggregate(f.Ctx, query, votes)
		require.NoError(t, err)
		require.Equal(t, uint32(1), result.WinningIndex)
		require.False(t, result.Correct["a"])
		require.True(t, result.Correct["b"])
		require.False(t, result.Correct["c"])

		expected := math.LegacyNewDec(1).MulInt64(100).QuoInt64(3)
		require.True(t, result.Confidence.Equal(expected))
	})

	t.Run("even vote count takes lower middle", func(t *testing.T) {
		votes := []types.Vote{
			plainVote("a", 0, 1), // 10
			plainVote("b", 2, 1), // 30
		}
		result, err := f.Keeper.Aggregate(f.Ctx, query, votes)
		require.NoError(t, err)
		require.Equal(t, uint32(0), result.WinningIndex)
		require.True(t, result.Correct["a"])
		require.False(t, result.Correct["b"])
	})

	t.Run("decimal values", func(t *testing.T) {
		query := majorityQuery(types.StrategyMedian, "10.5", "11.25", "12")
		votes := []types.Vote{
			plainVote("a", 0, 1), // 10.5
			plainVote("b", 1, 1), // 11.25
			plainVote("c", 2, 1), // 12
		}
		result, err := f.Keeper.Aggregate(f.Ctx, query, votes)
		require.NoError(t, err)
		require.Equal(t, uint32(1), result.WinningIndex)
		require.False(t, result.Correct["a"])
		require.True(t, result.Correct["b"])
		require.False(t, result.Correct["c"])
	})

	t.Run("clustered values", func(t *testing.T) {
		votes := []types.Vote{
			plainVote("a", 2, 1), // 30
			plainVote("b", 2, 1), // 30
			plainVote("c", 0, 1), // 10
		}
		result, err := f.Keeper.Aggregate(f.Ctx, query, votes)
		require.NoError(t, err)
		require.Equal(t, uint32(2), result.WinningIndex)
		require.True(t, result.Correct["a"])
		require.True(t, result.Correct["b"])
		require.False(t, result.Correct["c"])
	})
}

func TestAggregateErrors(t *testing.T) {
	f := keepertest.OracleKeeper(t)

	t.Run("no votes", func(t *testing.T) {
		query := majorityQuery(types.StrategyMajority, "yes", "no")
		_, err := f.Keeper.Aggregate(f.Ctx, query, nil)
		require.ErrorIs(t, err, types.ErrNotEnoughVotes)
	})

	t.Run("unknown strategy", func(t *testing.T) {
		query := majorityQuery("plurality", "yes", "no")
		_, err := f.Keeper.Aggregate(f.Ctx, query, []types.Vote{plainVote("a", 0, 1)})
		require.ErrorIs(t, err, types.ErrStrategyMismatch)
	})

	t.Run("reputation weights with no registered voters", func(t *testing.T) {
		query := majorityQuery(types.StrategyWeightedByReputation, "yes", "no")
		_, err := f.Keeper.Aggregate(f.Ctx, query, []types.Vote{plainVote("ghost", 0, 1)})
		require.ErrorIs(t, err, types.ErrNotEnoughVotes)
	})
}
