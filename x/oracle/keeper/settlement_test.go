package keeper_test

import (
	"testing"
	"time"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/stretchr/testify/require"

	keepertest "github.com/veritas-chain/veritas/testutil/keeper"
	"github.com/veritas-chain/veritas/x/oracle/types"
)

// resolveWithVotes runs a majority query end to end: three fresh voters,
// the first two voting "yes" and the third "no".
func resolveWithVotes(t *testing.T, f keepertest.Fixture, reward math.Int) (types.Query, []string) {
	t.Helper()
	voters := registerVoters(t, f, 3)
	query := createQuery(t, f, types.StrategyMajority, []string{"yes", "no"}, reward)

	for i, v := range voters {
		outcome := uint32(0)
		if i == 2 {
			outcome = 1
		}
		_, err := f.Keeper.SubmitVote(f.Ctx, query.ID, v, outcome, 0)
		require.NoError(t, err)
	}

	ctx := f.Ctx.WithBlockTime(time.Unix(query.Deadline+1, 0).UTC())
	resolved, err := f.Keeper.ResolveQuery(ctx, query.ID)
	require.NoError(t, err)
	require.Equal(t, types.QueryStatusResolved, resolved.Status)
	return resolved, voters
}

func TestSettlementRewardsAndSlashes(t *testing.T) {
	f := keepertest.OracleKeeper(t)
	reward := math.NewInt(10_000_000)
	_, voters := resolveWithVotes(t, f, reward)

	// fee 1% = 100_000; net pool 9_900_000 split between two correct
	// voters; multiplier at reputation 50 is exactly 1.0
	share := math.NewInt(4_950_000)

	for _, v := range voters[:2] {
		voter, _ := f.Keeper.GetVoter(f.Ctx, v)
		require.Equal(t, share, voter.PendingRewards)
		require.Equal(t, uint64(1), voter.CorrectVotes)
		require.Equal(t, math.NewInt(1_000_000_000), voter.Stake)

		// perfect record pushes reputation to the cap
		require.Equal(t, uint64(100), voter.Reputation)
	}

	// incorrect voter slashed 5% of total stake
	wrong, _ := f.Keeper.GetVoter(f.Ctx, voters[2])
	require.True(t, wrong.PendingRewards.IsZero())
	require.Equal(t, math.NewInt(950_000_000), wrong.Stake)
	require.True(t, wrong.Active)
	require.Equal(t, uint64(0), wrong.Reputation)

	treasury := f.Keeper.GetTreasury(f.Ctx)
	require.Equal(t, math.NewInt(100_000), treasury.FeesCollected)
	require.Equal(t, math.NewInt(50_000_000), treasury.SlashedCollected)

	stats := f.Keeper.GetRegistryStats(f.Ctx)
	require.Equal(t, math.NewInt(2_950_000_000), stats.TotalStake)
}

func TestSettlementDeactivatesSlashedBelowMinimum(t *testing.T) {
	f := keepertest.OracleKeeper(t)

	// two voters just above the minimum plus one comfortable voter
	edge := keepertest.Addr(1)
	f.RegisterVoter(t, edge, math.NewInt(100_000_000))
	safeA := keepertest.Addr(2)
	f.RegisterVoter(t, safeA, math.NewInt(1_000_000_000))
	safeB := keepertest.Addr(3)
	f.RegisterVoter(t, safeB, math.NewInt(1_000_000_000))

	query := createQuery(t, f, types.StrategyMajority, []string{"yes", "no"}, math.NewInt(10_000_000))
	_, err := f.Keeper.SubmitVote(f.Ctx, query.ID, edge, 1, 0)
	require.NoError(t, err)
	_, err = f.Keeper.SubmitVote(f.Ctx, query.ID, safeA, 0, 0)
	require.NoError(t, err)
	_, err = f.Keeper.SubmitVote(f.Ctx, query.ID, safeB, 0, 0)
	require.NoError(t, err)

	ctx := f.Ctx.WithBlockTime(time.Unix(query.Deadline+1, 0).UTC())
	_, err = f.Keeper.ResolveQuery(ctx, query.ID)
	require.NoError(t, err)

	// 5% slash drops the edge voter below the minimum stake
	voter, _ := f.Keeper.GetVoter(ctx, edge)
	require.Equal(t, math.NewInt(95_000_000), voter.Stake)
	require.False(t, voter.Active)
}

func TestSettlementSlashSparesLockedStake(t *testing.T) {
	f := keepertest.OracleKeeper(t)

	params := f.Keeper.GetParams(f.Ctx)
	params.SlashBps = 5000
	require.NoError(t, f.Keeper.SetParams(f.Ctx, params))

	wrong := keepertest.Addr(1)
	f.RegisterVoter(t, wrong, math.NewInt(300_000_000))
	safeA := keepertest.Addr(2)
	f.RegisterVoter(t, safeA, math.NewInt(1_000_000_000))
	safeB := keepertest.Addr(3)
	f.RegisterVoter(t, safeB, math.NewInt(1_000_000_000))

	first := createQuery(t, f, types.StrategyMajority, []string{"yes", "no"}, math.NewInt(10_000_000))
	second := createQuery(t, f, types.StrategyMajority, []string{"yes", "no"}, math.NewInt(10_000_000))
	third := createQuery(t, f, types.StrategyMajority, []string{"yes", "no"}, math.NewInt(10_000_000))

	// the wrong voter ends up fully locked across three open queries
	for _, id := range []uint64{first.ID, second.ID, third.ID} {
		_, err := f.Keeper.SubmitVote(f.Ctx, id, wrong, 1, 0)
		require.NoError(t, err)
	}
	_, err := f.Keeper.SubmitVote(f.Ctx, first.ID, safeA, 0, 0)
	require.NoError(t, err)
	_, err = f.Keeper.SubmitVote(f.Ctx, first.ID, safeB, 0, 0)
	require.NoError(t, err)

	before, _ := f.Keeper.GetVoter(f.Ctx, wrong)
	require.Equal(t, math.NewInt(300_000_000), before.LockedStake)

	ctx := f.Ctx.WithBlockTime(time.Unix(first.Deadline+1, 0).UTC())
	_, err = f.Keeper.ResolveQuery(ctx, first.ID)
	require.NoError(t, err)

	// the 50% slash (150M) is capped at the 100M left unlocked once the
	// resolved query releases its own lock
	slashed, _ := f.Keeper.GetVoter(ctx, wrong)
	require.Equal(t, math.NewInt(200_000_000), slashed.Stake)
	require.Equal(t, math.NewInt(200_000_000), slashed.LockedStake)
	require.True(t, slashed.AvailableStake().IsZero())
	require.NoError(t, slashed.Validate())

	treasury := f.Keeper.GetTreasury(ctx)
	require.Equal(t, math.NewInt(100_000_000), treasury.SlashedCollected)
}

func TestClaimRewards(t *testing.T) {
	f := keepertest.OracleKeeper(t)
	_, voters := resolveWithVotes(t, f, math.NewInt(10_000_000))

	winner := voters[0]
	amount, err := f.Keeper.ClaimRewards(f.Ctx, winner)
	require.NoError(t, err)
	require.Equal(t, math.NewInt(4_950_000), amount)

	accAddr, err := sdk.AccAddressFromBech32(winner)
	require.NoError(t, err)
	require.Equal(t, amount, f.Bank.Balance(accAddr).AmountOf("uvrt"))

	voter, _ := f.Keeper.GetVoter(f.Ctx, winner)
	require.True(t, voter.PendingRewards.IsZero())

	treasury := f.Keeper.GetTreasury(f.Ctx)
	require.Equal(t, amount, treasury.RewardsPaid)

	t.Run("second claim rejected", func(t *testing.T) {
		_, err := f.Keeper.ClaimRewards(f.Ctx, winner)
		require.ErrorIs(t, err, types.ErrNoPendingRewards)
	})

	t.Run("nothing pending rejected", func(t *testing.T) {
		_, err := f.Keeper.ClaimRewards(f.Ctx, voters[2])
		require.ErrorIs(t, err, types.ErrNoPendingRewards)
	})

	t.Run("unknown voter rejected", func(t *testing.T) {
		_, err := f.Keeper.ClaimRewards(f.Ctx, keepertest.Addr(9))
		require.ErrorIs(t, err, types.ErrVoterNotRegistered)
	})
}

func TestSettlementReputationMultiplier(t *testing.T) {
	f := keepertest.OracleKeeper(t)
	voters := registerVoters(t, f, 3)

	// a master-tier voter earns a 1.2x share
	master, _ := f.Keeper.GetVoter(f.Ctx, voters[0])
	master.Reputation = 100
	require.NoError(t, f.Keeper.SetVoter(f.Ctx, master))

	query := createQuery(t, f, types.StrategyMajority, []string{"yes", "no"}, math.NewInt(10_000_000))
	for _, v := range voters {
		_, err := f.Keeper.SubmitVote(f.Ctx, query.ID, v, 0, 0)
		require.NoError(t, err)
	}

	ctx := f.Ctx.WithBlockTime(time.Unix(query.Deadline+1, 0).UTC())
	_, err := f.Keeper.ResolveQuery(ctx, query.ID)
	require.NoError(t, err)

	// net pool 9_900_000 split three ways = 3_300_000 per share
	boosted, _ := f.Keeper.GetVoter(ctx, voters[0])
	require.Equal(t, math.NewInt(3_960_000), boosted.PendingRewards)

	baseline, _ := f.Keeper.GetVoter(ctx, voters[1])
	require.Equal(t, math.NewInt(3_300_000), baseline.PendingRewards)
}
