package keeper_test

import (
	"testing"
	"time"

	"cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	keepertest "github.com/veritas-chain/veritas/testutil/keeper"
	"github.com/veritas-chain/veritas/x/oracle/keeper"
	"github.com/veritas-chain/veritas/x/oracle/types"
)

func TestRegistryAccountingInvariant(t *testing.T) {
	f := keepertest.OracleKeeper(t)
	invariant := keeper.RegistryAccountingInvariant(*f.Keeper)

	msg, broken := invariant(f.Ctx)
	require.False(t, broken, msg)

	voters := registerVoters(t, f, 3)
	id := createQuery(t, f, types.StrategyMajority, []string{"yes", "no"}, math.NewInt(10_000_000)).ID
	_, err := f.Keeper.SubmitVote(f.Ctx, id, voters[0], 0, 80)
	require.NoError(t, err)

	msg, broken = invariant(f.Ctx)
	require.False(t, broken, msg)

	t.Run("broken stake total", func(t *testing.T) {
		stats := f.Keeper.GetRegistryStats(f.Ctx)
		stats.TotalStake = stats.TotalStake.AddRaw(1)
		require.NoError(t, f.Keeper.SetRegistryStats(f.Ctx, stats))

		msg, broken := invariant(f.Ctx)
		require.True(t, broken, msg)

		stats.TotalStake = stats.TotalStake.SubRaw(1)
		require.NoError(t, f.Keeper.SetRegistryStats(f.Ctx, stats))
	})

	t.Run("broken voter count", func(t *testing.T) {
		stats := f.Keeper.GetRegistryStats(f.Ctx)
		stats.VoterCount++
		require.NoError(t, f.Keeper.SetRegistryStats(f.Ctx, stats))

		msg, broken := invariant(f.Ctx)
		require.True(t, broken, msg)
	})
}

func TestLockedStakeInvariant(t *testing.T) {
	f := keepertest.OracleKeeper(t)
	invariant := keeper.LockedStakeInvariant(*f.Keeper)

	voters := registerVoters(t, f, 3)
	id := createQuery(t, f, types.StrategyMajority, []string{"yes", "no"}, math.NewInt(10_000_000)).ID
	_, err := f.Keeper.SubmitVote(f.Ctx, id, voters[0], 0, 80)
	require.NoError(t, err)
	_, err = f.Keeper.SubmitVote(f.Ctx, id, voters[1], 1, 60)
	require.NoError(t, err)

	msg, broken := invariant(f.Ctx)
	require.False(t, broken, msg)

	t.Run("holds after resolution releases locks", func(t *testing.T) {
		_, err := f.Keeper.SubmitVote(f.Ctx, id, voters[2], 0, 70)
		require.NoError(t, err)
		query, _ := f.Keeper.GetQuery(f.Ctx, id)
		later := f.Ctx.WithBlockTime(time.Unix(query.Deadline+1, 0).UTC())
		_, err = f.Keeper.ResolveQuery(later, query.ID)
		require.NoError(t, err)

		msg, broken := invariant(later)
		require.False(t, broken, msg)
	})

	t.Run("broken by dangling lock", func(t *testing.T) {
		voter, found := f.Keeper.GetVoter(f.Ctx, voters[0])
		require.True(t, found)
		voter.LockedStake = voter.LockedStake.AddRaw(1)
		require.NoError(t, f.Keeper.SetVoter(f.Ctx, voter))

		msg, broken := invariant(f.Ctx)
		require.True(t, broken, msg)
	})
}
