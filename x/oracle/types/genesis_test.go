package types

import (
	"testing"

	"cosmossdk.io/math"
	"github.com/stretchr/testify/require"
)

func TestDefaultGenesis(t *testing.T) {
	gs := DefaultGenesis()
	require.NoError(t, gs.Validate())
	require.Equal(t, uint64(1), gs.NextQueryID)
	require.False(t, gs.Paused)
	require.True(t, gs.Treasury.FeesCollected.IsZero())
}

func genesisVoter(addr string) Voter {
	return Voter{
		Address:        addr,
		Stake:          math.NewInt(200_000_000),
		LockedStake:    math.ZeroInt(),
		PendingRewards: math.ZeroInt(),
		Reputation:     50,
		Active:         true,
	}
}

func TestGenesisValidate(t *testing.T) {
	base := func() GenesisState {
		return GenesisState{
			Params:      DefaultParams(),
			NextQueryID: 3,
			Treasury:    NewTreasury(),
			RegistryStats: RegistryStats{
				VoterCount: 2,
				TotalStake: math.NewInt(400_000_000),
			},
			Voters: []Voter{genesisVoter("voter-a"), genesisVoter("voter-b")},
			Queries: []Query{
				{ID: 1, Status: QueryStatusActive, RewardAmount: math.NewInt(1), Confidence: math.LegacyZeroDec(), ResolvedOutcome: -1},
				{ID: 2, Status: QueryStatusResolved, RewardAmount: math.NewInt(1), Confidence: math.LegacyZeroDec(), ResolvedOutcome: 0},
			},
			Votes: []Vote{
				{QueryID: 1, Voter: "voter-a", OutcomeIndex: 0, LockedAmount: math.ZeroInt()},
			},
		}
	}

	require.NoError(t, base().Validate())

	t.Run("bad params", func(t *testing.T) {
		gs := base()
		gs.Params.StakeDenom = ""
		require.Error(t, gs.Validate())
	})

	t.Run("zero next query id", func(t *testing.T) {
		gs := base()
		gs.NextQueryID = 0
		require.Error(t, gs.Validate())
	})

	t.Run("duplicate voter", func(t *testing.T) {
		gs := base()
		gs.Voters = append(gs.Voters, genesisVoter("voter-a"))
		require.Error(t, gs.Validate())
	})

	t.Run("stats voter count mismatch", func(t *testing.T) {
		gs := base()
		gs.RegistryStats.VoterCount = 5
		require.Error(t, gs.Validate())
	})

	t.Run("query id beyond sequence", func(t *testing.T) {
		gs := base()
		gs.Queries[0].ID = 3
		require.Error(t, gs.Validate())
	})

	t.Run("duplicate query id", func(t *testing.T) {
		gs := base()
		gs.Queries[1].ID = 1
		require.Error(t, gs.Validate())
	})

	t.Run("vote references unknown query", func(t *testing.T) {
		gs := base()
		gs.Votes[0].QueryID = 99
		require.Error(t, gs.Validate())
	})

	t.Run("vote references unknown voter", func(t *testing.T) {
		gs := base()
		gs.Votes[0].Voter = "ghost"
		require.Error(t, gs.Validate())
	})

	t.Run("commit references unknown query", func(t *testing.T) {
		gs := base()
		gs.VoteCommits = []VoteCommit{{QueryID: 99, Voter: "voter-a", LockedAmount: math.ZeroInt()}}
		require.Error(t, gs.Validate())
	})
}
