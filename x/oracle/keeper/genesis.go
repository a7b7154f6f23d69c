package keeper

import (
	"fmt"

	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/veritas-chain/veritas/x/oracle/types"
)

// InitGenesis initializes the module's state from a provided genesis state.
func (k Keeper) InitGenesis(ctx sdk.Context, genState types.GenesisState) {
	if err := k.SetParams(ctx, genState.Params); err != nil {
		panic(fmt.Sprintf("failed to set params: %s", err))
	}

	k.SetPaused(ctx, genState.Paused)
	k.SetQuerySequence(ctx, genState.NextQueryID)

	if err := k.SetTreasury(ctx, genState.Treasury); err != nil {
		panic(fmt.Sprintf("failed to set treasury: %s", err))
	}
	if err := k.SetRegistryStats(ctx, genState.RegistryStats); err != nil {
		panic(fmt.Sprintf("failed to set registry stats: %s", err))
	}

	for _, voter := range genState.Voters {
		if err := k.SetVoter(ctx, voter); err != nil {
			k.Logger(ctx).Error("failed to set voter during genesis", "voter", voter.Address, "error", err)
		}
	}
	for _, query := range genState.Queries {
		if err := k.SetQuery(ctx, query); err != nil {
			k.Logger(ctx).Error("failed to set query during genesis", "query_id", query.ID, "error", err)
		}
	}
	for _, vote := range genState.Votes {
		if err := k.SetVote(ctx, vote); err != nil {
			k.Logger(ctx).Error("failed to set vote during genesis", "query_id", vote.QueryID, "voter", vote.Voter, "error", err)
		}
	}
	for _, commit := range genState.VoteCommits {
		if err := k.SetCommit(ctx, commit); err != nil {
			k.Logger(ctx).Error("failed to set commitment during genesis", "query_id", commit.QueryID, "voter", commit.Voter, "error", err)
		}
	}

	k.Logger(ctx).Info("oracle module genesis initialized",
		"voters", len(genState.Voters),
		"queries", len(genState.Queries),
	)
}

// ExportGenesis returns the module's exported genesis state.
func (k Keeper) ExportGenesis(ctx sdk.Context) *types.GenesisState {
	return &types.GenesisState{
		Params:        k.GetParams(ctx),
		Paused:        k.IsPaused(ctx),
		NextQueryID:   k.PeekQueryID(ctx),
		Treasury:      k.GetTreasury(ctx),
		RegistryStats: k.GetRegistryStats(ctx),
		Voters:        k.GetAllVoters(ctx),
		Queries:       k.GetAllQueries(ctx),
		Votes:         k.GetAllVotes(ctx),
		VoteCommits:   k.GetAllCommits(ctx),
	}
}
