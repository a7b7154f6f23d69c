package keeper

import (
	"context"

	errorsmod "cosmossdk.io/errors"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/veritas-chain/veritas/x/oracle/types"
)

type queryServer struct {
	Keeper
}

// NewQueryServerImpl returns an implementation of the QueryServer interface
func NewQueryServerImpl(keeper Keeper) types.QueryServer {
	return &queryServer{Keeper: keeper}
}

var _ types.QueryServer = queryServer{}

func (qs queryServer) Params(goCtx context.Context, _ *types.QueryParamsRequest) (*types.QueryParamsResponse, error) {
	ctx := sdk.UnwrapSDKContext(goCtx)
	return &types.QueryParamsResponse{Params: qs.GetParams(ctx)}, nil
}

func (qs queryServer) Voter(goCtx context.Context, req *types.QueryVoterRequest) (*types.QueryVoterResponse, error) {
	ctx := sdk.UnwrapSDKContext(goCtx)
	voter, found := qs.GetVoter(ctx, req.Address)
	if !found {
		return nil, errorsmod.Wrap(types.ErrVoterNotRegistered, req.Address)
	}
	return &types.QueryVoterResponse{Voter: voter}, nil
}

func (qs queryServer) Voters(goCtx context.Context, req *types.QueryVotersRequest) (*types.QueryVotersResponse, error) {
	ctx := sdk.UnwrapSDKContext(goCtx)
	var voters []types.Voter
	qs.IterateVoters(ctx, func(v types.Voter) bool {
		if req.ActiveOnly && !v.Active {
			return false
		}
		voters = append(voters, v)
		return false
	})
	return &types.QueryVotersResponse{Voters: voters}, nil
}

func (qs queryServer) Reputation(goCtx context.Context, req *types.QueryReputationRequest) (*types.QueryReputationResponse, error) {
	ctx := sdk.UnwrapSDKContext(goCtx)
	stats, err := qs.GetReputationStats(ctx, req.Address)
	if err != nil {
		return nil, err
	}
	return &types.QueryReputationResponse{Stats: stats}, nil
}

func (qs queryServer) Query(goCtx context.Context, req *types.QueryQueryRequest) (*types.QueryQueryResponse, error) {
	ctx := sdk.UnwrapSDKContext(goCtx)
	query, found := qs.GetQuery(ctx, req.QueryID)
	if !found {
		return nil, errorsmod.Wrapf(types.ErrQueryNotFound, "query %d", req.QueryID)
	}
	return &types.QueryQueryResponse{Query: query}, nil
}

func (qs queryServer) Queries(goCtx context.Context, req *types.QueryQueriesRequest) (*types.QueryQueriesResponse, error) {
	ctx := sdk.UnwrapSDKContext(goCtx)
	var queries []types.Query
	qs.IterateQueries(ctx, func(q types.Query) bool {
		if req.Status != "" && q.Status != req.Status {
			return false
		}
		queries = append(queries, q)
		return false
	})
	return &types.QueryQueriesResponse{Queries: queries}, nil
}

func (qs queryServer) Votes(goCtx context.Context, req *types.QueryVotesRequest) (*types.QueryVotesResponse, error) {
	ctx := sdk.UnwrapSDKContext(goCtx)
	if _, found := qs.GetQuery(ctx, req.QueryID); !found {
		return nil, errorsmod.Wrapf(types.ErrQueryNotFound, "query %d", req.QueryID)
	}
	if req.Voter != "" {
		vote, found := qs.GetVote(ctx, req.QueryID, req.Voter)
		if !found {
			return nil, errorsmod.Wrapf(types.ErrVoteNotFound, "query %d voter %s", req.QueryID, req.Voter)
		}
		return &types.QueryVotesResponse{Votes: []types.Vote{vote}}, nil
	}
	return &types.QueryVotesResponse{Votes: qs.GetVotesForQuery(ctx, req.QueryID)}, nil
}

func (qs queryServer) PendingRewards(goCtx context.Context, req *types.QueryPendingRewardsRequest) (*types.QueryPendingRewardsResponse, error) {
	ctx := sdk.UnwrapSDKContext(goCtx)
	voter, found := qs.GetVoter(ctx, req.Address)
	if !found {
		return nil, errorsmod.Wrap(types.ErrVoterNotRegistered, req.Address)
	}
	return &types.QueryPendingRewardsResponse{Amount: voter.PendingRewards}, nil
}

func (qs queryServer) Treasury(goCtx context.Context, _ *types.QueryTreasuryRequest) (*types.QueryTreasuryResponse, error) {
	ctx := sdk.UnwrapSDKContext(goCtx)
	return &types.QueryTreasuryResponse{Treasury: qs.GetTreasury(ctx)}, nil
}

func (qs queryServer) ProtocolStatus(goCtx context.Context, _ *types.QueryProtocolStatusRequest) (*types.QueryProtocolStatusResponse, error) {
	ctx := sdk.UnwrapSDKContext(goCtx)
	return &types.QueryProtocolStatusResponse{
		Paused:        qs.IsPaused(ctx),
		RegistryStats: qs.GetRegistryStats(ctx),
		NextQueryID:   qs.PeekQueryID(ctx),
	}, nil
}
