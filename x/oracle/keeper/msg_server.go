package keeper

import (
	"context"

	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/veritas-chain/veritas/x/oracle/types"
)

type msgServer struct {
	Keeper
}

// NewMsgServerImpl returns an implementation of the MsgServer interface
func NewMsgServerImpl(keeper Keeper) types.MsgServer {
	return &msgServer{Keeper: keeper}
}

var _ types.MsgServer = msgServer{}

// RegisterVoter handles voter self-registration
func (ms msgServer) RegisterVoter(goCtx context.Context, msg *types.MsgRegisterVoter) (*types.MsgRegisterVoterResponse, error) {
	ctx := sdk.UnwrapSDKContext(goCtx)
	if err := msg.ValidateBasic(); err != nil {
		return nil, err
	}
	if err := ms.CheckNotPaused(ctx); err != nil {
		return nil, err
	}

	voter, err := ms.Keeper.RegisterVoter(ctx, msg.Voter, msg.Stake, msg.Name, msg.MetadataURL)
	if err != nil {
		return nil, err
	}

	ctx.EventManager().EmitEvent(sdk.NewEvent(
		types.EventTypeRegisterVoter,
		sdk.NewAttribute(types.AttributeKeyVoter, msg.Voter),
		sdk.NewAttribute(types.AttributeKeyStake, msg.Stake.String()),
		sdk.NewAttribute(types.AttributeKeyReputation, formatQueryID(voter.Reputation)),
	))
	return &types.MsgRegisterVoterResponse{Reputation: voter.Reputation}, nil
}

// RegisterVoterFor lets the authority register a voter on their behalf.
// The stake still comes from the voter's own account.
func (ms msgServer) RegisterVoterFor(goCtx context.Context, msg *types.MsgRegisterVoterFor) (*types.MsgRegisterVoterResponse, error) {
	ctx := sdk.UnwrapSDKContext(goCtx)
	if err := msg.ValidateBasic(); err != nil {
		return nil, err
	}
	if err := ms.CheckAuthority(msg.Authority); err != nil {
		return nil, err
	}
	if err := ms.CheckNotPaused(ctx); err != nil {
		return nil, err
	}

	voter, err := ms.Keeper.RegisterVoter(ctx, msg.Voter, msg.Stake, msg.Name, msg.MetadataURL)
	if err != nil {
		return nil, err
	}

	ctx.EventManager().EmitEvent(sdk.NewEvent(
		types.EventTypeRegisterVoter,
		sdk.NewAttribute(types.AttributeKeyVoter, msg.Voter),
		sdk.NewAttribute(types.AttributeKeyStake, msg.Stake.String()),
		sdk.NewAttribute(types.AttributeKeyAuthority, msg.Authority),
	))
	return &types.MsgRegisterVoterResponse{Reputation: voter.Reputation}, nil
}

// UpdateStake tops up an existing voter's stake
func (ms msgServer) UpdateStake(goCtx context.Context, msg *types.MsgUpdateStake) (*types.MsgUpdateStakeResponse, error) {
	ctx := sdk.UnwrapSDKContext(goCtx)
	if err := msg.ValidateBasic(); err != nil {
		return nil, err
	}
	if err := ms.CheckNotPaused(ctx); err != nil {
		return nil, err
	}

	voter, err := ms.AddStake(ctx, msg.Voter, msg.Amount)
	if err != nil {
		return nil, err
	}

	ctx.EventManager().EmitEvent(sdk.NewEvent(
		types.EventTypeUpdateStake,
		sdk.NewAttribute(types.AttributeKeyVoter, msg.Voter),
		sdk.NewAttribute(types.AttributeKeyAmount, msg.Amount.String()),
		sdk.NewAttribute(types.AttributeKeyStake, voter.Stake.String()),
	))
	return &types.MsgUpdateStakeResponse{Stake: voter.Stake}, nil
}

// WithdrawStake releases unlocked stake back to the voter
func (ms msgServer) WithdrawStake(goCtx context.Context, msg *types.MsgWithdrawStake) (*types.MsgWithdrawStakeResponse, error) {
	ctx := sdk.UnwrapSDKContext(goCtx)
	if err := msg.ValidateBasic(); err != nil {
		return nil, err
	}
	if err := ms.CheckNotPaused(ctx); err != nil {
		return nil, err
	}

	voter, err := ms.Keeper.WithdrawStake(ctx, msg.Voter, msg.Amount)
	if err != nil {
		return nil, err
	}

	ctx.EventManager().EmitEvent(sdk.NewEvent(
		types.EventTypeWithdrawStake,
		sdk.NewAttribute(types.AttributeKeyVoter, msg.Voter),
		sdk.NewAttribute(types.AttributeKeyAmount, msg.Amount.String()),
		sdk.NewAttribute(types.AttributeKeyStake, voter.Stake.String()),
	))
	return &types.MsgWithdrawStakeResponse{Stake: voter.Stake}, nil
}

// DeregisterVoter removes a voter and returns their stake
func (ms msgServer) DeregisterVoter(goCtx context.Context, msg *types.MsgDeregisterVoter) (*types.MsgDeregisterVoterResponse, error) {
	ctx := sdk.UnwrapSDKContext(goCtx)
	if err := msg.ValidateBasic(); err != nil {
		return nil, err
	}
	if err := ms.CheckNotPaused(ctx); err != nil {
		return nil, err
	}

	returned, err := ms.Keeper.DeregisterVoter(ctx, msg.Voter)
	if err != nil {
		return nil, err
	}

	ctx.EventManager().EmitEvent(sdk.NewEvent(
		types.EventTypeDeregisterVoter,
		sdk.NewAttribute(types.AttributeKeyVoter, msg.Voter),
		sdk.NewAttribute(types.AttributeKeyAmount, returned.String()),
	))
	return &types.MsgDeregisterVoterResponse{Returned: returned}, nil
}

// CreateQuery opens a new query for voting
func (ms msgServer) CreateQuery(goCtx context.Context, msg *types.MsgCreateQuery) (*types.MsgCreateQueryResponse, error) {
	ctx := sdk.UnwrapSDKContext(goCtx)
	if err := msg.ValidateBasic(); err != nil {
		return nil, err
	}
	if err := ms.CheckNotPaused(ctx); err != nil {
		return nil, err
	}

	query, err := ms.Keeper.CreateQuery(
		ctx,
		msg.Creator,
		msg.Description,
		msg.Outcomes,
		msg.Strategy,
		msg.RewardAmount,
		msg.MinVotes,
		msg.Deadline,
		msg.CommitReveal,
		msg.CallbackChannel,
		msg.CallbackData,
		"",
	)
	if err != nil {
		return nil, err
	}

	ctx.EventManager().EmitEvent(sdk.NewEvent(
		types.EventTypeCreateQuery,
		sdk.NewAttribute(types.AttributeKeyQueryID, formatQueryID(query.ID)),
		sdk.NewAttribute(types.AttributeKeyCreator, msg.Creator),
		sdk.NewAttribute(types.AttributeKeyStrategy, string(msg.Strategy)),
	))
	return &types.MsgCreateQueryResponse{QueryID: query.ID}, nil
}

// SubmitVote casts a direct vote
func (ms msgServer) SubmitVote(goCtx context.Context, msg *types.MsgSubmitVote) (*types.MsgSubmitVoteResponse, error) {
	ctx := sdk.UnwrapSDKContext(goCtx)
	if err := msg.ValidateBasic(); err != nil {
		return nil, err
	}
	if err := ms.CheckNotPaused(ctx); err != nil {
		return nil, err
	}

	vote, err := ms.Keeper.SubmitVote(ctx, msg.QueryID, msg.Voter, msg.OutcomeIndex, msg.Confidence)
	if err != nil {
		return nil, err
	}
	return &types.MsgSubmitVoteResponse{LockedAmount: vote.LockedAmount}, nil
}

// CommitVote submits a hashed vote
func (ms msgServer) CommitVote(goCtx context.Context, msg *types.MsgCommitVote) (*types.MsgCommitVoteResponse, error) {
	ctx := sdk.UnwrapSDKContext(goCtx)
	if err := msg.ValidateBasic(); err != nil {
		return nil, err
	}
	if err := ms.CheckNotPaused(ctx); err != nil {
		return nil, err
	}

	commit, err := ms.Keeper.CommitVote(ctx, msg.QueryID, msg.Voter, msg.Commitment)
	if err != nil {
		return nil, err
	}
	return &types.MsgCommitVoteResponse{LockedAmount: commit.LockedAmount}, nil
}

// RevealVote opens a committed vote
func (ms msgServer) RevealVote(goCtx context.Context, msg *types.MsgRevealVote) (*types.MsgRevealVoteResponse, error) {
	ctx := sdk.UnwrapSDKContext(goCtx)
	if err := msg.ValidateBasic(); err != nil {
		return nil, err
	}
	if err := ms.CheckNotPaused(ctx); err != nil {
		return nil, err
	}

	if _, err := ms.Keeper.RevealVote(ctx, msg.QueryID, msg.Voter, msg.OutcomeIndex, msg.Salt, msg.Confidence); err != nil {
		return nil, err
	}
	return &types.MsgRevealVoteResponse{}, nil
}

// ResolveQuery finalizes a query past its deadline. Anyone may trigger it.
func (ms msgServer) ResolveQuery(goCtx context.Context, msg *types.MsgResolveQuery) (*types.MsgResolveQueryResponse, error) {
	ctx := sdk.UnwrapSDKContext(goCtx)
	if err := msg.ValidateBasic(); err != nil {
		return nil, err
	}
	if err := ms.CheckNotPaused(ctx); err != nil {
		return nil, err
	}

	query, err := ms.Keeper.ResolveQuery(ctx, msg.QueryID)
	if err != nil {
		return nil, err
	}
	return &types.MsgResolveQueryResponse{
		Status:          query.Status,
		ResolvedOutcome: query.ResolvedOutcome,
		Confidence:      query.Confidence,
	}, nil
}

// ClaimRewards pays out pending rewards
func (ms msgServer) ClaimRewards(goCtx context.Context, msg *types.MsgClaimRewards) (*types.MsgClaimRewardsResponse, error) {
	ctx := sdk.UnwrapSDKContext(goCtx)
	if err := msg.ValidateBasic(); err != nil {
		return nil, err
	}
	if err := ms.CheckNotPaused(ctx); err != nil {
		return nil, err
	}

	amount, err := ms.Keeper.ClaimRewards(ctx, msg.Voter)
	if err != nil {
		return nil, err
	}
	return &types.MsgClaimRewardsResponse{Amount: amount}, nil
}

// CancelQuery aborts an active query. Authority only.
func (ms msgServer) CancelQuery(goCtx context.Context, msg *types.MsgCancelQuery) (*types.MsgCancelQueryResponse, error) {
	ctx := sdk.UnwrapSDKContext(goCtx)
	if err := msg.ValidateBasic(); err != nil {
		return nil, err
	}
	if err := ms.CheckAuthority(msg.Authority); err != nil {
		return nil, err
	}
	if err := ms.CheckNotPaused(ctx); err != nil {
		return nil, err
	}

	if _, err := ms.Keeper.CancelQuery(ctx, msg.QueryID); err != nil {
		return nil, err
	}
	return &types.MsgCancelQueryResponse{}, nil
}

// ExpireQuery force-expires a query past its deadline. Authority only.
func (ms msgServer) ExpireQuery(goCtx context.Context, msg *types.MsgExpireQuery) (*types.MsgExpireQueryResponse, error) {
	ctx := sdk.UnwrapSDKContext(goCtx)
	if err := msg.ValidateBasic(); err != nil {
		return nil, err
	}
	if err := ms.CheckAuthority(msg.Authority); err != nil {
		return nil, err
	}
	if err := ms.CheckNotPaused(ctx); err != nil {
		return nil, err
	}

	if _, err := ms.Keeper.ExpireQuery(ctx, msg.QueryID); err != nil {
		return nil, err
	}
	return &types.MsgExpireQueryResponse{}, nil
}

// CheckExpiredQueries sweeps under-quorum queries past their deadline
func (ms msgServer) CheckExpiredQueries(goCtx context.Context, msg *types.MsgCheckExpiredQueries) (*types.MsgCheckExpiredQueriesResponse, error) {
	ctx := sdk.UnwrapSDKContext(goCtx)
	if err := msg.ValidateBasic(); err != nil {
		return nil, err
	}
	if err := ms.CheckNotPaused(ctx); err != nil {
		return nil, err
	}

	expired := ms.Keeper.CheckExpiredQueries(ctx)
	return &types.MsgCheckExpiredQueriesResponse{Expired: expired}, nil
}

// AutoResolveQueries resolves or expires every query past its deadline
func (ms msgServer) AutoResolveQueries(goCtx context.Context, msg *types.MsgAutoResolveQueries) (*types.MsgAutoResolveQueriesResponse, error) {
	ctx := sdk.UnwrapSDKContext(goCtx)
	if err := msg.ValidateBasic(); err != nil {
		return nil, err
	}
	if err := ms.CheckNotPaused(ctx); err != nil {
		return nil, err
	}

	resolved, expired := ms.Keeper.AutoResolveQueries(ctx)
	return &types.MsgAutoResolveQueriesResponse{Resolved: resolved, Expired: expired}, nil
}

// PauseProtocol halts all non-admin operations. Authority only.
func (ms msgServer) PauseProtocol(goCtx context.Context, msg *types.MsgPauseProtocol) (*types.MsgPauseProtocolResponse, error) {
	ctx := sdk.UnwrapSDKContext(goCtx)
	if err := msg.ValidateBasic(); err != nil {
		return nil, err
	}
	if err := ms.CheckAuthority(msg.Authority); err != nil {
		return nil, err
	}

	ms.SetPaused(ctx, true)
	ctx.EventManager().EmitEvent(sdk.NewEvent(
		types.EventTypeProtocolPaused,
		sdk.NewAttribute(types.AttributeKeyAuthority, msg.Authority),
	))
	ms.Logger(ctx).Info("protocol paused", "authority", msg.Authority)
	return &types.MsgPauseProtocolResponse{}, nil
}

// UnpauseProtocol resumes operations. Authority only, and deliberately
// exempt from the pause check.
func (ms msgServer) UnpauseProtocol(goCtx context.Context, msg *types.MsgUnpauseProtocol) (*types.MsgUnpauseProtocolResponse, error) {
	ctx := sdk.UnwrapSDKContext(goCtx)
	if err := msg.ValidateBasic(); err != nil {
		return nil, err
	}
	if err := ms.CheckAuthority(msg.Authority); err != nil {
		return nil, err
	}

	ms.SetPaused(ctx, false)
	ctx.EventManager().EmitEvent(sdk.NewEvent(
		types.EventTypeProtocolUnpaused,
		sdk.NewAttribute(types.AttributeKeyAuthority, msg.Authority),
	))
	ms.Logger(ctx).Info("protocol unpaused", "authority", msg.Authority)
	return &types.MsgUnpauseProtocolResponse{}, nil
}

// UpdateParams replaces the module parameters. Authority only.
func (ms msgServer) UpdateParams(goCtx context.Context, msg *types.MsgUpdateParams) (*types.MsgUpdateParamsResponse, error) {
	ctx := sdk.UnwrapSDKContext(goCtx)
	if err := msg.ValidateBasic(); err != nil {
		return nil, err
	}
	if err := ms.CheckAuthority(msg.Authority); err != nil {
		return nil, err
	}

	if err := ms.SetParams(ctx, msg.Params); err != nil {
		return nil, err
	}
	ctx.EventManager().EmitEvent(sdk.NewEvent(
		types.EventTypeParamsUpdated,
		sdk.NewAttribute(types.AttributeKeyAuthority, msg.Authority),
	))
	return &types.MsgUpdateParamsResponse{}, nil
}
