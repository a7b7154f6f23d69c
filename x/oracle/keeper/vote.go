package keeper

import (
	"encoding/json"

	errorsmod "cosmossdk.io/errors"
	"cosmossdk.io/math"
	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/veritas-chain/veritas/x/oracle/types"
)

// GetVote returns a single vote on a query
func (k Keeper) GetVote(ctx sdk.Context, queryID uint64, voter string) (types.Vote, bool) {
	var vote types.Vote
	found, err := k.getValue(ctx, types.GetVoteKey(queryID, voter), &vote)
	if !found || err != nil {
		return types.Vote{}, false
	}
	return vote, true
}

// SetVote stores a vote record
func (k Keeper) SetVote(ctx sdk.Context, vote types.Vote) error {
	return k.setValue(ctx, types.GetVoteKey(vote.QueryID, vote.Voter), vote)
}

// GetVotesForQuery returns all votes recorded on a query, in store order
func (k Keeper) GetVotesForQuery(ctx sdk.Context, queryID uint64) []types.Vote {
	store := ctx.KVStore(k.storeKey)
	iterator := storetypes.KVStorePrefixIterator(store, types.GetVotePrefix(queryID))
	defer iterator.Close()

	var votes []types.Vote
	for ; iterator.Valid(); iterator.Next() {
		var vote types.Vote
		if err := json.Unmarshal(iterator.Value(), &vote); err != nil {
			k.Logger(ctx).Error("skipping corrupt vote record", "key", string(iterator.Key()), "error", err)
			continue
		}
		votes = append(votes, vote)
	}
	return votes
}

// GetAllVotes returns every vote record across all queries
func (k Keeper) GetAllVotes(ctx sdk.Context) []types.Vote {
	store := ctx.KVStore(k.storeKey)
	iterator := storetypes.KVStorePrefixIterator(store, types.VoteKeyPrefix)
	defer iterator.Close()

	var votes []types.Vote
	for ; iterator.Valid(); iterator.Next() {
		var vote types.Vote
		if err := json.Unmarshal(iterator.Value(), &vote); err != nil {
			continue
		}
		votes = append(votes, vote)
	}
	return votes
}

// GetCommit returns a vote commitment on a query
func (k Keeper) GetCommit(ctx sdk.Context, queryID uint64, voter string) (types.VoteCommit, bool) {
	var commit types.VoteCommit
	found, err := k.getValue(ctx, types.GetVoteCommitKey(queryID, voter), &commit)
	if !found || err != nil {
		return types.VoteCommit{}, false
	}
	return commit, true
}

// SetCommit stores a vote commitment
func (k Keeper) SetCommit(ctx sdk.Context, commit types.VoteCommit) error {
	return k.setValue(ctx, types.GetVoteCommitKey(commit.QueryID, commit.Voter), commit)
}

// GetCommitsForQuery returns all commitments recorded on a query
func (k Keeper) GetCommitsForQuery(ctx sdk.Context, queryID uint64) []types.VoteCommit {
	store := ctx.KVStore(k.storeKey)
	iterator := storetypes.KVStorePrefixIterator(store, types.GetVoteCommitPrefix(queryID))
	defer iterator.Close()

	var commits []types.VoteCommit
	for ; iterator.Valid(); iterator.Next() {
		var commit types.VoteCommit
		if err := json.Unmarshal(iterator.Value(), &commit); err != nil {
			k.Logger(ctx).Error("skipping corrupt commitment record", "key", string(iterator.Key()), "error", err)
			continue
		}
		commits = append(commits, commit)
	}
	return commits
}

// GetAllCommits returns every commitment record across all queries
func (k Keeper) GetAllCommits(ctx sdk.Context) []types.VoteCommit {
	store := ctx.KVStore(k.storeKey)
	iterator := storetypes.KVStorePrefixIterator(store, types.VoteCommitKeyPrefix)
	defer iterator.Close()

	var commits []types.VoteCommit
	for ; iterator.Valid(); iterator.Next() {
		var commit types.VoteCommit
		if err := json.Unmarshal(iterator.Value(), &commit); err != nil {
			continue
		}
		commits = append(commits, commit)
	}
	return commits
}

// prepareVoter runs the shared voter-side checks for any vote path and
// locks the stake the vote puts at risk.
func (k Keeper) prepareVoter(ctx sdk.Context, addr string) (types.Voter, math.Int, error) {
	voter, found := k.GetVoter(ctx, addr)
	if !found {
		return types.Voter{}, math.Int{}, errorsmod.Wrap(types.ErrVoterNotRegistered, addr)
	}
	if !voter.Active {
		return types.Voter{}, math.Int{}, errorsmod.Wrap(types.ErrVoterInactive, addr)
	}

	params := k.GetParams(ctx)
	available := voter.AvailableStake()
	if !available.IsPositive() {
		return types.Voter{}, math.Int{}, errorsmod.Wrapf(types.ErrInsufficientStake, "no unlocked stake for %s", addr)
	}
	lock := types.CalculateStakeToLock(available, params.MinStake)
	voter.LockedStake = voter.LockedStake.Add(lock)
	voter.TotalVotes++
	return voter, lock, nil
}

// SubmitVote records a direct vote on an active query and locks a portion
// of the voter's stake against it.
func (k Keeper) SubmitVote(ctx sdk.Context, queryID uint64, addr string, outcomeIndex uint32, confidence uint64) (types.Vote, error) {
	query, found := k.GetQuery(ctx, queryID)
	if !found {
		return types.Vote{}, errorsmod.Wrapf(types.ErrQueryNotFound, "query %d", queryID)
	}
	if query.Status != types.QueryStatusActive {
		return types.Vote{}, errorsmod.Wrapf(types.ErrQueryNotActive, "query %d is %s", queryID, query.Status)
	}
	if query.CommitReveal {
		return types.Vote{}, errorsmod.Wrapf(types.ErrVotingPhaseClosed, "query %d requires commit-reveal voting", queryID)
	}
	now := ctx.BlockTime().Unix()
	if now >= query.Deadline {
		return types.Vote{}, errorsmod.Wrapf(types.ErrVotingPhaseClosed, "query %d deadline passed", queryID)
	}
	if int(outcomeIndex) >= len(query.Outcomes) {
		return types.Vote{}, errorsmod.Wrapf(types.ErrInvalidOutcome, "index %d, %d outcomes", outcomeIndex, len(query.Outcomes))
	}
	if confidence > types.MaxConfidence {
		return types.Vote{}, errorsmod.Wrapf(types.ErrInvalidConfidence, "got %d", confidence)
	}
	if _, voted := k.GetVote(ctx, queryID, addr); voted {
		return types.Vote{}, errorsmod.Wrapf(types.ErrAlreadyVoted, "voter %s on query %d", addr, queryID)
	}

	voter, lock, err := k.prepareVoter(ctx, addr)
	if err != nil {
		return types.Vote{}, err
	}
	if err := k.SetVoter(ctx, voter); err != nil {
		return types.Vote{}, err
	}

	vote := types.Vote{
		QueryID:      queryID,
		Voter:        addr,
		OutcomeIndex: outcomeIndex,
		Confidence:   confidence,
		LockedAmount: lock,
		SubmittedAt:  now,
	}
	if err := k.SetVote(ctx, vote); err != nil {
		return types.Vote{}, err
	}

	query.VoteCount++
	if err := k.SetQuery(ctx, query); err != nil {
		return types.Vote{}, err
	}

	ctx.EventManager().EmitEvent(sdk.NewEvent(
		types.EventTypeSubmitVote,
		sdk.NewAttribute(types.AttributeKeyQueryID, formatQueryID(queryID)),
		sdk.NewAttribute(types.AttributeKeyVoter, addr),
		sdk.NewAttribute(types.AttributeKeyOutcomeIndex, formatQueryID(uint64(outcomeIndex))),
	))
	return vote, nil
}

// CommitVote records a hashed vote during the commit phase
func (k Keeper) CommitVote(ctx sdk.Context, queryID uint64, addr, commitment string) (types.VoteCommit, error) {
	query, found := k.GetQuery(ctx, queryID)
	if !found {
		return types.VoteCommit{}, errorsmod.Wrapf(types.ErrQueryNotFound, "query %d", queryID)
	}
	if query.Status != types.QueryStatusActive {
		return types.VoteCommit{}, errorsmod.Wrapf(types.ErrQueryNotActive, "query %d is %s", queryID, query.Status)
	}
	if !query.CommitReveal {
		return types.VoteCommit{}, errorsmod.Wrapf(types.ErrVotingPhaseClosed, "query %d uses direct voting", queryID)
	}
	now := ctx.BlockTime().Unix()
	if !query.InCommitPhase(now) {
		return types.VoteCommit{}, errorsmod.Wrapf(types.ErrVotingPhaseClosed, "commit phase for query %d is over", queryID)
	}
	if commitment == "" || len(commitment) > types.MaxCommitmentLength {
		return types.VoteCommit{}, errorsmod.Wrapf(types.ErrInvalidCommitment, "commitment must be 1-%d characters", types.MaxCommitmentLength)
	}
	if _, committed := k.GetCommit(ctx, queryID, addr); committed {
		return types.VoteCommit{}, errorsmod.Wrapf(types.ErrAlreadyVoted, "voter %s already committed on query %d", addr, queryID)
	}

	voter, lock, err := k.prepareVoter(ctx, addr)
	if err != nil {
		return types.VoteCommit{}, err
	}
	if err := k.SetVoter(ctx, voter); err != nil {
		return types.VoteCommit{}, err
	}

	commit := types.VoteCommit{
		QueryID:      queryID,
		Voter:        addr,
		Commitment:   commitment,
		LockedAmount: lock,
		CommittedAt:  now,
	}
	if err := k.SetCommit(ctx, commit); err != nil {
		return types.VoteCommit{}, err
	}

	ctx.EventManager().EmitEvent(sdk.NewEvent(
		types.EventTypeCommitVote,
		sdk.NewAttribute(types.AttributeKeyQueryID, formatQueryID(queryID)),
		sdk.NewAttribute(types.AttributeKeyVoter, addr),
	))
	return commit, nil
}

// RevealVote opens a commitment during the reveal phase. The reveal must
// hash to the stored commitment, and the resulting vote inherits the lock
// taken at commit time.
func (k Keeper) RevealVote(ctx sdk.Context, queryID uint64, addr string, outcomeIndex uint32, salt string, confidence uint64) (types.Vote, error) {
	query, found := k.GetQuery(ctx, queryID)
	if !found {
		return types.Vote{}, errorsmod.Wrapf(types.ErrQueryNotFound, "query %d", queryID)
	}
	if query.Status != types.QueryStatusActive {
		return types.Vote{}, errorsmod.Wrapf(types.ErrQueryNotActive, "query %d is %s", queryID, query.Status)
	}
	now := ctx.BlockTime().Unix()
	if !query.InRevealPhase(now) {
		return types.Vote{}, errorsmod.Wrapf(types.ErrVotingPhaseClosed, "reveal phase for query %d is not open", queryID)
	}

	commit, found := k.GetCommit(ctx, queryID, addr)
	if !found {
		return types.Vote{}, errorsmod.Wrapf(types.ErrCommitmentNotFound, "voter %s on query %d", addr, queryID)
	}
	if commit.Revealed {
		return types.Vote{}, errorsmod.Wrapf(types.ErrAlreadyVoted, "voter %s already revealed on query %d", addr, queryID)
	}
	if int(outcomeIndex) >= len(query.Outcomes) {
		return types.Vote{}, errorsmod.Wrapf(types.ErrInvalidOutcome, "index %d, %d outcomes", outcomeIndex, len(query.Outcomes))
	}
	if confidence > types.MaxConfidence {
		return types.Vote{}, errorsmod.Wrapf(types.ErrInvalidConfidence, "got %d", confidence)
	}
	if types.ComputeCommitment(outcomeIndex, salt, confidence) != commit.Commitment {
		return types.Vote{}, errorsmod.Wrapf(types.ErrInvalidReveal, "voter %s on query %d", addr, queryID)
	}

	vote := types.Vote{
		QueryID:      queryID,
		Voter:        addr,
		OutcomeIndex: outcomeIndex,
		Confidence:   confidence,
		LockedAmount: commit.LockedAmount,
		SubmittedAt:  now,
	}
	if err := k.SetVote(ctx, vote); err != nil {
		return types.Vote{}, err
	}

	commit.Revealed = true
	if err := k.SetCommit(ctx, commit); err != nil {
		return types.Vote{}, err
	}

	query.VoteCount++
	if err := k.SetQuery(ctx, query); err != nil {
		return types.Vote{}, err
	}

	ctx.EventManager().EmitEvent(sdk.NewEvent(
		types.EventTypeRevealVote,
		sdk.NewAttribute(types.AttributeKeyQueryID, formatQueryID(queryID)),
		sdk.NewAttribute(types.AttributeKeyVoter, addr),
		sdk.NewAttribute(types.AttributeKeyOutcomeIndex, formatQueryID(uint64(outcomeIndex))),
	))
	return vote, nil
}
