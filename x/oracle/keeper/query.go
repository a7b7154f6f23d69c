package keeper

import (
	"encoding/json"

	errorsmod "cosmossdk.io/errors"
	"cosmossdk.io/math"
	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/veritas-chain/veritas/x/oracle/types"
)

// GetQuery returns a query record by id
func (k Keeper) GetQuery(ctx sdk.Context, queryID uint64) (types.Query, bool) {
	var query types.Query
	found, err := k.getValue(ctx, types.GetQueryKey(queryID), &query)
	if !found || err != nil {
		return types.Query{}, false
	}
	return query, true
}

// SetQuery stores a query record
func (k Keeper) SetQuery(ctx sdk.Context, query types.Query) error {
	return k.setValue(ctx, types.GetQueryKey(query.ID), query)
}

// IterateQueries walks all query records until cb returns true
func (k Keeper) IterateQueries(ctx sdk.Context, cb func(types.Query) bool) {
	store := ctx.KVStore(k.storeKey)
	iterator := storetypes.KVStorePrefixIterator(store, types.QueryKeyPrefix)
	defer iterator.Close()

	for ; iterator.Valid(); iterator.Next() {
		var query types.Query
		if err := json.Unmarshal(iterator.Value(), &query); err != nil {
			k.Logger(ctx).Error("skipping corrupt query record", "key", string(iterator.Key()), "error", err)
			continue
		}
		if cb(query) {
			break
		}
	}
}

// GetAllQueries returns every query record
func (k Keeper) GetAllQueries(ctx sdk.Context) []types.Query {
	var queries []types.Query
	k.IterateQueries(ctx, func(q types.Query) bool {
		queries = append(queries, q)
		return false
	})
	return queries
}

// CreateQuery opens a new query. Zero minVotes or deadline fall back to
// the module defaults. The reward is escrowed from the creator's account
// unless the query originated from a cross-chain packet, in which case
// the reward is held on the origin chain.
func (k Keeper) CreateQuery(
	ctx sdk.Context,
	creator string,
	description string,
	outcomes []string,
	strategy types.DecisionStrategy,
	reward math.Int,
	minVotes uint64,
	deadline int64,
	commitReveal bool,
	callbackChannel string,
	callbackData []byte,
	sourceMarketID string,
) (types.Query, error) {
	params := k.GetParams(ctx)
	now := ctx.BlockTime().Unix()

	if minVotes == 0 {
		minVotes = params.DefaultMinVotes
	}
	if deadline == 0 {
		deadline = now + params.DefaultVotingDuration
	}

	stats := k.GetRegistryStats(ctx)
	if err := types.ValidateQueryParams(description, outcomes, strategy, reward, minVotes, deadline, now, stats.VoterCount); err != nil {
		return types.Query{}, err
	}

	if sourceMarketID == "" {
		accAddr, err := sdk.AccAddressFromBech32(creator)
		if err != nil {
			return types.Query{}, errorsmod.Wrapf(types.ErrInvalidParameters, "invalid creator address: %s", err)
		}
		coins := sdk.NewCoins(sdk.NewCoin(params.StakeDenom, reward))
		if err := k.bankKeeper.SendCoinsFromAccountToModule(ctx, accAddr, types.ModuleName, coins); err != nil {
			return types.Query{}, errorsmod.Wrap(types.ErrInvalidReward, err.Error())
		}
	}

	query := types.Query{
		ID:              k.NextQueryID(ctx),
		Creator:         creator,
		Description:     description,
		Outcomes:        outcomes,
		Strategy:        strategy,
		RewardAmount:    reward,
		MinVotes:        minVotes,
		CreatedAt:       now,
		Deadline:        deadline,
		CommitReveal:    commitReveal,
		Status:          types.QueryStatusActive,
		ResolvedOutcome: -1,
		Confidence:      math.LegacyZeroDec(),
		CallbackChannel: callbackChannel,
		CallbackData:    callbackData,
		SourceMarketID:  sourceMarketID,
	}
	if commitReveal {
		// commit window takes the first half of the voting period
		query.CommitDeadline = now + (deadline-now)/2
		query.RevealDeadline = deadline
	}

	if err := k.SetQuery(ctx, query); err != nil {
		return types.Query{}, err
	}

	k.Logger(ctx).Info("query created",
		"query_id", query.ID,
		"strategy", string(strategy),
		"outcomes", len(outcomes),
		"deadline", deadline,
		"commit_reveal", commitReveal,
	)
	return query, nil
}

// unlockQueryStakes releases every stake lock held by votes and unrevealed
// commitments on a query. Called exactly once, at the terminal transition.
func (k Keeper) unlockQueryStakes(ctx sdk.Context, queryID uint64) {
	for _, vote := range k.GetVotesForQuery(ctx, queryID) {
		k.unlockVoterStake(ctx, vote.Voter, vote.LockedAmount)
	}
	for _, commit := range k.GetCommitsForQuery(ctx, queryID) {
		if commit.Revealed {
			continue // lock moved to the vote record at reveal
		}
		k.unlockVoterStake(ctx, commit.Voter, commit.LockedAmount)
	}
}

func (k Keeper) unlockVoterStake(ctx sdk.Context, addr string, amount math.Int) {
	voter, found := k.GetVoter(ctx, addr)
	if !found {
		return
	}
	if amount.GT(voter.LockedStake) {
		k.Logger(ctx).Error("locked stake underflow, clamping", "voter", addr, "locked", voter.LockedStake.String(), "unlock", amount.String())
		amount = voter.LockedStake
	}
	voter.LockedStake = voter.LockedStake.Sub(amount)
	if err := k.SetVoter(ctx, voter); err != nil {
		k.Logger(ctx).Error("failed to unlock stake", "voter", addr, "error", err)
	}
}

// ExpireQuery moves an active query past its deadline to the expired
// state, releasing all stake locks. No settlement takes place.
func (k Keeper) ExpireQuery(ctx sdk.Context, queryID uint64) (types.Query, error) {
	query, found := k.GetQuery(ctx, queryID)
	if !found {
		return types.Query{}, errorsmod.Wrapf(types.ErrQueryNotFound, "query %d", queryID)
	}
	if query.Status.IsTerminal() {
		return types.Query{}, errorsmod.Wrapf(types.ErrAlreadyResolved, "query %d is %s", queryID, query.Status)
	}
	if ctx.BlockTime().Unix() < query.Deadline {
		return types.Query{}, errorsmod.Wrapf(types.ErrQueryNotActive, "query %d deadline not reached", queryID)
	}

	k.unlockQueryStakes(ctx, queryID)
	query.Status = types.QueryStatusExpired
	if err := k.SetQuery(ctx, query); err != nil {
		return types.Query{}, err
	}

	ctx.EventManager().EmitEvent(sdk.NewEvent(
		types.EventTypeExpireQuery,
		sdk.NewAttribute(types.AttributeKeyQueryID, formatQueryID(queryID)),
		sdk.NewAttribute(types.AttributeKeyVoteCount, formatQueryID(query.VoteCount)),
	))
	k.Logger(ctx).Info("query expired", "query_id", queryID, "votes", query.VoteCount, "min_votes", query.MinVotes)
	return query, nil
}

// CancelQuery aborts an active query. All stake locks are released and no
// settlement takes place.
func (k Keeper) CancelQuery(ctx sdk.Context, queryID uint64) (types.Query, error) {
	query, found := k.GetQuery(ctx, queryID)
	if !found {
		return types.Query{}, errorsmod.Wrapf(types.ErrQueryNotFound, "query %d", queryID)
	}
	if query.Status.IsTerminal() {
		return types.Query{}, errorsmod.Wrapf(types.ErrAlreadyResolved, "query %d is %s", queryID, query.Status)
	}

	k.unlockQueryStakes(ctx, queryID)
	query.Status = types.QueryStatusCancelled
	if err := k.SetQuery(ctx, query); err != nil {
		return types.Query{}, err
	}

	ctx.EventManager().EmitEvent(sdk.NewEvent(
		types.EventTypeCancelQuery,
		sdk.NewAttribute(types.AttributeKeyQueryID, formatQueryID(queryID)),
	))
	k.Logger(ctx).Info("query cancelled", "query_id", queryID)
	return query, nil
}

// CheckExpiredQueries sweeps active queries whose deadline passed without
// reaching quorum and expires them. Returns the expired query ids.
func (k Keeper) CheckExpiredQueries(ctx sdk.Context) []uint64 {
	now := ctx.BlockTime().Unix()
	var expired []uint64
	k.IterateQueries(ctx, func(q types.Query) bool {
		if q.Status != types.QueryStatusActive || now < q.Deadline || q.VoteCount >= q.MinVotes {
			return false
		}
		if _, err := k.ExpireQuery(ctx, q.ID); err != nil {
			k.Logger(ctx).Error("expiry sweep failed", "query_id", q.ID, "error", err)
			return false
		}
		expired = append(expired, q.ID)
		return false
	})
	return expired
}

// AutoResolveQueries resolves every active query past its deadline that
// reached quorum and expires the rest. Returns resolved and expired ids.
func (k Keeper) AutoResolveQueries(ctx sdk.Context) (resolved, expired []uint64) {
	now := ctx.BlockTime().Unix()
	var due []types.Query
	k.IterateQueries(ctx, func(q types.Query) bool {
		if q.Status == types.QueryStatusActive && now >= q.Deadline {
			due = append(due, q)
		}
		return false
	})

	for _, q := range due {
		result, err := k.ResolveQuery(ctx, q.ID)
		if err != nil {
			k.Logger(ctx).Error("auto-resolution failed", "query_id", q.ID, "error", err)
			continue
		}
		switch result.Status {
		case types.QueryStatusResolved:
			resolved = append(resolved, q.ID)
		case types.QueryStatusExpired:
			expired = append(expired, q.ID)
		}
	}
	return resolved, expired
}

// ResolveQuery finalizes a query past its deadline. Below quorum the query
// expires without settlement; otherwise the decision strategy picks the
// outcome, rewards and slashes are settled, and a callback is queued for
// cross-chain queries. Terminal queries reject re-resolution, which makes
// duplicate resolution attempts harmless.
func (k Keeper) ResolveQuery(ctx sdk.Context, queryID uint64) (types.Query, error) {
	query, found := k.GetQuery(ctx, queryID)
	if !found {
		return types.Query{}, errorsmod.Wrapf(types.ErrQueryNotFound, "query %d", queryID)
	}
	if query.Status.IsTerminal() {
		return types.Query{}, errorsmod.Wrapf(types.ErrAlreadyResolved, "query %d is %s", queryID, query.Status)
	}
	now := ctx.BlockTime().Unix()
	if now < query.Deadline {
		return types.Query{}, errorsmod.Wrapf(types.ErrQueryNotActive, "query %d voting is still open", queryID)
	}

	votes := k.GetVotesForQuery(ctx, queryID)
	if uint64(len(votes)) < query.MinVotes {
		return k.ExpireQuery(ctx, queryID)
	}

	result, err := k.Aggregate(ctx, query, votes)
	if err != nil {
		return types.Query{}, err
	}

	// Release this query's locks before settling so the slash cap sees
	// only stake still locked by other open queries.
	k.unlockQueryStakes(ctx, queryID)
	k.SettleQuery(ctx, query, votes, result)

	query.Status = types.QueryStatusResolved
	query.ResolvedOutcome = int32(result.WinningIndex)
	query.ResolvedAt = now
	query.Confidence = result.Confidence
	if err := k.SetQuery(ctx, query); err != nil {
		return types.Query{}, err
	}

	if query.CallbackChannel != "" {
		k.QueueResolutionCallback(ctx, query)
	}

	ctx.EventManager().EmitEvent(sdk.NewEvent(
		types.EventTypeResolveQuery,
		sdk.NewAttribute(types.AttributeKeyQueryID, formatQueryID(queryID)),
		sdk.NewAttribute(types.AttributeKeyOutcome, query.Outcomes[result.WinningIndex]),
		sdk.NewAttribute(types.AttributeKeyOutcomeIndex, formatQueryID(uint64(result.WinningIndex))),
		sdk.NewAttribute(types.AttributeKeyConfidence, result.Confidence.String()),
		sdk.NewAttribute(types.AttributeKeyVoteCount, formatQueryID(uint64(len(votes)))),
	))
	k.Logger(ctx).Info("query resolved",
		"query_id", queryID,
		"outcome", query.Outcomes[result.WinningIndex],
		"confidence", result.Confidence.String(),
		"votes", len(votes),
	)
	return query, nil
}
