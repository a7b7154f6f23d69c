package keeper

import (
	errorsmod "cosmossdk.io/errors"
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/veritas-chain/veritas/x/oracle/types"
)

// SettleQuery distributes rewards to correct voters and slashes incorrect
// ones after consensus. The reward pool, net of the protocol fee, splits
// equally among correct voters and each share is scaled by the voter's
// reputation multiplier. Failures on individual voters are logged and
// skipped so one corrupt record cannot block resolution.
func (k Keeper) SettleQuery(ctx sdk.Context, query types.Query, votes []types.Vote, result ConsensusResult) {
	params := k.GetParams(ctx)
	treasury := k.GetTreasury(ctx)
	stats := k.GetRegistryStats(ctx)

	correctCount := int64(0)
	for _, v := range votes {
		if result.Correct[v.Voter] {
			correctCount++
		}
	}

	fee := query.RewardAmount.MulRaw(int64(params.ProtocolFeeBps)).QuoRaw(types.BpsDenominator)
	netPool := query.RewardAmount.Sub(fee)
	share := math.ZeroInt()
	if correctCount > 0 {
		share = netPool.QuoRaw(correctCount)
	}
	treasury.FeesCollected = treasury.FeesCollected.Add(fee)

	for _, vote := range votes {
		voter, found := k.GetVoter(ctx, vote.Voter)
		if !found {
			k.Logger(ctx).Error("settlement skipping missing voter", "voter", vote.Voter, "query_id", query.ID)
			continue
		}

		if result.Correct[vote.Voter] {
			payout := math.LegacyNewDecFromInt(share).Mul(types.RewardMultiplier(voter.Reputation)).TruncateInt()
			voter.PendingRewards = voter.PendingRewards.Add(payout)
			voter.CorrectVotes++

			ctx.EventManager().EmitEvent(sdk.NewEvent(
				types.EventTypeVoterRewarded,
				sdk.NewAttribute(types.AttributeKeyQueryID, formatQueryID(query.ID)),
				sdk.NewAttribute(types.AttributeKeyVoter, vote.Voter),
				sdk.NewAttribute(types.AttributeKeyAmount, payout.String()),
			))
		} else {
			slash := voter.Stake.MulRaw(int64(params.SlashBps)).QuoRaw(types.BpsDenominator)
			if available := voter.AvailableStake(); slash.GT(available) {
				// never slash into stake locked by other open queries
				slash = math.MaxInt(available, math.ZeroInt())
			}
			voter.Stake = voter.Stake.Sub(slash)
			treasury.SlashedCollected = treasury.SlashedCollected.Add(slash)
			stats.TotalStake = stats.TotalStake.Sub(slash)

			if voter.Stake.LT(params.MinStake) && voter.Active {
				voter.Active = false
				k.Logger(ctx).Info("voter deactivated after slash", "voter", vote.Voter, "stake", voter.Stake.String())
			}

			ctx.EventManager().EmitEvent(sdk.NewEvent(
				types.EventTypeVoterSlashed,
				sdk.NewAttribute(types.AttributeKeyQueryID, formatQueryID(query.ID)),
				sdk.NewAttribute(types.AttributeKeyVoter, vote.Voter),
				sdk.NewAttribute(types.AttributeKeyAmount, slash.String()),
			))
		}

		voter.Reputation = types.CalculateReputation(voter.CorrectVotes, voter.TotalVotes)
		if err := k.SetVoter(ctx, voter); err != nil {
			k.Logger(ctx).Error("settlement failed to persist voter", "voter", vote.Voter, "error", err)
		}
	}

	if err := k.SetTreasury(ctx, treasury); err != nil {
		k.Logger(ctx).Error("settlement failed to persist treasury", "error", err)
	}
	if err := k.SetRegistryStats(ctx, stats); err != nil {
		k.Logger(ctx).Error("settlement failed to persist registry stats", "error", err)
	}

	k.Logger(ctx).Info("query settled",
		"query_id", query.ID,
		"correct_voters", correctCount,
		"total_voters", len(votes),
		"share", share.String(),
		"fee", fee.String(),
	)
}

// ClaimRewards pays out a voter's accumulated pending rewards from the
// module account and zeroes the balance. Claiming with nothing pending
// fails, which makes double-claims harmless.
func (k Keeper) ClaimRewards(ctx sdk.Context, addr string) (math.Int, error) {
	voter, found := k.GetVoter(ctx, addr)
	if !found {
		return math.ZeroInt(), errorsmod.Wrap(types.ErrVoterNotRegistered, addr)
	}
	if !voter.PendingRewards.IsPositive() {
		return math.ZeroInt(), errorsmod.Wrap(types.ErrNoPendingRewards, addr)
	}

	amount := voter.PendingRewards
	params := k.GetParams(ctx)
	accAddr, err := sdk.AccAddressFromBech32(addr)
	if err != nil {
		return math.ZeroInt(), errorsmod.Wrapf(types.ErrInvalidParameters, "invalid voter address: %s", err)
	}
	coins := sdk.NewCoins(sdk.NewCoin(params.StakeDenom, amount))
	if err := k.bankKeeper.SendCoinsFromModuleToAccount(ctx, types.ModuleName, accAddr, coins); err != nil {
		return math.ZeroInt(), errorsmod.Wrap(types.ErrStateCorruption, err.Error())
	}

	voter.PendingRewards = math.ZeroInt()
	if err := k.SetVoter(ctx, voter); err != nil {
		return math.ZeroInt(), err
	}

	treasury := k.GetTreasury(ctx)
	treasury.RewardsPaid = treasury.RewardsPaid.Add(amount)
	if err := k.SetTreasury(ctx, treasury); err != nil {
		return math.ZeroInt(), err
	}

	ctx.EventManager().EmitEvent(sdk.NewEvent(
		types.EventTypeClaimRewards,
		sdk.NewAttribute(types.AttributeKeyVoter, addr),
		sdk.NewAttribute(types.AttributeKeyAmount, amount.String()),
	))
	k.Logger(ctx).Info("rewards claimed", "voter", addr, "amount", amount.String())
	return amount, nil
}
