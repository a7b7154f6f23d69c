package keeper

import (
	"encoding/json"

	errorsmod "cosmossdk.io/errors"
	"cosmossdk.io/math"
	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/veritas-chain/veritas/x/oracle/types"
)

// GetVoter returns a voter record by address
func (k Keeper) GetVoter(ctx sdk.Context, addr string) (types.Voter, bool) {
	var voter types.Voter
	found, err := k.getValue(ctx, types.GetVoterKey(addr), &voter)
	if !found || err != nil {
		return types.Voter{}, false
	}
	return voter, true
}

// SetVoter stores a voter record
func (k Keeper) SetVoter(ctx sdk.Context, voter types.Voter) error {
	return k.setValue(ctx, types.GetVoterKey(voter.Address), voter)
}

// DeleteVoter removes a voter record
func (k Keeper) DeleteVoter(ctx sdk.Context, addr string) {
	ctx.KVStore(k.storeKey).Delete(types.GetVoterKey(addr))
}

// IterateVoters walks all voter records until cb returns true
func (k Keeper) IterateVoters(ctx sdk.Context, cb func(types.Voter) bool) {
	store := ctx.KVStore(k.storeKey)
	iterator := storetypes.KVStorePrefixIterator(store, types.VoterKeyPrefix)
	defer iterator.Close()

	for ; iterator.Valid(); iterator.Next() {
		var voter types.Voter
		if err := json.Unmarshal(iterator.Value(), &voter); err != nil {
			k.Logger(ctx).Error("skipping corrupt voter record", "key", string(iterator.Key()), "error", err)
			continue
		}
		if cb(voter) {
			break
		}
	}
}

// GetAllVoters returns every voter record
func (k Keeper) GetAllVoters(ctx sdk.Context) []types.Voter {
	var voters []types.Voter
	k.IterateVoters(ctx, func(v types.Voter) bool {
		voters = append(voters, v)
		return false
	})
	return voters
}

// RegisterVoter admits a new voter with an initial stake. The stake is
// moved from the voter's account into the module account.
func (k Keeper) RegisterVoter(ctx sdk.Context, addr string, stake math.Int, name, metadataURL string) (types.Voter, error) {
	if _, exists := k.GetVoter(ctx, addr); exists {
		return types.Voter{}, errorsmod.Wrap(types.ErrVoterAlreadyRegistered, addr)
	}
	if err := types.ValidateRegistrationParams(name, metadataURL); err != nil {
		return types.Voter{}, errorsmod.Wrap(types.ErrInvalidParameters, err.Error())
	}

	params := k.GetParams(ctx)
	if stake.LT(params.MinStake) {
		return types.Voter{}, errorsmod.Wrapf(types.ErrInsufficientStake, "stake %s below minimum %s", stake, params.MinStake)
	}

	accAddr, err := sdk.AccAddressFromBech32(addr)
	if err != nil {
		return types.Voter{}, errorsmod.Wrapf(types.ErrInvalidParameters, "invalid voter address: %s", err)
	}
	if spendable := k.bankKeeper.SpendableCoins(ctx, accAddr).AmountOf(params.StakeDenom); spendable.LT(stake) {
		return types.Voter{}, errorsmod.Wrapf(types.ErrInsufficientStake, "spendable balance %s below stake %s", spendable, stake)
	}
	coins := sdk.NewCoins(sdk.NewCoin(params.StakeDenom, stake))
	if err := k.bankKeeper.SendCoinsFromAccountToModule(ctx, accAddr, types.ModuleName, coins); err != nil {
		return types.Voter{}, errorsmod.Wrap(types.ErrInsufficientStake, err.Error())
	}

	voter := types.Voter{
		Address:        addr,
		Stake:          stake,
		LockedStake:    math.ZeroInt(),
		PendingRewards: math.ZeroInt(),
		TotalVotes:     0,
		CorrectVotes:   0,
		Reputation:     types.CalculateReputation(0, 0),
		Active:         true,
		Name:           name,
		MetadataURL:    metadataURL,
		RegisteredAt:   ctx.BlockTime().Unix(),
	}
	if err := k.SetVoter(ctx, voter); err != nil {
		return types.Voter{}, err
	}

	stats := k.GetRegistryStats(ctx)
	stats.VoterCount++
	stats.TotalStake = stats.TotalStake.Add(stake)
	if err := k.SetRegistryStats(ctx, stats); err != nil {
		return types.Voter{}, err
	}

	k.Logger(ctx).Info("voter registered", "voter", addr, "stake", stake.String())
	return voter, nil
}

// AddStake tops up an existing voter's stake. A voter deactivated for
// falling below the minimum is reactivated once the new total clears it.
func (k Keeper) AddStake(ctx sdk.Context, addr string, amount math.Int) (types.Voter, error) {
	voter, found := k.GetVoter(ctx, addr)
	if !found {
		return types.Voter{}, errorsmod.Wrap(types.ErrVoterNotRegistered, addr)
	}

	params := k.GetParams(ctx)
	accAddr, err := sdk.AccAddressFromBech32(addr)
	if err != nil {
		return types.Voter{}, errorsmod.Wrapf(types.ErrInvalidParameters, "invalid voter address: %s", err)
	}
	coins := sdk.NewCoins(sdk.NewCoin(params.StakeDenom, amount))
	if err := k.bankKeeper.SendCoinsFromAccountToModule(ctx, accAddr, types.ModuleName, coins); err != nil {
		return types.Voter{}, errorsmod.Wrap(types.ErrInsufficientStake, err.Error())
	}

	voter.Stake = voter.Stake.Add(amount)
	if !voter.Active && voter.Stake.GTE(params.MinStake) {
		voter.Active = true
		k.Logger(ctx).Info("voter reactivated", "voter", addr, "stake", voter.Stake.String())
	}
	if err := k.SetVoter(ctx, voter); err != nil {
		return types.Voter{}, err
	}

	stats := k.GetRegistryStats(ctx)
	stats.TotalStake = stats.TotalStake.Add(amount)
	if err := k.SetRegistryStats(ctx, stats); err != nil {
		return types.Voter{}, err
	}
	return voter, nil
}

// WithdrawStake releases unlocked stake back to the voter's account.
// Withdrawals that would leave the stake below the minimum are rejected;
// a voter who wants out entirely deregisters instead.
func (k Keeper) WithdrawStake(ctx sdk.Context, addr string, amount math.Int) (types.Voter, error) {
	voter, found := k.GetVoter(ctx, addr)
	if !found {
		return types.Voter{}, errorsmod.Wrap(types.ErrVoterNotRegistered, addr)
	}
	if amount.GT(voter.AvailableStake()) {
		return types.Voter{}, errorsmod.Wrapf(types.ErrStakeLocked, "available %s, requested %s", voter.AvailableStake(), amount)
	}

	params := k.GetParams(ctx)
	if remaining := voter.Stake.Sub(amount); remaining.LT(params.MinStake) {
		return types.Voter{}, errorsmod.Wrapf(types.ErrInsufficientStake, "remaining stake %s would be below minimum %s", remaining, params.MinStake)
	}
	accAddr, err := sdk.AccAddressFromBech32(addr)
	if err != nil {
		return types.Voter{}, errorsmod.Wrapf(types.ErrInvalidParameters, "invalid voter address: %s", err)
	}
	coins := sdk.NewCoins(sdk.NewCoin(params.StakeDenom, amount))
	if err := k.bankKeeper.SendCoinsFromModuleToAccount(ctx, types.ModuleName, accAddr, coins); err != nil {
		return types.Voter{}, errorsmod.Wrap(types.ErrStateCorruption, err.Error())
	}

	voter.Stake = voter.Stake.Sub(amount)
	if err := k.SetVoter(ctx, voter); err != nil {
		return types.Voter{}, err
	}

	stats := k.GetRegistryStats(ctx)
	stats.TotalStake = stats.TotalStake.Sub(amount)
	if err := k.SetRegistryStats(ctx, stats); err != nil {
		return types.Voter{}, err
	}
	return voter, nil
}

// DeregisterVoter removes a voter and returns their full stake. Locked
// stake or unclaimed rewards block deregistration.
func (k Keeper) DeregisterVoter(ctx sdk.Context, addr string) (math.Int, error) {
	voter, found := k.GetVoter(ctx, addr)
	if !found {
		return math.ZeroInt(), errorsmod.Wrap(types.ErrVoterNotRegistered, addr)
	}
	if voter.LockedStake.IsPositive() {
		return math.ZeroInt(), errorsmod.Wrapf(types.ErrStakeLocked, "%s locked by pending votes", voter.LockedStake)
	}
	if voter.PendingRewards.IsPositive() {
		return math.ZeroInt(), errorsmod.Wrapf(types.ErrPendingRewards, "%s pending", voter.PendingRewards)
	}

	returned := voter.Stake
	if returned.IsPositive() {
		params := k.GetParams(ctx)
		accAddr, err := sdk.AccAddressFromBech32(addr)
		if err != nil {
			return math.ZeroInt(), errorsmod.Wrapf(types.ErrInvalidParameters, "invalid voter address: %s", err)
		}
		coins := sdk.NewCoins(sdk.NewCoin(params.StakeDenom, returned))
		if err := k.bankKeeper.SendCoinsFromModuleToAccount(ctx, types.ModuleName, accAddr, coins); err != nil {
			return math.ZeroInt(), errorsmod.Wrap(types.ErrStateCorruption, err.Error())
		}
	}

	k.DeleteVoter(ctx, addr)

	stats := k.GetRegistryStats(ctx)
	stats.VoterCount--
	stats.TotalStake = stats.TotalStake.Sub(returned)
	if err := k.SetRegistryStats(ctx, stats); err != nil {
		return math.ZeroInt(), err
	}

	k.Logger(ctx).Info("voter deregistered", "voter", addr, "returned", returned.String())
	return returned, nil
}

// GetReputationStats returns the derived reputation view for a voter
func (k Keeper) GetReputationStats(ctx sdk.Context, addr string) (types.ReputationStats, error) {
	voter, found := k.GetVoter(ctx, addr)
	if !found {
		return types.ReputationStats{}, errorsmod.Wrap(types.ErrVoterNotRegistered, addr)
	}
	return types.NewReputationStats(voter), nil
}
