package keeper

import (
	"encoding/json"
	"fmt"
	"strconv"

	errorsmod "cosmossdk.io/errors"
	"cosmossdk.io/log"
	"cosmossdk.io/math"
	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/veritas-chain/veritas/x/oracle/types"
)

// Keeper maintains the state of the oracle module
type Keeper struct {
	storeKey      storetypes.StoreKey
	bankKeeper    types.BankKeeper
	channelKeeper types.ChannelKeeper
	portKeeper    types.PortKeeper
	scopedKeeper  types.ScopedKeeper
	authority     string // module authority (usually governance module account)
}

// NewKeeper creates a new oracle Keeper instance
func NewKeeper(
	storeKey storetypes.StoreKey,
	bankKeeper types.BankKeeper,
	channelKeeper types.ChannelKeeper,
	portKeeper types.PortKeeper,
	scopedKeeper types.ScopedKeeper,
	authority string,
) *Keeper {
	return &Keeper{
		storeKey:      storeKey,
		bankKeeper:    bankKeeper,
		channelKeeper: channelKeeper,
		portKeeper:    portKeeper,
		scopedKeeper:  scopedKeeper,
		authority:     authority,
	}
}

// Logger returns a module-specific logger
func (k Keeper) Logger(ctx sdk.Context) log.Logger {
	return ctx.Logger().With("module", fmt.Sprintf("x/%s", types.ModuleName))
}

// GetAuthority returns the module's authority (governance account)
func (k Keeper) GetAuthority() string {
	return k.authority
}

// CheckAuthority verifies the signer is the module authority
func (k Keeper) CheckAuthority(signer string) error {
	if signer != k.authority {
		return errorsmod.Wrapf(types.ErrUnauthorized, "expected %s, got %s", k.authority, signer)
	}
	return nil
}

// setValue JSON-encodes a record under the given key
func (k Keeper) setValue(ctx sdk.Context, key []byte, value interface{}) error {
	bz, err := json.Marshal(value)
	if err != nil {
		return errorsmod.Wrapf(types.ErrStateCorruption, "marshal failed: %s", err)
	}
	ctx.KVStore(k.storeKey).Set(key, bz)
	return nil
}

// getValue decodes a record into ptr, reporting whether the key existed
func (k Keeper) getValue(ctx sdk.Context, key []byte, ptr interface{}) (bool, error) {
	bz := ctx.KVStore(k.storeKey).Get(key)
	if bz == nil {
		return false, nil
	}
	if err := json.Unmarshal(bz, ptr); err != nil {
		return true, errorsmod.Wrapf(types.ErrStateCorruption, "unmarshal failed: %s", err)
	}
	return true, nil
}

// GetParams gets all module parameters from the store
func (k Keeper) GetParams(ctx sdk.Context) types.Params {
	var params types.Params
	found, err := k.getValue(ctx, types.ParamsKey, &params)
	if !found || err != nil {
		return types.DefaultParams()
	}
	return params
}

// SetParams sets the module parameters
func (k Keeper) SetParams(ctx sdk.Context, params types.Params) error {
	if err := params.Validate(); err != nil {
		return errorsmod.Wrap(types.ErrInvalidParameters, err.Error())
	}
	return k.setValue(ctx, types.ParamsKey, params)
}

// IsPaused reports the protocol pause flag
func (k Keeper) IsPaused(ctx sdk.Context) bool {
	return ctx.KVStore(k.storeKey).Has(types.PausedKey)
}

// SetPaused flips the protocol pause flag
func (k Keeper) SetPaused(ctx sdk.Context, paused bool) {
	store := ctx.KVStore(k.storeKey)
	if paused {
		store.Set(types.PausedKey, []byte{1})
	} else {
		store.Delete(types.PausedKey)
	}
}

// CheckNotPaused fails when the protocol is paused
func (k Keeper) CheckNotPaused(ctx sdk.Context) error {
	if k.IsPaused(ctx) {
		return types.ErrProtocolPaused
	}
	return nil
}

// GetTreasury returns the protocol treasury totals
func (k Keeper) GetTreasury(ctx sdk.Context) types.Treasury {
	var t types.Treasury
	found, err := k.getValue(ctx, types.TreasuryKey, &t)
	if !found || err != nil {
		return types.NewTreasury()
	}
	return t
}

// SetTreasury stores the protocol treasury totals
func (k Keeper) SetTreasury(ctx sdk.Context, t types.Treasury) error {
	return k.setValue(ctx, types.TreasuryKey, t)
}

// GetRegistryStats returns registry-wide voter totals
func (k Keeper) GetRegistryStats(ctx sdk.Context) types.RegistryStats {
	var s types.RegistryStats
	found, err := k.getValue(ctx, types.RegistryStatsKey, &s)
	if !found || err != nil {
		return types.RegistryStats{VoterCount: 0, TotalStake: math.ZeroInt()}
	}
	return s
}

// SetRegistryStats stores registry-wide voter totals
func (k Keeper) SetRegistryStats(ctx sdk.Context, s types.RegistryStats) error {
	return k.setValue(ctx, types.RegistryStatsKey, s)
}

// NextQueryID returns the next query id and advances the sequence
func (k Keeper) NextQueryID(ctx sdk.Context) uint64 {
	store := ctx.KVStore(k.storeKey)
	id := uint64(1)
	if bz := store.Get(types.QuerySequenceKey); bz != nil {
		id = sdk.BigEndianToUint64(bz)
	}
	store.Set(types.QuerySequenceKey, sdk.Uint64ToBigEndian(id+1))
	return id
}

// PeekQueryID returns the next query id without advancing the sequence
func (k Keeper) PeekQueryID(ctx sdk.Context) uint64 {
	if bz := ctx.KVStore(k.storeKey).Get(types.QuerySequenceKey); bz != nil {
		return sdk.BigEndianToUint64(bz)
	}
	return 1
}

// SetQuerySequence pins the query id sequence, used at genesis
func (k Keeper) SetQuerySequence(ctx sdk.Context, next uint64) {
	ctx.KVStore(k.storeKey).Set(types.QuerySequenceKey, sdk.Uint64ToBigEndian(next))
}

func formatQueryID(id uint64) string {
	return strconv.FormatUint(id, 10)
}
