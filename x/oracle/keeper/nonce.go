package keeper

import (
	errorsmod "cosmossdk.io/errors"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/veritas-chain/veritas/x/oracle/types"
)

// MaxPacketAge bounds how old an inbound packet timestamp may be,
// relative to block time, before it is rejected as a replay.
const MaxPacketAge = 24 * 60 * 60 // 24 hours in seconds

// ValidateIncomingPacketNonce enforces replay protection on inbound
// packets: the timestamp must be within MaxPacketAge of block time and
// the nonce must be strictly greater than the last one accepted from the
// same channel/sender pair. The accepted nonce is stored.
func (k Keeper) ValidateIncomingPacketNonce(ctx sdk.Context, channel, sender string, nonce uint64, timestamp int64) error {
	if nonce == 0 {
		return errorsmod.Wrap(types.ErrInvalidNonce, "nonce must be greater than zero")
	}

	now := ctx.BlockTime().Unix()
	if timestamp < now-MaxPacketAge {
		return errorsmod.Wrapf(types.ErrInvalidPacket, "packet timestamp %d too old", timestamp)
	}
	if timestamp > now+MaxPacketAge {
		return errorsmod.Wrapf(types.ErrInvalidPacket, "packet timestamp %d too far in the future", timestamp)
	}

	store := ctx.KVStore(k.storeKey)
	key := types.GetNonceKey(channel, sender)
	if bz := store.Get(key); bz != nil {
		last := sdk.BigEndianToUint64(bz)
		if nonce <= last {
			return errorsmod.Wrapf(types.ErrInvalidNonce, "nonce %d not greater than last accepted %d", nonce, last)
		}
	}
	store.Set(key, sdk.Uint64ToBigEndian(nonce))
	return nil
}

// NextOutboundNonce atomically increments and returns the nonce for
// outgoing packets on the given channel/sender pair.
func (k Keeper) NextOutboundNonce(ctx sdk.Context, channel, sender string) uint64 {
	store := ctx.KVStore(k.storeKey)
	key := types.GetNonceKey(channel, "out/"+sender)
	next := uint64(1)
	if bz := store.Get(key); bz != nil {
		next = sdk.BigEndianToUint64(bz) + 1
	}
	store.Set(key, sdk.Uint64ToBigEndian(next))
	return next
}
