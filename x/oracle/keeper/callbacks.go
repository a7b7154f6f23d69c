package keeper

import (
	"encoding/json"
	"time"

	errorsmod "cosmossdk.io/errors"
	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
	capabilitytypes "github.com/cosmos/ibc-go/modules/capability/types"
	clienttypes "github.com/cosmos/ibc-go/v8/modules/core/02-client/types"
	channeltypes "github.com/cosmos/ibc-go/v8/modules/core/04-channel/types"
	host "github.com/cosmos/ibc-go/v8/modules/core/24-host"

	"github.com/veritas-chain/veritas/x/oracle/types"
)

// DefaultCallbackTimeout is how long an outbound callback packet stays
// valid before the counterparty may time it out.
const DefaultCallbackTimeout = 10 * time.Minute

// queuedCallback pairs a callback packet with its destination channel
type queuedCallback struct {
	Channel string                                  `json:"channel"`
	Packet  types.QueryResolutionCallbackPacketData `json:"packet"`
}

// QueueResolutionCallback appends a resolution callback for later
// delivery. Queueing never fails the resolution; a query stays resolved
// even when its callback cannot be delivered.
func (k Keeper) QueueResolutionCallback(ctx sdk.Context, query types.Query) {
	packet := types.QueryResolutionCallbackPacketData{
		Type:            types.ResolutionCallbackType,
		Nonce:           k.NextOutboundNonce(ctx, query.CallbackChannel, types.ModuleName),
		QueryID:         query.ID,
		MarketID:        query.SourceMarketID,
		ResolvedOutcome: query.ResolvedOutcome,
		ResolvedAt:      query.ResolvedAt,
		CallbackData:    query.CallbackData,
	}
	entry := queuedCallback{Channel: query.CallbackChannel, Packet: packet}
	if err := k.setValue(ctx, types.GetCallbackQueueKey(query.ID), entry); err != nil {
		k.Logger(ctx).Error("failed to queue resolution callback", "query_id", query.ID, "error", err)
		return
	}

	ctx.EventManager().EmitEvent(sdk.NewEvent(
		types.EventTypeCallbackQueued,
		sdk.NewAttribute(types.AttributeKeyQueryID, formatQueryID(query.ID)),
		sdk.NewAttribute(types.AttributeKeyChannel, query.CallbackChannel),
	))
}

// HasQueuedCallback reports whether a callback for the query awaits delivery
func (k Keeper) HasQueuedCallback(ctx sdk.Context, queryID uint64) bool {
	return ctx.KVStore(k.storeKey).Has(types.GetCallbackQueueKey(queryID))
}

// GetQueuedCallbacks returns all callbacks awaiting delivery
func (k Keeper) GetQueuedCallbacks(ctx sdk.Context) []types.QueryResolutionCallbackPacketData {
	store := ctx.KVStore(k.storeKey)
	iterator := storetypes.KVStorePrefixIterator(store, types.CallbackQueueKeyPrefix)
	defer iterator.Close()

	var packets []types.QueryResolutionCallbackPacketData
	for ; iterator.Valid(); iterator.Next() {
		var entry queuedCallback
		if err := json.Unmarshal(iterator.Value(), &entry); err != nil {
			k.Logger(ctx).Error("skipping corrupt callback entry", "key", string(iterator.Key()), "error", err)
			continue
		}
		packets = append(packets, entry.Packet)
	}
	return packets
}

// SendQueuedCallbacks drains the callback queue over IBC. Entries that
// fail to send stay queued for the next attempt. Returns the number of
// callbacks sent.
func (k Keeper) SendQueuedCallbacks(ctx sdk.Context) int {
	store := ctx.KVStore(k.storeKey)
	iterator := storetypes.KVStorePrefixIterator(store, types.CallbackQueueKeyPrefix)
	defer iterator.Close()

	type pending struct {
		key   []byte
		entry queuedCallback
	}
	var entries []pending
	for ; iterator.Valid(); iterator.Next() {
		var entry queuedCallback
		if err := json.Unmarshal(iterator.Value(), &entry); err != nil {
			k.Logger(ctx).Error("skipping corrupt callback entry", "key", string(iterator.Key()), "error", err)
			continue
		}
		key := make([]byte, len(iterator.Key()))
		copy(key, iterator.Key())
		entries = append(entries, pending{key: key, entry: entry})
	}

	sent := 0
	for _, p := range entries {
		data, err := p.entry.Packet.GetBytes()
		if err != nil {
			k.Logger(ctx).Error("cannot marshal callback packet", "query_id", p.entry.Packet.QueryID, "error", err)
			continue
		}
		if _, err := k.sendOraclePacket(ctx, p.entry.Channel, data, DefaultCallbackTimeout); err != nil {
			k.Logger(ctx).Error("callback send failed, will retry",
				"query_id", p.entry.Packet.QueryID,
				"channel", p.entry.Channel,
				"error", err,
			)
			continue
		}
		store.Delete(p.key)
		sent++

		ctx.EventManager().EmitEvent(sdk.NewEvent(
			types.EventTypeCallbackSent,
			sdk.NewAttribute(types.AttributeKeyQueryID, formatQueryID(p.entry.Packet.QueryID)),
			sdk.NewAttribute(types.AttributeKeyChannel, p.entry.Channel),
		))
	}
	return sent
}

// sendOraclePacket pushes raw packet data over an IBC channel
func (k Keeper) sendOraclePacket(ctx sdk.Context, channelID string, data []byte, timeout time.Duration) (uint64, error) {
	channelCap, found := k.GetChannelCapability(ctx, types.PortID, channelID)
	if !found {
		return 0, errorsmod.Wrapf(channeltypes.ErrChannelCapabilityNotFound, "port: %s, channel: %s", types.PortID, channelID)
	}

	timeoutTimestamp := uint64(ctx.BlockTime().Add(timeout).UnixNano())
	sequence, err := k.channelKeeper.SendPacket(
		ctx,
		channelCap,
		types.PortID,
		channelID,
		clienttypes.ZeroHeight(),
		timeoutTimestamp,
		data,
	)
	if err != nil {
		return 0, errorsmod.Wrap(types.ErrCallbackFailed, err.Error())
	}
	return sequence, nil
}

// OnRecvCreateQuery handles an inbound cross-chain query creation. The
// (channel, market) pair is deduplicated so at-least-once packet delivery
// cannot open the same query twice; a duplicate returns the original
// query id.
func (k Keeper) OnRecvCreateQuery(ctx sdk.Context, channelID string, packet types.CreateQueryPacketData) (uint64, error) {
	if err := packet.ValidateBasic(); err != nil {
		return 0, err
	}
	if err := k.CheckNotPaused(ctx); err != nil {
		return 0, err
	}
	if err := k.ValidateIncomingPacketNonce(ctx, channelID, packet.Sender, packet.Nonce, packet.Timestamp); err != nil {
		return 0, err
	}

	store := ctx.KVStore(k.storeKey)
	indexKey := types.GetMarketIndexKey(channelID, packet.MarketID)
	if bz := store.Get(indexKey); bz != nil {
		existing := sdk.BigEndianToUint64(bz)
		k.Logger(ctx).Info("duplicate cross-chain query request", "channel", channelID, "market_id", packet.MarketID, "query_id", existing)
		return existing, nil
	}

	query, err := k.CreateQuery(
		ctx,
		packet.Sender,
		packet.Question,
		packet.Outcomes,
		packet.Strategy,
		packet.RewardAmount,
		packet.MinVotes,
		packet.Deadline,
		false,
		channelID,
		packet.CallbackData,
		packet.MarketID,
	)
	if err != nil {
		return 0, err
	}

	store.Set(indexKey, sdk.Uint64ToBigEndian(query.ID))

	ctx.EventManager().EmitEvent(sdk.NewEvent(
		types.EventTypeCreateQuery,
		sdk.NewAttribute(types.AttributeKeyQueryID, formatQueryID(query.ID)),
		sdk.NewAttribute(types.AttributeKeyChannel, channelID),
		sdk.NewAttribute(types.AttributeKeyMarketID, packet.MarketID),
	))
	return query.ID, nil
}

// OnCallbackAcknowledged handles the counterparty's ack for a resolution
// callback. Delivery failures are logged only; resolution is final.
func (k Keeper) OnCallbackAcknowledged(ctx sdk.Context, ack types.ResolutionCallbackAcknowledgement) {
	if ack.Success {
		k.Logger(ctx).Debug("resolution callback acknowledged", "nonce", ack.Nonce)
		return
	}
	k.Logger(ctx).Error("resolution callback rejected by counterparty", "nonce", ack.Nonce, "error", ack.Error)
}

// BindPort binds the module's port and claims the capability
func (k Keeper) BindPort(ctx sdk.Context, portID string) error {
	capability := k.portKeeper.BindPort(ctx, portID)
	return k.ClaimCapability(ctx, capability, host.PortPath(portID))
}

// GetChannelCapability looks up the capability for a port/channel pair
func (k Keeper) GetChannelCapability(ctx sdk.Context, portID, channelID string) (*capabilitytypes.Capability, bool) {
	return k.scopedKeeper.GetCapability(ctx, host.ChannelCapabilityPath(portID, channelID))
}

// AuthenticateCapability checks ownership of a capability
func (k Keeper) AuthenticateCapability(ctx sdk.Context, cap *capabilitytypes.Capability, name string) bool {
	return k.scopedKeeper.AuthenticateCapability(ctx, cap, name)
}

// ClaimCapability claims a capability for the module
func (k Keeper) ClaimCapability(ctx sdk.Context, cap *capabilitytypes.Capability, name string) error {
	return k.scopedKeeper.ClaimCapability(ctx, cap, name)
}
