package oracle

import (
	"encoding/json"
	"fmt"

	errorsmod "cosmossdk.io/errors"
	sdk "github.com/cosmos/cosmos-sdk/types"
	capabilitytypes "github.com/cosmos/ibc-go/modules/capability/types"
	channeltypes "github.com/cosmos/ibc-go/v8/modules/core/04-channel/types"
	porttypes "github.com/cosmos/ibc-go/v8/modules/core/05-port/types"
	host "github.com/cosmos/ibc-go/v8/modules/core/24-host"
	ibcexported "github.com/cosmos/ibc-go/v8/modules/core/exported"

	pkgibc "github.com/veritas-chain/veritas/pkg/ibc"
	"github.com/veritas-chain/veritas/x/oracle/keeper"
	"github.com/veritas-chain/veritas/x/oracle/types"
)

var _ porttypes.IBCModule = (*IBCModule)(nil)

// IBCModule implements the ICS26 interface for the oracle module. It
// accepts cross-chain query creation packets and carries resolution
// callbacks back to the originating chain.
type IBCModule struct {
	keeper    keeper.Keeper
	validator pkgibc.ChannelValidator
}

// NewIBCModule creates a new IBCModule given the keeper
func NewIBCModule(k keeper.Keeper) IBCModule {
	return IBCModule{
		keeper:    k,
		validator: pkgibc.NewChannelValidator(channeltypes.UNORDERED, types.PortID, types.IBCVersion),
	}
}

// OnChanOpenInit implements the IBCModule interface
func (im IBCModule) OnChanOpenInit(
	ctx sdk.Context,
	order channeltypes.Order,
	connectionHops []string,
	portID string,
	channelID string,
	chanCap *capabilitytypes.Capability,
	counterparty channeltypes.Counterparty,
	version string,
) (string, error) {
	if err := im.validator.ValidateInit(order, portID, version); err != nil {
		return "", err
	}
	if err := pkgibc.ClaimChannelCapability(ctx, im.keeper, chanCap, portID, channelID); err != nil {
		return "", err
	}
	return types.IBCVersion, nil
}

// OnChanOpenTry implements the IBCModule interface
func (im IBCModule) OnChanOpenTry(
	ctx sdk.Context,
	order channeltypes.Order,
	connectionHops []string,
	portID,
	channelID string,
	chanCap *capabilitytypes.Capability,
	counterparty channeltypes.Counterparty,
	counterpartyVersion string,
) (string, error) {
	if err := im.validator.ValidateInit(order, portID, counterpartyVersion); err != nil {
		return "", err
	}
	// capability may already be claimed when both channel ends live on
	// this chain
	if !im.keeper.AuthenticateCapability(ctx, chanCap, host.ChannelCapabilityPath(portID, channelID)) {
		if err := pkgibc.ClaimChannelCapability(ctx, im.keeper, chanCap, portID, channelID); err != nil {
			return "", err
		}
	}
	return types.IBCVersion, nil
}

// OnChanOpenAck implements the IBCModule interface
func (im IBCModule) OnChanOpenAck(
	ctx sdk.Context,
	portID,
	channelID string,
	counterpartyChannelID string,
	counterpartyVersion string,
) error {
	return im.validator.ValidateCounterpartyVersion(counterpartyVersion)
}

// OnChanOpenConfirm implements the IBCModule interface
func (im IBCModule) OnChanOpenConfirm(ctx sdk.Context, portID, channelID string) error {
	pkgibc.EmitChannelEvent(ctx, types.EventTypeChannelOpened, portID, channelID)
	return nil
}

// OnChanCloseInit implements the IBCModule interface. User-initiated
// channel closure is rejected, mirroring ICS20.
func (im IBCModule) OnChanCloseInit(ctx sdk.Context, portID, channelID string) error {
	return errorsmod.Wrap(types.ErrUnauthorized, "user cannot close channel")
}

// OnChanCloseConfirm implements the IBCModule interface
func (im IBCModule) OnChanCloseConfirm(ctx sdk.Context, portID, channelID string) error {
	im.keeper.Logger(ctx).Info("oracle channel closed by counterparty", "port", portID, "channel", channelID)
	return nil
}

// OnRecvPacket implements the IBCModule interface. A failed handler turns
// into an error acknowledgement rather than a state rollback on our side.
func (im IBCModule) OnRecvPacket(
	ctx sdk.Context,
	packet channeltypes.Packet,
	relayer sdk.AccAddress,
) ibcexported.Acknowledgement {
	packetType, err := types.ParsePacketType(packet.GetData())
	if err != nil {
		return channeltypes.NewErrorAcknowledgement(err)
	}

	switch packetType {
	case types.CreateQueryType:
		var data types.CreateQueryPacketData
		if err := json.Unmarshal(packet.GetData(), &data); err != nil {
			return channeltypes.NewErrorAcknowledgement(errorsmod.Wrap(types.ErrInvalidPacket, err.Error()))
		}

		queryID, err := im.keeper.OnRecvCreateQuery(ctx, packet.DestinationChannel, data)
		ack := types.CreateQueryAcknowledgement{Nonce: data.Nonce, Success: err == nil, QueryID: queryID}
		if err != nil {
			im.keeper.Logger(ctx).Error("cross-chain query creation failed",
				"channel", packet.DestinationChannel,
				"market_id", data.MarketID,
				"error", err,
			)
			return channeltypes.NewErrorAcknowledgement(err)
		}
		bz, err := ack.GetBytes()
		if err != nil {
			return channeltypes.NewErrorAcknowledgement(errorsmod.Wrap(types.ErrInvalidPacket, err.Error()))
		}
		return channeltypes.NewResultAcknowledgement(bz)

	default:
		return channeltypes.NewErrorAcknowledgement(
			errorsmod.Wrapf(types.ErrInvalidPacket, "unhandled packet type %s", packetType))
	}
}

// OnAcknowledgementPacket implements the IBCModule interface
func (im IBCModule) OnAcknowledgementPacket(
	ctx sdk.Context,
	packet channeltypes.Packet,
	acknowledgement []byte,
	relayer sdk.AccAddress,
) error {
	packetType, err := types.ParsePacketType(packet.GetData())
	if err != nil {
		return err
	}
	if packetType != types.ResolutionCallbackType {
		return errorsmod.Wrapf(types.ErrInvalidPacket, "unexpected ack for packet type %s", packetType)
	}

	// the ICS4 acknowledgement envelope carries either a result or an error
	var ack struct {
		Result []byte `json:"result,omitempty"`
		Error  string `json:"error,omitempty"`
	}
	if err := json.Unmarshal(acknowledgement, &ack); err != nil {
		return errorsmod.Wrapf(types.ErrInvalidPacket, "cannot unmarshal acknowledgement: %s", err)
	}

	var data types.QueryResolutionCallbackPacketData
	if err := json.Unmarshal(packet.GetData(), &data); err != nil {
		return errorsmod.Wrap(types.ErrInvalidPacket, err.Error())
	}

	switch {
	case len(ack.Result) > 0:
		var cbAck types.ResolutionCallbackAcknowledgement
		if err := json.Unmarshal(ack.Result, &cbAck); err != nil {
			return errorsmod.Wrap(types.ErrInvalidPacket, err.Error())
		}
		im.keeper.OnCallbackAcknowledged(ctx, cbAck)
	case ack.Error != "":
		im.keeper.OnCallbackAcknowledged(ctx, types.ResolutionCallbackAcknowledgement{
			Nonce:   data.Nonce,
			Success: false,
			Error:   ack.Error,
		})
	default:
		return errorsmod.Wrap(types.ErrInvalidPacket, "empty acknowledgement")
	}
	return nil
}

// OnTimeoutPacket implements the IBCModule interface. Timed-out resolution
// callbacks are re-queued so a later drain can retry delivery; the query
// itself stays resolved.
func (im IBCModule) OnTimeoutPacket(
	ctx sdk.Context,
	packet channeltypes.Packet,
	relayer sdk.AccAddress,
) error {
	packetType, err := types.ParsePacketType(packet.GetData())
	if err != nil {
		return err
	}
	if packetType != types.ResolutionCallbackType {
		return errorsmod.Wrapf(types.ErrInvalidPacket, "unexpected timeout for packet type %s", packetType)
	}

	var data types.QueryResolutionCallbackPacketData
	if err := json.Unmarshal(packet.GetData(), &data); err != nil {
		return errorsmod.Wrap(types.ErrInvalidPacket, err.Error())
	}

	query, found := im.keeper.GetQuery(ctx, data.QueryID)
	if !found {
		return errorsmod.Wrap(types.ErrQueryNotFound, fmt.Sprintf("query %d", data.QueryID))
	}
	// a retry already awaiting delivery makes this timeout a stale duplicate
	if im.keeper.HasQueuedCallback(ctx, data.QueryID) {
		return errorsmod.Wrapf(types.ErrDuplicateCallback, "callback for query %d already queued", data.QueryID)
	}
	im.keeper.QueueResolutionCallback(ctx, query)
	im.keeper.Logger(ctx).Info("resolution callback timed out, re-queued",
		"query_id", data.QueryID,
		"channel", packet.SourceChannel,
	)
	return nil
}
