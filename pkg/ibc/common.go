// Package ibc carries channel handshake helpers shared by IBC-facing
// modules.
package ibc

import (
	errorsmod "cosmossdk.io/errors"
	sdk "github.com/cosmos/cosmos-sdk/types"
	capabilitytypes "github.com/cosmos/ibc-go/modules/capability/types"
	channeltypes "github.com/cosmos/ibc-go/v8/modules/core/04-channel/types"
	porttypes "github.com/cosmos/ibc-go/v8/modules/core/05-port/types"
	host "github.com/cosmos/ibc-go/v8/modules/core/24-host"
)

// CapabilityClaimer claims channel capabilities on behalf of a module.
type CapabilityClaimer interface {
	ClaimCapability(ctx sdk.Context, cap *capabilitytypes.Capability, name string) error
}

// ChannelValidator checks handshake parameters against a module's
// expected ordering, port, and version.
type ChannelValidator struct {
	order   channeltypes.Order
	portID  string
	version string
}

func NewChannelValidator(order channeltypes.Order, portID, version string) ChannelValidator {
	return ChannelValidator{order: order, portID: portID, version: version}
}

// ValidateInit checks the parameters of a handshake opened on this end.
// An empty version is allowed and means the module's own version is
// proposed.
func (v ChannelValidator) ValidateInit(order channeltypes.Order, portID, version string) error {
	if order != v.order {
		return errorsmod.Wrapf(channeltypes.ErrInvalidChannelOrdering, "expected %s, got %s", v.order, order)
	}
	if portID != v.portID {
		return errorsmod.Wrapf(porttypes.ErrInvalidPort, "expected %s, got %s", v.portID, portID)
	}
	if version != "" && version != v.version {
		return errorsmod.Wrapf(channeltypes.ErrInvalidChannelVersion, "expected %s, got %s", v.version, version)
	}
	return nil
}

// ValidateCounterpartyVersion checks the version proposed by the other
// channel end during the try and ack steps.
func (v ChannelValidator) ValidateCounterpartyVersion(version string) error {
	if version != v.version {
		return errorsmod.Wrapf(channeltypes.ErrInvalidChannelVersion, "expected counterparty version %s, got %s", v.version, version)
	}
	return nil
}

// ClaimChannelCapability claims the capability under the standard
// channel capability path.
func ClaimChannelCapability(
	ctx sdk.Context,
	claimer CapabilityClaimer,
	chanCap *capabilitytypes.Capability,
	portID, channelID string,
) error {
	return claimer.ClaimCapability(ctx, chanCap, host.ChannelCapabilityPath(portID, channelID))
}

// EmitChannelEvent records a channel lifecycle step.
func EmitChannelEvent(ctx sdk.Context, eventType, portID, channelID string) {
	ctx.EventManager().EmitEvent(sdk.NewEvent(
		eventType,
		sdk.NewAttribute("port_id", portID),
		sdk.NewAttribute("channel_id", channelID),
	))
}
