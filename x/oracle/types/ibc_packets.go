package types

import (
	"encoding/json"

	"cosmossdk.io/errors"
	"cosmossdk.io/math"
)

// IBC Packet Types for Oracle Module
//
// This file defines the IBC packet structures for cross-chain query
// creation and resolution callbacks.

const (
	// Oracle IBC version
	IBCVersion = "veritas-oracle-1"

	// Packet types
	CreateQueryType        = "create_query"
	ResolutionCallbackType = "query_resolution_callback"
)

// IBCPacketData is the base interface for all oracle IBC packets
type IBCPacketData interface {
	ValidateBasic() error
	GetType() string
}

// CreateQueryPacketData asks this chain to open a query on behalf of a
// remote market. The callback data is opaque and echoed back unmodified
// in the resolution callback.
type CreateQueryPacketData struct {
	Type         string           `json:"type"`
	Nonce        uint64           `json:"nonce"`
	Timestamp    int64            `json:"timestamp"`
	MarketID     string           `json:"market_id"`
	Question     string           `json:"question"`
	Outcomes     []string         `json:"outcomes"`
	Strategy     DecisionStrategy `json:"strategy"`
	RewardAmount math.Int         `json:"reward_amount"`
	MinVotes     uint64           `json:"min_votes,omitempty"`
	Deadline     int64            `json:"deadline"`
	CallbackData []byte           `json:"callback_data,omitempty"`
	Sender       string           `json:"sender"`
}

func (p CreateQueryPacketData) ValidateBasic() error {
	if p.Type != CreateQueryType {
		return errors.Wrapf(ErrInvalidPacket, "invalid packet type: %s", p.Type)
	}
	if p.Nonce == 0 {
		return errors.Wrap(ErrInvalidPacket, "nonce must be greater than zero")
	}
	if p.Timestamp <= 0 {
		return errors.Wrap(ErrInvalidPacket, "timestamp must be positive")
	}
	if p.MarketID == "" {
		return errors.Wrap(ErrInvalidPacket, "market id cannot be empty")
	}
	if p.Question == "" {
		return errors.Wrap(ErrInvalidPacket, "question cannot be empty")
	}
	if len(p.Outcomes) < MinOutcomes {
		return errors.Wrapf(ErrInvalidPacket, "at least %d outcomes required", MinOutcomes)
	}
	if !ValidStrategy(p.Strategy) {
		return errors.Wrapf(ErrInvalidPacket, "unknown strategy %q", p.Strategy)
	}
	if p.RewardAmount.IsNil() || !p.RewardAmount.IsPositive() {
		return errors.Wrap(ErrInvalidPacket, "reward must be positive")
	}
	if p.Deadline <= 0 {
		return errors.Wrap(ErrInvalidPacket, "deadline must be positive")
	}
	if p.Sender == "" {
		return errors.Wrap(ErrInvalidPacket, "sender cannot be empty")
	}
	return nil
}

func (p CreateQueryPacketData) GetType() string {
	return p.Type
}

func (p CreateQueryPacketData) GetBytes() ([]byte, error) {
	return json.Marshal(p)
}

// CreateQueryAcknowledgement reports the assigned query id or an error
type CreateQueryAcknowledgement struct {
	Nonce   uint64 `json:"nonce"`
	Success bool   `json:"success"`
	QueryID uint64 `json:"query_id,omitempty"`
	Error   string `json:"error,omitempty"`
}

func (a CreateQueryAcknowledgement) GetBytes() ([]byte, error) {
	return json.Marshal(a)
}

// QueryResolutionCallbackPacketData notifies the originating chain that a
// query reached a terminal outcome
type QueryResolutionCallbackPacketData struct {
	Type            string `json:"type"`
	Nonce           uint64 `json:"nonce"`
	QueryID         uint64 `json:"query_id"`
	MarketID        string `json:"market_id,omitempty"`
	ResolvedOutcome int32  `json:"resolved_outcome"`
	ResolvedAt      int64  `json:"resolved_at"`
	CallbackData    []byte `json:"callback_data,omitempty"`
}

func (p QueryResolutionCallbackPacketData) ValidateBasic() error {
	if p.Type != ResolutionCallbackType {
		return errors.Wrapf(ErrInvalidPacket, "invalid packet type: %s", p.Type)
	}
	if p.Nonce == 0 {
		return errors.Wrap(ErrInvalidPacket, "nonce must be greater than zero")
	}
	if p.QueryID == 0 {
		return errors.Wrap(ErrInvalidPacket, "query id must be greater than zero")
	}
	if p.ResolvedOutcome < 0 {
		return errors.Wrap(ErrInvalidPacket, "resolved outcome cannot be negative")
	}
	if p.ResolvedAt <= 0 {
		return errors.Wrap(ErrInvalidPacket, "resolution timestamp must be positive")
	}
	return nil
}

func (p QueryResolutionCallbackPacketData) GetType() string {
	return p.Type
}

func (p QueryResolutionCallbackPacketData) GetBytes() ([]byte, error) {
	return json.Marshal(p)
}

// ResolutionCallbackAcknowledgement confirms delivery of a callback
type ResolutionCallbackAcknowledgement struct {
	Nonce   uint64 `json:"nonce"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

func (a ResolutionCallbackAcknowledgement) GetBytes() ([]byte, error) {
	return json.Marshal(a)
}

// PacketEnvelope wraps inbound packet bytes for type dispatch
type PacketEnvelope struct {
	Type string `json:"type"`
}

// ParsePacketType extracts the packet type from raw packet bytes
func ParsePacketType(bz []byte) (string, error) {
	var env PacketEnvelope
	if err := json.Unmarshal(bz, &env); err != nil {
		return "", errors.Wrapf(ErrInvalidPacket, "cannot parse packet envelope: %s", err)
	}
	if env.Type == "" {
		return "", errors.Wrap(ErrInvalidPacket, "packet type missing")
	}
	return env.Type, nil
}
