package types

import (
	sdk "github.com/cosmos/cosmos-sdk/types"
)

const (
	// ModuleName defines the module name
	ModuleName = "oracle"

	// StoreKey defines the primary module store key
	StoreKey = ModuleName

	// RouterKey defines the module's message routing key
	RouterKey = ModuleName

	// PortID is the default port id the module binds to
	PortID = ModuleName
)

// KVStore key prefixes
var (
	ParamsKey        = []byte{0x01}
	PausedKey        = []byte{0x02}
	RegistryStatsKey = []byte{0x03}
	TreasuryKey      = []byte{0x04}
	QuerySequenceKey = []byte{0x05}

	VoterKeyPrefix         = []byte{0x10}
	QueryKeyPrefix         = []byte{0x11}
	VoteKeyPrefix          = []byte{0x12}
	VoteCommitKeyPrefix    = []byte{0x13}
	CallbackQueueKeyPrefix = []byte{0x14}
	MarketIndexKeyPrefix   = []byte{0x15}
	NonceKeyPrefix         = []byte{0x16}
)

// GetVoterKey returns the store key for a voter record
func GetVoterKey(addr string) []byte {
	return append(VoterKeyPrefix, []byte(addr)...)
}

// GetQueryKey returns the store key for a query record
func GetQueryKey(queryID uint64) []byte {
	return append(QueryKeyPrefix, sdk.Uint64ToBigEndian(queryID)...)
}

// GetVotePrefix returns the prefix under which all votes for a query live
func GetVotePrefix(queryID uint64) []byte {
	return append(VoteKeyPrefix, sdk.Uint64ToBigEndian(queryID)...)
}

// GetVoteKey returns the store key for a single vote
func GetVoteKey(queryID uint64, voter string) []byte {
	return append(GetVotePrefix(queryID), []byte(voter)...)
}

// GetVoteCommitPrefix returns the prefix under which all commitments for a query live
func GetVoteCommitPrefix(queryID uint64) []byte {
	return append(VoteCommitKeyPrefix, sdk.Uint64ToBigEndian(queryID)...)
}

// GetVoteCommitKey returns the store key for a single vote commitment
func GetVoteCommitKey(queryID uint64, voter string) []byte {
	return append(GetVoteCommitPrefix(queryID), []byte(voter)...)
}

// GetCallbackQueueKey returns the store key for a queued resolution callback
func GetCallbackQueueKey(queryID uint64) []byte {
	return append(CallbackQueueKeyPrefix, sdk.Uint64ToBigEndian(queryID)...)
}

// GetMarketIndexKey returns the dedupe index key for an inbound cross-chain market
func GetMarketIndexKey(channelID, marketID string) []byte {
	key := append(MarketIndexKeyPrefix, []byte(channelID)...)
	key = append(key, byte('/'))
	return append(key, []byte(marketID)...)
}

// GetNonceKey returns the replay-protection key for a channel/sender pair
func GetNonceKey(channelID, sender string) []byte {
	key := append(NonceKeyPrefix, []byte(channelID)...)
	key = append(key, byte('/'))
	return append(key, []byte(sender)...)
}
