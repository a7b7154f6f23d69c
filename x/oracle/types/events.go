package types

// Oracle module event types
const (
	EventTypeRegisterVoter   = "register_voter"
	EventTypeUpdateStake     = "update_stake"
	EventTypeWithdrawStake   = "withdraw_stake"
	EventTypeDeregisterVoter = "deregister_voter"
	EventTypeVoterSlashed    = "voter_slashed"
	EventTypeVoterRewarded   = "voter_rewarded"
	EventTypeClaimRewards    = "claim_rewards"

	EventTypeCreateQuery  = "create_query"
	EventTypeSubmitVote   = "submit_vote"
	EventTypeCommitVote   = "commit_vote"
	EventTypeRevealVote   = "reveal_vote"
	EventTypeResolveQuery = "resolve_query"
	EventTypeExpireQuery  = "expire_query"
	EventTypeCancelQuery  = "cancel_query"

	EventTypeCallbackQueued = "callback_queued"
	EventTypeCallbackSent   = "callback_sent"
	EventTypeChannelOpened  = "oracle_channel_opened"

	EventTypeProtocolPaused   = "protocol_paused"
	EventTypeProtocolUnpaused = "protocol_unpaused"
	EventTypeParamsUpdated    = "params_updated"
)

// Oracle module event attribute keys
const (
	AttributeKeyVoter        = "voter"
	AttributeKeyStake        = "stake"
	AttributeKeyAmount       = "amount"
	AttributeKeyReputation   = "reputation"
	AttributeKeyQueryID      = "query_id"
	AttributeKeyCreator      = "creator"
	AttributeKeyStrategy     = "strategy"
	AttributeKeyOutcome      = "outcome"
	AttributeKeyOutcomeIndex = "outcome_index"
	AttributeKeyConfidence   = "confidence"
	AttributeKeyVoteCount    = "vote_count"
	AttributeKeyStatus       = "status"
	AttributeKeyChannel      = "channel"
	AttributeKeyMarketID     = "market_id"
	AttributeKeyAuthority    = "authority"
)
