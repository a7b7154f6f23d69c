package types

import (
	sdkerrors "cosmossdk.io/errors"
)

// Oracle module sentinel errors. Codes are grouped by range: 1000s query
// lifecycle, 2000s voter registry, 3000s voting, 4000s protocol admin,
// 5000s system and cross-chain, 6000s settlement.
var (
	// Query lifecycle errors
	ErrQueryNotFound    = sdkerrors.Register(ModuleName, 1001, "query not found")
	ErrInvalidOutcomes  = sdkerrors.Register(ModuleName, 1002, "invalid outcomes")
	ErrInvalidReward    = sdkerrors.Register(ModuleName, 1003, "invalid reward amount")
	ErrDeadlinePassed   = sdkerrors.Register(ModuleName, 1004, "query deadline has passed")
	ErrAlreadyResolved  = sdkerrors.Register(ModuleName, 1005, "query already in terminal state")
	ErrQueryNotActive   = sdkerrors.Register(ModuleName, 1006, "query is not active")
	ErrNotEnoughVotes   = sdkerrors.Register(ModuleName, 1007, "not enough votes to resolve")
	ErrInvalidDeadline  = sdkerrors.Register(ModuleName, 1008, "invalid deadline")
	ErrInvalidMinVotes  = sdkerrors.Register(ModuleName, 1009, "invalid minimum vote count")
	ErrStrategyMismatch = sdkerrors.Register(ModuleName, 1010, "outcomes incompatible with decision strategy")

	// Voter registry errors
	ErrVoterNotRegistered     = sdkerrors.Register(ModuleName, 2001, "voter not registered")
	ErrInsufficientStake      = sdkerrors.Register(ModuleName, 2002, "insufficient stake")
	ErrVoterAlreadyRegistered = sdkerrors.Register(ModuleName, 2003, "voter already registered")
	ErrVoterInactive          = sdkerrors.Register(ModuleName, 2004, "voter is inactive")
	ErrStakeLocked            = sdkerrors.Register(ModuleName, 2005, "stake is locked by pending votes")
	ErrPendingRewards         = sdkerrors.Register(ModuleName, 2006, "pending rewards must be claimed first")

	// Voting errors
	ErrCommitmentNotFound = sdkerrors.Register(ModuleName, 3001, "vote commitment not found")
	ErrInvalidReveal      = sdkerrors.Register(ModuleName, 3002, "reveal does not match commitment")
	ErrAlreadyVoted       = sdkerrors.Register(ModuleName, 3003, "vote already submitted")
	ErrVotingPhaseClosed  = sdkerrors.Register(ModuleName, 3004, "voting phase is closed")
	ErrInvalidOutcome     = sdkerrors.Register(ModuleName, 3005, "invalid outcome index")
	ErrInvalidConfidence  = sdkerrors.Register(ModuleName, 3006, "confidence must be between 0 and 100")
	ErrInvalidCommitment  = sdkerrors.Register(ModuleName, 3007, "invalid commitment")

	// Protocol admin errors
	ErrProtocolPaused    = sdkerrors.Register(ModuleName, 4001, "protocol is paused")
	ErrUnauthorized      = sdkerrors.Register(ModuleName, 4002, "unauthorized operation")
	ErrInvalidParameters = sdkerrors.Register(ModuleName, 4003, "invalid parameters")

	// System and cross-chain errors
	ErrStateCorruption   = sdkerrors.Register(ModuleName, 5001, "state corruption detected")
	ErrCallbackFailed    = sdkerrors.Register(ModuleName, 5002, "resolution callback failed")
	ErrInvalidPacket     = sdkerrors.Register(ModuleName, 5003, "invalid packet data")
	ErrInvalidNonce      = sdkerrors.Register(ModuleName, 5004, "invalid or replayed nonce")
	ErrDuplicateCallback = sdkerrors.Register(ModuleName, 5005, "duplicate cross-chain request")

	// Settlement errors
	ErrNoPendingRewards = sdkerrors.Register(ModuleName, 6001, "no pending rewards to claim")
	ErrVoteNotFound     = sdkerrors.Register(ModuleName, 6004, "vote not found")
)
