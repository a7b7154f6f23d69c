package types

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	errorsmod "cosmossdk.io/errors"
	"cosmossdk.io/math"
)

// QueryStatus is the lifecycle state of a query
type QueryStatus string

const (
	QueryStatusActive    QueryStatus = "active"
	QueryStatusResolved  QueryStatus = "resolved"
	QueryStatusExpired   QueryStatus = "expired"
	QueryStatusCancelled QueryStatus = "cancelled"
)

// IsTerminal reports whether the status admits no further transitions
func (s QueryStatus) IsTerminal() bool {
	return s == QueryStatusResolved || s == QueryStatusExpired || s == QueryStatusCancelled
}

// DecisionStrategy selects how votes are aggregated into an outcome
type DecisionStrategy string

const (
	StrategyMajority             DecisionStrategy = "majority"
	StrategyMedian               DecisionStrategy = "median"
	StrategyWeightedByStake      DecisionStrategy = "weighted_stake"
	StrategyWeightedByReputation DecisionStrategy = "weighted_reputation"
)

// ValidStrategy reports whether s is a known decision strategy
func ValidStrategy(s DecisionStrategy) bool {
	switch s {
	case StrategyMajority, StrategyMedian, StrategyWeightedByStake, StrategyWeightedByReputation:
		return true
	}
	return false
}

// Query validation bounds
const (
	MaxDescriptionLength = 1000
	MinOutcomes          = 2
	MaxOutcomes          = 100
	MaxOutcomeLength     = 200
	MaxDeadlineHorizon   = 31536000 // 1 year in seconds
	MaxCommitmentLength  = 128
	MaxConfidence        = 100
)

// Query is a question posed to the voter set
type Query struct {
	ID           uint64           `json:"id"`
	Creator      string           `json:"creator"`
	Description  string           `json:"description"`
	Outcomes     []string         `json:"outcomes"`
	Strategy     DecisionStrategy `json:"strategy"`
	RewardAmount math.Int         `json:"reward_amount"`
	MinVotes     uint64           `json:"min_votes"`
	CreatedAt    int64            `json:"created_at"`
	Deadline     int64            `json:"deadline"`

	// Commit-reveal mode splits the voting window into a commit phase and
	// a reveal phase. Phases are derived from these timestamps rather than
	// stored as lifecycle states.
	CommitReveal   bool  `json:"commit_reveal"`
	CommitDeadline int64 `json:"commit_deadline,omitempty"`
	RevealDeadline int64 `json:"reveal_deadline,omitempty"`

	Status          QueryStatus    `json:"status"`
	ResolvedOutcome int32          `json:"resolved_outcome"` // -1 until resolved
	ResolvedAt      int64          `json:"resolved_at,omitempty"`
	Confidence      math.LegacyDec `json:"confidence"`
	VoteCount       uint64         `json:"vote_count"`

	// Cross-chain origin, set when the query was created by an inbound packet
	CallbackChannel string `json:"callback_channel,omitempty"`
	CallbackData    []byte `json:"callback_data,omitempty"`
	SourceMarketID  string `json:"source_market_id,omitempty"`
}

// InCommitPhase reports whether commits are accepted at the given time
func (q Query) InCommitPhase(now int64) bool {
	return q.CommitReveal && now < q.CommitDeadline
}

// InRevealPhase reports whether reveals are accepted at the given time
func (q Query) InRevealPhase(now int64) bool {
	return q.CommitReveal && now >= q.CommitDeadline && now < q.RevealDeadline
}

// ValidateQueryParams checks creation parameters against the registry size.
// voterCount is the number of currently registered voters.
func ValidateQueryParams(description string, outcomes []string, strategy DecisionStrategy, reward math.Int, minVotes uint64, deadline, now int64, voterCount uint64) error {
	if description == "" || len(description) > MaxDescriptionLength {
		return errorsmod.Wrapf(ErrInvalidParameters, "description must be 1-%d characters", MaxDescriptionLength)
	}
	if len(outcomes) < MinOutcomes || len(outcomes) > MaxOutcomes {
		return errorsmod.Wrapf(ErrInvalidOutcomes, "outcome count must be between %d and %d", MinOutcomes, MaxOutcomes)
	}
	seen := make(map[string]struct{}, len(outcomes))
	for i, o := range outcomes {
		if o == "" || len(o) > MaxOutcomeLength {
			return errorsmod.Wrapf(ErrInvalidOutcomes, "outcome %d must be 1-%d characters", i, MaxOutcomeLength)
		}
		if _, dup := seen[o]; dup {
			return errorsmod.Wrapf(ErrInvalidOutcomes, "duplicate outcome %q", o)
		}
		seen[o] = struct{}{}
	}
	if !ValidStrategy(strategy) {
		return errorsmod.Wrapf(ErrInvalidParameters, "unknown decision strategy %q", strategy)
	}
	if strategy == StrategyMedian {
		for i, o := range outcomes {
			if _, err := math.LegacyNewDecFromStr(o); err != nil {
				return errorsmod.Wrapf(ErrStrategyMismatch, "median strategy requires numeric outcomes, outcome %d is %q", i, o)
			}
		}
	}
	if reward.IsNil() || !reward.IsPositive() {
		return errorsmod.Wrap(ErrInvalidReward, "reward must be positive")
	}
	if deadline <= now {
		return errorsmod.Wrap(ErrInvalidDeadline, "deadline must be in the future")
	}
	if deadline-now > MaxDeadlineHorizon {
		return errorsmod.Wrapf(ErrInvalidDeadline, "deadline cannot be more than %d seconds out", MaxDeadlineHorizon)
	}
	if minVotes == 0 {
		return errorsmod.Wrap(ErrInvalidMinVotes, "minimum votes must be at least 1")
	}
	if minVotes > voterCount {
		return errorsmod.Wrapf(ErrInvalidMinVotes, "minimum votes %d exceeds registered voter count %d", minVotes, voterCount)
	}
	if voterCount > 10 && minVotes > voterCount/2 {
		return errorsmod.Wrapf(ErrInvalidMinVotes, "minimum votes %d exceeds half of the %d registered voters", minVotes, voterCount)
	}
	return nil
}

// Vote is a recorded outcome choice from a voter
type Vote struct {
	QueryID      uint64   `json:"query_id"`
	Voter        string   `json:"voter"`
	OutcomeIndex uint32   `json:"outcome_index"`
	Confidence   uint64   `json:"confidence,omitempty"`
	LockedAmount math.Int `json:"locked_amount"`
	SubmittedAt  int64    `json:"submitted_at"`
}

// VoteCommit is a hashed vote awaiting reveal
type VoteCommit struct {
	QueryID      uint64   `json:"query_id"`
	Voter        string   `json:"voter"`
	Commitment   string   `json:"commitment"`
	LockedAmount math.Int `json:"locked_amount"`
	CommittedAt  int64    `json:"committed_at"`
	Revealed     bool     `json:"revealed"`
}

// ComputeCommitment hashes an outcome choice with a salt and confidence
// into the hex digest submitted during the commit phase.
func ComputeCommitment(outcomeIndex uint32, salt string, confidence uint64) string {
	preimage := fmt.Sprintf("%d:%s:%d", outcomeIndex, salt, confidence)
	sum := sha256.Sum256([]byte(preimage))
	return hex.EncodeToString(sum[:])
}

// CalculateStakeToLock determines how much of a voter's available stake a
// vote puts at risk: 10% of available stake, floored at the minimum stake
// (or the full available balance when even that is short).
func CalculateStakeToLock(available, minStake math.Int) math.Int {
	tenth := available.Quo(math.NewInt(10))
	if tenth.LT(minStake) {
		if available.LT(minStake) {
			return available
		}
		return minStake
	}
	return tenth
}

// Treasury tracks protocol-level balances accrued by fees and slashing
type Treasury struct {
	FeesCollected    math.Int `json:"fees_collected"`
	SlashedCollected math.Int `json:"slashed_collected"`
	RewardsPaid      math.Int `json:"rewards_paid"`
}

// NewTreasury returns a zeroed treasury
func NewTreasury() Treasury {
	return Treasury{
		FeesCollected:    math.ZeroInt(),
		SlashedCollected: math.ZeroInt(),
		RewardsPaid:      math.ZeroInt(),
	}
}
