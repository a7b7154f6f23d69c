package types

import (
	"fmt"
	"regexp"
	"strings"

	"cosmossdk.io/math"
)

// Voter registration validation bounds
const (
	MaxVoterNameLength   = 100
	MaxMetadataURLLength = 500

	// BaseReputation is assigned to voters with no voting history
	BaseReputation = 50
	MaxReputation  = 100

	// MaxParticipationBonus caps the reputation bonus earned from volume
	MaxParticipationBonus = 10
)

// Reputation tier boundaries (inclusive upper bounds)
const (
	TierNoviceMax       = 40
	TierIntermediateMax = 70
	TierExpertMax       = 90
)

var voterNamePattern = regexp.MustCompile(`^[a-zA-Z0-9 _-]+$`)

// Voter is a registered oracle participant
type Voter struct {
	Address        string   `json:"address"`
	Stake          math.Int `json:"stake"`
	LockedStake    math.Int `json:"locked_stake"`
	PendingRewards math.Int `json:"pending_rewards"`
	TotalVotes     uint64   `json:"total_votes"`
	CorrectVotes   uint64   `json:"correct_votes"`
	Reputation     uint64   `json:"reputation"`
	Active         bool     `json:"active"`
	Name           string   `json:"name,omitempty"`
	MetadataURL    string   `json:"metadata_url,omitempty"`
	RegisteredAt   int64    `json:"registered_at"`
}

// AvailableStake returns the stake not locked by pending votes
func (v Voter) AvailableStake() math.Int {
	return v.Stake.Sub(v.LockedStake)
}

// Validate checks internal consistency of a voter record
func (v Voter) Validate() error {
	if v.Address == "" {
		return fmt.Errorf("voter address cannot be empty")
	}
	if v.Stake.IsNil() || v.Stake.IsNegative() {
		return fmt.Errorf("stake cannot be negative")
	}
	if v.LockedStake.IsNil() || v.LockedStake.IsNegative() {
		return fmt.Errorf("locked stake cannot be negative")
	}
	if v.LockedStake.GT(v.Stake) {
		return fmt.Errorf("locked stake exceeds total stake")
	}
	if v.PendingRewards.IsNil() || v.PendingRewards.IsNegative() {
		return fmt.Errorf("pending rewards cannot be negative")
	}
	if v.CorrectVotes > v.TotalVotes {
		return fmt.Errorf("correct votes exceed total votes")
	}
	if v.Reputation > MaxReputation {
		return fmt.Errorf("reputation exceeds %d", MaxReputation)
	}
	return nil
}

// ValidateRegistrationParams checks the optional display name and metadata URL
func ValidateRegistrationParams(name, metadataURL string) error {
	if name != "" {
		if len(name) > MaxVoterNameLength {
			return fmt.Errorf("name exceeds %d characters", MaxVoterNameLength)
		}
		if !voterNamePattern.MatchString(name) {
			return fmt.Errorf("name may only contain alphanumerics, spaces, hyphens and underscores")
		}
	}
	if metadataURL != "" {
		if len(metadataURL) > MaxMetadataURLLength {
			return fmt.Errorf("metadata url exceeds %d characters", MaxMetadataURLLength)
		}
		if !strings.HasPrefix(metadataURL, "http://") &&
			!strings.HasPrefix(metadataURL, "https://") &&
			!strings.HasPrefix(metadataURL, "ipfs://") {
			return fmt.Errorf("metadata url must use http, https or ipfs scheme")
		}
	}
	return nil
}

// CalculateReputation derives a 0-100 reputation score from voting history.
// Voters with no history start at the base score. Accuracy contributes up
// to 100 points, participation volume up to MaxParticipationBonus, and the
// sum is capped at MaxReputation.
func CalculateReputation(correctVotes, totalVotes uint64) uint64 {
	if totalVotes == 0 {
		return BaseReputation
	}
	accuracy := correctVotes * 100 / totalVotes
	bonus := totalVotes / 10
	if bonus > MaxParticipationBonus {
		bonus = MaxParticipationBonus
	}
	rep := accuracy + bonus
	if rep > MaxReputation {
		rep = MaxReputation
	}
	return rep
}

// ReputationTier names the bracket a reputation score falls into
func ReputationTier(reputation uint64) string {
	switch {
	case reputation <= TierNoviceMax:
		return "novice"
	case reputation <= TierIntermediateMax:
		return "intermediate"
	case reputation <= TierExpertMax:
		return "expert"
	default:
		return "master"
	}
}

// VotingWeight maps reputation to a consensus weight in [0.5, 2.0]
func VotingWeight(reputation uint64) math.LegacyDec {
	rep := math.LegacyNewDec(int64(reputation)).QuoInt64(MaxReputation)
	return math.LegacyMustNewDecFromStr("0.5").Add(rep.Mul(math.LegacyMustNewDecFromStr("1.5")))
}

// RewardMultiplier maps reputation to a payout multiplier in [0.8, 1.2]
func RewardMultiplier(reputation uint64) math.LegacyDec {
	rep := math.LegacyNewDec(int64(reputation)).QuoInt64(MaxReputation)
	return math.LegacyMustNewDecFromStr("0.8").Add(rep.Mul(math.LegacyMustNewDecFromStr("0.4")))
}

// ReputationStats is a derived view of a voter's standing, never stored
type ReputationStats struct {
	Address      string         `json:"address"`
	Reputation   uint64         `json:"reputation"`
	Tier         string         `json:"tier"`
	TotalVotes   uint64         `json:"total_votes"`
	CorrectVotes uint64         `json:"correct_votes"`
	AccuracyPct  math.LegacyDec `json:"accuracy_pct"`
	VotingWeight math.LegacyDec `json:"voting_weight"`
}

// NewReputationStats computes the derived reputation view for a voter
func NewReputationStats(v Voter) ReputationStats {
	accuracy := math.LegacyZeroDec()
	if v.TotalVotes > 0 {
		accuracy = math.LegacyNewDec(int64(v.CorrectVotes)).
			MulInt64(100).
			QuoInt64(int64(v.TotalVotes))
	}
	return ReputationStats{
		Address:      v.Address,
		Reputation:   v.Reputation,
		Tier:         ReputationTier(v.Reputation),
		TotalVotes:   v.TotalVotes,
		CorrectVotes: v.CorrectVotes,
		AccuracyPct:  accuracy,
		VotingWeight: VotingWeight(v.Reputation),
	}
}

// RegistryStats tracks registry-wide totals
type RegistryStats struct {
	VoterCount uint64   `json:"voter_count"`
	TotalStake math.Int `json:"total_stake"`
}
