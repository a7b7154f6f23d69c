package types

import (
	"fmt"

	"cosmossdk.io/math"
)

// Parameter bounds. A slash above 50% or a fee above 10% would make a
// single bad vote ruinous relative to the reward at stake.
const (
	MaxSlashBps        = 5000
	MaxProtocolFeeBps  = 1000
	MaxDefaultMinVotes = 1000
	MinVotingDuration  = 60       // 1 minute
	MaxVotingDuration  = 31536000 // 1 year
	BpsDenominator     = 10000
)

// Params defines the oracle module parameters
type Params struct {
	// StakeDenom is the denomination voters stake and rewards are paid in
	StakeDenom string `json:"stake_denom"`
	// MinStake is the minimum stake required to register and stay active
	MinStake math.Int `json:"min_stake"`
	// DefaultMinVotes applies when a query is created without an explicit minimum
	DefaultMinVotes uint64 `json:"default_min_votes"`
	// DefaultVotingDuration in seconds, applied when no deadline is given
	DefaultVotingDuration int64 `json:"default_voting_duration"`
	// RewardBps is the advertised reward share, in basis points. It bounds
	// the other percentage parameters; the actual per-voter payout follows
	// the equal-split formula in settlement.
	RewardBps uint64 `json:"reward_bps"`
	// SlashBps is the fraction of total stake slashed from incorrect voters, in basis points
	SlashBps uint64 `json:"slash_bps"`
	// ProtocolFeeBps is the fee withheld from the reward pool, in basis points
	ProtocolFeeBps uint64 `json:"protocol_fee_bps"`
}

// DefaultParams returns default oracle parameters
func DefaultParams() Params {
	return Params{
		StakeDenom:            "uvrt",
		MinStake:              math.NewInt(100_000_000), // 100 tokens at 6 decimals
		DefaultMinVotes:       3,
		DefaultVotingDuration: 3600, // 1 hour
		RewardBps:             1000, // 10%
		// SlashBps: 5% of total stake per incorrect vote. High enough that
		// random voting loses money against the reward multiplier ceiling,
		// low enough that an honest minority position is survivable.
		SlashBps:       500,
		ProtocolFeeBps: 100, // 1%
	}
}

// Validate performs basic validation of the parameter set
func (p Params) Validate() error {
	if p.StakeDenom == "" {
		return fmt.Errorf("stake denom cannot be empty")
	}
	if p.MinStake.IsNil() || !p.MinStake.IsPositive() {
		return fmt.Errorf("minimum stake must be positive")
	}
	if p.DefaultMinVotes == 0 || p.DefaultMinVotes > MaxDefaultMinVotes {
		return fmt.Errorf("default minimum votes must be between 1 and %d", MaxDefaultMinVotes)
	}
	if p.DefaultVotingDuration < MinVotingDuration || p.DefaultVotingDuration > MaxVotingDuration {
		return fmt.Errorf("default voting duration must be between %d and %d seconds", MinVotingDuration, MaxVotingDuration)
	}
	if p.RewardBps > BpsDenominator {
		return fmt.Errorf("reward basis points cannot exceed %d", BpsDenominator)
	}
	if p.SlashBps > MaxSlashBps {
		return fmt.Errorf("slash basis points cannot exceed %d", MaxSlashBps)
	}
	if p.ProtocolFeeBps > MaxProtocolFeeBps {
		return fmt.Errorf("protocol fee basis points cannot exceed %d", MaxProtocolFeeBps)
	}
	if p.RewardBps+p.SlashBps+p.ProtocolFeeBps > BpsDenominator {
		return fmt.Errorf("combined basis points cannot exceed %d", BpsDenominator)
	}
	return nil
}
