package types

import (
	"context"

	"cosmossdk.io/errors"
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// MsgServer is the oracle module's transaction interface
type MsgServer interface {
	RegisterVoter(context.Context, *MsgRegisterVoter) (*MsgRegisterVoterResponse, error)
	RegisterVoterFor(context.Context, *MsgRegisterVoterFor) (*MsgRegisterVoterResponse, error)
	UpdateStake(context.Context, *MsgUpdateStake) (*MsgUpdateStakeResponse, error)
	WithdrawStake(context.Context, *MsgWithdrawStake) (*MsgWithdrawStakeResponse, error)
	DeregisterVoter(context.Context, *MsgDeregisterVoter) (*MsgDeregisterVoterResponse, error)
	CreateQuery(context.Context, *MsgCreateQuery) (*MsgCreateQueryResponse, error)
	SubmitVote(context.Context, *MsgSubmitVote) (*MsgSubmitVoteResponse, error)
	CommitVote(context.Context, *MsgCommitVote) (*MsgCommitVoteResponse, error)
	RevealVote(context.Context, *MsgRevealVote) (*MsgRevealVoteResponse, error)
	ResolveQuery(context.Context, *MsgResolveQuery) (*MsgResolveQueryResponse, error)
	ClaimRewards(context.Context, *MsgClaimRewards) (*MsgClaimRewardsResponse, error)
	CancelQuery(context.Context, *MsgCancelQuery) (*MsgCancelQueryResponse, error)
	ExpireQuery(context.Context, *MsgExpireQuery) (*MsgExpireQueryResponse, error)
	CheckExpiredQueries(context.Context, *MsgCheckExpiredQueries) (*MsgCheckExpiredQueriesResponse, error)
	AutoResolveQueries(context.Context, *MsgAutoResolveQueries) (*MsgAutoResolveQueriesResponse, error)
	PauseProtocol(context.Context, *MsgPauseProtocol) (*MsgPauseProtocolResponse, error)
	UnpauseProtocol(context.Context, *MsgUnpauseProtocol) (*MsgUnpauseProtocolResponse, error)
	UpdateParams(context.Context, *MsgUpdateParams) (*MsgUpdateParamsResponse, error)
}

// MsgRegisterVoter registers the sender as a voter with an initial stake
type MsgRegisterVoter struct {
	Voter       string   `json:"voter"`
	Stake       math.Int `json:"stake"`
	Name        string   `json:"name,omitempty"`
	MetadataURL string   `json:"metadata_url,omitempty"`
}

type MsgRegisterVoterResponse struct {
	Reputation uint64 `json:"reputation"`
}

func (m *MsgRegisterVoter) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(m.Voter); err != nil {
		return errors.Wrapf(ErrInvalidParameters, "invalid voter address: %s", err)
	}
	if m.Stake.IsNil() || !m.Stake.IsPositive() {
		return errors.Wrap(ErrInsufficientStake, "stake must be positive")
	}
	if err := ValidateRegistrationParams(m.Name, m.MetadataURL); err != nil {
		return errors.Wrap(ErrInvalidParameters, err.Error())
	}
	return nil
}

// MsgRegisterVoterFor lets the authority register a voter on their behalf
type MsgRegisterVoterFor struct {
	Authority   string   `json:"authority"`
	Voter       string   `json:"voter"`
	Stake       math.Int `json:"stake"`
	Name        string   `json:"name,omitempty"`
	MetadataURL string   `json:"metadata_url,omitempty"`
}

func (m *MsgRegisterVoterFor) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(m.Authority); err != nil {
		return errors.Wrapf(ErrInvalidParameters, "invalid authority address: %s", err)
	}
	inner := MsgRegisterVoter{Voter: m.Voter, Stake: m.Stake, Name: m.Name, MetadataURL: m.MetadataURL}
	return inner.ValidateBasic()
}

// MsgUpdateStake adds stake to an existing registration
type MsgUpdateStake struct {
	Voter  string   `json:"voter"`
	Amount math.Int `json:"amount"`
}

type MsgUpdateStakeResponse struct {
	Stake math.Int `json:"stake"`
}

func (m *MsgUpdateStake) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(m.Voter); err != nil {
		return errors.Wrapf(ErrInvalidParameters, "invalid voter address: %s", err)
	}
	if m.Amount.IsNil() || !m.Amount.IsPositive() {
		return errors.Wrap(ErrInvalidParameters, "stake amount must be positive")
	}
	return nil
}

// MsgWithdrawStake withdraws unlocked stake
type MsgWithdrawStake struct {
	Voter  string   `json:"voter"`
	Amount math.Int `json:"amount"`
}

type MsgWithdrawStakeResponse struct {
	Stake math.Int `json:"stake"`
}

func (m *MsgWithdrawStake) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(m.Voter); err != nil {
		return errors.Wrapf(ErrInvalidParameters, "invalid voter address: %s", err)
	}
	if m.Amount.IsNil() || !m.Amount.IsPositive() {
		return errors.Wrap(ErrInvalidParameters, "withdrawal amount must be positive")
	}
	return nil
}

// MsgDeregisterVoter removes a voter and returns their full stake
type MsgDeregisterVoter struct {
	Voter string `json:"voter"`
}

type MsgDeregisterVoterResponse struct {
	Returned math.Int `json:"returned"`
}

func (m *MsgDeregisterVoter) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(m.Voter); err != nil {
		return errors.Wrapf(ErrInvalidParameters, "invalid voter address: %s", err)
	}
	return nil
}

// MsgCreateQuery opens a new query for voting. Callback fields are optional
// and echo a resolution back to the named channel.
type MsgCreateQuery struct {
	Creator         string           `json:"creator"`
	Description     string           `json:"description"`
	Outcomes        []string         `json:"outcomes"`
	Strategy        DecisionStrategy `json:"strategy"`
	RewardAmount    math.Int         `json:"reward_amount"`
	MinVotes        uint64           `json:"min_votes,omitempty"`
	Deadline        int64            `json:"deadline,omitempty"`
	CommitReveal    bool             `json:"commit_reveal,omitempty"`
	CallbackChannel string           `json:"callback_channel,omitempty"`
	CallbackData    []byte           `json:"callback_data,omitempty"`
}

type MsgCreateQueryResponse struct {
	QueryID uint64 `json:"query_id"`
}

func (m *MsgCreateQuery) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(m.Creator); err != nil {
		return errors.Wrapf(ErrInvalidParameters, "invalid creator address: %s", err)
	}
	if m.Description == "" {
		return errors.Wrap(ErrInvalidParameters, "description cannot be empty")
	}
	if len(m.Outcomes) < MinOutcomes {
		return errors.Wrapf(ErrInvalidOutcomes, "at least %d outcomes required", MinOutcomes)
	}
	if !ValidStrategy(m.Strategy) {
		return errors.Wrapf(ErrInvalidParameters, "unknown strategy %q", m.Strategy)
	}
	if m.RewardAmount.IsNil() || !m.RewardAmount.IsPositive() {
		return errors.Wrap(ErrInvalidReward, "reward must be positive")
	}
	return nil
}

// MsgSubmitVote casts a direct vote on an active query
type MsgSubmitVote struct {
	Voter        string `json:"voter"`
	QueryID      uint64 `json:"query_id"`
	OutcomeIndex uint32 `json:"outcome_index"`
	Confidence   uint64 `json:"confidence,omitempty"`
}

type MsgSubmitVoteResponse struct {
	LockedAmount math.Int `json:"locked_amount"`
}

func (m *MsgSubmitVote) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(m.Voter); err != nil {
		return errors.Wrapf(ErrInvalidParameters, "invalid voter address: %s", err)
	}
	if m.Confidence > MaxConfidence {
		return errors.Wrapf(ErrInvalidConfidence, "got %d", m.Confidence)
	}
	return nil
}

// MsgCommitVote submits a hashed vote during the commit phase
type MsgCommitVote struct {
	Voter      string `json:"voter"`
	QueryID    uint64 `json:"query_id"`
	Commitment string `json:"commitment"`
}

type MsgCommitVoteResponse struct {
	LockedAmount math.Int `json:"locked_amount"`
}

func (m *MsgCommitVote) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(m.Voter); err != nil {
		return errors.Wrapf(ErrInvalidParameters, "invalid voter address: %s", err)
	}
	if m.Commitment == "" || len(m.Commitment) > MaxCommitmentLength {
		return errors.Wrapf(ErrInvalidCommitment, "commitment must be 1-%d characters", MaxCommitmentLength)
	}
	return nil
}

// MsgRevealVote opens a previously committed vote
type MsgRevealVote struct {
	Voter        string `json:"voter"`
	QueryID      uint64 `json:"query_id"`
	OutcomeIndex uint32 `json:"outcome_index"`
	Salt         string `json:"salt"`
	Confidence   uint64 `json:"confidence,omitempty"`
}

type MsgRevealVoteResponse struct{}

func (m *MsgRevealVote) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(m.Voter); err != nil {
		return errors.Wrapf(ErrInvalidParameters, "invalid voter address: %s", err)
	}
	if m.Salt == "" {
		return errors.Wrap(ErrInvalidReveal, "salt cannot be empty")
	}
	if m.Confidence > MaxConfidence {
		return errors.Wrapf(ErrInvalidConfidence, "got %d", m.Confidence)
	}
	return nil
}

// MsgResolveQuery triggers resolution of a query past its deadline
type MsgResolveQuery struct {
	Sender  string `json:"sender"`
	QueryID uint64 `json:"query_id"`
}

type MsgResolveQueryResponse struct {
	Status          QueryStatus    `json:"status"`
	ResolvedOutcome int32          `json:"resolved_outcome"`
	Confidence      math.LegacyDec `json:"confidence"`
}

func (m *MsgResolveQuery) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(m.Sender); err != nil {
		return errors.Wrapf(ErrInvalidParameters, "invalid sender address: %s", err)
	}
	return nil
}

// MsgClaimRewards pays out the sender's accumulated pending rewards
type MsgClaimRewards struct {
	Voter string `json:"voter"`
}

type MsgClaimRewardsResponse struct {
	Amount math.Int `json:"amount"`
}

func (m *MsgClaimRewards) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(m.Voter); err != nil {
		return errors.Wrapf(ErrInvalidParameters, "invalid voter address: %s", err)
	}
	return nil
}

// MsgCancelQuery lets the authority cancel an active query
type MsgCancelQuery struct {
	Authority string `json:"authority"`
	QueryID   uint64 `json:"query_id"`
}

type MsgCancelQueryResponse struct{}

func (m *MsgCancelQuery) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(m.Authority); err != nil {
		return errors.Wrapf(ErrInvalidParameters, "invalid authority address: %s", err)
	}
	return nil
}

// MsgExpireQuery lets the authority expire a query past its deadline
type MsgExpireQuery struct {
	Authority string `json:"authority"`
	QueryID   uint64 `json:"query_id"`
}

type MsgExpireQueryResponse struct{}

func (m *MsgExpireQuery) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(m.Authority); err != nil {
		return errors.Wrapf(ErrInvalidParameters, "invalid authority address: %s", err)
	}
	return nil
}

// MsgCheckExpiredQueries sweeps active queries whose deadlines passed
// without reaching quorum
type MsgCheckExpiredQueries struct {
	Sender string `json:"sender"`
}

type MsgCheckExpiredQueriesResponse struct {
	Expired []uint64 `json:"expired,omitempty"`
}

func (m *MsgCheckExpiredQueries) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(m.Sender); err != nil {
		return errors.Wrapf(ErrInvalidParameters, "invalid sender address: %s", err)
	}
	return nil
}

// MsgAutoResolveQueries resolves every query past its deadline that has
// reached quorum, and expires the rest
type MsgAutoResolveQueries struct {
	Sender string `json:"sender"`
}

type MsgAutoResolveQueriesResponse struct {
	Resolved []uint64 `json:"resolved,omitempty"`
	Expired  []uint64 `json:"expired,omitempty"`
}

func (m *MsgAutoResolveQueries) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(m.Sender); err != nil {
		return errors.Wrapf(ErrInvalidParameters, "invalid sender address: %s", err)
	}
	return nil
}

// MsgPauseProtocol halts all non-admin operations
type MsgPauseProtocol struct {
	Authority string `json:"authority"`
}

type MsgPauseProtocolResponse struct{}

func (m *MsgPauseProtocol) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(m.Authority); err != nil {
		return errors.Wrapf(ErrInvalidParameters, "invalid authority address: %s", err)
	}
	return nil
}

// MsgUnpauseProtocol resumes operations
type MsgUnpauseProtocol struct {
	Authority string `json:"authority"`
}

type MsgUnpauseProtocolResponse struct{}

func (m *MsgUnpauseProtocol) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(m.Authority); err != nil {
		return errors.Wrapf(ErrInvalidParameters, "invalid authority address: %s", err)
	}
	return nil
}

// MsgUpdateParams replaces the module parameters
type MsgUpdateParams struct {
	Authority string `json:"authority"`
	Params    Params `json:"params"`
}

type MsgUpdateParamsResponse struct{}

func (m *MsgUpdateParams) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(m.Authority); err != nil {
		return errors.Wrapf(ErrInvalidParameters, "invalid authority address: %s", err)
	}
	if err := m.Params.Validate(); err != nil {
		return errors.Wrap(ErrInvalidParameters, err.Error())
	}
	return nil
}
