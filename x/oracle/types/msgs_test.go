package types

import (
	"testing"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/stretchr/testify/require"
)

var (
	testVoter     = sdk.AccAddress([]byte("voter_______________")).String()
	testAuthority = sdk.AccAddress([]byte("authority___________")).String()
)

func TestMsgRegisterVoterValidateBasic(t *testing.T) {
	valid := MsgRegisterVoter{Voter: testVoter, Stake: math.NewInt(1000)}
	require.NoError(t, valid.ValidateBasic())

	badAddr := valid
	badAddr.Voter = "not-bech32"
	require.Error(t, badAddr.ValidateBasic())

	zeroStake := valid
	zeroStake.Stake = math.ZeroInt()
	require.Error(t, zeroStake.ValidateBasic())

	nilStake := valid
	nilStake.Stake = math.Int{}
	require.Error(t, nilStake.ValidateBasic())

	badName := valid
	badName.Name = "no/slashes"
	require.Error(t, badName.ValidateBasic())
}

func TestMsgRegisterVoterForValidateBasic(t *testing.T) {
	valid := MsgRegisterVoterFor{Authority: testAuthority, Voter: testVoter, Stake: math.NewInt(1000)}
	require.NoError(t, valid.ValidateBasic())

	badAuthority := valid
	badAuthority.Authority = "nope"
	require.Error(t, badAuthority.ValidateBasic())

	badVoter := valid
	badVoter.Voter = "nope"
	require.Error(t, badVoter.ValidateBasic())
}

func TestMsgUpdateStakeValidateBasic(t *testing.T) {
	require.NoError(t, (&MsgUpdateStake{Voter: testVoter, Amount: math.NewInt(1)}).ValidateBasic())
	require.Error(t, (&MsgUpdateStake{Voter: "x", Amount: math.NewInt(1)}).ValidateBasic())
	require.Error(t, (&MsgUpdateStake{Voter: testVoter, Amount: math.ZeroInt()}).ValidateBasic())
}

func TestMsgWithdrawStakeValidateBasic(t *testing.T) {
	require.NoError(t, (&MsgWithdrawStake{Voter: testVoter, Amount: math.NewInt(1)}).ValidateBasic())
	require.Error(t, (&MsgWithdrawStake{Voter: testVoter, Amount: math.NewInt(-5)}).ValidateBasic())
}

func TestMsgCreateQueryValidateBasic(t *testing.T) {
	valid := MsgCreateQuery{
		Creator:      testVoter,
		Description:  "Did the launch succeed",
		Outcomes:     []string{"yes", "no"},
		Strategy:     StrategyMajority,
		RewardAmount: math.NewInt(1_000_000),
	}
	require.NoError(t, valid.ValidateBasic())

	badCreator := valid
	badCreator.Creator = "x"
	require.Error(t, badCreator.ValidateBasic())

	noDescription := valid
	noDescription.Description = ""
	require.Error(t, noDescription.ValidateBasic())

	oneOutcome := valid
	oneOutcome.Outcomes = []string{"yes"}
	require.Error(t, oneOutcome.ValidateBasic())

	badStrategy := valid
	badStrategy.Strategy = "plurality"
	require.Error(t, badStrategy.ValidateBasic())

	zeroReward := valid
	zeroReward.RewardAmount = math.ZeroInt()
	require.Error(t, zeroReward.ValidateBasic())
}

func TestMsgSubmitVoteValidateBasic(t *testing.T) {
	require.NoError(t, (&MsgSubmitVote{Voter: testVoter, QueryID: 1, OutcomeIndex: 0, Confidence: 100}).ValidateBasic())
	require.Error(t, (&MsgSubmitVote{Voter: "x", QueryID: 1}).ValidateBasic())
	require.Error(t, (&MsgSubmitVote{Voter: testVoter, QueryID: 1, Confidence: 101}).ValidateBasic())
}

func TestMsgCommitVoteValidateBasic(t *testing.T) {
	commitment := ComputeCommitment(0, "salt", 90)
	require.NoError(t, (&MsgCommitVote{Voter: testVoter, QueryID: 1, Commitment: commitment}).ValidateBasic())
	require.Error(t, (&MsgCommitVote{Voter: testVoter, QueryID: 1, Commitment: ""}).ValidateBasic())
}

func TestMsgRevealVoteValidateBasic(t *testing.T) {
	require.NoError(t, (&MsgRevealVote{Voter: testVoter, QueryID: 1, OutcomeIndex: 0, Salt: "salt"}).ValidateBasic())
	require.Error(t, (&MsgRevealVote{Voter: testVoter, QueryID: 1, Salt: ""}).ValidateBasic())
	require.Error(t, (&MsgRevealVote{Voter: testVoter, QueryID: 1, Salt: "salt", Confidence: 101}).ValidateBasic())
}

func TestAuthorityMsgsValidateBasic(t *testing.T) {
	require.NoError(t, (&MsgCancelQuery{Authority: testAuthority, QueryID: 1}).ValidateBasic())
	require.Error(t, (&MsgCancelQuery{Authority: "x"}).ValidateBasic())

	require.NoError(t, (&MsgExpireQuery{Authority: testAuthority, QueryID: 1}).ValidateBasic())
	require.NoError(t, (&MsgPauseProtocol{Authority: testAuthority}).ValidateBasic())
	require.NoError(t, (&MsgUnpauseProtocol{Authority: testAuthority}).ValidateBasic())

	require.NoError(t, (&MsgUpdateParams{Authority: testAuthority, Params: DefaultParams()}).ValidateBasic())
	badParams := DefaultParams()
	badParams.StakeDenom = ""
	require.Error(t, (&MsgUpdateParams{Authority: testAuthority, Params: badParams}).ValidateBasic())
}
