package keeper

import (
	"bytes"
	"context"
	"testing"
	"time"

	"cosmossdk.io/log"
	"cosmossdk.io/math"
	"cosmossdk.io/store"
	"cosmossdk.io/store/metrics"
	storetypes "cosmossdk.io/store/types"
	cmtproto "github.com/cometbft/cometbft/proto/tendermint/types"
	dbm "github.com/cosmos/cosmos-db"
	sdk "github.com/cosmos/cosmos-sdk/types"
	authtypes "github.com/cosmos/cosmos-sdk/x/auth/types"
	govtypes "github.com/cosmos/cosmos-sdk/x/gov/types"
	capabilitytypes "github.com/cosmos/ibc-go/modules/capability/types"
	clienttypes "github.com/cosmos/ibc-go/v8/modules/core/02-client/types"
	"github.com/stretchr/testify/require"

	"github.com/veritas-chain/veritas/x/oracle/keeper"
	"github.com/veritas-chain/veritas/x/oracle/types"
)

// BankLedger is an in-memory stand-in for the bank module. It tracks
// account and module balances so tests can assert on escrow movements
// without wiring the full bank keeper.
type BankLedger struct {
	balances       map[string]sdk.Coins
	moduleBalances map[string]sdk.Coins
}

func NewBankLedger() *BankLedger {
	return &BankLedger{
		balances:       make(map[string]sdk.Coins),
		moduleBalances: make(map[string]sdk.Coins),
	}
}

// Fund credits an account balance directly.
func (b *BankLedger) Fund(addr sdk.AccAddress, coins sdk.Coins) {
	b.balances[addr.String()] = b.balances[addr.String()].Add(coins...)
}

// Balance returns the current spendable balance of an account.
func (b *BankLedger) Balance(addr sdk.AccAddress) sdk.Coins {
	return b.balances[addr.String()]
}

// ModuleBalance returns the escrow held by a module account.
func (b *BankLedger) ModuleBalance(module string) sdk.Coins {
	return b.moduleBalances[module]
}

func (b *BankLedger) SpendableCoins(_ context.Context, addr sdk.AccAddress) sdk.Coins {
	return b.balances[addr.String()]
}

func (b *BankLedger) SendCoinsFromAccountToModule(_ context.Context, senderAddr sdk.AccAddress, recipientModule string, amt sdk.Coins) error {
	have := b.balances[senderAddr.String()]
	remaining, neg := have.SafeSub(amt...)
	if neg {
		return types.ErrInsufficientStake
	}
	b.balances[senderAddr.String()] = remaining
	b.moduleBalances[recipientModule] = b.moduleBalances[recipientModule].Add(amt...)
	return nil
}

func (b *BankLedger) SendCoinsFromModuleToAccount(_ context.Context, senderModule string, recipientAddr sdk.AccAddress, amt sdk.Coins) error {
	have := b.moduleBalances[senderModule]
	remaining, neg := have.SafeSub(amt...)
	if neg {
		return types.ErrInsufficientStake
	}
	b.moduleBalances[senderModule] = remaining
	b.balances[recipientAddr.String()] = b.balances[recipientAddr.String()].Add(amt...)
	return nil
}

// ChannelRecorder captures outbound packets instead of sending them over IBC.
type ChannelRecorder struct {
	Sent     [][]byte
	Channels []string
	FailNext bool
	seq      uint64
}

func (c *ChannelRecorder) SendPacket(
	_ sdk.Context,
	_ *capabilitytypes.Capability,
	_ string,
	sourceChannel string,
	_ clienttypes.Height,
	_ uint64,
	data []byte,
) (uint64, error) {
	if c.FailNext {
		c.FailNext = false
		return 0, types.ErrCallbackFailed
	}
	c.seq++
	c.Sent = append(c.Sent, data)
	c.Channels = append(c.Channels, sourceChannel)
	return c.seq, nil
}

// CapabilityStub satisfies the port and scoped keeper interfaces for tests.
type CapabilityStub struct {
	claimed map[string]bool
}

func NewCapabilityStub() *CapabilityStub {
	return &CapabilityStub{claimed: make(map[string]bool)}
}

func (c *CapabilityStub) BindPort(_ sdk.Context, portID string) *capabilitytypes.Capability {
	c.claimed[portID] = true
	return capabilitytypes.NewCapability(1)
}

func (c *CapabilityStub) GetCapability(_ sdk.Context, name string) (*capabilitytypes.Capability, bool) {
	if !c.claimed[name] {
		return nil, false
	}
	return capabilitytypes.NewCapability(1), true
}

func (c *CapabilityStub) AuthenticateCapability(_ sdk.Context, _ *capabilitytypes.Capability, name string) bool {
	return c.claimed[name]
}

func (c *CapabilityStub) ClaimCapability(_ sdk.Context, _ *capabilitytypes.Capability, name string) error {
	c.claimed[name] = true
	return nil
}

// Fixture bundles the keeper under test with its fake dependencies.
type Fixture struct {
	Keeper    *keeper.Keeper
	Ctx       sdk.Context
	Bank      *BankLedger
	Channel   *ChannelRecorder
	Caps      *CapabilityStub
	Authority string
}

// OracleKeeper builds a keeper backed by an in-memory commit store.
func OracleKeeper(t testing.TB) Fixture {
	storeKey := storetypes.NewKVStoreKey(types.StoreKey)

	db := dbm.NewMemDB()
	stateStore := store.NewCommitMultiStore(db, log.NewNopLogger(), metrics.NewNoOpMetrics())
	stateStore.MountStoreWithDB(storeKey, storetypes.StoreTypeIAVL, db)
	require.NoError(t, stateStore.LoadLatestVersion())

	bank := NewBankLedger()
	channel := &ChannelRecorder{}
	caps := NewCapabilityStub()
	authority := authtypes.NewModuleAddress(govtypes.ModuleName).String()

	k := keeper.NewKeeper(storeKey, bank, channel, caps, caps, authority)

	ctx := sdk.NewContext(stateStore, cmtproto.Header{}, false, log.NewNopLogger())
	ctx = ctx.WithBlockTime(time.Unix(1_700_000_000, 0).UTC())

	require.NoError(t, k.SetParams(ctx, types.DefaultParams()))

	return Fixture{
		Keeper:    k,
		Ctx:       ctx,
		Bank:      bank,
		Channel:   channel,
		Caps:      caps,
		Authority: authority,
	}
}

// Addr returns a deterministic bech32 test address.
func Addr(i byte) string {
	return sdk.AccAddress(bytes.Repeat([]byte{i + 1}, 20)).String()
}

// RegisterVoter funds an account and registers it as a voter.
func (f Fixture) RegisterVoter(t testing.TB, addr string, stake math.Int) types.Voter {
	t.Helper()
	accAddr, err := sdk.AccAddressFromBech32(addr)
	require.NoError(t, err)
	denom := f.Keeper.GetParams(f.Ctx).StakeDenom
	f.Bank.Fund(accAddr, sdk.NewCoins(sdk.NewCoin(denom, stake)))
	voter, err := f.Keeper.RegisterVoter(f.Ctx, addr, stake, "", "")
	require.NoError(t, err)
	return voter
}

// FundAccount credits an account in the stake denom.
func (f Fixture) FundAccount(t testing.TB, addr string, amount math.Int) {
	t.Helper()
	accAddr, err := sdk.AccAddressFromBech32(addr)
	require.NoError(t, err)
	denom := f.Keeper.GetParams(f.Ctx).StakeDenom
	f.Bank.Fund(accAddr, sdk.NewCoins(sdk.NewCoin(denom, amount)))
}
