package keeper_test

import (
	"encoding/json"
	"testing"
	"time"

	"cosmossdk.io/math"
	capabilitytypes "github.com/cosmos/ibc-go/modules/capability/types"
	host "github.com/cosmos/ibc-go/v8/modules/core/24-host"
	"github.com/stretchr/testify/require"

	keepertest "github.com/veritas-chain/veritas/testutil/keeper"
	"github.com/veritas-chain/veritas/x/oracle/types"
)

func inboundPacket(f keepertest.Fixture, nonce uint64, marketID string) types.CreateQueryPacketData {
	return types.CreateQueryPacketData{
		Type:         types.CreateQueryType,
		Nonce:        nonce,
		Timestamp:    f.Ctx.BlockTime().Unix(),
		MarketID:     marketID,
		Question:     "Did the market settle",
		Outcomes:     []string{"yes", "no"},
		Strategy:     types.StrategyMajority,
		RewardAmount: math.NewInt(10_000_000),
		MinVotes:     2,
		Deadline:     f.Ctx.BlockTime().Unix() + 3600,
		CallbackData: []byte(`{"position":"long"}`),
		Sender:       "market-module",
	}
}

func TestOnRecvCreateQuery(t *testing.T) {
	f := keepertest.OracleKeeper(t)
	registerVoters(t, f, 3)

	queryID, err := f.Keeper.OnRecvCreateQuery(f.Ctx, "channel-0", inboundPacket(f, 1, "market-1"))
	require.NoError(t, err)
	require.Equal(t, uint64(1), queryID)

	query, found := f.Keeper.GetQuery(f.Ctx, queryID)
	require.True(t, found)
	require.Equal(t, "channel-0", query.CallbackChannel)
	require.Equal(t, "market-1", query.SourceMarketID)
	require.Equal(t, []byte(`{"position":"long"}`), query.CallbackData)

	// no reward escrow for cross-chain queries
	require.Equal(t, math.NewInt(3_000_000_000), f.Bank.ModuleBalance(types.ModuleName).AmountOf("uvrt"))

	t.Run("duplicate market returns existing query", func(t *testing.T) {
		again, err := f.Keeper.OnRecvCreateQuery(f.Ctx, "channel-0", inboundPacket(f, 2, "market-1"))
		require.NoError(t, err)
		require.Equal(t, queryID, again)
		require.Len(t, f.Keeper.GetAllQueries(f.Ctx), 1)
	})

	t.Run("same market on another channel is a new query", func(t *testing.T) {
		other, err := f.Keeper.OnRecvCreateQuery(f.Ctx, "channel-7", inboundPacket(f, 1, "market-1"))
		require.NoError(t, err)
		require.NotEqual(t, queryID, other)
	})

	t.Run("replayed nonce rejected", func(t *testing.T) {
		_, err := f.Keeper.OnRecvCreateQuery(f.Ctx, "channel-0", inboundPacket(f, 2, "market-2"))
		require.ErrorIs(t, err, types.ErrInvalidNonce)
	})

	t.Run("invalid packet rejected", func(t *testing.T) {
		bad := inboundPacket(f, 3, "market-3")
		bad.Question = ""
		_, err := f.Keeper.OnRecvCreateQuery(f.Ctx, "channel-0", bad)
		require.ErrorIs(t, err, types.ErrInvalidPacket)
	})

	t.Run("rejected while paused", func(t *testing.T) {
		f.Keeper.SetPaused(f.Ctx, true)
		defer f.Keeper.SetPaused(f.Ctx, false)
		_, err := f.Keeper.OnRecvCreateQuery(f.Ctx, "channel-0", inboundPacket(f, 3, "market-3"))
		require.ErrorIs(t, err, types.ErrProtocolPaused)
	})
}

func TestResolutionQueuesCallback(t *testing.T) {
	f := keepertest.OracleKeeper(t)
	voters := registerVoters(t, f, 3)

	queryID, err := f.Keeper.OnRecvCreateQuery(f.Ctx, "channel-0", inboundPacket(f, 1, "market-1"))
	require.NoError(t, err)

	for _, v := range voters {
		_, err := f.Keeper.SubmitVote(f.Ctx, queryID, v, 1, 0)
		require.NoError(t, err)
	}

	query, _ := f.Keeper.GetQuery(f.Ctx, queryID)
	ctx := f.Ctx.WithBlockTime(time.Unix(query.Deadline+1, 0).UTC())
	_, err = f.Keeper.ResolveQuery(ctx, queryID)
	require.NoError(t, err)

	queued := f.Keeper.GetQueuedCallbacks(ctx)
	require.Len(t, queued, 1)
	require.Equal(t, queryID, queued[0].QueryID)
	require.Equal(t, "market-1", queued[0].MarketID)
	require.Equal(t, int32(1), queued[0].ResolvedOutcome)
	require.Equal(t, []byte(`{"position":"long"}`), queued[0].CallbackData)
}

func TestSendQueuedCallbacks(t *testing.T) {
	f := keepertest.OracleKeeper(t)
	voters := registerVoters(t, f, 3)

	queryID, err := f.Keeper.OnRecvCreateQuery(f.Ctx, "channel-0", inboundPacket(f, 1, "market-1"))
	require.NoError(t, err)
	for _, v := range voters {
		_, err := f.Keeper.SubmitVote(f.Ctx, queryID, v, 0, 0)
		require.NoError(t, err)
	}
	query, _ := f.Keeper.GetQuery(f.Ctx, queryID)
	ctx := f.Ctx.WithBlockTime(time.Unix(query.Deadline+1, 0).UTC())
	_, err = f.Keeper.ResolveQuery(ctx, queryID)
	require.NoError(t, err)

	t.Run("missing channel capability keeps entry queued", func(t *testing.T) {
		require.Equal(t, 0, f.Keeper.SendQueuedCallbacks(ctx))
		require.Len(t, f.Keeper.GetQueuedCallbacks(ctx), 1)
	})

	capPath := host.ChannelCapabilityPath(types.PortID, "channel-0")
	require.NoError(t, f.Keeper.ClaimCapability(ctx, capabilitytypes.NewCapability(1), capPath))

	t.Run("send failure keeps entry queued", func(t *testing.T) {
		f.Channel.FailNext = true
		require.Equal(t, 0, f.Keeper.SendQueuedCallbacks(ctx))
		require.Len(t, f.Keeper.GetQueuedCallbacks(ctx), 1)
	})

	t.Run("successful send drains the queue", func(t *testing.T) {
		require.Equal(t, 1, f.Keeper.SendQueuedCallbacks(ctx))
		require.Empty(t, f.Keeper.GetQueuedCallbacks(ctx))
		require.Len(t, f.Channel.Sent, 1)
		require.Equal(t, []string{"channel-0"}, f.Channel.Channels)

		var packet types.QueryResolutionCallbackPacketData
		require.NoError(t, json.Unmarshal(f.Channel.Sent[0], &packet))
		require.Equal(t, types.ResolutionCallbackType, packet.Type)
		require.Equal(t, queryID, packet.QueryID)
		require.Equal(t, int32(0), packet.ResolvedOutcome)
	})

	t.Run("nothing left to send", func(t *testing.T) {
		require.Equal(t, 0, f.Keeper.SendQueuedCallbacks(ctx))
	})
}

func TestCallbackRequeuedAfterTimeout(t *testing.T) {
	f := keepertest.OracleKeeper(t)
	voters := registerVoters(t, f, 3)

	queryID, err := f.Keeper.OnRecvCreateQuery(f.Ctx, "channel-0", inboundPacket(f, 1, "market-1"))
	require.NoError(t, err)
	for _, v := range voters {
		_, err := f.Keeper.SubmitVote(f.Ctx, queryID, v, 0, 0)
		require.NoError(t, err)
	}
	query, _ := f.Keeper.GetQuery(f.Ctx, queryID)
	ctx := f.Ctx.WithBlockTime(time.Unix(query.Deadline+1, 0).UTC())
	_, err = f.Keeper.ResolveQuery(ctx, queryID)
	require.NoError(t, err)

	capPath := host.ChannelCapabilityPath(types.PortID, "channel-0")
	require.NoError(t, f.Keeper.ClaimCapability(ctx, capabilitytypes.NewCapability(1), capPath))
	require.Equal(t, 1, f.Keeper.SendQueuedCallbacks(ctx))
	require.Empty(t, f.Keeper.GetQueuedCallbacks(ctx))

	// a timed-out packet goes back on the queue; the query stays resolved
	resolved, _ := f.Keeper.GetQuery(ctx, queryID)
	f.Keeper.QueueResolutionCallback(ctx, resolved)
	require.Len(t, f.Keeper.GetQueuedCallbacks(ctx), 1)
	require.Equal(t, types.QueryStatusResolved, resolved.Status)
}
