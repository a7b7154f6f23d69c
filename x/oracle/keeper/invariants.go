package keeper

import (
	"fmt"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/veritas-chain/veritas/x/oracle/types"
)

// RegisterInvariants registers the oracle module invariants
func RegisterInvariants(ir sdk.InvariantRegistry, k Keeper) {
	ir.RegisterRoute(types.ModuleName, "registry-accounting", RegistryAccountingInvariant(k))
	ir.RegisterRoute(types.ModuleName, "locked-stake", LockedStakeInvariant(k))
}

// AllInvariants runs all oracle module invariants
func AllInvariants(k Keeper) sdk.Invariant {
	return func(ctx sdk.Context) (string, bool) {
		if msg, broken := RegistryAccountingInvariant(k)(ctx); broken {
			return msg, broken
		}
		return LockedStakeInvariant(k)(ctx)
	}
}

// RegistryAccountingInvariant checks that the registry totals match the
// sum over all voter records.
func RegistryAccountingInvariant(k Keeper) sdk.Invariant {
	return func(ctx sdk.Context) (string, bool) {
		stats := k.GetRegistryStats(ctx)

		count := uint64(0)
		totalStake := math.ZeroInt()
		k.IterateVoters(ctx, func(v types.Voter) bool {
			count++
			totalStake = totalStake.Add(v.Stake)
			return false
		})

		broken := count != stats.VoterCount || !totalStake.Equal(stats.TotalStake)
		return sdk.FormatInvariant(types.ModuleName, "registry-accounting",
			fmt.Sprintf("voter count %d (stats %d), total stake %s (stats %s)",
				count, stats.VoterCount, totalStake, stats.TotalStake)), broken
	}
}

// LockedStakeInvariant checks that every voter's locked stake equals the
// locks held by votes and unrevealed commitments on non-terminal queries,
// and never exceeds the voter's total stake.
func LockedStakeInvariant(k Keeper) sdk.Invariant {
	return func(ctx sdk.Context) (string, bool) {
		expected := make(map[string]math.Int)
		k.IterateQueries(ctx, func(q types.Query) bool {
			if q.Status.IsTerminal() {
				return false
			}
			for _, vote := range k.GetVotesForQuery(ctx, q.ID) {
				cur, ok := expected[vote.Voter]
				if !ok {
					cur = math.ZeroInt()
				}
				expected[vote.Voter] = cur.Add(vote.LockedAmount)
			}
			for _, commit := range k.GetCommitsForQuery(ctx, q.ID) {
				if commit.Revealed {
					continue
				}
				cur, ok := expected[commit.Voter]
				if !ok {
					cur = math.ZeroInt()
				}
				expected[commit.Voter] = cur.Add(commit.LockedAmount)
			}
			return false
		})

		broken := false
		detail := ""
		k.IterateVoters(ctx, func(v types.Voter) bool {
			if v.LockedStake.GT(v.Stake) {
				broken = true
				detail = fmt.Sprintf("voter %s locked %s exceeds stake %s", v.Address, v.LockedStake, v.Stake)
				return true
			}
			want, ok := expected[v.Address]
			if !ok {
				want = math.ZeroInt()
			}
			if !v.LockedStake.Equal(want) {
				broken = true
				detail = fmt.Sprintf("voter %s locked %s, open votes hold %s", v.Address, v.LockedStake, want)
				return true
			}
			return false
		})

		return sdk.FormatInvariant(types.ModuleName, "locked-stake", detail), broken
	}
}
