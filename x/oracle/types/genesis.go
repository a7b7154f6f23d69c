package types

import (
	"fmt"

	"cosmossdk.io/math"
)

// GenesisState is the oracle module's exported state
type GenesisState struct {
	Params        Params        `json:"params"`
	Paused        bool          `json:"paused"`
	NextQueryID   uint64        `json:"next_query_id"`
	Treasury      Treasury      `json:"treasury"`
	RegistryStats RegistryStats `json:"registry_stats"`
	Voters        []Voter       `json:"voters,omitempty"`
	Queries       []Query       `json:"queries,omitempty"`
	Votes         []Vote        `json:"votes,omitempty"`
	VoteCommits   []VoteCommit  `json:"vote_commits,omitempty"`
}

// DefaultGenesis returns the module's default genesis state
func DefaultGenesis() *GenesisState {
	return &GenesisState{
		Params:        DefaultParams(),
		Paused:        false,
		NextQueryID:   1,
		Treasury:      NewTreasury(),
		RegistryStats: RegistryStats{VoterCount: 0, TotalStake: math.ZeroInt()},
	}
}

// Validate performs basic genesis state validation
func (gs GenesisState) Validate() error {
	if err := gs.Params.Validate(); err != nil {
		return fmt.Errorf("invalid params: %w", err)
	}
	if gs.NextQueryID == 0 {
		return fmt.Errorf("next query id must be at least 1")
	}

	seenVoters := make(map[string]struct{}, len(gs.Voters))
	for _, v := range gs.Voters {
		if err := v.Validate(); err != nil {
			return fmt.Errorf("invalid voter %s: %w", v.Address, err)
		}
		if _, dup := seenVoters[v.Address]; dup {
			return fmt.Errorf("duplicate voter %s", v.Address)
		}
		seenVoters[v.Address] = struct{}{}
	}
	if uint64(len(gs.Voters)) != gs.RegistryStats.VoterCount {
		return fmt.Errorf("registry stats voter count %d does not match %d voters", gs.RegistryStats.VoterCount, len(gs.Voters))
	}

	queryIDs := make(map[uint64]struct{}, len(gs.Queries))
	for _, q := range gs.Queries {
		if q.ID == 0 || q.ID >= gs.NextQueryID {
			return fmt.Errorf("query id %d outside issued range", q.ID)
		}
		if _, dup := queryIDs[q.ID]; dup {
			return fmt.Errorf("duplicate query id %d", q.ID)
		}
		queryIDs[q.ID] = struct{}{}
	}

	for _, v := range gs.Votes {
		if _, ok := queryIDs[v.QueryID]; !ok {
			return fmt.Errorf("vote references unknown query %d", v.QueryID)
		}
		if _, ok := seenVoters[v.Voter]; !ok {
			return fmt.Errorf("vote references unknown voter %s", v.Voter)
		}
	}
	for _, c := range gs.VoteCommits {
		if _, ok := queryIDs[c.QueryID]; !ok {
			return fmt.Errorf("commitment references unknown query %d", c.QueryID)
		}
	}
	return nil
}
