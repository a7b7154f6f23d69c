package types

import (
	"context"

	"cosmossdk.io/math"
)

// QueryServer is the oracle module's read-only query interface
type QueryServer interface {
	Params(context.Context, *QueryParamsRequest) (*QueryParamsResponse, error)
	Voter(context.Context, *QueryVoterRequest) (*QueryVoterResponse, error)
	Voters(context.Context, *QueryVotersRequest) (*QueryVotersResponse, error)
	Reputation(context.Context, *QueryReputationRequest) (*QueryReputationResponse, error)
	Query(context.Context, *QueryQueryRequest) (*QueryQueryResponse, error)
	Queries(context.Context, *QueryQueriesRequest) (*QueryQueriesResponse, error)
	Votes(context.Context, *QueryVotesRequest) (*QueryVotesResponse, error)
	PendingRewards(context.Context, *QueryPendingRewardsRequest) (*QueryPendingRewardsResponse, error)
	Treasury(context.Context, *QueryTreasuryRequest) (*QueryTreasuryResponse, error)
	ProtocolStatus(context.Context, *QueryProtocolStatusRequest) (*QueryProtocolStatusResponse, error)
}

type QueryParamsRequest struct{}

type QueryParamsResponse struct {
	Params Params `json:"params"`
}

type QueryVoterRequest struct {
	Address string `json:"address"`
}

type QueryVoterResponse struct {
	Voter Voter `json:"voter"`
}

type QueryVotersRequest struct {
	ActiveOnly bool `json:"active_only,omitempty"`
}

type QueryVotersResponse struct {
	Voters []Voter `json:"voters"`
}

type QueryReputationRequest struct {
	Address string `json:"address"`
}

type QueryReputationResponse struct {
	Stats ReputationStats `json:"stats"`
}

type QueryQueryRequest struct {
	QueryID uint64 `json:"query_id"`
}

type QueryQueryResponse struct {
	Query Query `json:"query"`
}

type QueryQueriesRequest struct {
	Status QueryStatus `json:"status,omitempty"`
}

type QueryQueriesResponse struct {
	Queries []Query `json:"queries"`
}

type QueryVotesRequest struct {
	QueryID uint64 `json:"query_id"`
	// Voter narrows the response to a single voter's vote when set
	Voter string `json:"voter,omitempty"`
}

type QueryVotesResponse struct {
	Votes []Vote `json:"votes"`
}

type QueryPendingRewardsRequest struct {
	Address string `json:"address"`
}

type QueryPendingRewardsResponse struct {
	Amount math.Int `json:"amount"`
}

type QueryTreasuryRequest struct{}

type QueryTreasuryResponse struct {
	Treasury Treasury `json:"treasury"`
}

type QueryProtocolStatusRequest struct{}

type QueryProtocolStatusResponse struct {
	Paused        bool          `json:"paused"`
	RegistryStats RegistryStats `json:"registry_stats"`
	NextQueryID   uint64        `json:"next_query_id"`
}
