package disco

import (
	"fmt"
	"maps"

	"github.com/ogri-la/strongbox-disco-go/src/types"
	"github.com/ogri-la/strongbox-disco-go/src/validation"
)

// ActionType tags a command dispatched to a store
type ActionType string

const (
	GetResultsType  ActionType = "GET_DISCO_RESULTS"
	LoadResultsType ActionType = "LOAD_DISCO_RESULTS"
)

// Action is a command consumed by Reduce.
// Commands owned by other reducers may be dispatched through the same store.
type Action interface {
	Type() ActionType
}

// TaarParams are forwarded to the recommendation service as query parameters.
// Only "platform" is required.
type TaarParams map[string]string

// GetResultsParams are the arguments of NewGetResults
type GetResultsParams struct {
	ErrorHandlerID string
	TaarParams     TaarParams
}

// GetResults asks for discovery results to be fetched
type GetResults struct {
	payload GetResultsParams
}

func (GetResults) Type() ActionType {
	return GetResultsType
}

// ErrorHandlerID identifies the handler that should receive a fetch failure
func (a GetResults) ErrorHandlerID() string {
	return a.payload.ErrorHandlerID
}

// TaarParams returns a copy of the parameters to forward to the service
func (a GetResults) TaarParams() TaarParams {
	return maps.Clone(a.payload.TaarParams)
}

// NewGetResults builds a get-results command.
// It panics when ErrorHandlerID or TaarParams["platform"] is empty: both are
// programmer errors, not user input.
func NewGetResults(params GetResultsParams) GetResults {
	mustHold(validation.ValidateGetResults(validation.GetResultsContract{
		ErrorHandlerID: params.ErrorHandlerID,
		Platform:       params.TaarParams["platform"],
	}))

	return GetResults{
		payload: GetResultsParams{
			ErrorHandlerID: params.ErrorHandlerID,
			TaarParams:     maps.Clone(params.TaarParams),
		},
	}
}

// LoadResultsParams are the arguments of NewLoadResults
type LoadResultsParams struct {
	Results []types.ExternalResult
}

// LoadResults carries raw results fetched from the service.
// Normalization happens in Reduce.
type LoadResults struct {
	payload LoadResultsParams
}

func (LoadResults) Type() ActionType {
	return LoadResultsType
}

// Results returns the raw results in the order the service returned them
func (a LoadResults) Results() []types.ExternalResult {
	return a.payload.Results
}

// NewLoadResults builds a load-results command. It panics when Results is nil;
// an empty list is valid.
func NewLoadResults(params LoadResultsParams) LoadResults {
	mustHold(validation.ValidateLoadResults(params.Results))

	results := make([]types.ExternalResult, len(params.Results))
	copy(results, params.Results)

	return LoadResults{
		payload: LoadResultsParams{Results: results},
	}
}

func mustHold(err error) {
	if err != nil {
		panic(fmt.Errorf("invariant failed: %w", err))
	}
}
