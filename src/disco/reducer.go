package disco

import (
	"github.com/ogri-la/strongbox-disco-go/src/types"
)

// Reduce returns the state that follows applying action to state.
// It never mutates state and returns it unchanged for actions it doesn't own.
func Reduce(state types.State, action Action) types.State {
	switch a := action.(type) {
	case GetResults:
		return types.State{
			Loading: true,
			Results: state.Results,
		}

	case LoadResults:
		raw := a.Results()
		results := make([]types.Result, len(raw))
		for i, result := range raw {
			results[i] = NormalizeResult(result)
		}
		return types.State{
			Loading: false,
			Results: results,
		}

	default:
		return state
	}
}
