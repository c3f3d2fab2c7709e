package types

// State is the discovery results state owned by a store
type State struct {
	Loading bool     `json:"loading"`
	Results []Result `json:"results"`
}

// InitialState returns an idle state with no results
func InitialState() State {
	return State{
		Loading: false,
		Results: []Result{},
	}
}
