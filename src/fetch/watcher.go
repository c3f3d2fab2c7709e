package fetch

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/ogri-la/strongbox-disco-go/src/disco"
	"github.com/ogri-la/strongbox-disco-go/src/store"
	"github.com/ogri-la/strongbox-disco-go/src/types"
)

// ErrNoResults is reported when a fetcher returns neither results nor an error
var ErrNoResults = errors.New("fetcher returned no results")

// Fetcher retrieves discovery results for a set of TAAR parameters
type Fetcher interface {
	GetDiscoResults(ctx context.Context, taarParams map[string]string) (*types.ResultsResponse, error)
}

// ErrorHandler receives fetch failures for the handler id named in the command
type ErrorHandler interface {
	Handle(errorHandlerID string, err error)
}

// ErrorHandlerFunc adapts a function to ErrorHandler
type ErrorHandlerFunc func(errorHandlerID string, err error)

func (f ErrorHandlerFunc) Handle(errorHandlerID string, err error) {
	f(errorHandlerID, err)
}

// LogErrorHandler logs fetch failures
var LogErrorHandler = ErrorHandlerFunc(func(errorHandlerID string, err error) {
	slog.Error("failed to fetch discovery results", "error-handler-id", errorHandlerID, "error", err)
})

// Dispatcher is the part of a store the watcher needs
type Dispatcher interface {
	Dispatch(action disco.Action)
	Subscribe(fn store.Listener) (unsubscribe func())
}

// Watcher fetches results whenever a get-results command is dispatched and
// dispatches a load-results command on success. A new command does not cancel
// a fetch already in flight. On failure the loading flag is left as is.
type Watcher struct {
	ctx         context.Context
	store       Dispatcher
	fetcher     Fetcher
	errors      ErrorHandler
	wg          sync.WaitGroup
	unsubscribe func()
}

// Watch starts watching store. A nil handler logs failures.
func Watch(ctx context.Context, s Dispatcher, fetcher Fetcher, handler ErrorHandler) *Watcher {
	if handler == nil {
		handler = LogErrorHandler
	}
	w := &Watcher{
		ctx:     ctx,
		store:   s,
		fetcher: fetcher,
		errors:  handler,
	}
	w.unsubscribe = s.Subscribe(w.onAction)
	return w
}

func (w *Watcher) onAction(action disco.Action, _ types.State) {
	get, ok := action.(disco.GetResults)
	if !ok {
		return
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.fetch(get)
	}()
}

func (w *Watcher) fetch(get disco.GetResults) {
	taarParams := get.TaarParams()
	slog.Info("fetching discovery results", "platform", taarParams["platform"])

	response, err := w.fetcher.GetDiscoResults(w.ctx, taarParams)
	if err == nil && response == nil {
		err = ErrNoResults
	}
	if err != nil {
		w.errors.Handle(get.ErrorHandlerID(), err)
		return
	}

	slog.Info("fetched discovery results", "count", response.Count, "results", len(response.Results))
	w.store.Dispatch(disco.NewLoadResults(disco.LoadResultsParams{Results: response.Results}))
}

// Wait blocks until every fetch started so far has finished
func (w *Watcher) Wait() {
	w.wg.Wait()
}

// Stop stops watching for new commands. Fetches in flight still complete.
func (w *Watcher) Stop() {
	w.unsubscribe()
}
