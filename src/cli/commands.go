package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/ogri-la/strongbox-disco-go/src/api"
	"github.com/ogri-la/strongbox-disco-go/src/disco"
	"github.com/ogri-la/strongbox-disco-go/src/fetch"
	"github.com/ogri-la/strongbox-disco-go/src/store"
	"github.com/ogri-la/strongbox-disco-go/src/types"
)

// Output says where and how a command writes the final state
type Output struct {
	Format Format
	File   string
}

// FetchConfig holds configuration for fetching
type FetchConfig struct {
	Fetcher        fetch.Fetcher
	ErrorHandlerID string
	TaarParams     map[string]string
	Output         Output
}

// NormalizeConfig holds configuration for offline normalization
type NormalizeConfig struct {
	InputFile string
	Output    Output
}

// CommandHandler handles CLI commands
type CommandHandler struct {
	stdin  io.Reader
	stdout io.Writer
}

// NewCommandHandler creates a new command handler
func NewCommandHandler(stdin io.Reader, stdout io.Writer) *CommandHandler {
	return &CommandHandler{
		stdin:  stdin,
		stdout: stdout,
	}
}

// Fetch requests recommendations, waits for them to load and writes the state
func (h *CommandHandler) Fetch(ctx context.Context, config FetchConfig) error {
	slog.Info("starting fetch command", "platform", config.TaarParams["platform"])

	s := store.NewStore()

	var mu sync.Mutex
	var fetchErr error
	handler := fetch.ErrorHandlerFunc(func(errorHandlerID string, err error) {
		fetch.LogErrorHandler.Handle(errorHandlerID, err)
		mu.Lock()
		fetchErr = err
		mu.Unlock()
	})

	watcher := fetch.Watch(ctx, s, config.Fetcher, handler)
	defer watcher.Stop()

	s.Dispatch(disco.NewGetResults(disco.GetResultsParams{
		ErrorHandlerID: config.ErrorHandlerID,
		TaarParams:     config.TaarParams,
	}))
	watcher.Wait()

	mu.Lock()
	defer mu.Unlock()
	if fetchErr != nil {
		return fmt.Errorf("failed to fetch discovery results: %w", fetchErr)
	}

	return h.writeState(s.State(), config.Output)
}

// Normalize loads a saved discovery response and writes the normalized state
func (h *CommandHandler) Normalize(ctx context.Context, config NormalizeConfig) error {
	slog.Info("starting normalize command", "in", config.InputFile)

	body, err := h.readInput(config.InputFile)
	if err != nil {
		return err
	}

	response, err := api.DecodeResults(body)
	if err != nil {
		return err
	}

	s := store.NewStore()
	s.Dispatch(disco.NewLoadResults(disco.LoadResultsParams{Results: response.Results}))
	slog.Info("normalized results", "results", len(s.State().Results))

	return h.writeState(s.State(), config.Output)
}

func (h *CommandHandler) readInput(path string) ([]byte, error) {
	if path == "" || path == "-" {
		body, err := io.ReadAll(h.stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return body, nil
	}

	body, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return body, nil
}

// writeState renders the state and writes it to the output file or stdout
func (h *CommandHandler) writeState(state types.State, output Output) error {
	var data []byte
	switch output.Format {
	case TextFormat:
		data = []byte(RenderText(state))
	default:
		jsonData, err := json.MarshalIndent(state, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal state: %w", err)
		}
		data = append(jsonData, '\n')
	}

	if output.File == "" {
		if _, err := h.stdout.Write(data); err != nil {
			return fmt.Errorf("failed to write results: %w", err)
		}
		return nil
	}

	if err := os.WriteFile(output.File, data, 0644); err != nil {
		return fmt.Errorf("failed to write results to %s: %w", output.File, err)
	}
	slog.Info("wrote results", "file", output.File, "results", len(state.Results))

	return nil
}
