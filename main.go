package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/lmittmann/tint"
	"github.com/ogri-la/strongbox-disco-go/src/api"
	"github.com/ogri-la/strongbox-disco-go/src/cache"
	"github.com/ogri-la/strongbox-disco-go/src/cli"
	"github.com/ogri-la/strongbox-disco-go/src/config"
	httpClient "github.com/ogri-la/strongbox-disco-go/src/http"
	"github.com/ogri-la/strongbox-disco-go/src/retry"
)

var APP_VERSION = "unreleased"
var APP_LOC = "https://github.com/ogri-la/strongbox-disco-go"

func main() {
	// Read environment defaults
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Parse command line flags
	flags, err := cli.ParseFlags(os.Args, cfg, os.Stderr)
	if err != nil {
		slog.Error("failed to parse flags", "error", err)
		os.Exit(1)
	}

	if flags.ShowHelp {
		os.Exit(0)
	}

	if flags.ShowVersion {
		fmt.Println(APP_VERSION)
		os.Exit(0)
	}

	// Setup logging
	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level: flags.LogLevel,
	})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	handler := cli.NewCommandHandler(os.Stdin, os.Stdout)

	switch flags.SubCommand {
	case cli.FetchSubCommand:
		fetchConfig := flags.FetchConfig
		fetchConfig.Fetcher = discoveryClient(flags.Transport)

		if err := handler.Fetch(ctx, fetchConfig); err != nil {
			slog.Error("fetch command failed", "error", err)
			os.Exit(1)
		}

	case cli.NormalizeSubCommand:
		if err := handler.Normalize(ctx, flags.NormalizeConfig); err != nil {
			slog.Error("normalize command failed", "error", err)
			os.Exit(1)
		}

	default:
		slog.Error("unknown subcommand", "subcommand", flags.SubCommand)
		os.Exit(1)
	}
}

// discoveryClient builds the HTTP stack: optional file cache, retries, user agent
func discoveryClient(transport cli.TransportConfig) *api.Client {
	var roundTripper http.RoundTripper = http.DefaultTransport
	if !transport.NoCache {
		if err := os.MkdirAll(transport.CacheDir, 0755); err != nil {
			slog.Error("failed to create cache directory", "error", err)
			os.Exit(1)
		}
		roundTripper = cache.NewFileCachingTransport(cache.CacheConfig{
			Directory:    transport.CacheDir,
			DefaultTTL:   24 * time.Hour,
			DiscoveryTTL: transport.CacheTTL,
		}, roundTripper)
	}

	client := httpClient.NewRealHTTPClient(roundTripper, userAgent(), transport.Timeout)
	return api.NewClient(client, transport.APIBaseURL, transport.Lang, retry.DefaultConfig())
}

func userAgent() string {
	return "strongbox-disco-go/" + APP_VERSION + " (" + APP_LOC + ")"
}
