package cli

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ogri-la/strongbox-disco-go/src/config"
)

func testConfig() config.Config {
	return config.Config{
		APIBaseURL: "https://services.addons.mozilla.org/api/v4",
		Lang:       "en-US",
		CacheDir:   "/tmp/cache",
		CacheTTL:   time.Hour,
		Timeout:    30 * time.Second,
	}
}

func TestParseFlags_Fetch(t *testing.T) {
	var usage bytes.Buffer
	args := []string{"strongbox-disco", "fetch", "--platform", "WINNT", "--taar", "clientId=abc", "--format", "text", "--log-level", "debug", "--no-cache"}

	flags, err := ParseFlags(args, testConfig(), &usage)
	require.NoError(t, err)

	assert.Equal(t, FetchSubCommand, flags.SubCommand)
	assert.Equal(t, slog.LevelDebug, flags.LogLevel)
	assert.Equal(t, map[string]string{"platform": "WINNT", "clientId": "abc"}, flags.FetchConfig.TaarParams)
	assert.Equal(t, DefaultErrorHandlerID, flags.FetchConfig.ErrorHandlerID)
	assert.Equal(t, Output{Format: TextFormat}, flags.FetchConfig.Output)
	assert.True(t, flags.Transport.NoCache)
	assert.Equal(t, "https://services.addons.mozilla.org/api/v4", flags.Transport.APIBaseURL)
	assert.Equal(t, time.Hour, flags.Transport.CacheTTL)
}

func TestParseFlags_FetchOverridesConfig(t *testing.T) {
	var usage bytes.Buffer
	args := []string{"strongbox-disco", "fetch", "--platform", "Linux", "--api-url", "http://localhost:8000/api/v4", "--lang", "de", "--cache-ttl", "5m", "--timeout", "2s", "--out", "results.json"}

	flags, err := ParseFlags(args, testConfig(), &usage)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8000/api/v4", flags.Transport.APIBaseURL)
	assert.Equal(t, "de", flags.Transport.Lang)
	assert.Equal(t, 5*time.Minute, flags.Transport.CacheTTL)
	assert.Equal(t, 2*time.Second, flags.Transport.Timeout)
	assert.Equal(t, Output{Format: JSONFormat, File: "results.json"}, flags.FetchConfig.Output)
	assert.Equal(t, slog.LevelInfo, flags.LogLevel)
}

func TestParseFlags_Normalize(t *testing.T) {
	var usage bytes.Buffer

	flags, err := ParseFlags([]string{"strongbox-disco", "normalize", "--in", "disco.json"}, testConfig(), &usage)
	require.NoError(t, err)

	assert.Equal(t, NormalizeSubCommand, flags.SubCommand)
	assert.Equal(t, "disco.json", flags.NormalizeConfig.InputFile)
	assert.Equal(t, Output{Format: JSONFormat}, flags.NormalizeConfig.Output)
}

func TestParseFlags_HelpAndVersion(t *testing.T) {
	var usage bytes.Buffer

	flags, err := ParseFlags([]string{"strongbox-disco", "--help"}, testConfig(), &usage)
	require.NoError(t, err)
	assert.True(t, flags.ShowHelp)
	assert.Contains(t, usage.String(), "usage: strongbox-disco")

	flags, err = ParseFlags([]string{"strongbox-disco", "fetch", "-V"}, testConfig(), &usage)
	require.NoError(t, err)
	assert.True(t, flags.ShowVersion)
}

func TestParseFlags_Errors(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		errContains string
	}{
		{"no subcommand", []string{"strongbox-disco"}, "unknown subcommand"},
		{"unknown subcommand", []string{"strongbox-disco", "scrape"}, "unknown subcommand"},
		{"missing platform", []string{"strongbox-disco", "fetch"}, "--platform is required"},
		{"empty error handler id", []string{"strongbox-disco", "fetch", "--platform", "WINNT", "--error-handler-id", ""}, "--error-handler-id"},
		{"unknown log level", []string{"strongbox-disco", "normalize", "--log-level", "loud"}, "unknown log level"},
		{"unknown format", []string{"strongbox-disco", "normalize", "--format", "xml"}, "unknown format"},
		{"unknown flag", []string{"strongbox-disco", "normalize", "--bogus"}, "failed to parse flags"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var usage bytes.Buffer
			_, err := ParseFlags(tt.args, testConfig(), &usage)

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errContains)
		})
	}
}
