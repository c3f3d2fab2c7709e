package cli

import (
	"fmt"
	"io"
	"log/slog"
	"slices"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/ogri-la/strongbox-disco-go/src/config"
)

// SubCommand represents CLI subcommands
type SubCommand string

const (
	FetchSubCommand     SubCommand = "fetch"
	NormalizeSubCommand SubCommand = "normalize"
)

var KnownSubCommands = []SubCommand{FetchSubCommand, NormalizeSubCommand}

// Format is the output format of a command
type Format string

const (
	JSONFormat Format = "json"
	TextFormat Format = "text"
)

var KnownFormats = []Format{JSONFormat, TextFormat}

// DefaultErrorHandlerID names the error handler used by the CLI
const DefaultErrorHandlerID = "strongbox-disco-cli"

// Flags holds all CLI flags and configuration
type Flags struct {
	SubCommand      SubCommand
	LogLevel        slog.Level
	ShowHelp        bool
	ShowVersion     bool
	FetchConfig     FetchConfig
	NormalizeConfig NormalizeConfig
	Transport       TransportConfig
}

// TransportConfig holds the settings used to build the HTTP stack for `fetch`
type TransportConfig struct {
	APIBaseURL string
	Lang       string
	CacheDir   string
	CacheTTL   time.Duration
	NoCache    bool
	Timeout    time.Duration
}

var logLevelMap = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// ParseFlags parses command line arguments. Values from cfg are used as flag defaults.
// When --help or --version is given the remaining validation is skipped.
func ParseFlags(args []string, cfg config.Config, usage io.Writer) (*Flags, error) {
	flags := &Flags{}

	defaults := flag.NewFlagSet("strongbox-disco", flag.ContinueOnError)
	defaults.SetOutput(usage)
	defaults.BoolVarP(&flags.ShowHelp, "help", "h", false, "print this help and exit")
	defaults.BoolVarP(&flags.ShowVersion, "version", "V", false, "print program version and exit")

	var logLevelStr string
	defaults.StringVar(&logLevelStr, "log-level", "info", "verbosity level. one of: debug, info, warn, error")

	var subcommand string
	rest := []string{}
	if len(args) > 1 {
		subcommand = args[1]
		rest = args[2:]
	}

	var formatStr string
	var outputFile string
	var platform string
	var taarParams map[string]string
	fetchConfig := FetchConfig{}
	normalizeConfig := NormalizeConfig{}
	transport := TransportConfig{}

	var flagset *flag.FlagSet
	switch SubCommand(subcommand) {
	case FetchSubCommand:
		flagset = flag.NewFlagSet("fetch", flag.ContinueOnError)
		flagset.StringVar(&platform, "platform", "", "platform to fetch recommendations for, e.g. WINNT, Darwin, Linux (required)")
		flagset.StringToStringVar(&taarParams, "taar", map[string]string{}, "extra parameter forwarded to the recommendation service, key=value")
		flagset.StringVar(&fetchConfig.ErrorHandlerID, "error-handler-id", DefaultErrorHandlerID, "id of the handler receiving fetch failures")
		flagset.StringVar(&transport.APIBaseURL, "api-url", cfg.APIBaseURL, "base URL of the addons API")
		flagset.StringVar(&transport.Lang, "lang", cfg.Lang, "locale of the results")
		flagset.StringVar(&transport.CacheDir, "cache-dir", cfg.CacheDir, "directory for cached responses")
		flagset.DurationVar(&transport.CacheTTL, "cache-ttl", cfg.CacheTTL, "how long a cached discovery response stays fresh")
		flagset.BoolVar(&transport.NoCache, "no-cache", false, "always query the API")
		flagset.DurationVar(&transport.Timeout, "timeout", cfg.Timeout, "HTTP request timeout")

	case NormalizeSubCommand:
		flagset = flag.NewFlagSet("normalize", flag.ContinueOnError)
		flagset.StringVar(&normalizeConfig.InputFile, "in", "-", "discovery response to normalize (default: stdin)")

	default:
		flagset = defaults
		if len(args) > 1 {
			rest = args[1:]
		}
	}

	if flagset != defaults {
		flagset.SetOutput(usage)
		flagset.StringVar(&formatStr, "format", string(JSONFormat), "output format. one of: json, text")
		flagset.StringVar(&outputFile, "out", "", "write results to file (default: stdout)")
		flagset.AddFlagSet(defaults)
	}

	if err := flagset.Parse(rest); err != nil {
		return nil, fmt.Errorf("failed to parse flags: %w", err)
	}

	if flags.ShowHelp || flags.ShowVersion {
		if flags.ShowHelp {
			printUsage(usage, flagset)
		}
		return flags, nil
	}

	if subcommand == "" || !slices.Contains(KnownSubCommands, SubCommand(subcommand)) {
		printUsage(usage, flagset)
		return nil, fmt.Errorf("unknown subcommand: %s", subcommand)
	}

	logLevel, exists := logLevelMap[logLevelStr]
	if !exists {
		return nil, fmt.Errorf("unknown log level: %s", logLevelStr)
	}

	format := Format(formatStr)
	if !slices.Contains(KnownFormats, format) {
		return nil, fmt.Errorf("unknown format: %s", formatStr)
	}

	switch SubCommand(subcommand) {
	case FetchSubCommand:
		if platform == "" {
			return nil, fmt.Errorf("--platform is required")
		}
		if fetchConfig.ErrorHandlerID == "" {
			return nil, fmt.Errorf("--error-handler-id must not be empty")
		}
		fetchConfig.TaarParams = make(map[string]string, len(taarParams)+1)
		for key, value := range taarParams {
			fetchConfig.TaarParams[key] = value
		}
		fetchConfig.TaarParams["platform"] = platform
		fetchConfig.Output = Output{Format: format, File: outputFile}

	case NormalizeSubCommand:
		normalizeConfig.Output = Output{Format: format, File: outputFile}
	}

	flags.SubCommand = SubCommand(subcommand)
	flags.LogLevel = logLevel
	flags.FetchConfig = fetchConfig
	flags.NormalizeConfig = normalizeConfig
	flags.Transport = transport

	return flags, nil
}

// printUsage prints usage information
func printUsage(out io.Writer, flagset *flag.FlagSet) {
	fmt.Fprintln(out, "usage: strongbox-disco <fetch|normalize> [options]")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Commands:")
	fmt.Fprintln(out, "  fetch       Fetch personalised add-on recommendations and print the normalized results")
	fmt.Fprintln(out, "  normalize   Normalize a saved discovery response")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Options:")
	flagset.SetOutput(out)
	flagset.PrintDefaults()
}
