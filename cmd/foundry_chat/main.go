package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"foundry_cli/pkg/chat"
	"foundry_cli/pkg/config"
	"foundry_cli/pkg/display"
	"foundry_cli/pkg/logging"
	"foundry_cli/pkg/version"
)

const binaryName = "foundry_chat"

// chatOptions holds user-supplied configuration resolved from flags and
// environment variables.
type chatOptions struct {
	endpoint    string
	apiKey      string
	model       string
	prompt      string
	maxTokens   int
	temperature float64
	listModels  bool
	configPath  string
	debug       bool
	version     bool
}

func main() {
	os.Exit(cliMain(os.Args[1:], os.Stdout, os.Stderr))
}

// cliMain is a testable entrypoint: argv without the program name, writers
// for stdout/stderr, returning the intended process exit code.
func cliMain(args []string, stdout, stderr io.Writer) int {
	opts, code, ok := parseArgs(args, stderr)
	if !ok {
		return code
	}

	if opts.version {
		version.Print(stdout, binaryName)
		return 0
	}

	if err := run(opts, stdout, stderr); err != nil {
		logging.Error("Request failed", "error", err)
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// parseArgs parses flags, applies environment fallbacks, and enforces
// required flags. The bool return is false when cliMain should exit with
// the returned code.
func parseArgs(args []string, stderr io.Writer) (chatOptions, int, bool) {
	var opts chatOptions

	fs := flag.NewFlagSet(binaryName, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.endpoint, "endpoint", "", "Inference endpoint URL (env FOUNDRY_ENDPOINT)")
	fs.StringVar(&opts.apiKey, "api-key", "", "API key (env FOUNDRY_API_KEY, falls back to AZURE_OPENAI_API_KEY)")
	fs.StringVar(&opts.model, "model", "", "Model deployment name (env FOUNDRY_MODEL)")
	fs.StringVar(&opts.prompt, "prompt", "Hello, how are you?", "Prompt to send to the model")
	fs.IntVar(&opts.maxTokens, "max-tokens", 100, "Maximum number of tokens to generate")
	fs.Float64Var(&opts.temperature, "temperature", 0.7, "Sampling temperature")
	fs.BoolVar(&opts.listModels, "list-models", false, "List available models and exit")
	fs.StringVar(&opts.configPath, "config", "", "Path to config file (default ~/.foundry_cli/config.json)")
	fs.BoolVar(&opts.debug, "debug", false, "Enable debug logging (env FOUNDRY_DEBUG)")
	fs.BoolVar(&opts.version, "version", false, "Print version information and exit")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return opts, 0, false
		}
		return opts, 2, false
	}

	applyEnvironment(fs, &opts)

	if opts.version {
		return opts, 0, true
	}

	required := []struct{ name, value string }{
		{"endpoint", opts.endpoint},
		{"api-key", opts.apiKey},
		{"model", opts.model},
	}
	for _, req := range required {
		if strings.TrimSpace(req.value) == "" {
			fmt.Fprintf(stderr, "Error: --%s is required\n", req.name)
			fs.Usage()
			return opts, 2, false
		}
	}

	return opts, 0, true
}

// applyEnvironment fills flags the user did not set from the environment.
// Flags win over environment, environment wins over defaults.
func applyEnvironment(fs *flag.FlagSet, opts *chatOptions) {
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if !set["endpoint"] {
		if v := os.Getenv("FOUNDRY_ENDPOINT"); v != "" {
			opts.endpoint = v
		}
	}
	if !set["api-key"] {
		if v := os.Getenv("FOUNDRY_API_KEY"); v != "" {
			opts.apiKey = v
		} else if v := os.Getenv("AZURE_OPENAI_API_KEY"); v != "" {
			opts.apiKey = v
		}
	}
	if !set["model"] {
		if v := os.Getenv("FOUNDRY_MODEL"); v != "" {
			opts.model = v
		}
	}
	if !set["debug"] && envBool("FOUNDRY_DEBUG") {
		opts.debug = true
	}
}

func envBool(key string) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	return err == nil && v
}

func run(opts chatOptions, stdout, stderr io.Writer) error {
	configPath := opts.configPath
	if configPath == "" {
		configPath = config.GetConfigPath()
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	if _, err := logging.Init(logging.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		File:   cfg.LogFile,
		Debug:  opts.debug,
	}); err != nil {
		fmt.Fprintf(stderr, "Warning: file logging disabled: %v\n", err)
	}

	logging.Info("foundry_chat started",
		"model", opts.model,
		"list_models", opts.listModels,
		"config_path", configPath)

	out := display.NewDisplayer(stdout)

	client, err := chat.New(opts.endpoint, opts.apiKey,
		chat.WithAPIVersion(cfg.Chat.APIVersion),
		chat.WithTimeout(time.Duration(cfg.Chat.APITimeoutSeconds)*time.Second),
	)
	if err != nil {
		return err
	}

	if opts.listModels {
		out.DisplayFetchingModels()
		out.DisplayModelList(chat.ListModels())
		return nil
	}

	out.DisplayChatRequest(opts.model, opts.prompt)

	result, err := client.Complete(context.Background(), chat.CompletionRequest{
		Model:       opts.model,
		Prompt:      opts.prompt,
		MaxTokens:   opts.maxTokens,
		Temperature: opts.temperature,
	})
	if err != nil {
		return err
	}

	logging.Info("Completion received", "response_id", result.ID, "choices", len(result.Choices))
	return out.DisplayCompletion(result)
}
