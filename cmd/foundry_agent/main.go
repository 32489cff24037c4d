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

	"foundry_cli/pkg/agents"
	"foundry_cli/pkg/auth"
	"foundry_cli/pkg/config"
	"foundry_cli/pkg/display"
	"foundry_cli/pkg/fault"
	"foundry_cli/pkg/logging"
	"foundry_cli/pkg/version"
)

const binaryName = "foundry_agent"

// agentOptions holds user-supplied configuration resolved from flags and
// environment variables.
type agentOptions struct {
	endpoint   string
	agentID    string
	prompt     string
	listAgents bool
	cleanup    bool
	configPath string
	debug      bool
	version    bool
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
func parseArgs(args []string, stderr io.Writer) (agentOptions, int, bool) {
	var opts agentOptions

	fs := flag.NewFlagSet(binaryName, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.endpoint, "endpoint", "", "Project endpoint URL (env FOUNDRY_ENDPOINT)")
	fs.StringVar(&opts.agentID, "agent-id", "", "Agent id to invoke (env FOUNDRY_AGENT_ID)")
	fs.StringVar(&opts.prompt, "prompt", "Hello, how are you?", "Prompt to send to the agent")
	fs.BoolVar(&opts.listAgents, "list-agents", false, "List available agents and exit")
	fs.BoolVar(&opts.cleanup, "cleanup", false, "Delete the thread after a successful invocation")
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
		{"agent-id", opts.agentID},
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
func applyEnvironment(fs *flag.FlagSet, opts *agentOptions) {
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if !set["endpoint"] {
		if v := os.Getenv("FOUNDRY_ENDPOINT"); v != "" {
			opts.endpoint = v
		}
	}
	if !set["agent-id"] {
		if v := os.Getenv("FOUNDRY_AGENT_ID"); v != "" {
			opts.agentID = v
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

func run(opts agentOptions, stdout, stderr io.Writer) error {
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

	logging.Info("foundry_agent started",
		"agent_id", opts.agentID,
		"list_agents", opts.listAgents,
		"credential", cfg.Credential,
		"config_path", configPath)

	cred, err := auth.FromConfig(cfg)
	if err != nil {
		return fault.Wrap(fault.ClientConstruction, "resolving credential", err)
	}

	client, err := agents.NewClient(opts.endpoint, cred,
		agents.WithAPIVersion(cfg.Agents.APIVersion),
		agents.WithTimeout(time.Duration(cfg.Agents.APITimeoutSeconds)*time.Second),
		agents.WithPollInterval(time.Duration(cfg.Agents.PollIntervalMS)*time.Millisecond),
	)
	if err != nil {
		return err
	}

	out := display.NewDisplayer(stdout)
	ctx := context.Background()

	if opts.listAgents {
		out.DisplayFetchingAgents()
		list, err := client.ListAgents(ctx)
		if err != nil {
			return err
		}
		out.DisplayAgentList(list)
		return nil
	}

	out.DisplayAgentRequest(opts.agentID, opts.prompt)

	result, err := client.Invoke(ctx, opts.agentID, opts.prompt)
	if err != nil {
		return err
	}

	logging.Info("Invocation finished",
		"thread_id", result.ThreadID,
		"run_id", result.RunID,
		"messages", len(result.Messages))

	if err := out.DisplayInvocation(result); err != nil {
		return err
	}

	// Threads are kept by default so the conversation can be inspected in
	// the portal. Cleanup failures are logged, not fatal.
	if opts.cleanup && result.ThreadID != "" {
		if err := client.DeleteThread(ctx, result.ThreadID); err != nil {
			logging.Warn("Failed to delete thread", "thread_id", result.ThreadID, "error", err)
		}
	}
	return nil
}
