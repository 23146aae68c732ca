package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/tmc/langchaingo/llms/openai"
	"go.uber.org/zap"

	"github.com/aaronbini/hosting/internal/config"
	"github.com/aaronbini/hosting/internal/enrich"
	"github.com/aaronbini/hosting/internal/mcptools"
	"github.com/aaronbini/hosting/internal/orchestrator"
)

// CLI flags parsed from command line.
type cliFlags struct {
	ConfigDir string
	Addr      string
	ServeMCP  bool
	Verbose   bool
	Version   bool
}

// version is set by the linker at build time.
var version = "dev"

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	var flags cliFlags

	fs := flag.NewFlagSet("hosting", flag.ContinueOnError)
	fs.StringVar(&flags.ConfigDir, "config-dir", ".", "directory containing hosting.yml")
	fs.StringVar(&flags.Addr, "addr", "", "MCP server listen address (overrides config)")
	fs.BoolVar(&flags.ServeMCP, "serve-mcp", false, "serve the planner as MCP tools over HTTP")
	fs.BoolVar(&flags.Verbose, "verbose", false, "enable debug logging")
	fs.BoolVar(&flags.Version, "version", false, "print version and exit")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if flags.Version {
		fmt.Println(version)
		return nil
	}
	if !flags.ServeMCP {
		fs.Usage()
		return fmt.Errorf("nothing to do: pass -serve-mcp")
	}

	cfg, err := config.Load(flags.ConfigDir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	applyDefaults(cfg)
	if flags.Addr != "" {
		cfg.ListenAddr = flags.Addr
	}

	logger, err := buildLogger(flags.Verbose)
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	defer logger.Sync()

	model, err := buildModel(cfg)
	if err != nil {
		return fmt.Errorf("building model client: %w", err)
	}

	collab := enrich.NewService(model, logger.Named("enrich"))
	notifier := orchestrator.NewChannelNotifier()
	defer notifier.Close()
	go func() {
		for n := range notifier.Subscribe() {
			logger.Info(orchestrator.FormatNotification(n))
		}
	}()

	store := orchestrator.NewRunStore()
	runner := orchestrator.NewRunner(
		orchestrator.Config{
			EnrichLimit:  cfg.EnrichLimit,
			ReviewPrompt: cfg.ReviewPrompt,
		},
		collab, notifier, store,
		nil, // spreadsheet collaborator: wired when OAuth credentials exist
		nil, // task-list collaborator: wired when OAuth credentials exist
		logger.Named("runner"),
	)
	svc := mcptools.NewPlanService(runner, store, logger.Named("mcp"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("serving planner MCP tools", zap.String("addr", cfg.ListenAddr))
	return mcptools.RunMCPServer(ctx, svc, cfg.ListenAddr)
}

func applyDefaults(cfg *config.ServiceConfig) {
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.APIKeyEnv == "" {
		cfg.APIKeyEnv = "OPENAI_API_KEY"
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = "localhost:8321"
	}
}

func buildLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func buildModel(cfg *config.ServiceConfig) (*openai.LLM, error) {
	opts := []openai.Option{
		openai.WithModel(cfg.Model),
		openai.WithToken(os.Getenv(cfg.APIKeyEnv)),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}
	return openai.New(opts...)
}
