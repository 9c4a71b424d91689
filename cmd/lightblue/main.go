package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ai-zerolab/lightblue/internal/agent"
	"github.com/ai-zerolab/lightblue/internal/config"
	"github.com/ai-zerolab/lightblue/internal/llm"
	"github.com/ai-zerolab/lightblue/internal/mcp"
	"github.com/ai-zerolab/lightblue/internal/render"
	"github.com/ai-zerolab/lightblue/internal/tools"
	"github.com/ai-zerolab/lightblue/internal/tools/builtin"
	"github.com/ai-zerolab/lightblue/internal/version"
)

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "lightblue [prompt]",
		Short:         "lightblue - terminal-native agent with scoped tools",
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt := strings.Join(args, " ")
			cfg, err := config.Load(cmd)
			if err != nil {
				return err
			}

			apiKey := os.Getenv("OPENROUTER_API_KEY")
			if apiKey == "" {
				apiKey = os.Getenv("OPENAI_API_KEY")
			}
			mockMode := os.Getenv("LIGHTBLUE_MOCK_LLM") == "1"
			if apiKey == "" && !mockMode {
				fmt.Fprintln(os.Stderr, "OPENROUTER_API_KEY is required")
				os.Exit(2)
			}

			logger := buildLogger(cfg.Verbose)
			defer func() { _ = logger.Sync() }()

			manager := buildManager(cfg, logger)
			logger.Debug("tools registered", zap.Int("count", manager.Len()))

			var client llm.Client
			if mockMode {
				client = llm.NewMockClient()
			} else {
				client = llm.NewOpenRouterClient(apiKey, cfg.BaseURL)
			}

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
			defer cancel()

			if cfg.JSON {
				ag := agent.NewAgent(client, manager, nil, logger, cfg)
				result, runErr := ag.Run(ctx, prompt)
				payload, _ := json.MarshalIndent(result, "", "  ")
				fmt.Fprintln(os.Stdout, string(payload))
				return runErr
			}

			quiet, _ := cmd.Flags().GetBool("quiet")
			renderer := render.NewStdoutRenderer(os.Stdout, cfg.Verbose, quiet)
			ag := agent.NewAgent(client, manager, renderer, logger, cfg)
			_, runErr := ag.Run(ctx, prompt)
			_ = renderer.Close()
			return runErr
		},
	}

	cmd.Flags().String("model", config.DefaultModel, "Model name")
	cmd.Flags().Int("max-steps", config.DefaultMaxSteps, "Maximum tool steps")
	cmd.Flags().String("timeout", config.DefaultTimeout.String(), "Timeout (e.g. 60s)")
	cmd.Flags().Bool("quiet", false, "Only print final answer")
	cmd.Flags().Bool("json", false, "Output JSON only")
	cmd.Flags().Bool("verbose", false, "Enable verbose logging")
	cmd.Flags().Int("max-description-length", 0, "Truncate tool descriptions to this length (0 disables)")
	cmd.Flags().Bool("enable-query-tool", false, "Register query_tool even without description truncation")
	cmd.Flags().String("mcp-config", "", "Path to MCP server config (mcp.json)")

	cmd.AddCommand(newToolsCmd())
	return cmd
}

// newToolsCmd lists registered tools, optionally filtered by scope.
func newToolsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tools",
		Short: "List available tools and their scopes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cmd)
			if err != nil {
				return err
			}
			logger := buildLogger(cfg.Verbose)
			defer func() { _ = logger.Sync() }()

			manager := buildManager(cfg, logger)

			scope, _ := cmd.Flags().GetString("scope")
			var defs []tools.Definition
			switch tools.Scope(scope) {
			case tools.ScopeRead:
				defs = manager.ReadTools()
			case tools.ScopeWrite:
				defs = manager.WriteTools()
			case tools.ScopeExec:
				defs = manager.ExecTools()
			case tools.ScopeWeb:
				defs = manager.WebTools()
			case tools.ScopeGeneration:
				defs = manager.GenerationTools()
			case "":
				defs = manager.AllTools()
			default:
				return fmt.Errorf("unknown scope %q", scope)
			}

			if cfg.JSON {
				payload, _ := json.MarshalIndent(defs, "", "  ")
				fmt.Fprintln(os.Stdout, string(payload))
				return nil
			}
			for _, def := range defs {
				line := def.Description
				if i := strings.IndexByte(line, '\n'); i >= 0 {
					line = line[:i]
				}
				fmt.Fprintf(os.Stdout, "%-28s %s\n", def.Name, line)
			}
			return nil
		},
	}

	cmd.Flags().String("scope", "", "Filter by scope: read, write, exec, web, generation")
	cmd.Flags().String("model", config.DefaultModel, "Model name")
	cmd.Flags().Int("max-steps", config.DefaultMaxSteps, "Maximum tool steps")
	cmd.Flags().String("timeout", config.DefaultTimeout.String(), "Timeout (e.g. 60s)")
	cmd.Flags().Bool("json", false, "Output JSON only")
	cmd.Flags().Bool("verbose", false, "Enable verbose logging")
	cmd.Flags().Int("max-description-length", 0, "Truncate tool descriptions to this length (0 disables)")
	cmd.Flags().Bool("enable-query-tool", false, "Register query_tool even without description truncation")
	cmd.Flags().String("mcp-config", "", "Path to MCP server config (mcp.json)")
	return cmd
}

func buildManager(cfg config.Settings, logger *zap.Logger) *tools.Manager {
	if cfg.MCPConfigPath != "" {
		mcpCfg, err := mcp.Load(cfg.MCPConfigPath)
		if err != nil {
			logger.Warn("failed to load mcp config", zap.String("path", cfg.MCPConfigPath), zap.Error(err))
		} else if len(mcpCfg.MCPServers) > 0 {
			logger.Info("mcp servers configured", zap.Int("count", len(mcpCfg.MCPServers)))
		}
	}
	return tools.NewManager(tools.Config{
		MaxDescriptionLength: cfg.MaxDescriptionLength,
		EnableQueryTool:      cfg.EnableQueryTool,
		Logger:               logger,
	}, builtin.All(cfg)...)
}

func buildLogger(verbose bool) *zap.Logger {
	if verbose {
		logger, _ := zap.NewDevelopment()
		return logger
	}
	logger, _ := zap.NewProduction()
	return logger
}
