package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"webgen-ai-api/internal/application/chat"
	"webgen-ai-api/internal/application/materialize"
	"webgen-ai-api/internal/config"
	"webgen-ai-api/internal/interfaces/cli"
	einoobs "webgen-ai-api/internal/observability/eino"
	"webgen-ai-api/internal/wire"
	"webgen-ai-api/pkg/logger"
)

var (
	flagConfigDir string
	flagDir       string
	flagIsolate   bool
	flagProvider  string
	flagLogLevel  string
)

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "webgen",
		Short: "Generate front-end sites from a chat with an LLM",
		Long: `Starts an interactive session. Every message is sent to the model together with
the conversation so far; the JSON reply (filename -> content) is written to disk.

Type "exit" or "quit" to leave.

Example:
  webgen --dir ./site --no-isolate`,
		SilenceUsage: true,
		RunE:         runInteractive,
	}

	root.PersistentFlags().StringVar(&flagConfigDir, "config-dir", "", "Directory holding config.yaml (defaults to $CONFIG_DIR or ./configs)")
	root.PersistentFlags().StringVarP(&flagDir, "dir", "d", "", "Output base directory (defaults to generation.base_dir)")
	root.PersistentFlags().BoolVar(&flagIsolate, "isolate", false, "Write each turn into a fresh random subdirectory")
	root.PersistentFlags().Bool("no-isolate", false, "Write directly into the output directory")
	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	root.Flags().StringVarP(&flagProvider, "provider", "p", "", "LLM provider name from llm.providers")

	root.AddCommand(newMaterializeCommand())
	return root
}

func newMaterializeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "materialize <payload.json>",
		Short: "Write a filename -> content JSON file to disk without calling the model",
		Args:  cobra.ExactArgs(1),
		RunE:  runMaterialize,
	}
}

// loadConfig 加载配置并应用命令行覆盖
func loadConfig(cmd *cobra.Command) (*config.Config, chat.Options, error) {
	var (
		cfg *config.Config
		err error
	)
	if flagConfigDir != "" {
		cfg, err = config.LoadFrom(flagConfigDir)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, chat.Options{}, err
	}

	if flagProvider != "" {
		cfg.LLM.DefaultProvider = flagProvider
	}
	if flagDir != "" {
		cfg.Generation.BaseDir = flagDir
	}

	opts := chat.Options{BaseDir: cfg.Generation.BaseDir, Isolate: cfg.Generation.Isolate}
	if cmd.Flags().Changed("isolate") {
		opts.Isolate = flagIsolate
	}
	if noIsolate, _ := cmd.Flags().GetBool("no-isolate"); noIsolate {
		opts.Isolate = false
	}
	return cfg, opts, nil
}

func runInteractive(cmd *cobra.Command, _ []string) error {
	logger.InitWithWriter(os.Stderr, flagLogLevel, "text")

	cfg, opts, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	einoobs.Init()

	svc, cleanup, err := wire.InitializeChatService(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Writing to %s (isolate: %t). Type \"exit\" to quit.\n", opts.BaseDir, opts.Isolate)

	err = cli.NewREPL(svc, opts).Run(ctx, cmd.InOrStdin(), out)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func runMaterialize(cmd *cobra.Command, args []string) error {
	logger.InitWithWriter(os.Stderr, flagLogLevel, "text")

	_, opts, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	payload, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	res, err := materialize.New().Materialize(cmd.Context(), string(payload), opts.BaseDir, materialize.Options{Isolate: opts.Isolate})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Files written to %s\n", res.Dir)
	for _, name := range res.Written {
		fmt.Fprintf(out, "  %s\n", name)
	}
	return nil
}
