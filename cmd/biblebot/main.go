package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"biblebot/internal/channels/discord"
	"biblebot/internal/config"
	"biblebot/internal/logging"
	"biblebot/internal/paging"
	"biblebot/internal/render"
)

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}

type rootFlags struct {
	configPath string
	logLevel   string
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	flags := &rootFlags{}
	cmd := &cobra.Command{
		Use:          "biblebot",
		Short:        "Scripture lookup chat bot",
		SilenceUsage: true,
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.PersistentFlags().StringVar(&flags.configPath, "config", config.DefaultPath, "path to config.json")
	cmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "override logging.level")

	cmd.AddCommand(
		newInitCmd(flags),
		newServeCmd(flags),
		newSearchCmd(flags),
		newVersionsCmd(flags),
	)
	return cmd
}

func (f *rootFlags) load(cmd *cobra.Command) (config.Config, zerolog.Logger, error) {
	cfg, err := config.LoadOrDefault(f.configPath)
	if err != nil {
		return config.Config{}, zerolog.Nop(), err
	}
	level := cfg.Logging.Level
	if f.logLevel != "" {
		level = f.logLevel
	}
	return cfg, logging.New(level, cmd.ErrOrStderr()), nil
}

func newInitCmd(flags *rootFlags) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := os.Stat(flags.configPath); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", flags.configPath)
			}
			if err := config.Save(flags.configPath, config.Default()); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", flags.configPath)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config")
	return cmd
}

func newServeCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Connect to Discord and answer commands",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := flags.load(cmd)
			if err != nil {
				return err
			}
			if !cfg.Discord.Enabled {
				return errors.New("discord.enabled is false; nothing to serve")
			}
			a, err := newApp(cfg, log, appOptions{})
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			bot, err := discord.New(cfg, a.router, a.catalog, log)
			if err != nil {
				return err
			}
			if err := bot.Start(); err != nil {
				return fmt.Errorf("discord start: %w", err)
			}
			defer func() { _ = bot.Stop() }()
			log.Info().Str("prefix", cfg.Display.CommandPrefix).Msg("bot running")

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			<-ctx.Done()
			log.Info().Msg("shutting down")
			return nil
		},
	}
}

type outputFlags struct {
	language string
	asJSON   bool
}

func (o *outputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.language, "lang", "", "language table (default: language.default)")
	cmd.Flags().BoolVar(&o.asJSON, "json", false, "print the result envelope as JSON")
}

func newSearchCmd(flags *rootFlags) *cobra.Command {
	out := &outputFlags{}
	var version string
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search a version and print the result pages",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := flags.load(cmd)
			if err != nil {
				return err
			}
			a, err := newApp(cfg, log, appOptions{noAudit: true})
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			if version == "" {
				version = cfg.Search.DefaultVersion
			}
			table := a.catalog.Get(firstNonEmpty(out.language, cfg.Language.Default))
			res, err := a.paginator.Search(cmd.Context(), version, strings.Join(args, " "), table)
			var unsupported *paging.UnsupportedProviderError
			if err != nil && !errors.As(err, &unsupported) {
				return err
			}
			return printResult(cmd, res, out.asJSON)
		},
	}
	cmd.Flags().StringVar(&version, "version", "", "version to search (default: search.default_version)")
	out.register(cmd)
	return cmd
}

func newVersionsCmd(flags *rootFlags) *cobra.Command {
	out := &outputFlags{}
	cmd := &cobra.Command{
		Use:   "versions",
		Short: "List every known version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := flags.load(cmd)
			if err != nil {
				return err
			}
			a, err := newApp(cfg, log, appOptions{noAudit: true})
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			table := a.catalog.Get(firstNonEmpty(out.language, cfg.Language.Default))
			res, err := a.paginator.Versions(cmd.Context(), table)
			if err != nil {
				return err
			}
			return printResult(cmd, res, out.asJSON)
		},
	}
	out.register(cmd)
	return cmd
}

func printResult(cmd *cobra.Command, res paging.Result, asJSON bool) error {
	w := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	_, err := fmt.Fprintln(w, render.Terminal{Width: terminalWidth(w)}.Result(res))
	return err
}

func terminalWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return 0
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0
	}
	return width
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
