package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"locale-uploader/internal/collector"
	"locale-uploader/internal/config"
	"locale-uploader/internal/filewalker"
	"locale-uploader/internal/parser"
	"locale-uploader/internal/strtable"
	"locale-uploader/internal/upload"
)

// Execute runs the CLI application.
func Execute() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	if err := NewRootCmd(afero.NewOsFs()).Execute(); err != nil {
		log.Error().Err(err).Msg("Run failed")
		os.Exit(1)
	}
}

// NewRootCmd builds the root command reading project files from fs.
func NewRootCmd(fs afero.Fs) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "locale-uploader",
		Short: "Extract localization strings from Lua sources and upload them to CurseForge",
		Long: `Scans an addon's Lua files for reads and assignments of the localization
table, merges them into one ordered table and uploads it to the CurseForge
localization import API. With --dry the table is printed instead.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, fs)
		},
	}
	config.RegisterFlags(cmd.Flags())
	return cmd
}

func run(cmd *cobra.Command, fs afero.Fs) error {
	ctx, cancel := setupContext(cmd.Context())
	defer cancel()

	cfg, err := config.Load(fs, cmd.Flags())
	if err != nil {
		return err
	}
	if cfg.Verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	tbl, err := collect(ctx, fs, cfg)
	if err != nil {
		return err
	}

	if cfg.DryRun {
		return tbl.WriteLines(cmd.OutOrStdout(), cfg.Table)
	}
	return push(ctx, fs, cfg, tbl, cmd.OutOrStdout())
}

// collect builds the extraction pipeline described by cfg and runs it.
func collect(ctx context.Context, fs afero.Fs, cfg *config.Config) (*strtable.Table, error) {
	excludes, err := filewalker.NewPatternSet(cfg.Excludes...)
	if err != nil {
		return nil, err
	}

	strategy, err := parser.ParseStrategy(cfg.Strategy)
	if err != nil {
		return nil, err
	}
	extractor, err := parser.New(strategy, parser.Options{
		Table:      cfg.Table,
		Expression: cfg.Pattern,
	})
	if err != nil {
		return nil, err
	}

	log.Debug().
		Str("root", cfg.Root).
		Str("strategy", string(strategy)).
		Strs("excludes", excludes.Patterns()).
		Int("workers", cfg.Workers).
		Msg("Starting extraction")

	return collector.New(fs, collector.Options{
		Root:      cfg.Root,
		Extension: cfg.Extension,
		Excludes:  excludes,
		Extractor: extractor,
		Workers:   cfg.Workers,
	}).Collect(ctx)
}

// push uploads tbl and writes the service's confirmation to out.
func push(ctx context.Context, fs afero.Fs, cfg *config.Config, tbl *strtable.Table, out io.Writer) error {
	meta, err := upload.NewMetadata(cfg.Namespace, cfg.Language, cfg.MissingPhrases)
	if err != nil {
		return err
	}
	if cfg.APIKey == "" {
		return upload.ErrMissingAPIKey
	}

	projectID := cfg.ProjectID
	if projectID == "" {
		projectID, err = collector.FindProjectID(fs, cfg.Root)
		if err != nil {
			return err
		}
		if projectID == "" {
			return fmt.Errorf("%w: pass --id or set %s in a .toc file", upload.ErrMissingProjectID, parser.ProjectIDField)
		}
		log.Info().Str("project", projectID).Msg("Using project ID from TOC file")
	}

	log.Info().
		Str("project", projectID).
		Int("strings", tbl.Len()).
		Str("language", meta.Language).
		Msg("Uploading localization")

	msg, err := upload.NewClient(cfg.APIKey).Upload(ctx, projectID, meta, tbl.Render(cfg.Table))
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, msg)
	return err
}

// setupContext creates a cancellable context with signal handling.
func setupContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}
