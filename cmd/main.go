package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/okian/gigmatch/internal/adapters/repository"
	"github.com/okian/gigmatch/internal/adapters/snapshot"
	app "github.com/okian/gigmatch/internal/app"
	"github.com/okian/gigmatch/internal/config"
	"github.com/okian/gigmatch/pkg/logger"
	"github.com/okian/gigmatch/pkg/metrics"
)

var errNoCatalog = errors.New("no catalog: pass --catalog or set GIGMATCH_CATALOG_PATH")

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:   "gigmatch",
		Short: "Recommend upcoming music events",
		Long: `gigmatch ranks upcoming events for a user by how closely they match
the events the user attended, the genres and instruments of the people going,
and how often those people shared events with the user.`,
		SilenceUsage: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.AddCommand(newRankCmd(stdout, stderr))
	return root
}

type rankOptions struct {
	viewer  string
	catalog string
	limit   int
	now     string
	metrics bool
}

func newRankCmd(stdout, stderr io.Writer) *cobra.Command {
	var opts rankOptions
	cmd := &cobra.Command{
		Use:   "rank",
		Short: "Print ranked recommendations for a viewer as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRank(cmd.Context(), opts, stdout, stderr)
		},
	}
	cmd.Flags().StringVarP(&opts.viewer, "viewer", "v", "", "User id to recommend for")
	cmd.Flags().StringVarP(&opts.catalog, "catalog", "c", "", "Catalog snapshot path (overrides catalog_path)")
	cmd.Flags().IntVarP(&opts.limit, "limit", "l", -1, "Maximum entries to print (overrides result_limit)")
	cmd.Flags().StringVar(&opts.now, "now", "", "Reference time in RFC3339 (default: current time)")
	cmd.Flags().BoolVar(&opts.metrics, "metrics", false, "Write Prometheus metrics to stderr after ranking")
	_ = cmd.MarkFlagRequired("viewer")
	return cmd
}

func runRank(ctx context.Context, opts rankOptions, stdout, stderr io.Writer) error {
	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := logger.Init(logger.WithWriter(stderr), logger.WithJSON(strings.EqualFold(cfg.LogFormat, "json"))); err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	log := logger.Get()

	path := cfg.CatalogPath
	if opts.catalog != "" {
		path = opts.catalog
	}
	if path == "" {
		return errNoCatalog
	}
	limit := cfg.ResultLimit
	if opts.limit >= 0 {
		limit = opts.limit
	}
	clock := time.Now
	if opts.now != "" {
		at, err := time.Parse(time.RFC3339, opts.now)
		if err != nil {
			return fmt.Errorf("parse --now: %w", err)
		}
		clock = func() time.Time { return at }
	}

	store := repository.NewMemoryStore(repository.WithLogger(log.Named("repository")))
	if _, err := snapshot.NewLoader(store, snapshot.WithLogger(log.Named("snapshot"))).LoadFile(ctx, path); err != nil {
		return err
	}

	svc := app.New(store,
		app.WithLogger(log),
		app.WithClock(clock),
		app.WithLimit(limit),
		app.WithEventConcurrency(cfg.EventConcurrency),
		app.WithParticipantConcurrency(cfg.ParticipantConcurrency),
		app.WithGenrePenalty(cfg.GenrePenalty),
	)
	entries, err := svc.Recommend(ctx, opts.viewer)
	if err != nil {
		log.Error(ctx, "recommendation failed", logger.String("viewer_id", opts.viewer), logger.Error(err))
		return err
	}

	out, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode entries: %w", err)
	}
	if _, err := fmt.Fprintln(stdout, string(out)); err != nil {
		return fmt.Errorf("write entries: %w", err)
	}
	if opts.metrics {
		return metrics.WriteText(stderr)
	}
	return nil
}
