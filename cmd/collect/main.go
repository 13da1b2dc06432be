package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"text/tabwriter"

	"github.com/LJTian/FactHub/internal/collector"
	"github.com/LJTian/FactHub/internal/config"
	"github.com/LJTian/FactHub/internal/logging"
	"github.com/LJTian/FactHub/internal/processor"
	"github.com/LJTian/FactHub/internal/scheduler"
	"github.com/LJTian/FactHub/internal/storage"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// 一个仅执行一次采集任务的命令行入口：适合手动触发采集
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

type options struct {
	source   string
	feeds    string
	logLevel string
	dryRun   bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:          "collect",
		Short:        "Fetch fact-check RSS feeds once and store the normalized items",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCollect(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}
	root.PersistentFlags().StringVar(&opts.feeds, "feeds", os.Getenv("FEEDS_FILE"), "YAML feed catalog (default: built-in list)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level")
	root.Flags().StringVarP(&opts.source, "source", "s", "", "only fetch the feed with this code")
	root.Flags().BoolVar(&opts.dryRun, "dry-run", false, "fetch and normalize without touching the database")

	root.AddCommand(&cobra.Command{
		Use:   "feeds",
		Short: "Print the feed catalog as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			feeds, err := collector.LoadFeeds(opts.feeds)
			if err != nil {
				return err
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			defer enc.Close()
			return enc.Encode(map[string]any{"feeds": feeds})
		},
	})
	return root
}

func runCollect(ctx context.Context, out io.Writer, opts *options) error {
	logger, err := logging.Init(opts.logLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	feeds, err := collector.LoadFeeds(opts.feeds)
	if err != nil {
		return err
	}

	var sink scheduler.Sink
	if opts.dryRun {
		sink = &dryRunSink{out: out}
	} else {
		cfg := config.Load()
		store, err := storage.NewStore(cfg.PostgresDSN, cfg.RedisAddr)
		if err != nil {
			return fmt.Errorf("init store: %w", err)
		}
		defer store.Close()
		// 确保各个订阅源存在（与 cmd/api 保持一致）
		for _, f := range feeds {
			if _, err := store.EnsureFeedSource(ctx, f); err != nil {
				return fmt.Errorf("ensure feed source %s: %w", f.Code, err)
			}
		}
		sink = store
	}

	s, err := scheduler.New(scheduler.JobsFromFeeds(feeds, collector.DefaultCronSpec), processor.NewSimpleProcessor(), sink)
	if err != nil {
		return err
	}

	var results []scheduler.RunResult
	if opts.source != "" {
		res, err := s.RunSource(ctx, opts.source)
		if errors.Is(err, scheduler.ErrUnknownSource) {
			return err
		}
		results = append(results, res)
	} else {
		results = s.RunOnce(ctx)
	}

	return printResults(out, results)
}

func printResults(out io.Writer, results []scheduler.RunResult) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SOURCE\tFETCHED\tSAVED\tERROR")
	failed := 0
	for _, r := range results {
		errText := "-"
		if r.Err != nil {
			errText = r.Err.Error()
			failed++
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\n", r.Source, r.Fetched, r.Saved, errText)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if failed > 0 && failed == len(results) {
		return fmt.Errorf("all %d feeds failed", failed)
	}
	return nil
}

// dryRunSink 只打印清洗后的条目，不写库
type dryRunSink struct {
	mu  sync.Mutex
	out io.Writer
}

func (d *dryRunSink) SaveItems(_ context.Context, items []processor.ProcessedItem) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, it := range items {
		rating := it.Rating
		if rating == "" {
			rating = "-"
		}
		fmt.Fprintf(d.out, "[%s] %s %s (%s)\n", it.Source, it.PublishedAt.Format("2006-01-02"), it.Title, rating)
	}
	return len(items), nil
}

func (d *dryRunSink) RecordFetch(context.Context, string, int, error) error {
	return nil
}
