package cmd

import (
	"context"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	gocache "github.com/tariktz/urlcleaner/internal/cache"
	"github.com/tariktz/urlcleaner/internal/engine"
	"github.com/tariktz/urlcleaner/internal/executor"
	"github.com/tariktz/urlcleaner/internal/httpclient"
)

type cleanOptions struct {
	cleanerPath string
	profile     string
	threads     int
	cachePath   string
	unthread    bool
	readCache   bool
	writeCache  bool
	cacheDelay  bool
	verbose     bool
}

func init() {
	opts := &cleanOptions{}

	cleanCmd := &cobra.Command{
		Use:   "clean",
		Short: "Clean one URL task per input line, streaming results to stdout",
		Long: `clean reads one task per line from stdin (a bare URL, or a JSON
object/string per the task-input schema), runs each through a Cleaner
document, and writes one cleaned URL or "-"-prefixed error per line to
stdout. Output order across tasks is not guaranteed to match input order.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClean(cmd.Context(), opts)
		},
	}

	cleanCmd.Flags().StringVar(&opts.cleanerPath, "cleaner", "", "Path to a Cleaner JSON document (default: compiled-in default cleaner)")
	cleanCmd.Flags().StringVar(&opts.profile, "profile", "", "Named profile to apply on top of the cleaner's params (no profiles are loaded, so any non-empty name fails as a missing profile)")
	cleanCmd.Flags().IntVar(&opts.threads, "threads", 0, "Worker pool size (0 = available parallelism)")
	cleanCmd.Flags().StringVar(&opts.cachePath, "cache", "", "Path to a SQLite cache file (empty = in-memory cache)")
	cleanCmd.Flags().BoolVar(&opts.unthread, "unthread", false, "Serialize HTTP requests and cache reads behind a single mutex")
	cleanCmd.Flags().BoolVar(&opts.readCache, "read-cache", true, "Allow Action.Cache/StringSource.Cache to read cached entries")
	cleanCmd.Flags().BoolVar(&opts.writeCache, "write-cache", true, "Allow Action.Cache/StringSource.Cache to write entries")
	cleanCmd.Flags().BoolVar(&opts.cacheDelay, "cache-delay", false, "Sleep on a cache hit for its recorded compute duration")
	cleanCmd.Flags().BoolVar(&opts.verbose, "verbose", false, "Enable debug-level operational logging")

	rootCmd.AddCommand(cleanCmd)
}

func runClean(ctx context.Context, opts *cleanOptions) error {
	logger, err := newLogger(opts.verbose)
	if err != nil {
		return err
	}
	defer logger.Sync()

	cleaner, err := engine.LoadOrGetDefault(opts.cleanerPath)
	if err != nil {
		return err
	}
	if opts.profile != "" {
		pcc := engine.ProfiledCleanerConfig{Cleaner: cleaner}
		cleaner, err = pcc.IntoProfile(opts.profile)
		if err != nil {
			return err
		}
	}

	cache, err := openCache(opts.cachePath, opts.cacheDelay, logger)
	if err != nil {
		return err
	}
	defer cache.Close()

	var unthreader gocache.Unthreader = gocache.NoopUnthreader
	if opts.unthread {
		unthreader = gocache.NewMutexUnthreader()
	}

	job := &engine.Job{
		Cleaner: cleaner,
		Cache:   cache,
		CacheConfig: engine.CacheConfig{
			Read:  opts.readCache,
			Write: opts.writeCache,
			Delay: opts.cacheDelay,
		},
		HTTPClient: httpclient.New(30 * time.Second),
		Unthreader: unthreader,
	}

	ex := executor.New(job, executor.Config{Threads: opts.threads}, logger)
	return ex.Run(ctx, os.Stdin, os.Stdout)
}

func openCache(path string, delay bool, logger *zap.Logger) (gocache.Cache, error) {
	var c gocache.Cache
	var err error
	if path == "" {
		c = gocache.NewMemory()
	} else {
		c, err = gocache.OpenSQLite(path, logger)
		if err != nil {
			return nil, err
		}
	}
	if delay {
		c = gocache.NewDelaying(c)
	}
	return c, nil
}

func newLogger(verbose bool) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	if verbose {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return config.Build()
}
