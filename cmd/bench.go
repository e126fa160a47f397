package cmd

import (
	"bufio"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/tariktz/urlcleaner/internal/engine"
	"github.com/tariktz/urlcleaner/internal/normurl"
)

type benchOptions struct {
	cleanerPath string
	corpusPath  string
	repeat      int
}

func init() {
	opts := &benchOptions{}

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "Micro-benchmark a Cleaner against a corpus of URLs",
		Long: `bench applies a Cleaner to every line of a corpus file --repeat times
single-threaded, reporting wall-clock throughput. It is a development tool,
not part of the engine's public contract.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBench(opts)
		},
	}

	benchCmd.Flags().StringVar(&opts.cleanerPath, "cleaner", "", "Path to a Cleaner JSON document (default: compiled-in default cleaner)")
	benchCmd.Flags().StringVar(&opts.corpusPath, "corpus", "", "Path to a newline-delimited corpus of URLs (required)")
	benchCmd.Flags().IntVar(&opts.repeat, "repeat", 1, "Number of passes over the corpus")
	benchCmd.MarkFlagRequired("corpus")

	rootCmd.AddCommand(benchCmd)
}

func runBench(opts *benchOptions) error {
	cleaner, err := engine.LoadOrGetDefault(opts.cleanerPath)
	if err != nil {
		return err
	}

	corpus, err := readLines(opts.corpusPath)
	if err != nil {
		return err
	}
	if len(corpus) == 0 {
		return fmt.Errorf("bench: corpus %q is empty", opts.corpusPath)
	}

	job := &engine.Job{Cleaner: cleaner, Unthreader: engine.NoopUnthreader}

	var cleaned, failed int
	start := time.Now()
	for pass := 0; pass < opts.repeat; pass++ {
		for _, raw := range corpus {
			u, err := normurl.Parse(raw)
			if err != nil {
				failed++
				continue
			}
			ts := job.NewTaskState(u, nil)
			if err := cleaner.Apply(ts); err != nil {
				failed++
				continue
			}
			cleaned++
		}
	}
	elapsed := time.Since(start)
	total := cleaned + failed

	fmt.Printf("urls:        %d (%d passes over %d lines)\n", total, opts.repeat, len(corpus))
	fmt.Printf("cleaned:     %d\n", cleaned)
	fmt.Printf("failed:      %d\n", failed)
	fmt.Printf("elapsed:     %s\n", elapsed)
	if total > 0 {
		fmt.Printf("throughput:  %.0f urls/sec\n", float64(total)/elapsed.Seconds())
	}
	return nil
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("bench: open corpus: %w", err)
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if line := sc.Text(); line != "" {
			lines = append(lines, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("bench: read corpus: %w", err)
	}
	return lines, nil
}
