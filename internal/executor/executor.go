// Package executor implements the job executor of spec.md §4.8/§5: a
// task-builder goroutine reads raw task input and dispatches it round-robin
// across N worker goroutines, each of which parses, cleans, and emits a
// result line to its own output channel; a sink goroutine drains those
// output channels round-robin to the destination writer.
package executor

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/tariktz/urlcleaner/internal/engine"
	"github.com/tariktz/urlcleaner/internal/normurl"
)

// Config controls worker-pool shape.
type Config struct {
	// Threads is N, the worker count. Zero or negative means
	// runtime.GOMAXPROCS(0) (the engine's stand-in for
	// available_parallelism(), per spec.md §4.8).
	Threads int

	// ChannelBuffer sizes each worker's input/output channel, providing
	// the bounded-channel backpressure spec.md §4.8 describes.
	ChannelBuffer int
}

func (c Config) threads() int {
	if c.Threads > 0 {
		return c.Threads
	}
	return runtime.GOMAXPROCS(0)
}

func (c Config) channelBuffer() int {
	if c.ChannelBuffer > 0 {
		return c.ChannelBuffer
	}
	return 256
}

// Executor fans a stream of task descriptors out across a worker pool
// sharing one engine.Job, per spec.md C11.
type Executor struct {
	job    *engine.Job
	cfg    Config
	logger *zap.Logger
}

// New builds an Executor. logger may be nil (operational logging becomes a
// no-op).
func New(job *engine.Job, cfg Config, logger *zap.Logger) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{job: job, cfg: cfg, logger: logger}
}

// Run reads one task per line from in, cleans each according to e's Job,
// and writes one result line per task to out (per spec.md §6.4: a cleaned
// URL as-is on success, a "-"-prefixed error description on failure).
// Output order across tasks is not guaranteed to match input order.
func (e *Executor) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	n := e.cfg.threads()
	bufSize := e.cfg.channelBuffer()
	e.logger.Debug("executor: starting", zap.Int("threads", n))

	inputs := make([]chan []byte, n)
	outputs := make([]chan string, n)
	outputReaders := make([]<-chan string, n)
	for i := range inputs {
		inputs[i] = make(chan []byte, bufSize)
		outputs[i] = make(chan string, bufSize)
		outputReaders[i] = outputs[i]
	}

	pool := NewBufferPool(256)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return e.buildTasks(gctx, in, inputs, pool)
	})

	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			return e.runWorker(gctx, inputs[i], outputs[i], pool)
		})
	}

	sinkErr := make(chan error, 1)
	go func() {
		sinkErr <- runSink(outputReaders, out)
	}()

	if err := g.Wait(); err != nil {
		return err
	}
	return <-sinkErr
}

// buildTasks is the "task builder" thread: it reads one line at a time,
// recycling buffers via pool, and dispatches them round-robin across
// worker input channels, closing each once input is exhausted.
func (e *Executor) buildTasks(ctx context.Context, in io.Reader, inputs []chan []byte, pool *BufferPool) error {
	defer func() {
		for _, ch := range inputs {
			close(ch)
		}
	}()

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	next := 0
	for scanner.Scan() {
		line := scanner.Bytes()
		buf := pool.Get()
		buf = append(buf, line...)

		select {
		case inputs[next] <- buf:
		case <-ctx.Done():
			return ctx.Err()
		}
		next = (next + 1) % len(inputs)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("executor: reading input: %w", err)
	}
	return nil
}

// runWorker owns one input/output channel pair: it parses each payload into
// a Task, returns the buffer to pool, then executes the Task and sends the
// result line to out.
func (e *Executor) runWorker(ctx context.Context, in <-chan []byte, out chan<- string, pool *BufferPool) error {
	defer close(out)

	for {
		select {
		case buf, ok := <-in:
			if !ok {
				return nil
			}
			payload := string(buf)
			pool.Put(buf)

			line := e.runOne(payload)

			select {
			case out <- line:
			case <-ctx.Done():
				return ctx.Err()
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// runOne parses and cleans a single task payload, formatting the result
// per spec.md §6.4.
func (e *Executor) runOne(payload string) string {
	task, err := ParseTaskInput(payload)
	if err != nil {
		return formatError(err)
	}
	u, err := normurl.Parse(task.URL)
	if err != nil {
		return formatError(err)
	}
	ts := e.job.NewTaskState(u, task.Vars)
	if err := e.job.Cleaner.Apply(ts); err != nil {
		return formatError(err)
	}
	return ts.URL.String()
}

// formatError renders a task-level failure per spec.md §6.4: a "-"
// prefix followed by a structured-but-implementation-defined description,
// distinguishable from any valid URL (no valid URL starts with "-").
func formatError(err error) string {
	return "-" + err.Error()
}
