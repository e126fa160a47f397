package engine

import (
	"time"

	"github.com/tariktz/urlcleaner/internal/normurl"
)

// JobContext carries the values that are fixed for an entire Job (a
// logical run of many tasks against the same cleaner/source), as opposed
// to TaskContext which is per-task. Per spec.md §3's "job" field of
// TaskState and §4.4's JobSourceHostPart variant.
type JobContext struct {
	// SourceHost is the host of whatever page/feed produced this batch of
	// URLs, when known (e.g. the page a link was scraped from). Empty
	// when not applicable.
	SourceHost *normurl.NormUrl
	Vars       map[string]string
}

// Cache is the subset of internal/cache.Cache the engine depends on,
// declared locally so internal/engine never imports internal/cache —
// any type satisfying this interface (SQLite-backed, in-memory, or a
// test double) can be wired in by the caller, per spec.md §4.7.
type Cache interface {
	Read(subject, key string) (hit bool, value *string, err error)
	Write(subject, key string, value *string, elapsed time.Duration) error
}

// HTTPRequestSpec and HTTPResponse are the minimal request/response shape
// StringSource.HttpRequest needs, per spec.md §4.4.
type HTTPRequestSpec struct {
	Method  string
	URL     string
	Headers map[string]string
}

type HTTPResponse struct {
	StatusCode int
	Header     map[string][]string
	FinalURL   string
}

// HTTPClient is the engine's dependency on an HTTP transport, satisfied
// by a thin wrapper over net/http.Client in production and a stub in
// tests.
type HTTPClient interface {
	Do(spec HTTPRequestSpec) (HTTPResponse, error)
}

// Unthreader is an optional process-wide serialization guard (spec.md
// §4.8). A no-op implementation is used when unthreading is disabled.
type Unthreader interface {
	Lock()
	Unlock()
}

type noopUnthreader struct{}

func (noopUnthreader) Lock()   {}
func (noopUnthreader) Unlock() {}

// NoopUnthreader is the zero-cost Unthreader used when the CLI's
// --unthread flag is off.
var NoopUnthreader Unthreader = noopUnthreader{}

// CacheConfig holds the per-job read/write/delay flags of spec.md §4.7.
type CacheConfig struct {
	Read  bool
	Write bool
	Delay bool
}

// Job bundles everything shared read-only across every TaskState spawned
// from it: the compiled Cleaner view, cache, HTTP client, unthreader, and
// job-level context. Corresponds to spec.md C9's "job container with
// Cleaner, cache, HTTP, unthreader".
type Job struct {
	Cleaner     *Cleaner
	Cache       Cache
	CacheConfig CacheConfig
	HTTPClient  HTTPClient
	Unthreader  Unthreader
	Context     JobContext
}

// NewTaskState builds a TaskState for one URL, owned exclusively by the
// calling goroutine for the task's lifetime (spec.md §5's "no data races
// possible" invariant).
func (j *Job) NewTaskState(u *normurl.NormUrl, taskVars map[string]string) *TaskState {
	return &TaskState{
		URL:        u,
		Scratchpad: make(map[string]string),
		TaskVars:   taskVars,
		job:        j,
	}
}

// TaskState is the mutable per-URL state an Action/Condition/StringSource
// tree is evaluated against. Only URL and Scratchpad are mutated during a
// task; everything else is read-only, per spec.md §3.
type TaskState struct {
	URL        *normurl.NormUrl
	Scratchpad map[string]string
	TaskVars   map[string]string

	job *Job

	// Call-arg frames, swapped in/out around Function invocations and
	// restored on return (a natural stack via Go's call stack + defer).
	stringCallArgs    map[string]StringSource
	conditionCallArgs map[string]Condition
	actionCallArgs    map[string]Action
}

func (ts *TaskState) cleaner() *Cleaner       { return ts.job.Cleaner }
func (ts *TaskState) params() *Params         { return ts.job.Cleaner.Params }
func (ts *TaskState) jobContext() *JobContext { return &ts.job.Context }
