package engine

import (
	_ "embed"
	"fmt"
	"os"
	"sync"

	jsoniter "github.com/json-iterator/go"
)

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// Functions holds a Cleaner document's reusable named definitions (its
// "commons"), per spec.md §6.1's `functions` object.
type Functions struct {
	Actions       map[string]Action       `json:"actions,omitempty"`
	Conditions    map[string]Condition    `json:"conditions,omitempty"`
	StringSources map[string]StringSource `json:"string_sources,omitempty"`
}

// Cleaner is the top-level rule document: params, reusable function
// definitions, and the action sequence applied to every task, per
// spec.md §3/§6.1.
type Cleaner struct {
	Docs      map[string]string `json:"docs,omitempty"`
	Params    *Params           `json:"params,omitempty"`
	Functions Functions         `json:"functions,omitempty"`
	Actions   []Action          `json:"actions,omitempty"`
}

// LoadFromFile reads and parses a Cleaner document from path.
func LoadFromFile(path string) (*Cleaner, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, newErr(KindConfiguration, "Cleaner.LoadFromFile", err)
	}
	var c Cleaner
	if err := jsonAPI.Unmarshal(data, &c); err != nil {
		return nil, newErr(KindParse, "Cleaner.LoadFromFile", err)
	}
	if c.Params == nil {
		c.Params = NewParams()
	}
	return &c, nil
}

//go:embed assets/default_cleaner.json
var defaultCleanerJSON []byte

var (
	defaultCleanerOnce sync.Once
	defaultCleaner     *Cleaner
	defaultCleanerErr  error
)

// GetDefault returns the compiled-in default Cleaner document, parsed
// once and cached behind a sync.Once, per spec.md §4.9.
func GetDefault() (*Cleaner, error) {
	defaultCleanerOnce.Do(func() {
		var c Cleaner
		if err := jsonAPI.Unmarshal(defaultCleanerJSON, &c); err != nil {
			defaultCleanerErr = newErr(KindParse, "Cleaner.GetDefault", err)
			return
		}
		if c.Params == nil {
			c.Params = NewParams()
		}
		defaultCleaner = &c
	})
	return defaultCleaner, defaultCleanerErr
}

// LoadOrGetDefault returns the Cleaner at path if path is non-empty,
// otherwise the compiled-in default.
func LoadOrGetDefault(path string) (*Cleaner, error) {
	if path == "" {
		return GetDefault()
	}
	return LoadFromFile(path)
}

// Apply runs every top-level action against ts in sequence, stopping at
// the first error (spec.md §4.6's default propagation rule).
func (c *Cleaner) Apply(ts *TaskState) error {
	for i, a := range c.Actions {
		if err := a.Apply(ts); err != nil {
			return fmt.Errorf("action[%d]: %w", i, err)
		}
	}
	return nil
}
