package engine

import (
	"os"
	"testing"
	"time"

	"github.com/tariktz/urlcleaner/internal/normurl"
)

// memCache is a minimal in-process Cache double for Action/StringSource
// Cache-variant tests; it does not need internal/cache's persistence or
// concurrency guarantees, just Read/Write bookkeeping.
type memCache struct {
	entries map[[2]string]string
	reads   int
}

func (m *memCache) Read(subject, key string) (bool, *string, error) {
	m.reads++
	if v, ok := m.entries[[2]string{subject, key}]; ok {
		return true, &v, nil
	}
	return false, nil, nil
}

func (m *memCache) Write(subject, key string, value *string, _ time.Duration) error {
	if m.entries == nil {
		m.entries = make(map[[2]string]string)
	}
	if value != nil {
		m.entries[[2]string{subject, key}] = *value
	}
	return nil
}

func newTestTaskState(t *testing.T, rawURL string, c *Cleaner) *TaskState {
	t.Helper()
	u, err := normurl.Parse(rawURL)
	if err != nil {
		t.Fatalf("Parse(%q) error: %v", rawURL, err)
	}
	job := &Job{Cleaner: c, Unthreader: NoopUnthreader}
	return job.NewTaskState(u, nil)
}

func TestStringSourceEvalBasics(t *testing.T) {
	c := &Cleaner{Params: NewParams()}
	ts := newTestTaskState(t, "https://example.com/a/b?x=1", c)

	str := "hello"
	src := &StringSource{Kind: "String", Str: &str}
	got, err := src.Eval(ts)
	if err != nil || got == nil || *got != "hello" {
		t.Fatalf("Eval(String) = %v, %v", got, err)
	}

	none := &StringSource{Kind: "None"}
	got, err = none.Eval(ts)
	if err != nil || got != nil {
		t.Fatalf("Eval(None) = %v, %v; want nil, nil", got, err)
	}

	part := &StringSource{Kind: "Part", Part: PartPath}
	got, err = part.Eval(ts)
	if err != nil || got == nil || *got != "/a/b" {
		t.Fatalf("Eval(Part Path) = %v, %v; want /a/b", got, err)
	}
}

func TestStringSourceJoin(t *testing.T) {
	c := &Cleaner{Params: NewParams()}
	ts := newTestTaskState(t, "https://example.com/", c)
	a, b := "foo", "bar"
	src := &StringSource{
		Kind: "Join",
		Join: &JoinArgs{
			Values: []StringSource{
				{Kind: "String", Str: &a},
				{Kind: "String", Str: &b},
			},
			Sep: "-",
		},
	}
	got, err := src.Eval(ts)
	if err != nil || got == nil || *got != "foo-bar" {
		t.Fatalf("Eval(Join) = %v, %v; want foo-bar", got, err)
	}
}

func TestStringSourceIfNone(t *testing.T) {
	c := &Cleaner{Params: NewParams()}
	ts := newTestTaskState(t, "https://example.com/", c)
	fallback := "fallback"
	src := &StringSource{
		Kind: "IfNone",
		Cond: &StringSource{Kind: "None"},
		Then: &StringSource{Kind: "String", Str: &fallback},
	}
	got, err := src.Eval(ts)
	if err != nil || got == nil || *got != "fallback" {
		t.Fatalf("Eval(IfNone) = %v, %v; want fallback", got, err)
	}
}

func TestConditionAllAnyShortCircuit(t *testing.T) {
	c := &Cleaner{Params: NewParams()}
	ts := newTestTaskState(t, "https://example.com/", c)

	allTrue := &Condition{Kind: "All", All: []Condition{{Kind: "Always"}, {Kind: "Always"}}}
	ok, err := allTrue.Check(ts)
	if err != nil || !ok {
		t.Fatalf("All(Always, Always) = %v, %v; want true", ok, err)
	}

	allFalse := &Condition{Kind: "All", All: []Condition{{Kind: "Always"}, {Kind: "Never"}}}
	ok, err = allFalse.Check(ts)
	if err != nil || ok {
		t.Fatalf("All(Always, Never) = %v, %v; want false", ok, err)
	}

	anyTrue := &Condition{Kind: "Any", Any: []Condition{{Kind: "Never"}, {Kind: "Always"}}}
	ok, err = anyTrue.Check(ts)
	if err != nil || !ok {
		t.Fatalf("Any(Never, Always) = %v, %v; want true", ok, err)
	}
}

func TestConditionDomain(t *testing.T) {
	c := &Cleaner{Params: NewParams()}
	ts := newTestTaskState(t, "https://www.example.com/", c)
	cond := &Condition{Kind: "Domain", Domain: &DomainConditionArgs{YesDomains: []string{"example.com"}}}
	ok, err := cond.Check(ts)
	if err != nil || !ok {
		t.Fatalf("Domain condition = %v, %v; want true (subdomain match)", ok, err)
	}

	excluded := &Condition{Kind: "Domain", Domain: &DomainConditionArgs{
		YesDomains:    []string{"example.com"},
		UnlessDomains: []string{"www.example.com"},
	}}
	ok, err = excluded.Check(ts)
	if err != nil || ok {
		t.Fatalf("Domain condition with unless = %v, %v; want false", ok, err)
	}
}

func TestConditionQualifiedAndUnqualifiedDomain(t *testing.T) {
	c := &Cleaner{Params: NewParams()}
	ts := newTestTaskState(t, "https://www.example.com/", c)

	qualified := &Condition{Kind: "QualifiedDomain", Host: "example.com"}
	ok, err := qualified.Check(ts)
	if err != nil || ok {
		t.Fatalf("QualifiedDomain(example.com) on www.example.com = %v, %v; want false", ok, err)
	}

	unqualified := &Condition{Kind: "UnqualifiedDomain", Host: "example.com"}
	ok, err = unqualified.Check(ts)
	if err != nil || !ok {
		t.Fatalf("UnqualifiedDomain(example.com) on www.example.com = %v, %v; want true", ok, err)
	}

	tsExact := newTestTaskState(t, "https://example.com/", c)
	qualifiedExact := &Condition{Kind: "QualifiedDomain", Host: "example.com"}
	ok, err = qualifiedExact.Check(tsExact)
	if err != nil || !ok {
		t.Fatalf("QualifiedDomain(example.com) on example.com = %v, %v; want true", ok, err)
	}
}

func TestActionRemoveUTPsByPrefix(t *testing.T) {
	c := &Cleaner{Params: NewParams()}
	ts := newTestTaskState(t, "https://example.com/?utm_source=x&keep=1", c)

	remove := &Action{Kind: "RemoveUTPs", RemoveUTPs: &RemoveUTPsArgs{Prefixes: []string{"utm_"}}}
	if err := remove.Apply(ts); err != nil {
		t.Fatalf("RemoveUTPs error: %v", err)
	}
	if ts.URL.QueryHasParam("utm_source") {
		t.Fatalf("expected utm_source removed, query = %q", ts.URL.Query())
	}
	if !ts.URL.QueryHasParam("keep") {
		t.Fatalf("expected keep param to survive, query = %q", ts.URL.Query())
	}
}

func TestActionRepeatDefaultLimit(t *testing.T) {
	c := &Cleaner{Params: NewParams()}
	ts := newTestTaskState(t, "https://example.com/a/b/c/d/e/f/g/h/i/j/k/l/m", c)

	repeat := &Action{Kind: "Repeat", Repeat: &RepeatArgs{
		Action: &Action{Kind: "RemoveLastNPathSegments", RemoveLastNPathSegments: 1},
	}}
	if err := repeat.Apply(ts); err != nil {
		t.Fatalf("Repeat error: %v", err)
	}
	// 13 segments minus 10 default-limit iterations leaves 3.
	if ts.URL.Path() != "/a/b/c" {
		t.Fatalf("after Repeat with default limit, path = %q; want /a/b/c", ts.URL.Path())
	}
}

func TestActionRepeatStopsAtFixpoint(t *testing.T) {
	c := &Cleaner{Params: NewParams()}
	ts := newTestTaskState(t, "https://example.com/a/b", c)

	repeat := &Action{Kind: "Repeat", Repeat: &RepeatArgs{
		Limit:  10,
		Action: &Action{Kind: "RemoveEmptyQuery"}, // no-op once the query is already absent
	}}
	before := ts.URL.String()
	if err := repeat.Apply(ts); err != nil {
		t.Fatalf("Repeat error: %v", err)
	}
	if ts.URL.String() != before {
		t.Fatalf("Repeat of a no-op action changed the URL: %q -> %q", before, ts.URL.String())
	}
}

func TestActionCacheUsesURLAsKey(t *testing.T) {
	c := &Cleaner{Params: NewParams()}
	cache := &memCache{}
	rawURL := "https://example.com/a?utm_source=x"
	u, err := normurl.Parse(rawURL)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	job := &Job{
		Cleaner:     c,
		Cache:       cache,
		CacheConfig: CacheConfig{Read: true, Write: true},
		Unthreader:  NoopUnthreader,
	}
	ts := job.NewTaskState(u, nil)

	subject := "subj"
	cacheAction := &Action{Kind: "Cache", Cache: &CacheActionArgs{
		Subject: &StringSource{Kind: "String", Str: &subject},
		Inner:   &Action{Kind: "RemoveUTPs", RemoveUTPs: &RemoveUTPsArgs{Prefixes: []string{"utm_"}}},
	}}
	if err := cacheAction.Apply(ts); err != nil {
		t.Fatalf("Cache action error: %v", err)
	}
	cleaned := ts.URL.String()
	if ts.URL.QueryHasParam("utm_source") {
		t.Fatalf("expected utm_source stripped, got %q", cleaned)
	}
	if cache.reads != 1 {
		t.Fatalf("expected one cache read, got %d", cache.reads)
	}
	if got, ok := cache.entries[[2]string{subject, rawURL}]; !ok || got != cleaned {
		t.Fatalf("expected entry keyed by original URL %q -> %q, got entries %v", rawURL, cleaned, cache.entries)
	}

	// A second run against the same original URL must hit the cache and
	// skip Inner entirely.
	u2, err := normurl.Parse(rawURL)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	ts2 := job.NewTaskState(u2, nil)
	if err := cacheAction.Apply(ts2); err != nil {
		t.Fatalf("Cache action (second run) error: %v", err)
	}
	if ts2.URL.String() != cleaned {
		t.Fatalf("cache hit produced %q, want %q", ts2.URL.String(), cleaned)
	}
	if cache.reads != 2 {
		t.Fatalf("expected two cache reads total, got %d", cache.reads)
	}
}

func TestStringSourceVarEnv(t *testing.T) {
	c := &Cleaner{Params: NewParams()}
	ts := newTestTaskState(t, "https://example.com/", c)

	t.Setenv("URLCLEANER_TEST_VAR", "present")
	src := &StringSource{Kind: "Var", Var: &VarRef{Type: VarEnv, Name: "URLCLEANER_TEST_VAR"}}
	got, err := src.Eval(ts)
	if err != nil || got == nil || *got != "present" {
		t.Fatalf("Eval(Var Env) = %v, %v; want present", got, err)
	}

	os.Unsetenv("URLCLEANER_TEST_VAR_MISSING")
	missing := &StringSource{Kind: "Var", Var: &VarRef{Type: VarEnv, Name: "URLCLEANER_TEST_VAR_MISSING"}}
	got, err = missing.Eval(ts)
	if err != nil || got != nil {
		t.Fatalf("Eval(Var Env missing) = %v, %v; want nil, nil", got, err)
	}
}

func TestActionIfAndTryElse(t *testing.T) {
	c := &Cleaner{Params: NewParams()}
	ts := newTestTaskState(t, "https://example.com/", c)

	fail := &Action{Kind: "Error", ErrorMsg: "boom"}
	ok := &Action{Kind: "RemoveEmptyQuery"}
	tryElse := &Action{Kind: "TryElse", TryElse: &ActionTryElse{Try: fail, Else: ok}}
	if err := tryElse.Apply(ts); err != nil {
		t.Fatalf("TryElse should fall through to Else without error, got %v", err)
	}

	ifAction := &Action{Kind: "If", If: &ActionIf{
		Cond: &Condition{Kind: "Always"},
		Then: ok,
		Else: fail,
	}}
	if err := ifAction.Apply(ts); err != nil {
		t.Fatalf("If(Always) should run Then, got error %v", err)
	}
}

func TestCleanerApplyDefault(t *testing.T) {
	c, err := GetDefault()
	if err != nil {
		t.Fatalf("GetDefault error: %v", err)
	}
	ts := newTestTaskState(t, "https://example.com/landing?utm_source=newsletter&id=42", c)
	if err := c.Apply(ts); err != nil {
		t.Fatalf("Apply(default cleaner) error: %v", err)
	}
	if ts.URL.QueryHasParam("utm_source") {
		t.Fatalf("expected utm_source stripped by default cleaner, got %q", ts.URL.String())
	}
	if !ts.URL.QueryHasParam("id") {
		t.Fatalf("expected id param preserved, got %q", ts.URL.String())
	}
}

func TestStringModificationTrimAndCase(t *testing.T) {
	c := &Cleaner{Params: NewParams()}
	ts := newTestTaskState(t, "https://example.com/", c)

	mod := &StringModification{Kind: "All", All: []StringModification{
		{Kind: "Trim"},
		{Kind: "Uppercase"},
	}}
	got, err := mod.Apply(ts, "  hello  ")
	if err != nil || got != "HELLO" {
		t.Fatalf("Apply(Trim+Uppercase) = %q, %v; want HELLO", got, err)
	}
}

func TestCharMatcherIsDigitRadix(t *testing.T) {
	m := &CharMatcher{Kind: "IsDigitRadix", Radix: 16}
	ok, err := m.Matches('f')
	if err != nil || !ok {
		t.Fatalf("IsDigitRadix(16) on 'f' = %v, %v; want true", ok, err)
	}
	ok, err = m.Matches('g')
	if err != nil || ok {
		t.Fatalf("IsDigitRadix(16) on 'g' = %v, %v; want false", ok, err)
	}

	bad := &CharMatcher{Kind: "IsDigitRadix", Radix: 40}
	if _, err := bad.Matches('1'); err == nil {
		t.Fatalf("IsDigitRadix(40) should error for radix > 36")
	}
}
