package executor

import (
	"bufio"
	"context"
	"sort"
	"strings"
	"testing"

	"github.com/tariktz/urlcleaner/internal/engine"
)

func newTestJob(t *testing.T) *engine.Job {
	t.Helper()
	c, err := engine.GetDefault()
	if err != nil {
		t.Fatalf("GetDefault error: %v", err)
	}
	return &engine.Job{Cleaner: c, Unthreader: engine.NoopUnthreader}
}

func TestExecutorRunCleansEachLine(t *testing.T) {
	job := newTestJob(t)
	ex := New(job, Config{Threads: 2, ChannelBuffer: 4}, nil)

	in := strings.NewReader(strings.Join([]string{
		"https://example.com/a?utm_source=x&id=1",
		"https://example.com/b?utm_campaign=y&id=2",
	}, "\n") + "\n")
	var out strings.Builder

	if err := ex.Run(context.Background(), in, &out); err != nil {
		t.Fatalf("Run error: %v", err)
	}

	lines := splitNonEmpty(out.String())
	sort.Strings(lines)
	if len(lines) != 2 {
		t.Fatalf("got %d output lines, want 2: %v", len(lines), lines)
	}
	for _, l := range lines {
		if strings.HasPrefix(l, "-") {
			t.Fatalf("unexpected error line: %q", l)
		}
		if strings.Contains(l, "utm_") {
			t.Fatalf("expected utm_ param stripped, got %q", l)
		}
	}
}

func TestExecutorRunReportsParseErrors(t *testing.T) {
	job := newTestJob(t)
	ex := New(job, Config{Threads: 1}, nil)

	in := strings.NewReader("://not-a-url\n")
	var out strings.Builder
	if err := ex.Run(context.Background(), in, &out); err != nil {
		t.Fatalf("Run error: %v", err)
	}
	lines := splitNonEmpty(out.String())
	if len(lines) != 1 || !strings.HasPrefix(lines[0], "-") {
		t.Fatalf("expected one error-prefixed line, got %v", lines)
	}
}

func splitNonEmpty(s string) []string {
	var out []string
	sc := bufio.NewScanner(strings.NewReader(s))
	for sc.Scan() {
		if line := sc.Text(); line != "" {
			out = append(out, line)
		}
	}
	return out
}

func TestParseTaskInputShapes(t *testing.T) {
	cases := []struct {
		in      string
		wantURL string
	}{
		{"https://example.com/", "https://example.com/"},
		{`{"url":"https://example.com/","context":{"vars":{"k":"v"}}}`, "https://example.com/"},
		{`"https://example.com/"`, "https://example.com/"},
	}
	for _, c := range cases {
		got, err := ParseTaskInput(c.in)
		if err != nil {
			t.Fatalf("ParseTaskInput(%q) error: %v", c.in, err)
		}
		if got.URL != c.wantURL {
			t.Fatalf("ParseTaskInput(%q).URL = %q, want %q", c.in, got.URL, c.wantURL)
		}
	}

	withVars, err := ParseTaskInput(`{"url":"https://example.com/","context":{"vars":{"k":"v"}}}`)
	if err != nil {
		t.Fatalf("ParseTaskInput error: %v", err)
	}
	if withVars.Vars["k"] != "v" {
		t.Fatalf("expected context var k=v, got %v", withVars.Vars)
	}
}
