package engine

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/tariktz/urlcleaner/internal/normurl"
)

// VarType names where StringSource.Var and Action/Condition var lookups
// read from, per spec.md §4.4.
type VarType string

const (
	VarParam       VarType = "Params"
	VarJobContext  VarType = "JobContext"
	VarTaskContext VarType = "TaskContext"
	VarScratchpad  VarType = "Scratchpad"
	VarCallArg     VarType = "CallArg"
	VarEnv         VarType = "Env"
)

// VarRef is the argument of StringSource.Var: {type, name}.
type VarRef struct {
	Type VarType `json:"type"`
	Name string  `json:"name"`
}

// ExtractPartArgs is StringSource.ExtractPart's payload: parse Value as a
// URL, then read Part from it.
type ExtractPartArgs struct {
	Value *StringSource `json:"value"`
	Part  UrlPart        `json:"part"`
}

// JoinArgs is StringSource.Join's payload.
type JoinArgs struct {
	Values []StringSource `json:"values"`
	Sep    string         `json:"sep"`
}

// ParamsMapArgs is StringSource.ParamsMap's payload: params.maps[Name][Key].
type ParamsMapArgs struct {
	Name string        `json:"name"`
	Key  *StringSource `json:"key"`
}

// PartitioningRefArgs is StringSource.Partitioning's payload.
type PartitioningRefArgs struct {
	Partitioning string        `json:"partitioning"`
	Element      *StringSource `json:"element"`
}

// ModifiedArgs is StringSource.Modified's payload.
type ModifiedArgs struct {
	Value        *StringSource       `json:"value"`
	Modification *StringModification `json:"modification"`
}

// MapArgs is StringSource.Map's payload: a paramsmap.Map lookup over a
// string-valued expression.
type MapArgs struct {
	Value *StringSource `json:"value"`
	Map   string        `json:"map"`
}

// TryElseArgs is shared by StringSource/Condition/Action's TryElse.
type TryElseArgs struct {
	Try  *StringSource `json:"try"`
	Else *StringSource `json:"else"`
}

// AssertMatchesArgs is StringSource.AssertMatches's payload: evaluate
// Value and fail unless it matches Matcher.
type AssertMatchesArgs struct {
	Value   *StringSource  `json:"value"`
	Matcher *StringMatcher `json:"matcher"`
}

// HttpRequestArgs is StringSource.HttpRequest's payload.
type HttpRequestArgs struct {
	URL      *StringSource `json:"url"`
	Method   string        `json:"method,omitempty"`
	Response string        `json:"response"` // "FinalUrl" | "StatusCode" | "Header:<Name>"
}

// CacheStringArgs is StringSource.Cache's payload, per spec.md §4.7.
type CacheStringArgs struct {
	Subject *StringSource `json:"subject"`
	Key     *StringSource `json:"key"`
	Value   *StringSource `json:"value"`
}

// StringSourceCall is StringSource.Function's payload: invoke a named
// string-source function with Args bound as its call-arg frame.
type StringSourceCall struct {
	Name string   `json:"name"`
	Args CallArgs `json:"args,omitempty"`
}

// StringSource is a lazy string-generating expression, per spec.md §4.4.
// It is represented as a single tagged-union struct (a Kind discriminant
// plus one populated payload field per variant) rather than a Go
// interface with one concrete type per variant: with ~20 variants that
// are also each other's possible children (recursively, through pointer
// fields) and that must round-trip through the spec.md §6.1 JSON schema
// verbatim, a single struct keeps construction, evaluation, and
// (de)serialization in one place instead of scattering them across 20
// small files. It trades the type-safety an interface would give for
// directness; see DESIGN.md.
type StringSource struct {
	Kind string `json:"kind"`

	Str               *string              `json:"str,omitempty"`
	ErrorMsg          *string              `json:"error_msg,omitempty"`
	Part              UrlPart              `json:"part,omitempty"`
	ExtractPart       *ExtractPartArgs     `json:"extract_part,omitempty"`
	JobSourceHostPart UrlPart              `json:"job_source_host_part,omitempty"`
	Join              *JoinArgs            `json:"join,omitempty"`
	Var               *VarRef              `json:"var,omitempty"`
	ParamsMap         *ParamsMapArgs       `json:"params_map,omitempty"`
	Partitioning      *PartitioningRefArgs `json:"partitioning,omitempty"`
	Modified          *ModifiedArgs        `json:"modified,omitempty"`
	Cond              *StringSource        `json:"cond,omitempty"` // shared payload for IfNone/NoneTo/NoneToEmpty/EmptyToNone: the value being tested
	FlagName          string               `json:"flag_name,omitempty"` // IfFlag's flag name
	Then              *StringSource        `json:"then,omitempty"` // IfFlag/IfMatches "then" value
	Matcher           *StringMatcher       `json:"matcher,omitempty"` // IfMatches's matcher
	NoneToValue       *StringSource        `json:"none_to_value,omitempty"` // NoneTo's replacement
	Map               *MapArgs             `json:"map,omitempty"`
	TryElse           *TryElseArgs         `json:"try_else,omitempty"`
	FirstNotError     []StringSource       `json:"first_not_error,omitempty"`
	Debug             *StringSource        `json:"debug,omitempty"`
	AssertMatches     *AssertMatchesArgs   `json:"assert_matches,omitempty"`
	HttpRequest       *HttpRequestArgs     `json:"http_request,omitempty"`
	Cache             *CacheStringArgs     `json:"cache,omitempty"`
	Function          *StringSourceCall    `json:"function,omitempty"`
	CallArgName       string               `json:"call_arg_name,omitempty"`
}

// Eval evaluates the expression against ts. A nil (*string)(nil) with a
// nil error means "StringSource::None" was produced (legitimately absent,
// not a failure).
func (s *StringSource) Eval(ts *TaskState) (*string, error) {
	if s == nil {
		return nil, nil
	}
	op := "StringSource." + s.Kind
	switch s.Kind {
	case "String":
		return s.Str, nil
	case "None":
		return nil, nil
	case "Error":
		msg := ""
		if s.ErrorMsg != nil {
			msg = *s.ErrorMsg
		}
		return nil, explicitErr(op, msg)
	case "Part":
		v, err := GetPart(ts.URL, s.Part)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		return v, nil
	case "ExtractPart":
		v, err := s.ExtractPart.Value.Eval(ts)
		if err != nil {
			return nil, err
		}
		if v == nil {
			return nil, nil
		}
		u, err := normurl.Parse(*v)
		if err != nil {
			return nil, newErr(KindParse, op, err)
		}
		return GetPart(u, s.ExtractPart.Part)
	case "JobSourceHostPart":
		host := ts.jobContext().SourceHost
		if host == nil {
			return nil, nil
		}
		return GetPart(host, s.JobSourceHostPart)
	case "Join":
		var parts []string
		for i := range s.Join.Values {
			v, err := s.Join.Values[i].Eval(ts)
			if err != nil {
				return nil, err
			}
			if v != nil {
				parts = append(parts, *v)
			}
		}
		out := strings.Join(parts, s.Join.Sep)
		return &out, nil
	case "Var":
		return resolveVar(ts, *s.Var)
	case "ParamsMap":
		m, ok := ts.params().Map(s.ParamsMap.Name)
		if !ok {
			return nil, newErr(KindMissing, op, fmt.Errorf("%w: map %q", ErrMissing, s.ParamsMap.Name))
		}
		key, err := s.ParamsMap.Key.Eval(ts)
		if err != nil {
			return nil, err
		}
		return m.Get(key), nil
	case "Partitioning":
		part, ok := ts.params().Partitioning(s.Partitioning.Partitioning)
		if !ok {
			return nil, newErr(KindMissing, op, fmt.Errorf("%w: partitioning %q", ErrMissing, s.Partitioning.Partitioning))
		}
		el, err := s.Partitioning.Element.Eval(ts)
		if err != nil {
			return nil, err
		}
		if el == nil {
			return nil, nil
		}
		if name, ok := part.Get(*el); ok {
			return &name, nil
		}
		return nil, nil
	case "Modified":
		v, err := s.Modified.Value.Eval(ts)
		if err != nil || v == nil {
			return v, err
		}
		out, err := s.Modified.Modification.Apply(ts, *v)
		if err != nil {
			return nil, err
		}
		return &out, nil
	case "IfFlag":
		if ts.params().HasFlag(s.FlagName) {
			return s.Then.Eval(ts)
		}
		return nil, nil
	case "IfNone":
		v, err := s.Cond.Eval(ts)
		if err != nil {
			return nil, err
		}
		if v == nil {
			return s.Then.Eval(ts)
		}
		return v, nil
	case "IfMatches":
		v, err := s.Cond.Eval(ts)
		if err != nil || v == nil {
			return v, err
		}
		ok, err := s.Matcher.Matches(ts, *v)
		if err != nil {
			return nil, err
		}
		if ok {
			return s.Then.Eval(ts)
		}
		return v, nil
	case "NoneTo":
		v, err := s.Cond.Eval(ts)
		if err != nil {
			return nil, err
		}
		if v == nil {
			return s.NoneToValue.Eval(ts)
		}
		return v, nil
	case "NoneToEmpty":
		v, err := s.Cond.Eval(ts)
		if err != nil {
			return nil, err
		}
		if v == nil {
			empty := ""
			return &empty, nil
		}
		return v, nil
	case "EmptyToNone":
		v, err := s.Cond.Eval(ts)
		if err != nil || v == nil {
			return v, err
		}
		if *v == "" {
			return nil, nil
		}
		return v, nil
	case "Map":
		v, err := s.Map.Value.Eval(ts)
		if err != nil {
			return nil, err
		}
		m, ok := ts.params().Map(s.Map.Map)
		if !ok {
			return nil, newErr(KindMissing, op, fmt.Errorf("%w: map %q", ErrMissing, s.Map.Map))
		}
		return m.Get(v), nil
	case "TryElse":
		v, err1 := s.TryElse.Try.Eval(ts)
		if err1 == nil {
			return v, nil
		}
		v, err2 := s.TryElse.Else.Eval(ts)
		if err2 != nil {
			return nil, &TryElseError{First: err1, Second: err2}
		}
		return v, nil
	case "FirstNotError":
		var errs []error
		for i := range s.FirstNotError {
			v, err := s.FirstNotError[i].Eval(ts)
			if err == nil {
				return v, nil
			}
			errs = append(errs, err)
		}
		return nil, &FirstNotErrorError{Errs: errs}
	case "Debug":
		v, err := s.Debug.Eval(ts)
		fmt.Printf("debug: StringSource = %v, err = %v\n", v, err)
		return v, err
	case "AssertMatches":
		v, err := s.AssertMatches.Value.Eval(ts)
		if err != nil || v == nil {
			return v, err
		}
		ok, err := s.AssertMatches.Matcher.Matches(ts, *v)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, explicitErr(op, fmt.Sprintf("value %q did not match asserted matcher", *v))
		}
		return v, nil
	case "HttpRequest":
		return evalHttpRequest(ts, s.HttpRequest)
	case "Cache":
		return evalCacheString(ts, s.Cache)
	case "Function":
		return evalStringSourceCall(ts, s.Function)
	case "CallArg":
		if src, ok := ts.stringCallArgs[s.CallArgName]; ok {
			return src.Eval(ts)
		}
		return nil, newErr(KindMissing, op, fmt.Errorf("%w: call arg %q", ErrMissing, s.CallArgName))
	default:
		return nil, newErr(KindConfiguration, op, fmt.Errorf("unknown StringSource kind %q", s.Kind))
	}
}

func resolveVar(ts *TaskState, ref VarRef) (*string, error) {
	op := "StringSource.Var"
	switch ref.Type {
	case VarParam:
		if v, ok := ts.params().Var(ref.Name); ok {
			return &v, nil
		}
		return nil, nil
	case VarJobContext:
		if v, ok := ts.jobContext().Vars[ref.Name]; ok {
			return &v, nil
		}
		return nil, nil
	case VarTaskContext:
		if v, ok := ts.TaskVars[ref.Name]; ok {
			return &v, nil
		}
		return nil, nil
	case VarScratchpad:
		if v, ok := ts.Scratchpad[ref.Name]; ok {
			return &v, nil
		}
		return nil, nil
	case VarCallArg:
		if src, ok := ts.stringCallArgs[ref.Name]; ok {
			return src.Eval(ts)
		}
		return nil, nil
	case VarEnv:
		if v, ok := os.LookupEnv(ref.Name); ok {
			return &v, nil
		}
		return nil, nil
	default:
		return nil, newErr(KindConfiguration, op, fmt.Errorf("unknown var type %q", ref.Type))
	}
}

func evalStringSourceCall(ts *TaskState, call *StringSourceCall) (*string, error) {
	fn, ok := ts.cleaner().Functions.StringSources[call.Name]
	if !ok {
		return nil, newErr(KindMissing, "StringSource.Function", fmt.Errorf("%w: string-source function %q", ErrMissing, call.Name))
	}
	var result *string
	err := call.Args.bind(ts, func() error {
		var err error
		result, err = fn.Eval(ts)
		return err
	})
	return result, err
}

func evalHttpRequest(ts *TaskState, args *HttpRequestArgs) (*string, error) {
	if ts.job.HTTPClient == nil {
		return nil, newErr(KindHTTPIO, "StringSource.HttpRequest", fmt.Errorf("no HTTP client configured"))
	}
	urlStr, err := args.URL.Eval(ts)
	if err != nil || urlStr == nil {
		return nil, err
	}
	method := args.Method
	if method == "" {
		method = "GET"
	}
	ts.job.Unthreader.Lock()
	resp, err := ts.job.HTTPClient.Do(HTTPRequestSpec{Method: method, URL: *urlStr})
	ts.job.Unthreader.Unlock()
	if err != nil {
		return nil, newErr(KindHTTPIO, "StringSource.HttpRequest", err)
	}
	switch {
	case args.Response == "FinalUrl":
		return &resp.FinalURL, nil
	case args.Response == "StatusCode":
		out := fmt.Sprintf("%d", resp.StatusCode)
		return &out, nil
	case strings.HasPrefix(args.Response, "Header:"):
		name := strings.TrimPrefix(args.Response, "Header:")
		if vals := resp.Header[name]; len(vals) > 0 {
			return &vals[0], nil
		}
		return nil, nil
	default:
		return nil, newErr(KindConfiguration, "StringSource.HttpRequest", fmt.Errorf("unknown response selector %q", args.Response))
	}
}

func evalCacheString(ts *TaskState, args *CacheStringArgs) (*string, error) {
	if ts.job.Cache == nil {
		return nil, newErr(KindCacheIO, "StringSource.Cache", fmt.Errorf("no cache configured"))
	}
	subject, err := args.Subject.Eval(ts)
	if err != nil || subject == nil {
		return nil, err
	}
	key, err := args.Key.Eval(ts)
	if err != nil || key == nil {
		return nil, err
	}
	if ts.job.CacheConfig.Read {
		ts.job.Unthreader.Lock()
		hit, value, err := ts.job.Cache.Read(*subject, *key)
		ts.job.Unthreader.Unlock()
		if err != nil {
			return nil, newErr(KindCacheIO, "StringSource.Cache", err)
		}
		if hit {
			return value, nil
		}
	}
	start := time.Now()
	value, err := args.Value.Eval(ts)
	if err != nil {
		return nil, err
	}
	if ts.job.CacheConfig.Write {
		if err := ts.job.Cache.Write(*subject, *key, value, time.Since(start)); err != nil {
			return nil, newErr(KindCacheIO, "StringSource.Cache", err)
		}
	}
	return value, nil
}
