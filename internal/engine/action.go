package engine

import (
	"fmt"
	"strings"
	"time"
)

// defaultRepeatLimit bounds Action.Repeat when no explicit limit is given,
// per spec.md §4.6.
const defaultRepeatLimit = 10

// SetPartArgs/ModifyPartArgs/CopyPartArgs/MovePartArgs are the cross-part
// Action payloads of spec.md §4.6.
type SetPartArgs struct {
	Part  UrlPart       `json:"part"`
	Value *StringSource `json:"value"`
}

type ModifyPartArgs struct {
	Part         UrlPart             `json:"part"`
	Modification *StringModification `json:"modification"`
}

type CopyPartArgs struct {
	From UrlPart `json:"from"`
	To   UrlPart `json:"to"`
}

type MovePartArgs struct {
	From UrlPart `json:"from"`
	To   UrlPart `json:"to"`
}

// RepeatArgs is Action.Repeat's payload.
type RepeatArgs struct {
	Action *Action `json:"action"`
	Limit  int     `json:"limit,omitempty"`
}

// ActionIf/ActionTryElse mirror Condition/StringModification's If/TryElse.
type ActionIf struct {
	Cond *Condition `json:"cond"`
	Then *Action    `json:"then"`
	Else *Action    `json:"else"`
}

type ActionTryElse struct {
	Try  *Action `json:"try"`
	Else *Action `json:"else"`
}

// ActionCall is Action.Function's payload.
type ActionCall struct {
	Name string   `json:"name"`
	Args CallArgs `json:"args,omitempty"`
}

// SegmentSetArgs/SegmentInsertArgs carry the shared {index, value} shape of
// every *Segment Action variant (domain/subdomain/suffix/path).
type SegmentSetArgs struct {
	Index int           `json:"index"`
	Value *StringSource `json:"value"`
}

type SegmentInsertArgs struct {
	Index int           `json:"index"`
	Value *StringSource `json:"value"`
}

// SegmentsSetArgs carries the {n, to} shape of SetFirstNPathSegments and
// its siblings.
type SegmentsSetArgs struct {
	N  int            `json:"n"`
	To []StringSource `json:"to"`
}

// QueryParamSetArgs is SetQueryParam/SetFragmentParam's payload.
type QueryParamSetArgs struct {
	Name  string        `json:"name"`
	Index int           `json:"index"`
	Value *StringSource `json:"value"`
}

// RenameParamArgs is RenameQueryParam's payload.
type RenameParamArgs struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// ParamNameArgs is the payload of the single-name Remove/AllowQueryParam
// and Remove/AllowFragmentParam variants.
type ParamNameArgs struct {
	Name string `json:"name"`
}

// ParamNamesArgs is the payload of the name-set Remove/AllowQueryParams
// variants.
type ParamNamesArgs struct {
	Names []string `json:"names"`
}

// ParamPrefixArgs is the payload of the prefix-matching Remove/Allow
// Query/FragmentParamsMatching variants, expressed as "starts with any of
// Prefixes" rather than an arbitrary StringMatcher, matching how
// RemoveUTPs already needs prefix matching.
type ParamPrefixArgs struct {
	Prefixes []string `json:"prefixes"`
}

// RemoveUTPsArgs is Action.RemoveUTPs's payload, per spec.md §4.6: strip
// tracking parameters named in Names or prefixed by Prefixes from both the
// query string and the fragment, except those in ExceptNames/ExceptPrefixes.
type RemoveUTPsArgs struct {
	Names         []string `json:"names,omitempty"`
	Prefixes      []string `json:"prefixes,omitempty"`
	ExceptNames   []string `json:"except_names,omitempty"`
	ExceptPrefixes []string `json:"except_prefixes,omitempty"`
}

// CacheActionArgs is Action.Cache's payload, per spec.md §4.7: subject
// addresses a cache entry keyed by the URL's string form as it stands
// before Inner runs; if present and reading is enabled, Inner is skipped;
// if Inner succeeds and writing is enabled, the entry is (re)written.
type CacheActionArgs struct {
	Subject *StringSource `json:"subject"`
	Inner   *Action       `json:"inner"`
}

// Action is a URL-mutating or control-flow step, per spec.md §4.6.
// Tagged-union struct, same rationale as StringSource.
type Action struct {
	Kind string `json:"kind"`

	ErrorMsg string `json:"error_msg,omitempty"`
	Debug    *Action `json:"debug,omitempty"`

	If            *ActionIf      `json:"if,omitempty"`
	All           []Action       `json:"all,omitempty"`
	Repeat        *RepeatArgs    `json:"repeat,omitempty"`
	IgnoreError   *Action        `json:"ignore_error,omitempty"`
	RevertOnError *Action        `json:"revert_on_error,omitempty"`
	TryElse       *ActionTryElse `json:"try_else,omitempty"`
	FirstNotError []Action       `json:"first_not_error,omitempty"`

	SetWhole  *StringSource `json:"set_whole,omitempty"`
	JoinValue *StringSource `json:"join_value,omitempty"`
	SetScheme *StringSource `json:"set_scheme,omitempty"`
	SetHost   *StringSource `json:"set_host,omitempty"`

	SetDomain          *StringSource `json:"set_domain,omitempty"`
	SetSubdomain       *StringSource `json:"set_subdomain,omitempty"` // nil StringSource result clears
	SetRegDomain       *StringSource `json:"set_reg_domain,omitempty"`
	SetDomainMiddle    *StringSource `json:"set_domain_middle,omitempty"`
	SetDomainSuffix    *StringSource `json:"set_domain_suffix,omitempty"`
	SetNotDomainSuffix *StringSource `json:"set_not_domain_suffix,omitempty"`

	SetDomainSegment         *SegmentSetArgs    `json:"set_domain_segment,omitempty"`
	InsertDomainSegment      *SegmentInsertArgs `json:"insert_domain_segment,omitempty"`
	SetSubdomainSegment      *SegmentSetArgs    `json:"set_subdomain_segment,omitempty"`
	InsertSubdomainSegment   *SegmentInsertArgs `json:"insert_subdomain_segment,omitempty"`
	SetDomainSuffixSegment   *SegmentSetArgs    `json:"set_domain_suffix_segment,omitempty"`
	InsertDomainSuffixSegment *SegmentInsertArgs `json:"insert_domain_suffix_segment,omitempty"`

	SetPath            *StringSource    `json:"set_path,omitempty"`
	SetPathSegment     *SegmentSetArgs  `json:"set_path_segment,omitempty"`
	InsertPathSegmentAt     *SegmentInsertArgs `json:"insert_path_segment_at,omitempty"`
	InsertPathSegmentAfter  *SegmentInsertArgs `json:"insert_path_segment_after,omitempty"`
	RemoveFirstNPathSegments int             `json:"remove_first_n_path_segments,omitempty"`
	KeepFirstNPathSegments   int             `json:"keep_first_n_path_segments,omitempty"`
	RemoveLastNPathSegments  int             `json:"remove_last_n_path_segments,omitempty"`
	KeepLastNPathSegments    int             `json:"keep_last_n_path_segments,omitempty"`
	SetFirstNPathSegments       *SegmentsSetArgs `json:"set_first_n_path_segments,omitempty"`
	SetPathSegmentsAfterFirstN  *SegmentsSetArgs `json:"set_path_segments_after_first_n,omitempty"`
	SetLastNPathSegments        *SegmentsSetArgs `json:"set_last_n_path_segments,omitempty"`
	SetPathSegmentsBeforeLastN  *SegmentsSetArgs `json:"set_path_segments_before_last_n,omitempty"`
	RemoveEmptyLastPathSegment bool `json:"remove_empty_last_path_segment,omitempty"`

	SetQuery              *StringSource      `json:"set_query,omitempty"`
	RemoveQuery           bool               `json:"remove_query,omitempty"`
	RemoveEmptyQuery      bool               `json:"remove_empty_query,omitempty"`
	SetQueryParam         *QueryParamSetArgs `json:"set_query_param,omitempty"`
	RenameQueryParam      *RenameParamArgs   `json:"rename_query_param,omitempty"`
	RemoveQueryParam      *ParamNameArgs     `json:"remove_query_param,omitempty"`
	AllowQueryParam       *ParamNameArgs     `json:"allow_query_param,omitempty"`
	RemoveQueryParams     *ParamNamesArgs    `json:"remove_query_params,omitempty"`
	AllowQueryParams      *ParamNamesArgs    `json:"allow_query_params,omitempty"`
	RemoveQueryParamsMatching *ParamPrefixArgs `json:"remove_query_params_matching,omitempty"`
	AllowQueryParamsMatching  *ParamPrefixArgs `json:"allow_query_params_matching,omitempty"`

	SetFragment         *StringSource    `json:"set_fragment,omitempty"`
	RemoveFragment      bool             `json:"remove_fragment,omitempty"`
	RemoveEmptyFragment bool             `json:"remove_empty_fragment,omitempty"`
	RemoveFragmentParamsMatching *ParamPrefixArgs `json:"remove_fragment_params_matching,omitempty"`
	AllowFragmentParamsMatching  *ParamPrefixArgs `json:"allow_fragment_params_matching,omitempty"`

	EnsureFqdnPeriod bool `json:"ensure_fqdn_period,omitempty"`
	RemoveFqdnPeriod bool `json:"remove_fqdn_period,omitempty"`

	SetPart    *SetPartArgs    `json:"set_part,omitempty"`
	ModifyPart *ModifyPartArgs `json:"modify_part,omitempty"`
	CopyPart   *CopyPartArgs   `json:"copy_part,omitempty"`
	MovePart   *MovePartArgs   `json:"move_part,omitempty"`

	RemoveUTPs *RemoveUTPsArgs `json:"remove_utps,omitempty"`

	Cache *CacheActionArgs `json:"cache,omitempty"`

	Function *ActionCall `json:"function,omitempty"`
	CallArg  string      `json:"call_arg,omitempty"`
}

// Apply runs the action against ts, mutating ts.URL/ts.Scratchpad.
func (a *Action) Apply(ts *TaskState) error {
	op := "Action." + a.Kind
	switch a.Kind {
	case "None":
		return nil
	case "Error":
		return explicitErr(op, a.ErrorMsg)
	case "Debug":
		err := a.Debug.Apply(ts)
		fmt.Printf("debug: Action produced url=%q err=%v\n", ts.URL.String(), err)
		return err
	case "If":
		ok, err := a.If.Cond.Check(ts)
		if err != nil {
			return err
		}
		if ok {
			return a.If.Then.Apply(ts)
		}
		return a.If.Else.Apply(ts)
	case "All":
		for i := range a.All {
			if err := a.All[i].Apply(ts); err != nil {
				return fmt.Errorf("all[%d]: %w", i, err)
			}
		}
		return nil
	case "Repeat":
		limit := a.Repeat.Limit
		if limit <= 0 {
			limit = defaultRepeatLimit
		}
		for i := 0; i < limit; i++ {
			before := ts.URL.Clone()
			if err := a.Repeat.Action.Apply(ts); err != nil {
				return err
			}
			if ts.URL.String() == before.String() {
				break
			}
		}
		return nil
	case "IgnoreError":
		_ = a.IgnoreError.Apply(ts)
		return nil
	case "RevertOnError":
		before := ts.URL.Clone()
		if err := a.RevertOnError.Apply(ts); err != nil {
			*ts.URL = *before
			return nil
		}
		return nil
	case "TryElse":
		if err1 := a.TryElse.Try.Apply(ts); err1 == nil {
			return nil
		} else if err2 := a.TryElse.Else.Apply(ts); err2 != nil {
			return &TryElseError{First: err1, Second: err2}
		}
		return nil
	case "FirstNotError":
		var errs []error
		for i := range a.FirstNotError {
			if err := a.FirstNotError[i].Apply(ts); err == nil {
				return nil
			} else {
				errs = append(errs, err)
			}
		}
		return &FirstNotErrorError{Errs: errs}
	case "SetWhole":
		return applyStr(ts, a.SetWhole, ts.URL.SetWhole)
	case "Join":
		return applyStr(ts, a.JoinValue, ts.URL.Join)
	case "SetScheme":
		return applyStr(ts, a.SetScheme, ts.URL.SetScheme)
	case "SetHost":
		return applyStr(ts, a.SetHost, ts.URL.SetHost)
	case "SetDomain":
		return applyStr(ts, a.SetDomain, ts.URL.SetDomain)
	case "SetSubdomain":
		v, err := a.SetSubdomain.Eval(ts)
		if err != nil {
			return err
		}
		return ts.URL.SetSubdomain(v)
	case "SetRegDomain":
		return applyStr(ts, a.SetRegDomain, ts.URL.SetRegDomain)
	case "SetDomainMiddle":
		return applyStr(ts, a.SetDomainMiddle, ts.URL.SetDomainMiddle)
	case "SetDomainSuffix":
		return applyStr(ts, a.SetDomainSuffix, ts.URL.SetDomainSuffix)
	case "SetNotDomainSuffix":
		return applyStr(ts, a.SetNotDomainSuffix, ts.URL.SetNotDomainSuffix)
	case "SetDomainSegment":
		return applySegmentSet(ts, a.SetDomainSegment, ts.URL.SetDomainSegment)
	case "InsertDomainSegment":
		return applySegmentInsert(ts, a.InsertDomainSegment, ts.URL.InsertDomainSegment)
	case "SetSubdomainSegment":
		return applySegmentSet(ts, a.SetSubdomainSegment, ts.URL.SetSubdomainSegment)
	case "InsertSubdomainSegment":
		return applySegmentInsert(ts, a.InsertSubdomainSegment, ts.URL.InsertSubdomainSegment)
	case "SetDomainSuffixSegment":
		return applySegmentSet(ts, a.SetDomainSuffixSegment, ts.URL.SetDomainSuffixSegment)
	case "InsertDomainSuffixSegment":
		return applySegmentInsert(ts, a.InsertDomainSuffixSegment, ts.URL.InsertDomainSuffixSegment)
	case "EnsureFqdnPeriod":
		return ts.URL.EnsureFqdnPeriod()
	case "RemoveFqdnPeriod":
		return ts.URL.RemoveFqdnPeriod()
	case "SetPath":
		return applyStr(ts, a.SetPath, ts.URL.SetPath)
	case "SetPathSegment":
		return applySegmentSet(ts, a.SetPathSegment, ts.URL.SetPathSegment)
	case "InsertPathSegmentAt":
		return applySegmentInsert(ts, a.InsertPathSegmentAt, ts.URL.InsertPathSegmentAt)
	case "InsertPathSegmentAfter":
		return applySegmentInsert(ts, a.InsertPathSegmentAfter, ts.URL.InsertPathSegmentAfter)
	case "RemoveFirstNPathSegments":
		return ts.URL.RemoveFirstNPathSegments(a.RemoveFirstNPathSegments)
	case "KeepFirstNPathSegments":
		return ts.URL.KeepFirstNPathSegments(a.KeepFirstNPathSegments)
	case "RemoveLastNPathSegments":
		return ts.URL.RemoveLastNPathSegments(a.RemoveLastNPathSegments)
	case "KeepLastNPathSegments":
		return ts.URL.KeepLastNPathSegments(a.KeepLastNPathSegments)
	case "SetFirstNPathSegments":
		return applySegmentsSet(ts, a.SetFirstNPathSegments, ts.URL.SetFirstNPathSegments)
	case "SetPathSegmentsAfterFirstN":
		return applySegmentsSet(ts, a.SetPathSegmentsAfterFirstN, ts.URL.SetPathSegmentsAfterFirstN)
	case "SetLastNPathSegments":
		return applySegmentsSet(ts, a.SetLastNPathSegments, ts.URL.SetLastNPathSegments)
	case "SetPathSegmentsBeforeLastN":
		return applySegmentsSet(ts, a.SetPathSegmentsBeforeLastN, ts.URL.SetPathSegmentsBeforeLastN)
	case "RemoveEmptyLastPathSegment":
		return ts.URL.RemoveEmptyLastPathSegment()
	case "SetQuery":
		v, err := a.SetQuery.Eval(ts)
		if err != nil {
			return err
		}
		return ts.URL.SetQuery(v)
	case "RemoveQuery":
		return ts.URL.RemoveQuery()
	case "RemoveEmptyQuery":
		return ts.URL.RemoveEmptyQuery()
	case "SetQueryParam":
		v, err := a.SetQueryParam.Value.Eval(ts)
		if err != nil {
			return err
		}
		return ts.URL.SetQueryParam(a.SetQueryParam.Name, a.SetQueryParam.Index, v)
	case "RenameQueryParam":
		return ts.URL.RenameQueryParam(a.RenameQueryParam.From, a.RenameQueryParam.To)
	case "RemoveQueryParam":
		return ts.URL.RemoveQueryParam(a.RemoveQueryParam.Name)
	case "AllowQueryParam":
		return ts.URL.AllowQueryParam(a.AllowQueryParam.Name)
	case "RemoveQueryParams":
		return ts.URL.RemoveQueryParams(nameSet(a.RemoveQueryParams.Names))
	case "AllowQueryParams":
		return ts.URL.AllowQueryParams(nameSet(a.AllowQueryParams.Names))
	case "RemoveQueryParamsMatching":
		return ts.URL.RemoveQueryParamsMatching(prefixMatcher(a.RemoveQueryParamsMatching.Prefixes))
	case "AllowQueryParamsMatching":
		return ts.URL.AllowQueryParamsMatching(prefixMatcher(a.AllowQueryParamsMatching.Prefixes))
	case "SetFragment":
		v, err := a.SetFragment.Eval(ts)
		if err != nil {
			return err
		}
		return ts.URL.SetFragment(v)
	case "RemoveFragment":
		return ts.URL.RemoveFragment()
	case "RemoveEmptyFragment":
		return ts.URL.RemoveEmptyFragment()
	case "RemoveFragmentParamsMatching":
		return ts.URL.RemoveFragmentParamsMatching(prefixMatcher(a.RemoveFragmentParamsMatching.Prefixes))
	case "AllowFragmentParamsMatching":
		return ts.URL.AllowFragmentParamsMatching(prefixMatcher(a.AllowFragmentParamsMatching.Prefixes))
	case "SetPart":
		v, err := a.SetPart.Value.Eval(ts)
		if err != nil {
			return err
		}
		return SetPart(ts.URL, a.SetPart.Part, v)
	case "ModifyPart":
		return applyModifyPart(ts, a.ModifyPart)
	case "CopyPart":
		v, err := GetPart(ts.URL, a.CopyPart.From)
		if err != nil {
			return err
		}
		return SetPart(ts.URL, a.CopyPart.To, v)
	case "MovePart":
		v, err := GetPart(ts.URL, a.MovePart.From)
		if err != nil {
			return err
		}
		if err := SetPart(ts.URL, a.MovePart.To, v); err != nil {
			return err
		}
		return SetPart(ts.URL, a.MovePart.From, nil)
	case "RemoveUTPs":
		return applyRemoveUTPs(ts, a.RemoveUTPs)
	case "Cache":
		return applyCacheAction(ts, a.Cache)
	case "Function":
		return evalActionCall(ts, a.Function)
	case "CallArg":
		if act, ok := ts.actionCallArgs[a.CallArg]; ok {
			return act.Apply(ts)
		}
		return newErr(KindMissing, op, fmt.Errorf("%w: call arg %q", ErrMissing, a.CallArg))
	default:
		return newErr(KindConfiguration, op, fmt.Errorf("unknown Action kind %q", a.Kind))
	}
}

func applyStr(ts *TaskState, src *StringSource, set func(string) error) error {
	v, err := src.Eval(ts)
	if err != nil {
		return err
	}
	if v == nil {
		return newErr(KindStructural, "Action", fmt.Errorf("expected a string, got none"))
	}
	return set(*v)
}

func applySegmentSet(ts *TaskState, args *SegmentSetArgs, set func(int, *string) error) error {
	v, err := args.Value.Eval(ts)
	if err != nil {
		return err
	}
	return set(args.Index, v)
}

func applySegmentInsert(ts *TaskState, args *SegmentInsertArgs, insert func(int, string) error) error {
	v, err := args.Value.Eval(ts)
	if err != nil {
		return err
	}
	if v == nil {
		return newErr(KindStructural, "Action", fmt.Errorf("inserted segment cannot be none"))
	}
	return insert(args.Index, *v)
}

func applySegmentsSet(ts *TaskState, args *SegmentsSetArgs, set func(int, []string) error) error {
	to := make([]string, len(args.To))
	for i := range args.To {
		v, err := args.To[i].Eval(ts)
		if err != nil {
			return err
		}
		if v == nil {
			return newErr(KindStructural, "Action", fmt.Errorf("segment value at index %d cannot be none", i))
		}
		to[i] = *v
	}
	return set(args.N, to)
}

func applyModifyPart(ts *TaskState, args *ModifyPartArgs) error {
	v, err := GetPart(ts.URL, args.Part)
	if err != nil {
		return err
	}
	if v == nil {
		return nil
	}
	out, err := args.Modification.Apply(ts, *v)
	if err != nil {
		return err
	}
	return SetPart(ts.URL, args.Part, &out)
}

func nameSet(names []string) map[string]struct{} {
	s := make(map[string]struct{}, len(names))
	for _, n := range names {
		s[n] = struct{}{}
	}
	return s
}

func prefixMatcher(prefixes []string) func(string) bool {
	return func(name string) bool {
		for _, p := range prefixes {
			if strings.HasPrefix(name, p) {
				return true
			}
		}
		return false
	}
}

// applyRemoveUTPs strips query and fragment parameters named in Names or
// prefixed by Prefixes, except those named in ExceptNames or prefixed by
// ExceptPrefixes, per spec.md §4.6. Applied to both the query and the
// fragment, since trackers are carried in either depending on the site
// (SPA routers commonly stash UTM params after a `#`).
func applyRemoveUTPs(ts *TaskState, args *RemoveUTPsArgs) error {
	names := nameSet(args.Names)
	except := nameSet(args.ExceptNames)
	shouldRemove := func(name string) bool {
		if _, ok := except[name]; ok {
			return false
		}
		for _, p := range args.ExceptPrefixes {
			if strings.HasPrefix(name, p) {
				return false
			}
		}
		if _, ok := names[name]; ok {
			return true
		}
		for _, p := range args.Prefixes {
			if strings.HasPrefix(name, p) {
				return true
			}
		}
		return false
	}
	if err := ts.URL.RemoveQueryParamsMatching(shouldRemove); err != nil {
		return err
	}
	return ts.URL.RemoveFragmentParamsMatching(shouldRemove)
}

// applyCacheAction implements Action.Cache per spec.md §4.7: a cache miss
// (or reading disabled) runs Inner and then writes its outcome when
// writing is enabled; Inner's error is preserved regardless of cache
// config so a cached failure never silently becomes success.
func applyCacheAction(ts *TaskState, args *CacheActionArgs) error {
	if ts.job.Cache == nil {
		return newErr(KindCacheIO, "Action.Cache", fmt.Errorf("no cache configured"))
	}
	subject, err := args.Subject.Eval(ts)
	if err != nil || subject == nil {
		return err
	}
	key := ts.URL.String()
	if ts.job.CacheConfig.Read {
		ts.job.Unthreader.Lock()
		hit, value, err := ts.job.Cache.Read(*subject, key)
		ts.job.Unthreader.Unlock()
		if err != nil {
			return newErr(KindCacheIO, "Action.Cache", err)
		}
		if hit {
			if value == nil {
				return ErrCachedUrlIsNone
			}
			return ts.URL.SetWhole(*value)
		}
	}
	start := time.Now()
	innerErr := args.Inner.Apply(ts)
	elapsed := time.Since(start)
	if ts.job.CacheConfig.Write && innerErr == nil {
		result := ts.URL.String()
		if err := ts.job.Cache.Write(*subject, key, &result, elapsed); err != nil {
			return newErr(KindCacheIO, "Action.Cache", err)
		}
	}
	return innerErr
}

func evalActionCall(ts *TaskState, call *ActionCall) error {
	fn, ok := ts.cleaner().Functions.Actions[call.Name]
	if !ok {
		return newErr(KindMissing, "Action.Function", fmt.Errorf("%w: action function %q", ErrMissing, call.Name))
	}
	return call.Args.bind(ts, func() error { return fn.Apply(ts) })
}
