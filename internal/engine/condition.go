package engine

import "fmt"

// PartMatcherArgs checks whether a URL part's value (if present) satisfies
// Matcher.
type PartMatcherArgs struct {
	Part    UrlPart        `json:"part"`
	Matcher *StringMatcher `json:"matcher"`
}

// DomainConditionArgs is the payload of Condition.Domain, per spec.md
// §4.3: a domain is accepted if it (or a subdomain of it) is named by
// YesDomains/YesDomainRegexes, and not separately excluded by
// UnlessDomains/UnlessDomainRegexes.
type DomainConditionArgs struct {
	YesDomains        []string `json:"yes_domains,omitempty"`
	YesDomainRegexes  []string `json:"yes_domain_regexes,omitempty"`
	UnlessDomains     []string `json:"unless_domains,omitempty"`
	UnlessDomainRegexes []string `json:"unless_domain_regexes,omitempty"`
}

// ConditionCall is Condition.Function's payload.
type ConditionCall struct {
	Name string   `json:"name"`
	Args CallArgs `json:"args,omitempty"`
}

// PartMapArgs/PartPartitioningArgs check a part's value against a named
// Params map/partitioning, optionally requiring a specific resulting
// value ("first matching" variants omitted at this layer: a Cleaner
// document expresses "first of several parts matches" via Condition.Any
// over several PartMap conditions, which All/Any already support).
type PartMapArgs struct {
	Part  UrlPart `json:"part"`
	Map   string  `json:"map"`
	Value *string `json:"value,omitempty"` // nil: any non-None mapped value satisfies
}

type PartPartitioningArgs struct {
	Part         UrlPart `json:"part"`
	Partitioning string  `json:"partitioning"`
	Name         *string `json:"name,omitempty"`
}

// Condition is a boolean predicate evaluated against a TaskState, per
// spec.md §4.3. Tagged-union struct, same rationale as StringSource.
type Condition struct {
	Kind string `json:"kind"`

	Not *Condition  `json:"not,omitempty"`
	All []Condition `json:"all,omitempty"`
	Any []Condition `json:"any,omitempty"`
	If  *ConditionIf `json:"if,omitempty"`

	TryElse       *ConditionTryElse `json:"try_else,omitempty"`
	FirstNotError []Condition       `json:"first_not_error,omitempty"`

	PartMatches       *PartMatcherArgs     `json:"part_matches,omitempty"`
	Domain            *DomainConditionArgs `json:"domain,omitempty"`
	PathIs            string               `json:"path_is,omitempty"`
	PathMatchesRegex  string               `json:"path_matches_regex,omitempty"`
	pathRegexCompiled interface{ MatchString(string) bool }

	QueryHasParamName string `json:"query_has_param_name,omitempty"`

	// Host is QualifiedDomain/UnqualifiedDomain's payload: the domain name
	// to compare against, per spec.md §4.5.
	Host string `json:"host,omitempty"`

	PartMap          *PartMapArgs          `json:"part_map,omitempty"`
	PartPartitioning *PartPartitioningArgs `json:"part_partitioning,omitempty"`

	Function *ConditionCall `json:"function,omitempty"`
	CallArg  string         `json:"call_arg,omitempty"`
}

type ConditionIf struct {
	Cond *Condition `json:"cond"`
	Then *Condition `json:"then"`
	Else *Condition `json:"else"`
}

type ConditionTryElse struct {
	Try  *Condition `json:"try"`
	Else *Condition `json:"else"`
}

// Check evaluates the condition against ts. All/Any short-circuit
// strictly left-to-right per spec.md §4.3/§8.
func (c *Condition) Check(ts *TaskState) (bool, error) {
	op := "Condition." + c.Kind
	switch c.Kind {
	case "Always":
		return true, nil
	case "Never":
		return false, nil
	case "Not":
		ok, err := c.Not.Check(ts)
		if err != nil {
			return false, err
		}
		return !ok, nil
	case "All":
		for i := range c.All {
			ok, err := c.All[i].Check(ts)
			if err != nil {
				return false, err
			}
			if !ok {
				return false, nil
			}
		}
		return true, nil
	case "Any":
		for i := range c.Any {
			ok, err := c.Any[i].Check(ts)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil
	case "If":
		ok, err := c.If.Cond.Check(ts)
		if err != nil {
			return false, err
		}
		if ok {
			return c.If.Then.Check(ts)
		}
		return c.If.Else.Check(ts)
	case "TryElse":
		ok, err1 := c.TryElse.Try.Check(ts)
		if err1 == nil {
			return ok, nil
		}
		ok, err2 := c.TryElse.Else.Check(ts)
		if err2 != nil {
			return false, &TryElseError{First: err1, Second: err2}
		}
		return ok, nil
	case "FirstNotError":
		var errs []error
		for i := range c.FirstNotError {
			ok, err := c.FirstNotError[i].Check(ts)
			if err == nil {
				return ok, nil
			}
			errs = append(errs, err)
		}
		return false, &FirstNotErrorError{Errs: errs}
	case "ErrorToTrue":
		ok, err := c.Not.Check(ts)
		if err != nil {
			return true, nil
		}
		return ok, nil
	case "ErrorToFalse":
		ok, err := c.Not.Check(ts)
		if err != nil {
			return false, nil
		}
		return ok, nil
	case "PartMatches":
		v, err := GetPart(ts.URL, c.PartMatches.Part)
		if err != nil {
			return false, err
		}
		if v == nil {
			return false, nil
		}
		return c.PartMatches.Matcher.Matches(ts, *v)
	case "QualifiedDomain":
		domain, ok := ts.URL.Domain()
		if !ok {
			return false, nil
		}
		return domain == c.Host, nil
	case "UnqualifiedDomain":
		domain, ok := ts.URL.Domain()
		if !ok {
			return false, nil
		}
		return domainListOrRegexMatches(domain, []string{c.Host}, nil)
	case "Domain":
		return checkDomainCondition(ts, c.Domain)
	case "PathIs":
		return ts.URL.Path() == c.PathIs, nil
	case "PathMatchesRegex":
		re, err := compilePathRegex(c)
		if err != nil {
			return false, newErr(KindConfiguration, op, err)
		}
		return re.MatchString(ts.URL.Path()), nil
	case "QueryHasParam":
		return ts.URL.QueryHasParam(c.QueryHasParamName), nil
	case "FragmentHasParam":
		return ts.URL.FragmentHasParam(c.QueryHasParamName), nil
	case "PartMap":
		return checkPartMap(ts, c.PartMap)
	case "PartPartitioning":
		return checkPartPartitioning(ts, c.PartPartitioning)
	case "Function":
		return evalConditionCall(ts, c.Function)
	case "CallArg":
		if cond, ok := ts.conditionCallArgs[c.CallArg]; ok {
			return cond.Check(ts)
		}
		return false, newErr(KindMissing, op, fmt.Errorf("%w: call arg %q", ErrMissing, c.CallArg))
	default:
		return false, newErr(KindConfiguration, op, fmt.Errorf("unknown Condition kind %q", c.Kind))
	}
}

func checkDomainCondition(ts *TaskState, args *DomainConditionArgs) (bool, error) {
	domain, ok := ts.URL.Domain()
	if !ok {
		return false, nil
	}
	unless, err := domainListOrRegexMatches(domain, args.UnlessDomains, args.UnlessDomainRegexes)
	if err != nil {
		return false, err
	}
	if unless {
		return false, nil
	}
	return domainListOrRegexMatches(domain, args.YesDomains, args.YesDomainRegexes)
}

func domainListOrRegexMatches(domain string, names, regexes []string) (bool, error) {
	for _, d := range names {
		if domain == d || (len(domain) > len(d) && domain[len(domain)-len(d)-1] == '.' && domain[len(domain)-len(d):] == d) {
			return true, nil
		}
	}
	for _, pattern := range regexes {
		m := &StringMatcher{Kind: "Regex", Regex: pattern}
		ok, err := m.Matches(nil, domain)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

func compilePathRegex(c *Condition) (interface{ MatchString(string) bool }, error) {
	if c.pathRegexCompiled != nil {
		return c.pathRegexCompiled, nil
	}
	m := &StringMatcher{Kind: "Regex", Regex: c.PathMatchesRegex}
	if _, err := m.compiledRegex(); err != nil {
		return nil, err
	}
	c.pathRegexCompiled = m.compiled
	return c.pathRegexCompiled, nil
}

func checkPartMap(ts *TaskState, args *PartMapArgs) (bool, error) {
	v, err := GetPart(ts.URL, args.Part)
	if err != nil || v == nil {
		return false, err
	}
	m, ok := ts.params().Map(args.Map)
	if !ok {
		return false, newErr(KindMissing, "Condition.PartMap", fmt.Errorf("%w: map %q", ErrMissing, args.Map))
	}
	result := m.Get(v)
	if result == nil {
		return false, nil
	}
	if args.Value == nil {
		return true, nil
	}
	return *result == *args.Value, nil
}

func checkPartPartitioning(ts *TaskState, args *PartPartitioningArgs) (bool, error) {
	v, err := GetPart(ts.URL, args.Part)
	if err != nil || v == nil {
		return false, err
	}
	part, ok := ts.params().Partitioning(args.Partitioning)
	if !ok {
		return false, newErr(KindMissing, "Condition.PartPartitioning", fmt.Errorf("%w: partitioning %q", ErrMissing, args.Partitioning))
	}
	name, ok := part.Get(*v)
	if !ok {
		return false, nil
	}
	if args.Name == nil {
		return true, nil
	}
	return name == *args.Name, nil
}

// evalConditionCall invokes a named Functions.Conditions definition with
// call.Args bound as the call-arg frames for the duration of the call
// (bind swaps the string-source, condition and action frames together).
func evalConditionCall(ts *TaskState, call *ConditionCall) (bool, error) {
	fn, ok := ts.cleaner().Functions.Conditions[call.Name]
	if !ok {
		return false, newErr(KindMissing, "Condition.Function", fmt.Errorf("%w: condition function %q", ErrMissing, call.Name))
	}
	var result bool
	err := call.Args.bind(ts, func() error {
		var err error
		result, err = fn.Check(ts)
		return err
	})
	return result, err
}
