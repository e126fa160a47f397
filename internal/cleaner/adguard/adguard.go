// Package adguard converts a subset of AdGuard's tracking-parameter filter
// list syntax ($removeparam rules) into a urlcleaner Cleaner document. Rule
// *content* (which trackers a given list names) is out of scope per
// spec.md's Non-goals, but importing someone else's list is tooling, the
// same way original_source/adguard-converter/src/main.rs is tooling bolted
// onto the engine rather than part of it.
package adguard

import (
	"bufio"
	"fmt"
	"regexp"
	"strings"

	"github.com/tariktz/urlcleaner/internal/engine"
)

// Only the common, unconditionally-safe shape is recognized:
//
//	||host^$removeparam=name1|name2
//	||host^$removeparam
//
// Negated rules (@@), rules without a host, and rules carrying a $domain=
// modifier are skipped, mirroring adguard-converter's own
// "if negation || unqualified || domains.is_none() { continue }" filter —
// everything else in AdGuard's filter language (cosmetic rules, $domain,
// $third-party, etc.) has no analogue in this engine's Action set.
var removeParamRule = regexp.MustCompile(`^\|\|(?P<host>[\w.-]+)\^\$removeparam(?:=(?P<names>[^,$]+))?$`)

// FromAdGuardRules reads newline-delimited AdGuard filter rules from r
// (lines starting with "!" are comments, per AdGuard's own convention) and
// returns a Cleaner whose Actions strip the named query parameters on a
// per-rule domain match.
func FromAdGuardRules(r *bufio.Scanner) (*engine.Cleaner, error) {
	c := &engine.Cleaner{Params: engine.NewParams()}

	for r.Scan() {
		line := strings.TrimSpace(r.Text())
		if line == "" || strings.HasPrefix(line, "!") {
			continue
		}
		m := removeParamRule.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		host := m[1]
		names := m[2]

		var inner engine.Action
		if names == "" {
			inner = engine.Action{Kind: "RemoveQuery"}
		} else {
			inner = engine.Action{
				Kind: "RemoveQueryParams",
				RemoveQueryParams: &engine.ParamNamesArgs{
					Names: strings.Split(names, "|"),
				},
			}
		}

		rule := engine.Action{
			Kind: "If",
			If: &engine.ActionIf{
				Cond: &engine.Condition{
					Kind: "Domain",
					Domain: &engine.DomainConditionArgs{
						YesDomains: []string{host},
					},
				},
				Then: &inner,
				Else: &engine.Action{Kind: "All"},
			},
		}
		c.Actions = append(c.Actions, rule)
	}
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("adguard: reading rules: %w", err)
	}
	return c, nil
}
