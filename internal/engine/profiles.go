package engine

import "fmt"

// Profile is one named entry of a ProfilesConfig: a list of parent
// profile names to inherit from (depth-first, no cycles) plus its own
// diff layered on top, per spec.md §3.
type Profile struct {
	Parents    []string   `json:"parents,omitempty"`
	ParamsDiff ParamsDiff `json:"params_diff"`
}

// ProfilesConfig is `{ base: ParamsDiff, named: map<str, Profile> }` per
// spec.md §3.
type ProfilesConfig struct {
	Base  ParamsDiff         `json:"base"`
	Named map[string]Profile `json:"named"`
}

// IntoProfile produces a per-task Params by cloning base and applying
// first the ProfilesConfig's Base diff, then every named profile reached
// by a depth-first traversal of name's parents (each parent's diffs
// applied before the child's own, matching "produces a flattened
// ParamsDiff by depth-first traversing parents, then layering the
// profile's own diff").
func (pc *ProfilesConfig) IntoProfile(base *Params, name string) (*Params, error) {
	out := base.Clone()
	pc.Base.Apply(out)
	if name == "" {
		return out, nil
	}
	visited := make(map[string]bool)
	if err := pc.applyProfile(out, name, visited); err != nil {
		return nil, err
	}
	return out, nil
}

// ProfiledCleanerConfig pairs a Cleaner document with the ProfilesConfig
// that layers named ParamsDiffs on top of it, per spec.md §4.9's
// "ProfiledCleanerConfig::into_profile(name) produces a per-task Cleaner by
// cloning the borrowed view and applying the flattened ParamsDiff for
// name". Cleaner itself has no "profiles" field, so named profiles come
// only from Profiles; the zero value (no profiles) makes IntoProfile("")
// act as a plain clone of Cleaner.
type ProfiledCleanerConfig struct {
	Cleaner  *Cleaner       `json:"cleaner"`
	Profiles ProfilesConfig `json:"profiles"`
}

// IntoProfile returns a Cleaner for a single task: pc.Cleaner with its
// Params replaced by the result of layering the ProfilesConfig's base diff
// and name's flattened parent chain on top of the original Params. An
// empty name still applies the ProfilesConfig's Base diff.
func (pc *ProfiledCleanerConfig) IntoProfile(name string) (*Cleaner, error) {
	params, err := pc.Profiles.IntoProfile(pc.Cleaner.Params, name)
	if err != nil {
		return nil, err
	}
	out := *pc.Cleaner
	out.Params = params
	return &out, nil
}

func (pc *ProfilesConfig) applyProfile(p *Params, name string, visited map[string]bool) error {
	if visited[name] {
		return newErr(KindConfiguration, "ProfilesConfig", fmt.Errorf("cycle detected at profile %q", name))
	}
	visited[name] = true

	prof, ok := pc.Named[name]
	if !ok {
		return newErr(KindMissing, "ProfilesConfig", fmt.Errorf("%w: profile %q", ErrMissing, name))
	}
	for _, parent := range prof.Parents {
		if err := pc.applyProfile(p, parent, visited); err != nil {
			return err
		}
	}
	prof.ParamsDiff.Apply(p)
	return nil
}
