package engine

import "github.com/tariktz/urlcleaner/internal/paramsmap"

// MapDiff mutates one named Map entry by entry, per the "map_diffs" field
// of spec.md §6.2.
type MapDiff struct {
	Insert     map[string]string `json:"insert,omitempty"`
	Remove     []string          `json:"remove,omitempty"`
	SetIfNone  *string           `json:"set_if_none,omitempty"`
	SetElse    *string           `json:"set_else,omitempty"`
}

// ParamsDiff is an additive/subtractive patch over a Params, per
// spec.md §3/§6.2. Applying a sequence of ParamsDiffs in order (as
// ProfilesConfig.IntoProfile does when walking a profile's parents) is
// how spec.md's "layering operator" composition is realized here: a flag
// set by an earlier diff and unset by a later one ends up unset, and
// vice versa, simply because Apply runs the operations in field order on
// the same mutable Params — no separate "combined diff" value is
// materialized. This is a deliberate simplification over maintaining an
// associative diff-composition operator distinct from direct sequential
// application; the two are observationally identical for this engine
// since profiles are always resolved by applying diffs in a fixed order.
type ParamsDiff struct {
	Flags   []string          `json:"flags,omitempty"`
	Unflags []string          `json:"unflags,omitempty"`
	Vars    map[string]string `json:"vars,omitempty"`
	Unvars  []string          `json:"unvars,omitempty"`

	InitSets       []string            `json:"init_sets,omitempty"`
	InsertIntoSets map[string][]string `json:"insert_into_sets,omitempty"`
	RemoveFromSets map[string][]string `json:"remove_from_sets,omitempty"`
	DeleteSets     []string            `json:"delete_sets,omitempty"`

	InitMaps   []string           `json:"init_maps,omitempty"`
	MapDiffs   map[string]MapDiff `json:"map_diffs,omitempty"`
	DeleteMaps []string           `json:"delete_maps,omitempty"`
}

// Apply mutates p in place, in the fixed order: flags/unflags, vars/
// unvars, set init/insert/remove/delete, map init/diff/delete.
func (d *ParamsDiff) Apply(p *Params) {
	for _, f := range d.Flags {
		p.Flags[f] = struct{}{}
	}
	for _, f := range d.Unflags {
		delete(p.Flags, f)
	}

	for k, v := range d.Vars {
		p.Vars[k] = v
	}
	for _, k := range d.Unvars {
		delete(p.Vars, k)
	}

	for _, name := range d.InitSets {
		if _, ok := p.Sets[name]; !ok {
			p.Sets[name] = make(map[string]struct{})
		}
	}
	for name, vals := range d.InsertIntoSets {
		s, ok := p.Sets[name]
		if !ok {
			s = make(map[string]struct{})
			p.Sets[name] = s
		}
		for _, v := range vals {
			s[v] = struct{}{}
		}
	}
	for name, vals := range d.RemoveFromSets {
		if s, ok := p.Sets[name]; ok {
			for _, v := range vals {
				delete(s, v)
			}
		}
	}
	for _, name := range d.DeleteSets {
		delete(p.Sets, name)
	}

	for _, name := range d.InitMaps {
		if _, ok := p.Maps[name]; !ok {
			p.Maps[name] = paramsmap.NewMap[string, string]()
		}
	}
	for name, md := range d.MapDiffs {
		m, ok := p.Maps[name]
		if !ok {
			m = paramsmap.NewMap[string, string]()
			p.Maps[name] = m
		}
		applyMapDiff(m, md)
	}
	for _, name := range d.DeleteMaps {
		delete(p.Maps, name)
	}
}

func applyMapDiff(m *paramsmap.Map[string, string], md MapDiff) {
	for k, v := range md.Insert {
		m.Entries[k] = v
	}
	for _, k := range md.Remove {
		delete(m.Entries, k)
	}
	if md.SetIfNone != nil {
		m.IfNone = md.SetIfNone
	}
	if md.SetElse != nil {
		m.Else = md.SetElse
	}
}
