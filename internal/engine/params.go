package engine

import (
	"github.com/tariktz/urlcleaner/internal/paramsmap"
)

// Params is a Cleaner document's mutable configuration surface: flags,
// vars, sets, lists, maps, and partitionings, per spec.md §3. Lookups used
// by StringSource/Condition/Action return ErrMissing (wrapped as
// KindMissing) for an absent name, never a zero value, so a typo in a
// rule's reference is distinguishable from a deliberately-empty
// collection.
type Params struct {
	Flags         map[string]struct{}
	Vars          map[string]string
	Sets          map[string]map[string]struct{}
	Lists         map[string][]string
	Maps          map[string]*paramsmap.Map[string, string]
	Partitionings map[string]*paramsmap.Partitioning
}

// NewParams returns an empty Params with every field initialized.
func NewParams() *Params {
	return &Params{
		Flags:         make(map[string]struct{}),
		Vars:          make(map[string]string),
		Sets:          make(map[string]map[string]struct{}),
		Lists:         make(map[string][]string),
		Maps:          make(map[string]*paramsmap.Map[string, string]),
		Partitionings: make(map[string]*paramsmap.Partitioning),
	}
}

// Clone returns a deep copy. spec.md describes Params fields as
// "semantically copy-on-write" so untouched fields needn't be copied on
// every diff application; this implementation clones eagerly at profile
// resolution time instead, trading a little allocation for a much
// simpler mutation story — there is only ever one profile resolution per
// task, not per-Action, so the cost is negligible relative to the rest of
// a task's work.
func (p *Params) Clone() *Params {
	out := NewParams()
	for k := range p.Flags {
		out.Flags[k] = struct{}{}
	}
	for k, v := range p.Vars {
		out.Vars[k] = v
	}
	for name, set := range p.Sets {
		s := make(map[string]struct{}, len(set))
		for k := range set {
			s[k] = struct{}{}
		}
		out.Sets[name] = s
	}
	for name, list := range p.Lists {
		out.Lists[name] = append([]string(nil), list...)
	}
	for name, m := range p.Maps {
		clone := &paramsmap.Map[string, string]{Entries: make(map[string]string, len(m.Entries))}
		for k, v := range m.Entries {
			clone.Entries[k] = v
		}
		clone.IfNone, clone.Else = m.IfNone, m.Else
		out.Maps[name] = clone
	}
	for name, part := range p.Partitionings {
		out.Partitionings[name] = part // Partitioning is immutable after construction
	}
	return out
}

func (p *Params) HasFlag(name string) bool {
	_, ok := p.Flags[name]
	return ok
}

func (p *Params) Var(name string) (string, bool) {
	v, ok := p.Vars[name]
	return v, ok
}

func (p *Params) Set(name string) (map[string]struct{}, bool) {
	s, ok := p.Sets[name]
	return s, ok
}

func (p *Params) List(name string) ([]string, bool) {
	l, ok := p.Lists[name]
	return l, ok
}

func (p *Params) Map(name string) (*paramsmap.Map[string, string], bool) {
	m, ok := p.Maps[name]
	return m, ok
}

func (p *Params) Partitioning(name string) (*paramsmap.Partitioning, bool) {
	part, ok := p.Partitionings[name]
	return part, ok
}

// wireMap/wirePartitionEntry mirror the JSON shapes of spec.md §6.1:
// `"maps": {"name": {"map":{"k":"v"}, "if_none":"v", "else":"v"}}` and
// `"partitionings": {"name": [{"name":"p","elements":[...]}]}`.
type wireMap struct {
	Map    map[string]string `json:"map,omitempty"`
	IfNone *string           `json:"if_none,omitempty"`
	Else   *string           `json:"else,omitempty"`
}

type wirePartitionEntry struct {
	Name     string   `json:"name"`
	Elements []string `json:"elements"`
}

type paramsWire struct {
	Flags         []string                       `json:"flags,omitempty"`
	Vars          map[string]string               `json:"vars,omitempty"`
	Sets          map[string][]string             `json:"sets,omitempty"`
	Lists         map[string][]string             `json:"lists,omitempty"`
	Maps          map[string]wireMap               `json:"maps,omitempty"`
	Partitionings map[string][]wirePartitionEntry  `json:"partitionings,omitempty"`
}

// MarshalJSON renders Params in the spec.md §6.1 wire format.
func (p *Params) MarshalJSON() ([]byte, error) {
	w := paramsWire{Vars: p.Vars, Lists: p.Lists}
	for f := range p.Flags {
		w.Flags = append(w.Flags, f)
	}
	if len(p.Sets) > 0 {
		w.Sets = make(map[string][]string, len(p.Sets))
		for name, set := range p.Sets {
			for v := range set {
				w.Sets[name] = append(w.Sets[name], v)
			}
		}
	}
	if len(p.Maps) > 0 {
		w.Maps = make(map[string]wireMap, len(p.Maps))
		for name, m := range p.Maps {
			w.Maps[name] = wireMap{Map: m.Entries, IfNone: m.IfNone, Else: m.Else}
		}
	}
	if len(p.Partitionings) > 0 {
		w.Partitionings = make(map[string][]wirePartitionEntry, len(p.Partitionings))
		for name, part := range p.Partitionings {
			var entries []wirePartitionEntry
			for _, pname := range part.Names() {
				entries = append(entries, wirePartitionEntry{Name: pname})
			}
			w.Partitionings[name] = entries
		}
	}
	return jsonAPI.Marshal(w)
}

// UnmarshalJSON parses the spec.md §6.1 wire format into a Params.
func (p *Params) UnmarshalJSON(data []byte) error {
	var w paramsWire
	if err := jsonAPI.Unmarshal(data, &w); err != nil {
		return err
	}
	*p = *NewParams()
	for _, f := range w.Flags {
		p.Flags[f] = struct{}{}
	}
	for k, v := range w.Vars {
		p.Vars[k] = v
	}
	for name, vals := range w.Sets {
		s := make(map[string]struct{}, len(vals))
		for _, v := range vals {
			s[v] = struct{}{}
		}
		p.Sets[name] = s
	}
	for name, vals := range w.Lists {
		p.Lists[name] = vals
	}
	for name, wm := range w.Maps {
		m := paramsmap.NewMap[string, string]()
		for k, v := range wm.Map {
			m.Entries[k] = v
		}
		m.IfNone, m.Else = wm.IfNone, wm.Else
		p.Maps[name] = m
	}
	for name, entries := range w.Partitionings {
		var parts []struct {
			Name     string
			Elements []*string
		}
		for _, e := range entries {
			elems := make([]*string, len(e.Elements))
			for i := range e.Elements {
				elems[i] = &e.Elements[i]
			}
			parts = append(parts, struct {
				Name     string
				Elements []*string
			}{Name: e.Name, Elements: elems})
		}
		part, err := paramsmap.TryFromIter(parts)
		if err != nil {
			return newErr(KindConfiguration, "Params.partitionings", err)
		}
		p.Partitionings[name] = part
	}
	return nil
}
