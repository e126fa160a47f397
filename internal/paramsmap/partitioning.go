package paramsmap

import "fmt"

// ErrDuplicateElement is returned by TryFromIter when the same element
// name appears in more than one partition.
type ErrDuplicateElement struct {
	Element string
}

func (e *ErrDuplicateElement) Error() string {
	return fmt.Sprintf("paramsmap: element %q belongs to more than one partition", e.Element)
}

// Partitioning is an ordered collection of named partitions, each holding
// a set of (possibly absent/"null") element names, with every element
// unique across the whole collection. Get is O(1) via a precomputed
// reverse index, per spec.md §4.3.
type Partitioning struct {
	names   []string
	reverse map[string]string // element -> partition name
}

// TryFromIter builds a Partitioning from an ordered list of
// (partitionName, elements) pairs, where a nil element represents a
// partition's "null"/unnamed member. It rejects any element name that
// appears in more than one partition.
func TryFromIter(partitions []struct {
	Name     string
	Elements []*string
}) (*Partitioning, error) {
	p := &Partitioning{reverse: make(map[string]string)}
	for _, part := range partitions {
		p.names = append(p.names, part.Name)
		for _, el := range part.Elements {
			if el == nil {
				continue
			}
			if existing, ok := p.reverse[*el]; ok && existing != part.Name {
				return nil, &ErrDuplicateElement{Element: *el}
			}
			p.reverse[*el] = part.Name
		}
	}
	return p, nil
}

// Get returns the name of the partition containing element, if any.
func (p *Partitioning) Get(element string) (string, bool) {
	name, ok := p.reverse[element]
	return name, ok
}

// Names returns the partition names in construction order.
func (p *Partitioning) Names() []string { return append([]string(nil), p.names...) }
