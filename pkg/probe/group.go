package probe

import "fmt"

// ProbeGroup is an ordered collection of probes used together in one
// recording session.
type ProbeGroup struct {
	probes []*Probe
}

// NewGroup constructs an empty probe group.
func NewGroup() *ProbeGroup {
	return &ProbeGroup{}
}

// AddProbe validates and appends a probe to the group.
func (g *ProbeGroup) AddProbe(p *Probe) error {
	if p == nil {
		return fmt.Errorf("probe: cannot add nil probe to group")
	}
	if err := p.Validate(); err != nil {
		return err
	}
	g.probes = append(g.probes, p)
	return nil
}

// Probes returns the group members in insertion order.
func (g *ProbeGroup) Probes() []*Probe {
	out := make([]*Probe, len(g.probes))
	copy(out, g.probes)
	return out
}

// ProbeCount returns the number of probes in the group.
func (g *ProbeGroup) ProbeCount() int { return len(g.probes) }

// ContactCount returns the total contact count across all probes.
func (g *ProbeGroup) ContactCount() int {
	total := 0
	for _, p := range g.probes {
		total += p.ContactCount()
	}
	return total
}

// SetGlobalDeviceChannelIndices distributes a flat channel assignment across
// the group members in order. The slice length must equal the total contact
// count.
func (g *ProbeGroup) SetGlobalDeviceChannelIndices(indices []int) error {
	if len(indices) != g.ContactCount() {
		return fmt.Errorf("%w: %d channel indices for %d contacts", ErrCountMismatch, len(indices), g.ContactCount())
	}
	offset := 0
	for _, p := range g.probes {
		n := p.ContactCount()
		if err := p.SetDeviceChannelIndices(indices[offset : offset+n]); err != nil {
			return err
		}
		offset += n
	}
	return nil
}
