package probe

// Shank is a read-only view over the contacts of one probe shank. Contacts
// with an empty shank identifier are treated as members of shank "0".
type Shank struct {
	ID      string
	Indices []int // contact indices into the parent probe, in probe order
}

// DefaultShankID is assumed for contacts without an explicit shank.
const DefaultShankID = "0"

// Shanks groups the probe contacts by shank identifier, in order of first
// appearance. A probe without shank identifiers yields a single shank "0".
func (p *Probe) Shanks() []Shank {
	var order []string
	byID := make(map[string]*Shank)
	for i, c := range p.contacts {
		id := c.ShankID
		if id == "" {
			id = DefaultShankID
		}
		s, ok := byID[id]
		if !ok {
			order = append(order, id)
			s = &Shank{ID: id}
			byID[id] = s
		}
		s.Indices = append(s.Indices, i)
	}
	out := make([]Shank, len(order))
	for i, id := range order {
		out[i] = *byID[id]
	}
	return out
}
