// Package probe implements the in-memory probeinterface model: a probe is an
// ordered set of recording contacts with spatial positions, shapes, and shank
// membership, optionally wired to device channels. A ProbeGroup collects
// probes in recording-session order.
package probe

import (
	"errors"
	"fmt"
	"slices"
)

// ContactShape enumerates supported contact geometries.
type ContactShape string

// Contact shapes recognised by the model and the persisted schema.
const (
	ShapeCircle ContactShape = "circle"
	ShapeSquare ContactShape = "square"
	ShapeRect   ContactShape = "rect"
)

// Shape parameter keys used in ShapeParams maps.
const (
	ParamRadius = "radius"
	ParamWidth  = "width"
	ParamHeight = "height"
)

// ShapeParams holds the numeric parameters describing a contact shape,
// keyed by the Param* constants.
type ShapeParams map[string]float64

// Clone returns an independent copy of the parameter map.
func (p ShapeParams) Clone() ShapeParams {
	if p == nil {
		return nil
	}
	out := make(ShapeParams, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// SI units accepted for probe coordinates.
const (
	UnitUm = "um"
	UnitMm = "mm"
	UnitM  = "m"
)

var validUnits = map[string]struct{}{UnitUm: {}, UnitMm: {}, UnitM: {}}

// Sentinel errors reported by model validation.
var (
	// ErrBadNDim indicates a probe dimensionality outside {2, 3}.
	ErrBadNDim = errors.New("probe: ndim must be 2 or 3")
	// ErrBadUnit indicates an SI unit outside the supported set.
	ErrBadUnit = errors.New("probe: unsupported si unit")
	// ErrCountMismatch indicates a per-contact slice whose length does not
	// match the probe contact count.
	ErrCountMismatch = errors.New("probe: length does not match contact count")
	// ErrGeometry indicates contact coordinates inconsistent with the probe
	// dimensionality.
	ErrGeometry = errors.New("probe: invalid contact geometry")
)

// Contact is a single recording site.
type Contact struct {
	ID          string
	Position    []float64
	PlaneAxes   [][]float64 // two axis vectors of ndim components each
	Shape       ContactShape
	ShapeParams ShapeParams
	ShankID     string
}

func cloneContact(c Contact) Contact {
	out := c
	out.Position = slices.Clone(c.Position)
	if c.PlaneAxes != nil {
		out.PlaneAxes = make([][]float64, len(c.PlaneAxes))
		for i, axis := range c.PlaneAxes {
			out.PlaneAxes[i] = slices.Clone(axis)
		}
	}
	out.ShapeParams = c.ShapeParams.Clone()
	return out
}

// Probe models a physical neural probe in probe coordinates.
type Probe struct {
	ndim           int
	siUnits        string
	contacts       []Contact
	deviceChannels []int
	annotations    map[string]string
}

// New constructs an empty probe with the given dimensionality and SI unit.
func New(ndim int, siUnits string) (*Probe, error) {
	if ndim != 2 && ndim != 3 {
		return nil, fmt.Errorf("%w: got %d", ErrBadNDim, ndim)
	}
	if _, ok := validUnits[siUnits]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrBadUnit, siUnits)
	}
	return &Probe{ndim: ndim, siUnits: siUnits}, nil
}

// NDim returns the probe dimensionality (2 or 3).
func (p *Probe) NDim() int { return p.ndim }

// SIUnits returns the SI unit the probe coordinates are expressed in.
func (p *Probe) SIUnits() string { return p.siUnits }

// ContactCount returns the number of contacts on the probe.
func (p *Probe) ContactCount() int { return len(p.contacts) }

// defaultPlaneAxes returns the standard in-plane axis pair for ndim.
func defaultPlaneAxes(ndim int) [][]float64 {
	if ndim == 3 {
		return [][]float64{{1, 0, 0}, {0, 1, 0}}
	}
	return [][]float64{{1, 0}, {0, 1}}
}

// AddContact appends a contact after validating its geometry against the
// probe dimensionality. Missing plane axes default to the in-plane basis.
func (p *Probe) AddContact(c Contact) error {
	if len(c.Position) != p.ndim {
		return fmt.Errorf("%w: position has %d components, want %d", ErrGeometry, len(c.Position), p.ndim)
	}
	if c.PlaneAxes == nil {
		c.PlaneAxes = defaultPlaneAxes(p.ndim)
	}
	if len(c.PlaneAxes) != 2 {
		return fmt.Errorf("%w: plane axes must hold 2 vectors, got %d", ErrGeometry, len(c.PlaneAxes))
	}
	for _, axis := range c.PlaneAxes {
		if len(axis) != p.ndim {
			return fmt.Errorf("%w: plane axis has %d components, want %d", ErrGeometry, len(axis), p.ndim)
		}
	}
	if c.Shape == "" {
		c.Shape = ShapeCircle
	}
	if p.deviceChannels != nil {
		return fmt.Errorf("%w: cannot add contacts after device channels were assigned", ErrCountMismatch)
	}
	p.contacts = append(p.contacts, cloneContact(c))
	return nil
}

// Contacts returns a deep copy of the probe contacts in order.
func (p *Probe) Contacts() []Contact {
	out := make([]Contact, len(p.contacts))
	for i, c := range p.contacts {
		out[i] = cloneContact(c)
	}
	return out
}

// ContactPositions returns the N×ndim position matrix.
func (p *Probe) ContactPositions() [][]float64 {
	out := make([][]float64, len(p.contacts))
	for i, c := range p.contacts {
		out[i] = slices.Clone(c.Position)
	}
	return out
}

// ContactIDs returns the per-contact identifiers in order.
func (p *Probe) ContactIDs() []string {
	out := make([]string, len(p.contacts))
	for i, c := range p.contacts {
		out[i] = c.ID
	}
	return out
}

// SetContactIDs assigns one identifier per contact.
func (p *Probe) SetContactIDs(ids []string) error {
	if len(ids) != len(p.contacts) {
		return fmt.Errorf("%w: %d ids for %d contacts", ErrCountMismatch, len(ids), len(p.contacts))
	}
	for i := range p.contacts {
		p.contacts[i].ID = ids[i]
	}
	return nil
}

// ShankIDs returns the per-contact shank identifiers in order.
func (p *Probe) ShankIDs() []string {
	out := make([]string, len(p.contacts))
	for i, c := range p.contacts {
		out[i] = c.ShankID
	}
	return out
}

// SetShankIDs assigns one shank identifier per contact.
func (p *Probe) SetShankIDs(ids []string) error {
	if len(ids) != len(p.contacts) {
		return fmt.Errorf("%w: %d shank ids for %d contacts", ErrCountMismatch, len(ids), len(p.contacts))
	}
	for i := range p.contacts {
		p.contacts[i].ShankID = ids[i]
	}
	return nil
}

// SetDeviceChannelIndices wires every contact to a device channel. The
// assignment is all-or-none; -1 marks an unconnected contact.
func (p *Probe) SetDeviceChannelIndices(indices []int) error {
	if len(indices) != len(p.contacts) {
		return fmt.Errorf("%w: %d channel indices for %d contacts", ErrCountMismatch, len(indices), len(p.contacts))
	}
	p.deviceChannels = slices.Clone(indices)
	return nil
}

// DeviceChannelIndices returns the wired channel per contact, or nil when no
// assignment was made.
func (p *Probe) DeviceChannelIndices() []int {
	return slices.Clone(p.deviceChannels)
}

// Annotate records a free-form string annotation on the probe.
func (p *Probe) Annotate(key, value string) {
	if p.annotations == nil {
		p.annotations = make(map[string]string)
	}
	p.annotations[key] = value
}

// Annotation returns a single annotation value and whether it was set.
func (p *Probe) Annotation(key string) (string, bool) {
	v, ok := p.annotations[key]
	return v, ok
}

// Annotations returns a copy of all annotations.
func (p *Probe) Annotations() map[string]string {
	out := make(map[string]string, len(p.annotations))
	for k, v := range p.annotations {
		out[k] = v
	}
	return out
}

// Validate checks the probe invariants: consistent geometry and, when device
// channels are assigned, one channel per contact.
func (p *Probe) Validate() error {
	if p.ndim != 2 && p.ndim != 3 {
		return fmt.Errorf("%w: got %d", ErrBadNDim, p.ndim)
	}
	if _, ok := validUnits[p.siUnits]; !ok {
		return fmt.Errorf("%w: %q", ErrBadUnit, p.siUnits)
	}
	for i, c := range p.contacts {
		if len(c.Position) != p.ndim {
			return fmt.Errorf("%w: contact %d position has %d components, want %d", ErrGeometry, i, len(c.Position), p.ndim)
		}
		if len(c.PlaneAxes) != 2 {
			return fmt.Errorf("%w: contact %d has %d plane axes, want 2", ErrGeometry, i, len(c.PlaneAxes))
		}
		for _, axis := range c.PlaneAxes {
			if len(axis) != p.ndim {
				return fmt.Errorf("%w: contact %d plane axis has %d components, want %d", ErrGeometry, i, len(axis), p.ndim)
			}
		}
	}
	if p.deviceChannels != nil && len(p.deviceChannels) != len(p.contacts) {
		return fmt.Errorf("%w: %d channel indices for %d contacts", ErrCountMismatch, len(p.deviceChannels), len(p.contacts))
	}
	return nil
}
