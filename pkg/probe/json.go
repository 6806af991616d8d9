package probe

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Wire-format constants for the probe group JSON document.
const (
	specificationName = "probeinterface"
	formatVersion     = "0.2.21"
)

// ErrUnsupportedVersion indicates a probe group document written under an
// incompatible major revision of the wire format.
var ErrUnsupportedVersion = errors.New("probe: unsupported format version")

// groupDocument is the columnar on-disk representation of a probe group.
type groupDocument struct {
	Specification string          `json:"specification"`
	Version       string          `json:"version"`
	Probes        []probeDocument `json:"probes"`
}

type probeDocument struct {
	NDim                 int               `json:"ndim"`
	SIUnits              string            `json:"si_units"`
	Annotations          map[string]string `json:"annotations,omitempty"`
	ContactPositions     [][]float64       `json:"contact_positions"`
	ContactPlaneAxes     [][][]float64     `json:"contact_plane_axes,omitempty"`
	ContactShapes        []string          `json:"contact_shapes"`
	ContactShapeParams   []ShapeParams     `json:"contact_shape_params"`
	ContactIDs           []string          `json:"contact_ids,omitempty"`
	ShankIDs             []string          `json:"shank_ids,omitempty"`
	DeviceChannelIndices []int             `json:"device_channel_indices,omitempty"`
}

func probeToDocument(p *Probe) probeDocument {
	doc := probeDocument{
		NDim:                 p.NDim(),
		SIUnits:              p.SIUnits(),
		Annotations:          p.Annotations(),
		ContactPositions:     p.ContactPositions(),
		DeviceChannelIndices: p.DeviceChannelIndices(),
	}
	if len(doc.Annotations) == 0 {
		doc.Annotations = nil
	}
	contacts := p.Contacts()
	doc.ContactPlaneAxes = make([][][]float64, len(contacts))
	doc.ContactShapes = make([]string, len(contacts))
	doc.ContactShapeParams = make([]ShapeParams, len(contacts))
	ids := make([]string, len(contacts))
	shanks := make([]string, len(contacts))
	hasIDs, hasShanks := false, false
	for i, c := range contacts {
		doc.ContactPlaneAxes[i] = c.PlaneAxes
		doc.ContactShapes[i] = string(c.Shape)
		doc.ContactShapeParams[i] = c.ShapeParams
		ids[i] = c.ID
		shanks[i] = c.ShankID
		if c.ID != "" {
			hasIDs = true
		}
		if c.ShankID != "" {
			hasShanks = true
		}
	}
	if hasIDs {
		doc.ContactIDs = ids
	}
	if hasShanks {
		doc.ShankIDs = shanks
	}
	return doc
}

func probeFromDocument(doc probeDocument) (*Probe, error) {
	p, err := New(doc.NDim, doc.SIUnits)
	if err != nil {
		return nil, err
	}
	n := len(doc.ContactPositions)
	if len(doc.ContactShapes) != n {
		return nil, fmt.Errorf("%w: %d shapes for %d positions", ErrCountMismatch, len(doc.ContactShapes), n)
	}
	for i := 0; i < n; i++ {
		c := Contact{
			Position: doc.ContactPositions[i],
			Shape:    ContactShape(doc.ContactShapes[i]),
		}
		if doc.ContactPlaneAxes != nil {
			if len(doc.ContactPlaneAxes) != n {
				return nil, fmt.Errorf("%w: %d plane axes for %d positions", ErrCountMismatch, len(doc.ContactPlaneAxes), n)
			}
			c.PlaneAxes = doc.ContactPlaneAxes[i]
		}
		if doc.ContactShapeParams != nil {
			if len(doc.ContactShapeParams) != n {
				return nil, fmt.Errorf("%w: %d shape params for %d positions", ErrCountMismatch, len(doc.ContactShapeParams), n)
			}
			c.ShapeParams = doc.ContactShapeParams[i]
		}
		if doc.ContactIDs != nil {
			if len(doc.ContactIDs) != n {
				return nil, fmt.Errorf("%w: %d contact ids for %d positions", ErrCountMismatch, len(doc.ContactIDs), n)
			}
			c.ID = doc.ContactIDs[i]
		}
		if doc.ShankIDs != nil {
			if len(doc.ShankIDs) != n {
				return nil, fmt.Errorf("%w: %d shank ids for %d positions", ErrCountMismatch, len(doc.ShankIDs), n)
			}
			c.ShankID = doc.ShankIDs[i]
		}
		if err := p.AddContact(c); err != nil {
			return nil, err
		}
	}
	if doc.DeviceChannelIndices != nil {
		if err := p.SetDeviceChannelIndices(doc.DeviceChannelIndices); err != nil {
			return nil, err
		}
	}
	for k, v := range doc.Annotations {
		p.Annotate(k, v)
	}
	return p, nil
}

// WriteGroup serialises a probe group to the probeinterface JSON format.
func WriteGroup(w io.Writer, g *ProbeGroup) error {
	doc := groupDocument{
		Specification: specificationName,
		Version:       formatVersion,
		Probes:        make([]probeDocument, 0, g.ProbeCount()),
	}
	for _, p := range g.Probes() {
		if err := p.Validate(); err != nil {
			return err
		}
		doc.Probes = append(doc.Probes, probeToDocument(p))
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

func majorVersion(v string) string {
	if i := strings.IndexByte(v, '.'); i >= 0 {
		return v[:i]
	}
	return v
}

// ReadGroup parses a probeinterface JSON document into a probe group. A
// document from a different major format revision is rejected rather than
// reinterpreted; an absent version is accepted for older writers.
func ReadGroup(r io.Reader) (*ProbeGroup, error) {
	var doc groupDocument
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode probe group: %w", err)
	}
	if doc.Specification != specificationName {
		return nil, fmt.Errorf("unexpected specification %q, want %q", doc.Specification, specificationName)
	}
	if doc.Version != "" && majorVersion(doc.Version) != majorVersion(formatVersion) {
		return nil, fmt.Errorf("%w: %q, want %s.x", ErrUnsupportedVersion, doc.Version, majorVersion(formatVersion))
	}
	g := NewGroup()
	for i, pd := range doc.Probes {
		p, err := probeFromDocument(pd)
		if err != nil {
			return nil, fmt.Errorf("probe %d: %w", i, err)
		}
		if err := g.AddProbe(p); err != nil {
			return nil, fmt.Errorf("probe %d: %w", i, err)
		}
	}
	return g, nil
}
