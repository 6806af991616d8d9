// Package convert maps between the in-memory probeinterface model and the
// persisted probe device records. Both directions are pure field copies with
// default substitution for absent optional attributes; round-trips are
// identity-preserving only over the schema-covered field subset.
package convert

import (
	"fmt"

	"probecore/pkg/device"
	"probecore/pkg/device/schema"
	"probecore/pkg/probe"
)

// Annotation keys mapped onto persisted record fields.
const (
	AnnotationName         = "name"
	AnnotationManufacturer = "manufacturer"
	AnnotationModelName    = "model_name"
	AnnotationSerialNumber = "serial_number"
)

// DefaultProbeName is substituted when the source probe carries no name.
const DefaultProbeName = "Probe"

var unitToRecord = map[string]string{
	probe.UnitUm: device.UnitMicrometer,
	probe.UnitMm: device.UnitMillimeter,
	probe.UnitM:  device.UnitMeter,
}

var unitFromRecord = map[string]string{
	device.UnitMicrometer: probe.UnitUm,
	device.UnitMillimeter: probe.UnitMm,
	device.UnitMeter:      probe.UnitM,
}

// FromProbeInterface converts a *probe.Probe or *probe.ProbeGroup into
// persisted probe records, one per probe, order preserving. A single probe
// yields a single-element slice. Any other input type fails with
// ErrUnsupportedType.
func FromProbeInterface(v any) ([]device.ProbeRecord, error) {
	switch src := v.(type) {
	case *probe.Probe:
		rec, err := FromProbe(src)
		if err != nil {
			return nil, err
		}
		return []device.ProbeRecord{rec}, nil
	case *probe.ProbeGroup:
		return FromProbeGroup(src)
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedType, v)
	}
}

// FromProbe converts a single probe into its persisted record.
func FromProbe(p *probe.Probe) (device.ProbeRecord, error) {
	if p == nil {
		return device.ProbeRecord{}, fmt.Errorf("%w: nil probe", ErrUnsupportedType)
	}
	if err := p.Validate(); err != nil {
		return device.ProbeRecord{}, err
	}
	unit, ok := unitToRecord[p.SIUnits()]
	if !ok {
		return device.ProbeRecord{}, fmt.Errorf("%w: %q", ErrUnknownUnit, p.SIUnits())
	}

	rec := device.ProbeRecord{
		NDim: p.NDim(),
		Unit: unit,
	}
	rec.Name = annotationOr(p, AnnotationName, DefaultProbeName)
	rec.Manufacturer = annotationOr(p, AnnotationManufacturer, "")
	rec.ModelName = annotationOr(p, AnnotationModelName, "")
	rec.SerialNumber = annotationOr(p, AnnotationSerialNumber, "")

	contacts := p.Contacts()
	channels := p.DeviceChannelIndices()
	for _, shank := range p.Shanks() {
		sr := device.ShankRecord{
			ShankID: shank.ID,
			Contacts: device.ContactTable{
				Description: "probe contact table",
			},
		}
		for _, idx := range shank.Indices {
			c := contacts[idx]
			row := device.ContactRow{
				ContactID:        c.ID,
				ContactShape:     string(c.Shape),
				ShapeParams:      map[string]float64(c.ShapeParams.Clone()),
				ContactPosition:  c.Position,
				ContactPlaneAxes: c.PlaneAxes,
			}
			if channels != nil {
				ch := channels[idx]
				row.DeviceChannelIndex = &ch
			}
			sr.Contacts.Rows = append(sr.Contacts.Rows, row)
		}
		rec.Shanks = append(rec.Shanks, sr)
	}
	return rec, nil
}

// FromProbeGroup converts every probe of the group, preserving order. An
// empty group yields an empty slice.
func FromProbeGroup(g *probe.ProbeGroup) ([]device.ProbeRecord, error) {
	if g == nil {
		return nil, fmt.Errorf("%w: nil probe group", ErrUnsupportedType)
	}
	records := make([]device.ProbeRecord, 0, g.ProbeCount())
	for i, p := range g.Probes() {
		rec, err := FromProbe(p)
		if err != nil {
			return nil, fmt.Errorf("probe %d: %w", i, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// ToProbeInterface reconstructs an in-memory probe from a persisted record.
// Fields the schema does not cover (arbitrary annotations, bookkeeping) are
// not restored.
func ToProbeInterface(rec device.ProbeRecord) (*probe.Probe, error) {
	if err := schema.ValidateRecord(rec); err != nil {
		return nil, err
	}
	siUnits, ok := unitFromRecord[rec.Unit]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownUnit, rec.Unit)
	}
	p, err := probe.New(rec.NDim, siUnits)
	if err != nil {
		return nil, err
	}

	var channels []int
	withChannels, total := 0, 0
	for _, shank := range rec.Shanks {
		for _, row := range shank.Contacts.Rows {
			c := probe.Contact{
				ID:          row.ContactID,
				Position:    row.ContactPosition,
				PlaneAxes:   row.ContactPlaneAxes,
				Shape:       probe.ContactShape(row.ContactShape),
				ShapeParams: probe.ShapeParams(row.ShapeParams),
				ShankID:     shank.ShankID,
			}
			if err := p.AddContact(c); err != nil {
				return nil, err
			}
			if row.DeviceChannelIndex != nil {
				withChannels++
				channels = append(channels, *row.DeviceChannelIndex)
			} else {
				channels = append(channels, -1)
			}
			total++
		}
	}
	if withChannels > 0 {
		if withChannels != total {
			return nil, fmt.Errorf("%w: %s set on %d of %d contacts", schema.ErrMissingField, schema.DatasetDeviceChannelIndex, withChannels, total)
		}
		if err := p.SetDeviceChannelIndices(channels); err != nil {
			return nil, err
		}
	}

	p.Annotate(AnnotationName, rec.Name)
	if rec.Manufacturer != "" {
		p.Annotate(AnnotationManufacturer, rec.Manufacturer)
	}
	if rec.ModelName != "" {
		p.Annotate(AnnotationModelName, rec.ModelName)
	}
	if rec.SerialNumber != "" {
		p.Annotate(AnnotationSerialNumber, rec.SerialNumber)
	}
	return p, nil
}

func annotationOr(p *probe.Probe, key, fallback string) string {
	if v, ok := p.Annotation(key); ok {
		return v
	}
	return fallback
}
