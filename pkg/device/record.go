// Package device defines the persisted probe device records, the electrode
// table they link to, and the persistence and rule evaluation primitives
// used by probecore stores.
package device

import (
	"slices"
	"time"
)

// EntityType identifies the type of record stored in the probe catalog.
type EntityType string

// Supported entity type identifiers used in Change records and persistence buckets.
const (
	// EntityProbe identifies a persisted probe device record.
	EntityProbe EntityType = "probe"
	// EntityElectrode identifies electrode table rows.
	EntityElectrode EntityType = "electrode"
)

// Units accepted on persisted records (spelled out, unlike the in-memory
// si-unit abbreviations).
const (
	UnitMicrometer = "micrometer"
	UnitMillimeter = "millimeter"
	UnitMeter      = "meter"
)

// Base contains common fields for all catalog records.
type Base struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ContactRow is one row of a shank contact table.
type ContactRow struct {
	ContactID          string             `json:"contact_id"`
	ContactShape       string             `json:"contact_shape"`
	ShapeParams        map[string]float64 `json:"shape_params,omitempty"`
	ContactPosition    []float64          `json:"contact_position"`
	ContactPlaneAxes   [][]float64        `json:"contact_plane_axes,omitempty"`
	DeviceChannelIndex *int               `json:"device_channel_index,omitempty"`
}

// ContactTable lists the contacts of one shank in probe order.
type ContactTable struct {
	Description string       `json:"description,omitempty"`
	Rows        []ContactRow `json:"rows"`
}

// ShankRecord groups the contacts belonging to one physical shank.
type ShankRecord struct {
	ShankID  string       `json:"shank_id"`
	Contacts ContactTable `json:"contacts"`
}

// ProbeRecord is the persisted form of a probe device.
type ProbeRecord struct {
	Base
	Name            string        `json:"name"`
	Manufacturer    string        `json:"manufacturer,omitempty"`
	ModelName       string        `json:"model_name,omitempty"`
	SerialNumber    string        `json:"serial_number,omitempty"`
	NDim            int           `json:"ndim"`
	Unit            string        `json:"unit"`
	Shanks          []ShankRecord `json:"shanks"`
	ElectrodeRegion []int         `json:"electrode_region,omitempty"`
}

// ContactCount returns the total number of contact rows across all shanks.
func (r ProbeRecord) ContactCount() int {
	n := 0
	for _, s := range r.Shanks {
		n += len(s.Contacts.Rows)
	}
	return n
}

// Positions returns the contact positions across all shanks in record order.
func (r ProbeRecord) Positions() [][]float64 {
	out := make([][]float64, 0, r.ContactCount())
	for _, s := range r.Shanks {
		for _, row := range s.Contacts.Rows {
			out = append(out, slices.Clone(row.ContactPosition))
		}
	}
	return out
}

// ElectrodeRow is a per-contact row of the shared electrode table.
type ElectrodeRow struct {
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Z         float64 `json:"z"`
	Location  string  `json:"location,omitempty"`
	GroupName string  `json:"group_name,omitempty"`
}

// CloneRecord returns a deep copy of a probe record.
func CloneRecord(r ProbeRecord) ProbeRecord {
	out := r
	out.ElectrodeRegion = slices.Clone(r.ElectrodeRegion)
	out.Shanks = make([]ShankRecord, len(r.Shanks))
	for i, s := range r.Shanks {
		cs := s
		cs.Contacts.Rows = make([]ContactRow, len(s.Contacts.Rows))
		for j, row := range s.Contacts.Rows {
			cr := row
			cr.ContactPosition = slices.Clone(row.ContactPosition)
			if row.ContactPlaneAxes != nil {
				cr.ContactPlaneAxes = make([][]float64, len(row.ContactPlaneAxes))
				for k, axis := range row.ContactPlaneAxes {
					cr.ContactPlaneAxes[k] = slices.Clone(axis)
				}
			}
			if row.ShapeParams != nil {
				cr.ShapeParams = make(map[string]float64, len(row.ShapeParams))
				for k, v := range row.ShapeParams {
					cr.ShapeParams[k] = v
				}
			}
			if row.DeviceChannelIndex != nil {
				idx := *row.DeviceChannelIndex
				cr.DeviceChannelIndex = &idx
			}
			cs.Contacts.Rows[j] = cr
		}
		out.Shanks[i] = cs
	}
	return out
}
