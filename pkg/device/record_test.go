package device

import (
	"reflect"
	"testing"
)

func sampleRecord() ProbeRecord {
	idx := 1
	return ProbeRecord{
		Base: Base{ID: "p0"},
		Name: "Single-shank",
		NDim: 2,
		Unit: UnitMicrometer,
		Shanks: []ShankRecord{
			{
				ShankID: "0",
				Contacts: ContactTable{
					Rows: []ContactRow{
						{ContactID: "c0", ContactShape: "circle", ShapeParams: map[string]float64{"radius": 5}, ContactPosition: []float64{0, 0}, ContactPlaneAxes: [][]float64{{1, 0}, {0, 1}}},
						{ContactID: "c1", ContactShape: "circle", ShapeParams: map[string]float64{"radius": 5}, ContactPosition: []float64{0, 10}, DeviceChannelIndex: &idx},
					},
				},
			},
		},
		ElectrodeRegion: []int{0, 1},
	}
}

func TestProbeRecordContactCountAndPositions(t *testing.T) {
	rec := sampleRecord()
	if rec.ContactCount() != 2 {
		t.Fatalf("expected 2 contacts, got %d", rec.ContactCount())
	}
	want := [][]float64{{0, 0}, {0, 10}}
	if !reflect.DeepEqual(rec.Positions(), want) {
		t.Fatalf("unexpected positions %v", rec.Positions())
	}
}

func TestCloneRecordIsDeep(t *testing.T) {
	rec := sampleRecord()
	clone := CloneRecord(rec)
	clone.Shanks[0].Contacts.Rows[0].ContactPosition[1] = 99
	clone.Shanks[0].Contacts.Rows[0].ShapeParams["radius"] = 99
	*clone.Shanks[0].Contacts.Rows[1].DeviceChannelIndex = 99
	clone.ElectrodeRegion[0] = 99
	if rec.Shanks[0].Contacts.Rows[0].ContactPosition[1] != 0 {
		t.Fatalf("clone shares position storage")
	}
	if rec.Shanks[0].Contacts.Rows[0].ShapeParams["radius"] != 5 {
		t.Fatalf("clone shares shape param storage")
	}
	if *rec.Shanks[0].Contacts.Rows[1].DeviceChannelIndex != 1 {
		t.Fatalf("clone shares device channel pointer")
	}
	if rec.ElectrodeRegion[0] != 0 {
		t.Fatalf("clone shares electrode region storage")
	}
}
