package probe

import (
	"bytes"
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestWriteReadGroupRoundTrip(t *testing.T) {
	g := NewGroup()
	p0 := GenerateLinearProbe(4, 10)
	p0.Annotate("name", "Single-shank")
	if err := p0.SetContactIDs([]string{"c0", "c1", "c2", "c3"}); err != nil {
		t.Fatalf("set contact ids: %v", err)
	}
	if err := p0.SetDeviceChannelIndices([]int{3, 2, 1, 0}); err != nil {
		t.Fatalf("set channels: %v", err)
	}
	p1 := GenerateMultiShank(2, 3, 20)
	p1.Annotate("name", "Multi-shank")
	if err := g.AddProbe(p0); err != nil {
		t.Fatalf("add probe: %v", err)
	}
	if err := g.AddProbe(p1); err != nil {
		t.Fatalf("add probe: %v", err)
	}

	var buf bytes.Buffer
	if err := WriteGroup(&buf, g); err != nil {
		t.Fatalf("write group: %v", err)
	}
	decoded, err := ReadGroup(&buf)
	if err != nil {
		t.Fatalf("read group: %v", err)
	}
	if decoded.ProbeCount() != 2 {
		t.Fatalf("expected 2 probes, got %d", decoded.ProbeCount())
	}
	got0 := decoded.Probes()[0]
	if !reflect.DeepEqual(got0.ContactPositions(), p0.ContactPositions()) {
		t.Fatalf("positions differ after round trip")
	}
	if !reflect.DeepEqual(got0.ContactIDs(), p0.ContactIDs()) {
		t.Fatalf("contact ids differ after round trip")
	}
	if !reflect.DeepEqual(got0.DeviceChannelIndices(), p0.DeviceChannelIndices()) {
		t.Fatalf("device channels differ after round trip")
	}
	if name, _ := got0.Annotation("name"); name != "Single-shank" {
		t.Fatalf("unexpected name annotation %q", name)
	}
	got1 := decoded.Probes()[1]
	if !reflect.DeepEqual(got1.ShankIDs(), p1.ShankIDs()) {
		t.Fatalf("shank ids differ after round trip")
	}
	if got1.Contacts()[0].ShapeParams[ParamWidth] != 10 {
		t.Fatalf("shape params lost in round trip")
	}
}

func TestReadGroupRejectsWrongSpecification(t *testing.T) {
	_, err := ReadGroup(strings.NewReader(`{"specification":"something-else","version":"1","probes":[]}`))
	if err == nil || !strings.Contains(err.Error(), "unexpected specification") {
		t.Fatalf("expected specification error, got %v", err)
	}
}

func TestReadGroupVersionHandling(t *testing.T) {
	cases := []struct {
		name    string
		version string
		wantErr bool
	}{
		{"same version", "0.2.21", false},
		{"newer minor", "0.3.0", false},
		{"absent version", "", false},
		{"newer major", "1.0.0", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			doc := `{"specification":"probeinterface","version":"` + tc.version + `","probes":[]}`
			_, err := ReadGroup(strings.NewReader(doc))
			if tc.wantErr {
				if !errors.Is(err, ErrUnsupportedVersion) {
					t.Fatalf("expected ErrUnsupportedVersion, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("read group: %v", err)
			}
		})
	}
}

func TestReadGroupRejectsColumnLengthMismatch(t *testing.T) {
	doc := `{
  "specification": "probeinterface",
  "version": "0.2.21",
  "probes": [
    {
      "ndim": 2,
      "si_units": "um",
      "contact_positions": [[0,0],[0,10]],
      "contact_shapes": ["circle"],
      "contact_shape_params": [{"radius":5},{"radius":5}]
    }
  ]
}`
	if _, err := ReadGroup(strings.NewReader(doc)); err == nil {
		t.Fatalf("expected error for shape column mismatch")
	}
}

func TestReadGroupRejectsMalformedJSON(t *testing.T) {
	if _, err := ReadGroup(strings.NewReader("{")); err == nil {
		t.Fatalf("expected decode error")
	}
}
