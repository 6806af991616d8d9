package schema

import "testing"

func TestNamespaceDeclaresAllGroupTypes(t *testing.T) {
	n := Namespace()
	if n.Name != NamespaceName || n.Version != NamespaceVersion {
		t.Fatalf("unexpected namespace identity %q %q", n.Name, n.Version)
	}
	for _, typeDef := range []string{TypeProbe, TypeShank, TypeContactTable} {
		if _, ok := n.Group(typeDef); !ok {
			t.Fatalf("namespace missing group %q", typeDef)
		}
	}
	if _, ok := n.Group("Unknown"); ok {
		t.Fatalf("unexpected group lookup hit")
	}
}

func TestProbeGroupAttributes(t *testing.T) {
	n := Namespace()
	probe, _ := n.Group(TypeProbe)
	ndim, ok := probe.Attribute(AttrNDim)
	if !ok || !ndim.Required || ndim.Default != 2 || ndim.DType != DTypeInt {
		t.Fatalf("unexpected ndim attribute %+v", ndim)
	}
	unit, ok := probe.Attribute(AttrUnit)
	if !ok || !unit.Required || unit.Default != "micrometer" {
		t.Fatalf("unexpected unit attribute %+v", unit)
	}
	for _, optional := range []string{AttrModelName, AttrSerialNumber, AttrManufacturer} {
		attr, ok := probe.Attribute(optional)
		if !ok {
			t.Fatalf("probe missing attribute %q", optional)
		}
		if attr.Required {
			t.Fatalf("attribute %q must be optional", optional)
		}
	}
	if _, ok := probe.Attribute("bogus"); ok {
		t.Fatalf("unexpected attribute lookup hit")
	}
}

func TestContactTableDatasets(t *testing.T) {
	n := Namespace()
	table, _ := n.Group(TypeContactTable)
	for _, name := range []string{DatasetContactID, DatasetContactShape, DatasetContactPlaneAxes, DatasetContactPosition, DatasetDeviceChannelIndex} {
		if _, ok := table.Dataset(name); !ok {
			t.Fatalf("contact table missing dataset %q", name)
		}
	}
	position, _ := table.Dataset(DatasetContactPosition)
	if len(position.Shapes) != 2 {
		t.Fatalf("expected 2d and 3d shape alternatives, got %v", position.Shapes)
	}
	if position.Shapes[0][0] != Wildcard || position.Shapes[0][1] != 2 {
		t.Fatalf("unexpected 2d shape %v", position.Shapes[0])
	}
	if position.Shapes[1][1] != 3 {
		t.Fatalf("unexpected 3d shape %v", position.Shapes[1])
	}
}

func TestShankContainsOneContactTable(t *testing.T) {
	n := Namespace()
	shank, _ := n.Group(TypeShank)
	if len(shank.Groups) != 1 || shank.Groups[0].TypeInc != TypeContactTable || shank.Groups[0].Quantity != "1" {
		t.Fatalf("unexpected shank subgroups %+v", shank.Groups)
	}
	id, ok := shank.Attribute(AttrShankID)
	if !ok || !id.Required {
		t.Fatalf("shank_id must be a required attribute, got %+v", id)
	}
}
