// Package schema declares the persisted probe record schema: named, typed
// fields with optionality and defaults for the Probe, Shank, and ContactTable
// group types. The declarations are purely data; validation walks them
// against concrete records.
package schema

// Namespace identity for the probe device schema.
const (
	NamespaceName    = "probeinterface"
	NamespaceVersion = "0.1.0"
	NamespaceDoc     = "Schema for neural probes in the probeinterface format"
)

// Group type names declared by the namespace.
const (
	TypeProbe        = "Probe"
	TypeShank        = "Shank"
	TypeContactTable = "ContactTable"
)

// DType enumerates the scalar field types a dataset or attribute may carry.
type DType string

// Supported scalar types.
const (
	DTypeText  DType = "text"
	DTypeFloat DType = "float"
	DTypeInt   DType = "int"
)

// Wildcard marks an unconstrained dimension in a shape alternative.
const Wildcard = -1

// AttributeSpec declares a scalar attribute of a group type.
type AttributeSpec struct {
	Name     string
	Doc      string
	DType    DType
	Required bool
	Default  any
}

// DatasetSpec declares a columnar dataset of a group type. Shapes lists the
// accepted shape alternatives; Dims labels their axes.
type DatasetSpec struct {
	Name   string
	Doc    string
	DType  DType
	Dims   [][]string
	Shapes [][]int
}

// SubgroupRef declares a contained group type and its quantity
// ("1" exactly one, "*" zero or more, "+" one or more).
type SubgroupRef struct {
	TypeInc  string
	Quantity string
}

// GroupSpec declares one group type of the namespace.
type GroupSpec struct {
	TypeDef    string
	TypeInc    string
	Doc        string
	Attributes []AttributeSpec
	Datasets   []DatasetSpec
	Groups     []SubgroupRef
}

// NamespaceSpec is the complete declarative schema.
type NamespaceSpec struct {
	Name    string
	Version string
	Doc     string
	Groups  []GroupSpec
}

// Dataset names of the contact table.
const (
	DatasetContactID          = "contact_id"
	DatasetContactShape       = "contact_shape"
	DatasetContactPlaneAxes   = "contact_plane_axes"
	DatasetContactPosition    = "contact_position"
	DatasetDeviceChannelIndex = "device_channel_index"
)

// Attribute names declared on Probe and Shank.
const (
	AttrNDim         = "ndim"
	AttrModelName    = "model_name"
	AttrSerialNumber = "serial_number"
	AttrManufacturer = "manufacturer"
	AttrUnit         = "unit"
	AttrShankID      = "shank_id"
)

// Namespace returns the probe device schema declaration.
func Namespace() NamespaceSpec {
	contactTable := GroupSpec{
		TypeDef: TypeContactTable,
		TypeInc: "DynamicTable",
		Doc:     "Neural probe contacts according to the probeinterface specification",
		Datasets: []DatasetSpec{
			{Name: DatasetContactID, Doc: "unique ID of the contact", DType: DTypeText},
			{Name: DatasetContactShape, Doc: "shape of the contact; e.g. 'circle'", DType: DTypeText},
			{
				Name:   DatasetContactPlaneAxes,
				Doc:    "two in-plane axis vectors per contact",
				DType:  DTypeFloat,
				Dims:   [][]string{{"num_contacts", "v1, v2", "x, y"}, {"num_contacts", "v1, v2", "x, y, z"}},
				Shapes: [][]int{{Wildcard, 2, 2}, {Wildcard, 2, 3}},
			},
			{
				Name:   DatasetContactPosition,
				Doc:    "contact position in probe coordinates",
				DType:  DTypeFloat,
				Dims:   [][]string{{"num_contacts", "x, y"}, {"num_contacts", "x, y, z"}},
				Shapes: [][]int{{Wildcard, 2}, {Wildcard, 3}},
			},
			{Name: DatasetDeviceChannelIndex, Doc: "ID of the channel connected to the contact", DType: DTypeInt},
		},
	}
	shank := GroupSpec{
		TypeDef: TypeShank,
		TypeInc: "Container",
		Doc:     "Neural probe shank according to the probeinterface specification",
		Attributes: []AttributeSpec{
			{Name: AttrShankID, Doc: "ID of the shank in the probe", DType: DTypeText, Required: true},
		},
		Groups: []SubgroupRef{{TypeInc: TypeContactTable, Quantity: "1"}},
	}
	probe := GroupSpec{
		TypeDef: TypeProbe,
		TypeInc: "Device",
		Doc:     "Neural probe device according to the probeinterface specification",
		Attributes: []AttributeSpec{
			{Name: AttrNDim, Doc: "dimension of the probe", DType: DTypeInt, Required: true, Default: 2},
			{Name: AttrModelName, Doc: "model of the probe; e.g. 'Neuropixels 1.0'", DType: DTypeText},
			{Name: AttrSerialNumber, Doc: "serial number of the probe", DType: DTypeText},
			{Name: AttrManufacturer, Doc: "manufacturer of the probe", DType: DTypeText},
			{Name: AttrUnit, Doc: "SI unit used to define the probe; e.g. 'micrometer'", DType: DTypeText, Required: true, Default: "micrometer"},
		},
		Groups: []SubgroupRef{{TypeInc: TypeShank, Quantity: "*"}},
	}
	return NamespaceSpec{
		Name:    NamespaceName,
		Version: NamespaceVersion,
		Doc:     NamespaceDoc,
		Groups:  []GroupSpec{probe, shank, contactTable},
	}
}

// Group returns the group spec with the given type name.
func (n NamespaceSpec) Group(typeDef string) (GroupSpec, bool) {
	for _, g := range n.Groups {
		if g.TypeDef == typeDef {
			return g, true
		}
	}
	return GroupSpec{}, false
}

// Dataset returns the dataset spec with the given name.
func (g GroupSpec) Dataset(name string) (DatasetSpec, bool) {
	for _, d := range g.Datasets {
		if d.Name == name {
			return d, true
		}
	}
	return DatasetSpec{}, false
}

// Attribute returns the attribute spec with the given name.
func (g GroupSpec) Attribute(name string) (AttributeSpec, bool) {
	for _, a := range g.Attributes {
		if a.Name == name {
			return a, true
		}
	}
	return AttributeSpec{}, false
}
