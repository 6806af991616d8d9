package schema

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// namespaceDocument is the YAML wire form of a NamespaceSpec. Wildcard
// dimensions are encoded as -1.
type namespaceDocument struct {
	Namespace namespaceHeader `yaml:"namespace"`
	Groups    []groupDocument `yaml:"groups"`
}

type namespaceHeader struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
	Doc     string `yaml:"doc"`
}

type groupDocument struct {
	TypeDef    string              `yaml:"type_def"`
	TypeInc    string              `yaml:"type_inc,omitempty"`
	Doc        string              `yaml:"doc,omitempty"`
	Attributes []attributeDocument `yaml:"attributes,omitempty"`
	Datasets   []datasetDocument   `yaml:"datasets,omitempty"`
	Groups     []subgroupDocument  `yaml:"groups,omitempty"`
}

type attributeDocument struct {
	Name     string `yaml:"name"`
	Doc      string `yaml:"doc,omitempty"`
	DType    string `yaml:"dtype"`
	Required bool   `yaml:"required,omitempty"`
	Default  any    `yaml:"default_value,omitempty"`
}

type datasetDocument struct {
	Name   string     `yaml:"name"`
	Doc    string     `yaml:"doc,omitempty"`
	DType  string     `yaml:"dtype"`
	Dims   [][]string `yaml:"dims,omitempty"`
	Shapes [][]int    `yaml:"shapes,omitempty"`
}

type subgroupDocument struct {
	TypeInc  string `yaml:"type_inc"`
	Quantity string `yaml:"quantity"`
}

func toDocument(n NamespaceSpec) namespaceDocument {
	doc := namespaceDocument{
		Namespace: namespaceHeader{Name: n.Name, Version: n.Version, Doc: n.Doc},
	}
	for _, g := range n.Groups {
		gd := groupDocument{TypeDef: g.TypeDef, TypeInc: g.TypeInc, Doc: g.Doc}
		for _, a := range g.Attributes {
			gd.Attributes = append(gd.Attributes, attributeDocument{
				Name: a.Name, Doc: a.Doc, DType: string(a.DType), Required: a.Required, Default: a.Default,
			})
		}
		for _, d := range g.Datasets {
			gd.Datasets = append(gd.Datasets, datasetDocument{
				Name: d.Name, Doc: d.Doc, DType: string(d.DType), Dims: d.Dims, Shapes: d.Shapes,
			})
		}
		for _, s := range g.Groups {
			gd.Groups = append(gd.Groups, subgroupDocument{TypeInc: s.TypeInc, Quantity: s.Quantity})
		}
		doc.Groups = append(doc.Groups, gd)
	}
	return doc
}

// EncodeYAML writes the namespace declaration as YAML.
func EncodeYAML(w io.Writer, n NamespaceSpec) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(toDocument(n)); err != nil {
		return fmt.Errorf("encode namespace: %w", err)
	}
	return enc.Close()
}

// DecodeYAML parses a YAML namespace declaration.
func DecodeYAML(r io.Reader) (NamespaceSpec, error) {
	var doc namespaceDocument
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return NamespaceSpec{}, fmt.Errorf("decode namespace: %w", err)
	}
	n := NamespaceSpec{
		Name:    doc.Namespace.Name,
		Version: doc.Namespace.Version,
		Doc:     doc.Namespace.Doc,
	}
	for _, gd := range doc.Groups {
		g := GroupSpec{TypeDef: gd.TypeDef, TypeInc: gd.TypeInc, Doc: gd.Doc}
		for _, a := range gd.Attributes {
			g.Attributes = append(g.Attributes, AttributeSpec{
				Name: a.Name, Doc: a.Doc, DType: DType(a.DType), Required: a.Required, Default: a.Default,
			})
		}
		for _, d := range gd.Datasets {
			g.Datasets = append(g.Datasets, DatasetSpec{
				Name: d.Name, Doc: d.Doc, DType: DType(d.DType), Dims: d.Dims, Shapes: d.Shapes,
			})
		}
		for _, s := range gd.Groups {
			g.Groups = append(g.Groups, SubgroupRef{TypeInc: s.TypeInc, Quantity: s.Quantity})
		}
		n.Groups = append(n.Groups, g)
	}
	return n, nil
}
