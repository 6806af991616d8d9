// Package probeinterface embeds the canonical namespace declaration for
// runtime distribution.
package probeinterface

import (
	"bytes"
	_ "embed"
	"sync"

	"gopkg.in/yaml.v3"

	"probecore/pkg/device/schema"
)

// Canonical namespace YAML embedded for runtime metadata exposure.
//
//go:embed namespace.yaml
var namespaceYAML []byte

// Spec returns a defensive copy of the embedded namespace YAML.
func Spec() []byte {
	return append([]byte(nil), namespaceYAML...)
}

type header struct {
	Namespace struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"namespace"`
}

var (
	verOnce sync.Once
	verStr  string
	verErr  error

	nsOnce sync.Once
	nsSpec schema.NamespaceSpec
	nsErr  error
)

// Version returns the namespace version declared in the embedded YAML.
func Version() (string, error) {
	verOnce.Do(func() {
		var h header
		verErr = yaml.Unmarshal(namespaceYAML, &h)
		if verErr == nil {
			verStr = h.Namespace.Version
		}
	})
	return verStr, verErr
}

// Namespace parses the embedded YAML into the declarative schema form.
func Namespace() (schema.NamespaceSpec, error) {
	nsOnce.Do(func() {
		nsSpec, nsErr = schema.DecodeYAML(bytes.NewReader(namespaceYAML))
	})
	return nsSpec, nsErr
}
