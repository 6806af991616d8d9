package convert

import "errors"

// Sentinel errors reported by the conversion entry points. Geometry problems
// surface as the schema package's ErrMissingField / ErrDimensionMismatch.
var (
	// ErrUnsupportedType indicates a conversion input that is neither a
	// Probe nor a ProbeGroup.
	ErrUnsupportedType = errors.New("convert: unsupported input type")
	// ErrUnknownUnit indicates an SI unit with no persisted counterpart.
	ErrUnknownUnit = errors.New("convert: unknown unit")
)
