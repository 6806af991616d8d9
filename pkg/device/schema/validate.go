package schema

import (
	"errors"
	"fmt"

	"probecore/pkg/device"
)

// Sentinel errors forming the closed validation error set.
var (
	// ErrMissingField indicates a required schema field is absent or empty.
	ErrMissingField = errors.New("schema: missing required field")
	// ErrDimensionMismatch indicates array dimensions inconsistent with the
	// declared shape or with a linked table.
	ErrDimensionMismatch = errors.New("schema: dimension mismatch")
)

var validShapes = map[string]struct{}{"circle": {}, "square": {}, "rect": {}}

var validRecordUnits = map[string]struct{}{
	device.UnitMicrometer: {},
	device.UnitMillimeter: {},
	device.UnitMeter:      {},
}

// requiredShapeParams maps each contact shape to the parameters it needs
// when shape parameters are recorded. The columns are dynamic: a record may
// omit them entirely, matching the in-memory model.
var requiredShapeParams = map[string][]string{
	"circle": {"radius"},
	"square": {"width"},
	"rect":   {"width", "height"},
}

// ValidateRecord checks a persisted probe record against the namespace
// declaration: required attributes present, dimensionality within the
// declared shape alternatives, and per-row geometry consistent.
func ValidateRecord(rec device.ProbeRecord) error {
	if rec.Name == "" {
		return fmt.Errorf("%w: probe name", ErrMissingField)
	}
	if rec.NDim != 2 && rec.NDim != 3 {
		return fmt.Errorf("%w: ndim %d outside declared shapes", ErrDimensionMismatch, rec.NDim)
	}
	if rec.Unit == "" {
		return fmt.Errorf("%w: %s", ErrMissingField, AttrUnit)
	}
	if _, ok := validRecordUnits[rec.Unit]; !ok {
		return fmt.Errorf("%w: unknown unit %q", ErrMissingField, rec.Unit)
	}
	if len(rec.Shanks) == 0 {
		return fmt.Errorf("%w: probe has no shanks", ErrMissingField)
	}
	for si, shank := range rec.Shanks {
		if shank.ShankID == "" {
			return fmt.Errorf("%w: %s on shank %d", ErrMissingField, AttrShankID, si)
		}
		if len(shank.Contacts.Rows) == 0 {
			return fmt.Errorf("%w: shank %q has no contacts", ErrMissingField, shank.ShankID)
		}
		for ri, row := range shank.Contacts.Rows {
			if err := validateRow(rec.NDim, shank.ShankID, ri, row); err != nil {
				return err
			}
		}
	}
	if rec.ElectrodeRegion != nil && len(rec.ElectrodeRegion) != rec.ContactCount() {
		return fmt.Errorf("%w: electrode region has %d rows for %d contacts", ErrDimensionMismatch, len(rec.ElectrodeRegion), rec.ContactCount())
	}
	return nil
}

func validateRow(ndim int, shankID string, ri int, row device.ContactRow) error {
	if row.ContactShape == "" {
		return fmt.Errorf("%w: %s on shank %q row %d", ErrMissingField, DatasetContactShape, shankID, ri)
	}
	if _, ok := validShapes[row.ContactShape]; !ok {
		return fmt.Errorf("%w: unknown contact shape %q", ErrMissingField, row.ContactShape)
	}
	if len(row.ContactPosition) == 0 {
		return fmt.Errorf("%w: %s on shank %q row %d", ErrMissingField, DatasetContactPosition, shankID, ri)
	}
	if len(row.ContactPosition) != ndim {
		return fmt.Errorf("%w: position has %d components, want %d", ErrDimensionMismatch, len(row.ContactPosition), ndim)
	}
	if row.ContactPlaneAxes != nil {
		if len(row.ContactPlaneAxes) != 2 {
			return fmt.Errorf("%w: plane axes must hold 2 vectors, got %d", ErrDimensionMismatch, len(row.ContactPlaneAxes))
		}
		for _, axis := range row.ContactPlaneAxes {
			if len(axis) != ndim {
				return fmt.Errorf("%w: plane axis has %d components, want %d", ErrDimensionMismatch, len(axis), ndim)
			}
		}
	}
	if row.ShapeParams != nil {
		for _, param := range requiredShapeParams[row.ContactShape] {
			if _, ok := row.ShapeParams[param]; !ok {
				return fmt.Errorf("%w: shape param %q for %s contact", ErrMissingField, param, row.ContactShape)
			}
		}
	}
	return nil
}
