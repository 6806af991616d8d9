package device

import (
	"context"
	"fmt"
)

// ElectrodeRegionRule enforces consistency between a probe record and the
// electrode table rows it references: the region must name one existing row
// per contact, without duplicates.
type ElectrodeRegionRule struct{}

// Name implements Rule.
func (ElectrodeRegionRule) Name() string { return "electrode_region_consistency" }

// Evaluate implements Rule.
func (ElectrodeRegionRule) Evaluate(_ context.Context, view TransactionView, _ []Change) (Result, error) {
	var result Result
	total := view.ElectrodeCount()
	for _, rec := range view.ListProbes() {
		if rec.ElectrodeRegion == nil {
			continue
		}
		if len(rec.ElectrodeRegion) != rec.ContactCount() {
			result.Violations = append(result.Violations, Violation{
				Rule:     ElectrodeRegionRule{}.Name(),
				Severity: SeverityBlock,
				Message:  fmt.Sprintf("electrode region has %d rows for %d contacts", len(rec.ElectrodeRegion), rec.ContactCount()),
				Entity:   EntityProbe,
				EntityID: rec.ID,
			})
			continue
		}
		seen := make(map[int]struct{}, len(rec.ElectrodeRegion))
		for _, idx := range rec.ElectrodeRegion {
			if idx < 0 || idx >= total {
				result.Violations = append(result.Violations, Violation{
					Rule:     ElectrodeRegionRule{}.Name(),
					Severity: SeverityBlock,
					Message:  fmt.Sprintf("electrode region index %d outside table of %d rows", idx, total),
					Entity:   EntityProbe,
					EntityID: rec.ID,
				})
				continue
			}
			if _, dup := seen[idx]; dup {
				result.Violations = append(result.Violations, Violation{
					Rule:     ElectrodeRegionRule{}.Name(),
					Severity: SeverityBlock,
					Message:  fmt.Sprintf("electrode region references row %d twice", idx),
					Entity:   EntityProbe,
					EntityID: rec.ID,
				})
			}
			seen[idx] = struct{}{}
		}
	}
	return result, nil
}
