package device

import "context"

// Transaction exposes the catalog operations that a persistence
// implementation must support within an atomic scope.
type Transaction interface {
	Snapshot() TransactionView
	CreateProbe(ProbeRecord) (ProbeRecord, error)
	UpdateProbe(id string, mutator func(*ProbeRecord) error) (ProbeRecord, error)
	DeleteProbe(id string) error
	AppendElectrodes(rows []ElectrodeRow) []int
	FindProbe(id string) (ProbeRecord, bool)
}

// TransactionView provides read-only access to snapshot data for rules.
type TransactionView interface {
	ListProbes() []ProbeRecord
	FindProbe(id string) (ProbeRecord, bool)
	Electrodes() []ElectrodeRow
	ElectrodeCount() int
}

// PersistentStore is a minimal abstraction over durable backends. It mirrors
// the subset of store capabilities used directly by higher layers.
type PersistentStore interface {
	RunInTransaction(ctx context.Context, fn func(Transaction) error) (Result, error)
	View(ctx context.Context, fn func(TransactionView) error) error
	GetProbe(id string) (ProbeRecord, bool)
	ListProbes() []ProbeRecord
	Electrodes() []ElectrodeRow
}
