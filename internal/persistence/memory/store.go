// Package memory provides an in-memory implementation of the catalog
// persistence store used for tests and ephemeral environments.
package memory

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"probecore/pkg/device"
)

// Compile-time contract assertion ensuring memory.Store adheres to the
// device persistence interfaces.
var _ device.PersistentStore = (*Store)(nil)

type state struct {
	probes     map[string]device.ProbeRecord
	electrodes []device.ElectrodeRow
}

func newState() state {
	return state{probes: make(map[string]device.ProbeRecord)}
}

func (s state) clone() state {
	out := newState()
	for id, rec := range s.probes {
		out.probes[id] = device.CloneRecord(rec)
	}
	out.electrodes = append([]device.ElectrodeRow(nil), s.electrodes...)
	return out
}

// Snapshot is the serialisable form of the store state used by durable
// backends.
type Snapshot struct {
	Probes     map[string]device.ProbeRecord `json:"probes"`
	Electrodes []device.ElectrodeRow         `json:"electrodes"`
}

// Store keeps catalog state in memory behind a mutex with clone-on-write
// transactions.
type Store struct {
	mu     sync.RWMutex
	state  state
	engine *device.RulesEngine
	nowFn  func() time.Time
}

// NewStore constructs an empty in-memory store evaluating the provided rules
// engine at commit time (nil disables rule evaluation).
func NewStore(engine *device.RulesEngine) *Store {
	return &Store{state: newState(), engine: engine, nowFn: func() time.Time { return time.Now().UTC() }}
}

// SetClock overrides the transaction timestamp source (tests).
func (s *Store) SetClock(now func() time.Time) {
	if now != nil {
		s.nowFn = now
	}
}

func newID() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic(fmt.Errorf("memory store id generation: %w", err))
	}
	return hex.EncodeToString(b[:])
}

// RunInTransaction executes fn within a transactional copy of the store
// state, evaluates rules, and commits unless blocked.
func (s *Store) RunInTransaction(ctx context.Context, fn func(tx device.Transaction) error) (device.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &transaction{state: s.state.clone(), now: s.nowFn()}
	if err := fn(tx); err != nil {
		return device.Result{}, err
	}

	var result device.Result
	if s.engine != nil {
		view := &view{state: &tx.state}
		res, err := s.engine.Evaluate(ctx, view, tx.changes)
		if err != nil {
			return device.Result{}, err
		}
		result = res
		if res.HasBlocking() {
			return res, device.RuleViolationError{Result: res}
		}
	}

	s.state = tx.state
	return result, nil
}

// View executes fn against a read-only snapshot of the store state.
func (s *Store) View(_ context.Context, fn func(device.TransactionView) error) error {
	s.mu.RLock()
	snapshot := s.state.clone()
	s.mu.RUnlock()
	return fn(&view{state: &snapshot})
}

// GetProbe returns a probe record by id.
func (s *Store) GetProbe(id string) (device.ProbeRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.state.probes[id]
	if !ok {
		return device.ProbeRecord{}, false
	}
	return device.CloneRecord(rec), true
}

// ListProbes returns all probe records ordered by creation time, then by the
// first electrode region index, then id.
func (s *Store) ListProbes() []device.ProbeRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listProbes(&s.state)
}

// Electrodes returns a copy of the shared electrode table rows.
func (s *Store) Electrodes() []device.ElectrodeRow {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]device.ElectrodeRow(nil), s.state.electrodes...)
}

// ExportState returns a serialisable snapshot of the current state.
func (s *Store) ExportState() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := Snapshot{Probes: make(map[string]device.ProbeRecord, len(s.state.probes))}
	for id, rec := range s.state.probes {
		snap.Probes[id] = device.CloneRecord(rec)
	}
	snap.Electrodes = append([]device.ElectrodeRow(nil), s.state.electrodes...)
	return snap
}

// ImportState replaces the store state with the provided snapshot.
func (s *Store) ImportState(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := newState()
	for id, rec := range snap.Probes {
		st.probes[id] = device.CloneRecord(rec)
	}
	st.electrodes = append([]device.ElectrodeRow(nil), snap.Electrodes...)
	s.state = st
}

func listProbes(st *state) []device.ProbeRecord {
	out := make([]device.ProbeRecord, 0, len(st.probes))
	for _, rec := range st.probes {
		out = append(out, device.CloneRecord(rec))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		// Records of one transaction share a timestamp; the electrode table
		// is append-only, so region starts reproduce insertion order.
		if ri, rj := regionStart(out[i]), regionStart(out[j]); ri != rj {
			return ri < rj
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func regionStart(rec device.ProbeRecord) int {
	if len(rec.ElectrodeRegion) == 0 {
		return math.MaxInt
	}
	return rec.ElectrodeRegion[0]
}

type transaction struct {
	state   state
	now     time.Time
	changes []device.Change
}

var _ device.Transaction = (*transaction)(nil)

// Snapshot returns a read-only view over the transactional state.
func (tx *transaction) Snapshot() device.TransactionView {
	return &view{state: &tx.state}
}

// CreateProbe stores a new probe record, assigning id and timestamps when
// absent.
func (tx *transaction) CreateProbe(rec device.ProbeRecord) (device.ProbeRecord, error) {
	if rec.ID == "" {
		rec.ID = newID()
	}
	if _, exists := tx.state.probes[rec.ID]; exists {
		return device.ProbeRecord{}, fmt.Errorf("probe %s already exists", rec.ID)
	}
	rec.CreatedAt = tx.now
	rec.UpdatedAt = tx.now
	stored := device.CloneRecord(rec)
	tx.state.probes[rec.ID] = stored
	tx.changes = append(tx.changes, device.Change{Entity: device.EntityProbe, Action: device.ActionCreate, After: device.CloneRecord(stored)})
	return device.CloneRecord(stored), nil
}

// UpdateProbe applies mutator to an existing record.
func (tx *transaction) UpdateProbe(id string, mutator func(*device.ProbeRecord) error) (device.ProbeRecord, error) {
	current, ok := tx.state.probes[id]
	if !ok {
		return device.ProbeRecord{}, fmt.Errorf("probe %s not found", id)
	}
	before := device.CloneRecord(current)
	updated := device.CloneRecord(current)
	if err := mutator(&updated); err != nil {
		return device.ProbeRecord{}, err
	}
	updated.ID = id
	updated.CreatedAt = current.CreatedAt
	updated.UpdatedAt = tx.now
	tx.state.probes[id] = device.CloneRecord(updated)
	tx.changes = append(tx.changes, device.Change{Entity: device.EntityProbe, Action: device.ActionUpdate, Before: before, After: device.CloneRecord(updated)})
	return updated, nil
}

// DeleteProbe removes a record.
func (tx *transaction) DeleteProbe(id string) error {
	current, ok := tx.state.probes[id]
	if !ok {
		return fmt.Errorf("probe %s not found", id)
	}
	delete(tx.state.probes, id)
	tx.changes = append(tx.changes, device.Change{Entity: device.EntityProbe, Action: device.ActionDelete, Before: device.CloneRecord(current)})
	return nil
}

// AppendElectrodes adds rows to the shared electrode table and returns their
// indices.
func (tx *transaction) AppendElectrodes(rows []device.ElectrodeRow) []int {
	indices := make([]int, len(rows))
	for i, row := range rows {
		indices[i] = len(tx.state.electrodes)
		tx.state.electrodes = append(tx.state.electrodes, row)
	}
	if len(rows) > 0 {
		tx.changes = append(tx.changes, device.Change{Entity: device.EntityElectrode, Action: device.ActionCreate, After: len(rows)})
	}
	return indices
}

// FindProbe exposes record lookup within the transaction scope.
func (tx *transaction) FindProbe(id string) (device.ProbeRecord, bool) {
	rec, ok := tx.state.probes[id]
	if !ok {
		return device.ProbeRecord{}, false
	}
	return device.CloneRecord(rec), true
}

type view struct {
	state *state
}

var _ device.TransactionView = (*view)(nil)

func (v *view) ListProbes() []device.ProbeRecord { return listProbes(v.state) }

func (v *view) FindProbe(id string) (device.ProbeRecord, bool) {
	rec, ok := v.state.probes[id]
	if !ok {
		return device.ProbeRecord{}, false
	}
	return device.CloneRecord(rec), true
}

func (v *view) Electrodes() []device.ElectrodeRow {
	return append([]device.ElectrodeRow(nil), v.state.electrodes...)
}

func (v *view) ElectrodeCount() int { return len(v.state.electrodes) }
