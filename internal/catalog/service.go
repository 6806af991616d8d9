// Package catalog exposes higher-level transactional operations over the
// probe record store: registration of in-memory probes, reconstruction, and
// archive import/export through a blob store.
package catalog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"probecore/internal/blob"
	"probecore/pkg/convert"
	"probecore/pkg/device"
	"probecore/pkg/probe"
)

// ErrNoBlobStore is returned by archive operations when the service was
// constructed without a blob store.
var ErrNoBlobStore = errors.New("catalog: no blob store configured")

// ErrNotFound is returned when a probe record does not exist.
type ErrNotFound struct {
	ID string
}

func (e ErrNotFound) Error() string { return fmt.Sprintf("probe %s not found", e.ID) }

// Service exposes transactional probe catalog operations.
type Service struct {
	store   device.PersistentStore
	blobs   blob.Store
	logger  Logger
	metrics MetricsRecorder
	nowFn   func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithLogger installs a structured logger.
func WithLogger(l Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetricsRecorder installs a metrics recorder.
func WithMetricsRecorder(m MetricsRecorder) Option {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithBlobStore installs the blob store used for archive import/export.
func WithBlobStore(b blob.Store) Option {
	return func(s *Service) {
		s.blobs = b
	}
}

// NewService constructs a catalog service backed by the supplied store.
func NewService(store device.PersistentStore, opts ...Option) *Service {
	s := &Service{
		store:   store,
		logger:  noopLogger{},
		metrics: noopMetricsRecorder{},
		nowFn:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Store returns the underlying persistence implementation.
func (s *Service) Store() device.PersistentStore { return s.store }

func (s *Service) observe(ctx context.Context, operation string, started time.Time, err error) {
	s.metrics.Observe(ctx, operation, err == nil, s.nowFn().Sub(started))
	if err != nil {
		s.logger.Error(operation+" failed", "error", err)
		return
	}
	s.logger.Debug(operation + " completed")
}

// RegisterProbe converts a probe to its persisted form, appends its contacts
// to the shared electrode table, and stores the record.
func (s *Service) RegisterProbe(ctx context.Context, p *probe.Probe) (device.ProbeRecord, device.Result, error) {
	started := s.nowFn()
	var created device.ProbeRecord
	rec, err := convert.FromProbe(p)
	if err != nil {
		s.observe(ctx, "register_probe", started, err)
		return device.ProbeRecord{}, device.Result{}, err
	}
	res, err := s.store.RunInTransaction(ctx, func(tx device.Transaction) error {
		var txErr error
		created, txErr = createRecord(tx, rec)
		return txErr
	})
	s.observe(ctx, "register_probe", started, err)
	if err != nil {
		return device.ProbeRecord{}, res, err
	}
	s.logger.Info("probe registered", "id", created.ID, "name", created.Name, "contacts", created.ContactCount())
	return created, res, nil
}

// RegisterProbeGroup registers every probe of the group within a single
// transaction, preserving group order.
func (s *Service) RegisterProbeGroup(ctx context.Context, g *probe.ProbeGroup) ([]device.ProbeRecord, device.Result, error) {
	started := s.nowFn()
	recs, err := convert.FromProbeGroup(g)
	if err != nil {
		s.observe(ctx, "register_probe_group", started, err)
		return nil, device.Result{}, err
	}
	created := make([]device.ProbeRecord, 0, len(recs))
	res, err := s.store.RunInTransaction(ctx, func(tx device.Transaction) error {
		for _, rec := range recs {
			stored, txErr := createRecord(tx, rec)
			if txErr != nil {
				return txErr
			}
			created = append(created, stored)
		}
		return nil
	})
	s.observe(ctx, "register_probe_group", started, err)
	if err != nil {
		return nil, res, err
	}
	s.logger.Info("probe group registered", "probes", len(created))
	return created, res, nil
}

// createRecord assigns an id, links the record's contacts into the shared
// electrode table, and stores it.
func createRecord(tx device.Transaction, rec device.ProbeRecord) (device.ProbeRecord, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	rows := make([]device.ElectrodeRow, 0, rec.ContactCount())
	for _, shank := range rec.Shanks {
		for _, row := range shank.Contacts.Rows {
			er := device.ElectrodeRow{GroupName: rec.Name}
			if len(row.ContactPosition) > 0 {
				er.X = row.ContactPosition[0]
			}
			if len(row.ContactPosition) > 1 {
				er.Y = row.ContactPosition[1]
			}
			if len(row.ContactPosition) > 2 {
				er.Z = row.ContactPosition[2]
			}
			rows = append(rows, er)
		}
	}
	rec.ElectrodeRegion = tx.AppendElectrodes(rows)
	return tx.CreateProbe(rec)
}

// GetProbe returns a stored probe record.
func (s *Service) GetProbe(ctx context.Context, id string) (device.ProbeRecord, error) {
	started := s.nowFn()
	rec, ok := s.store.GetProbe(id)
	var err error
	if !ok {
		err = ErrNotFound{ID: id}
	}
	s.observe(ctx, "get_probe", started, err)
	return rec, err
}

// ListProbes returns all stored probe records.
func (s *Service) ListProbes(ctx context.Context) []device.ProbeRecord {
	started := s.nowFn()
	recs := s.store.ListProbes()
	s.observe(ctx, "list_probes", started, nil)
	return recs
}

// DeleteProbe removes a stored probe record.
func (s *Service) DeleteProbe(ctx context.Context, id string) (device.Result, error) {
	started := s.nowFn()
	res, err := s.store.RunInTransaction(ctx, func(tx device.Transaction) error {
		return tx.DeleteProbe(id)
	})
	s.observe(ctx, "delete_probe", started, err)
	return res, err
}

// BuildProbe reconstructs the in-memory probe from a stored record.
func (s *Service) BuildProbe(ctx context.Context, id string) (*probe.Probe, error) {
	started := s.nowFn()
	rec, ok := s.store.GetProbe(id)
	if !ok {
		err := ErrNotFound{ID: id}
		s.observe(ctx, "build_probe", started, err)
		return nil, err
	}
	p, err := convert.ToProbeInterface(rec)
	s.observe(ctx, "build_probe", started, err)
	return p, err
}

// ExportArchive reconstructs every stored probe, serialises the group in the
// probeinterface JSON format, and writes it to the blob store under key.
func (s *Service) ExportArchive(ctx context.Context, key string) (blob.Info, error) {
	started := s.nowFn()
	info, err := s.exportArchive(ctx, key)
	s.observe(ctx, "export_archive", started, err)
	if err == nil {
		s.logger.Info("archive exported", "key", info.Key, "bytes", info.Size)
	}
	return info, err
}

func (s *Service) exportArchive(ctx context.Context, key string) (blob.Info, error) {
	if s.blobs == nil {
		return blob.Info{}, ErrNoBlobStore
	}
	group := probe.NewGroup()
	for _, rec := range s.store.ListProbes() {
		p, err := convert.ToProbeInterface(rec)
		if err != nil {
			return blob.Info{}, fmt.Errorf("rebuild probe %s: %w", rec.ID, err)
		}
		if err := group.AddProbe(p); err != nil {
			return blob.Info{}, err
		}
	}
	var buf bytes.Buffer
	if err := probe.WriteGroup(&buf, group); err != nil {
		return blob.Info{}, err
	}
	return s.blobs.Put(ctx, key, &buf, blob.PutOptions{
		ContentType: "application/json",
		Metadata:    map[string]string{"probes": fmt.Sprintf("%d", group.ProbeCount())},
	})
}

// ImportArchive reads a probeinterface JSON archive from the blob store and
// registers every probe it contains.
func (s *Service) ImportArchive(ctx context.Context, key string) ([]device.ProbeRecord, device.Result, error) {
	started := s.nowFn()
	if s.blobs == nil {
		s.observe(ctx, "import_archive", started, ErrNoBlobStore)
		return nil, device.Result{}, ErrNoBlobStore
	}
	_, rc, err := s.blobs.Get(ctx, key)
	if err != nil {
		s.observe(ctx, "import_archive", started, err)
		return nil, device.Result{}, err
	}
	group, err := probe.ReadGroup(rc)
	closeErr := rc.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		s.observe(ctx, "import_archive", started, err)
		return nil, device.Result{}, err
	}
	created, res, err := s.RegisterProbeGroup(ctx, group)
	s.observe(ctx, "import_archive", started, err)
	return created, res, err
}
