package catalog

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"probecore/internal/blob"
	"probecore/internal/persistence/memory"
	"probecore/pkg/convert"
	"probecore/pkg/device"
	"probecore/pkg/probe"
)

type captureMetricsRecorder struct {
	mu   sync.Mutex
	seen map[string][]bool
}

func (c *captureMetricsRecorder) Observe(_ context.Context, op string, success bool, _ time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.seen == nil {
		c.seen = make(map[string][]bool)
	}
	c.seen[op] = append(c.seen[op], success)
}

func (c *captureMetricsRecorder) has(op string, success bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, ok := range c.seen[op] {
		if ok == success {
			return true
		}
	}
	return false
}

func newTestService(opts ...Option) *Service {
	store := memory.NewStore(device.DefaultRulesEngine())
	return NewService(store, opts...)
}

func TestRegisterProbeStoresRecordAndElectrodes(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	p := probe.GenerateLinearProbe(4, 10)
	p.Annotate(convert.AnnotationName, "Neuropixels")

	created, _, err := svc.RegisterProbe(ctx, p)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if created.ID == "" {
		t.Fatalf("expected generated id")
	}
	if created.Name != "Neuropixels" {
		t.Fatalf("unexpected name %q", created.Name)
	}
	if !reflect.DeepEqual(created.ElectrodeRegion, []int{0, 1, 2, 3}) {
		t.Fatalf("unexpected electrode region %v", created.ElectrodeRegion)
	}
	rows := svc.Store().Electrodes()
	if len(rows) != 4 {
		t.Fatalf("expected 4 electrode rows, got %d", len(rows))
	}
	for i, row := range rows {
		if row.GroupName != "Neuropixels" {
			t.Fatalf("row %d: unexpected group %q", i, row.GroupName)
		}
	}
}

func TestRegisterProbeRejectsInvalidInput(t *testing.T) {
	svc := newTestService()
	if _, _, err := svc.RegisterProbe(context.Background(), nil); err == nil {
		t.Fatalf("expected error for nil probe")
	}
	if len(svc.ListProbes(context.Background())) != 0 {
		t.Fatalf("nothing should be stored")
	}
}

func TestRegisterProbeGroupSingleTransaction(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	g := probe.NewGroup()
	first := probe.GenerateLinearProbe(2, 10)
	first.Annotate(convert.AnnotationName, "first")
	second := probe.GenerateMultiShank(2, 3, 25)
	second.Annotate(convert.AnnotationName, "second")
	if err := g.AddProbe(first); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := g.AddProbe(second); err != nil {
		t.Fatalf("add: %v", err)
	}

	created, _, err := svc.RegisterProbeGroup(ctx, g)
	if err != nil {
		t.Fatalf("register group: %v", err)
	}
	if len(created) != 2 || created[0].Name != "first" || created[1].Name != "second" {
		t.Fatalf("unexpected records %+v", created)
	}
	if got := len(svc.Store().Electrodes()); got != 8 {
		t.Fatalf("expected 8 shared electrode rows, got %d", got)
	}
	// electrode regions must partition the shared table
	if !reflect.DeepEqual(created[0].ElectrodeRegion, []int{0, 1}) {
		t.Fatalf("first region %v", created[0].ElectrodeRegion)
	}
	if !reflect.DeepEqual(created[1].ElectrodeRegion, []int{2, 3, 4, 5, 6, 7}) {
		t.Fatalf("second region %v", created[1].ElectrodeRegion)
	}
}

func TestBuildProbeRoundTrip(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	src := probe.GenerateMultiShank(2, 2, 20)
	src.Annotate(convert.AnnotationName, "roundtrip")
	if err := src.SetDeviceChannelIndices([]int{3, 2, 1, 0}); err != nil {
		t.Fatalf("set channels: %v", err)
	}
	created, _, err := svc.RegisterProbe(ctx, src)
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	got, err := svc.BuildProbe(ctx, created.ID)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if !reflect.DeepEqual(got.ContactPositions(), src.ContactPositions()) {
		t.Fatalf("positions differ after rebuild")
	}
	if !reflect.DeepEqual(got.DeviceChannelIndices(), []int{3, 2, 1, 0}) {
		t.Fatalf("channels differ: %v", got.DeviceChannelIndices())
	}
}

func TestGetAndDeleteProbe(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	created, _, err := svc.RegisterProbe(ctx, probe.GenerateLinearProbe(2, 10))
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := svc.GetProbe(ctx, created.ID); err != nil {
		t.Fatalf("get: %v", err)
	}
	var notFound ErrNotFound
	if _, err := svc.GetProbe(ctx, "missing"); !errors.As(err, &notFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := svc.DeleteProbe(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(svc.ListProbes(ctx)) != 0 {
		t.Fatalf("probe should be gone")
	}
}

func TestArchiveExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	blobs := blob.NewMemory()
	src := newTestService(WithBlobStore(blobs))

	p := probe.GenerateLinearProbe(3, 15)
	p.Annotate(convert.AnnotationName, "archived")
	if _, _, err := src.RegisterProbe(ctx, p); err != nil {
		t.Fatalf("register: %v", err)
	}

	info, err := src.ExportArchive(ctx, "archives/probes.json")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if info.Size == 0 || info.ContentType != "application/json" {
		t.Fatalf("unexpected archive info %+v", info)
	}

	dst := newTestService(WithBlobStore(blobs))
	created, _, err := dst.ImportArchive(ctx, "archives/probes.json")
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if len(created) != 1 || created[0].Name != "archived" {
		t.Fatalf("unexpected imported records %+v", created)
	}
	rebuilt, err := dst.BuildProbe(ctx, created[0].ID)
	if err != nil {
		t.Fatalf("rebuild: %v", err)
	}
	if !reflect.DeepEqual(rebuilt.ContactPositions(), p.ContactPositions()) {
		t.Fatalf("positions differ after archive round trip")
	}
}

func TestExportArchivePreservesGroupOrder(t *testing.T) {
	ctx := context.Background()
	blobs := blob.NewMemory()
	svc := newTestService(WithBlobStore(blobs))

	names := []string{"alpha", "beta", "gamma", "delta", "epsilon"}
	g := probe.NewGroup()
	for _, name := range names {
		p := probe.GenerateLinearProbe(2, 10)
		p.Annotate(convert.AnnotationName, name)
		if err := g.AddProbe(p); err != nil {
			t.Fatalf("add %s: %v", name, err)
		}
	}
	if _, _, err := svc.RegisterProbeGroup(ctx, g); err != nil {
		t.Fatalf("register group: %v", err)
	}

	if _, err := svc.ExportArchive(ctx, "archives/ordered.json"); err != nil {
		t.Fatalf("export: %v", err)
	}
	_, rc, err := blobs.Get(ctx, "archives/ordered.json")
	if err != nil {
		t.Fatalf("get archive: %v", err)
	}
	defer rc.Close()
	decoded, err := probe.ReadGroup(rc)
	if err != nil {
		t.Fatalf("read archive: %v", err)
	}
	if decoded.ProbeCount() != len(names) {
		t.Fatalf("expected %d probes, got %d", len(names), decoded.ProbeCount())
	}
	for i, p := range decoded.Probes() {
		if name, _ := p.Annotation(convert.AnnotationName); name != names[i] {
			t.Fatalf("position %d: expected %q, got %q", i, names[i], name)
		}
	}
}

func TestArchiveOperationsRequireBlobStore(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	if _, err := svc.ExportArchive(ctx, "k"); !errors.Is(err, ErrNoBlobStore) {
		t.Fatalf("expected ErrNoBlobStore, got %v", err)
	}
	if _, _, err := svc.ImportArchive(ctx, "k"); !errors.Is(err, ErrNoBlobStore) {
		t.Fatalf("expected ErrNoBlobStore, got %v", err)
	}
}

func TestImportArchiveMissingKey(t *testing.T) {
	svc := newTestService(WithBlobStore(blob.NewMemory()))
	if _, _, err := svc.ImportArchive(context.Background(), "missing"); err == nil {
		t.Fatalf("expected error for missing archive")
	}
}

func TestServiceEmitsMetrics(t *testing.T) {
	metrics := &captureMetricsRecorder{}
	svc := newTestService(WithMetricsRecorder(metrics))
	ctx := context.Background()

	if _, _, err := svc.RegisterProbe(ctx, probe.GenerateLinearProbe(2, 10)); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := svc.GetProbe(ctx, "missing"); err == nil {
		t.Fatalf("expected miss")
	}
	if !metrics.has("register_probe", true) {
		t.Fatalf("missing success observation for register_probe: %+v", metrics.seen)
	}
	if !metrics.has("get_probe", false) {
		t.Fatalf("missing error observation for get_probe: %+v", metrics.seen)
	}
}
