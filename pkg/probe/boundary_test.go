package probe_test

import (
	"testing"

	"probecore/testutil"
)

// The in-memory probe model stays free of persistence and infrastructure
// concerns: record conversion lives in pkg/convert, storage under internal/.
func TestProbePackageImportBoundaries(t *testing.T) {
	testutil.AssertNoDirectImports(t, ".", testutil.DeviceImportForbidden, "probe model must not import the record package")
	testutil.AssertNoDirectImports(t, ".", testutil.InternalImportForbidden, "probe model must not import internal packages")
}

func TestProbePackageTransitiveBoundaries(t *testing.T) {
	testutil.AssertNoTransitiveDependency(t, ".", testutil.InternalImportForbidden, "probe model must stay infrastructure-free")
}
