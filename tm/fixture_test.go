package tm_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	octeontm "github.com/kmonendra/octeon-tm"
	"github.com/kmonendra/octeon-tm/device"
	"github.com/kmonendra/octeon-tm/roc/sim"
	"github.com/kmonendra/octeon-tm/store"
	"github.com/kmonendra/octeon-tm/store/sqlite"
	"github.com/kmonendra/octeon-tm/tm"
)

// testLogger returns a logger for tests. By default it discards all
// output. Set OCTEON_TM_TEST_VERBOSE=1 to enable logging.
func testLogger() *slog.Logger {
	if os.Getenv("OCTEON_TM_TEST_VERBOSE") != "" {
		return slog.New(slog.NewTextHandler(os.Stderr, nil))
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const testHwIf = uint32(1)

// testFixture provides access to all components for verification.
type testFixture struct {
	Ops   octeontm.System
	Nix   *sim.Nix
	Store *failingStore
	t     *testing.T
}

// newTestFixture creates a manager over one simulated port with the
// given TX queue count.
func newTestFixture(t *testing.T, txQueues uint16) *testFixture {
	t.Helper()

	st, err := sqlite.NewInMemory(context.Background(), testLogger())
	require.NoError(t, err, "failed to create store")
	t.Cleanup(func() { st.Close() })
	fs := &failingStore{Store: st}

	nix := sim.New("octeon-test", testLogger())
	registry := device.NewRegistry()
	port := &device.Port{
		HwIfIndex: testHwIf,
		Intf:      device.PortIntf{NumTxQueues: txQueues},
		Dev:       &device.Device{Name: "octeon-test", Nix: nix},
	}
	require.NoError(t, registry.Attach(port))

	mgr := tm.New(registry, fs, testLogger())
	return &testFixture{
		Ops:   mgr.Ops(),
		Nix:   nix,
		Store: fs,
		t:     t,
	}
}

// Node IDs used by BuildHierarchy.
const (
	rootNodeID = uint32(1)
	midNodeID  = uint32(10)
	leafBase   = uint32(100)
)

// AddRoot registers the root node.
func (f *testFixture) AddRoot() {
	f.t.Helper()
	err := f.Ops.NodeAdd(context.Background(), testHwIf, rootNodeID,
		octeontm.InvalidNodeID, 0, 1, octeontm.LevelRoot, octeontm.NodeParams{
			ShaperProfileID: octeontm.ShaperProfileNone,
		})
	require.NoError(f.t, err, "root node add should succeed")
}

// BuildHierarchy registers root, one mid node, and leaves leaf nodes.
// Leaf node IDs are leafBase, leafBase+1, and so on.
func (f *testFixture) BuildHierarchy(leaves int) {
	f.t.Helper()
	f.AddRoot()
	err := f.Ops.NodeAdd(context.Background(), testHwIf, midNodeID,
		rootNodeID, 0, 1, 1, octeontm.NodeParams{
			ShaperProfileID: octeontm.ShaperProfileNone,
		})
	require.NoError(f.t, err, "mid node add should succeed")
	for i := 0; i < leaves; i++ {
		err := f.Ops.NodeAdd(context.Background(), testHwIf, leafBase+uint32(i),
			midNodeID, 0, 1, 2, octeontm.NodeParams{
				ShaperProfileID: octeontm.ShaperProfileNone,
			})
		require.NoError(f.t, err, "leaf node add should succeed")
	}
}

// Commit builds a sufficient hierarchy and starts the TM.
func (f *testFixture) Commit(leaves int) {
	f.t.Helper()
	f.BuildHierarchy(leaves)
	require.NoError(f.t, f.Ops.StartTM(context.Background(), testHwIf), "start should succeed")
}

// requireInternal asserts that err is the opaque internal error
// carrying the given taxonomy kind.
func requireInternal(t *testing.T, err, kind error) {
	t.Helper()
	require.Error(t, err)
	require.ErrorIs(t, err, octeontm.ErrInternal, "every failure surfaces as internal")
	require.ErrorIs(t, err, kind, "expected taxonomy kind %v, got %v", kind, err)
}

// failingStore wraps a real store and fails selected writes on demand.
type failingStore struct {
	store.Store
	failSaveNode   bool
	failSaveShaper bool
	failSetState   bool
}

var errStoreDown = errors.New("store unavailable")

func (f *failingStore) SaveNode(ctx context.Context, rec store.NodeRecord) error {
	if f.failSaveNode {
		return errStoreDown
	}
	return f.Store.SaveNode(ctx, rec)
}

func (f *failingStore) SaveShaper(ctx context.Context, rec store.ShaperRecord) error {
	if f.failSaveShaper {
		return errStoreDown
	}
	return f.Store.SaveShaper(ctx, rec)
}

func (f *failingStore) SetHierarchyState(ctx context.Context, hwIf uint32, state store.HierarchyState) error {
	if f.failSetState {
		return errStoreDown
	}
	return f.Store.SetHierarchyState(ctx, hwIf, state)
}
