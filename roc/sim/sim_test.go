package sim_test

import (
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kmonendra/octeon-tm/roc"
	"github.com/kmonendra/octeon-tm/roc/sim"
)

func testLogger() *slog.Logger {
	if os.Getenv("OCTEON_TM_TEST_VERBOSE") != "" {
		return slog.New(slog.NewTextHandler(os.Stderr, nil))
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const invalidID = uint32(0xFFFFFFFF)

func node(id, parent, lvl uint32) *roc.TMNode {
	return &roc.TMNode{ID: id, ParentID: parent, Lvl: lvl, ShaperProfileID: invalidID}
}

func TestNodeAdd_DuplicateID_ReturnsExist(t *testing.T) {
	nix := sim.New("test", testLogger())
	require.NoError(t, nix.TMNodeAdd(node(1, invalidID, 0)))

	err := nix.TMNodeAdd(node(1, invalidID, 0))
	require.Error(t, err)
	assert.Equal(t, roc.ErrCodeExist, roc.ErrCode(err))
}

func TestNodeAdd_UnknownParent_ReturnsInvalidParent(t *testing.T) {
	nix := sim.New("test", testLogger())

	err := nix.TMNodeAdd(node(2, 77, 1))
	require.Error(t, err)
	assert.Equal(t, roc.ErrCodeTMInvalidParent, roc.ErrCode(err))
}

func TestNodeAdd_SecondRoot_Refused(t *testing.T) {
	nix := sim.New("test", testLogger())
	require.NoError(t, nix.TMNodeAdd(node(1, invalidID, 0)))

	err := nix.TMNodeAdd(node(2, invalidID, 0))
	require.Error(t, err)
	assert.Equal(t, roc.ErrCodeTMInvalidParent, roc.ErrCode(err))
}

func TestNodeAdd_UnknownShaperProfile_Refused(t *testing.T) {
	nix := sim.New("test", testLogger())

	n := node(1, invalidID, 0)
	n.ShaperProfileID = 5
	err := nix.TMNodeAdd(n)
	require.Error(t, err)
	assert.Equal(t, roc.ErrCodeTMInvalidShaperProfile, roc.ErrCode(err))
}

func TestNodeDelete_WithChildren_ReturnsChildExists(t *testing.T) {
	nix := sim.New("test", testLogger())
	require.NoError(t, nix.TMNodeAdd(node(1, invalidID, 0)))
	require.NoError(t, nix.TMNodeAdd(node(2, 1, 1)))

	err := nix.TMNodeDelete(1, true)
	require.Error(t, err)
	assert.Equal(t, roc.ErrCodeTMChildExists, roc.ErrCode(err))

	require.NoError(t, nix.TMNodeDelete(2, true))
	require.NoError(t, nix.TMNodeDelete(1, true))
}

func TestShaperProfileDelete_Referenced_ReturnsInUse(t *testing.T) {
	nix := sim.New("test", testLogger())
	require.NoError(t, nix.TMShaperProfileAdd(&roc.ShaperProfile{ID: 5, CommitRate: 8000}))

	n := node(1, invalidID, 0)
	n.ShaperProfileID = 5
	require.NoError(t, nix.TMNodeAdd(n))

	err := nix.TMShaperProfileDelete(5)
	require.Error(t, err)
	assert.Equal(t, roc.ErrCodeTMShaperProfileInUse, roc.ErrCode(err))

	// Deleting the referencing node releases the profile.
	require.NoError(t, nix.TMNodeDelete(1, true))
	require.NoError(t, nix.TMShaperProfileDelete(5))
}

func TestNodeShaperUpdate_MovesReference(t *testing.T) {
	nix := sim.New("test", testLogger())
	require.NoError(t, nix.TMShaperProfileAdd(&roc.ShaperProfile{ID: 5}))
	require.NoError(t, nix.TMShaperProfileAdd(&roc.ShaperProfile{ID: 6}))

	n := node(1, invalidID, 0)
	n.ShaperProfileID = 5
	require.NoError(t, nix.TMNodeAdd(n))

	require.NoError(t, nix.TMNodeShaperUpdate(1, 6, false))

	// Profile 5 is released, 6 is now held.
	require.NoError(t, nix.TMShaperProfileDelete(5))
	err := nix.TMShaperProfileDelete(6)
	require.Error(t, err)
	assert.Equal(t, roc.ErrCodeTMShaperProfileInUse, roc.ErrCode(err))
}

func TestLeafCount_CountsChildlessNodes(t *testing.T) {
	nix := sim.New("test", testLogger())
	require.NoError(t, nix.TMNodeAdd(node(1, invalidID, 0)))
	assert.Equal(t, 1, nix.TMLeafCount(), "a lone root is its own leaf")

	require.NoError(t, nix.TMNodeAdd(node(2, 1, 1)))
	require.NoError(t, nix.TMNodeAdd(node(3, 1, 1)))
	assert.Equal(t, 2, nix.TMLeafCount())

	require.NoError(t, nix.TMNodeAdd(node(4, 2, 2)))
	assert.Equal(t, 2, nix.TMLeafCount())
}

func TestLevelIsLeaf_DeepestLevelOnly(t *testing.T) {
	nix := sim.New("test", testLogger())
	require.NoError(t, nix.TMNodeAdd(node(1, invalidID, 0)))
	require.NoError(t, nix.TMNodeAdd(node(2, 1, 1)))
	require.NoError(t, nix.TMNodeAdd(node(3, 2, 2)))

	assert.False(t, nix.TMLevelIsLeaf(0), "root level is never a leaf level")
	assert.False(t, nix.TMLevelIsLeaf(1))
	assert.True(t, nix.TMLevelIsLeaf(2))
}

func TestHierarchyEnable_BlocksStructuralChanges(t *testing.T) {
	nix := sim.New("test", testLogger())
	require.NoError(t, nix.TMNodeAdd(node(1, invalidID, 0)))
	require.NoError(t, nix.TMHierarchyEnable(roc.TreeUser, true))
	require.True(t, nix.TMIsUserHierarchyEnabled())

	err := nix.TMNodeAdd(node(2, 1, 1))
	require.Error(t, err)
	assert.Equal(t, roc.ErrCodeTMHierarchyEnabled, roc.ErrCode(err))

	err = nix.TMNodeDelete(1, true)
	require.Error(t, err)
	assert.Equal(t, roc.ErrCodeTMHierarchyEnabled, roc.ErrCode(err))

	require.NoError(t, nix.TMHierarchyDisable())
	assert.False(t, nix.TMIsUserHierarchyEnabled())
	require.NoError(t, nix.TMNodeAdd(node(2, 1, 1)))
}

func TestHierarchyEnable_Twice_Refused(t *testing.T) {
	nix := sim.New("test", testLogger())
	require.NoError(t, nix.TMHierarchyEnable(roc.TreeUser, true))

	err := nix.TMHierarchyEnable(roc.TreeUser, true)
	require.Error(t, err)
	assert.Equal(t, roc.ErrCodeTMHierarchyEnabled, roc.ErrCode(err))
}

func TestNodeStats_ClearResetsCounters(t *testing.T) {
	nix := sim.New("test", testLogger())
	require.NoError(t, nix.TMNodeAdd(node(1, invalidID, 0)))
	nix.RecordDrops(1, 3, 192)

	stats, err := nix.TMNodeStats(1, true)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), stats.Stats[roc.TMNodePktsDropped])

	stats, err = nix.TMNodeStats(1, false)
	require.NoError(t, err)
	assert.Zero(t, stats.Stats[roc.TMNodePktsDropped])
}
