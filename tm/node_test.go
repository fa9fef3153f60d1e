package tm_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	octeontm "github.com/kmonendra/octeon-tm"
	"github.com/kmonendra/octeon-tm/roc"
)

// TestNodeAdd_DerivesLevelFromParent verifies that:
//
//	Given a registered root node,
//	When I add a child with a nonsensical requested level,
//	Then the node is registered at the parent's level plus one.
func TestNodeAdd_DerivesLevelFromParent(t *testing.T) {
	fix := newTestFixture(t, 1)
	ctx := context.Background()
	fix.AddRoot()

	err := fix.Ops.NodeAdd(ctx, testHwIf, 50, rootNodeID, 0, 1, 99, octeontm.NodeParams{
		ShaperProfileID: octeontm.ShaperProfileNone,
	})
	require.NoError(t, err)

	node := fix.Nix.TMNodeGet(50)
	require.NotNil(t, node)
	assert.Equal(t, octeontm.LevelRoot+1, node.Lvl, "child level derives from parent")
}

// TestNodeAdd_UnknownParent_ReturnsInvalidParent verifies that:
//
//	Given an empty hierarchy,
//	When I add a node whose parent ID names no registered node,
//	Then the add fails as internal carrying the invalid-parent kind.
func TestNodeAdd_UnknownParent_ReturnsInvalidParent(t *testing.T) {
	fix := newTestFixture(t, 1)
	ctx := context.Background()

	err := fix.Ops.NodeAdd(ctx, testHwIf, 50, 77, 0, 1, 1, octeontm.NodeParams{
		ShaperProfileID: octeontm.ShaperProfileNone,
	})
	requireInternal(t, err, octeontm.ErrInvalidParent)

	assert.Nil(t, fix.Nix.TMNodeGet(50), "failed add must not register the node")
	_, err = fix.Store.GetNode(ctx, testHwIf, 50)
	assert.Error(t, err, "failed add must not persist the node")
}

// TestNodeAdd_DuplicateID_Fails verifies that:
//
//	Given a registered root node,
//	When I add a second node with the same ID,
//	Then the vendor layer's refusal surfaces as internal.
func TestNodeAdd_DuplicateID_Fails(t *testing.T) {
	fix := newTestFixture(t, 1)
	ctx := context.Background()
	fix.AddRoot()

	err := fix.Ops.NodeAdd(ctx, testHwIf, rootNodeID, octeontm.InvalidNodeID, 0, 1,
		octeontm.LevelRoot, octeontm.NodeParams{ShaperProfileID: octeontm.ShaperProfileNone})
	requireInternal(t, err, octeontm.ErrVendor)
}

// TestNodeAdd_WhileCommitted_Refused verifies that:
//
//	Given a committed hierarchy,
//	When I add a node,
//	Then the add is refused with the committed kind and nothing changes.
func TestNodeAdd_WhileCommitted_Refused(t *testing.T) {
	fix := newTestFixture(t, 2)
	ctx := context.Background()
	fix.Commit(2)

	err := fix.Ops.NodeAdd(ctx, testHwIf, 500, midNodeID, 0, 1, 2, octeontm.NodeParams{
		ShaperProfileID: octeontm.ShaperProfileNone,
	})
	requireInternal(t, err, octeontm.ErrHierarchyCommitted)
	assert.Nil(t, fix.Nix.TMNodeGet(500))
}

// TestNodeAdd_PersistFailure_RollsBackRegistration verifies that:
//
//	Given a store that fails node writes,
//	When I add a node,
//	Then the vendor registration is rolled back so hardware and
//	store stay in agreement.
func TestNodeAdd_PersistFailure_RollsBackRegistration(t *testing.T) {
	fix := newTestFixture(t, 1)
	ctx := context.Background()
	fix.Store.failSaveNode = true

	err := fix.Ops.NodeAdd(ctx, testHwIf, rootNodeID, octeontm.InvalidNodeID, 0, 1,
		octeontm.LevelRoot, octeontm.NodeParams{ShaperProfileID: octeontm.ShaperProfileNone})
	requireInternal(t, err, octeontm.ErrVendor)

	assert.Nil(t, fix.Nix.TMNodeGet(rootNodeID), "registration must be rolled back")
}

// TestNodeAdd_PersistsMetadata verifies that:
//
//	Given a successful node add,
//	When I read the store,
//	Then the node's record mirrors what the vendor layer accepted.
func TestNodeAdd_PersistsMetadata(t *testing.T) {
	fix := newTestFixture(t, 1)
	ctx := context.Background()
	fix.AddRoot()

	err := fix.Ops.NodeAdd(ctx, testHwIf, 50, rootNodeID, 3, 7, 1, octeontm.NodeParams{
		ShaperProfileID: octeontm.ShaperProfileNone,
	})
	require.NoError(t, err)

	rec, err := fix.Store.GetNode(ctx, testHwIf, 50)
	require.NoError(t, err)
	assert.Equal(t, rootNodeID, rec.ParentID)
	assert.Equal(t, uint32(1), rec.Lvl)
	assert.Equal(t, uint32(3), rec.Priority)
	assert.Equal(t, uint32(7), rec.Weight)
}

// TestNodeDelete_InvalidSentinel_Refused verifies that:
//
//	Given any hierarchy,
//	When I delete the invalid-node-ID sentinel,
//	Then the delete is refused with the invalid-node-id kind.
func TestNodeDelete_InvalidSentinel_Refused(t *testing.T) {
	fix := newTestFixture(t, 1)

	err := fix.Ops.NodeDelete(context.Background(), testHwIf, octeontm.InvalidNodeID)
	requireInternal(t, err, octeontm.ErrInvalidNodeID)
}

// TestNodeDelete_UnknownNode_ReturnsNotFound verifies that:
//
//	Given an empty hierarchy,
//	When I delete a node that was never added,
//	Then the delete fails with the not-found kind.
func TestNodeDelete_UnknownNode_ReturnsNotFound(t *testing.T) {
	fix := newTestFixture(t, 1)

	err := fix.Ops.NodeDelete(context.Background(), testHwIf, 999)
	requireInternal(t, err, octeontm.ErrNotFound)
}

// TestNodeDelete_WhileCommitted_Refused verifies that:
//
//	Given a committed hierarchy,
//	When I delete one of its leaves,
//	Then the delete is refused with the committed kind.
func TestNodeDelete_WhileCommitted_Refused(t *testing.T) {
	fix := newTestFixture(t, 2)
	fix.Commit(2)

	err := fix.Ops.NodeDelete(context.Background(), testHwIf, leafBase)
	requireInternal(t, err, octeontm.ErrHierarchyCommitted)
	assert.NotNil(t, fix.Nix.TMNodeGet(leafBase), "committed hierarchy must be untouched")
}

// TestNodeDelete_RemovesNodeAndMetadata verifies that:
//
//	Given an uncommitted hierarchy,
//	When I delete a leaf,
//	Then the vendor descriptor and the store record are both gone.
func TestNodeDelete_RemovesNodeAndMetadata(t *testing.T) {
	fix := newTestFixture(t, 1)
	ctx := context.Background()
	fix.BuildHierarchy(1)

	require.NoError(t, fix.Ops.NodeDelete(ctx, testHwIf, leafBase))

	assert.Nil(t, fix.Nix.TMNodeGet(leafBase))
	_, err := fix.Store.GetNode(ctx, testHwIf, leafBase)
	assert.Error(t, err)
}

// TestNodeDelete_WithChildren_Fails verifies that:
//
//	Given a node with registered children,
//	When I delete it,
//	Then the vendor layer's child-exists refusal surfaces as internal.
func TestNodeDelete_WithChildren_Fails(t *testing.T) {
	fix := newTestFixture(t, 1)
	fix.BuildHierarchy(1)

	err := fix.Ops.NodeDelete(context.Background(), testHwIf, midNodeID)
	requireInternal(t, err, octeontm.ErrVendor)
	assert.NotNil(t, fix.Nix.TMNodeGet(midNodeID))
}

// TestNodeAdd_UnknownPort_ReturnsNotFound verifies that:
//
//	Given a registry with one attached port,
//	When I operate on a hw_if index that was never attached,
//	Then the operation fails with the not-found kind.
func TestNodeAdd_UnknownPort_ReturnsNotFound(t *testing.T) {
	fix := newTestFixture(t, 1)

	err := fix.Ops.NodeAdd(context.Background(), 99, rootNodeID, octeontm.InvalidNodeID,
		0, 1, octeontm.LevelRoot, octeontm.NodeParams{ShaperProfileID: octeontm.ShaperProfileNone})
	requireInternal(t, err, octeontm.ErrNotFound)
}

// TestNodeAdd_ShapedNode_GetsSendRedAlgo verifies that:
//
//	Given a dual-rate shaper profile,
//	When I add a node bound to it,
//	Then the node's congestion marking follows the profile class.
func TestNodeAdd_ShapedNode_GetsSendRedAlgo(t *testing.T) {
	fix := newTestFixture(t, 1)
	ctx := context.Background()

	err := fix.Ops.ShaperProfileCreate(ctx, testHwIf, octeontm.ShaperParams{
		ShaperID: 5,
		Commit:   octeontm.RateSpec{Rate: 1_000_000, BurstSize: 2000},
		Peak:     octeontm.RateSpec{Rate: 2_000_000, BurstSize: 4000},
	})
	require.NoError(t, err)

	err = fix.Ops.NodeAdd(ctx, testHwIf, rootNodeID, octeontm.InvalidNodeID, 0, 1,
		octeontm.LevelRoot, octeontm.NodeParams{ShaperProfileID: 5})
	require.NoError(t, err)

	node := fix.Nix.TMNodeGet(rootNodeID)
	require.NotNil(t, node)
	assert.Equal(t, roc.RedAlgoSend, node.RedAlgo, "dual-rate profiles mark and send")
}
