package integration

import (
	"context"
	"net/http"
	"testing"

	"github.com/flowweek/flowweek/client/cache"
	"github.com/flowweek/flowweek/client/model"
	"github.com/flowweek/flowweek/client/sync"
	"github.com/flowweek/flowweek/tests/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// syncFixture builds an optimistic sync client over the real HTTP stack
// with the board's current state loaded into its cache.
func syncFixture(t *testing.T, env *testutil.Env, clientID string) (*sync.APIClient, *cache.BoardCache, *sync.Optimistic) {
	t.Helper()

	api := sync.NewAPIClient(env.BaseURL(), clientID)
	bc := cache.NewBoardCache(1)

	ctx := context.Background()
	nodes, err := api.ListNodes(ctx, 1)
	require.NoError(t, err)
	edges, err := api.ListEdges(ctx, 1)
	require.NoError(t, err)
	flows, err := api.ListFlows(ctx, 1)
	require.NoError(t, err)
	bc.Load(nodes, edges, flows)

	return api, bc, sync.NewOptimistic(api, bc, zap.NewNop())
}

// TestSyncClientDeleteCommits runs the optimistic delete path against
// the real server rather than a stub. Deleting a persisted node must
// resolve Committed, with the record gone on both sides.
func TestSyncClientDeleteCommits(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()

	api := sync.NewAPIClient(env.BaseURL(), "sync-client")
	node, err := api.CreateNode(ctx, 1, sync.NodeCreate{
		Type: model.NodeTypeTask, Title: "Ship it",
		X: 10, Y: 20, Width: 180, Height: 90,
	})
	require.NoError(t, err)

	_, bc, o := syncFixture(t, env, "sync-client")

	res := <-o.DeleteNode(ctx, node.ID)
	require.NoError(t, res.Err)
	require.Equal(t, sync.OutcomeCommitted, res.Outcome)
	require.NotNil(t, res.Node)
	require.Equal(t, node.ID, res.Node.ID)

	_, ok := bc.Node(node.ID)
	require.False(t, ok, "deleted node must stay out of the cache")

	remaining, err := api.ListNodes(ctx, 1)
	require.NoError(t, err)
	require.Empty(t, remaining)
}

// TestSyncClientEdgeDeleteCommits does the same for edges.
func TestSyncClientEdgeDeleteCommits(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()

	api := sync.NewAPIClient(env.BaseURL(), "sync-client")
	a, err := api.CreateNode(ctx, 1, sync.NodeCreate{
		Type: model.NodeTypeNote, Title: "a", X: 0, Y: 0, Width: 160, Height: 80,
	})
	require.NoError(t, err)
	b, err := api.CreateNode(ctx, 1, sync.NodeCreate{
		Type: model.NodeTypeNote, Title: "b", X: 300, Y: 0, Width: 160, Height: 80,
	})
	require.NoError(t, err)
	edge, err := api.CreateEdge(ctx, 1, sync.EdgeCreate{
		SourceNodeID: a.ID, TargetNodeID: b.ID,
	})
	require.NoError(t, err)

	_, bc, o := syncFixture(t, env, "sync-client")

	res := <-o.DeleteEdge(ctx, edge.ID)
	require.NoError(t, res.Err)
	require.Equal(t, sync.OutcomeCommitted, res.Outcome)

	_, ok := bc.Edge(edge.ID)
	require.False(t, ok)

	remaining, err := api.ListEdges(ctx, 1)
	require.NoError(t, err)
	require.Empty(t, remaining)
}

// TestAPIClientDeleteEnvelope pins the wire contract directly: deletes
// answer 200 with the removed record in the data envelope.
func TestAPIClientDeleteEnvelope(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()

	api := sync.NewAPIClient(env.BaseURL(), "sync-client")
	node, err := api.CreateNode(ctx, 1, sync.NodeCreate{
		Type: model.NodeTypeNote, Title: "Gone soon",
		X: 0, Y: 0, Width: 160, Height: 80,
	})
	require.NoError(t, err)

	removed, err := api.DeleteNode(ctx, 1, node.ID)
	require.NoError(t, err)
	require.NotNil(t, removed)
	require.Equal(t, node.ID, removed.ID)
	require.Equal(t, "Gone soon", removed.Title)

	_, err = api.DeleteNode(ctx, 1, node.ID)
	var apiErr *sync.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusNotFound, apiErr.StatusCode)
}
