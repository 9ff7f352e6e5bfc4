package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	boardapp "github.com/flowweek/flowweek/internal/application/board"
	"github.com/flowweek/flowweek/internal/domain/board"
	"github.com/flowweek/flowweek/internal/infrastructure/realtime"
	"github.com/flowweek/flowweek/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestBoardLifecycle walks a full collaborative session over the real
// HTTP stack: lanes, nodes and edges are created by one client while a
// websocket watcher observes every change as it lands.
func TestBoardLifecycle(t *testing.T) {
	env := testutil.NewEnv(t)
	watcher := env.Watch(1, "observer")

	// Lane setup
	resp, body := env.DoJSON("POST", "/boards/1/flows",
		map[string]any{"name": "This Week", "color": "#60a5fa", "y_lane": 0.0}, "alice")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var lane boardapp.FlowResponse
	testutil.DecodeData(t, body, &lane)
	require.Positive(t, lane.ID)

	resp, body = env.DoJSON("GET", "/boards/1/flows", nil, "alice")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var lanes []boardapp.FlowResponse
	testutil.DecodeData(t, body, &lanes)
	require.Len(t, lanes, 1)
	assert.Equal(t, "This Week", lanes[0].Name)

	// First node goes into the lane
	resp, body = env.DoJSON("POST", "/boards/1/nodes", map[string]any{
		"type": "task", "title": "Write report", "flow_id": lane.ID,
		"x": 100.0, "y": 40.0, "width": 180.0, "height": 90.0,
	}, "alice")
	require.Equal(t, http.StatusCreated, resp.StatusCode, body.Error)
	var task board.NodePayload
	testutil.DecodeData(t, body, &task)
	require.Positive(t, task.ID)
	require.NotNil(t, task.Status)
	assert.Equal(t, board.TaskStatusTodo, *task.Status)

	frame := watcher.Expect(realtime.MessageNodeCreated)
	assert.Equal(t, "alice", frame.Meta.ClientID)
	var created board.NodePayload
	require.NoError(t, json.Unmarshal(frame.Data, &created))
	assert.Equal(t, task.ID, created.ID)
	assert.Equal(t, "Write report", created.Title)

	resp, body = env.DoJSON("POST", "/boards/1/nodes", map[string]any{
		"type": "note", "title": "Ideas", "x": 400.0, "y": 40.0,
		"width": 160.0, "height": 80.0,
	}, "alice")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var note board.NodePayload
	testutil.DecodeData(t, body, &note)
	watcher.Expect(realtime.MessageNodeCreated)

	// Link them
	resp, body = env.DoJSON("POST", "/boards/1/edges", map[string]any{
		"source_node_id": task.ID, "target_node_id": note.ID,
	}, "alice")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var edge board.EdgePayload
	testutil.DecodeData(t, body, &edge)
	assert.Equal(t, task.ID, edge.SourceNodeID)
	watcher.Expect(realtime.MessageEdgeCreated)

	// A successful patch bumps the version marker
	staleVersion := task.UpdatedAt
	time.Sleep(10 * time.Millisecond)
	resp, body = env.DoJSON("PATCH", fmt.Sprintf("/boards/1/nodes/%d", task.ID), map[string]any{
		"status": "done", "expected_updated_at": staleVersion,
	}, "bob")
	require.Equal(t, http.StatusOK, resp.StatusCode, body.Error)
	var patched board.NodePayload
	testutil.DecodeData(t, body, &patched)
	require.NotNil(t, patched.Status)
	assert.Equal(t, board.TaskStatusDone, *patched.Status)
	require.True(t, patched.UpdatedAt.After(staleVersion))

	frame = watcher.Expect(realtime.MessageNodeUpdated)
	assert.Equal(t, "bob", frame.Meta.ClientID)

	// The old marker now loses the race and gets the canonical record back
	resp, body = env.DoJSON("PATCH", fmt.Sprintf("/boards/1/nodes/%d", task.ID), map[string]any{
		"title": "Rewrite report", "expected_updated_at": staleVersion,
	}, "alice")
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	require.NotNil(t, body.Error)
	assert.Equal(t, "ERR_CONCURRENCY_CONFLICT", body.Error.Code)
	var current board.NodePayload
	require.NoError(t, json.Unmarshal(body.Error.Current, &current))
	assert.Equal(t, "Write report", current.Title)
	require.NotNil(t, current.Status)
	assert.Equal(t, board.TaskStatusDone, *current.Status)

	// Deleting the task echoes the removed record and cascades its
	// edge, edge frames first
	resp, body = env.DoJSON("DELETE", fmt.Sprintf("/boards/1/nodes/%d", task.ID), nil, "alice")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var removed board.NodePayload
	testutil.DecodeData(t, body, &removed)
	assert.Equal(t, task.ID, removed.ID)

	frame = watcher.Expect(realtime.MessageEdgeDeleted)
	var droppedEdge board.EdgePayload
	require.NoError(t, json.Unmarshal(frame.Data, &droppedEdge))
	assert.Equal(t, edge.ID, droppedEdge.ID)
	watcher.Expect(realtime.MessageNodeDeleted)

	resp, body = env.DoJSON("GET", "/boards/1/nodes", nil, "alice")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var nodes []board.NodePayload
	testutil.DecodeData(t, body, &nodes)
	require.Len(t, nodes, 1)
	assert.Equal(t, note.ID, nodes[0].ID)

	resp, body = env.DoJSON("GET", "/boards/1/edges", nil, "alice")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var edges []board.EdgePayload
	testutil.DecodeData(t, body, &edges)
	assert.Empty(t, edges)
}

// TestBoardIsolation checks that watchers only see traffic for their
// own board.
func TestBoardIsolation(t *testing.T) {
	env := testutil.NewEnv(t)
	other := env.Watch(2, "bystander")

	resp, _ := env.DoJSON("POST", "/boards/1/nodes", map[string]any{
		"type": "note", "title": "Private", "x": 0.0, "y": 0.0,
		"width": 120.0, "height": 60.0,
	}, "alice")
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	other.ExpectNone(300 * time.Millisecond)
}

// TestRejectsInvalidWrites covers the validation edges a client can hit
// over the wire.
func TestRejectsInvalidWrites(t *testing.T) {
	env := testutil.NewEnv(t)

	// Unknown node type
	resp, body := env.DoJSON("POST", "/boards/1/nodes", map[string]any{
		"type": "sticker", "title": "Nope", "x": 0.0, "y": 0.0,
		"width": 100.0, "height": 50.0,
	}, "alice")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.False(t, body.Success)

	// Status only applies to tasks
	resp, body = env.DoJSON("POST", "/boards/1/nodes", map[string]any{
		"type": "note", "title": "Note", "status": "done",
		"x": 0.0, "y": 0.0, "width": 100.0, "height": 50.0,
	}, "alice")
	require.GreaterOrEqual(t, resp.StatusCode, 400)
	assert.False(t, body.Success)

	// Edges need both endpoints on the board
	resp, body = env.DoJSON("POST", "/boards/1/edges", map[string]any{
		"source_node_id": 404, "target_node_id": 405,
	}, "alice")
	require.GreaterOrEqual(t, resp.StatusCode, 400)
	assert.False(t, body.Success)

	// Patching a missing node is a 404
	resp, body = env.DoJSON("PATCH", "/boards/1/nodes/9999", map[string]any{
		"title": "Ghost",
	}, "alice")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.False(t, body.Success)
}
