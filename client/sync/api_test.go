package sync

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/flowweek/flowweek/client/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSuccess(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "data": data})
}

func writeFailure(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"error":   map[string]interface{}{"code": code, "message": message},
	})
}

func writeConflict(w http.ResponseWriter, current interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusConflict)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"error": map[string]interface{}{
			"code":    "ERR_CONCURRENCY_CONFLICT",
			"message": "Record was modified by another client",
			"current": current,
		},
	})
}

func TestAPIClientStampsClientIDHeader(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get(ClientIDHeader)
		writeSuccess(w, http.StatusOK, []model.Node{})
	}))
	defer srv.Close()

	api := NewAPIClient(srv.URL+"/api/v1", "client-abc")
	_, err := api.ListNodes(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "client-abc", got)
}

func TestAPIClientDecodesSuccessPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/boards/7/nodes", r.URL.Path)
		writeSuccess(w, http.StatusCreated, model.Node{ID: 42, BoardID: 7, Type: model.NodeTypeNote, Title: "hello"})
	}))
	defer srv.Close()

	api := NewAPIClient(srv.URL+"/api/v1", "c1")
	node, err := api.CreateNode(context.Background(), 7, NodeCreate{Type: model.NodeTypeNote, Title: "hello"})
	require.NoError(t, err)
	assert.Equal(t, int64(42), node.ID)
	assert.Equal(t, "hello", node.Title)
}

func TestAPIClientConflictCarriesCurrentRecord(t *testing.T) {
	current := model.Node{ID: 5, BoardID: 1, Type: model.NodeTypeTask, Title: "server copy", UpdatedAt: time.Now().UTC()}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeConflict(w, current)
	}))
	defer srv.Close()

	api := NewAPIClient(srv.URL+"/api/v1", "c1")
	title := "local copy"
	_, err := api.UpdateNode(context.Background(), 1, 5, NodePatch{Title: &title})

	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	require.NotNil(t, conflict.Node)
	assert.Equal(t, "server copy", conflict.Node.Title)
	assert.Nil(t, conflict.Edge)
}

func TestAPIClientEdgeConflict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeConflict(w, model.Edge{ID: 9, BoardID: 1, SourceNodeID: 1, TargetNodeID: 2})
	}))
	defer srv.Close()

	api := NewAPIClient(srv.URL+"/api/v1", "c1")
	src := int64(3)
	_, err := api.UpdateEdge(context.Background(), 1, 9, EdgePatch{SourceNodeID: &src})

	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	require.NotNil(t, conflict.Edge)
	assert.Equal(t, int64(9), conflict.Edge.ID)
}

func TestAPIClientErrorEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeFailure(w, http.StatusUnprocessableEntity, "ERR_BUSINESS_RULE", "An edge cannot connect a node to itself")
	}))
	defer srv.Close()

	api := NewAPIClient(srv.URL+"/api/v1", "c1")
	_, err := api.CreateEdge(context.Background(), 1, EdgeCreate{SourceNodeID: 1, TargetNodeID: 1})

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.StatusCode)
	assert.Equal(t, "ERR_BUSINESS_RULE", apiErr.Code)
}

func TestAPIClientSendsExpectedUpdatedAt(t *testing.T) {
	var body map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		writeSuccess(w, http.StatusOK, model.Node{ID: 5})
	}))
	defer srv.Close()

	api := NewAPIClient(srv.URL+"/api/v1", "c1")
	marker := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	x := 10.0
	_, err := api.UpdateNode(context.Background(), 1, 5, NodePatch{X: &x, ExpectedUpdatedAt: &marker})
	require.NoError(t, err)

	assert.Equal(t, float64(10), body["x"])
	assert.Contains(t, body, "expected_updated_at")
	assert.NotContains(t, body, "title", "nil fields stay off the wire")
}
