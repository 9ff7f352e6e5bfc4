// Package sync is the client's write path: a thin REST client over the
// board API plus an optimistic layer that applies cache updates before
// the network round trip and reconciles the three-way outcome
// (commit, conflict merge, rollback).
package sync

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/flowweek/flowweek/client/model"
	"go.uber.org/zap"
)

// ClientIDHeader identifies the calling client on every write so the
// server can stamp realtime events for echo suppression.
const ClientIDHeader = "X-Client-ID"

// NodeCreate describes a new node.
type NodeCreate struct {
	FlowID      *int64            `json:"flow_id,omitempty"`
	Type        model.NodeType    `json:"type"`
	Status      *model.TaskStatus `json:"status,omitempty"`
	Tags        []string          `json:"tags,omitempty"`
	JournaledAt *time.Time        `json:"journaled_at,omitempty"`
	X           float64           `json:"x"`
	Y           float64           `json:"y"`
	Width       float64           `json:"width"`
	Height      float64           `json:"height"`
	Title       string            `json:"title"`
	Content     string            `json:"content,omitempty"`
}

// NodePatch is a partial node update. Nil fields are left untouched.
// ExpectedUpdatedAt carries the version marker the client last saw.
type NodePatch struct {
	FlowID            *int64            `json:"flow_id,omitempty"`
	Type              *model.NodeType   `json:"type,omitempty"`
	Status            *model.TaskStatus `json:"status,omitempty"`
	Tags              *[]string         `json:"tags,omitempty"`
	JournaledAt       *time.Time        `json:"journaled_at,omitempty"`
	X                 *float64          `json:"x,omitempty"`
	Y                 *float64          `json:"y,omitempty"`
	Width             *float64          `json:"width,omitempty"`
	Height            *float64          `json:"height,omitempty"`
	Title             *string           `json:"title,omitempty"`
	Content           *string           `json:"content,omitempty"`
	ExpectedUpdatedAt *time.Time        `json:"expected_updated_at,omitempty"`
}

// EdgeCreate describes a new directed edge.
type EdgeCreate struct {
	SourceNodeID int64 `json:"source_node_id"`
	TargetNodeID int64 `json:"target_node_id"`
}

// EdgePatch reassigns one or both edge endpoints.
type EdgePatch struct {
	SourceNodeID      *int64     `json:"source_node_id,omitempty"`
	TargetNodeID      *int64     `json:"target_node_id,omitempty"`
	ExpectedUpdatedAt *time.Time `json:"expected_updated_at,omitempty"`
}

// ConflictError reports a stale-version update. Exactly one of Node and
// Edge carries the server's current canonical record.
type ConflictError struct {
	Node *model.Node
	Edge *model.Edge
}

// Error implements error
func (e *ConflictError) Error() string {
	return "record was modified by another client"
}

// APIError is any non-conflict failure reported by the server.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

// Error implements error
func (e *APIError) Error() string {
	return fmt.Sprintf("api error %s (%d): %s", e.Code, e.StatusCode, e.Message)
}

// APIClient talks to the board REST API. All writes carry the client
// identifier header.
type APIClient struct {
	baseURL  string
	clientID string
	http     *http.Client
	logger   *zap.Logger
}

// APIOption customizes an APIClient.
type APIOption func(*APIClient)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) APIOption {
	return func(c *APIClient) { c.http = h }
}

// WithAPILogger sets the diagnostics logger.
func WithAPILogger(l *zap.Logger) APIOption {
	return func(c *APIClient) { c.logger = l }
}

// NewAPIClient creates a client for the API rooted at baseURL (for
// example "http://localhost:8080/api/v1").
func NewAPIClient(baseURL, clientID string, opts ...APIOption) *APIClient {
	c := &APIClient{
		baseURL:  strings.TrimRight(baseURL, "/"),
		clientID: clientID,
		http:     &http.Client{Timeout: 15 * time.Second},
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ClientID returns the identifier this client stamps on writes.
func (c *APIClient) ClientID() string {
	return c.clientID
}

// ListFlows returns the board's flow lanes.
func (c *APIClient) ListFlows(ctx context.Context, boardID int64) ([]model.Flow, error) {
	var out []model.Flow
	err := c.call(ctx, http.MethodGet, c.boardPath(boardID, "flows"), nil, &out)
	return out, err
}

// ListNodes returns the board's nodes.
func (c *APIClient) ListNodes(ctx context.Context, boardID int64) ([]model.Node, error) {
	var out []model.Node
	err := c.call(ctx, http.MethodGet, c.boardPath(boardID, "nodes"), nil, &out)
	return out, err
}

// ListEdges returns the board's edges.
func (c *APIClient) ListEdges(ctx context.Context, boardID int64) ([]model.Edge, error) {
	var out []model.Edge
	err := c.call(ctx, http.MethodGet, c.boardPath(boardID, "edges"), nil, &out)
	return out, err
}

// CreateNode persists a new node and returns the canonical record with
// its server-assigned identifier.
func (c *APIClient) CreateNode(ctx context.Context, boardID int64, req NodeCreate) (*model.Node, error) {
	var out model.Node
	if err := c.call(ctx, http.MethodPost, c.boardPath(boardID, "nodes"), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateNode applies a partial patch. A stale ExpectedUpdatedAt fails
// with *ConflictError carrying the current record.
func (c *APIClient) UpdateNode(ctx context.Context, boardID, nodeID int64, patch NodePatch) (*model.Node, error) {
	var out model.Node
	path := fmt.Sprintf("%s/%d", c.boardPath(boardID, "nodes"), nodeID)
	if err := c.call(ctx, http.MethodPatch, path, patch, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteNode removes a node; the server cascades its incident edges.
func (c *APIClient) DeleteNode(ctx context.Context, boardID, nodeID int64) (*model.Node, error) {
	var out model.Node
	path := fmt.Sprintf("%s/%d", c.boardPath(boardID, "nodes"), nodeID)
	if err := c.call(ctx, http.MethodDelete, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateEdge persists a new edge.
func (c *APIClient) CreateEdge(ctx context.Context, boardID int64, req EdgeCreate) (*model.Edge, error) {
	var out model.Edge
	if err := c.call(ctx, http.MethodPost, c.boardPath(boardID, "edges"), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateEdge reassigns edge endpoints with the same version-check
// semantics as node updates.
func (c *APIClient) UpdateEdge(ctx context.Context, boardID, edgeID int64, patch EdgePatch) (*model.Edge, error) {
	var out model.Edge
	path := fmt.Sprintf("%s/%d", c.boardPath(boardID, "edges"), edgeID)
	if err := c.call(ctx, http.MethodPatch, path, patch, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteEdge removes a single edge.
func (c *APIClient) DeleteEdge(ctx context.Context, boardID, edgeID int64) (*model.Edge, error) {
	var out model.Edge
	path := fmt.Sprintf("%s/%d", c.boardPath(boardID, "edges"), edgeID)
	if err := c.call(ctx, http.MethodDelete, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *APIClient) boardPath(boardID int64, kind string) string {
	return fmt.Sprintf("/boards/%d/%s", boardID, kind)
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *errorInfo      `json:"error"`
}

type errorInfo struct {
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Current json.RawMessage `json:"current"`
}

// call performs one request and decodes the response envelope into out.
// It never silently drops a write: every path resolves to either a
// decoded success payload or a typed error.
func (c *APIClient) call(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(ClientIDHeader, c.clientID)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("malformed response (%d): %w", resp.StatusCode, err)
	}

	if env.Success {
		if out != nil && len(env.Data) > 0 {
			if err := json.Unmarshal(env.Data, out); err != nil {
				return fmt.Errorf("failed to decode payload: %w", err)
			}
		}
		return nil
	}

	if env.Error == nil {
		return &APIError{StatusCode: resp.StatusCode, Code: "ERR_UNKNOWN", Message: "empty error envelope"}
	}
	if resp.StatusCode == http.StatusConflict && len(env.Error.Current) > 0 {
		if conflict := decodeConflict(path, env.Error.Current); conflict != nil {
			return conflict
		}
	}
	return &APIError{StatusCode: resp.StatusCode, Code: env.Error.Code, Message: env.Error.Message}
}

// decodeConflict parses the canonical record carried by a 409 envelope.
// The entity kind follows from the request path.
func decodeConflict(path string, current json.RawMessage) *ConflictError {
	switch {
	case strings.Contains(path, "/nodes/"):
		var n model.Node
		if err := json.Unmarshal(current, &n); err != nil {
			return nil
		}
		return &ConflictError{Node: &n}
	case strings.Contains(path, "/edges/"):
		var e model.Edge
		if err := json.Unmarshal(current, &e); err != nil {
			return nil
		}
		return &ConflictError{Edge: &e}
	}
	return nil
}
