package sync

import (
	"context"
	"errors"
	"net/http"
	gosync "sync"
	"sync/atomic"

	"github.com/flowweek/flowweek/client/cache"
	"github.com/flowweek/flowweek/client/model"
	"go.uber.org/zap"
)

// ErrNotInCache reports a write against a record the cache does not hold.
var ErrNotInCache = errors.New("record not in cache")

// Outcome is the three-way result of an optimistic write.
type Outcome int

const (
	// OutcomeCommitted: the server accepted the write and the cache holds
	// the canonical record.
	OutcomeCommitted Outcome = iota
	// OutcomeConflictMerged: the write lost a version check; the cache
	// holds the server's canonical record instead of the attempted values.
	OutcomeConflictMerged
	// OutcomeRolledBack: the write failed and the cache was restored to
	// its pre-optimistic state.
	OutcomeRolledBack
	// OutcomeCancelled: the write was cancelled (by undo) before or after
	// the server resolved it; any server-side record was cleaned up.
	OutcomeCancelled
)

// Result resolves an optimistic write. At most one of Node and Edge is
// set, holding the record the cache ended up with.
type Result struct {
	Outcome Outcome
	Node    *model.Node
	Edge    *model.Edge
	Err     error
}

// Optimistic wraps the REST client with optimistic cache semantics: the
// local cache changes synchronously before each network call, and the
// asynchronous resolution commits, merges a conflict, or rolls back.
type Optimistic struct {
	api         *APIClient
	cache       *cache.BoardCache
	logger      *zap.Logger
	placeholder atomic.Int64
}

// NewOptimistic creates the optimistic layer over api and cache.
func NewOptimistic(api *APIClient, boardCache *cache.BoardCache, logger *zap.Logger) *Optimistic {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Optimistic{api: api, cache: boardCache, logger: logger}
}

// Cache returns the shared board cache.
func (o *Optimistic) Cache() *cache.BoardCache {
	return o.cache
}

// NextPlaceholderID allocates a process-unique negative identifier.
func (o *Optimistic) NextPlaceholderID() int64 {
	return -o.placeholder.Add(1)
}

// LoadBoard fetches the board's flows, nodes and edges into the cache.
func (o *Optimistic) LoadBoard(ctx context.Context) error {
	boardID := o.cache.BoardID()
	flows, err := o.api.ListFlows(ctx, boardID)
	if err != nil {
		return err
	}
	nodes, err := o.api.ListNodes(ctx, boardID)
	if err != nil {
		return err
	}
	edges, err := o.api.ListEdges(ctx, boardID)
	if err != nil {
		return err
	}
	o.cache.Load(nodes, edges, flows)
	return nil
}

// CreateNodeHandle tracks one optimistic node creation from placeholder
// insert to resolution. Cancel aborts it at any point; if the server
// create races the cancellation, the resolved record is deleted again
// instead of entering the cache.
type CreateNodeHandle struct {
	o             *Optimistic
	mu            gosync.Mutex
	placeholderID int64
	serverID      int64
	cancelled     bool
	done          chan Result
}

// PlaceholderID returns the negative identifier the cache holds until
// the create resolves.
func (h *CreateNodeHandle) PlaceholderID() int64 {
	return h.placeholderID
}

// CurrentID returns the record's identifier at this moment: the server
// identifier once the create resolved, the placeholder before that.
func (h *CreateNodeHandle) CurrentID() int64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.serverID != 0 {
		return h.serverID
	}
	return h.placeholderID
}

// Done resolves once the create settles.
func (h *CreateNodeHandle) Done() <-chan Result {
	return h.done
}

// Cancel removes the optimistic record and, if the create already
// resolved, issues a best-effort delete of the server record.
func (h *CreateNodeHandle) Cancel(ctx context.Context) {
	h.mu.Lock()
	if h.cancelled {
		h.mu.Unlock()
		return
	}
	h.cancelled = true
	serverID := h.serverID
	h.mu.Unlock()

	if serverID != 0 {
		h.o.cache.RemoveNode(serverID)
		if _, err := h.o.api.DeleteNode(ctx, h.o.cache.BoardID(), serverID); err != nil {
			h.o.logger.Warn("cleanup delete after cancelled create failed",
				zap.Int64("node_id", serverID), zap.Error(err))
		}
		return
	}
	h.o.cache.RemoveNode(h.placeholderID)
}

// CreateNode inserts a placeholder record synchronously and starts the
// background create. The resolved handle reports the server record that
// replaced the placeholder, or its removal on failure.
func (o *Optimistic) CreateNode(ctx context.Context, req NodeCreate) *CreateNodeHandle {
	boardID := o.cache.BoardID()
	h := &CreateNodeHandle{
		o:             o,
		placeholderID: o.NextPlaceholderID(),
		done:          make(chan Result, 1),
	}

	placeholder := model.Node{
		ID:          h.placeholderID,
		BoardID:     boardID,
		FlowID:      req.FlowID,
		Type:        req.Type,
		Status:      req.Status,
		Tags:        req.Tags,
		JournaledAt: req.JournaledAt,
		X:           req.X,
		Y:           req.Y,
		Width:       req.Width,
		Height:      req.Height,
		Title:       req.Title,
		Content:     req.Content,
	}
	if placeholder.Type == model.NodeTypeTask && placeholder.Status == nil {
		s := model.TaskStatusTodo
		placeholder.Status = &s
	}
	o.cache.UpsertNode(placeholder)

	go func() {
		node, err := o.api.CreateNode(ctx, boardID, req)

		h.mu.Lock()
		cancelled := h.cancelled
		if err == nil && !cancelled {
			h.serverID = node.ID
		}
		h.mu.Unlock()

		switch {
		case err != nil:
			if !cancelled {
				o.cache.RemoveNode(h.placeholderID)
			}
			o.logger.Warn("node create rolled back", zap.Error(err))
			h.resolve(Result{Outcome: OutcomeRolledBack, Err: err})
		case cancelled:
			// The undo won the race; clean up the record we just made.
			if _, derr := o.api.DeleteNode(ctx, boardID, node.ID); derr != nil {
				o.logger.Warn("cleanup delete after cancelled create failed",
					zap.Int64("node_id", node.ID), zap.Error(derr))
			}
			h.resolve(Result{Outcome: OutcomeCancelled})
		default:
			o.cache.ReplaceNode(h.placeholderID, *node)
			h.resolve(Result{Outcome: OutcomeCommitted, Node: node})
		}
	}()
	return h
}

func (h *CreateNodeHandle) resolve(res Result) {
	h.done <- res
	close(h.done)
}

// UpdateNode applies patch to the cached record synchronously, then
// reconciles against the server. A stale version merges the canonical
// record and retries the patch once against the fresh marker; any other
// failure restores the pre-optimistic record.
//
// Updates against placeholder records stay local: the pending create has
// not produced a server identifier to patch yet.
func (o *Optimistic) UpdateNode(ctx context.Context, nodeID int64, patch NodePatch) <-chan Result {
	done := make(chan Result, 1)
	boardID := o.cache.BoardID()

	prior, ok := o.cache.Node(nodeID)
	if !ok {
		done <- Result{Outcome: OutcomeRolledBack, Err: ErrNotInCache}
		close(done)
		return done
	}

	optimistic := applyNodePatch(prior, patch)
	o.cache.UpsertNode(optimistic)

	if model.IsPlaceholder(nodeID) {
		done <- Result{Outcome: OutcomeCommitted, Node: &optimistic}
		close(done)
		return done
	}

	go func() {
		defer close(done)
		patch.ExpectedUpdatedAt = &prior.UpdatedAt

		canonical, err := o.api.UpdateNode(ctx, boardID, nodeID, patch)
		if err == nil {
			o.cache.UpsertNode(*canonical)
			done <- Result{Outcome: OutcomeCommitted, Node: canonical}
			return
		}

		var conflict *ConflictError
		if !errors.As(err, &conflict) || conflict.Node == nil {
			o.cache.UpsertNode(prior)
			o.logger.Warn("node update rolled back", zap.Int64("node_id", nodeID), zap.Error(err))
			done <- Result{Outcome: OutcomeRolledBack, Err: err}
			return
		}

		// Merge the canonical record, then retry the intended change once
		// against the fresh version marker.
		o.cache.UpsertNode(*conflict.Node)
		patch.ExpectedUpdatedAt = &conflict.Node.UpdatedAt

		canonical, err = o.api.UpdateNode(ctx, boardID, nodeID, patch)
		if err == nil {
			o.cache.UpsertNode(*canonical)
			done <- Result{Outcome: OutcomeCommitted, Node: canonical}
			return
		}
		if errors.As(err, &conflict) && conflict.Node != nil {
			o.cache.UpsertNode(*conflict.Node)
			done <- Result{Outcome: OutcomeConflictMerged, Node: conflict.Node, Err: err}
			return
		}
		merged, _ := o.cache.Node(nodeID)
		o.logger.Warn("node update abandoned after conflict", zap.Int64("node_id", nodeID), zap.Error(err))
		done <- Result{Outcome: OutcomeConflictMerged, Node: &merged, Err: err}
	}()
	return done
}

// DeleteNode removes the node and its incident edges from the cache
// synchronously, then deletes it server-side. Failure restores node and
// edges; a 404 means another client already deleted it and commits.
func (o *Optimistic) DeleteNode(ctx context.Context, nodeID int64) <-chan Result {
	done := make(chan Result, 1)
	boardID := o.cache.BoardID()

	removed, cascaded, ok := o.cache.RemoveNode(nodeID)
	if !ok {
		done <- Result{Outcome: OutcomeRolledBack, Err: ErrNotInCache}
		close(done)
		return done
	}
	if model.IsPlaceholder(nodeID) {
		done <- Result{Outcome: OutcomeCommitted, Node: &removed}
		close(done)
		return done
	}

	go func() {
		defer close(done)
		if _, err := o.api.DeleteNode(ctx, boardID, nodeID); err != nil {
			var apiErr *APIError
			if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
				done <- Result{Outcome: OutcomeCommitted, Node: &removed}
				return
			}
			o.cache.RestoreNode(removed, cascaded)
			o.logger.Warn("node delete rolled back", zap.Int64("node_id", nodeID), zap.Error(err))
			done <- Result{Outcome: OutcomeRolledBack, Err: err}
			return
		}
		done <- Result{Outcome: OutcomeCommitted, Node: &removed}
	}()
	return done
}

// CreateEdgeHandle tracks one optimistic edge creation, mirroring
// CreateNodeHandle.
type CreateEdgeHandle struct {
	o             *Optimistic
	mu            gosync.Mutex
	placeholderID int64
	serverID      int64
	cancelled     bool
	done          chan Result
}

// PlaceholderID returns the placeholder identifier.
func (h *CreateEdgeHandle) PlaceholderID() int64 {
	return h.placeholderID
}

// CurrentID returns the server identifier once resolved, the placeholder
// before that.
func (h *CreateEdgeHandle) CurrentID() int64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.serverID != 0 {
		return h.serverID
	}
	return h.placeholderID
}

// Done resolves once the create settles.
func (h *CreateEdgeHandle) Done() <-chan Result {
	return h.done
}

// Cancel removes the optimistic edge and cleans up any resolved server
// record.
func (h *CreateEdgeHandle) Cancel(ctx context.Context) {
	h.mu.Lock()
	if h.cancelled {
		h.mu.Unlock()
		return
	}
	h.cancelled = true
	serverID := h.serverID
	h.mu.Unlock()

	if serverID != 0 {
		h.o.cache.RemoveEdge(serverID)
		if _, err := h.o.api.DeleteEdge(ctx, h.o.cache.BoardID(), serverID); err != nil {
			h.o.logger.Warn("cleanup delete after cancelled create failed",
				zap.Int64("edge_id", serverID), zap.Error(err))
		}
		return
	}
	h.o.cache.RemoveEdge(h.placeholderID)
}

// CreateEdge inserts a placeholder edge synchronously and starts the
// background create.
func (o *Optimistic) CreateEdge(ctx context.Context, req EdgeCreate) *CreateEdgeHandle {
	boardID := o.cache.BoardID()
	h := &CreateEdgeHandle{
		o:             o,
		placeholderID: o.NextPlaceholderID(),
		done:          make(chan Result, 1),
	}
	o.cache.UpsertEdge(model.Edge{
		ID:           h.placeholderID,
		BoardID:      boardID,
		SourceNodeID: req.SourceNodeID,
		TargetNodeID: req.TargetNodeID,
	})

	go func() {
		edge, err := o.api.CreateEdge(ctx, boardID, req)

		h.mu.Lock()
		cancelled := h.cancelled
		if err == nil && !cancelled {
			h.serverID = edge.ID
		}
		h.mu.Unlock()

		switch {
		case err != nil:
			if !cancelled {
				o.cache.RemoveEdge(h.placeholderID)
			}
			o.logger.Warn("edge create rolled back", zap.Error(err))
			h.resolve(Result{Outcome: OutcomeRolledBack, Err: err})
		case cancelled:
			if _, derr := o.api.DeleteEdge(ctx, boardID, edge.ID); derr != nil {
				o.logger.Warn("cleanup delete after cancelled create failed",
					zap.Int64("edge_id", edge.ID), zap.Error(derr))
			}
			h.resolve(Result{Outcome: OutcomeCancelled})
		default:
			o.cache.ReplaceEdge(h.placeholderID, *edge)
			h.resolve(Result{Outcome: OutcomeCommitted, Edge: edge})
		}
	}()
	return h
}

func (h *CreateEdgeHandle) resolve(res Result) {
	h.done <- res
	close(h.done)
}

// UpdateEdge reassigns edge endpoints with the same optimistic and
// conflict-retry semantics as UpdateNode.
func (o *Optimistic) UpdateEdge(ctx context.Context, edgeID int64, patch EdgePatch) <-chan Result {
	done := make(chan Result, 1)
	boardID := o.cache.BoardID()

	prior, ok := o.cache.Edge(edgeID)
	if !ok {
		done <- Result{Outcome: OutcomeRolledBack, Err: ErrNotInCache}
		close(done)
		return done
	}

	optimistic := prior
	if patch.SourceNodeID != nil {
		optimistic.SourceNodeID = *patch.SourceNodeID
	}
	if patch.TargetNodeID != nil {
		optimistic.TargetNodeID = *patch.TargetNodeID
	}
	o.cache.UpsertEdge(optimistic)

	if model.IsPlaceholder(edgeID) {
		done <- Result{Outcome: OutcomeCommitted, Edge: &optimistic}
		close(done)
		return done
	}

	go func() {
		defer close(done)
		patch.ExpectedUpdatedAt = &prior.UpdatedAt

		canonical, err := o.api.UpdateEdge(ctx, boardID, edgeID, patch)
		if err == nil {
			o.cache.UpsertEdge(*canonical)
			done <- Result{Outcome: OutcomeCommitted, Edge: canonical}
			return
		}

		var conflict *ConflictError
		if !errors.As(err, &conflict) || conflict.Edge == nil {
			o.cache.UpsertEdge(prior)
			o.logger.Warn("edge update rolled back", zap.Int64("edge_id", edgeID), zap.Error(err))
			done <- Result{Outcome: OutcomeRolledBack, Err: err}
			return
		}

		o.cache.UpsertEdge(*conflict.Edge)
		patch.ExpectedUpdatedAt = &conflict.Edge.UpdatedAt

		canonical, err = o.api.UpdateEdge(ctx, boardID, edgeID, patch)
		if err == nil {
			o.cache.UpsertEdge(*canonical)
			done <- Result{Outcome: OutcomeCommitted, Edge: canonical}
			return
		}
		if errors.As(err, &conflict) && conflict.Edge != nil {
			o.cache.UpsertEdge(*conflict.Edge)
			done <- Result{Outcome: OutcomeConflictMerged, Edge: conflict.Edge, Err: err}
			return
		}
		merged, _ := o.cache.Edge(edgeID)
		o.logger.Warn("edge update abandoned after conflict", zap.Int64("edge_id", edgeID), zap.Error(err))
		done <- Result{Outcome: OutcomeConflictMerged, Edge: &merged, Err: err}
	}()
	return done
}

// DeleteEdge removes the edge from the cache synchronously, then
// deletes it server-side, restoring it on failure.
func (o *Optimistic) DeleteEdge(ctx context.Context, edgeID int64) <-chan Result {
	done := make(chan Result, 1)
	boardID := o.cache.BoardID()

	removed, ok := o.cache.RemoveEdge(edgeID)
	if !ok {
		done <- Result{Outcome: OutcomeRolledBack, Err: ErrNotInCache}
		close(done)
		return done
	}
	if model.IsPlaceholder(edgeID) {
		done <- Result{Outcome: OutcomeCommitted, Edge: &removed}
		close(done)
		return done
	}

	go func() {
		defer close(done)
		if _, err := o.api.DeleteEdge(ctx, boardID, edgeID); err != nil {
			var apiErr *APIError
			if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
				done <- Result{Outcome: OutcomeCommitted, Edge: &removed}
				return
			}
			o.cache.UpsertEdge(removed)
			o.logger.Warn("edge delete rolled back", zap.Int64("edge_id", edgeID), zap.Error(err))
			done <- Result{Outcome: OutcomeRolledBack, Err: err}
			return
		}
		done <- Result{Outcome: OutcomeCommitted, Edge: &removed}
	}()
	return done
}

// applyNodePatch computes the optimistic record from a patch, mirroring
// the server's partial-update semantics.
func applyNodePatch(n model.Node, patch NodePatch) model.Node {
	out := n.Clone()
	if patch.Type != nil {
		out.Type = *patch.Type
		if out.Type == model.NodeTypeTask {
			s := model.TaskStatusTodo
			out.Status = &s
		} else {
			out.Status = nil
		}
		if out.Type != model.NodeTypeJournal {
			out.JournaledAt = nil
		}
	}
	if patch.Status != nil {
		s := *patch.Status
		out.Status = &s
	}
	if patch.JournaledAt != nil {
		t := *patch.JournaledAt
		out.JournaledAt = &t
	}
	if patch.FlowID != nil {
		if *patch.FlowID == 0 {
			out.FlowID = nil
		} else {
			v := *patch.FlowID
			out.FlowID = &v
		}
	}
	if patch.X != nil {
		out.X = *patch.X
	}
	if patch.Y != nil {
		out.Y = *patch.Y
	}
	if patch.Width != nil {
		out.Width = clampSize(*patch.Width)
	}
	if patch.Height != nil {
		out.Height = clampSize(*patch.Height)
	}
	if patch.Title != nil {
		out.Title = *patch.Title
	}
	if patch.Content != nil {
		out.Content = *patch.Content
	}
	if patch.Tags != nil {
		out.Tags = append([]string(nil), (*patch.Tags)...)
	}
	return out
}

func clampSize(v float64) float64 {
	if v < model.MinNodeSize {
		return model.MinNodeSize
	}
	return v
}
