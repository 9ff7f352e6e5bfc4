package board

import (
	"context"
	"errors"
	"time"

	"github.com/flowweek/flowweek/internal/domain/board"
	"github.com/flowweek/flowweek/internal/domain/shared"
	"go.uber.org/zap"
)

// Service handles flow, node and edge operations for a board. All write
// operations publish domain events stamped with the originating client
// identifier so the realtime layer can suppress self-echoes.
type Service struct {
	boards board.BoardRepository
	flows  board.FlowRepository
	nodes  board.NodeRepository
	edges  board.EdgeRepository
	bus    shared.EventPublisher
	logger *zap.Logger
}

// NewService creates a new board Service
func NewService(
	boards board.BoardRepository,
	flows board.FlowRepository,
	nodes board.NodeRepository,
	edges board.EdgeRepository,
	bus shared.EventPublisher,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		boards: boards,
		flows:  flows,
		nodes:  nodes,
		edges:  edges,
		bus:    bus,
		logger: logger,
	}
}

// sameVersion compares version markers at millisecond resolution, which
// is what survives the JSON round trip through clients.
func sameVersion(a, b time.Time) bool {
	return a.UnixMilli() == b.UnixMilli()
}

func (s *Service) publish(ctx context.Context, events ...shared.DomainEvent) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(ctx, events...); err != nil {
		s.logger.Error("failed to publish domain events", zap.Error(err))
	}
}

// ListFlows returns all flow lanes on a board, creating the board lazily.
func (s *Service) ListFlows(ctx context.Context, boardID int64) ([]FlowResponse, error) {
	if _, err := s.boards.EnsureExists(ctx, boardID); err != nil {
		return nil, err
	}
	flows, err := s.flows.FindByBoard(ctx, boardID)
	if err != nil {
		return nil, err
	}
	out := make([]FlowResponse, 0, len(flows))
	for i := range flows {
		out = append(out, *toFlowResponse(&flows[i]))
	}
	return out, nil
}

// CreateFlow adds a flow lane to a board.
func (s *Service) CreateFlow(ctx context.Context, boardID int64, req CreateFlowRequest) (*FlowResponse, error) {
	if _, err := s.boards.EnsureExists(ctx, boardID); err != nil {
		return nil, err
	}
	flow, err := board.NewFlow(boardID, req.Name, req.Color, req.YLane)
	if err != nil {
		return nil, err
	}
	if err := s.flows.Save(ctx, flow); err != nil {
		return nil, err
	}
	return toFlowResponse(flow), nil
}

// ListNodes returns all nodes on a board, creating the board lazily.
func (s *Service) ListNodes(ctx context.Context, boardID int64) ([]board.NodePayload, error) {
	if _, err := s.boards.EnsureExists(ctx, boardID); err != nil {
		return nil, err
	}
	nodes, err := s.nodes.FindByBoard(ctx, boardID)
	if err != nil {
		return nil, err
	}
	out := make([]board.NodePayload, 0, len(nodes))
	for i := range nodes {
		out = append(out, board.SnapshotNode(&nodes[i]))
	}
	return out, nil
}

// CreateNode creates a node on a board and returns the canonical record
// with its server-assigned identifier.
func (s *Service) CreateNode(ctx context.Context, boardID int64, clientID string, req CreateNodeRequest) (*board.NodePayload, error) {
	if _, err := s.boards.EnsureExists(ctx, boardID); err != nil {
		return nil, err
	}

	node, err := board.NewNode(boardID, req.FlowID, board.NodeType(req.Type), req.Title, req.X, req.Y, req.Width, req.Height)
	if err != nil {
		return nil, err
	}
	if req.Content != "" {
		node.SetContent(req.Content)
	}
	if len(req.Tags) > 0 {
		node.SetTags(req.Tags)
	}
	if req.Status != nil {
		if err := node.SetStatus(board.TaskStatus(*req.Status)); err != nil {
			return nil, err
		}
	}
	if req.JournaledAt != nil {
		if err := node.SetJournaledAt(req.JournaledAt); err != nil {
			return nil, err
		}
	}

	if err := s.nodes.Save(ctx, node); err != nil {
		return nil, err
	}

	payload := board.SnapshotNode(node)
	s.publish(ctx, board.NewNodeCreatedEvent(node, clientID))
	return &payload, nil
}

// UpdateNode applies a partial patch to a node. A stale version marker
// fails with *ConflictError carrying the current canonical record.
func (s *Service) UpdateNode(ctx context.Context, boardID, nodeID int64, clientID string, req UpdateNodeRequest) (*board.NodePayload, error) {
	node, err := s.nodes.FindByID(ctx, boardID, nodeID)
	if err != nil {
		return nil, err
	}

	if req.ExpectedUpdatedAt != nil && !sameVersion(node.UpdatedAt, *req.ExpectedUpdatedAt) {
		current := board.SnapshotNode(node)
		s.logger.Debug("node update rejected on stale version",
			zap.Int64("board_id", boardID),
			zap.Int64("node_id", nodeID),
			zap.Time("expected", *req.ExpectedUpdatedAt),
			zap.Time("current", node.UpdatedAt),
		)
		return nil, &ConflictError{Current: &current}
	}

	if req.Type != nil {
		if err := node.SetType(board.NodeType(*req.Type)); err != nil {
			return nil, err
		}
	}
	if req.Status != nil {
		if err := node.SetStatus(board.TaskStatus(*req.Status)); err != nil {
			return nil, err
		}
	}
	if req.JournaledAt != nil {
		if err := node.SetJournaledAt(req.JournaledAt); err != nil {
			return nil, err
		}
	}
	if req.FlowID != nil {
		if *req.FlowID == 0 {
			node.SetFlow(nil)
		} else {
			node.SetFlow(req.FlowID)
		}
	}
	if req.X != nil || req.Y != nil {
		x, y := node.X, node.Y
		if req.X != nil {
			x = *req.X
		}
		if req.Y != nil {
			y = *req.Y
		}
		node.MoveTo(x, y)
	}
	if req.Width != nil || req.Height != nil {
		w, h := node.Width, node.Height
		if req.Width != nil {
			w = *req.Width
		}
		if req.Height != nil {
			h = *req.Height
		}
		node.ResizeTo(w, h)
	}
	if req.Title != nil {
		node.SetTitle(*req.Title)
	}
	if req.Content != nil {
		node.SetContent(*req.Content)
	}
	if req.Tags != nil {
		node.SetTags(*req.Tags)
	}

	if err := s.nodes.Save(ctx, node); err != nil {
		return nil, err
	}

	payload := board.SnapshotNode(node)
	s.publish(ctx, board.NewNodeUpdatedEvent(node, clientID))
	return &payload, nil
}

// DeleteNode removes a node and cascades all edges referencing it.
// Every cascaded edge is published as its own deletion event.
func (s *Service) DeleteNode(ctx context.Context, boardID, nodeID int64, clientID string) (*board.NodePayload, error) {
	node, err := s.nodes.FindByID(ctx, boardID, nodeID)
	if err != nil {
		return nil, err
	}

	cascaded, err := s.edges.DeleteByNode(ctx, boardID, nodeID)
	if err != nil {
		return nil, err
	}
	if err := s.nodes.Delete(ctx, boardID, nodeID); err != nil {
		return nil, err
	}

	events := make([]shared.DomainEvent, 0, len(cascaded)+1)
	for i := range cascaded {
		events = append(events, board.NewEdgeDeletedEvent(&cascaded[i], clientID))
	}
	payload := board.SnapshotNode(node)
	events = append(events, board.NewNodeDeletedEvent(node, clientID))
	s.publish(ctx, events...)
	return &payload, nil
}

// ListEdges returns all edges on a board, creating the board lazily.
func (s *Service) ListEdges(ctx context.Context, boardID int64) ([]board.EdgePayload, error) {
	if _, err := s.boards.EnsureExists(ctx, boardID); err != nil {
		return nil, err
	}
	edges, err := s.edges.FindByBoard(ctx, boardID)
	if err != nil {
		return nil, err
	}
	out := make([]board.EdgePayload, 0, len(edges))
	for i := range edges {
		out = append(out, board.SnapshotEdge(&edges[i]))
	}
	return out, nil
}

// CreateEdge creates a directed edge. Both endpoints must exist on the
// board; duplicates between the same pair are allowed.
func (s *Service) CreateEdge(ctx context.Context, boardID int64, clientID string, req CreateEdgeRequest) (*board.EdgePayload, error) {
	if _, err := s.boards.EnsureExists(ctx, boardID); err != nil {
		return nil, err
	}
	if err := s.requireNode(ctx, boardID, req.SourceNodeID); err != nil {
		return nil, err
	}
	if err := s.requireNode(ctx, boardID, req.TargetNodeID); err != nil {
		return nil, err
	}

	edge, err := board.NewEdge(boardID, req.SourceNodeID, req.TargetNodeID)
	if err != nil {
		return nil, err
	}
	if err := s.edges.Save(ctx, edge); err != nil {
		return nil, err
	}

	payload := board.SnapshotEdge(edge)
	s.publish(ctx, board.NewEdgeCreatedEvent(edge, clientID))
	return &payload, nil
}

// UpdateEdge reassigns edge endpoints with the same version-check
// semantics as node updates.
func (s *Service) UpdateEdge(ctx context.Context, boardID, edgeID int64, clientID string, req UpdateEdgeRequest) (*board.EdgePayload, error) {
	edge, err := s.edges.FindByID(ctx, boardID, edgeID)
	if err != nil {
		return nil, err
	}

	if req.ExpectedUpdatedAt != nil && !sameVersion(edge.UpdatedAt, *req.ExpectedUpdatedAt) {
		current := board.SnapshotEdge(edge)
		return nil, &ConflictError{Current: &current}
	}

	if req.SourceNodeID != nil {
		if err := s.requireNode(ctx, boardID, *req.SourceNodeID); err != nil {
			return nil, err
		}
		if err := edge.SetSource(*req.SourceNodeID); err != nil {
			return nil, err
		}
	}
	if req.TargetNodeID != nil {
		if err := s.requireNode(ctx, boardID, *req.TargetNodeID); err != nil {
			return nil, err
		}
		if err := edge.SetTarget(*req.TargetNodeID); err != nil {
			return nil, err
		}
	}

	if err := s.edges.Save(ctx, edge); err != nil {
		return nil, err
	}

	payload := board.SnapshotEdge(edge)
	s.publish(ctx, board.NewEdgeUpdatedEvent(edge, clientID))
	return &payload, nil
}

// DeleteEdge removes a single edge.
func (s *Service) DeleteEdge(ctx context.Context, boardID, edgeID int64, clientID string) (*board.EdgePayload, error) {
	edge, err := s.edges.FindByID(ctx, boardID, edgeID)
	if err != nil {
		return nil, err
	}
	if err := s.edges.Delete(ctx, boardID, edgeID); err != nil {
		return nil, err
	}

	payload := board.SnapshotEdge(edge)
	s.publish(ctx, board.NewEdgeDeletedEvent(edge, clientID))
	return &payload, nil
}

func (s *Service) requireNode(ctx context.Context, boardID, nodeID int64) error {
	if _, err := s.nodes.FindByID(ctx, boardID, nodeID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("EDGE_ENDPOINT_MISSING", "Edge endpoint does not exist on this board")
		}
		return err
	}
	return nil
}
