package realtime

import (
	"encoding/json"

	"github.com/flowweek/flowweek/client/cache"
	"github.com/flowweek/flowweek/client/model"
	"go.uber.org/zap"
)

// CacheApplier returns a Handler that plays other clients' change events
// into the shared board cache. Records from other boards are ignored.
func CacheApplier(c *cache.BoardCache, logger *zap.Logger) Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(ev Event) {
		switch ev.Type {
		case EventNodeCreated, EventNodeUpdated:
			var n model.Node
			if err := json.Unmarshal(ev.Data, &n); err != nil {
				logger.Debug("undecodable node event", zap.String("type", ev.Type), zap.Error(err))
				return
			}
			if n.BoardID != c.BoardID() {
				return
			}
			c.UpsertNode(n)
		case EventNodeDeleted:
			var n model.Node
			if err := json.Unmarshal(ev.Data, &n); err != nil {
				logger.Debug("undecodable node event", zap.String("type", ev.Type), zap.Error(err))
				return
			}
			if n.BoardID != c.BoardID() {
				return
			}
			c.RemoveNode(n.ID)
		case EventEdgeCreated, EventEdgeUpdated:
			var e model.Edge
			if err := json.Unmarshal(ev.Data, &e); err != nil {
				logger.Debug("undecodable edge event", zap.String("type", ev.Type), zap.Error(err))
				return
			}
			if e.BoardID != c.BoardID() {
				return
			}
			c.UpsertEdge(e)
		case EventEdgeDeleted:
			var e model.Edge
			if err := json.Unmarshal(ev.Data, &e); err != nil {
				logger.Debug("undecodable edge event", zap.String("type", ev.Type), zap.Error(err))
				return
			}
			if e.BoardID != c.BoardID() {
				return
			}
			c.RemoveEdge(e.ID)
		}
	}
}
