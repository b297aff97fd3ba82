package presence

import (
	"Rendezvous/internal/pkg/metrics"
	"context"
	log "log/slog"
)

const (
	EventUserStatusChanged = "userStatusChanged"
)

// StatusChange 上下线事件载荷
type StatusChange struct {
	UserID   uint64 `json:"userId"`
	IsOnline bool   `json:"isOnline"`
}

// Dispatcher 事件扇出
type Dispatcher interface {
	ToUsers(ctx context.Context, event string, payload any, userIDs ...uint64)
	Broadcast(ctx context.Context, event string, payload any)
}

// LocalDispatcher 只投递到本进程内的连接
type LocalDispatcher struct {
	registry *Registry
}

func NewLocalDispatcher(registry *Registry) *LocalDispatcher {
	return &LocalDispatcher{registry: registry}
}

// ToUsers 单个连接投递失败不影响其它连接
func (d *LocalDispatcher) ToUsers(ctx context.Context, event string, payload any, userIDs ...uint64) {
	seen := make(map[uint64]struct{}, len(userIDs))
	for _, userID := range userIDs {
		if _, ok := seen[userID]; ok || userID == 0 {
			continue
		}
		seen[userID] = struct{}{}
		d.deliver(ctx, event, payload, d.registry.ConnectionsFor(userID))
	}
}

func (d *LocalDispatcher) Broadcast(ctx context.Context, event string, payload any) {
	d.deliver(ctx, event, payload, d.registry.Snapshot())
}

func (d *LocalDispatcher) deliver(ctx context.Context, event string, payload any, conns []Conn) {
	for _, c := range conns {
		if err := c.Send(event, payload); err != nil {
			metrics.Deliveries.WithLabelValues(metrics.ResultFailed).Inc()
			log.WarnContext(ctx, "event delivery failed", "event", event, "connId", c.ID(), "userId", c.UserID(), "err", err)
			continue
		}
		metrics.Deliveries.WithLabelValues(metrics.ResultOK).Inc()
	}
}

// StatusListener 将上下线变化广播给所有连接
func StatusListener(d Dispatcher) Listener {
	return func(userID uint64, online bool) {
		d.Broadcast(context.Background(), EventUserStatusChanged, &StatusChange{UserID: userID, IsOnline: online})
	}
}
