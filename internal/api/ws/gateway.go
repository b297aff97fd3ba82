package ws

import (
	"Rendezvous/internal/pkg/logger"
	"Rendezvous/internal/pkg/metrics"
	"Rendezvous/internal/pkg/presence"
	"Rendezvous/internal/pkg/util"
	"Rendezvous/internal/service"
	"context"
	"fmt"
	log "log/slog"
	"sync"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// Peer 网关视角的连接
type Peer interface {
	presence.Conn
	Ack(ackID string, ack *Ack) error
}

type handlerFunc func(ctx context.Context, peer Peer, data json.RawMessage) (any, error)

// Gateway 无状态事件路由：解析上行事件，调用消息服务，成功后扇出
type Gateway struct {
	registry   *presence.Registry
	dispatcher presence.Dispatcher
	messages   service.MessageService
	handlers   map[string]handlerFunc

	mu    sync.Mutex
	peers map[string]Peer
}

func NewGateway(registry *presence.Registry, dispatcher presence.Dispatcher, messages service.MessageService) *Gateway {
	g := &Gateway{
		registry:   registry,
		dispatcher: dispatcher,
		messages:   messages,
		peers:      make(map[string]Peer),
	}
	g.handlers = map[string]handlerFunc{
		EventCheckUserOnlineStatus: g.checkUserOnlineStatus,
		EventSendMessage:           g.sendMessage,
		EventEditMessage:           g.editMessage,
		EventToggleMessageDeletion: g.toggleMessageDeletion,
		EventDeleteAttachment:      g.deleteAttachment,
		EventMarkMessagesRead:      g.markMessagesRead,
	}
	return g
}

// OnConnect 带身份的连接进入在线表，匿名连接不做在线跟踪
func (g *Gateway) OnConnect(peer Peer) {
	g.mu.Lock()
	g.peers[peer.ID()] = peer
	g.mu.Unlock()

	if peer.UserID() != 0 {
		g.registry.Register(peer)
	}
	metrics.WsConnections.Inc()
	metrics.OnlineUsers.Set(float64(g.registry.OnlineUsers()))
	log.Info("用户 WS 连接已建立", "connId", peer.ID(), "userId", peer.UserID())
}

func (g *Gateway) OnDisconnect(peer Peer) {
	g.mu.Lock()
	delete(g.peers, peer.ID())
	g.mu.Unlock()

	g.registry.Deregister(peer)
	metrics.WsConnections.Dec()
	metrics.OnlineUsers.Set(float64(g.registry.OnlineUsers()))
	log.Info("用户 WS 连接已断开", "connId", peer.ID(), "userId", peer.UserID())
}

// Shutdown 关闭所有连接
func (g *Gateway) Shutdown() {
	g.mu.Lock()
	peers := make([]Peer, 0, len(g.peers))
	for _, p := range g.peers {
		peers = append(peers, p)
	}
	g.mu.Unlock()

	for _, p := range peers {
		if c, ok := p.(interface{ Close() }); ok {
			c.Close()
		}
	}
}

// Dispatch 处理一个上行帧，任何错误都转为失败确认，不向外抛出
func (g *Gateway) Dispatch(ctx context.Context, peer Peer, raw []byte) {
	ctx = logger.WithTraceID(ctx, uuid.NewString())

	frame := &InboundFrame{}
	if err := json.Unmarshal(raw, frame); err != nil {
		metrics.WsEvents.WithLabelValues("invalid", metrics.ResultRejected).Inc()
		g.reply(ctx, peer, "", nil, service.ErrInvalidRequest)
		return
	}

	handler, ok := g.handlers[frame.Event]
	if !ok {
		metrics.WsEvents.WithLabelValues("unknown", metrics.ResultRejected).Inc()
		g.reply(ctx, peer, frame.AckID, nil, fmt.Errorf("%w: unsupported event %q", service.ErrInvalidRequest, frame.Event))
		return
	}

	data, err := g.invoke(ctx, handler, peer, frame)
	result := metrics.ResultOK
	if err != nil {
		result = metrics.ResultFailed
	}
	metrics.WsEvents.WithLabelValues(frame.Event, result).Inc()
	g.reply(ctx, peer, frame.AckID, data, err)
}

// Throttle 超出频率限制的帧直接拒绝，不进入业务处理
func (g *Gateway) Throttle(ctx context.Context, peer Peer, raw []byte) {
	frame := &InboundFrame{}
	_ = json.Unmarshal(raw, frame)
	metrics.WsEvents.WithLabelValues("throttled", metrics.ResultRejected).Inc()
	g.reply(ctx, peer, frame.AckID, nil, service.ErrTooManyRequests)
}

func (g *Gateway) invoke(ctx context.Context, handler handlerFunc, peer Peer, frame *InboundFrame) (data any, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.ErrorContext(ctx, "WS 事件处理 panic", "event", frame.Event, "panic", r)
			data, err = nil, service.UnExpectedError
		}
	}()
	return handler(ctx, peer, frame.Data)
}

func (g *Gateway) reply(ctx context.Context, peer Peer, ackID string, data any, err error) {
	ack := &Ack{Success: true, Message: "success", Data: data}
	if err != nil {
		sentinel, code := service.ResolveError(err)
		if code >= service.InternalServerError {
			log.ErrorContext(ctx, "WS 事件处理失败", "connId", peer.ID(), "err", err)
		} else {
			log.WarnContext(ctx, "WS 事件被拒绝", "connId", peer.ID(), "err", err)
		}
		ack = &Ack{Success: false, Message: sentinel.Error()}
	}
	if sendErr := peer.Ack(ackID, ack); sendErr != nil {
		log.WarnContext(ctx, "WS 确认发送失败", "connId", peer.ID(), "err", sendErr)
	}
}

func decode(data json.RawMessage, v any) error {
	if len(data) == 0 {
		return service.ErrInvalidRequest
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %s", service.ErrInvalidRequest, err.Error())
	}
	if err := util.ValidateDTO(v); err != nil {
		return fmt.Errorf("%w: %s", service.ErrInvalidRequest, err.Error())
	}
	return nil
}
