package ws

import (
	"context"
	"errors"
	log "log/slog"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 << 10
)

var (
	ErrClientClosed = errors.New("ws: client closed")
	ErrSendBlocked  = errors.New("ws: send buffer full")
)

// ClientOptions 连接级参数，EventRate <= 0 表示不限流
type ClientOptions struct {
	BufferSize int
	EventRate  float64
	EventBurst int
}

// Client 一个 websocket 连接，读写各一个 goroutine
type Client struct {
	id      string
	userID  uint64
	conn    *websocket.Conn
	send    chan []byte
	gateway *Gateway
	limiter *rate.Limiter

	done      chan struct{}
	closeOnce sync.Once
}

func NewClient(conn *websocket.Conn, userID uint64, gateway *Gateway, opts ClientOptions) *Client {
	if opts.BufferSize <= 0 {
		opts.BufferSize = 256
	}
	return &Client{
		id:      uuid.NewString(),
		userID:  userID,
		conn:    conn,
		send:    make(chan []byte, opts.BufferSize),
		gateway: gateway,
		limiter: newEventLimiter(opts.EventRate, opts.EventBurst),
		done:    make(chan struct{}),
	}
}

func newEventLimiter(r float64, burst int) *rate.Limiter {
	if r <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	if burst <= 0 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(r), burst)
}

func (c *Client) ID() string { return c.id }

func (c *Client) UserID() uint64 { return c.userID }

// Send 非阻塞写入发送队列，队列满时丢弃并返回错误
func (c *Client) Send(event string, payload any) error {
	return c.enqueue(&Frame{Event: event, Data: payload})
}

func (c *Client) Ack(ackID string, ack *Ack) error {
	return c.enqueue(&Frame{Event: EventAck, AckID: ackID, Data: ack})
}

func (c *Client) enqueue(frame *Frame) error {
	data, err := json.Marshal(frame)
	if err != nil {
		return err
	}
	select {
	case <-c.done:
		return ErrClientClosed
	default:
	}
	select {
	case c.send <- data:
		return nil
	case <-c.done:
		return ErrClientClosed
	default:
		return ErrSendBlocked
	}
}

// Close 可重复调用
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}

// Serve 注册连接并阻塞到连接断开
func (c *Client) Serve(ctx context.Context) {
	c.gateway.OnConnect(c)
	go c.writePump()
	c.readPump(ctx)
}

func (c *Client) readPump(ctx context.Context) {
	defer func() {
		c.gateway.OnDisconnect(c)
		c.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error { return c.conn.SetReadDeadline(time.Now().Add(pongWait)) })
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("WS 读取失败", "connId", c.id, "userId", c.userID, "err", err)
			}
			return
		}
		if !c.limiter.Allow() {
			c.gateway.Throttle(ctx, c, raw)
			continue
		}
		c.gateway.Dispatch(ctx, c, raw)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()
	for {
		select {
		case message := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Warn("WS 推送失败", "connId", c.id, "userId", c.userID, "err", err)
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}
