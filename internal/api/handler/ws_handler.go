package handler

import (
	"Rendezvous/internal/api/ws"
	"Rendezvous/internal/pkg/response"
	"Rendezvous/internal/pkg/security"
	"Rendezvous/internal/service"
	"context"
	log "log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type WsHandler struct {
	gateway *ws.Gateway
}

func NewWsHandler(gateway *ws.Gateway) *WsHandler {
	return &WsHandler{gateway: gateway}
}

// Connect 升级为 Websocket 连接
// 未携带 token 的连接为匿名连接，不参与在线状态统计；token 无效直接拒绝
func (s *WsHandler) Connect(c *gin.Context) {
	var userID uint64
	if token := wsToken(c); token != "" {
		claims, err := security.ValidateToken(token)
		if err != nil {
			log.Warn("WS 鉴权失败", "err", err)
			response.Error(c, service.UnauthorizedError)
			return
		}
		userID = claims.UserID
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("WS 协议升级失败", "err", err)
		return
	}

	cfg := imConfig()
	client := ws.NewClient(conn, userID, s.gateway, ws.ClientOptions{
		BufferSize: cfg.WsSendBuffer,
		EventRate:  cfg.WsEventRate,
		EventBurst: cfg.WsEventBurst,
	})
	client.Serve(context.WithoutCancel(c.Request.Context()))
}

func wsToken(c *gin.Context) string {
	if token := c.Query("token"); token != "" {
		return token
	}
	return security.BearerToken(c.GetHeader("Authorization"))
}
