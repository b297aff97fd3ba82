package handler

import (
	"Rendezvous/internal/api/ws"
	"Rendezvous/internal/pkg/presence"
	"bytes"
	log "log/slog"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) count(s string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return strings.Count(b.buf.String(), s)
}

func TestWsHandler_LogsEachConnectionOnce(t *testing.T) {
	out := &syncBuffer{}
	prev := log.Default()
	log.SetDefault(log.New(log.NewTextHandler(out, nil)))
	t.Cleanup(func() { log.SetDefault(prev) })

	registry := presence.NewRegistry()
	gateway := ws.NewGateway(registry, presence.NewLocalDispatcher(registry), &fakeMessageService{})
	h := NewWsHandler(gateway)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/ws", h.Connect)
	srv := httptest.NewServer(r)
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	require.NoError(t, err)

	assert.Eventually(t, func() bool { return out.count("连接已建立") == 1 }, time.Second, 10*time.Millisecond)

	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	_ = conn.Close()

	assert.Eventually(t, func() bool { return out.count("连接已断开") == 1 }, time.Second, 10*time.Millisecond)
	assert.Never(t, func() bool {
		return out.count("连接已建立") > 1 || out.count("连接已断开") > 1
	}, 100*time.Millisecond, 10*time.Millisecond)
}
