package presence

import (
	"context"
	log "log/slog"
	"sync"
	"time"
)

const (
	lockStripes    = 64
	trackerTimeout = 3 * time.Second
)

// Conn 一个在线连接，Send 不得阻塞
type Conn interface {
	ID() string
	UserID() uint64
	Send(event string, payload any) error
}

// Listener 用户上下线回调，只在第一个连接建立和最后一个连接断开时触发
type Listener func(userID uint64, online bool)

// Tracker 跨实例在线计数，按实例计数：用户在某个实例上出现第一个连接时 Join，最后一个断开时 Leave
type Tracker interface {
	Join(ctx context.Context, userID uint64) (int64, error)
	Leave(ctx context.Context, userID uint64) (int64, error)
	Count(ctx context.Context, userID uint64) (int64, error)
}

// Registry 用户到连接集合的映射
// 同一用户的变更与回调由分段锁串行化，保证上下线事件严格交替；
// 不同分段互不阻塞，回调里的慢调用只影响同一分段的用户。
// mu 只保护映射本身，查询不会被回调阻塞。回调中不能再调用 Register/Deregister。
type Registry struct {
	stripes  [lockStripes]sync.Mutex
	mu       sync.RWMutex
	users    map[uint64]map[string]Conn
	owners   map[string]uint64
	listener Listener
	tracker  Tracker
}

func NewRegistry() *Registry {
	return &Registry{
		users:  make(map[uint64]map[string]Conn),
		owners: make(map[string]uint64),
	}
}

// SetListener 需在接入连接之前设置
func (r *Registry) SetListener(l Listener) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listener = l
}

// SetTracker 多实例部署时设置，上下线以集群为准
func (r *Registry) SetTracker(t Tracker) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tracker = t
}

func (r *Registry) stripe(userID uint64) *sync.Mutex {
	return &r.stripes[userID%lockStripes]
}

// Register 加入连接，用户在集群内的第一个连接建立时触发上线
func (r *Registry) Register(conn Conn) bool {
	userID := conn.UserID()
	if userID == 0 {
		return false
	}
	lock := r.stripe(userID)
	lock.Lock()
	defer lock.Unlock()

	r.mu.Lock()
	if _, ok := r.owners[conn.ID()]; ok {
		r.mu.Unlock()
		return false
	}
	set, ok := r.users[userID]
	if !ok {
		set = make(map[string]Conn)
		r.users[userID] = set
	}
	set[conn.ID()] = conn
	r.owners[conn.ID()] = userID
	firstLocal := len(set) == 1
	listener, tracker := r.listener, r.tracker
	r.mu.Unlock()

	if !firstLocal {
		return false
	}
	if tracker != nil && !joinCluster(tracker, userID) {
		return false
	}
	if listener != nil {
		listener(userID, true)
	}
	return true
}

// Deregister 移除连接，用户在集群内的最后一个连接断开时触发下线
func (r *Registry) Deregister(conn Conn) bool {
	userID := conn.UserID()
	if userID == 0 {
		return false
	}
	lock := r.stripe(userID)
	lock.Lock()
	defer lock.Unlock()

	r.mu.Lock()
	if owner, ok := r.owners[conn.ID()]; !ok || owner != userID {
		r.mu.Unlock()
		return false
	}
	delete(r.owners, conn.ID())
	set := r.users[userID]
	delete(set, conn.ID())
	lastLocal := len(set) == 0
	if lastLocal {
		delete(r.users, userID)
	}
	listener, tracker := r.listener, r.tracker
	r.mu.Unlock()

	if !lastLocal {
		return false
	}
	if tracker != nil && !leaveCluster(tracker, userID) {
		return false
	}
	if listener != nil {
		listener(userID, false)
	}
	return true
}

// joinCluster 计数失败时按本实例的状态处理
func joinCluster(t Tracker, userID uint64) bool {
	ctx, cancel := context.WithTimeout(context.Background(), trackerTimeout)
	defer cancel()
	n, err := t.Join(ctx, userID)
	if err != nil {
		log.Warn("presence join failed, falling back to local state", "userId", userID, "err", err)
		return true
	}
	return n == 1
}

func leaveCluster(t Tracker, userID uint64) bool {
	ctx, cancel := context.WithTimeout(context.Background(), trackerTimeout)
	defer cancel()
	n, err := t.Leave(ctx, userID)
	if err != nil {
		log.Warn("presence leave failed, falling back to local state", "userId", userID, "err", err)
		return true
	}
	return n <= 0
}

// IsOnline 本实例有连接即在线，否则查询集群计数
func (r *Registry) IsOnline(ctx context.Context, userID uint64) bool {
	r.mu.RLock()
	local := len(r.users[userID]) > 0
	tracker := r.tracker
	r.mu.RUnlock()
	if local || tracker == nil || userID == 0 {
		return local
	}

	ctx, cancel := context.WithTimeout(ctx, trackerTimeout)
	defer cancel()
	n, err := tracker.Count(ctx, userID)
	if err != nil {
		log.WarnContext(ctx, "presence count failed", "userId", userID, "err", err)
		return false
	}
	return n > 0
}

// ConnectionsFor 返回用户在本实例的连接快照，不存在时返回空切片
func (r *Registry) ConnectionsFor(userID uint64) []Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()
	set := r.users[userID]
	conns := make([]Conn, 0, len(set))
	for _, c := range set {
		conns = append(conns, c)
	}
	return conns
}

// Snapshot 返回本实例所有连接
func (r *Registry) Snapshot() []Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conns := make([]Conn, 0, len(r.owners))
	for _, set := range r.users {
		for _, c := range set {
			conns = append(conns, c)
		}
	}
	return conns
}

// OnlineUsers 本实例在线用户数
func (r *Registry) OnlineUsers() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users)
}
