package presence

import (
	"Rendezvous/internal/pkg/consts"
	"Rendezvous/internal/pkg/redis"
	"context"
	log "log/slog"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// envelope 跨实例事件，UserIDs 为空且 Broadcast 为 true 时投递给所有连接
type envelope struct {
	Origin    string          `json:"origin"`
	Event     string          `json:"event"`
	Payload   json.RawMessage `json:"payload"`
	UserIDs   []uint64        `json:"userIds,omitempty"`
	Broadcast bool            `json:"broadcast,omitempty"`
}

type publishFunc func(ctx context.Context, channel string, payload interface{}) error

// RedisDispatcher 先投递本地连接，再通过 Redis 频道通知其它实例
type RedisDispatcher struct {
	local   *LocalDispatcher
	origin  string
	channel string
	publish publishFunc
}

func NewRedisDispatcher(registry *Registry) *RedisDispatcher {
	return &RedisDispatcher{
		local:   NewLocalDispatcher(registry),
		origin:  uuid.NewString(),
		channel: consts.IMEventChannel,
		publish: redis.Publish,
	}
}

func (d *RedisDispatcher) ToUsers(ctx context.Context, event string, payload any, userIDs ...uint64) {
	d.local.ToUsers(ctx, event, payload, userIDs...)
	d.forward(ctx, &envelope{Event: event, UserIDs: userIDs}, payload)
}

func (d *RedisDispatcher) Broadcast(ctx context.Context, event string, payload any) {
	d.local.Broadcast(ctx, event, payload)
	d.forward(ctx, &envelope{Event: event, Broadcast: true}, payload)
}

func (d *RedisDispatcher) forward(ctx context.Context, env *envelope, payload any) {
	raw, err := json.Marshal(payload)
	if err != nil {
		log.ErrorContext(ctx, "failed to marshal event payload", "event", env.Event, "err", err)
		return
	}
	env.Origin = d.origin
	env.Payload = raw
	data, err := json.Marshal(env)
	if err != nil {
		log.ErrorContext(ctx, "failed to marshal event envelope", "event", env.Event, "err", err)
		return
	}
	if err = d.publish(ctx, d.channel, data); err != nil {
		log.WarnContext(ctx, "failed to publish event", "event", env.Event, "err", err)
	}
}

// Run 订阅频道并投递其它实例发布的事件，直到 ctx 结束
func (d *RedisDispatcher) Run(ctx context.Context) error {
	sub := redis.Subscribe(ctx, d.channel)
	defer func() { _ = sub.Close() }()

	if _, err := sub.Receive(ctx); err != nil {
		return err
	}
	log.Info("IM event relay subscribed", "channel", d.channel)

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			d.handle(ctx, []byte(msg.Payload))
		}
	}
}

func (d *RedisDispatcher) handle(ctx context.Context, data []byte) {
	env := &envelope{}
	if err := json.Unmarshal(data, env); err != nil {
		log.WarnContext(ctx, "invalid relay envelope", "err", err)
		return
	}
	if env.Origin == d.origin {
		return
	}
	if env.Broadcast {
		d.local.Broadcast(ctx, env.Event, env.Payload)
		return
	}
	d.local.ToUsers(ctx, env.Event, env.Payload, env.UserIDs...)
}
