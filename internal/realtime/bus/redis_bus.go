package bus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/batchprocess-backend/internal/platform/logger"
)

const defaultChannel = "batch-process"

var errRedisBusClosed = errors.New("redis event bus not initialized")

type RedisOptions struct {
	Addr        string
	Password    string
	DB          int
	Channel     string
	PingTimeout time.Duration
}

func (o RedisOptions) normalized() (RedisOptions, error) {
	o.Addr = strings.TrimSpace(o.Addr)
	if o.Addr == "" {
		return o, fmt.Errorf("missing REDIS_ADDR")
	}
	if o.Channel = strings.TrimSpace(o.Channel); o.Channel == "" {
		o.Channel = defaultChannel
	}
	if o.PingTimeout <= 0 {
		o.PingTimeout = 5 * time.Second
	}
	return o, nil
}

// redisBus publishes job events as JSON on one pub/sub channel.
type redisBus struct {
	log     *logger.Logger
	rdb     *goredis.Client
	channel string
}

func NewRedisBus(log *logger.Logger, opts RedisOptions) (Bus, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	opts, err := opts.normalized()
	if err != nil {
		return nil, err
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        opts.Addr,
		Password:    opts.Password,
		DB:          opts.DB,
		DialTimeout: opts.PingTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), opts.PingTimeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", opts.Addr, err)
	}
	log.Info("redis event bus connected", "addr", opts.Addr, "channel", opts.Channel)
	return &redisBus{log: log.Named("redis_bus"), rdb: rdb, channel: opts.Channel}, nil
}

func (b *redisBus) Publish(ctx context.Context, ev Event) error {
	if b == nil || b.rdb == nil {
		return errRedisBusClosed
	}
	raw, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", ev.Verb, err)
	}
	return b.rdb.Publish(ctx, b.channel, raw).Err()
}

// StartForwarder subscribes synchronously, then delivers events on a goroutine
// until ctx is cancelled or the subscription channel closes.
func (b *redisBus) StartForwarder(ctx context.Context, onEvent func(ev Event)) error {
	if b == nil || b.rdb == nil {
		return errRedisBusClosed
	}
	if onEvent == nil {
		return fmt.Errorf("onEvent callback required")
	}
	sub := b.rdb.Subscribe(ctx, b.channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("redis subscribe %s: %w", b.channel, err)
	}
	go b.forward(ctx, sub, onEvent)
	return nil
}

func (b *redisBus) forward(ctx context.Context, sub *goredis.PubSub, onEvent func(ev Event)) {
	defer sub.Close()
	msgs := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case m, ok := <-msgs:
			if !ok {
				return
			}
			if m == nil {
				continue
			}
			ev, err := decodeEvent(m.Payload)
			if err != nil {
				b.log.Warn("dropping malformed job event", "error", err)
				continue
			}
			onEvent(ev)
		}
	}
}

func (b *redisBus) Close() error {
	if b == nil || b.rdb == nil {
		return nil
	}
	return b.rdb.Close()
}

func decodeEvent(payload string) (Event, error) {
	var ev Event
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		return Event{}, fmt.Errorf("decode job event: %w", err)
	}
	if ev.Verb == "" {
		return Event{}, fmt.Errorf("decode job event: missing verb")
	}
	return ev, nil
}
