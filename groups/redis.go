package groups

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/redis/go-redis/v9"

	"ordercast/protocol"
)

// RedisBackplane spreads groups across several router processes. Publish
// goes through a Redis channel per group; every process, including the
// publisher, receives it on its pattern subscription and delivers to its
// local members.
type RedisBackplane struct {
	client *redis.Client
	local  *Registry
	prefix string
	pubsub *redis.PubSub
	done   chan struct{}
}

func NewRedisBackplane(client *redis.Client, local *Registry, prefix string) *RedisBackplane {
	return &RedisBackplane{
		client: client,
		local:  local,
		prefix: prefix,
		done:   make(chan struct{}),
	}
}

func (b *RedisBackplane) channel(group string) string {
	return b.prefix + group
}

func (b *RedisBackplane) groupOf(channel string) (string, bool) {
	if !strings.HasPrefix(channel, b.prefix) {
		return "", false
	}
	return strings.TrimPrefix(channel, b.prefix), true
}

// Start subscribes to every group channel and begins local fan-out.
func (b *RedisBackplane) Start(ctx context.Context) error {
	ps := b.client.PSubscribe(ctx, b.prefix+"*")
	if _, err := ps.Receive(ctx); err != nil {
		ps.Close()
		return fmt.Errorf("redis psubscribe: %w", err)
	}
	b.pubsub = ps
	go b.run(ps.Channel())
	return nil
}

func (b *RedisBackplane) run(ch <-chan *redis.Message) {
	defer close(b.done)
	for msg := range ch {
		group, ok := b.groupOf(msg.Channel)
		if !ok {
			continue
		}
		ev, err := protocol.DecodeEvent([]byte(msg.Payload))
		if err != nil {
			log.Printf("backplane: drop message on %s: %v", msg.Channel, err)
			continue
		}
		b.local.Deliver(group, ev)
	}
}

// Publish sends ev to group on every process. If Redis is unreachable the
// event is delivered to local members only and the error is returned.
func (b *RedisBackplane) Publish(ctx context.Context, group string, ev protocol.Event) error {
	data, err := protocol.EncodeEvent(ev)
	if err != nil {
		return err
	}
	if err := b.client.Publish(ctx, b.channel(group), data).Err(); err != nil {
		b.local.Deliver(group, ev)
		return fmt.Errorf("redis publish %s (delivered locally): %w", group, err)
	}
	return nil
}

// Stop closes the subscription and waits for the fan-out loop to exit.
func (b *RedisBackplane) Stop() {
	if b.pubsub == nil {
		return
	}
	b.pubsub.Close()
	<-b.done
}

var _ Publisher = (*RedisBackplane)(nil)
