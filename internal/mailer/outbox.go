package mailer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const sendTimeout = 30 * time.Second

// InlineOutbox delivers each message from its own goroutine. It is used when
// no Redis queue is configured.
type InlineOutbox struct {
	sender Sender
	log    *zap.Logger
	wg     sync.WaitGroup
}

func NewInlineOutbox(sender Sender, log *zap.Logger) *InlineOutbox {
	return &InlineOutbox{sender: sender, log: log}
}

// Enqueue never fails; delivery errors are logged.
func (o *InlineOutbox) Enqueue(ctx context.Context, msg Message) error {
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		// the request context ends with the response, delivery must outlive it
		sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sendTimeout)
		defer cancel()
		if err := o.sender.Send(sendCtx, msg); err != nil {
			o.log.Warn("mail delivery failed", zap.String("to", msg.To), zap.Error(err))
			return
		}
		o.log.Debug("mail delivered", zap.String("to", msg.To))
	}()
	return nil
}

// Wait blocks until all in-flight deliveries have finished.
func (o *InlineOutbox) Wait() {
	o.wg.Wait()
}

// RedisOutbox queues messages on a Redis list. Run drains the list and sends
// each message, so delivery survives API restarts.
type RedisOutbox struct {
	client *redis.Client
	key    string
	sender Sender
	log    *zap.Logger
	// poll bounds each BRPOP so Run notices cancellation.
	poll time.Duration
}

func NewRedisOutbox(client *redis.Client, key string, sender Sender, log *zap.Logger) *RedisOutbox {
	return &RedisOutbox{client: client, key: key, sender: sender, log: log, poll: 5 * time.Second}
}

func (o *RedisOutbox) Enqueue(ctx context.Context, msg Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode mail: %w", err)
	}
	if err := o.client.LPush(ctx, o.key, payload).Err(); err != nil {
		return fmt.Errorf("enqueue mail: %w", err)
	}
	return nil
}

// Run sends queued messages until ctx is cancelled.
func (o *RedisOutbox) Run(ctx context.Context) {
	o.log.Info("mail outbox worker started", zap.String("queue", o.key))
	for {
		if ctx.Err() != nil {
			o.log.Info("mail outbox worker stopped")
			return
		}
		msg, ok := o.next(ctx)
		if !ok {
			continue
		}
		sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
		if err := o.sender.Send(sendCtx, msg); err != nil {
			o.log.Warn("mail delivery failed", zap.String("to", msg.To), zap.Error(err))
		}
		cancel()
	}
}

func (o *RedisOutbox) next(ctx context.Context) (Message, bool) {
	var msg Message
	res, err := o.client.BRPop(ctx, o.poll, o.key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
			o.log.Error("read mail outbox", zap.Error(err))
			// avoid spinning while redis is unavailable
			select {
			case <-ctx.Done():
			case <-time.After(time.Second):
			}
		}
		return msg, false
	}
	// BRPOP returns [key, value]
	if len(res) != 2 {
		return msg, false
	}
	if err := json.Unmarshal([]byte(res[1]), &msg); err != nil {
		o.log.Error("drop malformed mail payload", zap.Error(err))
		return msg, false
	}
	return msg, true
}

// Len reports the number of queued messages.
func (o *RedisOutbox) Len(ctx context.Context) (int64, error) {
	return o.client.LLen(ctx, o.key).Result()
}
