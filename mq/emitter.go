package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"gadgethub/models"

	"github.com/redis/go-redis/v9"
)

const OrderEventsChannel = "order-events"

// Emitter publishes order events on a redis channel so every server
// instance can forward them to its websocket clients.
type Emitter struct {
	conn *redis.Client
}

func NewEmitter(conn *redis.Client) *Emitter {
	return &Emitter{conn: conn}
}

func (e *Emitter) Publish(ctx context.Context, ev models.OrderEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", ev.Type, err)
	}
	if err := e.conn.Publish(ctx, OrderEventsChannel, data).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", ev.Type, err)
	}
	log.Printf("[Emit] %s order=%s", ev.Type, ev.OrderID)
	return nil
}

// StartOrderEventWorker subscribes to the order channel and hands each event
// to handle until ctx is cancelled. The subscription is confirmed before it
// returns.
func StartOrderEventWorker(ctx context.Context, conn *redis.Client, handle func(models.OrderEvent)) error {
	sub := conn.Subscribe(ctx, OrderEventsChannel)
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return fmt.Errorf("subscribe %s: %w", OrderEventsChannel, err)
	}

	go func() {
		defer sub.Close()
		ch := sub.Channel()
		log.Println("[OrderEventWorker] Listening for order events...")
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var ev models.OrderEvent
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					log.Printf("[OrderEventWorker] Failed to parse event: %v", err)
					continue
				}
				handle(ev)
			}
		}
	}()
	return nil
}
