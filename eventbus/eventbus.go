// Copyright (C) 2025, txconsensus Authors. All rights reserved.
// See the file LICENSE for licensing terms.

// Package eventbus implements the pub/sub surface of spec §6.4: workers
// publish structured events on consensus:events, transaction:events,
// and general:events; any number of subscribers (typically RPC
// instances) forward them to WebSocket clients. Delivery is best-effort
// and subscribers must tolerate duplicates, so Publish never retries.
package eventbus

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
)

// Channel names a pub/sub channel.
type Channel string

const (
	ChannelConsensus   Channel = "consensus:events"
	ChannelTransaction Channel = "transaction:events"
	ChannelGeneral     Channel = "general:events"
)

// Event is the message shape every publish uses (§6.4).
type Event struct {
	WorkerID        string `json:"worker_id"`
	Event           string `json:"event"`
	Data            any    `json:"data,omitempty"`
	TransactionHash string `json:"transaction_hash,omitempty"`
}

// Bus publishes structured events. The Bus returned by NewNoOp is a
// valid, inert implementation for single-worker deployments where
// REDIS_URL is unset (§6.5 marks it mandatory only for multi-worker).
type Bus interface {
	Publish(ctx context.Context, channel Channel, event Event) error
}

// redisBus implements Bus over go-redis.
type redisBus struct {
	client *redis.Client
}

// New wraps an existing redis client.
func New(client *redis.Client) Bus {
	return &redisBus{client: client}
}

// Dial connects to addr (a REDIS_URL-shaped connection string).
func Dial(addr string) (Bus, error) {
	opts, err := redis.ParseURL(addr)
	if err != nil {
		return nil, err
	}
	return &redisBus{client: redis.NewClient(opts)}, nil
}

func (b *redisBus) Publish(ctx context.Context, channel Channel, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return b.client.Publish(ctx, string(channel), payload).Err()
}

// noopBus discards every publish; used when REDIS_URL is unset.
type noopBus struct{}

// NewNoOp returns a Bus that discards every event.
func NewNoOp() Bus { return noopBus{} }

func (noopBus) Publish(context.Context, Channel, Event) error { return nil }
