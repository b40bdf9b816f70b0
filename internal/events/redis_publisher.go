package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type envelope struct {
	Type    string  `json:"type"`
	Payload Payload `json:"payload"`
}

type queued struct {
	eventType     string
	appointmentID uuid.UUID
	data          []byte
}

// RedisPublisher delivers events over Redis pub/sub. Publish encodes the
// envelope once, appends it to the outbox synchronously and queues the
// wire push to a background goroutine, so the caller never waits on
// Redis. A full queue drops the live push; the outbox row survives for
// replay.
type RedisPublisher struct {
	client  *redis.Client
	outbox  Outbox
	channel string
	logger  zerolog.Logger

	queue chan queued
	wg    sync.WaitGroup
	once  sync.Once
}

func NewRedisPublisher(client *redis.Client, outbox Outbox, channel string) *RedisPublisher {
	p := &RedisPublisher{
		client:  client,
		outbox:  outbox,
		channel: channel,
		logger:  log.With().Str("component", "event_publisher").Logger(),
		queue:   make(chan queued, 256),
	}

	p.wg.Add(1)
	go p.dispatch()

	return p
}

func (p *RedisPublisher) Publish(ctx context.Context, eventType string, payload Payload) {
	data, err := json.Marshal(envelope{Type: eventType, Payload: payload})
	if err != nil {
		p.logger.Error().Err(err).Str("event_type", eventType).Msg("marshal event payload")
		return
	}

	if err := p.outbox.Append(ctx, eventType, payload.AppointmentID, data); err != nil {
		p.logger.Error().Err(err).
			Str("event_type", eventType).
			Stringer("appointment_id", payload.AppointmentID).
			Msg("append event to outbox")
	}

	select {
	case p.queue <- queued{eventType: eventType, appointmentID: payload.AppointmentID, data: data}:
	default:
		p.logger.Warn().
			Str("event_type", eventType).
			Stringer("appointment_id", payload.AppointmentID).
			Msg("event queue full, dropping live push")
	}
}

func (p *RedisPublisher) dispatch() {
	defer p.wg.Done()

	for item := range p.queue {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := p.client.Publish(ctx, p.channel, item.data).Err()
		cancel()
		if err != nil {
			p.logger.Warn().Err(err).
				Str("event_type", item.eventType).
				Stringer("appointment_id", item.appointmentID).
				Msg("publish event to redis")
		}
	}
}

// Close drains queued events and stops the dispatcher.
func (p *RedisPublisher) Close() {
	p.once.Do(func() {
		close(p.queue)
	})
	p.wg.Wait()
}
