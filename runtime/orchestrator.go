// Package runtime hosts the delivery channel: subscriptions, the fanout queue and the
// supervised workers draining it. It contains no business rules.
package runtime

import (
	"context"
	"fmt"
	"inbox-lab/contract"
	"inbox-lab/domain"
	"inbox-lab/domain/event"
	"inbox-lab/errors"
	"inbox-lab/runtime/workers"
	"inbox-lab/sink"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

var _ contract.IDeliveryChannel = (*Orchestrator)(nil)

type Config struct {
	EventBufferSize        int
	SubscriptionBufferSize int
	SinkTimeout            time.Duration
	MonitorInterval        time.Duration
	PressureThreshold      int
}

// Orchestrator is the real-time delivery channel.
// Publish only enqueues; the fanout worker running under the supervisor delivers.
type Orchestrator struct {
	mu         sync.RWMutex
	log        *slog.Logger
	config     Config
	supervisor contract.ISupervisor
	registry   contract.IRegistry
	events     chan event.DomainEvent
	running    bool
	stopped    bool
}

func NewOrchestrator(log *slog.Logger, supervisor contract.ISupervisor, registry contract.IRegistry,
	participants contract.IParticipantResolver, config Config) *Orchestrator {
	o := &Orchestrator{
		log:        log.With("component", "orchestrator"),
		config:     config,
		supervisor: supervisor,
		registry:   registry,
		events:     make(chan event.DomainEvent, config.EventBufferSize),
	}
	supervisor.Add(workers.NewEventFanoutWorker(log, registry, participants, o.events, config.SinkTimeout))
	if config.MonitorInterval > 0 {
		supervisor.Add(workers.NewQueueMonitorWorker(log,
			[]workers.NamedChannel{{Name: "fanout_events", Channel: o.events}},
			config.MonitorInterval, config.PressureThreshold))
	}
	return o
}

// Start runs the supervised workers and blocks until ctx is canceled or Stop is called.
func (o *Orchestrator) Start(ctx context.Context) error {
	o.mu.Lock()
	if o.running || o.stopped {
		o.mu.Unlock()
		return fmt.Errorf("orchestrator already started")
	}
	o.running = true
	o.mu.Unlock()

	o.log.Info("Starting orchestrator and all supervised workers")
	o.supervisor.Run(ctx)

	o.mu.Lock()
	o.running = false
	o.stopped = true
	o.mu.Unlock()
	return nil
}

// Stop initiates a graceful shutdown; Publish fails with ErrChannelUnavailable afterwards.
func (o *Orchestrator) Stop() {
	o.log.Info("Requesting orchestrator shutdown")
	o.mu.Lock()
	o.stopped = true
	o.mu.Unlock()
	o.supervisor.Stop()
}

func (o *Orchestrator) Subscribe(userID domain.UserID) *sink.Subscription {
	sub := o.registry.Subscribe(userID, o.config.SubscriptionBufferSize)
	o.log.Debug("Subscription opened", "user_id", userID, "subscription_id", sub.ID)
	return sub
}

func (o *Orchestrator) Unsubscribe(subscriptionID uuid.UUID) {
	o.registry.Unsubscribe(subscriptionID)
}

// Publish queues a notification for fanout without ever blocking.
// It fails with ErrChannelUnavailable when the orchestrator is stopped or the
// fanout queue is full; the message itself is already durable at this point.
func (o *Orchestrator) Publish(ctx context.Context, message domain.Message) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrChannelUnavailable, err)
	}
	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.stopped {
		return fmt.Errorf("%w: orchestrator stopped", errors.ErrChannelUnavailable)
	}
	select {
	case o.events <- event.MessageCreated{Message: message}:
		return nil
	default:
		return fmt.Errorf("%w: fanout queue full", errors.ErrChannelUnavailable)
	}
}
