package workers

import (
	"context"
	"inbox-lab/contract"
	"inbox-lab/domain/event"
	"log/slog"
	"time"
)

var _ contract.Worker = (*EventFanoutWorker)(nil)

// EventFanoutWorker delivers each domain event to every live subscription of every
// participant of the event's conversation, the sender included.
//
// Delivery is best-effort and at-most-once. Exactly one fanout worker must consume the
// queue: events are handed to sinks sequentially, which keeps the order in which they
// were queued for each subscription.
type EventFanoutWorker struct {
	log          *slog.Logger
	registry     contract.IRegistry
	participants contract.IParticipantResolver
	events       chan event.DomainEvent
	sinkTimeout  time.Duration
}

func NewEventFanoutWorker(log *slog.Logger, registry contract.IRegistry,
	participants contract.IParticipantResolver, events chan event.DomainEvent,
	sinkTimeout time.Duration) *EventFanoutWorker {
	return &EventFanoutWorker{
		log:          log.With("worker", "event_fanout"),
		registry:     registry,
		participants: participants,
		events:       events,
		sinkTimeout:  sinkTimeout,
	}
}

func (w *EventFanoutWorker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping fanout")
			return nil
		case evt, ok := <-w.events:
			if !ok {
				w.log.Debug("Event channel closed")
				return nil
			}
			w.Fanout(ctx, evt)
		}
	}
}

// Fanout One sink for each open session of each participant
func (w *EventFanoutWorker) Fanout(ctx context.Context, evt event.DomainEvent) {
	participants, err := w.participants.ParticipantsOf(evt.ConversationID())
	if err != nil {
		w.log.Warn("Cannot resolve participants, event dropped",
			"conversation_id", evt.ConversationID(), "error", err)
		return
	}
	for _, s := range w.registry.SinksFor(participants) {
		sinkCtx, cancel := context.WithTimeout(ctx, w.sinkTimeout)
		if err := s.Consume(sinkCtx, evt); err != nil {
			w.log.Debug("Sink rejected event", "conversation_id", evt.ConversationID(), "error", err)
		}
		cancel()
	}
}
