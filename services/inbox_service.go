package services

import (
	"context"
	stdErrors "errors"
	"fmt"
	"inbox-lab/contract"
	"inbox-lab/domain"
	"inbox-lab/errors"
	"inbox-lab/internal/keylock"
	"inbox-lab/internal/retry"
	"inbox-lab/sink"
	"log/slog"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

const DefaultPageSize = 20

type IInboxService interface {
	Send(ctx context.Context, cmd domain.SendCommand) (domain.Message, error)
	FetchHistory(ctx context.Context, cmd domain.FetchCommand) ([]domain.Message, error)
	MarkSeen(ctx context.Context, cmd domain.SeenCommand) (domain.ReadCursor, error)
	Summarize(ctx context.Context, userID domain.UserID) ([]domain.SummaryEntry, error)
	UnseenTotal(ctx context.Context, userID domain.UserID) (int, error)
	StartConversation(ctx context.Context, cmd domain.StartConversationCommand) (domain.Conversation, bool, error)
	Subscribe(userID domain.UserID) *sink.Subscription
	Unsubscribe(subscriptionID uuid.UUID)
}

type InboxConfig struct {
	DefaultPageSize int
	MaxPageSize     int
	RetryDelay      time.Duration
	// SummaryConcurrency bounds the conversations read in parallel by Summarize.
	SummaryConcurrency int
}

// InboxService coordinates the message store, the conversation index and the delivery
// channel. It holds no state of its own besides per-conversation locks.
type InboxService struct {
	log       *slog.Logger
	store     contract.IMessageStore
	index     contract.IConversationIndex
	channel   contract.IDeliveryChannel
	filter    contract.ITextFilter
	config    InboxConfig
	validator *validator.Validate
	locks     *keylock.KeyLock
	clock     func() time.Time
}

var _ IInboxService = (*InboxService)(nil)

// NewInboxService builds the coordinator. filter may be nil to disable moderation.
func NewInboxService(log *slog.Logger, store contract.IMessageStore, index contract.IConversationIndex,
	channel contract.IDeliveryChannel, filter contract.ITextFilter, config InboxConfig) *InboxService {
	if config.DefaultPageSize <= 0 {
		config.DefaultPageSize = DefaultPageSize
	}
	if config.MaxPageSize < config.DefaultPageSize {
		config.MaxPageSize = config.DefaultPageSize
	}
	if config.SummaryConcurrency <= 0 {
		config.SummaryConcurrency = 8
	}
	return &InboxService{
		log:       log.With("component", "inbox_service"),
		store:     store,
		index:     index,
		channel:   channel,
		filter:    filter,
		config:    config,
		validator: validator.New(),
		locks:     keylock.New(),
		clock:     time.Now,
	}
}

// WithClock replaces the time source, used by tests.
func (s *InboxService) WithClock(clock func() time.Time) *InboxService {
	s.clock = clock
	return s
}

// Send appends a message, notifies the participants and moves the sender's cursor past it.
// The work is detached from ctx: once accepted, a send completes even if the caller leaves.
// Append is never retried, so a message is stored at most once per call.
func (s *InboxService) Send(ctx context.Context, cmd domain.SendCommand) (domain.Message, error) {
	if err := s.validate(cmd); err != nil {
		return domain.Message{}, err
	}
	ctx = context.WithoutCancel(ctx)

	text := cmd.Text
	if s.filter != nil {
		var words []string
		if text, words = s.filter.Censor(text); len(words) > 0 {
			s.log.Debug("Message censored", "conversation_id", cmd.ConversationID, "words", len(words))
		}
	}
	sentAt := cmd.SentAt
	if sentAt.IsZero() {
		sentAt = s.clock()
	}

	// Publication happens under the lock so subscribers see messages in id order.
	unlock := s.locks.Lock(string(cmd.ConversationID))
	defer unlock()

	message, err := s.store.Append(cmd.ConversationID, cmd.UserID, text, sentAt)
	if err != nil {
		return domain.Message{}, err
	}

	if err := s.channel.Publish(ctx, message); err != nil {
		s.log.Warn("Message stored but not delivered live",
			"conversation_id", message.ConversationID, "message_id", message.ID, "error", err)
	}

	if _, err := s.advanceCursor(ctx, message.ConversationID, message.SenderID, message.ID); err != nil {
		s.log.Warn("Cannot move sender cursor",
			"conversation_id", message.ConversationID, "message_id", message.ID, "error", err)
	}
	return message, nil
}

// FetchHistory returns a page of messages older than cmd.Before, newest first.
// It never moves the caller's cursor.
func (s *InboxService) FetchHistory(ctx context.Context, cmd domain.FetchCommand) ([]domain.Message, error) {
	if err := s.validate(cmd); err != nil {
		return nil, err
	}
	limit := cmd.Limit
	if limit == 0 {
		limit = s.config.DefaultPageSize
	}
	limit = min(limit, s.config.MaxPageSize)

	var page []domain.Message
	err := s.read(ctx, func() error {
		if _, err := s.index.CursorFor(cmd.ConversationID, cmd.UserID); err != nil {
			return err
		}
		var err error
		page, err = s.store.FetchPage(cmd.ConversationID, cmd.Before, limit)
		return err
	})
	return page, err
}

func (s *InboxService) MarkSeen(ctx context.Context, cmd domain.SeenCommand) (domain.ReadCursor, error) {
	if err := s.validate(cmd); err != nil {
		return domain.ReadCursor{}, err
	}
	return s.advanceCursor(ctx, cmd.ConversationID, cmd.UserID, cmd.MessageID)
}

// Summarize builds the inbox list of userID: most recently active conversation first,
// conversations without messages last in creation order.
func (s *InboxService) Summarize(ctx context.Context, userID domain.UserID) ([]domain.SummaryEntry, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: missing user", errors.ErrInvalidPayload)
	}

	var ids []domain.ConversationID
	err := s.read(ctx, func() error {
		var err error
		ids, err = s.index.ConversationsFor(userID)
		return err
	})
	if err != nil {
		return nil, err
	}

	entries := make([]domain.SummaryEntry, len(ids))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.SummaryConcurrency)
	for i, id := range ids {
		g.Go(func() error {
			return s.read(gCtx, func() error {
				entry, err := s.summaryEntry(id, userID)
				entries[i] = entry
				return err
			})
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return summaryBefore(entries[i], entries[j])
	})
	return entries, nil
}

// UnseenTotal is the badge count: unseen messages over every conversation of userID.
func (s *InboxService) UnseenTotal(ctx context.Context, userID domain.UserID) (int, error) {
	entries, err := s.Summarize(ctx, userID)
	if err != nil {
		return 0, err
	}
	return lo.SumBy(entries, func(e domain.SummaryEntry) int { return e.UnseenCount }), nil
}

// StartConversation finds or creates the conversation between the caller and cmd.Participants.
// The boolean is true when the conversation was created by this call.
func (s *InboxService) StartConversation(ctx context.Context, cmd domain.StartConversationCommand) (domain.Conversation, bool, error) {
	if err := s.validate(cmd); err != nil {
		return domain.Conversation{}, false, err
	}
	participants := append([]domain.UserID{cmd.UserID}, cmd.Participants...)
	conversation, created, err := s.index.Create(participants, s.clock())
	if err != nil {
		return domain.Conversation{}, false, err
	}
	if created {
		s.log.Info("Conversation created",
			"conversation_id", conversation.ID, "participants", len(conversation.Participants))
	}
	return conversation, created, nil
}

func (s *InboxService) Subscribe(userID domain.UserID) *sink.Subscription {
	return s.channel.Subscribe(userID)
}

func (s *InboxService) Unsubscribe(subscriptionID uuid.UUID) {
	s.channel.Unsubscribe(subscriptionID)
}

func (s *InboxService) summaryEntry(id domain.ConversationID, userID domain.UserID) (domain.SummaryEntry, error) {
	conversation, err := s.index.Get(id)
	if err != nil {
		return domain.SummaryEntry{}, err
	}
	latest, err := s.store.Latest(id)
	if err != nil {
		return domain.SummaryEntry{}, err
	}
	unseen, err := s.index.UnseenCount(id, userID)
	if err != nil {
		return domain.SummaryEntry{}, err
	}
	return domain.SummaryEntry{
		ConversationID: id,
		Participants:   conversation.Participants,
		LastMessage:    latest,
		UnseenCount:    unseen,
		CreationSeq:    conversation.CreationSeq,
	}, nil
}

func summaryBefore(a, b domain.SummaryEntry) bool {
	switch {
	case a.LastMessage == nil && b.LastMessage == nil:
		return a.CreationSeq < b.CreationSeq
	case a.LastMessage == nil:
		return false
	case b.LastMessage == nil:
		return true
	case !a.LastMessage.SentAt.Equal(b.LastMessage.SentAt):
		return a.LastMessage.SentAt.After(b.LastMessage.SentAt)
	default:
		return a.CreationSeq < b.CreationSeq
	}
}

// advanceCursor is idempotent, so it shares the read retry policy.
func (s *InboxService) advanceCursor(ctx context.Context, conversationID domain.ConversationID,
	userID domain.UserID, messageID domain.MessageID) (domain.ReadCursor, error) {
	var cursor domain.ReadCursor
	err := s.read(ctx, func() error {
		var err error
		cursor, err = s.index.AdvanceCursor(conversationID, userID, messageID, s.clock())
		return err
	})
	return cursor, err
}

// read retries once when the store is unavailable. Client errors surface immediately.
func (s *InboxService) read(ctx context.Context, operation func() error) error {
	return retry.Do(ctx, retry.Once(s.config.RetryDelay), s.log, isStoreUnavailable, operation)
}

func (s *InboxService) validate(cmd any) error {
	if err := s.validator.Struct(cmd); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrInvalidPayload, err)
	}
	return nil
}

func isStoreUnavailable(err error) bool {
	return stdErrors.Is(err, errors.ErrStoreUnavailable)
}
